package gauge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chrissnell/tidegauge/internal/types"
)

const bodcHeader = `Port:              P035
Site:              Whitby
Latitude:          54.48947
Longitude:         -0.61476
Start Date:        1993/01/01 00:00:00
End Date:          1993/12/31 23:45:00
Contributor:       National Oceanography Centre, Liverpool
Datum information: The data refer to Admiralty Chart Datum (ACD)
Parameter code:    ASLVBG02 = Surface elevation (unspecified datum) of the water body by bubbler tide gauge
  Cycle    Date      Time    ASLVBG02   Residual
 Number yyyy mm dd hh mi ssf     f          f
`

// stationFile renders a station file with the standard header
func stationFile(rows ...string) string {
	return bodcHeader + strings.Join(rows, "\n") + "\n"
}

func writeStation(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(stationFile(rows...)), 0o644))
	return path
}

func row(cycle int, ts time.Time, sea, residual string) string {
	return fmt.Sprintf("%5d) %s %10s %10s", cycle, ts.Format("2006/01/02 15:04:05"), sea, residual)
}

var base = time.Date(1993, 1, 1, 0, 0, 0, 0, time.UTC)

func quarter(i int) time.Time {
	return base.Add(time.Duration(i) * 15 * time.Minute)
}

// series builds a quarter-hourly series; NaN entries become missing
func series(values ...float64) *types.Series {
	rs := make([]types.Reading, len(values))
	for i, v := range values {
		rs[i] = types.Reading{Timestamp: quarter(i), Cycle: i + 1}
		if v == v {
			rs[i].SeaLevel = types.Some(v)
		}
	}
	return types.NewSeries("test", rs)
}
