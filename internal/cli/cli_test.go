package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/tidegauge/internal/app"
	"github.com/chrissnell/tidegauge/pkg/config"
)

const header = `Port:              P035
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

// writeRamp writes January 1993, hourly, rising 1e-4 per hour
func writeRamp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	start := time.Date(1993, 1, 1, 0, 0, 0, 0, time.UTC)

	var b strings.Builder
	b.WriteString(header)
	for h := 0; h < 24*31; h++ {
		ts := start.Add(time.Duration(h) * time.Hour)
		fmt.Fprintf(&b, "%5d) %s %10.4f %10s\n", h+1, ts.Format("2006/01/02 15:04:05"), 2+1e-4*float64(h), "0.010")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "199301.txt"), []byte(b.String()), 0o644))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConstituentsText(t *testing.T) {
	out, err := run(t, "constituents")
	require.NoError(t, err)
	assert.Contains(t, out, "M2")
	assert.Contains(t, out, "28.9841042")
	assert.Contains(t, out, "12.4206")
}

func TestConstituentsJSON(t *testing.T) {
	out, err := run(t, "constituents", "--format", "json", "--at", "2020-01-01")
	require.NoError(t, err)

	var cs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &cs))
	require.NotEmpty(t, cs)
	assert.Equal(t, "Sa", cs[0]["name"])

	_, err = run(t, "constituents", "--at", "whenever")
	assert.Error(t, err)
}

func TestAnalyzeText(t *testing.T) {
	dir := writeRamp(t)
	out, err := run(t, "analyze", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Station Whitby")
	assert.Contains(t, out, "199301.txt")
	assert.Contains(t, out, "M2")
	assert.Contains(t, out, "S2")
}

func TestAnalyzeJSON(t *testing.T) {
	dir := writeRamp(t)
	out, err := run(t, "analyze", dir, "-o", "json", "-c", "M2", "-c", "K1", "--year", "1993")
	require.NoError(t, err)

	var rep app.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.InDelta(t, 1e-4, rep.RiseRatePerHour, 1e-6)
	require.Len(t, rep.Constituents, 2)
	assert.Equal(t, "K1", rep.Constituents[1].Name)
	require.NotNil(t, rep.Segment)
	assert.Equal(t, 24*31, rep.Segment.Rows)
}

func TestAnalyzeConfigFileWithOverrides(t *testing.T) {
	dir := writeRamp(t)
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	cfgPath := filepath.Join(t.TempDir(), "tidegauge.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
station: from-config
data:
  directory: %s
analysis:
  constituents: [M2]
storage:
  sqlite:
    path: %s
`, dir, dbPath)), 0o644))

	out, err := run(t, "analyze", "--config", cfgPath, "--station", "from-flag", "-o", "json")
	require.NoError(t, err)

	var rep app.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "from-flag", rep.Station)
	assert.Len(t, rep.Constituents, 1)
	assert.NotEmpty(t, rep.RunID)
	assert.FileExists(t, dbPath)
}

func TestAnalyzeFlagErrors(t *testing.T) {
	dir := writeRamp(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no directory", []string{"analyze"}},
		{"year and range", []string{"analyze", dir, "--year", "1993", "--start", "1993-01-01", "--end", "1993-02-01"}},
		{"start without end", []string{"analyze", dir, "--start", "1993-01-01"}},
		{"bad format", []string{"analyze", dir, "-o", "xml"}},
		{"unknown constituent", []string{"analyze", dir, "-c", "Q9"}},
		{"missing config", []string{"analyze", "--config", filepath.Join(dir, "nope.yaml")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestServeNeedsStore(t *testing.T) {
	_, err := run(t, "serve")
	assert.ErrorContains(t, err, "no store")
}

func TestStorageFromSpec(t *testing.T) {
	assert.Equal(t, config.StorageData{}, storageFromSpec(""))
	assert.Equal(t, "runs.db", storageFromSpec("sqlite:runs.db").SQLite.Path)
	assert.Equal(t, "runs.db", storageFromSpec("runs.db").SQLite.Path)
	assert.Equal(t, "postgres://u@h/db", storageFromSpec("postgres://u@h/db").TimescaleDB.ConnectionString)
}

func TestVersionString(t *testing.T) {
	assert.Contains(t, VersionString(), Version)
}
