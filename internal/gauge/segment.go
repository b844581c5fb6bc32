package gauge

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/tidegauge/internal/types"
)

// ExtractYear keeps the readings from one calendar year (UTC) and replaces
// each sea level v with mean-v, where mean is taken over that year's valid
// sea levels. Missing values stay missing; cycle and residual are kept.
func ExtractYear(year int, s *types.Series) (*types.Series, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0).Add(-time.Second)

	var kept []types.Reading
	for _, r := range s.Readings {
		if r.Timestamp.UTC().Year() == year {
			kept = append(kept, r)
		}
	}

	return demean(s.Station, kept, from, to)
}

// ExtractRange keeps readings with start <= timestamp <= end and demeans
// them like ExtractYear. Only the sea level column survives: residuals come
// back missing and cycles zero.
func ExtractRange(start, end time.Time, s *types.Series) (*types.Series, error) {
	var kept []types.Reading
	for _, r := range s.Readings {
		if r.Timestamp.Before(start) || r.Timestamp.After(end) {
			continue
		}
		kept = append(kept, types.Reading{Timestamp: r.Timestamp, SeaLevel: r.SeaLevel})
	}

	return demean(s.Station, kept, start, end)
}

// demean rewrites each valid sea level v as mean-v. The sign is mean minus
// value, not the other way round; downstream results depend on it.
func demean(station string, readings []types.Reading, from, to time.Time) (*types.Series, error) {
	values := make([]float64, 0, len(readings))
	for _, r := range readings {
		if r.SeaLevel.Valid {
			values = append(values, r.SeaLevel.Value)
		}
	}
	if len(values) == 0 {
		return nil, &EmptySegmentError{From: from, To: to}
	}

	mean := stat.Mean(values, nil)

	out := make([]types.Reading, len(readings))
	for i, r := range readings {
		if r.SeaLevel.Valid {
			r.SeaLevel = types.Some(mean - r.SeaLevel.Value)
		}
		out[i] = r
	}

	return &types.Series{Station: station, Readings: out}, nil
}
