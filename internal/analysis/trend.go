// Package analysis estimates sea-level trends and tidal harmonics from
// cleaned gauge series.
package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/tidegauge/internal/types"
)

// HoursPerYear is the Julian year in hours
const HoursPerYear = 365.25 * 24

// Trend is a straight line fitted to sea level against hours elapsed since
// the first reading of the series, valid or not
type Trend struct {
	Slope     float64 // sea-level units per hour
	Intercept float64 // sea level at the series' first timestamp
	Samples   int
}

// PerYear returns the slope in sea-level units per Julian year
func (t Trend) PerYear() float64 {
	return t.Slope * HoursPerYear
}

// FitTrend regresses valid sea levels on elapsed hours. The time origin is
// the first timestamp of s itself, even when that reading is missing.
func FitTrend(s *types.Series) (Trend, error) {
	times, values := s.Valid()
	if len(values) < 2 {
		return Trend{}, &InsufficientDataError{Op: "trend", Need: 2, Have: len(values)}
	}

	origin := s.Start()
	hours := make([]float64, len(times))
	distinct := false
	for i, ts := range times {
		hours[i] = ts.Sub(origin).Hours()
		if hours[i] != hours[0] {
			distinct = true
		}
	}
	if !distinct {
		return Trend{}, &InsufficientDataError{Op: "trend", Need: 2, Have: 1}
	}

	alpha, beta := stat.LinearRegression(hours, values, nil, false)

	return Trend{Slope: beta, Intercept: alpha, Samples: len(values)}, nil
}

// RiseRate returns the fitted sea-level rise in units per hour
func RiseRate(s *types.Series) (float64, error) {
	t, err := FitTrend(s)
	if err != nil {
		return 0, err
	}
	return t.Slope, nil
}
