package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/tidegauge/internal/types"
)

var start = time.Date(1993, 1, 1, 0, 0, 0, 0, time.UTC)

// linear builds an hourly series of m*t+c; indices in missing have no value
func linear(n int, m, c float64, missing ...int) *types.Series {
	skip := make(map[int]bool)
	for _, i := range missing {
		skip[i] = true
	}
	rs := make([]types.Reading, n)
	for i := range rs {
		rs[i] = types.Reading{Timestamp: start.Add(time.Duration(i) * time.Hour), Cycle: i}
		if !skip[i] {
			rs[i].SeaLevel = types.Some(m*float64(i) + c)
		}
	}
	return types.NewSeries("test", rs)
}

func TestRiseRateRecoversSlope(t *testing.T) {
	tests := []struct {
		name string
		m, c float64
	}{
		{"rising", 2.5e-6, 3.1},
		{"falling", -0.01, 0},
		{"flat", 0, 4.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := RiseRate(linear(24*365, tt.m, tt.c))
			require.NoError(t, err)
			assert.InDelta(t, tt.m, rate, 1e-6)
		})
	}
}

func TestFitTrendUsesUnfilteredOrigin(t *testing.T) {
	// first three readings are missing; the intercept must still be the
	// value at the series' first timestamp, not at the first valid one
	trend, err := FitTrend(linear(100, 0.5, 10, 0, 1, 2))
	require.NoError(t, err)

	assert.InDelta(t, 0.5, trend.Slope, 1e-9)
	assert.InDelta(t, 10, trend.Intercept, 1e-9)
	assert.Equal(t, 97, trend.Samples)
	assert.InDelta(t, 0.5*HoursPerYear, trend.PerYear(), 1e-6)
}

func TestRiseRateInsufficientData(t *testing.T) {
	tests := []struct {
		name string
		s    *types.Series
	}{
		{"empty", types.NewSeries("x", nil)},
		{"one valid", linear(3, 1, 0, 1, 2)},
		{"same instant", types.NewSeries("x", []types.Reading{
			{Timestamp: start, SeaLevel: types.Some(1)},
			{Timestamp: start, SeaLevel: types.Some(2), Cycle: 1},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RiseRate(tt.s)
			assert.ErrorIs(t, err, ErrInsufficientData)
		})
	}
}
