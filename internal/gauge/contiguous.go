package gauge

import (
	"github.com/chrissnell/tidegauge/internal/types"
)

// LongestRun returns the longest stretch of consecutive readings with a
// valid sea level and no spacing wider than the series' nominal interval.
// Ties go to the earliest run. A clean series comes back whole; a nil one
// comes back empty.
func LongestRun(s *types.Series) *types.Series {
	if s == nil {
		return &types.Series{Readings: []types.Reading{}}
	}
	interval := s.NominalInterval()

	bestStart, bestLen := 0, 0
	curStart, curLen := 0, 0

	for i, r := range s.Readings {
		if !r.SeaLevel.Valid {
			curLen = 0
			continue
		}
		// previous reading is valid whenever curLen > 0
		if curLen > 0 && r.Timestamp.Sub(s.Readings[i-1].Timestamp) > interval {
			curLen = 0
		}
		if curLen == 0 {
			curStart = i
		}
		curLen++
		if curLen > bestLen {
			bestStart, bestLen = curStart, curLen
		}
	}

	return s.Slice(bestStart, bestStart+bestLen)
}
