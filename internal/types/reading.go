package types

import (
	"sort"
	"time"
)

// Level is a height that may be missing. The zero value is missing.
type Level struct {
	Value float64
	Valid bool
}

// Some returns a present Level holding v
func Some(v float64) Level {
	return Level{Value: v, Valid: true}
}

// Missing is the absent Level
var Missing = Level{}

// Reading is a single tide-gauge sample. Readings are values; stages that
// transform them return new readings rather than editing in place.
type Reading struct {
	Timestamp time.Time
	Cycle     int
	SeaLevel  Level
	Residual  Level
}

// ReadingKey is a comparable identity for a Reading covering every field.
// Two readings describe the same record only when their keys are equal.
type ReadingKey struct {
	Unix     int64
	Cycle    int
	SeaLevel Level
	Residual Level
}

// Key returns the record identity of r
func (r Reading) Key() ReadingKey {
	return ReadingKey{
		Unix:     r.Timestamp.Unix(),
		Cycle:    r.Cycle,
		SeaLevel: r.SeaLevel,
		Residual: r.Residual,
	}
}

// Less orders keys by timestamp, then cycle, then sea level, then residual.
// Missing levels sort before present ones.
func (k ReadingKey) Less(o ReadingKey) bool {
	if k.Unix != o.Unix {
		return k.Unix < o.Unix
	}
	if k.Cycle != o.Cycle {
		return k.Cycle < o.Cycle
	}
	if k.SeaLevel != o.SeaLevel {
		return levelLess(k.SeaLevel, o.SeaLevel)
	}
	return levelLess(k.Residual, o.Residual)
}

func levelLess(a, b Level) bool {
	if a.Valid != b.Valid {
		return !a.Valid
	}
	return a.Value < b.Value
}

// Series is a timestamp-ordered run of readings from one station. Duplicate
// timestamps are allowed; see gauge.Merge.
type Series struct {
	Station  string
	Readings []Reading
}

// NewSeries builds a Series from readings, sorting them by timestamp. The
// sort is stable so rows sharing a timestamp keep their input order.
func NewSeries(station string, readings []Reading) *Series {
	rs := make([]Reading, len(readings))
	copy(rs, readings)
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].Timestamp.Before(rs[j].Timestamp)
	})
	return &Series{Station: station, Readings: rs}
}

// Len returns the number of readings
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Readings)
}

// Start returns the first timestamp, or the zero time for an empty series
func (s *Series) Start() time.Time {
	if s.Len() == 0 {
		return time.Time{}
	}
	return s.Readings[0].Timestamp
}

// End returns the last timestamp, or the zero time for an empty series
func (s *Series) End() time.Time {
	if s.Len() == 0 {
		return time.Time{}
	}
	return s.Readings[len(s.Readings)-1].Timestamp
}

// ValidCount returns how many readings carry a sea level
func (s *Series) ValidCount() int {
	n := 0
	for _, r := range s.Readings {
		if r.SeaLevel.Valid {
			n++
		}
	}
	return n
}

// Valid returns the timestamps and values of readings with a sea level
func (s *Series) Valid() ([]time.Time, []float64) {
	times := make([]time.Time, 0, len(s.Readings))
	values := make([]float64, 0, len(s.Readings))
	for _, r := range s.Readings {
		if !r.SeaLevel.Valid {
			continue
		}
		times = append(times, r.Timestamp)
		values = append(values, r.SeaLevel.Value)
	}
	return times, values
}

// Clone returns a copy that shares no backing storage with s
func (s *Series) Clone() *Series {
	if s == nil {
		return &Series{Readings: []Reading{}}
	}
	rs := make([]Reading, len(s.Readings))
	copy(rs, s.Readings)
	return &Series{Station: s.Station, Readings: rs}
}

// Slice returns a copy of readings [start, end)
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > s.Len() {
		end = s.Len()
	}
	if start >= end {
		return &Series{Station: s.Station, Readings: []Reading{}}
	}
	rs := make([]Reading, end-start)
	copy(rs, s.Readings[start:end])
	return &Series{Station: s.Station, Readings: rs}
}

// NominalInterval infers the sampling cadence: the most common positive
// spacing between consecutive timestamps. Ties go to the shorter spacing.
// Returns zero when fewer than two distinct timestamps exist.
func (s *Series) NominalInterval() time.Duration {
	counts := make(map[time.Duration]int)
	for i := 1; i < s.Len(); i++ {
		d := s.Readings[i].Timestamp.Sub(s.Readings[i-1].Timestamp)
		if d > 0 {
			counts[d]++
		}
	}

	var best time.Duration
	bestCount := 0
	for d, c := range counts {
		if c > bestCount || (c == bestCount && d < best) {
			best, bestCount = d, c
		}
	}
	return best
}
