package app

import (
	"time"

	"github.com/chrissnell/tidegauge/internal/store"
)

// Report is everything one analysis run produces
type Report struct {
	RunID         string    `json:"runId,omitempty"`
	Station       string    `json:"station"`
	Files         []string  `json:"files"`
	Readings      int       `json:"readings"`
	ValidReadings int       `json:"validReadings"`
	Flagged       int       `json:"flagged"`
	SeriesStart   time.Time `json:"seriesStart"`
	SeriesEnd     time.Time `json:"seriesEnd"`

	Segment    *SegmentSummary `json:"segment,omitempty"`
	LongestRun RunSummary      `json:"longestRun"`

	// Window is the span trend and harmonics were fitted over
	Window RunSummary `json:"window"`

	RiseRatePerHour float64                   `json:"riseRatePerHour"`
	RiseRatePerYear float64                   `json:"riseRatePerYear"`
	ReferenceTime   time.Time                 `json:"referenceTime"`
	Constituents    []store.ConstituentResult `json:"constituents"`
}

// SegmentSummary describes a demeaned year or date-range extraction.
// Anomalies are mean minus value, so a high tide shows as a negative number.
type SegmentSummary struct {
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Rows       int       `json:"rows"`
	Valid      int       `json:"valid"`
	MinAnomaly float64   `json:"minAnomaly"`
	MaxAnomaly float64   `json:"maxAnomaly"`
}

type RunSummary struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Rows  int       `json:"rows"`
}

// Run converts the report into its stored form
func (r *Report) Run() *store.Run {
	return &store.Run{
		ID:              r.RunID,
		Station:         r.Station,
		Files:           len(r.Files),
		Readings:        r.Readings,
		ValidReadings:   r.ValidReadings,
		RunStart:        r.Window.Start,
		RunEnd:          r.Window.End,
		RiseRatePerHour: r.RiseRatePerHour,
		RiseRatePerYear: r.RiseRatePerYear,
		ReferenceTime:   r.ReferenceTime,
		Constituents:    append([]store.ConstituentResult(nil), r.Constituents...),
	}
}
