package analysis

import (
	"fmt"
	"time"

	"github.com/chrissnell/tidegauge/internal/types"
	"github.com/chrissnell/tidegauge/pkg/tidal"
)

// Result holds one amplitude and phase per requested constituent, in the
// order they were requested. Phases are radians relative to Reference.
type Result struct {
	Constituents []string
	Amplitude    []float64
	Phase        []float64
	Reference    time.Time
	Samples      int
}

// Analyzer prepares a gauge series for a Fitter and maps the answer back to
// constituent names
type Analyzer struct {
	Catalog *tidal.Catalog
	Fitter  Fitter
}

// NewAnalyzer returns an Analyzer over the standard catalog with a
// least-squares fitter
func NewAnalyzer() *Analyzer {
	return &Analyzer{Catalog: tidal.Default(), Fitter: LeastSquares{}}
}

// Analyze fits the named constituents to the valid sea levels of s. Times
// are measured in seconds from ref, which need not be the series start.
func (a *Analyzer) Analyze(s *types.Series, constituents []string, ref time.Time) (*Result, error) {
	if len(constituents) == 0 {
		return nil, ErrNoConstituents
	}

	omega := make([]float64, len(constituents))
	for i, name := range constituents {
		w, err := a.Catalog.AngularFrequency(name, ref)
		if err != nil {
			return nil, err
		}
		omega[i] = w
	}

	times, values := s.Valid()
	seconds := make([]float64, len(times))
	unique := make(map[int64]struct{}, len(times))
	for i, ts := range times {
		seconds[i] = ts.Sub(ref).Seconds()
		unique[ts.Unix()] = struct{}{}
	}

	need := 2*len(constituents) + 1
	if len(unique) < need {
		return nil, &InsufficientDataError{Op: "harmonic analysis", Need: need, Have: len(unique)}
	}

	amp, phase, err := a.Fitter.Fit(seconds, values, omega)
	if err != nil {
		return nil, err
	}
	if len(amp) != len(constituents) || len(phase) != len(constituents) {
		return nil, fmt.Errorf("harmonic analysis: fitter returned %d/%d values for %d constituents",
			len(amp), len(phase), len(constituents))
	}

	names := make([]string, len(constituents))
	copy(names, constituents)

	return &Result{
		Constituents: names,
		Amplitude:    amp,
		Phase:        phase,
		Reference:    ref,
		Samples:      len(values),
	}, nil
}
