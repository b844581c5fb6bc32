package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Fitter solves for the amplitude and phase of a sum of sinusoids at fixed
// angular frequencies. t is in seconds, omega in radians per second, and
// the returned slices are aligned with omega.
type Fitter interface {
	Fit(t, y, omega []float64) (amplitude, phase []float64, err error)
}

// LeastSquares fits y ≈ c + Σ A·cos(ω·t − φ) by ordinary least squares
// using a QR decomposition of the design matrix. Phases are radians in
// [0, 2π).
type LeastSquares struct{}

// Fit implements Fitter
func (LeastSquares) Fit(t, y, omega []float64) ([]float64, []float64, error) {
	if len(t) != len(y) {
		return nil, nil, fmt.Errorf("harmonic fit: %d times but %d values", len(t), len(y))
	}
	n := len(t)
	cols := 1 + 2*len(omega)
	if n < cols {
		return nil, nil, &InsufficientDataError{Op: "harmonic fit", Need: cols, Have: n}
	}

	// columns: mean, then a cos/sin pair per frequency
	X := mat.NewDense(n, cols, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		for j, w := range omega {
			sin, cos := math.Sincos(w * t[i])
			X.Set(i, 1+2*j, cos)
			X.Set(i, 2+2*j, sin)
		}
	}

	var qr mat.QR
	qr.Factorize(X)

	coeffs := mat.NewVecDense(cols, nil)
	if err := qr.SolveVecTo(coeffs, false, mat.NewVecDense(n, y)); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return nil, nil, fmt.Errorf("harmonic fit: design matrix is ill-conditioned (condition %.3g); frequencies too close for the record length", float64(cond))
		}
		return nil, nil, fmt.Errorf("harmonic fit: %w", err)
	}

	amplitude := make([]float64, len(omega))
	phase := make([]float64, len(omega))
	for j := range omega {
		a := coeffs.AtVec(1 + 2*j)
		b := coeffs.AtVec(2 + 2*j)
		amplitude[j] = math.Hypot(a, b)
		phase[j] = wrapPhase(math.Atan2(b, a))
	}

	return amplitude, phase, nil
}

// wrapPhase maps an angle in radians onto [0, 2π)
func wrapPhase(p float64) float64 {
	p = math.Mod(p, 2*math.Pi)
	if p < 0 {
		p += 2 * math.Pi
	}
	return p
}
