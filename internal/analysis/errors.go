package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData matches any *InsufficientDataError
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNoConstituents is returned when a harmonic analysis is asked for
	// nothing
	ErrNoConstituents = errors.New("no constituents requested")
)

// InsufficientDataError reports a fit with fewer usable samples than unknowns
type InsufficientDataError struct {
	Op   string
	Need int
	Have int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need at least %d samples, have %d", e.Op, e.Need, e.Have)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }
