// Package store persists analysis runs so they can be listed and served later.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ErrRunNotFound is returned by GetRun for an unknown ID
var ErrRunNotFound = errors.New("run not found")

// ConstituentResult is one fitted constituent of a run
type ConstituentResult struct {
	Name      string  `json:"name"`
	Amplitude float64 `json:"amplitude"`
	Phase     float64 `json:"phase"`
}

// Run is the stored summary of one analysis
type Run struct {
	ID              string              `json:"id"`
	Station         string              `json:"station"`
	CreatedAt       time.Time           `json:"createdAt"`
	Files           int                 `json:"files"`
	Readings        int                 `json:"readings"`
	ValidReadings   int                 `json:"validReadings"`
	RunStart        time.Time           `json:"runStart"`
	RunEnd          time.Time           `json:"runEnd"`
	RiseRatePerHour float64             `json:"riseRatePerHour"`
	RiseRatePerYear float64             `json:"riseRatePerYear"`
	ReferenceTime   time.Time           `json:"referenceTime"`
	Constituents    []ConstituentResult `json:"constituents"`
}

// Store saves and retrieves runs
type Store interface {
	// SaveRun assigns ID and CreatedAt when they are unset, then persists r
	SaveRun(ctx context.Context, r *Run) error
	// ListRuns returns the newest runs first. An empty station matches all;
	// limit <= 0 means no limit.
	ListRuns(ctx context.Context, station string, limit int) ([]Run, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	Close() error
}

// Open picks a backend from spec: "postgres://..." or "postgresql://..."
// selects TimescaleDB, "sqlite:PATH" or a bare path selects SQLite.
func Open(spec string, clock clockwork.Clock) (Store, error) {
	switch {
	case spec == "":
		return nil, errors.New("empty store specification")
	case strings.HasPrefix(spec, "postgres://"), strings.HasPrefix(spec, "postgresql://"):
		s, err := NewTimescale(spec, clock)
		if err != nil {
			return nil, err
		}
		return s, nil
	case strings.Contains(spec, "://"):
		return nil, fmt.Errorf("unsupported store %q", spec)
	}

	s, err := NewSQLite(strings.TrimPrefix(spec, "sqlite:"), clock)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// stamp fills the fields SaveRun owns
func stamp(r *Run, clock clockwork.Clock) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = clock.Now().UTC()
	}
}

func orRealClock(c clockwork.Clock) clockwork.Clock {
	if c == nil {
		return clockwork.NewRealClock()
	}
	return c
}
