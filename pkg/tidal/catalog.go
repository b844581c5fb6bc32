package tidal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrUnknownConstituent matches any *UnknownConstituentError
var ErrUnknownConstituent = errors.New("unknown tidal constituent")

// UnknownConstituentError names a constituent the catalog cannot resolve
type UnknownConstituentError struct {
	Name string
}

func (e *UnknownConstituentError) Error() string {
	return fmt.Sprintf("unknown tidal constituent %q", e.Name)
}

func (e *UnknownConstituentError) Is(target error) bool { return target == ErrUnknownConstituent }

// Constituent is a named tidal frequency expressed as a Doodson number:
// multipliers of (τ, s, h, p, N', p1)
type Constituent struct {
	Name        string
	Doodson     [6]int
	Description string
}

// Speed returns the angular speed at t in degrees per hour
func (c Constituent) Speed(t time.Time) float64 {
	rates := ArgumentRates(t)
	speed := 0.0
	for i, n := range c.Doodson {
		speed += float64(n) * rates[i]
	}
	return speed
}

// AngularFrequency returns the angular speed at t in radians per second
func (c Constituent) AngularFrequency(t time.Time) float64 {
	return degPerHourToRadPerSec(c.Speed(t))
}

// Period returns the period at t in hours. Zero-speed constituents have no
// period and return 0.
func (c Constituent) Period(t time.Time) float64 {
	speed := c.Speed(t)
	if speed == 0 {
		return 0
	}
	return 360 / speed
}

var standard = []Constituent{
	{"Sa", [6]int{0, 0, 1, 0, 0, 0}, "solar annual"},
	{"Ssa", [6]int{0, 0, 2, 0, 0, 0}, "solar semiannual"},
	{"Mm", [6]int{0, 1, 0, -1, 0, 0}, "lunar monthly"},
	{"Mf", [6]int{0, 2, 0, 0, 0, 0}, "lunisolar fortnightly"},
	{"Q1", [6]int{1, -2, 0, 1, 0, 0}, "larger lunar elliptic diurnal"},
	{"O1", [6]int{1, -1, 0, 0, 0, 0}, "lunar diurnal"},
	{"P1", [6]int{1, 1, -2, 0, 0, 0}, "solar diurnal"},
	{"S1", [6]int{1, 1, -1, 0, 0, 0}, "solar diurnal (radiational)"},
	{"K1", [6]int{1, 1, 0, 0, 0, 0}, "lunisolar diurnal"},
	{"J1", [6]int{1, 2, 0, -1, 0, 0}, "smaller lunar elliptic diurnal"},
	{"OO1", [6]int{1, 3, 0, 0, 0, 0}, "lunar diurnal, second order"},
	{"2N2", [6]int{2, -2, 0, 2, 0, 0}, "lunar elliptic semidiurnal, second order"},
	{"MU2", [6]int{2, -2, 2, 0, 0, 0}, "variational"},
	{"N2", [6]int{2, -1, 0, 1, 0, 0}, "larger lunar elliptic semidiurnal"},
	{"NU2", [6]int{2, -1, 2, -1, 0, 0}, "larger lunar evectional"},
	{"M2", [6]int{2, 0, 0, 0, 0, 0}, "principal lunar semidiurnal"},
	{"L2", [6]int{2, 1, 0, -1, 0, 0}, "smaller lunar elliptic semidiurnal"},
	{"T2", [6]int{2, 2, -3, 0, 0, 1}, "larger solar elliptic"},
	{"S2", [6]int{2, 2, -2, 0, 0, 0}, "principal solar semidiurnal"},
	{"K2", [6]int{2, 2, 0, 0, 0, 0}, "lunisolar semidiurnal"},
	{"M3", [6]int{3, 0, 0, 0, 0, 0}, "lunar terdiurnal"},
	{"MK3", [6]int{3, 1, 0, 0, 0, 0}, "shallow water terdiurnal"},
	{"MN4", [6]int{4, -1, 0, 1, 0, 0}, "shallow water quarter diurnal"},
	{"M4", [6]int{4, 0, 0, 0, 0, 0}, "shallow water overtide of M2"},
	{"MS4", [6]int{4, 2, -2, 0, 0, 0}, "shallow water quarter diurnal"},
	{"S4", [6]int{4, 4, -4, 0, 0, 0}, "shallow water overtide of S2"},
	{"M6", [6]int{6, 0, 0, 0, 0, 0}, "shallow water overtide of M2"},
}

// Catalog resolves constituent names. Lookups ignore case.
type Catalog struct {
	byName map[string]Constituent
}

// NewCatalog builds a catalog from constituents. Later entries replace
// earlier ones with the same name.
func NewCatalog(constituents ...Constituent) *Catalog {
	c := &Catalog{byName: make(map[string]Constituent, len(constituents))}
	for _, con := range constituents {
		c.byName[strings.ToUpper(con.Name)] = con
	}
	return c
}

// Default returns the standard catalog
func Default() *Catalog {
	return NewCatalog(standard...)
}

// Lookup finds a constituent by name
func (c *Catalog) Lookup(name string) (Constituent, error) {
	con, ok := c.byName[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Constituent{}, &UnknownConstituentError{Name: name}
	}
	return con, nil
}

// AngularFrequency resolves name and returns its speed at ref in radians
// per second
func (c *Catalog) AngularFrequency(name string, ref time.Time) (float64, error) {
	con, err := c.Lookup(name)
	if err != nil {
		return 0, err
	}
	return con.AngularFrequency(ref), nil
}

// Constituents returns every entry ordered by speed, then name
func (c *Catalog) Constituents() []Constituent {
	out := make([]Constituent, 0, len(c.byName))
	for _, con := range c.byName {
		out = append(out, con)
	}
	ref := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].Speed(ref), out[j].Speed(ref)
		if si != sj {
			return si < sj
		}
		return out[i].Name < out[j].Name
	})
	return out
}
