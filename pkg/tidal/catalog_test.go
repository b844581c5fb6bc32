package tidal

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var j2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

func TestSpeedsMatchPublishedValues(t *testing.T) {
	// degrees per hour, Schureman / IHO tables
	published := map[string]float64{
		"Sa":  0.0410686,
		"Ssa": 0.0821373,
		"Mm":  0.5443747,
		"Mf":  1.0980331,
		"Q1":  13.3986609,
		"O1":  13.9430356,
		"P1":  14.9589314,
		"S1":  15.0000000,
		"K1":  15.0410686,
		"J1":  15.5854433,
		"OO1": 16.1391017,
		"2N2": 27.8953548,
		"MU2": 27.9682084,
		"N2":  28.4397295,
		"NU2": 28.5125831,
		"M2":  28.9841042,
		"L2":  29.5284789,
		"T2":  29.9589333,
		"S2":  30.0000000,
		"K2":  30.0821373,
		"M3":  43.4761563,
		"MK3": 44.0251729,
		"MN4": 57.4238337,
		"M4":  57.9682084,
		"MS4": 58.9841042,
		"S4":  60.0000000,
		"M6":  86.9523127,
	}

	cat := Default()
	for name, want := range published {
		t.Run(name, func(t *testing.T) {
			con, err := cat.Lookup(name)
			require.NoError(t, err)
			assert.InDelta(t, want, con.Speed(j2000), 2e-6)
		})
	}
	assert.Len(t, cat.Constituents(), len(published))
}

func TestAngularFrequency(t *testing.T) {
	omega, err := Default().AngularFrequency("m2", j2000)
	require.NoError(t, err)

	period := 2 * math.Pi / omega / 3600
	assert.InDelta(t, 12.4206012, period, 1e-6)
}

func TestPeriod(t *testing.T) {
	s2, err := Default().Lookup("S2")
	require.NoError(t, err)
	assert.InDelta(t, 12.0, s2.Period(j2000), 1e-9)

	still := Constituent{Name: "Z0"}
	assert.Zero(t, still.Period(j2000))
}

func TestRatesDriftSlowly(t *testing.T) {
	m2, err := Default().Lookup("M2")
	require.NoError(t, err)

	later := time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.InDelta(t, m2.Speed(j2000), m2.Speed(later), 1e-7)
}

func TestUnknownConstituent(t *testing.T) {
	_, err := Default().AngularFrequency("X9", j2000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConstituent))

	var uce *UnknownConstituentError
	require.ErrorAs(t, err, &uce)
	assert.Equal(t, "X9", uce.Name)
}

func TestConstituentsOrderedBySpeed(t *testing.T) {
	list := Default().Constituents()
	require.NotEmpty(t, list)
	assert.Equal(t, "Sa", list[0].Name)
	assert.Equal(t, "M6", list[len(list)-1].Name)
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].Speed(j2000), list[i].Speed(j2000))
	}
}

func TestNewCatalogOverrides(t *testing.T) {
	cat := NewCatalog(Constituent{Name: "M2", Doodson: [6]int{2}}, Constituent{Name: "m2", Doodson: [6]int{4}})
	con, err := cat.Lookup("M2")
	require.NoError(t, err)
	assert.Equal(t, 4, con.Doodson[0])
}
