// Package tidal provides a catalog of tidal constituents and their angular
// speeds. Speeds are built from Doodson numbers and the rates of change of
// the six fundamental astronomical arguments, taken as derivatives of the
// mean-longitude polynomials in Meeus ch. 22 and 47. Accuracy is well
// inside 1e-6 degrees per hour across the 20th and 21st centuries.
package tidal

import (
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/unit"
)

// hoursPerCentury converts degrees/century to degrees/hour
const hoursPerCentury = base.JulianCentury * 24

// solarDayRate is mean solar time in degrees per Julian century (15°/h)
const solarDayRate = 15.0 * hoursPerCentury

// polynomial holds coefficients in degrees for T^0..T^4, T in Julian
// centuries from J2000.0
type polynomial [5]float64

// rate is the first derivative in degrees per century
func (p polynomial) rate(T float64) float64 {
	return p[1] + T*(2*p[2]+T*(3*p[3]+T*4*p[4]))
}

var (
	// s: Moon mean longitude
	moonLongitude = polynomial{218.3164477, 481267.88123421, -0.0015786, 1.0 / 538841, -1.0 / 65194000}

	// h: Sun mean longitude
	sunLongitude = polynomial{280.46646, 36000.76983, 0.0003032, 0, 0}

	// p: longitude of lunar perigee
	lunarPerigee = polynomial{83.3532465, 4069.0137287, -0.0103200, -1.0 / 80053, 1.0 / 18999000}

	// N: longitude of the Moon's ascending node. Doodson uses N' = -N.
	lunarNode = polynomial{125.0445479, -1934.1362891, 0.0020754, 1.0 / 467441, -1.0 / 60616000}

	// p1: longitude of solar perigee
	solarPerigee = polynomial{282.93735, 1.71946, 0.00046, 0, 0}
)

// Arguments are the six Doodson astronomical arguments (τ, s, h, p, N', p1)
type Arguments [6]float64

// ArgumentRates returns the rate of each Doodson argument at t in degrees
// per hour
func ArgumentRates(t time.Time) Arguments {
	T := julianCenturies(t)

	s := moonLongitude.rate(T)
	h := sunLongitude.rate(T)

	rates := Arguments{
		solarDayRate - s + h,
		s,
		h,
		lunarPerigee.rate(T),
		-lunarNode.rate(T),
		solarPerigee.rate(T),
	}
	for i := range rates {
		rates[i] /= hoursPerCentury
	}
	return rates
}

// julianCenturies returns Julian centuries since J2000.0
func julianCenturies(t time.Time) float64 {
	return base.J2000Century(julian.TimeToJD(t.UTC()))
}

// degPerHourToRadPerSec converts an angular speed
func degPerHourToRadPerSec(speed float64) float64 {
	return unit.AngleFromDeg(speed).Rad() / 3600
}

