// Package shaper turns front tire loads into a signed steering force.
//
// The curve is fitted by feel rather than derived: a steep ramp up to the
// knee gives weight around center, a gentler slope above it keeps high loads
// from saturating the wheel.
package shaper

import (
	"math"

	"github.com/jd3nn1s/gp2ffb/dynamics"
	"github.com/jd3nn1s/gp2ffb/telemetry"
)

const (
	MaxForce = 10000.0

	inputSmoothing = 0.4

	// off-asphalt wheels keep this share of the other wheel's force
	lowGripRetention = 0.15

	longitudinalGain = 15.0

	kneeLoad   = 1500.0  // N
	kneeForce  = 2500.0  // force at the knee
	peakLoad   = 20000.0 // N
	peakForce  = 9500.0  // force at peak load, also the curve ceiling
	steepSlope = kneeForce / kneeLoad
)

// Scales are fractions in [0, 1] except Braking, which is the configured
// percentage.
type Scales struct {
	Master   float64
	Deadzone float64
	Constant float64
	Braking  float64
	Weight   float64
}

// State is the shaper's memory between ticks.
type State struct {
	smoothed    float64
	initialized bool
	frontLoad   float64
}

// Reset clears the smoothing so the next Shape reseeds it.
func (s *State) Reset() {
	*s = State{}
}

// FrontLoad is the smoothed load magnitude from the last Shape call.
func (s *State) FrontLoad() float64 {
	return s.frontLoad
}

// Shape runs one tick of the force pipeline and returns a signed force in
// [-MaxForce, MaxForce].
func Shape(cur telemetry.Sample, est dynamics.Estimate, state *State, scales Scales, invert bool) float64 {
	longScaler := longitudinalGain * (scales.Braking / 100)
	longBias := (est.LongFR - est.LongFL) * longScaler

	left, right := est.LatFL, est.LatFR
	if cur.OffAsphalt(telemetry.FrontRight) && right >= 0 {
		right = left * lowGripRetention
	}
	if cur.OffAsphalt(telemetry.FrontLeft) && left <= 0 {
		left = right * lowGripRetention
	}

	combined := math.Abs(left) - math.Abs(right) + longBias

	if !state.initialized {
		state.smoothed = combined
		state.initialized = true
	} else {
		state.smoothed = inputSmoothing*combined + (1-inputSmoothing)*state.smoothed
	}

	magnitude := math.Abs(state.smoothed)
	state.frontLoad = magnitude

	force := Curve(magnitude)
	if state.smoothed < 0 {
		force = -force
	}

	force = Deadzone(force, scales.Deadzone)
	force = Clamp(force, MaxForce)

	if invert {
		force = -force
	}
	return force
}

// Curve maps a load magnitude in newtons onto a force magnitude, capped at
// the peak force.
func Curve(load float64) float64 {
	var f float64
	if load <= kneeLoad {
		f = load * steepSlope
	} else {
		gentleSlope := (peakForce - kneeForce) / (peakLoad - kneeLoad)
		f = kneeForce + (load-kneeLoad)*gentleSlope
	}
	return math.Min(f, peakForce)
}

// Deadzone zeroes forces up to MaxForce*scale/100 and stretches the rest back
// over the full range. scale is the configured deadzone fraction, so a 10%
// setting cuts out the lowest 10 units.
func Deadzone(force, scale float64) float64 {
	if scale <= 0 {
		return force
	}
	threshold := MaxForce * (scale / 100)
	mag := math.Abs(force)
	if mag <= threshold {
		return 0
	}
	remaining := math.Max(MaxForce-threshold, 1)
	scaled := (mag - threshold) / remaining * MaxForce
	if force < 0 {
		return -scaled
	}
	return scaled
}

// Clamp limits the magnitude of force to limit, keeping its sign.
func Clamp(force, limit float64) float64 {
	if math.Abs(force) <= limit {
		return force
	}
	if force < 0 {
		return -limit
	}
	return limit
}
