package dynamics

import (
	"math"

	"github.com/jd3nn1s/gp2ffb/telemetry"
)

const (
	DirectionLeft     = 10000
	DirectionStraight = 0
	DirectionRight    = -10000

	// below this much lateral G the car counts as going straight
	straightBandG = 0.05
)

// Estimate is the per-tick vehicle dynamics derived from a sample. SAE
// convention: positive lateral force is a left turn.
type Estimate struct {
	RawLatFL  int32
	RawLatFR  int32
	RawLongFL int32
	RawLongFR int32

	LatFL  float64 // N
	LatFR  float64 // N
	LongFL float64 // N
	LongFR float64 // N

	TotalLateralForce int64 // raw units
	LateralG          float64
	Direction         int
	TurnDirection     int
}

// Estimator derives an Estimate from consecutive samples. It needs a previous
// sample, so the first call after construction or Reset only primes it.
type Estimator struct {
	consts Constants
	prev   telemetry.Sample
	primed bool
}

func NewEstimator(c Constants) *Estimator {
	return &Estimator{consts: c}
}

func (e *Estimator) Constants() Constants {
	return e.consts
}

// Reset makes the next call to Estimate a priming call.
func (e *Estimator) Reset() {
	e.primed = false
	e.prev = telemetry.Sample{}
}

// Previous returns the sample stored by the last call.
func (e *Estimator) Previous() telemetry.Sample {
	return e.prev
}

// Estimate returns false on the priming call and true afterwards.
func (e *Estimator) Estimate(cur telemetry.Sample) (Estimate, bool) {
	if !e.primed {
		e.prev = cur
		e.primed = true
		return Estimate{}, false
	}

	est := Estimate{
		RawLatFL:  cur.LatFL,
		RawLatFR:  cur.LatFR,
		RawLongFL: cur.LongFL,
		RawLongFR: cur.LongFR,
		LatFL:     e.consts.ConvertForce(cur.LatFL),
		LatFR:     e.consts.ConvertForce(cur.LatFR),
		LongFL:    e.consts.ConvertForce(cur.LongFL),
		LongFR:    e.consts.ConvertForce(cur.LongFR),
	}

	// raw sum, not newtons, decides the direction sign
	est.TotalLateralForce = int64(cur.LatFL) + int64(cur.LatFR)

	lateralAccel := (est.LatFL + est.LatFR) / math.Max(e.consts.VehicleMass, 1)
	est.LateralG = lateralAccel / Gravity
	est.Direction = classifyDirection(est.LateralG, est.TotalLateralForce)
	est.TurnDirection = turnDirection(cur.LatFL, cur.LatFR)

	e.prev = cur
	return est, true
}

func classifyDirection(lateralG float64, totalLateral int64) int {
	switch {
	case math.Abs(lateralG) < straightBandG:
		return DirectionStraight
	case totalLateral > 0:
		return DirectionLeft
	default:
		return DirectionRight
	}
}

// turnDirection is -1 when either front tire reports a negative force.
func turnDirection(lf, rf int32) int {
	if lf < 0 || rf < 0 {
		return -1
	}
	return 1
}
