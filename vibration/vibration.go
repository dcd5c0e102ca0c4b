// Package vibration drives a periodic kerb effect alongside the steering
// force.
package vibration

import (
	"github.com/jd3nn1s/gp2ffb/telemetry"
	log "github.com/sirupsen/logrus"
	"math"
	"time"
)

// Period of the kerb effect, 20Hz.
const Period = 50 * time.Millisecond

const (
	minSpeedKmh   = 5.0
	baseMagnitude = 4000.0
	minMagnitude  = 500.0
)

type Command int

const (
	None Command = iota
	Start
	Update
	Stop
)

func (c Command) String() string {
	switch c {
	case Start:
		return "start"
	case Update:
		return "update"
	case Stop:
		return "stop"
	}
	return "none"
}

// Effect tracks whether the kerb effect is running.
type Effect struct {
	running bool
}

func (e *Effect) Running() bool {
	return e.running
}

// Reset forgets the running effect without emitting a stop.
func (e *Effect) Reset() {
	e.running = false
}

// Next returns what to do with the periodic effect this tick and the
// magnitude to use for Start or Update. scale is a fraction in [0, 1].
func (e *Effect) Next(cur *telemetry.Sample, scale float64) (Command, int) {
	tyres := TyresOnKerb(cur)
	if tyres == 0 || cur.SpeedKmh <= minSpeedKmh {
		if !e.running {
			return None, 0
		}
		e.running = false
		return Stop, 0
	}

	mag := Magnitude(cur.SpeedKmh, tyres, scale)
	if !e.running {
		log.WithFields(log.Fields{
			"speed":     cur.SpeedKmh,
			"tyres":     tyres,
			"magnitude": mag,
		}).Debug("kerb detected")
		e.running = true
		return Start, mag
	}
	return Update, mag
}

func TyresOnKerb(cur *telemetry.Sample) int {
	n := 0
	for w := telemetry.RearLeft; w <= telemetry.FrontRight; w++ {
		if cur.OnKerb(w) {
			n++
		}
	}
	return n
}

// Magnitude of the kerb effect at the given speed with n tyres on a kerb.
func Magnitude(speedKmh float64, n int, scale float64) int {
	tyre := math.Min(1, 0.7+0.075*float64(n))
	mag := int(speedFactor(speedKmh) * tyre * scale * baseMagnitude)
	if scale > 0 && mag < minMagnitude {
		mag = int(minMagnitude * scale)
	}
	return mag
}

func speedFactor(v float64) float64 {
	switch {
	case v < 50:
		return 0.5 + (v-minSpeedKmh)/45*0.3
	case v < 200:
		return 0.8 + (v-50)/150*0.2
	}
	return 1
}
