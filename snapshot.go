package gp2ffb

import (
	"github.com/jd3nn1s/gp2ffb/dynamics"
	"time"
)

// Snapshot is what the display and forwarders see of the last tick.
type Snapshot struct {
	Tick uint64
	Time time.Time

	Paused   bool
	DeviceID int32
	SpeedKmh float64
	Surface  [4]int32

	Estimate  dynamics.Estimate
	FrontLoad float64

	// Force is the shaped force, Magnitude what the conditioner produced
	// from it and Sent whether Magnitude went to the actuator this tick.
	Force     float64
	Magnitude int
	Sent      bool
	Direction int

	Vibration int

	WheelTemp  int
	WheelFault int
}
