package telemetry

import (
	"github.com/pkg/errors"
)

// ErrNoData is returned by a source that has nothing to read yet, e.g. the
// game is not running or has not mapped its shared memory.
var ErrNoData = errors.New("telemetry not available")

// Wheel indexes the per-wheel arrays in the order the game stores them.
type Wheel int

const (
	RearLeft Wheel = iota
	FrontLeft
	RearRight
	FrontRight
)

func (w Wheel) String() string {
	switch w {
	case RearLeft:
		return "LR"
	case FrontLeft:
		return "LF"
	case RearRight:
		return "RR"
	case FrontRight:
		return "RF"
	}
	return "unknown"
}

const (
	SurfaceAsphalt  = 0
	SurfaceLowKerb  = 1
	SurfaceHighKerb = 2
	SurfaceGrass    = 3
	SurfaceGravel   = 4
)

// Sample is one tick's worth of raw readings. Forces are in game units.
type Sample struct {
	StructSize int32
	DeviceID   int32
	DeviceName string

	InRace bool
	Paused bool
	Replay bool
	MenuOn bool
	Player bool

	FPS            float64
	SpeedKmh       float64
	SteeringAngle  float64
	TyreTurnAngle  float64
	SlipAngleFront float64
	SlipAngleRear  float64

	Surface          [4]int32
	SuspensionTravel [4]int32
	RideHeight       [4]int32
	WheelSpin        [4]int32

	LatFL  int32
	LatFR  int32
	LongFL int32
	LongFR int32
}

// Inactive reports whether force feedback should be held at zero.
func (s *Sample) Inactive() bool {
	return !s.InRace || s.Paused || s.Replay || s.MenuOn
}

// OffAsphalt reports whether the given wheel is on anything but asphalt.
func (s *Sample) OffAsphalt(w Wheel) bool {
	return s.Surface[w] != SurfaceAsphalt
}

// OnKerb reports whether the given wheel is on a low or high kerb.
func (s *Sample) OnKerb(w Wheel) bool {
	return s.Surface[w] == SurfaceLowKerb || s.Surface[w] == SurfaceHighKerb
}
