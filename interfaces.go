package gp2ffb

import (
	"context"
	"github.com/jd3nn1s/gp2ffb/canwheel"
	"github.com/jd3nn1s/gp2ffb/telemetry"
	"time"
)

// TelemetrySource returns telemetry.ErrNoData while the game is not ready.
type TelemetrySource interface {
	TryRead() (telemetry.Sample, error)
}

// Actuator magnitudes are in [-10000, 10000].
type Actuator interface {
	Start() error
	Stop() error
	SetForce(int) error
}

// PeriodicActuator is implemented by actuators that can play the kerb
// effect. A zero magnitude stops it.
type PeriodicActuator interface {
	SetPeriodic(magnitude int, period time.Duration) error
}

type Forwarder interface {
	Forward(cur *Snapshot, prev *Snapshot) error
}

type CANWheel interface {
	Close() error
	Start(context.Context, canwheel.Callbacks) error
	Enable(bool) error
	SetForce(int) error
	SetPeriodic(int, time.Duration) error
}
