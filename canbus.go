package gp2ffb

import (
	"context"
	"github.com/jd3nn1s/gp2ffb/canwheel"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

type WheelStatus struct {
	MotorTemp int
	Fault     int
}

// to allow testing
var canWheelConnect = func(iface string) (CANWheel, error) {
	return canwheel.Connect(iface)
}

// CANWheelActuator drives a wheel base over CAN. The connection is owned by
// RunCANWheel which reconnects on error, force updates in between fail.
type CANWheelActuator struct {
	iface string

	mu      sync.Mutex
	c       CANWheel
	enabled bool
	status  WheelStatus
}

func NewCANWheelActuator(iface string) *CANWheelActuator {
	return &CANWheelActuator{
		iface: iface,
	}
}

func (w *CANWheelActuator) Name() string {
	return "canwheel"
}

func (w *CANWheelActuator) Open() error {
	c, err := canWheelConnect(w.iface)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c = c
	if w.enabled {
		// the wheel base drops out of enable when the bus goes away
		return c.Enable(true)
	}
	return nil
}

func (w *CANWheelActuator) Close() error {
	w.mu.Lock()
	c := w.c
	w.c = nil
	w.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Close()
}

// Run blocks while the bus is connected.
func (w *CANWheelActuator) Run(ctx context.Context) error {
	c, err := w.conn()
	if err != nil {
		return err
	}
	return c.Start(ctx, canwheel.Callbacks{
		MotorTemp: func(v int) {
			w.mu.Lock()
			w.status.MotorTemp = v
			w.mu.Unlock()
		},
		Fault: func(v int) {
			w.mu.Lock()
			changed := w.status.Fault != v
			w.status.Fault = v
			w.mu.Unlock()
			if changed && v != 0 {
				log.WithField("fault", v).Warn("wheel base reported a fault")
			}
		},
	})
}

func (w *CANWheelActuator) Status() WheelStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *CANWheelActuator) conn() (CANWheel, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.c == nil {
		return nil, errors.New("canbus is not initialized")
	}
	return w.c, nil
}

func (w *CANWheelActuator) Start() error {
	w.mu.Lock()
	w.enabled = true
	w.mu.Unlock()
	c, err := w.conn()
	if err != nil {
		return err
	}
	return errors.Wrap(c.Enable(true), "unable to enable wheel")
}

func (w *CANWheelActuator) Stop() error {
	w.mu.Lock()
	w.enabled = false
	w.mu.Unlock()
	c, err := w.conn()
	if err != nil {
		return err
	}
	return errors.Wrap(c.Enable(false), "unable to disable wheel")
}

func (w *CANWheelActuator) SetForce(force int) error {
	c, err := w.conn()
	if err != nil {
		return err
	}
	return errors.Wrapf(c.SetForce(force), "unable to send force %d", force)
}

func (w *CANWheelActuator) SetPeriodic(magnitude int, period time.Duration) error {
	c, err := w.conn()
	if err != nil {
		return err
	}
	return errors.Wrap(c.SetPeriodic(magnitude, period), "unable to send periodic effect")
}

// RunCANWheel keeps the wheel connected until ctx is done.
func RunCANWheel(ctx context.Context, w *CANWheelActuator) {
	err := retry(ctx, &wheelRetryable{w})
	if err != nil {
		log.Infof("canwheel done: %v", err)
	}
}

// wheelRetryable adapts the actuator to the retry loop, whose Start takes a
// context.
type wheelRetryable struct {
	*CANWheelActuator
}

func (r *wheelRetryable) Start(ctx context.Context) error {
	return r.Run(ctx)
}
