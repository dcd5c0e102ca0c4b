package gp2ffb

import (
	"context"
	"github.com/jd3nn1s/gp2ffb/canwheel"
	"github.com/jd3nn1s/gp2ffb/telemetry"
	"sync"
	"time"
)

type sourceStub struct {
	mu      sync.Mutex
	samples []telemetry.Sample
	noData  int
	reads   int
}

// TryRead returns ErrNoData noData times, then the samples in order and
// finally repeats the last one.
func (s *sourceStub) TryRead() (telemetry.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.noData > 0 {
		s.noData--
		return telemetry.Sample{}, telemetry.ErrNoData
	}
	if len(s.samples) == 0 {
		return telemetry.Sample{}, telemetry.ErrNoData
	}
	cur := s.samples[0]
	if len(s.samples) > 1 {
		s.samples = s.samples[1:]
	}
	return cur, nil
}

type actuatorStub struct {
	mu        sync.Mutex
	started   int
	stopped   int
	forces    []int
	forceChan chan int
}

func (a *actuatorStub) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.started++
	return nil
}

func (a *actuatorStub) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped++
	return nil
}

func (a *actuatorStub) SetForce(force int) error {
	a.mu.Lock()
	a.forces = append(a.forces, force)
	a.mu.Unlock()
	if a.forceChan != nil {
		select {
		case a.forceChan <- force:
		default:
		}
	}
	return nil
}

func (a *actuatorStub) Forces() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int(nil), a.forces...)
}

type periodicCall struct {
	magnitude int
	period    time.Duration
}

type periodicActuatorStub struct {
	actuatorStub
	periodic []periodicCall
}

func (a *periodicActuatorStub) SetPeriodic(magnitude int, period time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.periodic = append(a.periodic, periodicCall{magnitude, period})
	return nil
}

type forwarderStub struct {
	cur  []Snapshot
	prev []Snapshot
}

func (fwd *forwarderStub) Forward(cur *Snapshot, prev *Snapshot) error {
	fwd.cur = append(fwd.cur, *cur)
	fwd.prev = append(fwd.prev, *prev)
	return nil
}

type canWheelStub struct {
	startChan chan struct{}
	errChan   chan error
	fnChan    chan func()
	callbacks canwheel.Callbacks

	mu       sync.Mutex
	enabled  []bool
	forces   []int
	periodic []int
	closed   bool
}

func createCANWheelStub() *canWheelStub {
	return &canWheelStub{
		startChan: make(chan struct{}),
		errChan:   make(chan error),
		fnChan:    make(chan func()),
	}
}

func (c *canWheelStub) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *canWheelStub) Start(ctx context.Context, callbacks canwheel.Callbacks) error {
	c.callbacks = callbacks
	c.startChan <- struct{}{}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-c.errChan:
			return err
		case fn := <-c.fnChan:
			fn()
		}
	}
}

func (c *canWheelStub) Enable(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = append(c.enabled, on)
	return nil
}

func (c *canWheelStub) SetForce(force int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forces = append(c.forces, force)
	return nil
}

func (c *canWheelStub) SetPeriodic(magnitude int, period time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.periodic = append(c.periodic, magnitude)
	return nil
}
