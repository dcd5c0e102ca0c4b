package gp2ffb

import (
	"context"
	"github.com/jd3nn1s/gp2ffb/conditioner"
	"github.com/jd3nn1s/gp2ffb/config"
	"github.com/jd3nn1s/gp2ffb/dynamics"
	"github.com/jd3nn1s/gp2ffb/shaper"
	"github.com/jd3nn1s/gp2ffb/sharedmem"
	"github.com/jd3nn1s/gp2ffb/telemetry"
	"github.com/jd3nn1s/gp2ffb/vibration"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

// TickInterval runs the loop at 60Hz.
const TickInterval = time.Second / 60

const sizeWaitLogInterval = 100

var ErrIncompatibleTelemetry = errors.New("incompatible telemetry structure")

// to allow testing
var noDataRetry = time.Millisecond

type statusReporter interface {
	Status() WheelStatus
}

type FFB struct {
	source     TelemetrySource
	actuator   Actuator
	forwarders []Forwarder
	metrics    *metrics

	invert         bool
	rateLimit      bool
	shaperScales   shaper.Scales
	condScales     conditioner.Scales
	vibrationScale float64

	estimator   *dynamics.Estimator
	shaperState shaper.State
	condState   *conditioner.State
	kerb        vibration.Effect

	sizeChecked bool
	sizeWaits   int
	started     bool
	paused      bool
	tick        uint64

	mu       sync.Mutex
	snapshot Snapshot
	prev     Snapshot
}

func NewFFB(cfg *config.Config, source TelemetrySource, actuator Actuator) (*FFB, error) {
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	return &FFB{
		source:         source,
		actuator:       actuator,
		metrics:        m,
		invert:         cfg.Invert,
		rateLimit:      cfg.Limit,
		shaperScales:   cfg.ShaperScales(),
		condScales:     cfg.ConditionerScales(),
		vibrationScale: cfg.VibrationFraction(),
		estimator:      dynamics.NewEstimator(dynamics.ConstantsFor(cfg.Game)),
		condState:      conditioner.NewState(),
	}, nil
}

func (f *FFB) AddForwarder(fwd Forwarder) {
	f.forwarders = append(f.forwarders, fwd)
}

// Snapshot returns a copy of the last tick's state.
func (f *FFB) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

// Run ticks until ctx is done or the telemetry turns out to be unusable.
func (f *FFB) Run(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	defer f.stop()

	// a broken record repeats every tick, only log when it changes
	readErr := ""
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		cur, err := f.read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if err.Error() != readErr {
				log.WithField("err", err).Warn("unable to read telemetry")
				readErr = err.Error()
			}
			continue
		}
		if readErr != "" {
			log.Info("telemetry readable again")
			readErr = ""
		}
		if err := f.Tick(cur); err != nil {
			return err
		}
	}
}

func (f *FFB) read(ctx context.Context) (telemetry.Sample, error) {
	for {
		cur, err := f.source.TryRead()
		if errors.Cause(err) != telemetry.ErrNoData {
			return cur, err
		}
		select {
		case <-ctx.Done():
			return cur, ctx.Err()
		case <-time.After(noDataRetry):
		}
	}
}

// Tick runs one sample through the pipeline.
func (f *FFB) Tick(cur telemetry.Sample) error {
	if !f.sizeChecked {
		switch cur.StructSize {
		case 0:
			if f.sizeWaits%sizeWaitLogInterval == 0 {
				log.WithField("attempts", f.sizeWaits).Info("waiting for the game to initialize telemetry")
			}
			f.sizeWaits++
			return nil
		case sharedmem.RecordSize:
			log.WithField("device", cur.DeviceID).Info("telemetry structure verified")
			f.sizeChecked = true
		default:
			log.WithFields(log.Fields{
				"size":     cur.StructSize,
				"expected": sharedmem.RecordSize,
			}).Error("telemetry structure size mismatch")
			return errors.Wrapf(ErrIncompatibleTelemetry, "got %d bytes, expected %d", cur.StructSize, sharedmem.RecordSize)
		}
	}

	f.tick++
	f.metrics.ticks.Add(context.Background(), 1)

	if cur.Inactive() {
		if !f.paused {
			f.pause()
		}
		f.publish(Snapshot{
			Paused:   true,
			DeviceID: cur.DeviceID,
			SpeedKmh: cur.SpeedKmh,
			Surface:  cur.Surface,
		})
		return nil
	}
	if f.paused {
		f.resume()
	}

	est, ok := f.estimator.Estimate(cur)
	if !ok {
		return nil
	}

	if !f.started {
		if err := f.actuator.Start(); err != nil {
			log.WithField("err", err).Error("unable to start actuator")
		} else {
			log.Info("actuator started")
		}
		f.started = true
	}

	force := shaper.Shape(cur, est, &f.shaperState, f.shaperScales, f.invert)
	magnitude, send := conditioner.Condition(force, f.condState, f.condScales, f.rateLimit)
	if send {
		if err := f.actuator.SetForce(magnitude); err != nil {
			log.WithField("err", err).Warn("unable to set force")
		}
	}
	f.metrics.update(send)
	log.WithFields(log.Fields{
		"lateralG":  est.LateralG,
		"frontLoad": f.shaperState.FrontLoad(),
		"force":     force,
		"magnitude": magnitude,
		"sent":      send,
	}).Trace("tick")

	f.publish(Snapshot{
		DeviceID:  cur.DeviceID,
		SpeedKmh:  cur.SpeedKmh,
		Surface:   cur.Surface,
		Estimate:  est,
		FrontLoad: f.shaperState.FrontLoad(),
		Force:     force,
		Magnitude: magnitude,
		Sent:      send,
		Direction: f.condState.Direction(),
		Vibration: f.vibrate(&cur),
	})
	return nil
}

func (f *FFB) pause() {
	f.paused = true
	f.metrics.transition(true)
	log.Info("force feedback paused")
	if err := f.actuator.SetForce(0); err != nil {
		log.WithField("err", err).Warn("unable to zero force")
	}
	f.stopVibration()
}

func (f *FFB) resume() {
	f.paused = false
	f.metrics.transition(false)
	log.Info("force feedback resumed")
	f.estimator.Reset()
	f.shaperState.Reset()
	f.condState.Reset()
}

func (f *FFB) vibrate(cur *telemetry.Sample) int {
	p, ok := f.actuator.(PeriodicActuator)
	if !ok || f.vibrationScale <= 0 {
		return 0
	}
	cmd, magnitude := f.kerb.Next(cur, f.vibrationScale)
	var err error
	switch cmd {
	case vibration.Start, vibration.Update:
		err = p.SetPeriodic(magnitude, vibration.Period)
	case vibration.Stop:
		err = p.SetPeriodic(0, vibration.Period)
	}
	if err != nil {
		log.WithField("err", err).Warnf("unable to %s kerb vibration", cmd)
	}
	if !f.kerb.Running() {
		return 0
	}
	return magnitude
}

func (f *FFB) stopVibration() {
	if !f.kerb.Running() {
		return
	}
	f.kerb.Reset()
	if p, ok := f.actuator.(PeriodicActuator); ok {
		if err := p.SetPeriodic(0, vibration.Period); err != nil {
			log.WithField("err", err).Warn("unable to stop kerb vibration")
		}
	}
}

func (f *FFB) publish(s Snapshot) {
	s.Tick = f.tick
	s.Time = time.Now()
	if r, ok := f.actuator.(statusReporter); ok {
		status := r.Status()
		s.WheelTemp = status.MotorTemp
		s.WheelFault = status.Fault
	}

	f.mu.Lock()
	f.prev = f.snapshot
	f.snapshot = s
	prev := f.prev
	f.mu.Unlock()

	for _, fwd := range f.forwarders {
		if err := fwd.Forward(&s, &prev); err != nil {
			log.WithField("err", err).Warn("unable to forward snapshot")
		}
	}
}

func (f *FFB) stop() {
	if !f.started {
		return
	}
	f.stopVibration()
	if err := f.actuator.SetForce(0); err != nil {
		log.WithField("err", err).Warn("unable to zero force")
	}
	if err := f.actuator.Stop(); err != nil {
		log.WithField("err", err).Warn("unable to stop actuator")
	}
	log.Info("actuator stopped")
}
