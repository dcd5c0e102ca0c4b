package gp2ffb

import (
	log "github.com/sirupsen/logrus"
	"time"
)

// LogActuator only logs what it is asked to do, for running without a
// wheel.
type LogActuator struct{}

func (LogActuator) Start() error {
	log.Info("log actuator started")
	return nil
}

func (LogActuator) Stop() error {
	log.Info("log actuator stopped")
	return nil
}

func (LogActuator) SetForce(force int) error {
	log.WithField("force", force).Debug("set force")
	return nil
}

func (LogActuator) SetPeriodic(magnitude int, period time.Duration) error {
	log.WithFields(log.Fields{
		"magnitude": magnitude,
		"period":    period,
	}).Debug("set periodic")
	return nil
}
