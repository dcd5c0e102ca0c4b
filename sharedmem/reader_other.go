//go:build !windows

package sharedmem

import (
	"github.com/jd3nn1s/gp2ffb/telemetry"
	log "github.com/sirupsen/logrus"
)

// Reader never finds the section, the game only runs on windows.
type Reader struct {
	name   string
	warned bool
}

func NewReader(name string) *Reader {
	return &Reader{name: name}
}

func (r *Reader) TryRead() (telemetry.Sample, error) {
	if !r.warned {
		log.WithField("name", r.name).Warn("shared memory is only available on windows")
		r.warned = true
	}
	return telemetry.Sample{}, telemetry.ErrNoData
}

func (r *Reader) Close() error {
	return nil
}
