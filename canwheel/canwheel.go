// Package canwheel talks to a direct drive wheel base over a CAN bus.
package canwheel

import (
	"context"
	"encoding/binary"
	"github.com/brutella/can"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"time"
)

const (
	frameForce    uint32 = 0x200
	frameEnable          = 0x201
	framePeriodic        = 0x202

	frameMotorTemp = 0x210
	frameFault     = 0x211
)

const MaxForce = 10000

type IntResultFn func(v int)

type Callbacks struct {
	MotorTemp IntResultFn
	Fault     IntResultFn
}

type CANBus interface {
	SubscribeFunc(can.HandlerFunc)
	ConnectAndPublish() error
	Disconnect() error
	Publish(can.Frame) error
}

var newBus = func(name string) (CANBus, error) {
	return can.NewBusForInterfaceWithName(name)
}

type Connection struct {
	bus CANBus
	cb  Callbacks
}

func Connect(interfaceName string) (*Connection, error) {
	bus, err := newBus(interfaceName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open can interface %s", interfaceName)
	}
	return &Connection{
		bus: bus,
	}, nil
}

// Start subscribes to wheel status frames and blocks until the bus stops or
// ctx is done.
func (c *Connection) Start(ctx context.Context, cb Callbacks) error {
	c.cb = cb
	c.bus.SubscribeFunc(c.handleFrame)
	log.Info("wheel CAN bus opened and subscribed")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-done:
			return
		case <-ctx.Done():
		}
		log.Infof("stopping wheel CAN bus: %v", ctx.Err())
		if err := c.bus.Disconnect(); err != nil {
			log.WithField("err", err).Warn("unable to disconnect canbus after context")
		}
	}()

	return c.bus.ConnectAndPublish()
}

func (c *Connection) Close() error {
	if c.bus == nil {
		return errors.New("can bus not connected")
	}
	return c.bus.Disconnect()
}

func (c *Connection) Enable(on bool) error {
	var v uint8
	if on {
		v = 1
	}
	log.WithField("enable", on).Debug("sending enable over canbus")
	return c.publish(can.Frame{
		ID:     frameEnable,
		Length: 1,
		Data:   [8]uint8{v},
	})
}

// SetForce sends a constant force in [-MaxForce, MaxForce].
func (c *Connection) SetForce(force int) error {
	if force > MaxForce {
		force = MaxForce
	} else if force < -MaxForce {
		force = -MaxForce
	}
	f := can.Frame{
		ID:     frameForce,
		Length: 2,
	}
	binary.LittleEndian.PutUint16(f.Data[0:2], uint16(int16(force)))
	return c.publish(f)
}

// SetPeriodic starts or updates a sine effect, a zero magnitude stops it.
func (c *Connection) SetPeriodic(magnitude int, period time.Duration) error {
	if magnitude < 0 {
		magnitude = 0
	} else if magnitude > MaxForce {
		magnitude = MaxForce
	}
	f := can.Frame{
		ID:     framePeriodic,
		Length: 4,
	}
	binary.LittleEndian.PutUint16(f.Data[0:2], uint16(magnitude))
	binary.LittleEndian.PutUint16(f.Data[2:4], uint16(period/time.Millisecond))
	return c.publish(f)
}

func (c *Connection) publish(f can.Frame) error {
	if c.bus == nil {
		return errors.New("can bus not connected")
	}
	return c.bus.Publish(f)
}

func (c *Connection) handleFrame(frame can.Frame) {
	log.WithField("canID", frame.ID).
		WithField("length", frame.Length).
		Debug("received canbus frame")

	var cb IntResultFn
	switch frame.ID {
	case frameMotorTemp:
		cb = c.cb.MotorTemp
	case frameFault:
		cb = c.cb.Fault
	default:
		log.WithField("canID", frame.ID).Debug("ignoring canID")
		return
	}

	if cb == nil {
		log.WithField("canID", frame.ID).Debug("no callback registered")
		return
	}

	v, err := uint16Result(frame)
	if err != nil {
		log.WithField("err", err).Error("unable to convert to uint16")
		return
	}
	cb(v)
}

func uint16Result(frame can.Frame) (int, error) {
	if frame.Length != 2 {
		return 0, errors.Errorf("incorrect frame size for uint16: %v", frame.Length)
	}
	return int(binary.LittleEndian.Uint16(frame.Data[0:2])), nil
}
