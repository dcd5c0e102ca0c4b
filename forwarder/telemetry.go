package forwarder

import (
	"github.com/jd3nn1s/gp2ffb"
)

type Header struct {
	Type uint8
}

const (
	TypeForce = 1
)

// Frame is the wire format of a snapshot, little endian with no padding.
type Frame struct {
	Tick     uint32
	Paused   uint8
	DeviceID int32
	SpeedKmh float32

	LateralG  float32
	Direction int16
	LatFL     float32
	LatFR     float32
	LongFL    float32
	LongFR    float32

	FrontLoad float32
	Force     float32
	Magnitude int16
	Sent      uint8
	Vibration int16

	Surface [4]uint8
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func FrameFromSnapshot(s *gp2ffb.Snapshot) Frame {
	f := Frame{
		Tick:      uint32(s.Tick),
		Paused:    boolByte(s.Paused),
		DeviceID:  s.DeviceID,
		SpeedKmh:  float32(s.SpeedKmh),
		LateralG:  float32(s.Estimate.LateralG),
		Direction: int16(s.Estimate.Direction),
		LatFL:     float32(s.Estimate.LatFL),
		LatFR:     float32(s.Estimate.LatFR),
		LongFL:    float32(s.Estimate.LongFL),
		LongFR:    float32(s.Estimate.LongFR),
		FrontLoad: float32(s.FrontLoad),
		Force:     float32(s.Force),
		Magnitude: int16(s.Magnitude),
		Sent:      boolByte(s.Sent),
		Vibration: int16(s.Vibration),
	}
	for i, v := range s.Surface {
		f.Surface[i] = uint8(v)
	}
	return f
}
