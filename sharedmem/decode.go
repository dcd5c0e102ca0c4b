// Package sharedmem reads the telemetry record the game plugin publishes in
// a named shared memory section.
package sharedmem

import (
	"bytes"
	"encoding/binary"
	"github.com/jd3nn1s/gp2ffb/telemetry"
	"github.com/pkg/errors"
	"unicode/utf16"
)

const (
	DefaultName = `Local\x86GP2FFB`

	// RecordSize is the size of the record this package understands.
	RecordSize = 2720

	wheelBlockSize  = 512
	latForceOffset  = 52
	longForceOffset = 380
)

// wheel data blocks are not in the same order as the per-wheel arrays
var wheelBlocks = map[telemetry.Wheel]int{
	telemetry.RearLeft:   0,
	telemetry.RearRight:  1,
	telemetry.FrontLeft:  2,
	telemetry.FrontRight: 3,
}

type record struct {
	StructSize int32
	DeviceID   int32
	DeviceName [260]uint16

	InRace uint8
	Paused uint8
	Replay uint8
	MenuOn uint8
	Player uint8
	_      [3]uint8

	FPS            float32
	SpeedKmh       float32
	WheelAngle     float32
	TyreTurnAngle  float32
	SlipAngleFront float32
	SlipAngleRear  float32

	Surface          [4]int32
	SuspensionTravel [4]int32
	RideHeight       [4]int32
	WheelSpin        [4]int32
	NotOnDamper      [4]int32
	Calc248          [4]int32
	Wheel2AC         [4]int32

	WheelsData [2048]byte
}

// Decode converts a raw record into a sample. Only the header is required
// when the record reports a size of zero, the game has not filled it in yet.
func Decode(buf []byte) (telemetry.Sample, error) {
	if len(buf) < 4 {
		return telemetry.Sample{}, errors.Errorf("record too short: %d bytes", len(buf))
	}
	size := int32(binary.LittleEndian.Uint32(buf))
	if size == 0 {
		return telemetry.Sample{}, nil
	}
	if len(buf) < RecordSize {
		return telemetry.Sample{StructSize: size}, errors.Errorf("record too short: %d bytes", len(buf))
	}

	r := record{}
	if err := binary.Read(bytes.NewReader(buf[:RecordSize]), binary.LittleEndian, &r); err != nil {
		return telemetry.Sample{}, errors.Wrap(err, "unable to decode telemetry record")
	}

	s := telemetry.Sample{
		StructSize: r.StructSize,
		DeviceID:   r.DeviceID,
		DeviceName: utf16String(r.DeviceName[:]),

		InRace: r.InRace != 0,
		Paused: r.Paused != 0,
		Replay: r.Replay != 0,
		MenuOn: r.MenuOn != 0,
		Player: r.Player != 0,

		FPS:            float64(r.FPS),
		SpeedKmh:       float64(r.SpeedKmh),
		SteeringAngle:  float64(r.WheelAngle),
		TyreTurnAngle:  float64(r.TyreTurnAngle),
		SlipAngleFront: float64(r.SlipAngleFront),
		SlipAngleRear:  float64(r.SlipAngleRear),

		Surface:          r.Surface,
		SuspensionTravel: r.SuspensionTravel,
		RideHeight:       r.RideHeight,
		WheelSpin:        r.WheelSpin,
	}
	s.LatFL = wheelInt(r.WheelsData[:], telemetry.FrontLeft, latForceOffset)
	s.LatFR = wheelInt(r.WheelsData[:], telemetry.FrontRight, latForceOffset)
	s.LongFL = wheelInt(r.WheelsData[:], telemetry.FrontLeft, longForceOffset)
	s.LongFR = wheelInt(r.WheelsData[:], telemetry.FrontRight, longForceOffset)
	return s, nil
}

func wheelInt(data []byte, w telemetry.Wheel, offset int) int32 {
	start := wheelBlocks[w]*wheelBlockSize + offset
	return int32(binary.LittleEndian.Uint32(data[start : start+4]))
}

func utf16String(s []uint16) string {
	for i, v := range s {
		if v == 0 {
			s = s[:i]
			break
		}
	}
	return string(utf16.Decode(s))
}
