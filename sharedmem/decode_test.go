package sharedmem

import (
	"bytes"
	"encoding/binary"
	"github.com/jd3nn1s/gp2ffb/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
	"unicode/utf16"
)

func TestRecordSize(t *testing.T) {
	assert.Equal(t, RecordSize, binary.Size(record{}))
}

func encode(t *testing.T, r *record) []byte {
	buf := bytes.NewBuffer([]byte{})
	require.NoError(t, binary.Write(buf, binary.LittleEndian, r))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	r := record{
		StructSize: RecordSize,
		DeviceID:   2,
		InRace:     1,
		Replay:     1,
		Player:     1,
		FPS:        60,
		SpeedKmh:   250.5,
		WheelAngle: -0.25,
		Surface:    [4]int32{0, 1, 3, 4},
		RideHeight: [4]int32{10, 11, 12, 13},
	}
	copy(r.DeviceName[:], utf16.Encode([]rune("Wheel")))
	binary.LittleEndian.PutUint32(r.WheelsData[2*512+52:], uint32(40000))
	binary.LittleEndian.PutUint32(r.WheelsData[3*512+52:], math.MaxUint32) // -1
	binary.LittleEndian.PutUint32(r.WheelsData[2*512+380:], 123)
	binary.LittleEndian.PutUint32(r.WheelsData[3*512+380:], 456)
	// rear wheels are not read
	binary.LittleEndian.PutUint32(r.WheelsData[0*512+52:], 999)

	buf := encode(t, &r)
	// bools sit straight after the device name
	assert.Equal(t, byte(1), buf[528])
	assert.Equal(t, byte(1), buf[532])

	s, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, int32(RecordSize), s.StructSize)
	assert.Equal(t, int32(2), s.DeviceID)
	assert.Equal(t, "Wheel", s.DeviceName)
	assert.True(t, s.InRace)
	assert.False(t, s.Paused)
	assert.True(t, s.Replay)
	assert.False(t, s.MenuOn)
	assert.True(t, s.Player)
	assert.Equal(t, 60.0, s.FPS)
	assert.Equal(t, 250.5, s.SpeedKmh)
	assert.Equal(t, -0.25, s.SteeringAngle)
	assert.Equal(t, int32(1), s.Surface[telemetry.FrontLeft])
	assert.Equal(t, int32(4), s.Surface[telemetry.FrontRight])
	assert.Equal(t, int32(12), s.RideHeight[telemetry.RearRight])

	assert.Equal(t, int32(40000), s.LatFL)
	assert.Equal(t, int32(-1), s.LatFR)
	assert.Equal(t, int32(123), s.LongFL)
	assert.Equal(t, int32(456), s.LongFR)
}

func TestDecodeUninitialized(t *testing.T) {
	s, err := Decode(make([]byte, RecordSize))
	assert.NoError(t, err)
	assert.Equal(t, int32(0), s.StructSize)

	// header only is enough while the game is starting
	s, err = Decode(make([]byte, 4))
	assert.NoError(t, err)
	assert.Equal(t, int32(0), s.StructSize)
}

func TestDecodeShort(t *testing.T) {
	_, err := Decode([]byte{1})
	assert.Error(t, err)

	buf := make([]byte, 100)
	binary.LittleEndian.PutUint32(buf, RecordSize)
	s, err := Decode(buf)
	assert.Error(t, err)
	assert.Equal(t, int32(RecordSize), s.StructSize)
}

func TestReaderClosed(t *testing.T) {
	r := NewReader("Local\\nothing-here")
	assert.NoError(t, r.Close())
}
