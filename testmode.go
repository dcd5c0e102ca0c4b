package gp2ffb

import (
	"github.com/jd3nn1s/gp2ffb/sharedmem"
	"github.com/jd3nn1s/gp2ffb/telemetry"
	"math"
)

const (
	testCycleTicks  = 1800
	testPauseStart  = 1500
	testPauseEnd    = 1620
	testKerbEvery   = 300
	testKerbTicks   = 30
	testWarmupTicks = 3
)

// TestSource generates telemetry for running without the game: a car
// weaving through corners with a kerb strike every few seconds and a pause
// once per cycle.
type TestSource struct {
	n int
}

func NewTestSource() *TestSource {
	return &TestSource{}
}

func (s *TestSource) TryRead() (telemetry.Sample, error) {
	n := s.n
	s.n++
	if n < testWarmupTicks {
		// the game reports an empty structure while it starts
		return telemetry.Sample{}, nil
	}

	phase := n % testCycleTicks
	corner := math.Sin(2 * math.Pi * float64(phase) / 600)

	cur := telemetry.Sample{
		StructSize: sharedmem.RecordSize,
		DeviceID:   1,
		DeviceName: "test",
		InRace:     true,
		Player:     true,
		Paused:     phase >= testPauseStart && phase < testPauseEnd,
		FPS:        60,
		SpeedKmh:   165 + 85*math.Cos(2*math.Pi*float64(phase)/900),
		LatFL:      int32(60000 * corner),
		LatFR:      int32(36000 * corner),
		LongFL:     int32(-2000 * corner),
		LongFR:     int32(2000 * corner),
	}
	cur.SteeringAngle = 0.2 * corner
	if phase%testKerbEvery < testKerbTicks {
		cur.Surface[telemetry.FrontLeft] = telemetry.SurfaceLowKerb
		cur.Surface[telemetry.RearLeft] = telemetry.SurfaceLowKerb
	}
	return cur, nil
}
