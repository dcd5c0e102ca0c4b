package telemetry

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestInactive(t *testing.T) {
	s := Sample{InRace: true}
	assert.False(t, s.Inactive())

	for _, mod := range []func(*Sample){
		func(s *Sample) { s.InRace = false },
		func(s *Sample) { s.Paused = true },
		func(s *Sample) { s.Replay = true },
		func(s *Sample) { s.MenuOn = true },
	} {
		s := Sample{InRace: true}
		mod(&s)
		assert.True(t, s.Inactive())
	}
}

func TestSurface(t *testing.T) {
	s := Sample{}
	s.Surface[FrontRight] = SurfaceHighKerb
	s.Surface[FrontLeft] = SurfaceGrass

	assert.True(t, s.OnKerb(FrontRight))
	assert.True(t, s.OffAsphalt(FrontRight))
	assert.False(t, s.OnKerb(FrontLeft))
	assert.True(t, s.OffAsphalt(FrontLeft))
	assert.False(t, s.OffAsphalt(RearLeft))
	assert.Equal(t, "RF", FrontRight.String())
}
