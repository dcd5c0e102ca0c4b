package vibration

import (
	"github.com/jd3nn1s/gp2ffb/telemetry"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestSpeedFactor(t *testing.T) {
	assert.InDelta(t, 0.5, speedFactor(5), 1e-9)
	assert.InDelta(t, 0.8, speedFactor(50), 1e-9)
	assert.InDelta(t, 0.9, speedFactor(125), 1e-9)
	assert.Equal(t, 1.0, speedFactor(200))
	assert.Equal(t, 1.0, speedFactor(320))
}

func TestMagnitude(t *testing.T) {
	assert.InDelta(t, 4000, Magnitude(200, 4, 1), 1)
	assert.InDelta(t, 2946, Magnitude(100, 2, 1), 1)
	assert.Equal(t, 50, Magnitude(10, 1, 0.1), "floored at 500*scale")
	assert.Equal(t, 0, Magnitude(250, 4, 0))
}

func TestEffect(t *testing.T) {
	e := Effect{}
	cur := telemetry.Sample{SpeedKmh: 200}

	cmd, _ := e.Next(&cur, 1)
	assert.Equal(t, None, cmd)

	cur.Surface[telemetry.FrontLeft] = telemetry.SurfaceHighKerb
	cur.Surface[telemetry.RearLeft] = telemetry.SurfaceLowKerb
	cur.Surface[telemetry.FrontRight] = telemetry.SurfaceGrass
	assert.Equal(t, 2, TyresOnKerb(&cur))

	cmd, mag := e.Next(&cur, 1)
	assert.Equal(t, Start, cmd)
	assert.InDelta(t, 3400, mag, 1)
	assert.True(t, e.Running())

	cmd, _ = e.Next(&cur, 1)
	assert.Equal(t, Update, cmd)

	// too slow counts as off the kerb
	cur.SpeedKmh = 5
	cmd, _ = e.Next(&cur, 1)
	assert.Equal(t, Stop, cmd)
	assert.False(t, e.Running())

	cmd, _ = e.Next(&cur, 1)
	assert.Equal(t, None, cmd)
}

func TestEffectReset(t *testing.T) {
	e := Effect{}
	cur := telemetry.Sample{SpeedKmh: 80}
	cur.Surface[telemetry.RearRight] = telemetry.SurfaceLowKerb
	cmd, _ := e.Next(&cur, 0.5)
	assert.Equal(t, Start, cmd)

	e.Reset()
	cmd, _ = e.Next(&cur, 0.5)
	assert.Equal(t, Start, cmd)
	assert.Equal(t, "start", cmd.String())
}
