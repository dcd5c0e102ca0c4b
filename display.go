package gp2ffb

import (
	"context"
	"fmt"
	"github.com/jd3nn1s/gp2ffb/dynamics"
	"github.com/jd3nn1s/gp2ffb/logring"
	"github.com/jd3nn1s/gp2ffb/telemetry"
	"io"
	"time"
)

// DisplayInterval refreshes the display at about 15Hz.
const DisplayInterval = 66680 * time.Microsecond

const clearScreen = "\033[H\033[2J"

type Display struct {
	ffb  *FFB
	logs *logring.Ring
	out  io.Writer
}

func NewDisplay(ffb *FFB, logs *logring.Ring, out io.Writer) *Display {
	return &Display{
		ffb:  ffb,
		logs: logs,
		out:  out,
	}
}

func (d *Display) Run(ctx context.Context) {
	ticker := time.NewTicker(DisplayInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		fmt.Fprint(d.out, clearScreen)
		d.Render(d.ffb.Snapshot())
	}
}

func (d *Display) Render(s Snapshot) {
	w := d.out
	state := "active"
	if s.Paused {
		state = "paused"
	}
	fmt.Fprintf(w, "tick %-8d %s  device %d\n", s.Tick, state, s.DeviceID)
	fmt.Fprintf(w, "speed      %8.2f km/h\n", s.SpeedKmh)
	fmt.Fprintf(w, "lateral G  %8.2f  %s\n", s.Estimate.LateralG, directionName(s.Estimate.Direction))
	fmt.Fprintf(w, "front      LF %9.2f N  RF %9.2f N\n", s.Estimate.LatFL, s.Estimate.LatFR)
	fmt.Fprintf(w, "long       LF %9.2f N  RF %9.2f N\n", s.Estimate.LongFL, s.Estimate.LongFR)
	fmt.Fprintf(w, "surface   ")
	for wheel := telemetry.RearLeft; wheel <= telemetry.FrontRight; wheel++ {
		fmt.Fprintf(w, " %s:%d", wheel, s.Surface[wheel])
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "front load %8.2f N\n", s.FrontLoad)
	fmt.Fprintf(w, "force      %8.2f  magnitude %6d  sent %t\n", s.Force, s.Magnitude, s.Sent)
	fmt.Fprintf(w, "vibration  %6d\n", s.Vibration)
	if s.WheelTemp != 0 || s.WheelFault != 0 {
		fmt.Fprintf(w, "wheel      %d C  fault %d\n", s.WheelTemp, s.WheelFault)
	}
	if d.logs != nil {
		for _, line := range d.logs.RecentUnique(1) {
			fmt.Fprintf(w, "%-80s\n", line)
		}
	}
}

func directionName(dir int) string {
	switch dir {
	case dynamics.DirectionLeft:
		return "left"
	case dynamics.DirectionRight:
		return "right"
	}
	return "straight"
}
