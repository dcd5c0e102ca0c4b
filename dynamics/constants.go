package dynamics

import (
	"strings"
)

const Gravity = 9.81 // m/s²

// Constants describes a title's car. Most of these are rough estimates and
// only TireForceScale feeds the current force calculation.
type Constants struct {
	VehicleMass    float64 // kg, car + fuel + driver
	FrontTrack     float64 // m
	RearTrack      float64 // m
	Wheelbase      float64 // m
	YawInertia     float64 // kg·m²
	CGFromFront    float64 // m
	CGFromRear     float64 // m
	TireForceScale float64 // newtons per raw game unit
}

// GP2 is a 1994 F1 car. The force scale comes from observing roughly 460,000
// raw units at 4G with the fronts carrying ~45% of the lateral load.
var GP2 = Constants{
	VehicleMass:    515.0 + 70.0 + 75.0,
	FrontTrack:     1.8,
	RearTrack:      1.68,
	Wheelbase:      3.2,
	YawInertia:     900.0,
	CGFromFront:    1.44,
	CGFromRear:     3.2 - 1.44,
	TireForceScale: 0.0512,
}

var titles = map[string]Constants{
	"x86gp2": GP2,
}

// ConstantsFor returns the constants for a game title, falling back to GP2
// when the title is unknown.
func ConstantsFor(title string) Constants {
	if c, ok := titles[strings.ToLower(title)]; ok {
		return c
	}
	return GP2
}

// ConvertForce converts a raw tire force to newtons. The sign is kept, it
// encodes turn direction and braking vs accelerating.
func (c Constants) ConvertForce(raw int32) float64 {
	return float64(raw) * c.TireForceScale
}
