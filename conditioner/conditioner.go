// Package conditioner smooths the shaped force into an actuator magnitude
// and optionally rate limits how often it is sent. Rate limiting is for
// wheels that cannot take updates every tick; it trades latency for less
// chatter.
package conditioner

import (
	"math"
)

const (
	HistorySize = 2

	directionFull      = 10000
	directionSmoothing = 0.3

	magnitudeJump      = 400
	directionJump      = 2000
	magnitudeDrift     = 300
	directionDrift     = 1500
	updateTimeoutTicks = 12

	neverSent = -1
)

// Scales are fractions in [0, 1].
type Scales struct {
	Master   float64
	Constant float64
}

// State is the conditioner's memory between ticks.
type State struct {
	history []int

	direction              int
	lastSentDirection      int
	lastSentMagnitude      int
	lastProcessedMagnitude int
	framesSinceUpdate      int
	accMagnitude           float64
	accDirection           float64
}

func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset puts the state back to how it was before the first tick.
func (s *State) Reset() {
	*s = State{
		history:                make([]int, 0, HistorySize+1),
		lastSentMagnitude:      neverSent,
		lastProcessedMagnitude: neverSent,
	}
}

// Direction is the smoothed rate-limit direction, for display.
func (s *State) Direction() int {
	return s.direction
}

// Push adds a magnitude to the history and returns the truncated mean.
func (s *State) Push(magnitude int) int {
	s.history = append(s.history, magnitude)
	if len(s.history) > HistorySize {
		s.history = s.history[1:]
	}
	sum := 0.0
	for _, m := range s.history {
		sum += float64(m)
	}
	return int(sum / float64(len(s.history)))
}

// Condition turns a shaped force into the magnitude to send and reports
// whether it should be sent this tick.
func Condition(force float64, s *State, scales Scales, rateLimit bool) (int, bool) {
	if s.history == nil {
		s.Reset()
	}
	signed := int(force * scales.Master * scales.Constant)
	smoothed := s.Push(signed)

	if !rateLimit {
		return smoothed, true
	}
	return smoothed, s.shouldUpdate(force, abs(signed))
}

func (s *State) shouldUpdate(force float64, magnitude int) bool {
	// direction is inverted on purpose, positive force pulls negative
	target := 0
	if force > 0 {
		target = -directionFull
	} else if force < 0 {
		target = directionFull
	}
	s.direction = int((1-directionSmoothing)*float64(s.direction) + directionSmoothing*float64(target))

	if s.lastSentMagnitude != neverSent {
		s.accMagnitude += math.Abs(float64(magnitude - s.lastProcessedMagnitude))
		s.accDirection += math.Abs(float64(s.direction - s.lastSentDirection))
	}
	s.framesSinceUpdate++

	update := false
	switch {
	case abs(magnitude-s.lastSentMagnitude) >= magnitudeJump ||
		abs(s.direction-s.lastSentDirection) >= directionJump:
		update = true
	case s.accMagnitude >= magnitudeDrift || s.accDirection >= directionDrift:
		update = true
	case sign(s.direction) != sign(s.lastSentDirection):
		update = true
	case s.framesSinceUpdate >= updateTimeoutTicks:
		update = true
	case magnitude == 0 && s.lastSentMagnitude != 0:
		update = true
	}

	s.lastProcessedMagnitude = magnitude
	if !update {
		return false
	}

	s.lastSentMagnitude = magnitude
	s.lastSentDirection = s.direction
	s.framesSinceUpdate = 0
	s.accMagnitude = 0
	s.accDirection = 0
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
