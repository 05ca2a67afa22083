package viewport

import (
	"math"
	"time"
)

// SpringConfig describes a damped harmonic spring. RestDelta and RestSpeed
// decide when the spring is close enough to its target to stop.
type SpringConfig struct {
	Stiffness float64
	Damping   float64
	Mass      float64
	RestDelta float64
	RestSpeed float64
}

// maxSubstep keeps integration stable when a frame takes long.
const maxSubstep = time.Second / 240

// Spring moves Value toward Target. The zero value is not usable; build one
// with NewSpring.
type Spring struct {
	cfg      SpringConfig
	Value    float64
	Target   float64
	Velocity float64
}

func NewSpring(cfg SpringConfig, v float64) *Spring {
	if cfg.Mass <= 0 {
		cfg.Mass = 1
	}
	return &Spring{cfg: cfg, Value: v, Target: v}
}

// Snap jumps to v and kills any motion.
func (s *Spring) Snap(v float64) {
	s.Value, s.Target, s.Velocity = v, v, 0
}

func (s *Spring) Settled() bool {
	return math.Abs(s.Target-s.Value) <= s.cfg.RestDelta && math.Abs(s.Velocity) <= s.cfg.RestSpeed
}

// Step advances the spring by dt and reports whether it is still moving.
func (s *Spring) Step(dt time.Duration) bool {
	if s.Settled() {
		s.Value, s.Velocity = s.Target, 0
		return false
	}
	for dt > 0 {
		h := min(dt, maxSubstep)
		dt -= h
		sec := h.Seconds()
		force := -s.cfg.Stiffness*(s.Value-s.Target) - s.cfg.Damping*s.Velocity
		s.Velocity += force / s.cfg.Mass * sec
		s.Value += s.Velocity * sec
	}
	if s.Settled() {
		s.Value, s.Velocity = s.Target, 0
		return false
	}
	return true
}
