package dsp

import "math"

// FastSmoothMs and StandardSmoothMs are the two pre-configured time constants
// used throughout the composite effects: fast for parameters a user might
// drag rapidly (frequency, gain), standard for parameters that should sound
// continuous as they move (depth, mix).
const (
	FastSmoothMs     = 5.0
	StandardSmoothMs = 20.0
)

// Smoother ramps exponentially from its current value toward a target, one
// sample at a time. advance() is O(1): one multiply-add per sample.
type Smoother struct {
	current    float32
	target     float32
	coeff      float32
	timeMs     float32
	sampleRate float32
}

// NewSmoother builds a smoother with the given time constant at the given
// sample rate, starting settled at 0.
func NewSmoother(timeMs, sampleRate float32) *Smoother {
	s := &Smoother{timeMs: timeMs}
	s.SetSampleRate(sampleRate)
	return s
}

// SetSampleRate recomputes the smoothing coefficient for a new sample rate.
func (s *Smoother) SetSampleRate(sampleRate float32) {
	s.sampleRate = sampleRate
	if s.timeMs <= 0 || sampleRate <= 0 {
		s.coeff = 0
		return
	}
	samples := s.timeMs * 0.001 * sampleRate
	s.coeff = float32(math.Exp(-1.0 / float64(samples)))
}

// SetTarget sets the value the smoother ramps toward.
func (s *Smoother) SetTarget(x float32) {
	s.target = x
}

// Advance steps the smoother one sample toward its target and returns the
// new current value.
func (s *Smoother) Advance() float32 {
	s.current = s.target + s.coeff*(s.current-s.target)
	s.current = FlushDenormal(s.current)
	return s.current
}

// Current returns the smoother's value without advancing it.
func (s *Smoother) Current() float32 {
	return s.current
}

// SnapToTarget immediately sets current equal to target, avoiding an audible
// ramp on playback start. Used by effect Reset implementations.
func (s *Smoother) SnapToTarget() {
	s.current = s.target
}

// Set is a convenience for SetTarget followed by SnapToTarget, used when
// initialising a parameter to a known value at construction time.
func (s *Smoother) Set(x float32) {
	s.target = x
	s.current = x
}

// IsSettled reports whether current has converged to target within a small
// epsilon, useful for tests that must wait out a smoothing ramp.
func (s *Smoother) IsSettled() bool {
	d := s.current - s.target
	return d > -1e-4 && d < 1e-4
}
