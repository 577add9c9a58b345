package dsp

import "math"

// ADSRStage names the four segments of an ADSR envelope plus idle.
type ADSRStage int

const (
	ADSRIdle ADSRStage = iota
	ADSRAttack
	ADSRDecay
	ADSRSustain
	ADSRRelease
)

// ADSR is a four-segment linear-time envelope with gate on/off semantics.
// Each segment's per-sample increment is recomputed whenever its time or the
// sample rate changes.
type ADSR struct {
	sampleRate float32
	attackMs   float32
	decayMs    float32
	sustain    float32
	releaseMs  float32

	stage ADSRStage
	level float32
	incr  float32
}

// NewADSR builds an ADSR at the given sample rate with reasonable defaults
// (10ms attack, 100ms decay, full sustain, 200ms release).
func NewADSR(sampleRate float32) *ADSR {
	a := &ADSR{sampleRate: sampleRate, attackMs: 10, decayMs: 100, sustain: 1, releaseMs: 200}
	return a
}

// SetSampleRate recomputes the current segment's increment for the new rate.
func (a *ADSR) SetSampleRate(sampleRate float32) {
	a.sampleRate = sampleRate
	a.recomputeIncr()
}

// SetAttack, SetDecay, SetSustain, SetRelease configure the envelope shape.
func (a *ADSR) SetAttack(ms float32) {
	a.attackMs = ms
	a.recomputeIncr()
}
func (a *ADSR) SetDecay(ms float32) {
	a.decayMs = ms
	a.recomputeIncr()
}
func (a *ADSR) SetSustain(level float32) {
	a.sustain = Clamp(level, 0, 1)
}
func (a *ADSR) SetRelease(ms float32) {
	a.releaseMs = ms
	a.recomputeIncr()
}

// GateOn starts (or restarts) the attack segment from the current level.
func (a *ADSR) GateOn() {
	a.stage = ADSRAttack
	a.recomputeIncr()
}

// GateOff starts the release segment from the current level.
func (a *ADSR) GateOff() {
	a.stage = ADSRRelease
	a.recomputeIncr()
}

// Reset returns the envelope to idle at zero level.
func (a *ADSR) Reset() {
	a.stage = ADSRIdle
	a.level = 0
	a.incr = 0
}

func (a *ADSR) recomputeIncr() {
	switch a.stage {
	case ADSRAttack:
		a.incr = segmentIncr(a.attackMs, a.sampleRate, 1-a.level)
	case ADSRDecay:
		a.incr = -segmentIncr(a.decayMs, a.sampleRate, 1-a.sustain)
	case ADSRRelease:
		a.incr = -segmentIncr(a.releaseMs, a.sampleRate, a.level)
	}
}

func segmentIncr(ms, sampleRate, span float32) float32 {
	if ms <= 0 {
		return span
	}
	samples := ms * 0.001 * sampleRate
	if samples < 1 {
		samples = 1
	}
	return span / samples
}

// Advance steps the envelope one sample and returns the current level.
func (a *ADSR) Advance() float32 {
	switch a.stage {
	case ADSRAttack:
		a.level += a.incr
		if a.level >= 1 {
			a.level = 1
			a.stage = ADSRDecay
			a.recomputeIncr()
		}
	case ADSRDecay:
		a.level += a.incr
		if a.level <= a.sustain {
			a.level = a.sustain
			a.stage = ADSRSustain
			a.incr = 0
		}
	case ADSRSustain:
		a.level = a.sustain
	case ADSRRelease:
		a.level += a.incr
		if a.level <= 0 {
			a.level = 0
			a.stage = ADSRIdle
			a.incr = 0
		}
	}
	return a.level
}

// IsActive reports whether the envelope is producing non-zero output.
func (a *ADSR) IsActive() bool {
	return a.stage != ADSRIdle
}

// EnvelopeFollower is a one-pole amplitude tracker with separate attack and
// release time constants, used to drive auto-wah and compressor detectors.
type EnvelopeFollower struct {
	sampleRate  float32
	attackMs    float32
	releaseMs   float32
	attackCoef  float32
	releaseCoef float32
	envelope    float32
}

// NewEnvelopeFollower builds a follower at the given sample rate.
func NewEnvelopeFollower(sampleRate float32) *EnvelopeFollower {
	e := &EnvelopeFollower{sampleRate: sampleRate, attackMs: 10, releaseMs: 100}
	e.recompute()
	return e
}

// SetSampleRate recomputes the attack/release coefficients for a new rate.
func (e *EnvelopeFollower) SetSampleRate(sampleRate float32) {
	e.sampleRate = sampleRate
	e.recompute()
}

// SetAttack and SetRelease configure the follower's time constants in ms.
func (e *EnvelopeFollower) SetAttack(ms float32) {
	e.attackMs = ms
	e.recompute()
}
func (e *EnvelopeFollower) SetRelease(ms float32) {
	e.releaseMs = ms
	e.recompute()
}

func (e *EnvelopeFollower) recompute() {
	e.attackCoef = timeConstantCoeff(e.attackMs, e.sampleRate)
	e.releaseCoef = timeConstantCoeff(e.releaseMs, e.sampleRate)
}

func timeConstantCoeff(ms, sampleRate float32) float32 {
	if ms <= 0 || sampleRate <= 0 {
		return 0
	}
	return float32(math.Exp(-1.0 / (float64(ms) * 0.001 * float64(sampleRate))))
}

// Reset zeros the tracked envelope.
func (e *EnvelopeFollower) Reset() {
	e.envelope = 0
}

// Process feeds one sample's instantaneous magnitude through the follower
// and returns the smoothed envelope.
func (e *EnvelopeFollower) Process(x float32) float32 {
	mag := x
	if mag < 0 {
		mag = -mag
	}
	var coeff float32
	if mag > e.envelope {
		coeff = e.attackCoef
	} else {
		coeff = e.releaseCoef
	}
	e.envelope = mag + coeff*(e.envelope-mag)
	e.envelope = FlushDenormal(e.envelope)
	return e.envelope
}
