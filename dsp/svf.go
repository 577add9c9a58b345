package dsp

import "math"

// SVFOutput selects which of the SVF's simultaneous outputs Process returns.
type SVFOutput int

const (
	SVFLowpass SVFOutput = iota
	SVFHighpass
	SVFBandpass
	SVFNotch
)

// StateVariableFilter is a Chamberlin-topology SVF producing lowpass,
// highpass, bandpass and notch outputs from a single cycle. Stable for
// cutoff below Nyquist/3 at Q from about 0.67 up to 10; SetResonance accepts
// Q down to 0.5, where the top of that cutoff range is not stable.
type StateVariableFilter struct {
	sampleRate float32
	cutoff     float32
	resonance  float32
	outputType SVFOutput

	f  float32
	q  float32
	lp float32
	bp float32
}

// NewStateVariableFilter constructs an SVF at the given sample rate with a
// default cutoff of 1 kHz and a default resonance of 0.707 (Butterworth).
func NewStateVariableFilter(sampleRate float32) *StateVariableFilter {
	s := &StateVariableFilter{sampleRate: sampleRate, resonance: 0.707}
	s.SetCutoff(1000)
	return s
}

// SetSampleRate recomputes rate-dependent coefficients.
func (s *StateVariableFilter) SetSampleRate(sampleRate float32) {
	s.sampleRate = sampleRate
	s.SetCutoff(s.cutoff)
}

// SetCutoff sets the corner frequency in Hz, clamped below Nyquist/3 so the
// Chamberlin topology stays stable at the configured resonance.
func (s *StateVariableFilter) SetCutoff(hz float32) {
	limit := s.sampleRate / 6
	if hz > limit {
		hz = limit
	}
	if hz < 1 {
		hz = 1
	}
	s.cutoff = hz
	s.f = float32(2 * math.Sin(math.Pi*float64(hz)/float64(s.sampleRate)))
	s.recomputeQ()
}

// SetResonance sets Q, clamped to [0.5, 10].
func (s *StateVariableFilter) SetResonance(q float32) {
	s.resonance = Clamp(q, 0.5, 10)
	s.recomputeQ()
}

func (s *StateVariableFilter) recomputeQ() {
	s.q = 1 / s.resonance
}

// SetOutputType selects which tap Process returns.
func (s *StateVariableFilter) SetOutputType(t SVFOutput) {
	s.outputType = t
}

// Reset clears filter state without touching cutoff/resonance.
func (s *StateVariableFilter) Reset() {
	s.lp = 0
	s.bp = 0
}

// Process runs one sample through all four taps and returns the configured
// output type.
func (s *StateVariableFilter) Process(x float32) float32 {
	hp := x - s.lp - s.q*s.bp
	s.bp = FlushDenormal(s.bp + s.f*hp)
	s.lp = FlushDenormal(s.lp + s.f*s.bp)
	notch := hp + s.lp

	switch s.outputType {
	case SVFHighpass:
		return hp
	case SVFBandpass:
		return s.bp
	case SVFNotch:
		return notch
	default:
		return s.lp
	}
}
