package dsp

// LFOWaveform selects the LFO's output shape.
type LFOWaveform int

const (
	LFOSine LFOWaveform = iota
	LFOTriangle
	LFOSaw
	LFOSquare
	LFOSampleHold
)

// LFO is a phase-accumulator oscillator with a selectable waveform. Advance
// returns a value in [-1, 1]; AdvanceUnipolar returns [0, 1].
type LFO struct {
	sampleRate float32
	freqHz     float32
	phase      float32
	incr       float32
	waveform   LFOWaveform
	lastHold   float32
	rngState   uint32
}

// NewLFO builds an LFO at the given sample rate with a default 1 Hz sine.
func NewLFO(sampleRate float32) *LFO {
	l := &LFO{sampleRate: sampleRate, freqHz: 1, rngState: 0x9e3779b9}
	l.recomputeIncr()
	return l
}

// SetSampleRate recomputes the phase increment for a new rate.
func (l *LFO) SetSampleRate(sampleRate float32) {
	l.sampleRate = sampleRate
	l.recomputeIncr()
}

// SetFrequency sets the LFO rate in Hz.
func (l *LFO) SetFrequency(hz float32) {
	l.freqHz = hz
	l.recomputeIncr()
}

// SetWaveform selects the output shape.
func (l *LFO) SetWaveform(w LFOWaveform) {
	l.waveform = w
}

func (l *LFO) recomputeIncr() {
	if l.sampleRate <= 0 {
		l.incr = 0
		return
	}
	l.incr = l.freqHz / l.sampleRate
}

// Reset returns the LFO to phase zero.
func (l *LFO) Reset() {
	l.phase = 0
	l.lastHold = 0
}

// Advance steps the phase one sample and returns the bipolar output.
func (l *LFO) Advance() float32 {
	var out float32
	switch l.waveform {
	case LFOTriangle:
		if l.phase < 0.5 {
			out = 4*l.phase - 1
		} else {
			out = 3 - 4*l.phase
		}
	case LFOSaw:
		out = 2*l.phase - 1
	case LFOSquare:
		if l.phase < 0.5 {
			out = 1
		} else {
			out = -1
		}
	case LFOSampleHold:
		out = l.lastHold
	default: // LFOSine
		out = FastSin(l.phase * TwoPi)
	}

	l.phase += l.incr
	if l.phase >= 1 {
		l.phase -= 1
		if l.waveform == LFOSampleHold {
			l.lastHold = l.nextRandom()
		}
	} else if l.phase < 0 {
		l.phase += 1
	}
	return out
}

// AdvanceUnipolar is Advance rescaled to [0, 1].
func (l *LFO) AdvanceUnipolar() float32 {
	return (l.Advance() + 1) * 0.5
}

// nextRandom is a small xorshift PRNG, deterministic and allocation-free,
// used only for the sample-and-hold waveform.
func (l *LFO) nextRandom() float32 {
	x := l.rngState
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	l.rngState = x
	return float32(x)/float32(1<<32)*2 - 1
}
