package effects

import (
	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

// ParametricEQ is three cascaded peaking-EQ biquads with independent
// frequency/gain/Q per band, coefficients recomputed whenever a parameter
// moves and cutoff clamped to 95% Nyquist (enforced inside Biquad itself).
type ParametricEQ struct {
	effect.Base

	sampleRate float32
	bands      [3]dsp.Biquad

	freq [3]*dsp.Smoother
	gain [3]*dsp.Smoother
	q    [3]*dsp.Smoother
}

var eqDefaultFreq = [3]float32{100, 1000, 5000}
var eqDefaultFreqRange = [3][2]float32{{20, 500}, {200, 5000}, {1000, 15000}}

// NewParametricEQ constructs a 3-band EQ at sampleRate, flat by default.
func NewParametricEQ(sampleRate float32) *ParametricEQ {
	e := &ParametricEQ{sampleRate: sampleRate}
	e.SetImpl(e)
	for i := 0; i < 3; i++ {
		e.freq[i] = dsp.NewSmoother(dsp.FastSmoothMs, sampleRate)
		e.gain[i] = dsp.NewSmoother(dsp.FastSmoothMs, sampleRate)
		e.q[i] = dsp.NewSmoother(dsp.FastSmoothMs, sampleRate)
		e.freq[i].Set(eqDefaultFreq[i])
		e.gain[i].Set(0)
		e.q[i].Set(1.0)
	}
	e.recomputeAll()
	return e
}

func (e *ParametricEQ) recomputeAll() {
	for i := 0; i < 3; i++ {
		e.bands[i].SetCoefficients(dsp.BiquadPeaking, e.freq[i].Current(), e.sampleRate, e.q[i].Current(), e.gain[i].Current())
	}
}

func (e *ParametricEQ) Process(x float32) float32 {
	out := x
	changed := false
	for i := 0; i < 3; i++ {
		if !e.freq[i].IsSettled() || !e.gain[i].IsSettled() || !e.q[i].IsSettled() {
			changed = true
		}
		e.freq[i].Advance()
		e.gain[i].Advance()
		e.q[i].Advance()
	}
	if changed {
		e.recomputeAll()
	}
	for i := 0; i < 3; i++ {
		out = e.bands[i].Process(out)
	}
	return out
}

func (e *ParametricEQ) SetSampleRate(sampleRate float32) {
	e.sampleRate = sampleRate
	for i := 0; i < 3; i++ {
		e.freq[i].SetSampleRate(sampleRate)
		e.gain[i].SetSampleRate(sampleRate)
		e.q[i].SetSampleRate(sampleRate)
	}
	e.recomputeAll()
}

func (e *ParametricEQ) Reset() {
	for i := 0; i < 3; i++ {
		e.freq[i].SnapToTarget()
		e.gain[i].SnapToTarget()
		e.q[i].SnapToTarget()
		e.bands[i].Clear()
	}
}

func (e *ParametricEQ) ParamCount() int { return 9 }

func (e *ParametricEQ) ParamInfo(i int) param.Descriptor {
	band := i / 3
	field := i % 3
	names := [3]string{"Low", "Mid", "High"}
	switch field {
	case 0:
		d := param.Custom(names[band]+" Freq", names[band]+"F", eqDefaultFreqRange[band][0], eqDefaultFreqRange[band][1], eqDefaultFreq[band])
		d.Unit = param.UnitHz
		d.Scale = param.ScaleLogarithmic
		return d
	case 1:
		d := param.Custom(names[band]+" Gain", names[band]+"G", -12, 12, 0)
		d.Unit = param.UnitDb
		return d
	default:
		return param.Custom(names[band]+" Q", names[band]+"Q", 0.5, 5.0, 1.0)
	}
}

func (e *ParametricEQ) GetParam(i int) float32 {
	band := i / 3
	field := i % 3
	switch field {
	case 0:
		return e.freq[band].Current()
	case 1:
		return e.gain[band].Current()
	default:
		return e.q[band].Current()
	}
}

func (e *ParametricEQ) SetParam(i int, value float32) {
	value = e.ParamInfo(i).Clamp(value)
	band := i / 3
	field := i % 3
	switch field {
	case 0:
		e.freq[band].SetTarget(value)
	case 1:
		e.gain[band].SetTarget(value)
	default:
		e.q[band].SetTarget(value)
	}
}
