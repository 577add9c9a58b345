package effects

import (
	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

const (
	wahModeManual = 0
	wahModeAuto   = 1
)

// Wah is a swept bandpass filter, either driven by an LFO ramp ("manual"
// pedal sweep emulated by rate) or by an input envelope follower ("auto").
type Wah struct {
	effect.Base

	sampleRate float32
	svf        dsp.StateVariableFilter
	env        *dsp.EnvelopeFollower
	lfo        *dsp.LFO

	mode       int
	minHz      *dsp.Smoother
	maxHz      *dsp.Smoother
	rate       *dsp.Smoother
	resonance  *dsp.Smoother
	sensitivity *dsp.Smoother
}

// NewWah constructs an auto-wah at sampleRate sweeping 400Hz-2000Hz.
func NewWah(sampleRate float32) *Wah {
	w := &Wah{
		sampleRate:  sampleRate,
		env:         dsp.NewEnvelopeFollower(sampleRate),
		lfo:         dsp.NewLFO(sampleRate),
		mode:        wahModeAuto,
		minHz:       dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		maxHz:       dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		rate:        dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		resonance:   dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		sensitivity: dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
	}
	w.SetImpl(w)
	w.minHz.Set(400)
	w.maxHz.Set(2000)
	w.rate.Set(2)
	w.resonance.Set(5)
	w.sensitivity.Set(0.5)
	w.env.SetAttack(5)
	w.env.SetRelease(150)
	w.svf = *dsp.NewStateVariableFilter(sampleRate)
	w.svf.SetOutputType(dsp.SVFBandpass)
	return w
}

func (w *Wah) Process(x float32) float32 {
	var t float32
	switch w.mode {
	case wahModeManual:
		w.lfo.SetFrequency(w.rate.Advance())
		t = w.lfo.AdvanceUnipolar()
	default:
		w.rate.Advance()
		level := w.env.Process(x)
		t = dsp.Clamp(level*w.sensitivity.Advance()*4, 0, 1)
	}

	minHz := w.minHz.Advance()
	maxHz := w.maxHz.Advance()
	cutoff := minHz + t*(maxHz-minHz)
	w.svf.SetCutoff(cutoff)
	w.svf.SetResonance(w.resonance.Advance())

	return w.svf.Process(x)
}

func (w *Wah) SetSampleRate(sampleRate float32) {
	w.sampleRate = sampleRate
	w.svf.SetSampleRate(sampleRate)
	w.env.SetSampleRate(sampleRate)
	w.lfo.SetSampleRate(sampleRate)
	w.minHz.SetSampleRate(sampleRate)
	w.maxHz.SetSampleRate(sampleRate)
	w.rate.SetSampleRate(sampleRate)
	w.resonance.SetSampleRate(sampleRate)
	w.sensitivity.SetSampleRate(sampleRate)
}

func (w *Wah) Reset() {
	w.svf.Reset()
	w.env.Reset()
	w.lfo.Reset()
	w.minHz.SnapToTarget()
	w.maxHz.SnapToTarget()
	w.rate.SnapToTarget()
	w.resonance.SnapToTarget()
	w.sensitivity.SnapToTarget()
}

const (
	wahParamMode = iota
	wahParamMinFreq
	wahParamMaxFreq
	wahParamRate
	wahParamResonance
	wahParamSensitivity
	wahParamCount
)

func (w *Wah) ParamCount() int { return wahParamCount }

func (w *Wah) ParamInfo(i int) param.Descriptor {
	switch i {
	case wahParamMode:
		d := param.Custom("Mode", "Mode", 0, 1, 1)
		d.Flags = param.FlagStepped
		d.StepLabels = []string{"Manual", "Auto"}
		return d
	case wahParamMinFreq:
		d := param.Custom("Min Freq", "MinF", 100, 2000, 400)
		d.Unit = param.UnitHz
		d.Scale = param.ScaleLogarithmic
		return d
	case wahParamMaxFreq:
		d := param.Custom("Max Freq", "MaxF", 500, 5000, 2000)
		d.Unit = param.UnitHz
		d.Scale = param.ScaleLogarithmic
		return d
	case wahParamRate:
		d := param.Custom("Rate", "Rate", 0.1, 10, 2)
		d.Unit = param.UnitHz
		d.Scale = param.ScaleLogarithmic
		return d
	case wahParamResonance:
		return param.Custom("Resonance", "Res", 0.5, 10, 5)
	default:
		return param.Custom("Sensitivity", "Sens", 0, 1, 0.5)
	}
}

func (w *Wah) GetParam(i int) float32 {
	switch i {
	case wahParamMode:
		return float32(w.mode)
	case wahParamMinFreq:
		return w.minHz.Current()
	case wahParamMaxFreq:
		return w.maxHz.Current()
	case wahParamRate:
		return w.rate.Current()
	case wahParamResonance:
		return w.resonance.Current()
	default:
		return w.sensitivity.Current()
	}
}

func (w *Wah) SetParam(i int, value float32) {
	value = w.ParamInfo(i).Clamp(value)
	switch i {
	case wahParamMode:
		w.mode = int(value)
	case wahParamMinFreq:
		w.minHz.SetTarget(value)
	case wahParamMaxFreq:
		w.maxHz.SetTarget(value)
	case wahParamRate:
		w.rate.SetTarget(value)
	case wahParamResonance:
		w.resonance.SetTarget(value)
	default:
		w.sensitivity.SetTarget(value)
	}
}
