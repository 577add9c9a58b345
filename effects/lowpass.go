package effects

import (
	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

// LowPassFilter is a resonant biquad lowpass, one biquad per channel.
type LowPassFilter struct {
	effect.Base

	sampleRate float32

	cutoff    *dsp.Smoother
	resonance float32

	filterL dsp.Biquad
	filterR dsp.Biquad
}

// NewLowPassFilter constructs a lowpass at sampleRate, wide open with a
// gentle Q.
func NewLowPassFilter(sampleRate float32) *LowPassFilter {
	f := &LowPassFilter{
		sampleRate: sampleRate,
		cutoff:     dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		resonance:  0.707,
	}
	f.SetImpl(f)
	f.cutoff.Set(20000)
	f.updateCoefficients(20000)
	return f
}

func (f *LowPassFilter) updateCoefficients(cutoff float32) {
	cutoff = dsp.Clamp(cutoff, 20, 0.475*f.sampleRate)
	f.filterL.SetCoefficients(dsp.BiquadLowpass, cutoff, f.sampleRate, f.resonance, 0)
	f.filterR.SetCoefficients(dsp.BiquadLowpass, cutoff, f.sampleRate, f.resonance, 0)
}

func (f *LowPassFilter) ProcessStereo(left, right float32) (float32, float32) {
	f.cutoff.Advance()
	return f.filterL.Process(left), f.filterR.Process(right)
}

func (f *LowPassFilter) SetSampleRate(sampleRate float32) {
	f.sampleRate = sampleRate
	f.cutoff.SetSampleRate(sampleRate)
	f.updateCoefficients(f.cutoff.Current())
}

func (f *LowPassFilter) Reset() {
	f.cutoff.SnapToTarget()
	f.filterL.Clear()
	f.filterR.Clear()
}

const (
	lowpassParamCutoff = iota
	lowpassParamResonance
	lowpassParamCount
)

func (f *LowPassFilter) ParamCount() int { return lowpassParamCount }

func (f *LowPassFilter) ParamInfo(i int) param.Descriptor {
	switch i {
	case lowpassParamCutoff:
		d := param.Custom("Cutoff", "Cut", 20, 20000, 20000)
		d.Unit = param.UnitHz
		d.Scale = param.ScaleLogarithmic
		return d
	default:
		return param.Custom("Resonance", "Res", 0.5, 10, 0.707)
	}
}

func (f *LowPassFilter) GetParam(i int) float32 {
	switch i {
	case lowpassParamCutoff:
		return f.cutoff.Current()
	default:
		return f.resonance
	}
}

func (f *LowPassFilter) SetParam(i int, value float32) {
	value = f.ParamInfo(i).Clamp(value)
	switch i {
	case lowpassParamCutoff:
		f.cutoff.SetTarget(value)
		f.updateCoefficients(value)
	default:
		f.resonance = value
		f.updateCoefficients(f.cutoff.Current())
	}
}
