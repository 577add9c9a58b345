package effects

import (
	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

// TapeSaturation approximates analog tape warmth: a tanh saturator driven by
// the saturation amount, with makeup gain so perceived level stays roughly
// constant as saturation increases, followed by a gentle high-frequency
// rolloff whose corner is set by the separate Tone parameter.
type TapeSaturation struct {
	effect.Base

	sampleRate float32

	saturation *dsp.Smoother
	tone       *dsp.Smoother

	rolloffL dsp.Biquad
	rolloffR dsp.Biquad
}

// NewTapeSaturation constructs a tape saturator at sampleRate with light
// saturation and a 12 kHz tone corner.
func NewTapeSaturation(sampleRate float32) *TapeSaturation {
	t := &TapeSaturation{
		sampleRate: sampleRate,
		saturation: dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		tone:       dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
	}
	t.SetImpl(t)
	t.saturation.Set(0.3)
	t.tone.Set(12000)
	t.updateRolloff(12000)
	return t
}

func (t *TapeSaturation) updateRolloff(cutoff float32) {
	cutoff = dsp.Clamp(cutoff, 1000, 0.475*t.sampleRate)
	t.rolloffL.SetCoefficients(dsp.BiquadLowpass, cutoff, t.sampleRate, 0.707, 0)
	t.rolloffR.SetCoefficients(dsp.BiquadLowpass, cutoff, t.sampleRate, 0.707, 0)
}

// saturate applies the drive/tanh/makeup curve shared by both channels.
func (t *TapeSaturation) saturate(x, amount float32) float32 {
	drive := 1 + amount*4
	makeup := 1 / dsp.FastTanh(drive)
	return dsp.FastTanh(x*drive) * makeup
}

func (t *TapeSaturation) ProcessStereo(left, right float32) (float32, float32) {
	amount := t.saturation.Advance()
	t.tone.Advance()
	l := t.rolloffL.Process(t.saturate(left, amount))
	r := t.rolloffR.Process(t.saturate(right, amount))
	return l, r
}

func (t *TapeSaturation) SetSampleRate(sampleRate float32) {
	t.sampleRate = sampleRate
	t.saturation.SetSampleRate(sampleRate)
	t.tone.SetSampleRate(sampleRate)
	t.updateRolloff(t.tone.Current())
}

func (t *TapeSaturation) Reset() {
	t.saturation.SnapToTarget()
	t.tone.SnapToTarget()
	t.rolloffL.Clear()
	t.rolloffR.Clear()
}

const (
	tapeParamSaturation = iota
	tapeParamTone
	tapeParamCount
)

func (t *TapeSaturation) ParamCount() int { return tapeParamCount }

func (t *TapeSaturation) ParamInfo(i int) param.Descriptor {
	switch i {
	case tapeParamSaturation:
		// Preset files written before the rename carry this as "warmth";
		// preset loading resolves that through the legacy alias table.
		return param.Custom("Saturation", "Sat", 0, 1, 0.3)
	default:
		d := param.Custom("Tone", "Tone", 1000, 20000, 12000)
		d.Unit = param.UnitHz
		d.Scale = param.ScaleLogarithmic
		return d
	}
}

func (t *TapeSaturation) GetParam(i int) float32 {
	switch i {
	case tapeParamSaturation:
		return t.saturation.Current()
	default:
		return t.tone.Current()
	}
}

func (t *TapeSaturation) SetParam(i int, value float32) {
	value = t.ParamInfo(i).Clamp(value)
	switch i {
	case tapeParamSaturation:
		t.saturation.SetTarget(value)
	default:
		t.tone.SetTarget(value)
		t.updateRolloff(value)
	}
}
