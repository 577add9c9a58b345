// Package effects implements the composite DSP effects: pipelines of
// dsp-package primitives conforming to the effect.Effect contract and
// exposing a param.Info descriptor table apiece.
package effects

import (
	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

// Waveshape selects the distortion curve.
type Waveshape int

const (
	WaveshapeSoftClip Waveshape = iota
	WaveshapeHardClip
	WaveshapeFoldback
	WaveshapeAsymmetric
)

// Distortion is a drive/tone/waveshape/level pipeline: gain, then a
// tone-shaping lowpass, a selectable waveshaper, then output attenuation.
type Distortion struct {
	effect.Base

	sampleRate float32
	waveshape  Waveshape

	drive *dsp.Smoother
	tone  *dsp.Smoother
	level *dsp.Smoother

	toneFilter dsp.Biquad
}

// NewDistortion constructs a distortion effect at sampleRate with unity
// drive/level and a wide-open tone.
func NewDistortion(sampleRate float32) *Distortion {
	d := &Distortion{
		sampleRate: sampleRate,
		drive:      dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		tone:       dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		level:      dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
	}
	d.SetImpl(d)
	d.drive.Set(0)
	d.tone.Set(20000)
	d.level.Set(0)
	d.toneFilter.SetCoefficients(dsp.BiquadLowpass, 20000, sampleRate, 0.707, 0)
	return d
}

func (d *Distortion) Process(x float32) float32 {
	driveLinear := dsp.DbToLinear(d.drive.Advance())
	toned := d.toneFilter.Process(x * driveLinear)
	shaped := shape(d.waveshape, toned)
	return shaped * dsp.DbToLinear(d.level.Advance())
}

func shape(w Waveshape, x float32) float32 {
	switch w {
	case WaveshapeHardClip:
		return dsp.Clamp(x, -1, 1)
	case WaveshapeFoldback:
		for x > 1 || x < -1 {
			if x > 1 {
				x = 2 - x
			}
			if x < -1 {
				x = -2 - x
			}
		}
		return x
	case WaveshapeAsymmetric:
		if x >= 0 {
			return dsp.FastTanh(x)
		}
		return dsp.FastTanh(x * 1.5)
	default: // WaveshapeSoftClip
		return dsp.FastTanh(x)
	}
}

func (d *Distortion) SetSampleRate(sampleRate float32) {
	d.sampleRate = sampleRate
	d.drive.SetSampleRate(sampleRate)
	d.tone.SetSampleRate(sampleRate)
	d.level.SetSampleRate(sampleRate)
	d.toneFilter.SetCoefficients(dsp.BiquadLowpass, d.tone.Current(), sampleRate, 0.707, 0)
}

func (d *Distortion) Reset() {
	d.drive.SnapToTarget()
	d.tone.SnapToTarget()
	d.level.SnapToTarget()
	d.toneFilter.Clear()
}

// Parameter indices for ParamInfo/GetParam/SetParam.
const (
	distParamDrive = iota
	distParamWaveshape
	distParamTone
	distParamLevel
	distParamCount
)

func (d *Distortion) ParamCount() int { return distParamCount }

func (d *Distortion) ParamInfo(i int) param.Descriptor {
	switch i {
	case distParamDrive:
		desc := param.Custom("Drive", "Drive", 0, 40, 0)
		desc.Unit = param.UnitDb
		return desc
	case distParamWaveshape:
		desc := param.Custom("Waveshape", "Shape", 0, 3, 0)
		desc.Flags = param.FlagStepped
		desc.StepLabels = []string{"Soft Clip", "Hard Clip", "Foldback", "Asymmetric"}
		return desc
	case distParamTone:
		desc := param.Custom("Tone", "Tone", 200, 20000, 20000)
		desc.Unit = param.UnitHz
		desc.Scale = param.ScaleLogarithmic
		return desc
	default: // distParamLevel
		desc := param.Custom("Level", "Level", -24, 12, 0)
		desc.Unit = param.UnitDb
		return desc
	}
}

func (d *Distortion) GetParam(i int) float32 {
	switch i {
	case distParamDrive:
		return d.drive.Current()
	case distParamWaveshape:
		return float32(d.waveshape)
	case distParamTone:
		return d.tone.Current()
	default:
		return d.level.Current()
	}
}

func (d *Distortion) SetParam(i int, value float32) {
	desc := d.ParamInfo(i)
	value = desc.Clamp(value)
	switch i {
	case distParamDrive:
		d.drive.SetTarget(value)
	case distParamWaveshape:
		d.waveshape = Waveshape(value)
	case distParamTone:
		d.tone.SetTarget(value)
		d.toneFilter.SetCoefficients(dsp.BiquadLowpass, value, d.sampleRate, 0.707, 0)
	case distParamLevel:
		d.level.SetTarget(value)
	}
}
