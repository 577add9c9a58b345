package effects

import (
	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

const maxDelayMs = 2000.0

// Delay is a feedback delay line with a two-pole (RBJ biquad) lowpass in the
// feedback path ("tape-style"), smoothed time for a tape-slew effect on
// changes.
type Delay struct {
	effect.Base

	sampleRate float32
	line       *dsp.DelayLine
	dampFilter dsp.Biquad

	timeMs   *dsp.Smoother
	feedback *dsp.Smoother
	mix      *dsp.Smoother
	damping  *dsp.Smoother
}

// NewDelay constructs a delay at sampleRate with 300ms time, 30% feedback,
// 30% mix.
func NewDelay(sampleRate float32) *Delay {
	d := &Delay{
		sampleRate: sampleRate,
		line:       dsp.NewDelayLine(int(maxDelayMs*0.001*sampleRate)+1, dsp.InterpLinear),
		timeMs:     dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		feedback:   dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		mix:        dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		damping:    dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
	}
	d.SetImpl(d)
	d.timeMs.Set(300)
	d.feedback.Set(0.3)
	d.mix.Set(0.3)
	d.damping.Set(0.2)
	d.dampFilter.SetCoefficients(dsp.BiquadLowpass, 4000, sampleRate, 0.707, 0)
	return d
}

func (d *Delay) Process(x float32) float32 {
	delaySamples := d.timeMs.Advance() * 0.001 * d.sampleRate
	wet := d.line.Read(delaySamples)
	damped := d.dampFilter.Process(wet)
	d.line.Write(dsp.FlushDenormal(x + damped*d.feedback.Advance()))
	return dsp.Mix(x, wet, d.mix.Advance())
}

func (d *Delay) SetSampleRate(sampleRate float32) {
	d.sampleRate = sampleRate
	d.timeMs.SetSampleRate(sampleRate)
	d.feedback.SetSampleRate(sampleRate)
	d.mix.SetSampleRate(sampleRate)
	d.damping.SetSampleRate(sampleRate)
	d.dampFilter.SetCoefficients(dsp.BiquadLowpass, 1000+d.damping.Current()*8000, sampleRate, 0.707, 0)
	d.line = dsp.NewDelayLine(int(maxDelayMs*0.001*sampleRate)+1, dsp.InterpLinear)
}

func (d *Delay) Reset() {
	d.line.Clear()
	d.dampFilter.Clear()
	d.timeMs.SnapToTarget()
	d.feedback.SnapToTarget()
	d.mix.SnapToTarget()
	d.damping.SnapToTarget()
}

const (
	delayParamTime = iota
	delayParamFeedback
	delayParamMix
	delayParamDamping
	delayParamCount
)

func (d *Delay) ParamCount() int { return delayParamCount }

func (d *Delay) ParamInfo(i int) param.Descriptor {
	switch i {
	case delayParamTime:
		desc := param.Custom("Time", "Time", 1, maxDelayMs, 300)
		desc.Unit = param.UnitMs
		return desc
	case delayParamFeedback:
		return param.Custom("Feedback", "FB", 0, 0.95, 0.3)
	case delayParamMix:
		return param.Custom("Mix", "Mix", 0, 1, 0.3)
	default:
		return param.Custom("Damping", "Damp", 0, 1, 0.2)
	}
}

func (d *Delay) GetParam(i int) float32 {
	switch i {
	case delayParamTime:
		return d.timeMs.Current()
	case delayParamFeedback:
		return d.feedback.Current()
	case delayParamMix:
		return d.mix.Current()
	default:
		return d.damping.Current()
	}
}

func (d *Delay) SetParam(i int, value float32) {
	value = d.ParamInfo(i).Clamp(value)
	switch i {
	case delayParamTime:
		d.timeMs.SetTarget(value)
	case delayParamFeedback:
		d.feedback.SetTarget(value)
	case delayParamMix:
		d.mix.SetTarget(value)
	default:
		d.damping.SetTarget(value)
		d.dampFilter.SetCoefficients(dsp.BiquadLowpass, 1000+value*8000, d.sampleRate, 0.707, 0)
	}
}
