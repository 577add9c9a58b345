package effects

import (
	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

// RingMod multiplies the input by a carrier oscillator, producing sum/
// difference sidebands characteristic of ring modulation.
type RingMod struct {
	effect.Base

	sampleRate float32
	carrier    *dsp.LFO

	frequency *dsp.Smoother
	mix       *dsp.Smoother
}

// NewRingMod constructs a ring modulator at sampleRate with a 200Hz sine
// carrier and full wet mix.
func NewRingMod(sampleRate float32) *RingMod {
	r := &RingMod{
		sampleRate: sampleRate,
		carrier:    dsp.NewLFO(sampleRate),
		frequency:  dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		mix:        dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
	}
	r.SetImpl(r)
	r.frequency.Set(200)
	r.mix.Set(1)
	return r
}

func (r *RingMod) Process(x float32) float32 {
	r.carrier.SetFrequency(r.frequency.Advance())
	modulated := x * r.carrier.Advance()
	return dsp.Mix(x, modulated, r.mix.Advance())
}

func (r *RingMod) SetSampleRate(sampleRate float32) {
	r.sampleRate = sampleRate
	r.carrier.SetSampleRate(sampleRate)
	r.frequency.SetSampleRate(sampleRate)
	r.mix.SetSampleRate(sampleRate)
}

func (r *RingMod) Reset() {
	r.carrier.Reset()
	r.frequency.SnapToTarget()
	r.mix.SnapToTarget()
}

const (
	ringParamFrequency = iota
	ringParamMix
	ringParamCount
)

func (r *RingMod) ParamCount() int { return ringParamCount }

func (r *RingMod) ParamInfo(i int) param.Descriptor {
	switch i {
	case ringParamFrequency:
		d := param.Custom("Frequency", "Freq", 1, 5000, 200)
		d.Unit = param.UnitHz
		d.Scale = param.ScaleLogarithmic
		return d
	default: // ringParamMix
		d := param.Custom("Mix", "Mix", 0, 1, 1)
		d.Unit = param.UnitPercent
		return d
	}
}

func (r *RingMod) GetParam(i int) float32 {
	switch i {
	case ringParamFrequency:
		return r.frequency.Current()
	default:
		return r.mix.Current()
	}
}

func (r *RingMod) SetParam(i int, value float32) {
	value = r.ParamInfo(i).Clamp(value)
	switch i {
	case ringParamFrequency:
		r.frequency.SetTarget(value)
	default:
		r.mix.SetTarget(value)
	}
}
