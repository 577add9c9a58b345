package effects

import (
	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

// Preamp is a high-headroom clean gain stage: a single smoothed linear gain
// with no colouration.
type Preamp struct {
	effect.Base

	gain *dsp.Smoother
}

// NewPreamp constructs a preamp at sampleRate with unity gain.
func NewPreamp(sampleRate float32) *Preamp {
	p := &Preamp{
		gain: dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
	}
	p.SetImpl(p)
	p.gain.Set(1)
	return p
}

func (p *Preamp) Process(x float32) float32 {
	return x * p.gain.Advance()
}

func (p *Preamp) SetSampleRate(sampleRate float32) {
	p.gain.SetSampleRate(sampleRate)
}

func (p *Preamp) Reset() {
	p.gain.SnapToTarget()
}

const (
	preampParamGain = iota
	preampParamCount
)

func (p *Preamp) ParamCount() int { return preampParamCount }

func (p *Preamp) ParamInfo(i int) param.Descriptor {
	d := param.Custom("Gain", "Gain", 0, 4, 1)
	d.Unit = param.UnitRatio
	d.Flags = param.FlagGain
	return d
}

func (p *Preamp) GetParam(i int) float32 {
	return p.gain.Current()
}

func (p *Preamp) SetParam(i int, value float32) {
	p.gain.SetTarget(p.ParamInfo(i).Clamp(value))
}
