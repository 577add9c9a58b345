package effects

import (
	"math"

	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

const maxPhaserStages = 12
const phaserCoeffUpdateBlock = 32

// Phaser cascades 2-12 first-order allpass filters swept exponentially by an
// LFO, with optional feedback. Allpass coefficients are recomputed once
// every phaserCoeffUpdateBlock samples rather than per-sample.
type Phaser struct {
	effect.Base

	sampleRate float32
	stages     int
	allpasses  [maxPhaserStages]dsp.OnePoleAllpass
	lfo        *dsp.LFO

	rate     *dsp.Smoother
	depth    *dsp.Smoother
	feedback *dsp.Smoother

	sampleCounter int
	lastOutput    float32
}

// NewPhaser constructs a phaser at sampleRate with 4 stages, 0.5Hz rate.
func NewPhaser(sampleRate float32) *Phaser {
	p := &Phaser{
		sampleRate: sampleRate,
		stages:     4,
		lfo:        dsp.NewLFO(sampleRate),
		rate:       dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		depth:      dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		feedback:   dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
	}
	p.SetImpl(p)
	p.rate.Set(0.5)
	p.depth.Set(0.7)
	p.feedback.Set(0.3)
	return p
}

func (p *Phaser) Process(x float32) float32 {
	p.lfo.SetFrequency(p.rate.Advance())

	if p.sampleCounter%phaserCoeffUpdateBlock == 0 {
		lfoVal := p.lfo.AdvanceUnipolar()
		depth := p.depth.Current()
		minHz := float32(200)
		maxHz := 200 + depth*3000
		// Exponential sweep between minHz and maxHz.
		hz := minHz * float32(math.Pow(float64(maxHz/minHz), float64(lfoVal)))
		for i := 0; i < p.stages; i++ {
			p.allpasses[i].SetCutoff(hz, p.sampleRate)
		}
	} else {
		p.lfo.Advance()
	}
	p.sampleCounter++

	in := x + p.lastOutput*p.feedback.Advance()
	out := in
	for i := 0; i < p.stages; i++ {
		out = p.allpasses[i].Process(out)
	}
	p.lastOutput = out
	return dsp.Mix(x, out, p.depth.Current())
}

func (p *Phaser) SetSampleRate(sampleRate float32) {
	p.sampleRate = sampleRate
	p.lfo.SetSampleRate(sampleRate)
	p.rate.SetSampleRate(sampleRate)
	p.depth.SetSampleRate(sampleRate)
	p.feedback.SetSampleRate(sampleRate)
}

func (p *Phaser) Reset() {
	for i := range p.allpasses {
		p.allpasses[i].Reset()
	}
	p.lfo.Reset()
	p.rate.SnapToTarget()
	p.depth.SnapToTarget()
	p.feedback.SnapToTarget()
	p.lastOutput = 0
	p.sampleCounter = 0
}

const (
	phaserParamRate = iota
	phaserParamDepth
	phaserParamFeedback
	phaserParamStages
	phaserParamCount
)

func (p *Phaser) ParamCount() int { return phaserParamCount }

func (p *Phaser) ParamInfo(i int) param.Descriptor {
	switch i {
	case phaserParamRate:
		d := param.Custom("Rate", "Rate", 0.02, 10, 0.5)
		d.Unit = param.UnitHz
		d.Scale = param.ScaleLogarithmic
		return d
	case phaserParamDepth:
		return param.Custom("Depth", "Depth", 0, 1, 0.7)
	case phaserParamFeedback:
		return param.Custom("Feedback", "FB", 0, 0.95, 0.3)
	default:
		d := param.Custom("Stages", "Stages", 2, maxPhaserStages, 4)
		d.Flags = param.FlagStepped
		d.Step = 2
		return d
	}
}

func (p *Phaser) GetParam(i int) float32 {
	switch i {
	case phaserParamRate:
		return p.rate.Current()
	case phaserParamDepth:
		return p.depth.Current()
	case phaserParamFeedback:
		return p.feedback.Current()
	default:
		return float32(p.stages)
	}
}

func (p *Phaser) SetParam(i int, value float32) {
	value = p.ParamInfo(i).Clamp(value)
	switch i {
	case phaserParamRate:
		p.rate.SetTarget(value)
	case phaserParamDepth:
		p.depth.SetTarget(value)
	case phaserParamFeedback:
		p.feedback.SetTarget(value)
	default:
		stages := int(value)
		if stages < 2 {
			stages = 2
		}
		if stages > maxPhaserStages {
			stages = maxPhaserStages
		}
		p.stages = stages
	}
}
