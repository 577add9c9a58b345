package effects

import (
	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

// Tremolo amplitude-modulates the signal with a selectable LFO waveform.
type Tremolo struct {
	effect.Base

	sampleRate float32
	lfo        *dsp.LFO

	rate     *dsp.Smoother
	depth    *dsp.Smoother
	waveform int
}

// NewTremolo constructs a tremolo at sampleRate with a 5Hz sine and 0.5
// depth.
func NewTremolo(sampleRate float32) *Tremolo {
	t := &Tremolo{
		sampleRate: sampleRate,
		lfo:        dsp.NewLFO(sampleRate),
		rate:       dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		depth:      dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
	}
	t.SetImpl(t)
	t.rate.Set(5)
	t.depth.Set(0.5)
	return t
}

func (t *Tremolo) Process(x float32) float32 {
	t.lfo.SetFrequency(t.rate.Advance())
	unipolar := t.lfo.AdvanceUnipolar()
	depth := t.depth.Advance()
	gain := 1 - depth*(1-unipolar)
	return x * gain
}

func (t *Tremolo) SetSampleRate(sampleRate float32) {
	t.sampleRate = sampleRate
	t.lfo.SetSampleRate(sampleRate)
	t.rate.SetSampleRate(sampleRate)
	t.depth.SetSampleRate(sampleRate)
}

func (t *Tremolo) Reset() {
	t.lfo.Reset()
	t.rate.SnapToTarget()
	t.depth.SnapToTarget()
}

const (
	tremoloParamRate = iota
	tremoloParamDepth
	tremoloParamWaveform
	tremoloParamCount
)

func (t *Tremolo) ParamCount() int { return tremoloParamCount }

func (t *Tremolo) ParamInfo(i int) param.Descriptor {
	switch i {
	case tremoloParamRate:
		d := param.Custom("Rate", "Rate", 0.1, 20, 5)
		d.Unit = param.UnitHz
		d.Scale = param.ScaleLogarithmic
		return d
	case tremoloParamDepth:
		return param.Custom("Depth", "Depth", 0, 1, 0.5)
	default:
		d := param.Custom("Waveform", "Wave", 0, 3, 0)
		d.Flags = param.FlagStepped
		d.StepLabels = []string{"Sine", "Triangle", "Saw", "Square"}
		return d
	}
}

func (t *Tremolo) GetParam(i int) float32 {
	switch i {
	case tremoloParamRate:
		return t.rate.Current()
	case tremoloParamDepth:
		return t.depth.Current()
	default:
		return float32(t.waveform)
	}
}

func (t *Tremolo) SetParam(i int, value float32) {
	value = t.ParamInfo(i).Clamp(value)
	switch i {
	case tremoloParamRate:
		t.rate.SetTarget(value)
	case tremoloParamDepth:
		t.depth.SetTarget(value)
	default:
		t.waveform = int(value)
		t.lfo.SetWaveform(dsp.LFOWaveform(t.waveform))
	}
}
