package effects

import (
	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

// modulatedDelay is the shared shape behind Chorus, Flanger and Multivibrato:
// one delay line modulated by an LFO, optionally with feedback. The three
// effects differ only in their delay range, whether the feedback path is
// active, and the values their constructors set. All three expose the same
// descriptor table (Rate, Depth, Mix, Feedback, with the defaults below);
// Feedback has no effect on Chorus and Multivibrato.
type modulatedDelay struct {
	effect.Base

	sampleRate float32
	line       *dsp.DelayLine
	lfo        *dsp.LFO

	rate     *dsp.Smoother
	depth    *dsp.Smoother
	mix      *dsp.Smoother
	feedback *dsp.Smoother

	centreMs float32
	rangeMs  float32
	hasFeedback bool
}

func newModulatedDelay(sampleRate, centreMs, rangeMs float32, hasFeedback bool) *modulatedDelay {
	capacityMs := centreMs + rangeMs + 1
	m := &modulatedDelay{
		sampleRate:  sampleRate,
		line:        dsp.NewDelayLine(int(capacityMs*0.001*sampleRate)+2, dsp.InterpCubic),
		lfo:         dsp.NewLFO(sampleRate),
		rate:        dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		depth:       dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		mix:         dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		feedback:    dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		centreMs:    centreMs,
		rangeMs:     rangeMs,
		hasFeedback: hasFeedback,
	}
	m.lfo.SetWaveform(dsp.LFOSine)
	m.SetImpl(m)
	return m
}

func (m *modulatedDelay) process(x float32) float32 {
	m.lfo.SetFrequency(m.rate.Advance())
	lfoVal := m.lfo.Advance()
	depth := m.depth.Advance()

	delayMs := m.centreMs + lfoVal*m.rangeMs*depth
	if delayMs < 0 {
		delayMs = 0
	}
	delaySamples := delayMs * 0.001 * m.sampleRate

	wet := m.line.Read(delaySamples)

	feedIn := x
	if m.hasFeedback {
		feedIn += wet * m.feedback.Advance()
	}
	m.line.Write(dsp.FlushDenormal(feedIn))

	return dsp.Mix(x, wet, m.mix.Advance())
}

func (m *modulatedDelay) setSampleRate(sampleRate float32) {
	m.sampleRate = sampleRate
	m.rate.SetSampleRate(sampleRate)
	m.depth.SetSampleRate(sampleRate)
	m.mix.SetSampleRate(sampleRate)
	m.feedback.SetSampleRate(sampleRate)
	capacityMs := m.centreMs + m.rangeMs + 1
	m.line = dsp.NewDelayLine(int(capacityMs*0.001*sampleRate)+2, dsp.InterpCubic)
}

func (m *modulatedDelay) reset() {
	m.line.Clear()
	m.lfo.Reset()
	m.rate.SnapToTarget()
	m.depth.SnapToTarget()
	m.mix.SnapToTarget()
	m.feedback.SnapToTarget()
}

const (
	modDelayParamRate = iota
	modDelayParamDepth
	modDelayParamMix
	modDelayParamFeedback
	modDelayParamCount
)

func (m *modulatedDelay) paramInfo(i int) param.Descriptor {
	switch i {
	case modDelayParamRate:
		d := param.Custom("Rate", "Rate", 0.02, 10, 0.5)
		d.Unit = param.UnitHz
		d.Scale = param.ScaleLogarithmic
		return d
	case modDelayParamDepth:
		return param.Custom("Depth", "Depth", 0, 1, 0.5)
	case modDelayParamMix:
		return param.Custom("Mix", "Mix", 0, 1, 0.5)
	default:
		return param.Custom("Feedback", "FB", 0, 0.95, 0.2)
	}
}

func (m *modulatedDelay) getParam(i int) float32 {
	switch i {
	case modDelayParamRate:
		return m.rate.Current()
	case modDelayParamDepth:
		return m.depth.Current()
	case modDelayParamMix:
		return m.mix.Current()
	default:
		return m.feedback.Current()
	}
}

func (m *modulatedDelay) setParam(i int, value float32) {
	value = m.paramInfo(i).Clamp(value)
	switch i {
	case modDelayParamRate:
		m.rate.SetTarget(value)
	case modDelayParamDepth:
		m.depth.SetTarget(value)
	case modDelayParamMix:
		m.mix.SetTarget(value)
	default:
		m.feedback.SetTarget(value)
	}
}

// Chorus uses a long modulated delay (10-30ms) without feedback.
type Chorus struct{ *modulatedDelay }

// NewChorus constructs a chorus at sampleRate: 20ms centre delay, +/-8ms
// sweep, no feedback.
func NewChorus(sampleRate float32) *Chorus {
	c := &Chorus{newModulatedDelay(sampleRate, 20, 8, false)}
	c.rate.Set(0.5)
	c.depth.Set(0.5)
	c.mix.Set(0.5)
	c.SetImpl(c)
	return c
}

func (c *Chorus) Process(x float32) float32         { return c.process(x) }
func (c *Chorus) SetSampleRate(sampleRate float32)   { c.setSampleRate(sampleRate) }
func (c *Chorus) Reset()                             { c.reset() }
func (c *Chorus) ParamCount() int                    { return modDelayParamCount }
func (c *Chorus) ParamInfo(i int) param.Descriptor   { return c.paramInfo(i) }
func (c *Chorus) GetParam(i int) float32             { return c.getParam(i) }
func (c *Chorus) SetParam(i int, value float32)      { c.setParam(i, value) }

// Flanger uses a short modulated delay (1-10ms) with feedback.
type Flanger struct{ *modulatedDelay }

// NewFlanger constructs a flanger at sampleRate: 3ms centre delay, +/-2ms
// sweep, with feedback.
func NewFlanger(sampleRate float32) *Flanger {
	f := &Flanger{newModulatedDelay(sampleRate, 3, 2, true)}
	f.rate.Set(0.3)
	f.depth.Set(0.7)
	f.mix.Set(0.5)
	f.feedback.Set(0.3)
	f.SetImpl(f)
	return f
}

func (f *Flanger) Process(x float32) float32        { return f.process(x) }
func (f *Flanger) SetSampleRate(sampleRate float32)  { f.setSampleRate(sampleRate) }
func (f *Flanger) Reset()                            { f.reset() }
func (f *Flanger) ParamCount() int                   { return modDelayParamCount }
func (f *Flanger) ParamInfo(i int) param.Descriptor  { return f.paramInfo(i) }
func (f *Flanger) GetParam(i int) float32            { return f.getParam(i) }
func (f *Flanger) SetParam(i int, value float32)     { f.setParam(i, value) }

// Multivibrato is a pitch-vibrato voice: a short modulated delay whose
// constructor sets mix to 1 (no dry signal) for a pure pitch-wobble
// character. Mix stays an ordinary parameter, and its descriptor default is
// 0.5.
type Multivibrato struct{ *modulatedDelay }

// NewMultivibrato constructs a vibrato voice at sampleRate: 5ms centre
// delay, +/-4ms sweep, fully wet by default.
func NewMultivibrato(sampleRate float32) *Multivibrato {
	v := &Multivibrato{newModulatedDelay(sampleRate, 5, 4, false)}
	v.rate.Set(5)
	v.depth.Set(0.8)
	v.mix.Set(1.0)
	v.SetImpl(v)
	return v
}

func (v *Multivibrato) Process(x float32) float32        { return v.process(x) }
func (v *Multivibrato) SetSampleRate(sampleRate float32)  { v.setSampleRate(sampleRate) }
func (v *Multivibrato) Reset()                            { v.reset() }
func (v *Multivibrato) ParamCount() int                   { return modDelayParamCount }
func (v *Multivibrato) ParamInfo(i int) param.Descriptor  { return v.paramInfo(i) }
func (v *Multivibrato) GetParam(i int) float32            { return v.getParam(i) }
func (v *Multivibrato) SetParam(i int, value float32)     { v.setParam(i, value) }
