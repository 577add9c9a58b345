package effects

import (
	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

// Gate is a noise gate: below threshold the signal is attenuated toward
// -range dB, above it passes at unity. Attack and release set the level
// detector's envelope times; the gain itself moves through a fixed
// fast-open, slow-close one-pole. There is a single threshold, with no
// hysteresis.
type Gate struct {
	effect.Base

	sampleRate float32
	env        *dsp.EnvelopeFollower
	gain       float32

	threshold *dsp.Smoother
	attackMs  *dsp.Smoother
	releaseMs *dsp.Smoother
	rangeDb   *dsp.Smoother
}

// NewGate constructs a gate at sampleRate with -40dB threshold, fast attack,
// 100ms release and -60dB closed range.
func NewGate(sampleRate float32) *Gate {
	g := &Gate{
		sampleRate: sampleRate,
		env:        dsp.NewEnvelopeFollower(sampleRate),
		gain:       1,
		threshold:  dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		attackMs:   dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		releaseMs:  dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		rangeDb:    dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
	}
	g.SetImpl(g)
	g.threshold.Set(-40)
	g.attackMs.Set(1)
	g.releaseMs.Set(100)
	g.rangeDb.Set(-60)
	g.env.SetAttack(1)
	g.env.SetRelease(50)
	return g
}

func (g *Gate) Process(x float32) float32 {
	g.env.SetAttack(g.attackMs.Advance())
	g.env.SetRelease(g.releaseMs.Advance())
	level := g.env.Process(x)
	levelDb := dsp.LinearToDb(level)

	thresholdDb := g.threshold.Advance()
	floor := dsp.DbToLinear(g.rangeDb.Advance())

	target := floor
	if levelDb > thresholdDb {
		target = 1
	}

	// Fast-open (0.9 per sample), slow-close (0.999 per sample) one-pole on
	// the gain itself so the transition doesn't click.
	coeff := float32(0.999)
	if target > g.gain {
		coeff = 0.9
	}
	g.gain = target + (g.gain-target)*coeff

	return x * g.gain
}

func (g *Gate) SetSampleRate(sampleRate float32) {
	g.sampleRate = sampleRate
	g.env.SetSampleRate(sampleRate)
	g.threshold.SetSampleRate(sampleRate)
	g.attackMs.SetSampleRate(sampleRate)
	g.releaseMs.SetSampleRate(sampleRate)
	g.rangeDb.SetSampleRate(sampleRate)
}

func (g *Gate) Reset() {
	g.env.Reset()
	g.gain = 1
	g.threshold.SnapToTarget()
	g.attackMs.SnapToTarget()
	g.releaseMs.SnapToTarget()
	g.rangeDb.SnapToTarget()
}

const (
	gateParamThreshold = iota
	gateParamAttack
	gateParamRelease
	gateParamRange
	gateParamCount
)

func (g *Gate) ParamCount() int { return gateParamCount }

func (g *Gate) ParamInfo(i int) param.Descriptor {
	switch i {
	case gateParamThreshold:
		d := param.Custom("Threshold", "Thresh", -80, 0, -40)
		d.Unit = param.UnitDb
		return d
	case gateParamAttack:
		d := param.Custom("Attack", "Atk", 0.1, 50, 1)
		d.Unit = param.UnitMs
		return d
	case gateParamRelease:
		d := param.Custom("Release", "Rel", 5, 1000, 100)
		d.Unit = param.UnitMs
		return d
	default:
		d := param.Custom("Range", "Range", -100, 0, -60)
		d.Unit = param.UnitDb
		return d
	}
}

func (g *Gate) GetParam(i int) float32 {
	switch i {
	case gateParamThreshold:
		return g.threshold.Current()
	case gateParamAttack:
		return g.attackMs.Current()
	case gateParamRelease:
		return g.releaseMs.Current()
	default:
		return g.rangeDb.Current()
	}
}

func (g *Gate) SetParam(i int, value float32) {
	value = g.ParamInfo(i).Clamp(value)
	switch i {
	case gateParamThreshold:
		g.threshold.SetTarget(value)
	case gateParamAttack:
		g.attackMs.SetTarget(value)
	case gateParamRelease:
		g.releaseMs.SetTarget(value)
	default:
		g.rangeDb.SetTarget(value)
	}
}
