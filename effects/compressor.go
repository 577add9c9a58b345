package effects

import (
	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

// Compressor is a log-domain soft-knee (6 dB knee) dynamics processor with a
// peak detector, threshold, ratio, attack, release and make-up gain.
type Compressor struct {
	effect.Base

	sampleRate float32
	detector   *dsp.EnvelopeFollower

	threshold *dsp.Smoother
	ratio     *dsp.Smoother
	makeup    *dsp.Smoother
	attackMs  float32
	releaseMs float32

	lastReductionDb float32
}

// NewCompressor constructs a compressor at sampleRate with -18dB threshold,
// 4:1 ratio, 10ms attack, 100ms release and 0dB make-up.
func NewCompressor(sampleRate float32) *Compressor {
	c := &Compressor{
		sampleRate: sampleRate,
		detector:   dsp.NewEnvelopeFollower(sampleRate),
		threshold:  dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		ratio:      dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		makeup:     dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		attackMs:   10,
		releaseMs:  100,
	}
	c.SetImpl(c)
	c.threshold.Set(-18)
	c.ratio.Set(4)
	c.makeup.Set(0)
	c.detector.SetAttack(c.attackMs)
	c.detector.SetRelease(c.releaseMs)
	return c
}

func (c *Compressor) Process(x float32) float32 {
	env := c.detector.Process(x)
	envDb := dsp.LinearToDb(env)

	threshold := c.threshold.Advance()
	ratio := c.ratio.Advance()

	// Soft knee: a quadratic blend over kneeDb centred on the threshold.
	const kneeDb = 6
	over := envDb - threshold
	slope := 1 - 1/ratio
	gainReductionDb := float32(0)
	switch {
	case over >= kneeDb/2:
		gainReductionDb = over * slope
	case over > -kneeDb/2:
		k := over + kneeDb/2
		gainReductionDb = slope * k * k / (2 * kneeDb)
	}

	gain := dsp.DbToLinear(-gainReductionDb + c.makeup.Advance())
	c.lastReductionDb = gainReductionDb
	return x * gain
}

// GainReductionDb reports the reduction currently being applied, for meters.
func (c *Compressor) GainReductionDb() float32 {
	return c.lastReductionDb
}

func (c *Compressor) SetSampleRate(sampleRate float32) {
	c.sampleRate = sampleRate
	c.detector.SetSampleRate(sampleRate)
	c.threshold.SetSampleRate(sampleRate)
	c.ratio.SetSampleRate(sampleRate)
	c.makeup.SetSampleRate(sampleRate)
}

func (c *Compressor) Reset() {
	c.detector.Reset()
	c.threshold.SnapToTarget()
	c.ratio.SnapToTarget()
	c.makeup.SnapToTarget()
}

const (
	compParamThreshold = iota
	compParamRatio
	compParamAttack
	compParamRelease
	compParamMakeup
	compParamCount
)

func (c *Compressor) ParamCount() int { return compParamCount }

func (c *Compressor) ParamInfo(i int) param.Descriptor {
	switch i {
	case compParamThreshold:
		d := param.Custom("Threshold", "Thresh", -60, 0, -18)
		d.Unit = param.UnitDb
		return d
	case compParamRatio:
		d := param.Custom("Ratio", "Ratio", 1, 20, 4)
		d.Unit = param.UnitRatio
		return d
	case compParamAttack:
		d := param.Custom("Attack", "Atk", 0.1, 200, 10)
		d.Unit = param.UnitMs
		d.Scale = param.ScaleLogarithmic
		return d
	case compParamRelease:
		d := param.Custom("Release", "Rel", 10, 2000, 100)
		d.Unit = param.UnitMs
		d.Scale = param.ScaleLogarithmic
		return d
	default: // compParamMakeup
		d := param.Custom("Makeup Gain", "Makeup", 0, 24, 0)
		d.Unit = param.UnitDb
		return d
	}
}

func (c *Compressor) GetParam(i int) float32 {
	switch i {
	case compParamThreshold:
		return c.threshold.Current()
	case compParamRatio:
		return c.ratio.Current()
	case compParamAttack:
		return c.attackMs
	case compParamRelease:
		return c.releaseMs
	default:
		return c.makeup.Current()
	}
}

func (c *Compressor) SetParam(i int, value float32) {
	value = c.ParamInfo(i).Clamp(value)
	switch i {
	case compParamThreshold:
		c.threshold.SetTarget(value)
	case compParamRatio:
		c.ratio.SetTarget(value)
	case compParamAttack:
		c.attackMs = value
		c.detector.SetAttack(value)
	case compParamRelease:
		c.releaseMs = value
		c.detector.SetRelease(value)
	default:
		c.makeup.SetTarget(value)
	}
}
