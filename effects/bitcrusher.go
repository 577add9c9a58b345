package effects

import (
	"math"

	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

// Bitcrusher reduces bit depth (quantisation) and sample rate (zero-order
// hold) to produce lo-fi digital artefacts.
type Bitcrusher struct {
	effect.Base

	sampleRate float32

	bits     *dsp.Smoother
	rateDiv  *dsp.Smoother
	mix      *dsp.Smoother

	holdL, holdR float32
	holdCounter  float32
}

// NewBitcrusher constructs a bitcrusher at sampleRate with 16-bit depth, no
// downsampling and full wet mix.
func NewBitcrusher(sampleRate float32) *Bitcrusher {
	b := &Bitcrusher{
		sampleRate: sampleRate,
		bits:       dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		rateDiv:    dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		mix:        dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
	}
	b.SetImpl(b)
	b.bits.Set(16)
	b.rateDiv.Set(1)
	b.mix.Set(1)
	return b
}

func (b *Bitcrusher) crush(x float32) float32 {
	bits := b.bits.Advance()
	steps := float32(math.Pow(2, float64(bits)))
	quantised := float32(math.Round(float64(x*steps))) / steps
	return dsp.Clamp(quantised, -1, 1)
}

func (b *Bitcrusher) Process(x float32) float32 {
	div := b.rateDiv.Advance()
	if div < 1 {
		div = 1
	}
	b.holdCounter++
	if b.holdCounter >= div {
		b.holdCounter = 0
		b.holdL = b.crush(x)
	}
	mix := b.mix.Advance()
	return dsp.Mix(x, b.holdL, mix)
}

func (b *Bitcrusher) ProcessStereo(left, right float32) (float32, float32) {
	div := b.rateDiv.Advance()
	if div < 1 {
		div = 1
	}
	b.holdCounter++
	if b.holdCounter >= div {
		b.holdCounter = 0
		b.holdL = b.crush(left)
		b.holdR = b.crush(right)
	}
	mix := b.mix.Advance()
	return dsp.Mix(left, b.holdL, mix), dsp.Mix(right, b.holdR, mix)
}

func (b *Bitcrusher) SetSampleRate(sampleRate float32) {
	b.sampleRate = sampleRate
	b.bits.SetSampleRate(sampleRate)
	b.rateDiv.SetSampleRate(sampleRate)
	b.mix.SetSampleRate(sampleRate)
}

func (b *Bitcrusher) Reset() {
	b.bits.SnapToTarget()
	b.rateDiv.SnapToTarget()
	b.mix.SnapToTarget()
	b.holdL, b.holdR = 0, 0
	b.holdCounter = 0
}

const (
	crushParamBits = iota
	crushParamRateDiv
	crushParamMix
	crushParamCount
)

func (b *Bitcrusher) ParamCount() int { return crushParamCount }

func (b *Bitcrusher) ParamInfo(i int) param.Descriptor {
	switch i {
	case crushParamBits:
		d := param.Custom("Bit Depth", "Bits", 1, 16, 16)
		d.Step = 1
		d.Flags = param.FlagStepped
		return d
	case crushParamRateDiv:
		d := param.Custom("Rate Reduction", "RateDiv", 1, 50, 1)
		d.Unit = param.UnitSamples
		d.Step = 1
		return d
	default: // crushParamMix
		d := param.Custom("Mix", "Mix", 0, 1, 1)
		d.Unit = param.UnitPercent
		return d
	}
}

func (b *Bitcrusher) GetParam(i int) float32 {
	switch i {
	case crushParamBits:
		return b.bits.Current()
	case crushParamRateDiv:
		return b.rateDiv.Current()
	default:
		return b.mix.Current()
	}
}

func (b *Bitcrusher) SetParam(i int, value float32) {
	value = b.ParamInfo(i).Clamp(value)
	switch i {
	case crushParamBits:
		b.bits.SetTarget(value)
	case crushParamRateDiv:
		b.rateDiv.SetTarget(value)
	default:
		b.mix.SetTarget(value)
	}
}
