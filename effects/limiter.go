package effects

import (
	"math"

	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

// maxLookaheadMs bounds the lookahead buffer's size at construction.
const maxLookaheadMs = 10.0

// Limiter is a lookahead brickwall peak limiter: a circular lookahead
// buffer, an O(lookahead) peak scan per sample, instant-attack/exponential-
// release gain smoothing, and a hard ceiling guarantee.
type Limiter struct {
	effect.Base

	sampleRate float32

	bufL, bufR  []float32
	writePos    int
	lookahead   int
	lookaheadMs float32

	threshold    *dsp.Smoother
	ceiling      *dsp.Smoother
	releaseMs    float32
	releaseCoeff float32

	currentGain float32
}

// NewLimiter constructs a limiter at sampleRate with -6dB threshold, -0.3dB
// ceiling and 5ms lookahead.
func NewLimiter(sampleRate float32) *Limiter {
	l := &Limiter{
		sampleRate: sampleRate,
		threshold:  dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		ceiling:    dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		releaseMs:  50,
		currentGain: 1,
	}
	l.SetImpl(l)
	l.threshold.Set(-6)
	l.ceiling.Set(-0.3)
	l.allocateLookahead(5)
	l.recomputeRelease()
	return l
}

func (l *Limiter) allocateLookahead(ms float32) {
	if ms > maxLookaheadMs {
		ms = maxLookaheadMs
	}
	n := int(ms * 0.001 * l.sampleRate)
	if n < 1 {
		n = 1
	}
	l.lookaheadMs = ms
	if n == l.lookahead && l.bufL != nil {
		return
	}
	l.lookahead = n
	l.bufL = make([]float32, n)
	l.bufR = make([]float32, n)
	l.writePos = 0
}

func (l *Limiter) recomputeRelease() {
	tau := l.releaseMs * l.sampleRate / 1000
	if tau < 1 {
		tau = 1
	}
	l.releaseCoeff = float32(math.Exp(-1.0 / float64(tau)))
}

// LatencySamples equals the lookahead buffer length.
func (l *Limiter) LatencySamples() int { return l.lookahead }

// GainReductionDb reports the reduction currently being applied, for meters.
func (l *Limiter) GainReductionDb() float32 {
	return -dsp.LinearToDb(l.currentGain)
}

func (l *Limiter) IsTrueStereo() bool { return true }

func (l *Limiter) ProcessStereo(left, right float32) (float32, float32) {
	// The write cursor points at the oldest sample in the ring: take it as
	// this call's (lookahead-delayed) output before overwriting it with the
	// incoming frame.
	delayedL := l.bufL[l.writePos]
	delayedR := l.bufR[l.writePos]
	l.bufL[l.writePos] = left
	l.bufR[l.writePos] = right
	l.writePos++
	if l.writePos >= l.lookahead {
		l.writePos = 0
	}

	// Linked-stereo peak scan across the lookahead window.
	var peak float32
	for i := 0; i < l.lookahead; i++ {
		a := absF32(l.bufL[i])
		b := absF32(l.bufR[i])
		if a > peak {
			peak = a
		}
		if b > peak {
			peak = b
		}
	}

	thresholdLinear := dsp.DbToLinear(l.threshold.Advance())
	ceilingLinear := dsp.DbToLinear(l.ceiling.Advance())

	targetGain := float32(1)
	if peak > thresholdLinear && peak > 0 {
		targetGain = (thresholdLinear / peak) * ceilingLinear
	}
	if targetGain > 1 {
		targetGain = 1
	}

	if targetGain < l.currentGain {
		// Instant attack: gain follows the target downward without lag.
		l.currentGain = targetGain
	} else {
		l.currentGain = targetGain + l.releaseCoeff*(l.currentGain-targetGain)
	}

	outL := delayedL * l.currentGain
	outR := delayedR * l.currentGain

	// Hard guarantee: never exceed the ceiling regardless of gain-smoothing
	// transients.
	outL = dsp.Clamp(outL, -ceilingLinear, ceilingLinear)
	outR = dsp.Clamp(outR, -ceilingLinear, ceilingLinear)
	return outL, outR
}

func absF32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func (l *Limiter) SetSampleRate(sampleRate float32) {
	l.sampleRate = sampleRate
	l.threshold.SetSampleRate(sampleRate)
	l.ceiling.SetSampleRate(sampleRate)
	l.allocateLookahead(l.lookaheadMs)
	l.recomputeRelease()
}

func (l *Limiter) Reset() {
	for i := range l.bufL {
		l.bufL[i] = 0
		l.bufR[i] = 0
	}
	l.writePos = 0
	l.threshold.SnapToTarget()
	l.ceiling.SnapToTarget()
	l.currentGain = 1
}

const (
	limParamThreshold = iota
	limParamCeiling
	limParamLookahead
	limParamRelease
	limParamCount
)

func (l *Limiter) ParamCount() int { return limParamCount }

func (l *Limiter) ParamInfo(i int) param.Descriptor {
	switch i {
	case limParamThreshold:
		d := param.Custom("Threshold", "Thresh", -24, 0, -6)
		d.Unit = param.UnitDb
		return d
	case limParamCeiling:
		d := param.Custom("Ceiling", "Ceil", -3, 0, -0.3)
		d.Unit = param.UnitDb
		return d
	case limParamLookahead:
		d := param.Custom("Lookahead", "LkAhd", 0.1, maxLookaheadMs, 5)
		d.Unit = param.UnitMs
		return d
	default: // limParamRelease
		d := param.Custom("Release", "Rel", 1, 500, 50)
		d.Unit = param.UnitMs
		return d
	}
}

func (l *Limiter) GetParam(i int) float32 {
	switch i {
	case limParamThreshold:
		return l.threshold.Current()
	case limParamCeiling:
		return l.ceiling.Current()
	case limParamLookahead:
		return l.lookaheadMs
	default:
		return l.releaseMs
	}
}

func (l *Limiter) SetParam(i int, value float32) {
	value = l.ParamInfo(i).Clamp(value)
	switch i {
	case limParamThreshold:
		l.threshold.SetTarget(value)
	case limParamCeiling:
		l.ceiling.SetTarget(value)
	case limParamLookahead:
		l.allocateLookahead(value)
	default:
		l.releaseMs = value
		l.recomputeRelease()
	}
}
