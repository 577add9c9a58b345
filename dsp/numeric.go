// Package dsp provides real-time-safe numeric building blocks shared by every
// effect: fast approximations, denormal flushing, delay lines, filters,
// envelopes and LFOs.
package dsp

import "math"

const (
	// TwoPi is a single source of truth for phase wrapping across the package.
	TwoPi = 2 * math.Pi

	// Both tables carry one guard point past the end so interpolation can
	// always read index+1 without wrapping or clamping.
	sineTableSize = 4096
	tanhTableSize = 2048
	tanhTableSpan = float32(5.0)
)

var (
	sineTable [sineTableSize + 1]float32
	tanhTable [tanhTableSize + 1]float32
)

func init() {
	for i := range sineTable {
		sineTable[i] = float32(math.Sin(TwoPi * float64(i) / sineTableSize))
	}
	for i := range tanhTable {
		x := tanhTableSpan * (2*float32(i)/tanhTableSize - 1)
		tanhTable[i] = float32(math.Tanh(float64(x)))
	}
}

// FastSin returns sin(phase) via table lookup with linear interpolation.
// phase is in radians and may be any finite value.
func FastSin(phase float32) float32 {
	// Convert radians to turns and keep the fractional turn; the float
	// subtraction can round up to exactly 1.0 for tiny negative phases, so
	// fold that case back to 0.
	turns := phase * (1.0 / TwoPi)
	turns -= float32(math.Floor(float64(turns)))
	if turns >= 1 {
		turns = 0
	}

	pos := turns * sineTableSize
	i := int(pos)
	frac := pos - float32(i)
	return sineTable[i] + frac*(sineTable[i+1]-sineTable[i])
}

// FastTanh returns tanh(x) via table lookup with linear interpolation,
// saturating to ±1 outside the tabulated span.
func FastTanh(x float32) float32 {
	if x >= tanhTableSpan {
		return 1
	}
	if x <= -tanhTableSpan {
		return -1
	}

	pos := (x + tanhTableSpan) * (tanhTableSize / (2 * tanhTableSpan))
	i := int(pos)
	frac := pos - float32(i)
	return tanhTable[i] + frac*(tanhTable[i+1]-tanhTable[i])
}

// FlushDenormal returns 0 for any magnitude below the denormal threshold,
// otherwise x unchanged. Every feedback-carrying code path (delay, comb,
// filter state) must pass its output through this before storing it.
//
//go:nosplit
func FlushDenormal(x float32) float32 {
	if x > -1e-20 && x < 1e-20 {
		return 0
	}
	return x
}

// DbToLinear converts a decibel value to a linear amplitude multiplier.
func DbToLinear(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}

// LinearToDb converts a linear amplitude multiplier to decibels. Values at
// or below zero return -120 dB rather than -Inf, since callers typically
// feed this straight into metering or UI display.
func LinearToDb(linear float32) float32 {
	if linear <= 0 {
		return -120
	}
	return float32(20 * math.Log10(float64(linear)))
}

// Mix returns the equal-power-free (linear) wet/dry blend of dry and wet at
// the given wet amount in [0, 1].
func Mix(dry, wet, amount float32) float32 {
	return dry + amount*(wet-dry)
}

// Clamp restricts x to [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// NanToZero replaces non-finite samples with 0, as required at every audio
// trust boundary (ingest, plugin-host parameter input).
func NanToZero(x float32) float32 {
	if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
		return 0
	}
	return x
}
