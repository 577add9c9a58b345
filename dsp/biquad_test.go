package dsp

import (
	"math"
	"math/cmplx"
	"testing"
)

// polesInsideUnitCircle checks the RBJ-cookbook transfer function's
// denominator 1 + a1 z^-1 + a2 z^-2 has both roots strictly inside the unit
// circle, i.e. the filter is stable.
func polesInsideUnitCircle(a1, a2 float32) bool {
	// z^2 + a1 z + a2 = 0
	disc := complex(float64(a1*a1-4*a2), 0)
	sq := cmplx.Sqrt(disc)
	r1 := (complex(float64(-a1), 0) + sq) / 2
	r2 := (complex(float64(-a1), 0) - sq) / 2
	return cmplx.Abs(r1) < 1.0-1e-6 && cmplx.Abs(r2) < 1.0-1e-6
}

func TestBiquadStableAcrossDesignsAndCutoffs(t *testing.T) {
	sampleRate := float32(48000)
	kinds := []BiquadType{
		BiquadLowpass, BiquadHighpass, BiquadBandpass, BiquadNotch,
		BiquadPeaking, BiquadLowShelf, BiquadHighShelf,
	}
	cutoffs := []float32{20, 100, 1000, 5000, 0.475 * 48000}
	qs := []float32{0.5, 0.707, 2, 5, 10}

	var f Biquad
	for _, k := range kinds {
		for _, c := range cutoffs {
			for _, q := range qs {
				f.SetCoefficients(k, c, sampleRate, q, 6)
				if !polesInsideUnitCircle(f.a1, f.a2) {
					t.Fatalf("unstable poles: kind=%v cutoff=%v q=%v a1=%v a2=%v", k, c, q, f.a1, f.a2)
				}
			}
		}
	}
}

func TestBiquadFiniteOutputOnImpulse(t *testing.T) {
	var f Biquad
	f.SetCoefficients(BiquadLowpass, 1000, 48000, 0.707, 0)
	in := []float32{1, 0, 0, 0, 0, 0, 0, 0}
	for _, x := range in {
		y := f.Process(x)
		if math.IsNaN(float64(y)) || math.IsInf(float64(y), 0) {
			t.Fatalf("non-finite output: %v", y)
		}
	}
}

func TestBiquadClearResetsState(t *testing.T) {
	var f Biquad
	f.SetCoefficients(BiquadLowpass, 1000, 48000, 0.707, 0)
	f.Process(1)
	f.Process(1)
	f.Clear()
	if f.z1 != 0 || f.z2 != 0 {
		t.Fatalf("expected zero state after Clear, got z1=%v z2=%v", f.z1, f.z2)
	}
}
