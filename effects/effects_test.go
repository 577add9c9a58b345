package effects

import (
	"math"
	"testing"

	"github.com/ampactor/sonido-sub001/dsp"
)

func TestDistortionHardClipClampsRamp(t *testing.T) {
	d := NewDistortion(48000)
	d.SetParam(distParamWaveshape, float32(WaveshapeHardClip))

	n := 1024
	for i := 0; i < n; i++ {
		x := -2 + 4*float32(i)/float32(n)
		y := d.Process(x)
		if y < -1.1 || y > 1.1 {
			t.Fatalf("sample %d: input %v clipped to %v", i, x, y)
		}
		// Deep into the clip region the output sits at the rail, once the
		// wide-open tone lowpass has passed its first few samples of step
		// response.
		if i > 8 && x < -1.5 && math.Abs(float64(y)+1) > 0.05 {
			t.Fatalf("sample %d: input %v expected rail -1, got %v", i, x, y)
		}
	}
}

func TestDistortionFoldbackStaysInRange(t *testing.T) {
	d := NewDistortion(48000)
	d.SetParam(distParamWaveshape, float32(WaveshapeFoldback))
	d.SetParam(distParamDrive, 20)
	for i := 0; i < 4096; i++ {
		y := d.Process(0.9)
		if y < -1.5 || y > 1.5 {
			t.Fatalf("foldback escaped: %v", y)
		}
	}
}

func TestReverbMixZeroIsPassthrough(t *testing.T) {
	r := NewReverb(48000)
	r.SetParam(reverbParamMix, 0)

	// Let the mix smoother settle, then compare against the dry input.
	for i := 0; i < 4800; i++ {
		phase := dsp.TwoPi * 440 * float32(i) / 48000
		r.Process(0.5 * dsp.FastSin(phase))
	}
	for i := 4800; i < 9600; i++ {
		phase := dsp.TwoPi * 440 * float32(i) / 48000
		x := 0.5 * dsp.FastSin(phase)
		y := r.Process(x)
		if math.Abs(float64(y-x)) > 0.01 {
			t.Fatalf("sample %d: %v != %v", i, y, x)
		}
	}
}

func TestDelayMixZeroIsPassthrough(t *testing.T) {
	d := NewDelay(48000)
	d.SetParam(delayParamMix, 0)
	for i := 0; i < 2400; i++ {
		d.Process(0.5)
	}
	for i := 0; i < 1024; i++ {
		x := float32(i%5)/10 - 0.2
		if y := d.Process(x); math.Abs(float64(y-x)) > 1e-4 {
			t.Fatalf("sample %d: %v != %v", i, y, x)
		}
	}
}

func TestLimiterBrickwall(t *testing.T) {
	l := NewLimiter(48000)
	// Defaults: threshold -6dB, ceiling -0.3dB, lookahead 5ms = 240 samples.
	ceiling := dsp.DbToLinear(-0.3)
	for i := 0; i < 1024; i++ {
		yL, yR := l.ProcessStereo(1.0, 1.0)
		if i >= 240 {
			if math.Abs(float64(yL)) > float64(ceiling)+1e-3 ||
				math.Abs(float64(yR)) > float64(ceiling)+1e-3 {
				t.Fatalf("sample %d exceeds ceiling: %v %v", i, yL, yR)
			}
		}
	}
}

func TestLimiterBrickwallAtExtremeInput(t *testing.T) {
	l := NewLimiter(48000)
	ceiling := dsp.DbToLinear(-0.3)
	for i := 0; i < 2048; i++ {
		x := float32(10.0)
		if i%2 == 1 {
			x = -10.0
		}
		yL, _ := l.ProcessStereo(x, x)
		if math.Abs(float64(yL)) > float64(ceiling)+1e-3 {
			t.Fatalf("sample %d exceeds ceiling: %v", i, yL)
		}
	}
}

func TestLimiterDelaysSignalByLookahead(t *testing.T) {
	l := NewLimiter(48000)
	lookahead := l.LatencySamples()

	// A single sub-threshold impulse passes at unity gain, so it must
	// reappear exactly lookahead samples later and nowhere else.
	for i := 0; i < lookahead*3; i++ {
		x := float32(0)
		if i == 0 {
			x = 0.4
		}
		y, _ := l.ProcessStereo(x, x)
		switch {
		case i == lookahead:
			if math.Abs(float64(y-0.4)) > 1e-4 {
				t.Fatalf("impulse at %d: got %v want 0.4", i, y)
			}
		default:
			if math.Abs(float64(y)) > 1e-4 {
				t.Fatalf("unexpected output at %d: %v", i, y)
			}
		}
	}
}

func TestLimiterReportsLookaheadLatency(t *testing.T) {
	l := NewLimiter(48000)
	if got := l.LatencySamples(); got != 240 {
		t.Fatalf("expected 240 samples of latency, got %d", got)
	}
	l.SetParam(limParamLookahead, 10)
	if got := l.LatencySamples(); got != 480 {
		t.Fatalf("after 10ms lookahead: got %d", got)
	}
}

func TestPreampAppliesSmoothedGain(t *testing.T) {
	p := NewPreamp(48000)
	if y := p.Process(0.5); math.Abs(float64(y-0.5)) > 1e-6 {
		t.Fatalf("unity default: %v", y)
	}
	p.SetParam(preampParamGain, 2)
	var y float32
	for i := 0; i < 48000; i++ {
		y = p.Process(0.5)
	}
	if math.Abs(float64(y-1.0)) > 1e-3 {
		t.Fatalf("settled gain: %v", y)
	}
}

func TestTapeSaturationBoundedAndRollsOff(t *testing.T) {
	ts := NewTapeSaturation(48000)
	ts.SetParam(tapeParamSaturation, 1)
	for i := 0; i < 4096; i++ {
		l, r := ts.ProcessStereo(1, -1)
		if math.Abs(float64(l)) > 1.5 || math.Abs(float64(r)) > 1.5 {
			t.Fatalf("saturator escaped: %v %v", l, r)
		}
	}

	// With the tone corner at its 1kHz minimum, a Nyquist-rate alternation
	// is rolled off almost entirely.
	ts.SetParam(tapeParamTone, 1000)
	var peak float64
	for i := 0; i < 4096; i++ {
		x := float32(0.1)
		if i%2 == 1 {
			x = -0.1
		}
		l, _ := ts.ProcessStereo(x, x)
		if i > 1024 {
			peak = math.Max(peak, math.Abs(float64(l)))
		}
	}
	if peak > 0.05 {
		t.Fatalf("no high-frequency rolloff: peak %v", peak)
	}
}

func TestLowPassFilterAttenuatesHighFrequency(t *testing.T) {
	f := NewLowPassFilter(48000)
	f.SetParam(lowpassParamCutoff, 500)
	// Let the cutoff smoother settle.
	for i := 0; i < 4800; i++ {
		f.ProcessStereo(0, 0)
	}

	// 8kHz sine, well above the 500Hz cutoff, should come out much smaller.
	var peak float32
	for i := 0; i < 9600; i++ {
		phase := dsp.TwoPi * 8000 * float32(i) / 48000
		l, _ := f.ProcessStereo(dsp.FastSin(phase), 0)
		if i > 4800 {
			if a := float32(math.Abs(float64(l))); a > peak {
				peak = a
			}
		}
	}
	if peak > 0.05 {
		t.Fatalf("8kHz leaked through 500Hz lowpass: peak %v", peak)
	}
}

func TestBitcrusherQuantises(t *testing.T) {
	b := NewBitcrusher(48000)
	for i := 0; i < 1024; i++ {
		y := b.Process(0.3)
		if math.IsNaN(float64(y)) || math.IsInf(float64(y), 0) {
			t.Fatalf("non-finite: %v", y)
		}
	}

	// At 2 bits (4 steps per unit) 0.3 rounds to 0.25.
	b.SetParam(crushParamBits, 2)
	var y float32
	for i := 0; i < 4800; i++ {
		y = b.Process(0.3)
	}
	if math.Abs(float64(y)-0.25) > 1e-4 {
		t.Fatalf("2-bit quantisation of 0.3: got %v, want 0.25", y)
	}
}

func TestRingModStaysInRange(t *testing.T) {
	r := NewRingMod(48000)
	for i := 0; i < 1024; i++ {
		y := r.Process(0.5)
		if math.Abs(float64(y)) > 1 {
			t.Fatalf("ring mod out of range: %v", y)
		}
	}
}

func TestChorusAndFlangerStayBounded(t *testing.T) {
	c := NewChorus(48000)
	fl := NewFlanger(48000)
	for i := 0; i < 48000; i++ {
		phase := dsp.TwoPi * 220 * float32(i) / 48000
		x := 0.8 * dsp.FastSin(phase)
		if y := c.Process(x); math.Abs(float64(y)) > 2 {
			t.Fatalf("chorus escaped at %d: %v", i, y)
		}
		if y := fl.Process(x); math.Abs(float64(y)) > 2 {
			t.Fatalf("flanger escaped at %d: %v", i, y)
		}
	}
}

func TestCompressorReducesLoudSignal(t *testing.T) {
	c := NewCompressor(48000)
	var y float32
	for i := 0; i < 48000; i++ {
		y = c.Process(1.0)
	}
	if y >= 1.0 {
		t.Fatalf("no compression applied: %v", y)
	}
	if c.GainReductionDb() <= 0 {
		t.Fatalf("reduction not reported: %v", c.GainReductionDb())
	}
}
