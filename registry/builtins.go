package registry

import "github.com/ampactor/sonido-sub001/effects"

// NewBuiltins returns a registry pre-populated with every built-in effect,
// the set the chain runtime's Add command and the control plane's discovery
// UI draw from. Effect ids are the stable strings presets and Add commands
// address effects by.
func NewBuiltins() *Registry {
	r := New()

	r.Register(Descriptor{
		ID: "reverb", Name: "Reverb", Category: CategoryTimeBased,
		Description: "Freeverb-style parallel comb / series allpass reverb",
		ParamCount:  effects.NewReverb(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewReverb(sr) })

	r.Register(Descriptor{
		ID: "delay", Name: "Delay", Category: CategoryTimeBased,
		Description: "Feedback delay line with tape-style filtered feedback",
		ParamCount:  effects.NewDelay(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewDelay(sr) })

	r.Register(Descriptor{
		ID: "chorus", Name: "Chorus", Category: CategoryModulation,
		Description: "LFO-modulated delay line, long throw",
		ParamCount:  effects.NewChorus(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewChorus(sr) })

	r.Register(Descriptor{
		ID: "flanger", Name: "Flanger", Category: CategoryModulation,
		Description: "LFO-modulated delay line with feedback, short throw",
		ParamCount:  effects.NewFlanger(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewFlanger(sr) })

	r.Register(Descriptor{
		ID: "multivibrato", Name: "Multivibrato", Category: CategoryModulation,
		Description: "Pitch-vibrato style short modulated delay",
		ParamCount:  effects.NewMultivibrato(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewMultivibrato(sr) })

	r.Register(Descriptor{
		ID: "phaser", Name: "Phaser", Category: CategoryModulation,
		Description: "Cascaded allpass stages swept by an LFO",
		ParamCount:  effects.NewPhaser(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewPhaser(sr) })

	r.Register(Descriptor{
		ID: "distortion", Name: "Distortion", Category: CategoryDistortion,
		Description: "Drive / waveshape / tone / level pipeline",
		ParamCount:  effects.NewDistortion(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewDistortion(sr) })

	r.Register(Descriptor{
		ID: "bitcrusher", Name: "Bitcrusher", Category: CategoryDistortion,
		Description: "Bit-depth and sample-rate reduction",
		ParamCount:  effects.NewBitcrusher(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewBitcrusher(sr) })

	r.Register(Descriptor{
		ID: "ringmod", Name: "Ring Modulator", Category: CategoryModulation,
		Description: "Sine carrier ring modulation",
		ParamCount:  effects.NewRingMod(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewRingMod(sr) })

	r.Register(Descriptor{
		ID: "tremolo", Name: "Tremolo", Category: CategoryModulation,
		Description: "LFO amplitude modulation",
		ParamCount:  effects.NewTremolo(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewTremolo(sr) })

	r.Register(Descriptor{
		ID: "tape", Name: "Tape Saturation", Category: CategoryDistortion,
		Description: "Analog tape warmth with HF rolloff",
		ParamCount:  effects.NewTapeSaturation(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewTapeSaturation(sr) })

	r.Register(Descriptor{
		ID: "preamp", Name: "Clean Preamp", Category: CategoryUtility,
		Description: "High-headroom gain stage",
		ParamCount:  effects.NewPreamp(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewPreamp(sr) })

	r.Register(Descriptor{
		ID: "filter", Name: "Low Pass Filter", Category: CategoryFilter,
		Description: "Resonant biquad lowpass filter",
		ParamCount:  effects.NewLowPassFilter(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewLowPassFilter(sr) })

	r.Register(Descriptor{
		ID: "wah", Name: "Wah", Category: CategoryFilter,
		Description: "Envelope-follower or manual bandpass SVF sweep",
		ParamCount:  effects.NewWah(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewWah(sr) })

	r.Register(Descriptor{
		ID: "eq", Name: "Parametric EQ", Category: CategoryFilter,
		Description: "Three-band cascaded peaking EQ",
		ParamCount:  effects.NewParametricEQ(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewParametricEQ(sr) })

	r.Register(Descriptor{
		ID: "compressor", Name: "Compressor", Category: CategoryDynamics,
		Description: "Log-domain soft-knee dynamics",
		ParamCount:  effects.NewCompressor(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewCompressor(sr) })

	r.Register(Descriptor{
		ID: "gate", Name: "Gate", Category: CategoryDynamics,
		Description: "Noise gate with adjustable closed-gate floor",
		ParamCount:  effects.NewGate(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewGate(sr) })

	r.Register(Descriptor{
		ID: "limiter", Name: "Limiter", Category: CategoryDynamics,
		Description: "Lookahead brickwall peak limiter",
		ParamCount:  effects.NewLimiter(48000).ParamCount(),
	}, func(sr float32) WithParams { return effects.NewLimiter(sr) })

	return r
}
