// Package effect defines the polymorphic interface every DSP element
// implements, the mono/stereo bridging every effect gets by embedding Base,
// and the Chain combinator that composes two effects into one.
package effect

// TempoContext is an immutable record of host tempo/transport information,
// passed to SetTempoContext before each block by hosts that track it.
type TempoContext struct {
	BPM       float64
	Playing   bool
	PositionS float64
}

// Effect is the contract every DSP element implements, whether a primitive
// wrapper or a composite built from several primitives. An implementer MUST
// override at least one of Process and ProcessStereo; embedding Base
// supplies working (mutually non-recursive) defaults for everything else.
type Effect interface {
	// Process handles one mono sample.
	Process(in float32) float32
	// ProcessStereo handles one stereo frame.
	ProcessStereo(left, right float32) (float32, float32)
	// ProcessBlock processes len(input) mono samples; input and output MUST
	// be the same length.
	ProcessBlock(input []float32, output []float32)
	// ProcessBlockInplace is the in-place convenience form of ProcessBlock.
	ProcessBlockInplace(buffer []float32)
	// ProcessBlockStereo is the block form of ProcessStereo.
	ProcessBlockStereo(inL, inR, outL, outR []float32)
	// ProcessBlockStereoInplace is the in-place convenience form.
	ProcessBlockStereoInplace(left, right []float32)
	// SetSampleRate recomputes every sample-rate-dependent coefficient. MUST
	// NOT allocate once the audio thread is running.
	SetSampleRate(sampleRate float32)
	// Reset clears all internal state without changing parameters.
	Reset()
	// LatencySamples is an upper bound on the input-to-output delay.
	LatencySamples() int
	// IsTrueStereo declares whether the left output depends on the right
	// input (and vice versa), as opposed to dual-mono processing.
	IsTrueStereo() bool
	// SetTempoContext receives tempo/transport information from a host.
	SetTempoContext(ctx TempoContext)
}

// Base supplies the Effect methods that have a sensible default in every
// concrete effect, the Go-idiomatic stand-in for the trait default methods
// of the contract this package is modelled on. Concrete effects embed Base
// and override Process and/or ProcessStereo (Base.impl must be set to the
// embedding effect so the defaults can call back into its overrides) plus
// SetSampleRate and Reset, which Base cannot default sensibly.
//
// A concrete effect that calls SetImpl but overrides neither Process nor
// ProcessStereo will recurse forever the first time either is called, and
// one that never calls SetImpl panics on the nil impl — contract violations
// Go cannot catch at compile time, and what the exercise-both-paths tests
// (over this package's fixtures and, in the registry package, over every
// built-in effect) guard against.
type Base struct {
	impl monoStereoProcessor
}

// monoStereoProcessor is the minimal surface Base needs to bridge between
// Process and ProcessStereo; it is satisfied by Effect itself.
type monoStereoProcessor interface {
	Process(in float32) float32
	ProcessStereo(left, right float32) (float32, float32)
}

// SetImpl must be called once, in the embedding effect's constructor, with
// the effect itself: `e.Base.SetImpl(e)`. This is the composition-based
// equivalent of the trait's implicit `self`.
func (b *Base) SetImpl(impl monoStereoProcessor) {
	b.impl = impl
}

// Process defaults to the first component of ProcessStereo(x, x).
func (b *Base) Process(x float32) float32 {
	l, _ := b.impl.ProcessStereo(x, x)
	return l
}

// ProcessStereo defaults to dual-mono: Process applied independently to
// each channel.
func (b *Base) ProcessStereo(left, right float32) (float32, float32) {
	return b.impl.Process(left), b.impl.Process(right)
}

// ProcessBlock loops the scalar Process form. Override for SIMD/batch work.
func (b *Base) ProcessBlock(input, output []float32) {
	for i, x := range input {
		output[i] = b.impl.Process(x)
	}
}

// ProcessBlockInplace loops the scalar Process form in place.
func (b *Base) ProcessBlockInplace(buffer []float32) {
	for i, x := range buffer {
		buffer[i] = b.impl.Process(x)
	}
}

// ProcessBlockStereo loops the scalar ProcessStereo form.
func (b *Base) ProcessBlockStereo(inL, inR, outL, outR []float32) {
	for i := range inL {
		outL[i], outR[i] = b.impl.ProcessStereo(inL[i], inR[i])
	}
}

// ProcessBlockStereoInplace loops the scalar ProcessStereo form in place.
func (b *Base) ProcessBlockStereoInplace(left, right []float32) {
	for i := range left {
		left[i], right[i] = b.impl.ProcessStereo(left[i], right[i])
	}
}

// LatencySamples defaults to zero.
func (b *Base) LatencySamples() int { return 0 }

// IsTrueStereo defaults to false (dual-mono).
func (b *Base) IsTrueStereo() bool { return false }

// SetTempoContext defaults to a no-op.
func (b *Base) SetTempoContext(ctx TempoContext) {}
