package chain

import (
	"math"
	"testing"

	"github.com/ampactor/sonido-sub001/bridge"
	"github.com/ampactor/sonido-sub001/registry"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	return New(registry.NewBuiltins(), bridge.New(64), 48000)
}

// process runs one stereo block through the runtime, returning the outputs.
func process(rt *Runtime, inL, inR []float32) ([]float32, []float32) {
	outL := make([]float32, len(inL))
	outR := make([]float32, len(inR))
	rt.ProcessStereoBlock(inL, inR, outL, outR)
	return outL, outR
}

func TestEmptyChainIsIdentity(t *testing.T) {
	rt := newTestRuntime(t)
	in := []float32{0.0, 0.1, -0.1, 0.5, -0.5, 1.0, -1.0}
	outL, outR := process(rt, in, in)
	for i := range in {
		if d := float64(outL[i] - in[i]); math.Abs(d) > 1e-6 {
			t.Fatalf("L[%d]: %v != %v", i, outL[i], in[i])
		}
		if d := float64(outR[i] - in[i]); math.Abs(d) > 1e-6 {
			t.Fatalf("R[%d]: %v != %v", i, outR[i], in[i])
		}
	}
}

func TestNonFiniteInputEmitsZero(t *testing.T) {
	rt := newTestRuntime(t)
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	outL, outR := process(rt, []float32{nan, inf, 0.5}, []float32{inf, nan, 0.5})
	if outL[0] != 0 || outR[0] != 0 || outL[1] != 0 || outR[1] != 0 {
		t.Fatalf("non-finite input leaked: %v %v", outL[:2], outR[:2])
	}
	if outL[2] != 0.5 {
		t.Fatalf("finite sample mangled: %v", outL[2])
	}
}

func TestAddPlacesLowestVacantSlotAndPublishes(t *testing.T) {
	rt := newTestRuntime(t)
	br := rt.Bridge()

	mustPost(t, br, bridge.Command{Kind: bridge.CommandAdd, EffectID: "preamp"})
	mustPost(t, br, bridge.Command{Kind: bridge.CommandAdd, EffectID: "distortion"})

	silence := make([]float32, 64)
	process(rt, silence, silence)

	slots := br.LoadSlots()
	if !slots[0].Active || slots[0].EffectID != "preamp" {
		t.Fatalf("slot 0: %+v", slots[0])
	}
	if !slots[1].Active || slots[1].EffectID != "distortion" {
		t.Fatalf("slot 1: %+v", slots[1])
	}
	if len(slots[0].Descriptors) != rt.EffectAt(0).ParamCount() {
		t.Fatal("descriptor count mismatch")
	}
	order := br.LoadOrder()
	if len(order) != 2 || order[0] != 0 || order[1] != 1 {
		t.Fatalf("order: %v", order)
	}
	if !br.NeedsRescan() {
		t.Fatal("needs_rescan not set after Add")
	}

	// Defaults were written to the grid.
	if got := br.LoadParam(0, 0); got != 1 {
		t.Fatalf("preamp gain default: %v", got)
	}

	wantLatency := uint32(rt.EffectAt(0).LatencySamples() + rt.EffectAt(1).LatencySamples())
	if got := br.LatencySamples(); got != wantLatency {
		t.Fatalf("latency: got %d want %d", got, wantLatency)
	}
}

func TestCommandsApplyInPostedOrder(t *testing.T) {
	rt := newTestRuntime(t)
	br := rt.Bridge()

	mustPost(t, br, bridge.Command{Kind: bridge.CommandAdd, EffectID: "preamp"})
	mustPost(t, br, bridge.Command{Kind: bridge.CommandAdd, EffectID: "distortion"})
	mustPost(t, br, bridge.Command{Kind: bridge.CommandReorder, NewOrder: []bridge.SlotIndex{1, 0}})

	silence := make([]float32, 64)
	process(rt, silence, silence)

	order := br.LoadOrder()
	if len(order) != 2 || order[0] != 1 || order[1] != 0 {
		t.Fatalf("reorder not applied: %v", order)
	}
}

func TestInvalidReorderIsDropped(t *testing.T) {
	rt := newTestRuntime(t)
	br := rt.Bridge()

	mustPost(t, br, bridge.Command{Kind: bridge.CommandAdd, EffectID: "preamp"})
	silence := make([]float32, 64)
	process(rt, silence, silence)

	before := br.LoadOrder()
	dropped := rt.DroppedCommands()

	// Not a permutation of the occupied slots.
	mustPost(t, br, bridge.Command{Kind: bridge.CommandReorder, NewOrder: []bridge.SlotIndex{5}})
	process(rt, silence, silence)

	after := br.LoadOrder()
	if len(after) != len(before) || after[0] != before[0] {
		t.Fatalf("order changed: %v -> %v", before, after)
	}
	if rt.DroppedCommands() != dropped+1 {
		t.Fatal("dropped-command counter not bumped")
	}
}

func TestUnknownEffectIDIsDropped(t *testing.T) {
	rt := newTestRuntime(t)
	br := rt.Bridge()

	mustPost(t, br, bridge.Command{Kind: bridge.CommandAdd, EffectID: "no_such_effect"})
	silence := make([]float32, 64)
	process(rt, silence, silence)

	if got := br.LoadOrder(); len(got) != 0 {
		t.Fatalf("unknown effect occupied a slot: %v", got)
	}
	if rt.DroppedCommands() != 1 {
		t.Fatal("dropped-command counter not bumped")
	}
}

func TestRemoveVacatesSlotAndZerosParams(t *testing.T) {
	rt := newTestRuntime(t)
	br := rt.Bridge()

	mustPost(t, br, bridge.Command{Kind: bridge.CommandAdd, EffectID: "distortion"})
	silence := make([]float32, 64)
	process(rt, silence, silence)

	br.StoreParam(0, 0, 20, 0, 40, true)
	mustPost(t, br, bridge.Command{Kind: bridge.CommandRemove, Slot: 0})
	process(rt, silence, silence)

	if slots := br.LoadSlots(); slots[0].Active {
		t.Fatal("slot still active after Remove")
	}
	if got := br.LoadOrder(); len(got) != 0 {
		t.Fatalf("order not emptied: %v", got)
	}
	if v := br.LoadParam(0, 0); v != 0 {
		t.Fatalf("params not zeroed: %v", v)
	}
	if rt.EffectAt(0) != nil {
		t.Fatal("effect instance not dropped")
	}

	// The vacated slot is reused by the next Add, with fresh defaults.
	mustPost(t, br, bridge.Command{Kind: bridge.CommandAdd, EffectID: "preamp"})
	process(rt, silence, silence)
	if got := br.LoadParam(0, 0); got != 1 {
		t.Fatalf("stale value leaked into new resident: %v", got)
	}
}

func TestRestoreWritesParamsAndBypass(t *testing.T) {
	rt := newTestRuntime(t)
	br := rt.Bridge()

	mustPost(t, br, bridge.Command{Kind: bridge.CommandAdd, EffectID: "distortion"})
	mustPost(t, br, bridge.Command{Kind: bridge.CommandRestore, Slot: 0, Params: []float32{20, 1, 5000, -6}, Bypassed: true})
	silence := make([]float32, 64)
	process(rt, silence, silence)

	if v := br.LoadParam(0, 0); v != 20 {
		t.Fatalf("drive not restored: %v", v)
	}
	if !br.Bypass(0) {
		t.Fatal("bypass not restored")
	}
}

func TestParamSyncReachesEffect(t *testing.T) {
	rt := newTestRuntime(t)
	br := rt.Bridge()

	mustPost(t, br, bridge.Command{Kind: bridge.CommandAdd, EffectID: "preamp"})
	silence := make([]float32, 64)
	process(rt, silence, silence)

	br.StoreParam(0, 0, 2, 0, 4, true)

	// Long enough for the gain smoother to settle at 2x.
	in := make([]float32, 48000)
	for i := range in {
		in[i] = 0.25
	}
	outL, _ := process(rt, in, in)
	last := outL[len(outL)-1]
	if d := last - 0.5; d > 1e-3 || d < -1e-3 {
		t.Fatalf("expected settled 2x gain, got %v", last)
	}
}

func TestPerSlotBypassSkipsEffect(t *testing.T) {
	rt := newTestRuntime(t)
	br := rt.Bridge()

	mustPost(t, br, bridge.Command{Kind: bridge.CommandAdd, EffectID: "preamp"})
	silence := make([]float32, 64)
	process(rt, silence, silence)

	br.StoreParam(0, 0, 4, 0, 4, true)
	br.SetBypass(0, true)

	in := make([]float32, 1024)
	for i := range in {
		in[i] = 0.25
	}
	outL, _ := process(rt, in, in)
	if outL[len(outL)-1] != 0.25 {
		t.Fatalf("bypassed effect still processed: %v", outL[len(outL)-1])
	}
}

func TestChainBypassCrossfadesToDry(t *testing.T) {
	rt := newTestRuntime(t)
	br := rt.Bridge()

	mustPost(t, br, bridge.Command{Kind: bridge.CommandAdd, EffectID: "preamp"})
	silence := make([]float32, 64)
	process(rt, silence, silence)
	br.StoreParam(0, 0, 4, 0, 4, true)

	rt.SetChainBypass(true)

	in := make([]float32, 4800) // 100ms, far beyond the 5ms fade
	for i := range in {
		in[i] = 0.25
	}
	outL, _ := process(rt, in, in)
	if got := outL[len(outL)-1]; got != 0.25 {
		t.Fatalf("chain bypass did not settle to dry: %v", got)
	}
}

func TestTransportFilePlaybackAndMetering(t *testing.T) {
	rt := newTestRuntime(t)

	n := 256
	left := make([]float32, n)
	right := make([]float32, n)
	for i := range left {
		left[i] = 0.5
		right[i] = -0.5
	}
	rt.PostTransport(TransportCommand{Kind: TransportLoadFile, Left: left, Right: right, SampleRate: 48000})
	rt.PostTransport(TransportCommand{Kind: TransportSetFileMode, Flag: true})
	rt.PostTransport(TransportCommand{Kind: TransportPlay})

	out := make([]float32, 128*2)
	rt.ProcessInterleaved(out, 2)

	if out[0] != 0.5 || out[1] != -0.5 {
		t.Fatalf("file frame not played: %v %v", out[0], out[1])
	}

	select {
	case md := <-rt.Metering():
		if md.InputPeak != 0 {
			t.Fatalf("L/R cancel to zero mono input, got peak %v", md.InputPeak)
		}
		if md.PlaybackPositionSecs <= 0 {
			t.Fatalf("position not advancing: %v", md.PlaybackPositionSecs)
		}
	default:
		t.Fatal("no metering frame sent")
	}
}

func TestStoppedRuntimeEmitsSilence(t *testing.T) {
	rt := newTestRuntime(t)
	rt.SetRunning(false)
	out := []float32{1, 2, 3, 4}
	rt.ProcessInterleaved(out, 2)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v", i, v)
		}
	}
}

func TestInterleavedChannelLayouts(t *testing.T) {
	rt := newTestRuntime(t)

	left := []float32{0.5, 0.5}
	right := []float32{-0.25, -0.25}
	rt.PostTransport(TransportCommand{Kind: TransportLoadFile, Left: left, Right: right, SampleRate: 48000})
	rt.PostTransport(TransportCommand{Kind: TransportSetFileMode, Flag: true})
	rt.PostTransport(TransportCommand{Kind: TransportPlay})

	out := make([]float32, 4)
	rt.ProcessInterleaved(out, 4)
	if out[0] != 0.5 || out[1] != -0.25 {
		t.Fatalf("first two channels: %v", out[:2])
	}
	if out[2] != 0 || out[3] != 0 {
		t.Fatalf("extra channels not silent: %v", out[2:])
	}

	rt2 := newTestRuntime(t)
	rt2.PostTransport(TransportCommand{Kind: TransportLoadFile, Left: left, Right: right, SampleRate: 48000})
	rt2.PostTransport(TransportCommand{Kind: TransportSetFileMode, Flag: true})
	rt2.PostTransport(TransportCommand{Kind: TransportPlay})
	mono := make([]float32, 1)
	rt2.ProcessInterleaved(mono, 1)
	if want := float32(0.5+-0.25) / 2; mono[0] != want {
		t.Fatalf("mono mix: got %v want %v", mono[0], want)
	}
}

func TestMicInputQueueFeedsFrames(t *testing.T) {
	rt := newTestRuntime(t)
	rt.PushInput(0.25)
	rt.PushInput(-0.25)

	out := make([]float32, 2*2)
	rt.ProcessInterleaved(out, 2)
	if out[0] != 0.25 || out[1] != -0.25 {
		t.Fatalf("mic frame not consumed: %v", out[:2])
	}
	// Queue empty: silence.
	if out[2] != 0 || out[3] != 0 {
		t.Fatalf("expected silence on empty queue: %v", out[2:])
	}
}

func mustPost(t *testing.T, br *bridge.Bridge, cmd bridge.Command) {
	t.Helper()
	if err := br.Post(cmd); err != nil {
		t.Fatal(err)
	}
}
