package bridge

import (
	"math"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestAtomicFloat32RoundTrip(t *testing.T) {
	var a AtomicFloat32
	for _, v := range []float32{0, 1, -1, 0.5, -0.5, 1e-20, float32(math.Pi)} {
		a.Store(v)
		if got := a.Load(); got != v {
			t.Fatalf("round trip: stored %v, loaded %v", v, got)
		}
	}
}

func TestFlatParamIDRoundTrip(t *testing.T) {
	for slot := SlotIndex(0); int(slot) < MaxSlots; slot++ {
		for p := ParamIndex(0); int(p) < Stride; p++ {
			id := NewClapParamID(slot, p)
			if id.Slot() != slot || id.Param() != p {
				t.Fatalf("(%d,%d) -> %d -> (%d,%d)", slot, p, id, id.Slot(), id.Param())
			}
		}
	}
}

func TestStoreParamClamps(t *testing.T) {
	b := New(16)
	b.StoreParam(0, 0, 99, -1, 1, true)
	if got := b.LoadParam(0, 0); got != 1 {
		t.Fatalf("expected clamp to 1, got %v", got)
	}
	b.StoreParam(0, 0, 99, -1, 1, false)
	if got := b.LoadParam(0, 0); got != 99 {
		t.Fatalf("expected unclamped 99, got %v", got)
	}
}

func TestGestureFlagsAccumulateAndDeliverOnce(t *testing.T) {
	b := New(16)

	b.PostGestureBegin(2, 3)
	b.PostGestureBegin(2, 3) // idempotent
	b.PostGestureEnd(2, 3)

	flags := b.TakeGestureFlags(2, 3)
	if flags != GestureBegin|GestureEnd {
		t.Fatalf("expected begin|end, got %08b", flags)
	}
	if again := b.TakeGestureFlags(2, 3); again != 0 {
		t.Fatalf("second take must be empty, got %08b", again)
	}
	// Neighbouring parameter is untouched.
	if other := b.TakeGestureFlags(2, 4); other != 0 {
		t.Fatalf("neighbour flags leaked: %08b", other)
	}
}

func TestCommandQueueBoundedAndOrdered(t *testing.T) {
	b := New(3)

	for i := 0; i < 3; i++ {
		if err := b.Post(Command{Kind: CommandAdd, EffectID: "distortion"}); err != nil {
			t.Fatalf("post %d: %v", i, err)
		}
	}
	if err := b.Post(Command{Kind: CommandAdd, EffectID: "reverb"}); err != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	cmds, ok := b.TryDrainCommands()
	if !ok || len(cmds) != 3 {
		t.Fatalf("drain: ok=%v n=%d", ok, len(cmds))
	}
	// Queue is empty again after a drain.
	cmds, ok = b.TryDrainCommands()
	if !ok || cmds != nil {
		t.Fatalf("second drain: ok=%v cmds=%v", ok, cmds)
	}
}

func TestPostInvokesRequestCallback(t *testing.T) {
	b := New(16)
	calls := 0
	b.RequestCallback = func() { calls++ }
	if err := b.Post(Command{Kind: CommandAdd, EffectID: "delay"}); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 callback, got %d", calls)
	}
}

func TestTopologyPublishSetsNeedsRescan(t *testing.T) {
	b := New(16)
	if b.NeedsRescan() {
		t.Fatal("fresh bridge must not need rescan")
	}

	snaps := make([]SlotSnapshot, MaxSlots)
	snaps[0] = SlotSnapshot{EffectID: "preamp", Active: true}
	b.PublishTopology(snaps, []SlotIndex{0}, 42)

	if !b.NeedsRescan() {
		t.Fatal("publish must set needs_rescan")
	}
	if got := b.LatencySamples(); got != 42 {
		t.Fatalf("latency: got %d", got)
	}
	if got := b.LoadOrder(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("order: got %v", got)
	}
	if got := b.LoadSlots(); !got[0].Active || got[0].EffectID != "preamp" {
		t.Fatalf("slots: got %+v", got[0])
	}

	b.AcknowledgeRescan()
	if b.NeedsRescan() {
		t.Fatal("acknowledge must clear the flag")
	}
}

// TestGridAtomicityUnderContention interleaves parameter writes from several
// control goroutines with one reader over many iterations: every read must
// return a bit pattern some writer actually stored, never a torn mix.
func TestGridAtomicityUnderContention(t *testing.T) {
	const (
		writers    = 4
		iterations = 10000
	)
	b := New(16)

	// Each writer owns a distinct value set: writer w writes values with
	// integer part w+1, so any observed value identifies its writer exactly.
	valid := func(v float32) bool {
		if v == 0 {
			return true // initial state
		}
		w := int(v)
		return w >= 1 && w <= writers && v == float32(w)+0.25
	}

	var g errgroup.Group
	for w := 0; w < writers; w++ {
		v := float32(w+1) + 0.25
		g.Go(func() error {
			for i := 0; i < iterations; i++ {
				b.StoreParam(3, 7, v, -100, 100, true)
			}
			return nil
		})
	}
	g.Go(func() error {
		for i := 0; i < iterations; i++ {
			if v := b.LoadParam(3, 7); !valid(v) {
				t.Errorf("torn read: %v", v)
				return nil
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	// Neighbouring cells were never touched.
	if v := b.LoadParam(3, 6); v != 0 {
		t.Fatalf("neighbour corrupted: %v", v)
	}
	if v := b.LoadParam(3, 8); v != 0 {
		t.Fatalf("neighbour corrupted: %v", v)
	}
}

func TestApplyRemoveZerosSlot(t *testing.T) {
	b := New(16)
	b.ApplyAdd(5, []float32{1, 2, 3})
	b.SetBypass(5, true)

	b.ApplyRemove(5)
	for p := 0; p < Stride; p++ {
		if v := b.LoadParam(5, ParamIndex(p)); v != 0 {
			t.Fatalf("param %d not zeroed: %v", p, v)
		}
	}
	if b.Bypass(5) {
		t.Fatal("bypass not cleared")
	}
}

func TestApplyRestoreWritesValuesAndBypass(t *testing.T) {
	b := New(16)
	b.ApplyAdd(1, []float32{0, 0})
	b.ApplyRestore(1, []float32{20, 0.7}, true)

	if v := b.LoadParam(1, 0); v != 20 {
		t.Fatalf("param 0: %v", v)
	}
	if v := b.LoadParam(1, 1); v != 0.7 {
		t.Fatalf("param 1: %v", v)
	}
	if !b.Bypass(1) {
		t.Fatal("bypass not restored")
	}
}
