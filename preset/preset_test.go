package preset

import (
	"math"
	"testing"

	"github.com/ampactor/sonido-sub001/bridge"
	"github.com/ampactor/sonido-sub001/chain"
	"github.com/ampactor/sonido-sub001/registry"
)

// buildChain spins up a runtime, adds the given effects, and runs one block
// so the topology is published.
func buildChain(t *testing.T, ids ...string) *chain.Runtime {
	t.Helper()
	rt := chain.New(registry.NewBuiltins(), bridge.New(64), 48000)
	for _, id := range ids {
		if err := rt.Bridge().Post(bridge.Command{Kind: bridge.CommandAdd, EffectID: id}); err != nil {
			t.Fatal(err)
		}
	}
	silence := make([]float32, 64)
	rt.ProcessStereoBlock(silence, silence, make([]float32, 64), make([]float32, 64))
	return rt
}

func TestPresetRoundTrip(t *testing.T) {
	rt := buildChain(t, "distortion", "reverb")
	br := rt.Bridge()

	br.StoreParam(0, 0, 20, 0, 40, true)  // distortion drive
	br.StoreParam(1, 1, 0.7, 0, 1, true)  // reverb decay
	br.SetBypass(1, true)

	saved := FromBridge("Round Trip", "testing", br)
	if len(saved.Effects) != 2 {
		t.Fatalf("expected 2 effect configs, got %d", len(saved.Effects))
	}
	if saved.Effects[0].EffectType != "distortion" || !saved.Effects[1].Bypassed {
		t.Fatalf("saved: %+v", saved.Effects)
	}
	if saved.Effects[0].Params["drive"] != "20" {
		t.Fatalf("drive serialised as %q", saved.Effects[0].Params["drive"])
	}

	// Apply into a fresh chain of the same shape.
	rt2 := buildChain(t, "distortion", "reverb")
	br2 := rt2.Bridge()
	saved.Apply(br2)

	if got := br2.LoadParam(0, 0); math.Abs(float64(got-20)) > 1e-3 {
		t.Fatalf("drive: %v", got)
	}
	if got := br2.LoadParam(1, 1); math.Abs(float64(got-0.7)) > 1e-3 {
		t.Fatalf("decay: %v", got)
	}
	if !br2.Bypass(1) {
		t.Fatal("reverb bypass not restored")
	}
	if br2.Bypass(0) {
		t.Fatal("distortion wrongly bypassed")
	}
}

func TestEveryParameterSurvivesRoundTrip(t *testing.T) {
	rt := buildChain(t, "reverb", "limiter", "eq")
	br := rt.Bridge()

	saved := FromBridge("Full", "", br)
	rt2 := buildChain(t, "reverb", "limiter", "eq")
	br2 := rt2.Bridge()
	saved.Apply(br2)

	slots := br.LoadSlots()
	for i, snap := range slots {
		if !snap.Active {
			continue
		}
		for p := range snap.Descriptors {
			a := br.LoadParam(bridge.SlotIndex(i), bridge.ParamIndex(p))
			b := br2.LoadParam(bridge.SlotIndex(i), bridge.ParamIndex(p))
			if math.Abs(float64(a-b)) > 1e-3 {
				t.Fatalf("slot %d param %d (%s): %v != %v", i, p, snap.Descriptors[p].Name, a, b)
			}
		}
	}
}

func TestApplyMatchesFlexibleKeys(t *testing.T) {
	rt := buildChain(t, "reverb")
	br := rt.Bridge()

	for _, key := range []string{"Room Size", "room_size", "roomsize", "ROOM-SIZE"} {
		p := New("flex").WithEffect(NewEffectConfig("reverb").WithParam(key, "0.9"))
		br.StoreParam(0, 0, 0.5, 0, 1, true)
		p.Apply(br)
		if got := br.LoadParam(0, 0); math.Abs(float64(got-0.9)) > 1e-4 {
			t.Fatalf("key %q not matched: %v", key, got)
		}
	}
}

func TestApplyResolvesLegacyParamAliases(t *testing.T) {
	rt := buildChain(t, "tape", "chorus")
	br := rt.Bridge()

	p := New("legacy").
		WithEffect(NewEffectConfig("tape").WithParam("warmth", "0.8")).
		WithEffect(NewEffectConfig("chorus").WithParam("intensity", "0.9"))
	p.Apply(br)

	// warmth is the legacy name of tape's Saturation (param 0).
	if got := br.LoadParam(0, 0); math.Abs(float64(got-0.8)) > 1e-4 {
		t.Fatalf("warmth alias: %v", got)
	}
	// intensity is the legacy name of Depth (chorus param 1).
	if got := br.LoadParam(1, 1); math.Abs(float64(got-0.9)) > 1e-4 {
		t.Fatalf("intensity alias: %v", got)
	}
}

func TestApplyResolvesLegacyEffectTypeNames(t *testing.T) {
	rt := buildChain(t, "ringmod")
	br := rt.Bridge()

	p := New("legacy").WithEffect(NewEffectConfig("Ring Modulator").WithParam("frequency", "440"))
	p.Apply(br)
	if got := br.LoadParam(0, 0); math.Abs(float64(got-440)) > 1e-3 {
		t.Fatalf("legacy effect type not matched: %v", got)
	}
}

func TestApplySkipsUnknownEffectsAndParams(t *testing.T) {
	rt := buildChain(t, "preamp")
	br := rt.Bridge()

	p := New("skippy").
		WithEffect(NewEffectConfig("no_such_effect").WithParam("gain", "3")).
		WithEffect(NewEffectConfig("preamp").WithParam("no_such_param", "3"))
	p.Apply(br)

	if got := br.LoadParam(0, 0); got != 1 {
		t.Fatalf("unknown keys must not disturb values: %v", got)
	}
}

func TestApplyClampsOutOfRangeValues(t *testing.T) {
	rt := buildChain(t, "preamp")
	br := rt.Bridge()

	p := New("hot").WithEffect(NewEffectConfig("preamp").WithParam("gain", "999"))
	p.Apply(br)
	if got := br.LoadParam(0, 0); got != 4 {
		t.Fatalf("expected clamp to descriptor max 4, got %v", got)
	}
}

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Room Size": "room_size",
		"Pre-Delay": "pre_delay",
		"Drive":     "drive",
	}
	for in, want := range cases {
		if got := ToSnakeCase(in); got != want {
			t.Fatalf("%q -> %q, want %q", in, got, want)
		}
	}
}
