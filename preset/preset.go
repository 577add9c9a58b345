// Package preset persists effect-chain state as named records of effect
// configurations, and applies them back through the parameter bridge.
// Parameter keys are snake_case names; values are stringified numbers, so a
// preset survives being hand-edited or produced by older builds with
// different capitalisation.
package preset

import (
	"strconv"
	"strings"

	"github.com/ampactor/sonido-sub001/bridge"
)

// EffectConfig is the saved state of one chain slot: the effect type, its
// bypass flag, and parameter values keyed by snake_case parameter name.
type EffectConfig struct {
	EffectType string
	Bypassed   bool
	Params     map[string]string
}

// NewEffectConfig builds an empty config for effectType.
func NewEffectConfig(effectType string) EffectConfig {
	return EffectConfig{EffectType: effectType, Params: make(map[string]string)}
}

// WithParam sets a parameter value, returning the config for chaining.
func (c EffectConfig) WithParam(name, value string) EffectConfig {
	c.Params[name] = value
	return c
}

// Preset is a named, ordered list of effect configurations.
type Preset struct {
	Name        string
	Description string
	Effects     []EffectConfig
}

// New builds an empty preset.
func New(name string) *Preset {
	return &Preset{Name: name}
}

// WithEffect appends an effect config, returning the preset for chaining.
func (p *Preset) WithEffect(c EffectConfig) *Preset {
	p.Effects = append(p.Effects, c)
	return p
}

// FromBridge captures the current state of every active slot in the bridge:
// effect type, bypass flag, and one snake_case entry per parameter
// descriptor.
func FromBridge(name, description string, b *bridge.Bridge) *Preset {
	p := New(name)
	p.Description = description

	slots := b.LoadSlots()
	for i, snap := range slots {
		if !snap.Active {
			continue
		}
		cfg := NewEffectConfig(snap.EffectID)
		cfg.Bypassed = b.Bypass(bridge.SlotIndex(i))
		for pi, desc := range snap.Descriptors {
			v := b.LoadParam(bridge.SlotIndex(i), bridge.ParamIndex(pi))
			cfg.Params[ToSnakeCase(desc.Name)] = FormatValue(v)
		}
		p.Effects = append(p.Effects, cfg)
	}
	return p
}

// Apply writes the preset into the bridge. Matching is consumer-side
// forgiving: effects match by type (through the legacy effect alias table),
// parameters by normalised key (case folded, separators stripped) with the
// legacy parameter alias table as fallback. Unknown effects and parameters
// are skipped.
func (p *Preset) Apply(b *bridge.Bridge) {
	slots := b.LoadSlots()
	for i, snap := range slots {
		if !snap.Active {
			continue
		}
		cfg := p.findConfig(snap.EffectID)
		if cfg == nil {
			continue
		}
		slot := bridge.SlotIndex(i)
		b.SetBypass(slot, cfg.Bypassed)

		for pi, desc := range snap.Descriptors {
			if v, ok := findParam(cfg, desc.Name); ok {
				b.StoreParam(slot, bridge.ParamIndex(pi), v, desc.Min, desc.Max, true)
			}
		}
	}
}

// findConfig returns the first effect config matching effectID, or nil.
func (p *Preset) findConfig(effectID string) *EffectConfig {
	for i := range p.Effects {
		if effectTypeMatches(p.Effects[i].EffectType, effectID) {
			return &p.Effects[i]
		}
	}
	return nil
}

// effectTypeMatches compares a saved effect type against a live effect id,
// tolerating the legacy long-form type names older preset files carry.
func effectTypeMatches(saved, id string) bool {
	s := normalizeKey(saved)
	if s == normalizeKey(id) {
		return true
	}
	if alias, ok := effectAliases[s]; ok {
		return alias == id
	}
	return false
}

// effectAliases maps normalised legacy effect type names to current ids.
var effectAliases = map[string]string{
	"ringmodulator":  "ringmod",
	"tapesaturation": "tape",
	"parametriceq":   "eq",
	"lowpassfilter":  "filter",
	"cleanpreamp":    "preamp",
}

// paramAliases maps normalised legacy parameter names, written by builds
// that predate a rename, to the current descriptor name.
var paramAliases = map[string]string{
	"intensity": "Depth",
	"warmth":    "Saturation",
}

// findParam looks up descriptorName in cfg's params: normalised match
// first, then the reverse of the legacy alias table (an old key whose
// current name is descriptorName).
func findParam(cfg *EffectConfig, descriptorName string) (float32, bool) {
	target := normalizeKey(descriptorName)
	for k, v := range cfg.Params {
		if normalizeKey(k) == target {
			return parseValue(v)
		}
	}
	for legacy, current := range paramAliases {
		if normalizeKey(current) != target {
			continue
		}
		for k, v := range cfg.Params {
			if normalizeKey(k) == legacy {
				return parseValue(v)
			}
		}
	}
	return 0, false
}

// normalizeKey folds case and strips separators so "Pre-Delay", "pre_delay"
// and "predelay" all compare equal.
func normalizeKey(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(name))
}

// ToSnakeCase converts a descriptor display name to the snake_case key used
// in preset files: "Room Size" -> "room_size".
func ToSnakeCase(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(strings.ToLower(name), " ", "_"), "-", "_")
}

// FormatValue renders a parameter value the way preset files store it.
func FormatValue(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func parseValue(s string) (float32, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, false
	}
	return float32(v), true
}
