// Package registry maps effect identifiers to constructors and descriptors
// so the control plane can enumerate available effects, and the chain
// runtime can instantiate them in response to Add commands, without either
// side compile-time-coupling to each effect's concrete type.
package registry

import (
	"fmt"

	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

// Category groups effects for UI discovery.
type Category int

const (
	CategoryDynamics Category = iota
	CategoryDistortion
	CategoryModulation
	CategoryTimeBased
	CategoryFilter
	CategoryUtility
)

// CategoryName returns a display name for a category.
func CategoryName(c Category) string {
	switch c {
	case CategoryDynamics:
		return "Dynamics"
	case CategoryDistortion:
		return "Distortion"
	case CategoryModulation:
		return "Modulation"
	case CategoryTimeBased:
		return "Time-Based"
	case CategoryFilter:
		return "Filter"
	default:
		return "Utility"
	}
}

// WithParams is the interface every registered effect must satisfy: the
// Effect contract plus self-describing parameter metadata.
type WithParams interface {
	effect.Effect
	param.Info
}

// Factory constructs a fresh effect instance configured for sampleRate.
type Factory func(sampleRate float32) WithParams

// Descriptor is the fixed, registry-time metadata for one effect kind.
type Descriptor struct {
	ID          string
	Name        string
	Description string
	Category    Category
	ParamCount  int
}

type entry struct {
	desc    Descriptor
	factory Factory
}

// Registry is a name -> factory/descriptor map, built once at init time and
// read thereafter; safe for concurrent reads since no entry is ever mutated
// after Register.
type Registry struct {
	entries map[string]entry
	order   []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds an effect kind. Panics on duplicate id, since registration
// only ever happens at program init from a fixed list of built-ins.
func (r *Registry) Register(desc Descriptor, factory Factory) {
	if _, exists := r.entries[desc.ID]; exists {
		panic(fmt.Sprintf("registry: duplicate effect id %q", desc.ID))
	}
	r.entries[desc.ID] = entry{desc: desc, factory: factory}
	r.order = append(r.order, desc.ID)
}

// AllEffects returns descriptors for every registered effect, in
// registration order.
func (r *Registry) AllEffects() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].desc)
	}
	return out
}

// EffectsInCategory returns descriptors for every effect in the given
// category, in registration order.
func (r *Registry) EffectsInCategory(cat Category) []Descriptor {
	var out []Descriptor
	for _, id := range r.order {
		if e := r.entries[id]; e.desc.Category == cat {
			out = append(out, e.desc)
		}
	}
	return out
}

// Get returns the descriptor for id, or false if unregistered.
func (r *Registry) Get(id string) (Descriptor, bool) {
	e, ok := r.entries[id]
	return e.desc, ok
}

// Create constructs a fresh instance of id at sampleRate. Returns an error
// if id is unregistered — callers on the audio thread must log and drop the
// command rather than propagate this synchronously.
func (r *Registry) Create(id string, sampleRate float32) (WithParams, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown effect id %q", id)
	}
	return e.factory(sampleRate), nil
}

// ParamIndexByName returns the parameter index matching paramName on
// effect id, or -1 if no match (case-sensitive exact match on Descriptor.Name,
// ShortName or Alias).
func (r *Registry) ParamIndexByName(id, paramName string) int {
	e, ok := r.entries[id]
	if !ok {
		return -1
	}
	inst := e.factory(48000)
	for i := 0; i < inst.ParamCount(); i++ {
		d := inst.ParamInfo(i)
		if d.Name == paramName || d.ShortName == paramName || d.Alias == paramName {
			return i
		}
	}
	return -1
}
