package bridge

import "github.com/ampactor/sonido-sub001/param"

// SlotIndex and ParamIndex identify a position in the chain's potential
// slot space and a position within a slot's parameter list respectively.
type SlotIndex int

type ParamIndex int

// SlotSnapshot is the control plane's view of one chain slot, published
// atomically alongside every other slot as one immutable vector.
type SlotSnapshot struct {
	EffectID    string
	Descriptors []param.Descriptor
	Active      bool
}

