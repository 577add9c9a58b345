package bridge

// ClapParamID is the flat parameter id (slot x Stride + param): a single
// integer key that a plugin-host integration can map one-to-one onto its own
// parameter ids, hence the CLAP in the name. Preset persistence does not use
// it; presets address parameters by slot and parameter name.
type ClapParamID uint32

// NewClapParamID packs a (slot, param) pair into its flat id.
func NewClapParamID(slot SlotIndex, param ParamIndex) ClapParamID {
	return ClapParamID(int(slot)*Stride + int(param))
}

// Slot and Param unpack a flat id back into its (slot, param) pair, the
// inverse of NewClapParamID.
func (id ClapParamID) Slot() SlotIndex   { return SlotIndex(id / Stride) }
func (id ClapParamID) Param() ParamIndex { return ParamIndex(id % Stride) }
