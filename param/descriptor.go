// Package param defines self-describing parameter metadata shared by every
// composite effect: range, unit, scaling curve, and the normalise/
// denormalise round trip the control plane and preset persistence rely on.
package param

// Unit names the physical quantity a parameter's range is expressed in.
type Unit int

const (
	UnitNone Unit = iota
	UnitHz
	UnitDb
	UnitMs
	UnitSeconds
	UnitPercent
	UnitSemitones
	UnitCents
	UnitRatio
	UnitRadians
	UnitSamples
)

// Scale names the curve normalise/denormalise maps through.
type Scale int

const (
	ScaleLinear Scale = iota
	ScaleLogarithmic
	ScaleQuadratic
	ScaleExponential
)

// Flags are bit flags describing a parameter's role beyond its range.
type Flags uint8

const (
	FlagAutomatable Flags = 1 << iota
	FlagStepped
	FlagBypass
	FlagGain
)

// Descriptor is a fixed record describing one control. min <= default <= max
// is a constructor invariant.
type Descriptor struct {
	Name      string
	ShortName string
	Unit      Unit
	Min       float32
	Max       float32
	Default   float32
	Scale     Scale
	Step      float32
	Flags     Flags
	ID        int
	Alias     string
	StepLabels []string
}

// Custom builds a descriptor with linear scale and no special flags, the
// common case for most effect parameters.
func Custom(name, shortName string, min, max, def float32) Descriptor {
	return Descriptor{
		Name: name, ShortName: shortName,
		Min: min, Max: max, Default: clampDefault(min, max, def),
		Scale: ScaleLinear,
	}
}

func clampDefault(min, max, def float32) float32 {
	if def < min {
		return min
	}
	if def > max {
		return max
	}
	return def
}

// Normalise maps a value in [Min, Max] to [0, 1] per the descriptor's Scale.
func (d Descriptor) Normalise(x float32) float32 {
	if d.Max <= d.Min {
		return 0
	}
	switch d.Scale {
	case ScaleLogarithmic:
		return logNormalise(x, d.Min, d.Max)
	case ScaleQuadratic:
		return sqrtf((x - d.Min) / (d.Max - d.Min))
	case ScaleExponential:
		return logNormalise(x, d.Min, d.Max)
	default:
		return (x - d.Min) / (d.Max - d.Min)
	}
}

// Denormalise maps a value in [0, 1] back to [Min, Max] per the descriptor's
// Scale, inverse of Normalise.
func (d Descriptor) Denormalise(t float32) float32 {
	switch d.Scale {
	case ScaleLogarithmic, ScaleExponential:
		return logDenormalise(t, d.Min, d.Max)
	case ScaleQuadratic:
		return d.Min + t*t*(d.Max-d.Min)
	default:
		return d.Min + t*(d.Max-d.Min)
	}
}

// logFloor keeps the logarithmic mapping well-defined when Min <= 0 by
// treating the domain as starting just above zero.
const logFloor = 1e-6

func logNormalise(x, min, max float32) float32 {
	lo := min
	if lo < logFloor {
		lo = logFloor
	}
	hi := max
	if hi < lo {
		hi = lo
	}
	if x < lo {
		x = lo
	}
	return logf(x/lo) / logf(hi/lo)
}

func logDenormalise(t, min, max float32) float32 {
	lo := min
	if lo < logFloor {
		lo = logFloor
	}
	hi := max
	if hi < lo {
		hi = lo
	}
	return lo * expf(t*logf(hi/lo))
}

// Clamp restricts x to the descriptor's range, the operation the bridge uses
// at the parameter-set boundary.
func (d Descriptor) Clamp(x float32) float32 {
	if x < d.Min {
		return d.Min
	}
	if x > d.Max {
		return d.Max
	}
	return x
}

// Info is the interface every effect implements to describe and expose its
// parameters generically.
type Info interface {
	ParamCount() int
	ParamInfo(index int) Descriptor
	GetParam(index int) float32
	SetParam(index int, value float32)
}
