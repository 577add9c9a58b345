package effects

import (
	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/param"
)

// ReverbType selects a tuning preset for room_size/decay/damping/predelay.
type ReverbType int

const (
	ReverbRoom ReverbType = iota
	ReverbHall
)

// reverbCombTunings and reverbAllpassTunings are the classic Freeverb
// delay lengths in samples at the 44.1kHz reference rate; they are scaled
// to the actual sample rate at construction/SetSampleRate time.
var reverbCombTunings = [8]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
var reverbAllpassTunings = [4]int{556, 441, 341, 225}

const reverbReferenceRate = 44100.0

// Reverb is an 8-parallel-comb, 4-series-allpass Freeverb-style reverb with
// a separate pre-delay line.
type Reverb struct {
	effect.Base

	sampleRate float32
	combs      [8]*dsp.Comb
	allpasses  [4]*dsp.Allpass
	predelay   *dsp.DelayLine

	roomSize *dsp.Smoother
	decay    *dsp.Smoother
	damping  *dsp.Smoother
	predelayMs *dsp.Smoother
	mix      *dsp.Smoother
	kind     ReverbType
}

// NewReverb constructs a reverb at sampleRate with a 0.5 room size, 0.5
// decay, 0.5 damping, no pre-delay and 30% wet mix.
func NewReverb(sampleRate float32) *Reverb {
	r := &Reverb{
		sampleRate: sampleRate,
		roomSize:   dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		decay:      dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		damping:    dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		predelayMs: dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
		mix:        dsp.NewSmoother(dsp.StandardSmoothMs, sampleRate),
	}
	r.SetImpl(r)
	r.roomSize.Set(0.5)
	r.decay.Set(0.5)
	r.damping.Set(0.5)
	r.predelayMs.Set(0)
	r.mix.Set(0.3)
	r.buildLines(sampleRate)
	r.updateCombParams()
	return r
}

func (r *Reverb) buildLines(sampleRate float32) {
	scale := sampleRate / reverbReferenceRate
	for i, n := range reverbCombTunings {
		r.combs[i] = dsp.NewComb(scaledLen(n, scale))
	}
	for i, n := range reverbAllpassTunings {
		r.allpasses[i] = dsp.NewAllpass(scaledLen(n, scale))
		r.allpasses[i].SetFeedback(0.5)
	}
	maxPredelaySamples := int(0.1 * sampleRate) // 100ms
	r.predelay = dsp.NewDelayLine(maxPredelaySamples+1, dsp.InterpLinear)
}

func scaledLen(n int, scale float32) int {
	l := int(float32(n) * scale)
	if l < 1 {
		l = 1
	}
	return l
}

// updateCombParams recomputes each comb's feedback/damping from room_size
// and decay, following the Freeverb formula: scaled_room = 0.28 + room*0.7;
// feedback = scaled_room + decay*(0.98 - scaled_room).
func (r *Reverb) updateCombParams() {
	room := r.roomSize.Current()
	decay := r.decay.Current()
	damp := r.damping.Current()

	scaledRoom := 0.28 + room*0.7
	feedback := scaledRoom + decay*(0.98-scaledRoom)

	for _, c := range r.combs {
		c.SetFeedback(feedback)
		c.SetDamping(damp)
	}
}

func (r *Reverb) Process(x float32) float32 {
	r.roomSize.Advance()
	r.decay.Advance()
	r.damping.Advance()
	r.updateCombParams()

	delayed := r.predelay.ReadWrite(x, r.predelayMs.Advance()*0.001*r.sampleRate)

	var combSum float32
	for _, c := range r.combs {
		combSum += c.Process(delayed)
	}
	combSum *= 0.125

	out := combSum
	for _, a := range r.allpasses {
		out = a.Process(out)
	}

	return dsp.Mix(x, out, r.mix.Advance())
}

func (r *Reverb) SetSampleRate(sampleRate float32) {
	r.sampleRate = sampleRate
	r.roomSize.SetSampleRate(sampleRate)
	r.decay.SetSampleRate(sampleRate)
	r.damping.SetSampleRate(sampleRate)
	r.predelayMs.SetSampleRate(sampleRate)
	r.mix.SetSampleRate(sampleRate)
	r.buildLines(sampleRate)
	r.updateCombParams()
}

func (r *Reverb) Reset() {
	for _, c := range r.combs {
		c.Reset()
	}
	for _, a := range r.allpasses {
		a.Reset()
	}
	r.predelay.Clear()
	r.roomSize.SnapToTarget()
	r.decay.SnapToTarget()
	r.damping.SnapToTarget()
	r.predelayMs.SnapToTarget()
	r.mix.SnapToTarget()
}

const (
	reverbParamRoomSize = iota
	reverbParamDecay
	reverbParamDamping
	reverbParamPredelay
	reverbParamMix
	reverbParamType
	reverbParamCount
)

func (r *Reverb) ParamCount() int { return reverbParamCount }

func (r *Reverb) ParamInfo(i int) param.Descriptor {
	switch i {
	case reverbParamRoomSize:
		return param.Custom("Room Size", "Size", 0, 1, 0.5)
	case reverbParamDecay:
		return param.Custom("Decay", "Decay", 0, 1, 0.5)
	case reverbParamDamping:
		return param.Custom("Damping", "Damp", 0, 1, 0.5)
	case reverbParamPredelay:
		d := param.Custom("Predelay", "PreDly", 0, 100, 0)
		d.Unit = param.UnitMs
		return d
	case reverbParamMix:
		return param.Custom("Mix", "Mix", 0, 1, 0.3)
	default: // reverbParamType
		d := param.Custom("Type", "Type", 0, 1, 0)
		d.Flags = param.FlagStepped
		d.StepLabels = []string{"Room", "Hall"}
		return d
	}
}

func (r *Reverb) GetParam(i int) float32 {
	switch i {
	case reverbParamRoomSize:
		return r.roomSize.Current()
	case reverbParamDecay:
		return r.decay.Current()
	case reverbParamDamping:
		return r.damping.Current()
	case reverbParamPredelay:
		return r.predelayMs.Current()
	case reverbParamMix:
		return r.mix.Current()
	default:
		return float32(r.kind)
	}
}

func (r *Reverb) SetParam(i int, value float32) {
	value = r.ParamInfo(i).Clamp(value)
	switch i {
	case reverbParamRoomSize:
		r.roomSize.SetTarget(value)
	case reverbParamDecay:
		r.decay.SetTarget(value)
	case reverbParamDamping:
		r.damping.SetTarget(value)
	case reverbParamPredelay:
		r.predelayMs.SetTarget(value)
	case reverbParamMix:
		r.mix.SetTarget(value)
	case reverbParamType:
		r.kind = ReverbType(value)
		r.applyTypePreset()
	}
}

// applyTypePreset sets room/decay/damping/predelay from the {Room, Hall}
// presets.
func (r *Reverb) applyTypePreset() {
	switch r.kind {
	case ReverbHall:
		r.roomSize.SetTarget(0.8)
		r.decay.SetTarget(0.8)
		r.damping.SetTarget(0.3)
		r.predelayMs.SetTarget(25)
	default: // ReverbRoom
		r.roomSize.SetTarget(0.4)
		r.decay.SetTarget(0.5)
		r.damping.SetTarget(0.5)
		r.predelayMs.SetTarget(10)
	}
}
