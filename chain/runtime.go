// Package chain implements the dynamic effect-chain runtime: the audio-thread
// owner of concrete effect instances. It drains structural commands from the
// parameter bridge, syncs bridge values into effect parameters, walks the
// current slot order for every sample frame, and publishes topology
// snapshots back through the bridge for control planes to observe.
package chain

import (
	"log"
	"math"
	"sync/atomic"
	"time"

	"github.com/ampactor/sonido-sub001/bridge"
	"github.com/ampactor/sonido-sub001/dsp"
	"github.com/ampactor/sonido-sub001/effect"
	"github.com/ampactor/sonido-sub001/registry"
)

const (
	transportQueueCap = 32
	meteringQueueCap  = 64
	inputQueueCap     = 16384

	// bypassFadeMs is the global dry/wet crossfade applied when the whole
	// chain is toggled, fast enough to feel instant but slow enough to
	// avoid clicks.
	bypassFadeMs = 5.0
)

// Runtime owns the concrete effect instances occupying the chain's slots and
// performs all structural mutation on the audio thread. Exactly one
// goroutine (the device callback) may call ProcessInterleaved or
// ProcessStereoBlock; SetSampleRate and EffectAt belong to that same
// goroutine or to a stopped runtime; every other method is safe to call from
// control threads.
type Runtime struct {
	reg *registry.Registry
	br  *bridge.Bridge

	sampleRate float32

	slots     [bridge.MaxSlots]registry.WithParams
	effectIDs [bridge.MaxSlots]string
	order     []bridge.SlotIndex

	inputGainTarget    bridge.AtomicFloat32
	masterVolumeTarget bridge.AtomicFloat32
	inputGain          *dsp.Smoother
	masterVolume       *dsp.Smoother

	chainBypass atomic.Bool
	bypassFade  *dsp.Smoother

	tempo atomic.Pointer[effect.TempoContext]

	transport chan TransportCommand
	metering  chan MeteringData
	input     chan float32

	file filePlayback

	running atomic.Bool

	// droppedCommands counts structural commands discarded on the audio
	// thread (unknown effect id, full slot table, invalid reorder). Control
	// planes poll it; nothing is ever surfaced synchronously from the audio
	// thread.
	droppedCommands atomic.Uint64
}

// New builds a runtime over reg and br at sampleRate, with an empty chain,
// unity gains and playback stopped.
func New(reg *registry.Registry, br *bridge.Bridge, sampleRate float32) *Runtime {
	r := &Runtime{
		reg:          reg,
		br:           br,
		sampleRate:   sampleRate,
		inputGain:    dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		masterVolume: dsp.NewSmoother(dsp.FastSmoothMs, sampleRate),
		bypassFade:   dsp.NewSmoother(bypassFadeMs, sampleRate),
		transport:    make(chan TransportCommand, transportQueueCap),
		metering:     make(chan MeteringData, meteringQueueCap),
		input:        make(chan float32, inputQueueCap),
	}
	r.inputGainTarget.Store(1)
	r.masterVolumeTarget.Store(1)
	r.inputGain.Set(1)
	r.masterVolume.Set(1)
	r.bypassFade.Set(1)
	r.running.Store(true)
	return r
}

// Bridge returns the parameter bridge the runtime publishes through.
func (r *Runtime) Bridge() *bridge.Bridge { return r.br }

// SampleRate returns the rate the chain is currently configured for.
func (r *Runtime) SampleRate() float32 { return r.sampleRate }

// SetSampleRate reconfigures the runtime and every resident effect for a new
// device rate. Call from the audio thread, or while the stream is stopped.
func (r *Runtime) SetSampleRate(rate float32) {
	r.sampleRate = rate
	r.inputGain.SetSampleRate(rate)
	r.masterVolume.SetSampleRate(rate)
	r.bypassFade.SetSampleRate(rate)
	for _, e := range r.slots {
		if e != nil {
			e.SetSampleRate(rate)
		}
	}
}

// SetRunning starts or stops processing; while stopped the runtime emits
// silence without touching the chain.
func (r *Runtime) SetRunning(running bool) { r.running.Store(running) }

// SetChainBypass toggles the whole chain; the audio thread crossfades
// between dry and processed signal over a few milliseconds.
func (r *Runtime) SetChainBypass(bypassed bool) { r.chainBypass.Store(bypassed) }

// ChainBypass reports the current whole-chain bypass state.
func (r *Runtime) ChainBypass() bool { return r.chainBypass.Load() }

// SetInputGain and SetMasterVolume set smoothed global gain targets; the
// ramp happens on the audio thread.
func (r *Runtime) SetInputGain(linear float32)    { r.inputGainTarget.Store(linear) }
func (r *Runtime) SetMasterVolume(linear float32) { r.masterVolumeTarget.Store(linear) }

// SetTempoContext publishes host tempo/transport information; the audio
// thread forwards it to every resident effect before the next block.
func (r *Runtime) SetTempoContext(ctx effect.TempoContext) {
	r.tempo.Store(&ctx)
}

// PostTransport enqueues a transport command for the next block. Returns
// false if the queue is full.
func (r *Runtime) PostTransport(cmd TransportCommand) bool {
	select {
	case r.transport <- cmd:
		return true
	default:
		log.Printf("chain: transport queue full, dropping command kind %d", cmd.Kind)
		return false
	}
}

// PushInput feeds one interleaved mic sample from the input device callback.
// Returns false when the queue is full (the sample is dropped).
func (r *Runtime) PushInput(sample float32) bool {
	select {
	case r.input <- dsp.NanToZero(sample):
		return true
	default:
		return false
	}
}

// Metering returns the channel per-block meter frames arrive on.
func (r *Runtime) Metering() <-chan MeteringData { return r.metering }

// DroppedCommands returns how many structural commands the audio thread has
// discarded so far.
func (r *Runtime) DroppedCommands() uint64 { return r.droppedCommands.Load() }

// EffectAt returns the effect instance resident in slot, or nil. Only
// meaningful from the audio thread or while the stream is stopped.
func (r *Runtime) EffectAt(slot bridge.SlotIndex) registry.WithParams {
	if slot < 0 || int(slot) >= bridge.MaxSlots {
		return nil
	}
	return r.slots[slot]
}

// drainTransport applies every pending transport command.
func (r *Runtime) drainTransport() {
	for {
		select {
		case cmd := <-r.transport:
			r.file.apply(cmd)
		default:
			return
		}
	}
}

// lowestVacantSlot returns the first slot with no resident effect, or -1.
func (r *Runtime) lowestVacantSlot() bridge.SlotIndex {
	for i := 0; i < bridge.MaxSlots; i++ {
		if r.slots[i] == nil {
			return bridge.SlotIndex(i)
		}
	}
	return -1
}

// drainStructural try-locks the bridge's command queue and applies whatever
// is pending. On contention it returns immediately; the commands keep until
// the next block. After any Add/Remove/Reorder it republishes snapshots,
// order and aggregate latency in one step.
func (r *Runtime) drainStructural() {
	cmds, ok := r.br.TryDrainCommands()
	if !ok || len(cmds) == 0 {
		return
	}

	structural := false
	for _, cmd := range cmds {
		switch cmd.Kind {
		case bridge.CommandAdd:
			structural = r.applyAdd(cmd.EffectID) || structural
		case bridge.CommandRemove:
			structural = r.applyRemove(cmd.Slot) || structural
		case bridge.CommandReorder:
			structural = r.applyReorder(cmd.NewOrder) || structural
		case bridge.CommandRestore:
			r.applyRestore(cmd.Slot, cmd.Params, cmd.Bypassed)
		}
	}

	if structural {
		r.publishTopology()
	}
}

func (r *Runtime) applyAdd(effectID string) bool {
	inst, err := r.reg.Create(effectID, r.sampleRate)
	if err != nil {
		log.Printf("chain: %v, dropping Add", err)
		r.droppedCommands.Add(1)
		return false
	}
	slot := r.lowestVacantSlot()
	if slot < 0 {
		log.Printf("chain: no vacant slot for effect %q, dropping Add", effectID)
		r.droppedCommands.Add(1)
		return false
	}

	defaults := make([]float32, inst.ParamCount())
	for i := range defaults {
		defaults[i] = inst.ParamInfo(i).Default
	}
	r.br.ApplyAdd(slot, defaults)

	r.slots[slot] = inst
	r.effectIDs[slot] = effectID
	r.order = append(r.order, slot)
	return true
}

func (r *Runtime) applyRemove(slot bridge.SlotIndex) bool {
	if slot < 0 || int(slot) >= bridge.MaxSlots || r.slots[slot] == nil {
		log.Printf("chain: Remove for vacant slot %d, dropping", slot)
		r.droppedCommands.Add(1)
		return false
	}
	r.slots[slot] = nil
	r.effectIDs[slot] = ""
	r.br.ApplyRemove(slot)

	for i, s := range r.order {
		if s == slot {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// applyReorder adopts newOrder if it is a permutation of the currently
// occupied slots; anything else is discarded.
func (r *Runtime) applyReorder(newOrder []bridge.SlotIndex) bool {
	if len(newOrder) != len(r.order) {
		log.Printf("chain: Reorder length %d != occupied %d, dropping", len(newOrder), len(r.order))
		r.droppedCommands.Add(1)
		return false
	}
	seen := make(map[bridge.SlotIndex]bool, len(newOrder))
	for _, s := range newOrder {
		if s < 0 || int(s) >= bridge.MaxSlots || r.slots[s] == nil || seen[s] {
			log.Printf("chain: Reorder names invalid slot %d, dropping", s)
			r.droppedCommands.Add(1)
			return false
		}
		seen[s] = true
	}
	r.order = append(r.order[:0], newOrder...)
	return true
}

func (r *Runtime) applyRestore(slot bridge.SlotIndex, params []float32, bypassed bool) {
	if slot < 0 || int(slot) >= bridge.MaxSlots || r.slots[slot] == nil {
		log.Printf("chain: Restore for vacant slot %d, dropping", slot)
		r.droppedCommands.Add(1)
		return
	}
	r.br.ApplyRestore(slot, params, bypassed)
}

// publishTopology rebuilds slot snapshots, copies the order, recomputes
// aggregate latency over non-bypassed active effects, and publishes all of
// it through the bridge in one step.
func (r *Runtime) publishTopology() {
	snaps := make([]bridge.SlotSnapshot, bridge.MaxSlots)
	for i, e := range r.slots {
		if e == nil {
			snaps[i] = bridge.SlotSnapshot{}
			continue
		}
		n := e.ParamCount()
		snap := bridge.SlotSnapshot{EffectID: r.effectIDs[i], Active: true}
		for p := 0; p < n; p++ {
			snap.Descriptors = append(snap.Descriptors, e.ParamInfo(p))
		}
		snaps[i] = snap
	}

	orderCopy := append([]bridge.SlotIndex(nil), r.order...)

	latency := 0
	for _, s := range r.order {
		if !r.br.Bypass(s) {
			latency += r.slots[s].LatencySamples()
		}
	}

	r.br.PublishTopology(snaps, orderCopy, uint32(latency))
}

// syncParams pushes every bridge parameter value into its effect, feeding
// each effect's own smoothers so changes glide instead of stepping.
func (r *Runtime) syncParams() {
	for _, s := range r.order {
		e := r.slots[s]
		n := e.ParamCount()
		if n > bridge.Stride {
			n = bridge.Stride
		}
		for p := 0; p < n; p++ {
			e.SetParam(p, r.br.LoadParam(s, bridge.ParamIndex(p)))
		}
	}
}

// blockPrologue runs the once-per-block steps shared by both processing
// entry points: transport drain, structural drain, tempo propagation,
// parameter sync and global gain targets.
func (r *Runtime) blockPrologue() {
	r.drainTransport()
	r.drainStructural()

	if ctx := r.tempo.Load(); ctx != nil {
		for _, s := range r.order {
			r.slots[s].SetTempoContext(*ctx)
		}
	}

	r.syncParams()

	r.inputGain.SetTarget(r.inputGainTarget.Load())
	r.masterVolume.SetTarget(r.masterVolumeTarget.Load())
	if r.chainBypass.Load() {
		r.bypassFade.SetTarget(0)
	} else {
		r.bypassFade.SetTarget(1)
	}
}

// processFrame runs one stereo frame through the non-bypassed slots in
// order, crossfading against the dry signal for whole-chain bypass.
func (r *Runtime) processFrame(l, rIn float32) (float32, float32) {
	fade := r.bypassFade.Advance()
	if fade < 1e-4 {
		return l, rIn
	}

	wetL, wetR := l, rIn
	for _, s := range r.order {
		if r.br.Bypass(s) {
			continue
		}
		wetL, wetR = r.slots[s].ProcessStereo(wetL, wetR)
	}
	return l + fade*(wetL-l), rIn + fade*(wetR-rIn)
}

// nextInputFrame pulls one stereo frame from the selected source: the
// in-memory file in file mode, otherwise the mic input queue (two
// interleaved channels). An empty source yields silence.
func (r *Runtime) nextInputFrame() (float32, float32) {
	if r.file.fileMode {
		return r.file.nextFrame()
	}
	var l, rIn float32
	select {
	case l = <-r.input:
	default:
		return 0, 0
	}
	select {
	case rIn = <-r.input:
	default:
		rIn = l
	}
	return l, rIn
}

// ProcessInterleaved fills one interleaved device buffer with channels
// channels per frame: the full per-block step of source intake, gain
// staging, chain processing and metering. Mono devices receive the L+R mix,
// stereo devices L then R, wider layouts L and R on the first two channels
// and silence on the rest.
func (r *Runtime) ProcessInterleaved(out []float32, channels int) {
	if channels < 1 {
		return
	}
	frames := len(out) / channels

	if !r.running.Load() {
		for i := range out {
			out[i] = 0
		}
		return
	}

	start := time.Now()
	r.blockPrologue()

	var inPeak, inRMSSum, outPeak, outRMSSum float32

	for f := 0; f < frames; f++ {
		gain := r.inputGain.Advance()
		l, rIn := r.nextInputFrame()
		l = dsp.NanToZero(l) * gain
		rIn = dsp.NanToZero(rIn) * gain

		monoIn := 0.5 * (l + rIn)
		if a := absf(monoIn); a > inPeak {
			inPeak = a
		}
		inRMSSum += monoIn * monoIn

		outL, outR := r.processFrame(l, rIn)

		vol := r.masterVolume.Advance()
		outL *= vol
		outR *= vol

		monoOut := 0.5 * (outL + outR)
		if a := absf(monoOut); a > outPeak {
			outPeak = a
		}
		outRMSSum += monoOut * monoOut

		base := f * channels
		switch channels {
		case 1:
			out[base] = monoOut
		case 2:
			out[base] = outL
			out[base+1] = outR
		default:
			out[base] = outL
			out[base+1] = outR
			for c := 2; c < channels; c++ {
				out[base+c] = 0
			}
		}
	}

	r.sendMetering(frames, inPeak, inRMSSum, outPeak, outRMSSum, start)
}

// ProcessStereoBlock runs caller-supplied stereo buffers through the chain:
// the offline path used by file rendering and tests. All four slices must be
// the same length. Gain staging and the block prologue match the live path;
// no metering is sent.
func (r *Runtime) ProcessStereoBlock(inL, inR, outL, outR []float32) {
	r.blockPrologue()

	for i := range inL {
		gain := r.inputGain.Advance()
		l := dsp.NanToZero(inL[i]) * gain
		rIn := dsp.NanToZero(inR[i]) * gain

		oL, oR := r.processFrame(l, rIn)

		vol := r.masterVolume.Advance()
		outL[i] = oL * vol
		outR[i] = oR * vol
	}
}

func (r *Runtime) sendMetering(frames int, inPeak, inRMSSum, outPeak, outRMSSum float32, start time.Time) {
	if frames == 0 {
		return
	}
	count := float32(frames)

	reduction := float32(0)
	for _, s := range r.order {
		if gr, ok := r.slots[s].(gainReducer); ok && !r.br.Bypass(s) {
			reduction += gr.GainReductionDb()
		}
	}

	blockSecs := float64(frames) / float64(r.sampleRate)
	cpu := float32(0)
	if blockSecs > 0 {
		cpu = float32(time.Since(start).Seconds() / blockSecs * 100)
	}

	md := MeteringData{
		InputPeak:            inPeak,
		InputRMS:             sqrtf(inRMSSum / count),
		OutputPeak:           outPeak,
		OutputRMS:            sqrtf(outRMSSum / count),
		GainReductionDb:      reduction,
		CPUUsage:             cpu,
		PlaybackPositionSecs: r.file.positionSecs(),
	}
	select {
	case r.metering <- md:
	default:
	}
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
