// Package bridge implements the lock-free parameter bridge: a
// flat [slots x params] grid of atomic parameter values shared between the
// audio thread and any number of control-plane threads (GUI, plugin host,
// hardware surface), plus the mutex-guarded structural command queue used
// to add, remove and reorder effects without ever blocking the audio
// thread.
package bridge

import (
	"sync"
	"sync/atomic"
)

// MaxSlots and Stride size the parameter grid at build time: MaxSlots x
// Stride = 512 parameter cells in total.
const (
	MaxSlots = 16
	Stride   = 32
	gridSize = MaxSlots * Stride
)

// Gesture bit flags, accumulated via atomic-OR and consumed via
// atomic-swap-zero so each is delivered to its consumer at most once.
const (
	GestureBegin uint8 = 1 << 0
	GestureEnd   uint8 = 1 << 1
)

// Bridge is the shared, process-wide state connecting control planes to the
// audio thread. Parameter values, gesture flags and bypass flags are
// wait-free atomic cells; slot snapshots and chain order are published by
// atomic pointer swap; only the structural command queue uses a mutex, and
// only the audio thread's TryLock on it may ever fail to acquire -- it never
// blocks.
type Bridge struct {
	values       [gridSize]AtomicFloat32
	gestureFlags [gridSize]atomic.Uint32 // low byte used; Uint32 keeps alignment simple
	bypassFlags  [MaxSlots]atomic.Bool

	slots atomic.Pointer[[]SlotSnapshot]
	order atomic.Pointer[[]SlotIndex]

	commandsMu sync.Mutex
	commands   []Command
	// commandCapacity bounds the queue; Post returns an error on overflow
	// rather than silently dropping a command.
	commandCapacity int

	needsRescan    atomic.Bool
	latencySamples atomic.Uint32

	// RequestCallback, if set, is invoked by Post after a command is
	// enqueued, so hosts that need an explicit wake-up (rather than polling)
	// can schedule a process call. No-op by default.
	RequestCallback func()
}

// New builds an empty bridge with the given structural-command queue
// capacity.
func New(commandCapacity int) *Bridge {
	b := &Bridge{commandCapacity: commandCapacity}
	empty := make([]SlotSnapshot, MaxSlots)
	emptyOrder := make([]SlotIndex, 0)
	b.slots.Store(&empty)
	b.order.Store(&emptyOrder)
	return b
}

// flatID returns the grid index for (slot, param); callers are responsible
// for keeping param < Stride.
func flatID(slot SlotIndex, param ParamIndex) int {
	return int(slot)*Stride + int(param)
}

// LoadParam is a single acquire load of one parameter's current value.
func (b *Bridge) LoadParam(slot SlotIndex, param ParamIndex) float32 {
	return b.values[flatID(slot, param)].Load()
}

// StoreParam is a bounded, clamped release store. The caller supplies the
// clamp range (looked up from the current SlotSnapshot's descriptor); pass
// clamp=false (vacant slot) to store the value unclamped, keeping writes
// to not-yet-occupied slots possible.
func (b *Bridge) StoreParam(slot SlotIndex, param ParamIndex, value, min, max float32, clamp bool) {
	if clamp {
		if value < min {
			value = min
		} else if value > max {
			value = max
		}
	}
	b.values[flatID(slot, param)].Store(value)
}

// storeParamRaw writes a value with no clamping at all, used internally by
// Add (descriptor defaults) and Restore (preset-correct values).
func (b *Bridge) storeParamRaw(slot SlotIndex, param ParamIndex, value float32) {
	b.values[flatID(slot, param)].Store(value)
}

// zeroSlotParams clears every parameter cell belonging to slot, used when a
// slot is vacated so stale values never bleed into the next resident
// effect.
func (b *Bridge) zeroSlotParams(slot SlotIndex) {
	base := int(slot) * Stride
	for i := 0; i < Stride; i++ {
		b.values[base+i].Store(0)
	}
}

// Bypass returns whether slot is currently bypassed.
func (b *Bridge) Bypass(slot SlotIndex) bool {
	return b.bypassFlags[slot].Load()
}

// SetBypass is a single release store.
func (b *Bridge) SetBypass(slot SlotIndex, bypassed bool) {
	b.bypassFlags[slot].Store(bypassed)
}

// orGestureBit sets bit via a compare-and-swap retry loop: sync/atomic's
// Uint32 has no built-in Or, so bitwise-set is the one place this grid
// needs a CAS spin rather than a plain store.
func orGestureBit(cell *atomic.Uint32, bit uint32) {
	for {
		old := cell.Load()
		if old&bit == bit {
			return
		}
		if cell.CompareAndSwap(old, old|bit) {
			return
		}
	}
}

// PostGestureBegin/PostGestureEnd set the corresponding bit via atomic-OR;
// a consumer collects them with TakeGestureFlags. The chain runtime does not
// call TakeGestureFlags itself.
func (b *Bridge) PostGestureBegin(slot SlotIndex, param ParamIndex) {
	orGestureBit(&b.gestureFlags[flatID(slot, param)], uint32(GestureBegin))
}

func (b *Bridge) PostGestureEnd(slot SlotIndex, param ParamIndex) {
	orGestureBit(&b.gestureFlags[flatID(slot, param)], uint32(GestureEnd))
}

// TakeGestureFlags atomically swaps the flags for (slot, param) to zero and
// returns what was pending, guaranteeing each flag is delivered at most
// once.
func (b *Bridge) TakeGestureFlags(slot SlotIndex, param ParamIndex) uint8 {
	return uint8(b.gestureFlags[flatID(slot, param)].Swap(0))
}

// LoadSlots returns the currently-published slot snapshot vector. The
// returned slice must be treated as immutable by the caller.
func (b *Bridge) LoadSlots() []SlotSnapshot {
	p := b.slots.Load()
	if p == nil {
		return nil
	}
	return *p
}

// LoadOrder returns the currently-published processing order. The returned
// slice must be treated as immutable by the caller.
func (b *Bridge) LoadOrder() []SlotIndex {
	p := b.order.Load()
	if p == nil {
		return nil
	}
	return *p
}

// publishSlots and publishOrder are called only by the audio thread after
// applying a drained command batch that changed topology.
func (b *Bridge) publishSlots(slots []SlotSnapshot) {
	b.slots.Store(&slots)
}

func (b *Bridge) publishOrder(order []SlotIndex) {
	b.order.Store(&order)
}

// NeedsRescan reports whether slots/order changed since the last
// AcknowledgeRescan, for host integrations that rescan descriptors on
// change rather than every block.
func (b *Bridge) NeedsRescan() bool {
	return b.needsRescan.Load()
}

// AcknowledgeRescan clears the needs-rescan flag; callers should call this
// once they have re-read LoadSlots/LoadOrder.
func (b *Bridge) AcknowledgeRescan() {
	b.needsRescan.Store(false)
}

func (b *Bridge) setNeedsRescan() {
	b.needsRescan.Store(true)
}

// LatencySamples returns the aggregate chain latency last published by the
// audio thread.
func (b *Bridge) LatencySamples() uint32 {
	return b.latencySamples.Load()
}

func (b *Bridge) publishLatency(samples uint32) {
	b.latencySamples.Store(samples)
}

// ApplyAdd initialises the parameter grid for a newly-added effect at slot:
// every descriptor's default value, bypass cleared. Called by the chain
// runtime after it has chosen the lowest vacant slot and constructed the
// effect instance. defaults holds one value per parameter the
// effect exposes, in descriptor order.
func (b *Bridge) ApplyAdd(slot SlotIndex, defaults []float32) {
	for i, v := range defaults {
		b.storeParamRaw(slot, ParamIndex(i), v)
	}
	b.SetBypass(slot, false)
}

// ApplyRemove zeroes slot's parameter values and clears its bypass flag, so
// a subsequent Add into the same slot never observes the previous
// resident's state.
func (b *Bridge) ApplyRemove(slot SlotIndex) {
	b.zeroSlotParams(slot)
	b.SetBypass(slot, false)
}

// ApplyRestore writes preset-correct parameter values (no clamp) and the
// saved bypass state into a freshly added effect during preset load.
func (b *Bridge) ApplyRestore(slot SlotIndex, params []float32, bypassed bool) {
	for i, v := range params {
		b.storeParamRaw(slot, ParamIndex(i), v)
	}
	b.SetBypass(slot, bypassed)
}

// PublishTopology atomically publishes a new slot snapshot vector, chain
// order and aggregate latency, and sets needs_rescan -- the single publish
// step that follows a drained structural command batch.
func (b *Bridge) PublishTopology(slots []SlotSnapshot, order []SlotIndex, latencySamples uint32) {
	b.publishSlots(slots)
	b.publishOrder(order)
	b.publishLatency(latencySamples)
	b.setNeedsRescan()
}
