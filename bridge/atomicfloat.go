package bridge

import (
	"math"
	"sync/atomic"
)

// AtomicFloat32 is an AtomicU32 holding the IEEE-754 bit pattern of a
// float32. Store/Load use release/acquire ordering via the
// underlying atomic.Uint32.
type AtomicFloat32 struct {
	bits atomic.Uint32
}

// Load is a single acquire load.
func (a *AtomicFloat32) Load() float32 {
	return math.Float32frombits(a.bits.Load())
}

// Store is a single release store.
func (a *AtomicFloat32) Store(v float32) {
	a.bits.Store(math.Float32bits(v))
}
