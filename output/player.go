// Package output adapts the chain runtime to an oto audio device: the
// device's pull callback drains interleaved float32 frames straight out of
// the runtime.
package output

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"

	"github.com/ampactor/sonido-sub001/chain"
)

const channelCount = 2

// Player owns the oto context and pulls audio from a chain.Runtime. The
// runtime pointer is atomic so Read, which runs on oto's audio goroutine,
// never takes a lock; the mutex covers only Start/Stop/Close and setup.
type Player struct {
	ctx       *oto.Context
	player    *oto.Player
	runtime   atomic.Pointer[chain.Runtime]
	sampleBuf []float32
	started   bool
	mutex     sync.Mutex
}

// NewPlayer opens an oto context at sampleRate and blocks until the device
// is ready.
func NewPlayer(sampleRate int) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &Player{ctx: ctx}, nil
}

// SetupPlayer binds the runtime and creates the oto player around this
// Player's Read method.
func (p *Player) SetupPlayer(rt *chain.Runtime) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.runtime.Store(rt)
	p.player = p.ctx.NewPlayer(p)
	// Pre-allocate 4096 float32s (16384 bytes), enough for typical oto pulls.
	p.sampleBuf = make([]float32, 4096)
}

// Read fills the device buffer with interleaved float32 frames. This is the
// audio thread's entry point: a single atomic load of the runtime pointer,
// then one ProcessInterleaved call per pull.
func (p *Player) Read(buf []byte) (int, error) {
	rt := p.runtime.Load()
	if rt == nil {
		for i := range buf {
			buf[i] = 0
		}
		return len(buf), nil
	}

	numSamples := len(buf) / 4
	if len(p.sampleBuf) < numSamples {
		p.sampleBuf = make([]float32, numSamples)
	}
	samples := p.sampleBuf[:numSamples]

	rt.ProcessInterleaved(samples, channelCount)

	copy(buf, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(buf)])
	return len(buf), nil
}

// Start begins playback; idempotent.
func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

// Stop halts playback; idempotent.
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.started && p.player != nil {
		p.player.Close()
		p.started = false
	}
}

// Close stops playback and releases the player.
func (p *Player) Close() {
	p.Stop()
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.player != nil {
		p.player.Close()
		p.player = nil
	}
}

// IsStarted reports whether playback is running.
func (p *Player) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}
