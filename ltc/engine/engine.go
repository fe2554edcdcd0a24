// Package engine implements the ring-buffered real-time audio core
// (component H): a producer goroutine that keeps a lock-free SPSC ring
// filled with generated LTC audio, and an audio-callback consumer the
// host drives directly, synchronized through a start-up handshake and a
// block-size-change protocol.
package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// needDataWait bounds how long the producer blocks waiting to be
// woken, so a missed wakeup signal can never wedge it indefinitely.
const needDataWait = 10 * time.Millisecond

// Engine owns the producer goroutine and ring buffer. The zero value is
// not usable; construct with New.
type Engine struct {
	source      FrameSource
	host        Host
	sampleRate  float64
	sampleWidth int
	queueLength int
	logger      *log.Logger

	// OutputPortName and MIDIPortName are used when registering with a
	// non-nil Host at Start. New sets them to "ltc_out" and "mtc_in";
	// callers may override them before calling Start.
	OutputPortName string
	MIDIPortName   string

	mu   sync.Mutex
	cond *sync.Cond

	ring             atomic.Pointer[RingBuffer]
	blockSize        int
	bufferTimeOffset time.Duration
	dataWaiting      []byte

	running bool
	ready   bool
	idle    bool
	stopped bool

	needData chan struct{}

	processTimestamp atomic.Int64
	lastFrameTime    atomic.Int64

	// OnMIDIIn, if set, receives bytes the host delivers via OnMIDI.
	OnMIDIIn func(data []byte)
}

// New constructs an Engine. host may be nil (tests, and any caller that
// drives OnProcess/OnBlockSizeChanged directly without a real binding).
// blockSize and queueLength determine the ring's capacity
// (blockSize * queueLength * sampleWidth bytes) and the start-up
// buffer_time_offset.
func New(source FrameSource, host Host, sampleRate float64, sampleWidth, blockSize, queueLength int, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{
		source:         source,
		host:           host,
		sampleRate:     sampleRate,
		sampleWidth:    sampleWidth,
		queueLength:    queueLength,
		blockSize:      blockSize,
		logger:         logger,
		needData:       make(chan struct{}, 1),
		OutputPortName: "ltc_out",
		MIDIPortName:   "mtc_in",
	}
	e.cond = sync.NewCond(&e.mu)
	e.ring.Store(NewRingBuffer(blockSize * queueLength * sampleWidth))
	e.bufferTimeOffset = bufferTimeOffset(blockSize, queueLength, sampleRate)
	return e
}

func bufferTimeOffset(blockSize, queueLength int, sampleRate float64) time.Duration {
	seconds := float64(blockSize*queueLength) / sampleRate
	return time.Duration(seconds * float64(time.Second))
}

// Start registers and activates the host binding (if one was supplied)
// and launches the producer goroutine. It is a no-op if already
// running.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	if e.host != nil {
		if err := e.host.RegisterOutputPort(e.OutputPortName); err != nil {
			return fmt.Errorf("engine: registering output port: %w", err)
		}
		if err := e.host.RegisterMIDIInputPort(e.MIDIPortName); err != nil {
			return fmt.Errorf("engine: registering MIDI input port: %w", err)
		}
		if err := e.host.Activate(); err != nil {
			return fmt.Errorf("engine: activating host: %w", err)
		}
	}

	e.mu.Lock()
	e.running = true
	e.stopped = false
	e.mu.Unlock()

	go e.producerLoop()
	return nil
}

// Stop clears running, wakes the producer, and waits for it to finish.
// Honored even mid-start-up (before the first OnProcess call has set
// ready).
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.cond.Broadcast()
	e.mu.Unlock()

	e.wakeProducer()

	e.mu.Lock()
	for !e.stopped {
		e.cond.Wait()
	}
	e.mu.Unlock()

	if e.host != nil {
		if err := e.host.Deactivate(); err != nil {
			e.logger.Error("engine: failed to deactivate host binding", "err", err)
		}
	}
}

func (e *Engine) wakeProducer() {
	select {
	case e.needData <- struct{}{}:
	default:
	}
}

// OnProcess is the audio callback: the host invokes it with the output
// buffer it wants filled. It reads the ring without the lock, but every
// call takes mu briefly to check and raise ready, so it can wait while
// the producer holds mu during a refill pass. The first call completes
// the start-up handshake by recording a process timestamp and raising
// ready.
func (e *Engine) OnProcess(out []byte) {
	now := time.Now().UnixNano()

	e.mu.Lock()
	firstCall := !e.ready
	if firstCall {
		e.ready = true
	}
	e.mu.Unlock()
	if firstCall {
		e.processTimestamp.Store(now)
		e.mu.Lock()
		e.cond.Broadcast()
		e.mu.Unlock()
	}

	n := e.ring.Load().Read(out)
	for i := n; i < len(out); i++ {
		out[i] = 0
	}

	e.lastFrameTime.Store(now)
	e.wakeProducer()
}

// OnMIDI delivers incoming MIDI bytes from the host; forwarded to
// OnMIDIIn if set.
func (e *Engine) OnMIDI(data []byte) {
	if e.OnMIDIIn != nil {
		e.OnMIDIIn(data)
	}
}

// OnBlockSizeChanged implements the block-size-change protocol: under
// the buffer lock, replace the ring and recompute buffer_time_offset,
// then wait for the producer to observe the change (complete at least
// one refill pass under the new size) before returning.
func (e *Engine) OnBlockSizeChanged(newSize int) {
	e.mu.Lock()
	e.blockSize = newSize
	e.ring.Store(NewRingBuffer(newSize * e.queueLength * e.sampleWidth))
	e.dataWaiting = nil
	e.bufferTimeOffset = bufferTimeOffset(newSize, e.queueLength, e.sampleRate)
	e.idle = false
	running := e.running
	e.mu.Unlock()

	if !running {
		return
	}

	e.wakeProducer()

	e.mu.Lock()
	for !e.idle && e.running {
		e.cond.Wait()
	}
	e.mu.Unlock()
}

// CurrentProcessTimestamp returns the wall-clock time (as UnixNano) the
// first OnProcess call was observed at.
func (e *Engine) CurrentProcessTimestamp() int64 { return e.processTimestamp.Load() }

// LastFrameTime returns the wall-clock time (as UnixNano) of the most
// recent OnProcess call.
func (e *Engine) LastFrameTime() int64 { return e.lastFrameTime.Load() }

func (e *Engine) producerLoop() {
	e.mu.Lock()
	for !e.ready && e.running {
		e.cond.Wait()
	}
	running := e.running
	e.mu.Unlock()

	if !running {
		e.finishStopped()
		return
	}

	offset := e.currentBufferTimeOffset()
	if err := e.source.SyncToTime(time.Now().Add(offset)); err != nil {
		e.logger.Error("engine: failed to synchronize frame to start-up time", "err", err)
	}

	e.mu.Lock()
	e.fillLocked()
	e.mu.Unlock()

	for {
		e.mu.Lock()
		running = e.running
		e.mu.Unlock()
		if !running {
			break
		}

		select {
		case <-e.needData:
		case <-time.After(needDataWait):
		}

		e.mu.Lock()
		if !e.running {
			e.mu.Unlock()
			break
		}
		e.idle = false
		e.fillLocked()
		e.idle = true
		e.cond.Broadcast()
		e.mu.Unlock()
	}

	e.finishStopped()
}

func (e *Engine) currentBufferTimeOffset() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bufferTimeOffset
}

// fillLocked refills the ring until there is not enough write space for
// one more frame's worth of output, stashing an over-sized frame as
// dataWaiting for the next pass. Must be called with mu held.
func (e *Engine) fillLocked() {
	ring := e.ring.Load()
	for {
		var frameBytes []byte
		if len(e.dataWaiting) > 0 {
			frameBytes = e.dataWaiting
			e.dataWaiting = nil
		} else {
			frameBytes = e.source.NextFrameBytes()
		}

		if int64(len(frameBytes)) > ring.WriteSpace() {
			e.dataWaiting = frameBytes
			return
		}
		ring.Write(frameBytes)
	}
}

func (e *Engine) finishStopped() {
	e.mu.Lock()
	e.stopped = true
	e.cond.Broadcast()
	e.mu.Unlock()
}
