package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource hands out fixed-size frames of an incrementing byte value,
// so tests can tell frames apart in the drained output.
type fakeSource struct {
	mu        sync.Mutex
	frameSize int
	next      byte
	synced    []time.Time
}

func newFakeSource(frameSize int) *fakeSource {
	return &fakeSource{frameSize: frameSize}
}

func (f *fakeSource) NextFrameBytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := make([]byte, f.frameSize)
	for i := range b {
		b[i] = f.next
	}
	f.next++
	return b
}

func (f *fakeSource) SyncToTime(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = append(f.synced, t)
	return nil
}

func (f *fakeSource) syncCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.synced)
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

func TestStartUpHandshake_SyncsOnFirstProcess(t *testing.T) {
	src := newFakeSource(4)
	e := New(src, nil, 48000, 4, 16, 4, nil)
	require.NoError(t, e.Start())
	defer e.Stop()

	assert.Equal(t, 0, src.syncCount())

	out := make([]byte, 4)
	e.OnProcess(out)

	waitUntil(t, time.Second, func() bool { return src.syncCount() == 1 })
}

func TestProcess_DrainsRingAndSilenceFillsShortfall(t *testing.T) {
	src := newFakeSource(4)
	e := New(src, nil, 48000, 4, 4, 8, nil)
	require.NoError(t, e.Start())
	defer e.Stop()

	out := make([]byte, 4)
	e.OnProcess(out) // first call: triggers handshake, may read zeroes

	waitUntil(t, time.Second, func() bool { return e.ring.Load().ReadSpace() > 0 })

	out2 := make([]byte, 4)
	e.OnProcess(out2)
	assert.Equal(t, []byte{0, 0, 0, 0}, out2)

	// Drain far beyond what was produced so far (the ring holds at most
	// 4*8*4 = 128 bytes); the tail must be silence, never garbage.
	big := make([]byte, 256)
	for i := range big {
		big[i] = 0xAA
	}
	e.OnProcess(big)
	for i := len(big) - 4; i < len(big); i++ {
		assert.Equal(t, byte(0), big[i])
	}
}

func TestOnBlockSizeChanged_ReplacesRingAndResumesFilling(t *testing.T) {
	src := newFakeSource(4)
	e := New(src, nil, 48000, 4, 16, 4, nil)
	require.NoError(t, e.Start())
	defer e.Stop()

	out := make([]byte, 4)
	e.OnProcess(out)
	waitUntil(t, time.Second, func() bool { return e.ring.Load().ReadSpace() > 0 })

	e.OnBlockSizeChanged(32)

	e.mu.Lock()
	bs := e.blockSize
	cap := e.ring.Load().capacity
	e.mu.Unlock()
	assert.Equal(t, 32, bs)
	assert.Equal(t, int64(32*4*4), cap)

	waitUntil(t, time.Second, func() bool { return e.ring.Load().ReadSpace() > 0 })
}

func TestStop_IsIdempotentAndStopsProducer(t *testing.T) {
	src := newFakeSource(4)
	e := New(src, nil, 48000, 4, 16, 4, nil)
	require.NoError(t, e.Start())

	out := make([]byte, 4)
	e.OnProcess(out)
	waitUntil(t, time.Second, func() bool { return e.ring.Load().ReadSpace() > 0 })

	e.Stop()
	e.Stop() // must not hang or panic

	e.mu.Lock()
	stopped := e.stopped
	e.mu.Unlock()
	assert.True(t, stopped)
}

func TestStop_BeforeFirstProcessStillTerminates(t *testing.T) {
	src := newFakeSource(4)
	e := New(src, nil, 48000, 4, 16, 4, nil)
	require.NoError(t, e.Start())

	done := make(chan struct{})
	go func() {
		e.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return when producer was still waiting for ready")
	}
}
