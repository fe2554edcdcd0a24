// Package audiohost is the PortAudio binding for ltc/engine: the
// "audio host binding... PortAudio equivalent" spec.md §1 treats as an
// external collaborator. It implements engine.Host so ltc/engine stays
// testable without a sound card, and provides GeneratorSource, an
// engine.FrameSource wrapping ltc/audiogen.AudioGenerator.
package audiohost

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/doismellburning/ltcgen/ltc/audiogen"
	"github.com/doismellburning/ltcgen/ltc/biphase"
	"github.com/doismellburning/ltcgen/ltc/engine"
	"github.com/doismellburning/ltcgen/ltc/errs"
	"github.com/gordonklaus/portaudio"
)

// Device describes one PortAudio device, for the CLI's `devices`
// subcommand.
type Device struct {
	Index      int
	Name       string
	MaxOutputs int
	MaxInputs  int
}

// ListDevices returns every device PortAudio reports. Callers are
// expected to have already called portaudio.Initialize.
func ListDevices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: listing devices: %v", errs.ErrHostUnavailable, err)
	}
	out := make([]Device, len(infos))
	for i, d := range infos {
		out[i] = Device{Index: i, Name: d.Name, MaxOutputs: d.MaxOutputChannels, MaxInputs: d.MaxInputChannels}
	}
	return out, nil
}

// Host implements engine.Host by driving a blocking-write PortAudio
// output stream from a dedicated goroutine: each iteration asks the
// Engine to fill a buffer (OnProcess) and writes it, mirroring the
// capture/playback-loop-plus-Start/Stop shape PortAudio bindings in the
// pack use rather than PortAudio's callback API.
type Host struct {
	SampleRate  float64
	BlockSize   int
	SampleWidth int
	DeviceIndex int // -1 for the system default output device

	logger *log.Logger
	engine *engine.Engine // set via Bind before Activate

	mu             sync.Mutex
	outputPortName string
	stream         *portaudio.Stream
	outBuf         []float32

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	currentFrameTime atomic.Uint64
	lastFrameTime    atomic.Uint64
}

// New returns a Host ready to be passed to engine.New, then Bound back
// to that same Engine once constructed (the two are circularly
// dependent: the Engine calls the Host's outbound methods, the Host's
// playback loop calls the Engine's OnProcess).
func New(sampleRate float64, blockSize, sampleWidth, deviceIndex int, logger *log.Logger) *Host {
	if logger == nil {
		logger = log.Default()
	}
	return &Host{
		SampleRate:  sampleRate,
		BlockSize:   blockSize,
		SampleWidth: sampleWidth,
		DeviceIndex: deviceIndex,
		logger:      logger,
	}
}

// Bind completes the circular wiring between a Host and the Engine it
// drives. Call once, after constructing both.
func (h *Host) Bind(e *engine.Engine) {
	h.engine = e
}

// RegisterOutputPort records the desired output port name. PortAudio
// has no named-port graph the way JACK does, so this is purely a label
// used in logging; the actual device is chosen by DeviceIndex.
func (h *Host) RegisterOutputPort(name string) error {
	h.mu.Lock()
	h.outputPortName = name
	h.mu.Unlock()
	return nil
}

// RegisterMIDIInputPort is a no-op: this binding is output-only. LTC
// generation never needs a MIDI input; MTC decoding is driven by
// mtc.Reassembler fed directly from whatever MIDI source the caller
// already has, not through this Host.
func (h *Host) RegisterMIDIInputPort(name string) error {
	return nil
}

// Connect is a no-op: a single dedicated output stream has nothing to
// patch together, matching SPEC_FULL.md §4.K's "no-op single stream"
// note.
func (h *Host) Connect(src, dst string) error {
	return nil
}

// Activate opens and starts the PortAudio output stream, then launches
// the playback loop that repeatedly calls Engine.OnProcess and writes
// the result.
func (h *Host) Activate() error {
	if h.engine == nil {
		return fmt.Errorf("%w: audiohost.Host not Bind()'d to an Engine", errs.ErrHostUnavailable)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrHostUnavailable, err)
	}
	dev, err := h.resolveDevice(devices)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.outBuf = make([]float32, h.BlockSize)
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: 1,
			Latency:  dev.DefaultLowOutputLatency,
		},
		SampleRate:      h.SampleRate,
		FramesPerBuffer: h.BlockSize,
	}
	stream, err := portaudio.OpenStream(params, h.outBuf)
	h.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: opening stream: %v", errs.ErrHostUnavailable, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("%w: starting stream: %v", errs.ErrHostUnavailable, err)
	}

	h.mu.Lock()
	h.stream = stream
	h.mu.Unlock()

	h.stopCh = make(chan struct{})
	h.running.Store(true)

	h.wg.Add(1)
	go h.playbackLoop()

	h.logger.Info("audiohost: activated", "device", dev.Name, "port", h.outputPortName)
	return nil
}

func (h *Host) resolveDevice(devices []*portaudio.DeviceInfo) (*portaudio.DeviceInfo, error) {
	if h.DeviceIndex >= 0 && h.DeviceIndex < len(devices) {
		return devices[h.DeviceIndex], nil
	}
	dev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: no default output device: %v", errs.ErrHostUnavailable, err)
	}
	return dev, nil
}

// playbackLoop feeds the Engine's ring-backed PCM through to the sound
// card. It owns the blocking portaudio.Stream.Write calls so Engine's
// own OnProcess stays non-blocking, per spec.md §5's constraint that
// the audio callback must never suspend.
func (h *Host) playbackLoop() {
	defer h.wg.Done()

	byteBuf := make([]byte, h.BlockSize*h.SampleWidth)

	for h.running.Load() {
		select {
		case <-h.stopCh:
			return
		default:
		}

		h.currentFrameTime.Store(uint64(time.Now().UnixNano()))
		h.engine.OnProcess(byteBuf)
		h.lastFrameTime.Store(uint64(time.Now().UnixNano()))

		unpackInto(h.outBuf, byteBuf, h.SampleWidth)

		h.mu.Lock()
		stream := h.stream
		h.mu.Unlock()
		if stream == nil {
			return
		}
		if err := stream.Write(); err != nil {
			if h.running.Load() {
				h.logger.Error("audiohost: stream write failed", "err", err)
			}
			return
		}
	}
}

// unpackInto converts sampleWidth-byte big-endian PCM frames (as packed
// by GeneratorSource) from raw into normalized float32s in out, in place.
func unpackInto(out []float32, raw []byte, sampleWidth int) {
	maxVal := float64(int64(1) << uint(sampleWidth*8-1))
	for i := range out {
		off := i * sampleWidth
		var v int64
		for b := 0; b < sampleWidth; b++ {
			v |= int64(raw[off+b]) << (8 * (sampleWidth - 1 - b))
		}
		signBit := int64(1) << uint(sampleWidth*8-1)
		if v&signBit != 0 {
			v -= int64(1) << uint(sampleWidth*8)
		}
		out[i] = float32(float64(v) / maxVal)
	}
}

// Deactivate stops the playback loop and closes the PortAudio stream.
func (h *Host) Deactivate() error {
	if !h.running.CompareAndSwap(true, false) {
		return nil
	}
	close(h.stopCh)

	h.mu.Lock()
	stream := h.stream
	h.mu.Unlock()
	if stream != nil {
		stream.Stop()
	}

	h.wg.Wait()

	h.mu.Lock()
	if h.stream != nil {
		h.stream.Close()
		h.stream = nil
	}
	h.mu.Unlock()

	h.logger.Info("audiohost: deactivated")
	return nil
}

// CurrentFrameTime returns the wall-clock nanosecond timestamp of the
// frame the host is currently presenting.
func (h *Host) CurrentFrameTime() uint64 { return h.currentFrameTime.Load() }

// LastFrameTime returns the wall-clock nanosecond timestamp of the most
// recent OnProcess call.
func (h *Host) LastFrameTime() uint64 { return h.lastFrameTime.Load() }

// GeneratorSource adapts ltc/audiogen.AudioGenerator to engine.FrameSource,
// quantizing and big-endian-packing each frame's samples per spec.md §6's
// "Integer formats use signed big-endian" wire convention.
type GeneratorSource struct {
	Gen      *audiogen.AudioGenerator
	BitDepth int
}

// NextFrameBytes renders one LTC frame's worth of PCM, quantizes it,
// and packs it to big-endian bytes at BitDepth/8 width per sample.
func (g *GeneratorSource) NextFrameBytes() []byte {
	samples := g.Gen.GenerateFrames(1, false)
	ints := biphase.QuantizeInt(samples, g.BitDepth)
	return packBE(ints, g.BitDepth/8)
}

// SyncToTime resynchronizes the generator's Frame to t, per
// engine.FrameSource's start-up handshake contract.
func (g *GeneratorSource) SyncToTime(t time.Time) error {
	return g.Gen.SetFrameFromTime(t)
}

// packBE packs signed samples into big-endian bytes of the given width.
func packBE(samples []int32, width int) []byte {
	out := make([]byte, width*len(samples))
	for i, s := range samples {
		v := int64(s)
		off := i * width
		for b := 0; b < width; b++ {
			out[off+width-1-b] = byte(v >> (8 * b))
		}
	}
	return out
}
