// Package generator implements TimecodeGenerator: a Frame counter that
// advances either on demand ("manual") or driven by a background timer
// thread reading the wall clock or simply incrementing ("free-run").
package generator

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/doismellburning/ltcgen/ltc/block"
	"github.com/doismellburning/ltcgen/ltc/frame"
	"github.com/doismellburning/ltcgen/ltc/rate"
)

// Generator owns a Frame and the data block built from its current
// value. It is the shared base for manual and free-run drive modes.
type Generator struct {
	mu     sync.Mutex
	frame  *frame.Frame
	format rate.FrameFormat
}

// New returns a Generator at 00:00:00:00 for the given format.
func New(format rate.FrameFormat) *Generator {
	return &Generator{frame: frame.New(format), format: format}
}

// SetHMSF assigns explicit H:M:S:F fields.
func (g *Generator) SetHMSF(hours, minutes, seconds, frames int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frame.Set(
		frame.WithHours(hours),
		frame.WithMinutes(minutes),
		frame.WithSeconds(seconds),
		frame.WithFrames(frames),
	)
}

// IncrFrame advances the underlying Frame by one frame (caller drives
// it directly; used by manual mode and by free-run when not tracking
// wall-clock time).
func (g *Generator) IncrFrame() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frame.Incr()
}

// SetFrameFromTime derives the Frame's fields from a wall-clock instant.
func (g *Generator) SetFrameFromTime(t time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frame.FromDatetime(t)
}

// GetDataBlockArray returns the 80-bit data block for the current Frame
// value.
func (g *Generator) GetDataBlockArray() [block.Size]bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return block.Encode(g.frame).GetArray()
}

// GetDataBlockString returns the current Frame's HH:MM:SS:FF string.
func (g *Generator) GetDataBlockString() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frame.String()
}

// Frame returns a snapshot copy of the current Frame.
func (g *Generator) Frame() *frame.Frame {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frame.Clone()
}

// FreeRunGenerator drives a Generator with a background timer thread
// that wakes every 1/rate seconds and either re-reads the wall clock
// (UseCurrentTime) or increments the frame counter.
type FreeRunGenerator struct {
	*Generator

	UseCurrentTime bool
	UseUTC         bool

	// FrameCallback, if set, is invoked from the timer goroutine with
	// the data block string each time a new frame is produced.
	FrameCallback func(s string)

	logger *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	stopped chan struct{}
}

// NewFreeRun returns a FreeRunGenerator for format, deriving
// fields from the wall clock by default.
func NewFreeRun(format rate.FrameFormat, logger *log.Logger) *FreeRunGenerator {
	if logger == nil {
		logger = log.Default()
	}
	return &FreeRunGenerator{
		Generator:      New(format),
		UseCurrentTime: true,
		logger:         logger,
	}
}

// Start launches the timer goroutine. It is a no-op if already running.
func (g *FreeRunGenerator) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return
	}
	g.running = true
	g.stopCh = make(chan struct{})
	g.stopped = make(chan struct{})

	go g.run(g.stopCh, g.stopped)
}

// Stop halts the timer goroutine and waits for it to exit.
func (g *FreeRunGenerator) Stop() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	g.running = false
	stopCh := g.stopCh
	stopped := g.stopped
	g.mu.Unlock()

	close(stopCh)
	<-stopped
}

func (g *FreeRunGenerator) run(stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	fr := g.format.Rate.FloatValue()
	interval := time.Duration(float64(time.Second) / fr)

	if g.UseCurrentTime {
		if err := g.setFromNow(); err != nil {
			g.logger.Error("free-run generator: initial frame-from-clock failed", "err", err)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if g.UseCurrentTime {
				if err := g.setFromNow(); err != nil {
					g.logger.Error("free-run generator: frame-from-clock failed", "err", err)
					continue
				}
			} else {
				g.IncrFrame()
			}
			if g.FrameCallback != nil {
				g.FrameCallback(g.GetDataBlockString())
			}
		}
	}
}

func (g *FreeRunGenerator) setFromNow() error {
	now := time.Now()
	if g.UseUTC {
		now = now.UTC()
	}
	return g.SetFrameFromTime(now)
}
