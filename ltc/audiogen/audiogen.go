// Package audiogen implements AudioGenerator (component G): renders N
// consecutive LTC frames' worth of PCM audio while tracking and
// correcting fractional sample-per-frame drift.
package audiogen

import (
	"fmt"
	"math"
	"time"

	"github.com/doismellburning/ltcgen/ltc/biphase"
	"github.com/doismellburning/ltcgen/ltc/block"
	"github.com/doismellburning/ltcgen/ltc/errs"
	"github.com/doismellburning/ltcgen/ltc/frame"
	"github.com/doismellburning/ltcgen/ltc/rate"
)

// AudioGenerator renders a Frame's data block to PCM audio, frame by
// frame, correcting for sample_rate/frame_rate not being integral by
// padding or trimming whole samples so cumulative drift never exceeds
// one sample.
type AudioGenerator struct {
	frame   *frame.Frame
	format  rate.FrameFormat
	sampler *biphase.Sampler

	samplesPerFrame float64
	evenSamples     bool

	framesEmitted  int
	samplesEmitted int
}

// New returns an AudioGenerator for format at sampleRate, starting at
// 00:00:00:00.
func New(format rate.FrameFormat, sampleRate float64) *AudioGenerator {
	spf := sampleRate / format.Rate.FloatValue()
	return &AudioGenerator{
		frame:           frame.New(format),
		format:          format,
		sampler:         &biphase.Sampler{SampleRate: sampleRate, FrameRate: format.Rate},
		samplesPerFrame: spf,
		evenSamples:     spf == math.Trunc(spf),
	}
}

// Frame returns a snapshot of the underlying Frame counter.
func (a *AudioGenerator) Frame() *frame.Frame { return a.frame.Clone() }

// SetFrame replaces the underlying Frame counter (e.g. after
// synchronizing to wall-clock time); it must share format.
func (a *AudioGenerator) SetFrame(f *frame.Frame) error {
	if !f.Format().Equal(a.format) {
		return fmt.Errorf("audiogen: %w", errs.ErrIncompatibleFormat)
	}
	a.frame = f
	return nil
}

// SetFrameFromTime resynchronizes the underlying Frame counter to wall
// clock t, for the engine's start-up handshake (see engine.FrameSource).
func (a *AudioGenerator) SetFrameFromTime(t time.Time) error {
	return a.frame.FromDatetime(t)
}

// GenerateFrames renders n consecutive frames of audio, advancing the
// Frame counter by one for each, and returns the concatenated
// normalized PCM samples. If onlyZero is true, an all-false data block
// (no timecode, no sync word) is rendered instead of the real timecode
// and the Frame counter is not advanced. That block is not silence: it
// still carries a biphase transition at every bit boundary.
func (a *AudioGenerator) GenerateFrames(n int, onlyZero bool) []float64 {
	var out []float64
	for i := 0; i < n; i++ {
		out = append(out, a.generateOneFrame(onlyZero)...)
	}
	return out
}

func (a *AudioGenerator) generateOneFrame(onlyZero bool) []float64 {
	var b *block.LTCDataBlock
	if onlyZero {
		b = block.FromArray([block.Size]bool{})
	} else {
		b = block.Encode(a.frame)
	}

	count := a.nextSampleCount()
	samples := a.sampler.GenerateFrameN(b, count)

	if !onlyZero {
		a.frame.Incr()
	}

	return samples
}

// nextSampleCount returns how many samples the upcoming frame should
// occupy, and advances the running (frames_emitted, samples_emitted)
// pair. For an integral samples-per-frame ratio this is always the
// same fixed width. Otherwise it recomputes the nearest-integer target
// for the cumulative sample count after this frame and emits the
// difference from what has already been emitted — equivalent to the
// documented "pad/trim by k samples when expected-samples_emitted is
// an integer" rule, but evaluated every frame (not only when the
// cumulative expectation happens to land on a whole sample) so that
// the ≤1-sample drift bound holds at every frame boundary, not only
// periodically. See DESIGN.md.
func (a *AudioGenerator) nextSampleCount() int {
	if a.evenSamples {
		return int(a.samplesPerFrame)
	}

	a.framesEmitted++
	target := int(math.Round(a.samplesPerFrame * float64(a.framesEmitted)))
	count := target - a.samplesEmitted
	a.samplesEmitted = target
	return count
}
