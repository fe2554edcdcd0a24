// Package biphase implements the two-stage LTC modulation pipeline:
// Sampler renders an 80-bit data block into normalized PCM samples via
// biphase-mark-code, and Decoder recovers 80-bit blocks from a stream
// of normalized PCM samples.
package biphase

import (
	"github.com/doismellburning/ltcgen/ltc/block"
	"github.com/doismellburning/ltcgen/ltc/rate"
)

// IntermediateOversample is K in the "160 × K samples per block"
// intermediate rate used before resampling to the target sample rate.
const IntermediateOversample = 10

const bitsPerBlock = block.Size

// Sampler renders LTCDataBlocks to normalized float64 PCM samples
// ([-1.0, 1.0]) at SampleRate for a given frame rate.
type Sampler struct {
	SampleRate float64
	FrameRate  *rate.FrameRate
	K          int // intermediate oversample factor; 0 means IntermediateOversample
}

func (s *Sampler) k() int {
	if s.K <= 0 {
		return IntermediateOversample
	}
	return s.K
}

// SamplesPerFrame returns the exact (possibly fractional) number of
// output samples one data block occupies at SampleRate.
func (s *Sampler) SamplesPerFrame() float64 {
	return s.SampleRate / s.FrameRate.FloatValue()
}

// GenerateFrame renders one data block to normalized PCM samples. The
// output length is round(SamplesPerFrame()); callers needing exact
// cumulative-drift correction across many frames apply the adjustment
// described for AudioGenerator on top of this.
func (s *Sampler) GenerateFrame(b *block.LTCDataBlock) []float64 {
	intermediate := toggleSignal(b.GetArray(), s.k())
	outCount := int(s.SamplesPerFrame() + 0.5)
	return resampleLinear(intermediate, outCount)
}

// GenerateFrameN renders one data block to exactly outCount normalized
// PCM samples, for callers (AudioGenerator) that have already computed
// the drift-corrected sample count for this frame.
func (s *Sampler) GenerateFrameN(b *block.LTCDataBlock, outCount int) []float64 {
	intermediate := toggleSignal(b.GetArray(), s.k())
	return resampleLinear(intermediate, outCount)
}

// toggleSignal implements the biphase-mark encoding: starting from
// y=-1, each bit emits K samples of the current polarity, toggles on a
// logical 1, emits K more samples of the (possibly new) polarity, then
// always toggles at the bit boundary.
func toggleSignal(bits [bitsPerBlock]bool, k int) []float64 {
	out := make([]float64, 0, bitsPerBlock*2*k)
	y := -1.0
	for _, bit := range bits {
		for i := 0; i < k; i++ {
			out = append(out, y)
		}
		if bit {
			y = -y
		}
		for i := 0; i < k; i++ {
			out = append(out, y)
		}
		y = -y
	}
	return out
}

// resampleLinear resamples in (representing one full cycle) to exactly
// outCount samples via linear interpolation over the unit interval.
func resampleLinear(in []float64, outCount int) []float64 {
	if outCount <= 0 {
		return nil
	}
	n := len(in)
	out := make([]float64, outCount)
	for i := 0; i < outCount; i++ {
		pos := float64(i) * float64(n) / float64(outCount)
		idx := int(pos)
		frac := pos - float64(idx)
		a := in[idx%n]
		b := in[(idx+1)%n]
		out[i] = a + (b-a)*frac
	}
	return out
}

// QuantizeInt scales normalized float64 samples in [-1,1] to signed
// integers of bitDepth bits, per the "(1<<bit_depth)/2 - 1) / 2" scale
// factor. Values are clamped to the representable range.
func QuantizeInt(samples []float64, bitDepth int) []int32 {
	scale := float64((int64(1)<<uint(bitDepth))/2-1) / 2
	max := int64(1)<<uint(bitDepth-1) - 1
	min := -(int64(1) << uint(bitDepth-1))

	out := make([]int32, len(samples))
	for i, v := range samples {
		scaled := int64(v * scale)
		if scaled > max {
			scaled = max
		}
		if scaled < min {
			scaled = min
		}
		out[i] = int32(scaled)
	}
	return out
}
