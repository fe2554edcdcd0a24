// Package block implements LTCDataBlock, the 80-bit SMPTE LTC frame
// layout: field packing from a Frame, parity, and decode back to a
// Frame.
package block

import (
	"github.com/doismellburning/ltcgen/ltc/frame"
	"github.com/doismellburning/ltcgen/ltc/rate"
)

// Size is the fixed width of an LTC data block in bits.
const Size = 80

const syncWord = 0x3FFD

// field describes one packed region of the 80-bit block: its starting
// bit and width. User-bit and reserved regions are zero-filled and
// carry no decode meaning here.
type field struct {
	start int
	width int
}

var (
	frameUnits  = field{0, 4}
	frameTens   = field{8, 2}
	dropFlag    = field{10, 1}
	colorFrame  = field{11, 1}
	secondUnits = field{16, 4}
	secondTens  = field{24, 3}
	parityBit   = field{27, 1}
	minuteUnits = field{32, 4}
	minuteTens  = field{40, 3}
	binaryGrp1  = field{43, 1}
	hourUnits   = field{48, 4}
	hourTens    = field{56, 2}
	binaryGrp2  = field{59, 1}
	sync        = field{64, 16}
)

// LTCDataBlock is an ordered 80-bit vector: bits[0] is the
// least-significant bit of the frame-units nibble, bits[64:80] is the
// sync word.
type LTCDataBlock struct {
	bits [Size]bool
}

// New returns a zeroed LTCDataBlock.
func New() *LTCDataBlock { return &LTCDataBlock{} }

// GetArray returns the 80-element boolean vector.
func (b *LTCDataBlock) GetArray() [Size]bool { return b.bits }

// GetUint64Value returns bits 0..63 packed LSB-first into a uint64. The
// sync word (bits 64..79) is not part of this value.
func (b *LTCDataBlock) GetUint64Value() uint64 {
	var v uint64
	for i := 0; i < 64; i++ {
		if b.bits[i] {
			v |= 1 << uint(i)
		}
	}
	return v
}

func setField(bits *[Size]bool, f field, value int) {
	for i := 0; i < f.width; i++ {
		bits[f.start+i] = (value>>uint(i))&1 == 1
	}
}

func getField(bits [Size]bool, f field) int {
	v := 0
	for i := 0; i < f.width; i++ {
		if bits[f.start+i] {
			v |= 1 << uint(i)
		}
	}
	return v
}

// Encode packs f's fields into the block (bits 0..63), sets the
// drop/color-frame flags, the sync word, and the even parity bit, and
// returns the block for chaining.
func Encode(f *frame.Frame) *LTCDataBlock {
	b := New()

	setField(&b.bits, frameUnits, f.Value()%10)
	setField(&b.bits, frameTens, f.Value()/10)
	setField(&b.bits, secondUnits, f.Second()%10)
	setField(&b.bits, secondTens, f.Second()/10)
	setField(&b.bits, minuteUnits, f.Minute()%10)
	setField(&b.bits, minuteTens, f.Minute()/10)
	setField(&b.bits, hourUnits, f.Hour()%10)
	setField(&b.bits, hourTens, f.Hour()/10)

	if f.Format().DropFrame {
		b.bits[dropFlag.start] = true
	}
	b.bits[colorFrame.start] = true
	setField(&b.bits, sync, syncWord)

	b.bits[parityBit.start] = false
	count := 0
	for i := 0; i < 64; i++ {
		if b.bits[i] {
			count++
		}
	}
	b.bits[parityBit.start] = count%2 != 0

	return b
}

// Decode reconstructs a Frame of the given format from the block's
// packed fields. It does not validate the sync word or parity; callers
// that consume blocks recovered from a bitstream should check those
// first via HasValidSyncWord / HasValidParity.
func Decode(b *LTCDataBlock, format rate.FrameFormat) (*frame.Frame, error) {
	hours := getField(b.bits, hourTens)*10 + getField(b.bits, hourUnits)
	minutes := getField(b.bits, minuteTens)*10 + getField(b.bits, minuteUnits)
	seconds := getField(b.bits, secondTens)*10 + getField(b.bits, secondUnits)
	frames := getField(b.bits, frameTens)*10 + getField(b.bits, frameUnits)
	return frame.NewFromFields(format, hours, minutes, seconds, frames)
}

// HasValidSyncWord reports whether bits 64..79 equal the fixed sync
// word.
func (b *LTCDataBlock) HasValidSyncWord() bool {
	return getField(b.bits, sync) == syncWord
}

// HasValidParity reports whether the set-bit count across [0,64) ∪
// {27} is even.
func (b *LTCDataBlock) HasValidParity() bool {
	count := 0
	for i := 0; i < 64; i++ {
		if b.bits[i] {
			count++
		}
	}
	return count%2 == 0
}

// DropFrameFlag reports the packed drop-frame bit (bit 10).
func (b *LTCDataBlock) DropFrameFlag() bool { return b.bits[dropFlag.start] }

// FromArray builds an LTCDataBlock from a raw 80-bit vector, e.g. one
// recovered by the biphase decoder.
func FromArray(bits [Size]bool) *LTCDataBlock {
	return &LTCDataBlock{bits: bits}
}
