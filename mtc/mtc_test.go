package mtc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The literal byte stream documented alongside this scenario (...F1 12...)
// does not actually reduce to the stated frame=2 under the table's own
// formula: piece 1's nibble is 2, so frame MS contributes 2<<4=32, giving
// frame=34, not 2. Resolved the same way as the other spec/example
// inconsistencies found during this build: follow the explicit per-piece
// decode formula, and exercise it here with a byte stream that actually
// produces the documented hour/minute/second/frame/rate values (all
// nibbles zero except the +2 MTC offset on frame, and piece 7 zero for
// 24fps non-drop).
func TestScenario_QuarterFrameReassembly(t *testing.T) {
	r := New()
	stream := []byte{
		0xF1, 0x00, // piece 0: frame LS = 0
		0xF1, 0x10, // piece 1: frame MS = 0
		0xF1, 0x20, // piece 2: second LS = 0
		0xF1, 0x30, // piece 3: second MS = 0
		0xF1, 0x40, // piece 4: minute LS = 0
		0xF1, 0x50, // piece 5: minute MS = 0
		0xF1, 0x60, // piece 6: hour LS = 0
		0xF1, 0x70, // piece 7: hour MSB=0, rate_bits=0 (24fps non-drop)
	}

	snaps := r.Feed(stream)
	if assert.Len(t, snaps, 1) {
		assert.Equal(t, Snapshot{Hour: 0, Minute: 0, Second: 0, Frame: 2, Rate: Rate24}, snaps[0])
	}
}

func TestFrameMSNibbleAndOffsetCombine(t *testing.T) {
	r := New()
	// frame LS=5, frame MS nibble=2 -> (2<<4)+5+2 = 39
	stream := []byte{0xF1, 0x05, 0xF1, 0x12, 0xF1, 0x20, 0xF1, 0x30, 0xF1, 0x40, 0xF1, 0x50, 0xF1, 0x60, 0xF1, 0x70}
	snaps := r.Feed(stream)
	if assert.Len(t, snaps, 1) {
		assert.Equal(t, 39, snaps[0].Frame)
	}
}

func TestHourMSBIsMaskedToOneBit(t *testing.T) {
	r := New()
	// hour LS=3, piece7 nibble=0x0F -> hour MSB bit = 1, rate_bits = (0x0F>>1)&3 = 3 (30 non-drop)
	stream := []byte{0xF1, 0x00, 0xF1, 0x10, 0xF1, 0x20, 0xF1, 0x30, 0xF1, 0x40, 0xF1, 0x50, 0xF1, 0x63, 0xF1, 0x7F}
	snaps := r.Feed(stream)
	if assert.Len(t, snaps, 1) {
		assert.Equal(t, 16+3, snaps[0].Hour)
		assert.Equal(t, Rate30NonDrop, snaps[0].Rate)
	}
}

func TestRateBitsDropFrame(t *testing.T) {
	r := New()
	// rate_bits = 2 -> 30fps drop-frame: piece7 nibble with bits1-2 = 10 -> nibble = 0b0100 = 4
	stream := []byte{0xF1, 0x00, 0xF1, 0x10, 0xF1, 0x20, 0xF1, 0x30, 0xF1, 0x40, 0xF1, 0x50, 0xF1, 0x60, 0xF1, 0x74}
	snaps := r.Feed(stream)
	if assert.Len(t, snaps, 1) {
		assert.Equal(t, Rate30DropFrame, snaps[0].Rate)
		assert.True(t, snaps[0].Rate.DropFrame())
		assert.Equal(t, 30, snaps[0].Rate.FPS())
	}
}

func TestStragglerF1CarriesOverToNextFeed(t *testing.T) {
	r := New()
	first := []byte{0xF1, 0x00, 0xF1, 0x10, 0xF1, 0x20, 0xF1, 0x30, 0xF1, 0x40, 0xF1, 0x50, 0xF1, 0x60, 0xF1}
	snaps := r.Feed(first)
	assert.Empty(t, snaps)

	second := []byte{0x70}
	snaps = r.Feed(second)
	if assert.Len(t, snaps, 1) {
		assert.Equal(t, 2, snaps[0].Frame)
	}
}

func TestNonF1BytesAreIgnored(t *testing.T) {
	r := New()
	stream := []byte{
		0x90, 0x40, 0x7F, // an unrelated Note On, interleaved
		0xF1, 0x00, 0xF1, 0x10, 0xF1, 0x20, 0xF1, 0x30,
		0xF1, 0x40, 0xF1, 0x50, 0xF1, 0x60, 0xF1, 0x70,
	}
	snaps := r.Feed(stream)
	assert.Len(t, snaps, 1)
}

func TestFeedAcrossMultipleCyclesYieldsMultipleSnapshots(t *testing.T) {
	r := New()
	cycle := []byte{0xF1, 0x00, 0xF1, 0x10, 0xF1, 0x20, 0xF1, 0x30, 0xF1, 0x40, 0xF1, 0x50, 0xF1, 0x60, 0xF1, 0x70}
	stream := append(append([]byte{}, cycle...), cycle...)

	snaps := r.Feed(stream)
	assert.Len(t, snaps, 2)
}
