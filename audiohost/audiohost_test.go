package audiohost

import (
	"testing"
	"time"

	"github.com/doismellburning/ltcgen/ltc/audiogen"
	"github.com/doismellburning/ltcgen/ltc/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Host.Activate/Deactivate open a real PortAudio stream against system
// audio hardware and are exercised by hand, not by this unit test suite
// — the same boundary the donor itself drew around its CGo-bound audio
// layer (see DESIGN.md). These tests cover the pure byte-level helpers
// and the GeneratorSource adapter, which need no device.

func TestPackBEAndUnpackIntoRoundTrip(t *testing.T) {
	samples := []int32{0, 1, -1, 32767, -32768}
	raw := packBE(samples, 2)
	require.Len(t, raw, 10)

	out := make([]float32, len(samples))
	unpackInto(out, raw, 2)

	for i, s := range samples {
		expected := float32(float64(s) / 32768.0)
		assert.InDelta(t, expected, out[i], 1e-6)
	}
}

func TestPackBEIsBigEndian(t *testing.T) {
	raw := packBE([]int32{0x0102}, 2)
	assert.Equal(t, []byte{0x01, 0x02}, raw)
}

func TestGeneratorSourceNextFrameBytesAdvancesAndPacks(t *testing.T) {
	format, err := rate.NewFormat(rate.R25, false)
	require.NoError(t, err)
	gen := audiogen.New(format, 48000)

	src := &GeneratorSource{Gen: gen, BitDepth: 16}
	b := src.NextFrameBytes()

	assert.Equal(t, 1920*2, len(b)) // 48000/25 = 1920 samples, 2 bytes each
	assert.Equal(t, 1, gen.Frame().TotalFrames())
}

func TestGeneratorSourceSyncToTimeDelegatesToFrame(t *testing.T) {
	format, err := rate.NewFormat(rate.R25, false)
	require.NoError(t, err)
	gen := audiogen.New(format, 48000)
	src := &GeneratorSource{Gen: gen, BitDepth: 16}

	when := time.Date(2026, 7, 30, 3, 15, 42, 0, time.UTC)
	require.NoError(t, src.SyncToTime(when))
	assert.Equal(t, 3, gen.Frame().Hour())
	assert.Equal(t, 15, gen.Frame().Minute())
	assert.Equal(t, 42, gen.Frame().Second())
}
