package audiogen

import (
	"math"
	"testing"

	"github.com/doismellburning/ltcgen/ltc/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFormat(t *testing.T, r *rate.FrameRate, df bool) rate.FrameFormat {
	t.Helper()
	f, err := rate.NewFormat(r, df)
	require.NoError(t, err)
	return f
}

// S6: 48kHz against 29.97 drop-frame yields 1602-or-1601-sample frames
// whose running total over 5 frames is exactly 8008.
func TestScenario_FiveFrameDriftBound(t *testing.T) {
	format := mustFormat(t, rate.R2997, true)
	a := New(format, 48000)

	total := 0
	for i := 0; i < 5; i++ {
		samples := a.GenerateFrames(1, false)
		assert.Contains(t, []int{1601, 1602}, len(samples))
		total += len(samples)
	}

	assert.Equal(t, 8008, total)
}

func TestDriftBound_HoldsAtEveryFrameBoundary(t *testing.T) {
	format := mustFormat(t, rate.R2997, true)
	a := New(format, 48000)

	samplesPerFrame := a.samplesPerFrame
	emitted := 0
	for i := 1; i <= 200; i++ {
		samples := a.GenerateFrames(1, false)
		emitted += len(samples)
		expected := samplesPerFrame * float64(i)
		assert.LessOrEqual(t, math.Abs(expected-float64(emitted)), 1.0)
	}
}

func TestEvenSamplesFixedWidth(t *testing.T) {
	format := mustFormat(t, rate.R25, false)
	a := New(format, 48000) // 48000/25 = 1920, integral

	for i := 0; i < 3; i++ {
		samples := a.GenerateFrames(1, false)
		assert.Len(t, samples, 1920)
	}
}

func TestGenerateFramesAdvancesCounter(t *testing.T) {
	format := mustFormat(t, rate.R25, false)
	a := New(format, 48000)

	a.GenerateFrames(3, false)

	assert.Equal(t, 3, a.Frame().TotalFrames())
}

func TestGenerateFramesOnlyZeroDoesNotAdvance(t *testing.T) {
	format := mustFormat(t, rate.R25, false)
	a := New(format, 48000)

	a.GenerateFrames(3, true)

	assert.Equal(t, 0, a.Frame().TotalFrames())
}
