package rate

import (
	"errors"
	"testing"

	"github.com/doismellburning/ltcgen/ltc/errs"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestInterning(t *testing.T) {
	a := New(30000, 1001)
	b := New(30000, 1001)
	assert.Same(t, a, b, "FrameRate(a,b) should be the same object as a second FrameRate(a,b)")
	assert.Same(t, R2997, a)
}

func TestInterning_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		num := rapid.IntRange(1, 1000).Draw(t, "num")
		denom := rapid.IntRange(1, 1000).Draw(t, "denom")
		a := New(num, denom)
		b := New(num, denom)
		assert.Same(t, a, b)
	})
}

func TestRounded(t *testing.T) {
	assert.Equal(t, 24, R24.Rounded())
	assert.Equal(t, 25, R25.Rounded())
	assert.Equal(t, 30, R2997.Rounded())
	assert.Equal(t, 30, R30.Rounded())
	assert.Equal(t, 60, R5994.Rounded())
	assert.Equal(t, 60, R60.Rounded())
}

func TestFromFloat(t *testing.T) {
	fr, err := FromFloat(29.97)
	assert.NoError(t, err)
	assert.Same(t, R2997, fr)

	_, err = FromFloat(12.5)
	assert.True(t, errors.Is(err, errs.ErrUnsupportedFrameRate))
}

func TestDropFrameEligibility(t *testing.T) {
	_, err := NewFormat(R25, true)
	assert.ErrorIs(t, err, errs.ErrOutOfRange)

	f, err := NewFormat(R2997, true)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1}, f.DropFrameNumbers())

	f2, err := NewFormat(R5994, true)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, f2.DropFrameNumbers())
}

func TestOrdering(t *testing.T) {
	assert.True(t, R24.Less(R25))
	assert.True(t, R2997.Less(R30))
	assert.False(t, R30.Less(R2997))
}
