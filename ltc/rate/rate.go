// Package rate implements FrameRate, an exact rational frame rate with
// process-wide interning, and FrameFormat, the (rate, drop-frame) pair
// that governs how a Frame counts.
package rate

import (
	"fmt"
	"sync"

	"github.com/doismellburning/ltcgen/ltc/errs"
)

// FrameRate is an exact rational frames-per-second value. Two FrameRates
// built from the same (num, denom) pair are always the same *FrameRate
// (interned by rational key), so identity comparison is cheap and correct.
type FrameRate struct {
	num   int
	denom int
}

var (
	internMu sync.Mutex
	intern   = map[[2]int]*FrameRate{}
)

type key = [2]int

// New returns the interned FrameRate for num/denom, creating it on first
// use. denom must be positive; num must be positive.
func New(num, denom int) *FrameRate {
	if denom <= 0 || num <= 0 {
		panic(fmt.Sprintf("rate: invalid rational %d/%d", num, denom))
	}
	k := key{num, denom}

	internMu.Lock()
	defer internMu.Unlock()
	if fr, ok := intern[k]; ok {
		return fr
	}
	fr := &FrameRate{num: num, denom: denom}
	intern[k] = fr
	return fr
}

// Well-known broadcast frame rates. All are interned at package init so
// pointer equality works immediately.
var (
	R24    = New(24, 1)
	R25    = New(25, 1)
	R2997  = New(30000, 1001)
	R30    = New(30, 1)
	R5994  = New(60000, 1001)
	R60    = New(60, 1)
	defaults = []*FrameRate{R24, R25, R2997, R30, R5994, R60}
)

// Rational returns the exact (numerator, denominator) pair.
func (fr *FrameRate) Rational() (num, denom int) {
	return fr.num, fr.denom
}

// FloatValue returns the frame rate as a float64 approximation.
func (fr *FrameRate) FloatValue() float64 {
	return float64(fr.num) / float64(fr.denom)
}

// Rounded returns the nearest integer frame rate (equals num when denom
// is 1). For all recognized defaults this is one of {24, 25, 30, 60}.
func (fr *FrameRate) Rounded() int {
	if fr.denom == 1 {
		return fr.num
	}
	// Round-half-up on the exact rational, avoiding float rounding error.
	return (fr.num + fr.denom/2) / fr.denom
}

func (fr *FrameRate) String() string {
	if fr.denom == 1 {
		return fmt.Sprintf("%d", fr.num)
	}
	return fmt.Sprintf("%.2f", fr.FloatValue())
}

// Equal reports whether two FrameRates denote the same rational, without
// relying on interning (useful for values built by non-interning paths).
func (fr *FrameRate) Equal(other *FrameRate) bool {
	if fr == other {
		return true
	}
	if fr == nil || other == nil {
		return false
	}
	return fr.num == other.num && fr.denom == other.denom
}

// Less orders FrameRates by their rational value.
func (fr *FrameRate) Less(other *FrameRate) bool {
	return fr.num*other.denom < other.num*fr.denom
}

// Add returns the sum of the FrameRate and a numeric value, as a plain
// float64 — per spec, rate arithmetic never yields another FrameRate.
func (fr *FrameRate) Add(v float64) float64 { return fr.FloatValue() + v }

// Sub returns the FrameRate's value minus v.
func (fr *FrameRate) Sub(v float64) float64 { return fr.FloatValue() - v }

// Mul returns the FrameRate's value multiplied by v.
func (fr *FrameRate) Mul(v float64) float64 { return fr.FloatValue() * v }

// Div returns the FrameRate's value divided by v.
func (fr *FrameRate) Div(v float64) float64 { return fr.FloatValue() / v }

// AddRate returns the sum of two FrameRates' values as a float64.
func (fr *FrameRate) AddRate(other *FrameRate) float64 { return fr.FloatValue() + other.FloatValue() }

// SubRate returns fr's value minus other's value.
func (fr *FrameRate) SubRate(other *FrameRate) float64 { return fr.FloatValue() - other.FloatValue() }

// FromFloat looks up the interned default FrameRate whose float value is
// closest to v, within a small epsilon. Returns ErrUnsupportedFrameRate
// if none of the recognized defaults match.
func FromFloat(v float64) (*FrameRate, error) {
	const epsilon = 0.005
	for _, fr := range defaults {
		if abs(fr.FloatValue()-v) < epsilon {
			return fr, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", errs.ErrUnsupportedFrameRate, v)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// dropFrameNumbers maps a drop-frame-capable rate to the frame numbers dropped at
// the top of each non-tenth minute, keyed by the exact rational so
// look-alike integer rates (e.g. a hypothetical 30/1 dropping frames)
// never accidentally qualify.
var dropFrameNumbers = map[key][]int{
	{30000, 1001}: {0, 1},
	{60000, 1001}: {0, 1, 2, 3},
}

// DropFrameNumbers returns the frame numbers dropped at the top of each
// non-tenth minute for fr, or nil if fr does not support drop-frame.
func (fr *FrameRate) DropFrameNumbers() []int {
	return dropFrameNumbers[key{fr.num, fr.denom}]
}

// SupportsDropFrame reports whether fr may be used with drop_frame=true.
func (fr *FrameRate) SupportsDropFrame() bool {
	return dropFrameNumbers[key{fr.num, fr.denom}] != nil
}

// FrameFormat pairs a FrameRate with whether drop-frame counting is
// enabled. Drop-frame is only legal for 30000/1001 and 60000/1001.
type FrameFormat struct {
	Rate      *FrameRate
	DropFrame bool
}

// NewFormat validates and constructs a FrameFormat. DropFrame may only be
// true when rate.SupportsDropFrame().
func NewFormat(r *FrameRate, dropFrame bool) (FrameFormat, error) {
	if dropFrame && !r.SupportsDropFrame() {
		return FrameFormat{}, fmt.Errorf("%w: drop-frame not valid for rate %v", errs.ErrOutOfRange, r)
	}
	return FrameFormat{Rate: r, DropFrame: dropFrame}, nil
}

// Equal reports whether two formats denote the same rate and drop-frame
// flag.
func (f FrameFormat) Equal(other FrameFormat) bool {
	return f.Rate.Equal(other.Rate) && f.DropFrame == other.DropFrame
}

// DropFrameNumbers is a convenience accessor equivalent to
// f.Rate.DropFrameNumbers(), returning nil when DropFrame is false.
func (f FrameFormat) DropFrameNumbers() []int {
	if !f.DropFrame {
		return nil
	}
	return f.Rate.DropFrameNumbers()
}
