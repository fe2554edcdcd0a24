// Package frame implements Frame, the SMPTE hour:minute:second:frame
// counter with drop-frame-aware increment, decrement, and total-frame
// conversion.
package frame

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/doismellburning/ltcgen/ltc/errs"
	"github.com/doismellburning/ltcgen/ltc/rate"
)

// Frame is a mutable H:M:S:F timecode counter for a given FrameFormat.
// TotalFrames always equals the canonical reconstruction of the current
// fields (see calcTotalFrames); every mutating method preserves that
// invariant before returning.
type Frame struct {
	format rate.FrameFormat

	hour   int
	minute int
	second int
	value  int

	dropEnabled bool
	totalFrames int
}

// New returns a Frame at 00:00:00:00 for the given format.
func New(format rate.FrameFormat) *Frame {
	return &Frame{format: format}
}

// NewFromFields builds a Frame from explicit field values.
func NewFromFields(format rate.FrameFormat, hours, minutes, seconds, frames int) (*Frame, error) {
	f := New(format)
	if err := f.Set(WithHours(hours), WithMinutes(minutes), WithSeconds(seconds), WithFrames(frames)); err != nil {
		return nil, err
	}
	return f, nil
}

// NewFromTotalFrames builds a Frame from a cumulative frame count.
func NewFromTotalFrames(format rate.FrameFormat, totalFrames int) (*Frame, error) {
	f := New(format)
	if err := f.SetTotalFrames(totalFrames); err != nil {
		return nil, err
	}
	return f, nil
}

// Format returns the Frame's FrameFormat.
func (f *Frame) Format() rate.FrameFormat { return f.format }

// Hour, Minute, Second, Value return the current field values.
func (f *Frame) Hour() int   { return f.hour }
func (f *Frame) Minute() int { return f.minute }
func (f *Frame) Second() int { return f.second }
func (f *Frame) Value() int  { return f.value }

// DropEnabled reports whether the current instant is within a drop-frame
// skip window (drop_frame && second==0 && minute%10 != 0).
func (f *Frame) DropEnabled() bool { return f.dropEnabled }

// TotalFrames returns the cumulative frame count from 00:00:00:00.
func (f *Frame) TotalFrames() int { return f.totalFrames }

// Clone returns an independent copy of f.
func (f *Frame) Clone() *Frame {
	cp := *f
	return &cp
}

// Equal reports whether two Frames have the same format and fields.
func (f *Frame) Equal(other *Frame) bool {
	if other == nil {
		return false
	}
	return f.format.Equal(other.format) &&
		f.hour == other.hour && f.minute == other.minute &&
		f.second == other.second && f.value == other.value &&
		f.totalFrames == other.totalFrames
}

// Option assigns one field in a call to Set. Fields not supplied keep
// their current value.
type Option func(*fieldSet)

type fieldSet struct {
	hours, minutes, seconds, frames *int
}

func WithHours(v int) Option   { return func(fs *fieldSet) { fs.hours = &v } }
func WithMinutes(v int) Option { return func(fs *fieldSet) { fs.minutes = &v } }
func WithSeconds(v int) Option { return func(fs *fieldSet) { fs.seconds = &v } }
func WithFrames(v int) Option  { return func(fs *fieldSet) { fs.frames = &v } }

// Set assigns the supplied fields, then recomputes drop_enabled and
// TotalFrames. Fields omitted from opts keep their previous value, but
// the frame-number drop-skip correction is always reapplied (mirroring
// the donor behavior of always routing through the value setter).
func (f *Frame) Set(opts ...Option) error {
	var fs fieldSet
	for _, o := range opts {
		o(&fs)
	}
	if fs.hours != nil {
		f.hour = *fs.hours
	}
	if fs.minutes != nil {
		f.minute = *fs.minutes
	}
	if fs.seconds != nil {
		f.second = *fs.seconds
	}
	f.checkDrop()

	newValue := f.value
	if fs.frames != nil {
		newValue = *fs.frames
	}
	f.setValue(newValue)

	f.totalFrames = f.calcTotalFrames()
	return nil
}

// checkDrop recomputes dropEnabled from the current second/minute. It is
// a no-op (leaves dropEnabled false) unless the format enables
// drop-frame counting.
func (f *Frame) checkDrop() {
	f.dropEnabled = f.format.DropFrame && f.second == 0 && f.minute%10 != 0
}

// setValue assigns the frame-number field, applying the drop-frame skip:
// if dropEnabled and the requested value is one of the dropped numbers,
// it is bumped to the first valid number after the drop window.
func (f *Frame) setValue(v int) {
	if f.dropEnabled {
		for _, dropped := range f.format.DropFrameNumbers() {
			if v == dropped {
				nums := f.format.DropFrameNumbers()
				v = nums[len(nums)-1] + 1
				break
			}
		}
	}
	f.value = v
}

// calcTotalFrames is the canonical forward conversion from fields to a
// cumulative frame count (component B "Forward" algorithm).
func (f *Frame) calcTotalFrames() int {
	r := f.format.Rate.Rounded()
	dropped := 0
	if f.format.DropFrame {
		dropCount := len(f.format.DropFrameNumbers())
		totalMinutes := 60*f.hour + f.minute
		dropped = dropCount * (totalMinutes - totalMinutes/10)
	}
	return (f.hour*3600+f.minute*60+f.second)*r + f.value - dropped
}

// SetTotalFrames is the inverse conversion: from a cumulative frame
// count to H:M:S:F fields (component B "Inverse" algorithm). Returns
// ErrOutOfRange for negative counts.
func (f *Frame) SetTotalFrames(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: total_frames %d", errs.ErrOutOfRange, n)
	}
	orig := n
	r := f.format.Rate.Rounded()

	if f.format.DropFrame {
		dropCount := len(f.format.DropFrameNumbers())
		dOffset := r*60*10 - dropCount*9
		mOffset := r*60 - dropCount

		d := n / dOffset
		m := n % dOffset

		var add int
		if m < dropCount {
			add = dropCount * 9 * d
		} else {
			add = dropCount*9*d + dropCount*((m-dropCount)/mOffset)
		}
		n += add
	}

	f.hour = ((n / r) / 60) / 60 % 24
	f.minute = ((n / r) / 60) % 60
	f.second = (n / r) % 60
	f.value = n % r
	f.checkDrop()
	f.totalFrames = orig
	return nil
}

// Incr advances the Frame by exactly one frame.
func (f *Frame) Incr() {
	f.totalFrames++
	r := f.format.Rate.Rounded()
	v := f.value + 1
	if v >= r {
		v = 0
		f.incrSecond()
	}
	f.setValue(v)
}

func (f *Frame) incrSecond() {
	s := f.second + 1
	if s > 59 {
		s = 0
		f.incrMinute()
	}
	f.second = s
	f.checkDrop()
}

func (f *Frame) incrMinute() {
	m := f.minute + 1
	if m > 59 {
		f.hour++
		m = 0
	}
	f.minute = m
	f.checkDrop()
}

// Decr steps the Frame back by exactly one frame, mirroring Incr
// including the drop-frame seam.
func (f *Frame) Decr() {
	f.totalFrames--
	r := f.format.Rate.Rounded()
	v := f.value - 1

	decrSecond := false
	switch {
	case v < 0:
		decrSecond = true
	case f.format.DropFrame && f.second == 0 && f.minute%10 != 0 && containsInt(f.format.DropFrameNumbers(), v):
		decrSecond = true
	}

	if decrSecond {
		v = r - 1
		f.decrSecond()
	}
	f.setValue(v)
}

func (f *Frame) decrSecond() {
	s := f.second - 1
	if s < 0 {
		s = 59
		f.decrMinute()
	}
	f.second = s
	f.checkDrop()
}

func (f *Frame) decrMinute() {
	m := f.minute - 1
	if m < 0 {
		f.hour--
		m = 59
	}
	f.minute = m
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// Add advances (n >= 0) or rewinds (n < 0) the Frame by n frames.
func (f *Frame) Add(n int) {
	if n >= 0 {
		for i := 0; i < n; i++ {
			f.Incr()
		}
		return
	}
	for i := 0; i < -n; i++ {
		f.Decr()
	}
}

// AddFrame returns a new Frame whose total frame count is the sum of f
// and other's. Both must share a FrameFormat.
func (f *Frame) AddFrame(other *Frame) (*Frame, error) {
	if !f.format.Equal(other.format) {
		return nil, errs.ErrIncompatibleFormat
	}
	return NewFromTotalFrames(f.format, f.totalFrames+other.totalFrames)
}

// SubFrame returns a new Frame whose total frame count is f's minus
// other's. Both must share a FrameFormat.
func (f *Frame) SubFrame(other *Frame) (*Frame, error) {
	if !f.format.Equal(other.format) {
		return nil, errs.ErrIncompatibleFormat
	}
	return NewFromTotalFrames(f.format, f.totalFrames-other.totalFrames)
}

// FromDatetime sets the Frame's fields from a wall-clock time: hours,
// minutes, seconds taken directly, and the sub-second frame number taken
// as the closest i/rate for i in [0, rounded).
func (f *Frame) FromDatetime(t time.Time) error {
	frameIdx := nearestFrameIndex(f.format.Rate, t.Nanosecond()/1000)
	return f.Set(
		WithHours(t.Hour()),
		WithMinutes(t.Minute()),
		WithSeconds(t.Second()),
		WithFrames(frameIdx),
	)
}

func nearestFrameIndex(r *rate.FrameRate, microseconds int) int {
	floatRate := r.FloatValue()
	target := float64(microseconds) / 1e6

	best := 0
	bestDiff := math.MaxFloat64
	for i := 0; i < r.Rounded(); i++ {
		diff := math.Abs(float64(i)/floatRate - target)
		if diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}
	return best
}

var tcPattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})([:;])(\d{2})$`)

// String renders the Frame as HH:MM:SS:FF (non-drop) or HH:MM:SS;FF
// (drop-frame format).
func (f *Frame) String() string {
	sep := ":"
	if f.format.DropFrame {
		sep = ";"
	}
	return fmt.Sprintf("%02d:%02d:%02d%s%02d", f.hour, f.minute, f.second, sep, f.value)
}

// Parse parses a "HH:MM:SS:FF" / "HH:MM:SS;FF" string into a Frame of
// the given format.
func Parse(format rate.FrameFormat, s string) (*Frame, error) {
	m := tcPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("frame: invalid timecode string %q", s)
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	fr, _ := strconv.Atoi(m[5])
	return NewFromFields(format, h, mi, sec, fr)
}
