// Package errs holds the sentinel error kinds shared across the ltc
// packages, per the error handling design: callers distinguish failure
// modes with errors.Is rather than string matching.
package errs

import "errors"

var (
	// ErrUnsupportedFrameRate is returned when a frame rate lookup (e.g.
	// by floating-point value) does not match any recognized default.
	ErrUnsupportedFrameRate = errors.New("ltc: unsupported frame rate")

	// ErrIncompatibleFormat is returned when an operation mixes two
	// Frames (or a Frame and a FrameFormat) that do not share a
	// FrameFormat.
	ErrIncompatibleFormat = errors.New("ltc: incompatible frame format")

	// ErrOutOfRange is returned for negative total-frame counts or
	// invalid drop-frame field combinations.
	ErrOutOfRange = errors.New("ltc: value out of range")

	// ErrHostUnavailable is returned when the audio host binding cannot
	// be acquired (no device, device busy, etc).
	ErrHostUnavailable = errors.New("ltc: audio host unavailable")

	// ErrBlockSizeMismatch is returned when the host reports a block
	// size the core cannot accommodate.
	ErrBlockSizeMismatch = errors.New("ltc: block size mismatch")
)
