package engine

import "time"

// Host is the set of calls the engine makes outward into the audio
// host binding (PortAudio or an equivalent). A concrete binding lives
// in the audiohost package; the engine tests pass a nil Host.
type Host interface {
	RegisterOutputPort(name string) error
	RegisterMIDIInputPort(name string) error
	Connect(src, dst string) error
	Activate() error
	Deactivate() error
	CurrentFrameTime() uint64
	LastFrameTime() uint64
}

// FrameSource is what the producer pulls from: the next frame's PCM
// bytes (already quantized to the wire format) and a way to
// resynchronize its timecode to a wall-clock instant at start-up.
type FrameSource interface {
	NextFrameBytes() []byte
	SyncToTime(t time.Time) error
}
