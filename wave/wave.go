// Package wave writes canonical single-channel RIFF/WAVE files: the
// wavefile I/O collaborator spec.md §1 treats as external to the core.
//
// The pack's retrieved examples reference github.com/go-audio/riff and
// github.com/go-audio/wav only in go.mod manifests — no source for
// either ships in the retrieval pack to ground an exact call sequence
// against, and the extensible IEEE-float chunk this writer needs is not
// a documented feature of the plain go-audio/wav encoder. Rather than
// guess at an API this module was never shown, the writer below builds
// the RIFF container directly with encoding/binary, following the
// canonical chunk layout spec.md §6 and SPEC_FULL.md §4.J describe.
package wave

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	fmtChunkSizePCM  = 16
	fmtChunkSizeExt  = 18 // WAVEFORMATEX with cbSize=0, used for float
	riffHeaderSize   = 12 // "RIFF" + size + "WAVE"
	chunkHeaderSize  = 8  // chunk id + chunk size
	numChannels      = 1
)

// Format describes the PCM layout a Writer encodes.
type Format struct {
	SampleRate int
	BitDepth   int // 16, 24, 32 for integer; 32 for float
	Float      bool
}

// Writer streams single-channel PCM samples into a RIFF/WAVE container.
// Integer samples are written little-endian per the WAV file convention
// (the wire-level big-endian representation spec.md §6 describes for
// in-memory PCM samples is a transport concern handled upstream of this
// writer — see audiohost.GeneratorSource).
type Writer struct {
	w           io.Writer
	ws          io.WriteSeeker // non-nil when w supports seeking, for the final size patch
	format      Format
	dataBytes   int64
	dataStart   int64 // byte offset of the data chunk's payload, only valid when ws != nil
	closed      bool
}

// NewWriter writes the RIFF/fmt header immediately (with placeholder
// chunk sizes) and returns a Writer ready to accept samples. If w also
// implements io.WriteSeeker, Close patches the RIFF and data chunk
// sizes in place once the total length is known; otherwise the
// placeholder sizes are left as written.
func NewWriter(w io.Writer, format Format) (*Writer, error) {
	if format.SampleRate <= 0 {
		return nil, fmt.Errorf("wave: invalid sample rate %d", format.SampleRate)
	}
	if format.BitDepth%8 != 0 || format.BitDepth <= 0 {
		return nil, fmt.Errorf("wave: invalid bit depth %d", format.BitDepth)
	}

	wr := &Writer{w: w, format: format}
	if ws, ok := w.(io.WriteSeeker); ok {
		wr.ws = ws
	}

	if err := wr.writeHeader(); err != nil {
		return nil, err
	}
	return wr, nil
}

func (wr *Writer) audioFormat() uint16 {
	if wr.format.Float {
		return formatIEEEFloat
	}
	return formatPCM
}

func (wr *Writer) fmtChunkSize() uint32 {
	if wr.format.Float {
		return fmtChunkSizeExt
	}
	return fmtChunkSizePCM
}

func (wr *Writer) blockAlign() uint16 {
	return uint16(numChannels * wr.format.BitDepth / 8)
}

func (wr *Writer) byteRate() uint32 {
	return uint32(wr.format.SampleRate) * uint32(wr.blockAlign())
}

func (wr *Writer) writeHeader() error {
	var hdr []byte
	hdr = append(hdr, []byte("RIFF")...)
	hdr = appendUint32(hdr, 0) // patched on Close
	hdr = append(hdr, []byte("WAVE")...)

	hdr = append(hdr, []byte("fmt ")...)
	hdr = appendUint32(hdr, wr.fmtChunkSize())
	hdr = appendUint16(hdr, wr.audioFormat())
	hdr = appendUint16(hdr, numChannels)
	hdr = appendUint32(hdr, uint32(wr.format.SampleRate))
	hdr = appendUint32(hdr, wr.byteRate())
	hdr = appendUint16(hdr, wr.blockAlign())
	hdr = appendUint16(hdr, uint16(wr.format.BitDepth))
	if wr.format.Float {
		hdr = appendUint16(hdr, 0) // cbSize
	}

	hdr = append(hdr, []byte("data")...)
	hdr = appendUint32(hdr, 0) // patched on Close

	if _, err := wr.w.Write(hdr); err != nil {
		return err
	}
	if wr.ws != nil {
		pos, err := wr.ws.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		wr.dataStart = pos
	}
	return nil
}

// WriteInt writes little-endian signed integer samples at the Writer's
// configured bit depth.
func (wr *Writer) WriteInt(samples []int32) (int, error) {
	if wr.format.Float {
		return 0, fmt.Errorf("wave: WriteInt called on a float-format writer")
	}
	width := wr.format.BitDepth / 8
	buf := make([]byte, width*len(samples))
	for i, s := range samples {
		packLE(buf[i*width:(i+1)*width], int64(s), width)
	}
	n, err := wr.w.Write(buf)
	wr.dataBytes += int64(n)
	return n, err
}

// WriteFloat32 writes IEEE-754 little-endian 32-bit float samples.
func (wr *Writer) WriteFloat32(samples []float32) (int, error) {
	if !wr.format.Float {
		return 0, fmt.Errorf("wave: WriteFloat32 called on an integer-format writer")
	}
	buf := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
	}
	n, err := wr.w.Write(buf)
	wr.dataBytes += int64(n)
	return n, err
}

// Close patches the RIFF and data chunk sizes if the underlying writer
// supports seeking; otherwise it is a no-op beyond marking the Writer
// closed (the header's placeholder sizes are left as written).
func (wr *Writer) Close() error {
	if wr.closed {
		return nil
	}
	wr.closed = true

	if wr.ws == nil {
		return nil
	}

	riffSize := uint32(4 + chunkHeaderSize + wr.fmtChunkSize() + chunkHeaderSize + uint32(wr.dataBytes))

	if _, err := wr.ws.Seek(4, io.SeekStart); err != nil {
		return err
	}
	if err := writeUint32(wr.ws, riffSize); err != nil {
		return err
	}

	if _, err := wr.ws.Seek(wr.dataStart-4, io.SeekStart); err != nil {
		return err
	}
	if err := writeUint32(wr.ws, uint32(wr.dataBytes)); err != nil {
		return err
	}

	_, err := wr.ws.Seek(0, io.SeekEnd)
	return err
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

func writeUint32(w io.Writer, v uint32) error {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	_, err := w.Write(tmp[:])
	return err
}

// packLE writes v's low `width` bytes to buf in little-endian order.
func packLE(buf []byte, v int64, width int) {
	for i := 0; i < width; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}
