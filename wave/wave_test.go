package wave

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderFieldsForIntegerFormat(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Format{SampleRate: 48000, BitDepth: 16})
	require.NoError(t, err)

	_, err = w.WriteInt([]int32{1, -1, 32767, -32768})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data := buf.Bytes()
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[20:22])) // PCM
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:24])) // mono
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]))
	assert.Equal(t, "data", string(data[36:40]))
}

func TestIntSamplesRoundTripLittleEndian(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Format{SampleRate: 8000, BitDepth: 16})
	require.NoError(t, err)

	_, err = w.WriteInt([]int32{1, -2})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	payload := buf.Bytes()[44:]
	assert.Equal(t, int16(1), int16(binary.LittleEndian.Uint16(payload[0:2])))
	assert.Equal(t, int16(-2), int16(binary.LittleEndian.Uint16(payload[2:4])))
}

func TestFloatFormatUsesIEEEFloatTag(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Format{SampleRate: 48000, BitDepth: 32, Float: true})
	require.NoError(t, err)

	_, err = w.WriteFloat32([]float32{0.5, -0.5})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data := buf.Bytes()
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(data[20:22])) // IEEE float
}

func TestWriteIntRejectedOnFloatWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Format{SampleRate: 48000, BitDepth: 32, Float: true})
	require.NoError(t, err)

	_, err = w.WriteInt([]int32{1})
	assert.Error(t, err)
}

func TestCloseSizesAreCorrectWithSeekableWriter(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out-*.wav")
	require.NoError(t, err)
	defer f.Close()

	w, err := NewWriter(f, Format{SampleRate: 44100, BitDepth: 16})
	require.NoError(t, err)
	_, err = w.WriteInt(make([]int32, 100))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	info, err := f.Stat()
	require.NoError(t, err)

	var hdr [44]byte
	_, err = f.ReadAt(hdr[:], 0)
	require.NoError(t, err)

	riffSize := binary.LittleEndian.Uint32(hdr[4:8])
	dataSize := binary.LittleEndian.Uint32(hdr[40:44])

	assert.Equal(t, uint32(200), dataSize) // 100 samples * 2 bytes
	assert.Equal(t, uint32(info.Size()-8), riffSize)
}
