package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/doismellburning/ltcgen/ltc/biphase"
	"github.com/doismellburning/ltcgen/ltc/block"
	"github.com/doismellburning/ltcgen/ltc/rate"
	"github.com/spf13/pflag"
)

func runDecode(args []string) int {
	fs := pflag.NewFlagSet("decode", pflag.ContinueOnError)
	frameRate := fs.String("frame-rate", "25", "Frame rate the file was recorded at.")
	dropFrame := fs.Bool("drop-frame", false, "The recording used drop-frame counting.")

	if err := fs.Parse(args); err != nil {
		return exitArgError
	}
	paths := fs.Args()
	if len(paths) != 1 {
		fmt.Fprintln(os.Stderr, "ltcgen decode: exactly one WAVE file path is required")
		return exitArgError
	}

	fr, err := rate.FromFloat(parseRateFlag(*frameRate))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ltcgen decode: %v\n", err)
		return exitArgError
	}
	format, err := rate.NewFormat(fr, *dropFrame)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ltcgen decode: %v\n", err)
		return exitArgError
	}

	samples, bitDepth, isFloat, err := readWaveSamples(paths[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ltcgen decode: %v\n", err)
		return exitArgError
	}

	decoder := biphase.NewDecoder(func(bits [block.Size]bool) {
		b := block.FromArray(bits)
		f, err := block.Decode(b, format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ltcgen decode: bad block: %v\n", err)
			return
		}
		fmt.Println(f.String())
	})

	floats := toFloatSamples(samples, bitDepth, isFloat)
	decoder.Decode(floats)

	return exitSuccess
}

// readWaveSamples reads a minimal canonical RIFF/WAVE file and returns
// its raw sample bytes, bit depth, and whether it is IEEE-float tagged.
// It understands the exact layout wave.Writer produces (16-byte PCM or
// 18-byte extensible float fmt chunk, then one data chunk) rather than
// the full generality of arbitrary WAVE files.
func readWaveSamples(path string) ([]byte, int, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, false, err
	}
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, false, fmt.Errorf("not a RIFF/WAVE file")
	}

	offset := 12
	var bitDepth int
	var audioFormat uint16
	var payload []byte

	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := data[offset+8:]
		if len(body) < size {
			return nil, 0, false, io.ErrUnexpectedEOF
		}

		switch id {
		case "fmt ":
			audioFormat = binary.LittleEndian.Uint16(body[0:2])
			bitDepth = int(binary.LittleEndian.Uint16(body[14:16]))
		case "data":
			payload = body[:size]
		}

		offset += 8 + size
	}

	if payload == nil || bitDepth == 0 {
		return nil, 0, false, fmt.Errorf("missing fmt or data chunk")
	}
	return payload, bitDepth, audioFormat == 3, nil
}

func toFloatSamples(raw []byte, bitDepth int, isFloat bool) []float64 {
	if isFloat {
		out := make([]float64, len(raw)/4)
		for i := range out {
			bits := binary.LittleEndian.Uint32(raw[i*4:])
			out[i] = float64(math.Float32frombits(bits))
		}
		return out
	}

	width := bitDepth / 8
	maxVal := float64(int64(1)<<uint(bitDepth-1)) - 1
	out := make([]float64, len(raw)/width)
	for i := range out {
		off := i * width
		var v int64
		for b := 0; b < width; b++ {
			v |= int64(raw[off+b]) << (8 * b)
		}
		signBit := int64(1) << uint(width*8-1)
		if v&signBit != 0 {
			v -= int64(1) << uint(width*8)
		}
		out[i] = float64(v) / maxVal
	}
	return out
}
