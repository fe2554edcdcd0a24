package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/doismellburning/ltcgen/audiohost"
	"github.com/doismellburning/ltcgen/ltc/audiogen"
	"github.com/doismellburning/ltcgen/ltc/biphase"
	"github.com/doismellburning/ltcgen/ltc/engine"
	"github.com/doismellburning/ltcgen/ltc/rate"
	"github.com/doismellburning/ltcgen/ltclog"
	"github.com/doismellburning/ltcgen/wave"
	"github.com/spf13/pflag"
)

func runGenerate(args []string) int {
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	frameRate := fs.String("frame-rate", "25", "Frame rate: 24, 25, 29.97, 30, 59.94, or 60.")
	dropFrame := fs.Bool("drop-frame", false, "Enable drop-frame counting (29.97/59.94 only).")
	sampleRate := fs.Int("sample-rate", 48000, "Audio sample rate in Hz.")
	bitDepth := fs.Int("bit-depth", 16, "Integer sample bit depth: 16, 24, or 32.")
	useFloat := fs.Bool("float", false, "Emit IEEE-754 float samples instead of integer.")
	output := fs.String("output", "", "Output WAVE file path.")
	jack := fs.Bool("jack", false, "Write to a live audio output instead of a file.")
	useCurrentTime := fs.Bool("use-current-time", false, "Start the timecode from the wall clock instead of 00:00:00:00.")
	useUTC := fs.Bool("use-utc", false, "Interpret the wall clock as UTC rather than local time.")
	duration := fs.Duration("duration", 10*time.Second, "How long to generate for.")
	verbose := fs.CountP("verbose", "v", "Increase log verbosity (repeatable).")

	if err := fs.Parse(args); err != nil {
		return exitArgError
	}

	if *output == "" && !*jack {
		fmt.Fprintln(os.Stderr, "ltcgen generate: one of --output FILE or --jack is required")
		return exitArgError
	}
	if *output != "" && *jack {
		fmt.Fprintln(os.Stderr, "ltcgen generate: --output and --jack are mutually exclusive")
		return exitArgError
	}

	logger := ltclog.New(*verbose)

	fr, err := rate.FromFloat(parseRateFlag(*frameRate))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ltcgen generate: %v\n", err)
		return exitArgError
	}
	format, err := rate.NewFormat(fr, *dropFrame)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ltcgen generate: %v\n", err)
		return exitArgError
	}

	gen := audiogen.New(format, float64(*sampleRate))
	if *useCurrentTime {
		now := time.Now()
		if *useUTC {
			now = now.UTC()
		}
		if err := gen.SetFrameFromTime(now); err != nil {
			fmt.Fprintf(os.Stderr, "ltcgen generate: %v\n", err)
			return exitArgError
		}
	}

	if *jack {
		return generateLive(gen, *sampleRate, *bitDepth, *duration, logger)
	}
	return generateToFile(gen, *output, *sampleRate, *bitDepth, *useFloat, *duration)
}

// parseRateFlag maps the CLI's human-readable rate strings to the exact
// float value rate.FromFloat expects.
func parseRateFlag(s string) float64 {
	switch s {
	case "29.97":
		return rate.R2997.FloatValue()
	case "59.94":
		return rate.R5994.FloatValue()
	default:
		var v float64
		fmt.Sscanf(s, "%f", &v)
		return v
	}
}

func generateToFile(gen *audiogen.AudioGenerator, path string, sampleRate, bitDepth int, useFloat bool, duration time.Duration) int {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ltcgen generate: %v\n", err)
		return exitArgError
	}
	defer f.Close()

	w, err := wave.NewWriter(f, wave.Format{SampleRate: sampleRate, BitDepth: bitDepth, Float: useFloat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ltcgen generate: %v\n", err)
		return exitArgError
	}

	frameRate := gen.Frame().Format().Rate.FloatValue()
	frameCount := int(duration.Seconds() * frameRate)

	for i := 0; i < frameCount; i++ {
		samples := gen.GenerateFrames(1, false)
		if useFloat {
			floats := make([]float32, len(samples))
			for j, s := range samples {
				floats[j] = float32(s)
			}
			if _, err := w.WriteFloat32(floats); err != nil {
				fmt.Fprintf(os.Stderr, "ltcgen generate: %v\n", err)
				return exitArgError
			}
		} else {
			ints := biphase.QuantizeInt(samples, bitDepth)
			if _, err := w.WriteInt(ints); err != nil {
				fmt.Fprintf(os.Stderr, "ltcgen generate: %v\n", err)
				return exitArgError
			}
		}
	}

	if err := w.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "ltcgen generate: %v\n", err)
		return exitArgError
	}
	return exitSuccess
}

func generateLive(gen *audiogen.AudioGenerator, sampleRate, bitDepth int, duration time.Duration, logger *log.Logger) int {
	const blockSize = 256
	const queueLength = 4
	const sampleWidth = 2 // int16 wire width

	source := &audiohost.GeneratorSource{Gen: gen, BitDepth: bitDepth}
	host := audiohost.New(float64(sampleRate), blockSize, sampleWidth, -1, logger)

	e := engine.New(source, host, float64(sampleRate), sampleWidth, blockSize, queueLength, logger)
	host.Bind(e)

	if err := e.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "ltcgen generate: %v\n", err)
		return exitHostFail
	}

	logger.Info("ltcgen: generating live audio", "duration", duration)
	time.Sleep(duration)

	e.Stop()
	return exitSuccess
}
