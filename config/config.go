// Package config holds the typed, YAML-loadable configuration spec.md
// §6's "Configuration (recognized options)" table describes, for callers
// that need to build a FrameFormat and an AudioGenerator from a single
// source of truth. cmd/ltcgen does not use it; it reads its own flags.
package config

import (
	"fmt"
	"os"

	"github.com/doismellburning/ltcgen/ltc/errs"
	"github.com/doismellburning/ltcgen/ltc/rate"
	"gopkg.in/yaml.v3"
)

// Minimum accepted block size; below this the core cannot keep the ring
// usefully full between producer wakeups.
const MinBlockSize = 16

// Config is the full set of options spec.md §6 recognizes. Zero value
// is not valid; use Default() as a starting point.
type Config struct {
	FrameRate       float64 `yaml:"frame_rate"`
	UseCurrentTime  bool    `yaml:"use_current_time"`
	UseUTC          bool    `yaml:"use_utc"`
	DropFrame       bool    `yaml:"drop_frame"`
	UseFloatSamples bool    `yaml:"use_float_samples"`
	SampleRate      int     `yaml:"sample_rate"`
	BitDepth        int     `yaml:"bit_depth"`
	BlockSize       int     `yaml:"block_size"`
	QueueLength     int     `yaml:"queue_length"`
}

// Default returns the configuration ltc-tools falls back to when no
// file or flags override it: 25fps non-drop, 48kHz 16-bit integer, a
// 256-sample block, 4 blocks deep.
func Default() Config {
	return Config{
		FrameRate:   25,
		SampleRate:  48000,
		BitDepth:    16,
		BlockSize:   256,
		QueueLength: 4,
	}
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration is internally consistent, mirroring
// the OutOfRange / UnsupportedFrameRate error kinds spec.md §7 names.
func (c Config) Validate() error {
	if _, err := rate.FromFloat(c.FrameRate); err != nil {
		return err
	}
	if !c.UseFloatSamples && c.BitDepth != 16 && c.BitDepth != 24 && c.BitDepth != 32 {
		return fmt.Errorf("%w: bit depth %d", errs.ErrOutOfRange, c.BitDepth)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", errs.ErrOutOfRange, c.SampleRate)
	}
	if c.BlockSize < MinBlockSize {
		return fmt.Errorf("%w: block size %d below minimum %d", errs.ErrBlockSizeMismatch, c.BlockSize, MinBlockSize)
	}
	if c.QueueLength <= 0 {
		return fmt.Errorf("%w: queue length %d", errs.ErrOutOfRange, c.QueueLength)
	}
	return nil
}

// Format resolves the configured frame rate and drop-frame flag into a
// FrameFormat, surfacing ErrOutOfRange if drop-frame was requested for a
// rate that does not support it.
func (c Config) Format() (rate.FrameFormat, error) {
	fr, err := rate.FromFloat(c.FrameRate)
	if err != nil {
		return rate.FrameFormat{}, err
	}
	return rate.NewFormat(fr, c.DropFrame)
}
