package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/doismellburning/ltcgen/ltc/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadParsesYAMLOverridesOnTopOfDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("frame_rate: 29.97\ndrop_frame: true\nsample_rate: 44100\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 29.97, cfg.FrameRate)
	assert.True(t, cfg.DropFrame)
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, 16, cfg.BitDepth) // untouched default survives partial override
}

func TestValidateRejectsUnsupportedFrameRate(t *testing.T) {
	cfg := Default()
	cfg.FrameRate = 123.45
	err := cfg.Validate()
	assert.ErrorIs(t, err, errs.ErrUnsupportedFrameRate)
}

func TestValidateRejectsBlockSizeBelowMinimum(t *testing.T) {
	cfg := Default()
	cfg.BlockSize = 1
	err := cfg.Validate()
	assert.ErrorIs(t, err, errs.ErrBlockSizeMismatch)
}

func TestFormatRejectsDropFrameOnUnsupportedRate(t *testing.T) {
	cfg := Default() // 25fps
	cfg.DropFrame = true
	_, err := cfg.Format()
	assert.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestFormatResolvesDropFrameRate(t *testing.T) {
	cfg := Default()
	cfg.FrameRate = 29.97
	cfg.DropFrame = true

	format, err := cfg.Format()
	require.NoError(t, err)
	assert.True(t, format.DropFrame)
	assert.Equal(t, 30, format.Rate.Rounded())
}
