package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReturnsDefaultsWhenFileMissing(t *testing.T) {
	cfg, found, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFieldsOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_tempo_bpm: 95\ndefault_subdivision: eighth\n"), 0o644))

	cfg, found, err := Load(path)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 95.0, cfg.DefaultTempoBPM)
	assert.Equal(t, "eighth", cfg.DefaultSubdivision)
	// Untouched fields keep their defaults.
	assert.Equal(t, Default().SampleRate, cfg.SampleRate)
	assert.Equal(t, Default().PresetPaths, cfg.PresetPaths)
}

func TestLoadPropagatesMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid: yaml"), 0o644))

	_, _, err := Load(path)

	assert.Error(t, err)
}
