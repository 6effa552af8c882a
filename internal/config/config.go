// Package config loads the small set of process-startup settings that
// are legitimately configuration rather than runtime state (SPEC_FULL.md
// §2.2): sample rate, block size, default subdivision/tempo, the
// quantization lookahead offset, Freeze buffer length, Stutter's minimum
// supported tempo, and the four preset file paths.
//
// Grounded on doismellburning/samoyed's deviceid.go: an optional YAML
// file read once at startup, defaults used and logged at Info when the
// file is absent. Unlike deviceid.go's map[string]interface{} decode (a
// workaround for a pre-existing untyped data shape), this config has a
// known shape up front, so it decodes straight into a struct via
// yaml.v3's struct tags.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the startup settings of SPEC_FULL.md §2.2. cmd/microloop
// applies only DefaultSubdivision and PresetPaths; the other fields are
// loaded but not read, and the packages use their own compile-time
// constants for sample rate, block size, tempo, lookahead and buffer
// sizes.
type Config struct {
	SampleRate         uint32    `yaml:"sample_rate"`
	BlockSize          uint32    `yaml:"block_size"`
	DefaultSubdivision string    `yaml:"default_subdivision"`
	DefaultTempoBPM    float64   `yaml:"default_tempo_bpm"`
	LookaheadSamples   uint64    `yaml:"lookahead_samples"`
	FreezeBufferMS     uint32    `yaml:"freeze_buffer_ms"`
	StutterMinTempoBPM float64   `yaml:"stutter_min_tempo_bpm"`
	PresetPaths        [4]string `yaml:"preset_paths"`
}

// Default returns the built-in defaults (spec.md's own numbers), used
// when no config file is present or a file omits a field.
func Default() Config {
	return Config{
		SampleRate:         44100,
		BlockSize:          128,
		DefaultSubdivision: "sixteenth",
		DefaultTempoBPM:    120,
		LookaheadSamples:   0,
		FreezeBufferMS:     3,
		StutterMinTempoBPM: 70,
		PresetPaths: [4]string{
			"presets/slot1.bin",
			"presets/slot2.bin",
			"presets/slot3.bin",
			"presets/slot4.bin",
		},
	}
}

// Load reads path and overlays it on Default(). A missing file is not an
// error: it returns Default() unchanged, and the caller is expected to
// log that the built-in defaults are in effect (kept out of this package
// since audio/control-thread logging is the caller's concern, not
// config's — see internal/logging).
func Load(path string) (Config, bool, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false, err
	}
	return cfg, true, nil
}
