// Package config loads and persists the recorder settings file. The schema
// mirrors the settings page: output format, sample rate, bit depth and
// compressor parameters, plus the directory recordings land in.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"rokuon/sink"
)

type Settings struct {
	Format                string  `mapstructure:"format"`
	SampleRate            uint32  `mapstructure:"sample_rate"`
	BitDepth              uint16  `mapstructure:"bit_depth"`
	CompressorEnabled     bool    `mapstructure:"compressor_enabled"`
	CompressorThresholdDB float32 `mapstructure:"compressor_threshold_db"`
	CompressorRatio       float32 `mapstructure:"compressor_ratio"`
	OutputDir             string  `mapstructure:"output_dir"`
}

func Default() Settings {
	return Settings{
		Format:                string(sink.Wave),
		SampleRate:            44100,
		BitDepth:              16,
		CompressorEnabled:     false,
		CompressorThresholdDB: -20.0,
		CompressorRatio:       4.0,
		OutputDir:             ".",
	}
}

// Load reads the settings file at path. A missing file yields the defaults;
// a file that exists but cannot be read, parsed or validated yields the
// defaults together with an error.
func Load(path string) (Settings, error) {
	def := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("format", def.Format)
	v.SetDefault("sample_rate", def.SampleRate)
	v.SetDefault("bit_depth", def.BitDepth)
	v.SetDefault("compressor_enabled", def.CompressorEnabled)
	v.SetDefault("compressor_threshold_db", def.CompressorThresholdDB)
	v.SetDefault("compressor_ratio", def.CompressorRatio)
	v.SetDefault("output_dir", def.OutputDir)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr != nil {
			return def, nil
		}
		return def, fmt.Errorf("reading settings %s: %w", path, err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return def, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return def, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

func (s Settings) Validate() error {
	if _, err := sink.ParseFormat(s.Format); err != nil {
		return err
	}
	if s.SampleRate == 0 {
		return fmt.Errorf("sample_rate must be positive")
	}
	switch s.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("bit_depth must be 16, 24 or 32, got %d", s.BitDepth)
	}
	if s.CompressorRatio < 1 {
		return fmt.Errorf("compressor_ratio must be >= 1, got %v", s.CompressorRatio)
	}
	return nil
}

// SinkFormat returns the parsed output format. Validate must have accepted
// the settings first.
func (s Settings) SinkFormat() sink.Format {
	f, err := sink.ParseFormat(s.Format)
	if err != nil {
		return sink.Wave
	}
	return f
}

// Save writes the settings as JSON to path.
func (s Settings) Save(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.Set("format", s.Format)
	v.Set("sample_rate", s.SampleRate)
	v.Set("bit_depth", s.BitDepth)
	v.Set("compressor_enabled", s.CompressorEnabled)
	v.Set("compressor_threshold_db", s.CompressorThresholdDB)
	v.Set("compressor_ratio", s.CompressorRatio)
	v.Set("output_dir", s.OutputDir)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing settings %s: %w", path, err)
	}
	return nil
}
