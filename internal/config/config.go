package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Encode defaults, used when the config file leaves them unset.
const (
	DefaultOggQuality = 6
	DefaultFlacLevel  = 8
)

// Config represents the optional cuesplit configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Tools    ToolsConfig    `toml:"tools"`
	Encode   EncodeConfig   `toml:"encode"`
}

// DefaultsConfig holds persistent flag defaults. Pointer fields
// distinguish "unset" from an explicit zero value.
type DefaultsConfig struct {
	Formats   []string `toml:"formats"`
	Converter *string  `toml:"converter"`
	Workers   *int     `toml:"workers"`
	Verify    *bool    `toml:"verify"`
	BWLimit   *string  `toml:"bwlimit"`
	KeepWAV   *bool    `toml:"keep_wav"`
	Swap      *bool    `toml:"swap"`
}

// ToolsConfig overrides collaborator binaries. Empty means "look up the
// conventional name on PATH".
type ToolsConfig struct {
	FFmpeg string `toml:"ffmpeg"`
	SoX    string `toml:"sox"`
	OggEnc string `toml:"oggenc"`
	Flac   string `toml:"flac"`
}

// EncodeConfig tunes the audio encoders.
type EncodeConfig struct {
	OggQuality *int `toml:"ogg_quality"`
	FlacLevel  *int `toml:"flac_level"`
}

// Quality returns the oggenc -q value to use.
func (e EncodeConfig) Quality() int {
	if e.OggQuality != nil {
		return *e.OggQuality
	}
	return DefaultOggQuality
}

// Level returns the flac compression level to use.
func (e EncodeConfig) Level() int {
	if e.FlacLevel != nil {
		return *e.FlacLevel
	}
	return DefaultFlacLevel
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "cuesplit", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}

	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// ParseSize parses a human-readable size string into bytes.
// Supports: 100, 100B, 100K, 100M, 100G, 100T (case-insensitive).
// Uses powers of 1024.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	// Determine the multiplier suffix.
	multiplier := int64(1)
	numStr := s

	last := strings.ToUpper(s[len(s)-1:])
	switch last {
	case "B":
		multiplier = 1
		numStr = s[:len(s)-1]
	case "K":
		multiplier = 1024
		numStr = s[:len(s)-1]
	case "M":
		multiplier = 1024 * 1024
		numStr = s[:len(s)-1]
	case "G":
		multiplier = 1024 * 1024 * 1024
		numStr = s[:len(s)-1]
	case "T":
		multiplier = 1024 * 1024 * 1024 * 1024
		numStr = s[:len(s)-1]
	default:
		// No suffix, try parsing as plain number.
	}

	if numStr == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	// Try integer first, then float.
	if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
		return n * multiplier, nil
	}

	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	return int64(f * float64(multiplier)), nil
}
