package server

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/mreiter/scormpack/pkg/course"
	"github.com/mreiter/scormpack/pkg/errors"
)

// Config holds server configuration. Values come from an optional TOML file
// with CLI flags layered on top.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `toml:"addr"`

	// MaxUploadBytes caps the size of a single upload request body.
	MaxUploadBytes int64 `toml:"max_upload_bytes"`

	// IDPrefix overrides the reverse-DNS prefix of package identifiers.
	IDPrefix string `toml:"id_prefix"`

	// Limits bounds archive extraction per invocation.
	Limits LimitsConfig `toml:"limits"`
}

// LimitsConfig mirrors course.Limits for TOML decoding.
type LimitsConfig struct {
	MaxFileBytes  int64 `toml:"max_file_bytes"`
	MaxTotalBytes int64 `toml:"max_total_bytes"`
	MaxEntries    int   `toml:"max_entries"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		MaxUploadBytes: 128 << 20, // 128 MiB
	}
}

// LoadConfig reads a TOML config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return cfg, nil
}

// CourseLimits converts the configured limits; zero fields fall back to
// course.DefaultLimits.
func (c Config) CourseLimits() course.Limits {
	return course.Limits{
		MaxFileBytes:  c.Limits.MaxFileBytes,
		MaxTotalBytes: c.Limits.MaxTotalBytes,
		MaxEntries:    c.Limits.MaxEntries,
	}
}
