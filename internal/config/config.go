package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"bobbin/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Watch contains configuration for filesystem watching.
type Watch struct {
	// StabilizationSeconds is how long a candidate file must sit idle
	// before it is considered fully written.
	StabilizationSeconds int `toml:"stabilization_seconds"`
}

// Queue contains configuration for transcode scheduling.
type Queue struct {
	// InterTaskDelaySeconds is the settle window between two transcodes.
	InterTaskDelaySeconds int `toml:"inter_task_delay_seconds"`
}

// Tools contains the external binaries bobbin drives.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
	// RetentionDays bounds how long per-run daemon logs are kept.
	RetentionDays int `toml:"retention_days"`
}

// History contains configuration for the job history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Preflight contains configuration for startup checks.
type Preflight struct {
	// MinFreeGiB is the free-space floor required on the output filesystem.
	MinFreeGiB int `toml:"min_free_gib"`
}

// Config is the root settings document.
type Config struct {
	Watch     Watch     `toml:"watch"`
	Queue     Queue     `toml:"queue"`
	Tools     Tools     `toml:"tools"`
	Logging   Logging   `toml:"logging"`
	History   History   `toml:"history"`
	Preflight Preflight `toml:"preflight"`
}

// Load reads the settings file at path, merging it over defaults. An empty
// path reads the default location instead; a missing file there is not an
// error and yields pure defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	path = fileutil.ExpandHome(path)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// Defaults only.
	default:
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultPath returns the conventional settings file location.
func DefaultPath() string {
	return "~/.config/bobbin/config.toml"
}

// Sample returns the embedded sample settings document.
func Sample() string {
	return sampleConfig
}

// WriteSample writes the sample settings file to path, refusing to overwrite.
func WriteSample(path string) error {
	path = fileutil.ExpandHome(path)
	if fileutil.FileExists(path) {
		return fmt.Errorf("settings file already exists: %s", path)
	}
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("ensure settings directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

func (c *Config) normalize() {
	c.Logging.Dir = fileutil.ExpandHome(c.Logging.Dir)
	c.History.Path = fileutil.ExpandHome(c.History.Path)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
}
