// Package config holds the settings for one merge run, read from a YAML file
// and overridden by command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/mapmerge/internal/render"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Defaults for a merge run.
const (
	DefaultBaseFile   = "base.bmp"
	DefaultMergedFile = "output_map.bmp"
	DefaultLogFile    = "output_log.bmp"
	DefaultTolerance  = 100.0
	DefaultOpacity    = 0.6
	DefaultCropMargin = 16
	DefaultCropScale  = 4.0

	// LogLevelEnv selects the slog level (debug, info, warn, error).
	LogLevelEnv = "MAPMERGE_LOG_LEVEL"
)

// Config is the full set of inputs for a merge run.
type Config struct {
	// MapsDir holds the base map and every variant.
	MapsDir string `yaml:"maps_dir"`
	// BaseFile is the base map's file name inside MapsDir.
	BaseFile string `yaml:"base_file"`
	// Exclude lists entry names in MapsDir that are not variants.
	Exclude []string `yaml:"exclude"`

	// OutputDir receives every output file. Relative output names resolve here.
	OutputDir  string `yaml:"output_dir"`
	MergedFile string `yaml:"merged_file"`
	LogFile    string `yaml:"log_file"`

	// Width and Height, when non-zero, must match the base map.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Tolerance is the exclusive near-miss distance in pixels.
	Tolerance float64 `yaml:"tolerance"`
	// Verbose logs every pair comparison.
	Verbose bool `yaml:"verbose"`
	// Workers bounds concurrent extraction and pair analysis.
	Workers int `yaml:"workers"`

	Palette render.PaletteSpec `yaml:"palette"`

	// Optional review outputs; empty disables each one.
	OverlayFile    string  `yaml:"overlay_file"`
	OverlayOpacity float64 `yaml:"overlay_opacity"`
	SummaryFile    string  `yaml:"summary_file"`
	ReviewCropFile string  `yaml:"review_crop_file"`
	CropMargin     int     `yaml:"crop_margin"`
	CropScale      float64 `yaml:"crop_scale"`
}

// Default returns a Config holding every default value.
func Default() *Config {
	return &Config{
		MapsDir:        "maps",
		BaseFile:       DefaultBaseFile,
		Exclude:        []string{"unused"},
		OutputDir:      ".",
		MergedFile:     DefaultMergedFile,
		LogFile:        DefaultLogFile,
		Tolerance:      DefaultTolerance,
		Workers:        runtime.GOMAXPROCS(0),
		OverlayOpacity: DefaultOpacity,
		CropMargin:     DefaultCropMargin,
		CropScale:      DefaultCropScale,
	}
}

// LoadFile reads a YAML configuration file. Keys missing from the file keep
// their Default values, so an explicit "tolerance: 0" is honored.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.BaseFile == "" {
		c.BaseFile = DefaultBaseFile
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.MapsDir == "":
		return fmt.Errorf("%w: maps_dir is required", ErrInvalid)
	case c.MergedFile == "" || c.LogFile == "":
		return fmt.Errorf("%w: merged_file and log_file are required", ErrInvalid)
	case math.IsNaN(c.Tolerance) || c.Tolerance < 0:
		return fmt.Errorf("%w: tolerance must be a number >= 0, got %g", ErrInvalid, c.Tolerance)
	case c.Width < 0 || c.Height < 0:
		return fmt.Errorf("%w: width and height must be >= 0", ErrInvalid)
	case (c.Width == 0) != (c.Height == 0):
		return fmt.Errorf("%w: width and height must be set together", ErrInvalid)
	case c.OverlayOpacity < 0 || c.OverlayOpacity > 1:
		return fmt.Errorf("%w: overlay_opacity must be in [0, 1], got %g", ErrInvalid, c.OverlayOpacity)
	case c.CropScale <= 0:
		return fmt.Errorf("%w: crop_scale must be > 0", ErrInvalid)
	case c.CropMargin < 0:
		return fmt.Errorf("%w: crop_margin must be >= 0", ErrInvalid)
	}
	if _, err := render.ParsePalette(c.Palette); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// BasePath returns the full path of the base map.
func (c *Config) BasePath() string {
	return filepath.Join(c.MapsDir, c.BaseFile)
}

// OutputPath resolves name against OutputDir. Absolute names and empty
// names are returned unchanged.
func (c *Config) OutputPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutputDir, name)
}

// ParseLogLevel maps a level name to a slog.Level. Unknown names give Info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the stderr text logger used by the CLI, at the level named
// by LogLevelEnv.
func NewLogger() *slog.Logger {
	lvl := ParseLogLevel(os.Getenv(LogLevelEnv))
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
