package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Stitch holds the overlap search and assembly parameters. Length values
// below 1 are fractions of the frame height, values of 1 or more are pixels.
type Stitch struct {
	CropTop      float64 `toml:"crop_top"`
	CropBottom   float64 `toml:"crop_bottom"`
	ExpectOffset float64 `toml:"expect_offset"`
	MinOverlap   float64 `toml:"min_overlap"`
	ApproxDiff   float64 `toml:"approx_diff"`
	SeamWidth    int     `toml:"seam_width"`
	Transpose    bool    `toml:"transpose"`
	// Workers bounds concurrent pair searches; 0 uses GOMAXPROCS.
	Workers int `toml:"workers"`
	// ColumnStride samples every Nth column during the search; 1 compares all.
	ColumnStride int `toml:"column_stride"`
}

// Media configures the external decoder tools.
type Media struct {
	FFmpegBinary  string  `toml:"ffmpeg_binary"`
	FFprobeBinary string  `toml:"ffprobe_binary"`
	FPS           float64 `toml:"fps"`
	// DecodeTimeout is in seconds; 0 disables the limit.
	DecodeTimeout int `toml:"decode_timeout"`
}

// Output configures how the panorama image is written.
type Output struct {
	// Format overrides extension detection: png, jpeg, bmp or tiff.
	Format      string `toml:"format"`
	JPEGQuality int    `toml:"jpeg_quality"`
	Overwrite   bool   `toml:"overwrite"`
}

// History configures the sqlite run history.
type History struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File, when set, receives a JSON copy of every record.
	File string `toml:"file"`
}

// Config encapsulates all configuration values for scrollsplice.
type Config struct {
	Stitch  Stitch  `toml:"stitch"`
	Media   Media   `toml:"media"`
	Output  Output  `toml:"output"`
	History History `toml:"history"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// HistoryPath returns the sqlite database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.History.Dir, historyFileName)
}

// EnsureDirectories creates the history directory when history is enabled.
func (c *Config) EnsureDirectories() error {
	if !c.History.Enabled {
		return nil
	}
	if err := os.MkdirAll(c.History.Dir, 0o755); err != nil {
		return fmt.Errorf("create history directory %q: %w", c.History.Dir, err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
// An existing file is left untouched unless overwrite is set.
func CreateSample(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists: %w", path, fs.ErrExist)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
