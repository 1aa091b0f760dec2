package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeMedia()
	c.normalizeOutput()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeMedia() {
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if value, ok := os.LookupEnv("SCROLLSPLICE_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Media.FFmpegBinary = strings.TrimSpace(value)
	}
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpeg
	}
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if value, ok := os.LookupEnv("SCROLLSPLICE_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Media.FFprobeBinary = strings.TrimSpace(value)
	}
	if c.Media.FFprobeBinary == "" {
		c.Media.FFprobeBinary = defaultFFprobe
	}
}

func (c *Config) normalizeOutput() {
	if format, ok := canonicalFormat(c.Output.Format); ok {
		c.Output.Format = format
	}
	if c.Output.JPEGQuality == 0 {
		c.Output.JPEGQuality = defaultJPEGQuality
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Dir) == "" {
		c.History.Dir = defaultHistoryDir
	}
	dir, err := expandPath(c.History.Dir)
	if err != nil {
		return fmt.Errorf("history.dir: %w", err)
	}
	c.History.Dir = dir
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		file, err := expandPath(c.Logging.File)
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = file
	}
	return nil
}

// canonicalFormat folds case and the jpg/tif spellings onto the names the
// image writer uses. "" means "pick from the output extension".
func canonicalFormat(value string) (string, bool) {
	format := strings.ToLower(strings.TrimSpace(value))
	switch format {
	case "jpg":
		return "jpeg", true
	case "tif":
		return "tiff", true
	case "", "png", "jpeg", "bmp", "tiff":
		return format, true
	}
	return format, false
}
