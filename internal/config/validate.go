package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStitch(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStitch() error {
	lengths := []struct {
		name  string
		value float64
	}{
		{"stitch.crop_top", c.Stitch.CropTop},
		{"stitch.crop_bottom", c.Stitch.CropBottom},
		{"stitch.expect_offset", c.Stitch.ExpectOffset},
		{"stitch.min_overlap", c.Stitch.MinOverlap},
	}
	for _, l := range lengths {
		if math.IsNaN(l.value) || math.IsInf(l.value, 0) || l.value < 0 {
			return fmt.Errorf("%s must be a non-negative number, got %v", l.name, l.value)
		}
	}
	if c.Stitch.ExpectOffset == 0 {
		return errors.New("stitch.expect_offset must be greater than 0")
	}
	if c.Stitch.CropTop < 1 && c.Stitch.CropBottom < 1 && c.Stitch.CropTop+c.Stitch.CropBottom >= 1 {
		return errors.New("stitch.crop_top and stitch.crop_bottom leave no scrollable region")
	}
	if math.IsNaN(c.Stitch.ApproxDiff) || c.Stitch.ApproxDiff < 0 {
		return fmt.Errorf("stitch.approx_diff must be >= 0, got %v", c.Stitch.ApproxDiff)
	}
	if c.Stitch.SeamWidth < 0 {
		return errors.New("stitch.seam_width must be >= 0")
	}
	if c.Stitch.Workers < 0 {
		return errors.New("stitch.workers must be >= 0")
	}
	if c.Stitch.ColumnStride < 1 {
		return errors.New("stitch.column_stride must be >= 1")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if math.IsNaN(c.Media.FPS) || c.Media.FPS < 0 {
		return fmt.Errorf("media.fps must be >= 0, got %v", c.Media.FPS)
	}
	if c.Media.DecodeTimeout < 0 {
		return errors.New("media.decode_timeout must be >= 0")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if _, ok := canonicalFormat(c.Output.Format); !ok {
		return fmt.Errorf("output.format: unsupported value %q", c.Output.Format)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be between 1 and 100, got %d", c.Output.JPEGQuality)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
