package config

const (
	defaultConfigPath   = "~/.config/scrollsplice/config.toml"
	projectConfigName   = "scrollsplice.toml"
	historyFileName     = "history.db"
	defaultCropTop      = 0.15
	defaultCropBottom   = 0.15
	defaultExpectOffset = 0.3
	defaultMinOverlap   = 0.15
	defaultApproxDiff   = 1
	defaultColumnStride = 1
	defaultFFmpeg       = "ffmpeg"
	defaultFFprobe      = "ffprobe"
	defaultJPEGQuality  = 92
	defaultHistoryDir   = "~/.local/share/scrollsplice"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with the command-line defaults.
func Default() Config {
	return Config{
		Stitch: Stitch{
			CropTop:      defaultCropTop,
			CropBottom:   defaultCropBottom,
			ExpectOffset: defaultExpectOffset,
			MinOverlap:   defaultMinOverlap,
			ApproxDiff:   defaultApproxDiff,
			ColumnStride: defaultColumnStride,
		},
		Media: Media{
			FFmpegBinary:  defaultFFmpeg,
			FFprobeBinary: defaultFFprobe,
		},
		Output: Output{
			JPEGQuality: defaultJPEGQuality,
			Overwrite:   true,
		},
		History: History{
			Enabled: true,
			Dir:     defaultHistoryDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
