// Package config loads, normalizes, and validates scrollsplice configuration.
//
// It supplies defaults that match the command-line tool, expands user paths
// (including tilde shortcuts), reads TOML files, and honours environment
// fallbacks for the ffmpeg and ffprobe binaries. Stitch values below 1 are
// fractions of the frame height; the pipeline resolves them to pixels once the
// frame size is known.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical formats, and clear validation errors.
package config
