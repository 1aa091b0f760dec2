// Package report describes a finished stitch run: the parameters used, every
// pair's offset and status, summary statistics and the panorama geometry.
//
// Write serializes a Report as JSON, YAML or TOML depending on the target
// extension.
package report
