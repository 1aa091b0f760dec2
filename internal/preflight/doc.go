// Package preflight provides readiness checks for the tools and filesystem
// paths a stitch run depends on.
//
// These checks run in two contexts:
//   - The pipeline calls ForStitch before decoding so a missing decoder or an
//     unwritable output directory fails fast, before frames are in memory.
//   - The CLI "scrollsplice doctor" command calls RunAll to display health.
package preflight
