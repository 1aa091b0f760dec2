// Package pipeline runs one stitch end to end: preflight, probe, decode,
// overlap estimation, assembly, image output, report and history.
//
// Lengths arrive as configured (fractions below 1, pixels otherwise) and are
// resolved against the frame height once the capture has been probed. Errors
// carry a marker (ErrExternalTool, ErrConfiguration) plus the stage that
// failed, so the CLI can tell a broken install from a bad invocation. Nothing
// is written unless every stage before output succeeds.
package pipeline
