// Package main hosts the scrollsplice CLI entrypoint and command graph.
//
// The Cobra command tree turns a scroll capture into a panorama (stitch),
// inspects captures (probe), browses recorded runs (history), scaffolds
// configuration (config) and checks the environment (doctor). Configuration
// is resolved once per invocation and flags override the loaded values.
//
// Keep this package lean: the stitching itself lives in internal/pipeline and
// the packages below it; commands here only parse flags and render results.
package main
