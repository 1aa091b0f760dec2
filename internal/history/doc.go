// Package history persists finished stitch runs in SQLite so earlier results
// can be listed and inspected with `scrollsplice history`.
//
// Each run stores its resolved parameters, panorama geometry and every pair's
// offset. The schema is versioned; a database written by a different version
// is rejected rather than migrated.
package history
