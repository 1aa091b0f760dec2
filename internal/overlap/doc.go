// Package overlap estimates, for every adjacent pair of frames in a scrolling
// capture, how many rows of content the two frames share.
//
// Estimate compares the bottom of frame i's scrollable region against the top
// of frame i+1's scrollable region for every candidate overlap height and
// keeps the candidate with the lowest mean absolute channel difference. Pairs
// that find no candidate within tolerance are not errors: they are recorded as
// Fallback results carrying the expected offset so the assembler can still
// run, and callers can list them as degraded seams.
//
// Candidates are visited outward from the expected offset, which makes the
// continuity tie-break fall out of the search order, and each candidate's
// difference sum is abandoned as soon as it can no longer beat the best one.
// Pairs are independent and run on a bounded worker pool.
package overlap
