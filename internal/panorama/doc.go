// Package panorama splices a frame sequence into one composite image using
// the per-pair overlaps produced by the overlap package.
//
// The first frame contributes everything above its bottom crop band, every
// later frame contributes only the scrollable rows it adds beyond the overlap,
// and the last frame's bottom band closes the image. Optional seam markers
// overwrite the first rows of each later contribution without moving any row.
package panorama
