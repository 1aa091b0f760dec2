// Package imageio writes finished panoramas to disk.
//
// The encoder is chosen from the target extension unless a format is forced:
// png, jpeg, bmp and tiff are supported. Files are written atomically under
// an advisory lock so concurrent runs never interleave output. Panoramas
// stitched from transposed captures are transposed back before encoding.
package imageio
