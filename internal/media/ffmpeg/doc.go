// Package ffmpeg decodes a screen capture into packed rgb24 frames by piping
// ffmpeg's rawvideo output.
//
// The decoder does not interpret frames; callers reshape the buffer with
// frames.FromPacked using the dimensions reported by ffprobe.
package ffmpeg
