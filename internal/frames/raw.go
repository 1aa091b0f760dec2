package frames

import "fmt"

// Layout describes how a decoder orders samples inside one frame.
type Layout int

const (
	// LayoutPacked stores rows of interleaved RGB samples (ffmpeg rgb24).
	LayoutPacked Layout = iota
	// LayoutPlanar stores three full channel planes, each row-major.
	LayoutPlanar
)

func (l Layout) String() string {
	switch l {
	case LayoutPacked:
		return "packed"
	case LayoutPlanar:
		return "planar"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// FrameBytes is the size of one decoded frame.
func FrameBytes(width, height int) int {
	return width * height * Channels
}

// FromRaw reshapes a decoder buffer holding consecutive frames of the given
// source dimensions. With transpose set, every frame is rotated about its
// diagonal so horizontal scrolling becomes vertical; the resulting frames are
// height pixels wide and width pixels tall.
//
// Packed, untransposed frames alias buf.
func FromRaw(buf []byte, width, height int, layout Layout, transpose bool) (Sequence, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: source is %dx%d", ErrDimensionMismatch, width, height)
	}
	size := FrameBytes(width, height)
	if len(buf)%size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of the %d byte frame size", ErrTruncatedBuffer, len(buf), size)
	}
	count := len(buf) / size
	seq := make(Sequence, 0, count)
	for i := 0; i < count; i++ {
		chunk := buf[i*size : (i+1)*size : (i+1)*size]
		var f Frame
		switch layout {
		case LayoutPacked:
			f = Frame{Width: width, Height: height, Pix: chunk}
		case LayoutPlanar:
			f = interleave(chunk, width, height)
		default:
			return nil, fmt.Errorf("unsupported frame layout %s", layout)
		}
		if transpose {
			f = Transpose(f)
		}
		seq = append(seq, f)
	}
	return seq, nil
}

// FromPacked is FromRaw with LayoutPacked.
func FromPacked(buf []byte, width, height int, transpose bool) (Sequence, error) {
	return FromRaw(buf, width, height, LayoutPacked, transpose)
}

// FromPlanar is FromRaw with LayoutPlanar (frame, channel, row, column order).
func FromPlanar(buf []byte, width, height int, transpose bool) (Sequence, error) {
	return FromRaw(buf, width, height, LayoutPlanar, transpose)
}

func interleave(planes []byte, width, height int) Frame {
	out := NewFrame(width, height)
	plane := width * height
	for c := 0; c < Channels; c++ {
		src := planes[c*plane : (c+1)*plane]
		for i, v := range src {
			out.Pix[i*Channels+c] = v
		}
	}
	return out
}
