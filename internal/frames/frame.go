package frames

import "fmt"

// Channels is the number of samples stored per pixel.
const Channels = 3

// Frame is a packed RGB image. Pix holds Height rows of Width*Channels bytes.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame allocates a zeroed frame.
func NewFrame(width, height int) Frame {
	return Frame{Width: width, Height: height, Pix: make([]uint8, width*height*Channels)}
}

// Stride returns the number of bytes in one row.
func (f Frame) Stride() int {
	return f.Width * Channels
}

// Row returns the bytes of row y. The slice aliases the frame buffer.
func (f Frame) Row(y int) []uint8 {
	stride := f.Stride()
	return f.Pix[y*stride : (y+1)*stride : (y+1)*stride]
}

// Rows returns rows [from, to) as one contiguous slice.
func (f Frame) Rows(from, to int) []uint8 {
	stride := f.Stride()
	return f.Pix[from*stride : to*stride : to*stride]
}

// RGB returns the channels of the pixel at (x, y).
func (f Frame) RGB(x, y int) (r, g, b uint8) {
	i := (y*f.Width + x) * Channels
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// SetRGB writes the pixel at (x, y).
func (f Frame) SetRGB(x, y int, r, g, b uint8) {
	i := (y*f.Width + x) * Channels
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
}

func (f Frame) checkBuffer() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: frame is %dx%d", ErrDimensionMismatch, f.Width, f.Height)
	}
	if want := f.Width * f.Height * Channels; len(f.Pix) != want {
		return fmt.Errorf("%w: frame buffer holds %d bytes, want %d", ErrDimensionMismatch, len(f.Pix), want)
	}
	return nil
}

// Transpose returns a copy of f with rows and columns swapped.
func Transpose(f Frame) Frame {
	out := NewFrame(f.Height, f.Width)
	for y := 0; y < f.Height; y++ {
		src := f.Row(y)
		for x := 0; x < f.Width; x++ {
			d := (x*out.Width + y) * Channels
			s := x * Channels
			out.Pix[d], out.Pix[d+1], out.Pix[d+2] = src[s], src[s+1], src[s+2]
		}
	}
	return out
}

// Sequence is an ordered list of frames in capture order.
type Sequence []Frame

// Dimensions validates that the sequence has at least two frames of one
// shared size and returns that size.
func (s Sequence) Dimensions() (width, height int, err error) {
	if len(s) < 2 {
		return 0, 0, fmt.Errorf("%w: got %d, need at least 2", ErrInsufficientFrames, len(s))
	}
	first := s[0]
	if err := first.checkBuffer(); err != nil {
		return 0, 0, fmt.Errorf("frame 0: %w", err)
	}
	for i := 1; i < len(s); i++ {
		f := s[i]
		if f.Width != first.Width || f.Height != first.Height {
			return 0, 0, fmt.Errorf("%w: frame %d is %dx%d, frame 0 is %dx%d",
				ErrDimensionMismatch, i, f.Width, f.Height, first.Width, first.Height)
		}
		if err := f.checkBuffer(); err != nil {
			return 0, 0, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return first.Width, first.Height, nil
}
