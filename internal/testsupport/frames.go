package testsupport

import (
	"math/rand/v2"
	"testing"

	"scrollsplice/internal/frames"
)

// Scroll is a synthetic scrolling capture together with the image a perfect
// stitch of it must produce.
type Scroll struct {
	Frames frames.Sequence
	// Want is the fixed header, the whole scrolled page, then the fixed footer.
	Want frames.Frame
}

// ScrollOptions describes a synthetic capture.
type ScrollOptions struct {
	Width      int
	Height     int
	CropTop    int
	CropBottom int
	// Overlaps holds the exact shared row count of each adjacent pair of
	// frames' scrollable regions; len(Overlaps)+1 frames are produced.
	Overlaps []int
	Seed     uint64
}

// NewScroll renders random page content through a moving viewport with a
// static header and footer. Content is noise, so only the true overlap
// produces a zero difference.
func NewScroll(t testing.TB, opts ScrollOptions) Scroll {
	t.Helper()

	band := frames.CropBand{Top: opts.CropTop, Bottom: opts.CropBottom}
	if err := band.Validate(opts.Height); err != nil {
		t.Fatalf("scroll options: %v", err)
	}
	rows := band.Scrollable(opts.Height)
	pageRows := rows
	for _, o := range opts.Overlaps {
		if o < 0 || o > rows {
			t.Fatalf("scroll options: overlap %d outside [0, %d]", o, rows)
		}
		pageRows += rows - o
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	header := randomFrame(rng, opts.Width, opts.CropTop)
	footer := randomFrame(rng, opts.Width, opts.CropBottom)
	page := randomFrame(rng, opts.Width, pageRows)

	want := frames.NewFrame(opts.Width, opts.CropTop+pageRows+opts.CropBottom)
	n := copy(want.Pix, header.Pix)
	n += copy(want.Pix[n:], page.Pix)
	copy(want.Pix[n:], footer.Pix)

	seq := make(frames.Sequence, 0, len(opts.Overlaps)+1)
	pos := 0
	for i := 0; i <= len(opts.Overlaps); i++ {
		f := frames.NewFrame(opts.Width, opts.Height)
		n := copy(f.Pix, header.Pix)
		n += copy(f.Pix[n:], page.Rows(pos, pos+rows))
		copy(f.Pix[n:], footer.Pix)
		seq = append(seq, f)
		if i < len(opts.Overlaps) {
			pos += rows - opts.Overlaps[i]
		}
	}
	return Scroll{Frames: seq, Want: want}
}

// RandomFrame returns a frame filled with seeded noise.
func RandomFrame(width, height int, seed uint64) frames.Frame {
	return randomFrame(rand.New(rand.NewPCG(seed, seed+1)), width, height)
}

func randomFrame(rng *rand.Rand, width, height int) frames.Frame {
	f := frames.NewFrame(width, height)
	for i := range f.Pix {
		f.Pix[i] = uint8(rng.UintN(256))
	}
	return f
}

// CloneFrame deep-copies f.
func CloneFrame(f frames.Frame) frames.Frame {
	out := frames.Frame{Width: f.Width, Height: f.Height, Pix: make([]uint8, len(f.Pix))}
	copy(out.Pix, f.Pix)
	return out
}
