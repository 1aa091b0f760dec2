package panorama

import (
	"fmt"
	"image"

	"scrollsplice/internal/frames"
)

// Options configures Assemble.
type Options struct {
	Crop frames.CropBand
	// SeamWidth is the number of marker rows drawn at each internal
	// boundary. Zero disables seam marking.
	SeamWidth int
}

// Panorama is the stitched image.
type Panorama struct {
	frames.Frame
	// Seams holds the output row where each frame after the first begins.
	Seams []int
}

// band is a run of source rows copied into the output.
type band struct {
	frame    int
	from, to int
}

func (b band) height() int { return b.to - b.from }

// Assemble stitches seq using offsets[i] as the overlap between frame i and
// i+1. It fails without producing output when the frames disagree in size,
// the crop band does not fit, or offsets does not line up with the frames.
func Assemble(seq frames.Sequence, offsets []int, opts Options) (*Panorama, error) {
	width, height, err := seq.Dimensions()
	if err != nil {
		return nil, err
	}
	if err := opts.Crop.Validate(height); err != nil {
		return nil, err
	}
	if opts.SeamWidth < 0 {
		return nil, fmt.Errorf("%w: seam width %d must be non-negative", frames.ErrInvalidParams, opts.SeamWidth)
	}
	if len(offsets) != len(seq)-1 {
		return nil, fmt.Errorf("%w: got %d offsets for %d frames, want %d",
			frames.ErrInvalidOffsets, len(offsets), len(seq), len(seq)-1)
	}
	scrollable := opts.Crop.Scrollable(height)
	for i, o := range offsets {
		if o < 0 || o > scrollable {
			return nil, fmt.Errorf("%w: offset %d for pair %d outside [0, %d]", frames.ErrInvalidOffsets, o, i, scrollable)
		}
	}

	bands := layout(len(seq), height, offsets, opts.Crop)
	total := 0
	for _, b := range bands {
		total += b.height()
	}

	out := &Panorama{
		Frame: frames.NewFrame(width, total),
		Seams: make([]int, 0, len(seq)-1),
	}
	row := 0
	for i, b := range bands {
		if i > 0 && i < len(seq) {
			out.Seams = append(out.Seams, row)
		}
		copy(out.Rows(row, row+b.height()), seq[b.frame].Rows(b.from, b.to))
		row += b.height()
	}
	// Markers go on after every band is copied so a seam on a short or empty
	// band can run into the rows that follow it.
	if opts.SeamWidth > 0 {
		for _, s := range out.Seams {
			drawSeam(out.Frame, s, min(opts.SeamWidth, total-s))
		}
	}
	return out, nil
}

// Height returns the height Assemble would produce without building it.
func Height(frameHeight int, offsets []int, crop frames.CropBand) int {
	h := frameHeight
	scrollable := crop.Scrollable(frameHeight)
	for _, o := range offsets {
		h += scrollable - o
	}
	return h
}

// layout lists len(seq)+1 bands: one per frame plus the trailing bottom band.
func layout(count, height int, offsets []int, crop frames.CropBand) []band {
	end := crop.ScrollEnd(height)
	bands := make([]band, 0, count+1)
	bands = append(bands, band{frame: 0, from: 0, to: end})
	for i := 1; i < count; i++ {
		bands = append(bands, band{frame: i, from: crop.Top + offsets[i-1], to: end})
	}
	return append(bands, band{frame: count - 1, from: end, to: height})
}

// Image copies the panorama into an RGBA image.
func (p *Panorama) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		src := p.Row(y)
		dst := img.Pix[y*img.Stride : y*img.Stride+p.Width*4]
		for x := 0; x < p.Width; x++ {
			s, d := x*frames.Channels, x*4
			dst[d], dst[d+1], dst[d+2], dst[d+3] = src[s], src[s+1], src[s+2], 0xff
		}
	}
	return img
}
