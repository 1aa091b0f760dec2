package panorama

import "scrollsplice/internal/frames"

const seamStripe = 8

var (
	seamPrimary   = [frames.Channels]uint8{0xff, 0x00, 0xff}
	seamSecondary = [frames.Channels]uint8{0x00, 0x00, 0x00}
)

// SeamColor returns the marker colour at column x: alternating magenta and
// black stripes.
func SeamColor(x int) (r, g, b uint8) {
	c := seamPrimary
	if (x/seamStripe)%2 == 1 {
		c = seamSecondary
	}
	return c[0], c[1], c[2]
}

func drawSeam(f frames.Frame, from, rows int) {
	if rows <= 0 {
		return
	}
	first := f.Row(from)
	for x := 0; x < f.Width; x++ {
		r, g, b := SeamColor(x)
		i := x * frames.Channels
		first[i], first[i+1], first[i+2] = r, g, b
	}
	for y := from + 1; y < from+rows; y++ {
		copy(f.Row(y), first)
	}
}
