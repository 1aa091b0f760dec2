package frames

import "fmt"

// CropBand marks fixed rows at the top and bottom of every frame (headers,
// footers) that do not scroll and are excluded from matching.
type CropBand struct {
	Top    int
	Bottom int
}

// Validate checks the band against a frame height.
func (c CropBand) Validate(height int) error {
	if c.Top < 0 || c.Bottom < 0 {
		return fmt.Errorf("%w: crop top %d and bottom %d must be non-negative", ErrInvalidCropBand, c.Top, c.Bottom)
	}
	if c.Top+c.Bottom >= height {
		return fmt.Errorf("%w: crop top %d + bottom %d must be less than frame height %d",
			ErrInvalidCropBand, c.Top, c.Bottom, height)
	}
	return nil
}

// Scrollable returns the number of rows between the bands.
func (c CropBand) Scrollable(height int) int {
	return height - c.Top - c.Bottom
}

// ScrollEnd returns the first row of the bottom band.
func (c CropBand) ScrollEnd(height int) int {
	return height - c.Bottom
}
