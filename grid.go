package morphbench

import (
	"fmt"
	"strings"
)

// Growth is how the image size grows from one sweep point to the next
type Growth int

const (
	// Geometric doubles the scale factor at each point
	Geometric Growth = 0
	// Arithmetic adds one to the scale factor at each point
	Arithmetic Growth = 1
)

// String returns the short name used on the command line
func (g Growth) String() string {
	if g == Arithmetic {
		return "a"
	}
	return "g"
}

// ParseGrowth accepts g, geometric, a or arithmetic
func ParseGrowth(s string) (Growth, error) {

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "g", "geometric":
		return Geometric, nil
	case "a", "arithmetic":
		return Arithmetic, nil
	}

	return Geometric, fmt.Errorf("%w: growth must be \"g\" or \"a\", got %q", ErrInvalidParameter, s)
}

// ImageScales returns the scale factors to apply to an image of the given width
// so the scaled width runs from minSize up to at most maxSize.  The first factor
// is minSize/width and each following factor is doubled (geometric) or
// incremented by one (arithmetic).  If no factor fits the range a single factor
// of one is returned.
func ImageScales(width, minSize, maxSize int, g Growth) []float64 {

	var out []float64

	if width > 0 && minSize > 0 {
		w := float64(width)

		for k := float64(minSize) / w; w*k <= float64(maxSize); {
			out = append(out, k)

			if g == Arithmetic {
				k++
			} else {
				k *= 2
			}
		}
	}

	if len(out) == 0 {
		out = append(out, 1)
	}

	return out
}

// ImageSides converts scale factors into image widths in pixels
func ImageSides(width int, scales []float64) []float64 {

	out := make([]float64, len(scales))

	for i, k := range scales {
		out[i] = float64(width) * k
	}

	return out
}

// Radii returns the structuring element radii 1..max
func Radii(max int) []float64 {

	out := make([]float64, 0, max)

	for r := 1; r <= max; r++ {
		out = append(out, float64(r))
	}

	return out
}

// Doubling returns rounds values starting at start, each twice the previous
func Doubling(start, rounds int) []float64 {

	out := make([]float64, 0, rounds)
	v := start

	for i := 0; i < rounds; i++ {
		out = append(out, float64(v))
		v *= 2
	}

	return out
}
