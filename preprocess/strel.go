package preprocess

import (
	"fmt"
	"strings"
)

// Shape of a structuring element
type Shape int

const (
	// Cross is the 4-connected plus shaped element
	Cross Shape = 0
	// Square is the 8-connected box shaped element
	Square Shape = 1
)

// String returns the shape name
func (s Shape) String() string {
	switch s {
	case Cross:
		return "cross"
	case Square:
		return "square"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// ParseShape converts a shape name into a Shape
func ParseShape(name string) (Shape, error) {

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cross", "c", "":
		return Cross, nil
	case "square", "s", "box":
		return Square, nil
	}

	return Cross, fmt.Errorf("unknown structuring element shape: %s", name)
}

// StructElement defines a flat structuring element centered on the origin.  A
// radius of r covers a (2r+1) x (2r+1) window.
type StructElement struct {
	Shape  Shape
	Radius int
}

// NewStructElement returns a structuring element, negative radii are clamped
// to zero
func NewStructElement(shape Shape, radius int) StructElement {

	if radius < 0 {
		radius = 0
	}

	return StructElement{Shape: shape, Radius: radius}
}

// Size returns the side length of the element's window
func (s StructElement) Size() int {
	return 2*s.Radius + 1
}

// Connectivity returns the pixel connectivity implied by the shape, 4 for a
// cross and 8 for a square
func (s StructElement) Connectivity() int {

	if s.Shape == Square {
		return 8
	}

	return 4
}

// Mask returns the element as a row major Size x Size grid of set cells
func (s StructElement) Mask() []bool {

	dim := s.Size()
	mask := make([]bool, dim*dim)

	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			if s.Shape == Square || x == s.Radius || y == s.Radius {
				mask[y*dim+x] = true
			}
		}
	}

	return mask
}

// String returns a readable description such as "cross(2)"
func (s StructElement) String() string {
	return fmt.Sprintf("%s(%d)", s.Shape, s.Radius)
}
