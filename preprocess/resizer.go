package preprocess

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Interpolation selects the scaler used when resizing
type Interpolation int

const (
	// Nearest keeps the pixel values of the source, use it for binary images
	Nearest Interpolation = 0
	// Bilinear is used for grayscale images
	Bilinear Interpolation = 1
	// CatmullRom is the slower high quality scaler
	CatmullRom Interpolation = 2
)

// String returns the name of the interpolation
func (i Interpolation) String() string {
	switch i {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	case CatmullRom:
		return "catmullrom"
	default:
		return "unknown"
	}
}

// Resizer defines the struct used for scaling a source image to the sizes
// needed by a sweep.  The source is never modified, every call returns a new
// image.
type Resizer struct {
	// src is the image being scaled
	src *image.Gray
	// scaler is the x/image scaler matching the interpolation
	scaler draw.Scaler
	// interp is the interpolation in use
	interp Interpolation
}

// NewResizer returns a resizer for the source image.  Binary images always use
// nearest neighbour scaling so they stay two valued.
func NewResizer(src *image.Gray, interp Interpolation, binary bool) *Resizer {

	if binary {
		interp = Nearest
	}

	r := &Resizer{
		src:    src,
		interp: interp,
	}

	switch interp {
	case Bilinear:
		r.scaler = draw.BiLinear
	case CatmullRom:
		r.scaler = draw.CatmullRom
	default:
		r.scaler = draw.NearestNeighbor
	}

	return r
}

// Scale returns the source scaled by factor k in both directions.  A factor of
// one returns a copy of the source.
func (r *Resizer) Scale(k float64) (*image.Gray, error) {

	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, fmt.Errorf("invalid scale factor %v", k)
	}

	if k == 1 {
		return Clone(r.src), nil
	}

	w := int(math.Round(float64(r.SrcWidth()) * k))
	h := int(math.Round(float64(r.SrcHeight()) * k))

	return r.Resize(w, h)
}

// Resize returns the source scaled to exactly w x h pixels
func (r *Resizer) Resize(w, h int) (*image.Gray, error) {

	if w < 1 || h < 1 {
		return nil, fmt.Errorf("invalid target size %dx%d", w, h)
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	r.scaler.Scale(dst, dst.Bounds(), r.src, r.src.Bounds(), draw.Src, nil)

	return dst, nil
}

// Interpolation returns the interpolation in use
func (r *Resizer) Interpolation() Interpolation {
	return r.interp
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.src.Bounds().Dx()
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.src.Bounds().Dy()
}
