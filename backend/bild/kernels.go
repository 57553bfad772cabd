// Package bild implements the flat morphology operations with the bild image
// library.  bild only offers disc shaped elements, the shape of the element is
// ignored and only its radius is used.
package bild

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"

	morphbench "github.com/swdee/go-morphbench"
	"github.com/swdee/go-morphbench/preprocess"
)

// Name is the backend name used to select it
const Name = "bild"

// filter is a bild morphology call producing a new image
type filter func(img image.Image, radius float64) *image.RGBA

// openDisc is a dilation of the erosion
func openDisc(img image.Image, radius float64) *image.RGBA {
	return effect.Dilate(effect.Erode(img, radius), radius)
}

// closeDisc is an erosion of the dilation
func closeDisc(img image.Image, radius float64) *image.RGBA {
	return effect.Erode(effect.Dilate(img, radius), radius)
}

// Register adds the operations bild supports to the registry
func Register(r *morphbench.Registry) error {

	factories := map[string]morphbench.Factory{
		morphbench.OpErode:  factory(effect.Erode),
		morphbench.OpDilate: factory(effect.Dilate),
		morphbench.OpOpen:   factory(openDisc),
		morphbench.OpClose:  factory(closeDisc),
	}

	for op, f := range factories {
		if err := r.Register(op, Name, f); err != nil {
			return err
		}
	}

	return nil
}

// kernel runs a filter on a private copy of the image.  bild allocates its
// output on every call, which is part of what is measured.
type kernel struct {
	f      filter
	src    *image.Gray
	radius float64
	out    *image.RGBA
}

func (k *kernel) Run() error {
	k.out = k.f(k.src, k.radius)
	return nil
}

func (k *kernel) Close() error {
	return nil
}

// Image returns the last result converted to gray
func (k *kernel) Image() (*image.Gray, error) {

	if k.out == nil {
		return nil, fmt.Errorf("bild kernel has not run")
	}

	return preprocess.ToGray(k.out), nil
}

func factory(f filter) morphbench.Factory {

	return func(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {

		if img == nil || img.Bounds().Empty() {
			return nil, fmt.Errorf("empty image")
		}

		return &kernel{
			f:      f,
			src:    preprocess.Clone(img),
			radius: float64(p.SE.Radius),
		}, nil
	}
}
