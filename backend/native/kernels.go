package native

import (
	"fmt"
	"image"
	"math"

	morphbench "github.com/swdee/go-morphbench"
)

// Name is the backend name used to select it
const Name = "native"

// Register adds every operation of the backend to the registry
func Register(r *morphbench.Registry) error {

	factories := map[string]morphbench.Factory{
		morphbench.OpErode:     morphFactory((*morph).erode),
		morphbench.OpDilate:    morphFactory((*morph).dilate),
		morphbench.OpOpen:      morphFactory((*morph).open),
		morphbench.OpClose:     morphFactory((*morph).close),
		morphbench.OpGradient:  morphFactory((*morph).gradient),
		morphbench.OpHMaxima:   dynamicFactory((*reconstructor).hmaxima),
		morphbench.OpHMinima:   dynamicFactory((*reconstructor).hminima),
		morphbench.OpAreaOpen:  areaOpenFactory,
		morphbench.OpLabel:     labelFactory,
		morphbench.OpDistance:  distanceFactory,
		morphbench.OpWatershed: watershedFactory,
	}

	for op, f := range factories {
		if err := r.Register(op, Name, f); err != nil {
			return err
		}
	}

	return nil
}

// grayKernel repeats an image to image operation on a private copy of the
// source, writing to the same output buffer on every Run
type grayKernel struct {
	run  func(dst, src []uint8)
	src  []uint8
	dst  []uint8
	w, h int
	done bool
}

func newGrayKernel(src []uint8, w, h int, run func(dst, src []uint8)) *grayKernel {
	return &grayKernel{run: run, src: src, dst: make([]uint8, w*h), w: w, h: h}
}

func (k *grayKernel) Run() error {
	k.run(k.dst, k.src)
	k.done = true
	return nil
}

func (k *grayKernel) Close() error {
	return nil
}

// Image returns a copy of the output of the last Run
func (k *grayKernel) Image() (*image.Gray, error) {

	if !k.done {
		return nil, fmt.Errorf("kernel has not run")
	}

	return toGray(append([]uint8(nil), k.dst...), k.w, k.h), nil
}

// countKernel repeats an operation producing a number of regions
type countKernel struct {
	run func() int
	n   int
}

func (k *countKernel) Run() error {
	k.n = k.run()
	return nil
}

func (k *countKernel) Close() error {
	return nil
}

// Count returns the number of regions found by the last Run
func (k *countKernel) Count() int {
	return k.n
}

// morphFactory binds a filter to a private copy of the image and an output
// buffer, so each Run repeats the same work without allocating
func morphFactory(op func(*morph, []uint8, []uint8)) morphbench.Factory {

	return func(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {

		src, w, h, err := pixels(img)

		if err != nil {
			return nil, err
		}

		m := newMorph(w, h, p.SE)

		return newGrayKernel(src, w, h, func(dst, src []uint8) {
			op(m, dst, src)
		}), nil
	}
}

// dynamicFactory binds an h extrema operation, reconstructing over the
// neighbourhood of the structuring element
func dynamicFactory(op func(*reconstructor, []uint8, []uint8, uint8)) morphbench.Factory {

	return func(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {

		src, w, h, err := pixels(img)

		if err != nil {
			return nil, err
		}

		r := newReconstructor(w, h, p.SE)
		dyn := p.Dynamic()

		return newGrayKernel(src, w, h, func(dst, src []uint8) {
			op(r, dst, src, dyn)
		}), nil
	}
}

func areaOpenFactory(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {

	src, w, h, err := pixels(img)

	if err != nil {
		return nil, err
	}

	a, err := newAreaOpener(w, h, p.SE.Connectivity(), p.Area())

	if err != nil {
		return nil, err
	}

	return newGrayKernel(src, w, h, a.open), nil
}

func labelFactory(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {

	src, w, h, err := pixels(img)

	if err != nil {
		return nil, err
	}

	l, err := newLabeler(w, h, p.SE.Connectivity())

	if err != nil {
		return nil, err
	}

	return &countKernel{run: func() int {
		return l.label(src)
	}}, nil
}

// distanceKernel exposes the distances of the last Run rounded and clamped to
// the gray range
type distanceKernel struct {
	t    *distancer
	src  []uint8
	w, h int
	done bool
}

func (k *distanceKernel) Run() error {
	k.t.transform(k.src)
	k.done = true
	return nil
}

func (k *distanceKernel) Close() error {
	return nil
}

func (k *distanceKernel) Image() (*image.Gray, error) {

	if !k.done {
		return nil, fmt.Errorf("kernel has not run")
	}

	pix := make([]uint8, k.w*k.h)

	for i, d := range k.t.out {
		pix[i] = uint8(math.Min(math.Round(float64(d)), 255))
	}

	return toGray(pix, k.w, k.h), nil
}

func distanceFactory(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {

	src, w, h, err := pixels(img)

	if err != nil {
		return nil, err
	}

	return &distanceKernel{t: newDistancer(w, h), src: src, w: w, h: h}, nil
}

// watershedFactory prepares the relief and markers, only the flooding is
// timed
func watershedFactory(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {

	src, w, h, err := pixels(img)

	if err != nil {
		return nil, err
	}

	f, n, err := newFlooder(src, w, h, p.Watershed)

	if err != nil {
		return nil, err
	}

	return &countKernel{run: func() int {
		f.flood()
		return n
	}}, nil
}
