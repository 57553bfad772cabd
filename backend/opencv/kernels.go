// Package opencv implements the benchmark operations with OpenCV through gocv.
// Every kernel converts its input to a Mat once when prepared and reuses the
// same output Mat on each run.
package opencv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	morphbench "github.com/swdee/go-morphbench"
	"github.com/swdee/go-morphbench/preprocess"
)

// Name is the backend name used to select it
const Name = "opencv"

// kernel runs an OpenCV call on prepared Mats and releases them on Close
type kernel struct {
	run  func() error
	out  *gocv.Mat
	mats []*gocv.Mat
	done bool
}

// Run executes the call
func (k *kernel) Run() error {

	if err := k.run(); err != nil {
		return err
	}

	k.done = true

	return nil
}

// Close releases every Mat owned by the kernel
func (k *kernel) Close() error {

	var first error

	for _, m := range k.mats {
		if err := m.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// imageKernel is a kernel whose output Mat is an image
type imageKernel struct {
	*kernel
}

// Image copies the output of the last Run, converting it to 8 bits when the
// call produced another depth
func (k imageKernel) Image() (*image.Gray, error) {

	if !k.done {
		return nil, fmt.Errorf("kernel has not run")
	}

	m := *k.out

	if m.Type() != gocv.MatTypeCV8U {
		conv := gocv.NewMat()
		defer conv.Close()

		k.out.ConvertTo(&conv, gocv.MatTypeCV8U)
		m = conv
	}

	w, h := m.Cols(), m.Rows()

	return &image.Gray{Pix: m.ToBytes(), Stride: w, Rect: image.Rect(0, 0, w, h)}, nil
}

// countKernel is a kernel whose output is a number of regions
type countKernel struct {
	*kernel
	n *int
}

// Count returns the number of regions of the last Run, background excluded
func (k countKernel) Count() int {
	return *k.n
}

// Register adds every operation of the backend to the registry
func Register(r *morphbench.Registry) error {

	factories := map[string]morphbench.Factory{
		morphbench.OpErode:     erodeFactory,
		morphbench.OpDilate:    dilateFactory,
		morphbench.OpOpen:      morphologyFactory(gocv.MorphOpen),
		morphbench.OpClose:     morphologyFactory(gocv.MorphClose),
		morphbench.OpGradient:  morphologyFactory(gocv.MorphGradient),
		morphbench.OpHMaxima:   dynamicFactory(false),
		morphbench.OpHMinima:   dynamicFactory(true),
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

// toMat copies the image into a new single channel Mat
func toMat(img *image.Gray) (gocv.Mat, error) {

	if img == nil {
		return gocv.Mat{}, fmt.Errorf("no image")
	}

	if img.Bounds().Empty() {
		return gocv.Mat{}, fmt.Errorf("empty image %v", img.Bounds())
	}

	mat, err := gocv.ImageGrayToMatGray(preprocess.Clone(img))

	if err != nil {
		return gocv.Mat{}, fmt.Errorf("error converting image to Mat: %w", err)
	}

	return mat, nil
}

// structElement returns the OpenCV kernel matching the element
func structElement(se preprocess.StructElement) gocv.Mat {

	shape := gocv.MorphCross

	if se.Shape == preprocess.Square {
		shape = gocv.MorphRect
	}

	return gocv.GetStructuringElement(shape, image.Pt(se.Size(), se.Size()))
}

func erodeFactory(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {
	return filterFactory(img, p, true)
}

func dilateFactory(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {
	return filterFactory(img, p, false)
}

// filterFactory binds an erosion or dilation to the image and element
func filterFactory(img *image.Gray, p morphbench.Params, erode bool) (morphbench.Kernel, error) {

	src, err := toMat(img)

	if err != nil {
		return nil, err
	}

	se := structElement(p.SE)
	dst := gocv.NewMat()

	return imageKernel{&kernel{
		run: func() error {
			if erode {
				gocv.Erode(src, &dst, se)
			} else {
				gocv.Dilate(src, &dst, se)
			}
			return nil
		},
		out:  &dst,
		mats: []*gocv.Mat{&src, &se, &dst},
	}}, nil
}

// morphologyFactory binds an opening, closing or gradient
func morphologyFactory(typ gocv.MorphType) morphbench.Factory {

	return func(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {

		src, err := toMat(img)

		if err != nil {
			return nil, err
		}

		se := structElement(p.SE)
		dst := gocv.NewMat()

		return imageKernel{&kernel{
			run: func() error {
				gocv.MorphologyEx(src, &dst, typ, se)
				return nil
			},
			out:  &dst,
			mats: []*gocv.Mat{&src, &se, &dst},
		}}, nil
	}
}

// labelFactory labels the non zero pixels with the connectivity of the
// element's shape
func labelFactory(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {

	src, err := toMat(img)

	if err != nil {
		return nil, err
	}

	labels := gocv.NewMat()
	conn := p.SE.Connectivity()
	n := 0

	return countKernel{
		kernel: &kernel{
			run: func() error {
				n = gocv.ConnectedComponentsWithParams(src, &labels, conn, gocv.MatTypeCV32S, gocv.CCL_DEFAULT) - 1
				return nil
			},
			out:  &labels,
			mats: []*gocv.Mat{&src, &labels},
		},
		n: &n,
	}, nil
}

// distanceFactory computes the Euclidean distance of non zero pixels to the
// nearest zero pixel
func distanceFactory(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {

	src, err := toMat(img)

	if err != nil {
		return nil, err
	}

	dst := gocv.NewMat()
	labels := gocv.NewMat()

	return imageKernel{&kernel{
		run: func() error {
			gocv.DistanceTransform(src, &dst, &labels, gocv.DistL2, gocv.DistanceMask5, gocv.DistanceLabelCComp)
			return nil
		},
		out:  &dst,
		mats: []*gocv.Mat{&src, &dst, &labels},
	}}, nil
}
