package opencv

import (
	"image"

	"gocv.io/x/gocv"

	morphbench "github.com/swdee/go-morphbench"
	"github.com/swdee/go-morphbench/preprocess"
)

// watershedPrep holds the relief and markers of a marker controlled watershed
type watershedPrep struct {
	// relief is the gradient converted to three channels, as required by
	// cv::watershed
	relief gocv.Mat
	// markers are the labeled flat zones of the gradient
	markers gocv.Mat
	// count is the number of markers including the background label
	count int
}

// prepareWatershed smooths src with an opening, takes its morphological
// gradient and labels the zones of the gradient below the level as markers
func prepareWatershed(src gocv.Mat, p morphbench.WatershedParams) *watershedPrep {

	smoothed := gocv.NewMat()
	defer smoothed.Close()

	if p.Smooth > 0 {
		se := structElement(preprocess.NewStructElement(preprocess.Square, p.Smooth))
		gocv.MorphologyEx(src, &smoothed, gocv.MorphOpen, se)
		se.Close()
	} else {
		src.CopyTo(&smoothed)
	}

	grad := gocv.NewMat()
	defer grad.Close()

	se := structElement(preprocess.NewStructElement(preprocess.Square, p.Gradient))
	gocv.MorphologyEx(smoothed, &grad, gocv.MorphGradient, se)
	se.Close()

	seeds := gocv.NewMat()
	defer seeds.Close()

	gocv.Threshold(grad, &seeds, float32(p.Level)-1, 255, gocv.ThresholdBinaryInv)

	w := &watershedPrep{
		relief:  gocv.NewMat(),
		markers: gocv.NewMat(),
	}

	w.count = gocv.ConnectedComponentsWithParams(seeds, &w.markers, 8, gocv.MatTypeCV32S, gocv.CCL_DEFAULT)
	gocv.CvtColor(grad, &w.relief, gocv.ColorGrayToBGR)

	return w
}

// watershedFactory prepares the relief and markers outside of the timed
// region.  Flooding overwrites its markers so each run floods a fresh copy.
func watershedFactory(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {

	src, err := toMat(img)

	if err != nil {
		return nil, err
	}

	prep := prepareWatershed(src, p.Watershed)
	work := gocv.NewMat()
	n := prep.count - 1

	return countKernel{
		kernel: &kernel{
			run: func() error {
				prep.markers.CopyTo(&work)
				gocv.Watershed(prep.relief, &work)
				return nil
			},
			out:  &work,
			mats: []*gocv.Mat{&src, &prep.relief, &prep.markers, &work},
		},
		n: &n,
	}, nil
}

// Segment runs the watershed on img and returns the label of every pixel in
// row major order.  Pixels on the basin boundaries are labeled -1.
func Segment(img *image.Gray, p morphbench.WatershedParams) ([]int32, error) {

	k, err := watershedFactory(img, morphbench.Params{Watershed: p})

	if err != nil {
		return nil, err
	}

	defer k.Close()

	if err := k.Run(); err != nil {
		return nil, err
	}

	data, err := k.(countKernel).out.DataPtrInt32()

	if err != nil {
		return nil, err
	}

	// the Mat memory is released when the kernel is closed
	return append([]int32(nil), data...), nil
}
