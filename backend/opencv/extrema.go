package opencv

import (
	"image"

	"gocv.io/x/gocv"

	morphbench "github.com/swdee/go-morphbench"
)

// rebuild replaces marker by its reconstruction under mask, dilating by se
// and clipping under mask until nothing changes.  next and diff are scratch
// Mats.
func rebuild(marker *gocv.Mat, mask, se gocv.Mat, next, diff *gocv.Mat) {

	for {
		gocv.Dilate(*marker, next, se)
		gocv.Min(*next, mask, next)
		gocv.AbsDiff(*next, *marker, diff)

		if gocv.CountNonZero(*diff) == 0 {
			return
		}

		next.CopyTo(marker)
	}
}

// dynamicFactory binds the h-maxima, or the h-minima when invert is set.
// Pixels rising at least h above the reconstruction of the image lowered by h
// are set to 255.
func dynamicFactory(invert bool) morphbench.Factory {

	return func(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {

		src, err := toMat(img)

		if err != nil {
			return nil, err
		}

		se := structElement(p.SE)
		h := p.Dynamic()

		work := gocv.NewMat()
		marker := gocv.NewMat()
		next := gocv.NewMat()
		diff := gocv.NewMat()
		dst := gocv.NewMat()

		return imageKernel{&kernel{
			run: func() error {
				if invert {
					gocv.BitwiseNot(src, &work)
				} else {
					src.CopyTo(&work)
				}

				work.CopyTo(&marker)
				marker.SubtractUChar(h)

				rebuild(&marker, work, se, &next, &diff)

				gocv.Subtract(work, marker, &diff)
				gocv.Threshold(diff, &dst, float32(h)-1, 255, gocv.ThresholdBinary)

				return nil
			},
			out:  &dst,
			mats: []*gocv.Mat{&src, &se, &work, &marker, &next, &diff, &dst},
		}}, nil
	}
}

// areaOpenFactory binds an area opening by threshold decomposition.  Every
// level of the image is labeled and the pixels of components of at least the
// area are raised to that level.
func areaOpenFactory(img *image.Gray, p morphbench.Params) (morphbench.Kernel, error) {

	src, err := toMat(img)

	if err != nil {
		return nil, err
	}

	area := p.Area()
	conn := p.SE.Connectivity()

	bin := gocv.NewMat()
	labels := gocv.NewMat()
	stats := gocv.NewMat()
	centroids := gocv.NewMat()
	dst := gocv.NewMatWithSize(src.Rows(), src.Cols(), gocv.MatTypeCV8U)

	var keep []bool

	return imageKernel{&kernel{
		run: func() error {

			lo, hi, _, _ := gocv.MinMaxLoc(src)
			dst.SetTo(gocv.NewScalar(float64(lo), 0, 0, 0))

			out, err := dst.DataPtrUint8()

			if err != nil {
				return err
			}

			for t := int(lo) + 1; t <= int(hi); t++ {
				gocv.Threshold(src, &bin, float32(t)-1, 255, gocv.ThresholdBinary)

				n := gocv.ConnectedComponentsWithStatsWithParams(bin, &labels, &stats, &centroids,
					conn, gocv.MatTypeCV32S, gocv.CCL_DEFAULT)

				keep = keep[:0]
				kept := false

				for i := 0; i < n; i++ {
					k := i > 0 && int(stats.GetIntAt(i, int(gocv.CC_STAT_AREA))) >= area
					keep = append(keep, k)
					kept = kept || k
				}

				if !kept {
					break
				}

				lbl, err := labels.DataPtrInt32()

				if err != nil {
					return err
				}

				for j, l := range lbl {
					if keep[l] {
						out[j] = uint8(t)
					}
				}
			}

			return nil
		},
		out:  &dst,
		mats: []*gocv.Mat{&src, &bin, &labels, &stats, &centroids, &dst},
	}}, nil
}
