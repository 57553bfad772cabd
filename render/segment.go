package render

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/swdee/go-morphbench/preprocess"
)

// LabelOverlay renders the label image as a transparent overlay on top of the
// whole BGR image.  Label zero is left untouched and negative labels mark
// basin boundaries.
func LabelOverlay(img *gocv.Mat, labels []int32, alpha float32) error {

	// get dimensions
	width := img.Cols()
	height := img.Rows()

	if len(labels) != width*height {
		return fmt.Errorf("label image has %d pixels, image is %dx%d", len(labels), width, height)
	}

	// it is too slow to manipulate pixel by pixel using GoCV due to slowness
	// over CGO.  So we copy the bytes from the source image and manipulate
	// the bytes directly before copying back to a Mat
	imgData := img.ToBytes()

	for idx, lbl := range labels {

		if lbl == 0 {
			continue
		}

		clr := boundaryColor
		a := float32(1)

		if lbl > 0 {
			clr = labelColors[int(lbl)%len(labelColors)]
			a = alpha
		}

		pixelPos := idx * 3

		b, g, r := imgData[pixelPos+0], imgData[pixelPos+1], imgData[pixelPos+2]

		// calculate blended colors based on alpha transparency
		imgData[pixelPos+0] = uint8(float32(b)*(1-a) + float32(clr.B)*a)
		imgData[pixelPos+1] = uint8(float32(g)*(1-a) + float32(clr.G)*a)
		imgData[pixelPos+2] = uint8(float32(r)*(1-a) + float32(clr.R)*a)
	}

	// copy back to the original mat
	tmpImg, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, imgData)

	if err != nil {
		return err
	}

	defer tmpImg.Close()
	tmpImg.CopyTo(img)

	return nil
}

// PaintLabelsToFile paints the labels over the gray image and writes the
// result to an image file
func PaintLabelsToFile(filename string, src *image.Gray, labels []int32, alpha float32) error {

	gray, err := gocv.ImageGrayToMatGray(preprocess.Clone(src))

	if err != nil {
		return fmt.Errorf("error converting image to Mat: %w", err)
	}

	defer gray.Close()

	img := gocv.NewMat()
	defer img.Close()

	gocv.CvtColor(gray, &img, gocv.ColorGrayToBGR)

	if err := LabelOverlay(&img, labels, alpha); err != nil {
		return err
	}

	if gocv.IMWrite(filename, img) {
		return nil
	}

	return fmt.Errorf("failed to write to file %s", filename)
}
