package native

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	morphbench "github.com/swdee/go-morphbench"
)

// stepImage is dark on the left half and bright on the right half
func stepImage(w, h int) *image.Gray {

	img := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Pix[y*w+x] = 40
			} else {
				img.Pix[y*w+x] = 200
			}
		}
	}

	return img
}

func TestWatershedTwoBasins(t *testing.T) {

	img := stepImage(20, 10)
	p := morphbench.WatershedParams{Smooth: 0, Gradient: 1, Level: 10}

	seg, err := watershedGray(img, p)
	require.NoError(t, err)
	require.Equal(t, 2, seg.Count)

	left, right := seg.At(0, 0), seg.At(19, 0)
	assert.NotEqual(t, left, right)

	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			if x < 10 {
				assert.Equal(t, left, seg.At(x, y), "pixel %d,%d", x, y)
			} else {
				assert.Equal(t, right, seg.At(x, y), "pixel %d,%d", x, y)
			}
		}
	}
}

func TestWatershedRepeatable(t *testing.T) {

	img := randomImage(32, 24, 8)
	p := morphbench.WatershedParams{Smooth: 2, Gradient: 1, Level: 30}

	src, w, h, err := pixels(img)
	require.NoError(t, err)

	f, _, err := newFlooder(src, w, h, p)
	require.NoError(t, err)

	f.flood()
	first := append([]int32(nil), f.labels...)

	f.flood()
	assert.Equal(t, first, f.labels)
}

// watershedGray segments img into the basins of its smoothed gradient
func watershedGray(img *image.Gray, p morphbench.WatershedParams) (*labelMap, error) {

	src, w, h, err := pixels(img)

	if err != nil {
		return nil, err
	}

	f, n, err := newFlooder(src, w, h, p)

	if err != nil {
		return nil, err
	}

	f.flood()

	return &labelMap{Labels: f.labels, Width: w, Height: h, Count: n}, nil
}
