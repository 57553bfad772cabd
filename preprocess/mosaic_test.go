package preprocess

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMosaic(t *testing.T) {

	src := gradientImage(5, 3)

	out, err := Mosaic(src, 3, 2)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 15, 6), out.Bounds())

	for y := 0; y < 6; y++ {
		for x := 0; x < 15; x++ {
			assert.Equal(t, src.GrayAt(x%5, y%3), out.GrayAt(x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestMosaicSubImage(t *testing.T) {

	// tiling must respect the bounds of a sub image
	src := gradientImage(10, 10).SubImage(image.Rect(2, 3, 6, 5)).(*image.Gray)

	out, err := Mosaic(src, 2, 2)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 8, 4), out.Bounds())

	assert.Equal(t, src.GrayAt(2, 3), out.GrayAt(0, 0))
	assert.Equal(t, src.GrayAt(5, 4), out.GrayAt(7, 3))
}

func TestMosaicInvalid(t *testing.T) {
	_, err := Mosaic(gradientImage(4, 4), 0, 1)
	assert.Error(t, err)
}
