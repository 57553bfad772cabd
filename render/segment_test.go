package render

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestLabelOverlay(t *testing.T) {

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 2, 2, gocv.MatTypeCV8UC3)
	defer img.Close()

	labels := []int32{0, 1, -1, 2}
	require.NoError(t, LabelOverlay(&img, labels, 1))

	data := img.ToBytes()

	// background untouched
	assert.Equal(t, []byte{0, 0, 0}, data[0:3])

	// label 1 in BGR order
	c := labelColors[1]
	assert.Equal(t, []byte{c.B, c.G, c.R}, data[3:6])

	// boundary is opaque
	assert.Equal(t, []byte{255, 255, 255}, data[6:9])
}

func TestLabelOverlaySizeMismatch(t *testing.T) {

	img := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC3)
	defer img.Close()

	assert.Error(t, LabelOverlay(&img, []int32{1}, 0.5))
}

func TestPaintLabelsToFile(t *testing.T) {

	src := image.NewGray(image.Rect(0, 0, 4, 2))
	labels := []int32{1, 1, 2, 2, 1, 1, 2, 2}

	file := filepath.Join(t.TempDir(), "labels.png")
	require.NoError(t, PaintLabelsToFile(file, src, labels, 0.5))

	_, err := os.Stat(file)
	assert.NoError(t, err)
}
