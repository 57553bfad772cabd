package native

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	morphbench "github.com/swdee/go-morphbench"
	"github.com/swdee/go-morphbench/preprocess"
)

// randomImage returns a w x h image of seeded noise
func randomImage(w, h int, seed int64) *image.Gray {

	rnd := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, w, h))

	for i := range img.Pix {
		img.Pix[i] = uint8(rnd.Intn(256))
	}

	return img
}

// referenceFilter is a direct windowed min/max over the element's mask,
// ignoring pixels outside of the image
func referenceFilter(img *image.Gray, se preprocess.StructElement, erode bool) *image.Gray {

	b := img.Bounds()
	out := image.NewGray(b)
	mask := se.Mask()
	dim := se.Size()

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v := uint8(0)
			if erode {
				v = 255
			}

			for dy := 0; dy < dim; dy++ {
				for dx := 0; dx < dim; dx++ {
					if !mask[dy*dim+dx] {
						continue
					}

					sx, sy := x+dx-se.Radius, y+dy-se.Radius

					if sx < 0 || sy < 0 || sx >= b.Dx() || sy >= b.Dy() {
						continue
					}

					v = pick(v, img.GrayAt(sx, sy).Y, erode)
				}
			}

			out.SetGray(x, y, color.Gray{Y: v})
		}
	}

	return out
}

// morphOp runs the native kernel of op with se once on img
func morphOp(t *testing.T, op string, img *image.Gray, se preprocess.StructElement) *image.Gray {
	return runOp(t, op, img, morphbench.Params{SE: se})
}

func TestFilterMatchesReference(t *testing.T) {

	img := randomImage(23, 17, 1)

	for _, shape := range []preprocess.Shape{preprocess.Cross, preprocess.Square} {
		for r := 0; r <= 4; r++ {
			se := preprocess.NewStructElement(shape, r)

			t.Run(se.String(), func(t *testing.T) {

				eroded := morphOp(t, morphbench.OpErode, img, se)
				assert.Equal(t, referenceFilter(img, se, true).Pix, eroded.Pix)

				dilated := morphOp(t, morphbench.OpDilate, img, se)
				assert.Equal(t, referenceFilter(img, se, false).Pix, dilated.Pix)
			})
		}
	}
}

func TestFilterWiderThanImage(t *testing.T) {

	img := randomImage(3, 2, 2)
	se := preprocess.NewStructElement(preprocess.Square, 6)

	eroded := morphOp(t, morphbench.OpErode, img, se)
	assert.Equal(t, referenceFilter(img, se, true).Pix, eroded.Pix)
}

func TestOpenCloseOrdering(t *testing.T) {

	img := randomImage(31, 29, 3)
	se := preprocess.NewStructElement(preprocess.Square, 2)

	opened := morphOp(t, morphbench.OpOpen, img, se)
	closed := morphOp(t, morphbench.OpClose, img, se)

	for i := range img.Pix {
		require.LessOrEqual(t, opened.Pix[i], img.Pix[i])
		require.GreaterOrEqual(t, closed.Pix[i], img.Pix[i])
	}

	// opening is idempotent
	again := morphOp(t, morphbench.OpOpen, opened, se)
	assert.Equal(t, opened.Pix, again.Pix)
}

func TestGradient(t *testing.T) {

	img := randomImage(16, 12, 4)
	se := preprocess.NewStructElement(preprocess.Cross, 1)

	grad := morphOp(t, morphbench.OpGradient, img, se)

	dilated := referenceFilter(img, se, false)
	eroded := referenceFilter(img, se, true)

	for i := range grad.Pix {
		require.Equal(t, dilated.Pix[i]-eroded.Pix[i], grad.Pix[i])
	}
}

func TestFilterSubImage(t *testing.T) {

	img := randomImage(20, 20, 5)
	sub := img.SubImage(image.Rect(5, 5, 15, 12)).(*image.Gray)
	se := preprocess.NewStructElement(preprocess.Cross, 2)

	eroded := morphOp(t, morphbench.OpErode, sub, se)
	assert.Equal(t, image.Rect(0, 0, 10, 7), eroded.Bounds())
	assert.Equal(t, referenceFilter(preprocess.Clone(sub), se, true).Pix, eroded.Pix)
}

func TestFilterEmptyImage(t *testing.T) {

	f := factoryOf(t, morphbench.OpErode)

	_, err := f(image.NewGray(image.Rect(0, 0, 0, 5)), morphbench.Params{})
	assert.Error(t, err)

	_, err = f(nil, morphbench.Params{})
	assert.Error(t, err)
}

func BenchmarkErode(b *testing.B) {

	img := randomImage(1024, 1024, 6)
	src, w, h, err := pixels(img)

	if err != nil {
		b.Fatal(err)
	}

	dst := make([]uint8, w*h)

	for _, r := range []int{1, 4, 16} {
		for _, shape := range []preprocess.Shape{preprocess.Cross, preprocess.Square} {
			m := newMorph(w, h, preprocess.NewStructElement(shape, r))

			b.Run(fmt.Sprintf("%s-%d", shape, r), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					m.erode(dst, src)
				}
			})
		}
	}
}
