package opencv

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	morphbench "github.com/swdee/go-morphbench"
	"github.com/swdee/go-morphbench/backend/native"
	"github.com/swdee/go-morphbench/preprocess"
)

func randomImage(w, h int, seed int64) *image.Gray {

	rnd := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, w, h))

	for i := range img.Pix {
		img.Pix[i] = uint8(rnd.Intn(256))
	}

	return img
}

// runKernel prepares and runs the factory once, returning the kernel for
// inspection of its output
func runKernel(t *testing.T, f morphbench.Factory, img *image.Gray, p morphbench.Params) morphbench.Kernel {

	k, err := f(img, p)
	require.NoError(t, err)
	t.Cleanup(func() { k.Close() })

	require.NoError(t, k.Run())

	return k
}

// matOf returns the output Mat of a kernel of this backend
func matOf(k morphbench.Kernel) *gocv.Mat {

	switch k := k.(type) {
	case imageKernel:
		return k.out
	case countKernel:
		return k.out
	}

	return nil
}

// imageOf returns the output image of an image kernel
func imageOf(t *testing.T, k morphbench.Kernel) *image.Gray {

	im, ok := k.(morphbench.Imager)
	require.True(t, ok)

	out, err := im.Image()
	require.NoError(t, err)

	return out
}

func TestImageOpsMatchNative(t *testing.T) {

	img := randomImage(41, 33, 1)

	reg := morphbench.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, native.Register(reg))

	ops := []string{
		morphbench.OpErode, morphbench.OpDilate, morphbench.OpOpen, morphbench.OpClose,
		morphbench.OpGradient, morphbench.OpHMaxima, morphbench.OpHMinima, morphbench.OpAreaOpen,
	}

	for _, op := range ops {
		pair, err := reg.Pair(op, Name, native.Name)
		require.NoError(t, err)

		for _, shape := range []preprocess.Shape{preprocess.Cross, preprocess.Square} {
			for _, r := range []int{1, 3} {
				p := morphbench.Params{SE: preprocess.NewStructElement(shape, r), Arg: 6, H: 20}

				t.Run(fmt.Sprintf("%s-%s", op, p.SE), func(t *testing.T) {

					got := imageOf(t, runKernel(t, pair.A.Factory, img, p))
					want := imageOf(t, runKernel(t, pair.B.Factory, img, p))

					assert.Equal(t, want.Pix, got.Pix)
				})
			}
		}
	}
}

func TestLabelCount(t *testing.T) {

	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.Pix[0] = 255
	img.Pix[5] = 255
	img.Pix[15] = 255

	tests := []struct {
		shape preprocess.Shape
		count int
	}{
		{preprocess.Cross, 3},
		{preprocess.Square, 2},
	}

	for _, tc := range tests {
		p := morphbench.Params{SE: preprocess.NewStructElement(tc.shape, 1)}
		k := runKernel(t, labelFactory, img, p)

		assert.Equal(t, tc.count, k.(morphbench.Counter).Count(), tc.shape.String())
	}
}

func TestImageBeforeRun(t *testing.T) {

	k, err := erodeFactory(randomImage(4, 4, 4), morphbench.Params{})
	require.NoError(t, err)

	defer k.Close()

	_, err = k.(morphbench.Imager).Image()
	assert.Error(t, err)
}

func TestAreaOpenFlatImage(t *testing.T) {

	img := image.NewGray(image.Rect(0, 0, 5, 5))

	for i := range img.Pix {
		img.Pix[i] = 90
	}

	out := imageOf(t, runKernel(t, areaOpenFactory, img, morphbench.Params{Arg: 100}))
	assert.Equal(t, img.Pix, out.Pix)
}

func TestDistance(t *testing.T) {

	img := image.NewGray(image.Rect(0, 0, 9, 9))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.Pix[4*9+4] = 0

	k := runKernel(t, distanceFactory, img, morphbench.Params{})

	dist, err := matOf(k).DataPtrFloat32()
	require.NoError(t, err)

	assert.InDelta(t, 0, dist[4*9+4], 1e-6)
	assert.InDelta(t, 1, dist[4*9+5], 1e-2)
	assert.InDelta(t, 3, dist[4*9+7], 1e-2)
	assert.InDelta(t, math.Sqrt(32), dist[0], 0.1)
}

func TestSegmentTwoBasins(t *testing.T) {

	img := image.NewGray(image.Rect(0, 0, 20, 10))

	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			if x < 10 {
				img.Pix[y*20+x] = 40
			} else {
				img.Pix[y*20+x] = 200
			}
		}
	}

	labels, err := Segment(img, morphbench.WatershedParams{Smooth: 0, Gradient: 1, Level: 10})
	require.NoError(t, err)
	require.Len(t, labels, 200)

	left, right := labels[5*20+2], labels[5*20+17]
	assert.Positive(t, left)
	assert.Positive(t, right)
	assert.NotEqual(t, left, right)
}

func TestWatershedRepeatable(t *testing.T) {

	img := randomImage(32, 24, 2)
	p := morphbench.Params{Watershed: morphbench.WatershedParams{Smooth: 2, Gradient: 1, Level: 30}}

	k := runKernel(t, watershedFactory, img, p)
	first := append([]byte(nil), matOf(k).ToBytes()...)

	require.NoError(t, k.Run())
	assert.Equal(t, first, matOf(k).ToBytes())
	assert.Positive(t, k.(morphbench.Counter).Count())
}

func TestRegister(t *testing.T) {

	reg := morphbench.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, native.Register(reg))

	for _, op := range reg.Operations() {
		_, err := reg.Pair(op, Name, native.Name)
		assert.NoError(t, err, op)
	}
}

func TestEmptyImage(t *testing.T) {
	_, err := erodeFactory(image.NewGray(image.Rect(0, 0, 0, 0)), morphbench.Params{})
	assert.Error(t, err)
}

func BenchmarkErode(b *testing.B) {

	img := randomImage(1024, 1024, 3)

	for _, r := range []int{1, 4, 16} {
		se := preprocess.NewStructElement(preprocess.Square, r)

		// prepare Mats before timing
		k, err := erodeFactory(img, morphbench.Params{SE: se})

		if err != nil {
			b.Fatal(err)
		}

		b.Run(se.String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				k.Run()
			}
		})

		k.Close()
	}
}
