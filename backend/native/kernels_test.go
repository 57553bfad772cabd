package native

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	morphbench "github.com/swdee/go-morphbench"
	"github.com/swdee/go-morphbench/preprocess"
)

var allOps = []string{
	morphbench.OpErode, morphbench.OpDilate, morphbench.OpOpen, morphbench.OpClose,
	morphbench.OpGradient, morphbench.OpHMaxima, morphbench.OpHMinima, morphbench.OpAreaOpen,
	morphbench.OpLabel, morphbench.OpDistance, morphbench.OpWatershed,
}

func TestRegister(t *testing.T) {

	reg := morphbench.NewRegistry()
	require.NoError(t, Register(reg))

	img := randomImage(24, 16, 9)
	before := append([]uint8(nil), img.Pix...)

	p := morphbench.Params{
		SE:        preprocess.NewStructElement(preprocess.Square, 2),
		Arg:       20,
		H:         10,
		Watershed: morphbench.WatershedParams{Smooth: 1, Gradient: 1, Level: 20},
	}

	for _, op := range allOps {
		assert.True(t, reg.Has(op, Name), op)
	}

	// registering twice fails on the first duplicate
	assert.Error(t, Register(reg))

	for _, op := range allOps {
		f := factoryOf(t, op)

		k, err := f(img, p)
		require.NoError(t, err, op)
		require.NoError(t, k.Run(), op)
		require.NoError(t, k.Run(), op)
		require.NoError(t, k.Close(), op)

		_, isImager := k.(morphbench.Imager)
		_, isCounter := k.(morphbench.Counter)
		assert.True(t, isImager != isCounter, "%s exposes exactly one output", op)
	}

	assert.Equal(t, before, img.Pix)
}

// factoryOf resolves the native factory of op through a fresh registry
func factoryOf(t *testing.T, op string) morphbench.Factory {

	reg := morphbench.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, reg.Register(op, "stub", func(*image.Gray, morphbench.Params) (morphbench.Kernel, error) {
		return morphbench.KernelFunc(func() error { return nil }), nil
	}))

	pair, err := reg.Pair(op, Name, "stub")
	require.NoError(t, err)

	return pair.A.Factory
}

// runOp runs the native kernel of op once on img and returns its output
func runOp(t *testing.T, op string, img *image.Gray, p morphbench.Params) *image.Gray {

	k, err := factoryOf(t, op)(img, p)
	require.NoError(t, err, op)

	defer k.Close()

	require.NoError(t, k.Run(), op)

	im, ok := k.(morphbench.Imager)
	require.True(t, ok, op)

	out, err := im.Image()
	require.NoError(t, err, op)

	return out
}

func TestFactoryRejectsEmptyImage(t *testing.T) {

	for _, op := range allOps {
		f := factoryOf(t, op)

		_, err := f(image.NewGray(image.Rect(0, 0, 0, 0)), morphbench.Params{})
		assert.Error(t, err, op)
	}
}

func TestImageBeforeRun(t *testing.T) {

	for _, op := range []string{morphbench.OpErode, morphbench.OpDistance} {
		k, err := factoryOf(t, op)(randomImage(4, 4, 1), morphbench.Params{})
		require.NoError(t, err)

		_, err = k.(morphbench.Imager).Image()
		assert.Error(t, err, op)
	}
}

func TestImageIsCopy(t *testing.T) {

	k, err := factoryOf(t, morphbench.OpDilate)(randomImage(8, 8, 2), morphbench.Params{})
	require.NoError(t, err)
	require.NoError(t, k.Run())

	first, err := k.(morphbench.Imager).Image()
	require.NoError(t, err)

	first.Pix[0]++

	second, err := k.(morphbench.Imager).Image()
	require.NoError(t, err)
	assert.NotEqual(t, first.Pix[0], second.Pix[0])
}

func TestCountKernels(t *testing.T) {

	img := binaryImage(
		"##..#",
		"##..#",
		"..#..",
		"#...#",
	)

	tests := []struct {
		op    string
		shape preprocess.Shape
		want  int
	}{
		{morphbench.OpLabel, preprocess.Cross, 5},
		{morphbench.OpLabel, preprocess.Square, 4},
	}

	for _, tc := range tests {
		k, err := factoryOf(t, tc.op)(img, morphbench.Params{SE: preprocess.NewStructElement(tc.shape, 1)})
		require.NoError(t, err)
		require.NoError(t, k.Run())

		assert.Equal(t, tc.want, k.(morphbench.Counter).Count(), "%s %s", tc.op, tc.shape)
	}

	k, err := factoryOf(t, morphbench.OpWatershed)(stepImage(20, 10), morphbench.Params{
		Watershed: morphbench.WatershedParams{Smooth: 0, Gradient: 1, Level: 10},
	})
	require.NoError(t, err)
	require.NoError(t, k.Run())
	assert.Equal(t, 2, k.(morphbench.Counter).Count())
}

func TestDistanceImage(t *testing.T) {

	img := binaryImage(
		"#####",
		"#####",
		"##.##",
		"#####",
	)

	out := runOp(t, morphbench.OpDistance, img, morphbench.Params{})

	// sqrt 8 rounds to 3 and sqrt 2 to 1
	assert.Equal(t, uint8(0), out.Pix[2*5+2])
	assert.Equal(t, uint8(1), out.Pix[1*5+1])
	assert.Equal(t, uint8(3), out.Pix[0])
}
