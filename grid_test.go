package morphbench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageScales(t *testing.T) {

	tests := []struct {
		name     string
		width    int
		min      int
		max      int
		growth   Growth
		expected []float64
	}{
		{"geometric", 512, 256, 4096, Geometric, []float64{0.5, 1, 2, 4, 8}},
		{"arithmetic", 512, 256, 2048, Arithmetic, []float64{0.5, 1.5, 2.5, 3.5}},
		{"exact max", 256, 256, 1024, Geometric, []float64{1, 2, 4}},
		{"empty range", 512, 4096, 256, Geometric, []float64{1}},
		{"zero width", 0, 256, 4096, Geometric, []float64{1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ImageScales(tc.width, tc.min, tc.max, tc.growth))
		})
	}
}

func TestImageSides(t *testing.T) {
	assert.Equal(t, []float64{256, 512, 1024}, ImageSides(512, []float64{0.5, 1, 2}))
}

func TestRadiiAndDoubling(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3}, Radii(3))
	assert.Empty(t, Radii(0))
	assert.Equal(t, []float64{1, 2, 4, 8}, Doubling(1, 4))
	assert.Equal(t, []float64{3, 6}, Doubling(3, 2))
}

func TestParseGrowth(t *testing.T) {

	g, err := ParseGrowth("a")
	require.NoError(t, err)
	assert.Equal(t, Arithmetic, g)

	g, err = ParseGrowth("Geometric")
	require.NoError(t, err)
	assert.Equal(t, Geometric, g)

	_, err = ParseGrowth("x")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
