package morphbench

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopFactory(img *image.Gray, p Params) (Kernel, error) {
	return KernelFunc(func() error { return nil }), nil
}

func TestRegistryPair(t *testing.T) {

	reg := NewRegistry()
	require.NoError(t, reg.Register(OpErode, "opencv", nopFactory))
	require.NoError(t, reg.Register(OpErode, "native", nopFactory))
	require.NoError(t, reg.Register(OpLabel, "native", nopFactory))

	pair, err := reg.Pair(OpErode, "opencv", "native")
	require.NoError(t, err)
	assert.Equal(t, OpErode, pair.Operation)
	assert.Equal(t, "opencv", pair.A.Backend)
	assert.Equal(t, "native", pair.B.Backend)
	assert.NotNil(t, pair.A.Factory)

	assert.Equal(t, []string{OpErode, OpLabel}, reg.Operations())
	assert.Equal(t, []string{"native", "opencv"}, reg.Backends())
	assert.True(t, reg.Has(OpLabel, "native"))
	assert.False(t, reg.Has(OpLabel, "opencv"))
}

func TestRegistryPairErrors(t *testing.T) {

	reg := NewRegistry()
	require.NoError(t, reg.Register(OpErode, "opencv", nopFactory))
	require.NoError(t, reg.Register(OpErode, "native", nopFactory))
	require.NoError(t, reg.Register(OpLabel, "native", nopFactory))

	tests := []struct {
		op, a, b string
	}{
		{"hMaxima", "opencv", "native"},
		{OpLabel, "opencv", "native"},
		{OpErode, "opencv", "bild"},
		{OpErode, "native", "native"},
	}

	for _, tc := range tests {
		_, err := reg.Pair(tc.op, tc.a, tc.b)
		assert.ErrorIs(t, err, ErrInvalidParameter, "%s %s/%s", tc.op, tc.a, tc.b)
	}
}

func TestRegistryBinding(t *testing.T) {

	reg := NewRegistry()
	require.NoError(t, reg.Register(OpErode, "slow", nopFactory))

	b, err := reg.Binding(OpErode, "slow")
	require.NoError(t, err)
	assert.Equal(t, "slow", b.Backend)
	assert.True(t, b.Enabled())

	_, err = reg.Binding(OpErode, "fast")
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = reg.Binding(OpLabel, "slow")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestRegistryDuplicate(t *testing.T) {

	reg := NewRegistry()
	require.NoError(t, reg.Register(OpOpen, "native", nopFactory))
	assert.Error(t, reg.Register(OpOpen, "native", nopFactory))
	assert.ErrorIs(t, reg.Register(OpOpen, "", nopFactory), ErrInvalidParameter)
	assert.ErrorIs(t, reg.Register(OpOpen, "bild", nil), ErrInvalidParameter)
}

func TestUsesStructElement(t *testing.T) {
	assert.True(t, UsesStructElement(OpErode))
	assert.True(t, UsesStructElement(OpGradient))
	assert.False(t, UsesStructElement(OpDistance))
	assert.False(t, UsesStructElement(OpWatershed))
	assert.False(t, UsesStructElement(OpLabel))
	assert.True(t, UsesStructElement(OpHMaxima))
	assert.True(t, UsesStructElement(OpHMinima))
	assert.False(t, UsesStructElement(OpAreaOpen))
}

func TestPairOnly(t *testing.T) {

	reg := NewRegistry()
	require.NoError(t, reg.Register(OpLabel, "opencv", nopFactory))
	require.NoError(t, reg.Register(OpLabel, "native", nopFactory))

	pair, err := reg.Pair(OpLabel, "opencv", "native")
	require.NoError(t, err)

	tests := []struct {
		which  string
		enable [2]bool
	}{
		{WhichBoth, [2]bool{true, true}},
		{"", [2]bool{true, true}},
		{WhichA, [2]bool{true, false}},
		{"opencv", [2]bool{true, false}},
		{WhichB, [2]bool{false, true}},
		{"native", [2]bool{false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.which, func(t *testing.T) {
			p, err := pair.Only(tt.which)
			require.NoError(t, err)

			assert.Equal(t, tt.enable, [2]bool{p.A.Enabled(), p.B.Enabled()})
			assert.Equal(t, "opencv", p.A.Backend)
			assert.Equal(t, "native", p.B.Backend)
		})
	}

	_, err = pair.Only("bild")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestParamsArea(t *testing.T) {

	tests := []struct {
		params Params
		want   int
	}{
		{Params{Arg: 500}, 500},
		{Params{Arg: 500, Scale: 1}, 500},
		{Params{Arg: 500, Scale: 2}, 2000},
		{Params{Arg: 500, Scale: 0.5}, 125},
		{Params{Arg: 10, Scale: 0.1}, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.params.Area(), "%+v", tt.params)
	}
}

func TestParamsDynamic(t *testing.T) {
	assert.Equal(t, uint8(DefaultH), Params{}.Dynamic())
	assert.Equal(t, uint8(3), Params{H: 3}.Dynamic())
}

func TestWatershedTableLookup(t *testing.T) {

	table := DefaultWatershedTable()

	assert.Equal(t, WatershedParams{Smooth: 3, Gradient: 1, Level: 10}, table.For("images/tools.png"))
	assert.Equal(t, table.Default, table.For("images/unknown.png"))
}
