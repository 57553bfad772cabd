package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructElementMask(t *testing.T) {

	cross := NewStructElement(Cross, 1)
	assert.Equal(t, 3, cross.Size())
	assert.Equal(t, []bool{
		false, true, false,
		true, true, true,
		false, true, false,
	}, cross.Mask())
	assert.Equal(t, 4, cross.Connectivity())

	square := NewStructElement(Square, 1)
	for _, set := range square.Mask() {
		assert.True(t, set)
	}
	assert.Equal(t, 8, square.Connectivity())
}

func TestNewStructElementClampsRadius(t *testing.T) {
	se := NewStructElement(Square, -3)
	assert.Equal(t, 0, se.Radius)
	assert.Equal(t, 1, se.Size())
}

func TestParseShape(t *testing.T) {

	s, err := ParseShape("Square")
	require.NoError(t, err)
	assert.Equal(t, Square, s)

	s, err = ParseShape("")
	require.NoError(t, err)
	assert.Equal(t, Cross, s)

	_, err = ParseShape("hex")
	assert.Error(t, err)
}
