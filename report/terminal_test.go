package report

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	morphbench "github.com/swdee/go-morphbench"
)

func TestPlainSummary(t *testing.T) {

	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	require.NoError(t, p.Summary(sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "* opencv erode")
	assert.Contains(t, out, "* native erode")
	assert.Contains(t, out, "1.500")
	assert.Contains(t, out, "512")
	assert.NotContains(t, out, "\x1b[")
}

func TestStyledSpeedup(t *testing.T) {

	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	res := sampleResult()
	points, err := morphbench.Speedup(res)
	require.NoError(t, err)

	require.NoError(t, p.Speedup(res, points))
	assert.Contains(t, buf.String(), "2.400")
	assert.Contains(t, buf.String(), "speed up native / opencv erode")
}

func TestSummarySkipsBackend(t *testing.T) {

	res := sampleResult()
	res.Skipped = "native"

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, false).Summary(res))

	assert.Contains(t, buf.String(), "* opencv erode")
	assert.NotContains(t, buf.String(), "* native erode")
}

func TestSpeedupConfidenceColumn(t *testing.T) {

	res := sampleResult()
	points := []morphbench.SpeedupPoint{
		{Value: 256, Ratio: 2.4, Log10: 0.38, Confidence: 0.9876},
		{Value: 512, Ratio: 1, Log10: 0, Confidence: math.NaN()},
	}

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, false).Speedup(res, points))

	out := buf.String()
	assert.Contains(t, out, "confidence")
	assert.Contains(t, out, "0.988")
	assert.Contains(t, out, "-")
}
