package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 3×3 grid anchored at (0, 0) with unit pixels, row 0 southernmost:
//
//	6 7 8
//	3 4 5
//	0 1 2
func testField(t *testing.T) *Field {
	t.Helper()
	values := []float32{0, 1, 2, 3, 4, 5, 6, 7, 8}
	f, err := NewField(values, 3, 3, [6]float64{0, 1, 0, 0, 0, 1}, -9999)
	require.NoError(t, err)
	return f
}

func TestInspectPoint(t *testing.T) {
	f := testField(t)
	assert.Equal(t, float32(0), f.InspectPoint([2]float64{0.5, 0.5}, -1))
	assert.Equal(t, float32(4), f.InspectPoint([2]float64{1.5, 1.5}, -1))
	assert.Equal(t, float32(8), f.InspectPoint([2]float64{2.5, 2.5}, -1))

	// Outside the grid.
	assert.Equal(t, float32(-1), f.InspectPoint([2]float64{-0.5, 0.5}, -1))
	assert.Equal(t, float32(-1), f.InspectPoint([2]float64{0.5, 3.5}, -1))
}

func TestInspectPointNodata(t *testing.T) {
	values := []float32{-9999, 1, 2, 3}
	f, err := NewField(values, 2, 2, [6]float64{0, 1, 0, 0, 0, 1}, -9999)
	require.NoError(t, err)
	assert.Equal(t, float32(-1), f.InspectPoint([2]float64{0.5, 0.5}, -1))
	assert.Equal(t, float32(1), f.InspectPoint([2]float64{1.5, 0.5}, -1))
}

func TestInspectPointIdempotentAfterBox(t *testing.T) {
	f := testField(t)
	before := f.InspectPoint([2]float64{1.5, 1.5}, -1)
	_, err := f.InspectBox("mean", [2]float64{1.5, 1.5}, [2]float64{3, 3}, -1)
	require.NoError(t, err)
	_, err = f.InspectBox("std dev", [2]float64{1.5, 1.5}, [2]float64{3, 3}, -1)
	require.NoError(t, err)
	assert.Equal(t, before, f.InspectPoint([2]float64{1.5, 1.5}, -1))
}

func TestInspectBoxReductions(t *testing.T) {
	f := testField(t)
	center := [2]float64{1.5, 1.5}
	box := [2]float64{3, 3}

	mean, err := f.InspectBox("mean", center, box, -1)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, mean, 1e-6)

	sum, err := f.InspectBox("sum", center, box, -1)
	require.NoError(t, err)
	assert.InDelta(t, 36.0, sum, 1e-6)

	count, err := f.InspectBox("count", center, box, -1)
	require.NoError(t, err)
	assert.Equal(t, float32(9), count)

	min, err := f.InspectBox("min", center, box, -1)
	require.NoError(t, err)
	assert.Equal(t, float32(0), min)

	max, err := f.InspectBox("max", center, box, -1)
	require.NoError(t, err)
	assert.Equal(t, float32(8), max)

	// Population standard deviation of 0..8.
	sd, err := f.InspectBox("std dev", center, box, -1)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(60.0/9.0), float64(sd), 1e-5)
}

func TestInspectBoxSinglePixel(t *testing.T) {
	f := testField(t)
	mean, err := f.InspectBox("mean", [2]float64{1.5, 1.5}, [2]float64{1, 1}, -1)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, mean, 1e-6)
}

func TestInspectBoxOutside(t *testing.T) {
	f := testField(t)
	mean, err := f.InspectBox("mean", [2]float64{100, 100}, [2]float64{1, 1}, -1)
	require.NoError(t, err)
	assert.Equal(t, float32(-1), mean)
}

func TestUnknownOperation(t *testing.T) {
	f := testField(t)
	_, err := f.InspectBox("median", [2]float64{1.5, 1.5}, [2]float64{1, 1}, -1)
	assert.Error(t, err)
}

func TestLogOperations(t *testing.T) {
	values := []float32{
		float32(math.E), float32(math.E),
		float32(math.E), float32(math.E),
	}
	f, err := NewField(values, 2, 2, [6]float64{0, 1, 0, 0, 0, 1}, -9999)
	require.NoError(t, err)

	lnMean, err := f.InspectBox("log mean", [2]float64{1, 1}, [2]float64{2, 2}, -1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, lnMean, 1e-6)

	lnSD, err := f.InspectBox("log std dev", [2]float64{1, 1}, [2]float64{2, 2}, -1)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, lnSD, 1e-6)
}

func TestInvalidTransforms(t *testing.T) {
	_, err := NewField([]float32{1}, 1, 1, [6]float64{0, 0, 0, 0, 0, 1}, -1)
	assert.Error(t, err)

	_, err = NewField([]float32{1, 2}, 2, 2, [6]float64{0, 1, 0, 0, 0, 1}, -1)
	assert.Error(t, err)
}
