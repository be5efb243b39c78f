package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watercourse/gosv/device"
	"github.com/watercourse/gosv/fault"
	"github.com/watercourse/gosv/mesh"
)

func testQueue() *device.Queue {
	return device.NewQueue(device.Platforms()[0])
}

func TestResidencyRoundTrip(t *testing.T) {
	q := testQueue()
	d := NewDataArray[float32](q, 16, false, 0)
	host := d.Host()
	for i := range host {
		host[i] = float32(i) * 0.5
	}
	want := make([]float32, 16)
	copy(want, host)

	d.MoveToDevice()
	assert.True(t, d.IsOnDevice())
	assert.Panics(t, func() { d.Host() })

	d.MoveToHost()
	assert.False(t, d.IsOnDevice())
	assert.Equal(t, want, d.Host())
}

func TestCopyDuplicatesStorage(t *testing.T) {
	q := testQueue()
	d := NewDataArray[float32](q, 4, true, 1)
	c := d.Copy()
	c.Data()[0] = 99
	assert.Equal(t, float32(1), d.Data()[0])
}

func TestFieldArithmetic(t *testing.T) {
	q := testQueue()
	m := mesh.NewCartesian2DFromExtents(4, 4, 0, 0, 1, 1)
	a := NewField[float32](q, "a", m, mesh.Cell, true, 3)
	b := NewField[float32](q, "b", m, mesh.Cell, true, 2)

	sum, err := Sum[float32, float32]("sum", a, b)
	require.NoError(t, err)
	assert.Equal(t, float32(5), sum.Data()[7])

	diff, err := Difference[float32, float32]("diff", a, b)
	require.NoError(t, err)
	assert.Equal(t, float32(1), diff.Data()[0])

	quot, err := Quotient[float32, float32]("quot", a, b)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), quot.Data()[0])

	prod, err := Product[float32, float32]("prod", a, b)
	require.NoError(t, err)
	assert.Equal(t, float32(6), prod.Data()[0])

	dst := NewField[float32](q, "dst", m, mesh.Cell, true, 0)
	require.NoError(t, SumInto(a, b, dst))
	assert.Equal(t, float32(5), dst.Data()[0])
	require.NoError(t, ProductInto(a, b, dst))
	assert.Equal(t, float32(6), dst.Data()[0])
	require.NoError(t, QuotientInto(a, b, dst))
	assert.Equal(t, float32(1.5), dst.Data()[0])
}

func TestMismatchedOperands(t *testing.T) {
	q := testQueue()
	m := mesh.NewCartesian2DFromExtents(4, 4, 0, 0, 1, 1)
	m2 := mesh.NewCartesian2DFromExtents(4, 4, 0, 0, 1, 1)
	a := NewField[float32](q, "a", m, mesh.Cell, true, 1)
	b := NewField[float32](q, "b", m2, mesh.Cell, true, 1)
	c := NewField[float32](q, "c", m, mesh.Face, true, 1)

	_, err := Sum[float32, float32]("bad", a, b)
	assert.True(t, fault.Is(err, fault.InvalidCombination))

	_, err = Sum[float32, float32]("bad", a, c)
	assert.True(t, fault.Is(err, fault.InvalidCombination))
}

func TestCastAndStageDifference(t *testing.T) {
	q := testQueue()
	m := mesh.NewCartesian2DFromExtents(2, 2, 0, 0, 1, 1)
	zb := NewField[float32](q, "zb", m, mesh.Cell, true, 0.25)
	zb2 := Cast[float32, float64]("zb2", zb)
	st2 := NewField[float64](q, "stage", m, mesh.Cell, true, 0.5)

	h := NewField[float32](q, "h", m, mesh.Cell, true, 0)
	require.NoError(t, DifferenceInto(st2, zb2, h))
	assert.InDelta(t, 0.25, h.Data()[0], 1e-7)
}

func TestVectorSwap(t *testing.T) {
	q := testQueue()
	m := mesh.NewCartesian2DFromExtents(2, 2, 0, 0, 1, 1)
	u := NewVector[float32](q, []string{"h", "u", "v"}, m, mesh.Cell, true, 1)
	star := u.Rename("", "*")
	star.At(0).Data()[0] = 42

	u.Swap(star)
	assert.Equal(t, float32(42), u.At(0).Data()[0])
	assert.Equal(t, []string{"h*", "u*", "v*"}, u.Names())
	assert.Equal(t, []string{"h", "u", "v"}, star.Names())
}
