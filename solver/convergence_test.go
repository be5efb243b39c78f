package solver

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// solveGaussian runs a smooth free-surface pulse on an n×1 channel of
// fixed length and returns the final depth profile.
func solveGaussian(t *testing.T, n int, endTime float64) []float32 {
	t.Helper()
	length := 100.0
	dx := length / float64(n)
	text := fmt.Sprintf(`mesh
{
cell count == %d, 1
origin == 0, 0
cell size == %g, 1
}
`, n, dx) + runParams(endTime, endTime, dx/100.0, dx/2.0, 0.45, "classic")

	ts := buildScheme(t, text)
	h := ts.State().At(0).Data()
	for i := range h {
		x := (float64(i) + 0.5) * dx
		h[i] = float32(1.0 + 0.1*math.Exp(-(x-50)*(x-50)/100.0))
	}
	require.NoError(t, ts.Run())
	return ts.State().At(0).Data()
}

// restrict coarsens a fine profile by averaging pairs of cells.
func restrict(fine []float32) []float64 {
	out := make([]float64, len(fine)/2)
	for i := range out {
		out[i] = 0.5 * (float64(fine[2*i]) + float64(fine[2*i+1]))
	}
	return out
}

func l2diff(a []float64, b []float32) float64 {
	d := make([]float64, len(a))
	for i := range d {
		d[i] = a[i] - float64(b[i])
	}
	return floats.Norm(d, 2) / math.Sqrt(float64(len(d)))
}

// Doubling the resolution shrinks the error of the classic RK4 scheme
// with linear reconstruction at better than first order; away from the
// limited extrema the scheme is second order.
func TestConvergenceUnderRefinement(t *testing.T) {
	if testing.Short() {
		t.Skip("refinement study")
	}
	endTime := 2.0
	coarse := solveGaussian(t, 50, endTime)
	medium := solveGaussian(t, 100, endTime)
	fine := solveGaussian(t, 200, endTime)

	e1 := l2diff(restrict(medium), coarse)
	e2 := l2diff(restrict(fine), medium)
	ratio := e1 / e2

	assert.Greater(t, ratio, 2.5, "e1=%g e2=%g", e1, e2)
	assert.Less(t, ratio, 6.0, "e1=%g e2=%g", e1, e2)
}
