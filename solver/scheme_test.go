package solver

import (
	"fmt"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watercourse/gosv/display"
)

// runParams renders the run/timestep blocks shared by the scenario
// tests. Display is effectively muted to keep test output readable.
func runParams(endTime, syncStep, dt, maxDt, courant float64, method string) string {
	return fmt.Sprintf(`run parameters
{
start time == 0
end time == %g
sync step == %g
display every == 1000000
}
timestep parameters == adaptive
{
time step == %g
max time step == %g
courant target == %g
ddt scheme
{
runge kutta
{
method == %s
}
}
}
`, endTime, syncStep, dt, maxDt, courant, method)
}

func idList(lo, hi int) string {
	var ids []string
	for i := lo; i < hi; i++ {
		ids = append(ids, fmt.Sprint(i))
	}
	return strings.Join(ids, ", ")
}

func buildScheme(t *testing.T, text string) *TemporalScheme {
	t.Helper()
	ctx := testContext(t, text)
	s, err := NewSolver(ctx, testQueue())
	require.NoError(t, err)
	ts, err := NewTemporalScheme(ctx, s)
	require.NoError(t, err)
	return ts
}

// Dam break on a 100×1 mesh: water initially fills the left half.
// After two seconds the wet front has advanced into the dry half and
// mass is conserved.
func TestDamBreak(t *testing.T) {
	text := meshOnly(100, 1) +
		runParams(2.0, 0.2, 0.01, 0.05, 0.9, "SSPRK3") + `h
{
set == fixed
{
value == 1.0
selection == id list
{
id == ` + idList(0, 50) + `
}
}
}
`
	ts := buildScheme(t, text)
	initialMass := ts.Solver().TotalVolume(ts.State())
	require.InDelta(t, 50.0, initialMass, 1e-3)

	require.NoError(t, ts.Run())

	h := ts.State().At(0).Data()
	front := -1
	for i := range h {
		if h[i] > epsDry {
			front = i
		}
	}
	assert.GreaterOrEqual(t, front, 60)
	assert.LessOrEqual(t, front, 66)

	finalMass := ts.Solver().TotalVolume(ts.State())
	assert.InDelta(t, initialMass, finalMass, 1e-3*initialMass)

	// Non-negative depth with zeroed velocity below the dry threshold.
	u := ts.State().At(1).Data()
	v := ts.State().At(2).Data()
	for i := range h {
		require.GreaterOrEqual(t, h[i], float32(0))
		if h[i] < epsDry {
			require.Equal(t, float32(0), u[i])
			require.Equal(t, float32(0), v[i])
		}
	}
}

// A flat lake with no forcing stays exactly at rest.
func TestLakeAtRestFlatBed(t *testing.T) {
	text := meshOnly(20, 3) +
		runParams(10.0, 1.0, 0.05, 0.2, 0.9, "Heun") + `h
{
set == fixed
{
value == 0.5
}
}
`
	ts := buildScheme(t, text)
	require.NoError(t, ts.Run())

	for i, h := range ts.State().At(0).Data() {
		assert.InDelta(t, 0.5, h, 1e-6, "cell %d", i)
	}
	for _, u := range ts.State().At(1).Data() {
		assert.InDelta(t, 0.0, u, 1e-6)
	}
}

// Lake at rest over a triangular bump, initialised by stage. The
// surface stays flat away from the bump's slope breaks, where the
// limited reconstruction admits a small local offset, and the basin
// keeps its volume.
func TestLakeAtRestOverBump(t *testing.T) {
	text := meshOnly(50, 1) +
		runParams(10.0, 1.0, 0.05, 0.1, 0.9, "SSPRK3") + `stage
{
set == fixed
{
value == 0.5
}
}
`
	ctx := testContext(t, text)
	s, err := NewSolver(ctx, testQueue())
	require.NoError(t, err)

	zb := s.Bed().At(0).Data()
	for i := range zb {
		b := 0.25 - 0.04*math.Abs(float64(i)-25.0)
		if b < 0 {
			b = 0
		}
		zb[i] = float32(b)
	}

	ts, err := NewTemporalScheme(ctx, s)
	require.NoError(t, err)
	initialMass := ts.Solver().TotalVolume(ts.State())

	require.NoError(t, ts.Run())

	// The limited reconstruction admits a small equilibrium offset at
	// the bump's slope breaks; away from machine precision the basin
	// must stay essentially level, slow and closed.
	h := ts.State().At(0).Data()
	for i := range h {
		stage := float64(h[i]) + float64(zb[i])
		assert.InDelta(t, 0.5, stage, 5e-2, "cell %d", i)
	}
	for _, u := range ts.State().At(1).Data() {
		assert.LessOrEqual(t, abs32(u), float32(5e-2))
	}
	assert.InDelta(t, initialMass, ts.Solver().TotalVolume(ts.State()), 1e-4*initialMass)
}

// Constant rainfall on a closed flat basin accumulates linearly.
func TestConstantRainfall(t *testing.T) {
	text := `mesh
{
cell count == 10, 10
origin == 0, 0
cell size == 10, 10
}
` + runParams(100.0, 10.0, 1.0, 5.0, 0.9, "Heun") + `boundary == source
{
name == rain
selection == global
values == fixed
{
value == 0.01
}
}
`
	ts := buildScheme(t, text)
	require.NoError(t, ts.Run())

	// h = Q·t/(dx·dy) = 0.01·100/100 = 0.01 m.
	for i, h := range ts.State().At(0).Data() {
		assert.InDelta(t, 0.01, h, 1e-3, "cell %d", i)
	}
}

// A stage boundary holds the west cell at 0.5 m and gradually fills
// the channel; no cell overshoots the boundary stage.
func TestStageBoundary(t *testing.T) {
	text := meshOnly(20, 1) +
		runParams(20.0, 0.5, 0.01, 0.05, 0.9, "SSPRK3") + `boundary == depth
{
name == west stage
selection == id list
{
id == 0
}
values == fixed
{
value == 0.5
}
}
`
	ts := buildScheme(t, text)
	require.NoError(t, ts.Run())

	h := ts.State().At(0).Data()
	assert.InDelta(t, 0.5, h[0], 1e-3)
	interior := 0.0
	for i := 1; i < len(h); i++ {
		interior += float64(h[i])
		assert.LessOrEqual(t, float64(h[i]), 0.5+1e-3, "cell %d", i)
	}
	assert.Greater(t, interior, 0.0)
}

// Deactivated cells stay NaN through the run and the isolated active
// region keeps its mass exactly.
func TestInactiveCellsSurvive(t *testing.T) {
	text := meshOnly(100, 1) +
		runParams(1.0, 0.2, 0.01, 0.05, 0.9, "Heun") + `h
{
set == fixed
{
value == 1.0
selection == id list
{
id == ` + idList(0, 50) + `
}
}
}
deactivate == id list
{
id == ` + idList(40, 60) + `
}
`
	ts := buildScheme(t, text)
	require.NoError(t, ts.Run())

	zb := ts.Solver().Bed().At(0).Data()
	h := ts.State().At(0).Data()
	u := ts.State().At(1).Data()
	v := ts.State().At(2).Data()
	for i := 40; i < 60; i++ {
		assert.True(t, isNaN32(zb[i]), "zb at %d", i)
		assert.True(t, isNaN32(h[i]), "h at %d", i)
		assert.True(t, isNaN32(u[i]), "u at %d", i)
		assert.True(t, isNaN32(v[i]), "v at %d", i)
	}

	// The active left block (0..39) was at rest and walled off: its
	// volume is exactly preserved.
	leftMass := 0.0
	for i := 0; i < 40; i++ {
		leftMass += float64(h[i])
	}
	assert.Equal(t, 40.0, leftMass)

	rightMass := 0.0
	for i := 60; i < 100; i++ {
		rightMass += float64(h[i])
	}
	assert.Equal(t, 0.0, rightMass)
}

// A hopeless Courant target exhausts the repeat budget.
func TestConvergenceFailure(t *testing.T) {
	text := meshOnly(10, 1) +
		runParams(1.0, 1.0, 1.0, 1.0, -1.0, "Euler") + `h
{
set == fixed
{
value == 1.0
}
}
`
	// The control number is never negative, so no step meets a
	// negative target and every proposal is rejected until the repeat
	// budget runs out.
	ctx := testContext(t, text)
	s, err := NewSolver(ctx, testQueue())
	require.NoError(t, err)
	ts, err := NewTemporalScheme(ctx, s)
	require.NoError(t, err)

	err = ts.Run()
	require.Error(t, err)
}

// An interval always closes with an even number of accepted steps.
func TestEvenStepShaping(t *testing.T) {
	text := meshOnly(10, 1) +
		runParams(1.0, 1.0, 0.011, 0.04, 0.9, "Heun") + `h
{
set == fixed
{
value == 0.25
}
}
`
	ts := buildScheme(t, text)

	tp, err := ts.solver.Context().TimestepParameters()
	require.NoError(t, err)
	dt := tp.TimeStep
	table := display.NewTable(
		display.Column{Width: 10, Heading: "t (hours)", Format: "%.3f"},
		display.Column{Width: 9, Heading: "Δt", Format: "%.4f"},
		display.Column{Width: 9, Heading: "tₗ", Format: "%.3f"},
		display.Column{Width: 9, Heading: "Co", Format: "%.4f"},
	)
	table.SetOutput(io.Discard)
	steps, err := ts.innerLoop(&dt, tp.MaxTimeStep, tp.CourantTarget,
		0.0, 1.0, table, 1000000)
	require.NoError(t, err)
	assert.Zero(t, steps%2, "interval closed on %d steps", steps)
}
