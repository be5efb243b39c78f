package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/fault"
)

func newTestContext(t *testing.T, text string) *Context {
	t.Helper()
	conf, err := config.Parse(strings.NewReader(text))
	require.NoError(t, err)
	ctx, err := NewContextFromConfig(conf, t.TempDir(), "sim")
	require.NoError(t, err)
	return ctx
}

func TestNameFallsBackToFileStem(t *testing.T) {
	ctx := newTestContext(t, "")
	assert.Equal(t, "sim", ctx.Name())

	ctx = newTestContext(t, "name == my run\n")
	assert.Equal(t, "my run", ctx.Name())
}

func TestRunParameters(t *testing.T) {
	ctx := newTestContext(t, `run parameters
{
start time == 0
end time == 2
sync step == 1
time units == hours
display every == 5
}
`)
	rp, err := ctx.RunParameters()
	require.NoError(t, err)
	assert.Equal(t, 0.0, rp.StartTime)
	assert.Equal(t, 7200.0, rp.EndTime)
	assert.Equal(t, 3600.0, rp.SyncStep)
	assert.Equal(t, uint64(5), rp.DisplayEvery)
}

func TestTimestepParameters(t *testing.T) {
	ctx := newTestContext(t, `timestep parameters == adaptive
{
time step == 0.5
max time step == 2.0
courant target == 0.9
}
`)
	tp, err := ctx.TimestepParameters()
	require.NoError(t, err)
	assert.Equal(t, DtAdaptive, tp.DtType)
	assert.Equal(t, 0.5, tp.TimeStep)
	assert.Equal(t, 2.0, tp.MaxTimeStep)
	assert.Equal(t, 0.9, tp.CourantTarget)

	// Default scheme is Ralston4.
	rk, ok := tp.DdtScheme.Child("runge kutta")
	require.True(t, ok)
	assert.Equal(t, "Ralston4", rk.String("method", ""))
}

func TestTimestepParametersUnknownType(t *testing.T) {
	ctx := newTestContext(t, "timestep parameters == sometimes\n{\n}\n")
	_, err := ctx.TimestepParameters()
	assert.True(t, fault.Is(err, fault.ConfigurationError))
}

func TestTimeSeriesCache(t *testing.T) {
	ctx := newTestContext(t, `time series == Inflow
{
0 == 0.0
10 == 1.0
}
`)
	s1, err := ctx.TimeSeries("inflow")
	require.NoError(t, err)
	s2, err := ctx.TimeSeries("INFLOW")
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	_, err = ctx.TimeSeries("unknown")
	assert.True(t, fault.Is(err, fault.ConfigurationError))
}

func TestRasterFieldGDALNotImplemented(t *testing.T) {
	ctx := newTestContext(t, `raster field == dem
{
source == gdal
filename == dem.tif
}
`)
	_, err := ctx.RasterField("dem")
	assert.True(t, fault.Is(err, fault.NotImplemented))
}

func TestWriteCheckFileProtocol(t *testing.T) {
	ctx := newTestContext(t, "check == active\nno check == mesh\n")
	_, ok := ctx.WriteCheckFile("active")
	assert.True(t, ok)
	_, ok = ctx.WriteCheckFile("mesh")
	assert.False(t, ok)
	_, ok = ctx.WriteCheckFile("cell constants")
	assert.False(t, ok)

	// Mesh check is on by default.
	ctx = newTestContext(t, "")
	_, ok = ctx.WriteCheckFile("mesh")
	assert.True(t, ok)
}

func TestWriteManifest(t *testing.T) {
	ctx := newTestContext(t, `run parameters
{
end time == 10
sync step == 1
}
timestep parameters == adaptive
{
courant target == 0.9
}
`)
	require.NoError(t, ctx.WriteManifest())
	data, err := os.ReadFile(filepath.Join(ctx.CheckFilePath(), "params.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "CourantTarget: 0.9")
	assert.Contains(t, string(data), "Scheme: Ralston4")
}
