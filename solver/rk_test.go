package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/fault"
	"github.com/watercourse/gosv/field"
	"github.com/watercourse/gosv/mesh"
)

func rkConfig(method string) *config.Config {
	conf := config.New()
	conf.Put("method", method)
	return conf
}

func TestNamedSchemes(t *testing.T) {
	stages := map[string]int{
		"Euler":    1,
		"midpoint": 2,
		"Heun":     2,
		"Ralston":  2,
		"Kutta3":   3,
		"Heun3":    3,
		"Ralston3": 3,
		"SSPRK3":   3,
		"classic":  4,
		"Ralston4": 4,
		"3/8":      4,
	}
	for method, s := range stages {
		co, err := NewCoefficients(rkConfig(method))
		require.NoError(t, err, method)
		assert.Equal(t, s, co.Stages(), method)

		// Output weights are a consistent quadrature.
		var sum float32
		for _, w := range co.A[co.Stages()] {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-5, method)
	}
}

func TestGenericSchemes(t *testing.T) {
	conf := rkConfig("generic2")
	conf.Put("alpha", "0.5")
	co, err := NewCoefficients(conf)
	require.NoError(t, err)
	// α = 1/2 reproduces the midpoint scheme.
	assert.InDelta(t, 0.0, co.A[2][0], 1e-6)
	assert.InDelta(t, 1.0, co.A[2][1], 1e-6)

	// generic2 without alpha is a configuration error.
	_, err = NewCoefficients(rkConfig("generic2"))
	assert.Error(t, err)

	conf = rkConfig("generic3")
	conf.Put("alpha", "0.5")
	co, err = NewCoefficients(conf)
	require.NoError(t, err)
	assert.Equal(t, 3, co.Stages())
}

func TestUnknownScheme(t *testing.T) {
	_, err := NewCoefficients(rkConfig("leapfrog"))
	assert.True(t, fault.Is(err, fault.ConfigurationError))

	_, err = NewCoefficients(config.New())
	assert.True(t, fault.Is(err, fault.ConfigurationError))
}

func TestRungeKuttaClampsDepth(t *testing.T) {
	s := testSolver(t, meshOnly(4, 1))
	co, err := NewCoefficients(rkConfig("Euler"))
	require.NoError(t, err)

	U := field.NewVector[float32](s.Queue(), []string{"h", "u", "v"},
		s.Mesh(), mesh.Cell, true, 0)
	// A thin sheet with velocity: after the step the depth is below
	// epsDry, so the velocity must be zeroed.
	U.At(0).Data()[0] = 5e-5
	U.At(1).Data()[0] = 1

	rk := NewRungeKutta(s, co, U)
	rk.Step(0, 1e-9, 0, 1)
	assert.GreaterOrEqual(t, rk.Ustar.At(0).Data()[0], float32(0))
	assert.Equal(t, float32(0), rk.Ustar.At(1).Data()[0])
}

func TestAcceptStepSwapsState(t *testing.T) {
	s := testSolver(t, meshOnly(2, 1))
	co, err := NewCoefficients(rkConfig("Euler"))
	require.NoError(t, err)

	U := field.NewVector[float32](s.Queue(), []string{"h", "u", "v"},
		s.Mesh(), mesh.Cell, true, 0)
	U.At(0).Data()[0] = 0.5

	rk := NewRungeKutta(s, co, U)
	rk.Step(0, 0.001, 0, 1)
	star := rk.Ustar.At(0).Data()[0]
	rk.AcceptStep()
	assert.Equal(t, star, rk.State().At(0).Data()[0])
}

func TestEulerStepIntegratesRainfall(t *testing.T) {
	s := testSolver(t, meshOnly(1, 1))
	co, err := NewCoefficients(rkConfig("Euler"))
	require.NoError(t, err)

	U := field.NewVector[float32](s.Queue(), []string{"h", "u", "v"},
		s.Mesh(), mesh.Cell, true, 0)
	s.QIn().At(0).Data()[0] = 0.1
	s.QIn().At(1).Data()[0] = 0.1

	rk := NewRungeKutta(s, co, U)
	rk.Step(0, 0.5, 0, 1)
	// dh/dt = Q/(dx·dy) = 0.1, explicit Euler over dt = 0.5.
	assert.InDelta(t, 0.05, rk.Ustar.At(0).Data()[0], 1e-6)
}
