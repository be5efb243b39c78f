package solver

import (
	"fmt"
	"strings"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/fault"
	"github.com/watercourse/gosv/field"
)

// Coefficients is a Butcher tableau for an S-stage explicit scheme:
// S+1 rows of a (the last row holds the output weights) and S stage
// times c.
type Coefficients struct {
	A [][]float32
	C []float32
}

func (co *Coefficients) Stages() int {
	return len(co.C)
}

// Print renders the tableau the way the run log shows it.
func (co *Coefficients) Print() {
	s := co.Stages()
	fmt.Println("Butcher tableau for Runge Kutta scheme is:")
	for i := 0; i < s; i++ {
		fmt.Printf("%f │ ", co.C[i])
		for j := 0; j < i; j++ {
			fmt.Printf("%f   ", co.A[i][j])
		}
		fmt.Println()
	}
	fmt.Println("─────────┼─" + strings.Repeat("────────", s+1))
	fmt.Print(strings.Repeat(" ", 8), " │ ")
	for i := 0; i < s; i++ {
		fmt.Printf("%f   ", co.A[s][i])
	}
	fmt.Println()
}

// NewCoefficients resolves a named scheme. The generic two- and
// three-stage families take their α from the scheme configuration.
func NewCoefficients(conf *config.Config) (*Coefficients, error) {
	method, err := conf.GetString("method")
	if err != nil {
		return nil, fault.New(fault.ConfigurationError, "no temporal scheme specified")
	}

	var co *Coefficients
	switch method {
	case "Euler":
		co = &Coefficients{
			A: [][]float32{{0}, {1}},
			C: []float32{0},
		}
	case "midpoint":
		co = &Coefficients{
			A: [][]float32{{0, 0}, {0.5, 0}, {0, 1}},
			C: []float32{0, 0.5},
		}
	case "Heun":
		co = &Coefficients{
			A: [][]float32{{0, 0}, {1, 0}, {0.5, 0.5}},
			C: []float32{0, 1},
		}
	case "Ralston":
		co = &Coefficients{
			A: [][]float32{{0, 0}, {2.0 / 3.0, 0}, {0.25, 0.75}},
			C: []float32{0, 2.0 / 3.0},
		}
	case "generic2":
		alpha, err := conf.GetFloat("alpha")
		if err != nil {
			return nil, err
		}
		a := float32(alpha)
		co = &Coefficients{
			A: [][]float32{
				{0, 0},
				{a, 0},
				{1.0 - 1.0/(2.0*a), 1.0 / (2.0 * a)},
			},
			C: []float32{0, a},
		}
	case "Kutta3":
		co = &Coefficients{
			A: [][]float32{
				{0, 0, 0},
				{0.5, 0, 0},
				{-1, 2, 0},
				{1.0 / 6.0, 2.0 / 3.0, 1.0 / 6.0},
			},
			C: []float32{0, 0.5, 1},
		}
	case "Heun3":
		co = &Coefficients{
			A: [][]float32{
				{0, 0, 0},
				{1.0 / 3.0, 0, 0},
				{0, 2.0 / 3.0, 0},
				{0.25, 0, 0.75},
			},
			C: []float32{0, 1.0 / 3.0, 2.0 / 3.0},
		}
	case "Ralston3":
		co = &Coefficients{
			A: [][]float32{
				{0, 0, 0},
				{0.5, 0, 0},
				{0, 0.75, 0},
				{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0},
			},
			C: []float32{0, 0.5, 0.75},
		}
	case "SSPRK3":
		co = &Coefficients{
			A: [][]float32{
				{0, 0, 0},
				{1, 0, 0},
				{0.25, 0.25, 0},
				{1.0 / 6.0, 1.0 / 6.0, 2.0 / 3.0},
			},
			C: []float32{0, 1, 0.5},
		}
	case "generic3":
		alpha, err := conf.GetFloat("alpha")
		if err != nil {
			return nil, err
		}
		a := float32(alpha)
		co = &Coefficients{
			A: [][]float32{
				{0, 0, 0},
				{a, 0, 0},
				{1.0 + (1.0-a)/(a*(3.0*a-2.0)), -(1.0 - a) / (a * (3.0*a - 2.0)), 0},
				{0.5 - 1.0/(6.0*a), 1.0 / (6.0 * a * (1.0 - a)), (2.0 - 3.0*a) / (6.0 * (1.0 - a))},
			},
			C: []float32{0, a, 1},
		}
	case "classic":
		co = &Coefficients{
			A: [][]float32{
				{0, 0, 0, 0},
				{0.5, 0, 0, 0},
				{0, 0.5, 0, 0},
				{0, 0, 1, 0},
				{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
			},
			C: []float32{0, 0.5, 0.5, 1},
		}
	case "Ralston4":
		co = &Coefficients{
			A: [][]float32{
				{0, 0, 0, 0},
				{0.4, 0, 0, 0},
				{0.29697761, 0.15875964, 0, 0},
				{0.21810040, -3.05096516, 3.83286476, 0},
				{0.17476028, -0.55148066, 1.20553560, 0.17118478},
			},
			C: []float32{0, 0.4, 0.45573725, 1},
		}
	case "3/8":
		co = &Coefficients{
			A: [][]float32{
				{0, 0, 0, 0},
				{1.0 / 3.0, 0, 0, 0},
				{-1.0 / 3.0, 1, 0, 0},
				{1, -1, 1, 0},
				{1.0 / 8.0, 3.0 / 8.0, 3.0 / 8.0, 1.0 / 8.0},
			},
			C: []float32{0, 1.0 / 3.0, 2.0 / 3.0, 1},
		}
	default:
		return nil, fault.New(fault.ConfigurationError,
			"temporal scheme %q not known", method)
	}

	fmt.Printf("Using a Runge-Kutta temporal scheme: %q:\n", method)
	co.Print()
	return co, nil
}

// RungeKutta advances the state with an explicit multi-stage scheme:
// stage states accumulate into U*, each clamped so depth stays
// non-negative and near-dry cells carry no velocity.
type RungeKutta struct {
	coeffs *Coefficients
	solver *Solver

	U     *field.Vector[float32]
	Ustar *field.Vector[float32]
	dUdt  []*field.Vector[float32]
}

func NewRungeKutta(s *Solver, coeffs *Coefficients, U *field.Vector[float32]) *RungeKutta {
	rk := &RungeKutta{
		coeffs: coeffs,
		solver: s,
		U:      U,
		Ustar:  U.Rename("", "*"),
	}
	for i := 0; i < coeffs.Stages(); i++ {
		rk.dUdt = append(rk.dUdt, U.Rename("(d", fmt.Sprintf("/dt)_%d", i)))
	}
	return rk
}

func (rk *RungeKutta) State() *field.Vector[float32] {
	return rk.U
}

func (rk *RungeKutta) updateUstar(stage int, timeNow, timestep, bdyT0, bdyT1 float64) {
	uStar := rk.Ustar.Data()
	u := rk.U.Data()
	dt := float32(timestep)

	stageDerivs := make([][][]float32, stage)
	for i := 0; i < stage; i++ {
		stageDerivs[i] = rk.dUdt[i].Data()
	}
	a := rk.coeffs.A[stage]

	rk.solver.Queue().ParallelFor(rk.U.At(0).Size(), func(i int) {
		for k := range uStar {
			val := u[k][i]
			for j := 0; j < stage; j++ {
				val += dt * a[j] * stageDerivs[j][k][i]
			}
			uStar[k][i] = val
		}
		if uStar[0][i] < 0 {
			uStar[0][i] = 0
			uStar[1][i] = 0
			uStar[2][i] = 0
		} else if uStar[0][i] < epsDry {
			uStar[1][i] = 0
			uStar[2][i] = 0
		}
	})

	if stage < rk.coeffs.Stages() {
		rk.solver.UpdateDdt(rk.Ustar, rk.dUdt[stage],
			timeNow+float64(rk.coeffs.C[stage])*timestep, timestep, bdyT0, bdyT1)
	}
}

// Step runs every sub-step; afterwards Ustar holds the candidate
// advanced state.
func (rk *RungeKutta) Step(timeNow, timestep, bdyT0, bdyT1 float64) {
	for stage := 0; stage <= rk.coeffs.Stages(); stage++ {
		rk.updateUstar(stage, timeNow, timestep, bdyT0, bdyT1)
	}
}

// AcceptStep swaps the candidate into U.
func (rk *RungeKutta) AcceptStep() {
	rk.U.Swap(rk.Ustar)
}
