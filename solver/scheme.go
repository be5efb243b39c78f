package solver

import (
	"fmt"

	"github.com/watercourse/gosv/display"
	"github.com/watercourse/gosv/fault"
	"github.com/watercourse/gosv/field"
	"github.com/watercourse/gosv/output"
	"github.com/watercourse/gosv/registry"
)

// TemporalScheme drives the simulation: the outer loop walks
// synchronisation intervals, refreshing boundaries and firing output
// drivers at their ends; the inner loop proposes adaptive steps,
// accepting or repeating them on the control number.
type TemporalScheme struct {
	solver *Solver
	rk     *RungeKutta
	U      *field.Vector[float32]

	outputDrivers      []*output.Driver
	boundaryConditions []*BoundaryCondition
}

// NewTemporalScheme builds, for the given solver, its initial state, the
// Runge-Kutta scheme from `ddt scheme`, the output drivers and the
// boundary conditions.
func NewTemporalScheme(ctx *registry.Context, s *Solver) (*TemporalScheme, error) {
	U, err := s.InitialState()
	if err != nil {
		return nil, err
	}

	tp, err := ctx.TimestepParameters()
	if err != nil {
		return nil, err
	}
	rkConf, ok := tp.DdtScheme.Child("runge kutta")
	if !ok {
		return nil, fault.New(fault.ConfigurationError,
			"ddt scheme %q not known", tp.DdtScheme.Value())
	}
	coeffs, err := NewCoefficients(rkConf)
	if err != nil {
		return nil, err
	}

	drivers, err := output.NewDrivers(ctx)
	if err != nil {
		return nil, err
	}
	bcs, err := NewBoundaryConditions(s)
	if err != nil {
		return nil, err
	}

	return &TemporalScheme{
		solver:             s,
		rk:                 NewRungeKutta(s, coeffs, U),
		U:                  U,
		outputDrivers:      drivers,
		boundaryConditions: bcs,
	}, nil
}

func (ts *TemporalScheme) Solver() *Solver {
	return ts.solver
}

func (ts *TemporalScheme) State() *field.Vector[float32] {
	return ts.U
}

// OutputFunction satisfies output.Source against the current state.
func (ts *TemporalScheme) OutputFunction(name string) (output.Function, error) {
	return ts.solver.OutputFunction(name, ts.U)
}

func (ts *TemporalScheme) WriteCheckFiles() error {
	return ts.solver.WriteCheckFiles()
}

// Run executes the configured run: adaptive stepping only, fixed mode
// is recognised but not supported.
func (ts *TemporalScheme) Run() error {
	rp, err := ts.solver.Context().RunParameters()
	if err != nil {
		return err
	}
	tp, err := ts.solver.Context().TimestepParameters()
	if err != nil {
		return err
	}
	switch tp.DtType {
	case registry.DtFixed:
		return fault.New(fault.NotImplemented, "fixed timestep mode not currently supported")
	case registry.DtAdaptive:
		return ts.outerLoop(rp.StartTime, rp.EndTime, rp.SyncStep, rp.DisplayEvery)
	}
	return fault.New(fault.ConfigurationError, "timestepping type not set")
}

func (ts *TemporalScheme) outerLoop(startTime, endTime, stepSize float64,
	displayEvery uint64) error {
	tp, err := ts.solver.Context().TimestepParameters()
	if err != nil {
		return err
	}
	dt := tp.TimeStep
	maxDt := tp.MaxTimeStep
	courantTarget := tp.CourantTarget

	nsteps := uint64((0.001 + endTime - startTime) / stepSize)

	// Initial output.
	for _, od := range ts.outputDrivers {
		if startTime >= od.NextOutputTime() {
			if err := od.Output(ts); err != nil {
				return err
			}
		}
	}

	table := display.NewTable(
		display.Column{Width: 10, Heading: "t (hours)", Format: "%.3f"},
		display.Column{Width: 9, Heading: "Δt", Format: "%.4f"},
		display.Column{Width: 9, Heading: "tₗ", Format: "%.3f"},
		display.Column{Width: 9, Heading: "Co", Format: "%.4f"},
	)

	for i := uint64(0); i < nsteps; i++ {
		tStepStart := startTime + float64(i)*stepSize
		tStepEnd := tStepStart + stepSize
		if _, err := ts.innerLoop(&dt, maxDt, courantTarget,
			tStepStart, tStepEnd, table, displayEvery); err != nil {
			return err
		}
	}
	return nil
}

// shrinkFactor scales a rejected step's Δt: proportional to how far
// the control number overshot, never below 10% or above 90% of the
// previous step.
func shrinkFactor(comax, courantTarget float64) float64 {
	s := courantTarget / comax
	if s < 0.1 {
		return 0.1
	}
	if s > 0.9 {
		return 0.9
	}
	return s
}

// innerLoop consumes one synchronisation interval. A proposed step is
// evaluated against the Courant target: above target it is rejected
// and Δt shrunk into [0.1, 0.9]·Δt; otherwise it is accepted and Δt
// may grow toward the maximum. Approaching the interval end, Δt is
// shaped so the interval closes on an even number of accepted steps.
func (ts *TemporalScheme) innerLoop(dt *float64, maxDt, courantTarget,
	tStart, tEnd float64, table *display.Table, displayEvery uint64) (uint64, error) {
	ts.solver.ClearBoundaryConditions()
	for _, bc := range ts.boundaryConditions {
		bc.Update(ts.solver, tStart, tEnd)
	}

	repeatedStepCount := uint64(0)
	innerSteps := uint64(0)
	tLocal := 0.0
	tLocalEnd := tEnd - tStart

	anyOutput := true

	for {
		if anyOutput {
			table.WriteTopRule()
			table.WriteHeaderRow()
			anyOutput = false
		}

		tNow := tStart + tLocal
		ts.rk.Step(tNow, *dt, tStart, tEnd)

		comax := ts.solver.ControlNumber(ts.rk.Ustar, *dt)

		targetDt := *dt

		if comax > courantTarget {
			// Unstable: reject, shrink and repeat.
			table.WriteDataRow(tNow/3600.0, *dt, tLocal, comax)

			repeatedStepCount++
			if repeatedStepCount >= 1000 {
				return innerSteps, fault.New(fault.ConvergenceFailure, "too many repeated steps")
			}

			targetDt = *dt * shrinkFactor(comax, courantTarget)
		} else {
			// Stable: accept and advance.
			ts.rk.AcceptStep()
			tLocal += *dt
			innerSteps++

			if comax < 0.9*courantTarget {
				targetDt = *dt * 1.1
				if targetDt > maxDt {
					targetDt = maxDt
				}
			}

			if innerSteps%displayEvery == 0 {
				table.WriteDataRow(tNow/3600.0, *dt, tLocal, comax)
			}

			if tLocal >= tLocalEnd {
				// The interval is consumed; flush the table, fire any
				// pending outputs and report repeats.
				if innerSteps%displayEvery != 0 {
					table.WriteDataRow(tNow/3600.0, *dt, tLocal, comax)
				}

				for _, od := range ts.outputDrivers {
					if tStart+tLocal >= od.NextOutputTime() {
						anyOutput = true
						table.WriteBotRule()
						if err := od.Output(ts); err != nil {
							return innerSteps, err
						}
					}
				}

				if repeatedStepCount > 0 {
					if !anyOutput {
						table.WriteBotRule()
					} else {
						table.WriteMidRule()
					}
					fmt.Printf("WARNING: repeated %d steps.\n", repeatedStepCount)
					anyOutput = true
				}
				if !anyOutput {
					table.WriteBotRule()
				}
				return innerSteps, nil
			} else if tLocal+targetDt > tLocalEnd {
				// The next step would overshoot; land exactly, or set
				// up two more steps when the count is even.
				targetDt = tLocalEnd - tLocal
				if innerSteps%2 == 0 {
					targetDt *= 0.6
				}
			} else if tLocal+1.5*targetDt >= tLocalEnd {
				// Close to the end: aim for an even number of
				// remaining steps (two from even, three from odd).
				if innerSteps%2 == 0 {
					targetDt = 0.6 * (tLocalEnd - tLocal)
				} else {
					targetDt = 0.35 * (tLocalEnd - tLocal)
				}
			}
		}

		*dt = targetDt
	}
}
