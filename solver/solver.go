package solver

import (

	log "github.com/sirupsen/logrus"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/device"
	"github.com/watercourse/gosv/fault"
	"github.com/watercourse/gosv/field"
	"github.com/watercourse/gosv/functor"
	"github.com/watercourse/gosv/mesh"
	"github.com/watercourse/gosv/registry"
)

const theta = float32(2.0)

// Solver owns the mesh, the constant fields (bed and roughness), the
// per-step temporaries and the boundary sample vectors, and evaluates
// dU/dt and the control number for the temporal scheme.
type Solver struct {
	ctx   *registry.Context
	queue *device.Queue
	mesh  *mesh.Cartesian2D

	// Constants
	zbed    *field.Vector[float32] // zb, dzb/dx, dzb/dy
	manning *field.Vector[float32] // n0, h0, n1, h1

	// Temporaries
	dUdx *field.Vector[float32]
	dUdy *field.Vector[float32]
	flux *field.Vector[float32]

	// Boundary samples for the current synchronisation interval
	qIn *field.Vector[float32]
	hIn *field.Vector[float32]
}

func NewSolver(ctx *registry.Context, queue *device.Queue) (*Solver, error) {
	meshConf, ok := ctx.Conf.Child("mesh")
	if !ok {
		return nil, fault.New(fault.ConfigurationError, "missing mesh block")
	}
	m, err := mesh.NewCartesian2D(meshConf)
	if err != nil {
		return nil, err
	}

	s := &Solver{
		ctx:   ctx,
		queue: queue,
		mesh:  m,
		zbed: field.NewVector[float32](queue,
			[]string{"zb", "dzb/dx", "dzb/dy"}, m, mesh.Cell, true, 0),
		manning: field.NewVector[float32](queue,
			[]string{"manning_n0", "manning_h0", "manning_n1", "manning_h1"},
			m, mesh.Cell, true, 0),
		dUdx: field.NewVector[float32](queue,
			[]string{"dh/dx", "du/dx", "dv/dx"}, m, mesh.Cell, true, 0),
		dUdy: field.NewVector[float32](queue,
			[]string{"dh/dy", "du/dy", "dv/dy"}, m, mesh.Cell, true, 0),
		flux: field.NewVector[float32](queue,
			[]string{"mass", "xmom", "ymom", "wall"}, m, mesh.Face, true, 0),
		qIn: field.NewVector[float32](queue,
			[]string{"Q_in_0", "Q_in_1"}, m, mesh.Cell, true, 0),
		hIn: field.NewVector[float32](queue,
			[]string{"h_in_0", "h_in_1"}, m, mesh.Cell, true, -1),
	}

	// User-specified values for the constant fields.
	for i := 0; i < s.zbed.Len(); i++ {
		if err := functor.GenerateField(ctx, s.zbed.At(i)); err != nil {
			return nil, err
		}
	}
	for i := 0; i < s.manning.Len(); i++ {
		if err := functor.GenerateField(ctx, s.manning.At(i)); err != nil {
			return nil, err
		}
	}

	// Deactivate user-specified areas of the mesh.
	if err := s.eachDeactivation(func(sel field.Selection) {
		functor.SetNaN(sel, s.zbed.At(0))
	}); err != nil {
		return nil, err
	}

	log.Info("Initialised solver.")
	return s, nil
}

func (s *Solver) eachDeactivation(fn func(sel field.Selection)) error {
	var err error
	s.ctx.Conf.Each("deactivate", func(node *config.Config) {
		if err != nil {
			return
		}
		var sel field.Selection
		sel, err = field.NewSelection(s.queue, s.mesh, mesh.Cell, node, s.ctx.BasePath)
		if err != nil {
			return
		}
		log.Infof("Deactivating %d cells.", sel.Size())
		fn(sel)
	})
	return err
}

func (s *Solver) Queue() *device.Queue       { return s.queue }
func (s *Solver) Mesh() *mesh.Cartesian2D    { return s.mesh }
func (s *Solver) Context() *registry.Context { return s.ctx }

func (s *Solver) Bed() *field.Vector[float32]     { return s.zbed }
func (s *Solver) Manning() *field.Vector[float32] { return s.manning }
func (s *Solver) QIn() *field.Vector[float32]     { return s.qIn }
func (s *Solver) HIn() *field.Vector[float32]     { return s.hIn }

// InitialState builds U = (h, u, v): depth from `h` or `stage`
// (stage differenced against the bed in double precision), velocity
// from (u,v) or (qx,qy) ((q,theta) is recognised and reported as not
// implemented), then NaN over deactivated cells.
func (s *Solver) InitialState() (*field.Vector[float32], error) {
	gconf := s.ctx.Conf
	init := field.NewVector[float32](s.queue,
		[]string{"h", "u", "v"}, s.mesh, mesh.Cell, true, 0)

	depthSpecified := gconf.Count("h") > 0
	stageSpecified := gconf.Count("stage") > 0
	if depthSpecified && stageSpecified {
		return nil, fault.New(fault.ConfigurationError,
			"both depth and stage initial conditions were specified")
	}
	if depthSpecified {
		if err := functor.GenerateField(s.ctx, init.At(0)); err != nil {
			return nil, err
		}
	} else if stageSpecified {
		zb2 := field.Cast[float32, float64]("zb2", s.zbed.At(0))
		st2 := field.NewField[float64](s.queue, "stage", s.mesh, mesh.Cell, true, 0)
		st32 := field.NewField[float32](s.queue, "stage", s.mesh, mesh.Cell, true, 0)
		if err := functor.GenerateField(s.ctx, st32); err != nil {
			return nil, err
		}
		sv, dv := st32.Data(), st2.Data()
		s.queue.ParallelFor(len(dv), func(i int) {
			dv[i] = float64(sv[i])
		})
		if err := field.DifferenceInto(st2, zb2, init.At(0)); err != nil {
			return nil, err
		}
	}

	if err := s.initialVelocity(init); err != nil {
		return nil, err
	}

	if err := s.eachDeactivation(func(sel field.Selection) {
		functor.SetNaN(sel, init.At(0))
		functor.SetNaN(sel, init.At(1))
		functor.SetNaN(sel, init.At(2))
	}); err != nil {
		return nil, err
	}
	return init, nil
}

// initialVelocity fills u and v in place. Exactly one of (u,v),
// (qx,qy), (q,theta) or nothing may be configured.
func (s *Solver) initialVelocity(init *field.Vector[float32]) error {
	gconf := s.ctx.Conf

	uvSpecified := gconf.Count("u") > 0
	if uvSpecified && gconf.Count("v") == 0 {
		return fault.New(fault.ConfigurationError, "u velocity specified without v velocity")
	}
	if gconf.Count("v") > 0 && !uvSpecified {
		return fault.New(fault.ConfigurationError, "v velocity specified without u velocity")
	}

	qxySpecified := gconf.Count("qx") > 0
	if qxySpecified && gconf.Count("qy") == 0 {
		return fault.New(fault.ConfigurationError, "qx flow specified without qy flow")
	}
	if gconf.Count("qy") > 0 && !qxySpecified {
		return fault.New(fault.ConfigurationError, "qy flow specified without qx flow")
	}

	qthSpecified := gconf.Count("q") > 0
	if qthSpecified && gconf.Count("theta") == 0 {
		return fault.New(fault.ConfigurationError, "q flow specified without theta direction")
	}
	if gconf.Count("theta") > 0 && !qthSpecified {
		return fault.New(fault.ConfigurationError, "theta flow direction specified without q flow")
	}

	switch {
	case uvSpecified:
		if qxySpecified || qthSpecified {
			return fault.New(fault.ConfigurationError,
				"cannot specify initial velocity together with initial unit flow")
		}
		if err := functor.GenerateField(s.ctx, init.At(1)); err != nil {
			return err
		}
		return functor.GenerateField(s.ctx, init.At(2))

	case qxySpecified:
		if qthSpecified {
			return fault.New(fault.ConfigurationError,
				"cannot specify initial unit flow both as components and magnitude/direction")
		}
		qx := field.NewField[float32](s.queue, "qx", s.mesh, mesh.Cell, true, 0)
		qy := field.NewField[float32](s.queue, "qy", s.mesh, mesh.Cell, true, 0)
		if err := functor.GenerateField(s.ctx, qx); err != nil {
			return err
		}
		if err := functor.GenerateField(s.ctx, qy); err != nil {
			return err
		}
		if err := field.QuotientInto(qx, init.At(0), init.At(1)); err != nil {
			return err
		}
		return field.QuotientInto(qy, init.At(0), init.At(2))

	case qthSpecified:
		return fault.New(fault.NotImplemented, "q,theta specification not yet supported")
	}
	return nil
}

// ClearBoundaryConditions restores the boundary sample vectors to
// their between-interval defaults: zero inflow, no stage.
func (s *Solver) ClearBoundaryConditions() {
	clear := functor.NewModifierDirect("clear boundaries",
		field.GlobalSelection(s.mesh, mesh.Cell),
		0.0, 1.0, -2.0, 2.0, 1.0)
	qFunc := functor.FixedValue(0)
	hFunc := functor.FixedValue(-1)
	clear.Modify(functor.Set, qFunc, 0.0, s.qIn.At(0))
	clear.Modify(functor.Set, qFunc, 0.0, s.qIn.At(1))
	clear.Modify(functor.Set, hFunc, 0.0, s.hIn.At(0))
	clear.Modify(functor.Set, hFunc, 0.0, s.hIn.At(1))
}

// UpdateDdt runs one reconstruction → flux → derivative pass.
func (s *Solver) UpdateDdt(U, dUdt *field.Vector[float32],
	timeNow, timestep, bdyT0, bdyT1 float64) {
	Reconstruct(s.queue, s.mesh, U, s.dUdx, s.dUdy, theta)
	ComputeFluxes(s.queue, s.mesh, U, s.zbed, s.dUdx, s.dUdy, s.flux)
	ComputeDerivative(s.queue, s.mesh, U, s.zbed, s.manning, s.qIn, s.hIn,
		s.flux, dUdt, timeNow, timestep, bdyT0, bdyT1)
}

// ControlNumber evaluates the step-acceptance criterion for U.
func (s *Solver) ControlNumber(U *field.Vector[float32], timestep float64) float64 {
	return ControlNumber(s.queue, s.mesh, U, timestep)
}

// TotalVolume integrates h over the active cells; diagnostics and
// tests use it for mass accounting.
func (s *Solver) TotalVolume(U *field.Vector[float32]) float64 {
	h := U.At(0).Data()
	cellArea := s.mesh.CellSize()[0] * s.mesh.CellSize()[1]
	total := 0.0
	for _, v := range h {
		if !isNaN32(v) {
			total += float64(v)
		}
	}
	return total * cellArea
}

