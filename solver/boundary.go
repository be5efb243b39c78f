package solver

import (
	"math"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/fault"
	"github.com/watercourse/gosv/field"
	"github.com/watercourse/gosv/functor"
	"github.com/watercourse/gosv/mesh"
)

// BoundaryVariable distinguishes flow-rate and stage boundaries.
type BoundaryVariable uint8

const (
	VariableQ BoundaryVariable = iota
	VariableH
)

// BoundaryCondition owns a selection and a functor and writes the two
// interval samples into the matching boundary vector. When several
// conditions target one cell, the last configured writer wins.
type BoundaryCondition struct {
	name     string
	variable BoundaryVariable
	modifier *functor.Modifier
	functor  functor.Functor
}

func (bc *BoundaryCondition) Name() string {
	return bc.name
}

func (bc *BoundaryCondition) Variable() BoundaryVariable {
	return bc.variable
}

// Update samples the functor at the interval endpoints into the
// boundary vector's two slots.
func (bc *BoundaryCondition) Update(s *Solver, t0, t1 float64) {
	var target *field.Vector[float32]
	if bc.variable == VariableQ {
		target = s.QIn()
	} else {
		target = s.HIn()
	}
	bc.modifier.Modify(functor.Set, bc.functor, t0, target.At(0))
	bc.modifier.Modify(functor.Set, bc.functor, t1, target.At(1))
}

// NewBoundaryCondition reads one `boundary` block: the value is the
// kind (source or depth), `selection` the target cells, and `values`
// the functor.
func NewBoundaryCondition(s *Solver, conf *config.Config) (*BoundaryCondition, error) {
	kind := strings.ToLower(conf.Value())
	name, err := conf.GetString("name")
	if err != nil {
		return nil, err
	}

	selConf := config.New()
	if sc, ok := conf.Child("selection"); ok {
		selConf = sc
	}
	sel, err := field.NewSelection(s.queue, s.mesh, mesh.Cell, selConf, s.ctx.BasePath)
	if err != nil {
		return nil, err
	}

	valuesConf, ok := conf.Child("values")
	if !ok {
		return nil, fault.New(fault.ConfigurationError,
			"boundary %q has no values block", name)
	}
	fn, err := functor.New(s.ctx, valuesConf, valuesConf.String("operation", "mean"))
	if err != nil {
		return nil, err
	}

	bc := &BoundaryCondition{
		name:    name,
		functor: fn,
		modifier: functor.NewModifierDirect(name, sel, 0.0, 1.0,
			float32(-math.MaxFloat32), float32(math.MaxFloat32),
			float32(-math.MaxFloat32)),
	}
	switch kind {
	case "source":
		bc.variable = VariableQ
	case "depth":
		bc.variable = VariableH
	default:
		return nil, fault.New(fault.ConfigurationError, "unknown boundary type: %s", kind)
	}
	return bc, nil
}

// NewBoundaryConditions builds every `boundary` block in
// configuration order.
func NewBoundaryConditions(s *Solver) ([]*BoundaryCondition, error) {
	log.Info("Initialising boundary conditions...")
	var bcs []*BoundaryCondition
	var err error
	s.ctx.Conf.Each("boundary", func(node *config.Config) {
		if err != nil {
			return
		}
		var bc *BoundaryCondition
		bc, err = NewBoundaryCondition(s, node)
		if err == nil {
			bcs = append(bcs, bc)
		}
	})
	if err != nil {
		return nil, err
	}
	log.Infof("Initialised %d boundary conditions.", len(bcs))
	return bcs, nil
}
