package solver

import (
	"github.com/watercourse/gosv/fault"
	"github.com/watercourse/gosv/field"
	"github.com/watercourse/gosv/mesh"
	"github.com/watercourse/gosv/output"
)

// fieldFunction exposes a set of same-mapped fields as an output
// variable with the mesh geometry of its mapping.
type fieldFunction struct {
	name    string
	mesh    *mesh.Cartesian2D
	mapping mesh.Mapping
	fields  []*field.Field[float32]
}

func newFieldFunction(name string, mapping mesh.Mapping,
	fields ...*field.Field[float32]) *fieldFunction {
	return &fieldFunction{
		name:    name,
		mesh:    fields[0].Mesh(),
		mapping: mapping,
		fields:  fields,
	}
}

func (f *fieldFunction) Name() string {
	return f.name
}

func (f *fieldFunction) Size() int {
	return int(f.mesh.ObjectCount(f.mapping))
}

func (f *fieldFunction) Coordinates(i int) [2]float64 {
	return f.mesh.ObjectCoordinate(f.mapping, uint64(i))
}

func (f *fieldFunction) WKT(i int) string {
	return f.mesh.ObjectWKT(f.mapping, uint64(i))
}

func (f *fieldFunction) Values(i int) []float32 {
	vals := make([]float32, len(f.fields))
	for j, fld := range f.fields {
		vals[j] = fld.Data()[i]
	}
	return vals
}

// isNaNFunction reports cell activity: 1 where the probe field is
// NaN, 0 elsewhere.
type isNaNFunction struct {
	*fieldFunction
}

func (f *isNaNFunction) Values(i int) []float32 {
	if isNaN32(f.fields[0].Data()[i]) {
		return []float32{1}
	}
	return []float32{0}
}

// OutputFunction resolves a configured variable name against the
// current state.
func (s *Solver) OutputFunction(name string, U *field.Vector[float32]) (output.Function, error) {
	switch name {
	case "depth":
		return newFieldFunction("depth", mesh.Cell, U.At(0)), nil
	case "stage":
		stage, err := field.Sum[float32, float32]("stage", s.zbed.At(0), U.At(0))
		if err != nil {
			return nil, err
		}
		return newFieldFunction("stage", mesh.Cell, stage, s.zbed.At(0), U.At(0)), nil
	case "component velocity":
		return newFieldFunction("component velocity", mesh.Cell, U.At(1), U.At(2)), nil
	case "huv":
		return newFieldFunction("huv", mesh.Cell, U.At(0), U.At(1), U.At(2)), nil
	case "active cells":
		return &isNaNFunction{newFieldFunction("active cells", mesh.Cell, s.zbed.At(0))}, nil
	case "debug boundaries":
		return newFieldFunction("debug boundaries", mesh.Cell,
			s.qIn.At(0), s.qIn.At(1), s.hIn.At(0), s.hIn.At(1)), nil
	case "debug slopes":
		return newFieldFunction("debug slopes", mesh.Cell,
			s.dUdx.At(0), s.dUdx.At(1), s.dUdx.At(2),
			s.dUdy.At(0), s.dUdy.At(1), s.dUdy.At(2)), nil
	case "debug fluxes":
		return newFieldFunction("debug fluxes", mesh.Face,
			s.flux.At(0), s.flux.At(1), s.flux.At(2), s.flux.At(3)), nil
	}
	return nil, fault.New(fault.ConfigurationError, "unknown output function type: %s", name)
}

// WriteCheckFiles dumps the mesh, cell activity and cell constants to
// the check directory, subject to the check/no check protocol.
func (s *Solver) WriteCheckFiles() error {
	checkPath := s.ctx.CheckFilePath()

	if conf, ok := s.ctx.WriteCheckFile("mesh"); ok {
		if err := s.mesh.WriteCheckFile(checkPath, conf); err != nil {
			return err
		}
	}
	if _, ok := s.ctx.WriteCheckFile("active"); ok {
		format := output.NewCSVFormat(output.WKT, checkPath)
		fn := &isNaNFunction{newFieldFunction("active cells", mesh.Cell, s.zbed.At(0))}
		if err := format.Output(fn, "init"); err != nil {
			return err
		}
	}
	if _, ok := s.ctx.WriteCheckFile("cell constants"); ok {
		format := output.NewCSVFormat(output.WKT, checkPath)
		fn := newFieldFunction("cell constants", mesh.Cell,
			s.zbed.At(0), s.zbed.At(1), s.zbed.At(2),
			s.manning.At(0), s.manning.At(1), s.manning.At(2), s.manning.At(3))
		if err := format.Output(fn, "const"); err != nil {
			return err
		}
	}
	return nil
}
