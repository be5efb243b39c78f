package functor

import (
	"math"
	"strings"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/device"
	"github.com/watercourse/gosv/fault"
	"github.com/watercourse/gosv/field"
	"github.com/watercourse/gosv/mesh"
)

// Op combines a functor value with the existing field value.
type Op uint8

const (
	Set Op = iota
	Add
	Multiply
)

func (op Op) apply(existing, value float32) float32 {
	switch op {
	case Add:
		return existing + value
	case Multiply:
		return existing * value
	}
	return value
}

type IntegrationType uint8

const (
	Centroid IntegrationType = iota
	Box
)

// Modifier applies op(existing, clamp(offset + factor·v, min, max)) to
// every cell of a selection, sampling v at the centroid or reducing it
// over the cell's box footprint. NaN and nodata functor values leave
// the field untouched.
type Modifier struct {
	name        string
	sel         field.Selection
	offset      float32
	factor      float32
	min         float32
	max         float32
	nodata      float32
	integration IntegrationType
	boxSize     [2]float64
}

// NewModifier parses a modifier configuration block. The selection
// defaults to global and the box size to the mesh cell size.
func NewModifier(queue *device.Queue, m *mesh.Cartesian2D, fm mesh.Mapping,
	conf *config.Config, basePath string) (*Modifier, error) {
	selConf := config.New()
	if sc, ok := conf.Child("selection"); ok {
		selConf = sc
	}
	sel, err := field.NewSelection(queue, m, fm, selConf, basePath)
	if err != nil {
		return nil, err
	}

	fm2 := &Modifier{
		name:    conf.String("name", "anon"),
		sel:     sel,
		offset:  float32(conf.Float("offset", 0.0)),
		factor:  float32(conf.Float("factor", 1.0)),
		min:     float32(conf.Float("minimum", -math.MaxFloat32)),
		max:     float32(conf.Float("maximum", math.MaxFloat32)),
		nodata:  float32(conf.Float("nodata", -9999.0)),
		boxSize: [2]float64{m.CellSize()[0], m.CellSize()[1]},
	}

	switch strings.ToLower(conf.String("integration type", "centroid")) {
	case "centroid":
		fm2.integration = Centroid
	case "box":
		fm2.integration = Box
		if bs := conf.String("box size", ""); bs != "" {
			vals, err := config.SplitFloats(bs, 2)
			if err != nil {
				return nil, err
			}
			fm2.boxSize = [2]float64{vals[0], vals[1]}
		}
	default:
		return nil, fault.New(fault.ConfigurationError,
			"unknown integration type: %s", conf.String("integration type", ""))
	}
	return fm2, nil
}

// NewModifierDirect builds a modifier without configuration; boundary
// conditions and the boundary reset use this.
func NewModifierDirect(name string, sel field.Selection,
	offset, factor, min, max, nodata float32) *Modifier {
	return &Modifier{
		name:   name,
		sel:    sel,
		offset: offset,
		factor: factor,
		min:    min,
		max:    max,
		nodata: nodata,
	}
}

func (fm *Modifier) Name() string              { return fm.name }
func (fm *Modifier) Selection() field.Selection { return fm.sel }

func (fm *Modifier) value(f Functor, t float64, m *mesh.Cartesian2D,
	mapping mesh.Mapping, id uint64) (float32, bool) {
	coord := m.ObjectCoordinate(mapping, id)
	var v float32
	switch fm.integration {
	case Box:
		v = f.AtBox(t, coord, fm.boxSize, fm.nodata)
	default:
		v = f.At(t, coord, fm.nodata)
	}
	if math.IsNaN(float64(v)) || v == fm.nodata {
		return 0, false
	}
	cv := fm.offset + fm.factor*v
	if cv < fm.min {
		cv = fm.min
	}
	if cv > fm.max {
		cv = fm.max
	}
	return cv, true
}

// Modify applies the functor to the target field. Host-only functors
// are evaluated in index order on the host, preserving their draw
// sequence; everything else runs as a data-parallel submission.
func (fm *Modifier) Modify(op Op, f Functor, t float64, target *field.Field[float32]) {
	m := target.Mesh()
	mapping := target.Mapping()

	if f.HostOnly() {
		wasOnDevice := target.IsOnDevice()
		if wasOnDevice {
			target.MoveToHost()
		}
		host := target.Data()
		if fm.sel.IsGlobal() {
			for i := range host {
				if v, ok := fm.value(f, t, m, mapping, uint64(i)); ok {
					host[i] = op.apply(host[i], v)
				}
			}
		} else {
			for _, id := range fm.sel.List() {
				if v, ok := fm.value(f, t, m, mapping, id); ok {
					host[id] = op.apply(host[id], v)
				}
			}
		}
		if wasOnDevice {
			target.MoveToDevice()
		}
		return
	}

	queue := target.Queue()
	data := target.Data()
	if fm.sel.IsGlobal() {
		queue.ParallelFor(len(data), func(i int) {
			if v, ok := fm.value(f, t, m, mapping, uint64(i)); ok {
				data[i] = op.apply(data[i], v)
			}
		})
		return
	}
	list := fm.sel.List()
	queue.ParallelFor(len(list), func(i int) {
		id := list[i]
		if v, ok := fm.value(f, t, m, mapping, id); ok {
			data[id] = op.apply(data[id], v)
		}
	})
}

// SetNaN marks the selected entries of a field as inactive.
func SetNaN(sel field.Selection, target *field.Field[float32]) {
	data := target.Data()
	nan := float32(math.NaN())
	if sel.IsGlobal() {
		target.Queue().ParallelFor(len(data), func(i int) {
			data[i] = nan
		})
		return
	}
	list := sel.List()
	target.Queue().ParallelFor(len(list), func(i int) {
		data[list[i]] = nan
	})
}
