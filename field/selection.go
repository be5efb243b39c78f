package field

import (
	"sort"

	"github.com/ctessum/geom"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/device"
	"github.com/watercourse/gosv/fault"
	"github.com/watercourse/gosv/mesh"
)

// Selection names a subset of one mapping's objects: either the whole
// mapping (global) or an immutable sorted, de-duplicated id list built
// from ids, coordinates or GIS geometry.
type Selection struct {
	mesh    *mesh.Cartesian2D
	mapping mesh.Mapping
	list    *DataArray[uint64] // nil means global
}

// GlobalSelection covers every object of the mapping.
func GlobalSelection(m *mesh.Cartesian2D, fm mesh.Mapping) Selection {
	return Selection{mesh: m, mapping: fm}
}

// NewSelection builds a selection from a configuration block. An empty
// block is a global selection. basePath anchors relative shapefile
// paths.
func NewSelection(queue *device.Queue, m *mesh.Cartesian2D, fm mesh.Mapping,
	conf *config.Config, basePath string) (Selection, error) {
	sel := Selection{mesh: m, mapping: fm}

	kind := conf.Value()
	if kind == "" || kind == "global" {
		return sel, nil
	}

	idmax := m.ObjectCount(fm)
	var ids []uint64

	switch kind {
	case "id list":
		var err error
		conf.Each("id", func(node *config.Config) {
			if err != nil {
				return
			}
			local, serr := config.SplitUints(node.Value())
			if serr != nil {
				err = serr
				return
			}
			for _, id := range local {
				if id >= idmax {
					err = fault.New(fault.ConfigurationError,
						"cannot select ID outside mesh (%d)", id)
					return
				}
				ids = append(ids, id)
			}
		})
		if err != nil {
			return Selection{}, err
		}

	case "location list":
		var err error
		conf.Each("at", func(node *config.Config) {
			if err != nil {
				return
			}
			loc, serr := config.SplitFloats(node.Value(), 2)
			if serr != nil {
				err = serr
				return
			}
			ids = append(ids, m.NearestObject(fm, [2]float64{loc[0], loc[1]}))
		})
		if err != nil {
			return Selection{}, err
		}

	case "gis":
		gc, err := mesh.ReadGeometries(conf, basePath)
		if err != nil {
			return Selection{}, err
		}
		ids, err = selectGeometries(m, fm, gc, conf.Bool("inverted", false))
		if err != nil {
			return Selection{}, err
		}

	default:
		return Selection{}, fault.New(fault.ConfigurationError,
			"unknown selection method: %s", kind)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	ids = dedup(ids)
	sel.list = NewDataArrayFrom(queue, ids)
	sel.list.MoveToDevice()
	return sel, nil
}

func dedup(ids []uint64) []uint64 {
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}

func selectGeometries(m *mesh.Cartesian2D, fm mesh.Mapping,
	gc []geom.Geom, inverted bool) ([]uint64, error) {
	var ids []uint64
	appendID := func(id uint64) { ids = append(ids, id) }

	if inverted {
		// Inversion needs exactly one polygon, possibly wrapped in a
		// one-element multipolygon.
		if len(gc) == 1 {
			switch g := gc[0].(type) {
			case geom.Polygon:
				if err := m.EachCellWithin(g, true, appendID); err != nil {
					return nil, err
				}
				return ids, nil
			case geom.MultiPolygon:
				if len(g) == 1 {
					if err := m.EachCellWithin(g[0], true, appendID); err != nil {
						return nil, err
					}
					return ids, nil
				}
				return nil, fault.New(fault.InvalidInversion,
					"cannot invert with multipolygon geometry containing more than one polygon")
			}
		}
		return nil, fault.New(fault.InvalidInversion, "cannot invert non-polygon geometry")
	}

	for _, g := range gc {
		switch g := g.(type) {
		case geom.Point:
			ids = append(ids, m.NearestObject(fm, [2]float64{g.X, g.Y}))
		case geom.MultiPoint:
			for _, pt := range g {
				ids = append(ids, m.NearestObject(fm, [2]float64{pt.X, pt.Y}))
			}
		case geom.Polygon:
			if err := m.EachCellWithin(g, false, appendID); err != nil {
				return nil, err
			}
		case geom.MultiPolygon:
			for _, poly := range g {
				if err := m.EachCellWithin(poly, false, appendID); err != nil {
					return nil, err
				}
			}
		default:
			return nil, fault.New(fault.UnsupportedGeometry,
				"geometry of type %T is not supported", g)
		}
	}
	return ids, nil
}

func (s Selection) IsGlobal() bool {
	return s.list == nil
}

func (s Selection) Mapping() mesh.Mapping {
	return s.mapping
}

func (s Selection) Size() uint64 {
	if s.list != nil {
		return uint64(s.list.Size())
	}
	return s.mesh.ObjectCount(s.mapping)
}

// List borrows the id list; nil for a global selection.
func (s Selection) List() []uint64 {
	if s.list == nil {
		return nil
	}
	return s.list.Data()
}
