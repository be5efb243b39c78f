// Package mesh provides the uniform 2-D Cartesian mesh: object counts,
// purely arithmetic adjacency between cells, faces and vertices, and
// polygon rasterisation for selections. Faces are ordered vertical
// first (cells left/right) then horizontal (cells below/above); a face
// on the mesh edge reports the sentinel neighbour FaceCount().
package mesh

import (
	"math"

	"github.com/ctessum/geom"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/fault"
)

// Mapping identifies the mesh object kind a field is indexed by.
type Mapping uint8

const (
	Cell Mapping = iota
	Face
	Vertex
)

func (m Mapping) String() string {
	switch m {
	case Cell:
		return "cell"
	case Face:
		return "face"
	case Vertex:
		return "vertex"
	}
	return "unknown"
}

type Cartesian2D struct {
	ncells   [2]uint64
	origin   [2]float64
	cellSize [2]float64
}

// NewCartesian2D reads `cell count`, `origin` and `cell size` from a
// mesh configuration block.
func NewCartesian2D(conf *config.Config) (*Cartesian2D, error) {
	m := &Cartesian2D{}

	cc, err := conf.GetString("cell count")
	if err != nil {
		return nil, err
	}
	counts, err := config.SplitUints(cc)
	if err != nil {
		return nil, err
	}
	if len(counts) != 2 {
		return nil, fault.New(fault.ConfigurationError,
			"expected 2 components in cell count %q", cc)
	}
	m.ncells = [2]uint64{counts[0], counts[1]}

	org, err := conf.GetString("origin")
	if err != nil {
		return nil, err
	}
	ov, err := config.SplitFloats(org, 2)
	if err != nil {
		return nil, err
	}
	m.origin = [2]float64{ov[0], ov[1]}

	cs, err := conf.GetString("cell size")
	if err != nil {
		return nil, err
	}
	sv, err := config.SplitFloats(cs, 2)
	if err != nil {
		return nil, err
	}
	m.cellSize = [2]float64{sv[0], sv[1]}

	if m.ncells[0] == 0 || m.ncells[1] == 0 {
		return nil, fault.New(fault.ConfigurationError, "mesh has zero cells")
	}
	if m.cellSize[0] <= 0 || m.cellSize[1] <= 0 {
		return nil, fault.New(fault.ConfigurationError, "mesh cell size must be positive")
	}
	return m, nil
}

// NewCartesian2DFromExtents builds a mesh directly; used by tests.
func NewCartesian2DFromExtents(nx, ny uint64, x0, y0, dx, dy float64) *Cartesian2D {
	return &Cartesian2D{
		ncells:   [2]uint64{nx, ny},
		origin:   [2]float64{x0, y0},
		cellSize: [2]float64{dx, dy},
	}
}

func (m *Cartesian2D) CellIndexSize() [2]uint64 { return m.ncells }
func (m *Cartesian2D) Origin() [2]float64       { return m.origin }
func (m *Cartesian2D) CellSize() [2]float64     { return m.cellSize }

func (m *Cartesian2D) ObjectCount(fm Mapping) uint64 {
	switch fm {
	case Cell:
		return m.ncells[0] * m.ncells[1]
	case Face:
		return (m.ncells[0]+1)*m.ncells[1] + m.ncells[0]*(m.ncells[1]+1)
	case Vertex:
		return (m.ncells[0] + 1) * (m.ncells[1] + 1)
	}
	return 0
}

func (m *Cartesian2D) CellCount() uint64   { return m.ObjectCount(Cell) }
func (m *Cartesian2D) FaceCount() uint64   { return m.ObjectCount(Face) }
func (m *Cartesian2D) VertexCount() uint64 { return m.ObjectCount(Vertex) }

// verticalFaceCount is the id past which faces are horizontal.
func (m *Cartesian2D) verticalFaceCount() uint64 {
	return (m.ncells[0] + 1) * m.ncells[1]
}

// FaceIsVertical reports whether the face carries flow in x.
func (m *Cartesian2D) FaceIsVertical(fid uint64) bool {
	return fid < m.verticalFaceCount()
}

func (m *Cartesian2D) CellIndex(linear uint64) (ix, iy uint64) {
	return linear % m.ncells[0], linear / m.ncells[0]
}

func (m *Cartesian2D) CellLinearID(ix, iy uint64) uint64 {
	return iy*m.ncells[0] + ix
}

func (m *Cartesian2D) VertexIndex(linear uint64) (ix, iy uint64) {
	return linear % (m.ncells[0] + 1), linear / (m.ncells[0] + 1)
}

func (m *Cartesian2D) CellCentre(ix, iy uint64) [2]float64 {
	return [2]float64{
		m.origin[0] + (float64(ix)+0.5)*m.cellSize[0],
		m.origin[1] + (float64(iy)+0.5)*m.cellSize[1],
	}
}

func (m *Cartesian2D) FaceCentre(fid uint64) [2]float64 {
	if m.FaceIsVertical(fid) {
		fy := fid / (m.ncells[0] + 1)
		fx := fid % (m.ncells[0] + 1)
		return [2]float64{
			m.origin[0] + float64(fx)*m.cellSize[0],
			m.origin[1] + (float64(fy)+0.5)*m.cellSize[1],
		}
	}
	local := fid - m.verticalFaceCount()
	fy := local / m.ncells[0]
	fx := local % m.ncells[0]
	return [2]float64{
		m.origin[0] + (float64(fx)+0.5)*m.cellSize[0],
		m.origin[1] + float64(fy)*m.cellSize[1],
	}
}

func (m *Cartesian2D) VertexCoord(vid uint64) [2]float64 {
	vx, vy := m.VertexIndex(vid)
	return [2]float64{
		m.origin[0] + float64(vx)*m.cellSize[0],
		m.origin[1] + float64(vy)*m.cellSize[1],
	}
}

// ObjectCoordinate returns the centroid for cells, the midpoint for
// faces and the point itself for vertices.
func (m *Cartesian2D) ObjectCoordinate(fm Mapping, id uint64) [2]float64 {
	switch fm {
	case Cell:
		ix, iy := m.CellIndex(id)
		return m.CellCentre(ix, iy)
	case Face:
		return m.FaceCentre(id)
	default:
		return m.VertexCoord(id)
	}
}

// CellsAroundFace returns the (lhs, rhs) neighbours of a face, reading
// left/right for vertical faces and below/above for horizontal faces.
// An absent neighbour is the sentinel FaceCount().
func (m *Cartesian2D) CellsAroundFace(fid uint64) [2]uint64 {
	sentinel := m.FaceCount()
	var result [2]uint64

	if m.FaceIsVertical(fid) {
		fy := fid / (m.ncells[0] + 1)
		fx := fid % (m.ncells[0] + 1)
		if fx < m.ncells[0] {
			result[1] = m.CellLinearID(fx, fy)
			if fx > 0 {
				result[0] = m.CellLinearID(fx-1, fy)
			} else {
				result[0] = sentinel
			}
		} else {
			result[0] = m.CellLinearID(fx-1, fy)
			result[1] = sentinel
		}
		return result
	}

	local := fid - m.verticalFaceCount()
	fy := local / m.ncells[0]
	fx := local % m.ncells[0]
	if fy < m.ncells[1] {
		result[1] = m.CellLinearID(fx, fy)
		if fy > 0 {
			result[0] = m.CellLinearID(fx, fy-1)
		} else {
			result[0] = sentinel
		}
	} else {
		result[0] = m.CellLinearID(fx, fy-1)
		result[1] = sentinel
	}
	return result
}

func (m *Cartesian2D) VerticesAroundFace(fid uint64) [2]uint64 {
	if m.FaceIsVertical(fid) {
		fy := fid / (m.ncells[0] + 1)
		fx := fid % (m.ncells[0] + 1)
		v0 := fy*(m.ncells[0]+1) + fx
		return [2]uint64{v0 + (m.ncells[0] + 1), v0}
	}
	local := fid - m.verticalFaceCount()
	fy := local / m.ncells[0]
	fx := local % m.ncells[0]
	return [2]uint64{
		fy*(m.ncells[0]+1) + fx,
		fy*(m.ncells[0]+1) + fx + 1,
	}
}

// FacesAroundCell returns (W, E, S, N). The order is part of the public
// contract.
func (m *Cartesian2D) FacesAroundCell(ix, iy uint64) [4]uint64 {
	w := iy*(m.ncells[0]+1) + ix
	e := w + 1
	s := m.verticalFaceCount() + iy*m.ncells[0] + ix
	n := s + m.ncells[0]
	return [4]uint64{w, e, s, n}
}

// VerticesAroundCell returns (SW, SE, NW, NE).
func (m *Cartesian2D) VerticesAroundCell(ix, iy uint64) [4]uint64 {
	sw := iy*(m.ncells[0]+1) + ix
	se := sw + 1
	nw := sw + (m.ncells[0] + 1)
	ne := nw + 1
	return [4]uint64{sw, se, nw, ne}
}

// NearestObject returns the id of the object nearest to loc, clamped to
// the mesh interior.
func (m *Cartesian2D) NearestObject(fm Mapping, loc [2]float64) uint64 {
	switch fm {
	case Cell:
		ix := m.clampIndex((loc[0]-m.origin[0])/m.cellSize[0], m.ncells[0])
		iy := m.clampIndex((loc[1]-m.origin[1])/m.cellSize[1], m.ncells[1])
		return m.CellLinearID(ix, iy)
	case Vertex:
		vx := m.clampIndex((loc[0]-m.origin[0])/m.cellSize[0]+0.5, m.ncells[0]+1)
		vy := m.clampIndex((loc[1]-m.origin[1])/m.cellSize[1]+0.5, m.ncells[1]+1)
		return vy*(m.ncells[0]+1) + vx
	case Face:
		return m.nearestFace(loc)
	}
	return m.ObjectCount(fm)
}

func (m *Cartesian2D) clampIndex(idx float64, n uint64) uint64 {
	if idx < 0 || math.IsNaN(idx) {
		return 0
	}
	i := uint64(idx)
	if i >= n {
		return n - 1
	}
	return i
}

func (m *Cartesian2D) nearestFace(loc [2]float64) uint64 {
	// Nearest vertical face
	vx := m.clampIndex((loc[0]-m.origin[0])/m.cellSize[0]+0.5, m.ncells[0]+1)
	vy := m.clampIndex((loc[1]-m.origin[1])/m.cellSize[1], m.ncells[1])
	vfid := vy*(m.ncells[0]+1) + vx

	// Nearest horizontal face
	hx := m.clampIndex((loc[0]-m.origin[0])/m.cellSize[0], m.ncells[0])
	hy := m.clampIndex((loc[1]-m.origin[1])/m.cellSize[1]+0.5, m.ncells[1]+1)
	hfid := m.verticalFaceCount() + hy*m.ncells[0] + hx

	vc := m.FaceCentre(vfid)
	hc := m.FaceCentre(hfid)
	dv := (loc[0]-vc[0])*(loc[0]-vc[0]) + (loc[1]-vc[1])*(loc[1]-vc[1])
	dh := (loc[0]-hc[0])*(loc[0]-hc[0]) + (loc[1]-hc[1])*(loc[1]-hc[1])
	if dv <= dh {
		return vfid
	}
	return hfid
}

// EachCellWithin streams the ids of cells whose centre lies inside the
// polygon's outer ring, using scanline conversion: per row, the x
// intersections of the row's centre line with the ring edges are
// collected, bubble-sorted and emitted as even-odd interior spans of
// the columns whose centres fall in them. Row crossing uses the
// half-open `>=`/`<` rule so a vertex on a row line counts once. With inverted
// set the complement of the interior is emitted instead.
func (m *Cartesian2D) EachCellWithin(poly geom.Polygon, inverted bool, fn func(id uint64)) error {
	if len(poly) != 1 {
		return fault.New(fault.UnsupportedGeometry, "polygons with holes are not supported")
	}
	ring := poly[0]
	if len(ring) < 3 {
		// Sliver polygon selects no cells
		return nil
	}

	nx := m.ncells[0]
	for yi := uint64(0); yi < m.ncells[1]; yi++ {
		var nodes []uint64
		j := len(ring) - 1
		for i := 0; i < len(ring); i++ {
			viy := (ring[i].Y - m.origin[1]) / m.cellSize[1]
			vjy := (ring[j].Y - m.origin[1]) / m.cellSize[1]
			fy := float64(yi) + 0.5
			if (viy < fy && vjy >= fy) || (vjy < fy && viy >= fy) {
				vix := (ring[i].X - m.origin[0]) / m.cellSize[0]
				vjx := (ring[j].X - m.origin[0]) / m.cellSize[0]
				x := vix + (fy-viy)/(vjy-viy)*(vjx-vix)
				// First column whose centre is at or right of the crossing
				x = math.Ceil(x - 0.5)
				if x < 0 {
					x = 0
				}
				nodes = append(nodes, uint64(x))
			}
			j = i
		}

		if len(nodes) == 0 {
			if inverted {
				for xi := uint64(0); xi < nx; xi++ {
					fn(yi*nx + xi)
				}
			}
			continue
		}

		// Bubble sort the intersection list
		for i := 0; i < len(nodes)-1; {
			if nodes[i] > nodes[i+1] {
				nodes[i], nodes[i+1] = nodes[i+1], nodes[i]
				if i > 0 {
					i--
				}
			} else {
				i++
			}
		}

		if inverted {
			for xi := uint64(0); xi < nx; xi++ {
				within := false
				for i := 0; i+1 < len(nodes); i += 2 {
					if xi >= nodes[i] && xi < nodes[i+1] {
						within = true
						break
					}
				}
				if !within {
					fn(yi*nx + xi)
				}
			}
			continue
		}

		for i := 0; i+1 < len(nodes); i += 2 {
			if nodes[i] >= nx {
				break
			}
			hi := nodes[i+1]
			if hi > nx {
				hi = nx
			}
			for xi := nodes[i]; xi < hi; xi++ {
				fn(yi*nx + xi)
			}
		}
	}
	return nil
}
