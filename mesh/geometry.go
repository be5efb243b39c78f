package mesh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/fault"
)

// CellGeometry is the closed rectangle around a cell, wound
// sw → nw → ne → se → sw.
func (m *Cartesian2D) CellGeometry(id uint64) geom.Polygon {
	ix, iy := m.CellIndex(id)
	v := m.VerticesAroundCell(ix, iy)
	sw := m.VertexCoord(v[0])
	se := m.VertexCoord(v[1])
	nw := m.VertexCoord(v[2])
	ne := m.VertexCoord(v[3])
	return geom.Polygon{{
		{X: sw[0], Y: sw[1]},
		{X: nw[0], Y: nw[1]},
		{X: ne[0], Y: ne[1]},
		{X: se[0], Y: se[1]},
		{X: sw[0], Y: sw[1]},
	}}
}

// ObjectWKT renders the geometry of a mesh object: POLYGON for cells,
// LINESTRING for faces, POINT for vertices.
func (m *Cartesian2D) ObjectWKT(fm Mapping, id uint64) string {
	switch fm {
	case Cell:
		poly := m.CellGeometry(id)
		var b strings.Builder
		b.WriteString("POLYGON ((")
		for i, pt := range poly[0] {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fmtCoord(pt.X))
			b.WriteString(" ")
			b.WriteString(fmtCoord(pt.Y))
		}
		b.WriteString("))")
		return b.String()
	case Face:
		v := m.VerticesAroundFace(id)
		p0 := m.VertexCoord(v[0])
		p1 := m.VertexCoord(v[1])
		return fmt.Sprintf("LINESTRING (%s %s, %s %s)",
			fmtCoord(p0[0]), fmtCoord(p0[1]), fmtCoord(p1[0]), fmtCoord(p1[1]))
	default:
		p := m.VertexCoord(id)
		return fmt.Sprintf("POINT (%s %s)", fmtCoord(p[0]), fmtCoord(p[1]))
	}
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ReadGeometries collects the geometries named by a selection
// configuration: any number of inline `wkt` strings plus optional
// `shapefile` sources resolved against the simulation base path.
func ReadGeometries(conf *config.Config, basePath string) ([]geom.Geom, error) {
	var gc []geom.Geom

	var wktErr error
	conf.Each("wkt", func(node *config.Config) {
		if wktErr != nil {
			return
		}
		g, err := ParseWKT(node.Value())
		if err != nil {
			wktErr = err
			return
		}
		gc = append(gc, g...)
	})
	if wktErr != nil {
		return nil, wktErr
	}

	var shpErr error
	conf.Each("shapefile", func(node *config.Config) {
		if shpErr != nil {
			return
		}
		path := node.Value()
		if !strings.HasPrefix(path, "/") && basePath != "" {
			path = basePath + "/" + path
		}
		dec, err := shp.NewDecoder(path)
		if err != nil {
			shpErr = fault.Wrap(fault.IOFailure, err, "cannot open shapefile %s", path)
			return
		}
		defer dec.Close()
		for {
			g, _, more := dec.DecodeRowFields()
			if !more {
				break
			}
			gc = append(gc, g)
		}
		if err := dec.Error(); err != nil {
			shpErr = fault.Wrap(fault.IOFailure, err, "error reading shapefile %s", path)
		}
	})
	if shpErr != nil {
		return nil, shpErr
	}

	return gc, nil
}

// ParseWKT reads one well-known-text geometry string. Points,
// multipoints, linestrings, polygons and multipolygons are understood;
// anything else is an UnsupportedGeometry failure.
func ParseWKT(s string) ([]geom.Geom, error) {
	p := &wktParser{in: s}
	p.skipSpace()
	tag := strings.ToUpper(p.ident())
	p.skipSpace()
	switch tag {
	case "POINT":
		pt, err := p.point()
		if err != nil {
			return nil, err
		}
		return []geom.Geom{pt}, p.end()
	case "MULTIPOINT":
		mp, err := p.multiPoint()
		if err != nil {
			return nil, err
		}
		return []geom.Geom{mp}, p.end()
	case "LINESTRING":
		ring, err := p.ring()
		if err != nil {
			return nil, err
		}
		ls := make(geom.LineString, len(ring))
		copy(ls, ring)
		return []geom.Geom{ls}, p.end()
	case "POLYGON":
		poly, err := p.polygon()
		if err != nil {
			return nil, err
		}
		return []geom.Geom{poly}, p.end()
	case "MULTIPOLYGON":
		mp, err := p.multiPolygon()
		if err != nil {
			return nil, err
		}
		return []geom.Geom{mp}, p.end()
	}
	return nil, fault.New(fault.UnsupportedGeometry, "geometry of type %q is not supported", tag)
}

type wktParser struct {
	in  string
	pos int
}

func (p *wktParser) skipSpace() {
	for p.pos < len(p.in) && (p.in[p.pos] == ' ' || p.in[p.pos] == '\t' ||
		p.in[p.pos] == '\n' || p.in[p.pos] == '\r') {
		p.pos++
	}
}

func (p *wktParser) ident() string {
	start := p.pos
	for p.pos < len(p.in) {
		c := p.in[p.pos]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			p.pos++
		} else {
			break
		}
	}
	return p.in[start:p.pos]
}

func (p *wktParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.in) || p.in[p.pos] != c {
		return fault.New(fault.IOFailure, "failed to parse WKT near %q", p.in[p.pos:])
	}
	p.pos++
	return nil
}

func (p *wktParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.in) {
		return 0
	}
	return p.in[p.pos]
}

func (p *wktParser) end() error {
	p.skipSpace()
	if p.pos != len(p.in) {
		return fault.New(fault.IOFailure, "trailing input in WKT: %q", p.in[p.pos:])
	}
	return nil
}

func (p *wktParser) number() (float64, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.in) {
		c := p.in[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			p.pos++
		} else {
			break
		}
	}
	if start == p.pos {
		return 0, fault.New(fault.IOFailure, "expected number in WKT near %q", p.in[start:])
	}
	v, err := strconv.ParseFloat(p.in[start:p.pos], 64)
	if err != nil {
		return 0, fault.Wrap(fault.IOFailure, err, "bad number in WKT")
	}
	return v, nil
}

func (p *wktParser) coord() (geom.Point, error) {
	x, err := p.number()
	if err != nil {
		return geom.Point{}, err
	}
	y, err := p.number()
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: x, Y: y}, nil
}

// point parses "( x y )".
func (p *wktParser) point() (geom.Point, error) {
	if err := p.expect('('); err != nil {
		return geom.Point{}, err
	}
	pt, err := p.coord()
	if err != nil {
		return geom.Point{}, err
	}
	return pt, p.expect(')')
}

// ring parses "( x y, x y, ... )".
func (p *wktParser) ring() ([]geom.Point, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var pts []geom.Point
	for {
		pt, err := p.coord()
		if err != nil {
			return nil, err
		}
		pts = append(pts, pt)
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	return pts, p.expect(')')
}

// multiPoint accepts both "(x y, x y)" and "((x y), (x y))".
func (p *wktParser) multiPoint() (geom.MultiPoint, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var mp geom.MultiPoint
	for {
		var pt geom.Point
		var err error
		if p.peek() == '(' {
			pt, err = p.point()
		} else {
			pt, err = p.coord()
		}
		if err != nil {
			return nil, err
		}
		mp = append(mp, pt)
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	return mp, p.expect(')')
}

// polygon parses "((ring), (ring), ...)".
func (p *wktParser) polygon() (geom.Polygon, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var poly geom.Polygon
	for {
		ring, err := p.ring()
		if err != nil {
			return nil, err
		}
		poly = append(poly, ring)
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	return poly, p.expect(')')
}

func (p *wktParser) multiPolygon() (geom.MultiPolygon, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var mp geom.MultiPolygon
	for {
		poly, err := p.polygon()
		if err != nil {
			return nil, err
		}
		mp = append(mp, poly)
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	return mp, p.expect(')')
}
