package mesh

import (
	"sort"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watercourse/gosv/config"
)

func testMesh(t *testing.T, nx, ny uint64) *Cartesian2D {
	t.Helper()
	return NewCartesian2DFromExtents(nx, ny, 0, 0, 1, 1)
}

func TestNewCartesian2DFromConfig(t *testing.T) {
	conf, err := config.Parse(strings.NewReader(
		"cell count == 4, 3\norigin == 10.0, 20.0\ncell size == 2.0, 0.5\n"))
	require.NoError(t, err)
	m, err := NewCartesian2D(conf)
	require.NoError(t, err)
	assert.Equal(t, [2]uint64{4, 3}, m.CellIndexSize())
	assert.Equal(t, [2]float64{10, 20}, m.Origin())
	assert.Equal(t, [2]float64{2, 0.5}, m.CellSize())
}

func TestNewCartesian2DMissingKey(t *testing.T) {
	conf, err := config.Parse(strings.NewReader("cell count == 4, 3\n"))
	require.NoError(t, err)
	_, err = NewCartesian2D(conf)
	assert.Error(t, err)
}

func TestObjectCounts(t *testing.T) {
	m := testMesh(t, 4, 3)
	assert.Equal(t, uint64(12), m.ObjectCount(Cell))
	assert.Equal(t, uint64(5*3+4*4), m.ObjectCount(Face))
	assert.Equal(t, uint64(5*4), m.ObjectCount(Vertex))
}

func TestCellIndexRoundTrip(t *testing.T) {
	m := testMesh(t, 4, 3)
	for id := uint64(0); id < m.CellCount(); id++ {
		ix, iy := m.CellIndex(id)
		assert.Equal(t, id, m.CellLinearID(ix, iy))
	}
}

func TestFaceOrderingAndAdjacency(t *testing.T) {
	m := testMesh(t, 4, 3)
	sentinel := m.FaceCount()

	// All vertical faces come first.
	for fid := uint64(0); fid < (4+1)*3; fid++ {
		assert.True(t, m.FaceIsVertical(fid))
	}
	for fid := uint64((4 + 1) * 3); fid < m.FaceCount(); fid++ {
		assert.False(t, m.FaceIsVertical(fid))
	}

	// West edge of the first row: no left neighbour.
	ca := m.CellsAroundFace(0)
	assert.Equal(t, sentinel, ca[0])
	assert.Equal(t, uint64(0), ca[1])

	// Interior vertical face between cells 0 and 1.
	ca = m.CellsAroundFace(1)
	assert.Equal(t, uint64(0), ca[0])
	assert.Equal(t, uint64(1), ca[1])

	// East edge of the first row.
	ca = m.CellsAroundFace(4)
	assert.Equal(t, uint64(3), ca[0])
	assert.Equal(t, sentinel, ca[1])

	// Faces around a cell agree with cells around those faces.
	for id := uint64(0); id < m.CellCount(); id++ {
		ix, iy := m.CellIndex(id)
		fa := m.FacesAroundCell(ix, iy)
		w, e, s, n := fa[0], fa[1], fa[2], fa[3]
		assert.Equal(t, id, m.CellsAroundFace(w)[1])
		assert.Equal(t, id, m.CellsAroundFace(e)[0])
		assert.Equal(t, id, m.CellsAroundFace(s)[1])
		assert.Equal(t, id, m.CellsAroundFace(n)[0])
	}
}

func TestObjectCoordinates(t *testing.T) {
	m := NewCartesian2DFromExtents(4, 3, 100, 200, 2, 2)
	c := m.ObjectCoordinate(Cell, 0)
	assert.Equal(t, [2]float64{101, 201}, c)

	// West face of cell 0 is on the mesh edge.
	f := m.ObjectCoordinate(Face, 0)
	assert.Equal(t, [2]float64{100, 201}, f)

	v := m.ObjectCoordinate(Vertex, 0)
	assert.Equal(t, [2]float64{100, 200}, v)
}

func TestNearestObjectClamps(t *testing.T) {
	m := testMesh(t, 4, 3)
	assert.Equal(t, uint64(0), m.NearestObject(Cell, [2]float64{-5, -5}))
	assert.Equal(t, m.CellLinearID(3, 2), m.NearestObject(Cell, [2]float64{100, 100}))
	assert.Equal(t, m.CellLinearID(2, 1), m.NearestObject(Cell, [2]float64{2.5, 1.5}))
}

func TestRasterisePolygon(t *testing.T) {
	m := testMesh(t, 10, 10)
	// Rectangle straddling rows 3..6 and columns 1..4. Row crossings
	// follow the half-open >=/< rule at row centre lines.
	poly := geom.Polygon{{
		{X: 1.5, Y: 2.5}, {X: 5.5, Y: 2.5}, {X: 5.5, Y: 6.5}, {X: 1.5, Y: 6.5}, {X: 1.5, Y: 2.5},
	}}
	var ids []uint64
	require.NoError(t, m.EachCellWithin(poly, false, func(id uint64) {
		ids = append(ids, id)
	}))
	var expect []uint64
	for yi := uint64(3); yi < 7; yi++ {
		for xi := uint64(1); xi < 5; xi++ {
			expect = append(expect, yi*10+xi)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	assert.Equal(t, expect, ids)
}

func TestRasterisePolygonInverted(t *testing.T) {
	m := testMesh(t, 6, 6)
	poly := geom.Polygon{{
		{X: 1, Y: 1}, {X: 5, Y: 1}, {X: 5, Y: 5}, {X: 1, Y: 5}, {X: 1, Y: 1},
	}}
	var inside, outside []uint64
	require.NoError(t, m.EachCellWithin(poly, false, func(id uint64) {
		inside = append(inside, id)
	}))
	require.NoError(t, m.EachCellWithin(poly, true, func(id uint64) {
		outside = append(outside, id)
	}))
	assert.Equal(t, int(m.CellCount()), len(inside)+len(outside))
	seen := map[uint64]bool{}
	for _, id := range inside {
		seen[id] = true
	}
	for _, id := range outside {
		assert.False(t, seen[id], "cell %d in both sets", id)
	}
}

func TestRasterisePolygonWithHoles(t *testing.T) {
	m := testMesh(t, 6, 6)
	poly := geom.Polygon{
		{{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 6}, {X: 0, Y: 6}, {X: 0, Y: 0}},
		{{X: 2, Y: 2}, {X: 4, Y: 2}, {X: 4, Y: 4}, {X: 2, Y: 4}, {X: 2, Y: 2}},
	}
	err := m.EachCellWithin(poly, false, func(id uint64) {})
	assert.Error(t, err)
}

func TestRasteriseSliverSelectsNothing(t *testing.T) {
	m := testMesh(t, 6, 6)
	poly := geom.Polygon{{{X: 0, Y: 0}, {X: 6, Y: 6}}}
	count := 0
	require.NoError(t, m.EachCellWithin(poly, false, func(id uint64) { count++ }))
	assert.Zero(t, count)
}

func TestWKT(t *testing.T) {
	m := testMesh(t, 2, 2)
	assert.Equal(t, "POLYGON ((0 0, 0 1, 1 1, 1 0, 0 0))", m.ObjectWKT(Cell, 0))
	assert.Equal(t, "POINT (0 0)", m.ObjectWKT(Vertex, 0))
	assert.Contains(t, m.ObjectWKT(Face, 0), "LINESTRING")
}

func TestParseWKT(t *testing.T) {
	g, err := ParseWKT("POINT (30 10)")
	require.NoError(t, err)
	require.Len(t, g, 1)
	assert.Equal(t, geom.Point{X: 30, Y: 10}, g[0])

	g, err = ParseWKT("MULTIPOINT ((10 40), (40 30))")
	require.NoError(t, err)
	assert.Equal(t, geom.MultiPoint{{X: 10, Y: 40}, {X: 40, Y: 30}}, g[0])

	g, err = ParseWKT("MULTIPOINT (10 40, 40 30)")
	require.NoError(t, err)
	assert.Equal(t, geom.MultiPoint{{X: 10, Y: 40}, {X: 40, Y: 30}}, g[0])

	g, err = ParseWKT("POLYGON ((0 0, 4 0, 4 4, 0 4, 0 0))")
	require.NoError(t, err)
	poly, ok := g[0].(geom.Polygon)
	require.True(t, ok)
	require.Len(t, poly, 1)
	assert.Len(t, poly[0], 5)

	g, err = ParseWKT("MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)), ((2 2, 3 2, 3 3, 2 2)))")
	require.NoError(t, err)
	mp, ok := g[0].(geom.MultiPolygon)
	require.True(t, ok)
	assert.Len(t, mp, 2)

	_, err = ParseWKT("GEOMETRYCOLLECTION (POINT (1 1))")
	assert.Error(t, err)

	_, err = ParseWKT("POLYGON ((0 0, 1 0")
	assert.Error(t, err)
}

func TestWKTSelectionRoundTrip(t *testing.T) {
	m := testMesh(t, 3, 3)
	g, err := ParseWKT("POLYGON ((1.5 0.5, 2.4 0.5, 2.4 1.5, 1.5 1.5, 1.5 0.5))")
	require.NoError(t, err)
	poly, ok := g[0].(geom.Polygon)
	require.True(t, ok)

	var ids []uint64
	require.NoError(t, m.EachCellWithin(poly, false, func(id uint64) {
		ids = append(ids, id)
	}))
	assert.Equal(t, []uint64{4}, ids)
}
