package mesh

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/fault"
)

// WriteCheckFile dumps the mesh to a "mesh" sub-directory of the check
// path: object locations, connectivity and geometry as CSV, plus a
// log of what was written.
func (m *Cartesian2D) WriteCheckFile(checkPath string, conf *config.Config) error {
	meshPath := filepath.Join(checkPath, "mesh")
	if err := os.MkdirAll(meshPath, 0o755); err != nil {
		return fault.Wrap(fault.IOFailure, err, "could not create check file directory %s", meshPath)
	}

	log, err := os.Create(filepath.Join(meshPath, "log.txt"))
	if err != nil {
		return fault.Wrap(fault.IOFailure, err, "could not create mesh log")
	}
	defer log.Close()

	fmt.Fprintf(log, "Writing Cartesian 2D Mesh.\n")
	fmt.Fprintf(log, "  Cells: %d × %d = %d\n", m.ncells[0], m.ncells[1], m.CellCount())
	fmt.Fprintf(log, "  Faces: %d\n", m.FaceCount())
	fmt.Fprintf(log, "  Vertices: %d\n", m.VertexCount())

	locations := []struct {
		file    string
		mapping Mapping
	}{
		{"cell_centres.csv", Cell},
		{"face_centres.csv", Face},
		{"vertices.csv", Vertex},
	}
	for _, loc := range locations {
		path := filepath.Join(meshPath, loc.file)
		f, err := os.Create(path)
		if err != nil {
			return fault.Wrap(fault.IOFailure, err, "could not create %s", path)
		}
		fmt.Fprintf(log, "Writing %s locations to %s\n", loc.mapping, path)
		for i := uint64(0); i < m.ObjectCount(loc.mapping); i++ {
			c := m.ObjectCoordinate(loc.mapping, i)
			fmt.Fprintf(f, "%g,%g\n", c[0], c[1])
		}
		f.Close()
	}

	{
		path := filepath.Join(meshPath, "cell_connectivity.csv")
		f, err := os.Create(path)
		if err != nil {
			return fault.Wrap(fault.IOFailure, err, "could not create %s", path)
		}
		fmt.Fprintf(log, "Writing cell connectivity to %s\n", path)
		fmt.Fprintln(f, "f_w,f_e,f_s,f_n,v_sw,v_se,v_nw,v_ne")
		for i := uint64(0); i < m.CellCount(); i++ {
			ix, iy := m.CellIndex(i)
			fa := m.FacesAroundCell(ix, iy)
			va := m.VerticesAroundCell(ix, iy)
			fmt.Fprintf(f, "%d,%d,%d,%d,%d,%d,%d,%d\n",
				fa[0], fa[1], fa[2], fa[3], va[0], va[1], va[2], va[3])
		}
		f.Close()
	}
	{
		path := filepath.Join(meshPath, "face_connectivity.csv")
		f, err := os.Create(path)
		if err != nil {
			return fault.Wrap(fault.IOFailure, err, "could not create %s", path)
		}
		fmt.Fprintf(log, "Writing face connectivity to %s\n", path)
		fmt.Fprintln(f, "c_us,c_ds,v_l,v_r")
		for i := uint64(0); i < m.FaceCount(); i++ {
			ca := m.CellsAroundFace(i)
			va := m.VerticesAroundFace(i)
			fmt.Fprintf(f, "%d,%d,%d,%d\n", ca[0], ca[1], va[0], va[1])
		}
		f.Close()
	}

	geometries := []struct {
		file    string
		mapping Mapping
	}{
		{"cell_geometry.csv", Cell},
		{"face_geometry.csv", Face},
		{"vertex_geometry.csv", Vertex},
	}
	for _, g := range geometries {
		path := filepath.Join(meshPath, g.file)
		f, err := os.Create(path)
		if err != nil {
			return fault.Wrap(fault.IOFailure, err, "could not create %s", path)
		}
		fmt.Fprintf(log, "Writing %s geometry to %s\n", g.mapping, path)
		fmt.Fprintln(f, "wkt,id")
		for i := uint64(0); i < m.ObjectCount(g.mapping); i++ {
			fmt.Fprintf(f, "%q,%d\n", m.ObjectWKT(g.mapping, i), i)
		}
		f.Close()
	}

	_ = conf
	return nil
}
