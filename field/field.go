package field

import (
	"github.com/watercourse/gosv/device"
	"github.com/watercourse/gosv/mesh"
)

// Float is the scalar constraint for mesh fields. Single precision
// carries state; coordinates and stage differences use double.
type Float interface {
	~float32 | ~float64
}

// Field is a named dense array over one mesh object kind.
type Field[T Float] struct {
	*DataArray[T]
	name    string
	mesh    *mesh.Cartesian2D
	mapping mesh.Mapping
}

func NewField[T Float](queue *device.Queue, name string, m *mesh.Cartesian2D,
	fm mesh.Mapping, onDevice bool, init T) *Field[T] {
	return &Field[T]{
		DataArray: NewDataArray[T](queue, int(m.ObjectCount(fm)), onDevice, init),
		name:      name,
		mesh:      m,
		mapping:   fm,
	}
}

func (f *Field[T]) Name() string                 { return f.name }
func (f *Field[T]) Mesh() *mesh.Cartesian2D     { return f.mesh }
func (f *Field[T]) Mapping() mesh.Mapping       { return f.mapping }

// Rename returns a duplicate of f named prefix+name+suffix.
func (f *Field[T]) Rename(prefix, suffix string) *Field[T] {
	return &Field[T]{
		DataArray: f.DataArray.Copy(),
		name:      prefix + f.name + suffix,
		mesh:      f.mesh,
		mapping:   f.mapping,
	}
}
