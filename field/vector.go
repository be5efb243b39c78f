package field

import (
	"github.com/watercourse/gosv/device"
	"github.com/watercourse/gosv/mesh"
)

// Vector packs same-mapped fields with a collective name set, used for
// the solution state (h, u, v), slopes, bed constants, roughness, face
// fluxes and the two-sample boundary arrays.
type Vector[T Float] struct {
	fields []*Field[T]
}

func NewVector[T Float](queue *device.Queue, names []string, m *mesh.Cartesian2D,
	fm mesh.Mapping, onDevice bool, init T) *Vector[T] {
	v := &Vector[T]{fields: make([]*Field[T], len(names))}
	for i, name := range names {
		v.fields[i] = NewField[T](queue, name, m, fm, onDevice, init)
	}
	return v
}

func VectorOf[T Float](fields ...*Field[T]) *Vector[T] {
	return &Vector[T]{fields: fields}
}

func (v *Vector[T]) Len() int {
	return len(v.fields)
}

func (v *Vector[T]) At(i int) *Field[T] {
	return v.fields[i]
}

// SetAt replaces a component, used when initial fields are generated
// separately and packed afterwards.
func (v *Vector[T]) SetAt(i int, f *Field[T]) {
	v.fields[i] = f
}

func (v *Vector[T]) Names() []string {
	names := make([]string, len(v.fields))
	for i, f := range v.fields {
		names[i] = f.Name()
	}
	return names
}

// Data borrows the live buffer of every component for one submission.
func (v *Vector[T]) Data() [][]T {
	out := make([][]T, len(v.fields))
	for i, f := range v.fields {
		out[i] = f.Data()
	}
	return out
}

// Rename duplicates every component with the given affixes, preserving
// storage side.
func (v *Vector[T]) Rename(prefix, suffix string) *Vector[T] {
	out := &Vector[T]{fields: make([]*Field[T], len(v.fields))}
	for i, f := range v.fields {
		out.fields[i] = f.Rename(prefix, suffix)
	}
	return out
}

// Swap exchanges the components of two vectors; accept_step swaps the
// candidate state into U this way.
func (v *Vector[T]) Swap(other *Vector[T]) {
	v.fields, other.fields = other.fields, v.fields
}
