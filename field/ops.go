package field

import (
	"github.com/watercourse/gosv/fault"
)

// checkCombination enforces identical mesh and mapping between
// operands before any elementwise operation.
func checkCombination[A Float, B Float](a *Field[A], b *Field[B]) error {
	if a.mesh != b.mesh {
		return fault.New(fault.InvalidCombination,
			"mismatched meshes between fields %q and %q", a.name, b.name)
	}
	if a.mapping != b.mapping {
		return fault.New(fault.InvalidCombination,
			"mismatched mappings between fields %q (%s) and %q (%s)",
			a.name, a.mapping, b.name, b.mapping)
	}
	if a.Size() != b.Size() {
		return fault.New(fault.InvalidCombination,
			"mismatched sizes between fields %q and %q", a.name, b.name)
	}
	return nil
}

func binary[S Float, D Float](name string, a, b *Field[S], op func(x, y S) D) (*Field[D], error) {
	if err := checkCombination(a, b); err != nil {
		return nil, err
	}
	dst := NewField[D](a.Queue(), name, a.mesh, a.mapping, a.IsOnDevice(), 0)
	av, bv, dv := a.Data(), b.Data(), dst.Data()
	a.Queue().ParallelFor(len(dv), func(i int) {
		dv[i] = op(av[i], bv[i])
	})
	return dst, nil
}

func binaryInto[S Float, D Float](a, b *Field[S], dst *Field[D], op func(x, y S) D) error {
	if err := checkCombination(a, b); err != nil {
		return err
	}
	if err := checkCombination(a, dst); err != nil {
		return err
	}
	av, bv, dv := a.Data(), b.Data(), dst.Data()
	a.Queue().ParallelFor(len(dv), func(i int) {
		dv[i] = op(av[i], bv[i])
	})
	return nil
}

func Sum[S Float, D Float](name string, a, b *Field[S]) (*Field[D], error) {
	return binary[S, D](name, a, b, func(x, y S) D { return D(x + y) })
}

func Difference[S Float, D Float](name string, a, b *Field[S]) (*Field[D], error) {
	return binary[S, D](name, a, b, func(x, y S) D { return D(x - y) })
}

func Product[S Float, D Float](name string, a, b *Field[S]) (*Field[D], error) {
	return binary[S, D](name, a, b, func(x, y S) D { return D(x * y) })
}

func Quotient[S Float, D Float](name string, a, b *Field[S]) (*Field[D], error) {
	return binary[S, D](name, a, b, func(x, y S) D { return D(x / y) })
}

func SumInto[S Float, D Float](a, b *Field[S], dst *Field[D]) error {
	return binaryInto(a, b, dst, func(x, y S) D { return D(x + y) })
}

func DifferenceInto[S Float, D Float](a, b *Field[S], dst *Field[D]) error {
	return binaryInto(a, b, dst, func(x, y S) D { return D(x - y) })
}

func ProductInto[S Float, D Float](a, b *Field[S], dst *Field[D]) error {
	return binaryInto(a, b, dst, func(x, y S) D { return D(x * y) })
}

func QuotientInto[S Float, D Float](a, b *Field[S], dst *Field[D]) error {
	return binaryInto(a, b, dst, func(x, y S) D { return D(x / y) })
}

// Cast converts element type, producing a new field on the same side.
func Cast[S Float, D Float](name string, src *Field[S]) *Field[D] {
	dst := NewField[D](src.Queue(), name, src.mesh, src.mapping, src.IsOnDevice(), 0)
	sv, dv := src.Data(), dst.Data()
	src.Queue().ParallelFor(len(dv), func(i int) {
		dv[i] = D(sv[i])
	})
	return dst
}
