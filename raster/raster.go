package raster

import (
	"math"

	"github.com/watercourse/gosv/fault"
)

// Field is a read-only 2-D grid with a 6-parameter affine transform
// and an explicit nodata sentinel. The four inverse coefficients are
// cached at construction so point lookups invert the transform with a
// single division per coordinate.
type Field struct {
	values []float32
	ncols  uint64
	nrows  uint64
	gt     [6]float64 // x0, xsize, xrot, y0, yrot, ysize
	inv    [4]float64 // 1/b, 1/f, 1/(fb), 1 - ce/(fb)
	nodata float32
}

func NewField(values []float32, ncols, nrows uint64, geoTransform [6]float64, nodata float32) (*Field, error) {
	if uint64(len(values)) != ncols*nrows {
		return nil, fault.New(fault.InvalidCombination,
			"raster has %d values for a %d×%d grid", len(values), ncols, nrows)
	}
	if geoTransform[1] == 0 || geoTransform[5] == 0 {
		return nil, fault.New(fault.ConfigurationError, "raster transform is not invertible")
	}
	f := &Field{
		values: values,
		ncols:  ncols,
		nrows:  nrows,
		gt:     geoTransform,
		nodata: nodata,
	}
	f.inv[0] = 1.0 / f.gt[1]
	f.inv[1] = 1.0 / f.gt[5]
	f.inv[2] = 1.0 / (f.gt[1] * f.gt[5])
	f.inv[3] = 1.0 - (f.gt[2]*f.gt[4])*f.inv[2]
	if f.inv[3] == 0 {
		return nil, fault.New(fault.ConfigurationError, "raster transform is not invertible")
	}
	return f, nil
}

func (f *Field) Cols() uint64            { return f.ncols }
func (f *Field) Rows() uint64            { return f.nrows }
func (f *Field) Nodata() float32         { return f.nodata }
func (f *Field) GeoTransform() [6]float64 { return f.gt }

func (f *Field) fractionalXi(loc [2]float64) float64 {
	return ((loc[0]-f.gt[0])*f.inv[0] -
		(loc[1]-f.gt[3])*f.gt[2]*f.inv[2]) / f.inv[3]
}

func (f *Field) fractionalYi(loc [2]float64) float64 {
	return ((loc[1]-f.gt[3])*f.inv[1] -
		(loc[0]-f.gt[0])*f.gt[4]*f.inv[2]) / f.inv[3]
}

func (f *Field) pixelIndex(loc [2]float64) (xi, yi uint64, ok bool) {
	fx := f.fractionalXi(loc)
	fy := f.fractionalYi(loc)
	if fx < 0 || fy < 0 || math.IsNaN(fx) || math.IsNaN(fy) {
		return 0, 0, false
	}
	xi, yi = uint64(fx), uint64(fy)
	return xi, yi, xi < f.ncols && yi < f.nrows
}

// InspectPoint samples the pixel under loc, returning nodata outside
// the grid or at sentinel pixels.
func (f *Field) InspectPoint(loc [2]float64, nodata float32) float32 {
	xi, yi, ok := f.pixelIndex(loc)
	if !ok {
		return nodata
	}
	v := f.values[yi*f.ncols+xi]
	if math.IsNaN(float64(v)) || v == f.nodata {
		return nodata
	}
	return v
}

// InspectBox reduces the pixel rectangle covering the axis-aligned box
// centred at coord using the named operation.
func (f *Field) InspectBox(opName string, coord, boxSize [2]float64, nodata float32) (float32, error) {
	c0 := [2]float64{coord[0] - 0.5*boxSize[0], coord[1] - 0.5*boxSize[1]}
	c1 := [2]float64{coord[0] + 0.5*boxSize[0], coord[1] + 0.5*boxSize[1]}

	xi0 := f.fractionalXi(c0)
	xi1 := f.fractionalXi(c1)
	if xi1 < xi0 {
		xi0, xi1 = xi1, xi0
	}
	yi0 := f.fractionalYi(c0)
	yi1 := f.fractionalYi(c1)
	if yi1 < yi0 {
		yi0, yi1 = yi1, yi0
	}

	lo := func(v float64) uint64 {
		if v < 0 {
			return 0
		}
		return uint64(v)
	}
	hi := func(v float64, n uint64) uint64 {
		if v < 0 {
			return 0
		}
		u := uint64(v)
		if u > n {
			return n
		}
		return u
	}

	op, err := NewOperation(opName, nodata)
	if err != nil {
		return 0, err
	}

	x0, x1 := lo(xi0), hi(xi1, f.ncols)
	y0, y1 := lo(yi0), hi(yi1, f.nrows)

	result := nodata
	for op.IterationsRemaining() > 0 {
		for yi := y0; yi < y1; yi++ {
			for xi := x0; xi < x1; xi++ {
				v := f.values[yi*f.ncols+xi]
				if math.IsNaN(float64(v)) || v == f.nodata {
					continue
				}
				op.Append(v)
			}
		}
		result = op.Get()
	}
	return result, nil
}
