package functor

import (
	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/raster"
	"github.com/watercourse/gosv/registry"
)

// Raster samples a named raster field: the pixel under the point, or a
// box reduction over the footprint.
type Raster struct {
	field  *raster.Field
	opName string
}

func NewRaster(ctx *registry.Context, conf *config.Config, opName string) (*Raster, error) {
	name, err := conf.GetString("raster field")
	if err != nil {
		return nil, err
	}
	rf, err := ctx.RasterField(name)
	if err != nil {
		return nil, err
	}
	if opName == "" {
		opName = "mean"
	}
	// Validate the reduction name up front rather than per lookup.
	if _, err := raster.NewOperation(opName, 0); err != nil {
		return nil, err
	}
	return &Raster{field: rf, opName: opName}, nil
}

func (r *Raster) Name() string   { return "Raster Field" }
func (r *Raster) HostOnly() bool { return false }

func (r *Raster) At(t float64, coord [2]float64, nodata float32) float32 {
	return r.field.InspectPoint(coord, nodata)
}

func (r *Raster) AtBox(t float64, coord, boxSize [2]float64, nodata float32) float32 {
	v, err := r.field.InspectBox(r.opName, coord, boxSize, nodata)
	if err != nil {
		return nodata
	}
	return v
}
