// Package functor evaluates scalar fields of time and position and
// applies them to mesh fields through clamp/offset/factor modifiers.
// Functors are selected by configured name; the box-capable ones also
// reduce over an axis-aligned footprint.
package functor

import (
	"strings"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/fault"
	"github.com/watercourse/gosv/registry"
)

type Functor interface {
	Name() string
	// HostOnly functors (the random generator) must be evaluated
	// sequentially on the host.
	HostOnly() bool
	At(t float64, coord [2]float64, nodata float32) float32
	AtBox(t float64, coord [2]float64, boxSize [2]float64, nodata float32) float32
}

// New dispatches on the configured functor name. The block's value
// names the functor; opName selects the box reduction used by raster
// lookups.
func New(ctx *registry.Context, conf *config.Config, opName string) (Functor, error) {
	name := strings.ToLower(conf.Value())
	switch name {
	case "fixed":
		return NewFixed(conf)
	case "slope":
		return NewSlope(conf)
	case "hemisphere":
		return NewHemisphere(conf)
	case "random":
		return NewRandom(conf)
	case "time series":
		return NewTimeSeries(ctx, conf)
	case "interpolated time series":
		return NewInterpolatedTimeSeries(ctx, conf)
	case "raster", "raster field":
		return NewRaster(ctx, conf, opName)
	}
	return nil, fault.New(fault.ConfigurationError,
		"unknown field functor: %q", conf.Value())
}
