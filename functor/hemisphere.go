package functor

import (
	"math"

	"github.com/watercourse/gosv/config"
)

// Hemisphere evaluates a spherical cap around an origin; outside the
// radius it reports nodata. Concave caps return the negated surface.
type Hemisphere struct {
	origin  [2]float64
	centreZ float64
	radius  float64
	convex  bool
}

func NewHemisphere(conf *config.Config) (*Hemisphere, error) {
	org, err := conf.GetString("origin")
	if err != nil {
		return nil, err
	}
	ov, err := config.SplitFloats(org, 2)
	if err != nil {
		return nil, err
	}
	cz, err := conf.GetFloat("centre z")
	if err != nil {
		return nil, err
	}
	r, err := conf.GetFloat("radius")
	if err != nil {
		return nil, err
	}
	return &Hemisphere{
		origin:  [2]float64{ov[0], ov[1]},
		centreZ: cz,
		radius:  r,
		convex:  conf.Bool("convex", true),
	}, nil
}

func (h *Hemisphere) Name() string   { return "Hemisphere" }
func (h *Hemisphere) HostOnly() bool { return false }

func (h *Hemisphere) At(t float64, coord [2]float64, nodata float32) float32 {
	dx := coord[0] - h.origin[0]
	dy := coord[1] - h.origin[1]
	d2 := h.radius*h.radius - dx*dx - dy*dy
	if d2 >= 0.0 {
		v := math.Sqrt(d2) + h.centreZ
		if !h.convex {
			v = -v
		}
		return float32(v)
	}
	return nodata
}

func (h *Hemisphere) AtBox(t float64, coord, boxSize [2]float64, nodata float32) float32 {
	return nodata
}
