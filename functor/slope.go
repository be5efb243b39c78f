package functor

import (
	"github.com/watercourse/gosv/config"
)

// Slope is the affine plane v0 + sx·(x−x0) + sy·(y−y0).
type Slope struct {
	origin      [2]float64
	slope       [2]float64
	originValue float64
}

func NewSlope(conf *config.Config) (*Slope, error) {
	org, err := conf.GetString("origin")
	if err != nil {
		return nil, err
	}
	ov, err := config.SplitFloats(org, 2)
	if err != nil {
		return nil, err
	}
	sl, err := conf.GetString("slope")
	if err != nil {
		return nil, err
	}
	sv, err := config.SplitFloats(sl, 2)
	if err != nil {
		return nil, err
	}
	v0, err := conf.GetFloat("origin value")
	if err != nil {
		return nil, err
	}
	return &Slope{
		origin:      [2]float64{ov[0], ov[1]},
		slope:       [2]float64{sv[0], sv[1]},
		originValue: v0,
	}, nil
}

func (s *Slope) Name() string   { return "Slope" }
func (s *Slope) HostOnly() bool { return false }

func (s *Slope) At(t float64, coord [2]float64, nodata float32) float32 {
	dx := coord[0] - s.origin[0]
	dy := coord[1] - s.origin[1]
	return float32(s.originValue + dx*s.slope[0] + dy*s.slope[1])
}

func (s *Slope) AtBox(t float64, coord, boxSize [2]float64, nodata float32) float32 {
	return s.At(t, coord, nodata)
}
