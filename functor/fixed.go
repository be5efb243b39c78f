package functor

import (
	"fmt"

	"github.com/watercourse/gosv/config"
)

type Fixed struct {
	value float32
}

func NewFixed(conf *config.Config) (*Fixed, error) {
	v, err := conf.GetFloat("value")
	if err != nil {
		return nil, err
	}
	return &Fixed{value: float32(v)}, nil
}

func FixedValue(v float32) *Fixed {
	return &Fixed{value: v}
}

func (f *Fixed) Name() string {
	return fmt.Sprintf("Fixed Value (%g)", f.value)
}

func (f *Fixed) HostOnly() bool { return false }

func (f *Fixed) At(t float64, coord [2]float64, nodata float32) float32 {
	return f.value
}

func (f *Fixed) AtBox(t float64, coord, boxSize [2]float64, nodata float32) float32 {
	return f.value
}
