package functor

import (
	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/registry"
	"github.com/watercourse/gosv/timeseries"
)

// TimeSeries evaluates a named series at t, independent of position.
type TimeSeries struct {
	series *timeseries.Series
}

func NewTimeSeries(ctx *registry.Context, conf *config.Config) (*TimeSeries, error) {
	name, err := conf.GetString("series")
	if err != nil {
		return nil, err
	}
	s, err := ctx.TimeSeries(name)
	if err != nil {
		return nil, err
	}
	return &TimeSeries{series: s}, nil
}

func TimeSeriesOf(s *timeseries.Series) *TimeSeries {
	return &TimeSeries{series: s}
}

func (f *TimeSeries) Name() string   { return "Time Series" }
func (f *TimeSeries) HostOnly() bool { return false }

func (f *TimeSeries) At(t float64, coord [2]float64, nodata float32) float32 {
	return f.series.At(t)
}

func (f *TimeSeries) AtBox(t float64, coord, boxSize [2]float64, nodata float32) float32 {
	return f.series.At(t)
}
