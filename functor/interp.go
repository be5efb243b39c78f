package functor

import (
	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/registry"
	"github.com/watercourse/gosv/timeseries"
)

type locatedSeries struct {
	series *timeseries.Series
	loc    [2]float64
}

// InterpolatedTimeSeries blends point-located series with inverse
// squared-distance weights; within 1e-4 of an anchor the anchor's
// value is returned exactly.
type InterpolatedTimeSeries struct {
	anchors []locatedSeries
}

func NewInterpolatedTimeSeries(ctx *registry.Context, conf *config.Config) (*InterpolatedTimeSeries, error) {
	f := &InterpolatedTimeSeries{}
	var loadErr error
	conf.Each("at", func(node *config.Config) {
		if loadErr != nil {
			return
		}
		loc, err := config.SplitFloats(node.Value(), 2)
		if err != nil {
			loadErr = err
			return
		}
		name, err := node.GetString("series")
		if err != nil {
			loadErr = err
			return
		}
		s, err := ctx.TimeSeries(name)
		if err != nil {
			loadErr = err
			return
		}
		f.anchors = append(f.anchors, locatedSeries{series: s, loc: [2]float64{loc[0], loc[1]}})
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return f, nil
}

func (f *InterpolatedTimeSeries) Name() string   { return "Interpolated Time Series" }
func (f *InterpolatedTimeSeries) HostOnly() bool { return false }

func (f *InterpolatedTimeSeries) At(t float64, coord [2]float64, nodata float32) float32 {
	var weightedValue float64
	var totalWeight float64
	for _, a := range f.anchors {
		value := float64(a.series.At(t))
		xd := coord[0] - a.loc[0]
		yd := coord[1] - a.loc[1]
		d2 := xd*xd + yd*yd
		if d2 < 1e-4 {
			return float32(value)
		}
		w := 1.0 / d2
		weightedValue += w * value
		totalWeight += w
	}
	if totalWeight == 0 {
		return nodata
	}
	return float32(weightedValue / totalWeight)
}

func (f *InterpolatedTimeSeries) AtBox(t float64, coord, boxSize [2]float64, nodata float32) float32 {
	return f.At(t, coord, nodata)
}
