// Package timeseries loads strictly-increasing (time, value) series
// from inline configuration blocks or CSV files and interpolates them
// linearly. Outside the covered span the series clamps to its end
// values.
package timeseries

import (
	"strconv"
	"strings"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/fault"
)

type Series struct {
	times  []float64
	values []float32
}

func New(times []float64, values []float32) (*Series, error) {
	if len(times) != len(values) {
		return nil, fault.New(fault.ConfigurationError,
			"time series has %d times but %d values", len(times), len(values))
	}
	if len(times) == 0 {
		return nil, fault.New(fault.ConfigurationError, "time series is empty")
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fault.New(fault.ConfigurationError,
				"times in time series must increase: %g <= %g", times[i], times[i-1])
		}
	}
	return &Series{times: times, values: values}, nil
}

func (s *Series) Len() int {
	return len(s.times)
}

func (s *Series) Times() []float64 {
	return s.times
}

func (s *Series) Values() []float32 {
	return s.values
}

// At interpolates the series at time t, clamping to the end values
// outside the covered span.
func (s *Series) At(t float64) float32 {
	if t <= s.times[0] {
		return s.values[0]
	}
	last := len(s.times) - 1
	if t >= s.times[last] {
		return s.values[last]
	}
	i1 := 1
	for ; i1 < last; i1++ {
		if s.times[i1] > t {
			break
		}
	}
	i0 := i1 - 1
	t0, t1 := s.times[i0], s.times[i1]
	v0, v1 := float64(s.values[i0]), float64(s.values[i1])
	return float32(v0 + (v1-v0)/(t1-t0)*(t-t0))
}

// scaleAndOffset applies the optional time/value offset-then-factor
// keys of a series block.
func scaleAndOffset(conf *config.Config, times []float64, values []float32) {
	timeFactor := conf.Float("time factor", 1.0)
	timeOffset := conf.Float("time offset", 0.0)
	valueFactor := float32(conf.Float("value factor", 1.0))
	valueOffset := float32(conf.Float("value offset", 0.0))

	for i := range times {
		times[i] = (times[i] + timeOffset) * timeFactor
	}
	for i := range values {
		values[i] = (values[i] + valueOffset) * valueFactor
	}
}

var reservedKeys = map[string]bool{
	"source":       true,
	"time factor":  true,
	"time offset":  true,
	"value factor": true,
	"value offset": true,
	"time units":   true,
	"time format":  true,
	"time zero":    true,
	"filename":     true,
	"separator":    true,
	"comment character": true,
	"headers":      true,
	"skip rows":    true,
	"skip cols":    true,
	"time column":  true,
	"value column": true,
}

// LoadInline reads time/value pairs given directly as keys of the
// series block; keys parse as times (plain numbers scaled by the time
// unit, or wall-clock strings when `time format` is set).
func LoadInline(conf *config.Config, globalTimeFactor float64) (*Series, error) {
	tp, err := newTimeParser(conf, globalTimeFactor)
	if err != nil {
		return nil, err
	}

	var times []float64
	var values []float32
	var loadErr error
	conf.EachChild(func(key string, node *config.Config) {
		if loadErr != nil || reservedKeys[strings.ToLower(key)] {
			return
		}
		t, err := tp.parse(key)
		if err != nil {
			loadErr = err
			return
		}
		if len(times) > 0 && t <= times[len(times)-1] {
			loadErr = fault.New(fault.ConfigurationError,
				"times in time series must increase: %g <= %g", t, times[len(times)-1])
			return
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(node.Value()), 32)
		if err != nil {
			loadErr = fault.Wrap(fault.ConfigurationError, err,
				"bad time series value %q", node.Value())
			return
		}
		times = append(times, t)
		values = append(values, float32(v))
	})
	if loadErr != nil {
		return nil, loadErr
	}
	scaleAndOffset(conf, times, values)
	return New(times, values)
}
