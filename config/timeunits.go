package config

import (
	"strings"

	"github.com/watercourse/gosv/fault"
)

var timeUnitFactors = map[string]float64{
	"seconds": 1.0,
	"second":  1.0,
	"secs":    1.0,
	"sec":     1.0,
	"s":       1.0,

	"minutes": 60.0,
	"minute":  60.0,
	"mins":    60.0,
	"min":     60.0,
	"m":       60.0,

	"hours": 3600.0,
	"hour":  3600.0,
	"hrs":   3600.0,
	"hr":    3600.0,
	"h":     3600.0,
}

// TimeUnitFactor resolves the "time units" key of a block to a
// seconds-per-unit factor. "default" (or absence) falls back to the
// supplied global factor, or 1.0 when no global factor is set.
func TimeUnitFactor(conf *Config, globalFactor float64) (float64, error) {
	unit := strings.ToLower(conf.String("time units", "default"))
	if unit == "default" {
		if globalFactor > 0.0 {
			return globalFactor, nil
		}
		return 1.0, nil
	}
	if f, ok := timeUnitFactors[unit]; ok {
		return f, nil
	}
	return 0, fault.New(fault.ConfigurationError, "unknown time unit: %s", unit)
}
