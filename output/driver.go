package output

import (
	"math"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/registry"
)

// Source resolves variable names to output functions against the
// current solution state.
type Source interface {
	OutputFunction(name string) (Function, error)
}

// Driver fires a format at fixed intervals for a list of variables.
// Time tags render the current time in the driver's own unit.
type Driver struct {
	format *Format

	startTime  float64
	interval   float64
	nSteps     uint64
	nextStep   uint64
	timeFactor float64

	functionNames []string
}

func NewDriver(ctx *registry.Context, conf *config.Config) (*Driver, error) {
	format, err := NewFormat(conf, ctx.OutputDirectory())
	if err != nil {
		return nil, err
	}
	rp, err := ctx.RunParameters()
	if err != nil {
		return nil, err
	}
	factor, err := ctx.TimeUnitFactor(conf)
	if err != nil {
		return nil, err
	}

	d := &Driver{format: format, timeFactor: factor}
	d.startTime = conf.Float("start time", rp.StartTime/factor) * factor
	interval, err := conf.GetFloat("interval")
	if err != nil {
		return nil, err
	}
	d.interval = interval * factor
	endTime := conf.Float("end time", rp.EndTime/factor) * factor

	d.nSteps = uint64(math.Round((endTime - d.startTime) / d.interval))
	if d.interval*float64(d.nSteps) <= 1.0+endTime-d.startTime {
		d.nSteps++
	}

	d.functionNames = config.SplitStrings(conf.String("variables", "depth"))

	log.WithFields(log.Fields{
		"outputs":  d.nSteps,
		"interval": d.interval,
		"first":    d.timeTag(d.startTime),
		"last":     d.timeTag(endTime),
		"writing":  d.functionNames,
	}).Info("Creating output driver")
	return d, nil
}

func (d *Driver) timeTag(t float64) string {
	return strconv.FormatFloat(t/d.timeFactor, 'f', 6, 64)
}

// NextOutputTime is NaN once the driver is exhausted; NaN never
// compares less-or-equal so the driver stops firing.
func (d *Driver) NextOutputTime() float64 {
	if d.nextStep < d.nSteps {
		return d.startTime + float64(d.nextStep)*d.interval
	}
	return math.NaN()
}

// Output writes every configured variable at the pending output time.
func (d *Driver) Output(src Source) error {
	timeNow := d.NextOutputTime()
	for _, name := range d.functionNames {
		fn, err := src.OutputFunction(name)
		if err != nil {
			return err
		}
		if err := d.format.Output(fn, d.timeTag(timeNow)); err != nil {
			return err
		}
	}
	d.nextStep++
	return nil
}

// NewDrivers builds every `output` block of the configuration.
func NewDrivers(ctx *registry.Context) ([]*Driver, error) {
	var drivers []*Driver
	var err error
	ctx.Conf.Each("output", func(node *config.Config) {
		if err != nil {
			return
		}
		var d *Driver
		d, err = NewDriver(ctx, node)
		if err == nil {
			drivers = append(drivers, d)
		}
	})
	if err != nil {
		return nil, err
	}
	log.Infof("Initialised %d output drivers.", len(drivers))
	return drivers, nil
}
