// Package registry owns the process-wide simulation context: the
// parsed configuration tree, the simulation base path, run and
// timestep parameters, and lazily-loaded named time series and raster
// fields. A single Context is created at start and passed by reference
// into every constructor.
package registry

import (
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/display"
	"github.com/watercourse/gosv/fault"
	"github.com/watercourse/gosv/raster"
	"github.com/watercourse/gosv/timeseries"
)

type DtType uint8

const (
	DtUndefined DtType = iota
	DtFixed
	DtAdaptive
)

type RunParameters struct {
	StartTime    float64
	EndTime      float64
	SyncStep     float64
	DisplayEvery uint64
}

type TimestepParameters struct {
	DtType        DtType
	TimeStep      float64
	MaxTimeStep   float64
	CourantTarget float64
	DdtScheme     *config.Config
}

type Context struct {
	Conf     *config.Config
	BasePath string
	FileStem string

	globalTimeFactor float64

	runParams *RunParameters
	dtParams  *TimestepParameters

	timeSeries   map[string]*timeseries.Series
	rasterFields map[string]*raster.Field
}

// NewContext parses a simulation file and anchors relative paths at
// its directory.
func NewContext(configPath string) (*Context, error) {
	conf, err := config.ParseFile(configPath)
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(configPath)
	stem := strings.TrimSuffix(filepath.Base(configPath), filepath.Ext(configPath))
	return NewContextFromConfig(conf, base, stem)
}

func NewContextFromConfig(conf *config.Config, basePath, stem string) (*Context, error) {
	ctx := &Context{
		Conf:         conf,
		BasePath:     basePath,
		FileStem:     stem,
		timeSeries:   map[string]*timeseries.Series{},
		rasterFields: map[string]*raster.Field{},
	}
	factor, err := config.TimeUnitFactor(conf, 0.0)
	if err != nil {
		return nil, err
	}
	ctx.globalTimeFactor = factor
	return ctx, nil
}

// Name is the simulation name: the `name` key, else the file stem.
func (ctx *Context) Name() string {
	return ctx.Conf.String("name", ctx.FileStem)
}

func (ctx *Context) OutputDirectory() string {
	return filepath.Join(ctx.BasePath, ctx.Conf.String("output directory", "output"))
}

func (ctx *Context) CheckFilePath() string {
	return filepath.Join(ctx.BasePath, ctx.Conf.String("check file directory", "check"))
}

func (ctx *Context) GlobalTimeFactor() float64 {
	return ctx.globalTimeFactor
}

// TimeUnitFactor resolves a block's `time units` against the global
// default.
func (ctx *Context) TimeUnitFactor(conf *config.Config) (float64, error) {
	return config.TimeUnitFactor(conf, ctx.globalTimeFactor)
}

func (ctx *Context) RunParameters() (*RunParameters, error) {
	if ctx.runParams != nil {
		return ctx.runParams, nil
	}
	conf, ok := ctx.Conf.Child("run parameters")
	if !ok {
		return nil, fault.New(fault.ConfigurationError, "missing run parameters block")
	}
	factor, err := ctx.TimeUnitFactor(conf)
	if err != nil {
		return nil, err
	}
	rp := &RunParameters{
		StartTime:    conf.Float("start time", 0.0) * factor,
		EndTime:      conf.Float("end time", 0.0) * factor,
		SyncStep:     conf.Float("sync step", 60.0/factor) * factor,
		DisplayEvery: conf.Uint("display every", 1),
	}
	if rp.DisplayEvery == 0 {
		rp.DisplayEvery = 1
	}

	params := display.NewTable(
		display.Column{Width: 40, Heading: "Parameter", Format: "%s"},
		display.Column{Width: 10, Heading: "Symbol", Format: "%s"},
		display.Column{Width: 10, Heading: "Default", Format: "%s"},
		display.Column{Width: 12, Heading: "Selected", Format: "%s"},
	)
	fmt.Println("   Reading Run Parameters:")
	params.WriteTopRule()
	params.WriteHeaderRow()
	params.WriteMidRule()
	params.WriteDataRow("Start Time", "tₛ", "0.0", fmt.Sprintf("%g", rp.StartTime))
	params.WriteDataRow("End Time", "tₑ", "0.0", fmt.Sprintf("%g", rp.EndTime))
	params.WriteDataRow("Synchronization Step", "Δtₒ", "60.0", fmt.Sprintf("%g", rp.SyncStep))
	params.WriteDataRow("Step Display Interval", "", "1", fmt.Sprintf("%d", rp.DisplayEvery))
	params.WriteBotRule()

	ctx.runParams = rp
	return rp, nil
}

func (ctx *Context) TimestepParameters() (*TimestepParameters, error) {
	if ctx.dtParams != nil {
		return ctx.dtParams, nil
	}
	conf, ok := ctx.Conf.Child("timestep parameters")
	if !ok {
		return nil, fault.New(fault.ConfigurationError, "missing timestep parameters block")
	}

	tp := &TimestepParameters{
		DtType:        DtUndefined,
		TimeStep:      conf.Float("time step", 1.0),
		MaxTimeStep:   conf.Float("max time step", 9999.0),
		CourantTarget: conf.Float("courant target", 0.999),
	}
	kind := strings.ToLower(conf.Value())
	switch kind {
	case "fixed":
		tp.DtType = DtFixed
	case "adaptive":
		tp.DtType = DtAdaptive
	default:
		return nil, fault.New(fault.ConfigurationError,
			"timestepping type (%q) not known or not defined", kind)
	}

	if ddt, ok := conf.Child("ddt scheme"); ok {
		tp.DdtScheme = ddt
	} else {
		ddt := config.New()
		ddt.SetValue("runge kutta")
		rk := config.New()
		rk.Put("method", "Ralston4")
		ddt.PutChild("runge kutta", rk)
		tp.DdtScheme = ddt
	}

	params := display.NewTable(
		display.Column{Width: 40, Heading: "Parameter", Format: "%s"},
		display.Column{Width: 10, Heading: "Symbol", Format: "%s"},
		display.Column{Width: 10, Heading: "Default", Format: "%s"},
		display.Column{Width: 12, Heading: "Selected", Format: "%s"},
	)
	fmt.Println("   Reading Timestep Parameters:")
	params.WriteTopRule()
	params.WriteHeaderRow()
	params.WriteMidRule()
	params.WriteDataRow("Time stepping approach", "", "undefined", kind)
	params.WriteDataRow("Time step", "Δt", "1.0", fmt.Sprintf("%g", tp.TimeStep))
	params.WriteDataRow("Maximum time step", "Δtₘₐₓ", "9999.0", fmt.Sprintf("%g", tp.MaxTimeStep))
	params.WriteDataRow("Courant Number Target", "Coₘₐₓ", "0.999", fmt.Sprintf("%g", tp.CourantTarget))
	params.WriteBotRule()

	ctx.dtParams = tp
	return tp, nil
}

// TimeSeries returns the named series, loading it on first use from
// the matching `time series` block.
func (ctx *Context) TimeSeries(name string) (*timeseries.Series, error) {
	key := strings.ToLower(name)
	if s, ok := ctx.timeSeries[key]; ok {
		return s, nil
	}

	var found *config.Config
	ctx.Conf.Each("time series", func(node *config.Config) {
		if found == nil && strings.EqualFold(node.Value(), name) {
			found = node
		}
	})
	if found == nil {
		return nil, fault.New(fault.ConfigurationError,
			"could not find time series with name matching: %s", name)
	}
	log.Infof("Loading time series: %s", name)

	source := strings.ToLower(found.String("source", "inline"))
	var s *timeseries.Series
	var err error
	switch source {
	case "inline":
		s, err = timeseries.LoadInline(found, ctx.globalTimeFactor)
	case "csv":
		s, err = timeseries.LoadCSV(found, ctx.BasePath, ctx.globalTimeFactor)
	default:
		return nil, fault.New(fault.ConfigurationError,
			"unknown source type %q for time series: %s", source, name)
	}
	if err != nil {
		return nil, err
	}
	ctx.timeSeries[key] = s
	return s, nil
}

// RasterField returns the named raster, loading it on first use from
// the matching `raster field` block.
func (ctx *Context) RasterField(name string) (*raster.Field, error) {
	key := strings.ToLower(name)
	if f, ok := ctx.rasterFields[key]; ok {
		return f, nil
	}

	var found *config.Config
	ctx.Conf.Each("raster field", func(node *config.Config) {
		if found == nil && strings.EqualFold(node.Value(), name) {
			found = node
		}
	})
	if found == nil {
		return nil, fault.New(fault.ConfigurationError,
			"could not find raster field with name matching: %s", name)
	}
	log.Infof("Loading raster field: %s", name)

	source, err := found.GetString("source")
	if err != nil {
		return nil, err
	}
	filename, err := found.GetString("filename")
	if err != nil {
		return nil, err
	}
	path := filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(ctx.BasePath, path)
	}

	var f *raster.Field
	switch strings.ToLower(source) {
	case "nimrod":
		f, err = raster.LoadNIMROD(path, found)
	case "gdal":
		return nil, fault.New(fault.NotImplemented,
			"gdal raster source requires an external reader")
	default:
		return nil, fault.New(fault.ConfigurationError,
			"unknown source type %q for raster field: %s", source, name)
	}
	if err != nil {
		return nil, err
	}
	ctx.rasterFields[key] = f
	return f, nil
}

// WriteCheckFile reports whether the named check file should be
// written, honouring explicit `check` and `no check` keys; the mesh
// check is on by default.
func (ctx *Context) WriteCheckFile(name string) (*config.Config, bool) {
	var found *config.Config
	ctx.Conf.Each("check", func(node *config.Config) {
		if found == nil && strings.EqualFold(node.Value(), name) {
			found = node
		}
	})
	if found != nil {
		return found, true
	}

	deactivated := false
	ctx.Conf.Each("no check", func(node *config.Config) {
		if strings.EqualFold(node.Value(), name) {
			deactivated = true
		}
	})
	if deactivated {
		return nil, false
	}

	if strings.EqualFold(name, "mesh") {
		return config.New(), true
	}
	return nil, false
}
