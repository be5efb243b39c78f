package registry

import (
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"

	"github.com/watercourse/gosv/fault"
)

// Manifest is the machine-readable record of the parameters a run was
// started with, written alongside the check files.
type Manifest struct {
	Name          string  `json:"Name"`
	StartTime     float64 `json:"StartTime"`
	EndTime       float64 `json:"EndTime"`
	SyncStep      float64 `json:"SyncStep"`
	DisplayEvery  uint64  `json:"DisplayEvery"`
	TimeStep      float64 `json:"TimeStep"`
	MaxTimeStep   float64 `json:"MaxTimeStep"`
	CourantTarget float64 `json:"CourantTarget"`
	Scheme        string  `json:"Scheme"`
}

// WriteManifest serialises the resolved parameters to params.yaml in
// the check directory.
func (ctx *Context) WriteManifest() error {
	rp, err := ctx.RunParameters()
	if err != nil {
		return err
	}
	tp, err := ctx.TimestepParameters()
	if err != nil {
		return err
	}

	scheme := ""
	if rk, ok := tp.DdtScheme.Child("runge kutta"); ok {
		scheme = rk.String("method", "")
	}

	m := Manifest{
		Name:          ctx.Name(),
		StartTime:     rp.StartTime,
		EndTime:       rp.EndTime,
		SyncStep:      rp.SyncStep,
		DisplayEvery:  rp.DisplayEvery,
		TimeStep:      tp.TimeStep,
		MaxTimeStep:   tp.MaxTimeStep,
		CourantTarget: tp.CourantTarget,
		Scheme:        scheme,
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fault.Wrap(fault.IOFailure, err, "cannot serialise run manifest")
	}
	dir := ctx.CheckFilePath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fault.Wrap(fault.IOFailure, err, "could not create check file directory %s", dir)
	}
	path := filepath.Join(dir, "params.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fault.Wrap(fault.IOFailure, err, "could not write %s", path)
	}
	return nil
}
