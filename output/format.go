package output

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/fault"
)

type GeometryType uint8

const (
	XYZ GeometryType = iota
	WKT
)

// Format writes one file per (variable, time tag) into an output
// directory, created on first use. File names follow
// {prefix}{variable}_{time_tag}{suffix}.
type Format struct {
	geomType  GeometryType
	delimiter string
	outputDir string
	prefix    string
	suffix    string

	dirExists bool
}

// NewFormat resolves an `output` block: the value selects csv
// (comma) or txt (tab); `geometry` selects xyz or wkt columns.
func NewFormat(conf *config.Config, defaultDir string) (*Format, error) {
	name := strings.ToLower(conf.Value())
	f := &Format{
		outputDir: conf.String("output directory", defaultDir),
		prefix:    conf.String("output prefix", ""),
		suffix:    conf.String("output suffix", ""),
	}
	switch name {
	case "csv":
		f.delimiter = ", "
	case "txt":
		f.delimiter = "\t"
	default:
		return nil, fault.New(fault.ConfigurationError, "output format not known: %s", name)
	}
	if d := conf.String("delimiter", ""); d != "" {
		f.delimiter = d
	}

	switch strings.ToLower(conf.String("geometry", "xyz")) {
	case "xyz", "xy":
		f.geomType = XYZ
	case "wkt":
		f.geomType = WKT
	default:
		return nil, fault.New(fault.ConfigurationError,
			"unknown geometry type %q for output", conf.String("geometry", ""))
	}
	return f, nil
}

// NewCSVFormat builds a comma-separated WKT format directly, used for
// check files.
func NewCSVFormat(geomType GeometryType, outputDir string) *Format {
	return &Format{
		geomType:  geomType,
		delimiter: ", ",
		outputDir: outputDir,
		suffix:    ".txt",
	}
}

func (f *Format) ensureDir() error {
	if f.dirExists {
		return nil
	}
	if err := os.MkdirAll(f.outputDir, 0o755); err != nil {
		return fault.Wrap(fault.IOFailure, err,
			"could not create output directory: %s", f.outputDir)
	}
	f.dirExists = true
	return nil
}

// Output writes one file for the function at the given time tag.
func (f *Format) Output(fn Function, timeTag string) error {
	if err := f.ensureDir(); err != nil {
		return err
	}
	name := f.prefix + fn.Name() + "_" + timeTag + f.suffix
	path := filepath.Join(f.outputDir, name)
	file, err := os.Create(path)
	if err != nil {
		return fault.Wrap(fault.IOFailure, err, "could not create output file %s", path)
	}
	defer file.Close()
	w := bufio.NewWriter(file)

	for i := 0; i < fn.Size(); i++ {
		if f.geomType == XYZ {
			c := fn.Coordinates(i)
			w.WriteString(fmtValue64(c[0]))
			w.WriteString(f.delimiter)
			w.WriteString(fmtValue64(c[1]))
			w.WriteString(f.delimiter)
		} else {
			w.WriteString("\"")
			w.WriteString(fn.WKT(i))
			w.WriteString("\"")
			w.WriteString(f.delimiter)
		}
		for j, v := range fn.Values(i) {
			if j > 0 {
				w.WriteString(f.delimiter)
			}
			w.WriteString(fmtValue32(v))
		}
		w.WriteString("\n")
	}
	if err := w.Flush(); err != nil {
		return fault.Wrap(fault.IOFailure, err, "write error on %s", path)
	}
	return nil
}

func fmtValue64(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func fmtValue32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
