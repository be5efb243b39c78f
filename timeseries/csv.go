package timeseries

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/fault"
)

// timeParser turns a time string into simulation seconds: either a
// plain number scaled by the block's time unit, or a wall-clock string
// matched against a strftime-style `time format` and measured from the
// `time zero` anchor.
type timeParser struct {
	layout     string
	zero       time.Time
	unitFactor float64
}

func newTimeParser(conf *config.Config, globalTimeFactor float64) (*timeParser, error) {
	tp := &timeParser{}
	format := conf.String("time format", "")
	if format != "" {
		tp.layout = strftimeToLayout(format)
		zeroStr, err := conf.GetString("time zero")
		if err != nil {
			return nil, err
		}
		zero, perr := time.Parse(tp.layout, zeroStr)
		if perr != nil {
			return nil, fault.Wrap(fault.ConfigurationError, perr,
				"cannot parse time zero %q with format %q", zeroStr, format)
		}
		tp.zero = zero
	}
	factor, err := config.TimeUnitFactor(conf, globalTimeFactor)
	if err != nil {
		return nil, err
	}
	tp.unitFactor = factor
	return tp, nil
}

func (tp *timeParser) parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if tp.layout != "" {
		t, err := time.Parse(tp.layout, s)
		if err != nil {
			return 0, fault.Wrap(fault.ConfigurationError, err, "cannot parse time %q", s)
		}
		return t.Sub(tp.zero).Seconds(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fault.Wrap(fault.ConfigurationError, err, "cannot parse time %q", s)
	}
	return v * tp.unitFactor, nil
}

// strftimeToLayout translates the common strftime directives into a Go
// reference layout.
func strftimeToLayout(format string) string {
	replacer := strings.NewReplacer(
		"%Y", "2006",
		"%y", "06",
		"%m", "01",
		"%d", "02",
		"%H", "15",
		"%M", "04",
		"%S", "05",
		"%%", "%",
	)
	return replacer.Replace(format)
}

// LoadCSV reads a series from a delimited text file. With headers the
// time and value columns are named; without, they are 1-based indices
// defaulting to columns 1 and 2.
func LoadCSV(conf *config.Config, basePath string, globalTimeFactor float64) (*Series, error) {
	filename, err := conf.GetString("filename")
	if err != nil {
		return nil, err
	}
	path := filename
	if !filepath.IsAbs(path) && basePath != "" {
		path = filepath.Join(basePath, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrap(fault.IOFailure, err, "cannot open time series file %s", path)
	}
	defer f.Close()

	sep := conf.String("separator", ",")
	commentChar := conf.String("comment character", "#")
	headers := conf.Bool("headers", true)
	skipRows := int(conf.Int("skip rows", 0))
	skipCols := int(conf.Int("skip cols", 0))

	r := csv.NewReader(f)
	if len(sep) > 0 {
		r.Comma = rune(sep[0])
	}
	if len(commentChar) > 0 {
		r.Comment = rune(commentChar[0])
	}
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fault.Wrap(fault.IOFailure, err, "cannot read time series file %s", path)
	}
	if skipRows > 0 {
		if skipRows >= len(rows) {
			return nil, fault.New(fault.IOFailure, "time series file %s has no data rows", path)
		}
		rows = rows[skipRows:]
	}

	var timeCol, valueCol int
	if headers {
		if len(rows) == 0 {
			return nil, fault.New(fault.IOFailure, "time series file %s is empty", path)
		}
		head := rows[0]
		rows = rows[1:]
		timeHeader, err := conf.GetString("time column")
		if err != nil {
			return nil, err
		}
		valueHeader, err := conf.GetString("value column")
		if err != nil {
			return nil, err
		}
		timeCol, valueCol = -1, -1
		for i, name := range head {
			if strings.EqualFold(strings.TrimSpace(name), timeHeader) {
				timeCol = i
			}
			if strings.EqualFold(strings.TrimSpace(name), valueHeader) {
				valueCol = i
			}
		}
		if timeCol < 0 || valueCol < 0 {
			return nil, fault.New(fault.ConfigurationError,
				"time series file %s does not have columns %q and %q", path, timeHeader, valueHeader)
		}
	} else {
		timeCol = int(conf.Int("time column", 1)) - 1
		valueCol = int(conf.Int("value column", 2)) - 1
	}
	timeCol += skipCols
	valueCol += skipCols

	tp, err := newTimeParser(conf, globalTimeFactor)
	if err != nil {
		return nil, err
	}

	var times []float64
	var values []float32
	for _, row := range rows {
		if timeCol >= len(row) || valueCol >= len(row) {
			return nil, fault.New(fault.IOFailure,
				"short row in time series file %s", path)
		}
		t, err := tp.parse(row[timeCol])
		if err != nil {
			return nil, err
		}
		v, perr := strconv.ParseFloat(strings.TrimSpace(row[valueCol]), 32)
		if perr != nil {
			return nil, fault.Wrap(fault.IOFailure, perr,
				"bad value %q in time series file %s", row[valueCol], path)
		}
		times = append(times, t)
		values = append(values, float32(v))
	}
	scaleAndOffset(conf, times, values)
	return New(times, values)
}
