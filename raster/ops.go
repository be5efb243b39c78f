// Package raster provides read-only georeferenced grids with point
// sampling and box reductions, plus the NIMROD radar raster reader.
package raster

import (
	"math"

	"github.com/watercourse/gosv/fault"
)

// Operation accumulates a box reduction. The caller drives the state
// machine: while IterationsRemaining is positive, append every pixel in
// the box then call Get. Two-pass statistics (std dev and its log
// variant) report two iterations.
type Operation interface {
	IterationsRemaining() int
	Append(value float32)
	Get() float32
}

// NewOperation builds the named reduction. Unknown names are a
// ConfigurationError.
func NewOperation(name string, nodata float32) (Operation, error) {
	switch name {
	case "mean":
		return &meanOp{nodata: nodata, state: 1}, nil
	case "log mean":
		return &lnMeanOp{nodata: nodata, state: 1}, nil
	case "std dev":
		return &stdDevOp{nodata: nodata, state: 2}, nil
	case "log std dev":
		return &lnStdDevOp{nodata: nodata, state: 2}, nil
	case "min":
		return &minOp{nodata: nodata, acc: math.MaxFloat32, state: 1}, nil
	case "max":
		return &maxOp{nodata: nodata, acc: -math.MaxFloat32, state: 1}, nil
	case "sum":
		return &sumOp{nodata: nodata, state: 1}, nil
	case "count":
		return &countOp{state: 1}, nil
	}
	return nil, fault.New(fault.ConfigurationError, "unknown field functor operation: %s", name)
}

type meanOp struct {
	nodata float32
	acc    float64
	count  int
	state  int
}

func (o *meanOp) IterationsRemaining() int { return o.state }

func (o *meanOp) Append(v float32) {
	o.acc += float64(v)
	o.count++
}

func (o *meanOp) Get() float32 {
	o.state--
	if o.count > 0 {
		return float32(o.acc / float64(o.count))
	}
	return o.nodata
}

type lnMeanOp struct {
	nodata float32
	acc    float64
	count  int
	state  int
}

func (o *lnMeanOp) IterationsRemaining() int { return o.state }

func (o *lnMeanOp) Append(v float32) {
	o.acc += math.Log(float64(v))
	o.count++
}

func (o *lnMeanOp) Get() float32 {
	o.state--
	if o.count > 0 {
		return float32(o.acc / float64(o.count))
	}
	return o.nodata
}

// stdDevOp needs the mean first, so it runs two passes: the first Get
// returns the mean and resets the counter, the second the deviation.
type stdDevOp struct {
	nodata float32
	mean   float64
	dev    float64
	count  int
	state  int
}

func (o *stdDevOp) IterationsRemaining() int { return o.state }

func (o *stdDevOp) Append(v float32) {
	switch o.state {
	case 1:
		d := float64(v) - o.mean
		o.dev += d * d
		o.count++
	case 2:
		o.mean += float64(v)
		o.count++
	}
}

func (o *stdDevOp) Get() float32 {
	o.state--
	if o.count == 0 {
		return o.nodata
	}
	switch o.state {
	case 0:
		return float32(math.Sqrt(o.dev / float64(o.count)))
	case 1:
		o.mean /= float64(o.count)
		o.count = 0
		return float32(o.mean)
	}
	return o.nodata
}

type lnStdDevOp struct {
	nodata float32
	mean   float64
	dev    float64
	count  int
	state  int
}

func (o *lnStdDevOp) IterationsRemaining() int { return o.state }

func (o *lnStdDevOp) Append(v float32) {
	switch o.state {
	case 1:
		d := math.Log(float64(v)) - o.mean
		o.dev += d * d
		o.count++
	case 2:
		o.mean += math.Log(float64(v))
		o.count++
	}
}

func (o *lnStdDevOp) Get() float32 {
	o.state--
	if o.count == 0 {
		return o.nodata
	}
	switch o.state {
	case 0:
		return float32(math.Sqrt(o.dev / float64(o.count)))
	case 1:
		o.mean /= float64(o.count)
		o.count = 0
		return float32(o.mean)
	}
	return o.nodata
}

type minOp struct {
	nodata float32
	acc    float32
	seen   bool
	state  int
}

func (o *minOp) IterationsRemaining() int { return o.state }

func (o *minOp) Append(v float32) {
	o.seen = true
	if v < o.acc {
		o.acc = v
	}
}

func (o *minOp) Get() float32 {
	o.state--
	if !o.seen {
		return o.nodata
	}
	return o.acc
}

type maxOp struct {
	nodata float32
	acc    float32
	seen   bool
	state  int
}

func (o *maxOp) IterationsRemaining() int { return o.state }

func (o *maxOp) Append(v float32) {
	o.seen = true
	if v > o.acc {
		o.acc = v
	}
}

func (o *maxOp) Get() float32 {
	o.state--
	if !o.seen {
		return o.nodata
	}
	return o.acc
}

type sumOp struct {
	nodata float32
	acc    float64
	seen   bool
	state  int
}

func (o *sumOp) IterationsRemaining() int { return o.state }

func (o *sumOp) Append(v float32) {
	o.seen = true
	o.acc += float64(v)
}

func (o *sumOp) Get() float32 {
	o.state--
	if !o.seen {
		return o.nodata
	}
	return float32(o.acc)
}

type countOp struct {
	count int
	state int
}

func (o *countOp) IterationsRemaining() int { return o.state }

func (o *countOp) Append(v float32) {
	o.count++
}

func (o *countOp) Get() float32 {
	o.state--
	return float32(o.count)
}
