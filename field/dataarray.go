// Package field holds dense per-object arrays for mesh-mapped data.
// Every array has exactly one live location at a time, host or device;
// kernels borrow the live slice for a single queue submission and the
// residency flag models the exclusive ownership transfer.
package field

import (
	"github.com/watercourse/gosv/device"
)

type DataArray[T any] struct {
	queue    *device.Queue
	host     []T
	dev      []T
	onDevice bool
}

func NewDataArray[T any](queue *device.Queue, n int, onDevice bool, init T) *DataArray[T] {
	buf := make([]T, n)
	for i := range buf {
		buf[i] = init
	}
	d := &DataArray[T]{queue: queue}
	if onDevice {
		d.dev = buf
		d.onDevice = true
	} else {
		d.host = buf
	}
	return d
}

func NewDataArrayFrom[T any](queue *device.Queue, values []T) *DataArray[T] {
	host := make([]T, len(values))
	copy(host, values)
	return &DataArray[T]{queue: queue, host: host}
}

func (d *DataArray[T]) Queue() *device.Queue {
	return d.queue
}

func (d *DataArray[T]) Size() int {
	if d.onDevice {
		return len(d.dev)
	}
	return len(d.host)
}

func (d *DataArray[T]) IsOnDevice() bool {
	return d.onDevice
}

func (d *DataArray[T]) MoveToDevice() {
	if d.onDevice {
		return
	}
	d.dev = make([]T, len(d.host))
	copy(d.dev, d.host)
	d.host = nil
	d.onDevice = true
}

func (d *DataArray[T]) MoveToHost() {
	if !d.onDevice {
		return
	}
	d.host = make([]T, len(d.dev))
	copy(d.host, d.dev)
	d.dev = nil
	d.onDevice = false
}

// Data borrows the live buffer for one submission, wherever it lives.
func (d *DataArray[T]) Data() []T {
	if d.onDevice {
		return d.dev
	}
	return d.host
}

// Host returns the host buffer; the array must not be on the device.
func (d *DataArray[T]) Host() []T {
	if d.onDevice {
		panic("field: host access to device-resident array")
	}
	return d.host
}

// Copy duplicates storage on the same side as the source.
func (d *DataArray[T]) Copy() *DataArray[T] {
	c := &DataArray[T]{queue: d.queue, onDevice: d.onDevice}
	if d.onDevice {
		c.dev = make([]T, len(d.dev))
		copy(c.dev, d.dev)
	} else {
		c.host = make([]T, len(d.host))
		copy(c.host, d.host)
	}
	return c
}
