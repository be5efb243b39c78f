package solver

import (
	"github.com/watercourse/gosv/device"
	"github.com/watercourse/gosv/field"
	"github.com/watercourse/gosv/mesh"
)

// ControlNumber is the global maximum of the local Courant-like
// number, Δt · max over cells of (|u|+c)/dx + (|v|+c)/dy, computed as
// a parallel max reduction. Inactive cells contribute zero because
// NaN never wins a maximum comparison.
func ControlNumber(queue *device.Queue, m *mesh.Cartesian2D,
	U *field.Vector[float32], timestep float64) float64 {
	dx := float32(m.CellSize()[0])
	dy := float32(m.CellSize()[1])
	dt := float32(timestep)
	uData := U.Data()

	max := queue.ReduceMax(int(m.CellCount()), 0, func(i int) float32 {
		h := max32(uData[0][i], 0)
		u := abs32(uData[1][i])
		v := abs32(uData[2][i])
		c := sqrt32(gravity * h)
		return dt * ((u+c)/dx + (v+c)/dy)
	})
	return float64(max)
}
