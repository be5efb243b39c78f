package solver

import (
	"github.com/watercourse/gosv/device"
	"github.com/watercourse/gosv/field"
	"github.com/watercourse/gosv/mesh"
)

// minmod3 limits three slope candidates: the one-sided differences
// scaled by θ and the central difference, combined pairwise with the
// classic minmod rule.
func minmod3(a, b, c float32) float32 {
	mm := 0.5 * (sign32(a) + sign32(b)) * min32(abs32(a), abs32(b))
	return 0.5 * (sign32(mm) + sign32(c)) * min32(abs32(mm), abs32(c))
}

// Reconstruct computes the θ-limited slopes of every component of U in
// x and y. Absent neighbours at mesh edges and NaN (inactive)
// neighbours are replaced by the centre value, so no finite slope is
// contributed across an inactive boundary.
func Reconstruct(queue *device.Queue, m *mesh.Cartesian2D,
	U, dUdx, dUdy *field.Vector[float32], theta float32) {
	nx, ny := m.CellIndexSize()[0], m.CellIndexSize()[1]
	dx := float32(m.CellSize()[0])
	dy := float32(m.CellSize()[1])

	uData := U.Data()
	dxData := dUdx.Data()
	dyData := dUdy.Data()
	n := int(m.CellCount())

	queue.ParallelFor(n, func(i int) {
		cid := uint64(i)
		cx, cy := m.CellIndex(cid)

		cidW, cidE, cidS, cidN := cid, cid, cid, cid
		if cx > 0 {
			cidW = m.CellLinearID(cx-1, cy)
		}
		if cx < nx-1 {
			cidE = m.CellLinearID(cx+1, cy)
		}
		if cy > 0 {
			cidS = m.CellLinearID(cx, cy-1)
		}
		if cy < ny-1 {
			cidN = m.CellLinearID(cx, cy+1)
		}

		for k := range uData {
			u := uData[k]
			uc := u[cid]
			uw := u[cidW]
			ue := u[cidE]
			us := u[cidS]
			un := u[cidN]

			if isNaN32(uw) {
				uw = uc
			}
			if isNaN32(ue) {
				ue = uc
			}
			if isNaN32(us) {
				us = uc
			}
			if isNaN32(un) {
				un = uc
			}

			dxData[k][cid] = minmod3(theta*(uc-uw)/dx, theta*(ue-uc)/dx,
				0.5*(ue-uw)/dx)
			dyData[k][cid] = minmod3(theta*(uc-us)/dy, theta*(un-uc)/dy,
				0.5*(un-us)/dy)
		}
	})
}
