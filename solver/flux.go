package solver

import (
	"github.com/watercourse/gosv/device"
	"github.com/watercourse/gosv/field"
	"github.com/watercourse/gosv/mesh"
)

// ComputeFluxes evaluates the numerical flux at every face from the
// reconstructed left/right states. Outputs per face: mass flux,
// x-momentum, y-momentum and the wall datum δz used by the wall
// source. Faces between two inactive cells carry zero flux; a face
// with one inactive or absent neighbour becomes a reflecting wall via
// a ghost cell whose bed is raised above the live water level.
func ComputeFluxes(queue *device.Queue, m *mesh.Cartesian2D,
	U, zbed, dUdx, dUdy *field.Vector[float32], flux *field.Vector[float32]) {
	dx := float32(m.CellSize()[0])
	dy := float32(m.CellSize()[1])
	cellCount := m.CellCount()

	uData := U.Data()
	zbData := zbed.Data()
	dxData := dUdx.Data()
	dyData := dUdy.Data()
	fData := flux.Data()

	queue.ParallelFor(int(m.FaceCount()), func(fi int) {
		fid := uint64(fi)

		// Neighbour ids; track whether we sit on a mesh edge.
		// edge = -1 means the LHS cell is a ghost, +1 the RHS.
		adj := m.CellsAroundFace(fid)
		var lhs, rhs uint64
		edge := 0
		if adj[0] < cellCount {
			lhs = adj[0]
			if adj[1] < cellCount {
				rhs = adj[1]
			} else {
				rhs = lhs
				edge = 1
			}
		} else {
			rhs = adj[1]
			lhs = rhs
			edge = -1
		}

		// Orientation factors usable directly in the flux algebra.
		var xdir, ydir float32
		if m.FaceIsVertical(fid) {
			xdir = 1
		} else {
			ydir = 1
		}

		zbL := zbData[0][lhs]
		zbR := zbData[0][rhs]

		// NaN bed marks an excluded cell: one NaN side makes a wall
		// edge, two make a dead face.
		if isNaN32(zbL) {
			lhs = rhs
			edge = -1
			if isNaN32(zbR) {
				fData[0][fid] = 0
				fData[1][fid] = 0
				fData[2][fid] = 0
				fData[3][fid] = 0
				return
			}
		} else if isNaN32(zbR) {
			rhs = lhs
			edge = 1
		}

		ghostL := float32(1)
		ghostR := float32(1)
		if edge < 0 {
			ghostL = 0
		}
		if edge > 0 {
			ghostR = 0
		}
		// The ghost's velocity is zeroed only in the face's flow
		// direction, mirroring the tangential component.
		ghostFlowL := float32(1)
		ghostFlowR := float32(1)
		if edge < 0 && xdir == 1 {
			ghostFlowL = 0
		}
		if edge > 0 && xdir == 1 {
			ghostFlowR = 0
		}
		ghostCrossL := float32(1)
		ghostCrossR := float32(1)
		if edge < 0 && ydir == 1 {
			ghostCrossL = 0
		}
		if edge > 0 && ydir == 1 {
			ghostCrossR = 0
		}

		hL := uData[0][lhs] * ghostL
		hR := uData[0][rhs] * ghostR
		uL := uData[1][lhs] * ghostFlowL
		uR := uData[1][rhs] * ghostFlowR
		vL := uData[2][lhs] * ghostCrossL
		vR := uData[2][rhs] * ghostCrossR

		dhdxL := dxData[0][lhs] * ghostL
		dhdxR := dxData[0][rhs] * ghostR
		dhdyL := dyData[0][lhs] * ghostL
		dhdyR := dyData[0][rhs] * ghostR

		dudxL := dxData[1][lhs] * ghostFlowL
		dudxR := dxData[1][rhs] * ghostFlowR
		dudyL := dyData[1][lhs] * ghostFlowL
		dudyR := dyData[1][rhs] * ghostFlowR

		dvdxL := dxData[2][lhs] * ghostCrossL
		dvdxR := dxData[2][rhs] * ghostCrossR
		dvdyL := dyData[2][lhs] * ghostCrossL
		dvdyR := dyData[2][rhs] * ghostCrossR

		dzdxL := zbData[1][lhs] * ghostL
		dzdxR := zbData[1][rhs] * ghostR
		dzdyL := zbData[2][lhs] * ghostL
		dzdyR := zbData[2][rhs] * ghostR

		// A ghost bed sits above the live water level so the face
		// always reflects.
		if edge < 0 {
			zbL = zbR + hR*1.1
		}
		if edge > 0 {
			zbR = zbL + hL*1.1
		}

		// Project each side's state to the face along the normal.
		zm := zbL + 0.5*dx*dzdxL*xdir + 0.5*dy*dzdyL*ydir
		zp := zbR - 0.5*dx*dzdxR*xdir - 0.5*dy*dzdyR*ydir

		hm := hL + 0.5*dx*dhdxL*xdir + 0.5*dy*dhdyL*ydir
		hp := hR - 0.5*dx*dhdxR*xdir - 0.5*dy*dhdyR*ydir

		um := uL + 0.5*dx*dudxL*xdir + 0.5*dy*dudyL*ydir
		up := uR - 0.5*dx*dudxR*xdir - 0.5*dy*dudyR*ydir

		vm := vL + 0.5*dx*dvdxL*xdir + 0.5*dy*dvdyL*ydir
		vp := vR - 0.5*dx*dvdxR*xdir - 0.5*dy*dvdyR*ydir

		zf := max32(zm, zp)

		hm = max32(hm, 0)
		hp = max32(hp, 0)

		ym := zm + hm
		yp := zp + hp

		cm := sqrt32(gravity * hm)
		cp := sqrt32(gravity * hp)

		var Hh, Hu, Hv float32

		switch {
		case ym > zf || yp > zf:
			// Fully wet: central flux with Rusanov dissipation.
			spdP := up*xdir + vp*ydir
			spdM := um*xdir + vm*ydir

			FhM := hm * spdM
			FhP := hp * spdP
			FuM := um*((1.0-0.5*xdir)*spdM) + gravity*hm*xdir
			FuP := up*((1.0-0.5*xdir)*spdP) + gravity*hp*xdir
			FvM := vm*((1.0-0.5*ydir)*spdM) + gravity*hm*ydir
			FvP := vp*((1.0-0.5*ydir)*spdP) + gravity*hp*ydir

			a := max32(abs32(spdP+sign32(spdP)*cp), abs32(spdM+sign32(spdM)*cm))

			Hh = 0.5*(FhP+FhM) - 0.5*a*(hp-hm)
			Hu = 0.5*(FuP+FuM) - 0.5*a*(up-um)
			Hv = 0.5*(FvP+FvM) - 0.5*a*(vp-vm)

		case hm <= 0 && hp <= 0:
			// Fully dry.
			Hh, Hu, Hv = 0, 0, 0

		case zm > zp:
			// Partially submerged step, wet on the upstream side.
			spd := um*xdir + vm*ydir
			Fh := hm * spd
			Fu := um*(0.5*spd) + gravity*hm*xdir
			Fv := vm*(0.5*spd) + gravity*hm*ydir
			a := abs32(spd + sign32(spd)*cm)
			Hh = Fh - 0.5*a*-hm
			Hu = Fu - 0.5*a*-um
			Hv = Fv - 0.5*a*-vm

		default:
			// Partially submerged step, wet on the downstream side.
			spd := up*xdir + vp*ydir
			Fh := hp * spd
			Fu := up*(0.5*spd) + gravity*hp*xdir
			Fv := vp*(0.5*spd) + gravity*hp*ydir
			a := abs32(spd + sign32(spd)*cp)
			Hh = Fh - 0.5*a*hp
			Hu = Fu - 0.5*a*up
			Hv = Fv - 0.5*a*vp
		}

		fData[0][fid] = Hh
		fData[1][fid] = Hu
		fData[2][fid] = Hv
		fData[3][fid] = zp - zm
	})
}
