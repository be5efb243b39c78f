package solver

import (
	"github.com/watercourse/gosv/device"
	"github.com/watercourse/gosv/field"
	"github.com/watercourse/gosv/mesh"
)

// ComputeDerivative assembles dU/dt per cell from the face fluxes, the
// depth-limited bed-slope and wall sources, the interval's inflow and
// stage boundaries, and Manning friction with an overshoot limiter.
// Inactive cells keep a NaN derivative so the update cannot write
// finite values into them.
func ComputeDerivative(queue *device.Queue, m *mesh.Cartesian2D,
	U, zbed, manning, Qin, hin *field.Vector[float32],
	flux *field.Vector[float32], dUdt *field.Vector[float32],
	timeNow, timestep, bdyT0, bdyT1 float64) {
	dx := float32(m.CellSize()[0])
	dy := float32(m.CellSize()[1])

	uData := U.Data()
	zbData := zbed.Data()
	nData := manning.Data()
	qData := Qin.Data()
	hinData := hin.Data()
	fData := flux.Data()
	dData := dUdt.Data()

	tNow := float32(timeNow)
	dt := float32(timestep)
	t0 := float32(bdyT0)
	t1 := float32(bdyT1)

	queue.ParallelFor(int(m.CellCount()), func(ci int) {
		cell := uint64(ci)

		if isNaN32(zbData[0][cell]) {
			dData[0][cell] = zbData[0][cell]
			dData[1][cell] = zbData[0][cell]
			dData[2][cell] = zbData[0][cell]
			return
		}

		cx, cy := m.CellIndex(cell)
		faces := m.FacesAroundCell(cx, cy)
		fidW, fidE, fidS, fidN := faces[0], faces[1], faces[2], faces[3]

		h := uData[0][cell]
		u := uData[1][cell]
		v := uData[2][cell]

		// Flux divergence.
		dhdt := (fData[0][fidW]-fData[0][fidE])/dx + (fData[0][fidS]-fData[0][fidN])/dy
		dudt := (fData[1][fidW]-fData[1][fidE])/dx + (fData[1][fidS]-fData[1][fidN])/dy
		dvdt := (fData[2][fidW]-fData[2][fidE])/dx + (fData[2][fidS]-fData[2][fidN])/dy

		// Bed-slope gravity source, limited to the available depth so
		// a tall bed drop cannot out-accelerate the water column.
		dzdx := zbData[1][cell]
		if abs32(dzdx) > h/dx {
			dzdx = sign32(dzdx) * h / dx
		}
		dzdy := zbData[2][cell]
		if abs32(dzdy) > h/dy {
			dzdy = sign32(dzdy) * h / dy
		}
		dudtBed := -gravity * dzdx
		dvdtBed := -gravity * dzdy

		// Wall forces from the face datum: only the wet portion of a
		// rising wall pushes back.
		if fData[3][fidW] < 0 {
			dudtBed += -gravity * max32(fData[3][fidW], -h) / dx
		}
		if fData[3][fidE] > 0 {
			dudtBed += -gravity * min32(fData[3][fidE], h) / dx
		}
		if fData[3][fidS] < 0 {
			dvdtBed += -gravity * max32(fData[3][fidS], -h) / dy
		}
		if fData[3][fidN] > 0 {
			dvdtBed += -gravity * min32(fData[3][fidN], h) / dy
		}
		dudt += dudtBed
		dvdt += dvdtBed

		// Flow boundary: centred trapezoidal rate over this step,
		// interpolating the interval's two samples.
		var dhdtSource float32
		{
			q0 := qData[0][cell]
			q1 := qData[1][cell]
			dQdt := (q1 - q0) / (t1 - t0)
			qNow := q0 + (tNow-t0)*dQdt
			qNext := qNow + dt*dQdt
			dhdtSource = 0.5 * (qNow + qNext) / (dx * dy)
		}

		// Stage boundary: negative first sample means none here.
		hBoundary := float32(-1)
		if h0 := hinData[0][cell]; h0 >= 0 {
			h1 := hinData[1][cell]
			dhdt2 := (h1 - h0) / (t1 - t0)
			hNow := h0 + (tNow-t0)*dhdt2
			hNext := hNow + dt*dhdt2
			hBoundary = 0.5 * (hNow + hNext)
		}

		if hBoundary >= 0 {
			// Dirichlet override relaxing over exactly one step; any
			// additive inflow at this cell is discarded.
			dhdt = hBoundary - h
		} else {
			dhdt += dhdtSource
		}

		// Manning's n blended between the two configured values by a
		// smoothstep in depth.
		manningN := mix(nData[0][cell], nData[2][cell],
			smoothstep(nData[1][cell], nData[3][cell], h))

		var sf float32
		if h > 1e-6 {
			invH := h / (h*h + 1e-3)
			sf = manningN * manningN * sqrt32(u*u+v*v) *
				float32(pow43(float64(invH)))
		}

		// Friction must not push the water backwards past the
		// half-step estimate.
		uEstimate := u + dudt*0.5*dt
		dudtF := gravity * sf * u
		if sign32(dudtF) == sign32(uEstimate) && abs32(dudtF) > abs32(uEstimate) {
			dudtF = uEstimate
		} else if sign32(dudtF) == sign32(uEstimate) {
			dudtF = 0
		}
		dudt -= dudtF

		vEstimate := v + dvdt*0.5*dt
		dvdtF := gravity * sf * v
		if sign32(dvdtF) == sign32(vEstimate) && abs32(dvdtF) > abs32(vEstimate) {
			dvdtF = vEstimate
		} else if sign32(dvdtF) == sign32(vEstimate) {
			dvdtF = 0
		}
		dvdt -= dvdtF

		dData[0][cell] = dhdt
		dData[1][cell] = dudt
		dData[2][cell] = dvdt
	})
}
