package sim

import (
	"github.com/yamb0x/particle-life-synth-sub004/species"
)

// Integrator advances particle kinematics and trail state by one step.
// Given identical particles, forces, and dt it is bit-for-bit reproducible;
// it draws no randomness and iterates in store order.
type Integrator struct {
	maxSpeed    float64
	trailStride int

	steps     int
	nonFinite int
}

// NewIntegrator creates an integrator. trailStride records a trail point
// every Nth step to bound memory churn.
func NewIntegrator(maxSpeed float64, trailStride int) *Integrator {
	if trailStride < 1 {
		trailStride = 1
	}
	return &Integrator{maxSpeed: maxSpeed, trailStride: trailStride}
}

// Step applies forces, friction, the boundary policy, and trail bookkeeping.
func (in *Integrator) Step(reg *species.Registry, st *Store, phys Physics, dt float64) {
	attrs := reg.All()

	globalDamp := 1 - phys.Friction*dt
	if globalDamp < 0 {
		globalDamp = 0
	}

	recordTrail := in.steps%in.trailStride == 0
	maxSq := in.maxSpeed * in.maxSpeed

	q := st.Query()
	for q.Next() {
		pos, vel, frc, ref, trail := q.Get()
		a := &attrs[ref.ID]

		vel.X += frc.X * dt
		vel.Y += frc.Y * dt

		damp := a.Inertia * globalDamp
		vel.X *= damp
		vel.Y *= damp

		if sq := vel.X*vel.X + vel.Y*vel.Y; sq > maxSq {
			s := in.maxSpeed / sqrt(sq)
			vel.X *= s
			vel.Y *= s
		}

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt

		switch phys.Boundary {
		case BoundaryWrap:
			pos.X = wrapCoord(pos.X, st.width)
			pos.Y = wrapCoord(pos.Y, st.height)
		default:
			bounce(&pos.X, &vel.X, st.width, phys.WallDamping)
			bounce(&pos.Y, &vel.Y, st.height, phys.WallDamping)
		}

		if !finite(pos.X) || !finite(pos.Y) || !finite(vel.X) || !finite(vel.Y) {
			in.nonFinite++
		}

		if recordTrail {
			trail.Push(pos.X, pos.Y)
		}
	}

	in.steps++
}

// TakeNonFinite returns and clears the count of particles that went
// non-finite since the last call. The owner reseeds them at the next frame
// boundary.
func (in *Integrator) TakeNonFinite() int {
	n := in.nonFinite
	in.nonFinite = 0
	return n
}

// wrapCoord maps v into [0, limit) preserving the crossing offset.
func wrapCoord(v, limit float64) float64 {
	if v >= 0 && v < limit {
		return v
	}
	v -= limit * float64(int(v/limit))
	if v < 0 {
		v += limit
	}
	return v
}

// bounce reflects a coordinate off [0, limit], flipping and damping the
// normal velocity component.
func bounce(pos, vel *float64, limit, damping float64) {
	if *pos < 0 {
		*pos = -*pos
		if *vel < 0 {
			*vel = -*vel * damping
		}
	} else if *pos > limit {
		*pos = 2*limit - *pos
		if *vel > 0 {
			*vel = -*vel * damping
		}
	}
	// A step so large the reflection overshoots the far wall degenerates to
	// a clamp; velocity keeps the damped reflected value.
	if *pos < 0 {
		*pos = 0
	} else if *pos > limit {
		*pos = limit
	}
}
