package sim

import (
	"fmt"

	"github.com/yamb0x/particle-life-synth-sub004/species"
)

// ForceEngine accumulates a net interaction force per particle from
// pairwise species relations, using the spatial grid to avoid full O(n²)
// scans.
type ForceEngine struct {
	grid    *SpatialGrid
	scratch []Neighbor
	rowMax  []float64
}

// NewForceEngine creates an engine. The grid is lazily (re)built on Apply.
func NewForceEngine() *ForceEngine {
	return &ForceEngine{}
}

// Apply recomputes the Force component of every particle. The grid is
// rebuilt from scratch each call so particle- or species-count changes can
// never leave it inconsistent.
func (fe *ForceEngine) Apply(reg *species.Registry, st *Store, phys Physics) {
	n := reg.Count()
	reach := phys.Model.TailReach()
	cell := reg.MaxSocialRadius() + reach
	wrap := phys.Boundary == BoundaryWrap

	if fe.grid == nil || !fe.grid.Matches(st.width, st.height, cell, wrap) {
		fe.grid = NewSpatialGrid(st.width, st.height, cell, wrap)
	} else {
		fe.grid.Clear()
	}

	// Per-row query radius: the largest social radius this species reaches
	// out to, extended by the model's tail reach so a nonzero boundary force
	// decays through the tail instead of cutting off at the social radius.
	fe.rowMax = fe.rowMax[:0]
	for i := 0; i < n; i++ {
		rowMax := 1.0
		for j := 0; j < n; j++ {
			if r := reg.Relation(species.SocialRadius, i, j); r > rowMax {
				rowMax = r
			}
		}
		fe.rowMax = append(fe.rowMax, rowMax+reach)
	}

	// Pass 1: rebuild the grid.
	q := st.Query()
	for q.Next() {
		pos, _, _, _, _ := q.Get()
		fe.grid.Insert(q.Entity(), pos.X, pos.Y)
	}

	attrs := reg.All()
	model := phys.Model

	// Pass 2: accumulate forces. Iteration order matches insertion order, so
	// idx is this particle's grid sequence.
	q = st.Query()
	idx := -1
	for q.Next() {
		idx++
		pos, _, frc, ref, _ := q.Get()
		e := q.Entity()

		si := ref.ID
		if si < 0 || si >= n {
			// The registry boundary guarantees this never happens; a stale
			// id here means the store outlived a species-count change.
			panic(fmt.Sprintf("sim: particle references species %d of %d", si, n))
		}

		fe.scratch = fe.scratch[:0]
		fe.scratch = fe.grid.QueryInto(fe.scratch, pos.X, pos.Y, fe.rowMax[si], e, st.posMap)

		var fx, fy float64
		for _, nb := range fe.scratch {
			sj := st.refMap.Get(nb.E).ID

			f := model.Pair(nb.Dist,
				reg.Relation(species.CollisionRadius, si, sj),
				reg.Relation(species.SocialRadius, si, sj),
				reg.Relation(species.CollisionForce, si, sj),
				reg.Relation(species.SocialForce, si, sj),
			)
			if f == 0 {
				continue
			}

			dist := nb.Dist
			if dist < model.MinDistance {
				// Coincident particles: push along a fixed axis rather than
				// dividing by (near) zero. The sign is antisymmetric across
				// the pair, from the delta or the insertion order, so the two
				// sides move apart instead of translating together.
				dir := 1.0
				switch {
				case nb.DX != 0 || nb.DY != 0:
					if nb.DX < 0 || (nb.DX == 0 && nb.DY < 0) {
						dir = -1
					}
				case nb.Seq < idx:
					dir = -1
				}
				fx += f * dir
				continue
			}
			fx += f * nb.DX / dist
			fy += f * nb.DY / dist
		}

		// Mobility scales the response before handoff to the integrator.
		scale := attrs[si].Mobility * phys.ForceScale
		frc.X = fx * scale
		frc.Y = fy * scale
	}
}
