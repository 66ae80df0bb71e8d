package sim

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"github.com/mlange-42/ark/ecs"

	"github.com/yamb0x/particle-life-synth-sub004/components"
	"github.com/yamb0x/particle-life-synth-sub004/species"
)

// particleMapper bundles the five components every particle carries.
type particleMapper = ecs.Map5[
	components.Position,
	components.Velocity,
	components.Force,
	components.SpeciesRef,
	components.Trail,
]

type particleFilter = ecs.Filter5[
	components.Position,
	components.Velocity,
	components.Force,
	components.SpeciesRef,
	components.Trail,
]

// Store owns the particle arrays for one simulation instance. It is created
// whole and replaced whole: any species-count or particle-count change
// builds a fresh store rather than patching this one, so matrix-dimension
// and species-id invariants can never be violated mid-frame.
type Store struct {
	world  *ecs.World
	mapper *particleMapper
	filter *particleFilter

	posMap *ecs.Map1[components.Position]
	refMap *ecs.Map1[components.SpeciesRef]

	width, height float64
	perSpecies    []int
	total         int
}

// NewStore creates a store seeded from the registry's per-species counts and
// starting-distribution patterns. All randomness comes from rng, so a seeded
// simulation reproduces its initial state exactly.
func NewStore(reg *species.Registry, width, height float64, rng *rand.Rand) *Store {
	s := &Store{
		width:  width,
		height: height,
	}
	s.world = ecs.NewWorld()
	s.mapper = ecs.NewMap5[
		components.Position,
		components.Velocity,
		components.Force,
		components.SpeciesRef,
		components.Trail,
	](s.world)
	s.filter = ecs.NewFilter5[
		components.Position,
		components.Velocity,
		components.Force,
		components.SpeciesRef,
		components.Trail,
	](s.world)
	s.posMap = ecs.NewMap1[components.Position](s.world)
	s.refMap = ecs.NewMap1[components.SpeciesRef](s.world)

	all := reg.All()
	s.perSpecies = make([]int, len(all))

	for id, attrs := range all {
		seeder := newSeeder(attrs.Pattern, id, len(all), width, height, rng)
		for i := 0; i < attrs.Count; i++ {
			x, y := seeder.next(i, attrs.Count)
			pos := components.Position{X: x, Y: y}
			vel := components.Velocity{}
			frc := components.Force{}
			ref := components.SpeciesRef{ID: id}
			trail := components.NewTrail(attrs.TrailCapacity)
			s.mapper.NewEntity(&pos, &vel, &frc, &ref, &trail)
		}
		s.perSpecies[id] = attrs.Count
		s.total += attrs.Count
	}

	return s
}

// Count returns the total number of particles.
func (s *Store) Count() int { return s.total }

// CountOf returns the particle count for one species.
func (s *Store) CountOf(id int) int {
	if id < 0 || id >= len(s.perSpecies) {
		return 0
	}
	return s.perSpecies[id]
}

// Size returns the world dimensions the store was seeded for.
func (s *Store) Size() (w, h float64) { return s.width, s.height }

// Query starts an iteration over all particles. Iteration order is the
// creation order (species-major), which keeps stepping deterministic.
func (s *Store) Query() particleQuery {
	return s.filter.Query()
}

type particleQuery = ecs.Query5[
	components.Position,
	components.Velocity,
	components.Force,
	components.SpeciesRef,
	components.Trail,
]

// Sanitize reseeds any particle whose position or velocity has gone
// non-finite, e.g. from a pathological preset. Returns the number of
// particles reset.
func (s *Store) Sanitize(rng *rand.Rand) int {
	reset := 0
	q := s.filter.Query()
	for q.Next() {
		pos, vel, frc, _, trail := q.Get()
		if finite(pos.X) && finite(pos.Y) && finite(vel.X) && finite(vel.Y) {
			continue
		}
		pos.X = rng.Float64() * s.width
		pos.Y = rng.Float64() * s.height
		vel.X, vel.Y = 0, 0
		frc.X, frc.Y = 0, 0
		trail.Reset()
		reset++
	}
	return reset
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// seeder generates starting positions for one species.
type seeder struct {
	pattern string
	rng     *rand.Rand
	w, h    float64

	// cluster
	cx, cy, sigma float64
	// ring
	radius float64
	// noise
	noise *perlin.Perlin
	freq  float64
}

func newSeeder(pattern string, id, numSpecies int, w, h float64, rng *rand.Rand) *seeder {
	s := &seeder{pattern: pattern, rng: rng, w: w, h: h}
	switch pattern {
	case "cluster":
		// Species-specific cluster center inside the middle 60% of the world.
		s.cx = w * (0.2 + 0.6*rng.Float64())
		s.cy = h * (0.2 + 0.6*rng.Float64())
		s.sigma = math.Min(w, h) / 10
	case "ring":
		span := 0.0
		if numSpecies > 1 {
			span = float64(id) / float64(numSpecies-1)
		}
		s.radius = math.Min(w, h) * (0.15 + 0.25*span)
	case "noise":
		s.noise = perlin.NewPerlin(2, 2, 3, rng.Int63())
		s.freq = 4 / math.Max(w, h)
	}
	return s
}

// next returns the i-th starting position out of n for this species.
func (s *seeder) next(i, n int) (x, y float64) {
	switch s.pattern {
	case "cluster":
		x = clampCoord(s.cx+s.rng.NormFloat64()*s.sigma, s.w)
		y = clampCoord(s.cy+s.rng.NormFloat64()*s.sigma, s.h)
		return x, y
	case "ring":
		angle := 2*math.Pi*float64(i)/float64(max(n, 1)) + s.rng.Float64()*0.05
		r := s.radius * (0.95 + 0.1*s.rng.Float64())
		x = clampCoord(s.w/2+math.Cos(angle)*r, s.w)
		y = clampCoord(s.h/2+math.Sin(angle)*r, s.h)
		return x, y
	case "noise":
		// Rejection-sample toward the positive noise regions; fall back to
		// the last candidate so seeding always terminates.
		for try := 0; try < 16; try++ {
			x = s.rng.Float64() * s.w
			y = s.rng.Float64() * s.h
			if s.noise.Noise2D(x*s.freq, y*s.freq) > 0.1 {
				return x, y
			}
		}
		return x, y
	default: // uniform
		return s.rng.Float64() * s.w, s.rng.Float64() * s.h
	}
}

func clampCoord(v, limit float64) float64 {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
