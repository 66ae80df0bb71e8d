package sim

import (
	"image/color"
	"math"
	"reflect"
	"testing"

	"github.com/yamb0x/particle-life-synth-sub004/config"
	"github.com/yamb0x/particle-life-synth-sub004/preset"
	"github.com/yamb0x/particle-life-synth-sub004/species"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func newTestSim(t *testing.T, seed int64) *Simulation {
	t.Helper()
	s, err := New(testConfig(t), seed)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	return s
}

func TestNew_DefaultState(t *testing.T) {
	s := newTestSim(t, 1)

	if s.SpeciesCount() != DefaultSpeciesCount {
		t.Errorf("SpeciesCount = %d, want %d", s.SpeciesCount(), DefaultSpeciesCount)
	}
	if s.ParticleCount() == 0 {
		t.Error("no particles after New")
	}
	if s.Tick() != 0 {
		t.Errorf("Tick = %d, want 0", s.Tick())
	}
	enabled, persistence := s.TrailSettings()
	if !enabled || persistence != preset.DefaultPersistence {
		t.Errorf("trail settings = (%v, %v), want (true, %v)", enabled, persistence, preset.DefaultPersistence)
	}
}

func TestSetSpeciesCount_ReinitializesParticles(t *testing.T) {
	s := newTestSim(t, 1)

	if err := s.SetSpeciesCount(5); err != nil {
		t.Fatalf("SetSpeciesCount: %v", err)
	}
	if s.SpeciesCount() != 5 {
		t.Fatalf("SpeciesCount = %d, want 5", s.SpeciesCount())
	}

	seen := make(map[int]int)
	s.ForEachParticle(func(_, _, _, _ float64, id int) {
		seen[id]++
	})
	if len(seen) != 5 {
		t.Errorf("particles reference %d species, want 5", len(seen))
	}
	for id, n := range seen {
		a, err := s.Species(id)
		if err != nil {
			t.Fatalf("Species(%d): %v", id, err)
		}
		if n != a.Count {
			t.Errorf("species %d has %d particles, want %d", id, n, a.Count)
		}
	}
}

func TestStep_Deterministic(t *testing.T) {
	const steps = 100
	dt := 1.0 / 60

	run := func() []float64 {
		s := newTestSim(t, 99)
		for i := 0; i < steps; i++ {
			s.Step(dt)
		}
		var out []float64
		s.ForEachParticle(func(x, y, vx, vy float64, _ int) {
			out = append(out, x, y, vx, vy)
		})
		return out
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("particle counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("state diverged at value %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestStep_ChaserApproachesPrey(t *testing.T) {
	s := newTestSim(t, 7)

	// Species 0 chases species 1, species 1 flees, species 2 is neutral.
	if err := s.SetSpeciesCount(3); err != nil {
		t.Fatalf("SetSpeciesCount: %v", err)
	}
	for id := 0; id < 3; id++ {
		if err := s.SetParticleCount(id, 150); err != nil {
			t.Fatalf("SetParticleCount: %v", err)
		}
	}

	m := DefaultForceModel()
	m.Kind = ProfileSustain
	s.SetForceModel(m)
	s.SetForceScale(4)
	s.SetFriction(0.1)

	mustSet := func(rel species.Relation, from, to int, v float64) {
		t.Helper()
		if err := s.SetForce(rel, from, to, v); err != nil {
			t.Fatalf("SetForce: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			mustSet(species.SocialForce, i, j, 0)
			mustSet(species.SocialRadius, i, j, 1000)
		}
	}
	mustSet(species.SocialForce, 0, 1, 5)
	mustSet(species.SocialForce, 1, 0, -5)

	for id, mobility := range []float64{1.2, 0.4} {
		if err := s.SetEffect(id, species.FieldMobility, mobility); err != nil {
			t.Fatalf("SetEffect: %v", err)
		}
		if err := s.SetEffect(id, species.FieldInertia, 1); err != nil {
			t.Fatalf("SetEffect: %v", err)
		}
	}

	// Separate the two groups deterministically; species 2 keeps its seeding.
	q := s.store.Query()
	i := 0
	for q.Next() {
		pos, _, _, ref, _ := q.Get()
		switch ref.ID {
		case 0:
			pos.X = 1000 + float64(i%15)*3
			pos.Y = 500 + float64(i/15)*3
		case 1:
			pos.X = 200 + float64(i%15)*3
			pos.Y = 200 + float64(i/15)*3
		}
		i++
	}

	before := centroidGap(s)
	for step := 0; step < 500; step++ {
		s.Step(1.0 / 60)
	}
	after := centroidGap(s)

	if after >= before {
		t.Errorf("chaser centroid gap did not shrink: before %v, after %v", before, after)
	}
	if after > before*0.9 {
		t.Errorf("chaser barely moved: before %v, after %v", before, after)
	}
}

// centroidGap returns the distance between the chaser and prey centroids.
func centroidGap(s *Simulation) float64 {
	var cx, cy [2]float64
	var n [2]int
	s.ForEachParticle(func(x, y, _, _ float64, id int) {
		if id > 1 {
			return
		}
		cx[id] += x
		cy[id] += y
		n[id]++
	})
	for i := 0; i < 2; i++ {
		cx[i] /= float64(n[i])
		cy[i] /= float64(n[i])
	}
	dx, dy := cx[0]-cx[1], cy[0]-cy[1]
	return math.Sqrt(dx*dx + dy*dy)
}

func TestStep_RepairsNonFiniteParticles(t *testing.T) {
	s := newTestSim(t, 3)

	q := s.store.Query()
	q.Next()
	pos, _, _, _, _ := q.Get()
	pos.X = math.NaN()
	q.Close()

	dt := 1.0 / 60
	s.Step(dt) // detects
	s.Step(dt) // repairs at the frame boundary

	if got := s.TakeNonFiniteRepairs(); got < 1 {
		t.Errorf("TakeNonFiniteRepairs = %d, want at least 1", got)
	}
	s.ForEachParticle(func(x, y, vx, vy float64, _ int) {
		for _, v := range []float64{x, y, vx, vy} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("non-finite state survived repair: (%v, %v, %v, %v)", x, y, vx, vy)
			}
		}
	})
}

func TestSerialize_RoundTrip(t *testing.T) {
	s := newTestSim(t, 11)

	if err := s.SetSpeciesCount(4); err != nil {
		t.Fatalf("SetSpeciesCount: %v", err)
	}
	if err := s.SetForce(species.SocialForce, 0, 2, 0.55); err != nil {
		t.Fatalf("SetForce: %v", err)
	}
	if err := s.SetForce(species.CollisionRadius, 3, 1, 17); err != nil {
		t.Fatalf("SetForce: %v", err)
	}
	if err := s.SetEffect(1, species.FieldHaloIntensity, 0.7); err != nil {
		t.Fatalf("SetEffect: %v", err)
	}
	if err := s.SetEffect(2, species.FieldGlowIntensity, 0.4); err != nil {
		t.Fatalf("SetEffect: %v", err)
	}
	if err := s.SetParticleCount(0, 42); err != nil {
		t.Fatalf("SetParticleCount: %v", err)
	}
	s.SetForceScale(1.5)
	s.SetFriction(0.7)
	s.SetBoundary(BoundaryWrap)
	s.SetTrailPersistence(0.3)
	s.SetBackground(color.RGBA{R: 1, G: 2, B: 3, A: 255})
	m := DefaultForceModel()
	m.Kind = ProfileHump
	m.TailFalloff = 0.2
	s.SetForceModel(m)

	p1 := s.Serialize()

	s2 := newTestSim(t, 12)
	if err := s2.Deserialize(p1); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	p2 := s2.Serialize()

	if !reflect.DeepEqual(p1.Physics, p2.Physics) {
		t.Errorf("physics section changed over round trip:\n%+v\n%+v", p1.Physics, p2.Physics)
	}
	if !reflect.DeepEqual(p1.Species, p2.Species) {
		t.Errorf("species section changed over round trip:\n%+v\n%+v", p1.Species, p2.Species)
	}
	if !reflect.DeepEqual(p1.Effects, p2.Effects) {
		t.Errorf("effects section changed over round trip:\n%+v\n%+v", p1.Effects, p2.Effects)
	}
	if !reflect.DeepEqual(p1.Particles, p2.Particles) {
		t.Errorf("particles section changed over round trip:\n%+v\n%+v", p1.Particles, p2.Particles)
	}

	if s2.Tick() != 0 {
		t.Errorf("tick = %d after load, want 0", s2.Tick())
	}
}

func TestDeserialize_NilPreset(t *testing.T) {
	s := newTestSim(t, 1)
	err := s.Deserialize(nil)
	if err == nil {
		t.Fatal("Deserialize(nil) = nil error")
	}
	var cfgErr *species.ConfigError
	if !errorsAs(err, &cfgErr) {
		t.Errorf("Deserialize(nil) = %T, want ConfigError", err)
	}
}

// errorsAs avoids importing errors just for one assertion.
func errorsAs(err error, target *(*species.ConfigError)) bool {
	ce, ok := err.(*species.ConfigError)
	if ok {
		*target = ce
	}
	return ok
}

func TestDeserialize_RecoversMalformedFields(t *testing.T) {
	s := newTestSim(t, 1)

	bad := -3
	p := &preset.Preset{
		Species: []preset.SpeciesSection{
			{ID: 0, Color: "not-a-color", Count: &bad},
			{ID: 7}, // out of range, dropped; the slot stays defaulted
			{ID: 1},
		},
		Physics: preset.PhysicsSection{
			Boundary: "sideways",
			Profile:  "wavy",
			SocialForce: [][]float64{
				{0.5},
			},
		},
	}

	if err := s.Deserialize(p); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if got := s.SpeciesCount(); got != 3 {
		t.Fatalf("SpeciesCount = %d, want 3", got)
	}
	// Unparseable color falls back to the deterministic default.
	a, _ := s.Species(0)
	if a.Color != species.DefaultColor(0) {
		t.Errorf("color = %v, want default %v", a.Color, species.DefaultColor(0))
	}
	// Undersized matrix is padded with defaults.
	if got := s.Physics().Boundary; got != BoundaryBounce {
		t.Errorf("boundary = %v, want fallback bounce", got)
	}
	if got := s.Physics().Model.Kind; got != ProfilePeak {
		t.Errorf("profile = %v, want fallback peak", got)
	}
}

func TestStep_PhaseSplitMatchesStep(t *testing.T) {
	dt := 1.0 / 60
	a := newTestSim(t, 21)
	b := newTestSim(t, 21)

	for i := 0; i < 50; i++ {
		a.Step(dt)
		b.BeginStep()
		b.ApplyForces()
		b.Integrate(dt)
	}

	if a.Tick() != b.Tick() {
		t.Fatalf("ticks diverged: %d vs %d", a.Tick(), b.Tick())
	}
	var sa, sb []float64
	a.ForEachParticle(func(x, y, vx, vy float64, _ int) {
		sa = append(sa, x, y, vx, vy)
	})
	b.ForEachParticle(func(x, y, vx, vy float64, _ int) {
		sb = append(sb, x, y, vx, vy)
	})
	if len(sa) != len(sb) {
		t.Fatalf("particle counts differ: %d vs %d", len(sa), len(sb))
	}
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("state diverged at value %d: %v vs %v", i, sa[i], sb[i])
		}
	}
}

func TestSetEffect_TrailCapacityResizesLiveTrails(t *testing.T) {
	s := newTestSim(t, 1)
	for i := 0; i < 5; i++ {
		s.Step(1.0 / 60)
	}

	if err := s.SetEffect(0, species.FieldTrailCapacity, 5); err != nil {
		t.Fatalf("SetEffect: %v", err)
	}

	other, err := s.Species(1)
	if err != nil {
		t.Fatalf("Species: %v", err)
	}
	q := s.store.Query()
	for q.Next() {
		_, _, _, ref, trail := q.Get()
		switch ref.ID {
		case 0:
			if trail.Cap() != 5 {
				t.Errorf("species 0 trail capacity = %d, want 5", trail.Cap())
			}
			if trail.Count != 0 {
				t.Errorf("trail history kept across a capacity change: %d points", trail.Count)
			}
		case 1:
			if trail.Cap() != other.TrailCapacity {
				t.Errorf("species 1 trail capacity = %d, want unchanged %d", trail.Cap(), other.TrailCapacity)
			}
		}
	}
}

func TestSetTrailPersistence_Clamps(t *testing.T) {
	s := newTestSim(t, 1)

	s.SetTrailPersistence(0)
	if _, got := s.TrailSettings(); got != preset.MinPersistence {
		t.Errorf("persistence = %v, want clamp to %v", got, preset.MinPersistence)
	}
	s.SetTrailPersistence(5)
	if _, got := s.TrailSettings(); got != preset.MaxPersistence {
		t.Errorf("persistence = %v, want clamp to %v", got, preset.MaxPersistence)
	}
}
