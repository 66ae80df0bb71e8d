// Package sim implements the particle-life engine: particle storage, the
// pairwise force engine, the integrator, and the Simulation aggregate that
// external collaborators drive through a small setter API. All mutable
// state hangs off a Simulation instance; there are no package-level
// globals, so multiple instances can run side by side.
package sim

import (
	"image/color"
	"log/slog"
	"math/rand"

	"github.com/yamb0x/particle-life-synth-sub004/components"
	"github.com/yamb0x/particle-life-synth-sub004/config"
	"github.com/yamb0x/particle-life-synth-sub004/preset"
	"github.com/yamb0x/particle-life-synth-sub004/species"
)

// Effects holds the global (not per-species) render effect settings carried
// by a preset. The render pipeline reads them through the Simulation view.
type Effects struct {
	TrailEnabled     bool
	TrailPersistence float64 // fade opacity per frame; smaller = longer trails
	Background       color.RGBA
}

// DefaultEffects returns the settings used when a preset omits them.
func DefaultEffects() Effects {
	return Effects{
		TrailEnabled:     true,
		TrailPersistence: preset.DefaultPersistence,
		Background:       color.RGBA{R: 8, G: 8, B: 12, A: 255},
	}
}

// DefaultSpeciesCount is the species count of a fresh simulation.
const DefaultSpeciesCount = 3

// Simulation owns one complete simulation state: the species registry, the
// particle store, and the engine stages. One Step call advances exactly one
// frame; state transitions triggered by setters are atomic relative to the
// frame boundary.
type Simulation struct {
	cfg *config.Config
	rng *rand.Rand

	reg    *species.Registry
	store  *Store
	forces *ForceEngine
	integ  *Integrator

	phys Physics
	fx   Effects

	tick         int64
	needSanitize bool
	repairs      int
}

// New creates a simulation with default species and physics, seeded by seed.
func New(cfg *config.Config, seed int64) (*Simulation, error) {
	reg, err := species.New(DefaultSpeciesCount,
		cfg.Limits.MaxSpecies, cfg.Limits.MaxParticlesPerSpec, cfg.Trails.DefaultCapacity)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		reg:    reg,
		forces: NewForceEngine(),
		integ:  NewIntegrator(cfg.Physics.MaxSpeed, cfg.Trails.Stride),
		phys:   DefaultPhysics(),
		fx:     DefaultEffects(),
	}
	s.phys.Model.MinDistance = cfg.Physics.MinDistance
	s.reinit()
	return s, nil
}

// reinit rebuilds the particle store from the registry. Used for every
// species-count or particle-count change and for preset loads; the store is
// never patched in place.
func (s *Simulation) reinit() {
	s.store = NewStore(s.reg, s.cfg.Derived.WorldW, s.cfg.Derived.WorldH, s.rng)
	s.needSanitize = false
}

// Registry exposes the species registry for read access (UI, renderer).
// Mutation goes through the Simulation setters.
func (s *Simulation) Registry() *species.Registry { return s.reg }

// Physics returns the current global dynamics parameters.
func (s *Simulation) Physics() Physics { return s.phys }

// Tick returns the number of completed steps.
func (s *Simulation) Tick() int64 { return s.tick }

// ParticleCount returns the total number of live particles.
func (s *Simulation) ParticleCount() int { return s.store.Count() }

// WorldSize returns the simulation domain dimensions.
func (s *Simulation) WorldSize() (w, h float64) { return s.store.Size() }

// SpeciesCount returns the current number of species.
func (s *Simulation) SpeciesCount() int { return s.reg.Count() }

// Species returns a copy of the attributes for id.
func (s *Simulation) Species(id int) (species.Attributes, error) { return s.reg.Get(id) }

// TrailSettings returns the trail-fade layer settings.
func (s *Simulation) TrailSettings() (enabled bool, persistence float64) {
	return s.fx.TrailEnabled, s.fx.TrailPersistence
}

// Background returns the clear/fade color.
func (s *Simulation) Background() color.RGBA { return s.fx.Background }

// ForEachParticle visits every particle in deterministic store order.
func (s *Simulation) ForEachParticle(fn func(x, y, vx, vy float64, speciesID int)) {
	q := s.store.Query()
	for q.Next() {
		pos, vel, _, ref, _ := q.Get()
		fn(pos.X, pos.Y, vel.X, vel.Y, ref.ID)
	}
}

// ForEachTrail visits every particle's trail ring buffer.
func (s *Simulation) ForEachTrail(fn func(speciesID int, pathLength float64)) {
	q := s.store.Query()
	for q.Next() {
		_, _, _, ref, trail := q.Get()
		fn(ref.ID, trail.PathLength())
	}
}

// SetSpeciesCount changes the species count, resizing all relation matrices
// (preserving the existing submatrix) and reinitializing the particle
// arrays. Fails with a ConfigError outside [1, MaxSpecies].
func (s *Simulation) SetSpeciesCount(n int) error {
	if err := s.reg.SetSpeciesCount(n); err != nil {
		return err
	}
	s.reinit()
	return nil
}

// SetParticleCount changes one species' particle count and reinitializes
// the particle arrays.
func (s *Simulation) SetParticleCount(speciesID, n int) error {
	if err := s.reg.SetCount(speciesID, n); err != nil {
		return err
	}
	s.reinit()
	return nil
}

// SetForce updates one relation matrix entry.
func (s *Simulation) SetForce(rel species.Relation, from, to int, value float64) error {
	return s.reg.SetRelation(rel, from, to, value)
}

// SetEffect updates a per-species visual property (halo, glow, size, trail
// capacity). The render pipeline's gradient cache keys on these values, so
// a change invalidates the affected entries on the next frame. A trail
// capacity change swaps the species' live ring buffers immediately; their
// recorded history restarts.
func (s *Simulation) SetEffect(speciesID int, field string, value float64) error {
	if err := s.reg.SetProperty(speciesID, field, value); err != nil {
		return err
	}
	if field == species.FieldTrailCapacity {
		s.resizeTrails(speciesID)
	}
	return nil
}

// resizeTrails rebuilds one species' trail buffers at the registry's current
// capacity.
func (s *Simulation) resizeTrails(speciesID int) {
	attrs, err := s.reg.Get(speciesID)
	if err != nil {
		return
	}
	q := s.store.Query()
	for q.Next() {
		_, _, _, ref, trail := q.Get()
		if ref.ID != speciesID || trail.Cap() == attrs.TrailCapacity {
			continue
		}
		*trail = components.NewTrail(attrs.TrailCapacity)
	}
}

// SetTrailEnabled toggles the trail-fade layer.
func (s *Simulation) SetTrailEnabled(enabled bool) {
	s.fx.TrailEnabled = enabled
}

// SetTrailPersistence sets the fade opacity, clamped to the documented
// range.
func (s *Simulation) SetTrailPersistence(v float64) {
	if v < preset.MinPersistence {
		v = preset.MinPersistence
	} else if v > preset.MaxPersistence {
		v = preset.MaxPersistence
	}
	s.fx.TrailPersistence = v
}

// SetBackground sets the clear/fade color.
func (s *Simulation) SetBackground(c color.RGBA) { s.fx.Background = c }

// SetForceScale sets the global force multiplier.
func (s *Simulation) SetForceScale(v float64) { s.phys.ForceScale = v }

// SetFriction sets the global damping rate.
func (s *Simulation) SetFriction(v float64) { s.phys.Friction = v }

// SetWallDamping sets the bounce velocity retention.
func (s *Simulation) SetWallDamping(v float64) { s.phys.WallDamping = v }

// SetBoundary selects the boundary policy.
func (s *Simulation) SetBoundary(mode BoundaryMode) { s.phys.Boundary = mode }

// SetForceModel replaces the interpolation model. The min-distance floor
// from the static config is always kept.
func (s *Simulation) SetForceModel(m ForceModel) {
	m.MinDistance = s.cfg.Physics.MinDistance
	s.phys.Model = m
}

// RandomizeMatrices refills the force matrices from the simulation RNG.
func (s *Simulation) RandomizeMatrices() {
	s.reg.RandomizeMatrices(s.rng)
}

// Step advances the simulation by dt: deferred repair, force accumulation,
// and integration. Callers that want per-phase timing use the three phase
// methods directly in the same order.
func (s *Simulation) Step(dt float64) {
	s.BeginStep()
	s.ApplyForces()
	s.Integrate(dt)
}

// BeginStep runs the deferred non-finite repair so the frame starts from
// finite state; the repair is atomic relative to the frame.
func (s *Simulation) BeginStep() {
	if !s.needSanitize {
		return
	}
	if n := s.store.Sanitize(s.rng); n > 0 {
		slog.Warn("reseeded non-finite particles", "count", n, "tick", s.tick)
		s.repairs += n
	}
	s.needSanitize = false
}

// ApplyForces recomputes every particle's Force component from the current
// relation matrices.
func (s *Simulation) ApplyForces() {
	s.forces.Apply(s.reg, s.store, s.phys)
}

// Integrate advances positions and velocities by dt and closes the frame.
func (s *Simulation) Integrate(dt float64) {
	s.integ.Step(s.reg, s.store, s.phys, dt)

	if n := s.integ.TakeNonFinite(); n > 0 {
		slog.Warn("non-finite particle state detected", "count", n, "tick", s.tick)
		s.needSanitize = true
	}

	s.tick++
}

// TakeNonFiniteRepairs returns the number of particles reseeded after
// numeric blowups since the last call, resetting the counter.
func (s *Simulation) TakeNonFiniteRepairs() int {
	n := s.repairs
	s.repairs = 0
	return n
}

// Serialize captures the complete scene configuration as a preset record.
// Particle positions are not part of the record; loading reinitializes them.
func (s *Simulation) Serialize() *preset.Preset {
	all := s.reg.All()

	p := &preset.Preset{
		Particles: preset.ParticlesSection{
			Counts: make([]int, len(all)),
		},
		Physics: preset.PhysicsSection{
			ForceScale:      preset.F(s.phys.ForceScale),
			Friction:        preset.F(s.phys.Friction),
			WallDamping:     preset.F(s.phys.WallDamping),
			Boundary:        s.phys.Boundary.String(),
			Profile:         s.phys.Model.Kind.String(),
			TailFalloff:     preset.F(s.phys.Model.TailFalloff),
			SocialForce:     s.reg.MatrixRows(species.SocialForce),
			CollisionForce:  s.reg.MatrixRows(species.CollisionForce),
			SocialRadius:    s.reg.MatrixRows(species.SocialRadius),
			CollisionRadius: s.reg.MatrixRows(species.CollisionRadius),
		},
		Effects: preset.EffectsSection{
			Trail: preset.TrailEffect{
				Enabled:     preset.B(s.fx.TrailEnabled),
				Persistence: preset.F(s.fx.TrailPersistence),
			},
			Background: preset.FormatColor(s.fx.Background),
		},
		Species: make([]preset.SpeciesSection, len(all)),
	}

	for id, a := range all {
		p.Particles.Counts[id] = a.Count
		p.Species[id] = preset.SpeciesSection{
			ID:            id,
			Name:          a.Name,
			Color:         preset.FormatColor(a.Color),
			Size:          preset.F(a.Size),
			Pattern:       a.Pattern,
			Count:         preset.I(a.Count),
			Mobility:      preset.F(a.Mobility),
			Inertia:       preset.F(a.Inertia),
			TrailCapacity: preset.I(a.TrailCapacity),
		}
		p.Effects.Halo = append(p.Effects.Halo, preset.HaloEffect{
			Species:   id,
			Enabled:   preset.B(a.HaloEnabled),
			Intensity: preset.F(a.HaloIntensity),
			Radius:    preset.F(a.HaloRadius),
		})
		p.Effects.Glow = append(p.Effects.Glow, preset.GlowEffect{
			Species:   id,
			Enabled:   preset.B(a.GlowEnabled),
			Intensity: preset.F(a.GlowIntensity),
			Size:      preset.F(a.GlowSize),
		})
	}

	return p
}

// Deserialize replaces the entire simulation state from a preset record in
// one stop-the-world swap. Missing or malformed optional fields fall back
// to defaults and are logged; only a nil record is rejected.
func (s *Simulation) Deserialize(p *preset.Preset) error {
	if p == nil {
		return &species.ConfigError{Op: "Deserialize", Msg: "nil preset"}
	}

	for _, issue := range p.Normalize(s.cfg.Limits.MaxSpecies) {
		slog.Warn("preset field recovered", "error", issue.Error())
	}

	n := len(p.Species)
	reg, err := species.New(n,
		s.cfg.Limits.MaxSpecies, s.cfg.Limits.MaxParticlesPerSpec, s.cfg.Trails.DefaultCapacity)
	if err != nil {
		// Normalize bounds the count, so this is unreachable; keep the old
		// state intact if it ever trips.
		return err
	}

	for id := range p.Species {
		applySpeciesSection(reg, &p.Species[id], &p.Particles)
	}
	for _, h := range p.Effects.Halo {
		applyHalo(reg, h)
	}
	for _, g := range p.Effects.Glow {
		applyGlow(reg, g)
	}

	reg.LoadMatrix(species.SocialForce, p.Physics.SocialForce)
	reg.LoadMatrix(species.CollisionForce, p.Physics.CollisionForce)
	reg.LoadMatrix(species.SocialRadius, p.Physics.SocialRadius)
	reg.LoadMatrix(species.CollisionRadius, p.Physics.CollisionRadius)

	phys := DefaultPhysics()
	phys.Model.MinDistance = s.cfg.Physics.MinDistance
	if p.Physics.ForceScale != nil {
		phys.ForceScale = *p.Physics.ForceScale
	}
	if p.Physics.Friction != nil {
		phys.Friction = *p.Physics.Friction
	}
	if p.Physics.WallDamping != nil {
		phys.WallDamping = *p.Physics.WallDamping
	}
	phys.Boundary, _ = ParseBoundary(p.Physics.Boundary)
	phys.Model.Kind, _ = ParseProfile(p.Physics.Profile)
	if p.Physics.TailFalloff != nil {
		phys.Model.TailFalloff = *p.Physics.TailFalloff
	}

	fx := DefaultEffects()
	if p.Effects.Trail.Enabled != nil {
		fx.TrailEnabled = *p.Effects.Trail.Enabled
	}
	if p.Effects.Trail.Persistence != nil {
		v := *p.Effects.Trail.Persistence
		if v < preset.MinPersistence {
			v = preset.MinPersistence
		} else if v > preset.MaxPersistence {
			v = preset.MaxPersistence
		}
		fx.TrailPersistence = v
	}
	if p.Effects.Background != "" {
		if c, err := preset.ParseColor(p.Effects.Background); err == nil {
			fx.Background = c
		} else {
			slog.Warn("preset field recovered", "error", err.Error())
		}
	}

	// Swap everything at once; the old state stays live until here.
	s.reg = reg
	s.phys = phys
	s.fx = fx
	s.tick = 0
	s.reinit()

	return nil
}

// applySpeciesSection fills one registry entry from a preset section,
// defaulting every missing field.
func applySpeciesSection(reg *species.Registry, sec *preset.SpeciesSection, particles *preset.ParticlesSection) {
	id := sec.ID

	if sec.Name != "" {
		_ = reg.SetName(id, sec.Name)
	}
	if sec.Color != "" {
		if c, err := preset.ParseColor(sec.Color); err == nil {
			_ = reg.SetColor(id, c)
		} else {
			slog.Warn("preset field recovered", "error", err.Error(), "species", id)
		}
	}
	if sec.Size != nil {
		_ = reg.SetProperty(id, species.FieldSize, *sec.Size)
	}
	if sec.Mobility != nil {
		_ = reg.SetProperty(id, species.FieldMobility, *sec.Mobility)
	}
	if sec.Inertia != nil {
		_ = reg.SetProperty(id, species.FieldInertia, *sec.Inertia)
	}
	if sec.TrailCapacity != nil {
		_ = reg.SetProperty(id, species.FieldTrailCapacity, float64(*sec.TrailCapacity))
	}

	pattern := sec.Pattern
	if pattern == "" {
		pattern = particles.Pattern
	}
	if pattern != "" {
		_ = reg.SetPattern(id, pattern)
	}

	switch {
	case sec.Count != nil:
		_ = reg.SetCount(id, *sec.Count)
	case id < len(particles.Counts):
		_ = reg.SetCount(id, particles.Counts[id])
	}
}

func applyHalo(reg *species.Registry, h preset.HaloEffect) {
	if err := reg.ValidateID("halo", h.Species); err != nil {
		slog.Warn("preset field recovered", "error", err.Error())
		return
	}
	if h.Intensity != nil {
		_ = reg.SetProperty(h.Species, species.FieldHaloIntensity, *h.Intensity)
	}
	if h.Radius != nil {
		_ = reg.SetProperty(h.Species, species.FieldHaloRadius, *h.Radius)
	}
	if h.Enabled != nil && !*h.Enabled {
		_ = reg.SetProperty(h.Species, species.FieldHaloIntensity, 0)
	}
}

func applyGlow(reg *species.Registry, g preset.GlowEffect) {
	if err := reg.ValidateID("glow", g.Species); err != nil {
		slog.Warn("preset field recovered", "error", err.Error())
		return
	}
	if g.Intensity != nil {
		_ = reg.SetProperty(g.Species, species.FieldGlowIntensity, *g.Intensity)
	}
	if g.Size != nil {
		_ = reg.SetProperty(g.Species, species.FieldGlowSize, *g.Size)
	}
	if g.Enabled != nil && !*g.Enabled {
		_ = reg.SetProperty(g.Species, species.FieldGlowIntensity, 0)
	}
}
