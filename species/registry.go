// Package species manages the set of particle species and their pairwise
// relation matrices. All dimension and index invariants are enforced here,
// at the setter boundary, so downstream engine and renderer code never has
// to re-check them.
package species

import (
	"image/color"
	"math"
	"math/rand"
)

// Relation identifies one of the four square relation matrices.
type Relation int

const (
	SocialForce Relation = iota
	CollisionForce
	SocialRadius
	CollisionRadius
	numRelations
)

// String returns the preset field name for the relation.
func (r Relation) String() string {
	switch r {
	case SocialForce:
		return "social_force"
	case CollisionForce:
		return "collision_force"
	case SocialRadius:
		return "social_radius"
	case CollisionRadius:
		return "collision_radius"
	}
	return "unknown"
}

// Attributes holds everything a species owns besides its matrix rows.
type Attributes struct {
	Name    string
	Color   color.RGBA
	Size    float64 // core draw radius in world units
	Count   int     // target particle count
	Pattern string  // starting distribution: uniform, cluster, ring, noise

	Mobility float64 // force response multiplier
	Inertia  float64 // per-step velocity retention, near 1 = low damping

	TrailCapacity int // ring buffer length, 0 = config default

	HaloEnabled   bool
	HaloIntensity float64 // 0..1
	HaloRadius    float64 // multiple of Size

	GlowEnabled   bool
	GlowIntensity float64 // 0..1
	GlowSize      float64 // multiple of Size
}

// Field names accepted by SetProperty and the SetEffect API surface.
const (
	FieldSize          = "size"
	FieldMobility      = "mobility"
	FieldInertia       = "inertia"
	FieldHaloIntensity = "halo_intensity"
	FieldHaloRadius    = "halo_radius"
	FieldGlowIntensity = "glow_intensity"
	FieldGlowSize      = "glow_size"
	FieldTrailCapacity = "trail_capacity"
)

// fieldRange documents the clamp range for each numeric property.
var fieldRange = map[string][2]float64{
	FieldSize:          {0.5, 20},
	FieldMobility:      {0, 4},
	FieldInertia:       {0, 1},
	FieldHaloIntensity: {0, 1},
	FieldHaloRadius:    {1, 12},
	FieldGlowIntensity: {0, 1},
	FieldGlowSize:      {1, 12},
	FieldTrailCapacity: {1, 512},
}

// Force and radius clamp bounds for matrix entries.
const (
	MaxForceMagnitude = 10.0
	MaxRadius         = 1000.0
)

// Registry owns the species list and the four relation matrices. Matrix
// dimension always equals len(species); SetSpeciesCount is the only
// operation that changes either.
type Registry struct {
	species []Attributes
	mats    [numRelations]Matrix

	maxSpecies      int
	maxPerSpec      int
	defaultTrailCap int
}

// New creates a registry with n species populated with deterministic
// defaults. n is validated like SetSpeciesCount.
func New(n, maxSpecies, maxPerSpecies, defaultTrailCap int) (*Registry, error) {
	r := &Registry{
		maxSpecies:      maxSpecies,
		maxPerSpec:      maxPerSpecies,
		defaultTrailCap: defaultTrailCap,
	}
	for i := range r.mats {
		r.mats[i] = NewMatrix(0, nil)
	}
	if err := r.SetSpeciesCount(n); err != nil {
		return nil, err
	}
	return r, nil
}

// palette holds the default species colors, matching the classic ecosystem
// presets. Indexes beyond the palette wrap around with dimming.
var palette = []color.RGBA{
	{R: 0xff, G: 0x5c, B: 0x49, A: 0xff}, // coral
	{R: 0x4c, G: 0xc9, B: 0xf0, A: 0xff}, // sky
	{R: 0xb5, G: 0xe4, B: 0x8a, A: 0xff}, // lime
	{R: 0xf9, G: 0xc7, B: 0x4f, A: 0xff}, // amber
	{R: 0xc7, G: 0x7d, B: 0xff, A: 0xff}, // violet
	{R: 0xff, G: 0x8f, B: 0xcf, A: 0xff}, // pink
	{R: 0x5e, G: 0xf3, B: 0xc0, A: 0xff}, // mint
	{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}, // white
}

// DefaultColor returns the deterministic default color for species id.
func DefaultColor(id int) color.RGBA {
	c := palette[id%len(palette)]
	// Dim repeated palette cycles so high species counts stay tellable apart.
	for k := 0; k < id/len(palette); k++ {
		c.R = uint8(float64(c.R) * 0.7)
		c.G = uint8(float64(c.G) * 0.7)
		c.B = uint8(float64(c.B) * 0.7)
	}
	return c
}

// DefaultAttributes returns the deterministic defaults for species id.
func (r *Registry) DefaultAttributes(id int) Attributes {
	return Attributes{
		Name:          defaultName(id),
		Color:         DefaultColor(id),
		Size:          3,
		Count:         200,
		Pattern:       "uniform",
		Mobility:      1,
		Inertia:       0.9,
		TrailCapacity: r.defaultTrailCap,
		HaloEnabled:   false,
		HaloIntensity: 0,
		HaloRadius:    4,
		GlowEnabled:   false,
		GlowIntensity: 0,
		GlowSize:      6,
	}
}

var defaultNames = []string{
	"coral", "sky", "lime", "amber", "violet", "pink", "mint", "white",
}

func defaultName(id int) string {
	if id < len(defaultNames) {
		return defaultNames[id]
	}
	return "species-" + itoa(id)
}

// itoa avoids pulling strconv into the hot path imports for one call site.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// DefaultRelation returns the deterministic default for a new matrix entry:
// mild self-attraction on the diagonal, neutral cross terms, and moderate
// zone radii with short-range repulsion.
func DefaultRelation(rel Relation, i, j int) float64 {
	switch rel {
	case SocialForce:
		if i == j {
			return 0.3
		}
		return 0
	case CollisionForce:
		return -1.0
	case SocialRadius:
		return 80
	case CollisionRadius:
		return 12
	}
	return 0
}

// Count returns the current number of species.
func (r *Registry) Count() int { return len(r.species) }

// MaxSpecies returns the configured species ceiling.
func (r *Registry) MaxSpecies() int { return r.maxSpecies }

// MaxParticlesPerSpecies returns the configured per-species particle ceiling.
func (r *Registry) MaxParticlesPerSpecies() int { return r.maxPerSpec }

// ValidateID returns a ConfigError if id does not reference a species.
func (r *Registry) ValidateID(op string, id int) error {
	if id < 0 || id >= len(r.species) {
		return errConfig(op, "species id %d out of range [0, %d)", id, len(r.species))
	}
	return nil
}

// Get returns a copy of the attributes for id.
func (r *Registry) Get(id int) (Attributes, error) {
	if err := r.ValidateID("Get", id); err != nil {
		return Attributes{}, err
	}
	return r.species[id], nil
}

// All returns a copy of the species list in id order.
func (r *Registry) All() []Attributes {
	out := make([]Attributes, len(r.species))
	copy(out, r.species)
	return out
}

// SetSpeciesCount grows or shrinks the species list to n, resizing every
// relation matrix in lockstep. Growth preserves the existing submatrix and
// fills new rows/columns with DefaultRelation; shrink truncates.
func (r *Registry) SetSpeciesCount(n int) error {
	return r.SetSpeciesCountFill(n, DefaultRelation)
}

// SetSpeciesCountFill is SetSpeciesCount with a caller-supplied fill for new
// matrix entries (e.g. seeded random values from the UI randomizer).
func (r *Registry) SetSpeciesCountFill(n int, fill func(rel Relation, i, j int) float64) error {
	if n < 1 || n > r.maxSpecies {
		return errConfig("SetSpeciesCount", "count %d outside [1, %d]", n, r.maxSpecies)
	}
	if fill == nil {
		fill = DefaultRelation
	}
	for rel := Relation(0); rel < numRelations; rel++ {
		rel := rel
		r.mats[rel].Resize(n, func(i, j int) float64 {
			return clampRelation(rel, fill(rel, i, j))
		})
	}
	if n <= len(r.species) {
		r.species = r.species[:n]
		return nil
	}
	for id := len(r.species); id < n; id++ {
		r.species = append(r.species, r.DefaultAttributes(id))
	}
	return nil
}

// SetProperty clamps value to the documented range for field and stores it.
// Unknown fields and invalid ids fail with a ConfigError.
func (r *Registry) SetProperty(id int, field string, value float64) error {
	if err := r.ValidateID("SetProperty", id); err != nil {
		return err
	}
	rng, ok := fieldRange[field]
	if !ok {
		return errConfig("SetProperty", "unknown field %q", field)
	}
	value = clamp(value, rng[0], rng[1])
	sp := &r.species[id]
	switch field {
	case FieldSize:
		sp.Size = value
	case FieldMobility:
		sp.Mobility = value
	case FieldInertia:
		sp.Inertia = value
	case FieldHaloIntensity:
		sp.HaloIntensity = value
		sp.HaloEnabled = value > 0
	case FieldHaloRadius:
		sp.HaloRadius = value
	case FieldGlowIntensity:
		sp.GlowIntensity = value
		sp.GlowEnabled = value > 0
	case FieldGlowSize:
		sp.GlowSize = value
	case FieldTrailCapacity:
		sp.TrailCapacity = int(value)
	}
	return nil
}

// SetColor stores the display color for id.
func (r *Registry) SetColor(id int, c color.RGBA) error {
	if err := r.ValidateID("SetColor", id); err != nil {
		return err
	}
	r.species[id].Color = c
	return nil
}

// SetName stores the display name for id.
func (r *Registry) SetName(id int, name string) error {
	if err := r.ValidateID("SetName", id); err != nil {
		return err
	}
	r.species[id].Name = name
	return nil
}

// SetPattern stores the starting-distribution pattern for id.
func (r *Registry) SetPattern(id int, pattern string) error {
	if err := r.ValidateID("SetPattern", id); err != nil {
		return err
	}
	r.species[id].Pattern = pattern
	return nil
}

// SetCount stores the target particle count for id, clamped to the
// configured maximum.
func (r *Registry) SetCount(id, count int) error {
	if err := r.ValidateID("SetCount", id); err != nil {
		return err
	}
	if count < 0 {
		return errConfig("SetCount", "negative particle count %d", count)
	}
	if count > r.maxPerSpec {
		count = r.maxPerSpec
	}
	r.species[id].Count = count
	return nil
}

// Relation returns the matrix entry for the ordered pair (from, to).
// Indices are assumed valid; the registry boundary guarantees every
// particle's species id references a live entry.
func (r *Registry) Relation(rel Relation, from, to int) float64 {
	return r.mats[rel].At(from, to)
}

// SetRelation validates indices, clamps the value, and stores it.
func (r *Registry) SetRelation(rel Relation, from, to int, value float64) error {
	if rel < 0 || rel >= numRelations {
		return errConfig("SetRelation", "unknown relation %d", rel)
	}
	n := len(r.species)
	if from < 0 || from >= n || to < 0 || to >= n {
		return errConfig("SetRelation", "pair (%d, %d) out of range [0, %d)", from, to, n)
	}
	r.mats[rel].Set(from, to, clampRelation(rel, value))
	return nil
}

// MatrixRows returns a copy of the named matrix, for serialization.
func (r *Registry) MatrixRows(rel Relation) [][]float64 {
	return r.mats[rel].Rows()
}

// LoadMatrix replaces the named matrix from rows. Rows smaller than the
// current species count are padded with DefaultRelation, larger ones are
// truncated; the declared dimension invariant always wins. Entries are
// clamped like SetRelation, so a hand-edited preset cannot smuggle in
// out-of-range or NaN values.
func (r *Registry) LoadMatrix(rel Relation, rows [][]float64) {
	m := &r.mats[rel]
	m.SetRows(rows, func(i, j int) float64 {
		return DefaultRelation(rel, i, j)
	})
	m.Fill(func(i, j int) float64 {
		return clampRelation(rel, m.At(i, j))
	})
}

// MaxSocialRadius returns the largest configured social radius, used to size
// the spatial grid. Never below 1 so an all-zero matrix cannot produce a
// degenerate grid.
func (r *Registry) MaxSocialRadius() float64 {
	maxR := 1.0
	n := len(r.species)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if v := r.mats[SocialRadius].At(i, j); v > maxR {
				maxR = v
			}
		}
	}
	return maxR
}

// RandomizeMatrices refills the force matrices from rng: social forces in
// [-1, 1], collision forces in [-2, 0]. Radii are left untouched.
func (r *Registry) RandomizeMatrices(rng *rand.Rand) {
	r.mats[SocialForce].Fill(func(i, j int) float64 {
		return rng.Float64()*2 - 1
	})
	r.mats[CollisionForce].Fill(func(i, j int) float64 {
		return -rng.Float64() * 2
	})
}

func clampRelation(rel Relation, v float64) float64 {
	switch rel {
	case SocialForce, CollisionForce:
		return clamp(v, -MaxForceMagnitude, MaxForceMagnitude)
	default:
		return clamp(v, 0, MaxRadius)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	if math.IsNaN(v) {
		return lo
	}
	return v
}
