// Package preset defines the serializable configuration record exchanged
// with external collaborators (UI, preset storage). It is the only way
// scene state enters or leaves the core; transport and persistence of the
// record belong to the collaborator.
//
// Optional fields are pointers: a nil field means "apply the documented
// default". Loading never fails outright — malformed or missing data is
// recovered via defaults and reported as DataErrors for logging.
package preset

import (
	"fmt"
	"image/color"
)

// Preset is a complete snapshot of scene configuration.
type Preset struct {
	Name      string           `yaml:"name"`
	Particles ParticlesSection `yaml:"particles"`
	Physics   PhysicsSection   `yaml:"physics"`
	Effects   EffectsSection   `yaml:"effects"`
	Species   []SpeciesSection `yaml:"species"`
}

// ParticlesSection holds per-species particle counts and the default
// starting-distribution pattern. Counts in the species section win when
// both are set.
type ParticlesSection struct {
	Counts  []int  `yaml:"counts,omitempty"`
	Pattern string `yaml:"pattern,omitempty"`
}

// PhysicsSection holds global dynamics parameters and the four relation
// matrices. Matrices that do not match the declared species count are
// padded or truncated, never rejected.
type PhysicsSection struct {
	ForceScale  *float64 `yaml:"force_scale,omitempty"`
	Friction    *float64 `yaml:"friction,omitempty"`
	WallDamping *float64 `yaml:"wall_damping,omitempty"`
	Boundary    string   `yaml:"boundary,omitempty"` // bounce | wrap
	Profile     string   `yaml:"profile,omitempty"`  // peak | hump | sustain
	TailFalloff *float64 `yaml:"tail_falloff,omitempty"`

	SocialForce     [][]float64 `yaml:"social_force,omitempty"`
	CollisionForce  [][]float64 `yaml:"collision_force,omitempty"`
	SocialRadius    [][]float64 `yaml:"social_radius,omitempty"`
	CollisionRadius [][]float64 `yaml:"collision_radius,omitempty"`
}

// EffectsSection holds the trail settings and per-species halo/glow.
type EffectsSection struct {
	Trail      TrailEffect  `yaml:"trail"`
	Background string       `yaml:"background,omitempty"` // hex color
	Halo       []HaloEffect `yaml:"halo,omitempty"`
	Glow       []GlowEffect `yaml:"glow,omitempty"`
}

// TrailEffect controls the trail-fade layer.
type TrailEffect struct {
	Enabled     *bool    `yaml:"enabled,omitempty"`
	Persistence *float64 `yaml:"persistence,omitempty"` // fade opacity; smaller = longer trails
}

// HaloEffect is the per-species halo configuration.
type HaloEffect struct {
	Species   int      `yaml:"species"`
	Enabled   *bool    `yaml:"enabled,omitempty"`
	Intensity *float64 `yaml:"intensity,omitempty"`
	Radius    *float64 `yaml:"radius,omitempty"`
}

// GlowEffect is the per-species glow configuration.
type GlowEffect struct {
	Species   int      `yaml:"species"`
	Enabled   *bool    `yaml:"enabled,omitempty"`
	Intensity *float64 `yaml:"intensity,omitempty"`
	Size      *float64 `yaml:"size,omitempty"`
}

// SpeciesSection holds one species' attributes. Any field may be missing;
// the loader fills defaults instead of propagating zero values.
type SpeciesSection struct {
	ID            int      `yaml:"id"`
	Name          string   `yaml:"name,omitempty"`
	Color         string   `yaml:"color,omitempty"` // "#rrggbb"
	Size          *float64 `yaml:"size,omitempty"`
	Pattern       string   `yaml:"pattern,omitempty"`
	Count         *int     `yaml:"count,omitempty"`
	Mobility      *float64 `yaml:"mobility,omitempty"`
	Inertia       *float64 `yaml:"inertia,omitempty"`
	TrailCapacity *int     `yaml:"trail_capacity,omitempty"`
}

// DataError reports a malformed or missing optional preset field that was
// recovered with a default. It never interrupts a preset load.
type DataError struct {
	Field string
	Msg   string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("preset: %s: %s", e.Field, e.Msg)
}

func dataErr(field, format string, args ...any) error {
	return &DataError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Default trail persistence when the preset omits it.
const DefaultPersistence = 0.12

// Persistence clamp bounds; values below the floor would never fade.
const (
	MinPersistence = 0.02
	MaxPersistence = 1.0
)

// SpeciesCount returns the species count the preset declares: the species
// section length when present, otherwise the counts list length. Zero means
// the preset declares nothing.
func (p *Preset) SpeciesCount() int {
	if n := len(p.Species); n > 0 {
		return n
	}
	return len(p.Particles.Counts)
}

// Normalize structurally repairs the preset in place so it declares between
// 1 and maxSpecies species with ids 0..n-1, and valid boundary/profile
// names. Returns the recovered issues; the caller logs them.
func (p *Preset) Normalize(maxSpecies int) []error {
	var issues []error

	n := p.SpeciesCount()
	if n < 1 {
		n = 3
		issues = append(issues, dataErr("species", "no species declared, using %d", n))
	}
	if n > maxSpecies {
		issues = append(issues, dataErr("species", "declared %d species, clamping to %d", n, maxSpecies))
		n = maxSpecies
	}

	// Rebuild the species list id-indexed; sections with out-of-range or
	// duplicate ids are dropped with a report.
	sections := make([]SpeciesSection, n)
	seen := make([]bool, n)
	for i := range sections {
		sections[i].ID = i
	}
	for _, sec := range p.Species {
		if sec.ID < 0 || sec.ID >= n {
			issues = append(issues, dataErr("species", "section id %d outside [0, %d), dropped", sec.ID, n))
			continue
		}
		if seen[sec.ID] {
			issues = append(issues, dataErr("species", "duplicate section id %d, keeping first", sec.ID))
			continue
		}
		seen[sec.ID] = true
		sections[sec.ID] = sec
	}
	p.Species = sections

	if len(p.Particles.Counts) > n {
		p.Particles.Counts = p.Particles.Counts[:n]
	}

	if p.Physics.Boundary != "" && p.Physics.Boundary != "bounce" && p.Physics.Boundary != "wrap" {
		issues = append(issues, dataErr("physics.boundary", "unknown mode %q, using bounce", p.Physics.Boundary))
		p.Physics.Boundary = "bounce"
	}
	switch p.Physics.Profile {
	case "", "peak", "hump", "sustain":
	default:
		issues = append(issues, dataErr("physics.profile", "unknown profile %q, using peak", p.Physics.Profile))
		p.Physics.Profile = "peak"
	}

	return issues
}

// ParseColor parses "#rrggbb" or "#rrggbbaa" into an opaque-by-default RGBA.
func ParseColor(s string) (color.RGBA, error) {
	var r, g, b, a uint8
	a = 0xff
	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return color.RGBA{}, fmt.Errorf("parsing color %q: %w", s, err)
		}
	case 9:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
			return color.RGBA{}, fmt.Errorf("parsing color %q: %w", s, err)
		}
	default:
		return color.RGBA{}, fmt.Errorf("parsing color %q: want #rrggbb", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// FormatColor renders a color as "#rrggbb".
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Helper constructors used when serializing.

// F returns a pointer to v.
func F(v float64) *float64 { return &v }

// I returns a pointer to v.
func I(v int) *int { return &v }

// B returns a pointer to v.
func B(v bool) *bool { return &v }
