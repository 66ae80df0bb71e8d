package sim

import (
	"fmt"
	"math"
)

// ProfileKind selects the interpolation curve applied across the social
// zone. Different ecosystem presets rely on different curve shapes, so the
// model is parametrized rather than fixed.
type ProfileKind int

const (
	// ProfilePeak ramps linearly from zero at the collision radius to the
	// full social force at PeakAt, then back to zero at the social radius.
	ProfilePeak ProfileKind = iota
	// ProfileHump is a smooth sine arch over the social zone.
	ProfileHump
	// ProfileSustain rises smoothly to the full social force by PeakAt and
	// holds it until the social radius; the exponential tail takes over
	// from there.
	ProfileSustain
)

// String returns the preset name of the profile.
func (k ProfileKind) String() string {
	switch k {
	case ProfilePeak:
		return "peak"
	case ProfileHump:
		return "hump"
	case ProfileSustain:
		return "sustain"
	}
	return "unknown"
}

// ParseProfile maps a preset name to a ProfileKind.
func ParseProfile(name string) (ProfileKind, error) {
	switch name {
	case "peak", "":
		return ProfilePeak, nil
	case "hump":
		return ProfileHump, nil
	case "sustain":
		return ProfileSustain, nil
	}
	return ProfilePeak, fmt.Errorf("unknown force profile %q", name)
}

// ForceModel parametrizes the two-zone pairwise interaction curve.
//
// Inside the collision radius the force scales linearly from the full
// collision force at zero distance down to zero at the boundary. Across the
// social zone the selected profile interpolates the social force, always
// starting from zero at the collision radius so the total force is
// continuous there. Beyond the social radius the boundary value decays
// exponentially instead of cutting off.
type ForceModel struct {
	Kind        ProfileKind
	PeakAt      float64 // peak position within the social zone, (0, 1)
	TailFalloff float64 // decay rate per world unit beyond the social radius
	MinDistance float64 // pairwise distance floor (singularity guard)
}

// DefaultForceModel returns the model used when a preset does not name one.
func DefaultForceModel() ForceModel {
	return ForceModel{
		Kind:        ProfilePeak,
		PeakAt:      0.5,
		TailFalloff: 0.08,
		MinDistance: 0.5,
	}
}

// weight returns the interpolation weight at normalized zone position
// t in [0, 1] (t=0 at the collision radius, t=1 at the social radius).
// Every profile has weight(0) == 0.
func (m ForceModel) weight(t float64) float64 {
	p := m.PeakAt
	if p <= 0 || p >= 1 {
		p = 0.5
	}
	switch m.Kind {
	case ProfileHump:
		return math.Sin(math.Pi * t)
	case ProfileSustain:
		if t >= p {
			return 1
		}
		s := t / p
		return s * s * (3 - 2*s)
	default: // ProfilePeak
		if t <= p {
			return t / p
		}
		return (1 - t) / (1 - p)
	}
}

// Pair returns the signed force magnitude between an ordered species pair at
// distance dist. Positive values attract toward the neighbor, negative
// repel. collR/socR are the pair's zone radii, collF/socF the matrix forces.
func (m ForceModel) Pair(dist, collR, socR, collF, socF float64) float64 {
	if dist < m.MinDistance {
		dist = m.MinDistance
	}

	if collR > 0 && dist < collR {
		return collF * (1 - dist/collR)
	}

	span := socR - collR
	if span <= 0 {
		// Degenerate social zone: nothing beyond the collision boundary.
		return 0
	}

	if dist < socR {
		t := (dist - collR) / span
		return socF * m.weight(t)
	}

	edge := socF * m.weight(1)
	if edge == 0 {
		return 0
	}
	return edge * math.Exp(-m.TailFalloff*(dist-socR))
}

// TailReach returns how far beyond the social radius the exponential tail
// stays significant: three decay lengths, where it has dropped below 5% of
// the boundary value. Profiles whose social zone ends at weight zero have no
// tail and no reach.
func (m ForceModel) TailReach() float64 {
	if math.Abs(m.weight(1)) < 1e-9 {
		return 0
	}
	falloff := m.TailFalloff
	if falloff <= 0 {
		falloff = DefaultForceModel().TailFalloff
	}
	return 3 / falloff
}

func sqrt(v float64) float64 { return math.Sqrt(v) }
