package sim

import "fmt"

// BoundaryMode selects the global boundary policy.
type BoundaryMode int

const (
	// BoundaryBounce reflects the boundary-normal velocity component,
	// scaled by the wall damping coefficient.
	BoundaryBounce BoundaryMode = iota
	// BoundaryWrap teleports the particle to the opposite edge with its
	// velocity unchanged.
	BoundaryWrap
)

// String returns the preset name of the mode.
func (b BoundaryMode) String() string {
	if b == BoundaryWrap {
		return "wrap"
	}
	return "bounce"
}

// ParseBoundary maps a preset name to a BoundaryMode.
func ParseBoundary(name string) (BoundaryMode, error) {
	switch name {
	case "bounce", "":
		return BoundaryBounce, nil
	case "wrap":
		return BoundaryWrap, nil
	}
	return BoundaryBounce, fmt.Errorf("unknown boundary mode %q", name)
}

// Physics holds the global dynamics parameters carried by a preset.
type Physics struct {
	ForceScale  float64
	Friction    float64 // global damping per second, composed with species inertia
	WallDamping float64 // bounce velocity retention, [0, 1]
	Boundary    BoundaryMode
	Model       ForceModel
}

// DefaultPhysics returns the parameters used when a preset omits them.
func DefaultPhysics() Physics {
	return Physics{
		ForceScale:  1,
		Friction:    0.5,
		WallDamping: 0.8,
		Boundary:    BoundaryBounce,
		Model:       DefaultForceModel(),
	}
}
