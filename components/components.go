// Package components defines the ECS components attached to every particle.
package components

// Position is a particle's location in world units.
type Position struct {
	X, Y float64
}

// Velocity is a particle's velocity in world units per second.
type Velocity struct {
	X, Y float64
}

// Force accumulates the net interaction force for the current step.
// The force engine zeroes and refills it every frame.
type Force struct {
	X, Y float64
}

// SpeciesRef binds a particle to its species registry entry. The registry
// boundary guarantees the id references a live species for the lifetime of
// the particle store.
type SpeciesRef struct {
	ID int
}
