package ui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/yamb0x/particle-life-synth-sub004/preset"
	"github.com/yamb0x/particle-life-synth-sub004/sim"
	"github.com/yamb0x/particle-life-synth-sub004/species"
)

// Actions reports panel interactions the caller has to carry out, because
// they reach outside the simulation (filesystem).
type Actions struct {
	SavePreset bool
}

// ControlPanel renders the right-side parameter panel and applies edits to
// the simulation through its setter API.
type ControlPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	selected int // species id shown in the species section
}

// NewControlPanel creates a control panel anchored at (x, y).
func NewControlPanel(x, y, width int32) *ControlPanel {
	return &ControlPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// Toggle switches panel visibility.
func (c *ControlPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlPanel) IsVisible() bool { return c.visible }

// changed filters out float32 round-trip noise from the slider widgets, so
// a slider that was not touched never triggers a setter.
func changed(old, new float64) bool {
	return math.Abs(old-new) > 1e-4
}

// Draw renders the panel and applies any edits. Returns actions for the
// caller to execute.
func (c *ControlPanel) Draw(s *sim.Simulation) Actions {
	var actions Actions
	if !c.visible {
		return actions
	}

	r := c.renderer
	pad := r.Theme.Padding
	w := c.width - pad*2

	r.DrawPanel(c.x, c.y, c.width, 620)

	x := c.x + pad
	y := c.y + pad

	y = r.DrawSectionHeader(x, y, "Physics")
	phys := s.Physics()

	v, y := r.Slider(x, y, w, "Force scale", phys.ForceScale, 0, 4)
	if changed(phys.ForceScale, v) {
		s.SetForceScale(v)
	}
	v, y = r.Slider(x, y, w, "Friction", phys.Friction, 0, 2)
	if changed(phys.Friction, v) {
		s.SetFriction(v)
	}
	v, y = r.Slider(x, y, w, "Wall damping", phys.WallDamping, 0, 1)
	if changed(phys.WallDamping, v) {
		s.SetWallDamping(v)
	}

	y = r.DrawSectionHeader(x, y, "Trails")
	enabled, persistence := s.TrailSettings()
	if r.Button(x, y, 90, 22, toggleText(enabled, "Trails: on", "Trails: off")) {
		s.SetTrailEnabled(!enabled)
	}
	y += 30
	v, y = r.Slider(x, y, w, "Fade opacity", persistence, preset.MinPersistence, preset.MaxPersistence)
	if changed(persistence, v) {
		s.SetTrailPersistence(v)
	}

	y = c.drawSpeciesSection(s, x, y, w)

	y = r.DrawSectionHeader(x, y, "Scene")
	if r.Button(x, y, 110, 24, "Randomize") {
		s.RandomizeMatrices()
	}
	if r.Button(x+120, y, 110, 24, "Save preset") {
		actions.SavePreset = true
	}

	return actions
}

// drawSpeciesSection renders the per-species controls for the selected id.
func (c *ControlPanel) drawSpeciesSection(s *sim.Simulation, x, y, w int32) int32 {
	r := c.renderer

	n := s.SpeciesCount()
	if c.selected >= n {
		c.selected = n - 1
	}
	if c.selected < 0 {
		c.selected = 0
	}

	attrs, err := s.Species(c.selected)
	if err != nil {
		return y
	}

	y = r.DrawSectionHeader(x, y, fmt.Sprintf("Species %d/%d: %s", c.selected+1, n, attrs.Name))

	if r.Button(x, y, 30, 22, "<") && c.selected > 0 {
		c.selected--
	}
	if r.Button(x+36, y, 30, 22, ">") && c.selected < n-1 {
		c.selected++
	}
	rl.DrawRectangle(x+80, y+3, 16, 16, attrs.Color)
	y += 30

	id := c.selected
	sliders := []struct {
		label    string
		field    string
		value    float64
		min, max float64
	}{
		{"Size", species.FieldSize, attrs.Size, 0.5, 20},
		{"Mobility", species.FieldMobility, attrs.Mobility, 0, 4},
		{"Inertia", species.FieldInertia, attrs.Inertia, 0, 1},
		{"Halo intensity", species.FieldHaloIntensity, attrs.HaloIntensity, 0, 1},
		{"Halo radius", species.FieldHaloRadius, attrs.HaloRadius, 1, 12},
		{"Glow intensity", species.FieldGlowIntensity, attrs.GlowIntensity, 0, 1},
		{"Glow size", species.FieldGlowSize, attrs.GlowSize, 1, 12},
	}
	for _, sl := range sliders {
		v, ny := r.Slider(x, y, w, sl.label, sl.value, sl.min, sl.max)
		if changed(sl.value, v) {
			if err := s.SetEffect(id, sl.field, v); err != nil {
				break
			}
		}
		y = ny
	}

	// Count slider reinitializes the particle arrays, so only whole-number
	// changes are applied.
	maxCount := float64(s.Registry().MaxParticlesPerSpecies())
	v, ny := r.Slider(x, y, w, "Particles", float64(attrs.Count), 0, maxCount)
	if int(v) != attrs.Count {
		_ = s.SetParticleCount(id, int(v))
	}
	y = ny

	return y
}

func toggleText(cond bool, on, off string) string {
	if cond {
		return on
	}
	return off
}
