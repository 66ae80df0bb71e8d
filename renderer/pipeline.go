package renderer

import (
	"image/color"
	"log/slog"
	"math"

	"github.com/yamb0x/particle-life-synth-sub004/species"
)

// Scene is the read view the pipeline needs from a simulation. The sim
// package's Simulation satisfies it.
type Scene interface {
	WorldSize() (w, h float64)
	SpeciesCount() int
	Species(id int) (species.Attributes, error)
	TrailSettings() (enabled bool, persistence float64)
	Background() color.RGBA
	ForEachParticle(fn func(x, y, vx, vy float64, speciesID int))
}

// speciesVisual is the per-frame snapshot of one species' draw settings.
// ok is false when the attributes cannot be rendered; the species is then
// skipped in every layer for the frame.
type speciesVisual struct {
	ok    bool
	attrs species.Attributes
}

// Pipeline renders one frame in three ordered layers onto the backend
// canvas: trail fade, halo and glow auras, particle cores. Each layer runs
// inside a blend scope that restores the entry blend mode on every exit
// path, so no layer can leak compositing state into the next.
type Pipeline struct {
	gfx   Backend
	cache *gradientCache

	visuals []speciesVisual
}

// NewPipeline wraps a backend. The pipeline owns the gradient cache but not
// the backend; Unload releases both.
func NewPipeline(gfx Backend) *Pipeline {
	return &Pipeline{
		gfx:   gfx,
		cache: newGradientCache(gfx),
	}
}

// Frame draws the scene: fades or clears the canvas, draws auras and cores
// for every particle, then presents the canvas. Species with unrenderable
// attributes are logged and skipped, never fatal.
func (p *Pipeline) Frame(sc Scene) {
	p.refreshVisuals(sc)

	w, h := p.gfx.Size()
	ww, wh := sc.WorldSize()
	sx, sy := float64(w)/ww, float64(h)/wh
	// Effect radii scale isotropically even on a stretched surface.
	es := math.Min(sx, sy)

	p.gfx.BeginCanvas()

	p.layer(func() {
		p.drawTrailFade(sc)
	})
	p.layer(func() {
		p.drawHalos(sc, sx, sy, es)
	})
	p.layer(func() {
		p.gfx.SetBlend(BlendAdditive)
		p.drawGlows(sc, sx, sy, es)
	})
	p.layer(func() {
		p.drawCores(sc, sx, sy, es)
	})

	p.gfx.EndCanvas()

	p.cache.prune(sc.SpeciesCount())
	p.gfx.Present()
}

// layer runs fn with the blend mode scoped: whatever fn leaves behind, the
// entry mode is restored before the next layer starts.
func (p *Pipeline) layer(fn func()) {
	entry := p.gfx.Blend()
	defer func() {
		if p.gfx.Blend() != entry {
			p.gfx.SetBlend(entry)
		}
	}()
	fn()
}

// refreshVisuals snapshots species attributes for the frame and validates
// them once, so per-particle draw loops stay branch-light.
func (p *Pipeline) refreshVisuals(sc Scene) {
	n := sc.SpeciesCount()
	if cap(p.visuals) < n {
		p.visuals = make([]speciesVisual, n)
	}
	p.visuals = p.visuals[:n]

	for id := 0; id < n; id++ {
		attrs, err := sc.Species(id)
		if err != nil {
			p.visuals[id] = speciesVisual{}
			slog.Warn("species skipped for frame", "error", err.Error())
			continue
		}
		if serr := validateVisual(id, attrs); serr != nil {
			p.visuals[id] = speciesVisual{}
			slog.Warn("species skipped for frame", "error", serr.Error())
			continue
		}
		p.visuals[id] = speciesVisual{ok: true, attrs: attrs}
	}
}

// validateVisual rejects attributes that would draw garbage: an all-zero
// color (uninitialized entry) or a non-positive or non-finite size.
func validateVisual(id int, a species.Attributes) *StateError {
	if a.Color == (color.RGBA{}) {
		return &StateError{Layer: "core", Species: id, Msg: "zero color"}
	}
	if !(a.Size > 0) || math.IsInf(a.Size, 0) {
		return &StateError{Layer: "core", Species: id, Msg: "invalid size"}
	}
	return nil
}

// drawTrailFade either clears the canvas outright (trails off) or tints it
// with the background at the persistence alpha, letting previous frames
// show through as decaying trails.
func (p *Pipeline) drawTrailFade(sc Scene) {
	enabled, persistence := sc.TrailSettings()
	bg := sc.Background()
	if !enabled {
		p.gfx.Clear(bg)
		return
	}
	p.gfx.Tint(bg, persistence)
}

// drawHalos alpha-composites a soft radial aura behind each particle whose
// species has a halo configured.
func (p *Pipeline) drawHalos(sc Scene, sx, sy, es float64) {
	sc.ForEachParticle(func(x, y, _, _ float64, id int) {
		v := p.visual(id)
		if v == nil || !v.attrs.HaloEnabled || v.attrs.HaloIntensity <= 0 {
			return
		}
		a := v.attrs
		spec := GradientSpec{
			Radius: a.Size * a.HaloRadius * es,
			Inner:  withAlpha(a.Color, a.HaloIntensity),
			Outer:  withAlpha(a.Color, 0),
		}
		g := p.cache.get(id, kindHalo, spec)
		p.gfx.DrawGradient(g, x*sx, y*sy)
	})
}

// drawGlows draws the additive bloom pass. The caller has already switched
// the blend scope to additive.
func (p *Pipeline) drawGlows(sc Scene, sx, sy, es float64) {
	sc.ForEachParticle(func(x, y, _, _ float64, id int) {
		v := p.visual(id)
		if v == nil || !v.attrs.GlowEnabled || v.attrs.GlowIntensity <= 0 {
			return
		}
		a := v.attrs
		spec := GradientSpec{
			Radius: a.Size * a.GlowSize * es,
			Inner:  withAlpha(a.Color, a.GlowIntensity),
			Outer:  withAlpha(a.Color, 0),
		}
		g := p.cache.get(id, kindGlow, spec)
		p.gfx.DrawGradient(g, x*sx, y*sy)
	})
}

// drawCores draws the opaque particle discs on top of every aura.
func (p *Pipeline) drawCores(sc Scene, sx, sy, es float64) {
	sc.ForEachParticle(func(x, y, _, _ float64, id int) {
		v := p.visual(id)
		if v == nil {
			return
		}
		p.gfx.Disc(x*sx, y*sy, v.attrs.Size*es, v.attrs.Color)
	})
}

func (p *Pipeline) visual(id int) *speciesVisual {
	if id < 0 || id >= len(p.visuals) || !p.visuals[id].ok {
		return nil
	}
	return &p.visuals[id]
}

// withAlpha scales the color's alpha channel by intensity in [0, 1].
func withAlpha(c color.RGBA, intensity float64) color.RGBA {
	if intensity < 0 {
		intensity = 0
	} else if intensity > 1 {
		intensity = 1
	}
	c.A = uint8(intensity * 255)
	return c
}

// Unload releases the gradient cache and the backend.
func (p *Pipeline) Unload() {
	p.cache.unload()
	p.gfx.Unload()
}
