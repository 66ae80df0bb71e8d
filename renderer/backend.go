// Package renderer draws one visible frame per step from particle and
// species state, in three strictly ordered layers: trail fade, halo/glow,
// particle cores. Layer isolation is enforced structurally by the pipeline,
// not by per-effect discipline.
package renderer

import "image/color"

// BlendMode is the compositing mode of the drawing surface.
type BlendMode int

const (
	// BlendAlpha is standard alpha compositing, the surface default.
	BlendAlpha BlendMode = iota
	// BlendAdditive accumulates color, used for glow.
	BlendAdditive
)

// GradientSpec describes a radial gradient sprite: a disc fading from the
// inner color at the center to the outer color at the edge.
type GradientSpec struct {
	Radius float64 // in surface pixels
	Inner  color.RGBA
	Outer  color.RGBA
}

// Gradient is an opaque handle to a backend-owned gradient sprite.
type Gradient interface{}

// Backend abstracts the drawing surface. The production implementation is
// raylib-backed (see RaylibBackend); tests substitute a recorder to verify
// layer isolation without a window.
type Backend interface {
	// Size returns the surface dimensions in pixels.
	Size() (w, h int)

	// BeginCanvas directs subsequent draws onto the persistent canvas that
	// carries trail content across frames. EndCanvas closes it.
	BeginCanvas()
	EndCanvas()

	// Blend returns the current blend mode; SetBlend changes it.
	Blend() BlendMode
	SetBlend(BlendMode)

	// Clear fills the canvas, discarding previous content.
	Clear(c color.RGBA)
	// Tint composites a translucent full-surface rectangle over the
	// previous content; alpha in [0, 1].
	Tint(c color.RGBA, alpha float64)

	// Disc draws a filled circle.
	Disc(x, y, radius float64, c color.RGBA)

	// MakeGradient builds a gradient sprite; DrawGradient centers it at
	// (x, y); FreeGradient releases it.
	MakeGradient(spec GradientSpec) Gradient
	DrawGradient(g Gradient, x, y float64)
	FreeGradient(g Gradient)

	// Present blits the canvas to the screen.
	Present()

	// Unload releases all backend resources.
	Unload()
}
