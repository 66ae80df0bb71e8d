package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// RaylibBackend implements Backend on a raylib render texture. It must be
// created after the raylib window and used from the render thread only.
type RaylibBackend struct {
	canvas rl.RenderTexture2D
	width  int32
	height int32

	blend       BlendMode
	blendActive bool
}

// NewRaylibBackend creates the persistent canvas at the given pixel size.
func NewRaylibBackend(width, height int) *RaylibBackend {
	b := &RaylibBackend{
		canvas: rl.LoadRenderTexture(int32(width), int32(height)),
		width:  int32(width),
		height: int32(height),
	}
	// Start from a defined surface instead of driver garbage.
	rl.BeginTextureMode(b.canvas)
	rl.ClearBackground(rl.Black)
	rl.EndTextureMode()
	return b
}

// Size returns the canvas dimensions.
func (b *RaylibBackend) Size() (w, h int) { return int(b.width), int(b.height) }

// BeginCanvas directs draws onto the persistent canvas.
func (b *RaylibBackend) BeginCanvas() { rl.BeginTextureMode(b.canvas) }

// EndCanvas closes the canvas.
func (b *RaylibBackend) EndCanvas() { rl.EndTextureMode() }

// Blend returns the current blend mode.
func (b *RaylibBackend) Blend() BlendMode { return b.blend }

// SetBlend switches the compositing mode. BlendAlpha is raylib's default
// state, so switching back ends the explicit blend scope.
func (b *RaylibBackend) SetBlend(m BlendMode) {
	if m == b.blend {
		return
	}
	if b.blendActive {
		rl.EndBlendMode()
		b.blendActive = false
	}
	if m == BlendAdditive {
		rl.BeginBlendMode(rl.BlendAdditive)
		b.blendActive = true
	}
	b.blend = m
}

// Clear fills the canvas.
func (b *RaylibBackend) Clear(c color.RGBA) { rl.ClearBackground(c) }

// Tint composites a translucent full-surface rectangle.
func (b *RaylibBackend) Tint(c color.RGBA, alpha float64) {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	c.A = uint8(alpha * 255)
	rl.DrawRectangle(0, 0, b.width, b.height, c)
}

// Disc draws a filled circle.
func (b *RaylibBackend) Disc(x, y, radius float64, c color.RGBA) {
	rl.DrawCircleV(rl.Vector2{X: float32(x), Y: float32(y)}, float32(radius), c)
}

// gradientSprite wraps the raylib texture behind the opaque handle.
type gradientSprite struct {
	tex  rl.Texture2D
	size int32
}

// MakeGradient renders the radial gradient into a texture once; DrawGradient
// then costs a single textured quad.
func (b *RaylibBackend) MakeGradient(spec GradientSpec) Gradient {
	size := int(spec.Radius * 2)
	if size < 4 {
		size = 4
	} else if size > 1024 {
		size = 1024
	}
	img := rl.GenImageGradientRadial(size, size, 0, spec.Inner, spec.Outer)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	return &gradientSprite{tex: tex, size: int32(size)}
}

// DrawGradient centers the sprite at (x, y).
func (b *RaylibBackend) DrawGradient(g Gradient, x, y float64) {
	s, ok := g.(*gradientSprite)
	if !ok {
		return
	}
	half := float64(s.size) / 2
	rl.DrawTexture(s.tex, int32(x-half), int32(y-half), rl.White)
}

// FreeGradient releases the sprite texture.
func (b *RaylibBackend) FreeGradient(g Gradient) {
	if s, ok := g.(*gradientSprite); ok {
		rl.UnloadTexture(s.tex)
	}
}

// Present blits the canvas to the screen. Render textures are y-flipped, so
// the source rect uses a negative height.
func (b *RaylibBackend) Present() {
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(b.width), Height: -float32(b.height)}
	rl.DrawTextureRec(b.canvas.Texture, src, rl.Vector2{}, rl.White)
}

// Unload releases the canvas. Gradient sprites are released by the cache
// that owns their handles.
func (b *RaylibBackend) Unload() {
	if b.blendActive {
		rl.EndBlendMode()
		b.blendActive = false
	}
	rl.UnloadRenderTexture(b.canvas)
}
