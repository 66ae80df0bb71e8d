package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+90, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// Slider draws a labeled slider line and returns the (possibly unchanged)
// value plus the next Y position. The current value is printed to the right
// of the bar.
func (r *Renderer) Slider(x, y int32, width int32, label string, value, min, max float64) (float64, int32) {
	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight - 2

	barWidth := float32(width - 60)
	v := gui.SliderBar(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: barWidth, Height: r.Theme.SliderHeight},
		"", "",
		float32(value), float32(min), float32(max),
	)
	rl.DrawText(fmt.Sprintf("%.2f", v), x+int32(barWidth)+8, y+2, r.Theme.FontSize, r.Theme.ValueColor)

	return float64(v), y + int32(r.Theme.SliderHeight) + 8
}

// Button draws a button and reports whether it was clicked this frame.
func (r *Renderer) Button(x, y int32, width, height float32, label string) bool {
	return gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: width, Height: height}, label)
}
