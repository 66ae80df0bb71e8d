package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds the values shown in the top-left status strip.
type HUDData struct {
	FPS       int
	Tick      int64
	Particles int
	Species   int
	Paused    bool
}

// HUD renders the always-on status strip.
type HUD struct {
	renderer *Renderer
	x, y     int32
}

// NewHUD creates a HUD anchored at (x, y).
func NewHUD(x, y int32) *HUD {
	return &HUD{renderer: NewRenderer(), x: x, y: y}
}

// Draw renders the strip.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	pad := r.Theme.Padding

	r.DrawPanel(h.x, h.y, 180, r.Theme.LineHeight*5+pad*2)

	y := h.y + pad
	y = r.DrawLabelValue(h.x+pad, y, "FPS", fmt.Sprintf("%d", data.FPS))
	y = r.DrawLabelValue(h.x+pad, y, "Tick", fmt.Sprintf("%d", data.Tick))
	y = r.DrawLabelValue(h.x+pad, y, "Particles", fmt.Sprintf("%d", data.Particles))
	y = r.DrawLabelValue(h.x+pad, y, "Species", fmt.Sprintf("%d", data.Species))
	status := "running"
	if data.Paused {
		status = "paused"
	}
	r.DrawLabelValue(h.x+pad, y, "State", status)

	if data.Paused {
		rl.DrawText("SPACE to resume", h.x, h.y+r.Theme.LineHeight*5+pad*2+4, r.Theme.FontSize, rl.Gray)
	}
}
