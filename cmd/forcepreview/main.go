// Force curve preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/forcepreview
package main

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/yamb0x/particle-life-synth-sub004/sim"
)

const (
	windowWidth  = 1000
	windowHeight = 620
	plotWidth    = 620
	plotHeight   = 560
	panelWidth   = windowWidth - plotWidth - 30
)

// curveParams holds the force model and pair parameters being previewed.
type curveParams struct {
	Profile     sim.ProfileKind
	PeakAt      float32
	TailFalloff float32
	CollRadius  float32
	SocRadius   float32
	CollForce   float32
	SocForce    float32
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Force Curve Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := curveParams{
		Profile:     sim.ProfilePeak,
		PeakAt:      0.5,
		TailFalloff: 0.08,
		CollRadius:  12,
		SocRadius:   80,
		CollForce:   -1.0,
		SocForce:    0.5,
	}

	for !rl.WindowShouldClose() {
		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		drawCurve(params)

		panelX := float32(plotWidth + 20)
		panelY := float32(10)

		rl.DrawText("Force Model Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 100, Height: 26}, params.Profile.String()) {
			params.Profile = sim.ProfileKind((int(params.Profile) + 1) % 3)
		}
		panelY += 40

		params.PeakAt = slider(panelX, &panelY, "Peak position (fraction of social zone)", params.PeakAt, 0.05, 0.95, "%.2f")
		params.TailFalloff = slider(panelX, &panelY, "Tail falloff (per-unit decay)", params.TailFalloff, 0.01, 0.5, "%.3f")
		params.CollRadius = slider(panelX, &panelY, "Collision radius", params.CollRadius, 1, 50, "%.0f")
		params.SocRadius = slider(panelX, &panelY, "Social radius", params.SocRadius, 10, 300, "%.0f")
		params.CollForce = slider(panelX, &panelY, "Collision force", params.CollForce, -2, 0, "%.2f")
		params.SocForce = slider(panelX, &panelY, "Social force", params.SocForce, -1, 1, "%.2f")

		rl.EndDrawing()
	}
}

// slider draws one labeled slider row and advances the panel cursor.
func slider(x float32, y *float32, label string, value, min, max float32, format string) float32 {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: float32(panelWidth - 80), Height: 20},
		"", "",
		value, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, v), int32(x+float32(panelWidth-70)), int32(*y+2), 16, rl.DarkGray)
	*y += 35
	return v
}

// drawCurve plots force against pair distance for the current parameters.
func drawCurve(p curveParams) {
	const x0, y0 = 10, 10
	rl.DrawRectangleLines(x0, y0, plotWidth, plotHeight, rl.DarkGray)

	model := sim.DefaultForceModel()
	model.Kind = p.Profile
	model.PeakAt = float64(p.PeakAt)
	model.TailFalloff = float64(p.TailFalloff)

	maxDist := float64(p.SocRadius) * 1.5
	midY := float32(y0 + plotHeight/2)

	// Axes: zero-force line and zone boundaries
	rl.DrawLine(x0, int32(midY), x0+plotWidth, int32(midY), rl.LightGray)
	collX := int32(float64(p.CollRadius) / maxDist * plotWidth)
	socX := int32(float64(p.SocRadius) / maxDist * plotWidth)
	rl.DrawLine(x0+collX, y0, x0+collX, y0+plotHeight, rl.Color{R: 230, G: 180, B: 180, A: 255})
	rl.DrawLine(x0+socX, y0, x0+socX, y0+plotHeight, rl.Color{R: 180, G: 200, B: 230, A: 255})

	// Vertical scale: one force unit spans a quarter of the plot.
	scaleY := float32(plotHeight) / 4

	var prevX, prevY float32
	for px := 0; px < plotWidth; px++ {
		dist := float64(px) / plotWidth * maxDist
		f := model.Pair(dist,
			float64(p.CollRadius), float64(p.SocRadius),
			float64(p.CollForce), float64(p.SocForce))

		x := float32(x0 + px)
		y := midY - float32(f)*scaleY
		if y < y0 {
			y = y0
		} else if y > y0+plotHeight {
			y = y0 + plotHeight
		}
		if px > 0 {
			rl.DrawLineV(rl.Vector2{X: prevX, Y: prevY}, rl.Vector2{X: x, Y: y}, rl.Maroon)
		}
		prevX, prevY = x, y
	}

	rl.DrawText("collision | social | tail", x0+5, y0+5, 14, rl.Gray)
}
