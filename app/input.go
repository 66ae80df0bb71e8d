package app

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput processes keyboard input.
func (a *App) handleInput() {
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		a.paused = !a.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && a.stepsPerUpdate > 1 {
		a.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && a.stepsPerUpdate < 10 {
		a.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		a.panel.Toggle()
	}

	if rl.IsKeyPressed(rl.KeyR) {
		a.sim.RandomizeMatrices()
	}

	if rl.IsKeyPressed(rl.KeyT) {
		enabled, _ := a.sim.TrailSettings()
		a.sim.SetTrailEnabled(!enabled)
	}

	if rl.IsKeyPressed(rl.KeyS) {
		a.savePreset()
	}
}
