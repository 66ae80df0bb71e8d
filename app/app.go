// Package app wires the simulation, renderer, UI, and telemetry into a
// runnable application with graphical and headless modes.
package app

import (
	"fmt"
	"log/slog"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/yamb0x/particle-life-synth-sub004/config"
	"github.com/yamb0x/particle-life-synth-sub004/preset"
	"github.com/yamb0x/particle-life-synth-sub004/renderer"
	"github.com/yamb0x/particle-life-synth-sub004/sim"
	"github.com/yamb0x/particle-life-synth-sub004/telemetry"
	"github.com/yamb0x/particle-life-synth-sub004/ui"
)

// Options configures an App.
type Options struct {
	Seed           int64
	PresetPath     string
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
}

// App owns the simulation and everything around it. Graphical resources are
// created by InitRender, which headless runs never call.
type App struct {
	cfg  *config.Config
	opts Options

	sim *sim.Simulation

	pipeline *renderer.Pipeline
	panel    *ui.ControlPanel
	hud      *ui.HUD

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager

	paused         bool
	stepsPerUpdate int
}

// New creates the simulation and telemetry side of the app.
func New(opts Options) (*App, error) {
	cfg := config.Cfg()

	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}
	if opts.StatsWindowSec <= 0 {
		opts.StatsWindowSec = cfg.Telemetry.StatsWindow
	}

	s, err := sim.New(cfg, opts.Seed)
	if err != nil {
		return nil, err
	}

	if opts.PresetPath != "" {
		p, err := preset.LoadFile(opts.PresetPath)
		if err != nil {
			return nil, err
		}
		if err := s.Deserialize(p); err != nil {
			return nil, err
		}
		slog.Info("preset loaded", "path", opts.PresetPath, "species", s.SpeciesCount())
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	return &App{
		cfg:            cfg,
		opts:           opts,
		sim:            s,
		collector:      telemetry.NewCollector(opts.StatsWindowSec, cfg.Physics.DT),
		perf:           telemetry.NewPerfCollector(cfg.Screen.TargetFPS),
		output:         output,
		stepsPerUpdate: opts.StepsPerUpdate,
	}, nil
}

// InitRender creates the render pipeline and UI. Must run after the raylib
// window is open.
func (a *App) InitRender() {
	backend := renderer.NewRaylibBackend(a.cfg.Screen.Width, a.cfg.Screen.Height)
	a.pipeline = renderer.NewPipeline(backend)

	panelWidth := int32(250)
	a.panel = ui.NewControlPanel(int32(a.cfg.Screen.Width)-panelWidth-10, 10, panelWidth)
	a.hud = ui.NewHUD(10, 10)
}

// Tick returns the number of completed simulation steps.
func (a *App) Tick() int64 { return a.sim.Tick() }

// Update advances the simulation for one graphical frame.
func (a *App) Update() {
	a.handleInput()
	if a.paused {
		return
	}
	a.step(a.stepsPerUpdate)
}

// UpdateHeadless advances the simulation without graphics.
func (a *App) UpdateHeadless() {
	a.step(a.stepsPerUpdate)
}

// step runs n simulation ticks with perf and stats bookkeeping.
func (a *App) step(n int) {
	dt := a.cfg.Physics.DT
	for i := 0; i < n; i++ {
		a.perf.StartTick()
		a.sim.BeginStep()
		a.perf.StartPhase(telemetry.PhaseForces)
		a.sim.ApplyForces()
		a.perf.StartPhase(telemetry.PhaseIntegrate)
		a.sim.Integrate(dt)
		a.perf.StartPhase(telemetry.PhaseTelemetry)
		a.collector.RecordNonFiniteRepair(a.sim.TakeNonFiniteRepairs())
		a.flushStats()
		a.perf.EndTick()
	}
}

// flushStats emits a stats window when due.
func (a *App) flushStats() {
	if !a.collector.ShouldFlush(a.sim.Tick()) {
		return
	}
	stats := a.collector.Flush(a.sim)
	if a.opts.LogStats {
		stats.LogStats()
	}
	if err := a.output.WriteTelemetry(stats); err != nil {
		slog.Warn("failed to write telemetry", "error", err)
	}
	if err := a.output.WritePerf(a.perf.Stats(), stats.WindowEndTick); err != nil {
		slog.Warn("failed to write perf stats", "error", err)
	}
}

// Draw renders one frame: simulation layers, then the UI on top.
func (a *App) Draw() {
	rl.BeginDrawing()

	a.perf.StartPhase(telemetry.PhaseRender)
	a.pipeline.Frame(a.sim)

	a.hud.Draw(ui.HUDData{
		FPS:       int(rl.GetFPS()),
		Tick:      a.sim.Tick(),
		Particles: a.sim.ParticleCount(),
		Species:   a.sim.SpeciesCount(),
		Paused:    a.paused,
	})
	actions := a.panel.Draw(a.sim)

	rl.EndDrawing()
	a.perf.RecordFrame()

	if actions.SavePreset {
		a.savePreset()
	}
}

// savePreset writes the current scene to the output directory, or the
// working directory when output is disabled.
func (a *App) savePreset() {
	p := a.sim.Serialize()
	name := fmt.Sprintf("preset-%d.yaml", a.sim.Tick())
	path := filepath.Join(a.output.Dir(), name)
	if err := preset.Save(p, path); err != nil {
		slog.Error("failed to save preset", "path", path, "error", err)
		return
	}
	slog.Info("preset saved", "path", path)
}

// Unload releases graphics resources and closes output files.
func (a *App) Unload() {
	if a.pipeline != nil {
		a.pipeline.Unload()
	}
	if err := a.output.Close(); err != nil {
		slog.Warn("failed to close output files", "error", err)
	}
}
