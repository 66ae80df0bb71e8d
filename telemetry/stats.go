// Package telemetry aggregates per-window simulation statistics and writes
// them to structured logs and CSV files for offline analysis.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Source is the read view the collector samples. The sim package's
// Simulation satisfies it.
type Source interface {
	Tick() int64
	ParticleCount() int
	SpeciesCount() int
	ForEachParticle(fn func(x, y, vx, vy float64, speciesID int))
	ForEachTrail(fn func(speciesID int, pathLength float64))
}

// WindowStats holds aggregated statistics for one stats window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Particles int `csv:"particles"`
	Species   int `csv:"species"`

	// Speed distribution sampled at window end
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Trail ring buffers sampled at window end
	TrailLenMean float64 `csv:"trail_len_mean"`

	// Spatial structure: mean distance of species centroids from the
	// population centroid. Near zero means everything collapsed together.
	CentroidSpread float64 `csv:"centroid_spread"`

	// Events during the window
	NonFiniteRepairs int `csv:"nonfinite_repairs"`
}

// SpeedStats computes mean, standard deviation, and percentiles from speed
// samples. Returns zeros for an empty slice.
func SpeedStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("species", s.Species),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("trail_len_mean", s.TrailLenMean),
		slog.Float64("centroid_spread", s.CentroidSpread),
		slog.Int("nonfinite_repairs", s.NonFiniteRepairs),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"species", s.Species,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"speed_p10", s.SpeedP10,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"trail_len_mean", s.TrailLenMean,
		"centroid_spread", s.CentroidSpread,
		"nonfinite_repairs", s.NonFiniteRepairs,
	)
}
