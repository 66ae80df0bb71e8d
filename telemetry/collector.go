package telemetry

import "math"

// Collector accumulates events within stats windows and produces
// WindowStats. State sampling (speeds, trails, centroids) happens at flush
// time; only event counters are touched per tick.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float64

	windowStartTick int64

	nonFiniteRepairs int

	// scratch reused across flushes
	speeds []float64
}

// NewCollector creates a stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
// dt: seconds per tick.
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int64(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordNonFiniteRepair counts particles reseeded after a numeric blowup.
func (c *Collector) RecordNonFiniteRepair(n int) {
	c.nonFiniteRepairs += n
}

// ShouldFlush reports whether the current window is complete.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush samples the source, produces a WindowStats, and starts the next
// window.
func (c *Collector) Flush(src Source) WindowStats {
	tick := src.Tick()

	c.speeds = c.speeds[:0]
	src.ForEachParticle(func(_, _, vx, vy float64, _ int) {
		c.speeds = append(c.speeds, math.Sqrt(vx*vx+vy*vy))
	})
	mean, std, p10, p50, p90 := SpeedStats(c.speeds)

	var trailSum float64
	trailN := 0
	src.ForEachTrail(func(_ int, pathLength float64) {
		trailSum += pathLength
		trailN++
	})
	var trailMean float64
	if trailN > 0 {
		trailMean = trailSum / float64(trailN)
	}

	stats := WindowStats{
		WindowStartTick:  c.windowStartTick,
		WindowEndTick:    tick,
		SimTimeSec:       float64(tick) * c.dt,
		Particles:        src.ParticleCount(),
		Species:          src.SpeciesCount(),
		SpeedMean:        mean,
		SpeedStd:         std,
		SpeedP10:         p10,
		SpeedP50:         p50,
		SpeedP90:         p90,
		TrailLenMean:     trailMean,
		CentroidSpread:   centroidSpread(SpeciesCentroids(src)),
		NonFiniteRepairs: c.nonFiniteRepairs,
	}

	c.windowStartTick = tick
	c.nonFiniteRepairs = 0
	return stats
}
