package telemetry

import "math"

// Centroid is the mean position of a particle group.
type Centroid struct {
	X, Y  float64
	Count int
}

// SpeciesCentroids computes one centroid per species id. Species with no
// particles get a zero centroid with Count 0.
func SpeciesCentroids(src Source) []Centroid {
	out := make([]Centroid, src.SpeciesCount())
	src.ForEachParticle(func(x, y, _, _ float64, id int) {
		if id < 0 || id >= len(out) {
			return
		}
		out[id].X += x
		out[id].Y += y
		out[id].Count++
	})
	for i := range out {
		if out[i].Count > 0 {
			out[i].X /= float64(out[i].Count)
			out[i].Y /= float64(out[i].Count)
		}
	}
	return out
}

// CentroidDistance returns the euclidean distance between two centroids.
func CentroidDistance(a, b Centroid) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// centroidSpread is the mean distance of per-species centroids from the
// population centroid, counting only populated species.
func centroidSpread(cents []Centroid) float64 {
	var global Centroid
	populated := 0
	for _, c := range cents {
		if c.Count == 0 {
			continue
		}
		global.X += c.X
		global.Y += c.Y
		populated++
	}
	if populated == 0 {
		return 0
	}
	global.X /= float64(populated)
	global.Y /= float64(populated)

	var sum float64
	for _, c := range cents {
		if c.Count == 0 {
			continue
		}
		sum += CentroidDistance(c, global)
	}
	return sum / float64(populated)
}
