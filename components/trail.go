package components

import "math"

// TrailPoint is one recorded trail position.
type TrailPoint struct {
	X, Y float64
}

// Trail is a bounded ring buffer of recent particle positions. Length never
// exceeds the capacity fixed at creation; pushing into a full buffer evicts
// the oldest entry.
type Trail struct {
	Points []TrailPoint
	Head   int // next write index
	Count  int
}

// NewTrail creates a trail with the given capacity (minimum 1).
func NewTrail(capacity int) Trail {
	if capacity < 1 {
		capacity = 1
	}
	return Trail{Points: make([]TrailPoint, capacity)}
}

// Cap returns the fixed capacity.
func (t *Trail) Cap() int { return len(t.Points) }

// Push records a position, evicting the oldest entry when full.
func (t *Trail) Push(x, y float64) {
	t.Points[t.Head] = TrailPoint{X: x, Y: y}
	t.Head = (t.Head + 1) % len(t.Points)
	if t.Count < len(t.Points) {
		t.Count++
	}
}

// At returns the i-th recorded point, oldest first. i must be in [0, Count).
func (t *Trail) At(i int) TrailPoint {
	start := t.Head - t.Count
	if start < 0 {
		start += len(t.Points)
	}
	return t.Points[(start+i)%len(t.Points)]
}

// Latest returns the most recent point and false if the trail is empty.
func (t *Trail) Latest() (TrailPoint, bool) {
	if t.Count == 0 {
		return TrailPoint{}, false
	}
	return t.At(t.Count - 1), true
}

// Reset empties the buffer without reallocating.
func (t *Trail) Reset() {
	t.Head = 0
	t.Count = 0
}

// PathLength returns the summed segment length of the recorded path.
// Used by telemetry as a motion-activity signal.
func (t *Trail) PathLength() float64 {
	if t.Count < 2 {
		return 0
	}
	total := 0.0
	prev := t.At(0)
	for i := 1; i < t.Count; i++ {
		p := t.At(i)
		dx := p.X - prev.X
		dy := p.Y - prev.Y
		total += math.Sqrt(dx*dx + dy*dy)
		prev = p
	}
	return total
}
