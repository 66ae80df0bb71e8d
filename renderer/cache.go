package renderer

// effectKind separates the two gradient sprite families a species can own.
type effectKind int

const (
	kindHalo effectKind = iota
	kindGlow
)

type cacheKey struct {
	species int
	kind    effectKind
}

type cacheEntry struct {
	spec GradientSpec
	g    Gradient
}

// gradientCache holds one sprite per (species, effect) slot. An entry is
// rebuilt whenever its full spec changes, so a stale sprite can never be
// drawn after a color, radius, or intensity edit.
type gradientCache struct {
	gfx     Backend
	entries map[cacheKey]cacheEntry
}

func newGradientCache(gfx Backend) *gradientCache {
	return &gradientCache{gfx: gfx, entries: make(map[cacheKey]cacheEntry)}
}

// get returns the sprite for the slot, building or rebuilding it if the
// cached spec does not match.
func (c *gradientCache) get(species int, kind effectKind, spec GradientSpec) Gradient {
	k := cacheKey{species: species, kind: kind}
	if e, ok := c.entries[k]; ok {
		if e.spec == spec {
			return e.g
		}
		c.gfx.FreeGradient(e.g)
	}
	g := c.gfx.MakeGradient(spec)
	c.entries[k] = cacheEntry{spec: spec, g: g}
	return g
}

// prune drops entries for species ids at or beyond count, releasing their
// sprites. Called after a species-count shrink.
func (c *gradientCache) prune(count int) {
	for k, e := range c.entries {
		if k.species >= count {
			c.gfx.FreeGradient(e.g)
			delete(c.entries, k)
		}
	}
}

// size returns the number of live entries.
func (c *gradientCache) size() int { return len(c.entries) }

// unload releases every sprite.
func (c *gradientCache) unload() {
	for k, e := range c.entries {
		c.gfx.FreeGradient(e.g)
		delete(c.entries, k)
	}
}
