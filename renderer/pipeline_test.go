package renderer

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/yamb0x/particle-life-synth-sub004/species"
)

// recorder is a Backend that logs every call so tests can assert draw order
// and blend-state discipline without a window.
type recorder struct {
	w, h  int
	blend BlendMode
	ops   []string

	made  int
	freed int
}

type fakeGradient struct {
	spec GradientSpec
}

func newRecorder(w, h int) *recorder { return &recorder{w: w, h: h} }

func (r *recorder) log(format string, args ...any) {
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}

func (r *recorder) Size() (int, int) { return r.w, r.h }
func (r *recorder) BeginCanvas()     { r.log("begin") }
func (r *recorder) EndCanvas()       { r.log("end") }

func (r *recorder) Blend() BlendMode { return r.blend }
func (r *recorder) SetBlend(m BlendMode) {
	r.blend = m
	r.log("blend=%d", m)
}

func (r *recorder) Clear(c color.RGBA) { r.log("clear") }
func (r *recorder) Tint(c color.RGBA, alpha float64) {
	r.log("tint alpha=%.2f", alpha)
}

func (r *recorder) Disc(x, y, radius float64, c color.RGBA) {
	r.log("disc r=%.1f blend=%d", radius, r.blend)
}

func (r *recorder) MakeGradient(spec GradientSpec) Gradient {
	r.made++
	r.log("make")
	return &fakeGradient{spec: spec}
}

func (r *recorder) DrawGradient(g Gradient, x, y float64) {
	r.log("gradient r=%.1f blend=%d", g.(*fakeGradient).spec.Radius, r.blend)
}

func (r *recorder) FreeGradient(g Gradient) {
	r.freed++
	r.log("free")
}

func (r *recorder) Present() { r.log("present") }
func (r *recorder) Unload()  { r.log("unload") }

// opIndex returns the index of the first op with the given prefix, or -1.
func (r *recorder) opIndex(prefix string) int {
	for i, op := range r.ops {
		if strings.HasPrefix(op, prefix) {
			return i
		}
	}
	return -1
}

func (r *recorder) count(prefix string) int {
	n := 0
	for _, op := range r.ops {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}

// fakeScene is a Scene with directly settable state.
type fakeScene struct {
	w, h        float64
	attrs       []species.Attributes
	particles   [][2]float64 // position per particle, species = index % len(attrs)
	trails      bool
	persistence float64
	bg          color.RGBA
}

func newFakeScene(nSpecies int) *fakeScene {
	sc := &fakeScene{
		w: 100, h: 100,
		trails:      true,
		persistence: 0.1,
		bg:          color.RGBA{R: 8, G: 8, B: 12, A: 255},
	}
	for i := 0; i < nSpecies; i++ {
		sc.attrs = append(sc.attrs, species.Attributes{
			Color: species.DefaultColor(i),
			Size:  3,
		})
	}
	return sc
}

func (s *fakeScene) WorldSize() (float64, float64) { return s.w, s.h }
func (s *fakeScene) SpeciesCount() int             { return len(s.attrs) }

func (s *fakeScene) Species(id int) (species.Attributes, error) {
	if id < 0 || id >= len(s.attrs) {
		return species.Attributes{}, fmt.Errorf("no species %d", id)
	}
	return s.attrs[id], nil
}

func (s *fakeScene) TrailSettings() (bool, float64) { return s.trails, s.persistence }
func (s *fakeScene) Background() color.RGBA         { return s.bg }

func (s *fakeScene) ForEachParticle(fn func(x, y, vx, vy float64, speciesID int)) {
	for i, p := range s.particles {
		fn(p[0], p[1], 0, 0, i%len(s.attrs))
	}
}

func (s *fakeScene) enableHalo(id int, intensity, radius float64) {
	s.attrs[id].HaloEnabled = true
	s.attrs[id].HaloIntensity = intensity
	s.attrs[id].HaloRadius = radius
}

func (s *fakeScene) enableGlow(id int, intensity, size float64) {
	s.attrs[id].GlowEnabled = true
	s.attrs[id].GlowIntensity = intensity
	s.attrs[id].GlowSize = size
}

func TestFrame_LayerOrder(t *testing.T) {
	rec := newRecorder(100, 100)
	p := NewPipeline(rec)

	sc := newFakeScene(1)
	sc.particles = [][2]float64{{50, 50}}
	sc.enableHalo(0, 0.8, 4)
	sc.enableGlow(0, 0.5, 6)

	p.Frame(sc)

	begin := rec.opIndex("begin")
	tint := rec.opIndex("tint")
	halo := rec.opIndex("gradient r=12.0") // size 3 * halo radius 4
	glow := rec.opIndex("gradient r=18.0") // size 3 * glow size 6
	disc := rec.opIndex("disc")
	end := rec.opIndex("end")
	present := rec.opIndex("present")

	for name, idx := range map[string]int{
		"begin": begin, "tint": tint, "halo": halo,
		"glow": glow, "disc": disc, "end": end, "present": present,
	} {
		if idx < 0 {
			t.Fatalf("op %q missing from frame: %v", name, rec.ops)
		}
	}
	if !(begin < tint && tint < halo && halo < glow && glow < disc && disc < end && end < present) {
		t.Errorf("layer order violated: %v", rec.ops)
	}
}

func TestFrame_BlendScopes(t *testing.T) {
	rec := newRecorder(100, 100)
	p := NewPipeline(rec)

	sc := newFakeScene(1)
	sc.particles = [][2]float64{{50, 50}}
	sc.enableHalo(0, 0.8, 4)
	sc.enableGlow(0, 0.5, 6)

	p.Frame(sc)

	if rec.blend != BlendAlpha {
		t.Errorf("blend mode leaked out of the frame: %v", rec.blend)
	}
	// Halo composites in alpha, glow in additive, cores back in alpha.
	for _, want := range []string{
		"gradient r=12.0 blend=0",
		"gradient r=18.0 blend=1",
		"disc r=3.0 blend=0",
	} {
		if rec.opIndex(want) < 0 {
			t.Errorf("missing %q in %v", want, rec.ops)
		}
	}
}

func TestFrame_TrailsDisabledClearsCanvas(t *testing.T) {
	rec := newRecorder(100, 100)
	p := NewPipeline(rec)

	sc := newFakeScene(1)
	sc.trails = false
	p.Frame(sc)

	if rec.opIndex("clear") < 0 {
		t.Errorf("no clear with trails disabled: %v", rec.ops)
	}
	if rec.opIndex("tint") >= 0 {
		t.Errorf("tint drawn with trails disabled: %v", rec.ops)
	}
}

func TestFrame_SkipsUnrenderableSpecies(t *testing.T) {
	rec := newRecorder(100, 100)
	p := NewPipeline(rec)

	sc := newFakeScene(3)
	sc.attrs[1].Color = color.RGBA{}
	sc.attrs[2].Size = math.NaN()
	sc.enableHalo(0, 0.8, 4)
	sc.enableHalo(1, 0.8, 4)
	sc.enableHalo(2, 0.8, 4)
	sc.particles = [][2]float64{{10, 10}, {20, 20}, {30, 30}}

	p.Frame(sc)

	if got := rec.count("disc"); got != 1 {
		t.Errorf("drew %d cores, want 1 (two species unrenderable)", got)
	}
	if got := rec.count("gradient"); got != 1 {
		t.Errorf("drew %d auras, want 1", got)
	}
}

func TestFrame_GradientCacheReuse(t *testing.T) {
	rec := newRecorder(100, 100)
	p := NewPipeline(rec)

	sc := newFakeScene(1)
	sc.particles = [][2]float64{{10, 10}, {20, 20}, {30, 30}}
	sc.enableHalo(0, 0.8, 4)

	p.Frame(sc)
	p.Frame(sc)

	// One sprite serves every particle of the species across frames.
	if rec.made != 1 {
		t.Errorf("built %d gradients for one unchanged species, want 1", rec.made)
	}
	if rec.freed != 0 {
		t.Errorf("freed %d gradients without any change", rec.freed)
	}
}

func TestFrame_GradientRebuiltOnSpecChange(t *testing.T) {
	rec := newRecorder(100, 100)
	p := NewPipeline(rec)

	sc := newFakeScene(1)
	sc.particles = [][2]float64{{10, 10}}
	sc.enableHalo(0, 0.8, 4)

	p.Frame(sc)
	sc.attrs[0].HaloIntensity = 0.3
	p.Frame(sc)

	if rec.made != 2 {
		t.Errorf("built %d gradients across an intensity edit, want 2", rec.made)
	}
	if rec.freed != 1 {
		t.Errorf("freed %d stale gradients, want 1", rec.freed)
	}
}

func TestFrame_PrunesCacheOnSpeciesShrink(t *testing.T) {
	rec := newRecorder(100, 100)
	p := NewPipeline(rec)

	sc := newFakeScene(2)
	sc.particles = [][2]float64{{10, 10}, {20, 20}}
	sc.enableHalo(0, 0.8, 4)
	sc.enableHalo(1, 0.8, 4)

	p.Frame(sc)
	if p.cache.size() != 2 {
		t.Fatalf("cache size = %d after frame, want 2", p.cache.size())
	}

	sc.attrs = sc.attrs[:1]
	sc.particles = sc.particles[:1]
	p.Frame(sc)

	if p.cache.size() != 1 {
		t.Errorf("cache size = %d after shrink, want 1", p.cache.size())
	}
	if rec.freed != 1 {
		t.Errorf("freed %d sprites on shrink, want 1", rec.freed)
	}
}

func TestFrame_NoParticlesStillPresents(t *testing.T) {
	rec := newRecorder(100, 100)
	p := NewPipeline(rec)

	p.Frame(newFakeScene(1))

	if rec.opIndex("present") < 0 {
		t.Errorf("empty scene did not present: %v", rec.ops)
	}
}

func TestFrame_SurfaceScaling(t *testing.T) {
	// Surface is twice the world in x, equal in y: positions scale per axis,
	// radii take the smaller factor.
	rec := newRecorder(200, 100)
	p := NewPipeline(rec)

	sc := newFakeScene(1)
	sc.particles = [][2]float64{{50, 50}}

	p.Frame(sc)

	if rec.opIndex("disc r=3.0") < 0 {
		t.Errorf("core radius not scaled isotropically: %v", rec.ops)
	}
}

func TestUnload_ReleasesSpritesAndBackend(t *testing.T) {
	rec := newRecorder(100, 100)
	p := NewPipeline(rec)

	sc := newFakeScene(1)
	sc.particles = [][2]float64{{10, 10}}
	sc.enableHalo(0, 0.8, 4)
	sc.enableGlow(0, 0.5, 6)
	p.Frame(sc)

	p.Unload()

	if rec.freed != rec.made {
		t.Errorf("freed %d of %d sprites on Unload", rec.freed, rec.made)
	}
	if rec.opIndex("unload") < 0 {
		t.Error("backend not unloaded")
	}
}

func TestStateError_Message(t *testing.T) {
	err := &StateError{Layer: "halo", Species: 2, Msg: "zero color"}
	want := "render halo layer: species 2: zero color"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
