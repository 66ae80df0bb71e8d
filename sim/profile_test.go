package sim

import (
	"math"
	"testing"
)

const (
	collR = 12.0
	socR  = 80.0
	collF = -1.0
	socF  = 0.6
)

func testModel(kind ProfileKind) ForceModel {
	m := DefaultForceModel()
	m.Kind = kind
	return m
}

func TestPair_ContinuousAtCollisionRadius(t *testing.T) {
	const eps = 1e-6
	for _, kind := range []ProfileKind{ProfilePeak, ProfileHump, ProfileSustain} {
		m := testModel(kind)
		inner := m.Pair(collR-eps, collR, socR, collF, socF)
		outer := m.Pair(collR+eps, collR, socR, collF, socF)
		if math.Abs(inner-outer) > 1e-4 {
			t.Errorf("%v: force jumps at collision radius: %v vs %v", kind, inner, outer)
		}
	}
}

func TestPair_ContinuousAtSocialRadius(t *testing.T) {
	const eps = 1e-6
	for _, kind := range []ProfileKind{ProfilePeak, ProfileHump, ProfileSustain} {
		m := testModel(kind)
		inner := m.Pair(socR-eps, collR, socR, collF, socF)
		outer := m.Pair(socR+eps, collR, socR, collF, socF)
		if math.Abs(inner-outer) > 1e-4 {
			t.Errorf("%v: force jumps at social radius: %v vs %v", kind, inner, outer)
		}
	}
}

func TestPair_CollisionZoneRepels(t *testing.T) {
	m := testModel(ProfilePeak)

	// Full collision force near zero distance, fading to zero at the boundary.
	near := m.Pair(m.MinDistance, collR, socR, collF, socF)
	mid := m.Pair(collR/2, collR, socR, collF, socF)
	if near >= 0 || mid >= 0 {
		t.Fatalf("collision zone not repulsive: near=%v mid=%v", near, mid)
	}
	if math.Abs(near) <= math.Abs(mid) {
		t.Errorf("repulsion should weaken with distance: |%v| <= |%v|", near, mid)
	}
}

func TestPair_MinDistanceClampsSingularity(t *testing.T) {
	m := testModel(ProfilePeak)
	at0 := m.Pair(0, collR, socR, collF, socF)
	atMin := m.Pair(m.MinDistance, collR, socR, collF, socF)
	if at0 != atMin {
		t.Errorf("Pair(0) = %v, want clamp to Pair(MinDistance) = %v", at0, atMin)
	}
	if math.IsNaN(at0) || math.IsInf(at0, 0) {
		t.Errorf("Pair(0) = %v, want finite", at0)
	}
}

func TestPair_PeakReachesFullForce(t *testing.T) {
	m := testModel(ProfilePeak)
	peakDist := collR + m.PeakAt*(socR-collR)
	got := m.Pair(peakDist, collR, socR, collF, socF)
	if math.Abs(got-socF) > 1e-9 {
		t.Errorf("force at peak = %v, want %v", got, socF)
	}
}

func TestPair_SustainHoldsAfterPeak(t *testing.T) {
	m := testModel(ProfileSustain)
	peakDist := collR + m.PeakAt*(socR-collR)
	for _, dist := range []float64{peakDist, peakDist + 10, socR - 1} {
		got := m.Pair(dist, collR, socR, collF, socF)
		if math.Abs(got-socF) > 1e-9 {
			t.Errorf("sustain at %v = %v, want hold %v", dist, got, socF)
		}
	}
}

func TestPair_TailDecaysMonotonically(t *testing.T) {
	m := testModel(ProfileSustain)
	prev := m.Pair(socR, collR, socR, collF, socF)
	if prev <= 0 {
		t.Fatalf("sustain tail start = %v, want positive", prev)
	}
	for dist := socR + 5; dist < socR+100; dist += 5 {
		got := m.Pair(dist, collR, socR, collF, socF)
		if got >= prev {
			t.Fatalf("tail not decaying at %v: %v >= %v", dist, got, prev)
		}
		if got < 0 {
			t.Fatalf("tail changed sign at %v: %v", dist, got)
		}
		prev = got
	}
}

func TestTailReach(t *testing.T) {
	m := testModel(ProfilePeak)
	if got := m.TailReach(); got != 0 {
		t.Errorf("peak reach = %v, want 0", got)
	}
	m.Kind = ProfileHump
	if got := m.TailReach(); got != 0 {
		t.Errorf("hump reach = %v, want 0", got)
	}

	m.Kind = ProfileSustain
	if got := m.TailReach(); math.Abs(got-3/m.TailFalloff) > 1e-9 {
		t.Errorf("sustain reach = %v, want %v", got, 3/m.TailFalloff)
	}
	// A non-positive falloff falls back to the default decay rate.
	m.TailFalloff = 0
	if got := m.TailReach(); math.Abs(got-3/DefaultForceModel().TailFalloff) > 1e-9 {
		t.Errorf("zero-falloff reach = %v, want default-based %v", got, 3/DefaultForceModel().TailFalloff)
	}
}

func TestPair_DegenerateSocialZone(t *testing.T) {
	m := testModel(ProfileHump)
	// Social radius inside the collision radius: nothing beyond collR.
	for _, dist := range []float64{collR + 1, collR * 2, 500} {
		if got := m.Pair(dist, collR, collR/2, collF, socF); got != 0 {
			t.Errorf("degenerate zone force at %v = %v, want 0", dist, got)
		}
	}
	// The collision zone itself still works.
	if got := m.Pair(collR/2, collR, collR/2, collF, socF); got >= 0 {
		t.Errorf("collision force lost in degenerate zone: %v", got)
	}
}

func TestParseProfile(t *testing.T) {
	tests := []struct {
		name    string
		want    ProfileKind
		wantErr bool
	}{
		{"peak", ProfilePeak, false},
		{"hump", ProfileHump, false},
		{"sustain", ProfileSustain, false},
		{"", ProfilePeak, false},
		{"triangle", ProfilePeak, true},
	}
	for _, tc := range tests {
		got, err := ParseProfile(tc.name)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseProfile(%q) err = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseProfile(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestProfileKind_StringRoundTrip(t *testing.T) {
	for _, kind := range []ProfileKind{ProfilePeak, ProfileHump, ProfileSustain} {
		got, err := ParseProfile(kind.String())
		if err != nil || got != kind {
			t.Errorf("ParseProfile(%q) = (%v, %v), want (%v, nil)", kind.String(), got, err, kind)
		}
	}
}
