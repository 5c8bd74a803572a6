package geo

import (
	"math"
	"testing"
)

func TestDistance_KnownPoints(t *testing.T) {
	// Dhaka University to Dhanmondi, roughly 2.5 km.
	d := Distance(23.7340, 90.3929, 23.7465, 90.3760)
	if d < 2.0 || d > 3.0 {
		t.Errorf("expected ~2.5 km, got %.3f", d)
	}
}

func TestDistance_ZeroForSamePoint(t *testing.T) {
	if d := Distance(23.79, 90.41, 23.79, 90.41); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Distance(23.79, 90.41, 23.80, 90.42)
	b := Distance(23.80, 90.42, 23.79, 90.41)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestWithinRadius(t *testing.T) {
	// ~150 m apart.
	if !WithinRadius(23.790, 90.410, 23.791, 90.411, 0.5) {
		t.Error("expected nearby point within 500 m radius")
	}
	// ~15 km apart.
	if WithinRadius(23.790, 90.410, 23.900, 90.500, 0.5) {
		t.Error("expected far point outside 500 m radius")
	}
}

func TestBox_ContainsCircle(t *testing.T) {
	box := Box(23.79, 90.41, 1.0)
	if !box.Contains(23.79, 90.41) {
		t.Error("box must contain its center")
	}
	// A point just inside the radius must be inside the box.
	if !box.Contains(23.798, 90.41) {
		t.Error("box must contain points within the radius")
	}
	// A point far outside must not be.
	if box.Contains(23.90, 90.50) {
		t.Error("box must exclude distant points")
	}
}

func TestEncode_StableAndPrefixed(t *testing.T) {
	h := Encode(23.79, 90.41, 7)
	if len(h) != 7 {
		t.Fatalf("expected 7 chars, got %q", h)
	}
	// Distant points land in different cells at 5-char precision (~5 km).
	a := Encode(23.790, 90.410, 5)
	b := Encode(23.900, 90.500, 5)
	if a == b {
		t.Errorf("expected distinct geohashes for ~15 km apart points, both %q", a)
	}
	if got := Encode(23.79, 90.41, 7); got != h {
		t.Errorf("encode not deterministic: %q vs %q", got, h)
	}
}
