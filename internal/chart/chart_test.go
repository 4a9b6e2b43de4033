package chart

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"manhack-sim/internal/weapon"
)

func TestSample_StaysInCone(t *testing.T) {
	cone := weapon.Cone6Degrees
	pts := Sample(cone, 2000, 3)
	if len(pts) != 2000 {
		t.Fatalf("Expected 2000 points, got %d", len(pts))
	}
	for i, p := range pts {
		if r := math.Hypot(p.X, p.Y); r > 3.0+1e-9 {
			t.Fatalf("point %d at %.3f deg is outside the 3 deg half angle", i, r)
		}
	}
}

func TestSample_Deterministic(t *testing.T) {
	a := Sample(weapon.Cone4Degrees, 50, 11)
	b := Sample(weapon.Cone4Degrees, 50, 11)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestConeCurve(t *testing.T) {
	curve := ConeCurve(1.5, true, 10)
	if len(curve) != 11 {
		t.Fatalf("Expected 11 points, got %d", len(curve))
	}
	if math.Abs(curve[0].Degrees-1) > 1e-6 || math.Abs(curve[10].Degrees-6) > 1e-3 {
		t.Errorf("Expected 1..6 deg, got %f..%f", curve[0].Degrees, curve[10].Degrees)
	}
	for i := 1; i < len(curve); i++ {
		if curve[i].Degrees < curve[i-1].Degrees {
			t.Errorf("Curve should not shrink at %d", i)
		}
	}

	for _, cp := range ConeCurve(1.5, false, 4) {
		if math.Abs(cp.Degrees-4) > 1e-9 {
			t.Errorf("Legacy curve should stay at 4 deg, got %f", cp.Degrees)
		}
	}
}

func TestWritePNG(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Samples = 100

	var buf bytes.Buffer
	in := Input{
		Penalty:        0.6,
		MaxPenalty:     1.5,
		UseNewAccuracy: true,
		Cone:           weapon.SpreadForPenalty(0.6, 1.5),
	}
	if err := WritePNG(&buf, in, cfg); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != cfg.Width || b.Dy() != cfg.Height {
		t.Errorf("Expected %dx%d, got %dx%d", cfg.Width, cfg.Height, b.Dx(), b.Dy())
	}
}

func TestRender_BadSizeFallsBack(t *testing.T) {
	img := Image(Input{Cone: weapon.Cone1Degrees}, Config{})
	if img.Bounds().Dx() != DefaultConfig().Width {
		t.Errorf("Expected default width, got %d", img.Bounds().Dx())
	}
}
