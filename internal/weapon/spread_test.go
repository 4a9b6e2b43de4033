package weapon

import (
	"math"
	"math/rand"
	"testing"

	"manhack-sim/internal/vecmath"
)

func TestSpreadEndpoints(t *testing.T) {
	tests := []struct {
		name    string
		penalty float64
		want    float64 // full cone degrees
	}{
		{"settled", 0, 1},
		{"max", 1.5, 6},
		{"half", 0.75, 3.5},
		{"beyond max", 9, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SpreadForPenalty(tt.penalty, 1.5)
			if tt.penalty == 0 && got != Cone1Degrees {
				t.Errorf("zero penalty = %v, want exact 1 degree cone", got)
			}
			if tt.penalty >= 1.5 && got != Cone6Degrees {
				t.Errorf("max penalty = %v, want exact 6 degree cone", got)
			}
			// lerp happens on sines, so degrees are only close to linear
			if deg := ConeDegrees(got); math.Abs(deg-tt.want) > 0.01 {
				t.Errorf("cone = %.4f degrees, want %.1f", deg, tt.want)
			}
		})
	}
}

func TestSpreadMonotonic(t *testing.T) {
	prev := SpreadForPenalty(0, 1.5)
	for p := 0.05; p <= 1.5; p += 0.05 {
		got := SpreadForPenalty(p, 1.5)
		if got.X < prev.X || got.Y < prev.Y || got.Z < prev.Z {
			t.Fatalf("spread shrank at penalty %.2f: %v < %v", p, got, prev)
		}
		if got.X != got.Y || got.Y != got.Z {
			t.Fatalf("spread not isotropic: %v", got)
		}
		prev = got
	}
}

func TestBulletSpreadModes(t *testing.T) {
	w, _, o := newTestWeapon()
	s := w.State()
	s.AccuracyPenalty = 1.5
	w.Restore(s)

	if got := w.BulletSpread(); got != Cone6Degrees {
		t.Errorf("player spread = %v", got)
	}

	o.npc = true
	if got := w.BulletSpread(); got != Cone5Degrees {
		t.Errorf("npc spread = %v, want 5 degrees", got)
	}

	h := newFakeHost()
	props := DefaultProperties()
	props.UseNewAccuracy = false
	legacy := New(props, h.host(), 0)
	legacy.SetOwner(&fakeOwner{})
	if got := legacy.BulletSpread(); got != Cone4Degrees {
		t.Errorf("legacy spread = %v, want 4 degrees", got)
	}
}

func TestDisperseStaysInCone(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	dir := vecmath.Vec(1, 0, 0)
	cone := Cone6Degrees

	for i := 0; i < 1000; i++ {
		got := Disperse(dir, cone, rng)
		off := got.Sub(dir).Len()
		if off > cone.X*math.Sqrt2+1e-9 {
			t.Fatalf("shot %d deviates %v, cone %v", i, off, cone.X)
		}
		if got.X != 1 {
			t.Fatalf("forward component changed: %v", got)
		}
	}

	if got := Disperse(dir, ConePrecalculated, rng); got != dir {
		t.Errorf("precalculated cone moved direction: %v", got)
	}
	if got := Disperse(dir, cone, nil); got != dir {
		t.Errorf("nil rng moved direction: %v", got)
	}
}
