package vecmath

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func nearVec(a, b Vector) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

// TestAngleVectors checks the basis for the cardinal view directions
func TestAngleVectors(t *testing.T) {
	tests := []struct {
		name    string
		angle   QAngle
		forward Vector
		right   Vector
		up      Vector
	}{
		{"identity", QAngle{}, Vec(1, 0, 0), Vec(0, -1, 0), Vec(0, 0, 1)},
		{"yaw 90", QAngle{Yaw: 90}, Vec(0, 1, 0), Vec(1, 0, 0), Vec(0, 0, 1)},
		{"look down", QAngle{Pitch: 90}, Vec(0, 0, -1), Vec(0, -1, 0), Vec(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, r, u := AngleVectors(tt.angle)
			if !nearVec(f, tt.forward) {
				t.Errorf("forward = %+v, want %+v", f, tt.forward)
			}
			if !nearVec(r, tt.right) {
				t.Errorf("right = %+v, want %+v", r, tt.right)
			}
			if !nearVec(u, tt.up) {
				t.Errorf("up = %+v, want %+v", u, tt.up)
			}
		})
	}
}

func TestRemapValClamped(t *testing.T) {
	tests := []struct {
		val, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.75, 0.5},
		{1.5, 1},
		{3, 1},
	}
	for _, tt := range tests {
		if got := RemapValClamped(tt.val, 0, 1.5, 0, 1); !near(got, tt.want) {
			t.Errorf("RemapValClamped(%v) = %v, want %v", tt.val, got, tt.want)
		}
	}

	if got := RemapValClamped(2, 1, 1, 0, 10); got != 10 {
		t.Errorf("degenerate range above = %v, want 10", got)
	}
	if got := RemapValClamped(0, 1, 1, 0, 10); got != 0 {
		t.Errorf("degenerate range below = %v, want 0", got)
	}
}

func TestLerpAndNormalize(t *testing.T) {
	got := Lerp(Vec(0, 0, 0), Vec(2, 4, 6), 0.5)
	if !nearVec(got, Vec(1, 2, 3)) {
		t.Errorf("Lerp = %+v", got)
	}

	n := Vec(3, 0, 4).Normalize()
	if !near(n.Len(), 1) {
		t.Errorf("Normalize length = %v", n.Len())
	}
	if (Vector{}).Normalize() != (Vector{}) {
		t.Error("zero vector should normalize to zero")
	}
}
