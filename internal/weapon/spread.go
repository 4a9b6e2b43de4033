package weapon

import (
	"math"
	"math/rand"

	"manhack-sim/internal/vecmath"
)

// Cone returns the dispersion vector for a full cone angle in degrees.
func Cone(degrees float64) vecmath.Vector {
	s := math.Sin(degrees / 2 * math.Pi / 180)
	return vecmath.Vec(s, s, s)
}

var (
	Cone1Degrees = Cone(1)
	Cone4Degrees = Cone(4)
	Cone5Degrees = Cone(5)
	Cone6Degrees = Cone(6)

	// ConePrecalculated means the direction already includes spread.
	ConePrecalculated = vecmath.Vector{}
)

// BulletSpread returns the current dispersion cone.
// NPC owners always get a fixed narrow cone.
func (w *Weapon) BulletSpread() vecmath.Vector {
	if w.owner != nil && w.owner.IsNPC() {
		return Cone5Degrees
	}

	if !w.props.UseNewAccuracy {
		return Cone4Degrees
	}

	return SpreadForPenalty(w.state.AccuracyPenalty, w.props.MaxPenalty)
}

// SpreadForPenalty interpolates from the tight to the wide cone.
func SpreadForPenalty(penalty, maxPenalty float64) vecmath.Vector {
	ramp := vecmath.RemapValClamped(penalty, 0, maxPenalty, 0, 1)
	return vecmath.Lerp(Cone1Degrees, Cone6Degrees, ramp)
}

// ConeDegrees converts a dispersion vector back into a full cone angle.
func ConeDegrees(cone vecmath.Vector) float64 {
	return 2 * math.Asin(vecmath.Clamp(cone.X, -1, 1)) * 180 / math.Pi
}

// Disperse randomizes dir inside cone the way the hitscan primitive does:
// two summed uniforms per axis, rejected outside the unit circle.
func Disperse(dir, cone vecmath.Vector, rng *rand.Rand) vecmath.Vector {
	if rng == nil || cone == ConePrecalculated {
		return dir
	}
	right, up := vecmath.VectorVectors(dir)

	var x, y float64
	for {
		x = rng.Float64() - 0.5 + rng.Float64() - 0.5
		y = rng.Float64() - 0.5 + rng.Float64() - 0.5
		if x*x+y*y <= 1 {
			break
		}
	}

	return dir.Add(right.Scale(x * cone.X)).Add(up.Scale(y * cone.Y))
}
