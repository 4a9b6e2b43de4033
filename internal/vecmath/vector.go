// Package vecmath holds the small amount of 3D math the weapon code needs:
// vectors, Euler view angles and the conversions between them.
package vecmath

import "math"

// Vector is a 3D vector in world units (inches).
type Vector struct {
	X, Y, Z float64
}

// QAngle is a pitch/yaw/roll triple in degrees.
type QAngle struct {
	Pitch, Yaw, Roll float64
}

// Vec is shorthand for Vector{x, y, z}.
func Vec(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vector) Scale(s float64) Vector {
	return Vector{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vector) Dot(o Vector) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns v x o.
func (v Vector) Cross(o Vector) Vector {
	return Vector{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Len returns the euclidean length.
func (v Vector) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns the unit vector, or the zero vector for zero input.
func (v Vector) Normalize() Vector {
	l := v.Len()
	if l == 0 {
		return Vector{}
	}
	return v.Scale(1 / l)
}

// Lerp interpolates between a and b.
func Lerp(a, b Vector, t float64) Vector {
	return Vector{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}

// Add returns the component-wise sum of two angles.
func (a QAngle) Add(o QAngle) QAngle {
	return QAngle{a.Pitch + o.Pitch, a.Yaw + o.Yaw, a.Roll + o.Roll}
}

// IsZero reports whether all components are zero.
func (a QAngle) IsZero() bool {
	return a.Pitch == 0 && a.Yaw == 0 && a.Roll == 0
}

// AngleVectors returns the forward, right and up basis for a view angle.
// Pitch is positive looking down, matching the engine convention.
func AngleVectors(a QAngle) (forward, right, up Vector) {
	sp, cp := math.Sincos(a.Pitch * math.Pi / 180)
	sy, cy := math.Sincos(a.Yaw * math.Pi / 180)
	sr, cr := math.Sincos(a.Roll * math.Pi / 180)

	forward = Vector{cp * cy, cp * sy, -sp}
	right = Vector{
		-1*sr*sp*cy + -1*cr*-sy,
		-1*sr*sp*sy + -1*cr*cy,
		-1 * sr * cp,
	}
	up = Vector{
		cr*sp*cy + -sr*-sy,
		cr*sp*sy + -sr*cy,
		cr * cp,
	}
	return forward, right, up
}

// Forward returns only the forward vector of AngleVectors.
func Forward(a QAngle) Vector {
	f, _, _ := AngleVectors(a)
	return f
}

// VectorVectors builds a right/up basis perpendicular to forward.
func VectorVectors(forward Vector) (right, up Vector) {
	if math.Abs(forward.X) < 1e-6 && math.Abs(forward.Y) < 1e-6 {
		// pointing straight up or down
		right = Vector{0, -1, 0}
		up = Vector{-forward.Z, 0, 0}
		return right, up
	}
	right = forward.Cross(Vector{0, 0, 1}).Normalize()
	up = right.Cross(forward).Normalize()
	return right, up
}

// RemapValClamped maps val from [a, b] onto [c, d], clamping to the output range.
func RemapValClamped(val, a, b, c, d float64) float64 {
	if a == b {
		if val >= b {
			return d
		}
		return c
	}
	t := (val - a) / (b - a)
	t = Clamp(t, 0, 1)
	return c + (d-c)*t
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
