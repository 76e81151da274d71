package photons3d

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type Real = float64

// Vector3 is a position or direction in 3D space.
type Vector3 r3.Vec

func v3(x, y, z Real) Vector3 { return Vector3{X: x, Y: y, Z: z} }

func (v Vector3) vec() r3.Vec { return r3.Vec(v) }

// Vector functions
func (a Vector3) Add(b Vector3) Vector3   { return Vector3(r3.Add(a.vec(), b.vec())) }
func (a Vector3) Sub(b Vector3) Vector3   { return Vector3(r3.Sub(a.vec(), b.vec())) }
func (v Vector3) Mul(s Real) Vector3      { return Vector3(r3.Scale(s, v.vec())) }
func (a Vector3) Dot(b Vector3) Real      { return r3.Dot(a.vec(), b.vec()) }
func (a Vector3) Cross(b Vector3) Vector3 { return Vector3(r3.Cross(a.vec(), b.vec())) }

// Len returns the Euclidean length of the vector.
func (v Vector3) Len() Real { return r3.Norm(v.vec()) }

// Norm returns a unit-length version of the vector.
// If the vector is (near) zero, it returns the input unchanged.
func (v Vector3) Norm() Vector3 {
	l2 := v.Dot(v)
	if l2 < minNormSq {
		return v
	}
	return v.Mul(1 / math.Sqrt(l2))
}

// Axis returns component i (0=X, 1=Y, 2=Z).
func (v Vector3) Axis(i int) Real {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func (v Vector3) isFinite() bool { return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z) }

// unit normalizes v, reporting false when v is zero or not finite.
func unit(v Vector3) (Vector3, bool) {
	l2 := v.Dot(v)
	if !(l2 >= minNormSq) || !isFinite(l2) {
		return v, false
	}
	return v.Mul(1 / math.Sqrt(l2)), true
}

func vmin(a, b Vector3) Vector3 {
	return Vector3{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

func vmax(a, b Vector3) Vector3 {
	return Vector3{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}
