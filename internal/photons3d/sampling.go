package photons3d

import "math"

// orthonormalBasis returns t, b such that (t, b, n) is right-handed and orthonormal. n must be unit.
func orthonormalBasis(n Vector3) (t, b Vector3) {
	// Find a vector not parallel to n
	var nt Vector3
	if math.Abs(n.X) > 0.1 {
		nt = v3(0, 1, 0)
	} else {
		nt = v3(1, 0, 0)
	}
	t = nt.Cross(n).Norm()
	b = n.Cross(t)
	return t, b
}

// sampleFreePath draws a distance from an exponential with mean length.
// Infinite lengths never interact; zero lengths interact immediately.
func sampleFreePath(length Real, rng *Stream) Real {
	u := rng.OpenFloat64()
	if math.IsInf(length, 1) {
		return math.Inf(1)
	}
	return -length * math.Log(u)
}

// sampleCosineHemisphere returns a cosine-weighted unit direction around unit n.
func sampleCosineHemisphere(n Vector3, rng *Stream) Vector3 {
	a := 2.0 * math.Pi * rng.Float64()
	z := rng.Float64()
	r := math.Sqrt(z)
	x := r * math.Cos(a)
	y := r * math.Sin(a)
	zn := math.Sqrt(1.0 - z)

	t, b := orthonormalBasis(n)
	return t.Mul(x).Add(b.Mul(y)).Add(n.Mul(zn)).Norm()
}

// sampleUnitSphere returns a uniform direction.
func sampleUnitSphere(rng *Stream) Vector3 {
	z := 1.0 - 2.0*rng.Float64()
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * rng.Float64()
	return v3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// randomPerpendicular returns a uniformly oriented unit vector orthogonal to unit d.
func randomPerpendicular(d Vector3, rng *Stream) Vector3 {
	t, b := orthonormalBasis(d)
	phi := 2.0 * math.Pi * rng.Float64()
	return t.Mul(math.Cos(phi)).Add(b.Mul(math.Sin(phi)))
}
