package photons3d

import "math"

// sampleRayleighCos draws mu = cos(theta) from the Rayleigh phase function
// p(mu) = 3/8 (1 + mu^2) on [-1, 1] by inverting its CDF (mu^3 + 3mu + 4)/8.
func sampleRayleighCos(u Real) Real {
	q := 4 - 8*u
	s := math.Sqrt(q*q/4 + 1)
	mu := math.Cbrt(-q/2+s) + math.Cbrt(-q/2-s)
	if mu > 1 {
		return 1
	}
	if mu < -1 {
		return -1
	}
	return mu
}

// rayleighCDF is the cumulative distribution of mu = cos(theta).
func rayleighCDF(mu Real) Real { return (mu*mu*mu + 3*mu + 4) / 8 }

// scatterRayleigh returns a new direction at a Rayleigh-distributed polar angle
// (uniform azimuth) about dir, and the old polarization projected onto the plane
// orthogonal to it. A polarization left without a transverse part is replaced
// by a random perpendicular.
func scatterRayleigh(dir, pol Vector3, rng *Stream) (Vector3, Vector3) {
	mu := sampleRayleighCos(rng.Float64())
	sin := math.Sqrt(math.Max(0, 1-mu*mu))
	phi := 2 * math.Pi * rng.Float64()
	t, b := orthonormalBasis(dir)
	nd := dir.Mul(mu).Add(t.Mul(sin * math.Cos(phi))).Add(b.Mul(sin * math.Sin(phi))).Norm()

	np := pol.Sub(nd.Mul(pol.Dot(nd)))
	if u, ok := unit(np); ok && np.Len() > 1e-6 {
		return nd, u
	}
	return nd, randomPerpendicular(nd, rng)
}
