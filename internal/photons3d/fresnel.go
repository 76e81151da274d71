package photons3d

import "math"

// interfaceGeom describes a ray meeting a dielectric boundary.
type interfaceGeom struct {
	n    Vector3 // unit normal facing the incident side
	s    Vector3 // unit s-polarization axis, d x n
	cosi Real
	cost Real // valid unless tir
	eta  Real // n1/n2
	tir  bool
}

func newInterface(d, N Vector3, n1, n2 Real, pol Vector3) interfaceGeom {
	n := N
	cosi := -d.Dot(N)
	if cosi < 0 {
		n = N.Mul(-1)
		cosi = -cosi
	}
	// Numeric clamp to [0,1]
	if cosi > 1 {
		cosi = 1
	}
	g := interfaceGeom{n: n, cosi: cosi, eta: n1 / n2}
	if c := d.Cross(n); c.Len() > 1e-9 {
		g.s = c.Norm()
	} else {
		// normal incidence: every axis is s and p at once
		g.s = pol
	}
	sin2t := g.eta * g.eta * (1 - cosi*cosi)
	if sin2t > 1 {
		g.tir = true
		return g
	}
	g.cost = math.Sqrt(1 - sin2t)
	return g
}

// fresnelSP returns the s and p power reflectances for the interface n1 -> n2.
func fresnelSP(cosi, cost, n1, n2 Real) (rs, rp Real) {
	as := (n1*cosi - n2*cost) / (n1*cosi + n2*cost)
	ap := (n2*cosi - n1*cost) / (n2*cosi + n1*cost)
	return as * as, ap * ap
}

// reflectance is the probability of reflection for a photon polarized along pol.
func (g interfaceGeom) reflectance(n1, n2 Real, pol Vector3) Real {
	if g.tir {
		return 1
	}
	rs, rp := fresnelSP(g.cosi, g.cost, n1, n2)
	fs := pol.Dot(g.s)
	fs = clamp01(fs * fs)
	return fs*rs + (1-fs)*rp
}

func reflect3(I, N Vector3) Vector3 {
	return I.Sub(N.Mul(2 * I.Dot(N)))
}

// refract3 follows Snell's law; g must not be tir.
func (g interfaceGeom) refract3(I Vector3) Vector3 {
	return I.Mul(g.eta).Add(g.n.Mul(g.eta*g.cosi - g.cost))
}

// carryPolarization keeps the s component of pol and rotates its p component
// from the incident p-axis into the outgoing one.
func (g interfaceGeom) carryPolarization(in, out, pol Vector3) Vector3 {
	a := pol.Dot(g.s)
	pIn := g.s.Cross(in)
	c := pol.Dot(pIn)
	pOut := g.s.Cross(out)
	return g.s.Mul(a).Add(pOut.Mul(c))
}
