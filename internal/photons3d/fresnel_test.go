package photons3d

import (
	"math"
	"testing"
)

func TestFresnelNormalIncidence(t *testing.T) {
	d, N := v3(0, 0, 1), v3(0, 0, -1)
	for _, pol := range []Vector3{v3(1, 0, 0), v3(0, 1, 0), v3(1, 1, 0).Norm()} {
		g := newInterface(d, N, 1, 1.5, pol)
		if g.tir {
			t.Fatalf("no TIR at normal incidence")
		}
		if r := g.reflectance(1, 1.5, pol); !approxEqual(r, 0.04, 1e-12) {
			t.Fatalf("R at normal incidence = %v, want 0.04", r)
		}
	}
}

func TestFresnelSPAndBrewster(t *testing.T) {
	n1, n2 := 1.0, 1.5
	theta := math.Atan(n2 / n1)
	d := v3(math.Sin(theta), 0, -math.Cos(theta))
	N := v3(0, 0, 1)
	s := v3(0, 1, 0)
	p := s.Cross(d)

	g := newInterface(d, N, n1, n2, s)
	if !approxEqual(math.Abs(g.s.Dot(s)), 1, 1e-12) {
		t.Fatalf("s axis %+v", g.s)
	}
	if r := g.reflectance(n1, n2, p); r > 1e-12 {
		t.Fatalf("p reflectance at Brewster's angle = %v", r)
	}
	rs, _ := fresnelSP(g.cosi, g.cost, n1, n2)
	if r := g.reflectance(n1, n2, s); !approxEqual(r, rs, 1e-12) || r <= 0.04 {
		t.Fatalf("s reflectance %v (rs=%v)", r, rs)
	}
}

func TestTotalInternalReflection(t *testing.T) {
	// glass to vacuum beyond the critical angle (41.8 deg)
	theta := 60 * math.Pi / 180
	d := v3(math.Sin(theta), 0, math.Cos(theta))
	N := v3(0, 0, 1)
	g := newInterface(d, N, 1.5, 1, v3(0, 1, 0))
	if !g.tir {
		t.Fatalf("expected TIR")
	}
	if r := g.reflectance(1.5, 1, v3(0, 1, 0)); r != 1 {
		t.Fatalf("TIR reflectance %v", r)
	}
	// normal faces the incident side
	if g.n.Dot(d) >= 0 {
		t.Fatalf("interface normal %+v does not face the ray", g.n)
	}
}

func TestRefractSnell(t *testing.T) {
	n1, n2 := 1.0, 1.33
	theta := 35 * math.Pi / 180
	d := v3(math.Sin(theta), 0, -math.Cos(theta))
	N := v3(0, 0, 1)
	g := newInterface(d, N, n1, n2, v3(0, 1, 0))
	out := g.refract3(d)
	if !approxEqual(out.Len(), 1, 1e-12) {
		t.Fatalf("refracted not unit: %v", out.Len())
	}
	sinT := math.Hypot(out.X, out.Y)
	if !approxEqual(n1*math.Sin(theta), n2*sinT, 1e-12) {
		t.Fatalf("Snell violated: %v vs %v", n1*math.Sin(theta), n2*sinT)
	}
	if out.Z >= 0 {
		t.Fatalf("refracted ray turned back: %+v", out)
	}

	pol := v3(math.Cos(theta), 0, math.Sin(theta)) // pure p
	np := g.carryPolarization(d, out, pol)
	if math.Abs(np.Dot(out)) > 1e-12 || !approxEqual(np.Len(), 1, 1e-12) {
		t.Fatalf("carried polarization not transverse unit: %+v", np)
	}
	r := reflect3(d, N)
	if !approxEqual(r.Z, -d.Z, 1e-15) || r.X != d.X {
		t.Fatalf("reflect3: %+v", r)
	}
}
