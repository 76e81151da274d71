package photons3d

import (
	"math"
	"testing"
)

func TestVectorBasics(t *testing.T) {
	a, b := v3(1, 2, 3), v3(-2, 0.5, 4)
	if got := a.Add(b); got != v3(-1, 2.5, 7) {
		t.Fatalf("Add: %+v", got)
	}
	if got := a.Sub(b); got != v3(3, 1.5, -1) {
		t.Fatalf("Sub: %+v", got)
	}
	if got := a.Mul(2); got != v3(2, 4, 6) {
		t.Fatalf("Mul: %+v", got)
	}
	if got := a.Dot(b); !almostEq(got, -2+1+12) {
		t.Fatalf("Dot: %v", got)
	}
	c := a.Cross(b)
	if !almostEq(c.Dot(a), 0) || !almostEq(c.Dot(b), 0) {
		t.Fatalf("Cross not orthogonal: %+v", c)
	}
	if got := v3(1, 0, 0).Cross(v3(0, 1, 0)); got != v3(0, 0, 1) {
		t.Fatalf("x cross y = %+v", got)
	}
	if !almostEq(v3(3, 4, 12).Len(), 13) {
		t.Fatalf("Len")
	}
	for i, want := range []Real{1, 2, 3} {
		if a.Axis(i) != want {
			t.Fatalf("Axis(%d) = %v", i, a.Axis(i))
		}
	}
}

func TestNormAndUnit(t *testing.T) {
	n := v3(0, 3, 4).Norm()
	if !almostEq(n.Len(), 1) || !almostEq(n.Y, 0.6) {
		t.Fatalf("Norm: %+v", n)
	}
	if z := (Vector3{}).Norm(); z != (Vector3{}) {
		t.Fatalf("zero Norm changed: %+v", z)
	}
	if _, ok := unit(Vector3{}); ok {
		t.Fatalf("unit(0) should fail")
	}
	if _, ok := unit(v3(math.NaN(), 0, 1)); ok {
		t.Fatalf("unit(NaN) should fail")
	}
	if _, ok := unit(v3(math.Inf(1), 0, 0)); ok {
		t.Fatalf("unit(Inf) should fail")
	}
	if u, ok := unit(v3(0, 0, -2)); !ok || u != v3(0, 0, -1) {
		t.Fatalf("unit: %+v %v", u, ok)
	}
}

func TestOrthonormalBasis(t *testing.T) {
	for _, n := range []Vector3{v3(0, 0, 1), v3(1, 0, 0), v3(0, -1, 0), v3(1, 1, 1).Norm(), v3(-0.05, 0.3, -0.9).Norm()} {
		tt, b := orthonormalBasis(n)
		if !almostEq(tt.Len(), 1) || !almostEq(b.Len(), 1) {
			t.Fatalf("basis not unit for %+v: %+v %+v", n, tt, b)
		}
		if !almostEq(tt.Dot(n), 0) || !almostEq(b.Dot(n), 0) || !almostEq(tt.Dot(b), 0) {
			t.Fatalf("basis not orthogonal for %+v", n)
		}
		// right-handed: t x b = n
		if c := tt.Cross(b); !almostEq(c.Dot(n), 1) {
			t.Fatalf("basis not right-handed for %+v", n)
		}
	}
}

func TestAABBRay(t *testing.T) {
	box := AABB{Min: v3(-1, -1, -1), Max: v3(1, 1, 1)}
	D := v3(1, 0, 0)
	ok, tmin := rayAABB(v3(-5, 0, 0), box, computeRayRecips(D))
	if !ok || !almostEq(tmin, 4) {
		t.Fatalf("expected hit at 4, got %v %v", ok, tmin)
	}
	// inside: entry clamps to 0
	ok, tmin = rayAABB(v3(0, 0, 0), box, computeRayRecips(D))
	if !ok || tmin != 0 {
		t.Fatalf("inside ray: %v %v", ok, tmin)
	}
	// parallel and outside the slab
	if ok, _ := rayAABB(v3(-5, 2, 0), box, computeRayRecips(D)); ok {
		t.Fatalf("parallel miss reported as hit")
	}
	// pointing away
	if ok, _ := rayAABB(v3(5, 0, 0), box, computeRayRecips(D)); ok {
		t.Fatalf("ray pointing away reported as hit")
	}
	u := box.Union(AABB{Min: v3(0, 0, 0), Max: v3(3, 0.5, 0.5)})
	if u.Max.X != 3 || u.Min.X != -1 {
		t.Fatalf("Union: %+v", u)
	}
	if !almostEq(box.SurfaceArea(), 24) {
		t.Fatalf("SurfaceArea: %v", box.SurfaceArea())
	}
	if !u.Contains(box) || box.Contains(u) {
		t.Fatalf("Contains")
	}
}
