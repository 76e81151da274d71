package photons3d

import "math"

// NoSurface marks a triangle without an optical surface override.
const NoSurface = -1

// Triangle is one face of the detector mesh. Outside is the side the normal points to.
type Triangle struct {
	V0, V1, V2 Vector3
	Normal     Vector3 // unit, (V1-V0)x(V2-V0)
	Inside     int     // material id behind the normal
	Outside    int     // material id in front of the normal
	Surface    int     // surface id or NoSurface

	// cached
	edge1, edge2 Vector3
	detEps       Real
	bbox         AABB
}

func newTriangle(v0, v1, v2 Vector3, inside, outside, surface int) Triangle {
	t := Triangle{V0: v0, V1: v1, V2: v2, Inside: inside, Outside: outside, Surface: surface}
	t.edge1 = v1.Sub(v0)
	t.edge2 = v2.Sub(v0)
	t.Normal = t.edge1.Cross(t.edge2).Norm()
	t.detEps = 1e-12 * t.edge1.Len() * t.edge2.Len()

	// pad so flat boxes survive the slab test at edges
	b := emptyAABB().Extend(v0).Extend(v1).Extend(v2)
	pad := 1e-9 * (1 + math.Max(b.Max.Sub(b.Min).Len(), math.Max(b.Min.Len(), b.Max.Len())))
	t.bbox = AABB{Min: b.Min.Sub(v3(pad, pad, pad)), Max: b.Max.Add(v3(pad, pad, pad))}
	return t
}

// Area returns the triangle area.
func (t *Triangle) Area() Real { return 0.5 * t.edge1.Cross(t.edge2).Len() }

// BoundingBox returns the (slightly padded) bounding box.
func (t *Triangle) BoundingBox() AABB { return t.bbox }

// Centroid returns the mean of the three vertices.
func (t *Triangle) Centroid() Vector3 { return t.V0.Add(t.V1).Add(t.V2).Mul(1.0 / 3) }

// NearSide returns the material on the side the ray arrives from and the one across.
func (t *Triangle) NearSide(dir Vector3) (near, far int) {
	if dir.Dot(t.Normal) < 0 {
		return t.Outside, t.Inside
	}
	return t.Inside, t.Outside
}

// baryTol widens the barycentric test so a ray through a shared edge hits both
// neighbours instead of slipping between them.
const baryTol = 1e-12

// intersect tests the ray O+sD using the Möller-Trumbore algorithm.
// Both faces are hit; u and v are the barycentric weights of V1 and V2.
func (t *Triangle) intersect(O, D Vector3) (dist, u, v Real, ok bool) {
	h := D.Cross(t.edge2)
	a := t.edge1.Dot(h)

	// Ray lies in the plane of the triangle.
	if a > -t.detEps && a < t.detEps {
		return 0, 0, 0, false
	}

	f := 1.0 / a
	s := O.Sub(t.V0)
	u = f * s.Dot(h)
	if u < -baryTol || u > 1+baryTol {
		return 0, 0, 0, false
	}

	q := s.Cross(t.edge1)
	v = f * D.Dot(q)
	if v < -baryTol || u+v > 1+baryTol {
		return 0, 0, 0, false
	}

	dist = f * t.edge2.Dot(q)
	return dist, u, v, true
}

// touches reports whether O lies on the triangle within IntersectEpsilon along D,
// with a small tolerance on the barycentric weights so points on an edge count.
func (t *Triangle) touches(O, D Vector3) (u, v Real, ok bool) {
	const tol = 1e-9
	h := D.Cross(t.edge2)
	a := t.edge1.Dot(h)
	if a > -t.detEps && a < t.detEps {
		return 0, 0, false
	}
	f := 1.0 / a
	s := O.Sub(t.V0)
	u = f * s.Dot(h)
	q := s.Cross(t.edge1)
	v = f * D.Dot(q)
	if u < -tol || v < -tol || u+v > 1+tol {
		return 0, 0, false
	}
	if d := f * t.edge2.Dot(q); math.Abs(d) > IntersectEpsilon {
		return 0, 0, false
	}
	return u, v, true
}
