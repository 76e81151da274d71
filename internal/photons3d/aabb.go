package photons3d

import "math"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vector3
}

func emptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: v3(inf, inf, inf), Max: v3(-inf, -inf, -inf)}
}

func (b AABB) Union(o AABB) AABB { return AABB{Min: vmin(b.Min, o.Min), Max: vmax(b.Max, o.Max)} }

func (b AABB) Extend(p Vector3) AABB { return AABB{Min: vmin(b.Min, p), Max: vmax(b.Max, p)} }

func (b AABB) Centroid() Vector3 { return b.Min.Add(b.Max).Mul(0.5) }

// SurfaceArea is zero for an empty box.
func (b AABB) SurfaceArea() Real {
	d := b.Max.Sub(b.Min)
	if d.X < 0 || d.Y < 0 || d.Z < 0 {
		return 0
	}
	return 2 * (d.X*d.Y + d.Y*d.Z + d.Z*d.X)
}

// Contains reports whether o lies inside b.
func (b AABB) Contains(o AABB) bool {
	return o.Min.X >= b.Min.X && o.Min.Y >= b.Min.Y && o.Min.Z >= b.Min.Z &&
		o.Max.X <= b.Max.X && o.Max.Y <= b.Max.Y && o.Max.Z <= b.Max.Z
}

// containsPoint reports whether p lies in b grown by tol on every side.
func (b AABB) containsPoint(p Vector3, tol Real) bool {
	return p.X >= b.Min.X-tol && p.Y >= b.Min.Y-tol && p.Z >= b.Min.Z-tol &&
		p.X <= b.Max.X+tol && p.Y <= b.Max.Y+tol && p.Z <= b.Max.Z+tol
}

type rayRecips struct {
	invX, invY, invZ Real
	parX, parY, parZ bool // parallel flags (|D| < eps)
}

func computeRayRecips(d Vector3) rayRecips {
	rr := rayRecips{}
	if x := d.X; x > epsParallel || x < -epsParallel {
		rr.invX = 1 / x
	} else {
		rr.parX = true
	}
	if y := d.Y; y > epsParallel || y < -epsParallel {
		rr.invY = 1 / y
	} else {
		rr.parY = true
	}
	if z := d.Z; z > epsParallel || z < -epsParallel {
		rr.invZ = 1 / z
	} else {
		rr.parZ = true
	}
	return rr
}

func slab(o, lo, hi, inv Real, par bool, tmin, tmax *Real) bool {
	if par {
		return o >= lo && o <= hi
	}
	t1 := (lo - o) * inv
	t2 := (hi - o) * inv
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	if t1 > *tmin {
		*tmin = t1
	}
	if t2 < *tmax {
		*tmax = t2
	}
	return true
}

// rayAABB returns whether the ray O+tD meets the box and the entry distance
// (clamped at 0 when the origin is inside).
func rayAABB(O Vector3, b AABB, rr rayRecips) (bool, Real) {
	tmin, tmax := -1e300, 1e300
	if !slab(O.X, b.Min.X, b.Max.X, rr.invX, rr.parX, &tmin, &tmax) {
		return false, 0
	}
	if !slab(O.Y, b.Min.Y, b.Max.Y, rr.invY, rr.parY, &tmin, &tmax) {
		return false, 0
	}
	if !slab(O.Z, b.Min.Z, b.Max.Z, rr.invZ, rr.parZ, &tmin, &tmax) {
		return false, 0
	}
	if tmax < 0 || tmin > tmax {
		return false, 0
	}
	if tmin < 0 {
		tmin = 0
	}
	return true, tmin
}
