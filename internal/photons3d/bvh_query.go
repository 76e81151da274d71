package photons3d

import "math"

// Intersection is the nearest boundary along a ray.
// Barycentric coordinates of the hit point are (1-U-V, U, V).
type Intersection struct {
	Distance Real
	Triangle int
	U, V     Real
}

// closer decides whether candidate (d, tri) replaces the current best.
// Equal distances resolve to the lower triangle index (insertion order);
// this is a deterministic convention for shared edges, not physics.
func closer(d Real, tri int, best Intersection, found bool) bool {
	if !found {
		return true
	}
	if d < best.Distance {
		return true
	}
	return d == best.Distance && tri < best.Triangle
}

// NearestIntersection returns the closest triangle hit with
// IntersectEpsilon < distance <= maxDistance, ignoring triangle skip (-1 for none).
func (b *BVH) NearestIntersection(O, D Vector3, maxDistance Real, skip int) (Intersection, bool) {
	if b == nil || len(b.nodes) == 0 {
		return Intersection{}, false
	}
	var best Intersection
	found := false
	bestT := maxDistance
	rr := computeRayRecips(D)
	tris := b.geo.Triangles

	type entry struct {
		n    int32
		tmin Real
	}
	var buf [64]entry
	stack := append(buf[:0], entry{n: 0, tmin: 0})
	if ok, t0 := rayAABB(O, b.nodes[0].box, rr); !ok || t0 > bestT {
		return Intersection{}, false
	}
	for len(stack) > 0 {
		// pop
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e.tmin > bestT {
			continue
		}
		node := &b.nodes[e.n]

		if node.leaf() {
			for _, ti := range b.order[node.start : node.start+node.count] {
				tri := int(ti)
				if tri == skip {
					continue
				}
				d, u, v, ok := tris[tri].intersect(O, D)
				if !ok || d <= IntersectEpsilon || d > bestT {
					continue
				}
				if closer(d, tri, best, found) {
					best = Intersection{Distance: d, Triangle: tri, U: u, V: v}
					found = true
					bestT = d
				}
			}
			continue
		}

		// order children near→far (push far first so near is processed next)
		lOK, lT := rayAABB(O, b.nodes[node.left].box, rr)
		lOK = lOK && lT <= bestT
		rOK, rT := rayAABB(O, b.nodes[node.right].box, rr)
		rOK = rOK && rT <= bestT
		if lOK && rOK {
			if lT < rT {
				stack = append(stack, entry{node.right, rT}, entry{node.left, lT})
			} else {
				stack = append(stack, entry{node.left, lT}, entry{node.right, rT})
			}
		} else if lOK {
			stack = append(stack, entry{node.left, lT})
		} else if rOK {
			stack = append(stack, entry{node.right, rT})
		}
	}
	return best, found
}

// NearestIntersectionBruteForce has the NearestIntersection contract but tests every triangle.
func (g *Geometry) NearestIntersectionBruteForce(O, D Vector3, maxDistance Real, skip int) (Intersection, bool) {
	var best Intersection
	found := false
	for i := range g.Triangles {
		if i == skip {
			continue
		}
		d, u, v, ok := g.Triangles[i].intersect(O, D)
		if !ok || d <= IntersectEpsilon || d > maxDistance {
			continue
		}
		if closer(d, i, best, found) {
			best = Intersection{Distance: d, Triangle: i, U: u, V: v}
			found = true
		}
	}
	return best, found
}

// MaterialAt returns the medium at p as seen along dir: the near-side material
// of the first triangle hit within maxDistance, or the world material when nothing is hit.
func (g *Geometry) MaterialAt(b *BVH, p, dir Vector3, maxDistance Real) int {
	hit, ok := b.NearestIntersection(p, dir, maxDistance, -1)
	if !ok {
		return g.WorldMaterial
	}
	near, _ := g.Triangles[hit.Triangle].NearSide(dir)
	return near
}

// TouchingBoundary finds a triangle other than skip that passes through O and
// that D still crosses from material's side in the same sense as arrival, the
// direction that carried the photon onto O. A photon reflected at an edge or
// corner of a closed mesh sits on the neighbouring faces; NearestIntersection
// drops those as too close, this returns them at distance zero.
// Faces coplanar with skip are ignored. Ties go to the lowest index.
func (b *BVH) TouchingBoundary(O, D, arrival Vector3, material, skip int) (Intersection, bool) {
	if b == nil || len(b.nodes) == 0 || skip < 0 {
		return Intersection{}, false
	}
	tris := b.geo.Triangles
	skipN := tris[skip].Normal
	var best Intersection
	found := false

	var buf [64]int32
	stack := append(buf[:0], 0)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &b.nodes[n]
		if !node.box.containsPoint(O, IntersectEpsilon) {
			continue
		}
		if !node.leaf() {
			stack = append(stack, node.right, node.left)
			continue
		}
		for _, ti := range b.order[node.start : node.start+node.count] {
			tri := int(ti)
			if tri == skip || (found && tri > best.Triangle) {
				continue
			}
			t := &tris[tri]
			if math.Abs(t.Normal.Dot(skipN)) > 1-1e-12 {
				continue
			}
			dn, an := D.Dot(t.Normal), arrival.Dot(t.Normal)
			if math.Abs(dn) < 1e-12 || math.Abs(an) < 1e-12 || (dn > 0) != (an > 0) {
				continue
			}
			if near, _ := t.NearSide(D); near != material {
				continue
			}
			u, v, ok := t.touches(O, D)
			if !ok {
				continue
			}
			best = Intersection{Distance: 0, Triangle: tri, U: u, V: v}
			found = true
		}
	}
	return best, found
}
