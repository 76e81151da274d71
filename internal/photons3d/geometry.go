package photons3d

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vector3
	Faces    [][3]int
}

// MaterialAssignment names the materials on both sides of one face.
type MaterialAssignment struct {
	Inside, Outside int
}

// GeometryOptions bounds the ids a geometry may reference.
type GeometryOptions struct {
	NumMaterials  int
	NumSurfaces   int
	WorldMaterial int // medium assumed where no triangle bounds a point
}

// Geometry is the immutable triangle store shared by every transport lane.
type Geometry struct {
	Triangles     []Triangle
	NumMaterials  int
	NumSurfaces   int
	WorldMaterial int
	Bounds        AABB
}

// BuildGeometry validates the mesh and its assignments and freezes them into a Geometry.
// surfaces may be nil, meaning no face has a surface override.
func BuildGeometry(mesh Mesh, materials []MaterialAssignment, surfaces []int, opts GeometryOptions) (*Geometry, error) {
	if len(mesh.Faces) == 0 {
		return nil, malformed(-1, "mesh has no triangles")
	}
	if len(materials) != len(mesh.Faces) {
		return nil, malformed(-1, "%d material assignments for %d triangles", len(materials), len(mesh.Faces))
	}
	if surfaces != nil && len(surfaces) != len(mesh.Faces) {
		return nil, malformed(-1, "%d surface assignments for %d triangles", len(surfaces), len(mesh.Faces))
	}
	if opts.NumMaterials <= 0 {
		return nil, malformed(-1, "no materials")
	}
	if opts.WorldMaterial < 0 || opts.WorldMaterial >= opts.NumMaterials {
		return nil, malformed(-1, "world material %d out of range [0,%d)", opts.WorldMaterial, opts.NumMaterials)
	}
	for i, v := range mesh.Vertices {
		if !v.isFinite() {
			return nil, malformed(-1, "vertex %d is not finite: %+v", i, v)
		}
	}

	g := &Geometry{
		Triangles:     make([]Triangle, len(mesh.Faces)),
		NumMaterials:  opts.NumMaterials,
		NumSurfaces:   opts.NumSurfaces,
		WorldMaterial: opts.WorldMaterial,
		Bounds:        emptyAABB(),
	}
	nv := len(mesh.Vertices)
	for i, f := range mesh.Faces {
		for _, vi := range f {
			if vi < 0 || vi >= nv {
				return nil, malformed(i, "vertex index %d out of range [0,%d)", vi, nv)
			}
		}
		m := materials[i]
		if m.Inside < 0 || m.Inside >= opts.NumMaterials {
			return nil, malformed(i, "inside material %d does not exist", m.Inside)
		}
		if m.Outside < 0 || m.Outside >= opts.NumMaterials {
			return nil, malformed(i, "outside material %d does not exist", m.Outside)
		}
		surface := NoSurface
		if surfaces != nil {
			surface = surfaces[i]
		}
		if surface != NoSurface && (surface < 0 || surface >= opts.NumSurfaces) {
			return nil, malformed(i, "surface %d does not exist", surface)
		}
		t := newTriangle(mesh.Vertices[f[0]], mesh.Vertices[f[1]], mesh.Vertices[f[2]], m.Inside, m.Outside, surface)
		if a := t.Area(); !(a > DegenerateArea) {
			return nil, malformed(i, "degenerate triangle, area=%g", a)
		}
		g.Triangles[i] = t
		g.Bounds = g.Bounds.Union(t.bbox)
	}
	DebugLog("Built geometry: %d triangles, %d materials, %d surfaces, bounds=%+v", len(g.Triangles), g.NumMaterials, g.NumSurfaces, g.Bounds)
	return g, nil
}

// NumTriangles returns the number of faces.
func (g *Geometry) NumTriangles() int { return len(g.Triangles) }
