package photons3d

import (
	"fmt"
	"math"
)

// GeometryBuilder collects solids (meshes with one material pair and surface each)
// and hands the flattened result to BuildGeometry.
type GeometryBuilder struct {
	mesh      Mesh
	materials []MaterialAssignment
	surfaces  []int
	solids    int
}

func NewGeometryBuilder() *GeometryBuilder { return &GeometryBuilder{} }

// AddSolid appends m; every face gets the same inside/outside materials and surface.
// It returns the solid index.
func (b *GeometryBuilder) AddSolid(m Mesh, inside, outside, surface int) int {
	off := len(b.mesh.Vertices)
	b.mesh.Vertices = append(b.mesh.Vertices, m.Vertices...)
	for _, f := range m.Faces {
		b.mesh.Faces = append(b.mesh.Faces, [3]int{f[0] + off, f[1] + off, f[2] + off})
		b.materials = append(b.materials, MaterialAssignment{Inside: inside, Outside: outside})
		b.surfaces = append(b.surfaces, surface)
	}
	b.solids++
	return b.solids - 1
}

// Build validates everything added so far.
func (b *GeometryBuilder) Build(opts GeometryOptions) (*Geometry, error) {
	return BuildGeometry(b.mesh, b.materials, b.surfaces, opts)
}

// BoxMesh returns the 12 triangles of an axis-aligned box with outward normals.
func BoxMesh(min, max Vector3) Mesh {
	c := make([]Vector3, 8)
	for i := range c {
		p := min
		if i&1 != 0 {
			p.X = max.X
		}
		if i&2 != 0 {
			p.Y = max.Y
		}
		if i&4 != 0 {
			p.Z = max.Z
		}
		c[i] = p
	}
	return Mesh{
		Vertices: c,
		Faces: [][3]int{
			{0, 2, 3}, {0, 3, 1}, // -Z
			{4, 5, 7}, {4, 7, 6}, // +Z
			{0, 1, 5}, {0, 5, 4}, // -Y
			{2, 7, 3}, {2, 6, 7}, // +Y
			{0, 4, 6}, {0, 6, 2}, // -X
			{1, 3, 7}, {1, 7, 5}, // +X
		},
	}
}

// QuadMesh returns the parallelogram corner, corner+u, corner+u+v, corner+v.
// Its normal is u x v.
func QuadMesh(corner, u, v Vector3) Mesh {
	return Mesh{
		Vertices: []Vector3{corner, corner.Add(u), corner.Add(u).Add(v), corner.Add(v)},
		Faces:    [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
}

// DiscMesh returns a triangle fan approximating a disc whose normal is n.
func DiscMesh(center, n Vector3, radius Real, segments int) (Mesh, error) {
	if segments < 3 {
		return Mesh{}, fmt.Errorf("disc needs at least 3 segments, got %d", segments)
	}
	if radius <= 0 {
		return Mesh{}, fmt.Errorf("disc radius must be > 0, got %g", radius)
	}
	nn, ok := unit(n)
	if !ok {
		return Mesh{}, fmt.Errorf("disc normal must be non-zero")
	}
	a, b := orthonormalBasis(nn)
	m := Mesh{Vertices: make([]Vector3, 0, segments+1), Faces: make([][3]int, 0, segments)}
	m.Vertices = append(m.Vertices, center)
	for i := 0; i < segments; i++ {
		phi := 2 * math.Pi * Real(i) / Real(segments)
		m.Vertices = append(m.Vertices, center.Add(a.Mul(radius*math.Cos(phi))).Add(b.Mul(radius*math.Sin(phi))))
	}
	for i := 0; i < segments; i++ {
		m.Faces = append(m.Faces, [3]int{0, 1 + i, 1 + (i+1)%segments})
	}
	return m, nil
}
