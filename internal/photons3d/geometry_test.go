package photons3d

import (
	"errors"
	"math"
	"testing"
)

func TestBuildGeometryMalformed(t *testing.T) {
	tri := Mesh{Vertices: []Vector3{v3(0, 0, 0), v3(1, 0, 0), v3(0, 1, 0)}, Faces: [][3]int{{0, 1, 2}}}
	ok := []MaterialAssignment{{Inside: 1, Outside: 0}}
	opts := GeometryOptions{NumMaterials: 2, NumSurfaces: 1}

	cases := []struct {
		name  string
		mesh  Mesh
		mats  []MaterialAssignment
		surfs []int
		opts  GeometryOptions
	}{
		{"empty", Mesh{}, nil, nil, opts},
		{"missing assignments", tri, nil, nil, opts},
		{"surface count", tri, ok, []int{0, 0}, opts},
		{"index out of range", Mesh{Vertices: tri.Vertices, Faces: [][3]int{{0, 1, 3}}}, ok, nil, opts},
		{"negative index", Mesh{Vertices: tri.Vertices, Faces: [][3]int{{-1, 1, 2}}}, ok, nil, opts},
		{"unknown inside", tri, []MaterialAssignment{{Inside: 2, Outside: 0}}, nil, opts},
		{"unknown outside", tri, []MaterialAssignment{{Inside: 0, Outside: -1}}, nil, opts},
		{"unknown surface", tri, ok, []int{1}, opts},
		{"degenerate", Mesh{Vertices: []Vector3{v3(0, 0, 0), v3(1, 0, 0), v3(2, 0, 0)}, Faces: [][3]int{{0, 1, 2}}}, ok, nil, opts},
		{"repeated vertex", Mesh{Vertices: tri.Vertices, Faces: [][3]int{{0, 0, 2}}}, ok, nil, opts},
		{"nan vertex", Mesh{Vertices: []Vector3{v3(0, 0, math.NaN()), v3(1, 0, 0), v3(0, 1, 0)}, Faces: [][3]int{{0, 1, 2}}}, ok, nil, opts},
		{"world out of range", tri, ok, nil, GeometryOptions{NumMaterials: 2, WorldMaterial: 2}},
		{"no materials", tri, ok, nil, GeometryOptions{}},
	}
	for _, c := range cases {
		_, err := BuildGeometry(c.mesh, c.mats, c.surfs, c.opts)
		if !errors.Is(err, ErrMalformedGeometry) {
			t.Fatalf("%s: expected ErrMalformedGeometry, got %v", c.name, err)
		}
	}

	g, err := BuildGeometry(tri, ok, []int{NoSurface}, opts)
	if err != nil {
		t.Fatalf("valid triangle rejected: %v", err)
	}
	if g.NumTriangles() != 1 || g.Triangles[0].Surface != NoSurface {
		t.Fatalf("unexpected geometry: %+v", g)
	}
	if n := g.Triangles[0].Normal; n != v3(0, 0, 1) {
		t.Fatalf("normal should follow (V1-V0)x(V2-V0): %+v", n)
	}
}

func TestNearSide(t *testing.T) {
	tri := newTriangle(v3(0, 0, 0), v3(1, 0, 0), v3(0, 1, 0), 1, 2, NoSurface)
	// travelling against the normal means arriving from outside
	if near, far := tri.NearSide(v3(0, 0, -1)); near != 2 || far != 1 {
		t.Fatalf("against normal: near=%d far=%d", near, far)
	}
	if near, far := tri.NearSide(v3(0, 0, 1)); near != 1 || far != 2 {
		t.Fatalf("along normal: near=%d far=%d", near, far)
	}
}

func TestTriangleIntersect(t *testing.T) {
	tri := newTriangle(v3(0, 0, 0), v3(1, 0, 0), v3(0, 1, 0), 0, 0, NoSurface)
	d, u, v, ok := tri.intersect(v3(0.25, 0.25, 2), v3(0, 0, -1))
	if !ok || !almostEq(d, 2) || !almostEq(u, 0.25) || !almostEq(v, 0.25) {
		t.Fatalf("front hit: %v %v %v %v", d, u, v, ok)
	}
	// double sided
	if d, _, _, ok := tri.intersect(v3(0.25, 0.25, -3), v3(0, 0, 1)); !ok || !almostEq(d, 3) {
		t.Fatalf("back hit: %v %v", d, ok)
	}
	if _, _, _, ok := tri.intersect(v3(0.8, 0.8, 1), v3(0, 0, -1)); ok {
		t.Fatalf("outside the triangle should miss")
	}
	if _, _, _, ok := tri.intersect(v3(0, 0, 1), v3(1, 0, 0)); ok {
		t.Fatalf("parallel ray should miss")
	}
}

func TestBoxMeshNormalsPointOutward(t *testing.T) {
	m := BoxMesh(v3(-1, -2, -3), v3(1, 2, 3))
	gb := NewGeometryBuilder()
	gb.AddSolid(m, 1, 0, NoSurface)
	g, err := gb.Build(GeometryOptions{NumMaterials: 2})
	if err != nil {
		t.Fatal(err)
	}
	if g.NumTriangles() != 12 {
		t.Fatalf("box should have 12 triangles, got %d", g.NumTriangles())
	}
	for i := range g.Triangles {
		tr := &g.Triangles[i]
		if c := tr.Centroid(); c.Dot(tr.Normal) <= 0 {
			t.Fatalf("triangle %d normal %+v points inward", i, tr.Normal)
		}
	}
	if g.Bounds.Min.X > -1 || g.Bounds.Max.Z < 3 {
		t.Fatalf("bounds: %+v", g.Bounds)
	}
	total := 0.0
	for i := range g.Triangles {
		total += g.Triangles[i].Area()
	}
	if !approxEqual(total, 2*(2*4+4*6+6*2), 1e-9) {
		t.Fatalf("surface area %v", total)
	}
}

func TestQuadAndDiscMesh(t *testing.T) {
	q := QuadMesh(v3(0, 0, 0), v3(2, 0, 0), v3(0, 3, 0))
	tq := newTriangle(q.Vertices[q.Faces[0][0]], q.Vertices[q.Faces[0][1]], q.Vertices[q.Faces[0][2]], 0, 0, NoSurface)
	if tq.Normal != v3(0, 0, 1) {
		t.Fatalf("quad normal %+v", tq.Normal)
	}

	d, err := DiscMesh(v3(1, 1, 1), v3(0, 2, 0), 5, 16)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Faces) != 16 || len(d.Vertices) != 17 {
		t.Fatalf("disc: %d faces %d vertices", len(d.Faces), len(d.Vertices))
	}
	for _, f := range d.Faces {
		tr := newTriangle(d.Vertices[f[0]], d.Vertices[f[1]], d.Vertices[f[2]], 0, 0, NoSurface)
		if !approxEqual(tr.Normal.Dot(v3(0, 1, 0)), 1, 1e-9) {
			t.Fatalf("disc face normal %+v", tr.Normal)
		}
	}
	if _, err := DiscMesh(v3(0, 0, 0), v3(0, 0, 1), 1, 2); err == nil {
		t.Fatalf("two segments should fail")
	}
	if _, err := DiscMesh(v3(0, 0, 0), Vector3{}, 1, 8); err == nil {
		t.Fatalf("zero normal should fail")
	}
}

func TestGeometryBuilderOffsetsFaces(t *testing.T) {
	gb := NewGeometryBuilder()
	a := gb.AddSolid(QuadMesh(v3(0, 0, 0), v3(1, 0, 0), v3(0, 1, 0)), 0, 1, NoSurface)
	b := gb.AddSolid(QuadMesh(v3(0, 0, 5), v3(1, 0, 0), v3(0, 1, 0)), 1, 0, 0)
	if a != 0 || b != 1 {
		t.Fatalf("solid ids %d %d", a, b)
	}
	g, err := gb.Build(GeometryOptions{NumMaterials: 2, NumSurfaces: 1})
	if err != nil {
		t.Fatal(err)
	}
	if g.NumTriangles() != 4 {
		t.Fatalf("triangles %d", g.NumTriangles())
	}
	if g.Triangles[2].V0.Z != 5 || g.Triangles[2].Surface != 0 || g.Triangles[0].Surface != NoSurface {
		t.Fatalf("second solid not offset: %+v", g.Triangles[2])
	}
}
