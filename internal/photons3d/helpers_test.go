package photons3d

import (
	"math"
	"testing"
)

func almostEq(a, b Real) bool { return math.Abs(a-b) < 1e-9 }

func approxEqual(a, b Real, tol Real) bool {
	if a > b {
		return a-b <= tol
	}
	return b-a <= tol
}

func vacuum(name string) MaterialTable {
	return MaterialTable{
		Name:             name,
		RefractiveIndex:  ConstantCurve(1),
		AbsorptionLength: ConstantCurve(math.Inf(1)),
		ScatteringLength: ConstantCurve(math.Inf(1)),
	}
}

func medium(name string, n, abs, scat Real) MaterialTable {
	return MaterialTable{
		Name:             name,
		RefractiveIndex:  ConstantCurve(n),
		AbsorptionLength: ConstantCurve(abs),
		ScatteringLength: ConstantCurve(scat),
	}
}

func surface(name string, spec, diff, detect Real, channel int) SurfaceTable {
	return SurfaceTable{
		Name:             name,
		Specular:         ConstantCurve(spec),
		Diffuse:          ConstantCurve(diff),
		DetectEfficiency: ConstantCurve(detect),
		Channel:          channel,
	}
}

// mustTransport builds geometry, BVH, tables and transport or fails the test.
func mustTransport(t *testing.T, gb *GeometryBuilder, world int, mats []MaterialTable, surfs []SurfaceTable, policy RangePolicy, opts ...TransportOption) *Transport {
	t.Helper()
	props, err := LoadProperties(mats, surfs, policy)
	if err != nil {
		t.Fatalf("LoadProperties: %v", err)
	}
	geo, err := gb.Build(GeometryOptions{NumMaterials: len(mats), NumSurfaces: len(surfs), WorldMaterial: world})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tr, err := NewTransport(geo, BuildBVH(geo), props, opts...)
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	return tr
}

// mirrorCavity is a vacuum-filled box of half-width h with perfectly specular walls.
func mirrorCavity(t *testing.T, h Real) *Transport {
	gb := NewGeometryBuilder()
	gb.AddSolid(BoxMesh(v3(-h, -h, -h), v3(h, h, h)), 0, 0, 0)
	return mustTransport(t, gb, 0, []MaterialTable{vacuum("vacuum")}, []SurfaceTable{surface("mirror", 1, 0, 0, -1)}, RangeFail)
}

// detectorBox is a box of half-width h filled with material inside whose walls
// detect everything on channel.
func detectorBox(t *testing.T, h Real, inside MaterialTable, channel int, opts ...TransportOption) *Transport {
	gb := NewGeometryBuilder()
	gb.AddSolid(BoxMesh(v3(-h, -h, -h), v3(h, h, h)), 1, 0, 0)
	return mustTransport(t, gb, 0, []MaterialTable{vacuum("world"), inside}, []SurfaceTable{surface("pmt", 0, 0, 1, channel)}, RangeFail, opts...)
}

// glassSlab puts a glass block of index n occupying 0 < z < depth in vacuum.
func glassSlab(t *testing.T, n, depth Real) *Transport {
	gb := NewGeometryBuilder()
	gb.AddSolid(BoxMesh(v3(-1e3, -1e3, 0), v3(1e3, 1e3, depth)), 1, 0, NoSurface)
	return mustTransport(t, gb, 0, []MaterialTable{vacuum("vacuum"), medium("glass", n, math.Inf(1), math.Inf(1))}, nil, RangeFail)
}

// mixedScene has a scattering, absorbing water box with a detecting patch on +Z
// and absorbing walls elsewhere, sitting in vacuum, so every terminal state occurs.
func mixedScene(t *testing.T) *Transport {
	gb := NewGeometryBuilder()
	gb.AddSolid(BoxMesh(v3(-50, -50, -50), v3(50, 50, 50)), 1, 0, NoSurface)
	gb.AddSolid(QuadMesh(v3(-20, -20, 40), v3(40, 0, 0), v3(0, 40, 0)), 1, 1, 0)
	gb.AddSolid(QuadMesh(v3(-20, -20, -40), v3(0, 40, 0), v3(40, 0, 0)), 1, 1, 1)
	mats := []MaterialTable{vacuum("vacuum"), medium("water", 1.33, 80, 60)}
	surfs := []SurfaceTable{surface("pmt", 0.1, 0.1, 0.5, 3), surface("black", 0, 0.2, 0, -1)}
	return mustTransport(t, gb, 0, mats, surfs, RangeFail)
}

// isotropic returns n photons from p in directions drawn from a fixed stream.
func isotropic(p Vector3, n int, seed uint64) []PhotonSource {
	rng := NewStreamManager(seed).Stream(0)
	out := make([]PhotonSource, n)
	for i := range out {
		out[i] = PhotonSource{Position: p, Direction: sampleUnitSphere(rng), Wavelength: DefaultWavelength}
	}
	return out
}

// testLane returns a lane for stepping photons by hand.
func testLane(tr *Transport, maxSteps int) *lane {
	return &lane{t: tr, hits: NewHitAggregator(), tally: &Tally{}, maxSteps: maxSteps, maxDist: MaxDistance}
}

// launchOne launches source src as photon index under seed.
func launchOne(tr *Transport, src PhotonSource, index int, seed uint64) (*Photon, *Tally) {
	b := &batch{t: tr, cfg: RunConfig{}.withDefaults(), streams: NewStreamManager(seed)}
	p := &Photon{}
	tally := &Tally{}
	b.launch(p, index, &src, b.streams.Stream(index), tally)
	return p, tally
}
