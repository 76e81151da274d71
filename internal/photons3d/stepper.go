package photons3d

import (
	"math"
)

// lane is one worker's view of a batch: shared read-only transport data plus
// its private tally.
type lane struct {
	t        *Transport
	hits     *HitAggregator
	tally    *Tally
	maxSteps int
	maxDist  Real
}

// advance moves p by d along its direction through a medium of index n.
func advance(p *Photon, d, n Real) {
	if d > IntersectEpsilon {
		p.Arrival = p.Dir
	}
	p.Pos = p.Pos.Add(p.Dir.Mul(d))
	p.Time += d * n / SpeedOfLight
	p.Distance += d
}

func (l *lane) finish(p *Photon, s State, c Category) {
	p.State = s
	l.tally.record(s)
	if Debug {
		logProcess(c, p)
	}
}

// degenerate kills a photon whose direction or polarization collapsed.
func (l *lane) degenerate(p *Photon, err error) {
	l.tally.Degenerate++
	DebugLog("photon %d killed at step %d: %v", p.ID, p.Steps, err)
	l.finish(p, KilledStepLimit, Degenerate)
}

// step advances one alive photon by exactly one transport step. Errors are
// reserved for property lookups; numerical trouble kills the photon instead.
func (l *lane) step(p *Photon) error {
	if p.State != Alive {
		return nil
	}
	if p.Steps >= l.maxSteps {
		l.finish(p, KilledStepLimit, StepLimit)
		return nil
	}
	p.Steps++
	l.tally.Steps++

	mat, err := l.t.props.MaterialProperties(p.Material, p.Wavelength)
	if err != nil {
		return err
	}

	hit, okHit := l.t.bvh.TouchingBoundary(p.Pos, p.Dir, p.Arrival, p.Material, p.LastTriangle)
	if !okHit {
		hit, okHit = l.t.bvh.NearestIntersection(p.Pos, p.Dir, l.maxDist, p.LastTriangle)
	}

	// Both samples are always drawn so the stream advances identically.
	dAbs := sampleFreePath(mat.AbsLength, p.rng)
	dRay := sampleFreePath(mat.ScatLength, p.rng)
	dInt := math.Min(dAbs, dRay)

	if !okHit && dInt >= l.maxDist {
		l.finish(p, Escaped, Escape)
		return nil
	}

	// Bulk interaction before the boundary.
	if !okHit || dInt < hit.Distance {
		advance(p, dInt, mat.N)
		if dAbs < dRay {
			l.tally.BulkAbsorbed++
			l.finish(p, Absorbed, BulkAbsorb)
			return nil
		}
		nd, np := scatterRayleigh(p.Dir, p.Pol, p.rng)
		if err := p.setDirection(nd, np); err != nil {
			l.degenerate(p, err)
			return nil
		}
		p.LastTriangle = -1
		l.tally.Scatters++
		if Debug {
			logProcess(Scatter, p)
		}
		return nil
	}

	advance(p, hit.Distance, mat.N)
	tri := &l.t.geo.Triangles[hit.Triangle]
	p.LastTriangle = hit.Triangle

	if near, _ := tri.NearSide(p.Dir); tri.Surface == NoSurface && near != p.Material {
		l.tally.MediumMismatches++
		DebugLogOnce("photon %d in material %d met triangle %d whose near side is %d", p.ID, p.Material, hit.Triangle, near)
	}

	b, err := l.t.resolveBoundary(p, tri, mat)
	if err != nil {
		return err
	}
	switch b := b.(type) {
	case dielectricBoundary:
		l.crossDielectric(p, tri, b)
	case surfaceBoundary:
		l.hitSurface(p, tri, b)
	}
	return nil
}

// crossDielectric reflects or refracts p with the polarized Fresnel probability.
func (l *lane) crossDielectric(p *Photon, tri *Triangle, b dielectricBoundary) {
	in := p.Dir
	g := newInterface(in, tri.Normal, b.n1, b.n2, p.Pol)
	r := g.reflectance(b.n1, b.n2, p.Pol)
	u := p.rng.Float64()

	if g.tir || u < r {
		out := reflect3(in, g.n)
		if err := p.setDirection(out, g.carryPolarization(in, out, p.Pol)); err != nil {
			l.degenerate(p, err)
			return
		}
		p.Material = b.near
		if g.tir {
			l.tally.TIRs++
			if Debug {
				logProcess(TIR, p)
			}
			return
		}
		l.tally.Reflections++
		if Debug {
			logProcess(Reflect, p)
		}
		return
	}

	out := g.refract3(in)
	if err := p.setDirection(out, g.carryPolarization(in, out, p.Pol)); err != nil {
		l.degenerate(p, err)
		return
	}
	p.Material = b.far
	l.tally.Refractions++
	if Debug {
		logProcess(Refract, p)
	}
}

// hitSurface applies a surface model: detection first, then specular,
// diffuse or absorption in proportion to the surface's reflectivities.
func (l *lane) hitSurface(p *Photon, tri *Triangle, b surfaceBoundary) {
	s := b.props
	near, _ := tri.NearSide(p.Dir)
	p.Material = near

	if u := p.rng.Float64(); u < s.DetectEff {
		l.detect(p, s.Channel)
		return
	}

	v := p.rng.Float64()
	switch {
	case v < s.Specular:
		// Householder reflection keeps pol orthogonal to the new direction.
		if err := p.setDirection(reflect3(p.Dir, tri.Normal), reflect3(p.Pol, tri.Normal)); err != nil {
			l.degenerate(p, err)
			return
		}
		l.tally.Speculars++
		if Debug {
			logProcess(Specular, p)
		}
	case v < s.Specular+s.Diffuse:
		n := tri.Normal
		if p.Dir.Dot(n) > 0 {
			n = n.Mul(-1)
		}
		d := sampleCosineHemisphere(n, p.rng)
		if err := p.setDirection(d, randomPerpendicular(d, p.rng)); err != nil {
			l.degenerate(p, err)
			return
		}
		l.tally.Diffuses++
		if Debug {
			logProcess(Diffuse, p)
		}
	default:
		l.tally.SurfaceAbsorbed++
		l.finish(p, Absorbed, SurfaceAbsorb)
	}
}

func (l *lane) detect(p *Photon, channel int) {
	h := ChannelHit{
		Channel:    channel,
		Time:       p.Time,
		PhotonID:   p.ID,
		Wavelength: p.Wavelength,
		Charge:     1,
	}
	if r := l.t.response; r != nil {
		dt, q := r.Sample(p.rng)
		h.Time += dt
		h.Charge = q
	}
	l.hits.Append(h)
	l.finish(p, Detected, Detect)
}
