package photons3d

// boundary is what a photon meets at a triangle. It is resolved once per
// intersection and consumed by a type switch in the stepper.
type boundary interface {
	isBoundary()
}

// dielectricBoundary separates two bulk media with no surface model.
type dielectricBoundary struct {
	near, far int  // material on the incident side and across
	n1, n2    Real // refractive indices of near and far
}

// surfaceBoundary is a triangle carrying an optical surface.
type surfaceBoundary struct {
	id    int
	props SurfaceProps
}

func (dielectricBoundary) isBoundary() {}
func (surfaceBoundary) isBoundary()    {}

// resolveBoundary builds the boundary the photon meets at tri. cur holds the
// properties of the photon's current material, reused when it matches the near side.
func (t *Transport) resolveBoundary(p *Photon, tri *Triangle, cur MaterialProps) (boundary, error) {
	if tri.Surface != NoSurface {
		sp, err := t.props.SurfaceProperties(tri.Surface, p.Wavelength)
		if err != nil {
			return nil, err
		}
		return surfaceBoundary{id: tri.Surface, props: sp}, nil
	}
	near, far := tri.NearSide(p.Dir)
	b := dielectricBoundary{near: near, far: far, n1: cur.N}
	if near != p.Material {
		np, err := t.props.MaterialProperties(near, p.Wavelength)
		if err != nil {
			return nil, err
		}
		b.n1 = np.N
	}
	if far == near {
		b.n2 = b.n1
		return b, nil
	}
	fp, err := t.props.MaterialProperties(far, p.Wavelength)
	if err != nil {
		return nil, err
	}
	b.n2 = fp.N
	return b, nil
}
