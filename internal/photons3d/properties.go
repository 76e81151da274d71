package photons3d

import (
	"fmt"
	"math"
	"sync/atomic"
)

// RangePolicy decides what happens when a wavelength falls outside a table.
type RangePolicy uint8

const (
	RangeFail  RangePolicy = iota // return ErrOutOfRangeProperty
	RangeClamp                    // use the nearest tabulated endpoint, counted in PropertyTables.Clamped
)

func (p RangePolicy) String() string {
	switch p {
	case RangeFail:
		return "fail"
	case RangeClamp:
		return "clamp"
	}
	return fmt.Sprintf("RangePolicy(%d)", uint8(p))
}

// ParseRangePolicy accepts "fail", "clamp" and "" (fail).
func ParseRangePolicy(s string) (RangePolicy, error) {
	switch s {
	case "", "fail":
		return RangeFail, nil
	case "clamp":
		return RangeClamp, nil
	}
	return RangeFail, fmt.Errorf("unknown range policy %q", s)
}

// MaterialTable is the tabulated description of one bulk medium.
type MaterialTable struct {
	Name             string
	RefractiveIndex  Curve
	AbsorptionLength Curve // mm, +Inf for none
	ScatteringLength Curve // Rayleigh, mm, +Inf for none
}

// SurfaceTable is the tabulated description of one optical surface.
type SurfaceTable struct {
	Name             string
	Specular         Curve
	Diffuse          Curve
	DetectEfficiency Curve
	Channel          int // -1 when the surface is not a detector
}

// MaterialProps are a material's constants at one wavelength.
type MaterialProps struct {
	N          Real
	AbsLength  Real
	ScatLength Real
}

// SurfaceProps are a surface's constants at one wavelength.
type SurfaceProps struct {
	Specular  Real
	Diffuse   Real
	DetectEff Real
	Channel   int
}

// PropertyTables holds every material and surface table. Immutable after LoadProperties.
type PropertyTables struct {
	Materials []MaterialTable
	Surfaces  []SurfaceTable
	Policy    RangePolicy
	clamped   atomic.Int64
}

// LoadProperties validates the tables and freezes them.
func LoadProperties(materials []MaterialTable, surfaces []SurfaceTable, policy RangePolicy) (*PropertyTables, error) {
	if len(materials) == 0 {
		return nil, invalidProperty("no materials")
	}
	if policy != RangeFail && policy != RangeClamp {
		return nil, invalidProperty("unknown range policy %d", policy)
	}
	for i, m := range materials {
		if err := checkCurve(m.RefractiveIndex, 1, math.Inf(1)); err != nil {
			return nil, invalidProperty("material %d (%s) refractive index: %v", i, m.Name, err)
		}
		if err := checkCurve(m.AbsorptionLength, 0, math.Inf(1)); err != nil {
			return nil, invalidProperty("material %d (%s) absorption length: %v", i, m.Name, err)
		}
		if err := checkCurve(m.ScatteringLength, 0, math.Inf(1)); err != nil {
			return nil, invalidProperty("material %d (%s) scattering length: %v", i, m.Name, err)
		}
	}
	for i, s := range surfaces {
		for _, c := range []struct {
			name  string
			curve Curve
		}{{"specular", s.Specular}, {"diffuse", s.Diffuse}, {"detect efficiency", s.DetectEfficiency}} {
			if err := checkCurve(c.curve, 0, 1); err != nil {
				return nil, invalidProperty("surface %d (%s) %s: %v", i, s.Name, c.name, err)
			}
		}
		if err := checkReflectivitySum(s.Specular, s.Diffuse); err != nil {
			return nil, invalidProperty("surface %d (%s): %v", i, s.Name, err)
		}
		if s.Channel < 0 && s.DetectEfficiency.Max() > 0 {
			return nil, invalidProperty("surface %d (%s) detects photons but has no channel", i, s.Name)
		}
	}
	pt := &PropertyTables{
		Materials: append([]MaterialTable(nil), materials...),
		Surfaces:  append([]SurfaceTable(nil), surfaces...),
		Policy:    policy,
	}
	DebugLog("Loaded properties: %d materials, %d surfaces, policy=%s", len(pt.Materials), len(pt.Surfaces), pt.Policy)
	return pt, nil
}

func checkCurve(c Curve, lo, hi Real) error {
	if len(c.X) == 0 || len(c.X) != len(c.Y) {
		return fmt.Errorf("empty or ragged curve")
	}
	for i := 1; i < len(c.X); i++ {
		if !(c.X[i] > c.X[i-1]) {
			return fmt.Errorf("wavelengths must be strictly increasing at #%d", i)
		}
	}
	for i, y := range c.Y {
		if math.IsNaN(y) || y < lo || y > hi {
			return fmt.Errorf("value #%d = %g not in [%g, %g]", i, y, lo, hi)
		}
	}
	return nil
}

// checkReflectivitySum samples both curves at the union of their wavelengths.
func checkReflectivitySum(spec, diff Curve) error {
	xs := append(append([]Real(nil), spec.X...), diff.X...)
	for _, x := range xs {
		a, _, _ := spec.Eval(x, RangeClamp)
		b, _, _ := diff.Eval(x, RangeClamp)
		if a+b > 1+1e-12 {
			return fmt.Errorf("specular+diffuse = %g > 1 at %g nm", a+b, x)
		}
	}
	return nil
}

func (pt *PropertyTables) eval(c Curve, wl Real) (Real, error) {
	v, clamped, err := c.Eval(wl, pt.Policy)
	if clamped {
		pt.clamped.Add(1)
	}
	return v, err
}

// MaterialProperties interpolates material id at wavelength wl.
func (pt *PropertyTables) MaterialProperties(id int, wl Real) (MaterialProps, error) {
	if id < 0 || id >= len(pt.Materials) {
		return MaterialProps{}, fmt.Errorf("%w: material %d does not exist", ErrInvalidProperty, id)
	}
	m := &pt.Materials[id]
	var (
		p   MaterialProps
		err error
	)
	if p.N, err = pt.eval(m.RefractiveIndex, wl); err != nil {
		return MaterialProps{}, fmt.Errorf("material %s refractive index: %w", m.Name, err)
	}
	if p.AbsLength, err = pt.eval(m.AbsorptionLength, wl); err != nil {
		return MaterialProps{}, fmt.Errorf("material %s absorption length: %w", m.Name, err)
	}
	if p.ScatLength, err = pt.eval(m.ScatteringLength, wl); err != nil {
		return MaterialProps{}, fmt.Errorf("material %s scattering length: %w", m.Name, err)
	}
	return p, nil
}

// SurfaceProperties interpolates surface id at wavelength wl.
func (pt *PropertyTables) SurfaceProperties(id int, wl Real) (SurfaceProps, error) {
	if id < 0 || id >= len(pt.Surfaces) {
		return SurfaceProps{}, fmt.Errorf("%w: surface %d does not exist", ErrInvalidProperty, id)
	}
	s := &pt.Surfaces[id]
	p := SurfaceProps{Channel: s.Channel}
	var err error
	if p.Specular, err = pt.eval(s.Specular, wl); err != nil {
		return SurfaceProps{}, fmt.Errorf("surface %s specular: %w", s.Name, err)
	}
	if p.Diffuse, err = pt.eval(s.Diffuse, wl); err != nil {
		return SurfaceProps{}, fmt.Errorf("surface %s diffuse: %w", s.Name, err)
	}
	if p.DetectEff, err = pt.eval(s.DetectEfficiency, wl); err != nil {
		return SurfaceProps{}, fmt.Errorf("surface %s detect efficiency: %w", s.Name, err)
	}
	return p, nil
}

// Clamped returns how many lookups were clamped under RangeClamp.
func (pt *PropertyTables) Clamped() int64 { return pt.clamped.Load() }
