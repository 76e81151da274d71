package photons3d

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Curve is a wavelength-indexed quantity tabulated at strictly increasing
// wavelengths and linearly interpolated between samples. A single sample is a
// constant valid at every wavelength.
type Curve struct {
	X []Real // wavelengths, nm
	Y []Real
}

// ConstantCurve returns a curve with value v everywhere.
func ConstantCurve(v Real) Curve { return Curve{X: []Real{DefaultWavelength}, Y: []Real{v}} }

// NewCurve copies and validates the samples.
func NewCurve(wavelengths, values []Real) (Curve, error) {
	if len(wavelengths) == 0 {
		return Curve{}, fmt.Errorf("curve has no samples")
	}
	if len(wavelengths) != len(values) {
		return Curve{}, fmt.Errorf("curve has %d wavelengths and %d values", len(wavelengths), len(values))
	}
	for i, x := range wavelengths {
		if !isFinite(x) {
			return Curve{}, fmt.Errorf("wavelength #%d is not finite", i)
		}
		if i > 0 && !(x > wavelengths[i-1]) {
			return Curve{}, fmt.Errorf("wavelengths must be strictly increasing: %g after %g", x, wavelengths[i-1])
		}
		if math.IsNaN(values[i]) {
			return Curve{}, fmt.Errorf("value #%d is NaN", i)
		}
	}
	return Curve{X: append([]Real(nil), wavelengths...), Y: append([]Real(nil), values...)}, nil
}

func (c Curve) constant() bool { return len(c.X) == 1 }

// Range returns the tabulated wavelength span.
func (c Curve) Range() (lo, hi Real) {
	if c.constant() {
		return math.Inf(-1), math.Inf(1)
	}
	return c.X[0], c.X[len(c.X)-1]
}

// Eval interpolates at wl. Outside the tabulated span it either fails with
// ErrOutOfRangeProperty or returns the nearest endpoint, depending on policy;
// clamped reports the latter.
func (c Curve) Eval(wl Real, policy RangePolicy) (v Real, clamped bool, err error) {
	n := len(c.X)
	if n == 0 {
		return 0, false, fmt.Errorf("%w: empty curve", ErrInvalidProperty)
	}
	if n == 1 {
		return c.Y[0], false, nil
	}
	if wl < c.X[0] || wl > c.X[n-1] || math.IsNaN(wl) {
		if policy != RangeClamp {
			return 0, false, fmt.Errorf("%w: %g nm not in [%g, %g]", ErrOutOfRangeProperty, wl, c.X[0], c.X[n-1])
		}
		if wl > c.X[n-1] {
			return c.Y[n-1], true, nil
		}
		return c.Y[0], true, nil
	}
	if wl == c.X[n-1] {
		return c.Y[n-1], false, nil
	}
	// X is validated as strictly increasing at load
	i := sort.SearchFloat64s(c.X, wl)
	if c.X[i] != wl {
		i--
	}
	t := (wl - c.X[i]) / (c.X[i+1] - c.X[i])
	return lerp(c.Y[i], c.Y[i+1], t), false, nil
}

// lerp treats infinite endpoints as absorbing unless their weight is zero.
func lerp(a, b, t Real) Real {
	if t == 0 {
		return a
	}
	if t == 1 {
		return b
	}
	if math.IsInf(a, 0) {
		return a
	}
	if math.IsInf(b, 0) {
		return b
	}
	return a + (b-a)*t
}

// Max returns the largest tabulated value.
func (c Curve) Max() Real { return floats.Max(c.Y) }

// Min returns the smallest tabulated value.
func (c Curve) Min() Real { return floats.Min(c.Y) }
