package photons3d

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedGeometry is returned by geometry build for degenerate triangles or dangling references.
	ErrMalformedGeometry = errors.New("malformed geometry")
	// ErrOutOfRangeProperty is returned when a wavelength lies outside a tabulated curve under RangeFail.
	ErrOutOfRangeProperty = errors.New("wavelength out of property range")
	// ErrNumericalDegeneracy marks a direction or polarization that could not be renormalized.
	ErrNumericalDegeneracy = errors.New("numerical degeneracy")
	// ErrInvalidProperty is returned for property tables that cannot be loaded.
	ErrInvalidProperty = errors.New("invalid property table")
	// ErrInvalidConfig is returned for scene configs that fail validation.
	ErrInvalidConfig = errors.New("invalid config")
)

func malformed(tri int, format string, args ...interface{}) error {
	if tri < 0 {
		return fmt.Errorf("%w: %s", ErrMalformedGeometry, fmt.Sprintf(format, args...))
	}
	return fmt.Errorf("%w: triangle %d: %s", ErrMalformedGeometry, tri, fmt.Sprintf(format, args...))
}

func invalidProperty(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidProperty, fmt.Sprintf(format, args...))
}

func invalidConfig(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
