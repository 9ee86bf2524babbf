package models

import (
	"fmt"

	apperrors "effects-studio/internal/errors"
)

// ValidationError represents a parameter validation error
type ValidationError struct {
	Parameter string
	Value     interface{}
	Message   string
}

// NewValidationError creates a new validation error
func NewValidationError(parameter string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Value:     value,
		Message:   message,
	}
}

// Error returns the error message
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for parameter '%s' with value '%v': %s",
		ve.Parameter, ve.Value, ve.Message)
}

// ParameterRange bounds a numeric parameter. Both ends are inclusive.
type ParameterRange struct {
	Min float64
	Max float64
}

func (r ParameterRange) contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r ParameterRange) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

type parameterSpec struct {
	normal  ParameterRange
	extreme ParameterRange
	odd     bool
}

var parameterSpecs = map[string]parameterSpec{
	"noise.gaussian.variance":     {normal: ParameterRange{0, 0.1}, extreme: ParameterRange{0, 5.0}},
	"noise.saltPepper.amount":     {normal: ParameterRange{0, 0.1}, extreme: ParameterRange{0, 1.0}},
	"blur.gaussian.kernelSize":    {normal: ParameterRange{3, 15}, extreme: ParameterRange{3, 101}, odd: true},
	"blur.motion.degree":          {normal: ParameterRange{1, 30}, extreme: ParameterRange{1, 100}},
	"blur.box.kernelSize":         {normal: ParameterRange{3, 15}, extreme: ParameterRange{3, 101}, odd: true},
	"shake.camera.intensity":      {normal: ParameterRange{1, 10}, extreme: ParameterRange{1, 50}},
	"shake.directional.intensity": {normal: ParameterRange{1, 10}, extreme: ParameterRange{1, 50}},
	"motion.distortion.intensity": {normal: ParameterRange{1, 20}, extreme: ParameterRange{1, 100}},
	"motion.zoom.intensity":       {normal: ParameterRange{1, 10}, extreme: ParameterRange{1, 50}},
}

// RangeFor returns the active range for a dotted parameter name.
func RangeFor(parameter string, extreme bool) (ParameterRange, bool) {
	spec, ok := parameterSpecs[parameter]
	if !ok {
		return ParameterRange{}, false
	}
	if extreme {
		return spec.extreme, true
	}
	return spec.normal, true
}

// Validate checks every parameter of every enabled effect against the
// active range set. Out-of-range values are rejected, never clamped.
// All violations are collected so one response names them all.
func (c *EffectConfig) Validate() error {
	var errs []error

	checkNumber := func(name string, value interface{}, v float64) {
		spec, ok := parameterSpecs[name]
		if !ok {
			return
		}

		r := spec.normal
		if c.ExtremeMode {
			r = spec.extreme
		}
		if !r.contains(v) {
			errs = append(errs, NewValidationError(name, value,
				fmt.Sprintf("outside allowed range %s", r)))
			return
		}
		if spec.odd && int(v)%2 == 0 {
			errs = append(errs, NewValidationError(name, value, "must be an odd integer"))
		}
	}
	checkFloat := func(name string, v float64) { checkNumber(name, v, v) }
	checkInt := func(name string, v int) { checkNumber(name, v, float64(v)) }

	if c.Noise.Gaussian.Enabled {
		checkFloat("noise.gaussian.variance", c.Noise.Gaussian.Variance)
	}
	if c.Noise.SaltPepper.Enabled {
		checkFloat("noise.saltPepper.amount", c.Noise.SaltPepper.Amount)
	}
	if c.Blur.Gaussian.Enabled {
		checkInt("blur.gaussian.kernelSize", c.Blur.Gaussian.KernelSize)
	}
	// The motion blur angle is not checked: angles wrap modulo 360
	// wherever they are consumed.
	if c.Blur.Motion.Enabled {
		checkInt("blur.motion.degree", c.Blur.Motion.Degree)
	}
	if c.Blur.Box.Enabled {
		checkInt("blur.box.kernelSize", c.Blur.Box.KernelSize)
	}
	if c.Shake.Camera.Enabled {
		checkInt("shake.camera.intensity", c.Shake.Camera.Intensity)
	}
	if c.Shake.Directional.Enabled {
		checkInt("shake.directional.intensity", c.Shake.Directional.Intensity)
		switch c.Shake.Directional.Direction {
		case ShakeHorizontal, ShakeVertical, ShakeBoth:
		default:
			errs = append(errs, NewValidationError("shake.directional.direction",
				c.Shake.Directional.Direction, "must be one of horizontal, vertical, both"))
		}
	}
	if c.Motion.Distortion.Enabled {
		checkInt("motion.distortion.intensity", c.Motion.Distortion.Intensity)
		switch c.Motion.Distortion.Direction {
		case DistortionHorizontal, DistortionVertical, DistortionDiagonal:
		default:
			errs = append(errs, NewValidationError("motion.distortion.direction",
				c.Motion.Distortion.Direction, "must be one of horizontal, vertical, diagonal"))
		}
	}
	if c.Motion.Zoom.Enabled {
		checkInt("motion.zoom.intensity", c.Motion.Zoom.Intensity)
	}

	switch len(errs) {
	case 0:
		return nil
	case 1:
		return apperrors.NewValidationError("effect configuration rejected", errs[0])
	default:
		return apperrors.NewCompositeError(
			fmt.Sprintf("effect configuration rejected, %d parameters invalid", len(errs)), errs)
	}
}
