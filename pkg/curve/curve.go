// Package curve defines the parametric design curves that nodes are placed
// along, the even-spacing walker that samples them, and the clipper that
// trims guide lines against a curve boundary.
//
// A curve maps a scalar parameter θ to a board position and an orientation.
// Curves are pure values: evaluating one never changes it, and any θ is valid,
// including values outside [0, 2π).
package curve

import (
	"fmt"

	"github.com/OpenTraceLab/ringlayout/pkg/geom"
)

// Sample is one evaluation of a curve
type Sample struct {
	Theta       float64    // Curve parameter the sample was taken at
	Pos         geom.Point // Absolute board position (mm)
	Orientation float64    // Node orientation (radians)
}

func (s Sample) String() string {
	return fmt.Sprintf("θ=%.4f %s o=%.3f", s.Theta, s.Pos, s.Orientation)
}

// Curve maps a parameter to a sample
type Curve interface {
	At(theta float64) Sample
}

// Func adapts a plain function to the Curve interface
type Func func(theta float64) Sample

// At implements Curve
func (f Func) At(theta float64) Sample {
	return f(theta)
}
