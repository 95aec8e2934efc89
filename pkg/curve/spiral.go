package curve

import (
	"github.com/OpenTraceLab/ringlayout/pkg/geom"
)

// Spiral is an Archimedean spiral arm with a blended linear tail. Past
// LinearAdjustStart the radius grows faster so the arm's outer end runs
// into the helix boundary instead of curling alongside it.
//
// The parameter θ covers the whole arm over [0, 2π); the arm itself turns
// Loops times.
type Spiral struct {
	Center     geom.Point // Spiral origin
	StartAngle float64    // Angle of the arm at θ = 0
	Direction  float64    // +1 counter-clockwise, -1 clockwise; 0 is treated as +1

	RadiusOffset  float64 // Radius at θ = 0 (mm)
	RadiusPerLoop float64 // Radial growth per turn (mm)
	Loops         float64 // Turns over θ ∈ [0, 2π)

	// Tuning constants, kept configurable
	ThetaOffset           float64 // Added to the spiral angle
	LinearAdjustStart     float64 // Spiral angle where the tail begins
	LinearAdjustSlope     float64 // Extra radius per radian past the tail start
	OrientationOffset     float64 // Added to every orientation
	TailOrientationOffset float64 // Added to orientation on the tail
}

var _ Curve = Spiral{}

func (s Spiral) direction() float64 {
	if s.Direction < 0 {
		return -1
	}
	return 1
}

// SpiralAngle returns ψ, the arm's own winding angle at θ
func (s Spiral) SpiralAngle(theta float64) float64 {
	return s.Loops*theta + s.ThetaOffset
}

// Radius returns the distance from Center at parameter theta
func (s Spiral) Radius(theta float64) float64 {
	r := s.RadiusOffset + s.Loops*s.RadiusPerLoop*theta/geom.TwoPi
	if psi := s.SpiralAngle(theta); psi > s.LinearAdjustStart {
		r += s.LinearAdjustSlope * (psi - s.LinearAdjustStart)
	}
	return r
}

// At implements Curve
func (s Spiral) At(theta float64) Sample {
	psi := s.SpiralAngle(theta)
	angle := s.StartAngle + s.direction()*psi

	orientation := angle + s.OrientationOffset
	if psi > s.LinearAdjustStart {
		orientation += s.TailOrientationOffset
	}

	return Sample{
		Theta:       theta,
		Pos:         s.Center.Add(geom.Polar(s.Radius(theta), angle)),
		Orientation: orientation,
	}
}

// InTail reports whether theta lies on the blended tail
func (s Spiral) InTail(theta float64) bool {
	return s.SpiralAngle(theta) > s.LinearAdjustStart
}

// EndRadius is the radius at the end of the arm
func (s Spiral) EndRadius() float64 {
	return s.Radius(geom.TwoPi)
}
