package curve

import (
	"math"

	"github.com/OpenTraceLab/ringlayout/pkg/geom"
)

// Wave is a circle whose radius is sinusoidally modulated: the "helix" of
// the ring. The two Flip states trace mirror-image boundaries from one
// formula, and together they form the braided helix outline.
type Wave struct {
	Center     geom.Point // Ring center
	BaseRadius float64    // Mean radius (mm)
	Amplitude  float64    // Modulation amplitude (mm)
	Cycles     float64    // Number of modulation cycles per turn
	Flip       bool       // Negate the modulation term

	// AmplitudeOverride replaces Amplitude when positive
	AmplitudeOverride float64

	// Phase rotates the whole curve about Center
	Phase float64

	// Rotation tilts node orientation against the local slope of the wave.
	// It is a tuning constant, not derived geometry.
	Rotation float64
}

var _ Curve = Wave{}

func (w Wave) sign() float64 {
	if w.Flip {
		return -1
	}
	return 1
}

func (w Wave) amplitude() float64 {
	if w.AmplitudeOverride > 0 {
		return w.AmplitudeOverride
	}
	return w.Amplitude
}

// Radius returns the distance from Center at parameter theta
func (w Wave) Radius(theta float64) float64 {
	return w.BaseRadius + w.sign()*w.amplitude()*math.Sin(w.Cycles*theta)
}

// At implements Curve
func (w Wave) At(theta float64) Sample {
	r := w.Radius(theta)
	return Sample{
		Theta:       theta,
		Pos:         w.Center.Add(geom.Polar(r, theta+w.Phase)),
		Orientation: theta + w.Phase - w.sign()*math.Cos(w.Cycles*theta)*w.Rotation,
	}
}

// Flipped returns the mirror wave
func (w Wave) Flipped() Wave {
	w.Flip = !w.Flip
	return w
}

// Variants returns both flip states of the wave, unflipped first
func (w Wave) Variants() []Curve {
	w.Flip = false
	return []Curve{w, w.Flipped()}
}

// MinRadius is the innermost radius the wave reaches
func (w Wave) MinRadius() float64 {
	return w.BaseRadius - math.Abs(w.amplitude())
}

// MaxRadius is the outermost radius the wave reaches
func (w Wave) MaxRadius() float64 {
	return w.BaseRadius + math.Abs(w.amplitude())
}
