package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/OpenTraceLab/ringlayout/pkg/curve"
	"github.com/OpenTraceLab/ringlayout/pkg/geom"
	"github.com/OpenTraceLab/ringlayout/pkg/padmap"
)

// HelixParams describes a helix ring: two interleaved waves, a set of
// spiral arms inside them and radial guide lines. Lengths are in
// millimetres, angles in radians.
type HelixParams struct {
	Center     geom.Point
	EdgeRadius float64 // Board outline radius
	EdgeWidth  float64 // Board outline line width

	HelixRadius    float64
	HelixAmplitude float64
	HelixCycles    float64
	PixelRotation  float64 // Orientation tilt against the wave slope
	Spacing        float64 // Minimum node to node distance
	WaveSamples    int

	OverlapThreshold float64

	Spiral SpiralParams
	Guides GuideParams
	Wiring WiringParams
}

// SpiralParams describes the spiral arms
type SpiralParams struct {
	Count             int
	StartRadiusFactor float64 // Arm center radius as a fraction of HelixRadius
	StartAngle        float64 // Angle of the first arm
	Samples           int

	RadiusOffset          float64
	RadiusPerLoop         float64
	Loops                 float64
	ThetaOffset           float64
	LinearAdjustStart     float64
	LinearAdjustSlope     float64
	OrientationOffset     float64
	TailOrientationOffset float64
}

// GuideParams describes the radial silkscreen guide lines
type GuideParams struct {
	Count       int
	InnerRadius float64
	MinRadius   float64 // Clip floor
	Tolerance   float64
	Width       float64
	Layer       string
}

// WiringParams describes the copper the router emits
type WiringParams struct {
	PadMap           padmap.Map
	GroundPad        string
	GroundStubLength float64
	TraceWidth       float64
	ViaSize          float64
	ViaDrill         float64
	SkipTraces       bool
}

// DefaultHelixParams returns the 144 mm APA102-2020 helix ring
func DefaultHelixParams() HelixParams {
	const cycles = 6
	return HelixParams{
		Center:     geom.Pt(100, 100),
		EdgeRadius: 72,
		EdgeWidth:  0.05,

		HelixRadius:    56.6,
		HelixAmplitude: 12,
		HelixCycles:    cycles,
		PixelRotation:  0.98,
		Spacing:        3.922,
		WaveSamples:    80000,

		OverlapThreshold: DefaultOverlapThreshold,

		Spiral: SpiralParams{
			Count:             3,
			StartRadiusFactor: 0.45,
			StartAngle:        7.0 / cycles / 2,
			Samples:           40000,

			RadiusOffset:          2,
			RadiusPerLoop:         10.4,
			Loops:                 2.04,
			ThetaOffset:           -0.022,
			LinearAdjustStart:     3.7 * math.Pi,
			LinearAdjustSlope:     4,
			OrientationOffset:     -0.1,
			TailOrientationOffset: -0.12,
		},

		Guides: GuideParams{
			Count:       24,
			InnerRadius: 0,
			MinRadius:   40,
			Tolerance:   1,
			Width:       0.15,
			Layer:       LayerSilkscreen,
		},

		Wiring: WiringParams{
			PadMap:           padmap.Default(),
			GroundPad:        DefaultGroundPad,
			GroundStubLength: DefaultGroundStubLength,
			TraceWidth:       DefaultTraceWidth,
			ViaSize:          DefaultViaSize,
			ViaDrill:         DefaultViaDrill,
		},
	}
}

// ErrInvalidParams is wrapped by every Validate failure
var ErrInvalidParams = errors.New("invalid layout parameters")

// Validate rejects parameters the walkers or the clipper cannot work with
func (p HelixParams) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{ErrInvalidParams}, args...)...)
	}

	switch {
	case p.Spacing <= 0:
		return bad("spacing %g must be positive", p.Spacing)
	case p.WaveSamples <= 0:
		return bad("wave samples %d must be positive", p.WaveSamples)
	case p.HelixCycles <= 0:
		return bad("helix cycles %g must be positive", p.HelixCycles)
	case p.HelixRadius <= p.HelixAmplitude:
		return bad("helix radius %g must exceed its amplitude %g", p.HelixRadius, p.HelixAmplitude)
	case p.EdgeRadius <= 0:
		return bad("edge radius %g must be positive", p.EdgeRadius)
	case p.OverlapThreshold < 0:
		return bad("overlap threshold %g is negative", p.OverlapThreshold)
	case p.Spiral.Count < 0:
		return bad("spiral count %d is negative", p.Spiral.Count)
	case p.Spiral.Count > 0 && p.Spiral.Samples <= 0:
		return bad("spiral samples %d must be positive", p.Spiral.Samples)
	case p.Guides.Count < 0:
		return bad("guide count %d is negative", p.Guides.Count)
	case p.Guides.Count > 0 && p.Guides.InnerRadius >= p.EdgeRadius:
		return bad("guide inner radius %g is outside the edge radius %g", p.Guides.InnerRadius, p.EdgeRadius)
	}
	if err := p.Wiring.PadMap.Validate(); err != nil {
		return bad("pad map: %v", err)
	}
	return nil
}

// Wave returns the unflipped helix wave
func (p HelixParams) Wave() curve.Wave {
	return curve.Wave{
		Center:     p.Center,
		BaseRadius: p.HelixRadius,
		Amplitude:  p.HelixAmplitude,
		Cycles:     p.HelixCycles,
		Rotation:   p.PixelRotation,
	}
}

// SpiralArm returns spiral arm i. Arms are laid out in the same
// x/y-swapped frame as the wave: the arm centre sits at angle π/2-start
// and the arm sweeps through ψ-start, which keeps every arm inside the
// inner edge of the wave band.
func (p HelixParams) SpiralArm(i int) curve.Spiral {
	s := p.Spiral
	start := float64(i)*geom.TwoPi/float64(max(s.Count, 1)) + s.StartAngle
	return curve.Spiral{
		Center:                p.Center.Add(geom.Polar(s.StartRadiusFactor*p.HelixRadius, math.Pi/2-start)),
		StartAngle:            -start,
		Direction:             1,
		RadiusOffset:          s.RadiusOffset,
		RadiusPerLoop:         s.RadiusPerLoop,
		Loops:                 s.Loops,
		ThetaOffset:           s.ThetaOffset,
		LinearAdjustStart:     s.LinearAdjustStart,
		LinearAdjustSlope:     s.LinearAdjustSlope,
		OrientationOffset:     s.OrientationOffset,
		TailOrientationOffset: s.TailOrientationOffset,
	}
}
