package curve

import (
	"errors"
	"math"
	"testing"

	"github.com/OpenTraceLab/ringlayout/pkg/geom"
)

func helixWave(amplitude float64) Wave {
	return Wave{
		BaseRadius: 53.8,
		Amplitude:  amplitude,
		Cycles:     6,
	}
}

// arcLength integrates the curve numerically over one turn
func arcLength(c Curve, steps int) float64 {
	total := 0.0
	prev := c.At(0).Pos
	for i := 1; i <= steps; i++ {
		p := c.At(geom.TwoPi * float64(i) / float64(steps)).Pos
		total += prev.Distance(p)
		prev = p
	}
	return total
}

func TestWaveRadius(t *testing.T) {
	w := helixWave(12)
	quarterCycle := math.Pi / 2 / w.Cycles

	tests := []struct {
		name  string
		wave  Wave
		theta float64
		want  float64
	}{
		{"zero crossing", w, 0, 53.8},
		{"crest", w, quarterCycle, 65.8},
		{"flipped crest is trough", w.Flipped(), quarterCycle, 41.8},
		{"override amplitude", Wave{BaseRadius: 50, Amplitude: 12, AmplitudeOverride: 3, Cycles: 6}, quarterCycle, 53},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.wave.At(tt.theta)
			if got := s.Pos.Radius(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("radius at θ=%v = %v, want %v", tt.theta, got, tt.want)
			}
			if got := tt.wave.Radius(tt.theta); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Radius(%v) = %v, want %v", tt.theta, got, tt.want)
			}
		})
	}
}

func TestWaveEvaluatesOutsideOneTurn(t *testing.T) {
	w := helixWave(12)
	a := w.At(0.7).Pos
	b := w.At(0.7 + geom.TwoPi).Pos
	if a.Distance(b) > 1e-9 {
		t.Errorf("At(θ) and At(θ+2π) differ: %v vs %v", a, b)
	}
	c := w.At(0.7 - geom.TwoPi).Pos
	if a.Distance(c) > 1e-9 {
		t.Errorf("At(θ) and At(θ-2π) differ: %v vs %v", a, c)
	}
}

func TestWaveVariants(t *testing.T) {
	w := helixWave(12)
	w.Flip = true
	v := w.Variants()
	if len(v) != 2 {
		t.Fatalf("Variants() returned %d curves", len(v))
	}
	if v[0].(Wave).Flip || !v[1].(Wave).Flip {
		t.Errorf("Variants() flip states = %v, %v", v[0].(Wave).Flip, v[1].(Wave).Flip)
	}
	if math.Abs(w.MinRadius()-41.8) > 1e-9 || math.Abs(w.MaxRadius()-65.8) > 1e-9 {
		t.Errorf("radius range = [%v, %v]", w.MinRadius(), w.MaxRadius())
	}
}

func TestSpiralTail(t *testing.T) {
	s := Spiral{
		RadiusOffset:          2,
		RadiusPerLoop:         10.4,
		Loops:                 2.04,
		ThetaOffset:           -0.022,
		LinearAdjustStart:     3.7 * math.Pi,
		LinearAdjustSlope:     4,
		OrientationOffset:     -0.1,
		TailOrientationOffset: -0.12,
	}

	linear := func(theta float64) float64 {
		return s.RadiusOffset + s.Loops*s.RadiusPerLoop*theta/geom.TwoPi
	}

	early := 1.0
	if s.InTail(early) {
		t.Fatalf("θ=%v unexpectedly in tail", early)
	}
	if got := s.Radius(early); math.Abs(got-linear(early)) > 1e-9 {
		t.Errorf("Radius(%v) = %v, want linear %v", early, got, linear(early))
	}

	late := 6.0
	if !s.InTail(late) {
		t.Fatalf("θ=%v not in tail", late)
	}
	excess := s.SpiralAngle(late) - s.LinearAdjustStart
	want := linear(late) + s.LinearAdjustSlope*excess
	if got := s.Radius(late); math.Abs(got-want) > 1e-9 {
		t.Errorf("Radius(%v) = %v, want %v", late, got, want)
	}

	// the tail changes orientation by the extra offset
	a := s.At(late)
	angle := s.StartAngle + s.SpiralAngle(late)
	if wantO := angle - 0.1 - 0.12; math.Abs(a.Orientation-wantO) > 1e-9 {
		t.Errorf("tail orientation = %v, want %v", a.Orientation, wantO)
	}
}

func TestSpiralDirection(t *testing.T) {
	s := Spiral{RadiusOffset: 5, RadiusPerLoop: 10, Loops: 1, LinearAdjustStart: 100}
	ccw := s.At(0.5).Pos
	s.Direction = -1
	cw := s.At(0.5).Pos
	if math.Abs(ccw.X-cw.X) > 1e-9 || math.Abs(ccw.Y+cw.Y) > 1e-9 {
		t.Errorf("clockwise arm %v is not the mirror of %v", cw, ccw)
	}
}

func TestWalkSpacingInvariant(t *testing.T) {
	opts := WalkOptions{Samples: 80000, Spacing: 3.81, Closed: true}
	samples := Collect(helixWave(12), opts)
	if len(samples) < 2 {
		t.Fatalf("walk emitted %d samples", len(samples))
	}

	for i := 1; i < len(samples); i++ {
		if d := samples[i-1].Pos.Distance(samples[i].Pos); d < opts.Spacing {
			t.Errorf("samples %d and %d are %.4f apart, want >= %v", i-1, i, d, opts.Spacing)
		}
	}

	first, last := samples[0], samples[len(samples)-1]
	if d := first.Pos.Distance(last.Pos); d < WrapFactor*opts.Spacing {
		t.Errorf("wrap: last sample is %.4f from first, want >= %v", d, WrapFactor*opts.Spacing)
	}
}

func TestWalkCountTracksArcLength(t *testing.T) {
	tests := []struct {
		name      string
		amplitude float64
	}{
		// an unmodulated ring: 2π·53.8/3.81 ≈ 88
		{"circle", 0},
		{"helix", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := helixWave(tt.amplitude)
			got := len(Collect(w, WalkOptions{Samples: 80000, Spacing: 3.81, Closed: true}))
			want := arcLength(w, 100000) / 3.81
			if math.Abs(float64(got)-want) > 5 {
				t.Errorf("walk emitted %d samples, want %.1f ± 5", got, want)
			}
		})
	}

	if got := len(Collect(helixWave(0), WalkOptions{Samples: 80000, Spacing: 3.81, Closed: true})); got < 83 || got > 93 {
		t.Errorf("circle walk emitted %d samples, want 88 ± 5", got)
	}
}

func TestWalkIsLazy(t *testing.T) {
	calls := 0
	c := Func(func(theta float64) Sample {
		calls++
		return Sample{Theta: theta, Pos: geom.Polar(50, theta)}
	})

	n := 0
	for range Walk(c, WalkOptions{Samples: 10000, Spacing: 5, Closed: true}) {
		n++
		if n == 3 {
			break
		}
	}
	if calls >= 10000 {
		t.Errorf("walk evaluated %d samples after an early break", calls)
	}
}

func TestWalkInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts WalkOptions
		want error
	}{
		{"zero spacing", WalkOptions{Samples: 100, Spacing: 0}, ErrBadSpacing},
		{"negative spacing", WalkOptions{Samples: 100, Spacing: -1}, ErrBadSpacing},
		{"no samples", WalkOptions{Samples: 0, Spacing: 1}, ErrBadSamples},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
			if got := Collect(helixWave(12), tt.opts); len(got) != 0 {
				t.Errorf("invalid walk emitted %d samples", len(got))
			}
		})
	}
}

func TestWalkOpenSkipsWrapGuard(t *testing.T) {
	circle := Func(func(theta float64) Sample {
		return Sample{Theta: theta, Pos: geom.Polar(10, theta)}
	})
	opts := WalkOptions{Samples: 20000, Spacing: 3}
	open := Collect(circle, opts)
	opts.Closed = true
	closed := Collect(circle, opts)
	if len(open) < len(closed) {
		t.Errorf("open walk emitted %d, closed %d", len(open), len(closed))
	}
}

func TestClipConverges(t *testing.T) {
	w := helixWave(12)
	c := NewClipper(geom.Point{}, 40)

	for _, angle := range []float64{0, 0.4, 1.3, 2.9, 5.1} {
		inner := geom.Polar(20, angle)
		outer := geom.Polar(72, angle)
		res, err := c.Clip(inner, outer, w.Variants()...)
		if err != nil {
			t.Fatalf("Clip at angle %v: %v", angle, err)
		}
		if res.Iterations > DefaultClipMaxIterations {
			t.Errorf("Clip took %d iterations", res.Iterations)
		}
		if res.Inner != inner {
			t.Errorf("inner endpoint moved: %v", res.Inner)
		}
		if math.Abs(res.Outer.Angle()-geom.NormalizeAngle(angle)) > 1e-9 {
			t.Errorf("outer angle = %v, want %v", res.Outer.Angle(), angle)
		}
		if res.Residual >= c.Tolerance {
			t.Errorf("residual %v >= tolerance", res.Residual)
		}
		// the clipped end lies on the outer of the two wave variants
		want := math.Max(w.Radius(angle), w.Flipped().Radius(angle))
		if math.Abs(res.Outer.Radius()-want) > c.Tolerance {
			t.Errorf("clipped radius = %v, want ≈ %v", res.Outer.Radius(), want)
		}
	}
}

func TestClipReportsFailure(t *testing.T) {
	skewed := func(r float64) Curve {
		return Func(func(theta float64) Sample {
			return Sample{Theta: theta, Pos: geom.Polar(r, theta+0.5)}
		})
	}

	tests := []struct {
		name     string
		boundary Curve
		want     error
	}{
		{"never within tolerance", skewed(50), ErrNotConverged},
		{"below radius floor", skewed(30), ErrBelowFloor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClipper(geom.Point{}, 40)
			_, err := c.Clip(geom.Point{}, geom.Polar(72, 1), tt.boundary)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Clip() error = %v, want %v", err, tt.want)
			}
			var ce *ClipError
			if !errors.As(err, &ce) {
				t.Fatalf("error %T is not a *ClipError", err)
			}
			if ce.Iterations > DefaultClipMaxIterations {
				t.Errorf("iterations = %d, cap is %d", ce.Iterations, DefaultClipMaxIterations)
			}
		})
	}

	if _, err := NewClipper(geom.Point{}, 40).Clip(geom.Point{}, geom.Pt(1, 1)); !errors.Is(err, ErrNoBoundary) {
		t.Errorf("Clip() without boundaries = %v", err)
	}
}
