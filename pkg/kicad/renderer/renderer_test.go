package renderer

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/pcb"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestCameraRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Camera)
	}{
		{"plain", func(*Camera) {}},
		{"panned", func(c *Camera) { c.Pan(37, -12) }},
		{"rotated", func(c *Camera) { c.RotationCenterX, c.RotationCenterY = 100, 100; c.Rotate(90) }},
		{"flipped", func(c *Camera) { c.RotationCenterX = 100; c.Flip() }},
		{"rotated and flipped", func(c *Camera) { c.Rotate(30); c.Flip(); c.Zoom = 3.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera(800, 600)
			c.CenterX, c.CenterY = 100, 100
			tt.setup(c)

			for _, p := range []pcb.Position{{X: 100, Y: 100}, {X: 172, Y: 100}, {X: 90.5, Y: 140.25}} {
				x, y := c.WorldToScreen(p)
				if diff := cmp.Diff(p, c.ScreenToWorld(x, y), approx); diff != "" {
					t.Errorf("round trip of %v mismatch (-want +got):\n%s", p, diff)
				}
			}
		})
	}
}

func TestCameraScreenAxes(t *testing.T) {
	c := NewCamera(800, 600)
	c.CenterX, c.CenterY = 100, 100

	x, y := c.WorldToScreen(pcb.Position{X: 100, Y: 100})
	if x != 400 || y != 300 {
		t.Errorf("center maps to (%v, %v), want (400, 300)", x, y)
	}
	// board Y grows downwards like the screen
	_, y = c.WorldToScreen(pcb.Position{X: 100, Y: 101})
	if y != 310 {
		t.Errorf("one millimetre down maps to y=%v, want 310", y)
	}
}

func TestCameraFit(t *testing.T) {
	c := NewCamera(1000, 500)
	c.Fit(pcb.BoundingBox{Min: pcb.Position{X: 28, Y: 28}, Max: pcb.Position{X: 172, Y: 172}})

	if c.CenterX != 100 || c.CenterY != 100 {
		t.Errorf("center = (%v, %v)", c.CenterX, c.CenterY)
	}
	if want := 500 * 0.9 / 144; math.Abs(c.Zoom-want) > 1e-9 {
		t.Errorf("zoom = %v, want %v", c.Zoom, want)
	}

	// degenerate boxes leave the camera alone
	before := *c
	c.Fit(pcb.BoundingBox{Min: pcb.Position{X: 5, Y: 5}, Max: pcb.Position{X: 5, Y: 9}})
	if *c != before {
		t.Error("Fit() of an empty box changed the camera")
	}
}

func TestCameraZoomAt(t *testing.T) {
	c := NewCamera(800, 600)
	c.CenterX, c.CenterY = 100, 100

	under := c.ScreenToWorld(200, 150)
	c.ZoomAt(200, 150, 2)
	if diff := cmp.Diff(under, c.ScreenToWorld(200, 150), approx); diff != "" {
		t.Errorf("point under cursor moved (-want +got):\n%s", diff)
	}

	c.ZoomAt(0, 0, 1e9)
	if c.Zoom != MaxZoom {
		t.Errorf("zoom = %v, want clamp at %v", c.Zoom, MaxZoom)
	}
}

func TestCameraRotate(t *testing.T) {
	c := NewCamera(10, 10)
	for _, step := range []struct{ by, want float64 }{{90, 90}, {300, 30}, {-60, 330}} {
		c.Rotate(step.by)
		if c.Rotation != step.want {
			t.Errorf("Rotate(%v) = %v, want %v", step.by, c.Rotation, step.want)
		}
	}
}

func TestLayerConfig(t *testing.T) {
	lc := NewLayerConfig()
	if !lc.IsVisible("F.Cu") {
		t.Error("layers should start visible")
	}
	if lc.Toggle("F.Cu") {
		t.Error("Toggle() should hide a visible layer")
	}
	if lc.IsVisible("F.Cu") || !lc.AnyVisible("F.Cu", "B.Cu") || lc.AnyVisible("F.Cu") {
		t.Error("visibility after hiding F.Cu is wrong")
	}
	lc.ShowAll()
	if !lc.IsVisible("F.Cu") {
		t.Error("ShowAll() left F.Cu hidden")
	}

	var none *LayerConfig
	if !none.IsVisible("Edge.Cuts") {
		t.Error("a nil config should draw everything")
	}
}

func TestThemeLayerColor(t *testing.T) {
	for _, th := range Themes {
		if th.LayerColor("F.Cu") == unknownLayer {
			t.Errorf("%s has no F.Cu color", th.Name)
		}
		if th.LayerColor("User.42") != unknownLayer {
			t.Errorf("%s: unknown layer should be gray", th.Name)
		}
	}
}

func TestPadCorners(t *testing.T) {
	c := pcb.Position{X: 10, Y: 10}
	size := pcb.Size{Width: 2, Height: 1}

	want := []pcb.Position{{X: 9, Y: 9.5}, {X: 11, Y: 9.5}, {X: 11, Y: 10.5}, {X: 9, Y: 10.5}}
	if diff := cmp.Diff(want, padCorners(c, size, 0), approx); diff != "" {
		t.Errorf("unrotated corners mismatch (-want +got):\n%s", diff)
	}

	// a quarter turn swaps the extents
	bbox := pcb.NewBoundingBox()
	for _, p := range padCorners(c, size, 90) {
		bbox.Expand(p)
	}
	if math.Abs(bbox.Width()-1) > 1e-9 || math.Abs(bbox.Height()-2) > 1e-9 {
		t.Errorf("rotated extents = %v x %v, want 1 x 2", bbox.Width(), bbox.Height())
	}
}

func TestCirclePoints(t *testing.T) {
	c := pcb.Position{X: 100, Y: 100}
	pts := circlePoints(c, 72)

	if len(pts) != circleSegments+1 {
		t.Fatalf("got %d points", len(pts))
	}
	if diff := cmp.Diff(pts[0], pts[len(pts)-1], approx); diff != "" {
		t.Errorf("circle not closed: %s", diff)
	}
	for _, p := range pts {
		if r := distance(c, p); math.Abs(r-72) > 1e-9 {
			t.Fatalf("point %v at radius %v", p, r)
		}
	}
}

func TestArcPoints(t *testing.T) {
	tests := []struct {
		name            string
		start, mid, end pcb.Position
		wantRadius      float64
		wantCenter      pcb.Position
		wantSweepPoints int
	}{
		{
			name:  "quarter, counter-clockwise on screen",
			start: pcb.Position{X: 1, Y: 0}, mid: pcb.Position{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2}, end: pcb.Position{X: 0, Y: 1},
			wantRadius: 1, wantSweepPoints: circleSegments/4 + 1,
		},
		{
			name:  "three quarters the long way",
			start: pcb.Position{X: 1, Y: 0}, mid: pcb.Position{X: -1, Y: 0}, end: pcb.Position{X: 0, Y: -1},
			wantRadius: 1, wantSweepPoints: 3*circleSegments/4 + 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := arcPoints(tt.start, tt.mid, tt.end)
			if len(pts) != tt.wantSweepPoints {
				t.Errorf("got %d points, want %d", len(pts), tt.wantSweepPoints)
			}
			if pts[0] != tt.start || pts[len(pts)-1] != tt.end {
				t.Errorf("arc runs %v..%v", pts[0], pts[len(pts)-1])
			}
			for _, p := range pts {
				if r := distance(tt.wantCenter, p); math.Abs(r-tt.wantRadius) > 1e-9 {
					t.Fatalf("point %v off the circle (r=%v)", p, r)
				}
			}
		})
	}

	straight := arcPoints(pcb.Position{X: 0, Y: 0}, pcb.Position{X: 1, Y: 1}, pcb.Position{X: 2, Y: 2})
	if len(straight) != 3 {
		t.Errorf("collinear arc = %v, want the three points", straight)
	}
}

func TestNetColor(t *testing.T) {
	r := New(NewCamera(10, 10))
	gnd := &pcb.Net{Number: 2, Name: "GND"}
	vcc := &pcb.Net{Number: 1, Name: "+5V"}
	base := r.Theme.Pad

	if r.netColor(gnd, base) != base {
		t.Error("without a highlight the base color is kept")
	}

	r.HighlightNet = "GND"
	if r.netColor(gnd, base) != r.Theme.Highlight {
		t.Error("highlighted net should use the highlight color")
	}
	if got := r.netColor(vcc, base); got.A != dimAlpha {
		t.Errorf("other nets alpha = %d, want %d", got.A, dimAlpha)
	}
	if got := r.netColor(nil, base); got.A != dimAlpha {
		t.Error("unconnected items should be dimmed too")
	}
}

func TestInView(t *testing.T) {
	c := NewCamera(800, 600)
	c.CenterX, c.CenterY = 100, 100
	view := c.VisibleBounds()

	if want := (pcb.BoundingBox{Min: pcb.Position{X: 60, Y: 70}, Max: pcb.Position{X: 140, Y: 130}}); view != want {
		t.Fatalf("VisibleBounds() = %+v, want %+v", view, want)
	}

	tests := []struct {
		p     pcb.Position
		reach float64
		want  bool
	}{
		{pcb.Position{X: 100, Y: 100}, 0, true},
		{pcb.Position{X: 150, Y: 100}, 5, false},
		{pcb.Position{X: 150, Y: 100}, 10, true},
		{pcb.Position{X: 100, Y: 20}, 10, false},
	}
	for _, tt := range tests {
		if got := inView(view, tt.p, tt.reach); got != tt.want {
			t.Errorf("inView(%v, %v) = %v, want %v", tt.p, tt.reach, got, tt.want)
		}
	}
}
