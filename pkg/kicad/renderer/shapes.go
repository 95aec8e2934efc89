package renderer

import (
	"math"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/pcb"
)

// circleSegments is the number of chords used for a full circle
const circleSegments = 72

// padCorners returns the corners of a pad rectangle centered on c and
// turned by the KiCad angle in degrees
func padCorners(c pcb.Position, size pcb.Size, angle pcb.Angle) []pcb.Position {
	hw, hh := size.Width/2, size.Height/2
	sin, cos := math.Sincos(-float64(angle) * math.Pi / 180)

	local := [][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	out := make([]pcb.Position, len(local))
	for i, p := range local {
		out[i] = pcb.Position{
			X: c.X + p[0]*cos - p[1]*sin,
			Y: c.Y + p[0]*sin + p[1]*cos,
		}
	}
	return out
}

// circlePoints returns a closed polygon approximating a circle. The first
// point is repeated at the end.
func circlePoints(c pcb.Position, r float64) []pcb.Position {
	out := make([]pcb.Position, circleSegments+1)
	for i := range out {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / circleSegments)
		out[i] = pcb.Position{X: c.X + r*cos, Y: c.Y + r*sin}
	}
	return out
}

// arcPoints approximates the arc from start through mid to end. Collinear
// points give the straight polyline.
func arcPoints(start, mid, end pcb.Position) []pcb.Position {
	center, ok := circumcenter(start, mid, end)
	if !ok {
		return []pcb.Position{start, mid, end}
	}

	r := math.Hypot(start.X-center.X, start.Y-center.Y)
	a0 := math.Atan2(start.Y-center.Y, start.X-center.X)
	am := math.Atan2(mid.Y-center.Y, mid.X-center.X)
	a1 := math.Atan2(end.Y-center.Y, end.X-center.X)

	// sweep from a0 to a1 in the direction that passes am
	sweep := normalizeRad(a1 - a0)
	if normalizeRad(am-a0) > sweep {
		sweep -= 2 * math.Pi
	}

	n := max(int(math.Round(math.Abs(sweep)/(2*math.Pi)*circleSegments)), 2)
	out := make([]pcb.Position, n+1)
	for i := range out {
		sin, cos := math.Sincos(a0 + sweep*float64(i)/float64(n))
		out[i] = pcb.Position{X: center.X + r*cos, Y: center.Y + r*sin}
	}
	out[0], out[n] = start, end
	return out
}

// circumcenter returns the center of the circle through three points
func circumcenter(a, b, c pcb.Position) (pcb.Position, bool) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-12 {
		return pcb.Position{}, false
	}
	a2 := a.X*a.X + a.Y*a.Y
	b2 := b.X*b.X + b.Y*b.Y
	c2 := c.X*c.X + c.Y*c.Y
	return pcb.Position{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}, true
}

// normalizeRad maps an angle onto [0, 2π)
func normalizeRad(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// rectPoints returns the closed outline of an axis aligned rectangle
func rectPoints(start, end pcb.Position) []pcb.Position {
	return []pcb.Position{
		start,
		{X: end.X, Y: start.Y},
		end,
		{X: start.X, Y: end.Y},
		start,
	}
}
