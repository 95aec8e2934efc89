// Package renderer draws a parsed KiCad board with Gio.
package renderer

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/pcb"
)

// dimAlpha is the alpha of items off the highlighted net
const dimAlpha = 60

// footprintReach bounds how far footprint pads and graphics extend from the
// footprint origin, in millimetres
const footprintReach = 10

// Renderer draws boards through a camera
type Renderer struct {
	Camera *Camera
	Layers *LayerConfig
	Theme  Theme

	// HighlightNet dims every copper item on other nets when set
	HighlightNet string
}

// New returns a renderer drawing every layer in the classic theme
func New(camera *Camera) *Renderer {
	return &Renderer{Camera: camera, Layers: NewLayerConfig(), Theme: ClassicTheme}
}

// Render draws the board, bottom layers first
func (r *Renderer) Render(gtx layout.Context, board *pcb.Board) {
	paint.Fill(gtx.Ops, r.Theme.Background)
	if board == nil {
		return
	}

	r.renderSubstrate(gtx, board)
	r.renderGraphics(gtx, board)
	r.renderFootprintGraphics(gtx, board)
	r.renderTracks(gtx, board)
	r.renderVias(gtx, board)
	r.renderPads(gtx, board)
}

// renderSubstrate fills the board outline: the Edge.Cuts circles when the
// board has them, its bounding box otherwise
func (r *Renderer) renderSubstrate(gtx layout.Context, board *pcb.Board) {
	filled := false
	for _, c := range board.Graphics.Circles {
		if c.Layer != "Edge.Cuts" {
			continue
		}
		r.fillPolygon(gtx, circlePoints(c.Center, distance(c.Center, c.End)), r.Theme.Substrate)
		filled = true
	}
	if filled {
		return
	}

	bbox := board.GetOutline()
	if bbox.IsEmpty() {
		return
	}
	r.fillPolygon(gtx, rectPoints(bbox.Min, bbox.Max), r.Theme.Substrate)
}

func (r *Renderer) renderGraphics(gtx layout.Context, board *pcb.Board) {
	g := board.Graphics
	for _, l := range g.Lines {
		if r.Layers.IsVisible(l.Layer) {
			r.strokePolyline(gtx, []pcb.Position{l.Start, l.End}, l.Stroke.Width, r.Theme.LayerColor(l.Layer))
		}
	}
	for _, c := range g.Circles {
		if r.Layers.IsVisible(c.Layer) {
			r.strokePolyline(gtx, circlePoints(c.Center, distance(c.Center, c.End)), c.Stroke.Width, r.Theme.LayerColor(c.Layer))
		}
	}
	for _, a := range g.Arcs {
		if r.Layers.IsVisible(a.Layer) {
			r.strokePolyline(gtx, arcPoints(a.Start, a.Mid, a.End), a.Stroke.Width, r.Theme.LayerColor(a.Layer))
		}
	}
	for _, rc := range g.Rects {
		if r.Layers.IsVisible(rc.Layer) {
			r.strokePolyline(gtx, rectPoints(rc.Start, rc.End), rc.Stroke.Width, r.Theme.LayerColor(rc.Layer))
		}
	}
	for _, p := range g.Polys {
		if r.Layers.IsVisible(p.Layer) && len(p.Points) > 1 {
			r.strokePolyline(gtx, closed(p.Points), p.Stroke.Width, r.Theme.LayerColor(p.Layer))
		}
	}
}

func (r *Renderer) renderFootprintGraphics(gtx layout.Context, board *pcb.Board) {
	view := r.Camera.VisibleBounds()
	for i := range board.Footprints {
		fp := &board.Footprints[i]
		if !inView(view, fp.Position.Position, footprintReach) {
			continue
		}
		place := func(pts ...pcb.Position) []pcb.Position {
			out := make([]pcb.Position, len(pts))
			for j, p := range pts {
				out[j] = fp.TransformPosition(pcb.PositionAngle{Position: p})
			}
			return out
		}

		for _, g := range fp.Graphics {
			if !r.Layers.IsVisible(g.Layer) {
				continue
			}
			col := r.Theme.LayerColor(g.Layer)
			switch g.Type {
			case "line":
				r.strokePolyline(gtx, place(g.Start, g.End), g.Stroke.Width, col)
			case "circle":
				r.strokePolyline(gtx, place(circlePoints(g.Center, distance(g.Center, g.End))...), g.Stroke.Width, col)
			case "arc":
				r.strokePolyline(gtx, place(arcPoints(g.Start, g.Mid, g.End)...), g.Stroke.Width, col)
			case "rect":
				r.strokePolyline(gtx, place(rectPoints(g.Start, g.End)...), g.Stroke.Width, col)
			case "polygon":
				if len(g.Points) > 1 {
					r.strokePolyline(gtx, place(closed(g.Points)...), g.Stroke.Width, col)
				}
			}
		}
	}
}

func (r *Renderer) renderTracks(gtx layout.Context, board *pcb.Board) {
	for _, t := range board.Tracks {
		if !r.Layers.IsVisible(t.Layer) {
			continue
		}
		col, width := r.netColor(t.Net, r.Theme.LayerColor(t.Layer)), t.Width
		if r.highlighted(t.Net) {
			width *= 1.5
		}
		r.strokePolyline(gtx, []pcb.Position{t.Start, t.End}, width, col)
	}
}

func (r *Renderer) renderVias(gtx layout.Context, board *pcb.Board) {
	view := r.Camera.VisibleBounds()
	for _, v := range board.Vias {
		if !r.Layers.AnyVisible(v.Layers...) || !inView(view, v.Position, v.Size) {
			continue
		}
		r.fillPolygon(gtx, circlePoints(v.Position, v.Size/2), r.netColor(v.Net, r.Theme.Via))
		if v.Drill > 0 && v.Drill < v.Size {
			r.fillPolygon(gtx, circlePoints(v.Position, v.Drill/2), r.Theme.Drill)
		}
	}
}

func (r *Renderer) renderPads(gtx layout.Context, board *pcb.Board) {
	view := r.Camera.VisibleBounds()
	for i := range board.Footprints {
		fp := &board.Footprints[i]
		if !inView(view, fp.Position.Position, footprintReach) {
			continue
		}
		for _, pad := range fp.Pads {
			if !r.padVisible(pad) {
				continue
			}
			center := fp.TransformPosition(pad.Position)
			col := r.netColor(pad.Net, r.Theme.Pad)

			switch pad.Shape {
			case "circle", "oval":
				radius := (pad.Size.Width + pad.Size.Height) / 4
				r.fillPolygon(gtx, circlePoints(center, radius), col)
			default:
				r.fillPolygon(gtx, padCorners(center, pad.Size, pad.Position.Angle), col)
			}
			if pad.Drill > 0 {
				r.fillPolygon(gtx, circlePoints(center, pad.Drill/2), r.Theme.Background)
			}
		}
	}
}

// padVisible reports whether any copper layer of a pad is drawn
func (r *Renderer) padVisible(pad pcb.Pad) bool {
	for _, l := range []string{"F.Cu", "B.Cu"} {
		if pad.Layers.Has(l) && r.Layers.IsVisible(l) {
			return true
		}
	}
	return false
}

func (r *Renderer) highlighted(net *pcb.Net) bool {
	return r.HighlightNet != "" && net != nil && net.Name == r.HighlightNet
}

// netColor returns base, the highlight color for the highlighted net, or
// base dimmed for other nets while a net is highlighted
func (r *Renderer) netColor(net *pcb.Net, base color.NRGBA) color.NRGBA {
	switch {
	case r.HighlightNet == "":
		return base
	case r.highlighted(net):
		return r.Theme.Highlight
	default:
		base.A = dimAlpha
		return base
	}
}

// strokePolyline draws connected segments through board points. Widths are
// in millimetres and never thinner than a pixel.
func (r *Renderer) strokePolyline(gtx layout.Context, pts []pcb.Position, width float64, col color.NRGBA) {
	if len(pts) < 2 {
		return
	}
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(r.screenPoint(pts[0]))
	for _, p := range pts[1:] {
		path.LineTo(r.screenPoint(p))
	}

	px := max(width*r.Camera.Zoom, 1)
	paint.FillShape(gtx.Ops, col, clip.Stroke{Path: path.End(), Width: float32(px)}.Op())
}

// fillPolygon fills the polygon through board points
func (r *Renderer) fillPolygon(gtx layout.Context, pts []pcb.Position, col color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(r.screenPoint(pts[0]))
	for _, p := range pts[1:] {
		path.LineTo(r.screenPoint(p))
	}
	path.Close()
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func (r *Renderer) screenPoint(p pcb.Position) f32.Point {
	x, y := r.Camera.WorldToScreen(p)
	return f32.Pt(float32(x), float32(y))
}

// inView reports whether anything within reach of p can be on screen
func inView(view pcb.BoundingBox, p pcb.Position, reach float64) bool {
	item := pcb.BoundingBox{
		Min: pcb.Position{X: p.X - reach, Y: p.Y - reach},
		Max: pcb.Position{X: p.X + reach, Y: p.Y + reach},
	}
	return view.Intersects(item)
}

func distance(a, b pcb.Position) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// closed returns pts with the first point repeated at the end
func closed(pts []pcb.Position) []pcb.Position {
	out := make([]pcb.Position, 0, len(pts)+1)
	return append(append(out, pts...), pts[0])
}
