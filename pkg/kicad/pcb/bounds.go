package pcb

import "math"

// GetBoundingBox calculates the bounding box of the entire board
// Includes tracks, pads, graphics, and vias
func (b *Board) GetBoundingBox() BoundingBox {
	bbox := NewBoundingBox()

	for _, track := range b.Tracks {
		bbox.Expand(track.Start)
		bbox.Expand(track.End)
	}

	for _, via := range b.Vias {
		expandRadius(&bbox, via.Position, via.Size/2)
	}

	for i := range b.Footprints {
		bbox.ExpandBox(b.Footprints[i].GetBoundingBox())
	}

	bbox.ExpandBox(b.graphicsBounds(""))
	return bbox
}

// GetOutline returns the bounds of the Edge.Cuts drawings, or the whole
// board when it has none
func (b *Board) GetOutline() BoundingBox {
	bbox := b.graphicsBounds("Edge.Cuts")
	if bbox.IsEmpty() {
		return b.GetBoundingBox()
	}
	return bbox
}

// graphicsBounds covers the board drawings on layer, or on every layer
// when layer is empty
func (b *Board) graphicsBounds(layer string) BoundingBox {
	bbox := NewBoundingBox()
	on := func(l string) bool { return layer == "" || l == layer }

	for _, line := range b.Graphics.Lines {
		if on(line.Layer) {
			bbox.Expand(line.Start)
			bbox.Expand(line.End)
		}
	}

	for _, circle := range b.Graphics.Circles {
		if on(circle.Layer) {
			r := math.Hypot(circle.End.X-circle.Center.X, circle.End.Y-circle.Center.Y)
			expandRadius(&bbox, circle.Center, r)
		}
	}

	// start, mid and end are close enough for a view box
	for _, arc := range b.Graphics.Arcs {
		if on(arc.Layer) {
			bbox.Expand(arc.Start)
			bbox.Expand(arc.Mid)
			bbox.Expand(arc.End)
		}
	}

	for _, rect := range b.Graphics.Rects {
		if on(rect.Layer) {
			bbox.Expand(rect.Start)
			bbox.Expand(rect.End)
		}
	}

	for _, poly := range b.Graphics.Polys {
		if on(poly.Layer) {
			for _, point := range poly.Points {
				bbox.Expand(point)
			}
		}
	}

	for _, text := range b.Graphics.Texts {
		if on(text.Layer) {
			bbox.Expand(text.Position)
		}
	}

	return bbox
}

func expandRadius(bbox *BoundingBox, c Position, r float64) {
	bbox.Expand(Position{X: c.X - r, Y: c.Y - r})
	bbox.Expand(Position{X: c.X + r, Y: c.Y + r})
}

// GetBoundingBox calculates the bounding box of a footprint
// Includes all pads with their positions relative to footprint position
func (fp *Footprint) GetBoundingBox() BoundingBox {
	bbox := NewBoundingBox()

	for _, pad := range fp.Pads {
		absPos := fp.TransformPosition(pad.Position)

		// pads are approximated as axis aligned rectangles
		halfWidth := pad.Size.Width / 2.0
		halfHeight := pad.Size.Height / 2.0

		bbox.Expand(Position{X: absPos.X - halfWidth, Y: absPos.Y - halfHeight})
		bbox.Expand(Position{X: absPos.X + halfWidth, Y: absPos.Y + halfHeight})
	}

	if len(fp.Pads) == 0 {
		bbox.Expand(fp.Position.Position)
	}

	return bbox
}

// TransformPosition maps a footprint-relative position to board
// coordinates. KiCad angles turn counter-clockwise on screen, which with Y
// pointing down is a negative rotation in board coordinates.
func (fp *Footprint) TransformPosition(relPos PositionAngle) Position {
	x, y := relPos.X, relPos.Y

	if fp.Position.Angle != 0 {
		angleRad := -float64(fp.Position.Angle) * math.Pi / 180.0
		cos := math.Cos(angleRad)
		sin := math.Sin(angleRad)
		x, y = x*cos-y*sin, x*sin+y*cos
	}

	return Position{X: x + fp.Position.X, Y: y + fp.Position.Y}
}
