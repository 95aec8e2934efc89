package pcb

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp"
	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp/kicadsexp"
)

// Board drawings use the gr_ prefix, footprint drawings fp_. Both share
// one layout, so the parsers below take either.

// IsDrawing reports whether key names a board drawing node
func IsDrawing(key string) bool {
	return strings.HasPrefix(key, "gr_")
}

// shapeStyle fills in the stroke, fill and layer every drawing carries
func shapeStyle(node kicadsexp.Sexp) (stroke Stroke, fill Fill, layer string, err error) {
	stroke = Stroke{Width: 0.15, Type: "solid"}
	fill = Fill{Type: "none"}

	if strokeNode, found := sexp.FindNode(node, "stroke"); found {
		if stroke, err = sexp.GetStroke(strokeNode); err != nil {
			return stroke, fill, "", fmt.Errorf("failed to parse stroke: %w", err)
		}
	} else if width, ok := sexp.GetChildFloat(node, "width"); ok {
		// KiCad 6 writes (width W) directly on the shape
		stroke.Width = width
	}

	if fillNode, found := sexp.FindNode(node, "fill"); found {
		if f, err := sexp.GetFill(fillNode); err == nil {
			fill = f
		}
	}

	layer, ok := sexp.GetChildString(node, "layer")
	if !ok {
		return stroke, fill, "", fmt.Errorf("missing required 'layer' field")
	}
	return stroke, fill, layer, nil
}

// requireXY returns the (key X Y) child of node or an error naming it
func requireXY(node kicadsexp.Sexp, key string) (Position, error) {
	pos, ok := sexp.GetChildXY(node, key)
	if !ok {
		return Position{}, fmt.Errorf("missing required '%s' position", key)
	}
	return pos, nil
}

// parseGrLine extracts a line graphic element
// Expected format: (gr_line (start x1 y1) (end x2 y2) (stroke ...) (layer "F.Cu"))
func parseGrLine(node kicadsexp.Sexp) (*GrLine, error) {
	line := &GrLine{}
	var err error

	if line.Start, err = requireXY(node, "start"); err != nil {
		return nil, err
	}
	if line.End, err = requireXY(node, "end"); err != nil {
		return nil, err
	}
	if line.Stroke, _, line.Layer, err = shapeStyle(node); err != nil {
		return nil, err
	}

	return line, nil
}

// parseGrCircle extracts a circle graphic element
// Note: KiCad defines circles by center and a point on the circumference (end)
func parseGrCircle(node kicadsexp.Sexp) (*GrCircle, error) {
	circle := &GrCircle{}
	var err error

	if circle.Center, err = requireXY(node, "center"); err != nil {
		return nil, err
	}
	if circle.End, err = requireXY(node, "end"); err != nil {
		return nil, err
	}
	if circle.Stroke, circle.Fill, circle.Layer, err = shapeStyle(node); err != nil {
		return nil, err
	}

	return circle, nil
}

// parseGrArc extracts an arc graphic element
// Expected format: (gr_arc (start x y) (mid x y) (end x y) (stroke ...) (layer "F.Cu"))
func parseGrArc(node kicadsexp.Sexp) (*GrArc, error) {
	arc := &GrArc{}
	var err error

	if arc.Start, err = requireXY(node, "start"); err != nil {
		return nil, err
	}
	if arc.Mid, err = requireXY(node, "mid"); err != nil {
		return nil, err
	}
	if arc.End, err = requireXY(node, "end"); err != nil {
		return nil, err
	}
	if arc.Stroke, _, arc.Layer, err = shapeStyle(node); err != nil {
		return nil, err
	}

	return arc, nil
}

// parseGrRect extracts a rectangle graphic element
func parseGrRect(node kicadsexp.Sexp) (*GrRect, error) {
	rect := &GrRect{}
	var err error

	if rect.Start, err = requireXY(node, "start"); err != nil {
		return nil, err
	}
	if rect.End, err = requireXY(node, "end"); err != nil {
		return nil, err
	}
	if rect.Stroke, rect.Fill, rect.Layer, err = shapeStyle(node); err != nil {
		return nil, err
	}

	return rect, nil
}

// parseGrPoly extracts a polygon graphic element
// Expected format: (gr_poly (pts (xy x y) (xy x y) ...) (stroke ...) (fill ...) (layer "F.Cu"))
func parseGrPoly(node kicadsexp.Sexp) (*GrPoly, error) {
	poly := &GrPoly{}

	ptsNode, found := sexp.FindNode(node, "pts")
	if !found {
		return nil, fmt.Errorf("missing required 'pts' field")
	}

	xyNodes := sexp.FindAllNodes(ptsNode, "xy")
	if len(xyNodes) == 0 {
		return nil, fmt.Errorf("no points defined in polygon")
	}
	for _, xyNode := range xyNodes {
		pt, err := sexp.GetPositionXY(xyNode)
		if err != nil {
			return nil, err
		}
		poly.Points = append(poly.Points, pt)
	}

	var err error
	if poly.Stroke, poly.Fill, poly.Layer, err = shapeStyle(node); err != nil {
		return nil, err
	}

	return poly, nil
}

// parseGrText extracts a text graphic element
// Expected format: (gr_text "text" (at x y angle) (layer "F.Cu") (effects ...))
func parseGrText(node kicadsexp.Sexp) (*GrText, error) {
	text := &GrText{
		Size: Size{Width: 1.0, Height: 1.0},
	}

	content, err := sexp.GetString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse text content: %w", err)
	}
	text.Text = content

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	at, err := sexp.GetPosition(atNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse position: %w", err)
	}
	text.Position, text.Angle = at.Position, at.Angle

	var ok bool
	if text.Layer, ok = sexp.GetChildString(node, "layer"); !ok {
		return nil, fmt.Errorf("missing required 'layer' field")
	}

	if effectsNode, found := sexp.FindNode(node, "effects"); found {
		if fontNode, found := sexp.FindNode(effectsNode, "font"); found {
			if sizeNode, found := sexp.FindNode(fontNode, "size"); found {
				if w, err := sexp.GetFloat(sizeNode, 1); err == nil {
					text.Size.Width = w
				}
				if h, err := sexp.GetFloat(sizeNode, 2); err == nil {
					text.Size.Height = h
				}
			}
		}
	}

	return text, nil
}

// parseGraphics extracts every drawing under root whose key starts with
// prefix: line, circle, arc, rect, poly and text
func parseGraphics(root kicadsexp.Sexp, prefix string) (*Graphics, error) {
	graphics := &Graphics{}

	for _, node := range sexp.FindAllNodes(root, prefix+"line") {
		line, err := parseGrLine(node)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %sline: %w", prefix, err)
		}
		graphics.Lines = append(graphics.Lines, *line)
	}

	for _, node := range sexp.FindAllNodes(root, prefix+"circle") {
		circle, err := parseGrCircle(node)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %scircle: %w", prefix, err)
		}
		graphics.Circles = append(graphics.Circles, *circle)
	}

	for _, node := range sexp.FindAllNodes(root, prefix+"arc") {
		arc, err := parseGrArc(node)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %sarc: %w", prefix, err)
		}
		graphics.Arcs = append(graphics.Arcs, *arc)
	}

	for _, node := range sexp.FindAllNodes(root, prefix+"rect") {
		rect, err := parseGrRect(node)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %srect: %w", prefix, err)
		}
		graphics.Rects = append(graphics.Rects, *rect)
	}

	for _, node := range sexp.FindAllNodes(root, prefix+"poly") {
		poly, err := parseGrPoly(node)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %spoly: %w", prefix, err)
		}
		graphics.Polys = append(graphics.Polys, *poly)
	}

	// footprint texts are fields, parsed with the footprint
	if prefix == "gr_" {
		for _, node := range sexp.FindAllNodes(root, "gr_text") {
			text, err := parseGrText(node)
			if err != nil {
				return nil, fmt.Errorf("failed to parse gr_text: %w", err)
			}
			graphics.Texts = append(graphics.Texts, *text)
		}
	}

	return graphics, nil
}
