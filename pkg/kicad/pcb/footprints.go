package pcb

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp"
	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp/kicadsexp"
)

// parsePad extracts a pad definition from a footprint
// Expected format: (pad "number" type shape (at x y [angle]) (size w h) (layers ...) (net n) ...)
func parsePad(node kicadsexp.Sexp, netMap *NetMap) (*Pad, error) {
	pad := &Pad{}
	var err error

	if pad.Number, err = sexp.GetString(node, 1); err != nil {
		return nil, fmt.Errorf("failed to parse pad number: %w", err)
	}
	if pad.Type, err = sexp.GetString(node, 2); err != nil {
		return nil, fmt.Errorf("failed to parse pad type: %w", err)
	}
	if pad.Shape, err = sexp.GetString(node, 3); err != nil {
		return nil, fmt.Errorf("failed to parse pad shape: %w", err)
	}

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	if pad.Position, err = sexp.GetPosition(atNode); err != nil {
		return nil, fmt.Errorf("failed to parse pad position: %w", err)
	}

	sizeNode, found := sexp.FindNode(node, "size")
	if !found {
		return nil, fmt.Errorf("missing required 'size' field")
	}
	size, err := sexp.GetPositionXY(sizeNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad size: %w", err)
	}
	pad.Size = Size{Width: size.X, Height: size.Y}

	// (drill d) or (drill oval w h); the first number is the diameter
	if drill, ok := sexp.GetChildFloat(node, "drill"); ok {
		pad.Drill = drill
	}

	layersNode, found := sexp.FindNode(node, "layers")
	if !found {
		return nil, fmt.Errorf("missing required 'layers' field")
	}
	pad.Layers = LayerSet(sexp.GetLayers(layersNode))

	pad.Net = lookupNet(node, netMap)
	if pad.Net == nil {
		// pads carry the net name too, so an undeclared net still shows
		if netNode, ok := sexp.FindNode(node, "net"); ok {
			if name, err := sexp.GetString(netNode, 2); err == nil && name != "" {
				num, _ := sexp.GetInt(netNode, 1)
				pad.Net = &Net{Number: num, Name: name}
			}
		}
	}

	return pad, nil
}

// splitFootprintID splits "library:name"
func splitFootprintID(id string) (library, name string) {
	if lib, n, ok := strings.Cut(id, ":"); ok && lib != "" {
		return lib, n
	}
	return "", id
}

// parseFootprint extracts a footprint (component) definition
// Expected format: (footprint "library:name" (layer "layer") (at x y [angle]) ...)
func parseFootprint(node kicadsexp.Sexp, netMap *NetMap) (*Footprint, error) {
	footprint := &Footprint{}

	id, err := sexp.GetString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprint name: %w", err)
	}
	footprint.Library, footprint.Name = splitFootprintID(id)

	var ok bool
	if footprint.Layer, ok = sexp.GetChildString(node, "layer"); !ok {
		return nil, fmt.Errorf("missing required 'layer' field")
	}

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	if footprint.Position, err = sexp.GetPosition(atNode); err != nil {
		return nil, fmt.Errorf("failed to parse position: %w", err)
	}

	// KiCad 8 stores fields as properties, KiCad 6 and 7 as fp_text
	fields := append(sexp.FindAllNodes(node, "property"), sexp.FindAllNodes(node, "fp_text")...)
	for _, fieldNode := range fields {
		prop, err := sexp.GetProperty(fieldNode)
		if err != nil {
			continue
		}
		switch prop.Key {
		case "Reference":
			footprint.Reference = prop.Value
			// a bare property without a position is not drawn
			if _, drawn := sexp.FindNode(fieldNode, "at"); drawn {
				footprint.ReferenceHidden = prop.Hidden
			}
		case "Value":
			footprint.Value = prop.Value
		}
	}

	for _, padNode := range sexp.FindAllNodes(node, "pad") {
		pad, err := parsePad(padNode, netMap)
		if err != nil {
			return nil, fmt.Errorf("footprint %s: %w", id, err)
		}
		footprint.Pads = append(footprint.Pads, *pad)
	}

	graphics, err := parseGraphics(node, "fp_")
	if err != nil {
		return nil, fmt.Errorf("footprint %s: %w", id, err)
	}
	footprint.Graphics = flattenGraphics(graphics)

	return footprint, nil
}

// flattenGraphics converts footprint drawings into the generic Graphic form
func flattenGraphics(g *Graphics) []Graphic {
	out := make([]Graphic, 0, g.Count())
	for _, l := range g.Lines {
		out = append(out, Graphic{Type: "line", Layer: l.Layer, Start: l.Start, End: l.End, Stroke: l.Stroke})
	}
	for _, c := range g.Circles {
		out = append(out, Graphic{Type: "circle", Layer: c.Layer, Center: c.Center, End: c.End, Stroke: c.Stroke, Fill: c.Fill})
	}
	for _, a := range g.Arcs {
		out = append(out, Graphic{Type: "arc", Layer: a.Layer, Start: a.Start, Mid: a.Mid, End: a.End, Stroke: a.Stroke})
	}
	for _, r := range g.Rects {
		out = append(out, Graphic{Type: "rect", Layer: r.Layer, Start: r.Start, End: r.End, Stroke: r.Stroke, Fill: r.Fill})
	}
	for _, p := range g.Polys {
		out = append(out, Graphic{Type: "polygon", Layer: p.Layer, Points: p.Points, Stroke: p.Stroke, Fill: p.Fill})
	}
	return out
}

// parseFootprints extracts all footprint definitions from the root node
func parseFootprints(root kicadsexp.Sexp, netMap *NetMap) ([]Footprint, error) {
	var footprints []Footprint

	for _, fpNode := range sexp.FindAllNodes(root, "footprint") {
		footprint, err := parseFootprint(fpNode, netMap)
		if err != nil {
			return nil, err
		}
		footprints = append(footprints, *footprint)
	}

	return footprints, nil
}
