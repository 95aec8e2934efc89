package pcb

import (
	"fmt"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp"
	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp/kicadsexp"
)

// lookupNet resolves the (net N) child of node against netMap
func lookupNet(node kicadsexp.Sexp, netMap *NetMap) *Net {
	netNode, found := sexp.FindNode(node, "net")
	if !found || netMap == nil {
		return nil
	}
	netNum, err := sexp.GetInt(netNode, 1)
	if err != nil {
		// KiCad 9 refers to nets by name
		name, err := sexp.GetString(netNode, 1)
		if err != nil {
			return nil
		}
		net, _ := netMap.GetByName(name)
		return net
	}
	net, _ := netMap.GetByNumber(netNum)
	return net
}

// parseSegment extracts a track segment (copper trace)
// Expected format: (segment (start x y) (end x y) (width w) (layer "layer") (net n) ...)
func parseSegment(node kicadsexp.Sexp, netMap *NetMap) (*Track, error) {
	track := &Track{
		Width: 0.15,
	}

	var ok bool
	if track.Start, ok = sexp.GetChildXY(node, "start"); !ok {
		return nil, fmt.Errorf("missing required 'start' position")
	}
	if track.End, ok = sexp.GetChildXY(node, "end"); !ok {
		return nil, fmt.Errorf("missing required 'end' position")
	}

	if width, ok := sexp.GetChildFloat(node, "width"); ok {
		track.Width = width
	}

	if track.Layer, ok = sexp.GetChildString(node, "layer"); !ok {
		return nil, fmt.Errorf("missing required 'layer' field")
	}

	track.Net = lookupNet(node, netMap)
	track.Locked = sexp.HasSymbol(node, "locked")

	return track, nil
}

// parseVia extracts a via definition
// Expected format: (via (at x y) (size diameter) (drill diameter) (layers "L1" "L2") (net n) ...)
func parseVia(node kicadsexp.Sexp, netMap *NetMap) (*Via, error) {
	via := &Via{}

	var ok bool
	if via.Position, ok = sexp.GetChildXY(node, "at"); !ok {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	if via.Size, ok = sexp.GetChildFloat(node, "size"); !ok {
		return nil, fmt.Errorf("missing required 'size' field")
	}
	if via.Drill, ok = sexp.GetChildFloat(node, "drill"); !ok {
		return nil, fmt.Errorf("missing required 'drill' field")
	}

	layersNode, found := sexp.FindNode(node, "layers")
	if !found {
		return nil, fmt.Errorf("missing required 'layers' field")
	}
	via.Layers = LayerSet(sexp.GetLayers(layersNode))

	via.Net = lookupNet(node, netMap)
	via.Locked = sexp.HasSymbol(node, "locked")

	return via, nil
}

// parseTracks extracts all track segments from the root node.
// Arc tracks are kept as their chord.
func parseTracks(root kicadsexp.Sexp, netMap *NetMap) ([]Track, error) {
	var tracks []Track

	for _, key := range []string{"segment", "arc"} {
		for _, segmentNode := range sexp.FindAllNodes(root, key) {
			track, err := parseSegment(segmentNode, netMap)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", key, err)
			}
			tracks = append(tracks, *track)
		}
	}

	return tracks, nil
}

// parseVias extracts all via definitions from the root node
func parseVias(root kicadsexp.Sexp, netMap *NetMap) ([]Via, error) {
	var vias []Via

	for _, viaNode := range sexp.FindAllNodes(root, "via") {
		via, err := parseVia(viaNode, netMap)
		if err != nil {
			return nil, fmt.Errorf("failed to parse via: %w", err)
		}
		vias = append(vias, *via)
	}

	return vias, nil
}
