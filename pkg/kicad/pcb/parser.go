package pcb

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp"
	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp/kicadsexp"
)

// Minimum supported KiCad version (6.0 = 20211014)
const MinSupportedVersion = 20211014

// ErrNotBoard is returned when the input is not a kicad_pcb tree
var ErrNotBoard = errors.New("not a KiCad PCB file")

// ParseFile reads and parses a KiCad board file
func ParseFile(filename string) (*Board, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads and parses a KiCad board from an io.Reader
func Parse(r io.Reader) (*Board, error) {
	root, err := readRoot(r)
	if err != nil {
		return nil, err
	}
	return parseBoard(root)
}

// readRoot parses r and returns its (kicad_pcb ...) list
func readRoot(r io.Reader) (*kicadsexp.List, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}

	if len(sexps) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrNotBoard)
	}

	root, ok := sexps[0].(*kicadsexp.List)
	if !ok || root.Key() != "kicad_pcb" {
		return nil, fmt.Errorf("%w: expected 'kicad_pcb', got %s", ErrNotBoard, sexps[0])
	}
	return root, nil
}

// parseBoard builds the board model from a kicad_pcb tree
func parseBoard(root *kicadsexp.List) (*Board, error) {
	version, generator, err := parseHeader(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	board := &Board{
		Version:   version,
		Generator: generator,
	}

	if generalNode, found := sexp.FindNode(root, "general"); found {
		general, err := parseGeneral(generalNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse general section: %w", err)
		}
		board.General = *general
	}

	if layersNode, found := sexp.FindNode(root, "layers"); found {
		layers, err := parseLayers(layersNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layers section: %w", err)
		}
		board.Layers = layers
	}

	nets, err := parseNets(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse nets: %w", err)
	}
	board.Nets = nets

	graphics, err := parseGraphics(root, "gr_")
	if err != nil {
		return nil, fmt.Errorf("failed to parse graphics: %w", err)
	}
	board.Graphics = *graphics

	netMap := NewNetMap(board.Nets)

	if board.Tracks, err = parseTracks(root, netMap); err != nil {
		return nil, fmt.Errorf("failed to parse tracks: %w", err)
	}

	if board.Vias, err = parseVias(root, netMap); err != nil {
		return nil, fmt.Errorf("failed to parse vias: %w", err)
	}

	if board.Footprints, err = parseFootprints(root, netMap); err != nil {
		return nil, fmt.Errorf("failed to parse footprints: %w", err)
	}

	return board, nil
}

// parseHeader extracts version and generator information from the root node
// Expected format: (kicad_pcb (version 20221018) (generator pcbnew) ...)
func parseHeader(root kicadsexp.Sexp) (version int, generator string, err error) {
	versionNode, found := sexp.FindNode(root, "version")
	if !found {
		return 0, "", fmt.Errorf("missing required 'version' field")
	}

	ver, err := sexp.GetInt(versionNode, 1)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}

	if ver < MinSupportedVersion {
		return 0, "", fmt.Errorf("unsupported KiCad version: %d (minimum required: %d / KiCad 6.0)", ver, MinSupportedVersion)
	}

	gen := "unknown"
	if name, ok := sexp.GetChildString(root, "host"); ok {
		// (host pcbnew "(6.0.0)")
		gen = name
	} else if name, ok := sexp.GetChildString(root, "generator"); ok {
		gen = name
	}

	return ver, gen, nil
}

// parseGeneral extracts general board properties
// Expected format: (general (thickness 1.6) (title "Board") ...)
func parseGeneral(node kicadsexp.Sexp) (*General, error) {
	general := &General{}

	if thicknessNode, found := sexp.FindNode(node, "thickness"); found {
		thickness, err := sexp.GetFloat(thicknessNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse thickness: %w", err)
		}
		general.Thickness = thickness
	}

	general.Title, _ = sexp.GetChildString(node, "title")
	general.Date, _ = sexp.GetChildString(node, "date")
	general.Revision, _ = sexp.GetChildString(node, "rev")
	general.Company, _ = sexp.GetChildString(node, "company")

	return general, nil
}

// parseLayers extracts layer definitions
// Expected format: (layers (0 "F.Cu" signal) (31 "B.Cu" signal) ...)
func parseLayers(node kicadsexp.Sexp) ([]Layer, error) {
	layerNodes := sexp.GetListItems(node)
	if len(layerNodes) == 0 {
		return nil, fmt.Errorf("no layers defined")
	}

	var layers []Layer

	for _, layerNode := range layerNodes {
		if layerNode.IsLeaf() {
			continue
		}

		number, err := sexp.GetInt(layerNode, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer number: %w", err)
		}

		name, err := sexp.GetString(layerNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer name: %w", err)
		}

		layerType, err := sexp.GetString(layerNode, 2)
		if err != nil {
			layerType = "user"
		}

		layers = append(layers, Layer{Number: number, Name: name, Type: layerType})
	}

	return layers, nil
}

// parseNets extracts the top-level net declarations
// Expected format: (net 0 "") (net 1 "GND") (net 2 "+5V") ...
func parseNets(root kicadsexp.Sexp) ([]Net, error) {
	netNodes := sexp.FindAllNodes(root, "net")
	nets := make([]Net, 0, len(netNodes))

	for _, netNode := range netNodes {
		number, err := sexp.GetInt(netNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse net number: %w", err)
		}

		// net 0 usually has an empty name
		name, _ := sexp.GetString(netNode, 2)

		nets = append(nets, Net{Number: number, Name: name})
	}

	return nets, nil
}
