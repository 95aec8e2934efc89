package pcb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp"
	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp/kicadsexp"
)

// BackupSuffix is appended to the board path when Save keeps the previous
// file
const BackupSuffix = ".layoutbak"

var (
	// ErrSaveFailed is returned when the board could not be written back
	ErrSaveFailed = errors.New("failed to save board")

	// ErrUnknownLayer is returned for items on layers the board does not
	// define
	ErrUnknownLayer = errors.New("layer not defined on board")

	// ErrUnsafeOperation is returned by operations that are known to damage
	// boards and are refused
	ErrUnsafeOperation = errors.New("unsafe operation")
)

// Document is a board file held as its s-expression tree. Edits go to the
// tree, so everything the model does not understand is written back
// untouched. Board re-reads the model from the tree on demand.
type Document struct {
	Path string

	root   *kicadsexp.List
	nets   *NetMap
	layers *LayerMap
}

// Load reads the board at path
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open board: %w", err)
	}
	defer f.Close()

	return ReadDocument(f, path)
}

// ReadDocument reads a board from r. path is where Save writes; it may be
// empty for documents that are only inspected.
func ReadDocument(r io.Reader, path string) (*Document, error) {
	root, err := readRoot(r)
	if err != nil {
		return nil, err
	}

	nets, err := parseNets(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse nets: %w", err)
	}

	doc := &Document{Path: path, root: root, nets: NewNetMap(nets)}
	if node, ok := sexp.FindNode(root, "layers"); ok {
		layers, err := parseLayers(node)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layers section: %w", err)
		}
		doc.layers = NewLayerMap(layers)
	}
	return doc, nil
}

// CheckLayer reports whether the board defines layer, and for copper items
// whether it is a copper layer. Boards without a layers section accept
// every layer.
func (d *Document) CheckLayer(layer string, copper bool) error {
	if d.layers == nil {
		return nil
	}
	if _, ok := d.layers.GetByName(layer); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, layer)
	}
	if copper && !d.layers.IsCopperLayer(layer) {
		return fmt.Errorf("%w: %s is not a copper layer", ErrUnknownLayer, layer)
	}
	return nil
}

// Root returns the underlying kicad_pcb tree
func (d *Document) Root() *kicadsexp.List {
	return d.root
}

// Board parses the current tree into the board model
func (d *Document) Board() (*Board, error) {
	return parseBoard(d.root)
}

// Nets returns the declared net names in number order
func (d *Document) Nets() []string {
	return d.nets.Names()
}

// children returns the top-level lists match selects
func (d *Document) children(match func(*kicadsexp.List) bool) []*kicadsexp.List {
	var out []*kicadsexp.List
	for _, e := range d.root.Elements() {
		if l, ok := e.(*kicadsexp.List); ok && match(l) {
			out = append(out, l)
		}
	}
	return out
}

// remove drops the top-level lists match selects and reports the count
func (d *Document) remove(match func(*kicadsexp.List) bool) int {
	return d.root.RemoveFunc(func(e kicadsexp.Sexp) bool {
		l, ok := e.(*kicadsexp.List)
		return ok && match(l)
	})
}

// footprintReference returns the reference designator of a footprint node
func footprintReference(fp *kicadsexp.List) string {
	fields := append(sexp.FindAllNodes(fp, "property"), sexp.FindAllNodes(fp, "fp_text")...)
	for _, f := range fields {
		if prop, err := sexp.GetProperty(f); err == nil && prop.Key == "Reference" {
			return prop.Value
		}
	}
	return ""
}

// matchFootprint selects footprints whose reference matches re; a nil re
// selects every footprint
func matchFootprint(re *regexp.Regexp) func(*kicadsexp.List) bool {
	return func(l *kicadsexp.List) bool {
		return l.Key() == "footprint" && (re == nil || re.MatchString(footprintReference(l)))
	}
}

// Footprints returns the footprints whose reference matches re
func (d *Document) Footprints(re *regexp.Regexp) ([]Footprint, error) {
	var out []Footprint
	for _, node := range d.children(matchFootprint(re)) {
		fp, err := parseFootprint(node, d.nets)
		if err != nil {
			return nil, err
		}
		out = append(out, *fp)
	}
	return out, nil
}

// DeleteFootprints removes the footprints whose reference matches re
func (d *Document) DeleteFootprints(re *regexp.Regexp) int {
	return d.remove(matchFootprint(re))
}

// DeleteTracks removes every track segment, arc track and via
func (d *Document) DeleteTracks() int {
	return d.remove(func(l *kicadsexp.List) bool {
		switch l.Key() {
		case "segment", "arc", "via":
			return true
		}
		return false
	})
}

// DeleteShortTraces is refused: joining the ends of removed short traces
// leaves dangling copper behind
func (d *Document) DeleteShortTraces(float64) (int, error) {
	return 0, fmt.Errorf("%w: deleting short traces is not supported", ErrUnsafeOperation)
}

// DeleteDrawings removes every board drawing (gr_* nodes)
func (d *Document) DeleteDrawings() int {
	return d.remove(func(l *kicadsexp.List) bool {
		return IsDrawing(l.Key())
	})
}

// DeleteLayerDrawings removes the board drawings on layer
func (d *Document) DeleteLayerDrawings(layer string) int {
	return d.remove(func(l *kicadsexp.List) bool {
		if !IsDrawing(l.Key()) {
			return false
		}
		got, _ := sexp.GetChildString(l, "layer")
		return got == layer
	})
}

// HideReferences hides the reference text of the footprints whose
// reference matches re and reports how many changed
func (d *Document) HideReferences(re *regexp.Regexp) int {
	changed := 0
	for _, fp := range d.children(matchFootprint(re)) {
		for _, field := range sexp.FindAllNodes(fp, "fp_text") {
			if kind, _ := sexp.GetString(field, 1); kind != "reference" {
				continue
			}
			if l := field.(*kicadsexp.List); !sexp.HasSymbol(l, "hide") {
				l.Append(sexp.Sym("hide"))
				changed++
			}
		}
		for _, field := range sexp.FindAllNodes(fp, "property") {
			if key, _ := sexp.GetString(field, 1); key != "Reference" {
				continue
			}
			if _, drawn := sexp.FindNode(field, "at"); !drawn || sexp.IsHidden(field) {
				continue
			}
			sexp.SetChild(field.(*kicadsexp.List), sexp.Node("hide", sexp.Sym("yes")))
			changed++
		}
	}
	return changed
}

// EnsureNet returns the number of the net called name, declaring it when
// the board has none. The empty name is net 0.
func (d *Document) EnsureNet(name string) int {
	if name == "" {
		return 0
	}
	if net, ok := d.nets.GetByName(name); ok {
		return net.Number
	}

	net := d.nets.Add(name)
	decl := sexp.NetDecl(net.Number, net.Name)

	// declarations sit together, after the last existing one
	at := -1
	for i, e := range d.root.Elements() {
		if l, ok := e.(*kicadsexp.List); ok && l.Key() == "net" {
			at = i + 1
		}
	}
	if at < 0 {
		d.root.Append(decl)
	} else {
		d.root.Insert(at, decl)
	}
	return net.Number
}

// AddSegment draws a graphic line
func (d *Document) AddSegment(start, end Position, width float64, layer string) {
	d.root.Append(sexp.GrLineNode(start, end, width, layer))
}

// AddCircle draws a graphic circle
func (d *Document) AddCircle(center Position, radius, width float64, layer string) {
	d.root.Append(sexp.GrCircleNode(center, radius, width, layer))
}

// AddTrack adds a copper track on net, declaring the net if needed
func (d *Document) AddTrack(start, end Position, width float64, layer, net string) {
	d.root.Append(sexp.SegmentNode(start, end, width, layer, d.EnsureNet(net)))
}

// AddVia adds a via on net, declaring the net if needed
func (d *Document) AddVia(at Position, size, drill float64, layers [2]string, net string) {
	d.root.Append(sexp.ViaNode(at, size, drill, layers, d.EnsureNet(net)))
}

// AddFootprint adds a placed footprint tree. Pad nets are declared on the
// board and renumbered to match it.
func (d *Document) AddFootprint(fp *kicadsexp.List) {
	for _, pad := range sexp.FindAllNodes(fp, "pad") {
		netNode, ok := sexp.FindNode(pad, "net")
		if !ok {
			continue
		}
		name, err := sexp.GetString(netNode, 2)
		if err != nil {
			continue
		}
		sexp.SetChild(pad.(*kicadsexp.List), sexp.NetDecl(d.EnsureNet(name), name))
	}
	d.root.Append(fp)
}

// Write writes the tree to w in KiCad layout
func (d *Document) Write(w io.Writer) error {
	return kicadsexp.Write(w, d.root)
}

// Save moves the file at Path to Path+BackupSuffix, replacing an older
// backup, and writes the tree in its place
func (d *Document) Save() error {
	if d.Path == "" {
		return fmt.Errorf("%w: document has no path", ErrSaveFailed)
	}

	if _, err := os.Stat(d.Path); err == nil {
		if err := os.Rename(d.Path, d.Path+BackupSuffix); err != nil {
			return fmt.Errorf("%w: back up %s: %w", ErrSaveFailed, d.Path, err)
		}
	}

	f, err := os.Create(d.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}
