// Package footprint loads footprint templates from KiCad .pretty libraries
// and stamps them onto boards.
package footprint

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	csexp "github.com/chewxy/sexp"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp"
	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp/kicadsexp"
)

// ErrTemplateNotFound is returned when no library directory holds the
// requested footprint
var ErrTemplateNotFound = errors.New("footprint template not found")

// Pad is a template pad, relative to the footprint origin
type Pad struct {
	Name   string
	Offset sexp.Position
	Angle  sexp.Angle
}

// Template is a footprint read from a library
type Template struct {
	Library string
	Name    string
	Pads    []Pad

	tree *kicadsexp.List
}

// ID returns the library:name identifier boards use
func (t *Template) ID() string {
	return t.Library + ":" + t.Name
}

// Library finds footprints in a list of directories holding .pretty
// folders. Earlier paths win.
type Library struct {
	Paths []string
}

// NewLibrary returns a library searching paths in order
func NewLibrary(paths ...string) *Library {
	return &Library{Paths: paths}
}

// Lookup reads <dir>/<lib>.pretty/<name>.kicad_mod from the first path that
// has it
func (l *Library) Lookup(lib, name string) (*Template, error) {
	for _, dir := range l.Paths {
		path := filepath.Join(dir, lib+".pretty", name+".kicad_mod")
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open footprint %s:%s: %w", lib, name, err)
		}
		defer f.Close()

		tpl, err := Read(f, lib)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return tpl, nil
	}
	return nil, fmt.Errorf("%w: %s:%s (searched %s)", ErrTemplateNotFound, lib, name, strings.Join(l.Paths, ", "))
}

// Read parses a .kicad_mod file belonging to library lib
func Read(r io.Reader, lib string) (*Template, error) {
	exprs, err := csexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse footprint: %w", err)
	}
	if len(exprs) == 0 {
		return nil, fmt.Errorf("parse footprint: empty file")
	}

	tree, ok := convert(exprs[0]).(*kicadsexp.List)
	// "module" is the KiCad 5 spelling
	if !ok || (tree.Key() != "footprint" && tree.Key() != "module") {
		return nil, fmt.Errorf("parse footprint: expected (footprint ...), got %s", exprs[0])
	}
	tree.Set(0, sexp.Sym("footprint"))

	name, err := sexp.GetString(tree, 1)
	if err != nil {
		return nil, fmt.Errorf("parse footprint name: %w", err)
	}

	tpl := &Template{Library: lib, Name: name, tree: tree}
	for _, padNode := range sexp.FindAllNodes(tree, "pad") {
		padName, err := sexp.GetString(padNode, 1)
		if err != nil {
			return nil, fmt.Errorf("footprint %s: pad name: %w", name, err)
		}
		atNode, ok := sexp.FindNode(padNode, "at")
		if !ok {
			return nil, fmt.Errorf("footprint %s: pad %s has no position", name, padName)
		}
		at, err := sexp.GetPosition(atNode)
		if err != nil {
			return nil, fmt.Errorf("footprint %s: pad %s: %w", name, padName, err)
		}
		tpl.Pads = append(tpl.Pads, Pad{Name: padName, Offset: at.Position, Angle: at.Angle})
	}

	return tpl, nil
}

// boardOnly are header fields a library file carries that placed
// footprints drop
var boardOnly = map[string]bool{
	"version":           true,
	"generator":         true,
	"generator_version": true,
	"tedit":             true,
	"tstamp":            true,
	"uuid":              true,
}

// Instance returns a placed copy of the template for the board. at is in
// board millimetres and KiCad degrees. nets maps pad names to net names;
// pads missing from it stay unconnected.
func (t *Template) Instance(ref string, at sexp.PositionAngle, nets map[string]string) *kicadsexp.List {
	fp := kicadsexp.Clone(t.tree).(*kicadsexp.List)
	fp.Set(1, sexp.Str(t.ID()))
	fp.RemoveFunc(func(e kicadsexp.Sexp) bool {
		l, ok := e.(*kicadsexp.List)
		return ok && boardOnly[l.Key()]
	})

	at.Angle = normalizeAngle(at.Angle)
	sexp.SetChild(fp, sexp.At(at))
	fp.Append(sexp.NewUUID())

	for _, e := range fp.Elements() {
		child, ok := e.(*kicadsexp.List)
		if !ok {
			continue
		}
		switch child.Key() {
		case "fp_text", "property":
			if kind, _ := sexp.GetString(child, 1); kind == "reference" || kind == "Reference" {
				child.Set(2, sexp.Str(ref))
			}
			rotateAt(child, at.Angle)
		case "pad":
			rotateAt(child, at.Angle)
			name, _ := sexp.GetString(child, 1)
			if net, ok := nets[name]; ok && net != "" {
				// the board renumbers the net when the footprint is added
				sexp.SetChild(child, sexp.NetDecl(0, net))
			}
		}
	}
	return fp
}

// rotateAt adds the footprint angle to a child's own angle. Boards store
// child angles absolute while libraries store them relative.
func rotateAt(child *kicadsexp.List, angle sexp.Angle) {
	node, ok := sexp.FindNode(child, "at")
	if !ok || angle == 0 {
		return
	}
	pos, err := sexp.GetPosition(node)
	if err != nil {
		return
	}
	pos.Angle = normalizeAngle(pos.Angle + angle)
	sexp.SetChild(child, sexp.At(pos))
}

// normalizeAngle maps a in degrees onto [0, 360)
func normalizeAngle(a sexp.Angle) sexp.Angle {
	r := math.Mod(float64(a), 360)
	if r < 0 {
		r += 360
	}
	return sexp.Angle(r)
}

// convert turns a chewxy tree into a kicadsexp tree. chewxy keeps the
// quotes on string atoms and splits quoted strings at spaces, so the
// pieces are joined back here.
func convert(s csexp.Sexp) kicadsexp.Sexp {
	if s == nil {
		return kicadsexp.NewList()
	}
	if s.IsLeaf() {
		return atom(fmt.Sprint(s))
	}

	items := elements(s)
	out := kicadsexp.NewList()
	for i := 0; i < len(items); i++ {
		if !items[i].IsLeaf() {
			out.Append(convert(items[i]))
			continue
		}

		text := fmt.Sprint(items[i])
		if strings.HasPrefix(text, `"`) && !closedQuote(text) {
			parts := []string{text}
			for i+1 < len(items) && items[i+1].IsLeaf() {
				i++
				part := fmt.Sprint(items[i])
				parts = append(parts, part)
				if strings.HasSuffix(part, `"`) {
					break
				}
			}
			text = strings.Join(parts, " ")
		}
		out.Append(atom(text))
	}
	return out
}

func closedQuote(text string) bool {
	return len(text) >= 2 && strings.HasSuffix(text, `"`) && !strings.HasSuffix(text, `\"`)
}

// atom maps a token to a quoted string or a bare symbol
func atom(text string) kicadsexp.Sexp {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return kicadsexp.Symbol(text)
	}
	if s, err := strconv.Unquote(text); err == nil {
		return kicadsexp.Quoted(s)
	}
	return kicadsexp.Quoted(text[1 : len(text)-1])
}

// elements walks a chewxy list through Head and Tail
func elements(s csexp.Sexp) []csexp.Sexp {
	var items []csexp.Sexp
	for s != nil && !s.IsLeaf() && s.LeafCount() > 0 {
		if head := s.Head(); head != nil {
			items = append(items, head)
		}
		if s.LeafCount() <= 1 {
			break
		}
		s = s.Tail()
	}
	return items
}
