package layout

import (
	"fmt"

	"github.com/OpenTraceLab/ringlayout/pkg/geom"
)

// PadTemplate is one connection point of a node template
type PadTemplate struct {
	Name   string
	Offset geom.Point // Relative to the node origin, unrotated
}

// Template is the reusable shape every node is stamped from
type Template struct {
	Library string
	Name    string
	Pads    []PadTemplate

	// FixedNets pins pads to a board-wide net (ground, supply). All other
	// pads get a per-node net named after the node and pad.
	FixedNets map[string]string
}

// Pad is a placed connection point
type Pad struct {
	Name   string
	Offset geom.Point
	Net    string

	// Wired is set once the router drew a trace from this pad to a later node
	Wired bool
}

// Node is a placed instance of a Template
type Node struct {
	Reference   string
	Position    geom.Point
	Orientation float64 // Radians, counter-clockwise in board space
	Pads        []Pad

	// Moved is set once the node has been relocated by the resolver
	Moved bool

	seq   int
	entry *indexEntry
}

// LocalNetName is the net a pad carries before it is wired up, in the
// form KiCad uses for unnamed nets
func LocalNetName(reference, pad string) string {
	return fmt.Sprintf("Net-(%s-Pad%s)", reference, pad)
}

func newNode(seq int, ref string, tpl Template, pos geom.Point, orientation float64) *Node {
	n := &Node{
		Reference:   ref,
		Position:    pos,
		Orientation: orientation,
		Pads:        make([]Pad, len(tpl.Pads)),
		seq:         seq,
	}
	for i, p := range tpl.Pads {
		net, ok := tpl.FixedNets[p.Name]
		if !ok {
			net = LocalNetName(ref, p.Name)
		}
		n.Pads[i] = Pad{Name: p.Name, Offset: p.Offset, Net: net}
	}
	return n
}

// Pad returns the pad named name, or nil
func (n *Node) Pad(name string) *Pad {
	for i := range n.Pads {
		if n.Pads[i].Name == name {
			return &n.Pads[i]
		}
	}
	return nil
}

// PadPosition returns the absolute board position of a pad. The offset is
// rotated by -Orientation, the sense KiCad applies to footprint children.
func (n *Node) PadPosition(p *Pad) geom.Point {
	return n.padPositionAt(p, n.Position, n.Orientation)
}

func (n *Node) padPositionAt(p *Pad, pos geom.Point, orientation float64) geom.Point {
	return pos.Add(p.Offset).RotateAbout(-orientation, pos)
}

// PadPositions returns the absolute positions of all pads in template order
func (n *Node) PadPositions() []geom.Point {
	out := make([]geom.Point, len(n.Pads))
	for i := range n.Pads {
		out[i] = n.PadPosition(&n.Pads[i])
	}
	return out
}

func (n *Node) String() string {
	return fmt.Sprintf("%s at %s orientation %.4f", n.Reference, n.Position, n.Orientation)
}
