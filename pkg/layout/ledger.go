package layout

import (
	"fmt"

	"github.com/OpenTraceLab/ringlayout/pkg/geom"
)

// Board layers written by the generator
const (
	LayerFrontCopper = "F.Cu"
	LayerBackCopper  = "B.Cu"
	LayerSilkscreen  = "F.SilkS"
	LayerEdgeCuts    = "Edge.Cuts"
)

// Trace is a straight copper connection
type Trace struct {
	Start geom.Point
	End   geom.Point
	Net   string
	Width float64
	Layer string
}

// Length returns the distance between the trace ends
func (t Trace) Length() float64 {
	return t.Start.Distance(t.End)
}

// Via is a through-hole connection between the copper layers
type Via struct {
	Position geom.Point
	Net      string
	Size     float64
	Drill    float64
	Layers   [2]string
}

// Line is a graphic segment, used for guide lines
type Line struct {
	Start geom.Point
	End   geom.Point
	Layer string
	Width float64
}

// Circle is a graphic circle, used for the board outline
type Circle struct {
	Center geom.Point
	Radius float64
	Layer  string
	Width  float64
}

// Relinker moves wiring that ends at a relocated connection point
type Relinker interface {
	// Relink moves every endpoint within tolerance of from onto to and
	// reports how many endpoints moved
	Relink(from, to geom.Point, tolerance float64) int
}

// Ledger is the in-memory record of everything a run produced. It is not
// safe for concurrent use.
type Ledger struct {
	Prefix string // Reference prefix, "D" unless set

	Nodes   []*Node
	Traces  []*Trace
	Vias    []*Via
	Lines   []Line
	Circles []Circle

	next int
}

var _ Relinker = (*Ledger)(nil)

// NewLedger returns an empty ledger whose first reference is prefix + "1"
func NewLedger(prefix string) *Ledger {
	if prefix == "" {
		prefix = "D"
	}
	return &Ledger{Prefix: prefix, next: 1}
}

// PeekReference returns the reference the next created node will get
func (l *Ledger) PeekReference() string {
	if l.next == 0 {
		l.next = 1
	}
	if l.Prefix == "" {
		l.Prefix = "D"
	}
	return fmt.Sprintf("%s%d", l.Prefix, l.next)
}

// AddNode stamps tpl at pos and consumes the next reference
func (l *Ledger) AddNode(tpl Template, pos geom.Point, orientation float64) *Node {
	ref := l.PeekReference()
	n := newNode(len(l.Nodes), ref, tpl, pos, orientation)
	l.next++
	l.Nodes = append(l.Nodes, n)
	return n
}

// Node returns the node with the given reference, or nil
func (l *Ledger) Node(ref string) *Node {
	for _, n := range l.Nodes {
		if n.Reference == ref {
			return n
		}
	}
	return nil
}

// AddTrace records a trace and returns it
func (l *Ledger) AddTrace(t Trace) *Trace {
	tr := &t
	l.Traces = append(l.Traces, tr)
	return tr
}

// AddVia records a via and returns it
func (l *Ledger) AddVia(v Via) *Via {
	vp := &v
	l.Vias = append(l.Vias, vp)
	return vp
}

// AddLine records a graphic line
func (l *Ledger) AddLine(ln Line) {
	l.Lines = append(l.Lines, ln)
}

// AddCircle records a graphic circle
func (l *Ledger) AddCircle(c Circle) {
	l.Circles = append(l.Circles, c)
}

// Relink implements Relinker over the ledger's traces and vias
func (l *Ledger) Relink(from, to geom.Point, tolerance float64) int {
	moved := 0
	for _, t := range l.Traces {
		if t.Start.Near(from, tolerance) {
			t.Start = to
			moved++
		}
		if t.End.Near(from, tolerance) {
			t.End = to
			moved++
		}
	}
	for _, v := range l.Vias {
		if v.Position.Near(from, tolerance) {
			v.Position = to
			moved++
		}
	}
	return moved
}

// TracesOnNet returns the traces carrying net
func (l *Ledger) TracesOnNet(net string) []*Trace {
	var out []*Trace
	for _, t := range l.Traces {
		if t.Net == net {
			out = append(out, t)
		}
	}
	return out
}

// Nets returns every net name used by a pad, trace or via, in first-seen order
func (l *Ledger) Nets() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, n := range l.Nodes {
		for _, p := range n.Pads {
			add(p.Net)
		}
	}
	for _, t := range l.Traces {
		add(t.Net)
	}
	for _, v := range l.Vias {
		add(v.Net)
	}
	return out
}
