package sexp

import (
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp/kicadsexp"
)

// Node builders produce the lists KiCad writes for board items. Numbers use
// at most six decimals, like pcbnew.

// Sym returns a bare symbol
func Sym(s string) kicadsexp.Symbol { return kicadsexp.Symbol(s) }

// Str returns a quoted string
func Str(s string) kicadsexp.Quoted { return kicadsexp.Quoted(s) }

// Num formats v the way pcbnew does: fixed point, trailing zeros trimmed
func Num(v float64) kicadsexp.Symbol {
	v = math.Round(v*1e6) / 1e6
	if v == 0 {
		v = 0 // drops negative zero
	}
	return kicadsexp.Symbol(strconv.FormatFloat(v, 'f', -1, 64))
}

// Int formats an integer atom
func Int(i int) kicadsexp.Symbol {
	return kicadsexp.Symbol(strconv.Itoa(i))
}

// Node returns (key args...)
func Node(key string, args ...kicadsexp.Sexp) *kicadsexp.List {
	return kicadsexp.NewList(append([]kicadsexp.Sexp{Sym(key)}, args...)...)
}

// XY returns (key X Y)
func XY(key string, p Position) *kicadsexp.List {
	return Node(key, Num(p.X), Num(p.Y))
}

// At returns (at X Y [angle]); a zero angle is omitted
func At(p PositionAngle) *kicadsexp.List {
	at := XY("at", p.Position)
	if p.Angle != 0 {
		at.Append(Num(float64(p.Angle)))
	}
	return at
}

// Layer returns (layer "name")
func Layer(name string) *kicadsexp.List {
	return Node("layer", Str(name))
}

// Layers returns (layers "a" "b" ...)
func Layers(names ...string) *kicadsexp.List {
	l := Node("layers")
	for _, n := range names {
		l.Append(Str(n))
	}
	return l
}

// NetRef returns the (net N) reference used by tracks and vias
func NetRef(number int) *kicadsexp.List {
	return Node("net", Int(number))
}

// NetDecl returns (net N "name"), used for board net declarations and pads
func NetDecl(number int, name string) *kicadsexp.List {
	return Node("net", Int(number), Str(name))
}

// NewUUID returns (uuid "...") with a fresh random identifier
func NewUUID() *kicadsexp.List {
	return Node("uuid", Str(uuid.NewString()))
}

// StrokeNode returns (stroke (width W) (type solid))
func StrokeNode(width float64) *kicadsexp.List {
	return Node("stroke", Node("width", Num(width)), Node("type", Sym("solid")))
}

// GrLineNode returns a gr_line on layer
func GrLineNode(start, end Position, width float64, layer string) *kicadsexp.List {
	return Node("gr_line",
		XY("start", start),
		XY("end", end),
		StrokeNode(width),
		Layer(layer),
		NewUUID(),
	)
}

// GrCircleNode returns an unfilled gr_circle of radius r
func GrCircleNode(center Position, r, width float64, layer string) *kicadsexp.List {
	return Node("gr_circle",
		XY("center", center),
		XY("end", Position{X: center.X + r, Y: center.Y}),
		StrokeNode(width),
		Node("fill", Sym("none")),
		Layer(layer),
		NewUUID(),
	)
}

// SegmentNode returns a copper track segment
func SegmentNode(start, end Position, width float64, layer string, net int) *kicadsexp.List {
	return Node("segment",
		XY("start", start),
		XY("end", end),
		Node("width", Num(width)),
		Layer(layer),
		NetRef(net),
		NewUUID(),
	)
}

// ViaNode returns a through via spanning layers
func ViaNode(at Position, size, drill float64, layers [2]string, net int) *kicadsexp.List {
	return Node("via",
		XY("at", at),
		Node("size", Num(size)),
		Node("drill", Num(drill)),
		Layers(layers[0], layers[1]),
		NetRef(net),
		NewUUID(),
	)
}

// SetChild replaces the first child of l keyed like child, or appends child
// when l has none. It reports whether a child was replaced.
func SetChild(l *kicadsexp.List, child *kicadsexp.List) bool {
	key := child.Key()
	for i, e := range l.Elements() {
		if sub, ok := e.(*kicadsexp.List); ok && sub.Key() == key {
			l.Set(i, child)
			return true
		}
	}
	l.Append(child)
	return false
}
