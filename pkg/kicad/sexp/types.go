// Package sexp provides the value types, navigation helpers and node
// builders shared by the board and footprint readers.
package sexp

// Position represents a 2D coordinate in the KiCad coordinate system, in
// millimetres with Y pointing down.
type Position struct {
	X float64
	Y float64
}

// Angle represents rotation in degrees
type Angle float64

// PositionAngle combines position with rotation
type PositionAngle struct {
	Position
	Angle Angle
}

// Size represents dimensions
type Size struct {
	Width  float64 // Width in mm
	Height float64 // Height in mm
}

// Color represents RGBA color
type Color struct {
	R, G, B, A float64 // Color components (0.0-1.0)
}

// Stroke defines line/outline appearance
type Stroke struct {
	Width float64 // Line width in mm
	Type  string  // Line type (solid, dash, dot, etc.)
	Color Color   // Line color
}

// Fill defines area fill
type Fill struct {
	Type  string // Fill type (solid, none, etc.)
	Color Color  // Fill color
}

// BoundingBox represents a rectangular boundary
type BoundingBox struct {
	Min Position // Minimum (top-left) corner
	Max Position // Maximum (bottom-right) corner
}

// Intersects checks if two bounding boxes intersect
func (bb BoundingBox) Intersects(other BoundingBox) bool {
	return bb.Min.X <= other.Max.X && bb.Max.X >= other.Min.X &&
		bb.Min.Y <= other.Max.Y && bb.Max.Y >= other.Min.Y
}

// Contains checks if a position is within the bounding box
func (bb BoundingBox) Contains(pos Position) bool {
	return pos.X >= bb.Min.X && pos.X <= bb.Max.X &&
		pos.Y >= bb.Min.Y && pos.Y <= bb.Max.Y
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Position{X: 1e9, Y: 1e9},
		Max: Position{X: -1e9, Y: -1e9},
	}
}

// IsEmpty checks if the bounding box is empty
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Expand expands the bounding box to include a position
func (bb *BoundingBox) Expand(pos Position) {
	if pos.X < bb.Min.X {
		bb.Min.X = pos.X
	}
	if pos.Y < bb.Min.Y {
		bb.Min.Y = pos.Y
	}
	if pos.X > bb.Max.X {
		bb.Max.X = pos.X
	}
	if pos.Y > bb.Max.Y {
		bb.Max.Y = pos.Y
	}
}

// ExpandBox expands to include another bounding box
func (bb *BoundingBox) ExpandBox(other BoundingBox) {
	if !other.IsEmpty() {
		bb.Expand(other.Min)
		bb.Expand(other.Max)
	}
}

// Width returns the width of the bounding box
func (bb BoundingBox) Width() float64 {
	return bb.Max.X - bb.Min.X
}

// Height returns the height of the bounding box
func (bb BoundingBox) Height() float64 {
	return bb.Max.Y - bb.Min.Y
}

// Center returns the center point of the bounding box
func (bb BoundingBox) Center() Position {
	return Position{
		X: (bb.Min.X + bb.Max.X) / 2.0,
		Y: (bb.Min.Y + bb.Max.Y) / 2.0,
	}
}

// UUID represents a unique identifier (used in KiCad v6+ files)
type UUID string

// Property is a footprint text field such as Reference or Value
type Property struct {
	Key      string
	Value    string
	Layer    string
	Position PositionAngle
	Hidden   bool
}

// GrLine represents a line graphic element
type GrLine struct {
	Start  Position
	End    Position
	Stroke Stroke
	Layer  string
}

// GrCircle represents a circle graphic element
// In KiCad, circles are defined by center and a point on the circumference
type GrCircle struct {
	Center Position
	End    Position // Point on circumference (defines radius)
	Stroke Stroke
	Fill   Fill
	Layer  string
}

// GrArc represents an arc graphic element
// Arcs are defined by three points: start, mid (on arc), and end
type GrArc struct {
	Start  Position
	Mid    Position
	End    Position
	Stroke Stroke
	Layer  string
}

// GrRect represents a rectangle graphic element
type GrRect struct {
	Start  Position // Top-left corner
	End    Position // Bottom-right corner
	Stroke Stroke
	Fill   Fill
	Layer  string
}

// GrPoly represents a polygon graphic element
type GrPoly struct {
	Points []Position
	Stroke Stroke
	Fill   Fill
	Layer  string
}

// GrText represents a text graphic element
type GrText struct {
	Text     string
	Position Position
	Angle    Angle
	Layer    string
	Size     Size
}

// Graphics contains all graphic elements
type Graphics struct {
	Lines   []GrLine
	Circles []GrCircle
	Arcs    []GrArc
	Rects   []GrRect
	Polys   []GrPoly
	Texts   []GrText
}

// Count returns the number of graphic elements
func (g Graphics) Count() int {
	return len(g.Lines) + len(g.Circles) + len(g.Arcs) + len(g.Rects) + len(g.Polys) + len(g.Texts)
}
