package sexp

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp/kicadsexp"
)

// S-expression navigation helpers

// asList returns s as a list, or nil for atoms and nil input
func asList(s kicadsexp.Sexp) *kicadsexp.List {
	l, _ := s.(*kicadsexp.List)
	return l
}

// FindNode searches for a child node with the given key (first symbol)
// Example: FindNode(sexp, "at") finds (at 100 50) in a list.
// A bare symbol child equal to key also matches, so flags such as
// (pad "1" smd locked) can be probed the same way.
func FindNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	l := asList(s)
	if l == nil {
		return nil, false
	}

	for _, item := range l.Elements() {
		switch v := item.(type) {
		case kicadsexp.Symbol:
			if string(v) == key {
				return v, true
			}
		case *kicadsexp.List:
			if v.Key() == key {
				return v, true
			}
		}
	}

	return nil, false
}

// FindAllNodes finds all child lists with the given key
func FindAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var results []kicadsexp.Sexp

	l := asList(s)
	if l == nil {
		return results
	}

	for _, item := range l.Elements() {
		if sub, ok := item.(*kicadsexp.List); ok && sub.Key() == key {
			results = append(results, sub)
		}
	}

	return results
}

// GetListItems returns all items in a list (excluding the first symbol/key)
// Example: GetListItems((layers "F.Cu" "B.Cu")) returns ["F.Cu", "B.Cu"]
func GetListItems(s kicadsexp.Sexp) []kicadsexp.Sexp {
	l := asList(s)
	if l == nil || l.Len() <= 1 {
		return []kicadsexp.Sexp{}
	}
	return l.Elements()[1:]
}

// Typed value extraction helpers

// GetString extracts the text of the atom at index, quoted or bare.
// Index 0 is the key, 1 is first value, etc.
func GetString(s kicadsexp.Sexp, index int) (string, error) {
	l := asList(s)
	if l == nil {
		return "", fmt.Errorf("expected list, got leaf")
	}

	item := l.Get(index)
	if item == nil {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, l.Len())
	}

	if !item.IsLeaf() {
		return "", fmt.Errorf("expected atom at index %d, got list", index)
	}

	return kicadsexp.Value(item), nil
}

// GetQuotedString extracts a string that must be written in double quotes
func GetQuotedString(s kicadsexp.Sexp, index int) (string, error) {
	l := asList(s)
	if l == nil {
		return "", fmt.Errorf("expected list, got leaf")
	}

	q, ok := l.Get(index).(kicadsexp.Quoted)
	if !ok {
		return "", fmt.Errorf("expected quoted string at index %d", index)
	}

	return string(q), nil
}

// GetFloat extracts a float64 value at the given index
func GetFloat(s kicadsexp.Sexp, index int) (float64, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}

	return val, nil
}

// GetInt extracts an int value at the given index
func GetInt(s kicadsexp.Sexp, index int) (int, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}

	return val, nil
}

// Domain-specific extraction helpers

// GetPosition extracts a Position from an (at X Y [angle]) node.
// Coordinates are millimetres and the angle is degrees, as written by
// KiCad 6 and later.
func GetPosition(s kicadsexp.Sexp) (PositionAngle, error) {
	key, err := GetString(s, 0)
	if err != nil {
		return PositionAngle{}, fmt.Errorf("expected (at X Y [angle]) list: %w", err)
	}
	if key != "at" {
		return PositionAngle{}, fmt.Errorf("expected 'at', got %q", key)
	}

	pos, err := GetPositionXY(s)
	if err != nil {
		return PositionAngle{}, err
	}

	result := PositionAngle{Position: pos}

	// angle is optional
	if angle, err := GetFloat(s, 3); err == nil {
		result.Angle = Angle(angle)
	}

	return result, nil
}

// GetPositionXY extracts just X,Y coordinates (no angle)
// Used for (start X Y), (end X Y), (center X Y), etc.
func GetPositionXY(s kicadsexp.Sexp) (Position, error) {
	x, err := GetFloat(s, 1)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse X: %w", err)
	}

	y, err := GetFloat(s, 2)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse Y: %w", err)
	}

	return Position{X: x, Y: y}, nil
}

// GetChildXY finds the (key X Y) child of s and returns its coordinates
func GetChildXY(s kicadsexp.Sexp, key string) (Position, bool) {
	node, ok := FindNode(s, key)
	if !ok {
		return Position{}, false
	}
	pos, err := GetPositionXY(node)
	return pos, err == nil
}

// GetChildFloat returns the first value of the (key V) child of s
func GetChildFloat(s kicadsexp.Sexp, key string) (float64, bool) {
	node, ok := FindNode(s, key)
	if !ok {
		return 0, false
	}
	v, err := GetFloat(node, 1)
	return v, err == nil
}

// GetChildString returns the first value of the (key V) child of s
func GetChildString(s kicadsexp.Sexp, key string) (string, bool) {
	node, ok := FindNode(s, key)
	if !ok {
		return "", false
	}
	v, err := GetString(node, 1)
	return v, err == nil
}

// GetLayers returns the names listed in a (layers ...) or (layer ...) node
func GetLayers(s kicadsexp.Sexp) []string {
	items := GetListItems(s)
	layers := make([]string, 0, len(items))
	for _, item := range items {
		if item.IsLeaf() {
			layers = append(layers, kicadsexp.Value(item))
		}
	}
	return layers
}

// GetStroke extracts stroke properties from (stroke ...) node
// Format: (stroke (width W) (type solid|dash|dot) [(color R G B A)])
func GetStroke(s kicadsexp.Sexp) (Stroke, error) {
	stroke := Stroke{
		Width: 0.15,
		Type:  "solid",
		Color: Color{R: 1, G: 1, B: 1, A: 1},
	}

	if asList(s) == nil {
		return stroke, fmt.Errorf("expected (stroke ...) list")
	}

	if width, ok := GetChildFloat(s, "width"); ok {
		stroke.Width = width
	}

	if strokeType, ok := GetChildString(s, "type"); ok {
		stroke.Type = strokeType
	}

	if colorNode, ok := FindNode(s, "color"); ok {
		color, err := GetColor(colorNode)
		if err == nil {
			stroke.Color = color
		}
	}

	return stroke, nil
}

// GetFill extracts fill properties from (fill ...) node. Older files write
// (fill solid) without the type wrapper.
func GetFill(s kicadsexp.Sexp) (Fill, error) {
	fill := Fill{
		Type:  "none",
		Color: Color{R: 0, G: 0, B: 0, A: 1},
	}

	if asList(s) == nil {
		return fill, fmt.Errorf("expected (fill ...) list")
	}

	if fillType, ok := GetChildString(s, "type"); ok {
		fill.Type = fillType
	} else if v, err := GetString(s, 1); err == nil {
		fill.Type = v
	}

	if colorNode, ok := FindNode(s, "color"); ok {
		color, err := GetColor(colorNode)
		if err == nil {
			fill.Color = color
		}
	}

	return fill, nil
}

// GetColor extracts RGBA color from (color R G B [A]) node
// R, G and B are 0-255 in the file, alpha is already 0-1.
func GetColor(s kicadsexp.Sexp) (Color, error) {
	color := Color{A: 1.0}

	r, err := GetFloat(s, 1)
	if err != nil {
		return color, fmt.Errorf("failed to parse R: %w", err)
	}

	g, err := GetFloat(s, 2)
	if err != nil {
		return color, fmt.Errorf("failed to parse G: %w", err)
	}

	b, err := GetFloat(s, 3)
	if err != nil {
		return color, fmt.Errorf("failed to parse B: %w", err)
	}

	color.R = r / 255.0
	color.G = g / 255.0
	color.B = b / 255.0

	if a, err := GetFloat(s, 4); err == nil {
		color.A = a
	}

	return color, nil
}

// HasSymbol checks if a list contains a specific bare symbol
func HasSymbol(s kicadsexp.Sexp, symbol string) bool {
	l := asList(s)
	if l == nil {
		return false
	}

	for _, item := range l.Elements() {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == symbol {
			return true
		}
	}

	return false
}

// GetNodeName returns the first symbol of a list (the node type/name)
func GetNodeName(s kicadsexp.Sexp) (string, error) {
	switch v := s.(type) {
	case kicadsexp.Symbol:
		return string(v), nil
	case *kicadsexp.List:
		if key := v.Key(); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("expected symbol at head of list")
	}
	return "", fmt.Errorf("expected symbol or list, got %T", s)
}

// GetUUID extracts a UUID from a (uuid "...") or legacy (tstamp ...) node
func GetUUID(s kicadsexp.Sexp) (UUID, error) {
	key, err := GetString(s, 0)
	if err != nil || (key != "uuid" && key != "tstamp") {
		return "", fmt.Errorf("expected 'uuid' node")
	}

	id, err := GetString(s, 1)
	if err != nil {
		return "", err
	}

	return UUID(id), nil
}

// GetProperty extracts a footprint property from a (property "key" "value"
// ...) node, or from the older (fp_text reference "D1" ...) form.
func GetProperty(s kicadsexp.Sexp) (Property, error) {
	prop := Property{}

	key, err := GetString(s, 0)
	if err != nil {
		return prop, fmt.Errorf("expected (property ...) list: %w", err)
	}

	switch key {
	case "property":
		if prop.Key, err = GetString(s, 1); err != nil {
			return prop, fmt.Errorf("failed to parse property key: %w", err)
		}
		prop.Value, _ = GetString(s, 2)
	case "fp_text":
		kind, err := GetString(s, 1)
		if err != nil {
			return prop, fmt.Errorf("failed to parse fp_text kind: %w", err)
		}
		switch kind {
		case "reference":
			prop.Key = "Reference"
		case "value":
			prop.Key = "Value"
		default:
			prop.Key = kind
		}
		prop.Value, _ = GetString(s, 2)
	default:
		return prop, fmt.Errorf("expected 'property' or 'fp_text', got %q", key)
	}

	if atNode, ok := FindNode(s, "at"); ok {
		if pos, err := GetPosition(atNode); err == nil {
			prop.Position = pos
		}
	}

	prop.Layer, _ = GetChildString(s, "layer")
	prop.Hidden = IsHidden(s)

	return prop, nil
}

// IsHidden reports whether a text node is hidden, either through a bare
// hide flag, (hide yes) or an effects block carrying one.
func IsHidden(s kicadsexp.Sexp) bool {
	if HasSymbol(s, "hide") {
		return true
	}
	if v, ok := GetChildString(s, "hide"); ok {
		return v == "yes"
	}
	if effects, ok := FindNode(s, "effects"); ok {
		return IsHidden(effects)
	}
	return false
}
