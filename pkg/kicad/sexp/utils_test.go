package sexp

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp/kicadsexp"
)

func mustParse(t *testing.T, src string) kicadsexp.Sexp {
	t.Helper()
	exprs, err := kicadsexp.ParseString(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return exprs[0]
}

func TestFindNode(t *testing.T) {
	s := mustParse(t, `(pad "1" smd locked (at 1 2) (layers "F.Cu" "F.Mask") (at 9 9))`)

	at, ok := FindNode(s, "at")
	if !ok || at.String() != "(at 1 2)" {
		t.Errorf("FindNode(at) = %v, %v; want the first at node", at, ok)
	}
	if _, ok := FindNode(s, "locked"); !ok {
		t.Error("FindNode did not match a bare flag")
	}
	if _, ok := FindNode(s, "drill"); ok {
		t.Error("FindNode found a missing node")
	}
	if _, ok := FindNode(kicadsexp.Symbol("at"), "at"); ok {
		t.Error("FindNode searched inside an atom")
	}
	if got := len(FindAllNodes(s, "at")); got != 2 {
		t.Errorf("FindAllNodes(at) = %d nodes, want 2", got)
	}
}

func TestValueHelpers(t *testing.T) {
	s := mustParse(t, `(pad "1" smd (size 0.5 0.4) (net 3 "GND"))`)

	tests := []struct {
		name string
		got  func() (any, error)
		want any
	}{
		{"quoted string", func() (any, error) { return GetString(s, 1) }, "1"},
		{"bare string", func() (any, error) { return GetString(s, 2) }, "smd"},
		{"quoted only", func() (any, error) { return GetQuotedString(s, 1) }, "1"},
		{"float", func() (any, error) {
			n, _ := FindNode(s, "size")
			return GetFloat(n, 2)
		}, 0.4},
		{"int", func() (any, error) {
			n, _ := FindNode(s, "net")
			return GetInt(n, 1)
		}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.got()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := GetQuotedString(s, 2); err == nil {
		t.Error("GetQuotedString accepted a bare symbol")
	}
	if _, err := GetString(s, 10); err == nil || !strings.Contains(err.Error(), "out of bounds") {
		t.Errorf("GetString out of range error = %v", err)
	}
	if _, err := GetString(s, 3); err == nil {
		t.Error("GetString accepted a list element")
	}
	if _, err := GetFloat(s, 2); err == nil {
		t.Error("GetFloat parsed a symbol")
	}
}

func TestGetPosition(t *testing.T) {
	tests := []struct {
		src     string
		want    PositionAngle
		wantErr bool
	}{
		{"(at 100.5 -3)", PositionAngle{Position: Position{X: 100.5, Y: -3}}, false},
		{"(at 1 2 45)", PositionAngle{Position: Position{X: 1, Y: 2}, Angle: 45}, false},
		{"(start 1 2)", PositionAngle{}, true},
		{"(at 1)", PositionAngle{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := GetPosition(mustParse(t, tt.src))
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetPosition error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("position mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStrokeAndFill(t *testing.T) {
	s := mustParse(t, `(gr_circle (stroke (width 0.05) (type dash) (color 255 0 0 0.5)) (fill solid))`)

	strokeNode, _ := FindNode(s, "stroke")
	stroke, err := GetStroke(strokeNode)
	if err != nil {
		t.Fatal(err)
	}
	want := Stroke{Width: 0.05, Type: "dash", Color: Color{R: 1, A: 0.5}}
	if diff := cmp.Diff(want, stroke); diff != "" {
		t.Errorf("stroke mismatch (-want +got):\n%s", diff)
	}

	fillNode, _ := FindNode(s, "fill")
	fill, err := GetFill(fillNode)
	if err != nil {
		t.Fatal(err)
	}
	if fill.Type != "solid" {
		t.Errorf("legacy fill type = %q, want solid", fill.Type)
	}

	fill, _ = GetFill(mustParse(t, "(fill (type none))"))
	if fill.Type != "none" {
		t.Errorf("fill type = %q, want none", fill.Type)
	}
}

func TestGetProperty(t *testing.T) {
	tests := []struct {
		src  string
		want Property
	}{
		{
			`(property "Reference" "D4" (at 0 -2 90) (layer "F.SilkS") (effects (font (size 1 1)) hide))`,
			Property{Key: "Reference", Value: "D4", Layer: "F.SilkS", Position: PositionAngle{Position: Position{Y: -2}, Angle: 90}, Hidden: true},
		},
		{
			`(property "Value" "LED" (at 0 2) (layer "F.Fab") (hide yes))`,
			Property{Key: "Value", Value: "LED", Layer: "F.Fab", Position: PositionAngle{Position: Position{Y: 2}}, Hidden: true},
		},
		{
			`(fp_text reference "D1" (at 0 -2) (layer "F.SilkS"))`,
			Property{Key: "Reference", Value: "D1", Layer: "F.SilkS", Position: PositionAngle{Position: Position{Y: -2}}},
		},
	}
	for _, tt := range tests {
		got, err := GetProperty(mustParse(t, tt.src))
		if err != nil {
			t.Fatalf("GetProperty(%s): %v", tt.src, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("property mismatch (-want +got):\n%s", diff)
		}
	}

	if _, err := GetProperty(mustParse(t, `(at 0 0)`)); err == nil {
		t.Error("GetProperty accepted an at node")
	}
}

func TestMisc(t *testing.T) {
	s := mustParse(t, `(via (at 1 2) (layers "F.Cu" "B.Cu") (uuid "abc") free)`)

	layers, _ := FindNode(s, "layers")
	if diff := cmp.Diff([]string{"F.Cu", "B.Cu"}, GetLayers(layers)); diff != "" {
		t.Errorf("layers mismatch (-want +got):\n%s", diff)
	}
	if !HasSymbol(s, "free") || HasSymbol(s, "locked") {
		t.Error("HasSymbol gave the wrong answer")
	}
	if name, _ := GetNodeName(s); name != "via" {
		t.Errorf("GetNodeName = %q", name)
	}
	idNode, _ := FindNode(s, "uuid")
	if id, err := GetUUID(idNode); err != nil || id != "abc" {
		t.Errorf("GetUUID = %q, %v", id, err)
	}
	if pos, ok := GetChildXY(s, "at"); !ok || pos != (Position{X: 1, Y: 2}) {
		t.Errorf("GetChildXY = %v, %v", pos, ok)
	}
}

func TestBoundingBox(t *testing.T) {
	bb := NewBoundingBox()
	if !bb.IsEmpty() {
		t.Fatal("new box is not empty")
	}
	bb.Expand(Position{X: 1, Y: 5})
	bb.Expand(Position{X: -3, Y: 2})
	if bb.Width() != 4 || bb.Height() != 3 || bb.Center() != (Position{X: -1, Y: 3.5}) {
		t.Errorf("box = %+v", bb)
	}
	if !bb.Contains(Position{X: 0, Y: 3}) || bb.Contains(Position{X: 2, Y: 3}) {
		t.Error("Contains gave the wrong answer")
	}
}
