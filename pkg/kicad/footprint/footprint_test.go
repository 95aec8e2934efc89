package footprint

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp"
	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp/kicadsexp"
)

func lookupLED(t *testing.T) *Template {
	t.Helper()
	lib := NewLibrary(t.TempDir(), "testdata")
	tpl, err := lib.Lookup("LED_SMD", "LED-APA102-2020")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	return tpl
}

func TestLookup(t *testing.T) {
	tpl := lookupLED(t)

	if tpl.ID() != "LED_SMD:LED-APA102-2020" {
		t.Errorf("ID() = %q", tpl.ID())
	}

	want := []Pad{
		{Name: "1", Offset: sexp.Position{X: -0.6, Y: -0.55}},
		{Name: "2", Offset: sexp.Position{X: -0.6, Y: 0}},
		{Name: "3", Offset: sexp.Position{X: -0.6, Y: 0.55}},
		{Name: "4", Offset: sexp.Position{X: 0.6, Y: 0.55}},
		{Name: "5", Offset: sexp.Position{X: 0.6, Y: 0}},
		{Name: "6", Offset: sexp.Position{X: 0.6, Y: -0.55}, Angle: 90},
	}
	if diff := cmp.Diff(want, tpl.Pads); diff != "" {
		t.Errorf("pads mismatch (-want +got):\n%s", diff)
	}

	// strings with spaces survive the reader
	descr, ok := sexp.GetChildString(tpl.tree, "descr")
	if !ok || descr != "LED RGB with controller APA102 2x2mm" {
		t.Errorf("descr = %q", descr)
	}
}

func TestLookupMissing(t *testing.T) {
	lib := NewLibrary("testdata")

	tests := []struct {
		lib, name string
	}{
		{"LED_SMD", "LED-WS2812B"},
		{"Connector", "LED-APA102-2020"},
	}
	for _, tt := range tests {
		_, err := lib.Lookup(tt.lib, tt.name)
		if !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("Lookup(%s, %s) error = %v, want ErrTemplateNotFound", tt.lib, tt.name, err)
		}
	}
}

func TestReadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not a footprint", `(kicad_pcb (version 20221018))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.input), "X"); err == nil {
				t.Error("Read() expected an error")
			}
		})
	}
}

func TestReadModule(t *testing.T) {
	tpl, err := Read(strings.NewReader(`(module R_0603 (layer F.Cu) (tedit 5B301BBD)
		(pad 1 smd rect (at -0.8 0) (size 0.8 0.9) (layers F.Cu F.Paste F.Mask))
		(pad 2 smd rect (at 0.8 0) (size 0.8 0.9) (layers F.Cu F.Paste F.Mask)))`), "Resistor_SMD")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if tpl.Name != "R_0603" || len(tpl.Pads) != 2 || tpl.Pads[1].Offset.X != 0.8 {
		t.Errorf("Read() = %+v", tpl)
	}
	if tpl.tree.Key() != "footprint" {
		t.Errorf("root key = %q, want footprint", tpl.tree.Key())
	}
}

func child(t *testing.T, l kicadsexp.Sexp, key string) *kicadsexp.List {
	t.Helper()
	node, ok := sexp.FindNode(l, key)
	if !ok {
		t.Fatalf("%s missing from %s", key, l)
	}
	return node.(*kicadsexp.List)
}

func TestInstance(t *testing.T) {
	tpl := lookupLED(t)

	at := sexp.PositionAngle{Position: sexp.Position{X: 150, Y: 100}, Angle: 300}
	fp := tpl.Instance("D7", at, map[string]string{"1": "+5V", "2": "Net-(D6-Pad5)", "6": "GND"})

	if name, _ := sexp.GetString(fp, 1); name != "LED_SMD:LED-APA102-2020" {
		t.Errorf("footprint id = %q", name)
	}
	for _, key := range []string{"version", "generator"} {
		if _, ok := sexp.FindNode(fp, key); ok {
			t.Errorf("%s kept on the placed footprint", key)
		}
	}
	if _, err := sexp.GetUUID(fp); err != nil {
		t.Errorf("placed footprint has no uuid: %v", err)
	}
	if got := child(t, fp, "at").String(); got != "(at 150 100 300)" {
		t.Errorf("at = %s", got)
	}

	var ref sexp.Property
	for _, text := range sexp.FindAllNodes(fp, "fp_text") {
		if p, err := sexp.GetProperty(text); err == nil && p.Key == "Reference" {
			ref = p
		}
	}
	if ref.Value != "D7" || ref.Position.Angle != 300 {
		t.Errorf("reference = %+v", ref)
	}

	type padState struct {
		At  string
		Net string
	}
	var got []padState
	for _, pad := range sexp.FindAllNodes(fp, "pad") {
		state := padState{At: child(t, pad, "at").String()}
		if net, ok := sexp.FindNode(pad, "net"); ok {
			state.Net = net.String()
		}
		got = append(got, state)
	}
	want := []padState{
		{"(at -0.6 -0.55 300)", `(net 0 "+5V")`},
		{"(at -0.6 0 300)", `(net 0 "Net-(D6-Pad5)")`},
		{"(at -0.6 0.55 300)", ""},
		{"(at 0.6 0.55 300)", ""},
		{"(at 0.6 0 300)", ""},
		{"(at 0.6 -0.55 30)", `(net 0 "GND")`},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pads mismatch (-want +got):\n%s", diff)
	}

	// the template itself is untouched
	if _, ok := sexp.FindNode(tpl.tree, "at"); ok {
		t.Error("Instance() modified the template")
	}
}

func TestInstanceUnrotated(t *testing.T) {
	tpl := lookupLED(t)

	fp := tpl.Instance("D1", sexp.PositionAngle{Position: sexp.Position{X: 1, Y: 2}}, nil)
	if got := child(t, fp, "at").String(); got != "(at 1 2)" {
		t.Errorf("at = %s", got)
	}
	pads := sexp.FindAllNodes(fp, "pad")
	if got := child(t, pads[0], "at").String(); got != "(at -0.6 -0.55)" {
		t.Errorf("pad 1 at = %s", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want sexp.Angle
	}{
		{0, 0},
		{90, 90},
		{360, 0},
		{-90, 270},
		{450, 90},
	}
	for _, tt := range tests {
		if got := normalizeAngle(tt.in); got != tt.want {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
