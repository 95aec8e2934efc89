package renderer

import "image/color"

// Theme is a set of board colors
type Theme struct {
	Name       string
	Background color.NRGBA
	Substrate  color.NRGBA
	Pad        color.NRGBA
	Via        color.NRGBA
	Drill      color.NRGBA
	Highlight  color.NRGBA
	Layers     map[string]color.NRGBA
}

// unknownLayer is used for layers a theme has no entry for
var unknownLayer = color.NRGBA{R: 128, G: 128, B: 128, A: 255}

// LayerColor returns the color of a layer, gray for layers the theme lacks
func (t Theme) LayerColor(layer string) color.NRGBA {
	if c, ok := t.Layers[layer]; ok {
		return c
	}
	return unknownLayer
}

// ClassicTheme follows KiCad's classic palette
var ClassicTheme = Theme{
	Name:       "Classic",
	Background: color.NRGBA{R: 0, G: 16, B: 35, A: 255},
	Substrate:  color.NRGBA{R: 20, G: 90, B: 50, A: 255},
	Pad:        color.NRGBA{R: 227, G: 183, B: 46, A: 255},
	Via:        color.NRGBA{R: 236, G: 236, B: 236, A: 255},
	Drill:      color.NRGBA{R: 227, G: 183, B: 46, A: 255},
	Highlight:  color.NRGBA{R: 255, G: 255, B: 0, A: 255},
	Layers: map[string]color.NRGBA{
		"F.Cu":      {R: 200, G: 52, B: 52, A: 255},
		"B.Cu":      {R: 77, G: 127, B: 196, A: 255},
		"F.SilkS":   {R: 242, G: 237, B: 161, A: 255},
		"B.SilkS":   {R: 232, G: 178, B: 167, A: 255},
		"F.Mask":    {R: 216, G: 100, B: 255, A: 102},
		"B.Mask":    {R: 2, G: 255, B: 238, A: 102},
		"F.Paste":   {R: 180, G: 160, B: 154, A: 230},
		"B.Paste":   {R: 0, G: 194, B: 194, A: 230},
		"F.Fab":     {R: 175, G: 175, B: 175, A: 255},
		"B.Fab":     {R: 88, G: 93, B: 132, A: 255},
		"F.CrtYd":   {R: 255, G: 38, B: 226, A: 255},
		"B.CrtYd":   {R: 38, G: 233, B: 255, A: 255},
		"Dwgs.User": {R: 194, G: 194, B: 194, A: 255},
		"Cmts.User": {R: 89, G: 148, B: 220, A: 255},
		"Edge.Cuts": {R: 208, G: 210, B: 205, A: 255},
	},
}

// NordTheme uses the Nord palette
var NordTheme = Theme{
	Name:       "Nord",
	Background: color.NRGBA{R: 36, G: 41, B: 51, A: 255},
	Substrate:  color.NRGBA{R: 46, G: 52, B: 64, A: 255},  // Nord0
	Pad:        color.NRGBA{R: 235, G: 203, B: 139, A: 255}, // Nord13
	Via:        color.NRGBA{R: 216, G: 222, B: 233, A: 255}, // Nord4
	Drill:      color.NRGBA{R: 76, G: 86, B: 106, A: 255},   // Nord3
	Highlight:  color.NRGBA{R: 136, G: 192, B: 208, A: 255}, // Nord8
	Layers: map[string]color.NRGBA{
		"F.Cu":      {R: 191, G: 97, B: 106, A: 255},
		"B.Cu":      {R: 129, G: 161, B: 193, A: 255},
		"F.SilkS":   {R: 236, G: 239, B: 244, A: 255},
		"B.SilkS":   {R: 216, G: 222, B: 233, A: 255},
		"F.Mask":    {R: 180, G: 142, B: 173, A: 102},
		"B.Mask":    {R: 136, G: 192, B: 208, A: 102},
		"F.Fab":     {R: 216, G: 222, B: 233, A: 255},
		"B.Fab":     {R: 143, G: 188, B: 187, A: 255},
		"F.CrtYd":   {R: 180, G: 142, B: 173, A: 255},
		"B.CrtYd":   {R: 136, G: 192, B: 208, A: 255},
		"Dwgs.User": {R: 229, G: 233, B: 240, A: 255},
		"Cmts.User": {R: 94, G: 129, B: 172, A: 255},
		"Edge.Cuts": {R: 229, G: 233, B: 240, A: 255},
	},
}

// Themes lists the themes in the order the viewer cycles through them
var Themes = []Theme{ClassicTheme, NordTheme}
