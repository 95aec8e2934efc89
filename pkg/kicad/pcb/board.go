package pcb

import "math"

// Board represents a complete KiCad PCB
type Board struct {
	Version    int
	Generator  string
	General    General
	Layers     []Layer
	Nets       []Net
	Footprints []Footprint
	Graphics   Graphics
	Tracks     []Track
	Vias       []Via
}

// General contains general board properties
type General struct {
	Thickness float64 // Board thickness in mm
	Title     string
	Date      string
	Revision  string
	Company   string
}

// Footprint represents a component footprint
type Footprint struct {
	Library         string
	Name            string
	Layer           string // F.Cu or B.Cu
	Position        PositionAngle
	Pads            []Pad
	Graphics        []Graphic // silk, fab, courtyard
	Reference       string    // Reference designator (e.g., "D1")
	ReferenceHidden bool
	Value           string
}

// FullName returns the library:name identifier
func (fp *Footprint) FullName() string {
	if fp.Library == "" {
		return fp.Name
	}
	return fp.Library + ":" + fp.Name
}

// Pad represents a footprint pad
type Pad struct {
	Number   string
	Type     string        // thru_hole, smd, connect, np_thru_hole
	Shape    string        // circle, rect, oval, roundrect, ...
	Position PositionAngle // relative to the footprint
	Size     Size
	Drill    float64 // 0 for SMD
	Layers   LayerSet
	Net      *Net
}

// Graphic represents graphical elements
type Graphic struct {
	Type   string // line, arc, circle, rect, polygon
	Layer  string
	Start  Position
	End    Position
	Center Position
	Mid    Position
	Points []Position
	Stroke Stroke
	Fill   Fill
}

// Track represents a copper track segment
type Track struct {
	Start  Position
	End    Position
	Width  float64
	Layer  string
	Net    *Net
	Locked bool
}

// Length returns the track length in mm
func (t Track) Length() float64 {
	return math.Hypot(t.End.X-t.Start.X, t.End.Y-t.Start.Y)
}

// Via represents a via
type Via struct {
	Position Position
	Size     float64 // Via diameter
	Drill    float64
	Layers   LayerSet // Layer pair
	Net      *Net
	Locked   bool
}

// GetNet returns a net by name, or nil if not found
func (b *Board) GetNet(name string) *Net {
	for i := range b.Nets {
		if b.Nets[i].Name == name {
			return &b.Nets[i]
		}
	}
	return nil
}

// GetFootprint returns the footprint with the given reference, or nil
func (b *Board) GetFootprint(reference string) *Footprint {
	for i := range b.Footprints {
		if b.Footprints[i].Reference == reference {
			return &b.Footprints[i]
		}
	}
	return nil
}

// NetPad is a pad located on the board
type NetPad struct {
	Reference string
	Pad       Pad
	Position  Position // absolute
}

// GetNetPads returns all pads connected to a specific net
func (b *Board) GetNetPads(netName string) []NetPad {
	var pads []NetPad
	for i := range b.Footprints {
		fp := &b.Footprints[i]
		for _, pad := range fp.Pads {
			if pad.Net != nil && pad.Net.Name == netName {
				pads = append(pads, NetPad{
					Reference: fp.Reference,
					Pad:       pad,
					Position:  fp.TransformPosition(pad.Position),
				})
			}
		}
	}
	return pads
}

// GetNetTracks returns all tracks connected to a specific net
func (b *Board) GetNetTracks(netName string) []Track {
	var tracks []Track
	for _, track := range b.Tracks {
		if track.Net != nil && track.Net.Name == netName {
			tracks = append(tracks, track)
		}
	}
	return tracks
}

// GetNetVias returns all vias connected to a specific net
func (b *Board) GetNetVias(netName string) []Via {
	var vias []Via
	for _, via := range b.Vias {
		if via.Net != nil && via.Net.Name == netName {
			vias = append(vias, via)
		}
	}
	return vias
}

// NetInfo contains information about a net and its connections
type NetInfo struct {
	Net    *Net
	Pads   []NetPad
	Tracks []Track
	Vias   []Via
}

// TrackLength sums the length of every track on the net
func (ni *NetInfo) TrackLength() float64 {
	total := 0.0
	for _, t := range ni.Tracks {
		total += t.Length()
	}
	return total
}

// GetNetInfo returns complete information about a net
func (b *Board) GetNetInfo(netName string) *NetInfo {
	net := b.GetNet(netName)
	if net == nil {
		return nil
	}

	return &NetInfo{
		Net:    net,
		Pads:   b.GetNetPads(netName),
		Tracks: b.GetNetTracks(netName),
		Vias:   b.GetNetVias(netName),
	}
}

// GetAllNetNames returns a list of all net names in the board
func (b *Board) GetAllNetNames() []string {
	names := make([]string, 0, len(b.Nets))
	for _, net := range b.Nets {
		if net.Name != "" {
			names = append(names, net.Name)
		}
	}
	return names
}
