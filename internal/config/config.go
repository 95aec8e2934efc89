// Package config reads the TOML layout configuration. Every key is optional;
// a file overlays the built-in helix ring.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/OpenTraceLab/ringlayout/pkg/geom"
	"github.com/OpenTraceLab/ringlayout/pkg/layout"
	"github.com/OpenTraceLab/ringlayout/pkg/padmap"
)

// DefaultFootprintPath is where KiCad keeps its stock footprint libraries on
// macOS
const DefaultFootprintPath = "/Library/Application Support/kicad/modules"

// ErrUnknownKey is returned for config keys nothing reads
var ErrUnknownKey = errors.New("unknown config key")

// Config is the whole layout configuration
type Config struct {
	Footprint FootprintConfig `toml:"footprint"`
	Ring      RingConfig      `toml:"ring"`
	Spiral    SpiralConfig    `toml:"spiral"`
	Guides    GuideConfig     `toml:"guides"`
	Wiring    WiringConfig    `toml:"wiring"`
}

// FootprintConfig selects the footprint every node is stamped from
type FootprintConfig struct {
	Paths     []string          `toml:"paths"`
	Library   string            `toml:"library"`
	Name      string            `toml:"name"`
	Prefix    string            `toml:"reference_prefix"`
	FixedNets map[string]string `toml:"fixed_nets"`
}

// RingConfig holds the board outline and the helix waves
type RingConfig struct {
	Center           [2]float64 `toml:"center"`
	EdgeRadius       float64    `toml:"edge_radius"`
	EdgeWidth        float64    `toml:"edge_width"`
	HelixRadius      float64    `toml:"helix_radius"`
	HelixAmplitude   float64    `toml:"helix_amplitude"`
	HelixCycles      float64    `toml:"helix_cycles"`
	PixelRotation    float64    `toml:"pixel_rotation"`
	Spacing          float64    `toml:"spacing"`
	WaveSamples      int        `toml:"wave_samples"`
	OverlapThreshold float64    `toml:"overlap_threshold"`
}

// SpiralConfig holds the spiral arms
type SpiralConfig struct {
	Count                 int     `toml:"count"`
	StartRadiusFactor     float64 `toml:"start_radius_factor"`
	StartAngle            float64 `toml:"start_angle"`
	Samples               int     `toml:"samples"`
	RadiusOffset          float64 `toml:"radius_offset"`
	RadiusPerLoop         float64 `toml:"radius_per_loop"`
	Loops                 float64 `toml:"loops"`
	ThetaOffset           float64 `toml:"theta_offset"`
	LinearAdjustStart     float64 `toml:"linear_adjust_start"`
	LinearAdjustSlope     float64 `toml:"linear_adjust_slope"`
	OrientationOffset     float64 `toml:"orientation_offset"`
	TailOrientationOffset float64 `toml:"tail_orientation_offset"`
}

// GuideConfig holds the silkscreen guide lines
type GuideConfig struct {
	Count       int     `toml:"count"`
	InnerRadius float64 `toml:"inner_radius"`
	MinRadius   float64 `toml:"min_radius"`
	Tolerance   float64 `toml:"tolerance"`
	Width       float64 `toml:"width"`
	Layer       string  `toml:"layer"`
}

// WiringConfig holds the chain wiring
type WiringConfig struct {
	PadMap           padmap.Map `toml:"pad_map"`
	GroundPad        string     `toml:"ground_pad"`
	GroundStubLength float64    `toml:"ground_stub_length"`
	TraceWidth       float64    `toml:"trace_width"`
	ViaSize          float64    `toml:"via_size"`
	ViaDrill         float64    `toml:"via_drill"`
}

// Default returns the APA102-2020 helix ring
func Default() Config {
	p := layout.DefaultHelixParams()
	return Config{
		Footprint: FootprintConfig{
			Paths:     []string{DefaultFootprintPath},
			Library:   "LED_SMD",
			Name:      "LED-APA102-2020",
			Prefix:    "D",
			FixedNets: map[string]string{"1": "+5V", p.Wiring.GroundPad: "GND"},
		},
		Ring: RingConfig{
			Center:           [2]float64{p.Center.X, p.Center.Y},
			EdgeRadius:       p.EdgeRadius,
			EdgeWidth:        p.EdgeWidth,
			HelixRadius:      p.HelixRadius,
			HelixAmplitude:   p.HelixAmplitude,
			HelixCycles:      p.HelixCycles,
			PixelRotation:    p.PixelRotation,
			Spacing:          p.Spacing,
			WaveSamples:      p.WaveSamples,
			OverlapThreshold: p.OverlapThreshold,
		},
		Spiral: SpiralConfig{
			Count:                 p.Spiral.Count,
			StartRadiusFactor:     p.Spiral.StartRadiusFactor,
			StartAngle:            p.Spiral.StartAngle,
			Samples:               p.Spiral.Samples,
			RadiusOffset:          p.Spiral.RadiusOffset,
			RadiusPerLoop:         p.Spiral.RadiusPerLoop,
			Loops:                 p.Spiral.Loops,
			ThetaOffset:           p.Spiral.ThetaOffset,
			LinearAdjustStart:     p.Spiral.LinearAdjustStart,
			LinearAdjustSlope:     p.Spiral.LinearAdjustSlope,
			OrientationOffset:     p.Spiral.OrientationOffset,
			TailOrientationOffset: p.Spiral.TailOrientationOffset,
		},
		Guides: GuideConfig{
			Count:       p.Guides.Count,
			InnerRadius: p.Guides.InnerRadius,
			MinRadius:   p.Guides.MinRadius,
			Tolerance:   p.Guides.Tolerance,
			Width:       p.Guides.Width,
			Layer:       p.Guides.Layer,
		},
		Wiring: WiringConfig{
			PadMap:           p.Wiring.PadMap,
			GroundPad:        p.Wiring.GroundPad,
			GroundStubLength: p.Wiring.GroundStubLength,
			TraceWidth:       p.Wiring.TraceWidth,
			ViaSize:          p.Wiring.ViaSize,
			ViaDrill:         p.Wiring.ViaDrill,
		},
	}
}

// Load overlays the TOML file at path on Default and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := cfg.Decode(string(data)); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode overlays TOML text on c and validates the result
func (c *Config) Decode(text string) error {
	md, err := toml.Decode(text, c)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	return c.Validate()
}

// Validate checks the footprint selection and the layout parameters
func (c Config) Validate() error {
	switch {
	case len(c.Footprint.Paths) == 0:
		return fmt.Errorf("%w: no footprint library paths", layout.ErrInvalidParams)
	case c.Footprint.Library == "" || c.Footprint.Name == "":
		return fmt.Errorf("%w: footprint library and name are required", layout.ErrInvalidParams)
	case c.Wiring.TraceWidth <= 0:
		return fmt.Errorf("%w: trace width %g must be positive", layout.ErrInvalidParams, c.Wiring.TraceWidth)
	case c.Wiring.ViaDrill >= c.Wiring.ViaSize:
		return fmt.Errorf("%w: via drill %g must be smaller than via size %g", layout.ErrInvalidParams, c.Wiring.ViaDrill, c.Wiring.ViaSize)
	}
	return c.HelixParams().Validate()
}

// HelixParams returns the layout parameters the config describes
func (c Config) HelixParams() layout.HelixParams {
	return layout.HelixParams{
		Center:     geom.Pt(c.Ring.Center[0], c.Ring.Center[1]),
		EdgeRadius: c.Ring.EdgeRadius,
		EdgeWidth:  c.Ring.EdgeWidth,

		HelixRadius:    c.Ring.HelixRadius,
		HelixAmplitude: c.Ring.HelixAmplitude,
		HelixCycles:    c.Ring.HelixCycles,
		PixelRotation:  c.Ring.PixelRotation,
		Spacing:        c.Ring.Spacing,
		WaveSamples:    c.Ring.WaveSamples,

		OverlapThreshold: c.Ring.OverlapThreshold,

		Spiral: layout.SpiralParams{
			Count:                 c.Spiral.Count,
			StartRadiusFactor:     c.Spiral.StartRadiusFactor,
			StartAngle:            c.Spiral.StartAngle,
			Samples:               c.Spiral.Samples,
			RadiusOffset:          c.Spiral.RadiusOffset,
			RadiusPerLoop:         c.Spiral.RadiusPerLoop,
			Loops:                 c.Spiral.Loops,
			ThetaOffset:           c.Spiral.ThetaOffset,
			LinearAdjustStart:     c.Spiral.LinearAdjustStart,
			LinearAdjustSlope:     c.Spiral.LinearAdjustSlope,
			OrientationOffset:     c.Spiral.OrientationOffset,
			TailOrientationOffset: c.Spiral.TailOrientationOffset,
		},

		Guides: layout.GuideParams{
			Count:       c.Guides.Count,
			InnerRadius: c.Guides.InnerRadius,
			MinRadius:   c.Guides.MinRadius,
			Tolerance:   c.Guides.Tolerance,
			Width:       c.Guides.Width,
			Layer:       c.Guides.Layer,
		},

		Wiring: layout.WiringParams{
			PadMap:           c.Wiring.PadMap,
			GroundPad:        c.Wiring.GroundPad,
			GroundStubLength: c.Wiring.GroundStubLength,
			TraceWidth:       c.Wiring.TraceWidth,
			ViaSize:          c.Wiring.ViaSize,
			ViaDrill:         c.Wiring.ViaDrill,
		},
	}
}
