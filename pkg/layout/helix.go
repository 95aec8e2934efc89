package layout

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/ringlayout/pkg/curve"
	"github.com/OpenTraceLab/ringlayout/pkg/geom"
)

// Summary counts what a run produced
type Summary struct {
	Nodes        int
	Merged       int
	Traces       int
	Vias         int
	Guides       int
	ClipFailures int
}

// HelixLoop lays out a helix ring into a ledger
type HelixLoop struct {
	Params   HelixParams
	Template Template

	logger *log.Logger
	opts   []Option
}

// NewHelixLoop returns a generator for p stamping tpl
func NewHelixLoop(p HelixParams, tpl Template, opts ...Option) *HelixLoop {
	s := applyOptions(opts)
	return &HelixLoop{Params: p, Template: tpl, logger: s.logger, opts: opts}
}

// pass is one walk over a curve feeding a single chain
type pass struct {
	name          string
	curve         curve.Curve
	walk          curve.WalkOptions
	allowOverlaps bool
}

func (h *HelixLoop) passes() []pass {
	p := h.Params
	wave := p.Wave()

	// The second wave starts half a cycle later. Its nodes trace the mirror
	// boundary, sampled from a different start point than Flipped() would.
	shifted := wave
	shifted.Phase = math.Pi / p.HelixCycles

	waveWalk := curve.WalkOptions{Samples: p.WaveSamples, Spacing: p.Spacing, Closed: true}
	out := []pass{
		{name: "wave", curve: wave, walk: waveWalk},
		{name: "wave shifted", curve: shifted, walk: waveWalk},
	}

	spiralWalk := curve.WalkOptions{Samples: p.Spiral.Samples, Spacing: p.Spacing}
	for i := 0; i < p.Spiral.Count; i++ {
		out = append(out, pass{
			name:          fmt.Sprintf("spiral %d", i),
			curve:         p.SpiralArm(i),
			walk:          spiralWalk,
			allowOverlaps: true,
		})
	}
	return out
}

// Run lays out the edge outline, both waves, the spiral arms and the guide
// lines. ctx is checked between passes; a cancelled run leaves whatever was
// already placed in the ledger.
func (h *HelixLoop) Run(ctx context.Context, ledger *Ledger) (Summary, error) {
	p := h.Params
	if err := p.Validate(); err != nil {
		return Summary{}, err
	}

	startNodes, startTraces, startVias := len(ledger.Nodes), len(ledger.Traces), len(ledger.Vias)

	ledger.AddCircle(Circle{Center: p.Center, Radius: p.EdgeRadius, Layer: LayerEdgeCuts, Width: p.EdgeWidth})

	// the index covers the board outline with room to spare
	resolver := NewResolver(ledger, h.Template, p.Center, 2*p.EdgeRadius, h.opts...)
	resolver.Threshold = p.OverlapThreshold

	router := NewRouter(ledger, h.opts...)
	router.PadMap = p.Wiring.PadMap
	router.GroundPad = p.Wiring.GroundPad
	router.GroundStubLength = p.Wiring.GroundStubLength
	router.TraceWidth = p.Wiring.TraceWidth
	router.ViaSize = p.Wiring.ViaSize
	router.ViaDrill = p.Wiring.ViaDrill
	router.SkipTraces = p.Wiring.SkipTraces

	var chain SeriesChain
	for _, ps := range h.passes() {
		if err := ctx.Err(); err != nil {
			return Summary{}, fmt.Errorf("layout interrupted before %s: %w", ps.name, err)
		}
		placed, err := h.runPass(ps, &chain, resolver, router)
		if err != nil {
			return Summary{}, fmt.Errorf("%s: %w", ps.name, err)
		}
		chain.Break()
		h.logger.Info("placed pass", "pass", ps.name, "nodes", placed)
	}

	if err := ctx.Err(); err != nil {
		return Summary{}, fmt.Errorf("layout interrupted before guides: %w", err)
	}
	guides, failures := h.drawGuides(ledger)

	sum := Summary{
		Nodes:        len(ledger.Nodes) - startNodes,
		Merged:       resolver.Merged(),
		Traces:       len(ledger.Traces) - startTraces,
		Vias:         len(ledger.Vias) - startVias,
		Guides:       guides,
		ClipFailures: failures,
	}
	return sum, nil
}

func (h *HelixLoop) runPass(ps pass, chain *SeriesChain, resolver *Resolver, router *Router) (int, error) {
	if err := ps.walk.Validate(); err != nil {
		return 0, err
	}

	placed := 0
	for sample := range curve.Walk(ps.curve, ps.walk) {
		node, created := resolver.Resolve(sample, ps.allowOverlaps)
		if !created {
			continue
		}
		placed++
		if err := router.Route(chain, node); err != nil {
			return placed, err
		}
	}
	return placed, nil
}

// drawGuides draws radial silkscreen lines whose outer ends stop on the
// helix boundary. A line the clipper cannot settle is skipped.
func (h *HelixLoop) drawGuides(ledger *Ledger) (drawn, failed int) {
	p := h.Params
	g := p.Guides
	if g.Count == 0 {
		return 0, 0
	}

	clipper := curve.NewClipper(p.Center, g.MinRadius)
	if g.Tolerance > 0 {
		clipper.Tolerance = g.Tolerance
	}
	boundaries := p.Wave().Variants()

	for i := 0; i < g.Count; i++ {
		angle := float64(i) * geom.TwoPi / float64(g.Count)
		inner := p.Center.Add(geom.Polar(g.InnerRadius, angle))
		outer := p.Center.Add(geom.Polar(p.EdgeRadius, angle))

		res, err := clipper.Clip(inner, outer, boundaries...)
		if err != nil {
			failed++
			var ce *curve.ClipError
			if errors.As(err, &ce) {
				h.logger.Warn("skipping guide line", "index", i, "reason", ce.Reason, "iterations", ce.Iterations, "residual", ce.Residual)
			} else {
				h.logger.Warn("skipping guide line", "index", i, "err", err)
			}
			continue
		}

		ledger.AddLine(Line{Start: res.Inner, End: res.Outer, Layer: g.Layer, Width: g.Width})
		drawn++
	}
	return drawn, failed
}
