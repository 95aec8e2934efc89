package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/ringlayout/pkg/padmap"
)

// Router defaults, in millimetres
const (
	DefaultGroundPad        = "6"
	DefaultGroundStubLength = 0.8
	DefaultTraceWidth       = 0.25
	DefaultViaSize          = 0.4064
	DefaultViaDrill         = 0.254
)

// ErrMissingPad is returned when a node lacks a pad the router needs
var ErrMissingPad = errors.New("pad not found on node")

// SeriesChain is the state of one daisy chain: the node the next one gets
// wired to
type SeriesChain struct {
	prev *Node
}

// Previous returns the last routed node, or nil at the start of a chain
func (c *SeriesChain) Previous() *Node {
	return c.prev
}

// Break ends the chain. The next routed node starts a new one with no wire
// back to anything placed before.
func (c *SeriesChain) Break() {
	c.prev = nil
}

// Router wires each new node to its chain and grounds it
type Router struct {
	PadMap           padmap.Map
	GroundPad        string
	GroundStubLength float64
	TraceWidth       float64
	TraceLayer       string
	ViaSize          float64
	ViaDrill         float64

	// SkipTraces advances chains without emitting any copper
	SkipTraces bool

	ledger *Ledger
	logger *log.Logger
}

// NewRouter returns a router writing into ledger with the default pad
// template
func NewRouter(ledger *Ledger, opts ...Option) *Router {
	s := applyOptions(opts)
	return &Router{
		PadMap:           padmap.Default(),
		GroundPad:        DefaultGroundPad,
		GroundStubLength: DefaultGroundStubLength,
		TraceWidth:       DefaultTraceWidth,
		TraceLayer:       LayerFrontCopper,
		ViaSize:          DefaultViaSize,
		ViaDrill:         DefaultViaDrill,
		ledger:           ledger,
		logger:           s.logger,
	}
}

// Route grounds node and wires it to the chain's previous node, then makes
// it the previous node. The chain advances even when an error is returned.
func (r *Router) Route(chain *SeriesChain, node *Node) error {
	prev := chain.prev
	chain.prev = node

	if r.SkipTraces {
		return nil
	}

	if err := r.groundStub(node); err != nil {
		return err
	}
	if prev == nil {
		return nil
	}
	return r.link(prev, node)
}

func (r *Router) groundStub(node *Node) error {
	if r.GroundPad == "" {
		return nil
	}
	pad := node.Pad(r.GroundPad)
	if pad == nil {
		return fmt.Errorf("%w: ground pad %q on %s", ErrMissingPad, r.GroundPad, node.Reference)
	}

	start := node.PadPosition(pad)
	end := start.PolarTranslated(r.GroundStubLength, -math.Pi/2-node.Orientation)
	r.ledger.AddTrace(Trace{Start: start, End: end, Net: pad.Net, Width: r.TraceWidth, Layer: r.TraceLayer})
	r.ledger.AddVia(Via{
		Position: end,
		Net:      pad.Net,
		Size:     r.ViaSize,
		Drill:    r.ViaDrill,
		Layers:   [2]string{LayerFrontCopper, LayerBackCopper},
	})
	return nil
}

func (r *Router) link(prev, node *Node) error {
	for _, e := range r.PadMap {
		src := prev.Pad(e.From)
		if src == nil {
			return fmt.Errorf("%w: source pad %q on %s", ErrMissingPad, e.From, prev.Reference)
		}
		dst := node.Pad(e.To)
		if dst == nil {
			return fmt.Errorf("%w: destination pad %q on %s", ErrMissingPad, e.To, node.Reference)
		}
		if src.Wired {
			r.logger.Debug("pad already wired, skipping", "ref", prev.Reference, "pad", src.Name)
			continue
		}

		src.Net = dst.Net
		src.Wired = true
		r.ledger.AddTrace(Trace{
			Start: prev.PadPosition(src),
			End:   node.PadPosition(dst),
			Net:   dst.Net,
			Width: r.TraceWidth,
			Layer: r.TraceLayer,
		})
		r.logger.Debug("wired", "from", prev.Reference, "pad", src.Name, "to", node.Reference, "topad", dst.Name)
	}
	return nil
}
