package layout

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/ringlayout/pkg/curve"
	"github.com/OpenTraceLab/ringlayout/pkg/geom"
)

// Resolver defaults
const (
	DefaultOverlapThreshold = 0.8
	DefaultRelinkTolerance  = 0.1
)

// Resolver turns walker samples into placed nodes. A sample landing on top
// of an earlier node is folded into it instead of creating a new one.
type Resolver struct {
	Threshold       float64 // Nodes closer than this conflict
	RelinkTolerance float64 // How close a wire end has to be to a pad to follow it

	ledger   *Ledger
	template Template
	relinker Relinker
	index    *nodeIndex
	logger   *log.Logger

	merged int
}

// NewResolver returns a resolver placing tpl into ledger. Wiring is relinked
// through the ledger; indexBounds is the half-size of the square around
// center that the spatial index covers.
func NewResolver(ledger *Ledger, tpl Template, center geom.Point, indexBounds float64, opts ...Option) *Resolver {
	s := applyOptions(opts)
	r := &Resolver{
		Threshold:       DefaultOverlapThreshold,
		RelinkTolerance: DefaultRelinkTolerance,
		ledger:          ledger,
		template:        tpl,
		relinker:        ledger,
		index:           newNodeIndex(center, indexBounds),
		logger:          s.logger,
	}
	for _, n := range ledger.Nodes {
		r.index.insert(n)
	}
	return r
}

// SetRelinker replaces the ledger as the target of relink calls
func (r *Resolver) SetRelinker(rl Relinker) {
	r.relinker = rl
}

// Merged is the number of samples folded into an existing node
func (r *Resolver) Merged() int {
	return r.merged
}

// Resolve places c. It returns the node the sample ended up in and whether
// that node was created by this call.
func (r *Resolver) Resolve(c curve.Sample, allowOverlaps bool) (*Node, bool) {
	if !allowOverlaps {
		if conflicts := r.index.within(c.Pos, r.Threshold); len(conflicts) > 0 {
			existing := conflicts[0]
			r.merge(existing, c)
			return existing, false
		}
	}

	n := r.ledger.AddNode(r.template, c.Pos, c.Orientation)
	r.index.insert(n)
	r.logger.Debug("placed node", "ref", n.Reference, "pos", n.Position, "orientation", n.Orientation)
	return n, true
}

// MergeOrientation is the orientation an existing node takes when a
// candidate is folded into it. Orientations are compared modulo a quarter
// turn; near-perpendicular differences nudge toward the candidate, small
// ones away from it.
func MergeOrientation(existing, candidate float64) float64 {
	const quarter = math.Pi / 2
	delta := geom.FloorMod(existing, quarter) - geom.FloorMod(candidate, quarter)

	adjust := -delta / 2
	if math.Abs(delta) > math.Pi/4 {
		adjust = delta / 2
	}
	return existing + adjust
}

func (r *Resolver) merge(existing *Node, c curve.Sample) {
	r.merged++
	if existing.Moved {
		r.logger.Debug("node already relocated, dropping candidate", "ref", existing.Reference, "candidate", c.Pos)
		return
	}

	pos := existing.Position.Midpoint(c.Pos)
	orientation := MergeOrientation(existing.Orientation, c.Orientation)
	r.logger.Info("merging overlapping node",
		"ref", existing.Reference, "from", existing.Position, "to", pos, "orientation", orientation)

	before := existing.PadPositions()
	existing.Position = pos
	existing.Orientation = orientation
	existing.Moved = true
	r.index.move(existing)

	for i, after := range existing.PadPositions() {
		if n := r.relinker.Relink(before[i], after, r.RelinkTolerance); n > 0 {
			r.logger.Debug("relinked wiring", "ref", existing.Reference, "pad", existing.Pads[i].Name, "endpoints", n)
		}
	}
}
