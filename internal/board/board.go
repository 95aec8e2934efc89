// Package board commits a layout ledger to a KiCad board document.
package board

import (
	"fmt"
	"io"
	"math"
	"regexp"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/ringlayout/pkg/geom"
	"github.com/OpenTraceLab/ringlayout/pkg/kicad/footprint"
	"github.com/OpenTraceLab/ringlayout/pkg/kicad/pcb"
	"github.com/OpenTraceLab/ringlayout/pkg/kicad/sexp"
	"github.com/OpenTraceLab/ringlayout/pkg/layout"
)

// Stats counts what a commit or a clear changed on the board
type Stats struct {
	Footprints int
	Traces     int
	Vias       int
	Drawings   int
	Nets       int
}

// NodeTemplate turns a library footprint into the template the layout
// engine places. fixed pins pads to board-wide nets.
func NodeTemplate(fp *footprint.Template, fixed map[string]string) layout.Template {
	tpl := layout.Template{
		Library:   fp.Library,
		Name:      fp.Name,
		Pads:      make([]layout.PadTemplate, len(fp.Pads)),
		FixedNets: fixed,
	}
	for i, p := range fp.Pads {
		tpl.Pads[i] = layout.PadTemplate{Name: p.Name, Offset: geom.Pt(p.Offset.X, p.Offset.Y)}
	}
	return tpl
}

// NodePattern matches the references the generator hands out for prefix
func NodePattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `\d+$`)
}

// Clear removes what a previous run left behind: the placed nodes and the
// board outline
func Clear(doc *pcb.Document, prefix string) Stats {
	return Stats{
		Footprints: doc.DeleteFootprints(NodePattern(prefix)),
		Drawings:   doc.DeleteLayerDrawings(layout.LayerEdgeCuts),
	}
}

// Committer writes ledgers into a document
type Committer struct {
	Doc       *pcb.Document
	Footprint *footprint.Template

	logger *log.Logger
}

// NewCommitter returns a committer stamping fp onto doc. A nil logger is
// silent.
func NewCommitter(doc *pcb.Document, fp *footprint.Template, logger *log.Logger) *Committer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Committer{Doc: doc, Footprint: fp, logger: logger}
}

// Commit adds every node, trace, via and drawing of the ledger to the
// document. Placed node references are hidden.
func (c *Committer) Commit(ledger *layout.Ledger) (Stats, error) {
	if c.Footprint == nil {
		return Stats{}, fmt.Errorf("commit: %w: no footprint", footprint.ErrTemplateNotFound)
	}

	if err := c.checkLayers(ledger); err != nil {
		return Stats{}, fmt.Errorf("commit: %w", err)
	}

	netsBefore := len(c.Doc.Nets())
	var st Stats

	for _, n := range ledger.Nodes {
		nets := make(map[string]string, len(n.Pads))
		for _, p := range n.Pads {
			nets[p.Name] = p.Net
		}
		at := sexp.PositionAngle{Position: toPosition(n.Position), Angle: sexp.Angle(n.Orientation * 180 / math.Pi)}
		c.Doc.AddFootprint(c.Footprint.Instance(n.Reference, at, nets))
		c.logger.Debug("added footprint", "ref", n.Reference, "at", n.Position)
		st.Footprints++
	}

	for _, t := range ledger.Traces {
		c.Doc.AddTrack(toPosition(t.Start), toPosition(t.End), t.Width, t.Layer, t.Net)
		st.Traces++
	}

	for _, v := range ledger.Vias {
		c.Doc.AddVia(toPosition(v.Position), v.Size, v.Drill, v.Layers, v.Net)
		st.Vias++
	}

	for _, ln := range ledger.Lines {
		c.Doc.AddSegment(toPosition(ln.Start), toPosition(ln.End), ln.Width, ln.Layer)
		st.Drawings++
	}
	for _, ci := range ledger.Circles {
		c.Doc.AddCircle(toPosition(ci.Center), ci.Radius, ci.Width, ci.Layer)
		st.Drawings++
	}

	if st.Footprints > 0 {
		hidden := c.Doc.HideReferences(NodePattern(ledger.Prefix))
		c.logger.Debug("hid reference labels", "count", hidden)
	}

	st.Nets = len(c.Doc.Nets()) - netsBefore
	return st, nil
}

// checkLayers fails before anything is added when the ledger uses a layer
// the board lacks
func (c *Committer) checkLayers(ledger *layout.Ledger) error {
	for _, t := range ledger.Traces {
		if err := c.Doc.CheckLayer(t.Layer, true); err != nil {
			return err
		}
	}
	for _, v := range ledger.Vias {
		for _, l := range v.Layers {
			if err := c.Doc.CheckLayer(l, true); err != nil {
				return err
			}
		}
	}
	for _, ln := range ledger.Lines {
		if err := c.Doc.CheckLayer(ln.Layer, false); err != nil {
			return err
		}
	}
	for _, ci := range ledger.Circles {
		if err := c.Doc.CheckLayer(ci.Layer, false); err != nil {
			return err
		}
	}
	return nil
}

func toPosition(p geom.Point) pcb.Position {
	return pcb.Position{X: p.X, Y: p.Y}
}
