package curve

import (
	"errors"
	"fmt"
	"iter"

	"github.com/OpenTraceLab/ringlayout/pkg/geom"
)

// WrapFactor scales the spacing used to keep a closed walk from placing a
// node on top of its own first node when it comes back around
const WrapFactor = 0.9

var (
	// ErrBadSpacing is returned for a non-positive spacing
	ErrBadSpacing = errors.New("walk spacing must be positive")
	// ErrBadSamples is returned for a non-positive sample count
	ErrBadSamples = errors.New("walk sample count must be positive")
)

// WalkOptions controls how a curve is sampled
type WalkOptions struct {
	// Samples is the number of raw evaluations over Span. It has to be
	// large enough that consecutive raw samples are much closer together
	// than Spacing, otherwise spacing degrades to the raw step.
	Samples int

	// Spacing is the minimum distance between consecutive emitted samples
	Spacing float64

	// Start is added to every θ
	Start float64

	// Span is the θ range walked; zero means a full turn
	Span float64

	// Closed enables the wrap guard: once something was emitted, a sample
	// closer than WrapFactor·Spacing to the first emission is skipped
	Closed bool
}

// Validate rejects options that would make the walk degenerate
func (o WalkOptions) Validate() error {
	if o.Samples <= 0 {
		return fmt.Errorf("%w: %d", ErrBadSamples, o.Samples)
	}
	if o.Spacing <= 0 {
		return fmt.Errorf("%w: %g", ErrBadSpacing, o.Spacing)
	}
	return nil
}

func (o WalkOptions) span() float64 {
	if o.Span == 0 {
		return geom.TwoPi
	}
	return o.Span
}

// Walk lazily samples c and yields a reduced, near-uniformly spaced
// sequence of placement candidates. Arc length is never computed: the
// walker steps through Samples raw evaluations and emits one whenever it has
// moved at least Spacing away from the previous emission.
//
// Invalid options yield an empty sequence; call Validate to find out why.
func Walk(c Curve, opts WalkOptions) iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		if opts.Validate() != nil {
			return
		}

		span := opts.span()
		last := geom.Inf()
		var first geom.Point
		haveFirst := false

		for s := 0; s < opts.Samples; s++ {
			theta := opts.Start + span*float64(s)/float64(opts.Samples)
			sample := c.At(theta)

			// space the nodes roughly evenly along the curve
			if last.Distance(sample.Pos) < opts.Spacing {
				continue
			}

			// skip overlap where a closed curve meets its own start
			if opts.Closed && haveFirst && first.Distance(sample.Pos) < opts.Spacing*WrapFactor {
				continue
			}
			if !haveFirst {
				first = sample.Pos
				haveFirst = true
			}

			last = sample.Pos
			if !yield(sample) {
				return
			}
		}
	}
}

// Collect runs a walk to completion and returns every emitted sample
func Collect(c Curve, opts WalkOptions) []Sample {
	var out []Sample
	for s := range Walk(c, opts) {
		out = append(out, s)
	}
	return out
}
