package curve

import (
	"errors"
	"fmt"
	"math"

	"github.com/OpenTraceLab/ringlayout/pkg/geom"
)

// Clipper defaults
const (
	DefaultClipTolerance     = 1.0
	DefaultClipMaxIterations = 100
)

var (
	// ErrNotConverged means the iteration cap was reached first
	ErrNotConverged = errors.New("clip did not converge")
	// ErrBelowFloor means the endpoint radius dropped below MinRadius
	ErrBelowFloor = errors.New("clip radius below floor")
	// ErrNoBoundary means Clip was called without boundary curves
	ErrNoBoundary = errors.New("clip needs at least one boundary curve")
)

// ClipError describes a clip that stopped without converging. Outer holds
// the last endpoint so callers can still inspect the best effort.
type ClipError struct {
	Reason     error
	Iterations int
	Residual   float64
	Outer      geom.Point
}

func (e *ClipError) Error() string {
	return fmt.Sprintf("%v after %d iterations (residual %.3f, endpoint %s)",
		e.Reason, e.Iterations, e.Residual, e.Outer)
}

func (e *ClipError) Unwrap() error {
	return e.Reason
}

// ClipResult is a successfully clipped segment
type ClipResult struct {
	Inner      geom.Point
	Outer      geom.Point
	Iterations int
	Residual   float64
}

// Clipper trims the outer end of a segment back onto a boundary curve.
// Radii and angles are measured about Center. The outer endpoint keeps its
// angle; only its radius is relaxed toward the nearest boundary.
type Clipper struct {
	Center        geom.Point
	Tolerance     float64 // Converged when the endpoint is closer than this to a boundary
	MinRadius     float64 // Give up when the endpoint radius falls below this
	MaxIterations int     // Zero means DefaultClipMaxIterations
	Damping       float64 // Fraction of the excess removed per step; zero means 1
}

// NewClipper returns a clipper with default tolerance and iteration cap
func NewClipper(center geom.Point, minRadius float64) Clipper {
	return Clipper{
		Center:        center,
		Tolerance:     DefaultClipTolerance,
		MinRadius:     minRadius,
		MaxIterations: DefaultClipMaxIterations,
		Damping:       1,
	}
}

// Clip relaxes outer onto the nearest of boundaries. inner is carried
// through unchanged. The iteration count never exceeds MaxIterations.
func (c Clipper) Clip(inner, outer geom.Point, boundaries ...Curve) (ClipResult, error) {
	if len(boundaries) == 0 {
		return ClipResult{}, ErrNoBoundary
	}

	maxIter := c.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultClipMaxIterations
	}
	damping := c.Damping
	if damping <= 0 {
		damping = 1
	}
	tol := c.Tolerance
	if tol <= 0 {
		tol = DefaultClipTolerance
	}

	rel := outer.Sub(c.Center)
	angle := rel.Angle()
	radius := rel.Radius()

	for iter := 0; ; iter++ {
		endpoint := c.Center.Add(geom.Polar(radius, angle))

		residual := math.Inf(1)
		nearest := math.Inf(1)
		excess := 0.0
		for _, b := range boundaries {
			s := b.At(angle)
			residual = math.Min(residual, endpoint.Distance(s.Pos))

			br := s.Pos.Sub(c.Center).Radius()
			if d := math.Abs(radius - br); d < nearest {
				nearest = d
				excess = radius - br
			}
		}

		switch {
		case residual < tol:
			return ClipResult{Inner: inner, Outer: endpoint, Iterations: iter, Residual: residual}, nil
		case radius < c.MinRadius:
			return ClipResult{}, &ClipError{Reason: ErrBelowFloor, Iterations: iter, Residual: residual, Outer: endpoint}
		case iter >= maxIter:
			return ClipResult{}, &ClipError{Reason: ErrNotConverged, Iterations: iter, Residual: residual, Outer: endpoint}
		}

		radius -= damping * excess
	}
}
