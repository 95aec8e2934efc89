// Package geom provides the planar point type used by the layout engine.
// Coordinates are in millimetres in board space; angles are in radians.
//
// Point shares its layout with curve.Point so the vector and affine
// operations of honnef.co/go/curve apply directly.
package geom

import (
	"fmt"
	"math"

	"honnef.co/go/curve"
)

// TwoPi is a full turn in radians
const TwoPi = 2 * math.Pi

// Point is an immutable (x, y) pair with Cartesian and polar views
type Point struct {
	X float64
	Y float64
}

func (p Point) c() curve.Point { return curve.Point(p) }

func fromVec(v curve.Vec2) Point { return Point(v) }

// Pt creates a point from Cartesian coordinates
func Pt(x, y float64) Point {
	return Point(curve.Pt(x, y))
}

// Polar creates a point at the given radius and angle from the origin
func Polar(radius, angle float64) Point {
	return fromVec(curve.VecFromAngle(angle).Mul(radius))
}

// Inf is a point at infinite distance from every finite point
func Inf() Point {
	return Point{X: math.Inf(1), Y: math.Inf(1)}
}

// Vec returns the displacement from the origin to p
func (p Point) Vec() curve.Vec2 {
	return curve.Vec2(p)
}

// Radius returns the distance from the origin
func (p Point) Radius() float64 {
	return p.Vec().Hypot()
}

// Angle returns the polar angle normalized to [0, 2π)
func (p Point) Angle() float64 {
	return NormalizeAngle(p.Vec().Angle())
}

// WithRadius returns the point with the same angle at radius r
func (p Point) WithRadius(r float64) Point {
	return Polar(r, p.Angle())
}

// WithAngle returns the point with the same radius at angle a
func (p Point) WithAngle(a float64) Point {
	return Polar(p.Radius(), a)
}

// Add returns the component-wise sum
func (p Point) Add(o Point) Point {
	return Point(p.c().Translate(o.Vec()))
}

// Sub returns the component-wise difference
func (p Point) Sub(o Point) Point {
	return fromVec(p.c().Sub(o.c()))
}

// Scale multiplies both components by f
func (p Point) Scale(f float64) Point {
	return fromVec(p.Vec().Mul(f))
}

// Translate is Add under the name used for moving board objects
func (p Point) Translate(v Point) Point {
	return p.Add(v)
}

// PolarTranslated moves the point by distance d in direction angle
func (p Point) PolarTranslated(d, angle float64) Point {
	return Point(p.c().Translate(curve.VecFromAngle(angle).Mul(d)))
}

// Rotate rotates the point about the origin by angle radians
func (p Point) Rotate(angle float64) Point {
	return Point(p.c().Transform(curve.Rotate(angle)))
}

// RotateAbout rotates the point by angle radians around center
func (p Point) RotateAbout(angle float64, center Point) Point {
	return Point(p.c().Transform(curve.RotateAbout(angle, center.c())))
}

// Distance returns the Euclidean distance to o
func (p Point) Distance(o Point) float64 {
	return p.c().Distance(o.c())
}

// Midpoint returns the point halfway between p and o
func (p Point) Midpoint(o Point) Point {
	return Point(p.c().Midpoint(o.c()))
}

// Near reports whether o lies within tol of p
func (p Point) Near(o Point, tol float64) bool {
	return p.Distance(o) < tol
}

// IsInf reports whether either coordinate is infinite
func (p Point) IsInf() bool {
	return p.c().IsInf()
}

func (p Point) String() string {
	return fmt.Sprintf("(%0.2f, %0.2f)", p.X, p.Y)
}

// NormalizeAngle maps any angle into [0, 2π)
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	// Mod of a tiny negative value can round up to exactly 2π
	if a >= TwoPi {
		a = 0
	}
	return a
}

// FloorMod returns a modulo m with the sign of m, so the result for
// positive m lies in [0, m)
func FloorMod(a, m float64) float64 {
	r := math.Mod(a, m)
	if r != 0 && (r < 0) != (m < 0) {
		r += m
	}
	return r
}
