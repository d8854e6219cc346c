/*
Copyright © 2026 the Sketch authors.
This file is part of Sketch.

Sketch is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Sketch is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Sketch.  If not, see <http://www.gnu.org/licenses/>.
*/

package sketch

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

const (
	// DefaultLayer is the layer shapes are placed on when no layer is
	// specified.
	DefaultLayer = "0"

	// MergeTol is the default coordinate tolerance below which two
	// endpoints are treated as the same Point.
	MergeTol = 1.e-4

	// denomTol guards divisions by near-zero geometric denominators:
	// below it, the geometry is degenerate and the operation becomes a
	// no-op.
	denomTol = 1.e-9
)

// Segment construction sub-types. Infinite sub-types extend a
// construction line beyond one or both endpoints.
const (
	Finite        = "finite"
	InfiniteStart = "infinite-start"
	InfiniteEnd   = "infinite-end"
	InfiniteBoth  = "infinite-both"
)

// Snap point kinds.
const (
	SnapEndpoint = "endpoint"
	SnapMidpoint = "midpoint"
	SnapCenter   = "center"
	SnapQuadrant = "quadrant"
)

// A Primitive is a geometric element of a sketch. Renderers draw
// primitives by reading their coordinates; editing tools hit-test them
// with DistanceTo and snap to the locations returned by SnapPoints.
type Primitive interface {
	// ID returns the identifier the owning Scene assigned to the
	// primitive, unique across all primitives for the life of the
	// process.
	ID() int

	// DistanceTo returns the distance from the world location (x, y)
	// to the nearest part of the primitive.
	DistanceTo(x, y float64) float64

	// Bounds returns the spatial extent of the primitive.
	Bounds() *geom.Bounds

	// SnapPoints returns the characteristic locations on the primitive
	// that picking operations snap to.
	SnapPoints() []SnapPoint
}

// Radial is a primitive with a center point and a radius: a Circle or
// an Arc.
type Radial interface {
	Primitive
	CenterPoint() *Point
	R() float64
	SetR(float64)
}

var (
	_ Primitive = (*Point)(nil)
	_ Primitive = (*Segment)(nil)
	_ Primitive = (*Circle)(nil)
	_ Primitive = (*Arc)(nil)
	_ Primitive = (*Text)(nil)
	_ Radial    = (*Circle)(nil)
	_ Radial    = (*Arc)(nil)
)

// A SnapPoint is a location on a primitive that picking snaps to.
type SnapPoint struct {
	geom.Point
	Kind  string
	Owner Primitive
}

// Attrs holds the display attributes shared by all shapes. A Color of
// "" means the shape draws with its layer's color.
type Attrs struct {
	Layer        string
	Color        string
	LineWidth    float64
	Selected     bool
	Visible      bool
	Construction bool
}

func defaultAttrs() Attrs {
	return Attrs{Layer: DefaultLayer, LineWidth: 1, Visible: true}
}

// A Point is the unique owner of a 2D coordinate. Segments, circles,
// and arcs do not store coordinates of their own; they reference
// Points, so shapes sharing a Point stay connected when it moves.
type Point struct {
	geom.Point

	// Fixed forbids the solver from moving the point. Direct edits
	// (MovePoint, Trim) may still move it.
	Fixed bool

	Layer string
	Color string

	id int
}

// ID returns the point's identifier.
func (p *Point) ID() int { return p.id }

// DistanceTo returns the distance from (x, y) to the point.
func (p *Point) DistanceTo(x, y float64) float64 {
	return math.Hypot(p.X-x, p.Y-y)
}

// SnapPoints returns the point itself.
func (p *Point) SnapPoints() []SnapPoint {
	return []SnapPoint{{Point: p.Point, Kind: SnapEndpoint, Owner: p}}
}

func (p *Point) String() string {
	return fmt.Sprintf("Point[%d](%g, %g)", p.id, p.X, p.Y)
}

// A Segment is a straight line between two endpoint Points.
type Segment struct {
	Attrs
	P1, P2 *Point

	// ConstructionType extends a construction line beyond its
	// endpoints: Finite, InfiniteStart, InfiniteEnd, or InfiniteBoth.
	ConstructionType string

	// ConstructionDash is the dash pattern construction lines draw
	// with, e.g. "8,4".
	ConstructionDash string

	id int
}

// ID returns the segment's identifier.
func (s *Segment) ID() int { return s.id }

// Length returns the distance between the segment's endpoints.
func (s *Segment) Length() float64 {
	return math.Hypot(s.P2.X-s.P1.X, s.P2.Y-s.P1.Y)
}

// Midpoint returns the point halfway between the segment's endpoints.
func (s *Segment) Midpoint() geom.Point {
	return geom.Point{X: (s.P1.X + s.P2.X) / 2, Y: (s.P1.Y + s.P2.Y) / 2}
}

// PointAt returns the location at parameter t along the segment, where
// t=0 is P1 and t=1 is P2.
func (s *Segment) PointAt(t float64) geom.Point {
	return geom.Point{
		X: s.P1.X + t*(s.P2.X-s.P1.X),
		Y: s.P1.Y + t*(s.P2.Y-s.P1.Y),
	}
}

// closestParam returns the parameter of the location on the segment
// closest to (x, y). The parameter range depends on the construction
// sub-type: infinite sub-types extend it past 0, past 1, or both.
func (s *Segment) closestParam(x, y float64) float64 {
	Δx := s.P2.X - s.P1.X
	Δy := s.P2.Y - s.P1.Y
	len2 := Δx*Δx + Δy*Δy
	if len2 < denomTol*denomTol {
		return 0
	}
	t := ((x-s.P1.X)*Δx + (y-s.P1.Y)*Δy) / len2
	switch s.ConstructionType {
	case InfiniteBoth:
	case InfiniteStart:
		t = math.Min(t, 1)
	case InfiniteEnd:
		t = math.Max(t, 0)
	default:
		t = math.Max(0, math.Min(1, t))
	}
	return t
}

// DistanceTo returns the distance from (x, y) to the segment, or to
// its infinite extension if it is a construction line with an infinite
// sub-type.
func (s *Segment) DistanceTo(x, y float64) float64 {
	p := s.PointAt(s.closestParam(x, y))
	return math.Hypot(p.X-x, p.Y-y)
}

// Bounds returns the bounding box of the segment's endpoints.
func (s *Segment) Bounds() *geom.Bounds {
	b := geom.NewBoundsPoint(s.P1.Point)
	b.Extend(geom.NewBoundsPoint(s.P2.Point))
	return b
}

// SnapPoints returns the segment's endpoints and midpoint.
func (s *Segment) SnapPoints() []SnapPoint {
	return []SnapPoint{
		{Point: s.P1.Point, Kind: SnapEndpoint, Owner: s},
		{Point: s.P2.Point, Kind: SnapEndpoint, Owner: s},
		{Point: s.Midpoint(), Kind: SnapMidpoint, Owner: s},
	}
}

func (s *Segment) String() string {
	return fmt.Sprintf("Segment[%d](%g, %g)-(%g, %g)", s.id, s.P1.X, s.P1.Y, s.P2.X, s.P2.Y)
}

// A Circle is defined by a center Point and a radius.
type Circle struct {
	Attrs
	Center *Point
	Radius float64

	id int
}

// ID returns the circle's identifier.
func (c *Circle) ID() int { return c.id }

// CenterPoint returns the circle's center.
func (c *Circle) CenterPoint() *Point { return c.Center }

// R returns the circle's radius.
func (c *Circle) R() float64 { return c.Radius }

// SetR sets the circle's radius.
func (c *Circle) SetR(r float64) { c.Radius = r }

// DistanceTo returns the distance from (x, y) to the circle's outline.
func (c *Circle) DistanceTo(x, y float64) float64 {
	return math.Abs(math.Hypot(x-c.Center.X, y-c.Center.Y) - c.Radius)
}

// Bounds returns the bounding box of the circle.
func (c *Circle) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius},
		Max: geom.Point{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius},
	}
}

// SnapPoints returns the circle's center and four quadrant points.
func (c *Circle) SnapPoints() []SnapPoint {
	return []SnapPoint{
		{Point: c.Center.Point, Kind: SnapCenter, Owner: c},
		{Point: geom.Point{X: c.Center.X + c.Radius, Y: c.Center.Y}, Kind: SnapQuadrant, Owner: c},
		{Point: geom.Point{X: c.Center.X, Y: c.Center.Y + c.Radius}, Kind: SnapQuadrant, Owner: c},
		{Point: geom.Point{X: c.Center.X - c.Radius, Y: c.Center.Y}, Kind: SnapQuadrant, Owner: c},
		{Point: geom.Point{X: c.Center.X, Y: c.Center.Y - c.Radius}, Kind: SnapQuadrant, Owner: c},
	}
}

// An Arc is a section of a circle swept counterclockwise from
// StartAngle to EndAngle about a center Point. Angles are in radians.
type Arc struct {
	Attrs
	Center     *Point
	Radius     float64
	StartAngle float64
	EndAngle   float64

	id int
}

// ID returns the arc's identifier.
func (a *Arc) ID() int { return a.id }

// CenterPoint returns the arc's center.
func (a *Arc) CenterPoint() *Point { return a.Center }

// R returns the arc's radius.
func (a *Arc) R() float64 { return a.Radius }

// SetR sets the arc's radius.
func (a *Arc) SetR(r float64) { a.Radius = r }

// Sweep returns the counterclockwise angular extent of the arc, in
// (0, 2π]. Equal start and end angles describe a full circle.
func (a *Arc) Sweep() float64 {
	s := math.Mod(a.EndAngle-a.StartAngle, 2*math.Pi)
	if s <= 0 {
		s += 2 * math.Pi
	}
	return s
}

// containsAngle reports whether the direction θ from the center falls
// within the arc's sweep.
func (a *Arc) containsAngle(θ float64) bool {
	d := math.Mod(θ-a.StartAngle, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d <= a.Sweep()
}

// pointAtAngle returns the location on the arc's circle at direction θ
// from the center.
func (a *Arc) pointAtAngle(θ float64) geom.Point {
	return geom.Point{
		X: a.Center.X + a.Radius*math.Cos(θ),
		Y: a.Center.Y + a.Radius*math.Sin(θ),
	}
}

// Start returns the arc endpoint at StartAngle.
func (a *Arc) Start() geom.Point { return a.pointAtAngle(a.StartAngle) }

// End returns the arc endpoint at EndAngle.
func (a *Arc) End() geom.Point { return a.pointAtAngle(a.EndAngle) }

// DistanceTo returns the distance from (x, y) to the arc: to the
// circular section when (x, y) projects inside the sweep, otherwise to
// the nearer endpoint.
func (a *Arc) DistanceTo(x, y float64) float64 {
	θ := math.Atan2(y-a.Center.Y, x-a.Center.X)
	if a.containsAngle(θ) {
		return math.Abs(math.Hypot(x-a.Center.X, y-a.Center.Y) - a.Radius)
	}
	s, e := a.Start(), a.End()
	return math.Min(math.Hypot(x-s.X, y-s.Y), math.Hypot(x-e.X, y-e.Y))
}

// Bounds returns the bounding box of the arc, accounting for the
// quadrant extremes the sweep crosses.
func (a *Arc) Bounds() *geom.Bounds {
	b := geom.NewBoundsPoint(a.Start())
	b.Extend(geom.NewBoundsPoint(a.End()))
	for _, θ := range []float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2} {
		if a.containsAngle(θ) {
			b.Extend(geom.NewBoundsPoint(a.pointAtAngle(θ)))
		}
	}
	return b
}

// SnapPoints returns the arc's endpoints, angular midpoint, and
// center.
func (a *Arc) SnapPoints() []SnapPoint {
	return []SnapPoint{
		{Point: a.Start(), Kind: SnapEndpoint, Owner: a},
		{Point: a.End(), Kind: SnapEndpoint, Owner: a},
		{Point: a.pointAtAngle(a.StartAngle + a.Sweep()/2), Kind: SnapMidpoint, Owner: a},
		{Point: a.Center.Point, Kind: SnapCenter, Owner: a},
	}
}

// A Text is an annotation anchored at a location, with a height in
// world units and a rotation in radians. The core does not measure
// rendered text; hit-testing is against the anchor.
type Text struct {
	Attrs
	X, Y     float64
	Text     string
	Height   float64
	Rotation float64

	id int
}

// ID returns the text's identifier.
func (t *Text) ID() int { return t.id }

// DistanceTo returns the distance from (x, y) to the text anchor.
func (t *Text) DistanceTo(x, y float64) float64 {
	return math.Hypot(t.X-x, t.Y-y)
}

// Bounds returns the bounding box of the text anchor.
func (t *Text) Bounds() *geom.Bounds {
	return geom.NewBoundsPoint(geom.Point{X: t.X, Y: t.Y})
}

// SnapPoints returns the text anchor.
func (t *Text) SnapPoints() []SnapPoint {
	return []SnapPoint{{Point: geom.Point{X: t.X, Y: t.Y}, Kind: SnapEndpoint, Owner: t}}
}
