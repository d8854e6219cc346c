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
	"math"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/sketch/formula"
)

// Constraint type names, as they appear in serialized sketches.
const (
	TypeCoincident    = "coincident"
	TypeDistance      = "distance"
	TypeFixed         = "fixed"
	TypeHorizontal    = "horizontal"
	TypeVertical      = "vertical"
	TypeParallel      = "parallel"
	TypePerpendicular = "perpendicular"
	TypeAngle         = "angle"
	TypeEqualLength   = "equal_length"
	TypeLength        = "length"
	TypeRadius        = "radius"
	TypeTangent       = "tangent"
	TypeOnLine        = "on_line"
	TypeOnCircle      = "on_circle"
	TypeMidpoint      = "midpoint"
)

// A Constraint is a geometric relation between primitives that the
// solver maintains by iteratively nudging point coordinates.
type Constraint interface {
	// ID returns the identifier the owning Scene assigned to the
	// constraint, from a namespace separate from primitive
	// identifiers.
	ID() int

	// Type returns the constraint's serialized type name.
	Type() string

	// Error returns the residual: how far the sketch currently is from
	// satisfying the constraint, in sketch units (radians for Angle).
	// Zero means satisfied. Constraints whose target value cannot be
	// resolved, and constraints over degenerate geometry, report zero
	// so they do not block convergence.
	Error() float64

	// Apply moves the involved geometry one relaxation step toward
	// satisfying the constraint, leaving points marked Fixed in place.
	Apply()

	// InvolvedPoints returns the points whose coordinates the
	// constraint reads or writes.
	InvolvedPoints() []*Point

	// Editable reports whether the constraint carries a target value
	// that an editor can change.
	Editable() bool
}

var (
	_ Constraint = (*Coincident)(nil)
	_ Constraint = (*Distance)(nil)
	_ Constraint = (*Fixed)(nil)
	_ Constraint = (*Horizontal)(nil)
	_ Constraint = (*Vertical)(nil)
	_ Constraint = (*Parallel)(nil)
	_ Constraint = (*Perpendicular)(nil)
	_ Constraint = (*Angle)(nil)
	_ Constraint = (*EqualLength)(nil)
	_ Constraint = (*Length)(nil)
	_ Constraint = (*Radius)(nil)
	_ Constraint = (*Tangent)(nil)
	_ Constraint = (*OnLine)(nil)
	_ Constraint = (*OnCircle)(nil)
	_ Constraint = (*Midpoint)(nil)
)

// constraintBase carries the bookkeeping shared by all constraint
// kinds: the identifier, optional clamps on the target value, and the
// variable table that value expressions resolve against.
type constraintBase struct {
	// Min and Max, when non-nil, clamp the resolved target value.
	Min, Max *float64

	id   int
	vars *formula.Vars
}

func (c *constraintBase) ID() int              { return c.id }
func (c *constraintBase) setID(id int)         { c.id = id }
func (c *constraintBase) bind(v *formula.Vars) { c.vars = v }

// Editable is false unless a kind overrides it.
func (c *constraintBase) Editable() bool { return false }

// resolve evaluates a target value, which may be a number or a
// variable/formula string, and applies the Min/Max clamps. It returns
// NaN when the value cannot be resolved; callers treat NaN as
// "constraint inactive".
func (c *constraintBase) resolve(value interface{}) float64 {
	var r float64
	switch val := value.(type) {
	case float64:
		r = val
	case float32:
		r = float64(val)
	case int:
		r = float64(val)
	case int64:
		r = float64(val)
	default:
		if c.vars == nil {
			return math.NaN()
		}
		r = c.vars.Resolve(value)
	}
	if c.Min != nil {
		r = math.Max(r, *c.Min)
	}
	if c.Max != nil {
		r = math.Min(r, *c.Max)
	}
	return r
}

// binder is implemented by constraints that resolve value expressions
// against a Scene's variable table.
type binder interface {
	bind(*formula.Vars)
	setID(int)
}

// Coincident forces two points to the same location.
type Coincident struct {
	constraintBase
	A, B *Point
}

// NewCoincident returns a constraint forcing a and b to coincide.
func NewCoincident(a, b *Point) *Coincident { return &Coincident{A: a, B: b} }

// Type returns the constraint type name.
func (c *Coincident) Type() string { return TypeCoincident }

// Error returns the distance between the two points.
func (c *Coincident) Error() float64 {
	return math.Hypot(c.B.X-c.A.X, c.B.Y-c.A.Y)
}

// Apply moves both points to their midpoint; a fixed point passes its
// share of the motion to the other.
func (c *Coincident) Apply() { relaxCoincide(c.A, c.B) }

// InvolvedPoints returns the two points.
func (c *Coincident) InvolvedPoints() []*Point { return []*Point{c.A, c.B} }

// Distance holds two points at a target separation. Value may be a
// number or a variable/formula string.
type Distance struct {
	constraintBase
	A, B  *Point
	Value interface{}
}

// NewDistance returns a constraint holding a and b at the separation
// given by value.
func NewDistance(a, b *Point, value interface{}) *Distance {
	return &Distance{A: a, B: b, Value: value}
}

// Type returns the constraint type name.
func (c *Distance) Type() string { return TypeDistance }

// Error returns how far the point separation is from the target.
func (c *Distance) Error() float64 {
	target := c.resolve(c.Value)
	if math.IsNaN(target) {
		return 0
	}
	return math.Abs(math.Hypot(c.B.X-c.A.X, c.B.Y-c.A.Y) - target)
}

// Apply moves the points along the line joining them, splitting the
// correction between the free ones.
func (c *Distance) Apply() {
	target := c.resolve(c.Value)
	if math.IsNaN(target) {
		return
	}
	relaxDistance(c.A, c.B, target)
}

// InvolvedPoints returns the two points.
func (c *Distance) InvolvedPoints() []*Point { return []*Point{c.A, c.B} }

// Editable reports that the target distance can be edited.
func (c *Distance) Editable() bool { return true }

// Fixed pins a point to a target location. Unlike the Point.Fixed
// flag, which removes a point from the solver entirely, a Fixed
// constraint is enforced through relaxation like any other constraint.
type Fixed struct {
	constraintBase
	P    *Point
	X, Y float64
}

// NewFixed returns a constraint pinning p to (x, y).
func NewFixed(p *Point, x, y float64) *Fixed { return &Fixed{P: p, X: x, Y: y} }

// Type returns the constraint type name.
func (c *Fixed) Type() string { return TypeFixed }

// Error returns the distance from the point to its target location.
func (c *Fixed) Error() float64 { return math.Hypot(c.P.X-c.X, c.P.Y-c.Y) }

// Apply snaps the point to the target location.
func (c *Fixed) Apply() {
	if c.P.Fixed {
		return
	}
	c.P.X = c.X
	c.P.Y = c.Y
}

// InvolvedPoints returns the pinned point.
func (c *Fixed) InvolvedPoints() []*Point { return []*Point{c.P} }

// Editable reports that the target location can be edited.
func (c *Fixed) Editable() bool { return true }

// Horizontal forces a segment parallel to the x axis.
type Horizontal struct {
	constraintBase
	Seg *Segment
}

// NewHorizontal returns a constraint holding seg horizontal.
func NewHorizontal(seg *Segment) *Horizontal { return &Horizontal{Seg: seg} }

// Type returns the constraint type name.
func (c *Horizontal) Type() string { return TypeHorizontal }

// Error returns the y extent of the segment.
func (c *Horizontal) Error() float64 { return math.Abs(c.Seg.P2.Y - c.Seg.P1.Y) }

// Apply moves both endpoint y coordinates toward their average.
func (c *Horizontal) Apply() { relaxAlignAxis(c.Seg.P1, c.Seg.P2, true) }

// InvolvedPoints returns the segment endpoints.
func (c *Horizontal) InvolvedPoints() []*Point { return []*Point{c.Seg.P1, c.Seg.P2} }

// Vertical forces a segment parallel to the y axis.
type Vertical struct {
	constraintBase
	Seg *Segment
}

// NewVertical returns a constraint holding seg vertical.
func NewVertical(seg *Segment) *Vertical { return &Vertical{Seg: seg} }

// Type returns the constraint type name.
func (c *Vertical) Type() string { return TypeVertical }

// Error returns the x extent of the segment.
func (c *Vertical) Error() float64 { return math.Abs(c.Seg.P2.X - c.Seg.P1.X) }

// Apply moves both endpoint x coordinates toward their average.
func (c *Vertical) Apply() { relaxAlignAxis(c.Seg.P1, c.Seg.P2, false) }

// InvolvedPoints returns the segment endpoints.
func (c *Vertical) InvolvedPoints() []*Point { return []*Point{c.Seg.P1, c.Seg.P2} }

// Parallel forces two segments to the same (or opposite) direction.
type Parallel struct {
	constraintBase
	A, B *Segment
}

// NewParallel returns a constraint holding a and b parallel.
func NewParallel(a, b *Segment) *Parallel { return &Parallel{A: a, B: b} }

// Type returns the constraint type name.
func (c *Parallel) Type() string { return TypeParallel }

// Error returns |sin θ| of the angle between the segments.
func (c *Parallel) Error() float64 {
	u, uok := unitDir(c.A)
	v, vok := unitDir(c.B)
	if !uok || !vok {
		return 0
	}
	return math.Abs(u.X*v.Y - u.Y*v.X)
}

// Apply rotates B about its midpoint to A's direction, keeping B's
// length and the sign of the current alignment so the segment does not
// flip end for end.
func (c *Parallel) Apply() {
	u, ok := unitDir(c.A)
	if !ok {
		return
	}
	relaxDirection(c.B, u, true)
}

// InvolvedPoints returns the endpoints of both segments.
func (c *Parallel) InvolvedPoints() []*Point {
	return []*Point{c.A.P1, c.A.P2, c.B.P1, c.B.P2}
}

// Perpendicular forces two segments to meet at a right angle.
type Perpendicular struct {
	constraintBase
	A, B *Segment
}

// NewPerpendicular returns a constraint holding a and b perpendicular.
func NewPerpendicular(a, b *Segment) *Perpendicular { return &Perpendicular{A: a, B: b} }

// Type returns the constraint type name.
func (c *Perpendicular) Type() string { return TypePerpendicular }

// Error returns |cos θ| of the angle between the segments.
func (c *Perpendicular) Error() float64 {
	u, uok := unitDir(c.A)
	v, vok := unitDir(c.B)
	if !uok || !vok {
		return 0
	}
	return math.Abs(u.X*v.X + u.Y*v.Y)
}

// Apply rotates B about its midpoint onto A's perpendicular, keeping
// B's length and the nearer of the two perpendicular orientations.
func (c *Perpendicular) Apply() {
	u, ok := unitDir(c.A)
	if !ok {
		return
	}
	relaxDirection(c.B, geom.Point{X: -u.Y, Y: u.X}, true)
}

// InvolvedPoints returns the endpoints of both segments.
func (c *Perpendicular) InvolvedPoints() []*Point {
	return []*Point{c.A.P1, c.A.P2, c.B.P1, c.B.P2}
}

// Angle holds the directed angle from segment A to segment B at a
// target value in radians.
type Angle struct {
	constraintBase
	A, B  *Segment
	Value interface{}
}

// NewAngle returns a constraint holding the directed angle from a to b
// at value radians.
func NewAngle(a, b *Segment, value interface{}) *Angle {
	return &Angle{A: a, B: b, Value: value}
}

// Type returns the constraint type name.
func (c *Angle) Type() string { return TypeAngle }

// Error returns the angular residual wrapped to (−π, π], in radians.
func (c *Angle) Error() float64 {
	target := c.resolve(c.Value)
	if math.IsNaN(target) {
		return 0
	}
	u, uok := unitDir(c.A)
	v, vok := unitDir(c.B)
	if !uok || !vok {
		return 0
	}
	Δθ := math.Atan2(v.Y, v.X) - math.Atan2(u.Y, u.X)
	return math.Abs(wrapAngle(Δθ - target))
}

// Apply rotates B about its midpoint so that its direction is A's
// direction plus the target angle.
func (c *Angle) Apply() {
	target := c.resolve(c.Value)
	if math.IsNaN(target) {
		return
	}
	relaxAngle(c.A, c.B, target)
}

// InvolvedPoints returns the endpoints of both segments.
func (c *Angle) InvolvedPoints() []*Point {
	return []*Point{c.A.P1, c.A.P2, c.B.P1, c.B.P2}
}

// Editable reports that the target angle can be edited.
func (c *Angle) Editable() bool { return true }

// EqualLength forces two segments to the same length.
type EqualLength struct {
	constraintBase
	A, B *Segment
}

// NewEqualLength returns a constraint holding a and b at equal length.
func NewEqualLength(a, b *Segment) *EqualLength { return &EqualLength{A: a, B: b} }

// Type returns the constraint type name.
func (c *EqualLength) Type() string { return TypeEqualLength }

// Error returns the difference between the segment lengths.
func (c *EqualLength) Error() float64 {
	return math.Abs(c.A.Length() - c.B.Length())
}

// Apply scales both segments about their midpoints toward the average
// of the two lengths.
func (c *EqualLength) Apply() {
	avg := (c.A.Length() + c.B.Length()) / 2
	relaxLength(c.A, avg)
	relaxLength(c.B, avg)
}

// InvolvedPoints returns the endpoints of both segments.
func (c *EqualLength) InvolvedPoints() []*Point {
	return []*Point{c.A.P1, c.A.P2, c.B.P1, c.B.P2}
}

// Length holds a segment at a target length.
type Length struct {
	constraintBase
	Seg   *Segment
	Value interface{}
}

// NewLength returns a constraint holding seg at the length given by
// value.
func NewLength(seg *Segment, value interface{}) *Length {
	return &Length{Seg: seg, Value: value}
}

// Type returns the constraint type name.
func (c *Length) Type() string { return TypeLength }

// Error returns how far the segment length is from the target.
func (c *Length) Error() float64 {
	target := c.resolve(c.Value)
	if math.IsNaN(target) {
		return 0
	}
	return math.Abs(c.Seg.Length() - target)
}

// Apply scales the segment about its midpoint to the target length.
func (c *Length) Apply() {
	target := c.resolve(c.Value)
	if math.IsNaN(target) {
		return
	}
	relaxLength(c.Seg, target)
}

// InvolvedPoints returns the segment endpoints.
func (c *Length) InvolvedPoints() []*Point { return []*Point{c.Seg.P1, c.Seg.P2} }

// Editable reports that the target length can be edited.
func (c *Length) Editable() bool { return true }

// Radius holds a circle or arc at a target radius.
type Radius struct {
	constraintBase
	Shape Radial
	Value interface{}
}

// NewRadius returns a constraint holding shape at the radius given by
// value.
func NewRadius(shape Radial, value interface{}) *Radius {
	return &Radius{Shape: shape, Value: value}
}

// Type returns the constraint type name.
func (c *Radius) Type() string { return TypeRadius }

// Error returns how far the shape's radius is from the target.
func (c *Radius) Error() float64 {
	target := c.resolve(c.Value)
	if math.IsNaN(target) {
		return 0
	}
	return math.Abs(c.Shape.R() - target)
}

// Apply sets the radius to the target. The radius is a shape scalar,
// not a point coordinate, so fixed points play no role here.
func (c *Radius) Apply() {
	target := c.resolve(c.Value)
	if math.IsNaN(target) {
		return
	}
	c.Shape.SetR(target)
}

// InvolvedPoints returns the shape's center.
func (c *Radius) InvolvedPoints() []*Point { return []*Point{c.Shape.CenterPoint()} }

// Editable reports that the target radius can be edited.
func (c *Radius) Editable() bool { return true }

// Tangent forces a segment's infinite line tangent to a circle or arc.
type Tangent struct {
	constraintBase
	Seg    *Segment
	Circle Radial
}

// NewTangent returns a constraint holding seg tangent to circle.
func NewTangent(seg *Segment, circle Radial) *Tangent {
	return &Tangent{Seg: seg, Circle: circle}
}

// Type returns the constraint type name.
func (c *Tangent) Type() string { return TypeTangent }

// Error returns the difference between the line's distance from the
// center and the radius.
func (c *Tangent) Error() float64 {
	d, ok := distPointLine(c.Circle.CenterPoint(), c.Seg)
	if !ok {
		return 0
	}
	return math.Abs(d - c.Circle.R())
}

// Apply translates the segment along its normal until the line is a
// radius away from the center, staying on its current side of the
// circle.
func (c *Tangent) Apply() {
	u, ok := unitDir(c.Seg)
	if !ok {
		return
	}
	ctr := c.Circle.CenterPoint()
	// Signed distance from the line to the center along the left
	// normal (−uy, ux).
	signed := u.X*(ctr.Y-c.Seg.P1.Y) - u.Y*(ctr.X-c.Seg.P1.X)
	r := c.Circle.R()
	var Δ float64
	if signed >= 0 {
		Δ = signed - r
	} else {
		Δ = signed + r
	}
	shift(c.Seg.P1, -u.Y*Δ, u.X*Δ)
	shift(c.Seg.P2, -u.Y*Δ, u.X*Δ)
}

// InvolvedPoints returns the segment endpoints and the circle center.
func (c *Tangent) InvolvedPoints() []*Point {
	return []*Point{c.Seg.P1, c.Seg.P2, c.Circle.CenterPoint()}
}

// OnLine forces a point onto a segment's infinite line.
type OnLine struct {
	constraintBase
	P   *Point
	Seg *Segment
}

// NewOnLine returns a constraint holding p on the line through seg.
func NewOnLine(p *Point, seg *Segment) *OnLine { return &OnLine{P: p, Seg: seg} }

// Type returns the constraint type name.
func (c *OnLine) Type() string { return TypeOnLine }

// Error returns the perpendicular distance from the point to the line.
func (c *OnLine) Error() float64 {
	d, ok := distPointLine(c.P, c.Seg)
	if !ok {
		return 0
	}
	return d
}

// Apply projects the point onto the line.
func (c *OnLine) Apply() {
	if c.P.Fixed {
		return
	}
	u, ok := unitDir(c.Seg)
	if !ok {
		return
	}
	t := (c.P.X-c.Seg.P1.X)*u.X + (c.P.Y-c.Seg.P1.Y)*u.Y
	c.P.X = c.Seg.P1.X + t*u.X
	c.P.Y = c.Seg.P1.Y + t*u.Y
}

// InvolvedPoints returns the point and the segment endpoints.
func (c *OnLine) InvolvedPoints() []*Point {
	return []*Point{c.P, c.Seg.P1, c.Seg.P2}
}

// OnCircle forces a point onto a circle or arc's circumference.
type OnCircle struct {
	constraintBase
	P      *Point
	Circle Radial
}

// NewOnCircle returns a constraint holding p on circle's
// circumference.
func NewOnCircle(p *Point, circle Radial) *OnCircle {
	return &OnCircle{P: p, Circle: circle}
}

// Type returns the constraint type name.
func (c *OnCircle) Type() string { return TypeOnCircle }

// Error returns how far the point is from the circumference.
func (c *OnCircle) Error() float64 {
	ctr := c.Circle.CenterPoint()
	return math.Abs(math.Hypot(c.P.X-ctr.X, c.P.Y-ctr.Y) - c.Circle.R())
}

// Apply moves the point radially to the circumference. A point at the
// exact center has no radial direction and stays put.
func (c *OnCircle) Apply() {
	if c.P.Fixed {
		return
	}
	ctr := c.Circle.CenterPoint()
	Δx := c.P.X - ctr.X
	Δy := c.P.Y - ctr.Y
	d := math.Hypot(Δx, Δy)
	if d < denomTol {
		return
	}
	r := c.Circle.R()
	c.P.X = ctr.X + Δx/d*r
	c.P.Y = ctr.Y + Δy/d*r
}

// InvolvedPoints returns the point and the circle center.
func (c *OnCircle) InvolvedPoints() []*Point {
	return []*Point{c.P, c.Circle.CenterPoint()}
}

// Midpoint forces a point onto the midpoint of a segment.
type Midpoint struct {
	constraintBase
	P   *Point
	Seg *Segment
}

// NewMidpoint returns a constraint holding p at the midpoint of seg.
func NewMidpoint(p *Point, seg *Segment) *Midpoint { return &Midpoint{P: p, Seg: seg} }

// Type returns the constraint type name.
func (c *Midpoint) Type() string { return TypeMidpoint }

// Error returns the distance from the point to the segment midpoint.
func (c *Midpoint) Error() float64 {
	m := c.Seg.Midpoint()
	return math.Hypot(c.P.X-m.X, c.P.Y-m.Y)
}

// Apply snaps the point to the segment midpoint.
func (c *Midpoint) Apply() {
	if c.P.Fixed {
		return
	}
	m := c.Seg.Midpoint()
	c.P.X = m.X
	c.P.Y = m.Y
}

// InvolvedPoints returns the point and the segment endpoints.
func (c *Midpoint) InvolvedPoints() []*Point {
	return []*Point{c.P, c.Seg.P1, c.Seg.P2}
}

// Relaxation helpers shared by the constraint kinds and by dimensions
// acting as constraints.

// shift moves p by (δx, δy) unless it is fixed.
func shift(p *Point, δx, δy float64) {
	if p.Fixed {
		return
	}
	p.X += δx
	p.Y += δy
}

// splitFactors returns the fraction of a correction each of two points
// takes: half each normally, all of it to the free one when the other
// is fixed, none when both are fixed.
func splitFactors(a, b *Point) (fa, fb float64) {
	switch {
	case a.Fixed && b.Fixed:
		return 0, 0
	case a.Fixed:
		return 0, 1
	case b.Fixed:
		return 1, 0
	}
	return 0.5, 0.5
}

// relaxCoincide moves a and b together.
func relaxCoincide(a, b *Point) {
	fa, fb := splitFactors(a, b)
	Δx := b.X - a.X
	Δy := b.Y - a.Y
	a.X += fa * Δx
	a.Y += fa * Δy
	b.X -= fb * Δx
	b.Y -= fb * Δy
}

// relaxDistance moves a and b along the line joining them so their
// separation approaches target. Coincident points have no direction to
// move along, so they stay put.
func relaxDistance(a, b *Point, target float64) {
	Δx := b.X - a.X
	Δy := b.Y - a.Y
	d := math.Hypot(Δx, Δy)
	if d < denomTol {
		return
	}
	e := d - target
	ux := Δx / d
	uy := Δy / d
	fa, fb := splitFactors(a, b)
	a.X += fa * e * ux
	a.Y += fa * e * uy
	b.X -= fb * e * ux
	b.Y -= fb * e * uy
}

// relaxAxisDistance moves a and b along one axis so that their
// separation along that axis approaches target, preserving the sign of
// the current offset.
func relaxAxisDistance(a, b *Point, target float64, alongX bool) {
	var Δ float64
	if alongX {
		Δ = b.X - a.X
	} else {
		Δ = b.Y - a.Y
	}
	want := target
	if Δ < 0 {
		want = -target
	}
	e := Δ - want
	fa, fb := splitFactors(a, b)
	if alongX {
		a.X += fa * e
		b.X -= fb * e
	} else {
		a.Y += fa * e
		b.Y -= fb * e
	}
}

// relaxAlignAxis levels a and b onto a shared horizontal (or vertical)
// line through their average coordinate.
func relaxAlignAxis(a, b *Point, horizontal bool) {
	fa, fb := splitFactors(a, b)
	if horizontal {
		Δ := b.Y - a.Y
		a.Y += fa * Δ
		b.Y -= fb * Δ
	} else {
		Δ := b.X - a.X
		a.X += fa * Δ
		b.X -= fb * Δ
	}
}

// unitDir returns the unit direction of seg from P1 to P2, reporting
// false if the segment is too short to have one.
func unitDir(seg *Segment) (geom.Point, bool) {
	Δx := seg.P2.X - seg.P1.X
	Δy := seg.P2.Y - seg.P1.Y
	d := math.Hypot(Δx, Δy)
	if d < denomTol {
		return geom.Point{}, false
	}
	return geom.Point{X: Δx / d, Y: Δy / d}, true
}

// relaxDirection rotates seg so its direction matches want, keeping
// its length. With allowFlip, the sign of want that is nearer the
// current direction is used, so a segment drawn end-for-end does not
// flip. Fixed endpoints become the rotation pivot; with both endpoints
// fixed nothing moves.
func relaxDirection(seg *Segment, want geom.Point, allowFlip bool) {
	v, ok := unitDir(seg)
	if !ok {
		return
	}
	if allowFlip && v.X*want.X+v.Y*want.Y < 0 {
		want = geom.Point{X: -want.X, Y: -want.Y}
	}
	L := seg.Length()
	switch {
	case seg.P1.Fixed && seg.P2.Fixed:
	case seg.P1.Fixed:
		seg.P2.X = seg.P1.X + want.X*L
		seg.P2.Y = seg.P1.Y + want.Y*L
	case seg.P2.Fixed:
		seg.P1.X = seg.P2.X - want.X*L
		seg.P1.Y = seg.P2.Y - want.Y*L
	default:
		m := seg.Midpoint()
		seg.P1.X = m.X - want.X*L/2
		seg.P1.Y = m.Y - want.Y*L/2
		seg.P2.X = m.X + want.X*L/2
		seg.P2.Y = m.Y + want.Y*L/2
	}
}

// relaxAngle rotates b so that the directed angle from a to b equals
// target radians.
func relaxAngle(a, b *Segment, target float64) {
	u, ok := unitDir(a)
	if !ok {
		return
	}
	θ := math.Atan2(u.Y, u.X) + target
	relaxDirection(b, geom.Point{X: math.Cos(θ), Y: math.Sin(θ)}, false)
}

// relaxLength scales seg along its own direction to the target length.
// A fixed endpoint becomes the scaling pivot; otherwise the midpoint
// stays put. A zero-length segment has no direction to grow along.
func relaxLength(seg *Segment, target float64) {
	v, ok := unitDir(seg)
	if !ok {
		return
	}
	switch {
	case seg.P1.Fixed && seg.P2.Fixed:
	case seg.P1.Fixed:
		seg.P2.X = seg.P1.X + v.X*target
		seg.P2.Y = seg.P1.Y + v.Y*target
	case seg.P2.Fixed:
		seg.P1.X = seg.P2.X - v.X*target
		seg.P1.Y = seg.P2.Y - v.Y*target
	default:
		m := seg.Midpoint()
		seg.P1.X = m.X - v.X*target/2
		seg.P1.Y = m.Y - v.Y*target/2
		seg.P2.X = m.X + v.X*target/2
		seg.P2.Y = m.Y + v.Y*target/2
	}
}

// distPointLine returns the perpendicular distance from p to the
// infinite line through seg, reporting false when seg is degenerate.
func distPointLine(p *Point, seg *Segment) (float64, bool) {
	u, ok := unitDir(seg)
	if !ok {
		return 0, false
	}
	return math.Abs(u.X*(p.Y-seg.P1.Y) - u.Y*(p.X-seg.P1.X)), true
}

// wrapAngle wraps θ to (−π, π].
func wrapAngle(θ float64) float64 {
	θ = math.Mod(θ, 2*math.Pi)
	if θ <= -math.Pi {
		θ += 2 * math.Pi
	} else if θ > math.Pi {
		θ -= 2 * math.Pi
	}
	return θ
}

// constraintShapes returns the non-point primitives c references
// directly.
func constraintShapes(c Constraint) []Primitive {
	switch c := c.(type) {
	case *Horizontal:
		return []Primitive{c.Seg}
	case *Vertical:
		return []Primitive{c.Seg}
	case *Parallel:
		return []Primitive{c.A, c.B}
	case *Perpendicular:
		return []Primitive{c.A, c.B}
	case *Angle:
		return []Primitive{c.A, c.B}
	case *EqualLength:
		return []Primitive{c.A, c.B}
	case *Length:
		return []Primitive{c.Seg}
	case *Radius:
		return []Primitive{c.Shape}
	case *Tangent:
		return []Primitive{c.Seg, c.Circle}
	case *OnLine:
		return []Primitive{c.Seg}
	case *OnCircle:
		return []Primitive{c.Circle}
	case *Midpoint:
		return []Primitive{c.Seg}
	case *Dimension:
		var prims []Primitive
		if c.SourceA != nil {
			prims = append(prims, c.SourceA)
		}
		if c.SourceB != nil {
			prims = append(prims, c.SourceB)
		}
		return prims
	}
	return nil
}

// swapPoint replaces direct references to old with new in c, reporting
// whether anything changed. References reached through a segment or
// circle are not c's to rewrite.
func swapPoint(c Constraint, old, new *Point) bool {
	changed := false
	sw := func(p **Point) {
		if *p == old {
			*p = new
			changed = true
		}
	}
	switch c := c.(type) {
	case *Coincident:
		sw(&c.A)
		sw(&c.B)
	case *Distance:
		sw(&c.A)
		sw(&c.B)
	case *Fixed:
		sw(&c.P)
	case *OnLine:
		sw(&c.P)
	case *OnCircle:
		sw(&c.P)
	case *Midpoint:
		sw(&c.P)
	case *Dimension:
		if c.SourceA == Primitive(old) {
			c.SourceA = new
			changed = true
		}
		if c.SourceB == Primitive(old) {
			c.SourceB = new
			changed = true
		}
	}
	return changed
}
