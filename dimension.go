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
	"strconv"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/sketch/formula"
)

// Dimension types.
const (
	DimDistance = "distance"
	DimDX       = "dx"
	DimDY       = "dy"
	DimAngle    = "angle"
	DimRadius   = "radius"
	DimDiameter = "diameter"
)

// Dimension label display modes.
const (
	DisplayValue   = "value"
	DisplayFormula = "formula"
	DisplayBoth    = "both"
)

// A Dimension is a measurement annotation that tracks its source
// primitives and can optionally act as a constraint driving them.
type Dimension struct {
	constraintBase
	Attrs

	// X1, Y1 and X2, Y2 are the endpoints of the measurement. For an
	// angle dimension (X1, Y1) is the vertex and (X2, Y2) the label
	// anchor.
	X1, Y1 float64
	X2, Y2 float64

	// Offset is the perpendicular distance of the drawn dimension line
	// from the measured geometry, and the arc radius of an angle
	// dimension.
	Offset float64

	// DimType is one of DimDistance, DimDX, DimDY, DimAngle,
	// DimRadius, or DimDiameter.
	DimType string

	// SourceA and SourceB are the measured primitives. SourceB may be
	// nil.
	SourceA, SourceB Primitive

	// IsConstraint reports whether the dimension is in the solver set,
	// driving its sources toward Formula.
	IsConstraint bool

	// Formula is the driving value when the dimension acts as a
	// constraint: a number, or an expression over scene variables.
	Formula interface{}

	// VariableName, on a dimension that is not itself a constraint,
	// names a scene variable that receives the measured value after
	// every solve.
	VariableName string

	// DisplayMode selects what the label shows: DisplayValue,
	// DisplayFormula, or DisplayBoth.
	DisplayMode string

	// AngleStart and AngleSweep are the derived arc parameters of an
	// angle dimension, in radians. AngleSweep is signed.
	AngleStart, AngleSweep float64
}

var (
	_ Primitive  = (*Dimension)(nil)
	_ Constraint = (*Dimension)(nil)
)

// AddDimension adds a dimension measuring a, or the relation between a
// and b. The dimension type and endpoint coordinates are detected from
// the sources. A nil a returns nil without mutating the scene.
func (s *Scene) AddDimension(a, b Primitive, offset float64, opts ...ShapeOption) *Dimension {
	if a == nil {
		return nil
	}
	o := newShapeOpts(opts)
	s.beginOp()
	defer s.endOp()
	d := &Dimension{
		Attrs:       o.attrs,
		Offset:      offset,
		DimType:     DetectDimensionType(a, b),
		SourceA:     a,
		SourceB:     b,
		DisplayMode: DisplayValue,
	}
	d.bind(s.Vars)
	d.setID(s.nextPrimID)
	s.nextPrimID++
	d.syncFromSources()
	s.dims = append(s.dims, d)
	return d
}

// DetectDimensionType returns the natural dimension type for one or
// two source primitives: diameter for a lone circle or arc, angle for
// two non-parallel segments, and distance otherwise.
func DetectDimensionType(a, b Primitive) string {
	if b == nil {
		switch a.(type) {
		case *Circle, *Arc:
			return DimDiameter
		}
		return DimDistance
	}
	sa, aSeg := a.(*Segment)
	sb, bSeg := b.(*Segment)
	if aSeg && bSeg {
		u, uok := unitDir(sa)
		v, vok := unitDir(sb)
		if uok && vok && math.Abs(u.X*v.Y-u.Y*v.X) >= 0.01 {
			return DimAngle
		}
		return DimDistance
	}
	return DimDistance
}

// syncDimensions refreshes derived dimension geometry from the live
// source positions and publishes measured values into named variables.
func (s *Scene) syncDimensions() {
	for _, d := range s.dims {
		if d.SourceA == nil {
			continue
		}
		d.syncFromSources()
		if d.VariableName != "" && !d.IsConstraint && formula.IsName(d.VariableName) {
			s.Vars.Set(d.VariableName, d.Measured())
		}
	}
}

// syncFromSources recomputes the dimension's endpoint coordinates, and
// for angle dimensions the vertex, start angle, and sweep, from the
// current positions of its sources.
func (d *Dimension) syncFromSources() {
	if d.SourceA == nil {
		return
	}
	switch d.DimType {
	case DimAngle:
		a, aok := d.SourceA.(*Segment)
		b, bok := d.SourceB.(*Segment)
		if !aok || !bok {
			return
		}
		u, uok := unitDir(a)
		v, vok := unitDir(b)
		if !uok || !vok {
			return
		}
		vertex, ok := lineIntersection(a, b)
		if !ok {
			vertex = a.P1.Point
		}
		θa := math.Atan2(u.Y, u.X)
		d.X1, d.Y1 = vertex.X, vertex.Y
		d.AngleStart = θa
		d.AngleSweep = wrapAngle(math.Atan2(v.Y, v.X) - θa)
		r := math.Abs(d.Offset)
		if r < denomTol {
			r = 1
		}
		mid := θa + d.AngleSweep/2
		d.X2 = vertex.X + r*math.Cos(mid)
		d.Y2 = vertex.Y + r*math.Sin(mid)
	case DimRadius, DimDiameter:
		rad, ok := d.SourceA.(Radial)
		if !ok {
			return
		}
		c := rad.CenterPoint()
		θ := math.Pi / 4 // label direction for a fresh dimension
		if math.Hypot(d.X2-c.X, d.Y2-c.Y) >= denomTol {
			θ = math.Atan2(d.Y2-c.Y, d.X2-c.X)
		}
		d.X1, d.Y1 = c.X, c.Y
		d.X2 = c.X + rad.R()*math.Cos(θ)
		d.Y2 = c.Y + rad.R()*math.Sin(θ)
	default:
		p1, p2, ok := d.measureEndpoints()
		if !ok {
			return
		}
		d.X1, d.Y1 = p1.X, p1.Y
		d.X2, d.Y2 = p2.X, p2.Y
	}
}

// measureEndpoints returns the two coordinates a distance-family
// dimension measures between, derived from its source combination.
func (d *Dimension) measureEndpoints() (geom.Point, geom.Point, bool) {
	switch a := d.SourceA.(type) {
	case *Point:
		switch b := d.SourceB.(type) {
		case *Point:
			return a.Point, b.Point, true
		case *Segment:
			return a.Point, b.PointAt(b.closestParam(a.X, a.Y)), true
		case Radial:
			return a.Point, b.CenterPoint().Point, true
		}
	case *Segment:
		switch b := d.SourceB.(type) {
		case nil:
			return a.P1.Point, a.P2.Point, true
		case *Point:
			return a.PointAt(a.closestParam(b.X, b.Y)), b.Point, true
		case *Segment:
			u, ok := unitDir(b)
			if !ok {
				return geom.Point{}, geom.Point{}, false
			}
			m := a.Midpoint()
			t := (m.X-b.P1.X)*u.X + (m.Y-b.P1.Y)*u.Y
			foot := geom.Point{X: b.P1.X + t*u.X, Y: b.P1.Y + t*u.Y}
			return m, foot, true
		case Radial:
			return a.Midpoint(), b.CenterPoint().Point, true
		}
	case Radial:
		switch b := d.SourceB.(type) {
		case *Point:
			return a.CenterPoint().Point, b.Point, true
		case *Segment:
			return a.CenterPoint().Point, b.Midpoint(), true
		case Radial:
			return a.CenterPoint().Point, b.CenterPoint().Point, true
		}
	}
	return geom.Point{}, geom.Point{}, false
}

// lineIntersection returns the intersection of the carrier lines of a
// and b, ignoring the segments' extents.
func lineIntersection(a, b *Segment) (geom.Point, bool) {
	d1x := a.P2.X - a.P1.X
	d1y := a.P2.Y - a.P1.Y
	d2x := b.P2.X - b.P1.X
	d2y := b.P2.Y - b.P1.Y
	denom := d1x*d2y - d1y*d2x
	if math.Abs(denom) < denomTol {
		return geom.Point{}, false
	}
	t := ((b.P1.X-a.P1.X)*d2y - (b.P1.Y-a.P1.Y)*d2x) / denom
	return geom.Point{X: a.P1.X + t*d1x, Y: a.P1.Y + t*d1y}, true
}

// Measured returns the dimension's current measured value: a length
// for the distance family, an unsigned sweep in radians for angles,
// and the source radius or diameter for radial types.
func (d *Dimension) Measured() float64 {
	switch d.DimType {
	case DimAngle:
		return math.Abs(d.AngleSweep)
	case DimRadius:
		if r, ok := d.SourceA.(Radial); ok {
			return r.R()
		}
		return math.Hypot(d.X2-d.X1, d.Y2-d.Y1)
	case DimDiameter:
		if r, ok := d.SourceA.(Radial); ok {
			return 2 * r.R()
		}
		return 2 * math.Hypot(d.X2-d.X1, d.Y2-d.Y1)
	case DimDX:
		return math.Abs(d.X2 - d.X1)
	case DimDY:
		return math.Abs(d.Y2 - d.Y1)
	}
	return math.Hypot(d.X2-d.X1, d.Y2-d.Y1)
}

// Label returns the text the renderer draws for the dimension.
func (d *Dimension) Label() string {
	var value string
	switch d.DimType {
	case DimAngle:
		value = strconv.FormatFloat(d.Measured()*180/math.Pi, 'f', 1, 64) + "°"
	case DimRadius:
		value = "R" + strconv.FormatFloat(d.Measured(), 'g', 6, 64)
	case DimDiameter:
		value = "⌀" + strconv.FormatFloat(d.Measured(), 'g', 6, 64)
	default:
		value = strconv.FormatFloat(d.Measured(), 'g', 6, 64)
	}
	f, ok := d.Formula.(string)
	switch {
	case d.DisplayMode == DisplayFormula && ok:
		return f
	case d.DisplayMode == DisplayBoth && ok:
		return f + "=" + value
	}
	return value
}

// Type identifies the dimension in the constraint list. Dimensions are
// serialized with the primitives, not under this name.
func (d *Dimension) Type() string { return "dimension" }

// target resolves the driving value, or NaN when the dimension is not
// acting as a constraint.
func (d *Dimension) target() float64 {
	if !d.IsConstraint || d.Formula == nil {
		return math.NaN()
	}
	return d.resolve(d.Formula)
}

// Error returns the residual of the constraint the dimension mirrors:
// Distance for point-family sources, Length for a lone segment, Angle
// for two segments, and Radius for radial types, with a diameter
// driving the radius to half its value. Source combinations with no
// constraint equivalent report zero.
func (d *Dimension) Error() float64 {
	t := d.target()
	if math.IsNaN(t) {
		return 0
	}
	switch d.DimType {
	case DimDX, DimDY:
		a, b, ok := d.axisPoints()
		if !ok {
			return 0
		}
		if d.DimType == DimDX {
			return math.Abs(math.Abs(b.X-a.X) - t)
		}
		return math.Abs(math.Abs(b.Y-a.Y) - t)
	case DimAngle:
		a, aok := d.SourceA.(*Segment)
		b, bok := d.SourceB.(*Segment)
		if !aok || !bok {
			return 0
		}
		u, uok := unitDir(a)
		v, vok := unitDir(b)
		if !uok || !vok {
			return 0
		}
		Δθ := math.Atan2(v.Y, v.X) - math.Atan2(u.Y, u.X)
		return math.Abs(wrapAngle(Δθ - t))
	case DimRadius:
		r, ok := d.SourceA.(Radial)
		if !ok {
			return 0
		}
		return math.Abs(r.R() - t)
	case DimDiameter:
		r, ok := d.SourceA.(Radial)
		if !ok {
			return 0
		}
		return math.Abs(r.R() - t/2)
	}
	if seg, ok := d.SourceA.(*Segment); ok && d.SourceB == nil {
		return math.Abs(seg.Length() - t)
	}
	if a, b, ok := d.distancePair(); ok {
		return math.Abs(math.Hypot(b.X-a.X, b.Y-a.Y) - t)
	}
	return 0
}

// Apply relaxes the sources toward the driving value using the same
// corrections as the mirrored constraint kind.
func (d *Dimension) Apply() {
	t := d.target()
	if math.IsNaN(t) {
		return
	}
	switch d.DimType {
	case DimDX, DimDY:
		a, b, ok := d.axisPoints()
		if !ok {
			return
		}
		relaxAxisDistance(a, b, t, d.DimType == DimDX)
		return
	case DimAngle:
		a, aok := d.SourceA.(*Segment)
		b, bok := d.SourceB.(*Segment)
		if !aok || !bok {
			return
		}
		relaxAngle(a, b, t)
		return
	case DimRadius:
		if r, ok := d.SourceA.(Radial); ok {
			r.SetR(t)
		}
		return
	case DimDiameter:
		if r, ok := d.SourceA.(Radial); ok {
			r.SetR(t / 2)
		}
		return
	}
	if seg, ok := d.SourceA.(*Segment); ok && d.SourceB == nil {
		relaxLength(seg, t)
		return
	}
	if a, b, ok := d.distancePair(); ok {
		relaxDistance(a, b, t)
	}
}

// axisPoints returns the point pair a dx or dy dimension acts on: two
// point sources, or the endpoints of a lone segment source.
func (d *Dimension) axisPoints() (*Point, *Point, bool) {
	if a, ok := d.SourceA.(*Point); ok {
		b, ok := d.SourceB.(*Point)
		return a, b, ok
	}
	if seg, ok := d.SourceA.(*Segment); ok && d.SourceB == nil {
		return seg.P1, seg.P2, true
	}
	return nil, nil, false
}

// distancePair returns the two points a distance dimension relaxes
// when acting as a constraint, treating circles and arcs as their
// centers.
func (d *Dimension) distancePair() (*Point, *Point, bool) {
	switch a := d.SourceA.(type) {
	case *Point:
		switch b := d.SourceB.(type) {
		case *Point:
			return a, b, true
		case Radial:
			return a, b.CenterPoint(), true
		}
	case Radial:
		switch b := d.SourceB.(type) {
		case *Point:
			return a.CenterPoint(), b, true
		case Radial:
			return a.CenterPoint(), b.CenterPoint(), true
		}
	}
	return nil, nil, false
}

// InvolvedPoints returns the defining points of both sources.
func (d *Dimension) InvolvedPoints() []*Point {
	pts := definingPoints(d.SourceA)
	return append(pts, definingPoints(d.SourceB)...)
}

// Editable reports that the driving value can be edited.
func (d *Dimension) Editable() bool { return true }

// DistanceTo returns the distance from (x, y) to the drawn dimension:
// the label anchor for angles, the leader line for radial types, and
// the offset dimension line otherwise.
func (d *Dimension) DistanceTo(x, y float64) float64 {
	switch d.DimType {
	case DimAngle:
		return math.Hypot(x-d.X2, y-d.Y2)
	case DimRadius, DimDiameter:
		return segDistance(d.X1, d.Y1, d.X2, d.Y2, x, y)
	}
	x1, y1, x2, y2 := d.lineEndpoints()
	return segDistance(x1, y1, x2, y2, x, y)
}

// lineEndpoints returns the measurement endpoints shifted
// perpendicular by Offset, where the dimension line is drawn.
func (d *Dimension) lineEndpoints() (x1, y1, x2, y2 float64) {
	Δx := d.X2 - d.X1
	Δy := d.Y2 - d.Y1
	l := math.Hypot(Δx, Δy)
	if l < denomTol {
		return d.X1, d.Y1, d.X2, d.Y2
	}
	nx := -Δy / l * d.Offset
	ny := Δx / l * d.Offset
	return d.X1 + nx, d.Y1 + ny, d.X2 + nx, d.Y2 + ny
}

// segDistance returns the distance from (x, y) to the segment from
// (x1, y1) to (x2, y2).
func segDistance(x1, y1, x2, y2, x, y float64) float64 {
	Δx := x2 - x1
	Δy := y2 - y1
	len2 := Δx*Δx + Δy*Δy
	if len2 < denomTol*denomTol {
		return math.Hypot(x-x1, y-y1)
	}
	t := ((x-x1)*Δx + (y-y1)*Δy) / len2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(x-(x1+t*Δx), y-(y1+t*Δy))
}

// Bounds returns the box covering the measurement endpoints and the
// offset dimension line.
func (d *Dimension) Bounds() *geom.Bounds {
	b := geom.NewBoundsPoint(geom.Point{X: d.X1, Y: d.Y1})
	b.Extend(geom.NewBoundsPoint(geom.Point{X: d.X2, Y: d.Y2}))
	x1, y1, x2, y2 := d.lineEndpoints()
	b.Extend(geom.NewBoundsPoint(geom.Point{X: x1, Y: y1}))
	b.Extend(geom.NewBoundsPoint(geom.Point{X: x2, Y: y2}))
	return b
}

// SnapPoints returns the measurement endpoints.
func (d *Dimension) SnapPoints() []SnapPoint {
	return []SnapPoint{
		{Point: geom.Point{X: d.X1, Y: d.Y1}, Kind: SnapEndpoint, Owner: d},
		{Point: geom.Point{X: d.X2, Y: d.Y2}, Kind: SnapEndpoint, Owner: d},
	}
}

// renameVariable rewrites whole-word references to a renamed scene
// variable in the dimension's formula and variable name.
func (d *Dimension) renameVariable(oldName, newName string) {
	if str, ok := d.Formula.(string); ok {
		d.Formula = formula.ReplaceWholeWord(str, oldName, newName)
	}
	if d.VariableName == oldName {
		d.VariableName = newName
	}
}

func (d *Dimension) String() string {
	return fmt.Sprintf("Dimension[%d](%s)", d.id, d.DimType)
}
