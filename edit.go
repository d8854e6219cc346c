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
	"slices"
)

// Disconnect separates the shapes sharing pt. The first shape keeps
// pt; each other shape gets a new point at the same coordinates. Every
// Coincident constraint with pt at either end is dropped, since the
// shared point it duplicated no longer exists. Returns the new points,
// or nil when fewer than two shapes share pt.
func (s *Scene) Disconnect(pt *Point) []*Point {
	shapes := s.ShapesUsingPoint(pt)
	if len(shapes) < 2 {
		return nil
	}
	s.beginOp()
	defer s.endOp()
	var created []*Point
	for _, shape := range shapes[1:] {
		np := s.newPoint(pt.X, pt.Y)
		np.Layer = pt.Layer
		np.Color = pt.Color
		replaceShapePoint(shape, pt, np)
		created = append(created, np)
	}
	s.removeConstraintsWhere(func(c Constraint) bool {
		co, ok := c.(*Coincident)
		return ok && (co.A == pt || co.B == pt)
	})
	return created
}

// replaceShapePoint rewires every reference shape holds to old so it
// points at new.
func replaceShapePoint(shape Primitive, old, new *Point) {
	switch shape := shape.(type) {
	case *Segment:
		if shape.P1 == old {
			shape.P1 = new
		}
		if shape.P2 == old {
			shape.P2 = new
		}
	case *Circle:
		if shape.Center == old {
			shape.Center = new
		}
	case *Arc:
		if shape.Center == old {
			shape.Center = new
		}
	}
}

// Union merges ptB into ptA: shapes and constraints referencing ptB
// are rewired to ptA, ptB is removed, and the scene re-solves. When
// both points are free ptA moves to their midpoint; a fixed ptB pins
// ptA at its location. Coincident constraints collapsed by the merge
// are dropped.
func (s *Scene) Union(ptA, ptB *Point) {
	if ptA == ptB || slices.Index(s.Points, ptA) < 0 || slices.Index(s.Points, ptB) < 0 {
		return
	}
	s.beginOp()
	defer s.endOp()
	switch {
	case ptB.Fixed:
		ptA.X, ptA.Y = ptB.X, ptB.Y
		ptA.Fixed = true
	case !ptA.Fixed:
		ptA.X = (ptA.X + ptB.X) / 2
		ptA.Y = (ptA.Y + ptB.Y) / 2
	}
	for _, shape := range s.ShapesUsingPoint(ptB) {
		replaceShapePoint(shape, ptB, ptA)
	}
	for _, c := range s.constraints {
		swapPoint(c, ptB, ptA)
	}
	for _, d := range s.dims {
		swapPoint(d, ptB, ptA)
	}
	s.removeConstraintsWhere(func(c Constraint) bool {
		co, ok := c.(*Coincident)
		return ok && co.A == co.B
	})
	if i := slices.Index(s.Points, ptB); i >= 0 {
		s.Points = slices.Delete(s.Points, i, i+1)
	}
	s.Solve()
}

// clampParam keeps a cut parameter away from the endpoints so trim and
// split never produce a zero-length piece.
func clampParam(t float64) float64 {
	return math.Max(0.01, math.Min(0.99, t))
}

// Trim shortens seg at the cut location: the endpoint farther from the
// keep location moves to the cut projected onto the segment. The scene
// re-solves, and if the moved endpoint now joins two collinear
// segments they are merged.
func (s *Scene) Trim(seg *Segment, cutX, cutY, keepX, keepY float64) {
	if slices.Index(s.segments, seg) < 0 {
		return
	}
	s.beginOp()
	defer s.endOp()
	cut := seg.PointAt(clampParam(seg.closestParam(cutX, cutY)))
	moved := seg.P2
	if math.Hypot(seg.P1.X-keepX, seg.P1.Y-keepY) > math.Hypot(seg.P2.X-keepX, seg.P2.Y-keepY) {
		moved = seg.P1
	}
	moved.X, moved.Y = cut.X, cut.Y
	s.Solve()
	s.MergeCollinearAtPoint(moved)
}

// Split cuts seg at the location nearest (wx, wy) into two segments
// joined by a new point. Constraints on the original segment carry
// over to both halves where their meaning survives: alignment,
// tangency, and on-line constraints are duplicated, relations to other
// segments are duplicated with the half substituted into the original
// slot, and length and midpoint constraints are dropped. Returns the
// two halves and the new point.
func (s *Scene) Split(seg *Segment, wx, wy float64) (*Segment, *Segment, *Point) {
	if slices.Index(s.segments, seg) < 0 {
		return nil, nil, nil
	}
	s.beginOp()
	defer s.endOp()
	var collected []Constraint
	for _, c := range s.constraints {
		if slices.Contains(constraintShapes(c), Primitive(seg)) {
			collected = append(collected, c)
		}
	}
	cut := seg.PointAt(clampParam(seg.closestParam(wx, wy)))
	mid := s.newPoint(cut.X, cut.Y)
	mid.Layer = seg.Layer
	s1 := s.insertSegment(seg.P1, mid, seg.Attrs)
	s2 := s.insertSegment(mid, seg.P2, seg.Attrs)
	s1.ConstructionDash = seg.ConstructionDash
	s2.ConstructionDash = seg.ConstructionDash
	switch seg.ConstructionType {
	case InfiniteStart:
		s1.ConstructionType = InfiniteStart
	case InfiniteEnd:
		s2.ConstructionType = InfiniteEnd
	case InfiniteBoth:
		s1.ConstructionType = InfiniteStart
		s2.ConstructionType = InfiniteEnd
	}
	s.unlinkSegment(seg)
	for _, c := range collected {
		for _, half := range []*Segment{s1, s2} {
			if nc := splitSubstitute(c, seg, half); nc != nil {
				s.appendConstraint(nc)
			}
		}
	}
	s.cleanOrphanPoints()
	return s1, s2, mid
}

// splitSubstitute builds the constraint half inherits from c when seg
// is split, or nil when the constraint kind does not survive.
func splitSubstitute(c Constraint, seg, half *Segment) Constraint {
	sub := func(cur *Segment) *Segment {
		if cur == seg {
			return half
		}
		return cur
	}
	switch c := c.(type) {
	case *Horizontal:
		return NewHorizontal(half)
	case *Vertical:
		return NewVertical(half)
	case *Tangent:
		return NewTangent(half, c.Circle)
	case *OnLine:
		return NewOnLine(c.P, half)
	case *Parallel:
		return NewParallel(sub(c.A), sub(c.B))
	case *Perpendicular:
		return NewPerpendicular(sub(c.A), sub(c.B))
	case *Angle:
		na := NewAngle(sub(c.A), sub(c.B), c.Value)
		na.Min, na.Max = c.Min, c.Max
		return na
	case *EqualLength:
		return NewEqualLength(sub(c.A), sub(c.B))
	}
	return nil
}

// MergeCollinearAtPoint merges the two segments meeting at pt into one
// spanning their outer endpoints, when exactly two meet there and
// their directions agree to within about half a degree. Constraints on
// the halves re-attach to the merged segment, deduplicated, with
// length targets carried over and summed when both halves had numeric
// ones. Returns the merged segment, or nil when no merge applies.
func (s *Scene) MergeCollinearAtPoint(pt *Point) *Segment {
	var at []*Segment
	for _, seg := range s.segments {
		if seg.P1 == pt || seg.P2 == pt {
			at = append(at, seg)
		}
	}
	if len(at) != 2 {
		return nil
	}
	a, b := at[0], at[1]
	u, uok := unitDir(a)
	v, vok := unitDir(b)
	if !uok || !vok || math.Abs(u.X*v.Y-u.Y*v.X) >= 0.01 {
		return nil
	}
	s.beginOp()
	defer s.endOp()
	var collected []Constraint
	for _, c := range s.constraints {
		shapes := constraintShapes(c)
		if slices.Contains(shapes, Primitive(a)) || slices.Contains(shapes, Primitive(b)) {
			collected = append(collected, c)
		}
	}
	merged := s.insertSegment(otherEnd(a, pt), otherEnd(b, pt), a.Attrs)
	s.unlinkSegment(a)
	s.unlinkSegment(b)
	s.reattachMerged(collected, a, b, merged)
	s.cleanOrphanPoints()
	return merged
}

// otherEnd returns the endpoint of seg that is not pt.
func otherEnd(seg *Segment, pt *Point) *Point {
	if seg.P1 == pt {
		return seg.P2
	}
	return seg.P1
}

// reattachMerged rebuilds the constraints from the two halves onto the
// merged segment, skipping duplicates and relations that collapsed
// onto the merged segment itself.
func (s *Scene) reattachMerged(collected []Constraint, a, b, merged *Segment) {
	sub := func(cur *Segment) *Segment {
		if cur == a || cur == b {
			return merged
		}
		return cur
	}
	seen := make(map[string]bool)
	add := func(key string, c Constraint) {
		if seen[key] {
			return
		}
		seen[key] = true
		s.appendConstraint(c)
	}
	var carried *Length
	for _, c := range collected {
		switch c := c.(type) {
		case *Horizontal:
			add(TypeHorizontal, NewHorizontal(merged))
		case *Vertical:
			add(TypeVertical, NewVertical(merged))
		case *Tangent:
			add(fmt.Sprintf("%s:%d", TypeTangent, c.Circle.ID()), NewTangent(merged, c.Circle))
		case *OnLine:
			add(fmt.Sprintf("%s:%d", TypeOnLine, c.P.ID()), NewOnLine(c.P, merged))
		case *Parallel:
			na, nb := sub(c.A), sub(c.B)
			if na != nb {
				add(fmt.Sprintf("%s:%d:%d", TypeParallel, na.ID(), nb.ID()), NewParallel(na, nb))
			}
		case *Perpendicular:
			na, nb := sub(c.A), sub(c.B)
			if na != nb {
				add(fmt.Sprintf("%s:%d:%d", TypePerpendicular, na.ID(), nb.ID()), NewPerpendicular(na, nb))
			}
		case *Angle:
			na, nb := sub(c.A), sub(c.B)
			if na != nb {
				nc := NewAngle(na, nb, c.Value)
				nc.Min, nc.Max = c.Min, c.Max
				add(fmt.Sprintf("%s:%d:%d", TypeAngle, na.ID(), nb.ID()), nc)
			}
		case *EqualLength:
			na, nb := sub(c.A), sub(c.B)
			if na != nb {
				add(fmt.Sprintf("%s:%d:%d", TypeEqualLength, na.ID(), nb.ID()), NewEqualLength(na, nb))
			}
		case *Length:
			if carried == nil {
				carried = NewLength(merged, c.Value)
				carried.Min, carried.Max = c.Min, c.Max
				s.appendConstraint(carried)
				continue
			}
			prev, pok := asNumber(carried.Value)
			cur, cok := asNumber(c.Value)
			if pok && cok {
				carried.Value = prev + cur
			}
		}
	}
}

// asNumber reports whether a constraint target is a plain number, as
// opposed to a formula string.
func asNumber(v interface{}) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// MovePoint moves pt to (x, y) and re-solves. Constraints are left in
// place; the solver pulls the rest of the geometry along.
func (s *Scene) MovePoint(pt *Point, x, y float64) {
	if slices.Index(s.Points, pt) < 0 {
		return
	}
	s.beginOp()
	defer s.endOp()
	pt.X, pt.Y = x, y
	s.Solve()
}

// MoveShape translates shape by (dx, dy) and re-solves. A point shared
// between the shape's defining points moves once.
func (s *Scene) MoveShape(shape Primitive, dx, dy float64) {
	if shape == nil {
		return
	}
	s.beginOp()
	defer s.endOp()
	switch shape := shape.(type) {
	case *Text:
		shape.X += dx
		shape.Y += dy
	case *Dimension:
		shape.X1 += dx
		shape.Y1 += dy
		shape.X2 += dx
		shape.Y2 += dy
	default:
		moved := make(map[*Point]bool)
		for _, p := range definingPoints(shape) {
			if moved[p] {
				continue
			}
			moved[p] = true
			p.X += dx
			p.Y += dy
		}
	}
	s.Solve()
}
