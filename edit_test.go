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
	"slices"
	"testing"
)

func TestDisconnect(t *testing.T) {
	s := NewScene()
	s1 := s.AddSegment(0, 0, 4, 0)
	s2 := s.AddSegment(4, 0, 4, 3)
	c := s.AddCircle(4, 0, 1)
	pt := s1.P2
	if s2.P1 != pt || c.Center != pt {
		t.Fatal("the three shapes should share one point")
	}
	pt.Fixed = true
	free := s.AddPoint(9, 9)
	s.AddConstraint(NewCoincident(pt, free))

	created := s.Disconnect(pt)
	if len(created) != 2 {
		t.Fatalf("have %d new points, want one for each shape after the first", len(created))
	}
	if s1.P2 != pt {
		t.Error("the first shape should keep the shared point")
	}
	if s2.P1 == pt || c.Center == pt {
		t.Error("the later shapes should have been rewired to new points")
	}
	checkPoint(t, "s2 copy", s2.P1, 4, 0)
	checkPoint(t, "circle copy", c.Center, 4, 0)
	for i, np := range created {
		if np.Fixed {
			t.Errorf("new point %d should be free regardless of the original's flag", i)
		}
	}
	if len(s.Constraints()) != 0 {
		t.Error("coincident constraints on the disconnected point should be dropped")
	}
}

func TestDisconnectTooFewShapes(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(0, 0, 4, 0)
	if created := s.Disconnect(seg.P1); created != nil {
		t.Error("a point shared by fewer than two shapes has nothing to disconnect")
	}
}

func TestUnion(t *testing.T) {
	s := NewScene()
	a := s.AddSegment(0, 0, 3, 0)
	b := s.AddSegment(5, 0, 8, 0)
	pA, pB := a.P2, b.P1
	s.AddConstraint(NewCoincident(pA, pB))
	n := len(s.Points)

	s.Union(pA, pB)
	if b.P1 != pA {
		t.Error("the second segment should have been rewired to the kept point")
	}
	if len(s.Points) != n-1 {
		t.Errorf("have %d points, want %d", len(s.Points), n-1)
	}
	// Two free points meet at their midpoint, and the coincident
	// constraint the merge makes self-referential is dropped.
	checkPoint(t, "joined point", pA, 4, 0)
	if len(s.Constraints()) != 0 {
		t.Errorf("have %d constraints, want the collapsed coincident dropped", len(s.Constraints()))
	}
}

func TestUnionFixedAdoption(t *testing.T) {
	s := NewScene()
	pA := s.AddPoint(1, 1)
	pB := s.AddFixedPoint(4, 4)
	s.Union(pA, pB)
	if !pA.Fixed {
		t.Error("merging with a fixed point should pin the kept point")
	}
	checkPoint(t, "pA", pA, 4, 4)

	pC := s.AddFixedPoint(0, 0)
	pD := s.AddPoint(9, 9)
	s.Union(pC, pD)
	checkPoint(t, "pC", pC, 0, 0)
}

func TestUnionRewiresConstraints(t *testing.T) {
	s := NewScene()
	anchor := s.AddFixedPoint(0, 0)
	pA := s.AddPoint(3, 0)
	pB := s.AddPoint(5, 0)
	d := NewDistance(anchor, pB, 5)
	s.AddConstraint(d)

	s.Union(pA, pB)
	if d.B != pA {
		t.Error("the constraint should follow the merge onto the kept point")
	}
	// Union re-solves, so the rewired constraint holds immediately.
	checkPoint(t, "pA", pA, 5, 0)
}

func TestUnionNoOp(t *testing.T) {
	s := NewScene()
	p := s.AddPoint(1, 1)
	n := len(s.Points)
	s.Union(p, p)
	if len(s.Points) != n {
		t.Error("merging a point with itself should change nothing")
	}
	outside := &Point{}
	s.Union(p, outside)
	if len(s.Points) != n {
		t.Error("merging with a point outside the scene should change nothing")
	}
}

func TestTrim(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(0, 0, 10, 0)
	// Keep the end near P2; the far endpoint moves to the cut.
	s.Trim(seg, 6, 0.5, 9, 0)
	checkPoint(t, "p1", seg.P1, 6, 0)
	checkPoint(t, "p2", seg.P2, 10, 0)
}

func TestTrimClampsCut(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(0, 0, 10, 0)
	// A cut beyond the far end clamps short of it, so trimming can
	// never produce a zero-length segment.
	s.Trim(seg, 20, 0, 0, 0)
	checkPoint(t, "p1", seg.P1, 0, 0)
	checkPoint(t, "p2", seg.P2, 9.9, 0)
}

func TestTrimMergesCollinearNeighbor(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(0, 0, 10, 0)
	s.AddSegment(10, 0, 14, 0)
	// The trimmed endpoint is shared with a collinear neighbor, so the
	// trim heals the pair into one segment again.
	s.Trim(seg, 6, 0, 0, 0)
	segs := s.Segments()
	if len(segs) != 1 {
		t.Fatalf("have %d segments, want the collinear pair merged into 1", len(segs))
	}
	merged := segs[0]
	checkPoint(t, "merged p1", merged.P1, 0, 0)
	checkPoint(t, "merged p2", merged.P2, 14, 0)
}

func TestSplit(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(0, 0, 10, 0)
	s.AddConstraint(NewHorizontal(seg))

	s1, s2, mid := s.Split(seg, 4, 0.5)
	if s1 == nil || s2 == nil || mid == nil {
		t.Fatal("splitting an in-scene segment should succeed")
	}
	checkPoint(t, "cut", mid, 4, 0)
	if s1.P1.X != 0 || s1.P2 != mid || s2.P1 != mid || s2.P2.X != 10 {
		t.Error("the halves should join end to end through the cut point")
	}
	if len(s.Segments()) != 2 {
		t.Errorf("have %d segments, want 2", len(s.Segments()))
	}

	// The alignment carried onto each half independently.
	if len(s.Constraints()) != 2 {
		t.Fatalf("have %d constraints, want one horizontal per half", len(s.Constraints()))
	}
	for _, c := range s.Constraints() {
		h, ok := c.(*Horizontal)
		if !ok {
			t.Fatalf("have %T, want *Horizontal", c)
		}
		if h.Seg != s1 && h.Seg != s2 {
			t.Error("the carried constraint should reference a half")
		}
	}

	// Dragging the cut point bends the line: each half levels on its
	// own, staying joined at the shared point.
	s.MovePoint(mid, 4, 3)
	res := s.Solve()
	if !res.Converged {
		t.Fatalf("the solver should converge; have %+v", res)
	}
	if absDifferent(s1.P1.Y, s1.P2.Y, testTolerance) {
		t.Errorf("the first half should be level; have y %g and %g", s1.P1.Y, s1.P2.Y)
	}
	if absDifferent(s2.P1.Y, s2.P2.Y, testTolerance) {
		t.Errorf("the second half should be level; have y %g and %g", s2.P1.Y, s2.P2.Y)
	}
	if s1.P2 != s2.P1 {
		t.Error("the halves should still share the cut point")
	}
}

func TestSplitKeepsRelationSlots(t *testing.T) {
	s := NewScene()
	other := s.AddSegment(0, 5, 10, 5)
	seg := s.AddSegment(0, 0, 10, 0)
	angle := NewAngle(other, seg, 0.0)
	lo, hi := -1.0, 1.0
	angle.Min, angle.Max = &lo, &hi
	s.AddConstraint(NewParallel(other, seg))
	s.AddConstraint(angle)

	s1, s2, _ := s.Split(seg, 5, 0)
	var parallels []*Parallel
	var angles []*Angle
	for _, c := range s.Constraints() {
		switch c := c.(type) {
		case *Parallel:
			parallels = append(parallels, c)
		case *Angle:
			angles = append(angles, c)
		}
	}
	if len(parallels) != 2 || len(angles) != 2 {
		t.Fatalf("have %d parallels and %d angles, want 2 of each", len(parallels), len(angles))
	}
	for _, p := range parallels {
		if p.A != other {
			t.Error("the unsplit segment should keep its slot in the relation")
		}
		if p.B != s1 && p.B != s2 {
			t.Error("the split slot should hold a half")
		}
	}
	for _, a := range angles {
		if a.A != other {
			t.Error("the unsplit segment should keep its slot in the relation")
		}
		if v, ok := a.Value.(float64); !ok || v != 0 {
			t.Errorf("have value %v, want the original 0 carried over", a.Value)
		}
		if a.Min != &lo || a.Max != &hi {
			t.Error("the clamps should carry over to the halves")
		}
	}
}

func TestSplitCarriesOnLineAndTangent(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(0, 0, 10, 0)
	circ := s.AddCircle(5, 1, 1)
	p := s.AddPoint(7, 0)
	s.AddConstraint(NewTangent(seg, circ))
	s.AddConstraint(NewOnLine(p, seg))

	s1, s2, _ := s.Split(seg, 5, 0)
	if !slices.Contains(s.Points, p) {
		t.Fatal("the on-line point should survive the split")
	}
	var tangents, onlines int
	for _, c := range s.Constraints() {
		switch c := c.(type) {
		case *Tangent:
			tangents++
			if c.Circle != circ || (c.Seg != s1 && c.Seg != s2) {
				t.Error("the tangency should re-attach to a half")
			}
		case *OnLine:
			onlines++
			if c.P != p || (c.Seg != s1 && c.Seg != s2) {
				t.Error("the on-line constraint should keep its point and re-attach to a half")
			}
		}
	}
	if tangents != 2 || onlines != 2 {
		t.Fatalf("have %d tangents and %d on-lines, want 2 of each", tangents, onlines)
	}

	data, err := s.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	if err := NewScene().Deserialize(data); err != nil {
		t.Errorf("the split scene should parse back: %v", err)
	}
}

func TestSplitDropsLengthAndMidpoint(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(0, 0, 10, 0)
	p := s.AddPoint(5, 0)
	s.AddConstraint(NewLength(seg, 10))
	s.AddConstraint(NewMidpoint(p, seg))
	s.AddConstraint(NewFixed(seg.P1, 0, 0))

	s.Split(seg, 5, 0)
	if len(s.Constraints()) != 1 {
		t.Fatalf("have %d constraints, want only the endpoint fix to survive", len(s.Constraints()))
	}
	if _, ok := s.Constraints()[0].(*Fixed); !ok {
		t.Errorf("have %T, want *Fixed", s.Constraints()[0])
	}
}

func TestSplitInfiniteConstruction(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(0, 0, 10, 0, Construction())
	seg.ConstructionType = InfiniteBoth
	seg.ConstructionDash = "8,4"
	s1, s2, _ := s.Split(seg, 5, 0)
	if s1.ConstructionType != InfiniteStart {
		t.Errorf("have %q for the first half, want %q", s1.ConstructionType, InfiniteStart)
	}
	if s2.ConstructionType != InfiniteEnd {
		t.Errorf("have %q for the second half, want %q", s2.ConstructionType, InfiniteEnd)
	}
	if !s1.Construction || s1.ConstructionDash != "8,4" || s2.ConstructionDash != "8,4" {
		t.Error("the construction attributes should carry over to both halves")
	}
}

func TestSplitNotInScene(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(0, 0, 10, 0)
	s.RemoveSegment(seg)
	if s1, s2, mid := s.Split(seg, 5, 0); s1 != nil || s2 != nil || mid != nil {
		t.Error("splitting a removed segment should do nothing")
	}
}

func TestMergeCollinearAtPoint(t *testing.T) {
	s := NewScene()
	a := s.AddSegment(0, 0, 4, 0)
	b := s.AddSegment(10, 0, 4, 0) // reversed orientation
	pt := a.P2
	if b.P2 != pt {
		t.Fatal("the segments should share the merge point")
	}
	s.AddConstraint(NewHorizontal(a))
	s.AddConstraint(NewHorizontal(b))
	s.AddConstraint(NewLength(a, 4))
	s.AddConstraint(NewLength(b, 6))

	merged := s.MergeCollinearAtPoint(pt)
	if merged == nil {
		t.Fatal("collinear segments should merge")
	}
	checkPoint(t, "merged p1", merged.P1, 0, 0)
	checkPoint(t, "merged p2", merged.P2, 10, 0)
	if len(s.Segments()) != 1 {
		t.Errorf("have %d segments, want 1", len(s.Segments()))
	}
	for _, p := range s.Points {
		if p == pt {
			t.Error("the joint point should have been removed")
		}
	}

	// One deduplicated horizontal, and one length with the numeric
	// targets summed.
	var horizontals int
	var length *Length
	for _, c := range s.Constraints() {
		switch c := c.(type) {
		case *Horizontal:
			horizontals++
			if c.Seg != merged {
				t.Error("the horizontal should reference the merged segment")
			}
		case *Length:
			length = c
		}
	}
	if horizontals != 1 {
		t.Errorf("have %d horizontals, want the duplicates collapsed into 1", horizontals)
	}
	if length == nil {
		t.Fatal("the length constraint should carry over")
	}
	if v, ok := length.Value.(float64); !ok || absDifferent(v, 10, testTolerance) {
		t.Errorf("have length target %v, want the halves' 4 and 6 summed to 10", length.Value)
	}
}

func TestMergeCollinearCarriesOnLineAndTangent(t *testing.T) {
	s := NewScene()
	a := s.AddSegment(0, 0, 4, 0)
	b := s.AddSegment(4, 0, 10, 0)
	circ := s.AddCircle(2, 1, 1)
	p := s.AddPoint(8, 0)
	s.AddConstraint(NewTangent(a, circ))
	s.AddConstraint(NewOnLine(p, b))
	pt := a.P2

	merged := s.MergeCollinearAtPoint(pt)
	if merged == nil {
		t.Fatal("collinear segments should merge")
	}
	if !slices.Contains(s.Points, p) {
		t.Fatal("the on-line point should survive the merge")
	}
	if slices.Contains(s.Points, pt) {
		t.Error("the joint point should have been removed")
	}
	if len(s.Constraints()) != 2 {
		t.Fatalf("have %d constraints, want the tangency and the on-line", len(s.Constraints()))
	}
	var tangent *Tangent
	var online *OnLine
	for _, c := range s.Constraints() {
		switch c := c.(type) {
		case *Tangent:
			tangent = c
		case *OnLine:
			online = c
		}
	}
	if tangent == nil || tangent.Seg != merged || tangent.Circle != circ {
		t.Error("the tangency should re-attach to the merged segment")
	}
	if online == nil || online.Seg != merged || online.P != p {
		t.Error("the on-line constraint should keep its point and re-attach to the merged segment")
	}

	data, err := s.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	if err := NewScene().Deserialize(data); err != nil {
		t.Errorf("the merged scene should parse back: %v", err)
	}
}

func TestMergeCollinearRejects(t *testing.T) {
	s := NewScene()
	a := s.AddSegment(0, 0, 4, 0)
	s.AddSegment(4, 0, 4, 3)
	if m := s.MergeCollinearAtPoint(a.P2); m != nil {
		t.Error("perpendicular segments should not merge")
	}

	s.AddSegment(4, 0, 8, 0)
	if m := s.MergeCollinearAtPoint(a.P2); m != nil {
		t.Error("a point shared by three segments should not merge")
	}
}

func TestMovePoint(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(0, 0, 4, 0)
	s.AddConstraint(NewHorizontal(seg))
	s.MovePoint(seg.P2, 6, 2)
	// The solver re-levels the segment around the moved point.
	if absDifferent(seg.P1.Y, seg.P2.Y, testTolerance) {
		t.Errorf("have y %g and %g, want the segment level again", seg.P1.Y, seg.P2.Y)
	}
	if absDifferent(seg.P2.X, 6, testTolerance) {
		t.Errorf("have x %g, want the moved 6", seg.P2.X)
	}

	outside := &Point{}
	s.MovePoint(outside, 1, 1) // no-op
}

func TestMoveShape(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(0, 0, 4, 0)
	s.MoveShape(seg, 1, 2)
	checkPoint(t, "p1", seg.P1, 1, 2)
	checkPoint(t, "p2", seg.P2, 5, 2)

	txt := s.AddText(0, 0, "note")
	s.MoveShape(txt, 3, 4)
	if txt.X != 3 || txt.Y != 4 {
		t.Errorf("have (%g, %g), want (3, 4)", txt.X, txt.Y)
	}

	s.MoveShape(nil, 1, 1) // no-op
}

func TestMoveShapeSharedPointOnce(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(2, 2, 2, 2)
	if seg.P1 != seg.P2 {
		t.Fatal("identical endpoints should merge into one point")
	}
	s.MoveShape(seg, 1, 1)
	checkPoint(t, "shared endpoint", seg.P1, 3, 3)
}

func TestMoveShapeCarriesDimension(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(0, 0, 4, 0)
	d := s.AddDimension(seg, nil, 1)
	s.MoveShape(seg, 2, 3)
	// The post-move solve re-syncs the dimension onto its source.
	if absDifferent(d.X1, 2, testTolerance) || absDifferent(d.Y1, 3, testTolerance) {
		t.Errorf("have measurement start (%g, %g), want (2, 3)", d.X1, d.Y1)
	}
	if m := d.Measured(); absDifferent(m, 4, testTolerance) {
		t.Errorf("have %g, want the length 4 unchanged by the translation", m)
	}
}
