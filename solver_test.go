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

import "testing"

func TestSolveEmpty(t *testing.T) {
	s := NewScene()
	res := s.Solve()
	if !res.Converged || res.Iterations != 0 || res.MaxError != 0 {
		t.Errorf("have %+v, want convergence with no work done", res)
	}
}

func TestSolveIterationCount(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(0, 0, 1, 0)
	res := s.AddConstraint(NewHorizontal(seg))
	if !res.Converged || res.Iterations != 1 {
		t.Errorf("have %+v, want one sweep for an already satisfied constraint", res)
	}

	// A correction sweep is followed by the sweep that verifies it.
	res = s.AddConstraint(NewLength(seg, 5))
	if !res.Converged || res.Iterations != 2 {
		t.Errorf("have %+v, want two sweeps for a one-step correction", res)
	}
}

func TestSolveNonConvergence(t *testing.T) {
	s := NewScene()
	a := s.AddFixedPoint(0, 0)
	b := s.AddFixedPoint(1, 0)
	s.AddConstraint(NewDistance(a, b, 5))
	res := s.Solve(MaxIterations(7))
	if res.Converged {
		t.Error("two fixed points cannot satisfy a distance constraint")
	}
	if res.Iterations != 7 {
		t.Errorf("have %d iterations, want the 7 allowed", res.Iterations)
	}
	if absDifferent(res.MaxError, 4, testTolerance) {
		t.Errorf("have residual %g, want 4", res.MaxError)
	}
	checkPoint(t, "a", a, 0, 0)
	checkPoint(t, "b", b, 1, 0)
}

func TestSolveToleranceGatesCorrection(t *testing.T) {
	s := NewScene()
	seg := s.AddSegment(0, 0, 1, 0)
	s.AddConstraint(NewLength(seg, 1.5))

	// Perturb without solving, then ask for a looser tolerance than the
	// residual: the solver must report success without moving anything.
	seg.P1.X, seg.P1.Y = 0, 0
	seg.P2.X, seg.P2.Y = 1, 0
	res := s.Solve(Tolerance(0.6))
	if !res.Converged || res.Iterations != 1 {
		t.Errorf("have %+v, want one sweep with the residual inside tolerance", res)
	}
	if absDifferent(res.MaxError, 0.5, testTolerance) {
		t.Errorf("have residual %g, want 0.5", res.MaxError)
	}
	checkPoint(t, "p2 untouched", seg.P2, 1, 0)

	// At the default tolerance the same residual is corrected.
	res = s.Solve()
	if !res.Converged {
		t.Fatalf("the solver should converge; have %+v", res)
	}
	if l := seg.Length(); absDifferent(l, 1.5, testTolerance) {
		t.Errorf("have length %g, want 1.5", l)
	}
}

func TestResiduals(t *testing.T) {
	s := NewScene()
	if r := s.Residuals(); len(r) != 1 || r[0] != 0 {
		t.Errorf("have %v for an empty scene, want a single zero", r)
	}
	if m := s.MaxResidual(); m != 0 {
		t.Errorf("have max residual %g for an empty scene, want 0", m)
	}

	seg := s.AddSegment(0, 0, 3, 0)
	s.AddConstraint(NewHorizontal(seg))
	s.AddConstraint(NewLength(seg, 5))
	seg.P1.X, seg.P1.Y = 0, 0
	seg.P2.X, seg.P2.Y = 3, 4
	r := s.Residuals()
	if len(r) != 2 {
		t.Fatalf("have %d residuals, want 2", len(r))
	}
	if absDifferent(r[0], 4, testTolerance) || absDifferent(r[1], 0, testTolerance) {
		t.Errorf("have residuals %v, want them in constraint order: 4, 0", r)
	}
	if m := s.MaxResidual(); absDifferent(m, 4, testTolerance) {
		t.Errorf("have max residual %g, want 4", m)
	}
}

func TestSolveRectangle(t *testing.T) {
	s := NewScene()
	bottom := s.AddSegment(0, 0, 3.9, 0.1)
	right := s.AddSegment(3.9, 0.1, 4.1, 2.9)
	top := s.AddSegment(4.1, 2.9, -0.1, 3.1)
	left := s.AddSegment(-0.1, 3.1, 0, 0)
	if left.P2 != bottom.P1 || right.P1 != bottom.P2 {
		t.Fatal("the outline should close through shared corner points")
	}
	bottom.P1.Fixed = true

	s.AddConstraint(NewHorizontal(bottom))
	s.AddConstraint(NewHorizontal(top))
	s.AddConstraint(NewVertical(right))
	s.AddConstraint(NewVertical(left))
	s.AddConstraint(NewLength(bottom, 4))
	res := s.AddConstraint(NewLength(left, 3))
	if !res.Converged {
		t.Fatalf("the solver should converge; have %+v", res)
	}
	if res.MaxError > DefaultTolerance {
		t.Errorf("have residual %g after convergence, want at most %g", res.MaxError, DefaultTolerance)
	}
	checkPoint(t, "bottom left", bottom.P1, 0, 0)
	checkPoint(t, "bottom right", bottom.P2, 4, 0)
	checkPoint(t, "top right", right.P2, 4, 3)
	checkPoint(t, "top left", top.P2, 0, 3)
}
