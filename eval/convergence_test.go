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

package eval

import (
	"math"
	"testing"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/spatialmodel/sketch"
)

// rectangleScene builds a rectangle anchored at the origin and
// constrained to w×3, where w is a scene variable starting at 4.
func rectangleScene(t *testing.T) (s *sketch.Scene, bottom, right, top, left *sketch.Segment) {
	s = sketch.NewScene()
	if err := s.SetVariable("w", 4); err != nil {
		t.Fatal(err)
	}
	bottom = s.AddSegment(0, 0, 4, 0)
	right = s.AddSegment(4, 0, 4, 3)
	top = s.AddSegment(4, 3, 0, 3)
	left = s.AddSegment(0, 3, 0, 0)
	bottom.P1.Fixed = true
	s.AddConstraint(sketch.NewHorizontal(bottom))
	s.AddConstraint(sketch.NewHorizontal(top))
	s.AddConstraint(sketch.NewVertical(right))
	s.AddConstraint(sketch.NewVertical(left))
	s.AddConstraint(sketch.NewLength(bottom, "w"))
	s.AddConstraint(sketch.NewLength(left, 3))
	return s, bottom, right, top, left
}

// TestToleranceScaling checks that the iteration count grows as the
// convergence tolerance tightens: relaxation converges geometrically,
// so iterations should rise roughly linearly in -log10(tolerance).
func TestToleranceScaling(t *testing.T) {
	tols := []float64{1e-2, 1e-3, 1e-4, 1e-5, 1e-6, 1e-7}
	x := make([]float64, len(tols))
	y := make([]float64, len(tols))
	prev := 0
	for i, tol := range tols {
		s, _, right, top, _ := rectangleScene(t)
		// Shove the free corners off their solved positions so every
		// run starts from the same unsolved state.
		right.P1.X, right.P1.Y = 4.4, -0.3
		right.P2.X, right.P2.Y = 3.6, 3.4
		top.P2.X, top.P2.Y = -0.4, 2.6
		res := s.Solve(sketch.MaxIterations(1000), sketch.Tolerance(tol))
		if !res.Converged {
			t.Fatalf("tolerance %g: did not converge after %d iterations (maxError=%g)",
				tol, res.Iterations, res.MaxError)
		}
		if res.Iterations < prev {
			t.Errorf("tolerance %g: iteration count fell from %d to %d", tol, prev, res.Iterations)
		}
		prev = res.Iterations
		x[i] = -math.Log10(tol)
		y[i] = float64(res.Iterations)
	}
	slope, intercept, rsquared, _, _, _ := stats.LinearRegression(x, y)
	t.Logf("iterations vs -log10(tolerance): slope=%g intercept=%g R²=%g", slope, intercept, rsquared)
	if slope <= 0 {
		t.Errorf("iteration count should grow as the tolerance tightens; slope=%g", slope)
	}
}

// TestVariableSweep re-solves a rectangle across a range of widths and
// regresses the measured diagonal against the analytic value.
func TestVariableSweep(t *testing.T) {
	s, bottom, right, _, _ := rectangleScene(t)
	var measured, expected []float64
	for w := 1.0; w <= 8; w++ {
		if err := s.SetVariable("w", w); err != nil {
			t.Fatal(err)
		}
		d := math.Hypot(right.P2.X-bottom.P1.X, right.P2.Y-bottom.P1.Y)
		measured = append(measured, d)
		expected = append(expected, math.Sqrt(w*w+9))
	}
	slope, intercept, rsquared, _, _, _ := stats.LinearRegression(expected, measured)
	t.Logf("measured vs analytic diagonal: slope=%g intercept=%g R²=%g", slope, intercept, rsquared)
	if math.Abs(slope-1) > 0.01 {
		t.Errorf("diagonal regression slope: got %g, want 1", slope)
	}
	if math.Abs(intercept) > 0.05 {
		t.Errorf("diagonal regression intercept: got %g, want 0", intercept)
	}
	if rsquared < 0.999 {
		t.Errorf("diagonal regression R²: got %g, want ≈1", rsquared)
	}
}
