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

package sketchutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/sketch"
	"github.com/spf13/cobra"
)

// defaultCheckTol is the measurement tolerance used by scenario checks
// that don't specify one.
const defaultCheckTol = 1.e-3

// A Scenario describes one solver evaluation case: a scene to load,
// the solver settings to run it with, and measurements the solved
// scene must satisfy.
type Scenario struct {
	Name string

	// Scene is the path of the scene file, relative to the directory
	// holding the scenario file.
	Scene string

	Solve  SolveSpec
	Checks []Check
}

// A SolveSpec gives the solver settings for a scenario and the
// expected outcome.
type SolveSpec struct {
	MaxIterations int
	Tolerance     float64

	// Converged is whether the solve is expected to converge.
	Converged bool
}

// A Check is one measurement taken on a solved scene. Kind selects the
// measurement:
//
//	"residual"  the largest constraint residual, which must be ≤ Value
//	"distance"  the distance between points A and B
//	"x", "y"    a coordinate of point A
//	"length"    the length of segment A
//	"radius"    the radius of circle or arc A
//	"dimension" the measured value of dimension A
//	"variable"  the resolved value of the variable Name
//
// Except for "residual", the measurement must be within Tol of Value.
type Check struct {
	Kind  string
	A, B  int
	Name  string
	Value float64
	Tol   float64
}

func (c Check) describe() string {
	switch c.Kind {
	case "residual":
		return "residual"
	case "variable":
		return fmt.Sprintf("variable %s", c.Name)
	case "distance":
		return fmt.Sprintf("distance %d-%d", c.A, c.B)
	default:
		return fmt.Sprintf("%s %d", c.Kind, c.A)
	}
}

// A CheckResult pairs a scenario check with the value that was
// measured on the solved scene.
type CheckResult struct {
	Check Check
	Got   float64
	Pass  bool
}

// ReadScenario reads the TOML scenario description at filename,
// filling in default solver settings where the file leaves them out.
func ReadScenario(filename string) (*Scenario, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("sketch: opening scenario file: %v", err)
	}
	defer f.Close()
	sc := new(Scenario)
	if _, err := toml.DecodeReader(f, sc); err != nil {
		return nil, fmt.Errorf("sketch: reading scenario %s: %v", filename, err)
	}
	if sc.Solve.MaxIterations == 0 {
		sc.Solve.MaxIterations = sketch.DefaultMaxIterations
	}
	if sc.Solve.Tolerance == 0 {
		sc.Solve.Tolerance = sketch.DefaultTolerance
	}
	return sc, nil
}

// RunScenario loads the scenario's scene from the directory dir,
// solves it, and evaluates the scenario's checks against the result.
func RunScenario(sc *Scenario, dir string) (sketch.SolveResult, []CheckResult, error) {
	scene := sc.Scene
	if !filepath.IsAbs(scene) {
		scene = filepath.Join(dir, scene)
	}
	s, err := LoadScene(scene)
	if err != nil {
		return sketch.SolveResult{}, nil, err
	}
	res := s.Solve(sketch.MaxIterations(sc.Solve.MaxIterations),
		sketch.Tolerance(sc.Solve.Tolerance))

	results := make([]CheckResult, len(sc.Checks))
	for i, c := range sc.Checks {
		got, err := evalCheck(s, c)
		if err != nil {
			return res, nil, err
		}
		var pass bool
		if c.Kind == "residual" {
			pass = got <= c.Value
		} else {
			tol := c.Tol
			if tol == 0 {
				tol = defaultCheckTol
			}
			pass = math.Abs(got-c.Value) <= tol
		}
		results[i] = CheckResult{Check: c, Got: got, Pass: pass}
	}
	return res, results, nil
}

// evalCheck takes the measurement a check describes.
func evalCheck(s *sketch.Scene, c Check) (float64, error) {
	switch c.Kind {
	case "residual":
		return s.MaxResidual(), nil
	case "variable":
		v, ok := s.Vars.Get(c.Name)
		if !ok {
			return 0, fmt.Errorf("sketch: scenario check references missing variable %q", c.Name)
		}
		return s.Vars.Resolve(v), nil
	}

	pa := s.PrimitiveByID(c.A)
	if pa == nil {
		return 0, fmt.Errorf("sketch: scenario check references missing primitive %d", c.A)
	}
	switch c.Kind {
	case "distance":
		a, ok := pa.(*sketch.Point)
		if !ok {
			return 0, fmt.Errorf("sketch: scenario distance check: primitive %d is not a point", c.A)
		}
		b, ok := s.PrimitiveByID(c.B).(*sketch.Point)
		if !ok {
			return 0, fmt.Errorf("sketch: scenario distance check: primitive %d is not a point", c.B)
		}
		return math.Hypot(b.X-a.X, b.Y-a.Y), nil
	case "x", "y":
		pt, ok := pa.(*sketch.Point)
		if !ok {
			return 0, fmt.Errorf("sketch: scenario %s check: primitive %d is not a point", c.Kind, c.A)
		}
		if c.Kind == "x" {
			return pt.X, nil
		}
		return pt.Y, nil
	case "length":
		seg, ok := pa.(*sketch.Segment)
		if !ok {
			return 0, fmt.Errorf("sketch: scenario length check: primitive %d is not a segment", c.A)
		}
		return seg.Length(), nil
	case "radius":
		r, ok := pa.(sketch.Radial)
		if !ok {
			return 0, fmt.Errorf("sketch: scenario radius check: primitive %d is not a circle or arc", c.A)
		}
		return r.R(), nil
	case "dimension":
		d, ok := pa.(*sketch.Dimension)
		if !ok {
			return 0, fmt.Errorf("sketch: scenario dimension check: primitive %d is not a dimension", c.A)
		}
		return d.Measured(), nil
	default:
		return 0, fmt.Errorf("sketch: unknown scenario check kind %q", c.Kind)
	}
}

// CheckScenario runs the scenario at path and reports each of its
// checks, returning an error if any failed.
func CheckScenario(cmd *cobra.Command, path string) error {
	sc, err := ReadScenario(path)
	if err != nil {
		return err
	}
	res, results, err := RunScenario(sc, filepath.Dir(path))
	if err != nil {
		return err
	}
	cmd.Printf("%s: converged=%v iterations=%d maxError=%g\n",
		sc.Name, res.Converged, res.Iterations, res.MaxError)
	failed := 0
	if res.Converged != sc.Solve.Converged {
		failed++
		cmd.Printf("  FAIL converged: got %v, want %v\n", res.Converged, sc.Solve.Converged)
	}
	for _, r := range results {
		status := "ok  "
		if !r.Pass {
			status = "FAIL"
			failed++
		}
		cmd.Printf("  %s %s: got %g, want %g\n", status, r.Check.describe(), r.Got, r.Check.Value)
	}
	if failed > 0 {
		return fmt.Errorf("sketch: scenario %s: %d of %d checks failed",
			sc.Name, failed, len(results)+1)
	}
	return nil
}
