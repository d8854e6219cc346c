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
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/sketch/sketchutil"
)

// TestScenarios solves every scenario under testdata and requires each
// of its measurements to pass.
func TestScenarios(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files found in testdata")
	}
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			sc, err := sketchutil.ReadScenario(file)
			if err != nil {
				t.Fatal(err)
			}
			res, results, err := sketchutil.RunScenario(sc, filepath.Dir(file))
			if err != nil {
				t.Fatal(err)
			}
			if res.Converged != sc.Solve.Converged {
				t.Errorf("converged: got %v, want %v (iterations=%d, maxError=%g)",
					res.Converged, sc.Solve.Converged, res.Iterations, res.MaxError)
			}
			for _, r := range results {
				if !r.Pass {
					t.Errorf("%s check (a=%d, b=%d, name=%q): got %g, want %g",
						r.Check.Kind, r.Check.A, r.Check.B, r.Check.Name, r.Got, r.Check.Value)
				}
			}
		})
	}
}

// TestCheckCommand evaluates a scenario through the command-line
// interface.
func TestCheckCommand(t *testing.T) {
	var buf bytes.Buffer
	sketchutil.Root.SetOutput(&buf)
	sketchutil.Cfg.Set("ScenarioFile", filepath.Join("testdata", "rectangle.toml"))
	sketchutil.Root.SetArgs([]string{"check"})
	if err := sketchutil.Root.Execute(); err != nil {
		t.Fatalf("check command: %v\noutput:\n%s", err, buf.String())
	}
	if !strings.Contains(buf.String(), "rectangle: converged=true") {
		t.Errorf("unexpected check output:\n%s", buf.String())
	}
}
