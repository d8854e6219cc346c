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
	"os"
	"sort"

	"github.com/spatialmodel/sketch"
	"github.com/spf13/cobra"
)

// LoadScene reads the serialized scene at filename.
func LoadScene(filename string) (*sketch.Scene, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("sketch: opening scene file: %v", err)
	}
	defer f.Close()
	s := sketch.NewScene()
	if err := s.ReadJSON(f); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveScene writes s to the file at filename.
func SaveScene(s *sketch.Scene, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("sketch: creating scene file: %v", err)
	}
	if err := s.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Solve loads the scene at sceneFile, sets the variables in vars, and
// runs the relaxation solver with the given iteration limit and
// convergence tolerance. If outputFile is not empty, the solved scene
// is written there. A solve that does not converge is reported as an
// error after any output has been written.
func Solve(cmd *cobra.Command, sceneFile, outputFile string, vars map[string]string, maxIterations int, tolerance float64) error {
	s, err := LoadScene(sceneFile)
	if err != nil {
		return err
	}

	// Setting a variable re-solves the scene, so apply the overrides in
	// a fixed order to keep runs reproducible.
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.SetVariable(name, vars[name]); err != nil {
			return err
		}
	}

	res := s.Solve(sketch.MaxIterations(maxIterations), sketch.Tolerance(tolerance))
	cmd.Printf("%s: converged=%v iterations=%d maxError=%g\n",
		sceneFile, res.Converged, res.Iterations, res.MaxError)

	if outputFile != "" {
		if err := SaveScene(s, outputFile); err != nil {
			return err
		}
	}
	if !res.Converged {
		return fmt.Errorf("sketch: the solver did not converge after %d iterations (maximum error %g)",
			res.Iterations, res.MaxError)
	}
	return nil
}
