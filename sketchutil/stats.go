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
	"github.com/GaryBoone/GoStats/stats"
	"github.com/spf13/cobra"
)

// Stats prints a summary of each of the given scene files: primitive,
// constraint, and variable counts, the spatial extent, and the spread
// of the current constraint residuals.
func Stats(cmd *cobra.Command, files []string) error {
	for _, file := range files {
		s, err := LoadScene(file)
		if err != nil {
			return err
		}
		b := s.Bounds()
		res := s.Residuals()
		cmd.Printf("%s:\n", file)
		cmd.Printf("  points=%d segments=%d circles=%d arcs=%d texts=%d dimensions=%d\n",
			len(s.Points), len(s.Segments()), len(s.Circles()), len(s.Arcs()),
			len(s.Texts()), len(s.Dimensions()))
		cmd.Printf("  constraints=%d variables=%d\n", len(s.Constraints()), s.Vars.Len())
		cmd.Printf("  bounds=(%g, %g)-(%g, %g)\n", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
		cmd.Printf("  residuals: min=%g mean=%g max=%g\n",
			stats.StatsMin(res), stats.StatsMean(res), stats.StatsMax(res))
	}
	return nil
}
