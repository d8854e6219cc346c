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
	"path/filepath"
	"testing"

	"github.com/spatialmodel/sketch"
	"github.com/tealeg/xlsx"
)

func TestWriteDimensionsXLSX(t *testing.T) {
	s := sketch.NewScene()
	seg := s.AddSegment(0, 0, 3, 4)
	s.AddDimension(seg.P1, seg.P2, 1)
	c := s.AddCircle(10, 0, 2)
	diam := s.AddDimension(c, nil, 1)
	s.AddConstraint(sketch.NewLength(seg, 5))
	if err := s.SetVariable("k", "2+1"); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	file := filepath.Join(dir, "dims.xlsx")
	if err := WriteDimensionsXLSX(s, file, nil); err != nil {
		t.Fatal(err)
	}
	xf, err := xlsx.OpenFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if len(xf.Sheets) != 3 {
		t.Fatalf("have %d sheets, want 3", len(xf.Sheets))
	}

	dims := xf.Sheets[0]
	if dims.Name != "Dimensions" || len(dims.Rows) != 3 {
		t.Fatalf("have sheet %q with %d rows, want Dimensions with 3", dims.Name, len(dims.Rows))
	}
	row := dims.Rows[1]
	if row.Cells[1].String() != "distance" || row.Cells[3].String() != "5" {
		t.Errorf("have type %q label %q, want distance and 5",
			row.Cells[1].String(), row.Cells[3].String())
	}

	cons := xf.Sheets[1]
	if cons.Name != "Constraints" || len(cons.Rows) != 2 {
		t.Fatalf("have sheet %q with %d rows, want Constraints with 2", cons.Name, len(cons.Rows))
	}
	if got := cons.Rows[1].Cells[1].String(); got != "length" {
		t.Errorf("have constraint type %q, want length", got)
	}

	vars := xf.Sheets[2]
	if vars.Name != "Variables" || len(vars.Rows) != 2 {
		t.Fatalf("have sheet %q with %d rows, want Variables with 2", vars.Name, len(vars.Rows))
	}
	vrow := vars.Rows[1]
	if vrow.Cells[0].String() != "k" || vrow.Cells[1].String() != "2+1" || vrow.Cells[2].String() != "3" {
		t.Errorf("have variable row %q %q %q, want k, 2+1, 3",
			vrow.Cells[0].String(), vrow.Cells[1].String(), vrow.Cells[2].String())
	}

	// Restricting the export to one dimension id.
	file2 := filepath.Join(dir, "one.xlsx")
	if err := WriteDimensionsXLSX(s, file2, []int{diam.ID()}); err != nil {
		t.Fatal(err)
	}
	xf2, err := xlsx.OpenFile(file2)
	if err != nil {
		t.Fatal(err)
	}
	if rows := xf2.Sheets[0].Rows; len(rows) != 2 || rows[1].Cells[1].String() != "diameter" {
		t.Error("id filter should keep only the diameter dimension")
	}
}
