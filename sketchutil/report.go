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

	"github.com/spatialmodel/sketch"
	"github.com/tealeg/xlsx"
)

// WriteDimensions loads the scene at sceneFile and writes its
// dimension report to the xlsx workbook at outputFile. If ids is not
// empty, only the dimensions it lists are included.
func WriteDimensions(sceneFile, outputFile string, ids []int) error {
	s, err := LoadScene(sceneFile)
	if err != nil {
		return err
	}
	return WriteDimensionsXLSX(s, outputFile, ids)
}

// WriteDimensionsXLSX writes a workbook at filename with one sheet of
// dimension measurements, one of constraint residuals, and one of
// variable values. If ids is not empty, only the dimensions it lists
// are included.
func WriteDimensionsXLSX(s *sketch.Scene, filename string, ids []int) error {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Dimensions")
	if err != nil {
		return fmt.Errorf("sketch: creating dimension workbook: %v", err)
	}
	row := sheet.AddRow()
	for _, h := range []string{"ID", "Type", "Value", "Label", "Formula", "Variable", "Constraint"} {
		row.AddCell().SetString(h)
	}
	for _, d := range s.Dimensions() {
		if len(ids) > 0 && !want[d.ID()] {
			continue
		}
		row := sheet.AddRow()
		row.AddCell().SetInt(d.ID())
		row.AddCell().SetString(d.DimType)
		row.AddCell().SetFloat(d.Measured())
		row.AddCell().SetString(d.Label())
		if d.Formula != nil {
			row.AddCell().SetString(fmt.Sprintf("%v", d.Formula))
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(d.VariableName)
		row.AddCell().SetBool(d.IsConstraint)
	}

	sheet, err = f.AddSheet("Constraints")
	if err != nil {
		return fmt.Errorf("sketch: creating dimension workbook: %v", err)
	}
	row = sheet.AddRow()
	for _, h := range []string{"ID", "Type", "Residual"} {
		row.AddCell().SetString(h)
	}
	for _, c := range s.Constraints() {
		row := sheet.AddRow()
		row.AddCell().SetInt(c.ID())
		row.AddCell().SetString(c.Type())
		row.AddCell().SetFloat(c.Error())
	}

	sheet, err = f.AddSheet("Variables")
	if err != nil {
		return fmt.Errorf("sketch: creating dimension workbook: %v", err)
	}
	row = sheet.AddRow()
	for _, h := range []string{"Name", "Value", "Resolved"} {
		row.AddCell().SetString(h)
	}
	for _, name := range s.Vars.Names() {
		v, _ := s.Vars.Get(name)
		row := sheet.AddRow()
		row.AddCell().SetString(name)
		row.AddCell().SetString(fmt.Sprintf("%v", v))
		row.AddCell().SetFloat(s.Vars.Resolve(v))
	}

	return f.Save(filename)
}
