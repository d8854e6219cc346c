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
	"encoding/json"
	"fmt"
	"io"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/sketch/formula"
)

// sceneJSON is the persisted form of a scene. Constraint entries do
// not repeat dimensions; an active dimension rejoins the solver set on
// load from its own record.
type sceneJSON struct {
	Version     string                 `json:"version,omitempty"`
	Points      []pointJSON            `json:"points"`
	Segments    []segmentJSON          `json:"segments"`
	Circles     []circleJSON           `json:"circles"`
	Arcs        []arcJSON              `json:"arcs"`
	Texts       []textJSON             `json:"texts"`
	Dimensions  []dimensionJSON        `json:"dimensions"`
	Constraints []constraintJSON       `json:"constraints"`
	Variables   map[string]interface{} `json:"variables"`
}

type pointJSON struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Fixed bool    `json:"fixed"`
	Layer string  `json:"layer"`
	Color string  `json:"color,omitempty"`
}

type segmentJSON struct {
	ID               int    `json:"id"`
	P1               int    `json:"p1"`
	P2               int    `json:"p2"`
	Layer            string `json:"layer"`
	Color            string `json:"color,omitempty"`
	Construction     bool   `json:"construction,omitempty"`
	ConstructionType string `json:"constructionType,omitempty"`
	ConstructionDash string `json:"constructionDash,omitempty"`
}

type circleJSON struct {
	ID           int     `json:"id"`
	Center       int     `json:"center"`
	Radius       float64 `json:"radius"`
	Layer        string  `json:"layer"`
	Color        string  `json:"color,omitempty"`
	Construction bool    `json:"construction,omitempty"`
}

type arcJSON struct {
	ID           int     `json:"id"`
	Center       int     `json:"center"`
	Radius       float64 `json:"radius"`
	StartAngle   float64 `json:"startAngle"`
	EndAngle     float64 `json:"endAngle"`
	Layer        string  `json:"layer"`
	Color        string  `json:"color,omitempty"`
	Construction bool    `json:"construction,omitempty"`
}

type textJSON struct {
	ID       int     `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Text     string  `json:"text"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Layer    string  `json:"layer"`
	Color    string  `json:"color,omitempty"`
}

type dimensionJSON struct {
	ID           int         `json:"id"`
	X1           float64     `json:"x1"`
	Y1           float64     `json:"y1"`
	X2           float64     `json:"x2"`
	Y2           float64     `json:"y2"`
	Offset       float64     `json:"offset"`
	DimType      string      `json:"dimType"`
	IsConstraint bool        `json:"isConstraint"`
	DisplayMode  string      `json:"displayMode"`
	VariableName string      `json:"variableName,omitempty"`
	Formula      interface{} `json:"formula"`
	SourceAID    int         `json:"sourceAId,omitempty"`
	SourceBID    int         `json:"sourceBId,omitempty"`
	AngleStart   *float64    `json:"_angleStart,omitempty"`
	AngleSweep   *float64    `json:"_angleSweep,omitempty"`
	Min          *float64    `json:"min,omitempty"`
	Max          *float64    `json:"max,omitempty"`
	Layer        string      `json:"layer"`
	Color        string      `json:"color,omitempty"`
}

// constraintJSON is the union of the wire fields of every constraint
// kind; each kind fills only its own references.
type constraintJSON struct {
	ID     int         `json:"id"`
	Type   string      `json:"type"`
	A      int         `json:"a,omitempty"`
	B      int         `json:"b,omitempty"`
	Point  int         `json:"point,omitempty"`
	Seg    int         `json:"seg,omitempty"`
	SegA   int         `json:"segA,omitempty"`
	SegB   int         `json:"segB,omitempty"`
	Circle int         `json:"circle,omitempty"`
	Shape  int         `json:"shape,omitempty"`
	X      *float64    `json:"x,omitempty"`
	Y      *float64    `json:"y,omitempty"`
	Value  interface{} `json:"value"`
	Min    *float64    `json:"min,omitempty"`
	Max    *float64    `json:"max,omitempty"`
}

// Serialize returns the scene in its JSON persistence format.
func (s *Scene) Serialize() ([]byte, error) {
	obj, err := s.encode()
	if err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

// Deserialize replaces the scene contents with the scene encoded in
// data. On error the scene is left unchanged.
func (s *Scene) Deserialize(data []byte) error {
	var in sceneJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("sketch: decoding scene: %v", err)
	}
	return s.decode(&in)
}

// WriteJSON writes the scene to w in its JSON persistence format.
func (s *Scene) WriteJSON(w io.Writer) error {
	obj, err := s.encode()
	if err != nil {
		return err
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(obj)
}

// ReadJSON replaces the scene contents with the scene read from r. On
// error the scene is left unchanged.
func (s *Scene) ReadJSON(r io.Reader) error {
	var in sceneJSON
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return fmt.Errorf("sketch: decoding scene: %v", err)
	}
	return s.decode(&in)
}

func (s *Scene) encode() (*sceneJSON, error) {
	out := &sceneJSON{
		Version:     Version,
		Points:      []pointJSON{},
		Segments:    []segmentJSON{},
		Circles:     []circleJSON{},
		Arcs:        []arcJSON{},
		Texts:       []textJSON{},
		Dimensions:  []dimensionJSON{},
		Constraints: []constraintJSON{},
		Variables:   s.Vars.Map(),
	}
	for _, p := range s.Points {
		out.Points = append(out.Points, pointJSON{
			ID: p.id, X: p.X, Y: p.Y, Fixed: p.Fixed, Layer: p.Layer, Color: p.Color,
		})
	}
	for _, seg := range s.segments {
		sj := segmentJSON{
			ID: seg.id, P1: seg.P1.id, P2: seg.P2.id,
			Layer: seg.Layer, Color: seg.Color, Construction: seg.Construction,
			ConstructionDash: seg.ConstructionDash,
		}
		if seg.ConstructionType != Finite {
			sj.ConstructionType = seg.ConstructionType
		}
		out.Segments = append(out.Segments, sj)
	}
	for _, c := range s.circles {
		out.Circles = append(out.Circles, circleJSON{
			ID: c.id, Center: c.Center.id, Radius: c.Radius,
			Layer: c.Layer, Color: c.Color, Construction: c.Construction,
		})
	}
	for _, a := range s.arcs {
		out.Arcs = append(out.Arcs, arcJSON{
			ID: a.id, Center: a.Center.id, Radius: a.Radius,
			StartAngle: a.StartAngle, EndAngle: a.EndAngle,
			Layer: a.Layer, Color: a.Color, Construction: a.Construction,
		})
	}
	for _, t := range s.texts {
		out.Texts = append(out.Texts, textJSON{
			ID: t.id, X: t.X, Y: t.Y, Text: t.Text, Height: t.Height,
			Rotation: t.Rotation, Layer: t.Layer, Color: t.Color,
		})
	}
	for _, d := range s.dims {
		dj := dimensionJSON{
			ID: d.id, X1: d.X1, Y1: d.Y1, X2: d.X2, Y2: d.Y2,
			Offset: d.Offset, DimType: d.DimType,
			IsConstraint: d.IsConstraint, DisplayMode: d.DisplayMode,
			VariableName: d.VariableName, Formula: d.Formula,
			Min: d.Min, Max: d.Max, Layer: d.Layer, Color: d.Color,
		}
		if d.SourceA != nil {
			dj.SourceAID = d.SourceA.ID()
		}
		if d.SourceB != nil {
			dj.SourceBID = d.SourceB.ID()
		}
		if d.DimType == DimAngle {
			start, sweep := d.AngleStart, d.AngleSweep
			dj.AngleStart, dj.AngleSweep = &start, &sweep
		}
		out.Dimensions = append(out.Dimensions, dj)
	}
	for _, c := range s.constraints {
		if _, ok := c.(*Dimension); ok {
			continue
		}
		cj, err := encodeConstraint(c)
		if err != nil {
			return nil, err
		}
		out.Constraints = append(out.Constraints, cj)
	}
	return out, nil
}

func encodeConstraint(c Constraint) (constraintJSON, error) {
	j := constraintJSON{ID: c.ID(), Type: c.Type()}
	switch c := c.(type) {
	case *Coincident:
		j.A, j.B = c.A.id, c.B.id
	case *Distance:
		j.A, j.B = c.A.id, c.B.id
		j.Value = c.Value
		j.Min, j.Max = c.Min, c.Max
	case *Fixed:
		j.Point = c.P.id
		x, y := c.X, c.Y
		j.X, j.Y = &x, &y
	case *Horizontal:
		j.Seg = c.Seg.id
	case *Vertical:
		j.Seg = c.Seg.id
	case *Parallel:
		j.SegA, j.SegB = c.A.id, c.B.id
	case *Perpendicular:
		j.SegA, j.SegB = c.A.id, c.B.id
	case *Angle:
		j.SegA, j.SegB = c.A.id, c.B.id
		j.Value = c.Value
		j.Min, j.Max = c.Min, c.Max
	case *EqualLength:
		j.SegA, j.SegB = c.A.id, c.B.id
	case *Length:
		j.Seg = c.Seg.id
		j.Value = c.Value
		j.Min, j.Max = c.Min, c.Max
	case *Radius:
		j.Shape = c.Shape.ID()
		j.Value = c.Value
		j.Min, j.Max = c.Min, c.Max
	case *Tangent:
		j.Seg = c.Seg.id
		j.Circle = c.Circle.ID()
	case *OnLine:
		j.Point, j.Seg = c.P.id, c.Seg.id
	case *OnCircle:
		j.Point, j.Circle = c.P.id, c.Circle.ID()
	case *Midpoint:
		j.Point, j.Seg = c.P.id, c.Seg.id
	default:
		return j, fmt.Errorf("sketch: cannot serialize constraint type %T", c)
	}
	return j, nil
}

// decode rebuilds the whole object graph before touching the scene, so
// a malformed input leaves the scene as it was.
func (s *Scene) decode(in *sceneJSON) error {
	vars := formula.NewVars()
	for name, v := range in.Variables {
		if err := vars.Set(name, v); err != nil {
			return fmt.Errorf("sketch: variable %s: %v", name, err)
		}
	}

	points := make(map[int]*Point, len(in.Points))
	prims := make(map[int]Primitive)
	maxPrim := 0
	pts := make([]*Point, 0, len(in.Points))
	for _, pj := range in.Points {
		p := &Point{
			Point: geom.Point{X: pj.X, Y: pj.Y},
			Fixed: pj.Fixed, Layer: pj.Layer, Color: pj.Color, id: pj.ID,
		}
		if p.Layer == "" {
			p.Layer = DefaultLayer
		}
		pts = append(pts, p)
		points[pj.ID] = p
		prims[pj.ID] = p
		maxPrim = max(maxPrim, pj.ID)
	}

	segs := make([]*Segment, 0, len(in.Segments))
	for _, sj := range in.Segments {
		p1, ok := points[sj.P1]
		if !ok {
			return fmt.Errorf("sketch: segment %d references missing point %d", sj.ID, sj.P1)
		}
		p2, ok := points[sj.P2]
		if !ok {
			return fmt.Errorf("sketch: segment %d references missing point %d", sj.ID, sj.P2)
		}
		seg := &Segment{
			Attrs: wireAttrs(sj.Layer, sj.Color, sj.Construction),
			P1:    p1, P2: p2,
			ConstructionType: sj.ConstructionType,
			ConstructionDash: sj.ConstructionDash,
			id:               sj.ID,
		}
		if seg.ConstructionType == "" {
			seg.ConstructionType = Finite
		}
		segs = append(segs, seg)
		prims[sj.ID] = seg
		maxPrim = max(maxPrim, sj.ID)
	}

	circles := make([]*Circle, 0, len(in.Circles))
	for _, cj := range in.Circles {
		ctr, ok := points[cj.Center]
		if !ok {
			return fmt.Errorf("sketch: circle %d references missing point %d", cj.ID, cj.Center)
		}
		c := &Circle{
			Attrs:  wireAttrs(cj.Layer, cj.Color, cj.Construction),
			Center: ctr, Radius: cj.Radius, id: cj.ID,
		}
		circles = append(circles, c)
		prims[cj.ID] = c
		maxPrim = max(maxPrim, cj.ID)
	}

	arcs := make([]*Arc, 0, len(in.Arcs))
	for _, aj := range in.Arcs {
		ctr, ok := points[aj.Center]
		if !ok {
			return fmt.Errorf("sketch: arc %d references missing point %d", aj.ID, aj.Center)
		}
		a := &Arc{
			Attrs:  wireAttrs(aj.Layer, aj.Color, aj.Construction),
			Center: ctr, Radius: aj.Radius,
			StartAngle: aj.StartAngle, EndAngle: aj.EndAngle, id: aj.ID,
		}
		arcs = append(arcs, a)
		prims[aj.ID] = a
		maxPrim = max(maxPrim, aj.ID)
	}

	texts := make([]*Text, 0, len(in.Texts))
	for _, tj := range in.Texts {
		t := &Text{
			Attrs: wireAttrs(tj.Layer, tj.Color, false),
			X:     tj.X, Y: tj.Y, Text: tj.Text,
			Height: tj.Height, Rotation: tj.Rotation, id: tj.ID,
		}
		texts = append(texts, t)
		prims[tj.ID] = t
		maxPrim = max(maxPrim, tj.ID)
	}

	dims := make([]*Dimension, 0, len(in.Dimensions))
	for _, dj := range in.Dimensions {
		d := &Dimension{
			Attrs: wireAttrs(dj.Layer, dj.Color, false),
			X1:    dj.X1, Y1: dj.Y1, X2: dj.X2, Y2: dj.Y2,
			Offset: dj.Offset, DimType: dj.DimType,
			IsConstraint: dj.IsConstraint,
			Formula:      dj.Formula,
			VariableName: dj.VariableName,
			DisplayMode:  dj.DisplayMode,
		}
		if d.DisplayMode == "" {
			d.DisplayMode = DisplayValue
		}
		if dj.AngleStart != nil {
			d.AngleStart = *dj.AngleStart
		}
		if dj.AngleSweep != nil {
			d.AngleSweep = *dj.AngleSweep
		}
		d.Min, d.Max = dj.Min, dj.Max
		if dj.SourceAID != 0 {
			src, ok := prims[dj.SourceAID]
			if !ok {
				return fmt.Errorf("sketch: dimension %d references missing primitive %d", dj.ID, dj.SourceAID)
			}
			d.SourceA = src
		}
		if dj.SourceBID != 0 {
			src, ok := prims[dj.SourceBID]
			if !ok {
				return fmt.Errorf("sketch: dimension %d references missing primitive %d", dj.ID, dj.SourceBID)
			}
			d.SourceB = src
		}
		d.setID(dj.ID)
		dims = append(dims, d)
		maxPrim = max(maxPrim, dj.ID)
	}

	cons := make([]Constraint, 0, len(in.Constraints))
	maxCon := 0
	for _, cj := range in.Constraints {
		c, err := decodeConstraint(cj, points, prims)
		if err != nil {
			return err
		}
		if b, ok := c.(binder); ok {
			b.setID(cj.ID)
		}
		cons = append(cons, c)
		maxCon = max(maxCon, cj.ID)
	}

	s.beginOp()
	defer s.endOp()
	s.Clear()
	s.Points = pts
	s.segments = segs
	s.circles = circles
	s.arcs = arcs
	s.texts = texts
	s.dims = dims
	for name, v := range vars.Map() {
		s.Vars.Set(name, v)
	}
	for _, c := range cons {
		if b, ok := c.(binder); ok {
			b.bind(s.Vars)
		}
	}
	s.constraints = cons
	for _, d := range s.dims {
		d.bind(s.Vars)
		if d.IsConstraint && d.SourceA != nil {
			s.constraints = append(s.constraints, d)
		}
	}
	s.nextPrimID = maxPrim + 1
	s.nextConstraintID = maxCon + 1
	return nil
}

// wireAttrs fills display attributes from their persisted subset.
func wireAttrs(layer, color string, construction bool) Attrs {
	a := defaultAttrs()
	if layer != "" {
		a.Layer = layer
	}
	a.Color = color
	a.Construction = construction
	return a
}

func decodeConstraint(cj constraintJSON, points map[int]*Point, prims map[int]Primitive) (Constraint, error) {
	pt := func(id int) (*Point, error) {
		p, ok := points[id]
		if !ok {
			return nil, fmt.Errorf("sketch: constraint %d references missing point %d", cj.ID, id)
		}
		return p, nil
	}
	seg := func(id int) (*Segment, error) {
		sg, ok := prims[id].(*Segment)
		if !ok {
			return nil, fmt.Errorf("sketch: constraint %d references missing segment %d", cj.ID, id)
		}
		return sg, nil
	}
	radial := func(id int) (Radial, error) {
		r, ok := prims[id].(Radial)
		if !ok {
			return nil, fmt.Errorf("sketch: constraint %d references missing circle or arc %d", cj.ID, id)
		}
		return r, nil
	}

	switch cj.Type {
	case TypeCoincident:
		a, err := pt(cj.A)
		if err != nil {
			return nil, err
		}
		b, err := pt(cj.B)
		if err != nil {
			return nil, err
		}
		return NewCoincident(a, b), nil
	case TypeDistance:
		a, err := pt(cj.A)
		if err != nil {
			return nil, err
		}
		b, err := pt(cj.B)
		if err != nil {
			return nil, err
		}
		c := NewDistance(a, b, cj.Value)
		c.Min, c.Max = cj.Min, cj.Max
		return c, nil
	case TypeFixed:
		p, err := pt(cj.Point)
		if err != nil {
			return nil, err
		}
		x, y := p.X, p.Y
		if cj.X != nil {
			x = *cj.X
		}
		if cj.Y != nil {
			y = *cj.Y
		}
		return NewFixed(p, x, y), nil
	case TypeHorizontal:
		sg, err := seg(cj.Seg)
		if err != nil {
			return nil, err
		}
		return NewHorizontal(sg), nil
	case TypeVertical:
		sg, err := seg(cj.Seg)
		if err != nil {
			return nil, err
		}
		return NewVertical(sg), nil
	case TypeParallel:
		a, err := seg(cj.SegA)
		if err != nil {
			return nil, err
		}
		b, err := seg(cj.SegB)
		if err != nil {
			return nil, err
		}
		return NewParallel(a, b), nil
	case TypePerpendicular:
		a, err := seg(cj.SegA)
		if err != nil {
			return nil, err
		}
		b, err := seg(cj.SegB)
		if err != nil {
			return nil, err
		}
		return NewPerpendicular(a, b), nil
	case TypeAngle:
		a, err := seg(cj.SegA)
		if err != nil {
			return nil, err
		}
		b, err := seg(cj.SegB)
		if err != nil {
			return nil, err
		}
		c := NewAngle(a, b, cj.Value)
		c.Min, c.Max = cj.Min, cj.Max
		return c, nil
	case TypeEqualLength:
		a, err := seg(cj.SegA)
		if err != nil {
			return nil, err
		}
		b, err := seg(cj.SegB)
		if err != nil {
			return nil, err
		}
		return NewEqualLength(a, b), nil
	case TypeLength:
		sg, err := seg(cj.Seg)
		if err != nil {
			return nil, err
		}
		c := NewLength(sg, cj.Value)
		c.Min, c.Max = cj.Min, cj.Max
		return c, nil
	case TypeRadius:
		r, err := radial(cj.Shape)
		if err != nil {
			return nil, err
		}
		c := NewRadius(r, cj.Value)
		c.Min, c.Max = cj.Min, cj.Max
		return c, nil
	case TypeTangent:
		sg, err := seg(cj.Seg)
		if err != nil {
			return nil, err
		}
		r, err := radial(cj.Circle)
		if err != nil {
			return nil, err
		}
		return NewTangent(sg, r), nil
	case TypeOnLine:
		p, err := pt(cj.Point)
		if err != nil {
			return nil, err
		}
		sg, err := seg(cj.Seg)
		if err != nil {
			return nil, err
		}
		return NewOnLine(p, sg), nil
	case TypeOnCircle:
		p, err := pt(cj.Point)
		if err != nil {
			return nil, err
		}
		r, err := radial(cj.Circle)
		if err != nil {
			return nil, err
		}
		return NewOnCircle(p, r), nil
	case TypeMidpoint:
		p, err := pt(cj.Point)
		if err != nil {
			return nil, err
		}
		sg, err := seg(cj.Seg)
		if err != nil {
			return nil, err
		}
		return NewMidpoint(p, sg), nil
	}
	return nil, fmt.Errorf("sketch: unknown constraint type %q", cj.Type)
}
