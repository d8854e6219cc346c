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

// Package sketch implements the core of a parametric 2D sketching
// system: geometric primitives that express coincidence by sharing
// endpoint Points, a set of geometric constraints enforced by an
// iterative relaxation solver, named variables whose formulas feed
// constraint values, smart dimensions that both measure and constrain,
// and topology edit operations that rewire the primitive graph and the
// constraint set together.
package sketch

import (
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/sketch/formula"
)

// Version gives the version number of this version of Sketch.
const Version = "0.1.0"

// A Scene holds the primitives, constraints, dimensions, and variables
// of one sketch and keeps them consistent across edits. A Scene is not
// safe for concurrent use.
type Scene struct {
	// Points is the pool of coordinate-owning points. Shapes reference
	// entries in it rather than holding coordinates of their own.
	Points []*Point

	// Vars is the variable table that constraint and dimension value
	// expressions resolve against.
	Vars *formula.Vars

	// AllDimensionsVisible and ConstraintIconsVisible are display
	// toggles interpreted by renderers; the core stores them but does
	// not act on them.
	AllDimensionsVisible   bool
	ConstraintIconsVisible bool

	// Log receives solver and edit diagnostics.
	Log logrus.FieldLogger

	segments    []*Segment
	circles     []*Circle
	arcs        []*Arc
	texts       []*Text
	dims        []*Dimension
	constraints []Constraint

	nextPrimID       int
	nextConstraintID int

	changeSubs []func()
	opDepth    int
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{
		Vars:                 formula.NewVars(),
		AllDimensionsVisible: true,
		Log:                  logrus.StandardLogger(),
		nextPrimID:           1,
		nextConstraintID:     1,
	}
}

// OnChange registers fn to be called after every operation that
// mutates the scene. A compound edit fires it once, after the
// outermost operation completes.
func (s *Scene) OnChange(fn func()) {
	s.changeSubs = append(s.changeSubs, fn)
}

func (s *Scene) beginOp() { s.opDepth++ }

func (s *Scene) endOp() {
	s.opDepth--
	if s.opDepth == 0 {
		for _, fn := range s.changeSubs {
			fn()
		}
	}
}

// A ShapeOption configures a shape being added to a scene.
type ShapeOption func(*shapeOpts)

type shapeOpts struct {
	attrs Attrs
	merge bool
}

func newShapeOpts(opts []ShapeOption) shapeOpts {
	o := shapeOpts{attrs: defaultAttrs(), merge: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Merge controls whether new shape endpoints within MergeTol of an
// existing point reuse it (the default) or always get fresh points.
func Merge(merge bool) ShapeOption {
	return func(o *shapeOpts) { o.merge = merge }
}

// Layer places the shape on the named layer.
func Layer(name string) ShapeOption {
	return func(o *shapeOpts) { o.attrs.Layer = name }
}

// Color overrides the shape's layer color.
func Color(color string) ShapeOption {
	return func(o *shapeOpts) { o.attrs.Color = color }
}

// LineWidth sets the shape's line width.
func LineWidth(w float64) ShapeOption {
	return func(o *shapeOpts) { o.attrs.LineWidth = w }
}

// Construction marks the shape as construction geometry: drawn dashed,
// excluded from export, but fully participating in constraints.
func Construction() ShapeOption {
	return func(o *shapeOpts) { o.attrs.Construction = true }
}

// AddPoint adds a new free point at (x, y).
func (s *Scene) AddPoint(x, y float64) *Point {
	s.beginOp()
	defer s.endOp()
	return s.newPoint(x, y)
}

// AddFixedPoint adds a new point at (x, y) that the solver may not
// move.
func (s *Scene) AddFixedPoint(x, y float64) *Point {
	s.beginOp()
	defer s.endOp()
	p := s.newPoint(x, y)
	p.Fixed = true
	return p
}

func (s *Scene) newPoint(x, y float64) *Point {
	p := &Point{Point: geom.Point{X: x, Y: y}, Layer: DefaultLayer, id: s.nextPrimID}
	s.nextPrimID++
	s.Points = append(s.Points, p)
	return p
}

// GetOrCreatePoint returns the closest existing point within tol of
// (x, y), or adds a new point when there is none. A tol of zero or
// less means MergeTol.
func (s *Scene) GetOrCreatePoint(x, y, tol float64) *Point {
	if tol <= 0 {
		tol = MergeTol
	}
	var best *Point
	bestD := math.Inf(1)
	for _, p := range s.Points {
		if d := p.DistanceTo(x, y); d <= tol && d < bestD {
			best, bestD = p, d
		}
	}
	if best != nil {
		return best
	}
	s.beginOp()
	defer s.endOp()
	return s.newPoint(x, y)
}

func (s *Scene) endpointFor(x, y float64, merge bool) *Point {
	if merge {
		return s.GetOrCreatePoint(x, y, MergeTol)
	}
	return s.newPoint(x, y)
}

// AddSegment adds a segment from (x1, y1) to (x2, y2). Unless merging
// is disabled, endpoints near existing points reuse them, joining the
// new segment to the geometry already there.
func (s *Scene) AddSegment(x1, y1, x2, y2 float64, opts ...ShapeOption) *Segment {
	o := newShapeOpts(opts)
	s.beginOp()
	defer s.endOp()
	p1 := s.endpointFor(x1, y1, o.merge)
	p2 := s.endpointFor(x2, y2, o.merge)
	return s.insertSegment(p1, p2, o.attrs)
}

func (s *Scene) insertSegment(p1, p2 *Point, attrs Attrs) *Segment {
	seg := &Segment{Attrs: attrs, P1: p1, P2: p2, ConstructionType: Finite, id: s.nextPrimID}
	s.nextPrimID++
	s.segments = append(s.segments, seg)
	return seg
}

// AddCircle adds a circle of radius r centered at (cx, cy).
func (s *Scene) AddCircle(cx, cy, r float64, opts ...ShapeOption) *Circle {
	o := newShapeOpts(opts)
	s.beginOp()
	defer s.endOp()
	c := &Circle{Attrs: o.attrs, Center: s.endpointFor(cx, cy, o.merge), Radius: r, id: s.nextPrimID}
	s.nextPrimID++
	s.circles = append(s.circles, c)
	return c
}

// AddArc adds a counterclockwise arc of radius r about (cx, cy), from
// startAngle to endAngle radians.
func (s *Scene) AddArc(cx, cy, r, startAngle, endAngle float64, opts ...ShapeOption) *Arc {
	o := newShapeOpts(opts)
	s.beginOp()
	defer s.endOp()
	a := &Arc{
		Attrs:      o.attrs,
		Center:     s.endpointFor(cx, cy, o.merge),
		Radius:     r,
		StartAngle: startAngle,
		EndAngle:   endAngle,
		id:         s.nextPrimID,
	}
	s.nextPrimID++
	s.arcs = append(s.arcs, a)
	return a
}

// AddText adds an annotation anchored at (x, y).
func (s *Scene) AddText(x, y float64, text string, opts ...ShapeOption) *Text {
	o := newShapeOpts(opts)
	s.beginOp()
	defer s.endOp()
	t := &Text{Attrs: o.attrs, X: x, Y: y, Text: text, Height: 10, id: s.nextPrimID}
	s.nextPrimID++
	s.texts = append(s.texts, t)
	return t
}

// Segments returns the scene's segments in insertion order. The
// returned slice is the scene's own; callers must not modify it.
func (s *Scene) Segments() []*Segment { return s.segments }

// Circles returns the scene's circles in insertion order.
func (s *Scene) Circles() []*Circle { return s.circles }

// Arcs returns the scene's arcs in insertion order.
func (s *Scene) Arcs() []*Arc { return s.arcs }

// Texts returns the scene's text annotations in insertion order.
func (s *Scene) Texts() []*Text { return s.texts }

// Dimensions returns the scene's dimensions in insertion order.
func (s *Scene) Dimensions() []*Dimension { return s.dims }

// Constraints returns the scene's constraints, including dimensions
// currently acting as constraints, in solver order.
func (s *Scene) Constraints() []Constraint { return s.constraints }

// Shapes returns an iterator over the scene's non-point primitives:
// segments, circles, arcs, texts, and dimensions, in that order.
func (s *Scene) Shapes() iter.Seq[Primitive] {
	return func(yield func(Primitive) bool) {
		for _, seg := range s.segments {
			if !yield(seg) {
				return
			}
		}
		for _, c := range s.circles {
			if !yield(c) {
				return
			}
		}
		for _, a := range s.arcs {
			if !yield(a) {
				return
			}
		}
		for _, t := range s.texts {
			if !yield(t) {
				return
			}
		}
		for _, d := range s.dims {
			if !yield(d) {
				return
			}
		}
	}
}

// AllPrimitives returns an iterator over the scene's points followed
// by its shapes.
func (s *Scene) AllPrimitives() iter.Seq[Primitive] {
	return func(yield func(Primitive) bool) {
		for _, p := range s.Points {
			if !yield(p) {
				return
			}
		}
		for shape := range s.Shapes() {
			if !yield(shape) {
				return
			}
		}
	}
}

// PrimitiveByID returns the primitive with the given identifier, or
// nil when there is none.
func (s *Scene) PrimitiveByID(id int) Primitive {
	for _, p := range s.Points {
		if p.id == id {
			return p
		}
	}
	for shape := range s.Shapes() {
		if shape.ID() == id {
			return shape
		}
	}
	return nil
}

// ConstraintByID returns the constraint with the given identifier, or
// nil when there is none. Dimensions acting as constraints are found
// by their primitive identifier.
func (s *Scene) ConstraintByID(id int) Constraint {
	for _, c := range s.constraints {
		if c.ID() == id {
			return c
		}
	}
	return nil
}

// FindClosestShape returns the shape nearest (wx, wy) whose distance
// is strictly less than tol, or nil. Ties go to the shape earliest in
// Shapes order.
func (s *Scene) FindClosestShape(wx, wy, tol float64) Primitive {
	var best Primitive
	bestD := tol
	for shape := range s.Shapes() {
		if d := shape.DistanceTo(wx, wy); d < bestD {
			best, bestD = shape, d
		}
	}
	return best
}

// FindClosestPoint returns the point nearest (wx, wy) whose distance
// is strictly less than tol, or nil. Ties go to the earliest point.
func (s *Scene) FindClosestPoint(wx, wy, tol float64) *Point {
	var best *Point
	bestD := tol
	for _, p := range s.Points {
		if d := p.DistanceTo(wx, wy); d < bestD {
			best, bestD = p, d
		}
	}
	return best
}

// ShapesUsingPoint returns the segments, circles, and arcs whose
// defining points include pt.
func (s *Scene) ShapesUsingPoint(pt *Point) []Primitive {
	var out []Primitive
	for _, seg := range s.segments {
		if seg.P1 == pt || seg.P2 == pt {
			out = append(out, seg)
		}
	}
	for _, c := range s.circles {
		if c.Center == pt {
			out = append(out, c)
		}
	}
	for _, a := range s.arcs {
		if a.Center == pt {
			out = append(out, a)
		}
	}
	return out
}

// definingPoints returns the points that define prim.
func definingPoints(prim Primitive) []*Point {
	switch p := prim.(type) {
	case *Point:
		return []*Point{p}
	case *Segment:
		return []*Point{p.P1, p.P2}
	case *Circle:
		return []*Point{p.Center}
	case *Arc:
		return []*Point{p.Center}
	}
	return nil
}

// ConstraintsOn returns the constraints, including dimensions acting
// as constraints, that involve prim or one of its defining points.
func (s *Scene) ConstraintsOn(prim Primitive) []Constraint {
	pts := definingPoints(prim)
	var out []Constraint
	for _, c := range s.constraints {
		if constraintTouches(c, prim, pts) {
			out = append(out, c)
		}
	}
	return out
}

func constraintTouches(c Constraint, prim Primitive, pts []*Point) bool {
	for _, shape := range constraintShapes(c) {
		if shape == prim {
			return true
		}
	}
	for _, ip := range c.InvolvedPoints() {
		if ip == Primitive(prim) {
			return true
		}
		for _, p := range pts {
			if ip == p {
				return true
			}
		}
	}
	return false
}

// Bounds returns the box covering all visible shapes, or a sentinel
// 100×100 box at the origin when nothing is visible.
func (s *Scene) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for shape := range s.Shapes() {
		if a := shapeAttrs(shape); a != nil && !a.Visible {
			continue
		}
		b.Extend(shape.Bounds())
	}
	if b.Empty() {
		return &geom.Bounds{Min: geom.Point{X: 0, Y: 0}, Max: geom.Point{X: 100, Y: 100}}
	}
	return b
}

// shapeAttrs returns the display attributes of a shape, or nil for
// primitives that do not carry them.
func shapeAttrs(prim Primitive) *Attrs {
	switch p := prim.(type) {
	case *Segment:
		return &p.Attrs
	case *Circle:
		return &p.Attrs
	case *Arc:
		return &p.Attrs
	case *Text:
		return &p.Attrs
	case *Dimension:
		return &p.Attrs
	}
	return nil
}

// AddConstraint adds c to the scene and solves. Value expressions in c
// resolve against the scene's variable table from now on. Adding a
// *Dimension activates it as a constraint.
func (s *Scene) AddConstraint(c Constraint) SolveResult {
	if c == nil {
		panic("sketch: AddConstraint called with nil constraint")
	}
	s.beginOp()
	defer s.endOp()
	s.appendConstraint(c)
	return s.Solve()
}

// appendConstraint installs c in the solver set without solving.
func (s *Scene) appendConstraint(c Constraint) {
	if d, ok := c.(*Dimension); ok {
		if d.SourceA == nil {
			panic("sketch: dimension used as a constraint has no source")
		}
		if !slices.Contains(s.dims, d) {
			panic("sketch: dimension used as a constraint is not in the scene")
		}
		d.IsConstraint = true
		if slices.Contains(s.constraints, Constraint(d)) {
			return // active dimensions appear in the solver set once
		}
	}
	if b, ok := c.(binder); ok {
		b.bind(s.Vars)
		if c.ID() == 0 {
			b.setID(s.nextConstraintID)
			s.nextConstraintID++
		}
	}
	s.constraints = append(s.constraints, c)
}

// RemoveConstraint removes c from the scene without re-solving.
// Removing a *Dimension deactivates it as a constraint but keeps the
// dimension itself.
func (s *Scene) RemoveConstraint(c Constraint) {
	i := slices.Index(s.constraints, c)
	if i < 0 {
		return
	}
	s.beginOp()
	defer s.endOp()
	s.constraints = slices.Delete(s.constraints, i, i+1)
	if d, ok := c.(*Dimension); ok {
		d.IsConstraint = false
	}
}

// removeConstraintsWhere removes the constraints drop returns true
// for. Dimensions leaving the solver set are deactivated, not removed
// as primitives.
func (s *Scene) removeConstraintsWhere(drop func(Constraint) bool) {
	kept := s.constraints[:0]
	for _, c := range s.constraints {
		if drop(c) {
			if d, ok := c.(*Dimension); ok {
				d.IsConstraint = false
			}
			continue
		}
		kept = append(kept, c)
	}
	s.constraints = kept
}

// dropConstraintsReferencing removes every constraint that refers to
// prim, directly or (when prim is a point) through its involved
// points.
func (s *Scene) dropConstraintsReferencing(prim Primitive) {
	s.removeConstraintsWhere(func(c Constraint) bool {
		return constraintReferences(c, prim)
	})
}

func constraintReferences(c Constraint, prim Primitive) bool {
	if p, ok := prim.(*Point); ok {
		for _, ip := range c.InvolvedPoints() {
			if ip == p {
				return true
			}
		}
	}
	for _, shape := range constraintShapes(c) {
		if shape == prim {
			return true
		}
	}
	return false
}

// removeDimensionsSourcing removes every dimension measuring prim.
func (s *Scene) removeDimensionsSourcing(prim Primitive) {
	for _, d := range slices.Clone(s.dims) {
		if d.SourceA == prim || d.SourceB == prim {
			s.RemoveDimension(d)
		}
	}
}

// RemovePrimitive removes p from the scene along with every constraint
// and dimension that references it, then removes any points the
// removal orphaned.
func (s *Scene) RemovePrimitive(p Primitive) {
	switch p := p.(type) {
	case *Point:
		s.RemovePoint(p)
	case *Segment:
		s.RemoveSegment(p)
	case *Circle:
		s.RemoveCircle(p)
	case *Arc:
		s.RemoveArc(p)
	case *Text:
		s.RemoveText(p)
	case *Dimension:
		s.RemoveDimension(p)
	}
}

// RemovePoint removes pt, every shape defined by it, every constraint
// involving it, and any points those removals orphaned.
func (s *Scene) RemovePoint(pt *Point) {
	if slices.Index(s.Points, pt) < 0 {
		return
	}
	s.beginOp()
	defer s.endOp()
	for _, shape := range s.ShapesUsingPoint(pt) {
		s.RemovePrimitive(shape)
	}
	s.dropConstraintsReferencing(pt)
	s.removeDimensionsSourcing(pt)
	if i := slices.Index(s.Points, pt); i >= 0 {
		s.Points = slices.Delete(s.Points, i, i+1)
	}
	s.cleanOrphanPoints()
}

// RemoveSegment removes seg, the constraints and dimensions that
// reference it, and any points the removal orphaned.
func (s *Scene) RemoveSegment(seg *Segment) {
	if slices.Index(s.segments, seg) < 0 {
		return
	}
	s.beginOp()
	defer s.endOp()
	s.unlinkSegment(seg)
	s.cleanOrphanPoints()
}

// unlinkSegment detaches seg and drops everything referencing it, but
// does not clean orphan points. Edit operations that replace seg use
// it so substitute constraints can be attached before the cleanup
// pass runs.
func (s *Scene) unlinkSegment(seg *Segment) {
	i := slices.Index(s.segments, seg)
	if i < 0 {
		return
	}
	s.segments = slices.Delete(s.segments, i, i+1)
	s.dropConstraintsReferencing(seg)
	s.removeDimensionsSourcing(seg)
}

// RemoveCircle removes c, the constraints and dimensions that
// reference it, and any points the removal orphaned.
func (s *Scene) RemoveCircle(c *Circle) {
	i := slices.Index(s.circles, c)
	if i < 0 {
		return
	}
	s.beginOp()
	defer s.endOp()
	s.circles = slices.Delete(s.circles, i, i+1)
	s.dropConstraintsReferencing(c)
	s.removeDimensionsSourcing(c)
	s.cleanOrphanPoints()
}

// RemoveArc removes a, the constraints and dimensions that reference
// it, and any points the removal orphaned.
func (s *Scene) RemoveArc(a *Arc) {
	i := slices.Index(s.arcs, a)
	if i < 0 {
		return
	}
	s.beginOp()
	defer s.endOp()
	s.arcs = slices.Delete(s.arcs, i, i+1)
	s.dropConstraintsReferencing(a)
	s.removeDimensionsSourcing(a)
	s.cleanOrphanPoints()
}

// RemoveText removes t from the scene.
func (s *Scene) RemoveText(t *Text) {
	i := slices.Index(s.texts, t)
	if i < 0 {
		return
	}
	s.beginOp()
	defer s.endOp()
	s.texts = slices.Delete(s.texts, i, i+1)
}

// RemoveDimension removes d as a primitive and, if it was acting as a
// constraint, from the solver set.
func (s *Scene) RemoveDimension(d *Dimension) {
	i := slices.Index(s.dims, d)
	if i < 0 {
		return
	}
	s.beginOp()
	defer s.endOp()
	s.dims = slices.Delete(s.dims, i, i+1)
	if j := slices.Index(s.constraints, Constraint(d)); j >= 0 {
		s.constraints = slices.Delete(s.constraints, j, j+1)
	}
}

// cleanOrphanPoints removes every point that no shape references and
// no constraint involves, then drops any dimension measuring a point
// that was removed. A point held only by a constraint is not an
// orphan; RemovePoint drops its constraints before deleting it.
func (s *Scene) cleanOrphanPoints() {
	used := make(map[*Point]bool)
	for _, seg := range s.segments {
		used[seg.P1] = true
		used[seg.P2] = true
	}
	for _, c := range s.circles {
		used[c.Center] = true
	}
	for _, a := range s.arcs {
		used[a.Center] = true
	}
	for _, c := range s.constraints {
		for _, p := range c.InvolvedPoints() {
			used[p] = true
		}
	}
	removed := false
	kept := s.Points[:0]
	for _, p := range s.Points {
		if used[p] {
			kept = append(kept, p)
		} else {
			removed = true
		}
	}
	s.Points = kept
	if !removed {
		return
	}
	for _, d := range slices.Clone(s.dims) {
		if p, ok := d.SourceA.(*Point); ok && !used[p] {
			s.RemoveDimension(d)
			continue
		}
		if p, ok := d.SourceB.(*Point); ok && !used[p] {
			s.RemoveDimension(d)
		}
	}
}

// SetVariable sets the named variable to a number or formula string
// and re-solves, since constraint targets may reference it.
func (s *Scene) SetVariable(name string, value interface{}) error {
	if err := s.Vars.Set(name, value); err != nil {
		return err
	}
	s.beginOp()
	defer s.endOp()
	s.Solve()
	return nil
}

// RemoveVariable deletes the named variable and re-solves. Constraints
// still referring to the name become inactive until it is redefined.
func (s *Scene) RemoveVariable(name string) {
	if _, ok := s.Vars.Get(name); !ok {
		return
	}
	s.Vars.Delete(name)
	s.beginOp()
	defer s.endOp()
	s.Solve()
}

// RenameVariable renames a variable and rewrites whole-word references
// to it in every constraint value, dimension formula and variable
// name, and other variables' formulas. Resolved values do not change,
// so no solve runs.
func (s *Scene) RenameVariable(oldName, newName string) error {
	if !formula.IsName(newName) {
		return fmt.Errorf("sketch: invalid variable name %q", newName)
	}
	s.beginOp()
	defer s.endOp()
	s.Vars.Rename(oldName, newName)
	for _, c := range s.constraints {
		renameConstraintValue(c, oldName, newName)
	}
	for _, d := range s.dims {
		d.renameVariable(oldName, newName)
	}
	return nil
}

// renameConstraintValue rewrites whole-word references to a renamed
// variable inside a constraint's target value.
func renameConstraintValue(c Constraint, oldName, newName string) {
	switch c := c.(type) {
	case *Distance:
		if str, ok := c.Value.(string); ok {
			c.Value = formula.ReplaceWholeWord(str, oldName, newName)
		}
	case *Angle:
		if str, ok := c.Value.(string); ok {
			c.Value = formula.ReplaceWholeWord(str, oldName, newName)
		}
	case *Length:
		if str, ok := c.Value.(string); ok {
			c.Value = formula.ReplaceWholeWord(str, oldName, newName)
		}
	case *Radius:
		if str, ok := c.Value.(string); ok {
			c.Value = formula.ReplaceWholeWord(str, oldName, newName)
		}
	}
}

// Clear empties the scene and resets the id counters and the variable
// table. Every reference into the scene becomes invalid.
func (s *Scene) Clear() {
	s.beginOp()
	defer s.endOp()
	s.Points = nil
	s.segments = nil
	s.circles = nil
	s.arcs = nil
	s.texts = nil
	s.dims = nil
	s.constraints = nil
	s.Vars.Clear()
	s.nextPrimID = 1
	s.nextConstraintID = 1
}
