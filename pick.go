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
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
)

// snapRank orders snap kinds for tie-breaking: endpoints win over
// midpoints, then centers, then quadrants.
var snapRank = map[string]int{
	SnapEndpoint: 0,
	SnapMidpoint: 1,
	SnapCenter:   2,
	SnapQuadrant: 3,
}

// A SnapIndex answers cursor queries, snap targets and shape picks,
// from R-trees over the scene. The index subscribes to scene changes
// and re-indexes lazily on the next query.
type SnapIndex struct {
	scene  *Scene
	snaps  *rtree.Rtree
	shapes *rtree.Rtree
	dirty  bool
}

// NewSnapIndex builds an index over s and keeps it in sync with the
// scene.
func NewSnapIndex(s *Scene) *SnapIndex {
	idx := &SnapIndex{scene: s}
	idx.Rebuild()
	s.OnChange(func() { idx.dirty = true })
	return idx
}

// shapeEntry wraps a Primitive as the five-method geom.Geom the
// R-tree requires; the tree only ever calls Bounds, which the embedded
// Primitive provides. ShapeAt unwraps the Primitive on the way out.
type shapeEntry struct {
	Primitive
}

func (e shapeEntry) Similar(geom.Geom, float64) bool               { return false }
func (e shapeEntry) Transform(proj.Transformer) (geom.Geom, error) { return e, nil }
func (e shapeEntry) Len() int                                      { return 0 }
func (e shapeEntry) Points() func() geom.Point                     { return nil }

// Rebuild re-indexes the scene immediately.
func (idx *SnapIndex) Rebuild() {
	idx.snaps = rtree.NewTree(25, 50)
	idx.shapes = rtree.NewTree(25, 50)
	for shape := range idx.scene.Shapes() {
		idx.shapes.Insert(shapeEntry{shape})
		for _, sp := range shape.SnapPoints() {
			idx.snaps.Insert(sp)
		}
	}
	idx.dirty = false
}

func (idx *SnapIndex) ensure() {
	if idx.dirty {
		idx.Rebuild()
	}
}

func queryBox(x, y, tol float64) *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: x - tol, Y: y - tol},
		Max: geom.Point{X: x + tol, Y: y + tol},
	}
}

// Snap returns the snap point nearest (x, y) within tol. At equal
// distance the higher-ranked kind wins.
func (idx *SnapIndex) Snap(x, y, tol float64) (SnapPoint, bool) {
	idx.ensure()
	var best SnapPoint
	bestD := math.Inf(1)
	found := false
	for _, item := range idx.snaps.SearchIntersect(queryBox(x, y, tol)) {
		sp := item.(SnapPoint)
		d := math.Hypot(sp.X-x, sp.Y-y)
		if d > tol {
			continue
		}
		if !found || d < bestD || (d == bestD && snapRank[sp.Kind] < snapRank[best.Kind]) {
			best, bestD, found = sp, d, true
		}
	}
	return best, found
}

// Candidates returns every snap point within tol of (x, y), nearest
// first.
func (idx *SnapIndex) Candidates(x, y, tol float64) []SnapPoint {
	idx.ensure()
	var out []SnapPoint
	for _, item := range idx.snaps.SearchIntersect(queryBox(x, y, tol)) {
		sp := item.(SnapPoint)
		if math.Hypot(sp.X-x, sp.Y-y) <= tol {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di := math.Hypot(out[i].X-x, out[i].Y-y)
		dj := math.Hypot(out[j].X-x, out[j].Y-y)
		if di != dj {
			return di < dj
		}
		return snapRank[out[i].Kind] < snapRank[out[j].Kind]
	})
	return out
}

// ShapeAt returns the shape nearest (x, y) whose distance is strictly
// less than tol, or nil. Unlike Scene.FindClosestShape it only
// considers shapes whose bounds come near the cursor, so it stays fast
// on large scenes.
func (idx *SnapIndex) ShapeAt(x, y, tol float64) Primitive {
	idx.ensure()
	var best Primitive
	bestD := tol
	for _, item := range idx.shapes.SearchIntersect(queryBox(x, y, tol)) {
		shape := item.(shapeEntry).Primitive
		if d := shape.DistanceTo(x, y); d < bestD {
			best, bestD = shape, d
		}
	}
	return best
}
