/*
Copyright © 2024 the heatload authors.
This file is part of heatload.

heatload is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

heatload is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with heatload.  If not, see <http://www.gnu.org/licenses/>.
*/

package heatload

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
)

// CellIndex identifies a raster cell.
type CellIndex struct {
	Row, Col int
}

// Median returns the median of the non-NaN values in vals, averaging the
// two middle values when there is an even number of them. It returns
// Missing if there are no values. vals is not modified.
func Median(vals []float64) Float {
	v := make([]float64, 0, len(vals))
	for _, x := range vals {
		if !math.IsNaN(x) {
			v = append(v, x)
		}
	}
	n := len(v)
	if n == 0 {
		return Missing
	}
	sort.Float64s(v)
	if n%2 == 1 {
		return Some(v[n/2])
	}
	return Some((v[n/2-1] + v[n/2]) / 2)
}

// Zone returns the cells with a defined heat load index that belong to
// polygon g: those whose centers are inside or on the edge of g or,
// if there are none, those whose footprints overlap g with positive area.
// Cells are returned in row-major order.
func (t *Terrain) Zone(g geom.Polygonal) []CellIndex {
	if g == nil {
		return nil
	}
	b := g.Bounds()
	if b == nil || b.Empty() {
		return nil
	}
	var candidates []CellIndex
	for _, s := range t.index.SearchIntersect(b) {
		tl := s.(*tile)
		for r := tl.r0; r < tl.r1; r++ {
			for c := tl.c0; c < tl.c1; c++ {
				if !t.HLI.Valid(r, c) || !t.HLI.CellBounds(r, c).Overlaps(b) {
					continue
				}
				candidates = append(candidates, CellIndex{Row: r, Col: c})
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Row != candidates[j].Row {
			return candidates[i].Row < candidates[j].Row
		}
		return candidates[i].Col < candidates[j].Col
	})

	var zone []CellIndex
	for _, c := range candidates {
		if t.HLI.CellCenter(c.Row, c.Col).Within(g) != geom.Outside {
			zone = append(zone, c)
		}
	}
	if len(zone) > 0 {
		return zone
	}
	// Polygons smaller than a cell may not contain any cell centers.
	for _, c := range candidates {
		isect := g.Intersection(t.HLI.CellPolygon(c.Row, c.Col))
		if isect == nil {
			continue
		}
		if isect.Area() > 0 {
			zone = append(zone, c)
		}
	}
	return zone
}

// Aggregate calculates the zonal median terrain attributes of polygon g.
// Flat cells are excluded from the aspect medians. Latitude is calculated
// at the polygon centroid using lat. All attributes are missing if the
// polygon does not cover any cells with a defined heat load index.
func (t *Terrain) Aggregate(g geom.Polygonal, lat LatitudeFunc) (TopoAttributes, Issue) {
	zone := t.Zone(g)
	if len(zone) == 0 {
		return TopoAttributes{}, IssueNoCoverage
	}
	slope := make([]float64, 0, len(zone))
	aspect := make([]float64, 0, len(zone))
	folded := make([]float64, 0, len(zone))
	hli := make([]float64, 0, len(zone))
	for _, c := range zone {
		slope = append(slope, t.Slope.Get(c.Row, c.Col))
		hli = append(hli, t.HLI.Get(c.Row, c.Col))
		if a := t.Aspect.Get(c.Row, c.Col); a != FlatAspect {
			aspect = append(aspect, a)
			folded = append(folded, t.FoldedAspect.Get(c.Row, c.Col))
		}
	}
	var o TopoAttributes
	o.Cells = len(zone)
	o.HLI = Median(hli)
	o.SlopeDeg, o.SlopeRad = angle(Median(slope))
	o.AspectDeg, o.AspectRad = angle(Median(aspect))
	o.FoldedAspectDeg, o.FoldedAspectRad = angle(Median(folded))

	var issues Issue
	ctr := g.Centroid()
	latDeg, err := lat(ctr.X, ctr.Y)
	if err != nil {
		latDeg = math.NaN()
	}
	o.LatitudeDeg, o.LatitudeRad = angle(Some(latDeg))
	if !o.LatitudeDeg.Valid {
		issues |= IssueLatitude
	}
	return o, issues
}

// angle returns a value in degrees and its equivalent in radians.
func angle(deg Float) (Float, Float) {
	if !deg.Valid {
		return Missing, Missing
	}
	return deg, Some(deg.V * deg2rad)
}
