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
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// FlatAspect is the aspect assigned to cells with no gradient. It is
// distinct from a missing aspect, which is NaN.
const FlatAspect = -1.0

// tileSize is the number of rows and columns in each spatial index tile.
const tileSize = 32

// Terrain holds co-registered rasters derived from an elevation model.
// Angles are in degrees. It should not be modified after creation.
type Terrain struct {
	Elevation    *Grid
	Slope        *Grid
	Aspect       *Grid
	FoldedAspect *Grid
	Latitude     *Grid
	HLI          *Grid

	index *rtree.Rtree
}

// Grids returns the terrain rasters keyed by variable name.
func (t *Terrain) Grids() map[string]*Grid {
	return map[string]*Grid{
		"elevation":     t.Elevation,
		"slope":         t.Slope,
		"aspect":        t.Aspect,
		"folded_aspect": t.FoldedAspect,
		"latitude":      t.Latitude,
		"hli":           t.HLI,
	}
}

// SlopeAspect calculates slope and aspect in degrees from elevation
// using Horn's (1981) third-order finite difference over each cell's
// 3×3 neighborhood. Aspect is the compass direction the surface faces,
// in [0, 360), or FlatAspect where there is no gradient. Cells on the
// grid edge and cells with a missing neighbor are missing in both outputs.
func SlopeAspect(elev *Grid) (slope, aspect *Grid, err error) {
	if elev == nil || elev.Data == nil {
		return nil, nil, fmt.Errorf("%w: missing elevation data", ErrGridGeometry)
	}
	if len(elev.Data.Shape) != 2 || elev.Data.Shape[0] != elev.Ny || elev.Data.Shape[1] != elev.Nx {
		return nil, nil, fmt.Errorf("%w: elevation data shape %v does not match %dx%d",
			ErrGridGeometry, elev.Data.Shape, elev.Ny, elev.Nx)
	}
	slope = elev.Like()
	aspect = elev.Like()
	parallelRows(elev.Ny, func(row int) {
		for col := 0; col < elev.Nx; col++ {
			dzdx, dzdy, ok := horn(elev, row, col)
			if !ok {
				continue
			}
			slope.Set(math.Atan(math.Hypot(dzdx, dzdy))*rad2deg, row, col)
			aspect.Set(compassAspect(dzdx, dzdy), row, col)
		}
	})
	return slope, aspect, nil
}

// horn returns the eastward and northward elevation gradients at the
// given cell.
func horn(e *Grid, row, col int) (dzdx, dzdy float64, ok bool) {
	if row <= 0 || col <= 0 || row >= e.Ny-1 || col >= e.Nx-1 {
		return 0, 0, false
	}
	var z [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := e.Get(row+i-1, col+j-1)
			if math.IsNaN(v) {
				return 0, 0, false
			}
			z[i][j] = v
		}
	}
	a, b, c := z[0][0], z[0][1], z[0][2]
	d, f := z[1][0], z[1][2]
	g, h, i := z[2][0], z[2][1], z[2][2]
	dzdx = ((c + 2*f + i) - (a + 2*d + g)) / (8 * e.Dx)
	dzdy = ((a + 2*b + c) - (g + 2*h + i)) / (8 * e.Dy)
	return dzdx, dzdy, true
}

// compassAspect returns the downslope direction in degrees clockwise
// from north.
func compassAspect(dzdx, dzdy float64) float64 {
	if dzdx == 0 && dzdy == 0 {
		return FlatAspect
	}
	a := math.Atan2(-dzdx, -dzdy) * rad2deg
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a -= 360
	}
	return a
}

// NewTerrain calculates slope, aspect, folded aspect, latitude, and
// heat load index from elevation. lat gives the latitude of each cell
// center. Cells whose latitude cannot be calculated have missing HLI.
func NewTerrain(elev *Grid, lat LatitudeFunc) (*Terrain, error) {
	if lat == nil {
		return nil, fmt.Errorf("heatload: NewTerrain requires a latitude function")
	}
	slope, aspect, err := SlopeAspect(elev)
	if err != nil {
		return nil, err
	}
	t := &Terrain{
		Elevation:    elev,
		Slope:        slope,
		Aspect:       aspect,
		FoldedAspect: elev.Like(),
		Latitude:     elev.Like(),
		HLI:          elev.Like(),
	}
	parallelRows(elev.Ny, func(row int) {
		for col := 0; col < elev.Nx; col++ {
			if !elev.Valid(row, col) {
				continue
			}
			p := elev.CellCenter(row, col)
			latDeg, err := lat(p.X, p.Y)
			if err != nil {
				continue
			}
			t.Latitude.Set(latDeg, row, col)

			folded := FoldAspect(aspect.Get(row, col))
			t.FoldedAspect.Set(folded, row, col)
			if folded == FlatAspect {
				// The aspect terms vanish on flat ground.
				folded = 0
			}
			hli := HeatLoad(slope.Get(row, col)*deg2rad, folded*deg2rad, latDeg*deg2rad)
			t.HLI.Set(hli, row, col)
		}
	})
	t.buildIndex()
	return t, nil
}

// tile is a rectangular block of raster cells [r0, r1) × [c0, c1).
type tile struct {
	geom.Polygon
	r0, r1, c0, c1 int
}

// buildIndex adds every tile containing at least one defined HLI value to
// a spatial index.
func (t *Terrain) buildIndex() {
	g := t.HLI
	t.index = rtree.NewTree(25, 50)
	for r0 := 0; r0 < g.Ny; r0 += tileSize {
		r1 := min(r0+tileSize, g.Ny)
		for c0 := 0; c0 < g.Nx; c0 += tileSize {
			c1 := min(c0+tileSize, g.Nx)
			if !anyValid(g, r0, r1, c0, c1) {
				continue
			}
			b := g.CellBounds(r0, c0)
			b.Extend(g.CellBounds(r1-1, c1-1))
			t.index.Insert(&tile{Polygon: boundsPolygon(b), r0: r0, r1: r1, c0: c0, c1: c1})
		}
	}
}

func anyValid(g *Grid, r0, r1, c0, c1 int) bool {
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			if g.Valid(r, c) {
				return true
			}
		}
	}
	return false
}

// parallelRows calls f for each row in [0, ny) using one goroutine per
// processor. f must only write to its own row.
func parallelRows(ny int, f func(row int)) {
	nprocs := runtime.GOMAXPROCS(0) // number of processors
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for row := pp; row < ny; row += nprocs {
				f(row)
			}
		}(pp)
	}
	wg.Wait()
}
