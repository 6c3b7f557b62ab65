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

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
)

// Grid is a regular raster in a projected coordinate system. Row 0 is
// the northernmost row and column 0 is the westernmost column.
// Missing values are stored as NaN.
type Grid struct {
	// Nx and Ny are the number of columns and rows.
	Nx, Ny int

	// X0 is the western edge and Y0 is the northern edge of the grid.
	X0, Y0 float64

	// Dx and Dy are the cell edge lengths, both positive.
	Dx, Dy float64

	// CRS is the textual (proj4 or WKT) coordinate reference system.
	CRS string

	// Data holds the cell values, with shape [Ny, Nx].
	Data *sparse.DenseArray

	sr *proj.SR
}

// NewGrid returns a grid with all values missing. crs may be empty,
// in which case the grid has no spatial reference.
func NewGrid(nx, ny int, x0, y0, dx, dy float64, crs string) (*Grid, error) {
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrGridGeometry, nx, ny)
	}
	if !(dx > 0) || !(dy > 0) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return nil, fmt.Errorf("%w: cell size %gx%g", ErrGridGeometry, dx, dy)
	}
	if math.IsNaN(x0) || math.IsNaN(y0) || math.IsInf(x0, 0) || math.IsInf(y0, 0) {
		return nil, fmt.Errorf("%w: origin (%g, %g)", ErrGridGeometry, x0, y0)
	}
	g := &Grid{
		Nx: nx, Ny: ny,
		X0: x0, Y0: y0,
		Dx: dx, Dy: dy,
		CRS:  crs,
		Data: sparse.ZerosDense(ny, nx),
	}
	for i := range g.Data.Elements {
		g.Data.Elements[i] = math.NaN()
	}
	if crs != "" {
		sr, err := proj.Parse(crs)
		if err != nil {
			return nil, fmt.Errorf("heatload: parsing grid spatial reference: %v", err)
		}
		if _, _, err = sr.Transformers(); err != nil {
			return nil, fmt.Errorf("heatload: grid spatial reference: %v", err)
		}
		g.sr = sr
	}
	return g, nil
}

// Like returns a new grid with the same geometry as g and all values missing.
func (g *Grid) Like() *Grid {
	o := &Grid{
		Nx: g.Nx, Ny: g.Ny,
		X0: g.X0, Y0: g.Y0,
		Dx: g.Dx, Dy: g.Dy,
		CRS:  g.CRS,
		Data: sparse.ZerosDense(g.Ny, g.Nx),
		sr:   g.sr,
	}
	for i := range o.Data.Elements {
		o.Data.Elements[i] = math.NaN()
	}
	return o
}

// SR returns the spatial reference of the grid, or nil if it doesn't have one.
func (g *Grid) SR() *proj.SR { return g.sr }

// SameGeometry returns whether g and o have the same extent, cell size,
// and coordinate reference system.
func (g *Grid) SameGeometry(o *Grid) bool {
	return g.Nx == o.Nx && g.Ny == o.Ny &&
		g.X0 == o.X0 && g.Y0 == o.Y0 &&
		g.Dx == o.Dx && g.Dy == o.Dy &&
		g.CRS == o.CRS
}

// Get returns the value at the given row and column.
func (g *Grid) Get(row, col int) float64 { return g.Data.Get(row, col) }

// Set sets the value at the given row and column. Zeros are written
// explicitly because the grid is not zero-filled.
func (g *Grid) Set(v float64, row, col int) {
	g.Data.Elements[g.Data.Index1d(row, col)] = v
}

// Valid returns whether the value at the given row and column is defined.
func (g *Grid) Valid(row, col int) bool { return !math.IsNaN(g.Data.Get(row, col)) }

// CellCenter returns the center of the given cell.
func (g *Grid) CellCenter(row, col int) geom.Point {
	return geom.Point{
		X: g.X0 + (float64(col)+0.5)*g.Dx,
		Y: g.Y0 - (float64(row)+0.5)*g.Dy,
	}
}

// CellBounds returns the footprint of the given cell.
func (g *Grid) CellBounds(row, col int) *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: g.X0 + float64(col)*g.Dx, Y: g.Y0 - float64(row+1)*g.Dy},
		Max: geom.Point{X: g.X0 + float64(col+1)*g.Dx, Y: g.Y0 - float64(row)*g.Dy},
	}
}

// CellPolygon returns the footprint of the given cell as a polygon.
func (g *Grid) CellPolygon(row, col int) geom.Polygon {
	return boundsPolygon(g.CellBounds(row, col))
}

// Bounds returns the extent of the grid.
func (g *Grid) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: g.X0, Y: g.Y0 - float64(g.Ny)*g.Dy},
		Max: geom.Point{X: g.X0 + float64(g.Nx)*g.Dx, Y: g.Y0},
	}
}

// Index returns the row and column of the cell containing point (x, y),
// and whether the point is within the grid.
func (g *Grid) Index(x, y float64) (row, col int, ok bool) {
	col = int(math.Floor((x - g.X0) / g.Dx))
	row = int(math.Floor((g.Y0 - y) / g.Dy))
	if row < 0 || col < 0 || row >= g.Ny || col >= g.Nx {
		return row, col, false
	}
	return row, col, true
}

// Values returns all defined values in the grid.
func (g *Grid) Values() []float64 {
	o := make([]float64, 0, len(g.Data.Elements))
	for _, v := range g.Data.Elements {
		if !math.IsNaN(v) {
			o = append(o, v)
		}
	}
	return o
}

// boundsPolygon returns a closed clockwise ring around b.
func boundsPolygon(b *geom.Bounds) geom.Polygon {
	return geom.Polygon{{
		{X: b.Min.X, Y: b.Min.Y},
		{X: b.Min.X, Y: b.Max.Y},
		{X: b.Max.X, Y: b.Max.Y},
		{X: b.Max.X, Y: b.Min.Y},
		{X: b.Min.X, Y: b.Min.Y},
	}}
}
