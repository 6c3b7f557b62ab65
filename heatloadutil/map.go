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

package heatloadutil

import (
	"fmt"
	"image/color"
	"io"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/heatload"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// gridXYZ adapts a heatload.Grid to plotter.GridXYZ. Plot rows
// increase northward, so they are the reverse of grid rows.
type gridXYZ struct{ g *heatload.Grid }

func (g gridXYZ) Dims() (c, r int)   { return g.g.Nx, g.g.Ny }
func (g gridXYZ) Z(c, r int) float64 { return g.g.Get(g.g.Ny-1-r, c) }
func (g gridXYZ) X(c int) float64    { return g.g.CellCenter(0, c).X }
func (g gridXYZ) Y(r int) float64    { return g.g.CellCenter(g.g.Ny-1-r, 0).Y }

// paletteColors is the number of colors in the map palette.
const paletteColors = 255

// DrawMap draws grid as a PNG image of the given size with the outlines
// of groups, if it is not nil, and a color bar legend.
func DrawMap(w io.Writer, grid *heatload.Grid, groups *heatload.Collection, title string, width, height vg.Length) error {
	vals := grid.Values()
	if len(vals) == 0 {
		return fmt.Errorf("heatloadutil: can't map %s because it has no values", title)
	}
	min, max := floats.Min(vals), floats.Max(vals)
	if max == min {
		max = min + 1
	}

	cm := moreland.ExtendedBlackBody()
	cm.SetMin(min)
	cm.SetMax(max)

	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = title
	p.X.Label.Text = "Easting"
	p.Y.Label.Text = "Northing"
	hm := plotter.NewHeatMap(gridXYZ{g: grid}, cm.Palette(paletteColors))
	hm.Min, hm.Max = min, max
	p.Add(hm)

	if groups != nil {
		for _, g := range groups.Groups {
			if err := addOutline(p, g.Geom); err != nil {
				return fmt.Errorf("heatloadutil: drawing group %d: %v", g.ID, err)
			}
		}
	}

	l, err := plot.New()
	if err != nil {
		return err
	}
	l.Add(&plotter.ColorBar{ColorMap: cm})
	l.HideY()
	l.X.Padding = 0

	img := vgimg.New(width, height)
	dc := draw.New(img)
	legendHeight := height / 8
	p.Draw(draw.Crop(dc, 0, 0, legendHeight, 0))
	l.Draw(draw.Crop(dc, 0, 0, 0, legendHeight-height))
	_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}

// addOutline adds the rings of g to p as lines.
func addOutline(p *plot.Plot, g geom.Polygonal) error {
	if g == nil {
		return nil
	}
	for _, poly := range g.Polygons() {
		for _, ring := range poly {
			if len(ring) < 2 {
				continue
			}
			xy := make(plotter.XYs, len(ring)+1)
			for i, pt := range ring {
				xy[i].X, xy[i].Y = pt.X, pt.Y
			}
			xy[len(ring)] = xy[0]
			line, err := plotter.NewLine(xy)
			if err != nil {
				return err
			}
			line.Color = color.NRGBA{B: 255, A: 255}
			line.Width = vg.Points(0.75)
			p.Add(line)
		}
	}
	return nil
}
