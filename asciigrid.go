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
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ReadASCIIGrid reads an Esri ASCII grid from r. crs is the coordinate
// reference system of the grid, which is not stored in the file itself.
// Cells equal to NODATA_value are read as missing.
func ReadASCIIGrid(r io.Reader, crs string) (*Grid, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	s.Split(bufio.ScanWords)

	header := make(map[string]float64)
	var first string
	for s.Scan() {
		key := strings.ToLower(s.Text())
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			first = key
			break
		}
		if !s.Scan() {
			break
		}
		v, err := strconv.ParseFloat(s.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("heatload: ASCII grid header %s: %v", key, err)
		}
		header[key] = v
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("heatload: reading ASCII grid: %v", err)
	}

	for _, k := range []string{"ncols", "nrows", "cellsize"} {
		if _, ok := header[k]; !ok {
			return nil, fmt.Errorf("heatload: ASCII grid header is missing %s", k)
		}
	}
	nx, ny := int(header["ncols"]), int(header["nrows"])
	d := header["cellsize"]
	var x0, ySouth float64
	if v, ok := header["xllcorner"]; ok {
		x0 = v
	} else if v, ok := header["xllcenter"]; ok {
		x0 = v - d/2
	} else {
		return nil, fmt.Errorf("heatload: ASCII grid header is missing xllcorner or xllcenter")
	}
	if v, ok := header["yllcorner"]; ok {
		ySouth = v
	} else if v, ok := header["yllcenter"]; ok {
		ySouth = v - d/2
	} else {
		return nil, fmt.Errorf("heatload: ASCII grid header is missing yllcorner or yllcenter")
	}
	noData, hasNoData := header["nodata_value"]

	g, err := NewGrid(nx, ny, x0, ySouth+float64(ny)*d, d, d, crs)
	if err != nil {
		return nil, err
	}
	n := 0
	add := func(text string) error {
		if n >= len(g.Data.Elements) {
			return fmt.Errorf("heatload: ASCII grid has more than %d values", len(g.Data.Elements))
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("heatload: ASCII grid value %d: %v", n, err)
		}
		if hasNoData && v == noData {
			v = math.NaN()
		}
		g.Data.Elements[n] = v
		n++
		return nil
	}
	if first != "" {
		if err := add(first); err != nil {
			return nil, err
		}
	}
	for s.Scan() {
		if err := add(s.Text()); err != nil {
			return nil, err
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("heatload: reading ASCII grid: %v", err)
	}
	if n != len(g.Data.Elements) {
		return nil, fmt.Errorf("heatload: ASCII grid has %d values; expected %d", n, len(g.Data.Elements))
	}
	return g, nil
}

// WriteASCIIGrid writes g to w as an Esri ASCII grid, with missing
// values written as NoData.
func WriteASCIIGrid(w io.Writer, g *Grid) error {
	if g.Dx != g.Dy {
		return fmt.Errorf("%w: ASCII grids require square cells but cells are %gx%g", ErrGridGeometry, g.Dx, g.Dy)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\nnrows %d\nxllcorner %s\nyllcorner %s\ncellsize %s\nNODATA_value %s\n",
		g.Nx, g.Ny, fmtFloat(g.X0), fmtFloat(g.Y0-float64(g.Ny)*g.Dy), fmtFloat(g.Dx), fmtFloat(NoData))
	for r := 0; r < g.Ny; r++ {
		for c := 0; c < g.Nx; c++ {
			if c > 0 {
				bw.WriteByte(' ')
			}
			v := g.Get(r, c)
			if math.IsNaN(v) {
				v = NoData
			}
			bw.WriteString(fmtFloat(v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
