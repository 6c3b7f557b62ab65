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
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// TerrainDataVersion is the version of the terrain file format.
const TerrainDataVersion = "1.0.0"

// ReadNetCDFGrid reads variable from a netCDF file with dimensions
// [y, x], where the first row is the northernmost. The grid geometry
// is read from the global attributes x0, y0 (the western and northern
// edges), dx, dy, and crs. Values equal to the variable's _FillValue
// are read as missing.
func ReadNetCDFGrid(rw cdf.ReaderWriterAt, variable string) (*Grid, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("heatload.ReadNetCDFGrid: %v", err)
	}
	return readGrid(f, variable)
}

func readGrid(f *cdf.File, variable string) (*Grid, error) {
	x0, err := floatAttribute(f, "x0")
	if err != nil {
		return nil, err
	}
	y0, err := floatAttribute(f, "y0")
	if err != nil {
		return nil, err
	}
	dx, err := floatAttribute(f, "dx")
	if err != nil {
		return nil, err
	}
	dy, err := floatAttribute(f, "dy")
	if err != nil {
		return nil, err
	}
	crs, _ := f.Header.GetAttribute("", "crs").(string)

	dims := f.Header.Lengths(variable)
	if len(dims) != 2 {
		return nil, fmt.Errorf("heatload: netCDF variable %s has dimensions %v; it must be [y, x]", variable, dims)
	}
	g, err := NewGrid(dims[1], dims[0], x0, y0, dx, dy, crs)
	if err != nil {
		return nil, err
	}
	data, err := readVar(f, variable)
	if err != nil {
		return nil, fmt.Errorf("heatload: reading netCDF variable %s: %v", variable, err)
	}
	if len(data) != len(g.Data.Elements) {
		return nil, fmt.Errorf("heatload: netCDF variable %s: dims are %d but array length is %d",
			variable, len(g.Data.Elements), len(data))
	}
	copy(g.Data.Elements, data)
	return g, nil
}

func floatAttribute(f *cdf.File, name string) (float64, error) {
	switch v := f.Header.GetAttribute("", name).(type) {
	case []float64:
		return v[0], nil
	case []float32:
		return float64(v[0]), nil
	case []int32:
		return float64(v[0]), nil
	default:
		return math.NaN(), fmt.Errorf("heatload: netCDF file is missing global attribute %s", name)
	}
}

// readVar reads a floating point variable, converting fill values to NaN.
func readVar(f *cdf.File, v string) ([]float64, error) {
	r := f.Reader(v, nil, nil)
	dataI := r.Zero(-1)
	if _, err := r.Read(dataI); err != nil {
		return nil, err
	}
	var data []float64
	switch d := dataI.(type) {
	case []float64:
		data = d
	case []float32:
		data = make([]float64, len(d))
		for i, v := range d {
			data[i] = float64(v)
		}
	case []int16:
		data = make([]float64, len(d))
		for i, v := range d {
			data[i] = float64(v)
		}
	case []int32:
		data = make([]float64, len(d))
		for i, v := range d {
			data[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("unsupported data type %T", dataI)
	}

	var noData float64
	switch nd := f.Header.GetAttribute(v, "_FillValue").(type) {
	case nil:
		return data, nil
	case []float32:
		noData = float64(nd[0])
	case []float64:
		noData = nd[0]
	case []int16:
		noData = float64(nd[0])
	case []int32:
		noData = float64(nd[0])
	default:
		return nil, fmt.Errorf("invalid type for FillValue: %T", nd)
	}
	for i, d := range data {
		if d == noData {
			data[i] = math.NaN()
		}
	}
	return data, nil
}

// WriteTerrain writes all of the rasters in t to netCDF file w.
func WriteTerrain(w cdf.ReaderWriterAt, t *Terrain) error {
	grids := t.Grids()
	g := t.Elevation
	for name, gg := range grids {
		if !gg.SameGeometry(g) {
			return fmt.Errorf("%w: terrain variable %s does not match elevation", ErrGridGeometry, name)
		}
	}
	h := cdf.NewHeader([]string{"y", "x"}, []int{g.Ny, g.Nx})
	h.AddAttribute("", "comment", "heatload terrain file")
	h.AddAttribute("", "x0", []float64{g.X0})
	h.AddAttribute("", "y0", []float64{g.Y0})
	h.AddAttribute("", "dx", []float64{g.Dx})
	h.AddAttribute("", "dy", []float64{g.Dy})
	h.AddAttribute("", "crs", g.CRS)
	h.AddAttribute("", "data_version", TerrainDataVersion)

	// Sort the names so they write in the same order every time.
	names := make([]string, 0, len(grids))
	for n := range grids {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		h.AddVariable(name, []string{"y", "x"}, []float64{0})
		h.AddAttribute(name, "units", terrainUnits[name])
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("heatload: creating terrain file: %v", err)
	}
	for _, name := range names {
		if err = writeNCF(f, name, grids[name].Data); err != nil {
			return fmt.Errorf("heatload: writing variable %s to netcdf file: %v", name, err)
		}
	}
	return nil
}

var terrainUnits = map[string]string{
	"elevation":     "m",
	"slope":         "degrees",
	"aspect":        "degrees clockwise from north",
	"folded_aspect": "degrees from northeast",
	"latitude":      "degrees north",
	"hli":           "unitless",
}

func writeNCF(f *cdf.File, v string, data *sparse.DenseArray) error {
	end := f.Header.Lengths(v)
	n := 1
	for _, l := range end {
		n *= l
	}
	if len(data.Elements) != n {
		return fmt.Errorf("dims are %d but array length is %d", n, len(data.Elements))
	}
	start := make([]int, len(end))
	w := f.Writer(v, start, end)
	_, err := w.Write(data.Elements)
	return err
}

// ReadTerrain reads terrain previously written by WriteTerrain.
func ReadTerrain(rw cdf.ReaderWriterAt) (*Terrain, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("heatload.ReadTerrain: %v", err)
	}
	if v, _ := f.Header.GetAttribute("", "data_version").(string); v != TerrainDataVersion {
		return nil, fmt.Errorf("heatload.ReadTerrain: terrain data version %q is not compatible with %q",
			v, TerrainDataVersion)
	}
	grids := make(map[string]*Grid)
	for name := range terrainUnits {
		g, err := readGrid(f, name)
		if err != nil {
			return nil, err
		}
		grids[name] = g
	}
	t := &Terrain{
		Elevation:    grids["elevation"],
		Slope:        grids["slope"],
		Aspect:       grids["aspect"],
		FoldedAspect: grids["folded_aspect"],
		Latitude:     grids["latitude"],
		HLI:          grids["hli"],
	}
	t.buildIndex()
	return t, nil
}
