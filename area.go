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
)

// GeometryMode specifies how group areas are calculated.
type GeometryMode int

const (
	// Planar calculates areas in the projected raster coordinate system.
	Planar GeometryMode = iota

	// Spherical calculates areas on the authalic sphere from geographic
	// coordinates.
	Spherical
)

// authalicRadius is the radius in meters of the sphere with the same
// surface area as the WGS84 ellipsoid.
const authalicRadius = 6371007.181

func (m GeometryMode) String() string {
	switch m {
	case Planar:
		return "planar"
	case Spherical:
		return "spherical"
	default:
		return fmt.Sprintf("GeometryMode(%d)", int(m))
	}
}

// ParseGeometryMode parses "planar" or "spherical".
func ParseGeometryMode(s string) (GeometryMode, error) {
	switch s {
	case "planar", "Planar", "":
		return Planar, nil
	case "spherical", "Spherical":
		return Spherical, nil
	default:
		return Planar, fmt.Errorf("heatload: invalid geometry mode %q", s)
	}
}

// Area returns the area of g. In Planar mode it is the area in squared
// projected units. In Spherical mode toGeographic must transform
// projected coordinates into longitude and latitude degrees, and the
// area is in square meters.
func Area(g geom.Polygonal, mode GeometryMode, toGeographic proj.Transformer) (float64, error) {
	switch mode {
	case Planar:
		return g.Area(), nil
	case Spherical:
		if toGeographic == nil {
			return math.NaN(), fmt.Errorf("heatload: spherical area requires a geographic transform")
		}
		// Cylindrical equal-area coordinates preserve area on the sphere.
		t := func(x, y float64) (float64, float64, error) {
			lon, lat, err := toGeographic(x, y)
			if err != nil {
				return math.NaN(), math.NaN(), err
			}
			return authalicRadius * lon * deg2rad, authalicRadius * math.Sin(lat*deg2rad), nil
		}
		ea, err := g.Transform(t)
		if err != nil {
			return math.NaN(), fmt.Errorf("heatload: transforming geometry for spherical area: %v", err)
		}
		return ea.(geom.Polygonal).Area(), nil
	default:
		return math.NaN(), fmt.Errorf("heatload: invalid geometry mode %d", mode)
	}
}

// validGeometry returns whether g is non-empty, finite, and has a
// positive planar area.
func validGeometry(g geom.Polygonal) bool {
	if g == nil {
		return false
	}
	b := g.Bounds()
	if b == nil || b.Empty() {
		return false
	}
	for _, v := range []float64{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return g.Area() > 0
}
