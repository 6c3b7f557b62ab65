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

	"github.com/ctessum/geom/proj"
)

// DefaultGeographicCRS is the geographic coordinate system latitudes are
// calculated in when no other is specified.
const DefaultGeographicCRS = "+proj=longlat +datum=WGS84 +no_defs"

// LatitudeFunc returns the latitude in degrees of the point (x, y),
// which is in the raster coordinate system.
type LatitudeFunc func(x, y float64) (float64, error)

// ProjectedLatitude returns a LatitudeFunc that transforms points from
// src into the geographic coordinate system geographic. If geographic is
// empty, DefaultGeographicCRS is used.
func ProjectedLatitude(src *proj.SR, geographic string) (LatitudeFunc, error) {
	if src == nil {
		return nil, fmt.Errorf("heatload: latitude transform requires a source spatial reference")
	}
	t, err := geographicTransform(src, geographic)
	if err != nil {
		return nil, err
	}
	return func(x, y float64) (float64, error) {
		_, lat, err := t(x, y)
		if err != nil {
			return math.NaN(), err
		}
		if math.IsNaN(lat) || lat < -90 || lat > 90 {
			return math.NaN(), fmt.Errorf("heatload: latitude %g of point (%g, %g) is invalid", lat, x, y)
		}
		return lat, nil
	}, nil
}

// ConstantLatitude returns a LatitudeFunc that always returns deg.
func ConstantLatitude(deg float64) LatitudeFunc {
	return func(_, _ float64) (float64, error) { return deg, nil }
}
