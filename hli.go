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

import "math"

// Coefficients of McCune and Keon (2002) equation 2, which predicts the
// natural log of potential direct incident radiation (MJ cm⁻² yr⁻¹).
const (
	hliIntercept            = -1.236
	hliCosLatCosSlope       = 1.350
	hliCosAspSinSlopeSinLat = -1.376
	hliSinLatSinSlope       = -0.331
	hliSinAspSinSlope       = 0.375
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// FoldAspect folds a compass aspect (degrees) about the north-south axis
// so that southwest, the warmest direction, is 180 and northeast is 0:
// 180 - |aspect - 180|. NaN and FlatAspect are returned unchanged.
func FoldAspect(aspect float64) float64 {
	if math.IsNaN(aspect) || aspect == FlatAspect {
		return aspect
	}
	return 180 - math.Abs(aspect-180)
}

// HeatLoad returns the heat load index for the given slope, folded aspect,
// and latitude, all in radians. The model output is clamped to [0, 1].
// If any input is NaN the result is NaN.
func HeatLoad(slope, foldedAspect, latitude float64) float64 {
	if math.IsNaN(slope) || math.IsNaN(foldedAspect) || math.IsNaN(latitude) {
		return math.NaN()
	}
	sinS, cosS := math.Sincos(slope)
	sinL, cosL := math.Sincos(latitude)
	sinA, cosA := math.Sincos(foldedAspect)
	ln := hliIntercept +
		hliCosLatCosSlope*cosL*cosS +
		hliCosAspSinSlopeSinLat*cosA*sinS*sinL +
		hliSinLatSinSlope*sinL*sinS +
		hliSinAspSinSlope*sinA*sinS
	return clamp(math.Exp(ln), 0, 1)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
