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
)

// OrientationClass is a coarse description of the direction in which a
// group is elongated.
type OrientationClass int

// Orientation classes.
const (
	OrientationUndefined OrientationClass = iota
	MoreEW
	Square
	MoreNS
)

// Orientation class boundaries. Indices in [squareMin, squareMax]
// are Square.
const (
	squareMin = 0.4
	squareMax = 0.6
)

func (o OrientationClass) String() string {
	switch o {
	case MoreEW:
		return "More E-W"
	case Square:
		return "Square"
	case MoreNS:
		return "More N-S"
	default:
		return ""
	}
}

// ClassifyOrientation returns the class of the given orientation index.
// It returns ErrOrientationOutOfRange if the index is NaN or is outside
// of [0, 1].
func ClassifyOrientation(index float64) (OrientationClass, error) {
	switch {
	case math.IsNaN(index) || index < 0 || index > 1:
		return OrientationUndefined, fmt.Errorf("%w: %g", ErrOrientationOutOfRange, index)
	case index < squareMin:
		return MoreEW, nil
	case index <= squareMax:
		return Square, nil
	default:
		return MoreNS, nil
	}
}

// Orient calculates the bounding box orientation attributes of g.
// The orientation index is the north-south extent divided by the sum of
// the north-south and east-west extents, so 0 is a purely east-west
// shape, 1 is purely north-south, and 0.5 is square.
// If the bounding box has zero extent, the box is returned along with
// ErrDegenerateBounds and the index and class are undefined.
func Orient(g geom.Polygonal) (OrientationAttributes, error) {
	var o OrientationAttributes
	if g == nil {
		return o, ErrDegenerateBounds
	}
	b := g.Bounds()
	if b == nil || b.Empty() {
		return o, ErrDegenerateBounds
	}
	o.XMin, o.XMax = b.Min.X, b.Max.X
	o.YMin, o.YMax = b.Min.Y, b.Max.Y
	o.XLength = b.Max.X - b.Min.X
	o.YLength = b.Max.Y - b.Min.Y
	if o.XLength > 0 {
		o.LengthWidthRatio = Some(o.YLength / o.XLength)
	}
	sum := o.XLength + o.YLength
	if !(sum > 0) || math.IsInf(sum, 0) {
		return o, fmt.Errorf("%w: %gx%g", ErrDegenerateBounds, o.XLength, o.YLength)
	}
	index := o.YLength / sum
	class, err := ClassifyOrientation(index)
	if err != nil {
		return o, err
	}
	o.Index = Some(index)
	o.Class = class
	return o, nil
}
