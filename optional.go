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
	"strconv"
)

// Float is a floating point value that may be missing.
// A valid Float never holds NaN or an infinity.
type Float struct {
	V     float64
	Valid bool
}

// Missing is the missing Float value.
var Missing = Float{}

// Some returns a valid Float holding v, unless v is NaN or infinite,
// in which case it returns Missing.
func Some(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return Float{V: v, Valid: true}
}

// Get returns the value and whether it is valid.
func (f Float) Get() (float64, bool) { return f.V, f.Valid }

// OrNaN returns the value, or NaN if it is missing.
func (f Float) OrNaN() float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.V
}

// Or returns the value, or def if it is missing.
func (f Float) Or(def float64) float64 {
	if !f.Valid {
		return def
	}
	return f.V
}

func (f Float) String() string {
	if !f.Valid {
		return "NA"
	}
	return strconv.FormatFloat(f.V, 'g', -1, 64)
}

// Interface returns the value, or nil if it is missing.
// It is used when encoding to formats with a native null.
func (f Float) Interface() interface{} {
	if !f.Valid {
		return nil
	}
	return f.V
}
