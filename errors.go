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

import "errors"

// Errors returned by the heatload pipeline. Callers should compare
// against them with errors.Is, as they are usually wrapped with context.
var (
	// ErrEmptyCollection is returned when there are no groups to process.
	ErrEmptyCollection = errors.New("heatload: group collection is empty")

	// ErrCRSMismatch is returned when the groups and the elevation raster
	// are not in the same coordinate reference system and cannot be
	// reconciled.
	ErrCRSMismatch = errors.New("heatload: coordinate reference system mismatch")

	// ErrDegenerateBounds is returned when a group bounding box has zero
	// extent in both directions.
	ErrDegenerateBounds = errors.New("heatload: bounding box has zero extent")

	// ErrOrientationOutOfRange indicates an orientation index outside of [0, 1].
	ErrOrientationOutOfRange = errors.New("heatload: orientation index out of range")

	// ErrRankOutOfRange indicates a percentile rank outside of (0, 1].
	ErrRankOutOfRange = errors.New("heatload: percentile rank out of range")

	// ErrGridGeometry is returned for malformed or mismatched raster grids.
	ErrGridGeometry = errors.New("heatload: invalid grid geometry")

	// ErrUnknownTreatment is returned when a treatment class label
	// cannot be parsed.
	ErrUnknownTreatment = errors.New("heatload: unknown treatment class")
)
