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

// Package heatload calculates the McCune and Keon (2002) heat load index
// from a digital elevation model and summarizes it over forest
// management polygons ("groups"). For each group it calculates zonal
// median terrain attributes, a bounding box orientation index, and heat
// load quartiles within its treatment class and among all groups.
package heatload

// Version gives the version number.
const Version = "0.1.0"
