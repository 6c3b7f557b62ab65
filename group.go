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
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// Treatment is the management class of a group.
type Treatment int

// Treatment classes.
const (
	TreatmentUnknown Treatment = iota
	Openings
	Reserves
)

// Treatments lists the known treatment classes in reporting order.
var Treatments = []Treatment{Openings, Reserves}

func (t Treatment) String() string {
	switch t {
	case Openings:
		return "Openings"
	case Reserves:
		return "Reserves"
	default:
		return "Unknown"
	}
}

// ParseTreatment parses a treatment class label, ignoring case and
// surrounding space.
func ParseTreatment(s string) (Treatment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openings":
		return Openings, nil
	case "reserves":
		return Reserves, nil
	default:
		return TreatmentUnknown, fmt.Errorf("%w: %q", ErrUnknownTreatment, s)
	}
}

// Issue is a set of problems found while processing a single group.
type Issue uint8

// Issues that may be recorded for a group.
const (
	// IssueNoCoverage means no raster cells with a defined heat load
	// index were found under the group.
	IssueNoCoverage Issue = 1 << iota
	// IssueDegenerateBounds means the group bounding box has zero extent.
	IssueDegenerateBounds
	// IssueInvalidGeometry means the group geometry is empty or has no area.
	IssueInvalidGeometry
	// IssueLatitude means the latitude of the group centroid could not be
	// calculated.
	IssueLatitude
)

var issueNames = []string{"NoCoverage", "DegenerateBounds", "InvalidGeometry", "Latitude"}

// Has returns whether all of the issues in o are present in i.
func (i Issue) Has(o Issue) bool { return i&o == o }

func (i Issue) String() string {
	var s []string
	for j, name := range issueNames {
		if i&(1<<uint(j)) != 0 {
			s = append(s, name)
		}
	}
	return strings.Join(s, "|")
}

// TopoAttributes are the zonal median terrain attributes of a group.
type TopoAttributes struct {
	SlopeDeg, SlopeRad               Float
	AspectDeg, AspectRad             Float
	FoldedAspectDeg, FoldedAspectRad Float
	LatitudeDeg, LatitudeRad         Float

	// HLI is the median of the cell heat load index values.
	HLI Float

	// Cells is the number of raster cells the medians were calculated from.
	Cells int
}

// OrientationAttributes describe the bounding box of a group.
type OrientationAttributes struct {
	XMin, XMax, YMin, YMax float64
	XLength, YLength       float64

	// LengthWidthRatio is YLength / XLength.
	LengthWidthRatio Float

	// Index is YLength / (XLength + YLength).
	Index Float
	Class OrientationClass
}

// Group is a forest management polygon.
type Group struct {
	ID        int
	Treatment Treatment
	Geom      geom.Polygonal

	// Area is calculated from Geom.
	Area float64

	Topo        TopoAttributes
	Orientation OrientationAttributes

	// GroupQuartile is the heat load quartile within the treatment class
	// and OverallQuartile is the quartile among all groups.
	GroupQuartile, OverallQuartile Quartile

	Issues Issue
}

// Collection is a set of groups sharing a coordinate reference system.
type Collection struct {
	// CRS is the textual (proj4 or WKT) coordinate reference system.
	CRS    string
	Groups []*Group
}

// SR parses the collection coordinate reference system.
func (c *Collection) SR() (*proj.SR, error) {
	if c.CRS == "" {
		return nil, fmt.Errorf("heatload: group collection has no spatial reference")
	}
	sr, err := proj.Parse(c.CRS)
	if err != nil {
		return nil, fmt.Errorf("heatload: parsing group spatial reference: %v", err)
	}
	return sr, nil
}

// clone returns a copy of c whose groups can be modified without
// affecting c. Geometries are shared.
func (c *Collection) clone() *Collection {
	o := &Collection{CRS: c.CRS, Groups: make([]*Group, len(c.Groups))}
	for i, g := range c.Groups {
		gg := *g
		o.Groups[i] = &gg
	}
	return o
}

// ByTreatment returns the groups in c with treatment t.
func (c *Collection) ByTreatment(t Treatment) []*Group {
	var o []*Group
	for _, g := range c.Groups {
		if g.Treatment == t {
			o = append(o, g)
		}
	}
	return o
}
