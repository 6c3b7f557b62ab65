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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics of the groups in a treatment class.
type Summary struct {
	// Class is the treatment class name, or "All".
	Class string

	Groups    int
	TotalArea float64

	// WithHLI is the number of groups with a defined heat load index.
	WithHLI int

	HLIMean, HLIStdDev, HLIMedian, HLIMin, HLIMax Float

	Quartiles    map[Quartile]int
	Orientations map[OrientationClass]int

	// Issues is the number of groups with at least one issue.
	Issues int
}

// Summarize returns summary statistics for each treatment class present
// in c, followed by statistics for all groups.
func Summarize(c *Collection) []Summary {
	var o []Summary
	for _, t := range Treatments {
		gs := c.ByTreatment(t)
		if len(gs) == 0 {
			continue
		}
		o = append(o, summarize(t.String(), gs, func(g *Group) Quartile { return g.GroupQuartile }))
	}
	o = append(o, summarize("All", c.Groups, func(g *Group) Quartile { return g.OverallQuartile }))
	return o
}

func summarize(class string, groups []*Group, quartile func(*Group) Quartile) Summary {
	s := Summary{
		Class:        class,
		Groups:       len(groups),
		Quartiles:    make(map[Quartile]int),
		Orientations: make(map[OrientationClass]int),
	}
	var hli []float64
	for _, g := range groups {
		if v, ok := g.Topo.HLI.Get(); ok {
			hli = append(hli, v)
		}
		if !math.IsNaN(g.Area) {
			s.TotalArea += g.Area
		}
		s.Quartiles[quartile(g)]++
		s.Orientations[g.Orientation.Class]++
		if g.Issues != 0 {
			s.Issues++
		}
	}
	s.WithHLI = len(hli)
	if len(hli) == 0 {
		return s
	}
	s.HLIMean = Some(stat.Mean(hli, nil))
	if len(hli) > 1 {
		s.HLIStdDev = Some(stat.StdDev(hli, nil))
	}
	s.HLIMedian = Median(hli)
	s.HLIMin = Some(floats.Min(hli))
	s.HLIMax = Some(floats.Max(hli))
	return s
}
