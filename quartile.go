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

	"gonum.org/v1/gonum/stat"
)

// Quartile is a heat load quartile label.
type Quartile int

// Quartile labels, from coolest to warmest.
const (
	QuartileUndefined Quartile = iota
	Coolest
	MedCool
	MedWarm
	Warmest
)

// Quartiles lists the defined quartile labels in order.
var Quartiles = []Quartile{Coolest, MedCool, MedWarm, Warmest}

func (q Quartile) String() string {
	switch q {
	case Coolest:
		return "Coolest"
	case MedCool:
		return "Med. Cool"
	case MedWarm:
		return "Med. Warm"
	case Warmest:
		return "Warmest"
	default:
		return ""
	}
}

// PercentRank returns, for each valid value, the fraction of valid values
// that are less than or equal to it. Tied values share the highest rank
// of the tie. Missing values have missing ranks.
func PercentRank(vals []Float) []Float {
	sorted := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v.Valid {
			sorted = append(sorted, v.V)
		}
	}
	sort.Float64s(sorted)
	o := make([]Float, len(vals))
	for i, v := range vals {
		if v.Valid {
			o[i] = Some(stat.CDF(v.V, stat.Empirical, sorted, nil))
		}
	}
	return o
}

// QuartileOf returns the quartile of a percent rank, where each quartile
// includes its upper bound. It returns ErrRankOutOfRange if rank is not
// in (0, 1].
func QuartileOf(rank float64) (Quartile, error) {
	switch {
	case math.IsNaN(rank) || rank <= 0 || rank > 1:
		return QuartileUndefined, fmt.Errorf("%w: %g", ErrRankOutOfRange, rank)
	case rank <= 0.25:
		return Coolest, nil
	case rank <= 0.5:
		return MedCool, nil
	case rank <= 0.75:
		return MedWarm, nil
	default:
		return Warmest, nil
	}
}

// ClassifyQuartiles sets the GroupQuartile of each group by ranking its
// heat load index among groups with the same treatment, and the
// OverallQuartile by ranking it among all groups. Groups with a
// missing heat load index are left undefined.
func ClassifyQuartiles(groups []*Group) error {
	byTreatment := make(map[Treatment][]*Group)
	for _, g := range groups {
		byTreatment[g.Treatment] = append(byTreatment[g.Treatment], g)
	}
	for _, gs := range byTreatment {
		if err := assignQuartiles(gs, func(g *Group, q Quartile) { g.GroupQuartile = q }); err != nil {
			return err
		}
	}
	return assignQuartiles(groups, func(g *Group, q Quartile) { g.OverallQuartile = q })
}

func assignQuartiles(groups []*Group, set func(*Group, Quartile)) error {
	hli := make([]Float, len(groups))
	for i, g := range groups {
		hli[i] = g.Topo.HLI
	}
	for i, r := range PercentRank(hli) {
		if !r.Valid {
			set(groups[i], QuartileUndefined)
			continue
		}
		q, err := QuartileOf(r.V)
		if err != nil {
			return fmt.Errorf("heatload: group %d: %w", groups[i].ID, err)
		}
		set(groups[i], q)
	}
	return nil
}
