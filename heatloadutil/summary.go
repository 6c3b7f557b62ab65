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

package heatloadutil

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spatialmodel/heatload"
)

// WriteSummary writes a table of summary statistics for each treatment
// class in groups to w.
func WriteSummary(w io.Writer, groups *heatload.Collection) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	header := table.Row{"Class", "Groups", "Area (ha)", "With HLI", "HLI mean", "HLI sd", "HLI median", "HLI min", "HLI max"}
	for _, q := range heatload.Quartiles {
		header = append(header, q.String())
	}
	header = append(header, "Issues")
	t.AppendHeader(header)
	for _, s := range heatload.Summarize(groups) {
		row := table.Row{
			s.Class,
			s.Groups,
			fmt.Sprintf("%.2f", s.TotalArea/10000),
			s.WithHLI,
			fmtFloat(s.HLIMean),
			fmtFloat(s.HLIStdDev),
			fmtFloat(s.HLIMedian),
			fmtFloat(s.HLIMin),
			fmtFloat(s.HLIMax),
		}
		for _, q := range heatload.Quartiles {
			row = append(row, s.Quartiles[q])
		}
		row = append(row, s.Issues)
		t.AppendRow(row)
	}
	t.Render()
}

func fmtFloat(f heatload.Float) string {
	if v, ok := f.Get(); ok {
		return fmt.Sprintf("%.4f", v)
	}
	return f.String()
}
