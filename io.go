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
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"os"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/spf13/cast"
)

// NoData is written to shapefile attributes in place of missing values.
const NoData = -9999.0

// ReadGroupShapefile reads groups from the polygon shapefile at path.
// idField and treatmentField are the names of the attribute columns
// holding the integer group identifier and the treatment class.
// The coordinate reference system is read from the .prj file
// alongside the shapefile, if there is one.
func ReadGroupShapefile(path, idField, treatmentField string) (*Collection, error) {
	fname := strings.TrimSuffix(path, ".shp")
	f, err := shp.NewDecoder(fname + ".shp")
	if err != nil {
		return nil, fmt.Errorf("heatload: opening group shapefile '%s': %v", fname, err)
	}
	defer f.Close()

	c := new(Collection)
	if b, err := ioutil.ReadFile(fname + ".prj"); err == nil {
		c.CRS = strings.TrimSpace(string(b))
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("heatload: reading group projection file: %v", err)
	}

	type key struct {
		t  Treatment
		id int
	}
	seen := make(map[key]bool)
	for row := 0; ; row++ {
		g, fields, more := f.DecodeRowFields(idField, treatmentField)
		if !more {
			break
		}
		if err := f.Error(); err != nil {
			break
		}
		id, err := parseGroupID(fields[idField])
		if err != nil {
			return nil, fmt.Errorf("heatload: group shapefile '%s' row %d: invalid %s: %v", fname, row, idField, err)
		}
		t, err := ParseTreatment(fields[treatmentField])
		if err != nil {
			return nil, fmt.Errorf("heatload: group shapefile '%s' row %d: %w", fname, row, err)
		}
		poly, ok := g.(geom.Polygonal)
		if !ok && g != nil {
			return nil, fmt.Errorf("heatload: group shapefile '%s' row %d: geometry type %T is not polygonal", fname, row, g)
		}
		k := key{t: t, id: id}
		if seen[k] {
			return nil, fmt.Errorf("heatload: group shapefile '%s': duplicate %s group %d", fname, t, k.id)
		}
		seen[k] = true
		c.Groups = append(c.Groups, &Group{ID: k.id, Treatment: t, Geom: poly})
	}
	if err := f.Error(); err != nil {
		return nil, fmt.Errorf("heatload: reading group shapefile '%s': %v", fname, err)
	}
	return c, nil
}

// parseGroupID parses an integer group identifier. Numeric attribute
// columns may be written with a decimal part, which must be zero.
func parseGroupID(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(v), nil
}

// shpFields are the attribute columns of the output shapefile.
var shpFields = []goshp.Field{
	goshp.NumberField("ID", 10),
	goshp.StringField("Treatment", 10),
	goshp.FloatField("AreaM2", 20, 6),
	goshp.FloatField("SlopeDeg", 20, 10),
	goshp.FloatField("SlopeRad", 20, 10),
	goshp.FloatField("AspectDeg", 20, 10),
	goshp.FloatField("AspectRad", 20, 10),
	goshp.FloatField("FoldAspDeg", 20, 10),
	goshp.FloatField("FoldAspRad", 20, 10),
	goshp.FloatField("LatDeg", 20, 10),
	goshp.FloatField("LatRad", 20, 10),
	goshp.FloatField("HLI", 20, 10),
	goshp.StringField("HLIGrpQrtl", 10),
	goshp.StringField("HLIAllQrtl", 10),
	goshp.FloatField("XMin", 20, 6),
	goshp.FloatField("XMax", 20, 6),
	goshp.FloatField("YMin", 20, 6),
	goshp.FloatField("YMax", 20, 6),
	goshp.FloatField("XLengthM", 20, 6),
	goshp.FloatField("YLengthM", 20, 6),
	goshp.FloatField("LWRatio", 20, 10),
	goshp.FloatField("NSOrientIx", 20, 10),
	goshp.StringField("OrientCls", 10),
	goshp.NumberField("Cells", 10),
	goshp.StringField("Issues", 50),
}

// WriteGroupShapefile writes c to a polygon shapefile at path, along with
// a .prj file holding its coordinate reference system. Missing values
// are written as NoData.
func WriteGroupShapefile(path string, c *Collection) error {
	fname := strings.TrimSuffix(path, ".shp")
	e, err := shp.NewEncoderFromFields(fname+".shp", goshp.POLYGON, shpFields...)
	if err != nil {
		return fmt.Errorf("heatload: creating group shapefile '%s': %v", fname, err)
	}
	for _, g := range c.Groups {
		t := g.Topo
		o := g.Orientation
		err := e.EncodeFields(flatten(g.Geom),
			g.ID, g.Treatment.String(), nd(Some(g.Area)),
			nd(t.SlopeDeg), nd(t.SlopeRad),
			nd(t.AspectDeg), nd(t.AspectRad),
			nd(t.FoldedAspectDeg), nd(t.FoldedAspectRad),
			nd(t.LatitudeDeg), nd(t.LatitudeRad),
			nd(t.HLI), g.GroupQuartile.String(), g.OverallQuartile.String(),
			o.XMin, o.XMax, o.YMin, o.YMax, o.XLength, o.YLength,
			nd(o.LengthWidthRatio), nd(o.Index), o.Class.String(),
			t.Cells, g.Issues.String(),
		)
		if err != nil {
			e.Close()
			return fmt.Errorf("heatload: writing group %d to shapefile: %v", g.ID, err)
		}
	}
	e.Close()
	if c.CRS != "" {
		if err := ioutil.WriteFile(fname+".prj", []byte(c.CRS), 0644); err != nil {
			return fmt.Errorf("heatload: writing group projection file: %v", err)
		}
	}
	return nil
}

func nd(f Float) float64 { return f.Or(NoData) }

// flatten returns the rings of g as a single polygon, which is how
// multi-part polygons are stored in shapefiles.
func flatten(g geom.Polygonal) geom.Polygon {
	if g == nil {
		return nil
	}
	if p, ok := g.(geom.Polygon); ok {
		return p
	}
	var o geom.Polygon
	for _, p := range g.Polygons() {
		o = append(o, p...)
	}
	return o
}

type geoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   *geojson.Geometry      `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type geoJSONFeatureCollection struct {
	Type     string            `json:"type"`
	Features []*geoJSONFeature `json:"features"`
}

// WriteGeoJSON writes c to w as a GeoJSON FeatureCollection.
// Missing values are written as null and undefined labels as empty strings.
func WriteGeoJSON(w io.Writer, c *Collection) error {
	fc := geoJSONFeatureCollection{Type: "FeatureCollection"}
	for _, g := range c.Groups {
		gj, err := toGeoJSON(g.Geom)
		if err != nil {
			return fmt.Errorf("heatload: encoding group %d geometry: %v", g.ID, err)
		}
		t := g.Topo
		o := g.Orientation
		fc.Features = append(fc.Features, &geoJSONFeature{
			Type:     "Feature",
			Geometry: gj,
			Properties: map[string]interface{}{
				"id":                            g.ID,
				"treatment":                     g.Treatment.String(),
				"area_m2":                       g.Area,
				"slope_deg":                     t.SlopeDeg.Interface(),
				"slope_rad":                     t.SlopeRad.Interface(),
				"aspect_deg":                    t.AspectDeg.Interface(),
				"aspect_rad":                    t.AspectRad.Interface(),
				"folded_aspect_deg":             t.FoldedAspectDeg.Interface(),
				"folded_aspect_rad":             t.FoldedAspectRad.Interface(),
				"latitude_deg":                  t.LatitudeDeg.Interface(),
				"latitude_rad":                  t.LatitudeRad.Interface(),
				"hli":                           t.HLI.Interface(),
				"hli_group_qrtl":                g.GroupQuartile.String(),
				"hli_overall_qrtl":              g.OverallQuartile.String(),
				"xmin":                          o.XMin,
				"xmax":                          o.XMax,
				"ymin":                          o.YMin,
				"ymax":                          o.YMax,
				"xlength_m":                     o.XLength,
				"ylength_m":                     o.YLength,
				"length_width_ratio":            o.LengthWidthRatio.Interface(),
				"north_south_orientation_index": o.Index.Interface(),
				"orientation_class":             o.Class.String(),
				"cells":                         t.Cells,
				"issues":                        g.Issues.String(),
			},
		})
	}
	enc := json.NewEncoder(w)
	return enc.Encode(fc)
}

func toGeoJSON(g geom.Polygonal) (*geojson.Geometry, error) {
	switch t := g.(type) {
	case nil:
		return nil, nil
	case geom.Polygon:
		return geojson.ToGeoJSON(t)
	default:
		coords := make([]interface{}, 0)
		for _, p := range g.Polygons() {
			pj, err := geojson.ToGeoJSON(p)
			if err != nil {
				return nil, err
			}
			coords = append(coords, pj.Coordinates)
		}
		return &geojson.Geometry{Type: "MultiPolygon", Coordinates: coords}, nil
	}
}
