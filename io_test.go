package heatload

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
)

func enrichedGroups(t *testing.T) *Collection {
	groups := testGroups()
	groups.Groups = append(groups.Groups, &Group{ID: 3, Treatment: Reserves, Geom: rect(5000, 5000, 5100, 5100)})
	out, err := testPipeline().Run(context.Background(), testGrid(t, 20, 20, func(x, y float64) float64 {
		return 0.1*x + 0.05*y
	}), groups)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestGroupShapefile(t *testing.T) {
	c := enrichedGroups(t)
	path := filepath.Join(t.TempDir(), "groups.shp")
	if err := WriteGroupShapefile(path, c); err != nil {
		t.Fatal(err)
	}
	c2, err := ReadGroupShapefile(path, "ID", "Treatment")
	if err != nil {
		t.Fatal(err)
	}
	if c2.CRS != testCRS {
		t.Errorf("CRS: have %q, want %q", c2.CRS, testCRS)
	}
	if len(c2.Groups) != len(c.Groups) {
		t.Fatalf("have %d groups, want %d", len(c2.Groups), len(c.Groups))
	}
	for i, g := range c.Groups {
		g2 := c2.Groups[i]
		if g2.ID != g.ID || g2.Treatment != g.Treatment {
			t.Errorf("group %d: have %s %d, want %s %d", i, g2.Treatment, g2.ID, g.Treatment, g.ID)
		}
		b, b2 := g.Geom.Bounds(), g2.Geom.Bounds()
		if different(b.Min.X, b2.Min.X, testTolerance) || different(b.Min.Y, b2.Min.Y, testTolerance) ||
			different(b.Max.X, b2.Max.X, testTolerance) || different(b.Max.Y, b2.Max.Y, testTolerance) {
			t.Errorf("group %d: bounds %+v, want %+v", i, g2.Geom.Bounds(), g.Geom.Bounds())
		}
	}
}

func TestReadGroupShapefileInvalidTreatment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.shp")
	c := &Collection{CRS: testCRS, Groups: []*Group{{ID: 1, Geom: rect(0, 0, 1, 1)}}}
	if err := WriteGroupShapefile(path, c); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadGroupShapefile(path, "ID", "Treatment"); err == nil {
		t.Error("unknown treatment should cause an error")
	}
}

func TestParseGroupID(t *testing.T) {
	for _, test := range []struct {
		in   string
		id   int
		fail bool
	}{
		{in: "7", id: 7},
		{in: " 12 ", id: 12},
		{in: "3.000", id: 3},
		{in: "-2", id: -2},
		{in: "1.7", fail: true},
		{in: "", fail: true},
		{in: "abc", fail: true},
		{in: "NaN", fail: true},
		{in: "1e20", fail: true},
	} {
		id, err := parseGroupID(test.in)
		if test.fail {
			if err == nil {
				t.Errorf("%q: expected an error but got %d", test.in, id)
			}
			continue
		}
		if err != nil || id != test.id {
			t.Errorf("%q: have %d, %v; want %d", test.in, id, err, test.id)
		}
	}
}

func TestWriteGeoJSON(t *testing.T) {
	c := enrichedGroups(t)
	c.Groups[0].Geom = geom.MultiPolygon{rect(20, 20, 60, 140), rect(70, 20, 75, 25)}
	b := new(bytes.Buffer)
	if err := WriteGeoJSON(b, c); err != nil {
		t.Fatal(err)
	}
	var fc struct {
		Type     string
		Features []struct {
			Geometry struct {
				Type string
			}
			Properties map[string]interface{}
		}
	}
	if err := json.Unmarshal(b.Bytes(), &fc); err != nil {
		t.Fatal(err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != len(c.Groups) {
		t.Fatalf("have %s with %d features", fc.Type, len(fc.Features))
	}
	if typ := fc.Features[0].Geometry.Type; typ != "MultiPolygon" {
		t.Errorf("geometry type: have %s, want MultiPolygon", typ)
	}
	if typ := fc.Features[1].Geometry.Type; typ != "Polygon" {
		t.Errorf("geometry type: have %s, want Polygon", typ)
	}
	p := fc.Features[1].Properties
	if h, ok := p["hli"].(float64); !ok || h != c.Groups[1].Topo.HLI.V {
		t.Errorf("hli: have %v, want %v", p["hli"], c.Groups[1].Topo.HLI)
	}
	if q := p["hli_overall_qrtl"]; q != c.Groups[1].OverallQuartile.String() {
		t.Errorf("hli_overall_qrtl: have %v, want %v", q, c.Groups[1].OverallQuartile)
	}
	outside := fc.Features[4].Properties
	if v, ok := outside["hli"]; !ok || v != nil {
		t.Errorf("missing hli should be null but is %v", v)
	}
	if v := outside["hli_group_qrtl"]; v != "" {
		t.Errorf("undefined quartile should be empty but is %v", v)
	}
}

func TestASCIIGrid(t *testing.T) {
	const asc = `ncols 3
nrows 2
xllcenter 105
yllcenter 205
cellsize 10
NODATA_value -9999
1 2 3
4 -9999 6
`
	g, err := ReadASCIIGrid(bytes.NewBufferString(asc), testCRS)
	if err != nil {
		t.Fatal(err)
	}
	if g.Nx != 3 || g.Ny != 2 || g.X0 != 100 || g.Y0 != 220 || g.Dx != 10 || g.Dy != 10 {
		t.Errorf("geometry: %+v", g)
	}
	if g.Get(0, 2) != 3 || g.Get(1, 0) != 4 || g.Valid(1, 1) {
		t.Errorf("values: %v", g.Data.Elements)
	}
	if p := g.CellCenter(1, 0); p.X != 105 || p.Y != 205 {
		t.Errorf("south-west cell center: %+v", p)
	}

	b := new(bytes.Buffer)
	if err := WriteASCIIGrid(b, g); err != nil {
		t.Fatal(err)
	}
	g2, err := ReadASCIIGrid(b, testCRS)
	if err != nil {
		t.Fatal(err)
	}
	if !g2.SameGeometry(g) {
		t.Errorf("round trip geometry: %+v", g2)
	}
	for i, v := range g.Data.Elements {
		v2 := g2.Data.Elements[i]
		if v != v2 && !(v != v && v2 != v2) {
			t.Errorf("value %d: have %g, want %g", i, v2, v)
		}
	}
}

func TestASCIIGridErrors(t *testing.T) {
	for name, asc := range map[string]string{
		"missing header": "ncols 2\nnrows 1\n1 2\n",
		"too few values": "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n",
		"too many":       "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2\n",
		"bad value":      "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\nx\n",
	} {
		if _, err := ReadASCIIGrid(bytes.NewBufferString(asc), ""); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestShapefilePrj(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "groups.shp")
	c := &Collection{CRS: testCRS, Groups: []*Group{{ID: 1, Treatment: Openings, Geom: rect(0, 0, 1, 1)}}}
	if err := WriteGroupShapefile(path, c); err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(filepath.Join(dir, "groups.prj"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != testCRS {
		t.Errorf("projection file: %s", b)
	}
}
