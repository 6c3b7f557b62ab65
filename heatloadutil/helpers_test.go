package heatloadutil

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/heatload"
)

const testCRS = "+proj=lcc +lat_1=33.000000 +lat_2=45.000000 +lat_0=40.000000 +lon_0=-97.000000 +x_0=0 +y_0=0 +a=6370997.000000 +b=6370997.000000 +to_meter=1"

func rect(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{{X: x0, Y: y0}, {X: x0, Y: y1}, {X: x1, Y: y1}, {X: x1, Y: y0}, {X: x0, Y: y0}}}
}

// writeTestDEM writes a 20x20 ASCII grid of 10 m cells sloping down
// to the south-west, with its projection in a .prj file.
func writeTestDEM(t *testing.T, dir string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ncols 20\nnrows 20\nxllcorner 0\nyllcorner 0\ncellsize 10\nNODATA_value -9999\n")
	for row := 0; row < 20; row++ {
		for col := 0; col < 20; col++ {
			x, y := float64(col)*10+5, float64(19-row)*10+5
			fmt.Fprintf(&b, "%g ", 0.1*x+0.05*y)
		}
		b.WriteString("\n")
	}
	path := filepath.Join(dir, "dem.asc")
	if err := ioutil.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(filepath.Join(dir, "dem.prj"), []byte(testCRS), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testCollection() *heatload.Collection {
	return &heatload.Collection{
		CRS: testCRS,
		Groups: []*heatload.Group{
			{ID: 1, Treatment: heatload.Openings, Geom: rect(20, 20, 60, 140)},
			{ID: 2, Treatment: heatload.Openings, Geom: rect(80, 20, 180, 60)},
			{ID: 1, Treatment: heatload.Reserves, Geom: rect(100, 100, 150, 150)},
			{ID: 2, Treatment: heatload.Reserves, Geom: rect(30, 160, 70, 180)},
		},
	}
}

// writeTestGroups writes testCollection to a shapefile.
func writeTestGroups(t *testing.T, dir string) string {
	path := filepath.Join(dir, "groups.shp")
	if err := heatload.WriteGroupShapefile(path, testCollection()); err != nil {
		t.Fatal(err)
	}
	return path
}

func exists(t *testing.T, path string) {
	if _, err := os.Stat(path); err != nil {
		t.Errorf("%s: %v", path, err)
	}
}
