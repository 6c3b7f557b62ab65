package heatloadutil

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/spatialmodel/heatload"
	"gonum.org/v1/plot/vg"
)

func TestDrawMap(t *testing.T) {
	dem := testDEM(t)
	b := new(bytes.Buffer)
	if err := DrawMap(b, dem, testCollection(), "elevation", 4*vg.Inch, 3*vg.Inch); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if r := img.Bounds(); r.Dx() <= r.Dy() {
		t.Errorf("image should be wider than it is tall: %v", r)
	}
}

func TestDrawMapMissing(t *testing.T) {
	g, err := heatload.NewGrid(2, 2, 0, 20, 10, 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := DrawMap(new(bytes.Buffer), g, nil, "empty", vg.Inch, vg.Inch); err == nil {
		t.Error("expected an error")
	}
}

func TestWriteSummary(t *testing.T) {
	c := testCollection()
	b := new(bytes.Buffer)
	WriteSummary(b, c)
	for _, s := range []string{"Openings", "Reserves", "All", "NA"} {
		if !bytes.Contains(b.Bytes(), []byte(s)) {
			t.Errorf("summary is missing %q:\n%s", s, b)
		}
	}
}
