package heatload

import (
	"math"
	"testing"

	"github.com/ctessum/geom"
)

// testCRS is a Lambert conformal conic projection with its origin at
// 40°N, 97°W on a sphere.
const testCRS = "+proj=lcc +lat_1=33.000000 +lat_2=45.000000 +lat_0=40.000000 +lon_0=-97.000000 +x_0=0 +y_0=0 +a=6370997.000000 +b=6370997.000000 +to_meter=1"

const testTolerance = 1.e-9

func different(a, b, tolerance float64) bool {
	if a == b {
		return false
	}
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

// testGrid returns an nx by ny grid of 10 m cells whose south-west corner
// is at the origin, with values given by f at each cell center.
func testGrid(t *testing.T, nx, ny int, f func(x, y float64) float64) *Grid {
	g, err := NewGrid(nx, ny, 0, float64(ny)*10, 10, 10, testCRS)
	if err != nil {
		t.Fatal(err)
	}
	for r := 0; r < ny; r++ {
		for c := 0; c < nx; c++ {
			p := g.CellCenter(r, c)
			g.Set(f(p.X, p.Y), r, c)
		}
	}
	return g
}

func flat(_, _ float64) float64 { return 100 }

func rect(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
		{X: x0, Y: y0},
	}}
}
