package heatload

import (
	"errors"
	"math"
	"testing"
)

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name           string
		nx, ny         int
		x0, y0, dx, dy float64
		crs            string
		err            bool
	}{
		{name: "ok", nx: 2, ny: 3, dx: 1, dy: 1, crs: testCRS},
		{name: "no crs", nx: 2, ny: 3, dx: 1, dy: 1},
		{name: "zero cols", nx: 0, ny: 3, dx: 1, dy: 1, err: true},
		{name: "negative cell", nx: 2, ny: 3, dx: -1, dy: 1, err: true},
		{name: "NaN cell", nx: 2, ny: 3, dx: 1, dy: math.NaN(), err: true},
		{name: "infinite origin", nx: 2, ny: 3, x0: math.Inf(1), dx: 1, dy: 1, err: true},
		{name: "bad crs", nx: 2, ny: 3, dx: 1, dy: 1, crs: "+proj=nonsense", err: true},
		{name: "geographic crs", nx: 2, ny: 3, dx: 1, dy: 1, crs: DefaultGeographicCRS},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g, err := NewGrid(test.nx, test.ny, test.x0, test.y0, test.dx, test.dy, test.crs)
			if test.err {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(g.Values()) != 0 {
				t.Errorf("new grid should be all missing but has %v", g.Values())
			}
			if (test.crs != "") != (g.SR() != nil) {
				t.Errorf("spatial reference: %v", g.SR())
			}
		})
	}
	if _, err := NewGrid(0, 1, 0, 0, 1, 1, ""); !errors.Is(err, ErrGridGeometry) {
		t.Errorf("have error %v, want %v", err, ErrGridGeometry)
	}
}

func TestGridGeometry(t *testing.T) {
	g, err := NewGrid(4, 3, 100, 500, 10, 20, "")
	if err != nil {
		t.Fatal(err)
	}
	if p := g.CellCenter(0, 0); p.X != 105 || p.Y != 490 {
		t.Errorf("north-west cell center: %+v", p)
	}
	if p := g.CellCenter(2, 3); p.X != 135 || p.Y != 450 {
		t.Errorf("south-east cell center: %+v", p)
	}
	b := g.Bounds()
	if b.Min.X != 100 || b.Min.Y != 440 || b.Max.X != 140 || b.Max.Y != 500 {
		t.Errorf("bounds: %+v", b)
	}
	cb := g.CellBounds(1, 2)
	if cb.Min.X != 120 || cb.Min.Y != 460 || cb.Max.X != 130 || cb.Max.Y != 480 {
		t.Errorf("cell bounds: %+v", cb)
	}
	if a := g.CellPolygon(1, 2).Area(); a != 200 {
		t.Errorf("cell area: %g", a)
	}
	for _, test := range []struct {
		x, y     float64
		row, col int
		ok       bool
	}{
		{x: 105, y: 490, row: 0, col: 0, ok: true},
		{x: 139, y: 441, row: 2, col: 3, ok: true},
		{x: 125, y: 470, row: 1, col: 2, ok: true},
		{x: 99, y: 470, ok: false},
		{x: 125, y: 501, ok: false},
		{x: 140, y: 470, ok: false},
	} {
		row, col, ok := g.Index(test.x, test.y)
		if ok != test.ok || (ok && (row != test.row || col != test.col)) {
			t.Errorf("Index(%g, %g) = %d, %d, %v; want %d, %d, %v",
				test.x, test.y, row, col, ok, test.row, test.col, test.ok)
		}
	}
}

func TestGridLike(t *testing.T) {
	g := testGrid(t, 3, 3, flat)
	l := g.Like()
	if !l.SameGeometry(g) {
		t.Error("geometry should match")
	}
	if len(l.Values()) != 0 {
		t.Error("values should be missing")
	}
	l.Set(1, 0, 0)
	if g.Get(0, 0) == 1 {
		t.Error("grids should not share data")
	}
}

func TestGridSetZero(t *testing.T) {
	g := testGrid(t, 3, 2, flat).Like()
	g.Set(0, 1, 2)
	if !g.Valid(1, 2) || g.Get(1, 2) != 0 {
		t.Errorf("cell (1, 2): have %g, want 0", g.Get(1, 2))
	}
	if g.Valid(0, 0) {
		t.Error("unset cell should be missing")
	}
	g.Set(5, 1, 2)
	g.Set(0, 1, 2)
	if g.Get(1, 2) != 0 {
		t.Errorf("overwritten cell: have %g, want 0", g.Get(1, 2))
	}
}
