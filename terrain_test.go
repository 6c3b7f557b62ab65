package heatload

import (
	"errors"
	"math"
	"testing"
)

func TestSlopeAspect(t *testing.T) {
	for _, test := range []struct {
		name          string
		elev          func(x, y float64) float64
		slope, aspect float64
	}{
		{name: "rising east", elev: func(x, y float64) float64 { return 0.1 * x }, slope: math.Atan(0.1) * rad2deg, aspect: 270},
		{name: "rising west", elev: func(x, y float64) float64 { return -0.1 * x }, slope: math.Atan(0.1) * rad2deg, aspect: 90},
		{name: "rising north", elev: func(x, y float64) float64 { return 0.2 * y }, slope: math.Atan(0.2) * rad2deg, aspect: 180},
		{name: "rising south", elev: func(x, y float64) float64 { return -0.2 * y }, slope: math.Atan(0.2) * rad2deg, aspect: 0},
		{name: "rising northeast", elev: func(x, y float64) float64 { return 0.1*x + 0.1*y }, slope: math.Atan(math.Sqrt(0.02)) * rad2deg, aspect: 225},
		{name: "flat", elev: flat, slope: 0, aspect: FlatAspect},
	} {
		t.Run(test.name, func(t *testing.T) {
			g := testGrid(t, 5, 5, test.elev)
			slope, aspect, err := SlopeAspect(g)
			if err != nil {
				t.Fatal(err)
			}
			if !slope.SameGeometry(g) || !aspect.SameGeometry(g) {
				t.Fatal("outputs should have the same geometry as the input")
			}
			for r := 0; r < g.Ny; r++ {
				for c := 0; c < g.Nx; c++ {
					s, a := slope.Get(r, c), aspect.Get(r, c)
					if r == 0 || c == 0 || r == g.Ny-1 || c == g.Nx-1 {
						if !math.IsNaN(s) || !math.IsNaN(a) {
							t.Errorf("edge cell (%d, %d) should be missing but is %g, %g", r, c, s, a)
						}
						continue
					}
					if math.Abs(s-test.slope) > 1.e-9 {
						t.Errorf("cell (%d, %d) slope: have %g, want %g", r, c, s, test.slope)
					}
					if math.Abs(a-test.aspect) > 1.e-9 {
						t.Errorf("cell (%d, %d) aspect: have %g, want %g", r, c, a, test.aspect)
					}
				}
			}
		})
	}
}

func TestSlopeAspectMissingNeighbor(t *testing.T) {
	g := testGrid(t, 5, 5, func(x, y float64) float64 { return 0.1 * x })
	g.Set(math.NaN(), 2, 2)
	slope, aspect, err := SlopeAspect(g)
	if err != nil {
		t.Fatal(err)
	}
	for r := 1; r < 4; r++ {
		for c := 1; c < 4; c++ {
			if slope.Valid(r, c) || aspect.Valid(r, c) {
				t.Errorf("cell (%d, %d) neighbors a missing cell and should be missing", r, c)
			}
		}
	}
}

func TestSlopeAspectInvalid(t *testing.T) {
	if _, _, err := SlopeAspect(nil); !errors.Is(err, ErrGridGeometry) {
		t.Errorf("have %v, want %v", err, ErrGridGeometry)
	}
}

func TestNewTerrainFlat(t *testing.T) {
	g := testGrid(t, 6, 6, flat)
	tr, err := NewTerrain(g, ConstantLatitude(40))
	if err != nil {
		t.Fatal(err)
	}
	want := math.Exp(-1.236 + 1.350*math.Cos(40*deg2rad))
	for r := 1; r < 5; r++ {
		for c := 1; c < 5; c++ {
			if h := tr.HLI.Get(r, c); different(h, want, testTolerance) {
				t.Errorf("cell (%d, %d) HLI: have %g, want %g", r, c, h, want)
			}
			if f := tr.FoldedAspect.Get(r, c); f != FlatAspect {
				t.Errorf("cell (%d, %d) folded aspect: have %g, want %g", r, c, f, FlatAspect)
			}
			if l := tr.Latitude.Get(r, c); l != 40 {
				t.Errorf("cell (%d, %d) latitude: have %g, want 40", r, c, l)
			}
			if s := tr.Slope.Get(r, c); s != 0 {
				t.Errorf("cell (%d, %d) slope: have %g, want 0", r, c, s)
			}
		}
	}
	if tr.HLI.Valid(0, 0) {
		t.Error("edge cell should have missing HLI")
	}
}

// Zero is a valid value for every terrain variable.
func TestNewTerrainZeros(t *testing.T) {
	for _, test := range []struct {
		name             string
		elev             func(x, y float64) float64
		slope, aspect    float64
		folded, lat, hli float64
	}{
		{
			name:  "north facing at equator",
			elev:  func(x, y float64) float64 { return -0.1 * y },
			slope: math.Atan(0.1) * rad2deg, aspect: 0, folded: 0, lat: 0,
			// exp(-1.236 + 1.350*cos(slope)) > 1
			hli: 1,
		},
		{
			name:  "flat at equator",
			elev:  flat,
			slope: 0, aspect: FlatAspect, folded: FlatAspect, lat: 0,
			hli: 1,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			tr, err := NewTerrain(testGrid(t, 5, 5, test.elev), ConstantLatitude(0))
			if err != nil {
				t.Fatal(err)
			}
			for r := 1; r < 4; r++ {
				for c := 1; c < 4; c++ {
					for _, v := range []struct {
						name string
						g    *Grid
						want float64
					}{
						{"slope", tr.Slope, test.slope},
						{"aspect", tr.Aspect, test.aspect},
						{"folded aspect", tr.FoldedAspect, test.folded},
						{"latitude", tr.Latitude, test.lat},
						{"hli", tr.HLI, test.hli},
					} {
						if !v.g.Valid(r, c) {
							t.Errorf("cell (%d, %d) %s should be defined", r, c, v.name)
							continue
						}
						if have := v.g.Get(r, c); different(have, v.want, 1.e-9) {
							t.Errorf("cell (%d, %d) %s: have %g, want %g", r, c, v.name, have, v.want)
						}
					}
				}
			}
			if vals := tr.HLI.Values(); len(vals) != 9 {
				t.Errorf("have %d defined HLI values, want 9", len(vals))
			}
		})
	}
}

func TestCompassAspectWrap(t *testing.T) {
	// A gradient a hair west of due south rounds to 360 degrees.
	if a := compassAspect(1.e-300, -1); a != 0 {
		t.Errorf("have %g, want 0", a)
	}
	if a := compassAspect(0, -1); a != 0 {
		t.Errorf("have %g, want 0", a)
	}
	if a := compassAspect(0, 0); a != FlatAspect {
		t.Errorf("have %g, want %g", a, FlatAspect)
	}
}

func TestNewTerrainLatitudeError(t *testing.T) {
	g := testGrid(t, 6, 6, func(x, y float64) float64 { return 0.1 * x })
	lat := func(x, y float64) (float64, error) {
		if x > 30 {
			return math.NaN(), errors.New("out of range")
		}
		return 45, nil
	}
	tr, err := NewTerrain(g, lat)
	if err != nil {
		t.Fatal(err)
	}
	if !tr.HLI.Valid(2, 2) {
		t.Error("cell (2, 2) should have a defined HLI")
	}
	if tr.HLI.Valid(2, 3) || tr.Latitude.Valid(2, 3) {
		t.Error("cell (2, 3) latitude failed and should be missing")
	}
	if f := tr.FoldedAspect.Get(2, 2); math.Abs(f-90) > 1.e-9 {
		t.Errorf("folded aspect: have %g, want 90", f)
	}
}

func TestNewTerrainRequiresLatitude(t *testing.T) {
	if _, err := NewTerrain(testGrid(t, 3, 3, flat), nil); err == nil {
		t.Error("missing latitude function should cause an error")
	}
}
