package heatload

import (
	"errors"
	"math"
	"testing"

	"github.com/ctessum/geom"
)

func TestClassifyOrientation(t *testing.T) {
	for _, test := range []struct {
		index float64
		class OrientationClass
		err   error
	}{
		{index: 0, class: MoreEW},
		{index: 0.39, class: MoreEW},
		{index: 0.4, class: Square},
		{index: 0.5, class: Square},
		{index: 0.6, class: Square},
		{index: 0.61, class: MoreNS},
		{index: 1, class: MoreNS},
		{index: -0.1, err: ErrOrientationOutOfRange},
		{index: 1.1, err: ErrOrientationOutOfRange},
		{index: math.NaN(), err: ErrOrientationOutOfRange},
	} {
		class, err := ClassifyOrientation(test.index)
		if !errors.Is(err, test.err) {
			t.Errorf("index %g: have error %v, want %v", test.index, err, test.err)
		}
		if class != test.class {
			t.Errorf("index %g: have class %v, want %v", test.index, class, test.class)
		}
	}
}

func TestOrient(t *testing.T) {
	ns, err := Orient(rect(0, 0, 100, 300))
	if err != nil {
		t.Fatal(err)
	}
	ew, err := Orient(rect(0, 0, 300, 100))
	if err != nil {
		t.Fatal(err)
	}
	sq, err := Orient(rect(10, 10, 60, 60))
	if err != nil {
		t.Fatal(err)
	}

	if ns.Index != Some(0.75) || ns.Class != MoreNS || ns.LengthWidthRatio != Some(3) {
		t.Errorf("north-south: %+v", ns)
	}
	if ew.Index != Some(0.25) || ew.Class != MoreEW {
		t.Errorf("east-west: %+v", ew)
	}
	if ns.Index.V+ew.Index.V != 1 {
		t.Errorf("swapping axes should give complementary indices: %g + %g", ns.Index.V, ew.Index.V)
	}
	if sq.Index != Some(0.5) || sq.Class != Square {
		t.Errorf("square: %+v", sq)
	}
	want := OrientationAttributes{XMin: 0, XMax: 100, YMin: 0, YMax: 300, XLength: 100, YLength: 300}
	if ns.XMin != want.XMin || ns.XMax != want.XMax || ns.YMin != want.YMin || ns.YMax != want.YMax ||
		ns.XLength != want.XLength || ns.YLength != want.YLength {
		t.Errorf("bounding box: have %+v, want %+v", ns, want)
	}
}

func TestOrientDegenerate(t *testing.T) {
	t.Run("point", func(t *testing.T) {
		p := geom.Polygon{{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}}}
		o, err := Orient(p)
		if !errors.Is(err, ErrDegenerateBounds) {
			t.Errorf("have error %v, want %v", err, ErrDegenerateBounds)
		}
		if o.Index.Valid || o.LengthWidthRatio.Valid || o.Class != OrientationUndefined {
			t.Errorf("index and class should be undefined: %+v", o)
		}
	})
	t.Run("vertical line", func(t *testing.T) {
		p := geom.Polygon{{{X: 5, Y: 0}, {X: 5, Y: 10}, {X: 5, Y: 0}}}
		o, err := Orient(p)
		if err != nil {
			t.Fatal(err)
		}
		if o.Index != Some(1) || o.Class != MoreNS || o.LengthWidthRatio.Valid {
			t.Errorf("%+v", o)
		}
	})
	t.Run("empty", func(t *testing.T) {
		if _, err := Orient(geom.Polygon{}); !errors.Is(err, ErrDegenerateBounds) {
			t.Errorf("have error %v, want %v", err, ErrDegenerateBounds)
		}
	})
}
