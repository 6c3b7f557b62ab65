package heatload

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestQuartileOf(t *testing.T) {
	for _, test := range []struct {
		rank float64
		q    Quartile
		err  error
	}{
		{rank: 0.1, q: Coolest},
		{rank: 0.25, q: Coolest},
		{rank: 0.2500001, q: MedCool},
		{rank: 0.5, q: MedCool},
		{rank: 0.75, q: MedWarm},
		{rank: 0.76, q: Warmest},
		{rank: 1, q: Warmest},
		{rank: 0, err: ErrRankOutOfRange},
		{rank: 1.01, err: ErrRankOutOfRange},
		{rank: math.NaN(), err: ErrRankOutOfRange},
	} {
		q, err := QuartileOf(test.rank)
		if !errors.Is(err, test.err) {
			t.Errorf("rank %g: have error %v, want %v", test.rank, err, test.err)
		}
		if q != test.q {
			t.Errorf("rank %g: have %v, want %v", test.rank, q, test.q)
		}
	}
}

func TestQuartileString(t *testing.T) {
	want := []string{"Coolest", "Med. Cool", "Med. Warm", "Warmest"}
	for i, q := range Quartiles {
		if q.String() != want[i] {
			t.Errorf("have %q, want %q", q.String(), want[i])
		}
	}
	if QuartileUndefined.String() != "" {
		t.Errorf("undefined quartile should have an empty label")
	}
}

func TestPercentRank(t *testing.T) {
	for _, test := range []struct {
		name       string
		vals, want []Float
	}{
		{
			name: "distinct",
			vals: []Float{Some(4), Some(1), Some(3), Some(2)},
			want: []Float{Some(1), Some(0.25), Some(0.75), Some(0.5)},
		},
		{
			name: "ties",
			vals: []Float{Some(5), Some(5), Some(5)},
			want: []Float{Some(1), Some(1), Some(1)},
		},
		{
			name: "partial ties",
			vals: []Float{Some(1), Some(2), Some(2), Some(3)},
			want: []Float{Some(0.25), Some(0.75), Some(0.75), Some(1)},
		},
		{
			name: "missing",
			vals: []Float{Missing, Some(2), Some(1)},
			want: []Float{Missing, Some(1), Some(0.5)},
		},
		{
			name: "all missing",
			vals: []Float{Missing, Missing},
			want: []Float{Missing, Missing},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			if have := PercentRank(test.vals); !reflect.DeepEqual(have, test.want) {
				t.Errorf("have %v, want %v", have, test.want)
			}
		})
	}
}

func TestClassifyQuartiles(t *testing.T) {
	var groups []*Group
	for i, h := range []float64{0.1, 0.2, 0.3, 0.4} {
		groups = append(groups, &Group{ID: i, Treatment: Openings, Topo: TopoAttributes{HLI: Some(h)}})
	}
	for i, h := range []float64{0.5, 0.6, 0.7, 0.8} {
		groups = append(groups, &Group{ID: i, Treatment: Reserves, Topo: TopoAttributes{HLI: Some(h)}})
	}
	groups = append(groups, &Group{ID: 4, Treatment: Reserves})

	if err := ClassifyQuartiles(groups); err != nil {
		t.Fatal(err)
	}
	wantGroup := []Quartile{
		Coolest, MedCool, MedWarm, Warmest,
		Coolest, MedCool, MedWarm, Warmest,
		QuartileUndefined,
	}
	wantOverall := []Quartile{
		Coolest, Coolest, MedCool, MedCool,
		MedWarm, MedWarm, Warmest, Warmest,
		QuartileUndefined,
	}
	for i, g := range groups {
		if g.GroupQuartile != wantGroup[i] {
			t.Errorf("%s %d group quartile: have %v, want %v", g.Treatment, g.ID, g.GroupQuartile, wantGroup[i])
		}
		if g.OverallQuartile != wantOverall[i] {
			t.Errorf("%s %d overall quartile: have %v, want %v", g.Treatment, g.ID, g.OverallQuartile, wantOverall[i])
		}
	}
}
