package hash

import (
	"math"
	"testing"
)

type inputs struct {
	Name   string
	Values []float64
}

func TestHash(t *testing.T) {
	a := Hash(inputs{Name: "dem", Values: []float64{1, 2, math.NaN()}})
	b := Hash(inputs{Name: "dem", Values: []float64{1, 2, math.NaN()}})
	c := Hash(inputs{Name: "dem", Values: []float64{1, 2, 3}})
	if a != b {
		t.Errorf("identical inputs have different hashes: %s, %s", a, b)
	}
	if a == c {
		t.Errorf("different inputs have the same hash %s", a)
	}
	if len(a) != 32 {
		t.Errorf("hash %s should have 32 hex digits", a)
	}
}

func TestHashUnencodable(t *testing.T) {
	f := func() {}
	if Hash(f) != Hash(f) {
		t.Error("hash should be deterministic")
	}
	if Hash(struct{ F func() }{}) == "" {
		t.Error("hash should not be empty")
	}
}
