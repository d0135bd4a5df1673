package estimate

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestFrequencies(t *testing.T) {
	x := mat.NewDense(10, 2, []float64{
		1.0, 4.0,
		2.0, 1.75,
		3.0, 3.0,
		1.0, 4.0,
		2.0, 1.75,
		3.0, 3.0,
		1.0, 4.0,
		2.0, 1.75,
		3.0, 3.0,
		3.0, 3.0,
	})
	w := []float64{1.0, 0.5, 1.5, 1.0, 0.5, 1.5, 1.0, 0.5, 1.5, 1.0}

	got, err := Frequencies(x, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Names) != 18 {
		t.Fatalf("got %d names, want 18", len(got.Names))
	}
	checks := map[int]string{
		0:  "ncases_x1_1",
		4:  "nweighted_x1_2",
		8:  "perc_x1_3",
		9:  "ncases_x2_1.75",
		13: "nweighted_x2_3",
		17: "perc_x2_4",
	}
	for i, name := range checks {
		if got.Names[i] != name {
			t.Errorf("Names[%d] = %q, want %q", i, got.Names[i], name)
		}
	}
	want := []float64{3.0, 3.0, 0.3, 3.0, 1.5, 0.15, 4.0, 5.5, 0.55, 3.0, 1.5, 0.15, 4.0, 5.5, 0.55, 3.0, 3.0, 0.3}
	for i, v := range want {
		if !approxEqual(got.Values[i], v, 1e-9) {
			t.Errorf("Values[%d] = %v, want %v", i, got.Values[i], v)
		}
	}
}

func TestFrequenciesDimensionMismatchIsFatal(t *testing.T) {
	x := mat.NewDense(2, 3, []float64{
		1.0, 4.0, 2.5,
		2.5, 1.75, 4.0,
	})
	w := []float64{1.0, 0.5, 1.5}

	_, err := Frequencies(x, w)
	if err == nil {
		t.Fatal("expected a numeric failure error for a dimension mismatch")
	}
}
