package estimate

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMean(t *testing.T) {
	x := mat.NewDense(3, 4, []float64{
		1.0, 4.0, 2.5, -1.0,
		2.5, 1.75, 4.0, -2.5,
		3.0, 3.0, 1.0, -3.5,
	})
	w := []float64{1.0, 0.5, 1.5}

	got, err := Mean(x, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Names) != 4 {
		t.Fatalf("got %d names, want 4", len(got.Names))
	}
	if got.Names[1] != "mean_x2" {
		t.Errorf("Names[1] = %q, want mean_x2", got.Names[1])
	}
	want := []float64{2.25, 3.125, 2.0, -2.5}
	for i, v := range want {
		if !approxEqual(got.Values[i], v, 1e-9) {
			t.Errorf("Values[%d] = %v, want %v", i, got.Values[i], v)
		}
	}
}

func TestMeanAllNaNColumnYieldsNaN(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{math.NaN(), math.NaN(), math.NaN()})
	w := []float64{1.0, 1.0, 1.0}

	got, err := Mean(x, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(got.Values[0]) {
		t.Errorf("Values[0] = %v, want NaN", got.Values[0])
	}
}

func TestMeanDimensionMismatchIsFatal(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{1, 2, 3})
	w := []float64{1.0, 1.0}

	_, err := Mean(x, w)
	if err == nil {
		t.Fatal("expected a numeric failure error for a dimension mismatch")
	}
}
