package estimate

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func namedValue(e Estimates, name string) (float64, bool) {
	for i, n := range e.Names {
		if n == name {
			return e.Values[i], true
		}
	}
	return 0, false
}

func TestLinregExactLine(t *testing.T) {
	// y = 2 + 3*x1, no noise: an exact fit with sigma == 0, R2 == 1.
	x := mat.NewDense(5, 2, []float64{
		2, 1,
		5, 2,
		8, 3,
		11, 4,
		14, 5,
	})
	w := []float64{1, 1, 1, 1, 1}

	got, err := LinregWithOptions(x, w, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	intercept, ok := namedValue(got, "linreg_b_intercept")
	if !ok {
		t.Fatal("missing linreg_b_intercept")
	}
	slope, ok := namedValue(got, "linreg_b_X1")
	if !ok {
		t.Fatal("missing linreg_b_X1")
	}
	if !approxEqual(intercept, 2.0, 1e-9) {
		t.Errorf("intercept = %v, want 2", intercept)
	}
	if !approxEqual(slope, 3.0, 1e-9) {
		t.Errorf("slope = %v, want 3", slope)
	}

	r2, ok := namedValue(got, "linreg_R2")
	if !ok {
		t.Fatal("missing linreg_R2")
	}
	if !approxEqual(r2, 1.0, 1e-6) {
		t.Errorf("R2 = %v, want 1", r2)
	}

	sigma, ok := namedValue(got, "linreg_sigma")
	if !ok {
		t.Fatal("missing linreg_sigma")
	}
	if sigma > 1e-6 {
		t.Errorf("sigma = %v, want ~0 for a noiseless exact fit", sigma)
	}
}

func TestLinregWithoutIntercept(t *testing.T) {
	x := mat.NewDense(5, 2, []float64{
		2, 1,
		4, 2,
		6, 3,
		8, 4,
		10, 5,
	})
	w := []float64{1, 1, 1, 1, 1}

	got, err := LinregWithOptions(x, w, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := namedValue(got, "linreg_b_intercept"); ok {
		t.Error("linreg_b_intercept should not be reported when intercept is disabled")
	}
	slope, ok := namedValue(got, "linreg_b_X1")
	if !ok {
		t.Fatal("missing linreg_b_X1")
	}
	if !approxEqual(slope, 2.0, 1e-9) {
		t.Errorf("slope = %v, want 2", slope)
	}
}

func TestLinregZeroPredictorsWithoutInterceptIsFatal(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{1, 2, 3})
	w := []float64{1, 1, 1}

	_, err := LinregWithOptions(x, w, false)
	if err == nil {
		t.Fatal("expected a numeric failure error for a regression with no predictors and no intercept")
	}
}

func TestLinregInterceptOnly(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	w := []float64{1, 1, 1, 1}

	got, err := LinregWithOptions(x, w, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	intercept, ok := namedValue(got, "linreg_b_intercept")
	if !ok {
		t.Fatal("missing linreg_b_intercept")
	}
	if !approxEqual(intercept, 2.5, 1e-9) {
		t.Errorf("intercept = %v, want 2.5 (the weighted mean of y)", intercept)
	}
}

func TestLinregWithNaNPropagates(t *testing.T) {
	x := mat.NewDense(5, 2, []float64{
		2, 1,
		5, 2,
		math.NaN(), 3,
		11, 4,
		14, 5,
	})
	w := []float64{1, 1, 1, 1, 1}

	got, err := LinregWithOptions(x, w, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range got.Values {
		if !math.IsNaN(v) {
			t.Errorf("%s = %v, want NaN propagated from the missing cell", got.Names[i], v)
		}
	}
}

func TestLinregStandardizedBetaReflectsScale(t *testing.T) {
	x := mat.NewDense(6, 2, []float64{
		3, 10,
		6, 8,
		9, 14,
		4, 2,
		7, 6,
		5, 12,
	})
	w := []float64{1, 1, 1, 1, 1, 1}

	got, err := LinregWithOptions(x, w, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	beta, ok := namedValue(got, "linreg_beta_X1")
	if !ok {
		t.Fatal("missing linreg_beta_X1")
	}
	if math.IsNaN(beta) {
		t.Error("standardized beta should not be NaN for this well-conditioned input")
	}
	// slope = 29/140 and sd(x)/sd(y) = 2, so beta = 29/70.
	if !approxEqual(beta, 29.0/70.0, 1e-9) {
		t.Errorf("linreg_beta_X1 = %v, want 29/70 (slope times sd(x)/sd(y))", beta)
	}
}
