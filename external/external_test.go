package external

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) <= tol
}

func assertClose(t *testing.T, label string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d values, want %d", label, len(got), len(want))
	}
	for i := range want {
		if !approxEqual(got[i], want[i], 1e-9) {
			t.Errorf("%s[%d] = %v, want %v", label, i, got[i], want[i])
		}
	}
}

func TestReplicateEstimatesMean(t *testing.T) {
	impData := [][][]float64{
		{
			{1.0, 4.0, 2.5, -1.0},
			{2.5, 1.75, 4.0, -2.5},
			{3.0, 3.0, 1.0, -3.5},
		},
		{
			{1.2, 4.0, 2.5, -1.0},
			{2.5, 1.75, 3.9, -2.5},
			{2.7, 3.0, 1.0, -3.5},
		},
		{
			{0.8, 4.0, 2.5, -1.0},
			{2.5, 1.75, 4.1, -2.5},
			{3.3, 3.0, 1.0, -3.5},
		},
	}
	wgt := []float64{1.0, 0.5, 1.5}
	repWgts := [][]float64{
		{0.0, 1.0, 1.0},
		{0.5, 0.0, 0.5},
		{1.5, 1.5, 0.0},
	}

	result, err := ReplicateEstimates(Mean, nil, impData, [][]float64{wgt}, [][][]float64{repWgts}, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.ParameterNames) != 4 {
		t.Fatalf("got %d parameter names, want 4", len(result.ParameterNames))
	}
	if result.ParameterNames[1] != "mean_x2" {
		t.Errorf("ParameterNames[1] = %q, want mean_x2", result.ParameterNames[1])
	}

	assertClose(t, "FinalEstimates", result.FinalEstimates, []float64{2.25, 3.125, 2.0, -2.5})
	assertClose(t, "SamplingVariances", result.SamplingVariances, []float64{1.000486111111111, 0.28265624999999994, 1.2229166666666667, 1.5625})
	assertClose(t, "ImputationVariances", result.ImputationVariances, []float64{0.0069444444444443955, 0.0, 0.0002777777777777758, 0.0})
	assertClose(t, "StandardErrors", result.StandardErrors, []float64{1.0048608711510119, 0.5316542579534184, 1.1060230725608924, 1.25})
}

func TestReplicateEstimatesLinregWithOptions(t *testing.T) {
	data := [][][]float64{
		{
			{1.0, 4.0},
			{2.5, 1.75},
			{3.0, 3.0},
		},
	}
	wgt := []float64{1.0, 0.5, 1.5}
	repWgts := [][]float64{
		{0.0, 1.0, 1.0},
		{0.5, 0.0, 0.5},
		{1.5, 1.5, 0.0},
	}

	options := map[string]string{"intercept": "false"}

	result, err := ReplicateEstimates(LinearRegression, options, data, [][]float64{wgt}, [][][]float64{repWgts}, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantNames := []string{"linreg_b_X1", "linreg_sigma", "linreg_R2", "linreg_beta_X1"}
	if len(result.ParameterNames) != len(wantNames) {
		t.Fatalf("got %d parameter names, want %d", len(result.ParameterNames), len(wantNames))
	}
	for i, name := range wantNames {
		if result.ParameterNames[i] != name {
			t.Errorf("ParameterNames[%d] = %q, want %q", i, result.ParameterNames[i], name)
		}
	}

	assertClose(t, "FinalEstimates", result.FinalEstimates, []float64{0.6344410876132931, 1.6022548311072888, -1.1064373692772485, 0.53516843619415233})
	assertClose(t, "ImputationVariances", result.ImputationVariances, []float64{0.0, 0.0, 0.0, 0.0})
	assertClose(t, "StandardErrors", result.StandardErrors, []float64{0.4983981196204999, 1.1609336342898504, 0.85450312343302826, 2.0876620405907396})
}

func TestReplicateEstimatesInvalidQuantileTypeIsFatal(t *testing.T) {
	data := [][][]float64{{{1.0}, {2.0}, {3.0}}}
	wgt := []float64{1.0, 1.0, 1.0}

	_, err := ReplicateEstimates(Quantiles, map[string]string{"quantile_type": "bogus"}, data, [][]float64{wgt}, nil, 1.0)
	if err == nil {
		t.Fatal("expected an error for an unrecognized quantile_type option")
	}
}
