package estimate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Missings tabulates missingness per column (missing/valid case counts,
// weights, and percentages) and for the listwise-deleted sample (any column
// missing on that row).
func Missings(x *mat.Dense, w []float64) (Estimates, error) {
	if err := checkValidity(x, w, "missings"); err != nil {
		return Estimates{}, err
	}

	rows, cols := x.Dims()

	var sumOfWeights float64
	for _, v := range w {
		sumOfWeights += v
	}

	var names []string
	var values []float64

	for c := 0; c < cols; c++ {
		var missingCases float64
		var missingWeights float64
		for r := 0; r < rows; r++ {
			if math.IsNaN(x.At(r, c)) {
				missingCases++
				missingWeights += w[r]
			}
		}

		names = append(names, fmt.Sprintf("missingcases_x%d", c+1))
		values = append(values, missingCases)
		names = append(names, fmt.Sprintf("missingweights_x%d", c+1))
		values = append(values, missingWeights)
		names = append(names, fmt.Sprintf("percmissing_x%d", c+1))
		values = append(values, missingWeights/sumOfWeights)

		names = append(names, fmt.Sprintf("validcases_x%d", c+1))
		values = append(values, float64(rows)-missingCases)
		names = append(names, fmt.Sprintf("validweights_x%d", c+1))
		values = append(values, sumOfWeights-missingWeights)
		names = append(names, fmt.Sprintf("percvalid_x%d", c+1))
		values = append(values, (sumOfWeights-missingWeights)/sumOfWeights)
	}

	var missingCasesListwise float64
	var missingWeightsListwise float64
	for r := 0; r < rows; r++ {
		rowHasMissing := false
		for c := 0; c < cols; c++ {
			if math.IsNaN(x.At(r, c)) {
				rowHasMissing = true
				break
			}
		}
		if rowHasMissing {
			missingCasesListwise++
			missingWeightsListwise += w[r]
		}
	}

	names = append(names, "missingcases_listwise")
	values = append(values, missingCasesListwise)
	names = append(names, "missingweights_listwise")
	values = append(values, missingWeightsListwise)
	names = append(names, "percmissing_listwise")
	values = append(values, missingWeightsListwise/sumOfWeights)

	names = append(names, "validcases_listwise")
	values = append(values, float64(rows)-missingCasesListwise)
	names = append(names, "validweights_listwise")
	values = append(values, sumOfWeights-missingWeightsListwise)
	names = append(names, "percvalid_listwise")
	values = append(values, (sumOfWeights-missingWeightsListwise)/sumOfWeights)

	return Estimates{Names: names, Values: values}, nil
}
