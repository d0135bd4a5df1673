package estimate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Mean computes, for each column of x, the weighted sum of its non-NaN
// values divided by the sum of weights over those same non-NaN rows. An
// all-NaN column yields NaN.
func Mean(x *mat.Dense, w []float64) (Estimates, error) {
	if err := checkValidity(x, w, "mean"); err != nil {
		return Estimates{}, err
	}

	rows, cols := x.Dims()
	names := make([]string, cols)
	values := make([]float64, cols)

	for c := 0; c < cols; c++ {
		names[c] = fmt.Sprintf("mean_x%d", c+1)

		var weightedSum, sumOfWeights float64
		for r := 0; r < rows; r++ {
			v := x.At(r, c)
			if math.IsNaN(v) {
				continue
			}
			weightedSum += v * w[r]
			sumOfWeights += w[r]
		}
		values[c] = weightedSum / sumOfWeights
	}

	return Estimates{Names: names, Values: values}, nil
}
