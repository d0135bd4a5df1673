package estimate

import (
	"fmt"
	"math"

	"github.com/replicest/replicvar/internal/numeric"
	"github.com/replicest/replicvar/rerrors"
	"gonum.org/v1/gonum/mat"
)

// Correlation computes covariance and correlation with pairwise-delete
// enabled (the common default for survey estimation).
func Correlation(x *mat.Dense, w []float64) (Estimates, error) {
	return CorrelationWithOptions(x, w, true)
}

// CorrelationWithOptions computes weighted covariance and correlation for
// every column pair i <= j. Centered values are computed per column; when
// pairwiseDelete is enabled, NaN centered values are zeroed together with
// their per-column weight shadow, so each column has its own effective
// weight sum. Each covariance entry is divided by the smaller of its two
// columns' effective weight sums minus one (without pairwise delete, every
// column's sum is the full weight sum). A singular standard-deviation
// diagonal (a column with zero variance) is a fatal error.
func CorrelationWithOptions(x *mat.Dense, w []float64, pairwiseDelete bool) (Estimates, error) {
	if err := checkValidity(x, w, "correlation"); err != nil {
		return Estimates{}, err
	}

	rows, cols := x.Dims()

	means, err := Mean(x, w)
	if err != nil {
		return Estimates{}, err
	}

	xCentered := mat.NewDense(rows, cols, nil)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			xCentered.Set(r, c, x.At(r, c)-means.Values[c])
		}
	}

	weightsByColumn := make([][]float64, cols)
	for c := 0; c < cols; c++ {
		weightsByColumn[c] = make([]float64, rows)
		copy(weightsByColumn[c], w)
	}

	if pairwiseDelete {
		for c := 0; c < cols; c++ {
			for r := 0; r < rows; r++ {
				if math.IsNaN(xCentered.At(r, c)) {
					xCentered.Set(r, c, 0.0)
					weightsByColumn[c][r] = 0.0
				}
			}
		}
	}

	weightsByColumnSum := make([]float64, cols)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			weightsByColumnSum[c] += weightsByColumn[c][r]
		}
	}

	xCenteredWeighted := mat.NewDense(rows, cols, nil)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			xCenteredWeighted.Set(r, c, xCentered.At(r, c)*w[r])
		}
	}

	var covariance mat.Dense
	covariance.Mul(xCentered.T(), xCenteredWeighted)
	for i := 0; i < cols; i++ {
		for j := 0; j < cols; j++ {
			denom := math.Min(weightsByColumnSum[i], weightsByColumnSum[j]) - 1.0
			covariance.Set(i, j, covariance.At(i, j)/denom)
		}
	}

	standardDeviations := make([]float64, cols)
	invStandardDeviations := make([]float64, cols)
	for i := 0; i < cols; i++ {
		standardDeviations[i] = math.Sqrt(covariance.At(i, i))
		if standardDeviations[i] == 0 {
			return Estimates{}, rerrors.NewNumericFailure("standard deviation matrix not invertible")
		}
		invStandardDeviations[i] = 1.0 / standardDeviations[i]
	}

	correlation := mat.NewDense(cols, cols, nil)
	for i := 0; i < cols; i++ {
		for j := 0; j < cols; j++ {
			correlation.Set(i, j, covariance.At(i, j)*invStandardDeviations[i]*invStandardDeviations[j])
		}
	}

	names := make([]string, 0, cols*(cols+1))
	namesCorrelation := make([]string, 0, cols*(cols+1)/2)
	for i := 1; i <= cols; i++ {
		for j := i; j <= cols; j++ {
			names = append(names, fmt.Sprintf("covariance_x%d_x%d", i, j))
			namesCorrelation = append(namesCorrelation, fmt.Sprintf("correlation_x%d_x%d", i, j))
		}
	}
	names = append(names, namesCorrelation...)

	values := append(numeric.LowerTriangle(&covariance), numeric.LowerTriangle(correlation)...)

	return Estimates{Names: names, Values: values}, nil
}
