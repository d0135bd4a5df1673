package estimate

import (
	"fmt"
	"math"

	"github.com/replicest/replicvar/rerrors"
	"gonum.org/v1/gonum/mat"
)

// Linreg fits a weighted linear regression with an intercept. Column 1 of x
// is the dependent variable; columns 2..p are predictors.
func Linreg(x *mat.Dense, w []float64) (Estimates, error) {
	return LinregWithOptions(x, w, true)
}

// LinregWithOptions fits a weighted linear regression, solving
// (P^T diag(w) P) beta = P^T diag(w) y via a QR factorization of the
// normal-equations matrix. P has an all-ones column prepended iff
// intercept is true. A regression with zero predictors and no intercept,
// or a non-invertible normal-equations system, is a fatal error.
func LinregWithOptions(x *mat.Dense, w []float64, intercept bool) (Estimates, error) {
	if err := checkValidity(x, w, "linreg"); err != nil {
		return Estimates{}, err
	}

	rows, cols := x.Dims()
	if cols == 1 && !intercept {
		return Estimates{}, rerrors.NewNumericFailure("linear regression missing a predictor")
	}

	predictorCols := cols - 1
	k := predictorCols
	if intercept {
		k++
	}
	if k == 0 {
		k = 1 // not reached: cols == 1 without an intercept returned above
	}

	pre := mat.NewDense(rows, k, nil)
	for r := 0; r < rows; r++ {
		col := 0
		if intercept {
			pre.Set(r, 0, 1.0)
			col = 1
		}
		for c := 1; c < cols; c++ {
			pre.Set(r, col, x.At(r, c))
			col++
		}
	}

	dep := make([]float64, rows)
	for r := 0; r < rows; r++ {
		dep[r] = x.At(r, 0)
	}

	preWeighted := mat.NewDense(rows, k, nil)
	depWeighted := mat.NewDense(rows, 1, nil)
	for r := 0; r < rows; r++ {
		depWeighted.Set(r, 0, dep[r]*w[r])
		for c := 0; c < k; c++ {
			preWeighted.Set(r, c, pre.At(r, c)*w[r])
		}
	}

	var ptwp, ptwy mat.Dense
	ptwp.Mul(pre.T(), preWeighted)
	ptwy.Mul(pre.T(), depWeighted)

	var qr mat.QR
	qr.Factorize(&ptwp)

	var coeffs mat.Dense
	if err := qr.SolveTo(&coeffs, false, &ptwy); err != nil {
		return Estimates{}, rerrors.NewNumericFailure("failed to solve linear regression: " + err.Error())
	}

	names := make([]string, 0, k+2+predictorCols)
	values := make([]float64, 0, k+2+predictorCols)

	if intercept {
		names = append(names, "linreg_b_intercept")
	}
	for xx := 1; xx <= predictorCols; xx++ {
		names = append(names, fmt.Sprintf("linreg_b_X%d", xx))
	}
	for i := 0; i < k; i++ {
		values = append(values, coeffs.At(i, 0))
	}

	sumOfWeights := 0.0
	for _, v := range w {
		sumOfWeights += v
	}

	sse := 0.0
	for r := 0; r < rows; r++ {
		var predicted float64
		for c := 0; c < k; c++ {
			predicted += pre.At(r, c) * coeffs.At(c, 0)
		}
		err := dep[r] - predicted
		sse += w[r] * err * err
	}
	sigma := math.Sqrt(sse / (sumOfWeights - float64(k)))

	var depMean float64
	for r := 0; r < rows; r++ {
		depMean += dep[r] * w[r]
	}
	depMean /= sumOfWeights

	sst := 0.0
	for r := 0; r < rows; r++ {
		d := dep[r] - depMean
		sst += w[r] * d * d
	}
	r2 := 1.0 - sse/sst

	names = append(names, "linreg_sigma")
	values = append(values, sigma)
	names = append(names, "linreg_R2")
	values = append(values, r2)

	means, err := Mean(x, w)
	if err != nil {
		return Estimates{}, err
	}
	xFullCentered := mat.NewDense(rows, cols, nil)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			xFullCentered.Set(r, c, x.At(r, c)-means.Values[c])
		}
	}
	xFullCenteredWeighted := mat.NewDense(rows, cols, nil)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			xFullCenteredWeighted.Set(r, c, xFullCentered.At(r, c)*w[r])
		}
	}
	var fullCovariance mat.Dense
	fullCovariance.Mul(xFullCentered.T(), xFullCenteredWeighted)

	stdDevs := make([]float64, cols)
	for c := 0; c < cols; c++ {
		stdDevs[c] = math.Sqrt(fullCovariance.At(c, c))
	}

	stdCoeffs := make([]float64, predictorCols)
	for xx := 1; xx <= predictorCols; xx++ {
		names = append(names, fmt.Sprintf("linreg_beta_X%d", xx))
	}
	if predictorCols > 0 {
		rawStart := 0
		if intercept {
			rawStart = 1
		}
		for i := 0; i < predictorCols; i++ {
			raw := coeffs.At(rawStart+i, 0)
			stdCoeffs[i] = raw * stdDevs[i+1] / stdDevs[0]
		}
	}
	values = append(values, stdCoeffs...)

	return Estimates{Names: names, Values: values}, nil
}
