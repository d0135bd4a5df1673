// Package estimate provides the pure estimator kernels: mean, covariance
// and correlation, weighted linear regression, quantiles, frequencies, and
// missingness tabulation. Every kernel has the shape (X, w) -> Estimates,
// which is the contract the replication engine (package replicate) fans
// out over imputations and replicate weights.
package estimate

import (
	"fmt"
	"math"

	"github.com/replicest/replicvar/rerrors"
	"gonum.org/v1/gonum/mat"
)

// Estimates is the result of one kernel evaluation: an ordered list of
// parameter names paired with their values. Names are stable for a given
// estimator configuration and input column count.
type Estimates struct {
	Names  []string
	Values []float64
}

// Func is the common shape every kernel and every Analysis-selected
// estimator closure implements. It must be safe to call concurrently from
// multiple goroutines (it may capture configuration but must not mutate it).
type Func func(x *mat.Dense, w []float64) (Estimates, error)

func checkValidity(x *mat.Dense, w []float64, name string) error {
	rows, _ := x.Dims()
	if rows != len(w) {
		return rerrors.NewNumericFailure(fmt.Sprintf("dimension mismatch of x and w in %s", name))
	}
	for _, v := range w {
		if math.IsNaN(v) {
			return rerrors.NewNumericFailure(fmt.Sprintf("w contains NaN in %s", name))
		}
	}
	return nil
}
