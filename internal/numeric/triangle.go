// Package numeric holds the small, pure helpers the estimator kernels and
// the Analysis orchestrator share: symmetric-matrix serialization, group-key
// enumeration and partitioning, and an ordered weighted value counter.
package numeric

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LowerTriangle extracts the p(p+1)/2 values of a square p x p matrix in
// column-major order with row >= column, diagonal included. Used to
// serialize symmetric matrices (covariance, correlation) compactly.
func LowerTriangle(m *mat.Dense) []float64 {
	r, c := m.Dims()
	if r != c {
		panic(fmt.Sprintf("numeric: non-square matrix for LowerTriangle (%d x %d)", r, c))
	}

	out := make([]float64, 0, r*(r+1)/2)
	for col := 0; col < c; col++ {
		for row := col; row < r; row++ {
			out = append(out, m.At(row, col))
		}
	}
	return out
}
