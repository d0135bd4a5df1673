// Package prep implements the engine's only pre-processor: listwise delete.
package prep

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ListwiseDelete neutralizes, in place, every row of x that contains any
// NaN: that row of x is zeroed, its entry in w is set to 0, and its row in
// wrep is zeroed (if wrep carries any columns). Rows are never dropped —
// only zero-weighted — so row alignment is preserved across x, w, and wrep.
func ListwiseDelete(x *mat.Dense, w []float64, wrep *mat.Dense) {
	rows, cols := x.Dims()
	if rows != len(w) {
		panic("prep: x and w have different row counts in ListwiseDelete")
	}

	hasReplicateWeights := wrep != nil && wrep.RawMatrix().Cols > 0
	if hasReplicateWeights {
		wrepRows, _ := wrep.Dims()
		if wrepRows != rows {
			panic("prep: x and wrep have different row counts in ListwiseDelete")
		}
	}

	for r := 0; r < rows; r++ {
		missing := false
		for c := 0; c < cols; c++ {
			if math.IsNaN(x.At(r, c)) {
				missing = true
				break
			}
		}
		if !missing {
			continue
		}

		for c := 0; c < cols; c++ {
			x.Set(r, c, 0.0)
		}
		w[r] = 0.0

		if hasReplicateWeights {
			_, repCols := wrep.Dims()
			for c := 0; c < repCols; c++ {
				wrep.Set(r, c, 0.0)
			}
		}
	}
}
