package estimate

import (
	"fmt"

	"github.com/replicest/replicvar/internal/numeric"
	"gonum.org/v1/gonum/mat"
)

func weightedCountValues(x *mat.Dense, w []float64) []*numeric.OrderedCounts {
	rows, cols := x.Dims()
	counts := make([]*numeric.OrderedCounts, cols)
	for c := range counts {
		counts[c] = numeric.NewOrderedCounts()
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			counts[c].Push(x.At(r, c), w[r])
		}
	}
	return counts
}

// Frequencies reports, for every distinct non-NaN value observed in each
// column, its unweighted case count, its weighted count, and its share of
// that column's total weight.
func Frequencies(x *mat.Dense, w []float64) (Estimates, error) {
	if err := checkValidity(x, w, "frequencies"); err != nil {
		return Estimates{}, err
	}

	counts := weightedCountValues(x, w)

	var names []string
	var values []float64

	for c, column := range counts {
		for _, vc := range column.Counts() {
			names = append(names, fmt.Sprintf("ncases_x%d_%s", c+1, numeric.FormatValue(vc.Value)))
			values = append(values, vc.CaseCount)
			names = append(names, fmt.Sprintf("nweighted_x%d_%s", c+1, numeric.FormatValue(vc.Value)))
			values = append(values, vc.SummedWeight)
			names = append(names, fmt.Sprintf("perc_x%d_%s", c+1, numeric.FormatValue(vc.Value)))
			values = append(values, vc.SummedWeight/column.SumOfWeights())
		}
	}

	return Estimates{Names: names, Values: values}, nil
}
