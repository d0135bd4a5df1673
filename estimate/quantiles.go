package estimate

import (
	"fmt"
	"math"
	"sort"

	"github.com/replicest/replicvar/internal/numeric"
	"github.com/replicest/replicvar/rerrors"
	"gonum.org/v1/gonum/mat"
)

// QuantileType selects how a quantile landing between two distinct values
// is resolved.
type QuantileType int

// epsilon matches the machine epsilon used to guard the interpolation
// denominator against division by zero when two adjacent distinct values
// carry the same cumulative weight share.
const epsilon = 2.220446049250313e-16

const (
	// QuantileLower reports the next-lower distinct value.
	QuantileLower QuantileType = iota
	// QuantileInterpolation linearly interpolates between the two
	// surrounding distinct values by cumulative weight share. This is the
	// default.
	QuantileInterpolation
	// QuantileUpper reports the value whose cumulative weight first
	// exceeds the requested quantile.
	QuantileUpper
)

// Quantiles computes the 25th, 50th, and 75th weighted percentiles of every
// column, using linear interpolation between distinct values.
func Quantiles(x *mat.Dense, w []float64) (Estimates, error) {
	return QuantilesWithOptions(x, w, []float64{0.25, 0.50, 0.75}, QuantileInterpolation)
}

// QuantilesWithOptions computes the requested weighted quantiles of every
// column of x. quantiles must be non-empty and free of NaN. For each column,
// distinct non-NaN values are walked in ascending order accumulating
// weight; a requested quantile is resolved against the two distinct values
// whose cumulative weight share brackets it, per quantileType.
func QuantilesWithOptions(x *mat.Dense, w []float64, quantiles []float64, quantileType QuantileType) (Estimates, error) {
	if err := checkValidity(x, w, "quantiles"); err != nil {
		return Estimates{}, err
	}
	if len(quantiles) == 0 {
		return Estimates{}, rerrors.NewNumericFailure("quantiles are empty")
	}
	for _, q := range quantiles {
		if math.IsNaN(q) {
			return Estimates{}, rerrors.NewNumericFailure("quantiles contain NaNs")
		}
	}

	counts := weightedCountValues(x, w)

	orderedQuantiles := make([]float64, len(quantiles))
	copy(orderedQuantiles, quantiles)
	sort.Float64s(orderedQuantiles)

	var names []string
	values := make([]float64, 0, len(counts)*len(orderedQuantiles))

	for cc, column := range counts {
		entries := column.Counts()

		cumulativeWeight := 0.0
		currentQuantile := 0

		for vv, count := range entries {
			oldCumulativeWeight := cumulativeWeight
			cumulativeWeight += count.SummedWeight
			cumulativePercent := cumulativeWeight / column.SumOfWeights()

			for currentQuantile < len(orderedQuantiles) && cumulativePercent > orderedQuantiles[currentQuantile] {
				q := orderedQuantiles[currentQuantile]
				names = append(names, fmt.Sprintf("quantile_x%d_%s", cc+1, numeric.FormatValue(q)))

				raisedWeight := oldCumulativeWeight + count.FirstWeight
				raisedPercent := raisedWeight / column.SumOfWeights()

				var v float64
				if raisedPercent <= q {
					v = count.Value
				} else {
					switch quantileType {
					case QuantileLower:
						if vv > 0 {
							v = entries[vv-1].Value
						} else {
							v = count.Value
						}
					case QuantileUpper:
						v = count.Value
					default: // QuantileInterpolation
						if vv > 0 {
							lower := entries[vv-1].Value
							percentChange := count.FirstWeight / column.SumOfWeights()
							v = lower + (count.Value-lower)*(q-oldCumulativeWeight/column.SumOfWeights())/(percentChange+epsilon)
						} else {
							v = count.Value
						}
					}
				}
				values = append(values, v)
				currentQuantile++
			}

			if currentQuantile == len(orderedQuantiles) {
				break
			}
		}

		for currentQuantile < len(orderedQuantiles) {
			q := orderedQuantiles[currentQuantile]
			names = append(names, fmt.Sprintf("quantile_x%d_%s", cc+1, numeric.FormatValue(q)))
			values = append(values, entries[len(entries)-1].Value)
			currentQuantile++
		}
	}

	return Estimates{Names: names, Values: values}, nil
}
