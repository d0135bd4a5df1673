// Package external is the shape-conversion facade for embedders that pass
// plain nested slices and string-keyed options instead of gonum types: it
// mirrors the internal replicate.ReplicatedEstimates as a struct with
// exported, serialization-friendly field names and turns [][][]float64
// imputations into the *mat.Dense/[]float64 values the replication engine
// expects.
package external

import (
	"strconv"
	"strings"

	"github.com/replicest/replicvar/estimate"
	"github.com/replicest/replicvar/replicate"
	"github.com/replicest/replicvar/rerrors"
	"gonum.org/v1/gonum/mat"
)

// Kind selects which estimator kernel ReplicateEstimates fans out.
type Kind int

const (
	Frequencies Kind = iota
	Quantiles
	Mean
	Correlation
	LinearRegression
)

// ReplicatedEstimates is the serializable counterpart of
// replicate.ReplicatedEstimates, with field names suited to external
// encoding (JSON, gob, etc.) rather than Go-internal naming.
type ReplicatedEstimates struct {
	ParameterNames      []string  `json:"parameter_names"`
	FinalEstimates      []float64 `json:"final_estimates"`
	SamplingVariances   []float64 `json:"sampling_variances"`
	ImputationVariances []float64 `json:"imputation_variances"`
	StandardErrors      []float64 `json:"standard_errors"`
}

func fromInternal(r replicate.ReplicatedEstimates) ReplicatedEstimates {
	return ReplicatedEstimates{
		ParameterNames:      r.Names,
		FinalEstimates:      r.FinalEstimates,
		SamplingVariances:   r.SamplingVariances,
		ImputationVariances: r.ImputationVariances,
		StandardErrors:      r.StandardErrors,
	}
}

func denseFromRows(rows [][]float64) *mat.Dense {
	if len(rows) == 0 {
		return nil
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil
	}
	out := mat.NewDense(len(rows), cols, nil)
	for r, row := range rows {
		out.SetRow(r, row)
	}
	return out
}

func buildEstimator(kind Kind, options map[string]string) (estimate.Func, error) {
	switch kind {
	case Frequencies:
		return estimate.Frequencies, nil
	case Mean:
		return estimate.Mean, nil
	case Correlation:
		return estimate.Correlation, nil
	case Quantiles:
		quantiles := []float64{0.25, 0.50, 0.75}
		if raw, ok := options["quantiles"]; ok {
			parts := strings.Split(raw, ",")
			quantiles = make([]float64, len(parts))
			for i, p := range parts {
				v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
				if err != nil {
					return nil, rerrors.NewNumericFailure("invalid quantiles option: " + raw)
				}
				quantiles[i] = v
			}
		}
		quantileType := estimate.QuantileInterpolation
		if raw, ok := options["quantile_type"]; ok {
			switch raw {
			case "lower":
				quantileType = estimate.QuantileLower
			case "interpolation":
				quantileType = estimate.QuantileInterpolation
			case "upper":
				quantileType = estimate.QuantileUpper
			default:
				return nil, rerrors.NewNumericFailure("invalid quantile_type option: " + raw)
			}
		}
		return func(x *mat.Dense, w []float64) (estimate.Estimates, error) {
			return estimate.QuantilesWithOptions(x, w, quantiles, quantileType)
		}, nil
	case LinearRegression:
		intercept := true
		if raw, ok := options["intercept"]; ok {
			intercept = raw == "true"
		}
		return func(x *mat.Dense, w []float64) (estimate.Estimates, error) {
			return estimate.LinregWithOptions(x, w, intercept)
		}, nil
	default:
		return nil, rerrors.NewMissingElement("estimate kind")
	}
}

// ReplicateEstimates is the free-function facade for embedders: it converts
// nested-slice imputations, weights, and replicate weights into the engine's
// native types, resolves kind/options into an estimator, and returns the
// combined replication-variance result.
func ReplicateEstimates(kind Kind, options map[string]string, x [][][]float64, wgt [][]float64, replicateWgts [][][]float64, factor float64) (ReplicatedEstimates, error) {
	estimator, err := buildEstimator(kind, options)
	if err != nil {
		return ReplicatedEstimates{}, err
	}

	xs := make([]*mat.Dense, len(x))
	for i, imputation := range x {
		xs[i] = denseFromRows(imputation)
	}

	ws := make([][]float64, len(wgt))
	for i, w := range wgt {
		ws[i] = w
	}

	var wreps []*mat.Dense
	if len(replicateWgts) > 0 {
		wreps = make([]*mat.Dense, len(replicateWgts))
		for i, rw := range replicateWgts {
			wreps[i] = denseFromRows(rw)
		}
	}

	result, err := replicate.ReplicateEstimates(estimator, nil, xs, ws, wreps, factor)
	if err != nil {
		return ReplicatedEstimates{}, err
	}
	return fromInternal(result), nil
}
