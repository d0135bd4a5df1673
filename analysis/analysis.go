// Package analysis provides the fluent Analysis builder: the orchestrator
// that turns imputations, weights, replicate weights, and an optional
// grouping matrix into partitioned calls against the replication engine.
package analysis

import (
	"fmt"

	"github.com/replicest/replicvar/estimate"
	"github.com/replicest/replicvar/internal/numeric"
	"github.com/replicest/replicvar/replicate"
	"github.com/replicest/replicvar/rerrors"
	"gonum.org/v1/gonum/mat"
)

type options struct {
	intercept      bool
	pairwiseDelete bool
	quantiles      []float64
	quantileType   estimate.QuantileType
}

func defaultOptions() options {
	return options{
		intercept:      true,
		pairwiseDelete: true,
		quantiles:      []float64{0.25, 0.50, 0.75},
		quantileType:   estimate.QuantileInterpolation,
	}
}

// Analysis is a fluent builder over imputations, weights, and an optional
// estimator selection. Every setter assigns a new field value rather than
// mutating through the old one, so Copy's shared slice/pointer fields stay
// independent of whichever builder last called a setter.
type Analysis struct {
	x    []*mat.Dense
	w    [][]float64
	wrep []*mat.Dense
	g    []*mat.Dense

	alpha float64

	estimateName string
	estimator    estimate.Func
	opts         options

	preProcessor replicate.PreProcessor
}

// New returns an empty Analysis with the default variance adjustment factor
// and estimator option defaults.
func New() *Analysis {
	return &Analysis{alpha: 1.0, opts: defaultOptions()}
}

// ForData sets the imputations. A single matrix is treated as m=1.
func (a *Analysis) ForData(xs ...*mat.Dense) *Analysis {
	a.x = xs
	return a
}

// SetWeights sets the sole weight vector, shared across every imputation.
func (a *Analysis) SetWeights(w []float64) *Analysis {
	a.w = [][]float64{w}
	return a
}

// SetWeightsPerImputation sets one weight vector per imputation.
func (a *Analysis) SetWeightsPerImputation(ws ...[]float64) *Analysis {
	a.w = ws
	return a
}

// WithReplicateWeights sets the sole replicate-weight matrix, shared across
// every imputation.
func (a *Analysis) WithReplicateWeights(wrep *mat.Dense) *Analysis {
	a.wrep = []*mat.Dense{wrep}
	return a
}

// WithReplicateWeightsPerImputation sets one replicate-weight matrix per
// imputation.
func (a *Analysis) WithReplicateWeightsPerImputation(wreps ...*mat.Dense) *Analysis {
	a.wrep = wreps
	return a
}

// SetVarianceAdjustmentFactor sets alpha, the scalar applied to the sum of
// squared deviations in the sampling-variance computation.
func (a *Analysis) SetVarianceAdjustmentFactor(alpha float64) *Analysis {
	a.alpha = alpha
	return a
}

// GroupBy enables partitioned calculation. A single grouping matrix applies
// to all imputations; otherwise one matrix is required per imputation.
func (a *Analysis) GroupBy(gs ...*mat.Dense) *Analysis {
	a.g = gs
	return a
}

// WithPreProcessor installs a pre-processor (e.g. prep.ListwiseDelete)
// applied to an owned clone of each imputation before the estimator runs.
func (a *Analysis) WithPreProcessor(pp replicate.PreProcessor) *Analysis {
	a.preProcessor = pp
	return a
}

func (a *Analysis) rebuildEstimator() {
	switch a.estimateName {
	case "mean":
		a.estimator = estimate.Mean
	case "correlation":
		pairwiseDelete := a.opts.pairwiseDelete
		a.estimator = func(x *mat.Dense, w []float64) (estimate.Estimates, error) {
			return estimate.CorrelationWithOptions(x, w, pairwiseDelete)
		}
	case "linreg":
		intercept := a.opts.intercept
		a.estimator = func(x *mat.Dense, w []float64) (estimate.Estimates, error) {
			return estimate.LinregWithOptions(x, w, intercept)
		}
	case "quantiles":
		qs := append([]float64(nil), a.opts.quantiles...)
		quantileType := a.opts.quantileType
		a.estimator = func(x *mat.Dense, w []float64) (estimate.Estimates, error) {
			return estimate.QuantilesWithOptions(x, w, qs, quantileType)
		}
	case "frequencies":
		a.estimator = estimate.Frequencies
	case "missings":
		a.estimator = estimate.Missings
	}
}

// Mean selects the weighted-mean estimator.
func (a *Analysis) Mean() *Analysis { a.estimateName = "mean"; a.rebuildEstimator(); return a }

// Correlation selects the covariance/correlation estimator.
func (a *Analysis) Correlation() *Analysis {
	a.estimateName = "correlation"
	a.rebuildEstimator()
	return a
}

// Linreg selects the weighted linear regression estimator.
func (a *Analysis) Linreg() *Analysis { a.estimateName = "linreg"; a.rebuildEstimator(); return a }

// Quantiles selects the weighted quantile estimator.
func (a *Analysis) Quantiles() *Analysis {
	a.estimateName = "quantiles"
	a.rebuildEstimator()
	return a
}

// Frequencies selects the weighted frequency-table estimator.
func (a *Analysis) Frequencies() *Analysis {
	a.estimateName = "frequencies"
	a.rebuildEstimator()
	return a
}

// Missings selects the missingness-tabulation estimator.
func (a *Analysis) Missings() *Analysis {
	a.estimateName = "missings"
	a.rebuildEstimator()
	return a
}

// WithIntercept records the intercept option for the linreg estimator and
// rebinds the current estimator closure.
func (a *Analysis) WithIntercept(intercept bool) *Analysis {
	a.opts.intercept = intercept
	a.rebuildEstimator()
	return a
}

// WithPairwiseDelete records the pairwise-delete option for the correlation
// estimator and rebinds the current estimator closure.
func (a *Analysis) WithPairwiseDelete(pairwiseDelete bool) *Analysis {
	a.opts.pairwiseDelete = pairwiseDelete
	a.rebuildEstimator()
	return a
}

// SetQuantiles records the quantile list for the quantiles estimator and
// rebinds the current estimator closure.
func (a *Analysis) SetQuantiles(qs []float64) *Analysis {
	a.opts.quantiles = append([]float64(nil), qs...)
	a.rebuildEstimator()
	return a
}

// SetQuantileType records the quantile resolution mode for the quantiles
// estimator and rebinds the current estimator closure.
func (a *Analysis) SetQuantileType(quantileType estimate.QuantileType) *Analysis {
	a.opts.quantileType = quantileType
	a.rebuildEstimator()
	return a
}

// Copy returns an independent builder sharing the underlying imputation,
// weight, replicate-weight, and grouping data: a struct-value copy shares
// slice headers and *mat.Dense pointers with the receiver, but a later
// setter on either builder assigns a new field value rather than mutating
// shared storage, so the two builders never observe each other's changes.
func (a *Analysis) Copy() *Analysis {
	cp := *a
	return &cp
}

// Summary returns a single human-readable line describing the analysis's
// current shape.
func (a *Analysis) Summary() string {
	estimateName := a.estimateName
	if estimateName == "" {
		estimateName = "none"
	}

	caseCount := 0
	if len(a.x) > 0 {
		rows, _ := a.x[0].Dims()
		caseCount = rows
	}

	wgtInfo := "wgt missing"
	if len(a.w) > 0 {
		var sum float64
		for _, v := range a.w[0] {
			sum += v
		}
		wgtInfo = fmt.Sprintf("%d weights of sum %v", len(a.w[0]), sum)
	}

	groupCols := 0
	if len(a.g) > 0 {
		_, cols := a.g[0].Dims()
		groupCols = cols
	}

	return fmt.Sprintf(
		"%s (%d imputations, %d cases, %s, %d replicate-weight matrices, alpha=%v, %d grouping columns)",
		estimateName, len(a.x), caseCount, wgtInfo, len(a.wrep), a.alpha, groupCols,
	)
}

func resolveSlice(list [][]float64, i int) []float64 {
	if len(list) == 1 {
		return list[0]
	}
	return list[i]
}

func resolveDense(list []*mat.Dense, i int) *mat.Dense {
	if len(list) == 1 {
		return list[0]
	}
	return list[i]
}

// Calculate runs the selected estimator over every imputation, partitioning
// by the grouping matrix if one is set, and combines each partition's
// results via the replication engine. It returns a mapping from group key
// ("overall" when ungrouped) to ReplicatedEstimates.
func (a *Analysis) Calculate() (map[string]replicate.ReplicatedEstimates, error) {
	if a.estimator == nil {
		return nil, rerrors.NewMissingElement("estimate")
	}
	if len(a.x) == 0 {
		return nil, rerrors.NewMissingElement("data")
	}

	m := len(a.x)

	ws := a.w
	if len(ws) == 0 {
		ws = make([][]float64, m)
		for i := 0; i < m; i++ {
			rows, _ := a.x[i].Dims()
			ones := make([]float64, rows)
			for r := range ones {
				ones[r] = 1.0
			}
			ws[i] = ones
		}
	}
	wreps := a.wrep

	if len(a.g) == 0 {
		for i := 0; i < m; i++ {
			rows, _ := a.x[i].Dims()
			wi := resolveSlice(ws, i)
			if rows != len(wi) {
				return nil, rerrors.NewInconsistency("row count mismatch between x and w")
			}
			if len(wreps) > 0 {
				if wrepI := resolveDense(wreps, i); wrepI != nil {
					wrepRows, _ := wrepI.Dims()
					if wrepRows != rows {
						return nil, rerrors.NewInconsistency("row count mismatch between x and replicate weights")
					}
				}
			}
		}

		result, err := replicate.ReplicateEstimates(a.estimator, a.preProcessor, a.x, ws, wreps, a.alpha)
		if err != nil {
			return nil, err
		}
		return map[string]replicate.ReplicatedEstimates{numeric.JoinKey(numeric.OverallKey): result}, nil
	}

	if len(a.g) != 1 && len(a.g) != m {
		return nil, rerrors.NewInconsistency("grouping imputation count does not match data")
	}

	type bucket struct {
		xs    []*mat.Dense
		ws    [][]float64
		wreps []*mat.Dense
	}
	buckets := make(map[string]*bucket)

	for i := 0; i < m; i++ {
		gi := resolveDense(a.g, i)
		xi := a.x[i]
		wi := resolveSlice(ws, i)

		rows, _ := xi.Dims()
		if rows != len(wi) {
			return nil, rerrors.NewInconsistency("row count mismatch between x and w")
		}
		grows, _ := gi.Dims()
		if grows != rows {
			return nil, rerrors.NewInconsistency("row count mismatch between x and group matrix")
		}

		var wrepI *mat.Dense
		if len(wreps) > 0 {
			wrepI = resolveDense(wreps, i)
		}

		xParts := numeric.PartitionMatrix(xi, gi)
		wParts := numeric.PartitionVector(wi, gi)
		var wrepParts map[string]*mat.Dense
		if wrepI != nil {
			wrepParts = numeric.PartitionMatrix(wrepI, gi)
		}

		for key, xSub := range xParts {
			b, ok := buckets[key]
			if !ok {
				b = &bucket{}
				buckets[key] = b
			}
			b.xs = append(b.xs, xSub)
			b.ws = append(b.ws, wParts[key])
			if wrepParts != nil {
				b.wreps = append(b.wreps, wrepParts[key])
			} else {
				b.wreps = append(b.wreps, nil)
			}
		}
	}

	out := make(map[string]replicate.ReplicatedEstimates, len(buckets))
	for key, b := range buckets {
		var wreps []*mat.Dense
		for _, w := range b.wreps {
			if w != nil {
				wreps = b.wreps
				break
			}
		}
		result, err := replicate.ReplicateEstimates(a.estimator, a.preProcessor, b.xs, b.ws, wreps, a.alpha)
		if err != nil {
			return nil, err
		}
		out[key] = result
	}
	return out, nil
}
