// Package replicate implements the replication-variance engine: it fans an
// estimator out across imputations and, within each imputation, across
// replicate-weight columns, then combines the results with Rubin's rule.
package replicate

import (
	"math"
	"runtime"

	"github.com/replicest/replicvar/estimate"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Estimator is the callable the engine fans out: it must be safe to call
// concurrently from multiple goroutines.
type Estimator = estimate.Func

// PreProcessor transforms one imputation's (x, w, wrep) in place before the
// estimator runs. It receives an owned clone, never the caller's originals.
type PreProcessor func(x *mat.Dense, w []float64, wrep *mat.Dense)

// ReplicatedEstimates is the combined output of the replication engine:
// point estimates, their decomposed variance components, and the resulting
// standard errors, all indexed in parallel to Names.
type ReplicatedEstimates struct {
	Names               []string
	FinalEstimates      []float64
	SamplingVariances   []float64
	ImputationVariances []float64
	StandardErrors      []float64
}

// Workers bounds how many imputations are processed concurrently. Zero
// (the default) leaves the bound at runtime.GOMAXPROCS(0).
var Workers = 0

type imputationResult struct {
	names []string
	theta []float64
	vsamp []float64
}

func resolve[T any](list []T, i int) T {
	if len(list) == 1 {
		return list[0]
	}
	return list[i]
}

// cloneDense returns an owned copy of m, or nil if m is nil (meaning "no
// replicate weights for this imputation"). gonum's Dense cannot represent a
// zero-column matrix, so absence is modeled as a nil pointer rather than an
// empty matrix.
func cloneDense(m *mat.Dense) *mat.Dense {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Copy(m)
	return out
}

func column(m *mat.Dense, c int) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = m.At(i, c)
	}
	return out
}

// ReplicateEstimates runs estimator over each of the m imputations in xs,
// optionally pre-processing an owned clone of each imputation's (x, w,
// wrep) first, then combines the per-imputation point estimates and
// sampling variances into final estimates, sampling variance, imputation
// (between) variance, and standard errors. ws and wreps must each have
// length 1 (shared across imputations) or len(xs); wreps may be empty
// (no replicate weights at all). alpha scales the sampling-variance sum of
// squared deviations. A kernel failure in any imputation is fatal and no
// partial results are returned.
func ReplicateEstimates(estimator Estimator, preProcessor PreProcessor, xs []*mat.Dense, ws [][]float64, wreps []*mat.Dense, alpha float64) (ReplicatedEstimates, error) {
	m := len(xs)

	var g errgroup.Group
	limit := Workers
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	results := make([]imputationResult, m)

	for i := 0; i < m; i++ {
		i := i
		g.Go(func() error {
			x := cloneDense(xs[i])
			w := append([]float64(nil), resolve(ws, i)...)

			var wrep *mat.Dense
			if len(wreps) > 0 {
				wrep = cloneDense(resolve(wreps, i))
			}

			if preProcessor != nil {
				preProcessor(x, w, wrep)
			}

			theta, err := estimator(x, w)
			if err != nil {
				return err
			}

			vsamp := make([]float64, len(theta.Values))
			if wrep != nil {
				_, r := wrep.Dims()
				for c := 0; c < r; c++ {
					replicateTheta, err := estimator(x, column(wrep, c))
					if err != nil {
						return err
					}
					for k := range vsamp {
						d := replicateTheta.Values[k] - theta.Values[k]
						vsamp[k] += alpha * d * d
					}
				}
			}

			results[i] = imputationResult{names: theta.Names, theta: theta.Values, vsamp: vsamp}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ReplicatedEstimates{}, err
	}

	names := results[0].names
	p := len(names)

	theta := mat.NewDense(p, m, nil)
	for i, res := range results {
		for k := 0; k < p; k++ {
			theta.Set(k, i, res.theta[k])
		}
	}

	vsampSum := make([]float64, p)
	for _, res := range results {
		for k := range vsampSum {
			vsampSum[k] += res.vsamp[k]
		}
	}

	finalEstimates := make([]float64, p)
	for k := 0; k < p; k++ {
		var sum float64
		for i := 0; i < m; i++ {
			sum += theta.At(k, i)
		}
		finalEstimates[k] = sum / float64(m)
	}

	vsamp := make([]float64, p)
	for k := range vsamp {
		vsamp[k] = vsampSum[k] / float64(m)
	}

	vimp := make([]float64, p)
	if m > 1 {
		for k := 0; k < p; k++ {
			var sum float64
			for i := 0; i < m; i++ {
				d := theta.At(k, i) - finalEstimates[k]
				sum += d * d
			}
			vimp[k] = sum / float64(m-1)
		}
	}

	se := make([]float64, p)
	for k := 0; k < p; k++ {
		se[k] = math.Sqrt(vsamp[k] + (1+1/float64(m))*vimp[k])
	}

	return ReplicatedEstimates{
		Names:               names,
		FinalEstimates:      finalEstimates,
		SamplingVariances:   vsamp,
		ImputationVariances: vimp,
		StandardErrors:      se,
	}, nil
}
