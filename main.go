package main

import (
	"fmt"

	"github.com/replicest/replicvar/analysis"
	"gonum.org/v1/gonum/mat"
)

func main() {
	// Two imputations of the same three survey respondents, each with an
	// income column and a satisfaction-score column, plus replicate
	// weights for the sampling-variance estimate.
	imp0 := mat.NewDense(3, 2, []float64{
		41000, 6,
		58500, 8,
		37250, 5,
	})
	imp1 := mat.NewDense(3, 2, []float64{
		41500, 6,
		57800, 8,
		38000, 5,
	})
	w := []float64{1.0, 0.8, 1.2}
	repWgts := mat.NewDense(3, 3, []float64{
		0.0, 1.0, 1.0,
		0.6, 0.0, 0.6,
		1.4, 1.4, 0.0,
	})

	result, err := analysis.New().
		ForData(imp0, imp1).
		SetWeights(w).
		WithReplicateWeights(repWgts).
		Mean().
		Calculate()
	if err != nil {
		panic(err)
	}

	overall := result["overall"]
	for i, name := range overall.Names {
		fmt.Printf("%-12s estimate=%-10.4f SE=%.4f\n", name, overall.FinalEstimates[i], overall.StandardErrors[i])
	}
}
