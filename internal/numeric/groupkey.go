package numeric

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// formatKeyValue renders one grouping-matrix cell the way the engine's
// group keys are built: NaN always prints as the literal "NaN", everything
// else uses the shortest round-tripping decimal representation.
func formatKeyValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FormatValue renders a distinct data value (e.g. a quantile or frequency
// key) the same way group keys are rendered, so parameter names match the
// source's string-formatted value suffixes.
func FormatValue(v float64) string {
	return formatKeyValue(v)
}

// RowKey renders one row of a grouping matrix as its canonical group key.
func RowKey(g *mat.Dense, row int) []string {
	_, cols := g.Dims()
	key := make([]string, cols)
	for c := 0; c < cols; c++ {
		key[c] = formatKeyValue(g.At(row, c))
	}
	return key
}

// JoinKey renders a group key as the map key used throughout this module:
// a sequence of strings joined by a separator that cannot appear in a
// formatted float, so distinct keys never collide.
func JoinKey(key []string) string {
	return strings.Join(key, "\x1f")
}

// OverallKey is the reserved key denoting the ungrouped aggregate.
var OverallKey = []string{"overall"}

// GroupKeys returns the set of distinct row-tuples of g as string
// sequences, keyed by their joined representation.
func GroupKeys(g *mat.Dense) map[string][]string {
	rows, _ := g.Dims()
	keys := make(map[string][]string, rows)
	for r := 0; r < rows; r++ {
		key := RowKey(g, r)
		keys[JoinKey(key)] = key
	}
	return keys
}

// PartitionMatrix buckets the rows of m by the group key of the
// corresponding row of g, preserving original row order within each bucket.
func PartitionMatrix(m *mat.Dense, g *mat.Dense) map[string]*mat.Dense {
	rows, cols := m.Dims()
	grows, _ := g.Dims()
	if rows != grows {
		panic("numeric: unequal number of rows in PartitionMatrix")
	}

	indexes := indexByKey(g, rows)

	out := make(map[string]*mat.Dense, len(indexes))
	for key, idxs := range indexes {
		sub := mat.NewDense(len(idxs), cols, nil)
		for newRow, oldRow := range idxs {
			sub.SetRow(newRow, m.RawRowView(oldRow))
		}
		out[key] = sub
	}
	return out
}

// PartitionVector buckets the elements of v by the group key of the
// corresponding row of g, preserving original order within each bucket.
func PartitionVector(v []float64, g *mat.Dense) map[string][]float64 {
	grows, _ := g.Dims()
	if len(v) != grows {
		panic("numeric: unequal number of rows in PartitionVector")
	}

	indexes := indexByKey(g, len(v))

	out := make(map[string][]float64, len(indexes))
	for key, idxs := range indexes {
		sub := make([]float64, len(idxs))
		for newRow, oldRow := range idxs {
			sub[newRow] = v[oldRow]
		}
		out[key] = sub
	}
	return out
}

func indexByKey(g *mat.Dense, rows int) map[string][]int {
	indexes := make(map[string][]int)
	for r := 0; r < rows; r++ {
		key := JoinKey(RowKey(g, r))
		indexes[key] = append(indexes[key], r)
	}
	return indexes
}
