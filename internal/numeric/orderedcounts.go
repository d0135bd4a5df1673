package numeric

import "math"

// ValueCount is one entry of an OrderedCounts: the distinct value, how many
// non-NaN rows carried it, the weight of the first occurrence, and the
// summed weight across all occurrences.
type ValueCount struct {
	Value       float64
	CaseCount   float64
	FirstWeight float64
	SummedWeight float64
}

// OrderedCounts is an ordered collection of (value, case_count,
// weight_of_first_occurrence, summed_weight), keyed by the distinct
// non-NaN values of one column, ordered by value ascending. Used by the
// quantile and frequency kernels. NaN inputs are ignored.
type OrderedCounts struct {
	values       []float64
	caseCounts   []float64
	firstWeights []float64
	summedWeights []float64
	sumOfWeights float64
}

// NewOrderedCounts returns an empty counter.
func NewOrderedCounts() *OrderedCounts {
	return &OrderedCounts{}
}

// Push records one (value, weight) observation. NaN values are ignored.
func (c *OrderedCounts) Push(value, weight float64) {
	if math.IsNaN(value) {
		return
	}

	c.sumOfWeights += weight

	for i, v := range c.values {
		if v == value {
			c.caseCounts[i]++
			c.summedWeights[i] += weight
			return
		}
		if v > value {
			c.insertAt(i, value, weight)
			return
		}
	}

	c.values = append(c.values, value)
	c.caseCounts = append(c.caseCounts, 1)
	c.firstWeights = append(c.firstWeights, weight)
	c.summedWeights = append(c.summedWeights, weight)
}

func (c *OrderedCounts) insertAt(i int, value, weight float64) {
	c.values = append(c.values, 0)
	copy(c.values[i+1:], c.values[i:])
	c.values[i] = value

	c.caseCounts = append(c.caseCounts, 0)
	copy(c.caseCounts[i+1:], c.caseCounts[i:])
	c.caseCounts[i] = 1

	c.firstWeights = append(c.firstWeights, 0)
	copy(c.firstWeights[i+1:], c.firstWeights[i:])
	c.firstWeights[i] = weight

	c.summedWeights = append(c.summedWeights, 0)
	copy(c.summedWeights[i+1:], c.summedWeights[i:])
	c.summedWeights[i] = weight
}

// Counts returns the recorded values in ascending order.
func (c *OrderedCounts) Counts() []ValueCount {
	out := make([]ValueCount, len(c.values))
	for i := range c.values {
		out[i] = ValueCount{
			Value:        c.values[i],
			CaseCount:    c.caseCounts[i],
			FirstWeight:  c.firstWeights[i],
			SummedWeight: c.summedWeights[i],
		}
	}
	return out
}

// SumOfWeights returns the total weight across all (non-NaN) pushes.
func (c *OrderedCounts) SumOfWeights() float64 {
	return c.sumOfWeights
}
