package cluster

import (
	"fmt"
	"math"
)

// contingency counts co-assignments of two labelings.
type contingency struct {
	n     int
	cells map[[2]int]int
	rows  map[int]int
	cols  map[int]int
}

func newContingency(truth, pred []int) (*contingency, error) {
	if len(truth) != len(pred) {
		return nil, fmt.Errorf("label slices differ in length: %d vs %d", len(truth), len(pred))
	}
	c := &contingency{
		n:     len(truth),
		cells: make(map[[2]int]int),
		rows:  make(map[int]int),
		cols:  make(map[int]int),
	}
	for i := range truth {
		c.cells[[2]int{truth[i], pred[i]}]++
		c.rows[truth[i]]++
		c.cols[pred[i]]++
	}
	return c, nil
}

func comb2(n int) float64 {
	return float64(n) * float64(n-1) / 2
}

// AdjustedRandIndex scores agreement between two labelings, 1 for identical
// partitions and about 0 for random ones.
func AdjustedRandIndex(truth, pred []int) (float64, error) {
	c, err := newContingency(truth, pred)
	if err != nil {
		return 0, err
	}
	if c.n < 2 {
		return 1, nil
	}

	var sumCells, sumRows, sumCols float64
	for _, v := range c.cells {
		sumCells += comb2(v)
	}
	for _, v := range c.rows {
		sumRows += comb2(v)
	}
	for _, v := range c.cols {
		sumCols += comb2(v)
	}
	expected := sumRows * sumCols / comb2(c.n)
	maxIndex := (sumRows + sumCols) / 2
	if maxIndex == expected {
		// Both labelings trivial in the same way
		return 1, nil
	}
	return (sumCells - expected) / (maxIndex - expected), nil
}

// NormalizedMutualInfo is the mutual information divided by the arithmetic
// mean of the two entropies.
func NormalizedMutualInfo(truth, pred []int) (float64, error) {
	c, err := newContingency(truth, pred)
	if err != nil {
		return 0, err
	}
	if c.n == 0 {
		return 1, nil
	}
	if len(c.rows) == 1 && len(c.cols) == 1 {
		return 1, nil
	}

	n := float64(c.n)
	var mi float64
	for key, v := range c.cells {
		pij := float64(v) / n
		pi := float64(c.rows[key[0]]) / n
		pj := float64(c.cols[key[1]]) / n
		mi += pij * math.Log(pij/(pi*pj))
	}
	hu := entropy(c.rows, n)
	hv := entropy(c.cols, n)
	denom := (hu + hv) / 2
	if denom == 0 {
		return 0, nil
	}
	return math.Max(mi, 0) / denom, nil
}

func entropy(counts map[int]int, n float64) float64 {
	var h float64
	for _, v := range counts {
		p := float64(v) / n
		h -= p * math.Log(p)
	}
	return h
}
