package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Method is an agglomerative linkage strategy.
type Method string

const (
	Ward     Method = "ward"
	Average  Method = "average"
	Complete Method = "complete"
	Single   Method = "single"
)

// DefaultMethods are the strategies compared when none are configured.
var DefaultMethods = []Method{Ward, Average}

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case Ward, Average, Complete, Single:
		return m, nil
	}
	return "", fmt.Errorf("unknown linkage method %q (want ward, average, complete or single)", s)
}

// Merge is one row of a linkage matrix. Leaves are 0..n-1; the cluster
// formed at step i has id n+i.
type Merge struct {
	A        int     `json:"a"`
	B        int     `json:"b"`
	Distance float64 `json:"distance"`
	Size     int     `json:"size"`
}

// Linkage clusters n observations given their condensed pairwise distances.
// Ties merge the earliest pair found.
func Linkage(dists []float64, n int, method Method) ([]Merge, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: linkage needs at least 2 observations, got %d", ErrDegenerateInput, n)
	}
	if len(dists) != n*(n-1)/2 {
		return nil, fmt.Errorf("distance vector has %d entries, want %d", len(dists), n*(n-1)/2)
	}
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}

	total := 2*n - 1
	d := make([][]float64, total)
	for i := range d {
		d[i] = make([]float64, total)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := dists[condensedIndex(n, i, j)]
			d[i][j], d[j][i] = v, v
		}
	}
	size := make([]int, total)
	active := make([]int, n)
	for i := range active {
		active[i] = i
		size[i] = 1
	}

	merges := make([]Merge, 0, n-1)
	for step := 0; step < n-1; step++ {
		ai, bi := 0, 1
		best := math.Inf(1)
		for x := 0; x < len(active); x++ {
			for y := x + 1; y < len(active); y++ {
				if v := d[active[x]][active[y]]; v < best {
					best, ai, bi = v, x, y
				}
			}
		}
		a, b := active[ai], active[bi]
		id := n + step
		size[id] = size[a] + size[b]

		for _, k := range active {
			if k == a || k == b {
				continue
			}
			v := update(method, d[a][k], d[b][k], d[a][b], size[a], size[b], size[k])
			d[id][k], d[k][id] = v, v
		}

		if a > b {
			a, b = b, a
		}
		merges = append(merges, Merge{A: a, B: b, Distance: best, Size: size[id]})

		// bi > ai, so removing bi first keeps ai valid
		active = append(active[:bi], active[bi+1:]...)
		active = append(active[:ai], active[ai+1:]...)
		active = append(active, id)
	}
	return merges, nil
}

// update is the Lance-Williams distance from cluster k to the union of i and j.
func update(method Method, dik, djk, dij float64, ni, nj, nk int) float64 {
	switch method {
	case Single:
		return math.Min(dik, djk)
	case Complete:
		return math.Max(dik, djk)
	case Average:
		return (float64(ni)*dik + float64(nj)*djk) / float64(ni+nj)
	default:
		fi, fj, fk := float64(ni), float64(nj), float64(nk)
		v := ((fi+fk)*dik*dik + (fj+fk)*djk*djk - fk*dij*dij) / (fi + fj + fk)
		return math.Sqrt(math.Max(v, 0))
	}
}

// Cophenetic returns the condensed cophenetic distances implied by merges:
// the height at which each pair first joins one cluster.
func Cophenetic(merges []Merge, n int) []float64 {
	out := make([]float64, n*(n-1)/2)
	members := make(map[int][]int, 2*n-1)
	for i := 0; i < n; i++ {
		members[i] = []int{i}
	}
	for step, m := range merges {
		for _, p := range members[m.A] {
			for _, q := range members[m.B] {
				out[condensedIndex(n, p, q)] = m.Distance
			}
		}
		joined := append(append([]int(nil), members[m.A]...), members[m.B]...)
		members[n+step] = joined
		delete(members, m.A)
		delete(members, m.B)
	}
	return out
}

// CopheneticCorrelation is the Pearson correlation between cophenetic and
// original distances. It reports false when either has zero variance.
func CopheneticCorrelation(merges []Merge, dists []float64, n int) (float64, bool) {
	coph := Cophenetic(merges, n)
	if len(coph) < 2 || stat.Variance(coph, nil) == 0 || stat.Variance(dists, nil) == 0 {
		return math.NaN(), false
	}
	r := stat.Correlation(coph, dists, nil)
	if math.IsNaN(r) {
		return r, false
	}
	return r, true
}

// Cut returns flat labels for k clusters by undoing the last k-1 merges.
// Labels are numbered by first appearance. k is clamped to [1, n].
func Cut(merges []Merge, n, k int) []int {
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	parent := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = -1
	}
	for step := 0; step < n-k && step < len(merges); step++ {
		parent[merges[step].A] = n + step
		parent[merges[step].B] = n + step
	}

	labels := make([]int, n)
	ids := make(map[int]int)
	for i := 0; i < n; i++ {
		root := i
		for parent[root] >= 0 {
			root = parent[root]
		}
		label, ok := ids[root]
		if !ok {
			label = len(ids)
			ids[root] = label
		}
		labels[i] = label
	}
	return labels
}
