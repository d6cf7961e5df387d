// Package classify provides a CART decision tree and a per-class text
// report for the feature package's classifier boundary.
package classify

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/fakeyudi/jumplab/internal/features"
)

// Tree is an unfitted decision tree configuration. The zero value grows the
// tree until leaves are pure.
type Tree struct {
	// MaxDepth limits the tree height. Zero means unlimited.
	MaxDepth int
	// MinSamplesSplit is the smallest node that is split. Values below 2
	// are treated as 2.
	MinSamplesSplit int
}

var _ features.Classifier = Tree{}

// node is a split when left is set, a leaf otherwise.
type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	class     int
}

// Model is a fitted tree.
type Model struct {
	root     *node
	features int
	depth    int
}

// Fit grows a tree by greedy gini splits. Rows go left when
// x[feature] <= threshold; NaN values always go right.
func (t Tree) Fit(X [][]float64, y []int) (features.Predictor, error) {
	if len(X) == 0 {
		return nil, errors.New("fit on empty data")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("%d rows but %d labels", len(X), len(y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), width)
		}
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	m := &Model{features: width}
	m.root = t.grow(X, y, idx, 0, m)
	return m, nil
}

func (t Tree) grow(X [][]float64, y []int, idx []int, depth int, m *Model) *node {
	m.depth = max(m.depth, depth)
	counts := classCounts(y, idx)
	leaf := &node{class: majority(counts)}
	minSplit := max(2, t.MinSamplesSplit)
	if len(counts) < 2 || len(idx) < minSplit || (t.MaxDepth > 0 && depth >= t.MaxDepth) {
		return leaf
	}
	feature, threshold, ok := bestSplit(X, y, idx)
	if !ok {
		return leaf
	}
	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	// A midpoint between adjacent floats can round onto the upper value.
	if len(left) == 0 || len(right) == 0 {
		return leaf
	}
	return &node{
		feature:   feature,
		threshold: threshold,
		left:      t.grow(X, y, left, depth+1, m),
		right:     t.grow(X, y, right, depth+1, m),
	}
}

// bestSplit scans every feature for the midpoint threshold with the lowest
// weighted gini impurity. A split is taken even when it does not lower the
// impurity. Ties keep the first feature and threshold found.
func bestSplit(X [][]float64, y []int, idx []int) (feature int, threshold float64, ok bool) {
	total := classCounts(y, idx)
	best := math.Inf(1)
	type pair struct {
		v float64
		c int
	}
	rows := make([]pair, 0, len(idx))
	for f := 0; f < len(X[idx[0]]); f++ {
		rows = rows[:0]
		for _, i := range idx {
			v := X[i][f]
			if math.IsNaN(v) {
				continue
			}
			rows = append(rows, pair{v, y[i]})
		}
		if len(rows) < 2 {
			continue
		}
		sort.Slice(rows, func(a, b int) bool { return rows[a].v < rows[b].v })

		left := make(map[int]int)
		right := make(map[int]int)
		for c, n := range total {
			right[c] = n
		}
		nLeft, nRight := 0, len(idx)
		for k := 0; k < len(rows)-1; k++ {
			left[rows[k].c]++
			right[rows[k].c]--
			nLeft++
			nRight--
			if rows[k].v == rows[k+1].v {
				continue
			}
			score := (float64(nLeft)*gini(left, nLeft) + float64(nRight)*gini(right, nRight)) / float64(len(idx))
			if score < best-1e-12 {
				best = score
				feature = f
				threshold = rows[k].v + (rows[k+1].v-rows[k].v)/2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func classCounts(y []int, idx []int) map[int]int {
	counts := make(map[int]int)
	for _, i := range idx {
		counts[y[i]]++
	}
	return counts
}

func gini(counts map[int]int, n int) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(n)
		g -= p * p
	}
	return g
}

// majority picks the most frequent class, the smallest on ties.
func majority(counts map[int]int) int {
	best, bestN := 0, -1
	for c, n := range counts {
		if n > bestN || (n == bestN && c < best) {
			best, bestN = c, n
		}
	}
	return best
}

// Predict classifies each row.
func (m *Model) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, row := range X {
		n := m.root
		for n.left != nil {
			if row[n.feature] <= n.threshold {
				n = n.left
			} else {
				n = n.right
			}
		}
		out[i] = n.class
	}
	return out
}

// Depth is the height of the fitted tree.
func (m *Model) Depth() int { return m.depth }

// Report predicts X and renders the per-class report against y.
func (m *Model) Report(X [][]float64, y []int) string {
	return Report(y, m.Predict(X))
}
