// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package ranker

import (
	"sort"
)

// leaf marks a node without children.
const leaf = -1

// Node is one node of a regression tree stored in a flat slice.
// Leaves have Left == Right == -1 and carry the prediction in Value.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Samples   int     `json:"samples"`
}

// Tree is a CART regression tree split on squared error.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// treeParams bounds tree growth.
type treeParams struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
}

// treeBuilder holds the training data while a tree is grown.
type treeBuilder struct {
	x      [][]float64
	y      []float64
	params treeParams
	nodes  []Node
}

// growTree fits a tree on the rows of x selected by idx. idx may contain
// duplicates (bootstrap samples); each occurrence counts as one sample.
func growTree(x [][]float64, y []float64, idx []int, params treeParams) *Tree {
	b := &treeBuilder{x: x, y: y, params: params}
	b.build(idx, 0)
	return &Tree{Nodes: b.nodes}
}

// build appends the subtree for idx and returns its root position.
func (b *treeBuilder) build(idx []int, depth int) int {
	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	n := float64(len(idx))
	pos := len(b.nodes)
	b.nodes = append(b.nodes, Node{
		Feature: leaf,
		Left:    leaf,
		Right:   leaf,
		Value:   sum / n,
		Samples: len(idx),
	})

	impurity := sumSq/n - (sum/n)*(sum/n)
	if depth >= b.params.maxDepth || len(idx) < b.params.minSamplesSplit || impurity <= 1e-12 {
		return pos
	}

	feature, threshold, ok := b.bestSplit(idx, sum)
	if !ok {
		return pos
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[pos].Feature = feature
	b.nodes[pos].Threshold = threshold
	b.nodes[pos].Left = l
	b.nodes[pos].Right = r
	return pos
}

// bestSplit scans every feature for the threshold that maximizes the
// reduction in squared error. Ties keep the first feature found.
func (b *treeBuilder) bestSplit(idx []int, total float64) (int, float64, bool) {
	n := len(idx)
	minLeaf := b.params.minSamplesLeaf
	bestFeature, bestThreshold := leaf, 0.0
	bestGain := (total * total) / float64(n)

	sorted := make([]int, n)
	for f := range b.x[idx[0]] {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool {
			return b.x[sorted[a]][f] < b.x[sorted[c]][f]
		})

		leftSum := 0.0
		for k := 0; k < n-1; k++ {
			leftSum += b.y[sorted[k]]
			nl := k + 1
			nr := n - nl
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			cur, next := b.x[sorted[k]][f], b.x[sorted[k+1]][f]
			if cur == next {
				continue
			}
			rightSum := total - leftSum
			gain := leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(nr)
			if gain > bestGain+1e-12 {
				bestGain = gain
				bestFeature = f
				bestThreshold = cur + (next-cur)/2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature != leaf
}

// Predict walks the tree for a single standardized row.
func (t *Tree) Predict(row []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	pos := 0
	for {
		node := &t.Nodes[pos]
		if node.Left == leaf {
			return node.Value
		}
		if row[node.Feature] <= node.Threshold {
			pos = node.Left
		} else {
			pos = node.Right
		}
	}
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(pos int) int
	walk = func(pos int) int {
		node := t.Nodes[pos]
		if node.Left == leaf {
			return 0
		}
		return 1 + max(walk(node.Left), walk(node.Right))
	}
	return walk(0)
}
