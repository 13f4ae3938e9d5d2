package ml

import (
	"errors"
	"fmt"
)

// DecisionTree is a regression tree stored as a flat node array; node 0 is
// the root.
type DecisionTree struct {
	Type     string     `json:"type"`
	Nodes    []TreeNode `json:"nodes"`
	Features []string   `json:"feature_names,omitempty"`
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

func (dt *DecisionTree) Predict(features []float64) (float64, error) {
	if len(dt.Nodes) == 0 {
		return 0, errors.New("model not trained")
	}
	idx := 0
	// a well-formed tree reaches a leaf in fewer steps than it has nodes
	for steps := 0; steps <= len(dt.Nodes); steps++ {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, fmt.Errorf("feature index %d out of range for %d features", node.FeatureIdx, len(features))
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
	return 0, errors.New("invalid tree state: cycle detected")
}

func (dt *DecisionTree) NumFeatures() int {
	if len(dt.Features) > 0 {
		return len(dt.Features)
	}
	return 0
}

func (dt *DecisionTree) FeatureNames() []string {
	return append([]string(nil), dt.Features...)
}

// Depth returns the longest root-to-leaf path length.
func (dt *DecisionTree) Depth() int {
	if len(dt.Nodes) == 0 {
		return 0
	}
	return dt.depth(0, 0)
}

func (dt *DecisionTree) depth(idx, seen int) int {
	if seen > len(dt.Nodes) || idx < 0 || idx >= len(dt.Nodes) {
		return seen
	}
	node := dt.Nodes[idx]
	if node.IsLeaf {
		return seen + 1
	}
	left := dt.depth(node.LeftChild, seen+1)
	right := dt.depth(node.RightChild, seen+1)
	if left > right {
		return left
	}
	return right
}

func (dt *DecisionTree) validate() error {
	if len(dt.Nodes) == 0 {
		return errors.New("decision tree has no nodes")
	}
	for i, node := range dt.Nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 {
			return fmt.Errorf("node %d: negative feature index", i)
		}
		if len(dt.Features) > 0 && node.FeatureIdx >= len(dt.Features) {
			return fmt.Errorf("node %d: feature index %d beyond %d feature names", i, node.FeatureIdx, len(dt.Features))
		}
		if node.LeftChild <= i || node.LeftChild >= len(dt.Nodes) ||
			node.RightChild <= i || node.RightChild >= len(dt.Nodes) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
	}
	return nil
}
