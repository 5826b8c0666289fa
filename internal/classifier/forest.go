// Package classifier evaluates a pre-trained random forest loaded from a
// serialized artifact. A loaded Forest is immutable and may be shared by
// any number of goroutines.
package classifier

import (
	"errors"
	"fmt"
)

// ErrFeatureCount is returned when a vector does not match the number of
// features the forest was trained on.
var ErrFeatureCount = errors.New("classifier: feature count mismatch")

// TreeNode is one node of a flattened decision tree. Children are indexes
// into the owning tree's node slice.
type TreeNode struct {
	FeatureIdx int       `json:"feature_idx" yaml:"feature_idx"`
	Threshold  float64   `json:"threshold" yaml:"threshold"`
	LeftChild  int       `json:"left_child" yaml:"left_child"`
	RightChild int       `json:"right_child" yaml:"right_child"`
	IsLeaf     bool      `json:"is_leaf" yaml:"is_leaf"`
	Value      []float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

// Tree is a single estimator of the forest. Node 0 is the root.
type Tree struct {
	Nodes []TreeNode `json:"nodes" yaml:"nodes"`
}

// Forest averages the class distributions of its trees.
type Forest struct {
	features    []string
	classes     []string
	trees       []Tree
	fingerprint string
}

// NumFeatures reports the expected vector length.
func (f *Forest) NumFeatures() int { return len(f.features) }

// Features returns the feature names in vector order.
func (f *Forest) Features() []string { return append([]string(nil), f.features...) }

// Classes returns the class names recorded in the artifact, in index order.
func (f *Forest) Classes() []string { return append([]string(nil), f.classes...) }

// Fingerprint is the sha1 hex digest of the artifact the forest was loaded from.
func (f *Forest) Fingerprint() string { return f.fingerprint }

// PredictProba returns the mean of the normalised leaf distributions reached
// in every tree.
func (f *Forest) PredictProba(features []float64) ([]float64, error) {
	if len(features) != len(f.features) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(features), len(f.features))
	}
	proba := make([]float64, len(f.classes))
	for _, tree := range f.trees {
		leaf := tree.leaf(features)
		var total float64
		for _, v := range leaf.Value {
			total += v
		}
		for i, v := range leaf.Value {
			proba[i] += v / total
		}
	}
	n := float64(len(f.trees))
	for i := range proba {
		proba[i] /= n
	}
	return proba, nil
}

// Predict returns the index of the most probable class. Ties resolve to the
// lowest index.
func (f *Forest) Predict(features []float64) (int, error) {
	proba, err := f.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return argmax(proba), nil
}

// leaf walks the tree from the root. The node layout was validated at load
// time, so every walk terminates on a leaf.
func (t Tree) leaf(features []float64) TreeNode {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
