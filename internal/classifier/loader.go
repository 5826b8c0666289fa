package classifier

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// ModelTypeRandomForest is the only model_type an artifact may declare.
const ModelTypeRandomForest = "random_forest"

// ErrLoad wraps every failure to read, decode or validate an artifact.
var ErrLoad = errors.New("classifier: cannot load model artifact")

// artifact is the on-disk document.
type artifact struct {
	ModelType    string   `json:"model_type" yaml:"model_type"`
	FeatureNames []string `json:"feature_names" yaml:"feature_names"`
	ClassNames   []string `json:"class_names" yaml:"class_names"`
	Trees        []Tree   `json:"trees" yaml:"trees"`
}

// Load reads the artifact at path. Files ending in .yaml or .yml are decoded
// as YAML, everything else as JSON.
func Load(path string) (*Forest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	var doc artifact
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(payload, &doc)
	default:
		err = json.Unmarshal(payload, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrLoad, path, err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
	}
	sum := sha1.Sum(payload)
	return &Forest{
		features:    doc.FeatureNames,
		classes:     doc.ClassNames,
		trees:       doc.Trees,
		fingerprint: hex.EncodeToString(sum[:]),
	}, nil
}

func (a *artifact) validate() error {
	if a.ModelType != ModelTypeRandomForest {
		return fmt.Errorf("unsupported model type %q", a.ModelType)
	}
	if len(a.FeatureNames) == 0 {
		return errors.New("no feature names")
	}
	if len(a.ClassNames) == 0 {
		return errors.New("no class names")
	}
	if len(a.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	for i, tree := range a.Trees {
		if err := tree.validate(len(a.FeatureNames), len(a.ClassNames)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

// validate requires children to point forward, which rules out cycles and
// guarantees every walk from the root ends on a leaf.
func (t Tree) validate(numFeatures, numClasses int) error {
	if len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, node := range t.Nodes {
		if node.IsLeaf {
			if len(node.Value) != numClasses {
				return fmt.Errorf("node %d: leaf has %d values, want %d", i, len(node.Value), numClasses)
			}
			var total float64
			for _, v := range node.Value {
				if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
					return fmt.Errorf("node %d: invalid leaf value %v", i, v)
				}
				total += v
			}
			if total <= 0 {
				return fmt.Errorf("node %d: leaf values sum to zero", i)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= numFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		if math.IsNaN(node.Threshold) {
			return fmt.Errorf("node %d: threshold is NaN", i)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("node %d: invalid child index %d", i, child)
			}
		}
	}
	return nil
}
