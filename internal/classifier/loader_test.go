package classifier

import (
	"errors"
	"testing"
)

const stumpYAML = `model_type: random_forest
feature_names: [x]
class_names: [low, high]
trees:
  - nodes:
      - {feature_idx: 0, threshold: 0.5, left_child: 1, right_child: 2, is_leaf: false}
      - {feature_idx: -1, left_child: -1, right_child: -1, is_leaf: true, value: [3, 1]}
      - {feature_idx: -1, left_child: -1, right_child: -1, is_leaf: true, value: [0, 4]}
`

func TestLoadYAML(t *testing.T) {
	forest, err := Load(writeArtifact(t, "stump.yaml", stumpYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	proba, err := forest.PredictProba([]float64{0.2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proba[0] != 0.75 || proba[1] != 0.25 {
		t.Fatalf("unexpected distribution: %v", proba)
	}
	label, err := forest.Predict([]float64{0.9})
	if err != nil || label != 1 {
		t.Fatalf("expected class 1, got %d (%v)", label, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does/not/exist.json"); !errors.Is(err, ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
}

func TestLoadRejectsInvalidArtifacts(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"corrupt", `{"model_type": "random_forest", "trees": [`},
		{"wrong type", `{"model_type": "svm", "feature_names": ["x"], "class_names": ["a"], "trees": [{"nodes": [{"is_leaf": true, "value": [1]}]}]}`},
		{"no trees", `{"model_type": "random_forest", "feature_names": ["x"], "class_names": ["a"], "trees": []}`},
		{"no features", `{"model_type": "random_forest", "class_names": ["a"], "trees": [{"nodes": [{"is_leaf": true, "value": [1]}]}]}`},
		{"empty tree", `{"model_type": "random_forest", "feature_names": ["x"], "class_names": ["a"], "trees": [{"nodes": []}]}`},
		{"leaf width", `{"model_type": "random_forest", "feature_names": ["x"], "class_names": ["a", "b"], "trees": [{"nodes": [{"is_leaf": true, "value": [1]}]}]}`},
		{"zero leaf", `{"model_type": "random_forest", "feature_names": ["x"], "class_names": ["a"], "trees": [{"nodes": [{"is_leaf": true, "value": [0]}]}]}`},
		{"negative leaf", `{"model_type": "random_forest", "feature_names": ["x"], "class_names": ["a", "b"], "trees": [{"nodes": [{"is_leaf": true, "value": [2, -1]}]}]}`},
		{"feature range", `{"model_type": "random_forest", "feature_names": ["x"], "class_names": ["a"], "trees": [{"nodes": [
			{"feature_idx": 3, "threshold": 1, "left_child": 1, "right_child": 2},
			{"is_leaf": true, "value": [1]}, {"is_leaf": true, "value": [1]}]}]}`},
		{"backward child", `{"model_type": "random_forest", "feature_names": ["x"], "class_names": ["a"], "trees": [{"nodes": [
			{"feature_idx": 0, "threshold": 1, "left_child": 0, "right_child": 1},
			{"is_leaf": true, "value": [1]}]}]}`},
		{"dangling child", `{"model_type": "random_forest", "feature_names": ["x"], "class_names": ["a"], "trees": [{"nodes": [
			{"feature_idx": 0, "threshold": 1, "left_child": 1, "right_child": 7},
			{"is_leaf": true, "value": [1]}]}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeArtifact(t, "model.json", tc.body))
			if !errors.Is(err, ErrLoad) {
				t.Fatalf("expected ErrLoad, got %v", err)
			}
		})
	}
}

func TestFingerprintTracksArtifactBytes(t *testing.T) {
	a, err := Load(writeArtifact(t, "a.yaml", stumpYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Load(writeArtifact(t, "b.yaml", stumpYAML+"# retrained\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatal("different artifacts must have different fingerprints")
	}
}
