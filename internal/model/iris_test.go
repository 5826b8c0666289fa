package model

import (
	"errors"
	"strings"
	"testing"
)

func TestParseMeasurements(t *testing.T) {
	m, err := ParseMeasurements([]byte(`{"sepal_length": 5.1, "sepal_width": 3.5, "petal_length": 1.4, "petal_width": 0.2}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Measurements{SepalLength: 5.1, SepalWidth: 3.5, PetalLength: 1.4, PetalWidth: 0.2}
	if m != want {
		t.Fatalf("expected %+v, got %+v", want, m)
	}
	vec := m.Vector()
	if len(vec) != 4 || vec[0] != 5.1 || vec[1] != 3.5 || vec[2] != 1.4 || vec[3] != 0.2 {
		t.Fatalf("unexpected vector order: %v", vec)
	}
}

func TestParseMeasurementsCoercion(t *testing.T) {
	m, err := ParseMeasurements([]byte(`{"sepal_length": "6.3", "sepal_width": " 2 ", "petal_length": 4, "petal_width": true, "extra": "ignored"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Measurements{SepalLength: 6.3, SepalWidth: 2, PetalLength: 4, PetalWidth: 1}
	if m != want {
		t.Fatalf("expected %+v, got %+v", want, m)
	}

	m, err = ParseMeasurements([]byte(`{"sepal_length": -1, "sepal_width": 0, "petal_length": 1e2, "petal_width": false}`))
	if err != nil {
		t.Fatalf("negative and zero measurements must be accepted: %v", err)
	}
	if m.SepalLength != -1 || m.PetalLength != 100 || m.PetalWidth != 0 {
		t.Fatalf("unexpected measurements: %+v", m)
	}
}

func TestParseMeasurementsDigitSeparators(t *testing.T) {
	m, err := ParseMeasurements([]byte(`{"sepal_length": "1_0", "sepal_width": "+3.5_0", "petal_length": "1_4e-1", "petal_width": "0.2"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Measurements{SepalLength: 10, SepalWidth: 3.5, PetalLength: 1.4, PetalWidth: 0.2}
	if m != want {
		t.Fatalf("expected %+v, got %+v", want, m)
	}
}

func TestParseMeasurementsErrors(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		mention string
	}{
		{"missing petal_width", `{"sepal_length": 5.1, "sepal_width": 3.5, "petal_length": 1.4}`, "petal_width"},
		{"missing sepal_length", `{"sepal_width": 3.5, "petal_length": 1.4, "petal_width": 0.2}`, "sepal_length"},
		{"non numeric string", `{"sepal_length": "abc", "sepal_width": 3.5, "petal_length": 1.4, "petal_width": 0.2}`, "sepal_length"},
		{"null value", `{"sepal_length": 5.1, "sepal_width": null, "petal_length": 1.4, "petal_width": 0.2}`, "sepal_width"},
		{"array value", `{"sepal_length": 5.1, "sepal_width": 3.5, "petal_length": [1.4], "petal_width": 0.2}`, "petal_length"},
		{"object value", `{"sepal_length": 5.1, "sepal_width": 3.5, "petal_length": {}, "petal_width": 0.2}`, "petal_length"},
		{"nan string", `{"sepal_length": "nan", "sepal_width": 3.5, "petal_length": 1.4, "petal_width": 0.2}`, "sepal_length"},
		{"inf string", `{"sepal_length": 5.1, "sepal_width": 3.5, "petal_length": 1.4, "petal_width": "-inf"}`, "petal_width"},
		{"hex float string", `{"sepal_length": "0x1p-2", "sepal_width": 3.5, "petal_length": 1.4, "petal_width": 0.2}`, "sepal_length"},
		{"signed hex string", `{"sepal_length": 5.1, "sepal_width": "-0X10", "petal_length": 1.4, "petal_width": 0.2}`, "sepal_width"},
		{"doubled underscore", `{"sepal_length": 5.1, "sepal_width": 3.5, "petal_length": "1__0", "petal_width": 0.2}`, "petal_length"},
		{"leading underscore", `{"sepal_length": 5.1, "sepal_width": 3.5, "petal_length": "_1", "petal_width": 0.2}`, "petal_length"},
		{"underscore before exponent", `{"sepal_length": 5.1, "sepal_width": 3.5, "petal_length": 1.4, "petal_width": "1_e2"}`, "petal_width"},
		{"null body", `null`, "JSON object"},
		{"array body", `[5.1, 3.5, 1.4, 0.2]`, "JSON object"},
		{"empty body", ``, "JSON object"},
		{"malformed", `{"sepal_length": 5.1,`, "JSON object"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseMeasurements([]byte(tc.body))
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.mention) {
				t.Fatalf("expected error to mention %q, got %q", tc.mention, err.Error())
			}
		})
	}
}

func TestLabel(t *testing.T) {
	for i, want := range []string{"Setosa", "Versicolor", "Virginica"} {
		got, ok := Label(i)
		if !ok || got != want {
			t.Fatalf("Label(%d) = %q, %v", i, got, ok)
		}
	}
	if _, ok := Label(3); ok {
		t.Fatal("index 3 must be out of range")
	}
	if _, ok := Label(-1); ok {
		t.Fatal("index -1 must be out of range")
	}
}

func TestNewPrediction(t *testing.T) {
	in := Measurements{SepalLength: 6.7, SepalWidth: 3.0, PetalLength: 5.2, PetalWidth: 2.3}
	p := NewPrediction(2, []float64{0, 0.1, 0.9}, in)
	if p.Prediction != "Virginica" || p.PredictionID != 2 {
		t.Fatalf("unexpected prediction: %+v", p)
	}
	if p.Confidence["Setosa"] != 0 || p.Confidence["Versicolor"] != 0.1 || p.Confidence["Virginica"] != 0.9 {
		t.Fatalf("unexpected confidence: %v", p.Confidence)
	}
	if p.Input != in {
		t.Fatalf("input not echoed: %+v", p.Input)
	}
}
