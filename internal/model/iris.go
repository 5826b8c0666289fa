// Package model defines the request and response payloads of the prediction API.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ClassNames maps a class index returned by the classifier to a species name.
var ClassNames = [...]string{"Setosa", "Versicolor", "Virginica"}

// FeatureNames lists the request fields in vector order.
var FeatureNames = [...]string{"sepal_length", "sepal_width", "petal_length", "petal_width"}

// ErrInvalidRequest marks every failure to turn a request body into Measurements.
var ErrInvalidRequest = errors.New("invalid request")

// Measurements is the feature vector of one flower, in centimetres.
type Measurements struct {
	SepalLength float64 `json:"sepal_length"`
	SepalWidth  float64 `json:"sepal_width"`
	PetalLength float64 `json:"petal_length"`
	PetalWidth  float64 `json:"petal_width"`
}

// Vector returns the measurements in FeatureNames order.
func (m Measurements) Vector() []float64 {
	return []float64{m.SepalLength, m.SepalWidth, m.PetalLength, m.PetalWidth}
}

// Prediction is the body of a successful POST /predict.
type Prediction struct {
	Prediction   string             `json:"prediction"`
	PredictionID int                `json:"prediction_id"`
	Confidence   map[string]float64 `json:"confidence"`
	Input        Measurements       `json:"input"`
}

// Label returns the species name for a class index.
func Label(idx int) (string, bool) {
	if idx < 0 || idx >= len(ClassNames) {
		return "", false
	}
	return ClassNames[idx], true
}

// NewPrediction assembles the response for class idx with one probability
// per entry of ClassNames. Callers check idx and len(proba) beforehand.
func NewPrediction(idx int, proba []float64, in Measurements) Prediction {
	confidence := make(map[string]float64, len(ClassNames))
	for i, name := range ClassNames {
		confidence[name] = proba[i]
	}
	return Prediction{
		Prediction:   ClassNames[idx],
		PredictionID: idx,
		Confidence:   confidence,
		Input:        in,
	}
}

// ParseMeasurements decodes a JSON object holding the four FeatureNames.
// Each value may be a number, a numeric string or a boolean; anything else,
// a missing key, or a value that is not finite is rejected.
func ParseMeasurements(body []byte) (Measurements, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Measurements{}, fmt.Errorf("%w: body must be a JSON object: %v", ErrInvalidRequest, err)
	}
	if fields == nil {
		return Measurements{}, fmt.Errorf("%w: body must be a JSON object", ErrInvalidRequest)
	}

	var values [len(FeatureNames)]float64
	for i, name := range FeatureNames {
		raw, ok := fields[name]
		if !ok {
			return Measurements{}, fmt.Errorf("%w: missing field %q", ErrInvalidRequest, name)
		}
		v, err := toFloat(raw)
		if err != nil {
			return Measurements{}, fmt.Errorf("%w: field %q: %v", ErrInvalidRequest, name, err)
		}
		values[i] = v
	}
	return Measurements{
		SepalLength: values[0],
		SepalWidth:  values[1],
		PetalLength: values[2],
		PetalWidth:  values[3],
	}, nil
}

func toFloat(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	var v float64
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return 0, errors.New("value is null")
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		f, err := parseDecimal(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to float", s)
		}
		v = f
	case bytes.Equal(raw, []byte("true")):
		v = 1
	case bytes.Equal(raw, []byte("false")):
		v = 0
	case raw[0] == '[' || raw[0] == '{':
		return 0, errors.New("value must be a number")
	default:
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, fmt.Errorf("cannot convert %s to float", raw)
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %v is not finite", v)
	}
	return v, nil
}

// parseDecimal accepts decimal literals only. Hex floats are rejected and
// underscores are allowed singly between digits ("1_000.5").
func parseDecimal(s string) (float64, error) {
	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) > 1 {
		return 0, strconv.ErrSyntax
	}
	if len(body) > 1 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		return 0, strconv.ErrSyntax
	}
	if strings.Contains(s, "_") {
		for i := 0; i < len(s); i++ {
			if s[i] != '_' {
				continue
			}
			if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
				return 0, strconv.ErrSyntax
			}
		}
		s = strings.ReplaceAll(s, "_", "")
	}
	return strconv.ParseFloat(s, 64)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
