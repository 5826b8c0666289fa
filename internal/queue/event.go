// Package queue defines message payloads exchanged over the message broker.
package queue

import "github.com/iliyamo/iris-prediction-api/internal/model"

// PredictionServedEvent is published after a prediction has been computed.
// It carries the full response so consumers can audit or analyse traffic
// without calling the API again.
type PredictionServedEvent struct {
	EventID      string             `json:"event_id"`
	RequestID    string             `json:"request_id,omitempty"`
	Prediction   string             `json:"prediction"`
	PredictionID int                `json:"prediction_id"`
	Confidence   map[string]float64 `json:"confidence"`
	Input        model.Measurements `json:"input"`
	Model        string             `json:"model"`
	CacheHit     bool               `json:"cache_hit"`
	ServedAt     string             `json:"served_at"`
}
