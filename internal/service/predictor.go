// Package service runs inference for the HTTP layer and fans results out to
// the optional prediction cache and event queue.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/iris-prediction-api/internal/cache"
	"github.com/iliyamo/iris-prediction-api/internal/model"
	q "github.com/iliyamo/iris-prediction-api/internal/queue"
)

// ErrClassOutOfRange is returned when the classifier produces a class index
// or probability vector that does not fit model.ClassNames. It signals a
// faulty artifact, not a bad request.
var ErrClassOutOfRange = errors.New("model returned a class outside the label table")

const publishTimeout = 5 * time.Second

// Classifier is the read-only view of a loaded model.
type Classifier interface {
	Predict(features []float64) (int, error)
	PredictProba(features []float64) ([]float64, error)
}

// EventPublisher delivers prediction events.
type EventPublisher interface {
	Publish(ctx context.Context, ev q.PredictionServedEvent) error
}

// Options wires the optional collaborators of a Predictor.
type Options struct {
	Fingerprint string         // identifies the model in cache keys and events
	CachePrefix string         // defaults to "iris"
	Cache       cache.Store    // nil disables caching
	Events      EventPublisher // nil disables events
	Log         *zap.Logger    // nil discards logs
}

// Predictor maps measurements to a labelled prediction.
type Predictor struct {
	clf  Classifier
	opts Options
	log  *zap.Logger

	inflight sync.WaitGroup
}

// NewPredictor panics if clf is nil.
func NewPredictor(clf Classifier, opts Options) *Predictor {
	if clf == nil {
		panic("nil classifier passed to NewPredictor")
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	if opts.CachePrefix == "" {
		opts.CachePrefix = "iris"
	}
	return &Predictor{clf: clf, opts: opts, log: log}
}

type requestIDKey struct{}

// WithRequestID attaches the HTTP request id that is copied into events.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Predict classifies m. Classifier errors are returned unchanged; a class
// index or probability vector that does not match the label table yields an
// error wrapping ErrClassOutOfRange.
func (p *Predictor) Predict(ctx context.Context, m model.Measurements) (model.Prediction, error) {
	features := m.Vector()

	var key string
	if p.opts.Cache != nil {
		key = cache.Key(p.opts.CachePrefix, p.opts.Fingerprint, features)
		if bs, ok := p.opts.Cache.Get(ctx, key); ok {
			var cached model.Prediction
			if err := json.Unmarshal(bs, &cached); err == nil {
				p.publish(ctx, cached, true)
				return cached, nil
			}
			p.log.Warn("discarding undecodable cache entry", zap.String("key", key))
		}
	}

	idx, err := p.clf.Predict(features)
	if err != nil {
		return model.Prediction{}, err
	}
	proba, err := p.clf.PredictProba(features)
	if err != nil {
		return model.Prediction{}, err
	}
	if _, ok := model.Label(idx); !ok {
		return model.Prediction{}, fmt.Errorf("%w: index %d", ErrClassOutOfRange, idx)
	}
	if len(proba) != len(model.ClassNames) {
		return model.Prediction{}, fmt.Errorf("%w: %d probabilities for %d classes", ErrClassOutOfRange, len(proba), len(model.ClassNames))
	}

	pred := model.NewPrediction(idx, proba, m)
	if p.opts.Cache != nil {
		if bs, err := json.Marshal(pred); err == nil {
			p.opts.Cache.Set(ctx, key, bs)
		}
	}
	p.publish(ctx, pred, false)
	return pred, nil
}

// Wait blocks until every event publish started so far has finished.
func (p *Predictor) Wait() {
	p.inflight.Wait()
}

func (p *Predictor) publish(ctx context.Context, pred model.Prediction, cacheHit bool) {
	if p.opts.Events == nil {
		return
	}
	ev := q.PredictionServedEvent{
		EventID:      uuid.NewString(),
		RequestID:    requestID(ctx),
		Prediction:   pred.Prediction,
		PredictionID: pred.PredictionID,
		Confidence:   pred.Confidence,
		Input:        pred.Input,
		Model:        p.opts.Fingerprint,
		CacheHit:     cacheHit,
		ServedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		pctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.opts.Events.Publish(pctx, ev); err != nil {
			p.log.Warn("prediction event not published", zap.String("event_id", ev.EventID), zap.Error(err))
		}
	}()
}
