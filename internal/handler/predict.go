package handler // package handler contains the HTTP handlers of the prediction API

import (
	"errors"   // errors matches sentinel errors from the service layer
	"io"       // io reads the raw request body
	"net/http" // net/http provides status codes

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
	"go.uber.org/zap"             // zap is the structured logger

	"github.com/iliyamo/iris-prediction-api/internal/model"   // request parsing and response shapes
	"github.com/iliyamo/iris-prediction-api/internal/service" // prediction orchestration
)

// ModelInfo describes the loaded artifact for the health endpoint.
type ModelInfo struct {
	Fingerprint string   // sha1 of the artifact bytes
	Classes     []string // class names in index order
}

// PredictHandler serves inference requests against a single loaded model.
// The model is loaded once at startup and shared read-only by every request.
type PredictHandler struct {
	Predictor *service.Predictor // runs the classifier, cache and events
	Model     ModelInfo          // reported by /healthz
	Log       *zap.Logger        // request-independent logging
}

// NewPredictHandler constructs a PredictHandler. It panics if predictor is
// nil and substitutes a no-op logger when log is nil.
func NewPredictHandler(predictor *service.Predictor, info ModelInfo, log *zap.Logger) *PredictHandler {
	if predictor == nil { // a handler without a predictor can never answer
		panic("nil predictor passed to NewPredictHandler")
	}
	if log == nil { // tests and tools may omit logging
		log = zap.NewNop()
	}
	return &PredictHandler{Predictor: predictor, Model: info, Log: log} // return the assembled handler
}

// Predict handles POST /predict. Bad input and classifier failures answer 400;
// a class index outside the label table answers 500. Both use {"error": msg}.
func (h *PredictHandler) Predict(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body) // read the whole body; BodyLimit caps its size
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) { // the body limit reader reports 413 as an HTTPError
			return he
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()}) // any other read failure is the client's
	}

	m, err := model.ParseMeasurements(body) // decode and coerce the four measurements
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()}) // the message names the bad field
	}

	// propagate the request id so published events can be correlated with access logs
	ctx := service.WithRequestID(c.Request().Context(), c.Response().Header().Get(echo.HeaderXRequestID))
	pred, err := h.Predictor.Predict(ctx, m) // classify, consulting the cache when enabled
	switch {
	case errors.Is(err, service.ErrClassOutOfRange): // the artifact disagrees with the label table
		h.Log.Error("model produced an unusable result", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	case err != nil: // every other inference failure is reported as a bad request
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, pred) // prediction, prediction_id, confidence and input
}
