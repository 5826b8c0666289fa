// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/iris-prediction-api/internal/config"
	"github.com/iliyamo/iris-prediction-api/internal/handler"
	"github.com/iliyamo/iris-prediction-api/internal/middleware"
)

// New builds the echo instance: error rendering, the shared middleware stack
// and every route.
func New(h *handler.PredictHandler, log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(middleware.Stack(log, config.BodyLimit)...)
	RegisterRoutes(e, h)
	return e
}

// RegisterRoutes maps the usage page, the prediction endpoint and the health
// check. None of them require authentication.
func RegisterRoutes(e *echo.Echo, h *handler.PredictHandler) {
	e.GET("/", handler.Home)
	e.POST("/predict", h.Predict)
	e.GET("/healthz", h.Health)
}
