// Package middleware assembles the echo middleware shared by every route.
package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Stack returns, outermost first: panic recovery, request ids, request
// logging, permissive CORS and a request body limit.
func Stack(log *zap.Logger, bodyLimit string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		echomw.RecoverWithConfig(echomw.RecoverConfig{
			LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
				log.Error("panic recovered", zap.Error(err), zap.ByteString("stack", stack))
				return err
			},
		}),
		echomw.RequestIDWithConfig(echomw.RequestIDConfig{
			Generator: uuid.NewString,
		}),
		RequestLogger(log),
		echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}),
		echomw.BodyLimit(bodyLimit),
	}
}
