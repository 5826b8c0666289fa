package handler // package handler contains the HTTP handlers of the prediction API

import (
	"errors"   // errors unwraps echo.HTTPError values
	"fmt"      // fmt renders HTTPError messages of any type
	"net/http" // net/http provides status codes

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
	"go.uber.org/zap"             // zap is the structured logger
)

// ErrorHandler renders every error escaping a handler or middleware as
// {"error": msg}, keeping the status of echo.HTTPError values and using 500
// for anything else. It replaces echo's default {"message": msg} body so
// routing, body limit and recovered panics share one error shape.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed { // a handler already wrote its own response
			return
		}

		code := http.StatusInternalServerError // unknown errors are server errors
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) { // 404, 405, 413 and friends carry their own status
			code = he.Code
			msg = fmt.Sprint(he.Message)
			if he.Internal != nil {
				log.Debug("internal error", zap.Error(he.Internal))
			}
		}
		if code >= http.StatusInternalServerError { // only server faults are logged at error level
			log.Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		}

		if c.Request().Method == http.MethodHead { // HEAD responses carry no body
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"error": msg})
		}
		if err != nil {
			log.Error("write error response", zap.Error(err))
		}
	}
}
