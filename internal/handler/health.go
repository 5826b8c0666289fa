package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running. It also reports
// the fingerprint and class names of the loaded artifact.
func (h *PredictHandler) Health(c echo.Context) error { // Health accepts an echo context and returns an error
	return c.JSON(http.StatusOK, echo.Map{ // write a small JSON document with a 200 OK status
		"status":  "ok",                // the process is up and the model is loaded
		"model":   h.Model.Fingerprint, // sha1 of the artifact in use
		"classes": h.Model.Classes,     // class names in index order
	})
}
