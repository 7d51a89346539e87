package handler // declare the package name; contains HTTP handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Root answers the API root with liveness metadata and a pointer to the
// docs.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "API is alive",
		"status":    "ok",
		"version":   "1.0.0",
		"docs":      "https://docs.blog-api.classless.com",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
