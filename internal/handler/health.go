package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness probes with a plain "ok".  It touches neither
// the database nor the broker, so it only reports that the process serves.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
