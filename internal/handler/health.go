package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports process liveness. It intentionally does not touch the
// database or broker; orchestration probes should stay cheap.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
