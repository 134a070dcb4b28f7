package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/myhometech/backend/internal/repository"
	"github.com/myhometech/backend/internal/service"
)

// RequestHandler serves the service-request endpoints for both roles. All
// lifecycle decisions live in service.RequestLifecycle; this layer only
// binds input, resolves the actor from JWT claims and maps errors to HTTP.
type RequestHandler struct {
	Lifecycle *service.RequestLifecycle
	Ratings   *repository.RatingRepo
}

func NewRequestHandler(l *service.RequestLifecycle, ratings *repository.RatingRepo) *RequestHandler {
	return &RequestHandler{Lifecycle: l, Ratings: ratings}
}

// actorID extracts the authenticated user's ID set by the JWT middleware.
// Numeric JWT claims decode as float64.
func actorID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	case int64:
		return uint64(v), true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// pathID parses the :id route parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// lifecycleError translates the lifecycle failure taxonomy to HTTP.
func lifecycleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
	case errors.Is(err, service.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "request belongs to another user"})
	case errors.Is(err, service.ErrInvalidStatus):
		return c.JSON(http.StatusConflict, echo.Map{"error": "request status does not allow this operation"})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "request was modified concurrently, retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// GetRequest returns a single request by id. Both roles may look up any
// request; visibility is not restricted to participants.
func (h *RequestHandler) GetRequest(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	req, err := h.Lifecycle.GetByID(c.Request().Context(), id)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}
