package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/myhometech/backend/internal/queue"
	"github.com/myhometech/backend/internal/service"
)

// CreateRequest opens a new pending request for the authenticated client.
func (h *RequestHandler) CreateRequest(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in service.CreateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if in.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description required"})
	}
	if in.ClientPriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_price_cents required"})
	}
	req, err := h.Lifecycle.Create(c.Request().Context(), uid, in)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusCreated, req)
}

// AcceptRequest lets the owning client accept their request, either
// settling on a technician's offer or on their own asking price.
func (h *RequestHandler) AcceptRequest(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	req, err := h.Lifecycle.Accept(c.Request().Context(), id, uid)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

// CompleteRequest lets the owning client close out a scheduled job. A
// completion event is published for downstream consumers; publish failures
// are logged and never fail the request.
func (h *RequestHandler) CompleteRequest(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	req, err := h.Lifecycle.CompleteByClient(c.Request().Context(), id, uid)
	if err != nil {
		return lifecycleError(c, err)
	}

	ev := queue.RequestCompletedEvent{
		RequestID:            req.ID,
		ClientID:             req.ClientID,
		ApplianceID:          req.ApplianceID,
		Description:          req.Description,
		ClientPriceCents:     req.ClientPriceCents,
		TechnicianPriceCents: req.TechnicianPriceCents,
	}
	if req.TechnicianID != nil {
		ev.TechnicianID = *req.TechnicianID
	}
	if req.CompletedAt != nil {
		ev.CompletedAt = req.CompletedAt.Format(time.RFC3339)
	}
	if err := queue.PublishRequestCompleted(c.Request().Context(), ev); err != nil {
		log.Printf("complete request %d: publish event failed: %v", req.ID, err)
	}

	return c.JSON(http.StatusOK, req)
}

// ListClientRequests returns every request created by the client in the
// path. Clients may only read their own history.
func (h *RequestHandler) ListClientRequests(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	clientID, err := pathID(c, "clientId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	if clientID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	out, err := h.Lifecycle.ListByClient(c.Request().Context(), clientID)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
