package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type offerReq struct {
	PriceCents uint32 `json:"price_cents"`
}

type scheduleReq struct {
	ScheduledAt string `json:"scheduled_at"` // RFC 3339
}

// ListPendingRequests returns the discoverable pool: pending requests
// whose validity window has not yet passed.
func (h *RequestHandler) ListPendingRequests(c echo.Context) error {
	out, err := h.Lifecycle.FindPending(c.Request().Context())
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// OfferPrice counter-offers on a pending request, binding the technician.
func (h *RequestHandler) OfferPrice(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body offerReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.PriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents required"})
	}
	req, err := h.Lifecycle.OfferPrice(c.Request().Context(), id, uid, body.PriceCents)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

// ScheduleRequest sets the visit time on an accepted request. Only the
// technician bound to the request may schedule it.
func (h *RequestHandler) ScheduleRequest(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body scheduleReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	at, err := time.Parse(time.RFC3339, body.ScheduledAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_at must be RFC 3339"})
	}
	req, err := h.Lifecycle.Schedule(c.Request().Context(), id, uid, at)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

// AcceptAndSchedule is the technician shortcut: take a pending request at
// the client's asking price and schedule it immediately.
func (h *RequestHandler) AcceptAndSchedule(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	req, err := h.Lifecycle.AcceptByTechnician(c.Request().Context(), id, uid)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

// RejectRequest cancels a pending request on behalf of a technician.
func (h *RequestHandler) RejectRequest(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	req, err := h.Lifecycle.RejectByTechnician(c.Request().Context(), id, uid)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

// ListTechnicianRequests returns every request a technician touched.
// Technicians may only read their own history.
func (h *RequestHandler) ListTechnicianRequests(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	techID, err := pathID(c, "technicianId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid technician id"})
	}
	if techID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	out, err := h.Lifecycle.ListByTechnician(c.Request().Context(), techID)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
