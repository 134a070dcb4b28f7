package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myhometech/backend/internal/model"
	"github.com/myhometech/backend/internal/repository"
)

// HelpTicketHandler serves the support ticket endpoints, shared by both
// roles.
type HelpTicketHandler struct {
	Tickets *repository.HelpTicketRepo
}

func NewHelpTicketHandler(t *repository.HelpTicketRepo) *HelpTicketHandler {
	return &HelpTicketHandler{Tickets: t}
}

type ticketReq struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Create opens a ticket for the caller.
func (h *HelpTicketHandler) Create(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body ticketReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.Subject == "" || body.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject/message required"})
	}
	t := model.HelpTicket{UserID: uid, Subject: body.Subject, Message: body.Message}
	if err := h.Tickets.Create(c.Request().Context(), &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ticket failed"})
	}
	return c.JSON(http.StatusCreated, t)
}

// ListMine returns the caller's tickets.
func (h *HelpTicketHandler) ListMine(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	out, err := h.Tickets.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tickets failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// Close marks one of the caller's open tickets as closed.
func (h *HelpTicketHandler) Close(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	t, err := h.Tickets.Close(c.Request().Context(), id, uid)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "ticket belongs to another user"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "ticket already closed"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "close ticket failed"})
		}
	}
	return c.JSON(http.StatusOK, t)
}
