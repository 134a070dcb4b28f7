package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myhometech/backend/internal/model"
	"github.com/myhometech/backend/internal/repository"
)

// ApplianceHandler serves the client appliance catalog.
type ApplianceHandler struct {
	Appliances *repository.ApplianceRepo
}

func NewApplianceHandler(a *repository.ApplianceRepo) *ApplianceHandler {
	return &ApplianceHandler{Appliances: a}
}

type applianceReq struct {
	Name  string `json:"name"`
	Brand string `json:"brand"`
	Model string `json:"model"`
	Notes string `json:"notes"`
}

// Create adds an appliance to the caller's catalog.
func (h *ApplianceHandler) Create(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body applianceReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	a := model.Appliance{
		ClientID: uid,
		Name:     body.Name,
		Brand:    body.Brand,
		Model:    body.Model,
		Notes:    body.Notes,
	}
	if err := h.Appliances.Create(c.Request().Context(), &a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create appliance failed"})
	}
	return c.JSON(http.StatusCreated, a)
}

// List returns the caller's catalog.
func (h *ApplianceHandler) List(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	out, err := h.Appliances.ListByClient(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list appliances failed"})
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one appliance owned by the caller. Appliances belonging to
// other clients are indistinguishable from missing ones.
func (h *ApplianceHandler) Get(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	a, err := h.Appliances.GetForClient(c.Request().Context(), id, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appliance not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get appliance failed"})
	}
	return c.JSON(http.StatusOK, a)
}

// Update rewrites the descriptive fields of an appliance.
func (h *ApplianceHandler) Update(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body applianceReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	a := model.Appliance{
		ID:       id,
		ClientID: uid,
		Name:     body.Name,
		Brand:    body.Brand,
		Model:    body.Model,
		Notes:    body.Notes,
	}
	if err := h.Appliances.Update(c.Request().Context(), &a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appliance not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update appliance failed"})
	}
	return c.JSON(http.StatusOK, a)
}

// Delete removes an appliance from the caller's catalog.
func (h *ApplianceHandler) Delete(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Appliances.Delete(c.Request().Context(), id, uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appliance not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete appliance failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
