package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myhometech/backend/internal/model"
	"github.com/myhometech/backend/internal/repository"
)

type rateReq struct {
	Score   uint8  `json:"score"` // 1..5
	Comment string `json:"comment"`
}

// RateRequest lets the owning client rate the technician after a request
// is completed. One rating per request; repeats return 409.
func (h *RequestHandler) RateRequest(c echo.Context) error {
	uid, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body rateReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.Score < 1 || body.Score > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "score must be between 1 and 5"})
	}

	ctx := c.Request().Context()
	req, err := h.Lifecycle.GetByID(ctx, id)
	if err != nil {
		return lifecycleError(c, err)
	}
	if req.ClientID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "request belongs to another client"})
	}
	if req.Status != model.StatusCompleted {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only completed requests can be rated"})
	}
	if req.TechnicianID == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "request has no technician to rate"})
	}

	rating := model.Rating{
		RequestID:    req.ID,
		ClientID:     uid,
		TechnicianID: *req.TechnicianID,
		Score:        body.Score,
		Comment:      body.Comment,
	}
	if err := h.Ratings.Create(ctx, &rating); err != nil {
		if errors.Is(err, repository.ErrAlreadyRated) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "request already rated"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create rating failed"})
	}
	return c.JSON(http.StatusCreated, rating)
}

// ListTechnicianRatings returns a technician's ratings with their average
// score. Visible to any authenticated user; clients use it to vet
// technicians before accepting an offer.
func (h *RequestHandler) ListTechnicianRatings(c echo.Context) error {
	techID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid technician id"})
	}
	ratings, avg, err := h.Ratings.ListByTechnician(c.Request().Context(), techID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list ratings failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"technician_id": techID,
		"average":       avg,
		"count":         len(ratings),
		"ratings":       ratings,
	})
}
