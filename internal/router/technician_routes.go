package router

import (
	"github.com/labstack/echo/v4"

	"github.com/myhometech/backend/internal/handler"
	"github.com/myhometech/backend/internal/middleware"
)

// RegisterTechnician registers technician-scoped endpoints under /v1. All
// routes require a valid JWT and the TECHNICIAN role. Technicians browse
// the pending pool, counter-offer, schedule accepted jobs, take requests
// directly or reject them.
func RegisterTechnician(e *echo.Echo, req *handler.RequestHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("TECHNICIAN"),
	)

	// The pending pool is never cached: its expiry filter must be evaluated
	// against "now" on every read.
	g.GET("/service-requests/pending", req.ListPendingRequests)
	g.POST("/service-requests/:id/offer", req.OfferPrice)
	g.POST("/service-requests/:id/schedule", req.ScheduleRequest)
	g.POST("/service-requests/:id/accept-and-schedule", req.AcceptAndSchedule)
	g.POST("/service-requests/:id/reject", req.RejectRequest)
	g.GET("/service-requests/technician/:technicianId", req.ListTechnicianRequests)
}
