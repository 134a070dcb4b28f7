package router

import (
	"github.com/labstack/echo/v4"

	"github.com/myhometech/backend/internal/handler"
	"github.com/myhometech/backend/internal/middleware"
)

// RegisterShared registers endpoints open to both roles: request lookup,
// technician rating summaries and help tickets. cache may be nil when no
// Redis client is configured; it is applied per-route only to the rating
// read, which tolerates a short staleness window.
func RegisterShared(e *echo.Echo, req *handler.RequestHandler, tickets *handler.HelpTicketHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CLIENT", "TECHNICIAN"),
	)

	g.GET("/service-requests/:id", req.GetRequest)

	if cache != nil {
		g.GET("/technicians/:id/ratings", req.ListTechnicianRatings, cache)
	} else {
		g.GET("/technicians/:id/ratings", req.ListTechnicianRatings)
	}

	g.POST("/help-tickets", tickets.Create)
	g.GET("/help-tickets", tickets.ListMine)
	g.POST("/help-tickets/:id/close", tickets.Close)
}
