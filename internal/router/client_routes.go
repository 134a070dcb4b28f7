package router

import (
	"github.com/labstack/echo/v4"

	"github.com/myhometech/backend/internal/handler"
	"github.com/myhometech/backend/internal/middleware"
)

// RegisterClient registers client-scoped endpoints under /v1. All routes
// require a valid JWT and the CLIENT role. Clients open requests, accept
// offers, complete jobs, rate technicians and manage their appliance
// catalog.
func RegisterClient(e *echo.Echo, req *handler.RequestHandler, app *handler.ApplianceHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CLIENT"),
	)

	g.POST("/service-requests", req.CreateRequest)
	g.POST("/service-requests/:id/accept", req.AcceptRequest)
	g.POST("/service-requests/:id/complete", req.CompleteRequest)
	g.POST("/service-requests/:id/rating", req.RateRequest)
	g.GET("/service-requests/client/:clientId", req.ListClientRequests)

	g.POST("/appliances", app.Create)
	g.GET("/appliances", app.List)
	g.GET("/appliances/:id", app.Get)
	g.PUT("/appliances/:id", app.Update)
	g.DELETE("/appliances/:id", app.Delete)
}
