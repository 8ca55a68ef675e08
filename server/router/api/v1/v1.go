// Package v1 exposes the slash-command webhook surface.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/getwhereabouts/whereabouts/internal/profile"
	"github.com/getwhereabouts/whereabouts/server/middleware"
	"github.com/getwhereabouts/whereabouts/server/service/status"
)

// APIV1Service holds the v1 route handlers.
type APIV1Service struct {
	profile *profile.Profile
	status  *status.Service
	limiter *middleware.RateLimiter
}

// NewAPIV1Service creates the v1 API surface.
func NewAPIV1Service(profile *profile.Profile, statusService *status.Service) *APIV1Service {
	return &APIV1Service{
		profile: profile,
		status:  statusService,
		limiter: middleware.NewRateLimiter(),
	}
}

// RegisterRoutes attaches the v1 routes to the echo server.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.GET("/healthz", s.Healthz)

	apiV1Group := echoServer.Group("/api/v1")
	apiV1Group.POST("/command", s.HandleCommand, s.VerifySlackRequest)
}

// Healthz is the liveness probe.
func (*APIV1Service) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
