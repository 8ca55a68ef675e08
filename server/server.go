// Package server assembles the HTTP surface and the background workers.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/getwhereabouts/whereabouts/internal/profile"
	"github.com/getwhereabouts/whereabouts/plugin/naturaldate"
	"github.com/getwhereabouts/whereabouts/plugin/slack"
	apiv1 "github.com/getwhereabouts/whereabouts/server/router/api/v1"
	"github.com/getwhereabouts/whereabouts/server/runner/dailydigest"
	"github.com/getwhereabouts/whereabouts/server/service/status"
	"github.com/getwhereabouts/whereabouts/store"
)

// Server owns the echo instance and the background runners.
type Server struct {
	echoServer *echo.Echo
	profile    *profile.Profile
	store      *store.Store

	writer *status.Writer
	digest *dailydigest.Runner
}

// NewServer wires the parser, writer, command service, routes and runners.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string {
			return uuid.New().String()
		},
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			slog.Info("request",
				"method", c.Request().Method,
				"uri", v.URI,
				"status", v.Status,
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			return nil
		},
	}))

	parser := naturaldate.NewParser(profile.Location())
	slackClient := slack.NewClient(profile.SlackWebhookURL)
	writer := status.NewWriter(store, parser, 64)
	statusService := status.NewService(store, parser, writer, slackClient, profile.Version)

	apiv1.NewAPIV1Service(profile, statusService).RegisterRoutes(e)

	s := &Server{
		echoServer: e,
		profile:    profile,
		store:      store,
		writer:     writer,
		digest:     dailydigest.NewRunner(profile, statusService, slackClient),
	}
	return s, nil
}

// Start serves HTTP and runs the background workers until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		s.writer.Run(ctx)
		return nil
	})
	group.Go(func() error {
		s.digest.Run(ctx)
		return nil
	})
	group.Go(func() error {
		address := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
		slog.Info("server listening", "address", address)
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "failed to start echo server")
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echoServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// Shutdown releases resources held by the server.
func (s *Server) Shutdown() {
	if err := s.store.Close(); err != nil {
		slog.Error("failed to close store", "err", err)
	}
	slog.Info("server shutdown complete")
}
