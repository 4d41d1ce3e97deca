package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/clubarena/matchup/internal/auth"
	"github.com/clubarena/matchup/internal/handlers"
	"github.com/clubarena/matchup/internal/middleware"
	"github.com/clubarena/matchup/internal/permissions"
	"github.com/clubarena/matchup/internal/realtime"
	"github.com/clubarena/matchup/internal/services"
)

// Options carries the collaborators and tunables the router needs.
type Options struct {
	DB  *gorm.DB
	JWT *iauth.JWTService
	Hub *realtime.Hub

	ResponseDeadlineDays int
	ExpiringSoonDays     int
	PageSize             int
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(opts Options) (*gin.Engine, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if opts.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.NoRoute(middleware.NotFoundHandler)

	// Public endpoints
	r.GET("/health", handlers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler, err := handlers.NewAuthHandler(opts.DB, opts.JWT)
	if err != nil {
		return nil, err
	}
	r.POST("/api/auth/login", authHandler.Login)

	// Shared collaborators
	checker, err := permissions.NewChecker(opts.DB)
	if err != nil {
		return nil, err
	}
	notifications, err := services.NewNotificationService(opts.DB, opts.Hub)
	if err != nil {
		return nil, err
	}
	audit, err := services.NewAuditService(opts.DB)
	if err != nil {
		return nil, err
	}

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(opts.JWT))

	api.GET("/auth/me", authHandler.Me)

	if err := registerChallengeRoutes(api, opts, checker, notifications, audit); err != nil {
		return nil, err
	}
	if err := registerTeamRoutes(api, opts); err != nil {
		return nil, err
	}
	if err := registerNotificationRoutes(api, notifications); err != nil {
		return nil, err
	}

	if opts.Hub != nil {
		realtimeHandler, err := handlers.NewRealtimeHandler(opts.Hub, opts.JWT)
		if err != nil {
			return nil, err
		}
		// Websocket clients authenticate via query token, not headers.
		r.GET("/api/ws", realtimeHandler.Serve)
	}

	return r, nil
}
