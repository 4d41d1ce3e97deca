package api

import (
	"github.com/gin-gonic/gin"

	"github.com/clubarena/matchup/internal/handlers"
	"github.com/clubarena/matchup/internal/middleware"
	"github.com/clubarena/matchup/internal/permissions"
	"github.com/clubarena/matchup/internal/services"
)

func registerChallengeRoutes(api *gin.RouterGroup, opts Options, checker *permissions.Checker, notifications *services.NotificationService, audit *services.AuditService) error {
	service, err := services.NewChallengeService(opts.DB, checker, notifications, audit, opts.ResponseDeadlineDays)
	if err != nil {
		return err
	}
	queries, err := services.NewChallengeQueryService(opts.DB, checker, opts.PageSize, opts.ExpiringSoonDays)
	if err != nil {
		return err
	}
	handler, err := handlers.NewChallengeHandler(service, queries)
	if err != nil {
		return err
	}

	group := api.Group("/challenges")
	{
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)

		// Challenged side
		group.POST("/:id/accept", handler.Accept)
		group.POST("/:id/reject", handler.Reject)
		group.POST("/:id/counter", handler.Counter)

		// Challenger side
		group.POST("/:id/accept-counter", handler.AcceptCounter)
		group.POST("/:id/counter-again", handler.CounterAgain)
		group.POST("/:id/cancel", handler.Cancel)
	}

	lists := api.Group("/teams/:teamId/challenges", middleware.RequireTeamMember(checker))
	{
		lists.GET("/sent", handler.ListSent)
		lists.GET("/received", handler.ListReceived)
	}

	return nil
}
