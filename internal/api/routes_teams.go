package api

import (
	"github.com/gin-gonic/gin"

	"github.com/clubarena/matchup/internal/handlers"
	"github.com/clubarena/matchup/internal/services"
)

func registerTeamRoutes(api *gin.RouterGroup, opts Options) error {
	service, err := services.NewTeamService(opts.DB)
	if err != nil {
		return err
	}
	handler, err := handlers.NewTeamHandler(service)
	if err != nil {
		return err
	}

	teams := api.Group("/teams")
	{
		teams.POST("", handler.Create)
		teams.GET("", handler.List)
		teams.GET("/:teamId", handler.Get)
		teams.POST("/:teamId/members", handler.AddMember)
	}

	api.GET("/sports", handler.ListSports)
	return nil
}
