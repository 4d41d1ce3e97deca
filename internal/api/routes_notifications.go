package api

import (
	"github.com/gin-gonic/gin"

	"github.com/clubarena/matchup/internal/handlers"
	"github.com/clubarena/matchup/internal/services"
)

func registerNotificationRoutes(api *gin.RouterGroup, service *services.NotificationService) error {
	handler, err := handlers.NewNotificationHandler(service)
	if err != nil {
		return err
	}

	group := api.Group("/notifications")
	{
		group.GET("", handler.List)
		group.POST("/read-all", handler.MarkAllRead)
		group.POST("/:id/read", handler.MarkRead)
	}
	return nil
}
