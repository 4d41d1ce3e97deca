package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/clubarena/matchup/internal/permissions"
	"github.com/clubarena/matchup/pkg/errors"
	"github.com/clubarena/matchup/pkg/metrics"
	"github.com/clubarena/matchup/pkg/response"
)

// RequireTeamMember checks that the authenticated user belongs to the team
// named by the :teamId route parameter.
func RequireTeamMember(checker *permissions.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUserIDKey)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		userID, _ := v.(string)

		teamID := c.Param("teamId")
		if teamID == "" {
			response.Error(c, errors.ErrBadRequest.WithMessage("team id is required"))
			c.Abort()
			return
		}

		member, err := checker.IsMember(c.Request.Context(), userID, teamID)
		if err != nil {
			metrics.PermissionChecks.WithLabelValues("error").Inc()
			response.Error(c, errors.ErrInternalServer)
			c.Abort()
			return
		}
		if !member {
			metrics.PermissionChecks.WithLabelValues("denied").Inc()
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		metrics.PermissionChecks.WithLabelValues("allowed").Inc()
		c.Next()
	}
}
