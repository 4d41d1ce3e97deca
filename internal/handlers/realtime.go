package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/clubarena/matchup/internal/auth"
	"github.com/clubarena/matchup/internal/realtime"
	appErrors "github.com/clubarena/matchup/pkg/errors"
	"github.com/clubarena/matchup/pkg/response"
)

// RealtimeHandler upgrades authenticated clients onto the websocket hub.
type RealtimeHandler struct {
	hub *realtime.Hub
	jwt *iauth.JWTService
}

// NewRealtimeHandler constructs a RealtimeHandler.
func NewRealtimeHandler(hub *realtime.Hub, jwt *iauth.JWTService) (*RealtimeHandler, error) {
	if hub == nil || jwt == nil {
		return nil, errors.New("realtime handler: hub and jwt service are required")
	}
	return &RealtimeHandler{hub: hub, jwt: jwt}, nil
}

// Serve authenticates the connection and hands it to the hub. Browsers
// cannot set headers on websocket dials, so the token travels as a query
// parameter.
func (h *RealtimeHandler) Serve(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	h.hub.Serve(claims.UserID, c.Writer, c.Request)
}
