package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubarena/matchup/internal/middleware"
	"github.com/clubarena/matchup/internal/services"
	appErrors "github.com/clubarena/matchup/pkg/errors"
	"github.com/clubarena/matchup/pkg/response"
)

// TeamHandler exposes HTTP endpoints for teams and sports.
type TeamHandler struct {
	service *services.TeamService
}

// NewTeamHandler constructs a TeamHandler.
func NewTeamHandler(service *services.TeamService) (*TeamHandler, error) {
	if service == nil {
		return nil, errors.New("team handler: service is required")
	}
	return &TeamHandler{service: service}, nil
}

// Create registers a new team with the caller as captain.
func (h *TeamHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req services.CreateTeamInput
	if !bindAndValidate(c, &req) {
		return
	}

	team, err := h.service.Create(requestContext(c), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, team)
}

// List returns the caller's teams.
func (h *TeamHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	teams, err := h.service.ListForUser(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, teams)
}

// Get returns a single team with its roster.
func (h *TeamHandler) Get(c *gin.Context) {
	team, err := h.service.Get(requestContext(c), c.Param("teamId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, team)
}

// AddMember adds a user to the team roster.
func (h *TeamHandler) AddMember(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req services.AddMemberInput
	if !bindAndValidate(c, &req) {
		return
	}

	member, err := h.service.AddMember(requestContext(c), userID, c.Param("teamId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, member)
}

// ListSports returns the sports catalogue.
func (h *TeamHandler) ListSports(c *gin.Context) {
	sports, err := h.service.ListSports(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, sports)
}
