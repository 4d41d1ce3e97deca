package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clubarena/matchup/internal/middleware"
	"github.com/clubarena/matchup/internal/negotiation"
	"github.com/clubarena/matchup/internal/services"
	appErrors "github.com/clubarena/matchup/pkg/errors"
	"github.com/clubarena/matchup/pkg/response"
)

// ProposalRequest carries match terms submitted with a counter action.
// Domain rules (required location, duration bounds) are enforced by the
// negotiation machine so their failures surface as field errors.
type ProposalRequest struct {
	Date            *time.Time `json:"date"`
	Time            string     `json:"time" validate:"omitempty,max=16"`
	Location        string     `json:"location"`
	DurationMinutes *int       `json:"duration_minutes"`
	Message         string     `json:"message"`
}

func (r ProposalRequest) toProposal() negotiation.Proposal {
	return negotiation.Proposal{
		Date:            r.Date,
		TimeOfDay:       r.Time,
		Location:        r.Location,
		DurationMinutes: r.DurationMinutes,
		Message:         r.Message,
	}
}

// RejectRequest carries the optional reason attached to a rejection.
type RejectRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// ChallengeHandler exposes HTTP endpoints for the challenge lifecycle.
type ChallengeHandler struct {
	service *services.ChallengeService
	queries *services.ChallengeQueryService
}

// NewChallengeHandler constructs a ChallengeHandler.
func NewChallengeHandler(service *services.ChallengeService, queries *services.ChallengeQueryService) (*ChallengeHandler, error) {
	if service == nil || queries == nil {
		return nil, errors.New("challenge handler: service and queries are required")
	}
	return &ChallengeHandler{service: service, queries: queries}, nil
}

// Create issues a new challenge.
func (h *ChallengeHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req services.CreateChallengeInput
	if !bindAndValidate(c, &req) {
		return
	}

	challenge, err := h.service.Create(requestContext(c), userID, req)
	if err != nil {
		writeNegotiationError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, challenge)
}

// Get returns a single challenge.
func (h *ChallengeHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	challenge, err := h.service.Get(requestContext(c), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, challenge)
}

// Accept schedules the match on the terms currently proposed.
func (h *ChallengeHandler) Accept(c *gin.Context) {
	h.submit(c, negotiation.Accept{})
}

// Reject declines the challenge.
func (h *ChallengeHandler) Reject(c *gin.Context) {
	var req RejectRequest
	if !bindOptional(c, &req) {
		return
	}
	h.submit(c, negotiation.Reject{Reason: req.Reason})
}

// Counter proposes different terms back to the challenger.
func (h *ChallengeHandler) Counter(c *gin.Context) {
	var req ProposalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.submit(c, negotiation.Counter{Proposal: req.toProposal()})
}

// AcceptCounter accepts the opponent's counter-proposal.
func (h *ChallengeHandler) AcceptCounter(c *gin.Context) {
	h.submit(c, negotiation.AcceptCounter{})
}

// CounterAgain replaces the outstanding counter with new terms.
func (h *ChallengeHandler) CounterAgain(c *gin.Context) {
	var req ProposalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.submit(c, negotiation.CounterAgain{Proposal: req.toProposal()})
}

// Cancel withdraws the challenge.
func (h *ChallengeHandler) Cancel(c *gin.Context) {
	h.submit(c, negotiation.Cancel{})
}

// ListSent returns challenges issued by the team.
func (h *ChallengeHandler) ListSent(c *gin.Context) {
	h.list(c, true)
}

// ListReceived returns challenges received by the team.
func (h *ChallengeHandler) ListReceived(c *gin.Context) {
	h.list(c, false)
}

func (h *ChallengeHandler) list(c *gin.Context, sent bool) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := services.ChallengeFilter{
		Status:   c.Query("status"),
		Sport:    c.Query("sport"),
		Opponent: c.Query("opponent"),
		Cursor:   c.Query("cursor"),
		PageSize: parseIntQuery(c, "page_size", 0),
	}

	var (
		page *services.ChallengePage
		err  error
	)
	if sent {
		page, err = h.queries.ListSent(requestContext(c), userID, c.Param("teamId"), filter)
	} else {
		page, err = h.queries.ListReceived(requestContext(c), userID, c.Param("teamId"), filter)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, page.Challenges, &response.Meta{
		NextCursor: page.NextCursor,
		PageSize:   len(page.Challenges),
	})
}

func (h *ChallengeHandler) submit(c *gin.Context, action negotiation.Action) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	challenge, err := h.service.Submit(requestContext(c), userID, c.Param("id"), action)
	if err != nil {
		writeNegotiationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, challenge)
}

// bindOptional behaves like bindAndValidate but tolerates an empty body.
func bindOptional[T any](c *gin.Context, dest *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	return bindAndValidate(c, dest)
}

// writeNegotiationError maps machine errors onto the API error vocabulary:
// payload problems become field errors, illegal transitions become conflicts.
func writeNegotiationError(c *gin.Context, err error) {
	var fields negotiation.FieldErrors
	switch {
	case errors.As(err, &fields):
		response.FieldErrors(c, fields)
	case errors.Is(err, negotiation.ErrIllegalTransition):
		response.Error(c, appErrors.ErrConflict.WithMessage(strings.TrimSpace(err.Error())))
	default:
		response.Error(c, err)
	}
}
