package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clubarena/matchup/internal/models"
	"github.com/clubarena/matchup/internal/negotiation"
	"github.com/clubarena/matchup/internal/permissions"
	apperrors "github.com/clubarena/matchup/pkg/errors"
	"github.com/clubarena/matchup/pkg/logger"
	"github.com/clubarena/matchup/pkg/metrics"
)

// CreateChallengeInput defines attributes required to issue a new challenge.
type CreateChallengeInput struct {
	ChallengerTeamID string     `json:"challenger_team_id" validate:"required,uuid4"`
	ChallengedTeamID string     `json:"challenged_team_id" validate:"required,uuid4"`
	ProposedDate     *time.Time `json:"proposed_date"`
	ProposedTime     string     `json:"proposed_time" validate:"omitempty,max=16"`
	ProposedLocation string     `json:"proposed_location" validate:"required"`
	DurationMinutes  *int       `json:"duration_minutes"`
	Message          string     `json:"message"`
}

// ChallengeService owns the challenge lifecycle: creation, negotiation
// dispatch and retrieval. Every state change goes through the negotiation
// machine and is written with a version guard.
type ChallengeService struct {
	db            *gorm.DB
	checker       *permissions.Checker
	notifications *NotificationService
	audit         *AuditService
	deadlineDays  int
	log           *zap.Logger
}

// NewChallengeService constructs a ChallengeService. Notifications and audit
// are optional collaborators; deadlineDays controls how long the challenged
// team has to respond.
func NewChallengeService(db *gorm.DB, checker *permissions.Checker, notifications *NotificationService, audit *AuditService, deadlineDays int) (*ChallengeService, error) {
	if db == nil {
		return nil, errors.New("challenge service: db is required")
	}
	if checker == nil {
		return nil, errors.New("challenge service: permission checker is required")
	}
	if deadlineDays <= 0 {
		deadlineDays = 7
	}
	return &ChallengeService{
		db:            db,
		checker:       checker,
		notifications: notifications,
		audit:         audit,
		deadlineDays:  deadlineDays,
		log:           logger.WithModule("challenges"),
	}, nil
}

// Create issues a challenge from one team to another. The caller must be a
// captain or manager of the challenging team, and both teams must play the
// same sport. The initial proposal is snapshotted as the original terms.
func (s *ChallengeService) Create(ctx context.Context, userID string, input CreateChallengeInput) (*models.Challenge, error) {
	ctx = ensureContext(ctx)

	allowed, err := s.checker.CanManageChallenges(ctx, userID, input.ChallengerTeamID)
	if err != nil {
		metrics.PermissionChecks.WithLabelValues("error").Inc()
		return nil, err
	}
	if !allowed {
		metrics.PermissionChecks.WithLabelValues("denied").Inc()
		return nil, apperrors.ErrForbidden
	}
	metrics.PermissionChecks.WithLabelValues("allowed").Inc()

	if input.ChallengerTeamID == input.ChallengedTeamID {
		return nil, apperrors.ErrBadRequest.WithMessage("a team cannot challenge itself")
	}

	proposal := negotiation.Proposal{
		Date:            input.ProposedDate,
		TimeOfDay:       input.ProposedTime,
		Location:        input.ProposedLocation,
		DurationMinutes: input.DurationMinutes,
		Message:         input.Message,
	}
	if errs := negotiation.ValidateProposal(proposal); errs != nil {
		return nil, errs
	}

	var challenger, challenged models.Team
	if err := s.db.WithContext(ctx).First(&challenger, "id = ?", input.ChallengerTeamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("challenging team not found")
		}
		return nil, fmt.Errorf("challenge service: load challenger: %w", err)
	}
	if err := s.db.WithContext(ctx).First(&challenged, "id = ?", input.ChallengedTeamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("challenged team not found")
		}
		return nil, fmt.Errorf("challenge service: load challenged team: %w", err)
	}
	if challenger.SportID != challenged.SportID {
		return nil, apperrors.ErrBadRequest.WithMessage("both teams must play the same sport")
	}

	challenge := models.Challenge{
		SportID:          challenger.SportID,
		ChallengerTeamID: challenger.ID,
		ChallengedTeamID: challenged.ID,
		CreatedByUserID:  userID,
		Status:           negotiation.StatusPendingChallenge,
		ResponseDeadline: time.Now().UTC().AddDate(0, 0, s.deadlineDays),

		ProposedDate:     proposal.Date,
		ProposedTime:     strings.TrimSpace(proposal.TimeOfDay),
		ProposedLocation: strings.TrimSpace(proposal.Location),
		DurationMinutes:  proposal.DurationMinutes,
		Message:          strings.TrimSpace(proposal.Message),

		OriginalDate:     proposal.Date,
		OriginalTime:     strings.TrimSpace(proposal.TimeOfDay),
		OriginalLocation: strings.TrimSpace(proposal.Location),
		OriginalDuration: proposal.DurationMinutes,
		OriginalMessage:  strings.TrimSpace(proposal.Message),
	}

	if err := s.db.WithContext(ctx).Create(&challenge).Error; err != nil {
		return nil, fmt.Errorf("challenge service: create challenge: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "challenge.create",
		Resource: challenge.ID,
		Result:   "success",
		Metadata: map[string]any{
			"challenger_team_id": challenger.ID,
			"challenged_team_id": challenged.ID,
		},
	})

	s.notifySide(challenge.ChallengedTeamID, challenge.ID,
		"New Challenge Received",
		fmt.Sprintf("%s has challenged your team to a match", challenger.Name))

	return s.Get(ctx, userID, challenge.ID)
}

// Get loads a challenge with its teams and sport. Only members of either
// team may view it.
func (s *ChallengeService) Get(ctx context.Context, userID, challengeID string) (*models.Challenge, error) {
	ctx = ensureContext(ctx)

	challenge, err := s.load(ctx, challengeID, true)
	if err != nil {
		return nil, err
	}

	for _, teamID := range []string{challenge.ChallengerTeamID, challenge.ChallengedTeamID} {
		member, err := s.checker.IsMember(ctx, userID, teamID)
		if err != nil {
			return nil, err
		}
		if member {
			return challenge, nil
		}
	}

	return nil, apperrors.ErrForbidden
}

// Submit dispatches a negotiation action on behalf of userID. The acting
// side is derived from the caller's team memberships, the machine computes
// the next state, and the write is guarded by the record version. On a
// version conflict the record is reloaded and the action re-validated once
// before giving up with a conflict error.
func (s *ChallengeService) Submit(ctx context.Context, userID, challengeID string, action negotiation.Action) (*models.Challenge, error) {
	ctx = ensureContext(ctx)

	if action == nil {
		return nil, apperrors.ErrBadRequest.WithMessage("action is required")
	}

	challenge, err := s.load(ctx, challengeID, false)
	if err != nil {
		return nil, err
	}

	side, err := s.resolveSide(ctx, userID, challenge)
	if err != nil {
		return nil, err
	}

	applied, err := s.applyAndStore(ctx, challenge, side, action)
	if errors.Is(err, apperrors.ErrConflict) {
		// Someone else advanced the negotiation between our read and write.
		// Re-read once and re-validate the action against the fresh state.
		challenge, err = s.load(ctx, challengeID, false)
		if err != nil {
			return nil, err
		}
		applied, err = s.applyAndStore(ctx, challenge, side, action)
	}
	if err != nil {
		s.recordOutcome(userID, challengeID, action, err)
		return nil, err
	}

	s.recordOutcome(userID, challengeID, action, nil)
	s.notifyTransition(applied, side, action)

	return s.load(ctx, challengeID, true)
}

// load fetches a challenge by id, optionally preloading its associations.
func (s *ChallengeService) load(ctx context.Context, challengeID string, preload bool) (*models.Challenge, error) {
	query := s.db.WithContext(ctx)
	if preload {
		query = query.
			Preload("Sport").
			Preload("ChallengerTeam").
			Preload("ChallengedTeam")
	}

	var challenge models.Challenge
	if err := query.First(&challenge, "id = ?", challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("challenge not found")
		}
		return nil, fmt.Errorf("challenge service: load challenge: %w", err)
	}
	return &challenge, nil
}

func (s *ChallengeService) resolveSide(ctx context.Context, userID string, challenge *models.Challenge) (negotiation.Side, error) {
	for _, candidate := range []struct {
		teamID string
		side   negotiation.Side
	}{
		{challenge.ChallengerTeamID, negotiation.SideChallenger},
		{challenge.ChallengedTeamID, negotiation.SideChallenged},
	} {
		allowed, err := s.checker.CanManageChallenges(ctx, userID, candidate.teamID)
		if err != nil {
			metrics.PermissionChecks.WithLabelValues("error").Inc()
			return 0, err
		}
		if allowed {
			metrics.PermissionChecks.WithLabelValues("allowed").Inc()
			return candidate.side, nil
		}
	}

	metrics.PermissionChecks.WithLabelValues("denied").Inc()
	return 0, apperrors.ErrForbidden
}

// applyAndStore runs the machine and persists the result with a conditional
// write on the version column. A zero-row update means the version moved and
// is reported as a conflict.
func (s *ChallengeService) applyAndStore(ctx context.Context, challenge *models.Challenge, side negotiation.Side, action negotiation.Action) (*models.Challenge, error) {
	next, err := negotiation.Apply(challenge.NegotiationState(), side, action)
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("id = ? AND version = ?", challenge.ID, challenge.Version).
		Updates(map[string]any{
			"status":               next.Status,
			"has_counter_proposal": next.HasCounterProposal,
			"proposed_date":        next.Current.Date,
			"proposed_time":        next.Current.TimeOfDay,
			"proposed_location":    next.Current.Location,
			"duration_minutes":     next.Current.DurationMinutes,
			"message":              next.Current.Message,
			"rejection_reason":     next.RejectionReason,
			"version":              challenge.Version + 1,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("challenge service: store transition: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrConflict.WithMessage("challenge was modified concurrently")
	}

	challenge.ApplyNegotiationState(next)
	challenge.Version++
	return challenge, nil
}

// recordOutcome increments the transition metric and writes the audit trail
// entry for one dispatch attempt.
func (s *ChallengeService) recordOutcome(userID, challengeID string, action negotiation.Action, err error) {
	result := "applied"
	switch {
	case err == nil:
	case errors.Is(err, negotiation.ErrIllegalTransition):
		result = "illegal"
	case isFieldErrors(err):
		result = "invalid"
	case errors.Is(err, apperrors.ErrConflict):
		result = "conflict"
	default:
		result = "error"
	}

	metrics.ChallengeTransitions.WithLabelValues(action.Kind(), result).Inc()

	entry := AuditEntry{
		UserID:   &userID,
		Action:   "challenge." + action.Kind(),
		Resource: challengeID,
		Result:   result,
	}
	if err != nil {
		entry.Metadata = map[string]any{"error": err.Error()}
	}
	recordAudit(s.audit, context.Background(), entry)
}

// notifyTransition fans out a notification to the captains and managers of
// the side that did not act. Failures are logged and never propagated.
func (s *ChallengeService) notifyTransition(challenge *models.Challenge, side negotiation.Side, action negotiation.Action) {
	recipientTeamID := challenge.ChallengedTeamID
	if side == negotiation.SideChallenged {
		recipientTeamID = challenge.ChallengerTeamID
	}

	title, message := transitionNotification(action)
	s.notifySide(recipientTeamID, challenge.ID, title, message)
}

func (s *ChallengeService) notifySide(teamID, challengeID, title, message string) {
	if s.notifications == nil {
		return
	}

	go func() {
		ctx := context.Background()
		recipients, err := s.checker.ManagerIDs(ctx, teamID)
		if err != nil {
			s.log.Warn("resolve notification recipients failed",
				zap.String("challenge_id", challengeID),
				zap.Error(err))
			return
		}

		err = s.notifications.CreateForUsers(ctx, recipients, CreateNotificationInput{
			Type:     "challenge",
			Title:    title,
			Message:  message,
			Severity: "info",
			Metadata: map[string]any{"challenge_id": challengeID},
		})
		if err != nil {
			s.log.Warn("challenge notification failed",
				zap.String("challenge_id", challengeID),
				zap.Error(err))
		}
	}()
}

func transitionNotification(action negotiation.Action) (title, message string) {
	switch action.(type) {
	case negotiation.AcceptCounter:
		return "Counter-Proposal Accepted", "Your counter-proposal was accepted and the match is scheduled"
	case negotiation.CounterAgain:
		return "New Counter-Proposal", "The challenging team proposed new match terms"
	case negotiation.Cancel:
		return "Challenge Cancelled", "The challenging team withdrew the challenge"
	case negotiation.Accept:
		return "Challenge Accepted", "Your challenge was accepted and the match is scheduled"
	case negotiation.Reject:
		return "Challenge Rejected", "Your challenge was declined"
	case negotiation.Counter:
		return "Counter-Proposal Received", "The challenged team proposed different match terms"
	}
	return "Challenge Updated", "The challenge was updated"
}

func isFieldErrors(err error) bool {
	var fe negotiation.FieldErrors
	return errors.As(err, &fe)
}
