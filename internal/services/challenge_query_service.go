package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/clubarena/matchup/internal/models"
	"github.com/clubarena/matchup/internal/negotiation"
	"github.com/clubarena/matchup/internal/permissions"
	apperrors "github.com/clubarena/matchup/pkg/errors"
)

// ChallengeFilter narrows a challenge listing. All fields are optional.
type ChallengeFilter struct {
	Status   string
	Sport    string
	Opponent string
	Cursor   string
	PageSize int
}

// ChallengeView is a challenge row decorated with deadline projections.
type ChallengeView struct {
	models.Challenge

	DaysRemaining  int  `json:"days_remaining"`
	IsExpiringSoon bool `json:"is_expiring_soon"`
}

// ChallengePage is one page of a cursor-paginated challenge listing.
type ChallengePage struct {
	Challenges []ChallengeView `json:"challenges"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// ChallengeQueryService serves the read side of challenges: team inboxes and
// outboxes with filtering and cursor pagination. Rows are ordered by
// updated_at descending with the id as tie-break, so a negotiation that just
// moved surfaces first.
type ChallengeQueryService struct {
	db               *gorm.DB
	checker          *permissions.Checker
	defaultPageSize  int
	expiringSoonDays int
}

// NewChallengeQueryService constructs a ChallengeQueryService.
func NewChallengeQueryService(db *gorm.DB, checker *permissions.Checker, defaultPageSize, expiringSoonDays int) (*ChallengeQueryService, error) {
	if db == nil {
		return nil, errors.New("challenge query service: db is required")
	}
	if checker == nil {
		return nil, errors.New("challenge query service: permission checker is required")
	}
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	if expiringSoonDays <= 0 {
		expiringSoonDays = 2
	}
	return &ChallengeQueryService{
		db:               db,
		checker:          checker,
		defaultPageSize:  defaultPageSize,
		expiringSoonDays: expiringSoonDays,
	}, nil
}

// ListSent returns challenges the team issued.
func (s *ChallengeQueryService) ListSent(ctx context.Context, userID, teamID string, filter ChallengeFilter) (*ChallengePage, error) {
	return s.list(ctx, userID, teamID, filter, true)
}

// ListReceived returns challenges the team received.
func (s *ChallengeQueryService) ListReceived(ctx context.Context, userID, teamID string, filter ChallengeFilter) (*ChallengePage, error) {
	return s.list(ctx, userID, teamID, filter, false)
}

func (s *ChallengeQueryService) list(ctx context.Context, userID, teamID string, filter ChallengeFilter, sent bool) (*ChallengePage, error) {
	ctx = ensureContext(ctx)

	member, err := s.checker.IsMember(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.ErrForbidden
	}

	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = s.defaultPageSize
	}

	teamColumn, opponentColumn := "challenged_team_id", "challenger_team_id"
	if sent {
		teamColumn, opponentColumn = "challenger_team_id", "challenged_team_id"
	}

	query := s.db.WithContext(ctx).
		Model(&models.Challenge{}).
		Preload("Sport").
		Preload("ChallengerTeam").
		Preload("ChallengedTeam").
		Where(fmt.Sprintf("challenges.%s = ?", teamColumn), teamID)

	if status := strings.TrimSpace(filter.Status); status != "" {
		if !negotiation.Status(status).Valid() {
			return nil, apperrors.ErrBadRequest.WithMessage(fmt.Sprintf("unknown status %q", status))
		}
		query = query.Where("challenges.status = ?", status)
	}

	if sport := strings.TrimSpace(filter.Sport); sport != "" {
		query = query.
			Joins("JOIN sports ON sports.id = challenges.sport_id").
			Where("LOWER(sports.name) = LOWER(?)", sport)
	}

	if opponent := strings.TrimSpace(filter.Opponent); opponent != "" {
		query = query.
			Joins(fmt.Sprintf("JOIN teams AS opponent ON opponent.id = challenges.%s", opponentColumn)).
			Where(`LOWER(opponent.name) LIKE LOWER(?) ESCAPE '\'`, "%"+escapeLike(opponent)+"%")
	}

	if raw := strings.TrimSpace(filter.Cursor); raw != "" {
		cursor, err := decodeCursor(raw)
		if err != nil {
			return nil, err
		}
		query = query.Where(
			"challenges.updated_at < ? OR (challenges.updated_at = ? AND challenges.id < ?)",
			cursor.UpdatedAt, cursor.UpdatedAt, cursor.ID,
		)
	}

	var rows []models.Challenge
	if err := query.
		Order("challenges.updated_at DESC, challenges.id DESC").
		Limit(pageSize + 1).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("challenge query service: list challenges: %w", err)
	}

	page := &ChallengePage{}
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		page.NextCursor = encodeCursor(last.UpdatedAt, last.ID)
	}

	now := time.Now()
	page.Challenges = make([]ChallengeView, len(rows))
	for i, row := range rows {
		page.Challenges[i] = s.project(row, now)
	}

	return page, nil
}

// escapeLike neutralises LIKE wildcards so filter input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// project decorates a challenge with the deadline-derived fields. They are
// computed at read time and never stored.
func (s *ChallengeQueryService) project(challenge models.Challenge, now time.Time) ChallengeView {
	view := ChallengeView{Challenge: challenge}

	if remaining := challenge.ResponseDeadline.Sub(now); remaining > 0 {
		view.DaysRemaining = int(math.Ceil(remaining.Hours() / 24))
	}
	view.IsExpiringSoon = !challenge.Status.Terminal() &&
		view.DaysRemaining <= s.expiringSoonDays

	return view
}
