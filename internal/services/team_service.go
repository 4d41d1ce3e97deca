package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/clubarena/matchup/internal/models"
	apperrors "github.com/clubarena/matchup/pkg/errors"
)

// CreateTeamInput defines attributes required to register a team.
type CreateTeamInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	SportID     string `json:"sport_id" validate:"required,uuid4"`
}

// AddMemberInput defines attributes required to add a user to a team roster.
type AddMemberInput struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
	Role   string `json:"role" validate:"omitempty,oneof=member captain manager"`
}

// TeamService manages teams and their rosters.
type TeamService struct {
	db *gorm.DB
}

// NewTeamService constructs a TeamService.
func NewTeamService(db *gorm.DB) (*TeamService, error) {
	if db == nil {
		return nil, errors.New("team service: db is required")
	}
	return &TeamService{db: db}, nil
}

// Create registers a team and enrolls the creator as its captain.
func (s *TeamService) Create(ctx context.Context, creatorID string, input CreateTeamInput) (*models.Team, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.ErrBadRequest.WithMessage("team name is required")
	}

	var sport models.Sport
	if err := s.db.WithContext(ctx).First(&sport, "id = ?", input.SportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("sport not found")
		}
		return nil, fmt.Errorf("team service: load sport: %w", err)
	}

	team := models.Team{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		SportID:     sport.ID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return fmt.Errorf("create team: %w", err)
		}
		member := models.TeamMember{
			TeamID: team.ID,
			UserID: creatorID,
			Role:   models.TeamRoleCaptain,
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("enroll captain: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("team service: %w", err)
	}

	return s.Get(ctx, team.ID)
}

// Get returns a team with its sport and roster preloaded.
func (s *TeamService) Get(ctx context.Context, teamID string) (*models.Team, error) {
	ctx = ensureContext(ctx)

	var team models.Team
	if err := s.db.WithContext(ctx).
		Preload("Sport").
		Preload("Members").
		First(&team, "id = ?", teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("team not found")
		}
		return nil, fmt.Errorf("team service: load team: %w", err)
	}

	return &team, nil
}

// ListForUser returns the teams the user belongs to.
func (s *TeamService) ListForUser(ctx context.Context, userID string) ([]models.Team, error) {
	ctx = ensureContext(ctx)

	var teams []models.Team
	if err := s.db.WithContext(ctx).
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Preload("Sport").
		Order("teams.name ASC").
		Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("team service: list teams: %w", err)
	}

	return teams, nil
}

// AddMember adds a user to the roster. Only captains and managers may manage
// the roster.
func (s *TeamService) AddMember(ctx context.Context, actorID, teamID string, input AddMemberInput) (*models.TeamMember, error) {
	ctx = ensureContext(ctx)

	var actor models.TeamMember
	err := s.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, actorID).
		First(&actor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, fmt.Errorf("team service: load membership: %w", err)
	}
	if actor.Role != models.TeamRoleCaptain && actor.Role != models.TeamRoleManager {
		return nil, apperrors.ErrForbidden
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", input.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("user not found")
		}
		return nil, fmt.Errorf("team service: load user: %w", err)
	}

	member := models.TeamMember{
		TeamID: teamID,
		UserID: user.ID,
		Role:   defaultIfEmpty(strings.TrimSpace(input.Role), models.TeamRoleMember),
	}
	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE") {
			return nil, apperrors.ErrConflict.WithMessage("user is already on the roster")
		}
		return nil, fmt.Errorf("team service: add member: %w", err)
	}

	return &member, nil
}

// ListSports returns all available sports ordered by name.
func (s *TeamService) ListSports(ctx context.Context) ([]models.Sport, error) {
	ctx = ensureContext(ctx)

	var sports []models.Sport
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&sports).Error; err != nil {
		return nil, fmt.Errorf("team service: list sports: %w", err)
	}
	return sports, nil
}
