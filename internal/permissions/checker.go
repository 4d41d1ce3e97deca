// Package permissions answers who may act on behalf of a team.
// Challenge negotiation is restricted to captains and managers; plain
// members only get read access to their team's challenges.
package permissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/clubarena/matchup/internal/models"
)

// Checker evaluates team-scoped permissions against the membership table.
type Checker struct {
	db *gorm.DB
}

// NewChecker constructs a permission checker backed by the provided database.
func NewChecker(db *gorm.DB) (*Checker, error) {
	if db == nil {
		return nil, errors.New("permission checker: db is required")
	}
	return &Checker{db: db}, nil
}

// CanManageChallenges reports whether the user may negotiate on the team's
// behalf, which requires a captain or manager membership.
func (c *Checker) CanManageChallenges(ctx context.Context, userID, teamID string) (bool, error) {
	member, err := c.membership(ctx, userID, teamID)
	if err != nil {
		return false, err
	}
	if member == nil {
		return false, nil
	}

	switch member.Role {
	case models.TeamRoleCaptain, models.TeamRoleManager:
		return true, nil
	}
	return false, nil
}

// IsMember reports whether the user belongs to the team in any role.
func (c *Checker) IsMember(ctx context.Context, userID, teamID string) (bool, error) {
	member, err := c.membership(ctx, userID, teamID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

// ManagerIDs returns the user IDs of every captain and manager of the team.
// Used to fan out notifications after a negotiation action.
func (c *Checker) ManagerIDs(ctx context.Context, teamID string) ([]string, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, errors.New("permission checker: team id is required")
	}

	var members []models.TeamMember
	if err := c.db.WithContext(ctx).
		Where("team_id = ? AND role IN ?", teamID, []string{models.TeamRoleCaptain, models.TeamRoleManager}).
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("permission checker: load managers: %w", err)
	}

	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.UserID)
	}
	return ids, nil
}

func (c *Checker) membership(ctx context.Context, userID, teamID string) (*models.TeamMember, error) {
	userID = strings.TrimSpace(userID)
	teamID = strings.TrimSpace(teamID)
	if userID == "" || teamID == "" {
		return nil, errors.New("permission checker: user id and team id are required")
	}

	var member models.TeamMember
	err := c.db.WithContext(ctx).
		Where("user_id = ? AND team_id = ?", userID, teamID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("permission checker: load membership: %w", err)
	}

	return &member, nil
}
