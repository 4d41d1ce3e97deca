package permissions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clubarena/matchup/internal/database/testutil"
	"github.com/clubarena/matchup/internal/models"
)

func seedTeamWithMembers(t *testing.T, db *gorm.DB) (models.Team, models.User, models.User, models.User) {
	t.Helper()

	sport := models.Sport{Name: "football"}
	require.NoError(t, db.Create(&sport).Error)

	team := models.Team{Name: "North End", SportID: sport.ID}
	require.NoError(t, db.Create(&team).Error)

	captain := models.User{Username: "cap", Email: "cap@example.com", Password: "x"}
	member := models.User{Username: "mem", Email: "mem@example.com", Password: "x"}
	outsider := models.User{Username: "out", Email: "out@example.com", Password: "x"}
	require.NoError(t, db.Create(&captain).Error)
	require.NoError(t, db.Create(&member).Error)
	require.NoError(t, db.Create(&outsider).Error)

	require.NoError(t, db.Create(&models.TeamMember{TeamID: team.ID, UserID: captain.ID, Role: models.TeamRoleCaptain}).Error)
	require.NoError(t, db.Create(&models.TeamMember{TeamID: team.ID, UserID: member.ID, Role: models.TeamRoleMember}).Error)

	return team, captain, member, outsider
}

func TestCanManageChallenges(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	team, captain, member, outsider := seedTeamWithMembers(t, db)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	ctx := context.Background()

	ok, err := checker.CanManageChallenges(ctx, captain.ID, team.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = checker.CanManageChallenges(ctx, member.ID, team.ID)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = checker.CanManageChallenges(ctx, outsider.ID, team.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIsMember(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	team, _, member, outsider := seedTeamWithMembers(t, db)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	ctx := context.Background()

	ok, err := checker.IsMember(ctx, member.ID, team.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = checker.IsMember(ctx, outsider.ID, team.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestManagerIDs(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	team, captain, _, _ := seedTeamWithMembers(t, db)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	ids, err := checker.ManagerIDs(context.Background(), team.ID)
	require.NoError(t, err)
	require.Equal(t, []string{captain.ID}, ids)
}
