package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubarena/matchup/internal/database/testutil"
	"github.com/clubarena/matchup/internal/models"
	apperrors "github.com/clubarena/matchup/pkg/errors"
)

func TestTeamServiceCreateEnrollsCaptain(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	sport := seedSport(t, db, "volleyball")
	creator := seedUser(t, db, "founder")

	service, err := NewTeamService(db)
	require.NoError(t, err)

	team, err := service.Create(context.Background(), creator.ID, CreateTeamInput{
		Name:    "Beach Setters",
		SportID: sport.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Beach Setters", team.Name)
	require.NotNil(t, team.Sport)
	assert.Equal(t, "volleyball", team.Sport.Name)
	require.Len(t, team.Members, 1)
	assert.Equal(t, creator.ID, team.Members[0].UserID)
	assert.Equal(t, models.TeamRoleCaptain, team.Members[0].Role)
}

func TestTeamServiceCreateUnknownSport(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	creator := seedUser(t, db, "founder")

	service, err := NewTeamService(db)
	require.NoError(t, err)

	_, err = service.Create(context.Background(), creator.ID, CreateTeamInput{
		Name:    "Ghost Team",
		SportID: "1c6f0b9a-0000-0000-0000-000000000000",
	})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTeamServiceAddMember(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	sport := seedSport(t, db, "cricket")
	captainUser := seedUser(t, db, "captain")
	recruit := seedUser(t, db, "recruit")

	service, err := NewTeamService(db)
	require.NoError(t, err)
	ctx := context.Background()

	team, err := service.Create(ctx, captainUser.ID, CreateTeamInput{Name: "Wicket Works", SportID: sport.ID})
	require.NoError(t, err)

	member, err := service.AddMember(ctx, captainUser.ID, team.ID, AddMemberInput{UserID: recruit.ID})
	require.NoError(t, err)
	assert.Equal(t, models.TeamRoleMember, member.Role)

	t.Run("duplicate is a conflict", func(t *testing.T) {
		_, err := service.AddMember(ctx, captainUser.ID, team.ID, AddMemberInput{UserID: recruit.ID})
		require.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("plain member cannot manage the roster", func(t *testing.T) {
		another := seedUser(t, db, "another")
		_, err := service.AddMember(ctx, recruit.ID, team.ID, AddMemberInput{UserID: another.ID})
		require.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("outsider cannot manage the roster", func(t *testing.T) {
		stranger := seedUser(t, db, "stranger")
		_, err := service.AddMember(ctx, stranger.ID, team.ID, AddMemberInput{UserID: stranger.ID})
		require.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := service.AddMember(ctx, captainUser.ID, team.ID, AddMemberInput{
			UserID: "5d7f0b9a-0000-0000-0000-000000000000",
		})
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestTeamServiceListForUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	sport := seedSport(t, db, "padel")
	player := seedUser(t, db, "player")
	other := seedUser(t, db, "other")

	service, err := NewTeamService(db)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = service.Create(ctx, player.ID, CreateTeamInput{Name: "Wall Bangers", SportID: sport.ID})
	require.NoError(t, err)
	_, err = service.Create(ctx, other.ID, CreateTeamInput{Name: "Side Spin", SportID: sport.ID})
	require.NoError(t, err)

	teams, err := service.ListForUser(ctx, player.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "Wall Bangers", teams[0].Name)
}

func TestTeamServiceListSports(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	seedSport(t, db, "tennis")
	seedSport(t, db, "basketball")

	service, err := NewTeamService(db)
	require.NoError(t, err)

	sports, err := service.ListSports(context.Background())
	require.NoError(t, err)
	require.Len(t, sports, 2)
	assert.Equal(t, "basketball", sports[0].Name)
	assert.Equal(t, "tennis", sports[1].Name)
}