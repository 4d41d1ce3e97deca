package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clubarena/matchup/internal/models"
	"github.com/clubarena/matchup/internal/negotiation"
	"github.com/clubarena/matchup/internal/permissions"
	apperrors "github.com/clubarena/matchup/pkg/errors"
)

func newQueryService(t *testing.T, db *gorm.DB, pageSize int) *ChallengeQueryService {
	t.Helper()

	checker, err := permissions.NewChecker(db)
	require.NoError(t, err)
	service, err := NewChallengeQueryService(db, checker, pageSize, 2)
	require.NoError(t, err)
	return service
}

func seedChallenge(t *testing.T, db *gorm.DB, sportID, challengerID, challengedID string, status negotiation.Status, updatedAt time.Time) models.Challenge {
	t.Helper()

	challenge := models.Challenge{
		SportID:          sportID,
		ChallengerTeamID: challengerID,
		ChallengedTeamID: challengedID,
		Status:           status,
		ProposedLocation: "Pitch 1",
		OriginalLocation: "Pitch 1",
		ResponseDeadline: time.Now().Add(5 * 24 * time.Hour),
	}
	require.NoError(t, db.Create(&challenge).Error)
	// UpdateColumn skips the automatic timestamp so ordering is deterministic.
	require.NoError(t, db.Model(&models.Challenge{}).
		Where("id = ?", challenge.ID).
		UpdateColumn("updated_at", updatedAt).Error)
	challenge.UpdatedAt = updatedAt
	return challenge
}

func TestChallengeQueryServiceDirections(t *testing.T) {
	f := newChallengeFixture(t)
	queries := newQueryService(t, f.db, 20)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour).UTC()
	sent := seedChallenge(t, f.db, f.sport.ID, f.home.ID, f.away.ID, negotiation.StatusPendingChallenge, base)
	received := seedChallenge(t, f.db, f.sport.ID, f.away.ID, f.home.ID, negotiation.StatusPendingChallenge, base.Add(time.Minute))

	sentPage, err := queries.ListSent(ctx, f.homeCaptain.ID, f.home.ID, ChallengeFilter{})
	require.NoError(t, err)
	require.Len(t, sentPage.Challenges, 1)
	assert.Equal(t, sent.ID, sentPage.Challenges[0].ID)
	require.NotNil(t, sentPage.Challenges[0].ChallengedTeam)
	assert.Equal(t, "Harbor United", sentPage.Challenges[0].ChallengedTeam.Name)

	receivedPage, err := queries.ListReceived(ctx, f.homePlayer.ID, f.home.ID, ChallengeFilter{})
	require.NoError(t, err)
	require.Len(t, receivedPage.Challenges, 1)
	assert.Equal(t, received.ID, receivedPage.Challenges[0].ID)
}

func TestChallengeQueryServiceRequiresMembership(t *testing.T) {
	f := newChallengeFixture(t)
	queries := newQueryService(t, f.db, 20)

	_, err := queries.ListSent(context.Background(), f.outsider.ID, f.home.ID, ChallengeFilter{})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestChallengeQueryServiceFilters(t *testing.T) {
	f := newChallengeFixture(t)
	queries := newQueryService(t, f.db, 20)
	ctx := context.Background()

	basketball := seedSport(t, f.db, "basketball")
	hoops := seedTeam(t, f.db, "Downtown Hoops", basketball.ID)
	homeHoops := seedTeam(t, f.db, "Riverside Hoops", basketball.ID)
	seedMember(t, f.db, homeHoops.ID, f.homeCaptain.ID, models.TeamRoleCaptain)

	base := time.Now().Add(-time.Hour).UTC()
	pending := seedChallenge(t, f.db, f.sport.ID, f.home.ID, f.away.ID, negotiation.StatusPendingChallenge, base)
	scheduled := seedChallenge(t, f.db, f.sport.ID, f.home.ID, f.away.ID, negotiation.StatusScheduled, base.Add(time.Minute))
	hoopsGame := seedChallenge(t, f.db, basketball.ID, homeHoops.ID, hoops.ID, negotiation.StatusPendingChallenge, base.Add(2*time.Minute))

	t.Run("by status", func(t *testing.T) {
		page, err := queries.ListSent(ctx, f.homeCaptain.ID, f.home.ID, ChallengeFilter{Status: "scheduled"})
		require.NoError(t, err)
		require.Len(t, page.Challenges, 1)
		assert.Equal(t, scheduled.ID, page.Challenges[0].ID)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := queries.ListSent(ctx, f.homeCaptain.ID, f.home.ID, ChallengeFilter{Status: "negotiating"})
		require.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("by sport name", func(t *testing.T) {
		page, err := queries.ListSent(ctx, f.homeCaptain.ID, homeHoops.ID, ChallengeFilter{Sport: "Basketball"})
		require.NoError(t, err)
		require.Len(t, page.Challenges, 1)
		assert.Equal(t, hoopsGame.ID, page.Challenges[0].ID)
	})

	t.Run("by opponent name substring", func(t *testing.T) {
		page, err := queries.ListSent(ctx, f.homeCaptain.ID, f.home.ID, ChallengeFilter{Opponent: "harbor"})
		require.NoError(t, err)
		require.Len(t, page.Challenges, 2)
		assert.Equal(t, scheduled.ID, page.Challenges[0].ID)
		assert.Equal(t, pending.ID, page.Challenges[1].ID)
	})

	t.Run("no match", func(t *testing.T) {
		page, err := queries.ListSent(ctx, f.homeCaptain.ID, f.home.ID, ChallengeFilter{Opponent: "nonexistent"})
		require.NoError(t, err)
		assert.Empty(t, page.Challenges)
		assert.Empty(t, page.NextCursor)
	})
}

func TestChallengeQueryServiceOpponentFilterMatchesLiterally(t *testing.T) {
	f := newChallengeFixture(t)
	queries := newQueryService(t, f.db, 20)
	ctx := context.Background()

	percenters := seedTeam(t, f.db, "100% Effort", f.sport.ID)
	base := time.Now().Add(-time.Hour).UTC()
	seedChallenge(t, f.db, f.sport.ID, f.home.ID, f.away.ID, negotiation.StatusPendingChallenge, base)
	oddGame := seedChallenge(t, f.db, f.sport.ID, f.home.ID, percenters.ID, negotiation.StatusPendingChallenge, base.Add(time.Minute))

	// wildcards in the filter are literal characters, not patterns
	page, err := queries.ListSent(ctx, f.homeCaptain.ID, f.home.ID, ChallengeFilter{Opponent: "%"})
	require.NoError(t, err)
	require.Len(t, page.Challenges, 1)
	assert.Equal(t, oddGame.ID, page.Challenges[0].ID)

	page, err = queries.ListSent(ctx, f.homeCaptain.ID, f.home.ID, ChallengeFilter{Opponent: "_"})
	require.NoError(t, err)
	assert.Empty(t, page.Challenges)

	page, err = queries.ListSent(ctx, f.homeCaptain.ID, f.home.ID, ChallengeFilter{Opponent: "100% eff"})
	require.NoError(t, err)
	require.Len(t, page.Challenges, 1)
	assert.Equal(t, oddGame.ID, page.Challenges[0].ID)
}

func TestChallengeQueryServicePagination(t *testing.T) {
	f := newChallengeFixture(t)
	queries := newQueryService(t, f.db, 2)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour).UTC()
	var seeded []models.Challenge
	for i := 0; i < 5; i++ {
		seeded = append(seeded, seedChallenge(t, f.db, f.sport.ID, f.home.ID, f.away.ID,
			negotiation.StatusPendingChallenge, base.Add(time.Duration(i)*time.Minute)))
	}

	var collected []string
	cursor := ""
	for page := 0; page < 4; page++ {
		result, err := queries.ListSent(ctx, f.homeCaptain.ID, f.home.ID, ChallengeFilter{Cursor: cursor})
		require.NoError(t, err)
		for _, row := range result.Challenges {
			collected = append(collected, row.ID)
		}
		if result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
	}

	require.Len(t, collected, 5)
	// Newest first: the reverse of the seeding order, with no duplicates.
	for i, id := range collected {
		assert.Equal(t, seeded[len(seeded)-1-i].ID, id)
	}
}

func TestChallengeQueryServiceTieBreaksOnID(t *testing.T) {
	f := newChallengeFixture(t)
	queries := newQueryService(t, f.db, 1)
	ctx := context.Background()

	at := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	a := seedChallenge(t, f.db, f.sport.ID, f.home.ID, f.away.ID, negotiation.StatusPendingChallenge, at)
	b := seedChallenge(t, f.db, f.sport.ID, f.home.ID, f.away.ID, negotiation.StatusPendingChallenge, at)

	first, err := queries.ListSent(ctx, f.homeCaptain.ID, f.home.ID, ChallengeFilter{})
	require.NoError(t, err)
	require.Len(t, first.Challenges, 1)
	require.NotEmpty(t, first.NextCursor)

	second, err := queries.ListSent(ctx, f.homeCaptain.ID, f.home.ID, ChallengeFilter{Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Challenges, 1)

	got := []string{first.Challenges[0].ID, second.Challenges[0].ID}
	assert.ElementsMatch(t, []string{a.ID, b.ID}, got)
	assert.Greater(t, got[0], got[1], "equal timestamps must order by id descending")
}

func TestChallengeQueryServiceRejectsMalformedCursor(t *testing.T) {
	f := newChallengeFixture(t)
	queries := newQueryService(t, f.db, 20)

	_, err := queries.ListSent(context.Background(), f.homeCaptain.ID, f.home.ID, ChallengeFilter{Cursor: "not-a-cursor"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestChallengeQueryServiceDeadlineProjections(t *testing.T) {
	f := newChallengeFixture(t)
	queries := newQueryService(t, f.db, 20)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour).UTC()

	soon := seedChallenge(t, f.db, f.sport.ID, f.home.ID, f.away.ID, negotiation.StatusPendingChallenge, base)
	require.NoError(t, f.db.Model(&models.Challenge{}).Where("id = ?", soon.ID).
		UpdateColumn("response_deadline", time.Now().Add(30*time.Hour)).Error)

	distant := seedChallenge(t, f.db, f.sport.ID, f.home.ID, f.away.ID, negotiation.StatusPendingChallenge, base.Add(time.Minute))
	require.NoError(t, f.db.Model(&models.Challenge{}).Where("id = ?", distant.ID).
		UpdateColumn("response_deadline", time.Now().Add(6*24*time.Hour)).Error)

	done := seedChallenge(t, f.db, f.sport.ID, f.home.ID, f.away.ID, negotiation.StatusScheduled, base.Add(2*time.Minute))
	require.NoError(t, f.db.Model(&models.Challenge{}).Where("id = ?", done.ID).
		UpdateColumn("response_deadline", time.Now().Add(30*time.Hour)).Error)

	overdue := seedChallenge(t, f.db, f.sport.ID, f.home.ID, f.away.ID, negotiation.StatusPendingChallenge, base.Add(3*time.Minute))
	require.NoError(t, f.db.Model(&models.Challenge{}).Where("id = ?", overdue.ID).
		UpdateColumn("response_deadline", time.Now().Add(-time.Hour)).Error)

	page, err := queries.ListSent(ctx, f.homeCaptain.ID, f.home.ID, ChallengeFilter{})
	require.NoError(t, err)
	require.Len(t, page.Challenges, 4)

	byID := map[string]ChallengeView{}
	for _, view := range page.Challenges {
		byID[view.ID] = view
	}

	assert.Equal(t, 2, byID[soon.ID].DaysRemaining)
	assert.True(t, byID[soon.ID].IsExpiringSoon)

	assert.Equal(t, 6, byID[distant.ID].DaysRemaining)
	assert.False(t, byID[distant.ID].IsExpiringSoon)

	assert.False(t, byID[done.ID].IsExpiringSoon, "terminal challenges never expire")

	assert.Equal(t, 0, byID[overdue.ID].DaysRemaining)
	assert.True(t, byID[overdue.ID].IsExpiringSoon)
}
