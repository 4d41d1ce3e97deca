package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clubarena/matchup/internal/negotiation"
)

func TestChallengeNegotiationRoundTrip(t *testing.T) {
	date := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	duration := 90

	c := Challenge{
		Status:           negotiation.StatusPendingChallenge,
		ProposedDate:     &date,
		ProposedTime:     "19:30",
		ProposedLocation: "Field A",
		DurationMinutes:  &duration,
		OriginalDate:     &date,
		OriginalTime:     "19:30",
		OriginalLocation: "Field A",
		OriginalDuration: &duration,
	}

	state := c.NegotiationState()
	require.True(t, state.Current.Equal(state.Original))

	counterDuration := 60
	next, err := negotiation.Apply(state, negotiation.SideChallenged, negotiation.Counter{
		Proposal: negotiation.Proposal{Location: "Field B", DurationMinutes: &counterDuration},
	})
	require.NoError(t, err)

	c.ApplyNegotiationState(next)
	require.Equal(t, negotiation.StatusScheduling, c.Status)
	require.True(t, c.HasCounterProposal)
	require.Equal(t, "Field B", c.ProposedLocation)
	// original snapshot survives counter application
	require.Equal(t, "Field A", c.OriginalLocation)
	require.Equal(t, 90, *c.OriginalDuration)
}

func TestChallengeSideOf(t *testing.T) {
	c := Challenge{ChallengerTeamID: "team-a", ChallengedTeamID: "team-b"}

	side, ok := c.SideOf("team-a")
	require.True(t, ok)
	require.Equal(t, negotiation.SideChallenger, side)

	side, ok = c.SideOf("team-b")
	require.True(t, ok)
	require.Equal(t, negotiation.SideChallenged, side)

	_, ok = c.SideOf("team-c")
	require.False(t, ok)
}
