package models

import (
	"time"

	"github.com/clubarena/matchup/internal/negotiation"
)

// Challenge persists one negotiation between a challenging and a challenged
// team. The current proposal holds the latest terms; the original_* columns
// snapshot the challenger's first proposal and never change afterwards.
type Challenge struct {
	BaseModel

	SportID string `gorm:"type:uuid;index;not null" json:"sport_id"`
	Sport   *Sport `gorm:"foreignKey:SportID" json:"sport,omitempty"`

	ChallengerTeamID string `gorm:"type:uuid;index;not null" json:"challenger_team_id"`
	ChallengerTeam   *Team  `gorm:"foreignKey:ChallengerTeamID" json:"challenger_team,omitempty"`
	ChallengedTeamID string `gorm:"type:uuid;index;not null" json:"challenged_team_id"`
	ChallengedTeam   *Team  `gorm:"foreignKey:ChallengedTeamID" json:"challenged_team,omitempty"`

	CreatedByUserID string `gorm:"type:uuid;index" json:"created_by_user_id"`

	Status             negotiation.Status `gorm:"type:varchar(32);index;not null;default:'pending_challenge'" json:"status"`
	HasCounterProposal bool               `gorm:"default:false" json:"has_counter_proposal"`

	ProposedDate     *time.Time `json:"proposed_date"`
	ProposedTime     string     `gorm:"type:varchar(16)" json:"proposed_time"`
	ProposedLocation string     `gorm:"type:varchar(500);not null" json:"proposed_location"`
	DurationMinutes  *int       `json:"duration_minutes"`
	Message          string     `gorm:"type:varchar(500)" json:"message"`

	OriginalDate     *time.Time `json:"original_date"`
	OriginalTime     string     `gorm:"type:varchar(16)" json:"original_time"`
	OriginalLocation string     `gorm:"type:varchar(500);not null" json:"original_location"`
	OriginalDuration *int       `json:"original_duration"`
	OriginalMessage  string     `gorm:"type:varchar(500)" json:"original_message"`

	RejectionReason string `gorm:"type:varchar(500)" json:"rejection_reason,omitempty"`

	ResponseDeadline time.Time `gorm:"index" json:"response_deadline"`

	// Version guards every mutation with a conditional write.
	Version uint `gorm:"not null;default:0" json:"-"`
}

// CurrentProposal returns the latest proposed terms as a machine value.
func (c *Challenge) CurrentProposal() negotiation.Proposal {
	return negotiation.Proposal{
		Date:            c.ProposedDate,
		TimeOfDay:       c.ProposedTime,
		Location:        c.ProposedLocation,
		DurationMinutes: c.DurationMinutes,
		Message:         c.Message,
	}
}

// OriginalProposal returns the challenger's first proposal.
func (c *Challenge) OriginalProposal() negotiation.Proposal {
	return negotiation.Proposal{
		Date:            c.OriginalDate,
		TimeOfDay:       c.OriginalTime,
		Location:        c.OriginalLocation,
		DurationMinutes: c.OriginalDuration,
		Message:         c.OriginalMessage,
	}
}

// NegotiationState builds the state snapshot the machine operates on.
func (c *Challenge) NegotiationState() negotiation.State {
	return negotiation.State{
		Status:             c.Status,
		HasCounterProposal: c.HasCounterProposal,
		Current:            c.CurrentProposal(),
		Original:           c.OriginalProposal(),
		RejectionReason:    c.RejectionReason,
	}
}

// ApplyNegotiationState copies a machine result back onto the record.
// The original_* columns are deliberately left untouched.
func (c *Challenge) ApplyNegotiationState(s negotiation.State) {
	c.Status = s.Status
	c.HasCounterProposal = s.HasCounterProposal
	c.ProposedDate = s.Current.Date
	c.ProposedTime = s.Current.TimeOfDay
	c.ProposedLocation = s.Current.Location
	c.DurationMinutes = s.Current.DurationMinutes
	c.Message = s.Current.Message
	c.RejectionReason = s.RejectionReason
}

// SideOf resolves which negotiation side the supplied team plays, returning
// false when the team is not a party to this challenge.
func (c *Challenge) SideOf(teamID string) (negotiation.Side, bool) {
	switch teamID {
	case c.ChallengerTeamID:
		return negotiation.SideChallenger, true
	case c.ChallengedTeamID:
		return negotiation.SideChallenged, true
	}
	return 0, false
}
