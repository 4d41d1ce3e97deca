package models

// Team represents a club side that can issue and receive challenges.
type Team struct {
	BaseModel

	Name        string `gorm:"not null;index" json:"name"`
	Description string `json:"description"`

	SportID string `gorm:"type:uuid;index;not null" json:"sport_id"`
	Sport   *Sport `gorm:"foreignKey:SportID" json:"sport,omitempty"`

	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// Membership roles. Captains and managers may act for the team in
// challenge negotiations; plain members only view.
const (
	TeamRoleMember  = "member"
	TeamRoleCaptain = "captain"
	TeamRoleManager = "manager"
)

// TeamMember links a user to a team with a role.
type TeamMember struct {
	BaseModel

	TeamID string `gorm:"type:uuid;index;not null;uniqueIndex:idx_team_member" json:"team_id"`
	Team   *Team  `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	UserID string `gorm:"type:uuid;index;not null;uniqueIndex:idx_team_member" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Role string `gorm:"type:varchar(32);not null;default:'member'" json:"role"`
}
