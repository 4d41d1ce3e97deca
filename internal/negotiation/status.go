package negotiation

// Status enumerates the lifecycle states of a challenge.
type Status string

const (
	// StatusPendingChallenge is the initial state: the challenged team has
	// not yet responded to the original proposal.
	StatusPendingChallenge Status = "pending_challenge"
	// StatusScheduling means a counter-proposal is outstanding and the two
	// teams are still negotiating terms.
	StatusScheduling Status = "scheduling"
	// StatusScheduled means both teams agreed on the terms.
	StatusScheduled Status = "scheduled"
	// StatusRejected means the challenged team declined.
	StatusRejected Status = "rejected"
	// StatusCancelled means the challenging team withdrew.
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further negotiation actions are permitted.
func (s Status) Terminal() bool {
	switch s {
	case StatusScheduled, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingChallenge, StatusScheduling, StatusScheduled, StatusRejected, StatusCancelled:
		return true
	}
	return false
}
