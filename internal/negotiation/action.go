package negotiation

// Side identifies which party is acting on a challenge.
type Side int

const (
	// SideChallenger is the team that issued the challenge.
	SideChallenger Side = iota
	// SideChallenged is the team the challenge was sent to.
	SideChallenged
)

func (s Side) String() string {
	if s == SideChallenged {
		return "challenged"
	}
	return "challenger"
}

// Action is the tagged variant of negotiation moves. Each concrete action
// carries only the payload it needs; Apply dispatches over the type.
type Action interface {
	// Kind returns a stable identifier used for logging, auditing and metrics.
	Kind() string

	isAction()
}

// AcceptCounter accepts the opponent's outstanding counter-proposal
// (challenger side).
type AcceptCounter struct{}

// CounterAgain replaces the current proposal with new terms while
// negotiation continues (challenger side).
type CounterAgain struct {
	Proposal Proposal
}

// Cancel withdraws the challenge (challenger side).
type Cancel struct{}

// Accept agrees to the terms currently on the table (challenged side).
type Accept struct{}

// Reject declines the challenge with an optional reason (challenged side).
type Reject struct {
	Reason string
}

// Counter proposes different terms in response to the challenger
// (challenged side).
type Counter struct {
	Proposal Proposal
}

func (AcceptCounter) Kind() string { return "accept_counter" }
func (CounterAgain) Kind() string  { return "counter_again" }
func (Cancel) Kind() string        { return "cancel" }
func (Accept) Kind() string        { return "accept" }
func (Reject) Kind() string        { return "reject" }
func (Counter) Kind() string       { return "counter" }

func (AcceptCounter) isAction() {}
func (CounterAgain) isAction()  {}
func (Cancel) isAction()        {}
func (Accept) isAction()        {}
func (Reject) isAction()        {}
func (Counter) isAction()       {}
