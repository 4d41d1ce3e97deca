// Package negotiation implements the pure state machine governing challenge
// negotiations between two teams. It has no persistence or transport
// dependencies: callers feed it a State snapshot and an Action, and receive
// the next snapshot or an error explaining why the move is not allowed.
package negotiation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIllegalTransition signals that the requested action is not valid from
// the challenge's current status, or that the acting side may not perform it.
var ErrIllegalTransition = errors.New("action is not valid for the current challenge state")

// State is a snapshot of the negotiable portion of a challenge record.
type State struct {
	Status             Status
	HasCounterProposal bool

	// Current holds the latest proposed terms; Original is the challenger's
	// first proposal, retained unmodified once a counter exists.
	Current  Proposal
	Original Proposal

	RejectionReason string
}

// Apply computes the state resulting from side performing action on s.
// It returns ErrIllegalTransition (wrapped with context) when the move is
// not permitted, and FieldErrors when a proposal payload fails validation.
// The input state is never mutated.
func Apply(s State, side Side, action Action) (State, error) {
	if !s.Status.Valid() {
		return s, fmt.Errorf("unknown challenge status %q", s.Status)
	}
	if s.Status.Terminal() {
		return s, fmt.Errorf("challenge is already %s: %w", s.Status, ErrIllegalTransition)
	}

	switch a := action.(type) {
	case AcceptCounter:
		return s.acceptCounter(side)
	case CounterAgain:
		return s.counterAgain(side, a.Proposal)
	case Cancel:
		return s.cancel(side)
	case Accept:
		return s.accept(side)
	case Reject:
		return s.reject(side, a.Reason)
	case Counter:
		return s.counter(side, a.Proposal)
	default:
		return s, fmt.Errorf("unsupported action %T: %w", action, ErrIllegalTransition)
	}
}

func (s State) acceptCounter(side Side) (State, error) {
	if side != SideChallenger {
		return s, fmt.Errorf("only the challenging team may accept a counter-proposal: %w", ErrIllegalTransition)
	}
	if s.Status != StatusScheduling || !s.HasCounterProposal {
		return s, fmt.Errorf("no counter-proposal is pending: %w", ErrIllegalTransition)
	}

	s.Status = StatusScheduled
	s.HasCounterProposal = false
	return s, nil
}

func (s State) counterAgain(side Side, p Proposal) (State, error) {
	if side != SideChallenger {
		return s, fmt.Errorf("only the challenging team may counter again: %w", ErrIllegalTransition)
	}
	if s.Status != StatusScheduling || !s.HasCounterProposal {
		return s, fmt.Errorf("no counter-proposal is pending: %w", ErrIllegalTransition)
	}
	if errs := ValidateProposal(p); errs != nil {
		return s, errs
	}

	// Re-submitting identical terms is a valid no-op, not an error.
	s.Current = p.normalized()
	return s, nil
}

func (s State) cancel(side Side) (State, error) {
	if side != SideChallenger {
		return s, fmt.Errorf("only the challenging team may cancel: %w", ErrIllegalTransition)
	}

	s.Status = StatusCancelled
	s.HasCounterProposal = false
	return s, nil
}

func (s State) accept(side Side) (State, error) {
	if side != SideChallenged {
		return s, fmt.Errorf("only the challenged team may accept: %w", ErrIllegalTransition)
	}

	s.Status = StatusScheduled
	s.HasCounterProposal = false
	return s, nil
}

func (s State) reject(side Side, reason string) (State, error) {
	if side != SideChallenged {
		return s, fmt.Errorf("only the challenged team may reject: %w", ErrIllegalTransition)
	}

	reason = strings.TrimSpace(reason)
	if len(reason) > MaxMessageLength {
		return s, FieldErrors{"reason": fmt.Sprintf("reason must be at most %d characters", MaxMessageLength)}
	}

	s.Status = StatusRejected
	s.HasCounterProposal = false
	s.RejectionReason = reason
	return s, nil
}

func (s State) counter(side Side, p Proposal) (State, error) {
	if side != SideChallenged {
		return s, fmt.Errorf("only the challenged team may counter: %w", ErrIllegalTransition)
	}
	if errs := ValidateProposal(p); errs != nil {
		return s, errs
	}

	p = p.normalized()
	s.Status = StatusScheduling
	// Countering with the challenger's own terms puts nothing new on the
	// table, so no counter is recorded as pending.
	s.HasCounterProposal = !p.Equal(s.Original)
	s.Current = p
	return s, nil
}
