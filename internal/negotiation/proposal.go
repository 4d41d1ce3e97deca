package negotiation

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Field limits applied to proposal payloads.
const (
	MinDurationMinutes = 30
	MaxDurationMinutes = 300
	MaxLocationLength  = 500
	MaxMessageLength   = 500
)

// Proposal carries the match terms under negotiation. Date and time are
// optional: a missing date is a valid "to be decided" state.
type Proposal struct {
	Date            *time.Time
	TimeOfDay       string
	Location        string
	DurationMinutes *int
	Message         string
}

// Equal reports whether two proposals carry the same match terms.
// The free-text message is not a term and does not participate.
func (p Proposal) Equal(other Proposal) bool {
	if !equalDate(p.Date, other.Date) {
		return false
	}
	if strings.TrimSpace(p.TimeOfDay) != strings.TrimSpace(other.TimeOfDay) {
		return false
	}
	if strings.TrimSpace(p.Location) != strings.TrimSpace(other.Location) {
		return false
	}
	return equalDuration(p.DurationMinutes, other.DurationMinutes)
}

func (p Proposal) normalized() Proposal {
	p.TimeOfDay = strings.TrimSpace(p.TimeOfDay)
	p.Location = strings.TrimSpace(p.Location)
	p.Message = strings.TrimSpace(p.Message)
	return p
}

// FieldErrors maps offending field names to human-readable messages. It is
// returned instead of a generic error so callers can highlight inputs.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field + ": " + e[field]
	}
	return strings.Join(parts, "; ")
}

// ValidateProposal checks the proposal field constraints and returns a
// field-error map, or nil when the payload is acceptable.
func ValidateProposal(p Proposal) FieldErrors {
	errs := FieldErrors{}

	location := strings.TrimSpace(p.Location)
	switch {
	case location == "":
		errs["location"] = "location is required"
	case len(location) > MaxLocationLength:
		errs["location"] = fmt.Sprintf("location must be at most %d characters", MaxLocationLength)
	}

	if p.DurationMinutes != nil {
		if d := *p.DurationMinutes; d < MinDurationMinutes || d > MaxDurationMinutes {
			errs["duration"] = fmt.Sprintf("duration must be between %d and %d minutes", MinDurationMinutes, MaxDurationMinutes)
		}
	}

	if len(strings.TrimSpace(p.Message)) > MaxMessageLength {
		errs["message"] = fmt.Sprintf("message must be at most %d characters", MaxMessageLength)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func equalDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func equalDuration(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
