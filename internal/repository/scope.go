package repository

import "github.com/hubly/helpdesk-service/internal/domain"

// TicketScope is the visibility predicate applied to every ticket query.
// A zero scope is unrestricted (admin); a member scope pins AssignedTo.
type TicketScope struct {
	AssignedTo *string
}

// Allows reports whether the ticket falls inside the scope. Used by
// single-record reads so listing, detail and aggregates share one rule.
func (s TicketScope) Allows(t *domain.Ticket) bool {
	if s.AssignedTo == nil {
		return true
	}
	return t.AssignedTo == *s.AssignedTo
}
