package service

import (
	"github.com/hubly/helpdesk-service/internal/auth"
	"github.com/hubly/helpdesk-service/internal/repository"
)

// ScopeFor maps the caller to the visibility predicate every ticket read
// and every aggregate must apply: admins see everything, members only
// tickets assigned to them. Listing, detail, statistics and all analytics
// share this one rule so flags and counts can never disagree about what a
// caller is allowed to see.
func ScopeFor(principal *auth.Principal) repository.TicketScope {
	if principal.IsAdmin() {
		return repository.TicketScope{}
	}
	id := principal.UserID
	return repository.TicketScope{AssignedTo: &id}
}
