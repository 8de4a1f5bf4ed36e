package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
)

// ValidTicketStatus reports whether s is a known lifecycle state.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// Ticket is one customer support conversation. AssignedTo is never empty
// after creation. IsMissed is denormalized: the stored value may lag the
// true evaluation between writes and is corrected on the next read.
type Ticket struct {
	ID            string
	TicketCode    string
	UserName      string
	UserEmail     string
	UserPhone     string
	AssignedTo    string
	Status        TicketStatus
	LastMessageAt time.Time
	IsMissed      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Assignee is populated on read paths that join the users table.
	Assignee *User
}

// TicketStats aggregates scoped ticket counts for dashboards.
type TicketStats struct {
	AllTickets        int
	ResolvedTickets   int
	UnresolvedTickets int
	MissedTickets     int
}
