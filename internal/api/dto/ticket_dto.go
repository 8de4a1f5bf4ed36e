package dto

import (
	"time"

	"github.com/hubly/helpdesk-service/internal/domain"
)

// CreateTicketRequest is the widget payload.
type CreateTicketRequest struct {
	UserName       string `json:"userName"`
	UserEmail      string `json:"userEmail"`
	UserPhone      string `json:"userPhone"`
	InitialMessage string `json:"initialMessage"`
}

// UpdateTicketRequest carries a status change.
type UpdateTicketRequest struct {
	Status string `json:"status"`
}

// AssignTicketRequest carries a reassignment.
type AssignTicketRequest struct {
	AssignedTo string `json:"assignedTo"`
	UserID     string `json:"userId"`
}

// AssigneeResponse is the projected staff reference on a ticket.
type AssigneeResponse struct {
	ID        string      `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
}

// TicketResponse is the listing/detail projection of a ticket.
type TicketResponse struct {
	ID            string              `json:"id"`
	TicketCode    string              `json:"ticketCode"`
	UserName      string              `json:"userName"`
	UserEmail     string              `json:"userEmail"`
	UserPhone     string              `json:"userPhone"`
	AssignedTo    *AssigneeResponse   `json:"assignedTo"`
	Status        domain.TicketStatus `json:"status"`
	LastMessage   string              `json:"lastMessage,omitempty"`
	LastMessageAt time.Time           `json:"lastMessageAt"`
	IsMissed      bool                `json:"isMissed"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// TicketListResponse is the paginated listing envelope.
type TicketListResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Tickets []TicketResponse `json:"tickets"`
	HasMore bool             `json:"hasMore"`
	LastID  string           `json:"lastId,omitempty"`
}

// TicketStatsResponse is the dashboard counts envelope.
type TicketStatsResponse struct {
	AllTickets        int `json:"allTickets"`
	ResolvedTickets   int `json:"resolvedTickets"`
	UnresolvedTickets int `json:"unresolvedTickets"`
	MissedTickets     int `json:"missedTickets"`
}
