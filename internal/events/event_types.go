package events

import (
	"time"

	"github.com/hubly/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated        EventType = "ticket_created"
	EventTicketStatusChanged  EventType = "ticket_status_changed"
	EventTicketAssigned       EventType = "ticket_assigned"
	EventTicketMessageAdded   EventType = "ticket_message_added"
	EventMissedFlagCorrected  EventType = "ticket_missed_corrected"
	EventTicketDeleted        EventType = "ticket_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketCode string `json:"ticket_code"`
	UserName   string `json:"user_name"`
	UserEmail  string `json:"user_email"`
	AssignedTo string `json:"assigned_to"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssignee string `json:"old_assignee"`
	NewAssignee string `json:"new_assignee"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID    string `json:"message_id"`
	FromCustomer bool   `json:"from_customer"`
	TextPreview  string `json:"text_preview"`
}

// MissedFlagCorrectedPayload payload.
type MissedFlagCorrectedPayload struct {
	IsMissed bool `json:"is_missed"`
}
