package dto

import "time"

// SendMessageRequest appends a staff reply.
type SendMessageRequest struct {
	TicketID string `json:"ticketId"`
	Text     string `json:"text"`
}

// CustomerMessageRequest appends a widget turn to an existing ticket.
type CustomerMessageRequest struct {
	Text string `json:"text"`
}

// MessageResponse is the timeline projection of a message.
type MessageResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticketId"`
	SenderID  *string   `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
