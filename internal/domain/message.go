package domain

import "time"

// Message is a single turn of a ticket conversation. A nil SenderID means
// the customer authored it; otherwise it references the staff sender.
// Messages are immutable once created and are deleted only by ticket
// cascade. Timeline ordering is Timestamp ascending, ties broken by
// insertion order.
type Message struct {
	ID        string
	TicketID  string
	SenderID  *string
	Text      string
	Timestamp time.Time
	CreatedAt time.Time
}

// FromCustomer reports whether the message was authored by the customer.
func (m *Message) FromCustomer() bool {
	return m.SenderID == nil
}

// SentAt returns the ordering time: the explicit timestamp when set,
// otherwise the creation time.
func (m *Message) SentAt() time.Time {
	if !m.Timestamp.IsZero() {
		return m.Timestamp
	}
	return m.CreatedAt
}
