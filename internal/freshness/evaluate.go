package freshness

import (
	"time"

	"github.com/hubly/helpdesk-service/internal/domain"
)

// Evaluate reports whether a ticket counts as missed: its first customer
// message has sat unanswered longer than the threshold, and no staff reply
// has arrived after it.
//
// The suppression rule is "any staff reply strictly after the first
// customer message"; once such a reply exists the ticket can never become
// missed again from this timeline, no matter how long later customer
// messages wait. Whether a reply that predates the first customer message
// should also suppress is a product question; this is the behavior the
// dashboards currently expect.
//
// Evaluate is a total function: a zero threshold (feature disabled), an
// empty timeline, or a timeline with no customer message all yield false.
func Evaluate(messages []domain.Message, threshold time.Duration, now time.Time) bool {
	if threshold == 0 {
		return false
	}
	if len(messages) == 0 {
		return false
	}

	var first *domain.Message
	for i := range messages {
		if messages[i].FromCustomer() {
			first = &messages[i]
			break
		}
	}
	if first == nil {
		return false
	}
	firstAt := first.SentAt()

	for i := range messages {
		if messages[i].FromCustomer() {
			continue
		}
		if messages[i].SentAt().After(firstAt) {
			return false
		}
	}

	return now.Sub(firstAt) > threshold
}

// FirstCustomerMessageAt returns the time of the earliest customer message,
// or false when the timeline has none. Used by the weekly trend buckets.
func FirstCustomerMessageAt(messages []domain.Message) (time.Time, bool) {
	for i := range messages {
		if messages[i].FromCustomer() {
			return messages[i].SentAt(), true
		}
	}
	return time.Time{}, false
}
