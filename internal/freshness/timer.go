// Package freshness decides whether a ticket counts as "missed" and keeps
// the denormalized flag on the ticket consistent with that decision.
package freshness

import (
	"time"

	"github.com/hubly/helpdesk-service/internal/domain"
)

// TimerDuration converts the configured threshold into a single duration.
// A zero result means the missed-chat feature is disabled.
func TimerDuration(t domain.MissedChatTimer) time.Duration {
	return time.Duration(t.Hours)*time.Hour +
		time.Duration(t.Minutes)*time.Minute +
		time.Duration(t.Seconds)*time.Second
}
