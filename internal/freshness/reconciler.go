package freshness

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hubly/helpdesk-service/internal/domain"
	"github.com/hubly/helpdesk-service/internal/events"
)

const writeBackTimeout = 5 * time.Second

// FlagStore is the single write the reconciler needs.
type FlagStore interface {
	UpdateMissed(ctx context.Context, id string, missed bool) error
}

// Reconciler recomputes the missed flag at read time and corrects the
// stored value when it drifts. The write-back is fire-and-forget: it is
// idempotent and commutative (two concurrent corrections store the same
// derived boolean), so races between readers need no locking, and a
// persistence failure never fails the read being served.
type Reconciler struct {
	store      FlagStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewReconciler builds a reconciler. The dispatcher is optional and
// receives a correction event for each flag the reconciler flips.
func NewReconciler(store FlagStore, dispatcher events.Dispatcher, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: store, dispatcher: dispatcher, logger: logger}
}

// Reconcile returns the freshly evaluated missed value for the ticket,
// scheduling a correction of the stored flag when it differs. Callers
// always get their own fresh evaluation, never the stored value.
func (r *Reconciler) Reconcile(ticket *domain.Ticket, messages []domain.Message, threshold time.Duration, now time.Time) bool {
	fresh := Evaluate(messages, threshold, now)
	if fresh == ticket.IsMissed {
		return fresh
	}

	id := ticket.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeBackTimeout)
		defer cancel()
		if err := r.store.UpdateMissed(ctx, id, fresh); err != nil {
			r.logger.Warn("missed flag write-back failed",
				zap.String("ticket_id", id),
				zap.Bool("is_missed", fresh),
				zap.Error(err))
			return
		}
		if r.dispatcher != nil {
			_ = r.dispatcher.Publish(ctx, events.Event{
				ID:        uuid.NewString(),
				Type:      events.EventMissedFlagCorrected,
				TicketID:  id,
				Timestamp: time.Now(),
				Payload:   events.MissedFlagCorrectedPayload{IsMissed: fresh},
			})
		}
	}()
	return fresh
}
