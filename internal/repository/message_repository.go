package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hubly/helpdesk-service/internal/domain"
)

// MessageRepository manages the append-only conversation log.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (ticket_id, sender_id, text)
        VALUES ($1,$2,$3)
        RETURNING id, ts, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.TicketID,
		msg.SenderID,
		msg.Text,
	).Scan(&msg.ID, &msg.Timestamp, &msg.CreatedAt)
}

// ListByTicket returns the timeline oldest to newest; timestamp ties fall
// back to insertion order.
func (r *messageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	const query = `
        SELECT id, ticket_id, sender_id, text, ts, created_at
        FROM messages WHERE ticket_id=$1 ORDER BY ts ASC, created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.SenderID,
			&msg.Text,
			&msg.Timestamp,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
