package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hubly/helpdesk-service/internal/domain"
)

// ListCursor marks the last-seen row for keyset pagination. Listing is
// ordered by (last_message_at, id) descending, so the next page starts
// strictly below the cursor row.
type ListCursor struct {
	LastMessageAt time.Time
	ID            string
}

// TicketListFilter captures listing parameters.
type TicketListFilter struct {
	Scope  TicketScope
	Status *domain.TicketStatus
	Search string
	Before *ListCursor
	Limit  int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error)
	ListByScope(ctx context.Context, scope TicketScope) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error
	UpdateAssignee(ctx context.Context, id, userID string) error
	UpdateMissed(ctx context.Context, id string, missed bool) error
	TouchLastMessage(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, scope TicketScope) (resolved, total int, err error)
	CountCreatedBetween(ctx context.Context, scope TicketScope, from, to *time.Time) (int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `t.id, t.ticket_code, t.user_name, t.user_email, t.user_phone, t.assigned_to,
	t.status, t.last_message_at, t.is_missed, t.created_at, t.updated_at,
	u.first_name, u.last_name, u.email, u.role`

// Create inserts the ticket, allocating its code from the per-year counter
// in the same transaction. The code is assigned exactly once and never
// changes afterwards.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	year := time.Now().Year()
	var seq int
	const seqQuery = `
        INSERT INTO ticket_code_counters (year, last_seq) VALUES ($1, 1)
        ON CONFLICT (year) DO UPDATE SET last_seq = ticket_code_counters.last_seq + 1
        RETURNING last_seq`
	if err := tx.QueryRow(ctx, seqQuery, year).Scan(&seq); err != nil {
		return err
	}
	ticket.TicketCode = fmt.Sprintf("%d-%05d", year, seq)

	const insertQuery = `
        INSERT INTO tickets (ticket_code, user_name, user_email, user_phone, assigned_to, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, last_message_at, is_missed, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertQuery,
		ticket.TicketCode,
		ticket.UserName,
		ticket.UserEmail,
		ticket.UserPhone,
		ticket.AssignedTo,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.LastMessageAt, &ticket.IsMissed, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM tickets t
        JOIN users u ON u.id = t.assigned_to
        WHERE t.id=$1`, ticketColumns)

	row := r.pool.QueryRow(ctx, query, id)
	return scanTicket(row)
}

func (r *ticketRepository) List(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	appendScope(&clauses, &args, filter.Scope)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if strings.TrimSpace(filter.Search) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(filter.Search))+"%")
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(t.ticket_code) LIKE $%d OR LOWER(t.user_name) LIKE $%d OR LOWER(t.user_email) LIKE $%d)",
			len(args), len(args), len(args)))
	}
	if filter.Before != nil {
		args = append(args, filter.Before.LastMessageAt, filter.Before.ID)
		clauses = append(clauses, fmt.Sprintf("(t.last_message_at, t.id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
        SELECT %s FROM tickets t
        JOIN users u ON u.id = t.assigned_to
        WHERE %s
        ORDER BY t.last_message_at DESC, t.id DESC
        LIMIT %d`, ticketColumns, strings.Join(clauses, " AND "), limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByScope(ctx context.Context, scope TicketScope) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}
	appendScope(&clauses, &args, scope)

	query := fmt.Sprintf(`
        SELECT %s FROM tickets t
        JOIN users u ON u.id = t.assigned_to
        WHERE %s
        ORDER BY t.created_at ASC`, ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	return r.execSingle(ctx, `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
}

func (r *ticketRepository) UpdateAssignee(ctx context.Context, id, userID string) error {
	return r.execSingle(ctx, `UPDATE tickets SET assigned_to=$1, updated_at=NOW() WHERE id=$2`, userID, id)
}

func (r *ticketRepository) UpdateMissed(ctx context.Context, id string, missed bool) error {
	return r.execSingle(ctx, `UPDATE tickets SET is_missed=$1, updated_at=NOW() WHERE id=$2`, missed, id)
}

func (r *ticketRepository) TouchLastMessage(ctx context.Context, id string, at time.Time) error {
	return r.execSingle(ctx, `UPDATE tickets SET last_message_at=$1, updated_at=NOW() WHERE id=$2`, at, id)
}

// Delete removes the ticket; its messages cascade via foreign key.
func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	return r.execSingle(ctx, `DELETE FROM tickets WHERE id=$1`, id)
}

func (r *ticketRepository) CountByStatus(ctx context.Context, scope TicketScope) (int, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	appendScope(&clauses, &args, scope)

	query := fmt.Sprintf(`
        SELECT COUNT(*) FILTER (WHERE status='resolved'), COUNT(*)
        FROM tickets t WHERE %s`, strings.Join(clauses, " AND "))

	var resolved, total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&resolved, &total); err != nil {
		return 0, 0, err
	}
	return resolved, total, nil
}

func (r *ticketRepository) CountCreatedBetween(ctx context.Context, scope TicketScope, from, to *time.Time) (int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	appendScope(&clauses, &args, scope)
	if from != nil {
		args = append(args, *from)
		clauses = append(clauses, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		clauses = append(clauses, fmt.Sprintf("t.created_at <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM tickets t WHERE %s`, strings.Join(clauses, " AND "))
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) execSingle(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func appendScope(clauses *[]string, args *[]any, scope TicketScope) {
	if scope.AssignedTo == nil {
		return
	}
	*args = append(*args, *scope.AssignedTo)
	*clauses = append(*clauses, fmt.Sprintf("t.assigned_to=$%d", len(*args)))
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var assignee domain.User
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketCode,
		&ticket.UserName,
		&ticket.UserEmail,
		&ticket.UserPhone,
		&ticket.AssignedTo,
		&ticket.Status,
		&ticket.LastMessageAt,
		&ticket.IsMissed,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&assignee.FirstName,
		&assignee.LastName,
		&assignee.Email,
		&assignee.Role,
	); err != nil {
		return nil, err
	}
	assignee.ID = ticket.AssignedTo
	ticket.Assignee = &assignee
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
