package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hubly/helpdesk-service/internal/domain"
	"github.com/hubly/helpdesk-service/internal/repository"
)

// fakeTicketRepo is an in-memory TicketRepository mirroring the SQL
// semantics the services rely on: keyset-ordered listing, scope filters,
// and counter-based ticket codes.
type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	seq     int
	listErr error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) put(t *domain.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dup := *t
	r.tickets[t.ID] = &dup
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if ticket.ID == "" {
		ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	}
	ticket.TicketCode = fmt.Sprintf("%d-%05d", time.Now().Year(), r.seq)
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	if ticket.LastMessageAt.IsZero() {
		ticket.LastMessageAt = now
	}
	dup := *ticket
	r.tickets[ticket.ID] = &dup
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	dup := *t
	return &dup, nil
}

func (r *fakeTicketRepo) List(ctx context.Context, filter repository.TicketListFilter) ([]domain.Ticket, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Ticket
	for _, t := range r.tickets {
		if !filter.Scope.Allows(t) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(t.UserName), needle) &&
				!strings.Contains(strings.ToLower(t.UserEmail), needle) &&
				!strings.Contains(strings.ToLower(t.TicketCode), needle) {
				continue
			}
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		return out[i].ID > out[j].ID
	})
	if filter.Before != nil {
		idx := 0
		for idx < len(out) {
			t := out[idx]
			if t.LastMessageAt.Before(filter.Before.LastMessageAt) ||
				(t.LastMessageAt.Equal(filter.Before.LastMessageAt) && t.ID < filter.Before.ID) {
				break
			}
			idx++
		}
		out = out[idx:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeTicketRepo) ListByScope(ctx context.Context, scope repository.TicketScope) ([]domain.Ticket, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, t := range r.tickets {
		if scope.Allows(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTicketRepo) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.Status = status
	return nil
}

func (r *fakeTicketRepo) UpdateAssignee(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.AssignedTo = userID
	return nil
}

func (r *fakeTicketRepo) UpdateMissed(ctx context.Context, id string, missed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.IsMissed = missed
	return nil
}

func (r *fakeTicketRepo) TouchLastMessage(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.LastMessageAt = at
	return nil
}

func (r *fakeTicketRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) CountByStatus(ctx context.Context, scope repository.TicketScope) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resolved, total := 0, 0
	for _, t := range r.tickets {
		if !scope.Allows(t) {
			continue
		}
		total++
		if t.Status == domain.TicketStatusResolved {
			resolved++
		}
	}
	return resolved, total, nil
}

func (r *fakeTicketRepo) CountCreatedBetween(ctx context.Context, scope repository.TicketScope, from, to *time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, t := range r.tickets {
		if !scope.Allows(t) {
			continue
		}
		if from != nil && t.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && t.CreatedAt.After(*to) {
			continue
		}
		count++
	}
	return count, nil
}

// fakeMessageRepo stores timelines per ticket in insertion order.
type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[string][]domain.Message
	seq      int
	listErr  error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string][]domain.Message)}
}

func (r *fakeMessageRepo) seed(ticketID string, msgs ...domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[ticketID] = append(r.messages[ticketID], msgs...)
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	msg.ID = fmt.Sprintf("msg-%d", r.seq)
	now := time.Now()
	msg.CreatedAt = now
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}
	r.messages[msg.TicketID] = append(r.messages[msg.TicketID], *msg)
	return nil
}

func (r *fakeMessageRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := append([]domain.Message{}, r.messages[ticketID]...)
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].SentAt().Before(msgs[j].SentAt())
	})
	return msgs, nil
}

// fakeUserRepo keys users by id and email.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetAdmin(ctx context.Context) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Role == domain.RoleAdmin {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// fakeSettingsRepo holds the singleton record in memory.
type fakeSettingsRepo struct {
	mu          sync.Mutex
	settings    *domain.ChatbotSettings
	getCount    int
	createErr   error
	updateErr   error
	deleteErr   error
	forceGetErr error
}

func (r *fakeSettingsRepo) Get(ctx context.Context) (*domain.ChatbotSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCount++
	if r.forceGetErr != nil {
		return nil, r.forceGetErr
	}
	if r.settings == nil {
		return nil, pgx.ErrNoRows
	}
	dup := *r.settings
	return &dup, nil
}

func (r *fakeSettingsRepo) Create(ctx context.Context, settings *domain.ChatbotSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if settings.ID == "" {
		settings.ID = "settings-1"
	}
	dup := *settings
	r.settings = &dup
	return nil
}

func (r *fakeSettingsRepo) Update(ctx context.Context, settings *domain.ChatbotSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	dup := *settings
	r.settings = &dup
	return nil
}

func (r *fakeSettingsRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.settings = nil
	return nil
}
