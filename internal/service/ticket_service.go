package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hubly/helpdesk-service/internal/auth"
	"github.com/hubly/helpdesk-service/internal/domain"
	"github.com/hubly/helpdesk-service/internal/events"
	"github.com/hubly/helpdesk-service/internal/freshness"
	"github.com/hubly/helpdesk-service/internal/repository"
	apperrors "github.com/hubly/helpdesk-service/pkg/util"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// TicketService coordinates ticket workflows: the widget-facing create
// path, the staff read paths with freshness reconciliation, and the
// scoped statistics aggregate.
type TicketService struct {
	tickets    repository.TicketRepository
	messages   repository.MessageRepository
	users      repository.UserRepository
	settings   *SettingsService
	reconciler *freshness.Reconciler
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.MessageRepository
	UserRepo    repository.UserRepository
	Settings    *SettingsService
	Reconciler  *freshness.Reconciler
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		users:      deps.UserRepo,
		settings:   deps.Settings,
		reconciler: deps.Reconciler,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// TicketCreateInput describes the widget's ticket creation payload.
type TicketCreateInput struct {
	UserName       string
	UserEmail      string
	UserPhone      string
	InitialMessage string
}

// TicketListQuery captures listing parameters.
type TicketListQuery struct {
	Limit  int
	LastID string
	Status string
	Search string
}

// EnrichedTicket pairs a ticket with its last message text and the
// freshly reconciled missed value.
type EnrichedTicket struct {
	Ticket      domain.Ticket
	LastMessage string
	IsMissed    bool
}

// TicketPage is one page of the scoped listing.
type TicketPage struct {
	Items   []EnrichedTicket
	HasMore bool
	LastID  string
}

// List returns a page of tickets visible to the caller, newest activity
// first, each enriched with its last message and reconciled missed flag.
func (s *TicketService) List(ctx context.Context, principal *auth.Principal, query TicketListQuery) (*TicketPage, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	filter := repository.TicketListFilter{
		Scope:  ScopeFor(principal),
		Search: query.Search,
		Limit:  limit,
	}
	if query.Status != "" {
		status := domain.TicketStatus(query.Status)
		if domain.ValidTicketStatus(status) {
			filter.Status = &status
		}
	}
	if query.LastID != "" {
		// The cursor is the last-seen ticket id; resume strictly below
		// its position in the (last_message_at, id) ordering.
		cursorTicket, err := s.tickets.GetByID(ctx, query.LastID)
		if err == nil {
			filter.Before = &repository.ListCursor{
				LastMessageAt: cursorTicket.LastMessageAt,
				ID:            cursorTicket.ID,
			}
		}
	}

	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	threshold := s.thresholdOrDisabled(ctx)
	now := time.Now()

	// Per-ticket enrichment is independent; fan out across the page.
	items := make([]EnrichedTicket, len(tickets))
	var wg sync.WaitGroup
	for i := range tickets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items[i] = s.enrich(ctx, &tickets[i], threshold, now)
		}(i)
	}
	wg.Wait()

	page := &TicketPage{
		Items:   items,
		HasMore: len(tickets) == limit,
	}
	if len(tickets) > 0 {
		page.LastID = tickets[len(tickets)-1].ID
	}
	return page, nil
}

// Get fetches a single ticket with its ordered messages. Members are
// forbidden from tickets not assigned to them; that is an authorization
// failure, not a not-found.
func (s *TicketService) Get(ctx context.Context, principal *auth.Principal, id string) (*domain.Ticket, []domain.Message, bool, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, false, apperrors.NewNotFound("ticket", nil)
		}
		return nil, nil, false, err
	}
	if !ScopeFor(principal).Allows(ticket) {
		return nil, nil, false, apperrors.NewForbidden("not authorized to access this ticket")
	}

	msgs, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, false, err
	}

	missed := s.reconciler.Reconcile(ticket, msgs, s.thresholdOrDisabled(ctx), time.Now())
	return ticket, msgs, missed, nil
}

// Create opens a ticket from the chat widget, default-assigning it to the
// admin and recording the optional opening customer message.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	name := strings.TrimSpace(input.UserName)
	email := strings.ToLower(strings.TrimSpace(input.UserEmail))
	phone := strings.TrimSpace(input.UserPhone)
	if name == "" || email == "" || phone == "" {
		return nil, apperrors.NewValidationError("name, email and phone are required", nil)
	}
	if !emailPattern.MatchString(email) {
		return nil, apperrors.NewValidationError("invalid email address", map[string]any{"field": "userEmail"})
	}

	admin, err := s.users.GetAdmin(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInternalError(errors.New("no admin user found"))
		}
		return nil, err
	}

	ticket := &domain.Ticket{
		UserName:   name,
		UserEmail:  email,
		UserPhone:  phone,
		AssignedTo: admin.ID,
		Status:     domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	if text := strings.TrimSpace(input.InitialMessage); text != "" {
		msg := &domain.Message{TicketID: ticket.ID, Text: text}
		if err := s.messages.Create(ctx, msg); err != nil {
			// Ticket creation already succeeded; the opening message is
			// best-effort, matching the widget contract.
			s.logger.Warn("failed to create initial message",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
		} else {
			ticket.LastMessageAt = msg.SentAt()
			if err := s.tickets.TouchLastMessage(ctx, ticket.ID, ticket.LastMessageAt); err != nil {
				s.logger.Warn("failed to bump last message time",
					zap.String("ticket_id", ticket.ID), zap.Error(err))
			}
		}
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			TicketCode: ticket.TicketCode,
			UserName:   ticket.UserName,
			UserEmail:  ticket.UserEmail,
			AssignedTo: ticket.AssignedTo,
		},
	})
	return ticket, nil
}

// UpdateStatus changes the lifecycle state of a ticket in scope.
func (s *TicketService) UpdateStatus(ctx context.Context, principal *auth.Principal, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidTicketStatus(status) {
		return nil, apperrors.NewValidationError("invalid status value", map[string]any{"field": "status"})
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if !ScopeFor(principal).Allows(ticket) {
		return nil, apperrors.NewForbidden("not authorized to update this ticket")
	}

	oldStatus := ticket.Status
	if err := s.tickets.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	ticket.Status = status

	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  &principal.UserID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return ticket, nil
}

// Assign moves the ticket to another staff member.
func (s *TicketService) Assign(ctx context.Context, principal *auth.Principal, id, userID string) (*domain.Ticket, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user id is required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	assignee, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	oldAssignee := ticket.AssignedTo
	if err := s.tickets.UpdateAssignee(ctx, id, assignee.ID); err != nil {
		return nil, err
	}
	ticket.AssignedTo = assignee.ID
	ticket.Assignee = assignee

	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  &principal.UserID,
		Payload: events.TicketAssignedPayload{
			OldAssignee: oldAssignee,
			NewAssignee: assignee.ID,
		},
	})
	return ticket, nil
}

// Delete removes a ticket and cascades its messages. Admin only; the
// route guard enforces the role.
func (s *TicketService) Delete(ctx context.Context, principal *auth.Principal, id string) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", nil)
		}
		return err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
		ActorID:  &principal.UserID,
	})
	return nil
}

// Stats runs a reconciliation pass over every ticket in scope and returns
// the dashboard counts. The missed count is taken from the fresh
// evaluations, not the stored flags, so it cannot lag the write-backs.
func (s *TicketService) Stats(ctx context.Context, principal *auth.Principal) (*domain.TicketStats, error) {
	tickets, err := s.tickets.ListByScope(ctx, ScopeFor(principal))
	if err != nil {
		return nil, err
	}

	threshold := s.thresholdOrDisabled(ctx)
	now := time.Now()

	missed := make([]bool, len(tickets))
	var wg sync.WaitGroup
	for i := range tickets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msgs, err := s.messages.ListByTicket(ctx, tickets[i].ID)
			if err != nil {
				s.logger.Warn("stats enrichment failed",
					zap.String("ticket_id", tickets[i].ID), zap.Error(err))
				return
			}
			missed[i] = s.reconciler.Reconcile(&tickets[i], msgs, threshold, now)
		}(i)
	}
	wg.Wait()

	stats := &domain.TicketStats{AllTickets: len(tickets)}
	for i := range tickets {
		if tickets[i].Status == domain.TicketStatusResolved {
			stats.ResolvedTickets++
		} else {
			stats.UnresolvedTickets++
		}
		if missed[i] {
			stats.MissedTickets++
		}
	}
	return stats, nil
}

func (s *TicketService) enrich(ctx context.Context, ticket *domain.Ticket, threshold time.Duration, now time.Time) EnrichedTicket {
	item := EnrichedTicket{Ticket: *ticket}

	msgs, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		// Degrade to a safe default rather than failing the page.
		s.logger.Warn("ticket enrichment failed",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return item
	}
	if len(msgs) > 0 {
		item.LastMessage = msgs[len(msgs)-1].Text
	}
	item.IsMissed = s.reconciler.Reconcile(ticket, msgs, threshold, now)
	return item
}

// thresholdOrDisabled resolves the configured threshold once per
// operation; absent or unreadable settings disable missed detection.
func (s *TicketService) thresholdOrDisabled(ctx context.Context) time.Duration {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("failed to load chatbot settings", zap.Error(err))
		return 0
	}
	return freshness.TimerDuration(settings.MissedChatTimer)
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
