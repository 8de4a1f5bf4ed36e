package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hubly/helpdesk-service/internal/auth"
	"github.com/hubly/helpdesk-service/internal/domain"
	"github.com/hubly/helpdesk-service/internal/events"
	"github.com/hubly/helpdesk-service/internal/repository"
	apperrors "github.com/hubly/helpdesk-service/pkg/util"
)

// MessageService appends conversation turns and reads timelines.
type MessageService struct {
	tickets    repository.TicketRepository
	messages   repository.MessageRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewMessageService constructs the service.
func NewMessageService(tickets repository.TicketRepository, messages repository.MessageRepository, dispatcher events.Dispatcher, logger *zap.Logger) *MessageService {
	return &MessageService{tickets: tickets, messages: messages, dispatcher: dispatcher, logger: logger}
}

// Send appends a staff reply to a ticket in the caller's scope.
func (s *MessageService) Send(ctx context.Context, principal *auth.Principal, ticketID, text string) (*domain.Message, error) {
	senderID := principal.UserID
	return s.append(ctx, &senderID, ScopeFor(principal), ticketID, text)
}

// SendFromCustomer appends a customer turn arriving through the widget.
func (s *MessageService) SendFromCustomer(ctx context.Context, ticketID, text string) (*domain.Message, error) {
	return s.append(ctx, nil, repository.TicketScope{}, ticketID, text)
}

// ListByTicket returns the ordered timeline for a ticket in scope.
func (s *MessageService) ListByTicket(ctx context.Context, principal *auth.Principal, ticketID string) ([]domain.Message, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if !ScopeFor(principal).Allows(ticket) {
		return nil, apperrors.NewForbidden("not authorized to access this ticket")
	}
	return s.messages.ListByTicket(ctx, ticketID)
}

func (s *MessageService) append(ctx context.Context, senderID *string, scope repository.TicketScope, ticketID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("message text is required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if !scope.Allows(ticket) {
		return nil, apperrors.NewForbidden("not authorized to message this ticket")
	}

	msg := &domain.Message{
		TicketID: ticket.ID,
		SenderID: senderID,
		Text:     text,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.tickets.TouchLastMessage(ctx, ticket.ID, msg.SentAt()); err != nil {
		s.logger.Warn("failed to bump last message time",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketMessageAdded,
			TicketID:  ticket.ID,
			ActorID:   senderID,
			Timestamp: time.Now(),
			Payload: events.TicketMessageAddedPayload{
				MessageID:    msg.ID,
				FromCustomer: msg.FromCustomer(),
				TextPreview:  preview(msg.Text, 120),
			},
		})
	}
	return msg, nil
}

func preview(text string, max int) string {
	if len(text) <= max {
		return text
	}
	if max <= 3 {
		return text[:max]
	}
	return text[:max-3] + "..."
}
