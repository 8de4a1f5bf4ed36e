package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hubly/helpdesk-service/internal/auth"
	"github.com/hubly/helpdesk-service/internal/domain"
	"github.com/hubly/helpdesk-service/internal/freshness"
	apperrors "github.com/hubly/helpdesk-service/pkg/util"
)

type ticketFixture struct {
	svc      *TicketService
	tickets  *fakeTicketRepo
	messages *fakeMessageRepo
	users    *fakeUserRepo
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo()
	users := newFakeUserRepo(
		&domain.User{ID: "admin-1", Email: "admin@hubly.io", Role: domain.RoleAdmin},
		&domain.User{ID: "member-1", Email: "member@hubly.io", Role: domain.RoleMember},
	)
	settingsRepo := &fakeSettingsRepo{}
	logger := zap.NewNop()

	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		MessageRepo: messages,
		UserRepo:    users,
		Settings:    NewSettingsService(settingsRepo),
		Reconciler:  freshness.NewReconciler(tickets, nil, logger),
		Dispatcher:  nil,
		Logger:      logger,
	})
	return &ticketFixture{svc: svc, tickets: tickets, messages: messages, users: users}
}

func adminPrincipal() *auth.Principal {
	return &auth.Principal{UserID: "admin-1", Role: domain.RoleAdmin}
}

func memberPrincipal(id string) *auth.Principal {
	return &auth.Principal{UserID: id, Role: domain.RoleMember}
}

func TestTicketCreate(t *testing.T) {
	f := newTicketFixture(t)

	ticket, err := f.svc.Create(context.Background(), TicketCreateInput{
		UserName:       "  Jane Roe  ",
		UserEmail:      "Jane.Roe@Example.com",
		UserPhone:      "+1 555 0100",
		InitialMessage: "My order never arrived",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane Roe", ticket.UserName)
	assert.Equal(t, "jane.roe@example.com", ticket.UserEmail)
	assert.Equal(t, "admin-1", ticket.AssignedTo)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, fmt.Sprintf("%d-00001", time.Now().Year()), ticket.TicketCode)

	msgs, err := f.messages.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "My order never arrived", msgs[0].Text)
	assert.Nil(t, msgs[0].SenderID)
}

func TestTicketCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input TicketCreateInput
	}{
		{"missing name", TicketCreateInput{UserEmail: "a@b.co", UserPhone: "1"}},
		{"missing email", TicketCreateInput{UserName: "a", UserPhone: "1"}},
		{"missing phone", TicketCreateInput{UserName: "a", UserEmail: "a@b.co"}},
		{"malformed email", TicketCreateInput{UserName: "a", UserEmail: "not-an-email", UserPhone: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTicketFixture(t)
			_, err := f.svc.Create(context.Background(), tt.input)
			require.Error(t, err)

			var domainErr *apperrors.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
		})
	}
}

func TestTicketCodesAreSequentialPerYear(t *testing.T) {
	f := newTicketFixture(t)

	for i := 1; i <= 3; i++ {
		ticket, err := f.svc.Create(context.Background(), TicketCreateInput{
			UserName:  "Jane",
			UserEmail: "jane@example.com",
			UserPhone: "1",
		})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%d-%05d", time.Now().Year(), i), ticket.TicketCode)
	}
}

func TestTicketGetScoping(t *testing.T) {
	f := newTicketFixture(t)
	f.tickets.put(&domain.Ticket{ID: "t-1", AssignedTo: "member-1", Status: domain.TicketStatusOpen})

	_, _, _, err := f.svc.Get(context.Background(), adminPrincipal(), "t-1")
	assert.NoError(t, err)

	_, _, _, err = f.svc.Get(context.Background(), memberPrincipal("member-1"), "t-1")
	assert.NoError(t, err)

	// Out-of-scope is forbidden, not hidden as a not-found.
	_, _, _, err = f.svc.Get(context.Background(), memberPrincipal("member-2"), "t-1")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)

	_, _, _, err = f.svc.Get(context.Background(), adminPrincipal(), "missing")
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestTicketListPagination(t *testing.T) {
	f := newTicketFixture(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		f.tickets.put(&domain.Ticket{
			ID:            fmt.Sprintf("t-%d", i),
			AssignedTo:    "admin-1",
			Status:        domain.TicketStatusOpen,
			LastMessageAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	page, err := f.svc.List(context.Background(), adminPrincipal(), TicketListQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "t-4", page.Items[0].Ticket.ID)
	assert.Equal(t, "t-3", page.Items[1].Ticket.ID)
	assert.Equal(t, "t-3", page.LastID)

	page, err = f.svc.List(context.Background(), adminPrincipal(), TicketListQuery{Limit: 2, LastID: page.LastID})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "t-2", page.Items[0].Ticket.ID)
	assert.Equal(t, "t-1", page.Items[1].Ticket.ID)

	page, err = f.svc.List(context.Background(), adminPrincipal(), TicketListQuery{Limit: 2, LastID: page.LastID})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)
	assert.Equal(t, "t-0", page.Items[0].Ticket.ID)
}

func TestTicketListMemberSeesOnlyAssigned(t *testing.T) {
	f := newTicketFixture(t)
	f.tickets.put(&domain.Ticket{ID: "t-1", AssignedTo: "member-1", Status: domain.TicketStatusOpen})
	f.tickets.put(&domain.Ticket{ID: "t-2", AssignedTo: "member-2", Status: domain.TicketStatusOpen})
	f.tickets.put(&domain.Ticket{ID: "t-3", AssignedTo: "member-1", Status: domain.TicketStatusOpen})

	page, err := f.svc.List(context.Background(), memberPrincipal("member-1"), TicketListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	for _, item := range page.Items {
		assert.Equal(t, "member-1", item.Ticket.AssignedTo)
	}
}

func TestTicketListEnrichment(t *testing.T) {
	f := newTicketFixture(t)
	now := time.Now()
	f.tickets.put(&domain.Ticket{ID: "t-1", AssignedTo: "admin-1", Status: domain.TicketStatusOpen, LastMessageAt: now})
	f.messages.seed("t-1",
		domain.Message{ID: "m-1", TicketID: "t-1", Timestamp: now.Add(-time.Hour)},
		domain.Message{ID: "m-2", TicketID: "t-1", SenderID: strPtr("admin-1"), Text: "On it", Timestamp: now.Add(-time.Minute)},
	)

	page, err := f.svc.List(context.Background(), adminPrincipal(), TicketListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "On it", page.Items[0].LastMessage)
	assert.False(t, page.Items[0].IsMissed)
}

func TestTicketUpdateStatus(t *testing.T) {
	f := newTicketFixture(t)
	f.tickets.put(&domain.Ticket{ID: "t-1", AssignedTo: "admin-1", Status: domain.TicketStatusOpen})

	ticket, err := f.svc.UpdateStatus(context.Background(), adminPrincipal(), "t-1", domain.TicketStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)

	stored, err := f.tickets.GetByID(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, stored.Status)

	_, err = f.svc.UpdateStatus(context.Background(), adminPrincipal(), "t-1", domain.TicketStatus("closed"))
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestTicketAssign(t *testing.T) {
	f := newTicketFixture(t)
	f.tickets.put(&domain.Ticket{ID: "t-1", AssignedTo: "admin-1", Status: domain.TicketStatusOpen})

	ticket, err := f.svc.Assign(context.Background(), adminPrincipal(), "t-1", "member-1")
	require.NoError(t, err)
	assert.Equal(t, "member-1", ticket.AssignedTo)
	require.NotNil(t, ticket.Assignee)
	assert.Equal(t, "member-1", ticket.Assignee.ID)

	_, err = f.svc.Assign(context.Background(), adminPrincipal(), "t-1", "ghost")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestTicketDelete(t *testing.T) {
	f := newTicketFixture(t)
	f.tickets.put(&domain.Ticket{ID: "t-1", AssignedTo: "admin-1", Status: domain.TicketStatusOpen})

	require.NoError(t, f.svc.Delete(context.Background(), adminPrincipal(), "t-1"))

	_, err := f.tickets.GetByID(context.Background(), "t-1")
	assert.Error(t, err)

	err = f.svc.Delete(context.Background(), adminPrincipal(), "t-1")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestTicketStatsCountsFromFreshEvaluations(t *testing.T) {
	f := newTicketFixture(t)
	now := time.Now()

	// Stale flag: stored false, but the lone customer message is an hour
	// old against the 10 minute default threshold.
	f.tickets.put(&domain.Ticket{ID: "t-1", AssignedTo: "admin-1", Status: domain.TicketStatusOpen, IsMissed: false})
	f.messages.seed("t-1", domain.Message{TicketID: "t-1", Timestamp: now.Add(-time.Hour)})

	// Answered promptly, not missed.
	f.tickets.put(&domain.Ticket{ID: "t-2", AssignedTo: "admin-1", Status: domain.TicketStatusResolved})
	f.messages.seed("t-2",
		domain.Message{TicketID: "t-2", Timestamp: now.Add(-time.Hour)},
		domain.Message{TicketID: "t-2", SenderID: strPtr("admin-1"), Timestamp: now.Add(-59 * time.Minute)},
	)

	stats, err := f.svc.Stats(context.Background(), adminPrincipal())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.AllTickets)
	assert.Equal(t, 1, stats.ResolvedTickets)
	assert.Equal(t, 1, stats.UnresolvedTickets)
	assert.Equal(t, 1, stats.MissedTickets)
}

func TestTicketStatsMemberScope(t *testing.T) {
	f := newTicketFixture(t)
	f.tickets.put(&domain.Ticket{ID: "t-1", AssignedTo: "member-1", Status: domain.TicketStatusOpen})
	f.tickets.put(&domain.Ticket{ID: "t-2", AssignedTo: "member-2", Status: domain.TicketStatusResolved})

	stats, err := f.svc.Stats(context.Background(), memberPrincipal("member-1"))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.AllTickets)
	assert.Equal(t, 0, stats.ResolvedTickets)
	assert.Equal(t, 1, stats.UnresolvedTickets)
}
