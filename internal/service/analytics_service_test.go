package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hubly/helpdesk-service/internal/domain"
)

type analyticsFixture struct {
	svc      *AnalyticsService
	tickets  *fakeTicketRepo
	messages *fakeMessageRepo
	settings *fakeSettingsRepo
}

func newAnalyticsFixture(t *testing.T) *analyticsFixture {
	t.Helper()
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo()
	settings := &fakeSettingsRepo{}
	svc := NewAnalyticsService(tickets, messages, NewSettingsService(settings), zap.NewNop())
	return &analyticsFixture{svc: svc, tickets: tickets, messages: messages, settings: settings}
}

func TestAverageReplyTime(t *testing.T) {
	f := newAnalyticsFixture(t)
	base := time.Now().Add(-24 * time.Hour)

	// Replied after 60s.
	f.tickets.put(&domain.Ticket{ID: "t-1", AssignedTo: "admin-1", Status: domain.TicketStatusOpen})
	f.messages.seed("t-1",
		domain.Message{TicketID: "t-1", Timestamp: base},
		domain.Message{TicketID: "t-1", SenderID: strPtr("admin-1"), Timestamp: base.Add(60 * time.Second)},
	)
	// Replied after 120s.
	f.tickets.put(&domain.Ticket{ID: "t-2", AssignedTo: "admin-1", Status: domain.TicketStatusOpen})
	f.messages.seed("t-2",
		domain.Message{TicketID: "t-2", Timestamp: base},
		domain.Message{TicketID: "t-2", SenderID: strPtr("admin-1"), Timestamp: base.Add(120 * time.Second)},
	)
	// Never replied: does not qualify.
	f.tickets.put(&domain.Ticket{ID: "t-3", AssignedTo: "admin-1", Status: domain.TicketStatusOpen})
	f.messages.seed("t-3", domain.Message{TicketID: "t-3", Timestamp: base})

	result, err := f.svc.AverageReplyTime(context.Background(), adminPrincipal())
	require.NoError(t, err)
	assert.Equal(t, 2, result.ReplyCount)
	assert.Equal(t, 90.0, result.AverageReplyTimeSeconds)
}

func TestAverageReplyTimeEmptyScope(t *testing.T) {
	f := newAnalyticsFixture(t)

	result, err := f.svc.AverageReplyTime(context.Background(), adminPrincipal())
	require.NoError(t, err)
	assert.Equal(t, 0, result.ReplyCount)
	assert.Equal(t, 0.0, result.AverageReplyTimeSeconds)
}

func TestResolvedTicketsPercentage(t *testing.T) {
	f := newAnalyticsFixture(t)
	f.tickets.put(&domain.Ticket{ID: "t-1", AssignedTo: "admin-1", Status: domain.TicketStatusResolved})
	f.tickets.put(&domain.Ticket{ID: "t-2", AssignedTo: "admin-1", Status: domain.TicketStatusResolved})
	f.tickets.put(&domain.Ticket{ID: "t-3", AssignedTo: "admin-1", Status: domain.TicketStatusOpen})

	result, err := f.svc.ResolvedTicketsData(context.Background(), adminPrincipal())
	require.NoError(t, err)
	assert.Equal(t, 2, result.ResolvedCount)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 66.7, result.Percentage)
}

func TestResolvedTicketsEmptyScope(t *testing.T) {
	f := newAnalyticsFixture(t)

	result, err := f.svc.ResolvedTicketsData(context.Background(), adminPrincipal())
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Percentage)
	assert.Equal(t, 0, result.TotalCount)
}

func TestResolvedTicketsMemberScope(t *testing.T) {
	f := newAnalyticsFixture(t)
	f.tickets.put(&domain.Ticket{ID: "t-1", AssignedTo: "member-1", Status: domain.TicketStatusResolved})
	f.tickets.put(&domain.Ticket{ID: "t-2", AssignedTo: "member-2", Status: domain.TicketStatusOpen})

	result, err := f.svc.ResolvedTicketsData(context.Background(), memberPrincipal("member-1"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)
	assert.Equal(t, 100.0, result.Percentage)
}

func TestMissedChatsOverTime(t *testing.T) {
	f := newAnalyticsFixture(t)
	now := time.Now().UTC()

	// First customer message 3 days ago, never answered: lands in the
	// newest of two weekly buckets.
	f.tickets.put(&domain.Ticket{ID: "t-1", AssignedTo: "admin-1", Status: domain.TicketStatusOpen})
	f.messages.seed("t-1", domain.Message{TicketID: "t-1", Timestamp: now.Add(-3 * 24 * time.Hour)})

	// Ten days ago, never answered: previous bucket.
	f.tickets.put(&domain.Ticket{ID: "t-2", AssignedTo: "admin-1", Status: domain.TicketStatusOpen})
	f.messages.seed("t-2", domain.Message{TicketID: "t-2", Timestamp: now.Add(-10 * 24 * time.Hour)})

	// Four days ago but answered within the threshold: not missed.
	f.tickets.put(&domain.Ticket{ID: "t-3", AssignedTo: "admin-1", Status: domain.TicketStatusOpen})
	f.messages.seed("t-3",
		domain.Message{TicketID: "t-3", Timestamp: now.Add(-4 * 24 * time.Hour)},
		domain.Message{TicketID: "t-3", SenderID: strPtr("admin-1"), Timestamp: now.Add(-4*24*time.Hour + time.Minute)},
	)

	// Outside the window entirely.
	f.tickets.put(&domain.Ticket{ID: "t-4", AssignedTo: "admin-1", Status: domain.TicketStatusOpen})
	f.messages.seed("t-4", domain.Message{TicketID: "t-4", Timestamp: now.Add(-30 * 24 * time.Hour)})

	buckets, err := f.svc.MissedChatsOverTime(context.Background(), adminPrincipal(), 2)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	// Oldest first.
	assert.True(t, buckets[0].WeekStart.Before(buckets[1].WeekStart))
	assert.Equal(t, 1, buckets[0].Count)
	assert.Equal(t, 1, buckets[1].Count)
	for _, b := range buckets {
		assert.Equal(t, 7*24*time.Hour, b.WeekEnd.Sub(b.WeekStart))
	}
}

func TestMissedChatsOverTimeClampsWeeks(t *testing.T) {
	f := newAnalyticsFixture(t)

	for _, weeks := range []int{0, -5} {
		buckets, err := f.svc.MissedChatsOverTime(context.Background(), adminPrincipal(), weeks)
		require.NoError(t, err)
		assert.Len(t, buckets, DefaultTrendWeeks)
	}
}

func TestMissedChatsOverTimeDisabledTimer(t *testing.T) {
	f := newAnalyticsFixture(t)
	f.settings.settings = domain.DefaultChatbotSettings()
	f.settings.settings.MissedChatTimer = domain.MissedChatTimer{}

	now := time.Now().UTC()
	f.tickets.put(&domain.Ticket{ID: "t-1", AssignedTo: "admin-1", Status: domain.TicketStatusOpen})
	f.messages.seed("t-1", domain.Message{TicketID: "t-1", Timestamp: now.Add(-3 * 24 * time.Hour)})

	buckets, err := f.svc.MissedChatsOverTime(context.Background(), adminPrincipal(), 2)
	require.NoError(t, err)
	for _, b := range buckets {
		assert.Equal(t, 0, b.Count)
	}
}

func TestTotalChatsRange(t *testing.T) {
	f := newAnalyticsFixture(t)
	for i := 0; i < 3; i++ {
		f.tickets.put(&domain.Ticket{
			ID:         fmt.Sprintf("t-%d", i),
			AssignedTo: "admin-1",
			Status:     domain.TicketStatusOpen,
			CreatedAt:  time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC),
		})
	}

	result, err := f.svc.TotalChats(context.Background(), adminPrincipal(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalChats)

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC)
	result, err = f.svc.TotalChats(context.Background(), adminPrincipal(), &from, &to)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalChats)
}

func TestGetSummaryCombinesAggregates(t *testing.T) {
	f := newAnalyticsFixture(t)
	base := time.Now().Add(-24 * time.Hour)

	f.tickets.put(&domain.Ticket{ID: "t-1", AssignedTo: "admin-1", Status: domain.TicketStatusResolved, CreatedAt: base})
	f.messages.seed("t-1",
		domain.Message{TicketID: "t-1", Timestamp: base},
		domain.Message{TicketID: "t-1", SenderID: strPtr("admin-1"), Timestamp: base.Add(30 * time.Second)},
	)

	summary := f.svc.GetSummary(context.Background(), adminPrincipal(), SummaryQuery{Weeks: 2})

	assert.Equal(t, 30.0, summary.AvgReplyTime)
	assert.Equal(t, 100.0, summary.ResolvedPercentage)
	assert.Equal(t, 1, summary.TotalChats)
	assert.Len(t, summary.MissedChats, 2)
}

func TestGetSummaryDegradesFailedSlices(t *testing.T) {
	f := newAnalyticsFixture(t)
	f.tickets.listErr = assert.AnError

	summary := f.svc.GetSummary(context.Background(), adminPrincipal(), SummaryQuery{})

	assert.Equal(t, 0.0, summary.AvgReplyTime)
	assert.NotNil(t, summary.MissedChats)
	assert.Empty(t, summary.MissedChats)
}
