package service

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hubly/helpdesk-service/internal/auth"
	"github.com/hubly/helpdesk-service/internal/domain"
	"github.com/hubly/helpdesk-service/internal/freshness"
	"github.com/hubly/helpdesk-service/internal/repository"
)

// DefaultTrendWeeks is the missed-chat trend window when the caller
// supplies no usable value.
const DefaultTrendWeeks = 10

// AnalyticsService computes the four role-scoped dashboard aggregates.
// None of them mutates state, so the combined summary evaluates them
// concurrently; a failing slice degrades to its zero value instead of
// failing the whole response.
type AnalyticsService struct {
	tickets  repository.TicketRepository
	messages repository.MessageRepository
	settings *SettingsService
	logger   *zap.Logger
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(tickets repository.TicketRepository, messages repository.MessageRepository, settings *SettingsService, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{tickets: tickets, messages: messages, settings: settings, logger: logger}
}

// ReplyTimeResult reports mean first-reply latency in seconds over the
// tickets that have a qualifying customer-message/staff-reply pair.
type ReplyTimeResult struct {
	AverageReplyTimeSeconds float64 `json:"averageReplyTimeSeconds"`
	ReplyCount              int     `json:"replyCount"`
}

// WeekBucket is one calendar-week window of the missed-chat trend.
type WeekBucket struct {
	WeekStart time.Time `json:"weekStart"`
	WeekEnd   time.Time `json:"weekEnd"`
	Count     int       `json:"count"`
}

// ResolvedResult reports the resolution percentage over the scope.
type ResolvedResult struct {
	Percentage    float64 `json:"percentage"`
	ResolvedCount int     `json:"resolvedCount"`
	TotalCount    int     `json:"totalCount"`
}

// TotalChatsResult counts tickets created inside the requested range.
type TotalChatsResult struct {
	TotalChats int `json:"totalChats"`
}

// Summary bundles the four aggregates for the combined endpoint.
type Summary struct {
	AvgReplyTime       float64      `json:"avgReplyTime"`
	MissedChats        []WeekBucket `json:"missedChats"`
	ResolvedPercentage float64      `json:"resolvedPercentage"`
	TotalChats         int          `json:"totalChats"`
}

// SummaryQuery carries the optional range and trend parameters.
type SummaryQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
	Weeks     int
}

// GetSummary evaluates all four aggregates concurrently. Each slice is
// independent; a store failure in one is logged and leaves that slice at
// its zero value.
func (s *AnalyticsService) GetSummary(ctx context.Context, principal *auth.Principal, query SummaryQuery) *Summary {
	summary := &Summary{MissedChats: []WeekBucket{}}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		reply, err := s.AverageReplyTime(ctx, principal)
		if err != nil {
			s.logger.Warn("reply time aggregate failed", zap.Error(err))
			return
		}
		summary.AvgReplyTime = reply.AverageReplyTimeSeconds
	}()
	go func() {
		defer wg.Done()
		buckets, err := s.MissedChatsOverTime(ctx, principal, query.Weeks)
		if err != nil {
			s.logger.Warn("missed chats aggregate failed", zap.Error(err))
			return
		}
		summary.MissedChats = buckets
	}()
	go func() {
		defer wg.Done()
		resolved, err := s.ResolvedTicketsData(ctx, principal)
		if err != nil {
			s.logger.Warn("resolved tickets aggregate failed", zap.Error(err))
			return
		}
		summary.ResolvedPercentage = resolved.Percentage
	}()
	go func() {
		defer wg.Done()
		total, err := s.TotalChats(ctx, principal, query.StartDate, query.EndDate)
		if err != nil {
			s.logger.Warn("total chats aggregate failed", zap.Error(err))
			return
		}
		summary.TotalChats = total.TotalChats
	}()

	wg.Wait()
	return summary
}

// AverageReplyTime computes, over tickets in scope with a first customer
// message followed by a staff reply, the mean latency between the two.
// A scope with no qualifying ticket yields {0, 0}.
func (s *AnalyticsService) AverageReplyTime(ctx context.Context, principal *auth.Principal) (*ReplyTimeResult, error) {
	tickets, err := s.tickets.ListByScope(ctx, ScopeFor(principal))
	if err != nil {
		return nil, err
	}

	var totalSeconds float64
	count := 0
	for i := range tickets {
		msgs, err := s.messages.ListByTicket(ctx, tickets[i].ID)
		if err != nil {
			s.logger.Warn("reply time: skipping ticket",
				zap.String("ticket_id", tickets[i].ID), zap.Error(err))
			continue
		}
		latency, ok := firstReplyLatency(msgs)
		if !ok {
			continue
		}
		totalSeconds += latency.Seconds()
		count++
	}

	result := &ReplyTimeResult{ReplyCount: count}
	if count > 0 {
		result.AverageReplyTimeSeconds = round1(totalSeconds / float64(count))
	}
	return result, nil
}

// MissedChatsOverTime partitions the trailing weeks into consecutive
// 7-day buckets ending at now and counts, per bucket, the tickets whose
// first customer message falls in the bucket and that evaluate as missed
// at the bucket's end. Buckets are ordered oldest first. Non-positive
// weeks clamp to the default window.
func (s *AnalyticsService) MissedChatsOverTime(ctx context.Context, principal *auth.Principal, weeks int) ([]WeekBucket, error) {
	if weeks <= 0 {
		weeks = DefaultTrendWeeks
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	threshold := freshness.TimerDuration(settings.MissedChatTimer)

	now := time.Now().UTC()
	windowStart := now.Add(-time.Duration(weeks) * 7 * 24 * time.Hour)

	buckets := make([]WeekBucket, weeks)
	for i := 0; i < weeks; i++ {
		buckets[i].WeekStart = windowStart.Add(time.Duration(i) * 7 * 24 * time.Hour)
		buckets[i].WeekEnd = windowStart.Add(time.Duration(i+1) * 7 * 24 * time.Hour)
	}

	tickets, err := s.tickets.ListByScope(ctx, ScopeFor(principal))
	if err != nil {
		return nil, err
	}

	for i := range tickets {
		msgs, err := s.messages.ListByTicket(ctx, tickets[i].ID)
		if err != nil {
			s.logger.Warn("missed chats: skipping ticket",
				zap.String("ticket_id", tickets[i].ID), zap.Error(err))
			continue
		}
		firstAt, ok := freshness.FirstCustomerMessageAt(msgs)
		if !ok || firstAt.Before(windowStart) || !firstAt.Before(now) {
			continue
		}
		idx := int(firstAt.Sub(windowStart) / (7 * 24 * time.Hour))
		if idx < 0 || idx >= weeks {
			continue
		}
		// Evaluate against the bucket's end so closed historical buckets
		// stop aging; only messages visible by then participate.
		end := buckets[idx].WeekEnd
		if freshness.Evaluate(messagesUpTo(msgs, end), threshold, end) {
			buckets[idx].Count++
		}
	}
	return buckets, nil
}

// ResolvedTicketsData reports the resolved percentage over the scope,
// rounded to one decimal; an empty scope is 0, never a division error.
func (s *AnalyticsService) ResolvedTicketsData(ctx context.Context, principal *auth.Principal) (*ResolvedResult, error) {
	resolved, total, err := s.tickets.CountByStatus(ctx, ScopeFor(principal))
	if err != nil {
		return nil, err
	}
	result := &ResolvedResult{ResolvedCount: resolved, TotalCount: total}
	if total > 0 {
		result.Percentage = round1(float64(resolved) / float64(total) * 100)
	}
	return result, nil
}

// TotalChats counts tickets in scope created inside the inclusive range;
// either bound may be absent.
func (s *AnalyticsService) TotalChats(ctx context.Context, principal *auth.Principal, start, end *time.Time) (*TotalChatsResult, error) {
	count, err := s.tickets.CountCreatedBetween(ctx, ScopeFor(principal), start, end)
	if err != nil {
		return nil, err
	}
	return &TotalChatsResult{TotalChats: count}, nil
}

// firstReplyLatency finds the gap between the first customer message and
// the first staff reply strictly after it.
func firstReplyLatency(msgs []domain.Message) (time.Duration, bool) {
	firstAt, ok := freshness.FirstCustomerMessageAt(msgs)
	if !ok {
		return 0, false
	}
	for i := range msgs {
		if msgs[i].FromCustomer() {
			continue
		}
		if at := msgs[i].SentAt(); at.After(firstAt) {
			return at.Sub(firstAt), true
		}
	}
	return 0, false
}

func messagesUpTo(msgs []domain.Message, cutoff time.Time) []domain.Message {
	result := make([]domain.Message, 0, len(msgs))
	for i := range msgs {
		if !msgs[i].SentAt().After(cutoff) {
			result = append(result, msgs[i])
		}
	}
	return result
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
