package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hubly/helpdesk-service/internal/service"
)

// AnalyticsHandler serves the dashboard aggregates.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Summary GET /api/analytics.
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	query := service.SummaryQuery{
		StartDate: parseDate(c.Query("startDate")),
		EndDate:   parseDate(c.Query("endDate")),
		Weeks:     parseWeeks(c.Query("weeks")),
	}

	summary := h.analytics.GetSummary(c.Context(), principal, query)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}

// MissedChats GET /api/analytics/missed-chats.
func (h *AnalyticsHandler) MissedChats(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	buckets, err := h.analytics.MissedChatsOverTime(c.Context(), principal, parseWeeks(c.Query("weeks")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    buckets,
	})
}

// ReplyTime GET /api/analytics/reply-time.
func (h *AnalyticsHandler) ReplyTime(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	result, err := h.analytics.AverageReplyTime(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":                 true,
		"averageReplyTimeSeconds": result.AverageReplyTimeSeconds,
		"replyCount":              result.ReplyCount,
	})
}

// ResolvedTickets GET /api/analytics/resolved-tickets.
func (h *AnalyticsHandler) ResolvedTickets(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	result, err := h.analytics.ResolvedTicketsData(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"percentage":    result.Percentage,
		"resolvedCount": result.ResolvedCount,
		"totalCount":    result.TotalCount,
	})
}

// TotalChats GET /api/analytics/total-chats.
func (h *AnalyticsHandler) TotalChats(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	result, err := h.analytics.TotalChats(c.Context(), principal, parseDate(c.Query("startDate")), parseDate(c.Query("endDate")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"totalChats": result.TotalChats,
	})
}

// parseWeeks coerces the trend window; anything unusable falls back to
// the default rather than erroring.
func parseWeeks(val string) int {
	if val == "" {
		return service.DefaultTrendWeeks
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return service.DefaultTrendWeeks
	}
	return parsed
}

func parseDate(val string) *time.Time {
	if val == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, val); err == nil {
			return &t
		}
	}
	return nil
}
