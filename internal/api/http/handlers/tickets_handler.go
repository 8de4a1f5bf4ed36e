package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/hubly/helpdesk-service/internal/api/dto"
	"github.com/hubly/helpdesk-service/internal/auth"
	"github.com/hubly/helpdesk-service/internal/domain"
	"github.com/hubly/helpdesk-service/internal/service"
	apperrors "github.com/hubly/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// List GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	query := service.TicketListQuery{
		Limit:  parseInt(c.Query("limit"), 20),
		LastID: c.Query("lastId"),
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	page, err := h.tickets.List(c.Context(), principal, query)
	if err != nil {
		return err
	}

	tickets := make([]dto.TicketResponse, 0, len(page.Items))
	for i := range page.Items {
		tickets = append(tickets, enrichedTicketResponse(&page.Items[i]))
	}
	return c.JSON(dto.TicketListResponse{
		Success: true,
		Count:   len(tickets),
		Tickets: tickets,
		HasMore: page.HasMore,
		LastID:  page.LastID,
	})
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticket, msgs, missed, err := h.tickets.Get(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}

	resp := ticketResponse(ticket)
	resp.IsMissed = missed
	messages := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		messages = append(messages, messageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"ticket":   resp,
		"messages": messages,
	})
}

// Create POST /api/tickets (public widget endpoint).
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Create(c.Context(), service.TicketCreateInput{
		UserName:       req.UserName,
		UserEmail:      req.UserEmail,
		UserPhone:      req.UserPhone,
		InitialMessage: req.InitialMessage,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Ticket created successfully. Our team will get back to you soon.",
		"ticket": fiber.Map{
			"id":         ticket.ID,
			"ticketCode": ticket.TicketCode,
			"userName":   ticket.UserName,
			"userEmail":  ticket.UserEmail,
		},
	})
}

// Update PATCH /api/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.UpdateStatus(c.Context(), principal, c.Params("id"), domain.TicketStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Ticket updated successfully",
		"data":    ticketResponse(ticket),
	})
}

// Assign PUT /api/tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	memberID := req.AssignedTo
	if memberID == "" {
		memberID = req.UserID
	}

	ticket, err := h.tickets.Assign(c.Context(), principal, c.Params("id"), memberID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Ticket assigned successfully",
		"data":    ticketResponse(ticket),
	})
}

// Delete DELETE /api/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.tickets.Delete(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Ticket deleted successfully",
	})
}

// Stats GET /api/tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	stats, err := h.tickets.Stats(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"stats": dto.TicketStatsResponse{
			AllTickets:        stats.AllTickets,
			ResolvedTickets:   stats.ResolvedTickets,
			UnresolvedTickets: stats.UnresolvedTickets,
			MissedTickets:     stats.MissedTickets,
		},
	})
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:            ticket.ID,
		TicketCode:    ticket.TicketCode,
		UserName:      ticket.UserName,
		UserEmail:     ticket.UserEmail,
		UserPhone:     ticket.UserPhone,
		Status:        ticket.Status,
		LastMessageAt: ticket.LastMessageAt,
		IsMissed:      ticket.IsMissed,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
	if ticket.Assignee != nil {
		resp.AssignedTo = &dto.AssigneeResponse{
			ID:        ticket.Assignee.ID,
			FirstName: ticket.Assignee.FirstName,
			LastName:  ticket.Assignee.LastName,
			Email:     ticket.Assignee.Email,
			Role:      ticket.Assignee.Role,
		}
	}
	return resp
}

func enrichedTicketResponse(item *service.EnrichedTicket) dto.TicketResponse {
	resp := ticketResponse(&item.Ticket)
	resp.LastMessage = item.LastMessage
	resp.IsMissed = item.IsMissed
	return resp
}

func messageResponse(msg *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        msg.ID,
		TicketID:  msg.TicketID,
		SenderID:  msg.SenderID,
		Text:      msg.Text,
		Timestamp: msg.SentAt(),
	}
}
