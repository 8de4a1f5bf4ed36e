package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hubly/helpdesk-service/internal/api/dto"
	"github.com/hubly/helpdesk-service/internal/service"
	apperrors "github.com/hubly/helpdesk-service/pkg/util"
)

// MessagesHandler manages conversation endpoints.
type MessagesHandler struct {
	messages *service.MessageService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messages *service.MessageService) *MessagesHandler {
	return &MessagesHandler{messages: messages}
}

// ListByTicket GET /api/messages/:ticketId.
func (h *MessagesHandler) ListByTicket(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	msgs, err := h.messages.ListByTicket(c.Context(), principal, c.Params("ticketId"))
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, messageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"messages": items,
	})
}

// Send POST /api/messages.
func (h *MessagesHandler) Send(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == "" {
		return apperrors.NewValidationError("ticketId is required", nil)
	}

	msg, err := h.messages.Send(c.Context(), principal, req.TicketID, req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    messageResponse(msg),
	})
}

// SendFromCustomer POST /api/tickets/:id/messages (public widget endpoint).
func (h *MessagesHandler) SendFromCustomer(c *fiber.Ctx) error {
	var req dto.CustomerMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.messages.SendFromCustomer(c.Context(), c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    messageResponse(msg),
	})
}
