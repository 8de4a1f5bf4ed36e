package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hubly/helpdesk-service/internal/api/dto"
	"github.com/hubly/helpdesk-service/internal/domain"
	"github.com/hubly/helpdesk-service/internal/service"
	apperrors "github.com/hubly/helpdesk-service/pkg/util"
)

// SettingsHandler manages the chatbot settings endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get GET /api/settings/chatbot.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.settings.Get(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"settings": settingsResponse(settings),
	})
}

// Update PUT /api/settings/chatbot.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	settings, err := h.settings.Update(c.Context(), settingsPatch(&req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Chatbot settings updated successfully",
		"settings": settingsResponse(settings),
	})
}

// Reset POST /api/settings/chatbot/reset.
func (h *SettingsHandler) Reset(c *fiber.Ctx) error {
	settings, err := h.settings.Reset(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Chatbot settings reset to default",
		"settings": settingsResponse(settings),
	})
}

func settingsPatch(req *dto.UpdateSettingsRequest) service.SettingsPatch {
	patch := service.SettingsPatch{
		HeaderColor:     req.HeaderColor,
		BackgroundColor: req.BackgroundColor,
		WelcomeMessage:  req.WelcomeMessage,
	}
	if req.CustomMessages != nil {
		patch.CustomMessages = &service.CustomMessagesPatch{
			Message1: req.CustomMessages.Message1,
			Message2: req.CustomMessages.Message2,
		}
	}
	if req.IntroForm != nil {
		patch.IntroForm = &service.IntroFormPatch{
			NameLabel:        req.IntroForm.NameLabel,
			NamePlaceholder:  req.IntroForm.NamePlaceholder,
			PhoneLabel:       req.IntroForm.PhoneLabel,
			PhonePlaceholder: req.IntroForm.PhonePlaceholder,
			EmailLabel:       req.IntroForm.EmailLabel,
			EmailPlaceholder: req.IntroForm.EmailPlaceholder,
		}
	}
	if req.MissedChatTimer != nil {
		patch.MissedChatTimer = &service.TimerPatch{
			Hours:   req.MissedChatTimer.Hours,
			Minutes: req.MissedChatTimer.Minutes,
			Seconds: req.MissedChatTimer.Seconds,
		}
	}
	return patch
}

func settingsResponse(settings *domain.ChatbotSettings) dto.SettingsResponse {
	return dto.SettingsResponse{
		ID:               settings.ID,
		HeaderColor:      settings.HeaderColor,
		BackgroundColor:  settings.BackgroundColor,
		CustomMessages:   settings.CustomMessages,
		IntroductionForm: settings.IntroductionForm,
		WelcomeMessage:   settings.WelcomeMessage,
		MissedChatTimer:  settings.MissedChatTimer,
	}
}
