package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hubly/helpdesk-service/internal/domain"
	"github.com/hubly/helpdesk-service/internal/repository"
	apperrors "github.com/hubly/helpdesk-service/pkg/util"
)

// SettingsService owns the singleton chatbot settings record: lazy
// creation with defaults, partial merge updates, and reset.
type SettingsService struct {
	settings repository.SettingsRepository
}

// NewSettingsService constructs the service.
func NewSettingsService(settings repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// SettingsPatch is a partial update; nil fields keep their stored value.
type SettingsPatch struct {
	HeaderColor     *string
	BackgroundColor *string
	CustomMessages  *CustomMessagesPatch
	IntroForm       *IntroFormPatch
	WelcomeMessage  *string
	MissedChatTimer *TimerPatch
}

// CustomMessagesPatch patches the widget prompts.
type CustomMessagesPatch struct {
	Message1 *string
	Message2 *string
}

// IntroFormPatch patches the contact form labels.
type IntroFormPatch struct {
	NameLabel        *string
	NamePlaceholder  *string
	PhoneLabel       *string
	PhonePlaceholder *string
	EmailLabel       *string
	EmailPlaceholder *string
}

// TimerPatch patches the missed-chat threshold fields individually.
type TimerPatch struct {
	Hours   *int
	Minutes *int
	Seconds *int
}

// Get returns the settings, materializing the default record when none
// exists yet.
func (s *SettingsService) Get(ctx context.Context) (*domain.ChatbotSettings, error) {
	settings, err := s.settings.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	settings = domain.DefaultChatbotSettings()
	if err := s.settings.Create(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Update applies a partial merge over the current record.
func (s *SettingsService) Update(ctx context.Context, patch SettingsPatch) (*domain.ChatbotSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if patch.HeaderColor != nil {
		settings.HeaderColor = *patch.HeaderColor
	}
	if patch.BackgroundColor != nil {
		settings.BackgroundColor = *patch.BackgroundColor
	}
	if patch.CustomMessages != nil {
		if patch.CustomMessages.Message1 != nil {
			settings.CustomMessages.Message1 = *patch.CustomMessages.Message1
		}
		if patch.CustomMessages.Message2 != nil {
			settings.CustomMessages.Message2 = *patch.CustomMessages.Message2
		}
	}
	if patch.IntroForm != nil {
		applyIntroForm(&settings.IntroductionForm, patch.IntroForm)
	}
	if patch.WelcomeMessage != nil {
		settings.WelcomeMessage = *patch.WelcomeMessage
	}
	if patch.MissedChatTimer != nil {
		if patch.MissedChatTimer.Hours != nil {
			settings.MissedChatTimer.Hours = *patch.MissedChatTimer.Hours
		}
		if patch.MissedChatTimer.Minutes != nil {
			settings.MissedChatTimer.Minutes = *patch.MissedChatTimer.Minutes
		}
		if patch.MissedChatTimer.Seconds != nil {
			settings.MissedChatTimer.Seconds = *patch.MissedChatTimer.Seconds
		}
	}

	if !settings.MissedChatTimer.Valid() {
		return nil, apperrors.NewValidationError("missed chat timer out of range", map[string]any{
			"hours":   "0-23",
			"minutes": "0-59",
			"seconds": "0-59",
		})
	}

	if err := s.settings.Update(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Reset deletes the record and recreates the defaults.
func (s *SettingsService) Reset(ctx context.Context) (*domain.ChatbotSettings, error) {
	if err := s.settings.DeleteAll(ctx); err != nil {
		return nil, err
	}
	settings := domain.DefaultChatbotSettings()
	if err := s.settings.Create(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func applyIntroForm(form *domain.IntroductionForm, patch *IntroFormPatch) {
	if patch.NameLabel != nil {
		form.NameLabel = *patch.NameLabel
	}
	if patch.NamePlaceholder != nil {
		form.NamePlaceholder = *patch.NamePlaceholder
	}
	if patch.PhoneLabel != nil {
		form.PhoneLabel = *patch.PhoneLabel
	}
	if patch.PhonePlaceholder != nil {
		form.PhonePlaceholder = *patch.PhonePlaceholder
	}
	if patch.EmailLabel != nil {
		form.EmailLabel = *patch.EmailLabel
	}
	if patch.EmailPlaceholder != nil {
		form.EmailPlaceholder = *patch.EmailPlaceholder
	}
}
