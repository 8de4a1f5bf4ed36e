package dto

import "github.com/hubly/helpdesk-service/internal/domain"

// UpdateSettingsRequest is a partial merge; omitted fields are untouched.
type UpdateSettingsRequest struct {
	HeaderColor     *string                 `json:"headerColor"`
	BackgroundColor *string                 `json:"backgroundColor"`
	CustomMessages  *CustomMessagesRequest  `json:"customMessages"`
	IntroForm       *IntroFormRequest       `json:"introductionForm"`
	WelcomeMessage  *string                 `json:"welcomeMessage"`
	MissedChatTimer *MissedChatTimerRequest `json:"missedChatTimer"`
}

// CustomMessagesRequest patches the widget prompts.
type CustomMessagesRequest struct {
	Message1 *string `json:"message1"`
	Message2 *string `json:"message2"`
}

// IntroFormRequest patches the contact form labels.
type IntroFormRequest struct {
	NameLabel        *string `json:"nameLabel"`
	NamePlaceholder  *string `json:"namePlaceholder"`
	PhoneLabel       *string `json:"phoneLabel"`
	PhonePlaceholder *string `json:"phonePlaceholder"`
	EmailLabel       *string `json:"emailLabel"`
	EmailPlaceholder *string `json:"emailPlaceholder"`
}

// MissedChatTimerRequest patches the threshold fields.
type MissedChatTimerRequest struct {
	Hours   *int `json:"hours"`
	Minutes *int `json:"minutes"`
	Seconds *int `json:"seconds"`
}

// SettingsResponse is the settings projection.
type SettingsResponse struct {
	ID               string                  `json:"id"`
	HeaderColor      string                  `json:"headerColor"`
	BackgroundColor  string                  `json:"backgroundColor"`
	CustomMessages   domain.CustomMessages   `json:"customMessages"`
	IntroductionForm domain.IntroductionForm `json:"introductionForm"`
	WelcomeMessage   string                  `json:"welcomeMessage"`
	MissedChatTimer  domain.MissedChatTimer  `json:"missedChatTimer"`
}
