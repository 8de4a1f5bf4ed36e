package domain

import "time"

// MissedChatTimer is the configured response-time threshold. An all-zero
// timer disables missed-chat detection entirely.
type MissedChatTimer struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Valid checks the per-field bounds (hours 0-23, minutes/seconds 0-59).
func (t MissedChatTimer) Valid() bool {
	return t.Hours >= 0 && t.Hours <= 23 &&
		t.Minutes >= 0 && t.Minutes <= 59 &&
		t.Seconds >= 0 && t.Seconds <= 59
}

// CustomMessages are the widget's canned prompts.
type CustomMessages struct {
	Message1 string `json:"message1"`
	Message2 string `json:"message2"`
}

// IntroductionForm labels the widget's contact form fields.
type IntroductionForm struct {
	NameLabel        string `json:"nameLabel"`
	NamePlaceholder  string `json:"namePlaceholder"`
	PhoneLabel       string `json:"phoneLabel"`
	PhonePlaceholder string `json:"phonePlaceholder"`
	EmailLabel       string `json:"emailLabel"`
	EmailPlaceholder string `json:"emailPlaceholder"`
}

// ChatbotSettings is the singleton widget configuration record. Exactly
// one row should exist; it is materialized with defaults on first read.
type ChatbotSettings struct {
	ID               string
	HeaderColor      string
	BackgroundColor  string
	CustomMessages   CustomMessages
	IntroductionForm IntroductionForm
	WelcomeMessage   string
	MissedChatTimer  MissedChatTimer
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DefaultChatbotSettings returns the documented defaults used when the
// singleton is absent or reset.
func DefaultChatbotSettings() *ChatbotSettings {
	return &ChatbotSettings{
		HeaderColor:     "#334755",
		BackgroundColor: "#EEEEEE",
		CustomMessages: CustomMessages{
			Message1: "How can I help you?",
			Message2: "Ask me anything!",
		},
		IntroductionForm: IntroductionForm{
			NameLabel:        "Your name",
			NamePlaceholder:  "Your name",
			PhoneLabel:       "Your Phone",
			PhonePlaceholder: "+1 (000) 000-0000",
			EmailLabel:       "Your Email",
			EmailPlaceholder: "example@gmail.com",
		},
		WelcomeMessage:  "👋 Want to chat about Hubly? I'm an chatbot here to help you find your way.",
		MissedChatTimer: MissedChatTimer{Hours: 0, Minutes: 10, Seconds: 0},
	}
}
