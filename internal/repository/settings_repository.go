package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hubly/helpdesk-service/internal/domain"
)

// SettingsRepository persists the singleton chatbot settings record.
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.ChatbotSettings, error)
	Create(ctx context.Context, settings *domain.ChatbotSettings) error
	Update(ctx context.Context, settings *domain.ChatbotSettings) error
	DeleteAll(ctx context.Context) error
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository builds repository.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

const settingsColumns = `id, header_color, background_color,
	custom_message_1, custom_message_2,
	intro_name_label, intro_name_placeholder, intro_phone_label, intro_phone_placeholder,
	intro_email_label, intro_email_placeholder,
	welcome_message, timer_hours, timer_minutes, timer_seconds, created_at, updated_at`

// Get returns the singleton row; pgx.ErrNoRows when absent.
func (r *settingsRepository) Get(ctx context.Context) (*domain.ChatbotSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM chatbot_settings ORDER BY created_at ASC LIMIT 1`
	return scanSettings(r.pool.QueryRow(ctx, query))
}

func (r *settingsRepository) Create(ctx context.Context, s *domain.ChatbotSettings) error {
	const query = `
        INSERT INTO chatbot_settings (header_color, background_color,
            custom_message_1, custom_message_2,
            intro_name_label, intro_name_placeholder, intro_phone_label, intro_phone_placeholder,
            intro_email_label, intro_email_placeholder,
            welcome_message, timer_hours, timer_minutes, timer_seconds)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		s.HeaderColor,
		s.BackgroundColor,
		s.CustomMessages.Message1,
		s.CustomMessages.Message2,
		s.IntroductionForm.NameLabel,
		s.IntroductionForm.NamePlaceholder,
		s.IntroductionForm.PhoneLabel,
		s.IntroductionForm.PhonePlaceholder,
		s.IntroductionForm.EmailLabel,
		s.IntroductionForm.EmailPlaceholder,
		s.WelcomeMessage,
		s.MissedChatTimer.Hours,
		s.MissedChatTimer.Minutes,
		s.MissedChatTimer.Seconds,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *settingsRepository) Update(ctx context.Context, s *domain.ChatbotSettings) error {
	const query = `
        UPDATE chatbot_settings SET header_color=$1, background_color=$2,
            custom_message_1=$3, custom_message_2=$4,
            intro_name_label=$5, intro_name_placeholder=$6, intro_phone_label=$7, intro_phone_placeholder=$8,
            intro_email_label=$9, intro_email_placeholder=$10,
            welcome_message=$11, timer_hours=$12, timer_minutes=$13, timer_seconds=$14,
            updated_at=NOW()
        WHERE id=$15`
	cmd, err := r.pool.Exec(ctx, query,
		s.HeaderColor,
		s.BackgroundColor,
		s.CustomMessages.Message1,
		s.CustomMessages.Message2,
		s.IntroductionForm.NameLabel,
		s.IntroductionForm.NamePlaceholder,
		s.IntroductionForm.PhoneLabel,
		s.IntroductionForm.PhonePlaceholder,
		s.IntroductionForm.EmailLabel,
		s.IntroductionForm.EmailPlaceholder,
		s.WelcomeMessage,
		s.MissedChatTimer.Hours,
		s.MissedChatTimer.Minutes,
		s.MissedChatTimer.Seconds,
		s.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *settingsRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM chatbot_settings`)
	return err
}

func scanSettings(row pgx.Row) (*domain.ChatbotSettings, error) {
	var s domain.ChatbotSettings
	if err := row.Scan(
		&s.ID,
		&s.HeaderColor,
		&s.BackgroundColor,
		&s.CustomMessages.Message1,
		&s.CustomMessages.Message2,
		&s.IntroductionForm.NameLabel,
		&s.IntroductionForm.NamePlaceholder,
		&s.IntroductionForm.PhoneLabel,
		&s.IntroductionForm.PhonePlaceholder,
		&s.IntroductionForm.EmailLabel,
		&s.IntroductionForm.EmailPlaceholder,
		&s.WelcomeMessage,
		&s.MissedChatTimer.Hours,
		&s.MissedChatTimer.Minutes,
		&s.MissedChatTimer.Seconds,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
