package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hubly/helpdesk-service/internal/domain"
)

const (
	settingsCacheKey = "helpdesk:chatbot_settings"
	settingsCacheTTL = 5 * time.Minute
)

// cachedSettingsRepository fronts the settings store with a best-effort
// Redis cache. The record is read on nearly every ticket read path but
// mutated only by rare administrative actions, so a short TTL plus
// invalidation on write is enough; cache failures fall through to Postgres.
type cachedSettingsRepository struct {
	inner  SettingsRepository
	client *redis.Client
	logger *zap.Logger
}

// NewCachedSettingsRepository wraps inner with a Redis cache. A nil client
// disables caching.
func NewCachedSettingsRepository(inner SettingsRepository, client *redis.Client, logger *zap.Logger) SettingsRepository {
	if client == nil {
		return inner
	}
	return &cachedSettingsRepository{inner: inner, client: client, logger: logger}
}

func (r *cachedSettingsRepository) Get(ctx context.Context) (*domain.ChatbotSettings, error) {
	raw, err := r.client.Get(ctx, settingsCacheKey).Bytes()
	if err == nil {
		var cached domain.ChatbotSettings
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("settings cache read failed", zap.Error(err))
	}

	settings, err := r.inner.Get(ctx)
	if err != nil {
		return nil, err
	}
	r.fill(ctx, settings)
	return settings, nil
}

func (r *cachedSettingsRepository) Create(ctx context.Context, settings *domain.ChatbotSettings) error {
	if err := r.inner.Create(ctx, settings); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedSettingsRepository) Update(ctx context.Context, settings *domain.ChatbotSettings) error {
	if err := r.inner.Update(ctx, settings); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedSettingsRepository) DeleteAll(ctx context.Context) error {
	if err := r.inner.DeleteAll(ctx); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedSettingsRepository) fill(ctx context.Context, settings *domain.ChatbotSettings) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, settingsCacheKey, raw, settingsCacheTTL).Err(); err != nil {
		r.logger.Warn("settings cache write failed", zap.Error(err))
	}
}

func (r *cachedSettingsRepository) invalidate(ctx context.Context) {
	if err := r.client.Del(ctx, settingsCacheKey).Err(); err != nil {
		r.logger.Warn("settings cache invalidation failed", zap.Error(err))
	}
}
