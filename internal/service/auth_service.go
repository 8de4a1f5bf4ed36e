package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hubly/helpdesk-service/internal/auth"
	"github.com/hubly/helpdesk-service/internal/config"
	"github.com/hubly/helpdesk-service/internal/domain"
	"github.com/hubly/helpdesk-service/internal/repository"
	apperrors "github.com/hubly/helpdesk-service/pkg/util"
)

// AuthService issues tokens for staff and seeds the initial admin.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	cfg    config.AuthConfig
	logger *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(users repository.UserRepository, cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		cfg:    cfg,
		logger: logger,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// LoginResult carries the issued token and its owner.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Login verifies credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// EnsureAdmin seeds the admin account from configuration when no admin
// exists yet. Ticket creation depends on exactly one admin being present.
func (s *AuthService) EnsureAdmin(ctx context.Context, admin config.AdminConfig) error {
	if _, err := s.users.GetAdmin(ctx); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if admin.Email == "" || admin.Password == "" {
		s.logger.Warn("no admin user exists and ADMIN_EMAIL/ADMIN_PASSWORD are unset; ticket creation will fail")
		return nil
	}

	hash, err := auth.HashPassword(admin.Password, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	user := &domain.User{
		FirstName:    admin.FirstName,
		LastName:     admin.LastName,
		Email:        strings.ToLower(admin.Email),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	s.logger.Info("seeded admin user", zap.String("email", user.Email))
	return nil
}
