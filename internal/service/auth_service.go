package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdeskpro/helpdesk-service/internal/auth"
	"github.com/helpdeskpro/helpdesk-service/internal/authz"
	"github.com/helpdeskpro/helpdesk-service/internal/config"
	"github.com/helpdeskpro/helpdesk-service/internal/domain"
	"github.com/helpdeskpro/helpdesk-service/internal/repository"
	"github.com/helpdeskpro/helpdesk-service/pkg/apperrors"
)

// AuthService coordinates registration, login and directory lookups.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a new identity. Email and national id must be unique;
// the password is stored only as a bcrypt hash.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	if reg.Role == "" {
		reg.Role = domain.RoleClient
	}
	reg.Normalize()
	if errs := reg.Validate(); !errs.Empty() {
		return nil, apperrors.NewValidationFailed("invalid registration data", errs)
	}

	if _, err := s.users.GetByEmail(ctx, reg.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ToDomainError(err)
	}
	if _, err := s.users.GetByNationalID(ctx, reg.NationalID); err == nil {
		return nil, apperrors.NewConflict("national id already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ToDomainError(err)
	}

	hash, err := auth.HashPassword(reg.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	user := &domain.User{
		Name:         reg.Name,
		Email:        reg.Email,
		NationalID:   reg.NationalID,
		PasswordHash: hash,
		Role:         reg.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return user, nil
}

// Login authenticates an identity and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.ToDomainError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternal(err)
	}
	return user, token, exp, nil
}

// ListAgents returns the agent directory. Clients cannot enumerate agents.
func (s *AuthService) ListAgents(ctx context.Context, identity *domain.User) ([]domain.User, error) {
	decision := authz.Authorize(identity, nil, authz.OpListAgents, nil)
	if !decision.Allowed {
		return nil, forbid(identity, decision)
	}
	agents, err := s.users.ListAgents(ctx)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return agents, nil
}

func forbid(identity *domain.User, decision authz.Decision) error {
	if identity == nil {
		return apperrors.NewUnauthenticated(decision.Reason)
	}
	return apperrors.NewForbidden(decision.Reason)
}
