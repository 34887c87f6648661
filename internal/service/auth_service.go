package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/linkbio-service/internal/auth"
	"github.com/spec-kit/linkbio-service/internal/config"
	"github.com/spec-kit/linkbio-service/internal/domain"
	"github.com/spec-kit/linkbio-service/internal/repository"

	apperrors "github.com/spec-kit/linkbio-service/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account and returns a signed token for it.
func (s *AuthService) Register(ctx context.Context, handle, displayName, email, password string) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByHandle(ctx, handle); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("handle already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Handle:       handle,
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.issueFor(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates a handle/password pair.
func (s *AuthService) Login(ctx context.Context, handle, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.issueFor(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

func (s *AuthService) issueFor(user *domain.User) (string, time.Time, error) {
	return s.tokenMgr.Issue(auth.Principal{
		ID:     user.ID,
		Handle: user.Handle,
		Role:   user.Role,
	})
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
