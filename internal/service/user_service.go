package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/linkbio-service/internal/domain"
	"github.com/spec-kit/linkbio-service/internal/repository"

	apperrors "github.com/spec-kit/linkbio-service/pkg/util"
)

// ProfileInput carries profile fields from submit/update requests.
type ProfileInput struct {
	Bio      *string
	Location *string
}

// UserWithProfile pairs a user with its profile for responses.
type UserWithProfile struct {
	User    *domain.User
	Profile *domain.Profile
}

// UserService exposes the user and profile surface.
type UserService struct {
	users repository.UserRepository
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// List returns users ordered by most recent update.
func (s *UserService) List(ctx context.Context, limit int) ([]domain.User, error) {
	return s.users.List(ctx, limit)
}

// GetByHandle resolves a user and its profile.
func (s *UserService) GetByHandle(ctx context.Context, handle string) (*UserWithProfile, error) {
	user, err := s.users.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"handle": handle})
		}
		return nil, err
	}

	profile, err := s.users.GetProfile(ctx, user.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return &UserWithProfile{User: user, Profile: profile}, nil
}

// SubmitProfile upserts the profile for a handle. Last write wins; profile
// rows carry no concurrency token.
func (s *UserService) SubmitProfile(ctx context.Context, handle string, input ProfileInput) (*UserWithProfile, error) {
	user, err := s.users.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"handle": handle})
		}
		return nil, err
	}

	// Preserve cached QR URLs across profile rewrites.
	var wechat, group *string
	if existing, err := s.users.GetProfile(ctx, user.ID); err == nil {
		wechat = existing.WechatQRURL
		group = existing.GroupQRURL
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	profile := &domain.Profile{
		UserID:      user.ID,
		Bio:         input.Bio,
		Location:    input.Location,
		WechatQRURL: wechat,
		GroupQRURL:  group,
	}
	if err := s.users.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	return s.GetByHandle(ctx, handle)
}
