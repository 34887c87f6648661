package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/linkbio-service/internal/domain"
	"github.com/spec-kit/linkbio-service/internal/repository"

	apperrors "github.com/spec-kit/linkbio-service/pkg/util"
)

// LinkInput carries link fields from create/update requests.
type LinkInput struct {
	Title    string
	URL      string
	Position int
	IsHidden bool
}

// LinkService exposes the link surface for a handle.
type LinkService struct {
	links repository.LinkRepository
	users repository.UserRepository
}

// NewLinkService builds the service.
func NewLinkService(links repository.LinkRepository, users repository.UserRepository) *LinkService {
	return &LinkService{links: links, users: users}
}

// List returns all links for the handle in display order.
func (s *LinkService) List(ctx context.Context, handle string) ([]domain.Link, error) {
	user, err := s.resolveUser(ctx, handle)
	if err != nil {
		return nil, err
	}
	return s.links.ListByUser(ctx, user.ID)
}

// Create adds a link to the handle's profile.
func (s *LinkService) Create(ctx context.Context, handle string, input LinkInput) (*domain.Link, error) {
	user, err := s.resolveUser(ctx, handle)
	if err != nil {
		return nil, err
	}

	link := &domain.Link{
		UserID:   user.ID,
		Title:    input.Title,
		URL:      input.URL,
		Position: input.Position,
		IsHidden: input.IsHidden,
	}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// Update rewrites a link owned by the handle.
func (s *LinkService) Update(ctx context.Context, handle string, linkID int64, input LinkInput) (*domain.Link, error) {
	user, err := s.resolveUser(ctx, handle)
	if err != nil {
		return nil, err
	}

	link := &domain.Link{
		ID:       linkID,
		UserID:   user.ID,
		Title:    input.Title,
		URL:      input.URL,
		Position: input.Position,
		IsHidden: input.IsHidden,
	}
	if err := s.links.Update(ctx, link); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("link", map[string]any{"linkId": linkID})
		}
		return nil, err
	}
	return s.links.GetByID(ctx, linkID)
}

// Delete removes a link owned by the handle.
func (s *LinkService) Delete(ctx context.Context, handle string, linkID int64) error {
	user, err := s.resolveUser(ctx, handle)
	if err != nil {
		return err
	}
	if err := s.links.Delete(ctx, linkID, user.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("link", map[string]any{"linkId": linkID})
		}
		return err
	}
	return nil
}

func (s *LinkService) resolveUser(ctx context.Context, handle string) (*domain.User, error) {
	user, err := s.users.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"handle": handle})
		}
		return nil, err
	}
	return user, nil
}
