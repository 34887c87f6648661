package service_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/linkbio-service/internal/config"
	"github.com/spec-kit/linkbio-service/internal/domain"
	"github.com/spec-kit/linkbio-service/internal/service"

	apperrors "github.com/spec-kit/linkbio-service/pkg/util"
)

type memUserRepo struct {
	byHandle map[string]*domain.User
	nextID   int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byHandle: map[string]*domain.User{}, nextID: 1}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = r.nextID
	r.nextID++
	r.byHandle[user.Handle] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, user := range r.byHandle {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByHandle(_ context.Context, handle string) (*domain.User, error) {
	if user, ok := r.byHandle[handle]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context, _ int) ([]domain.User, error) {
	users := make([]domain.User, 0, len(r.byHandle))
	for _, user := range r.byHandle {
		users = append(users, *user)
	}
	return users, nil
}

func (r *memUserRepo) GetProfile(_ context.Context, _ int64) (*domain.Profile, error) {
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) UpsertProfile(_ context.Context, _ *domain.Profile) error { return nil }

func (r *memUserRepo) UpdateQRFields(_ context.Context, _ int64, _, _ *string) error { return nil }

func (r *memUserRepo) ExportAll(_ context.Context) ([]domain.UserExport, error) {
	return nil, nil
}

func testAuthConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{
		JWTSecret:             "s3cret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}}
}

func TestRegisterIssuesTokenForNewUser(t *testing.T) {
	repo := newMemUserRepo()
	svc := service.NewAuthService(testAuthConfig(), repo)

	user, token, exp, err := svc.Register(context.Background(), "alice", "Alice", "alice@example.com", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.False(t, exp.IsZero())

	principal, err := svc.TokenManager().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.ID)
	assert.Equal(t, "alice", principal.Handle)
}

func TestRegisterRejectsDuplicateHandle(t *testing.T) {
	repo := newMemUserRepo()
	svc := service.NewAuthService(testAuthConfig(), repo)

	_, _, _, err := svc.Register(context.Background(), "alice", "Alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	_, _, _, err = svc.Register(context.Background(), "alice", "Other Alice", "other@example.com", "hunter23")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestLoginVerifiesPassword(t *testing.T) {
	repo := newMemUserRepo()
	svc := service.NewAuthService(testAuthConfig(), repo)

	_, _, _, err := svc.Register(context.Background(), "alice", "Alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	user, token, _, err := svc.Login(context.Background(), "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Handle)
	assert.NotEmpty(t, token)

	_, _, _, err = svc.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	_, _, _, err = svc.Login(context.Background(), "nobody", "hunter22")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}
