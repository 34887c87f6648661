package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/linkbio-service/internal/domain"
)

// UserRepository defines persistence access for users and their profiles.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByHandle(ctx context.Context, handle string) (*domain.User, error)
	List(ctx context.Context, limit int) ([]domain.User, error)
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	UpsertProfile(ctx context.Context, profile *domain.Profile) error
	UpdateQRFields(ctx context.Context, userID int64, wechatQRURL, groupQRURL *string) error
	ExportAll(ctx context.Context) ([]domain.UserExport, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (handle, display_name, email, password_hash, role)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Handle,
		user.DisplayName,
		user.Email,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
        SELECT id, handle, display_name, email, password_hash, role, created_at, updated_at
        FROM users WHERE id=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	const query = `
        SELECT id, handle, display_name, email, password_hash, role, created_at, updated_at
        FROM users WHERE handle=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, handle))
}

func (r *userRepository) List(ctx context.Context, limit int) ([]domain.User, error) {
	const query = `
        SELECT id, handle, display_name, email, password_hash, role, created_at, updated_at
        FROM users ORDER BY updated_at DESC LIMIT $1`
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *userRepository) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	const query = `
        SELECT user_id, bio, location, wechat_qr_url, group_qr_url, updated_at
        FROM user_profiles WHERE user_id=$1`

	var profile domain.Profile
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Bio,
		&profile.Location,
		&profile.WechatQRURL,
		&profile.GroupQRURL,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile inserts the profile or updates it on user_id conflict.
// Last write wins; profile rows carry no concurrency token.
func (r *userRepository) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	const query = `
        INSERT INTO user_profiles (user_id, bio, location, wechat_qr_url, group_qr_url)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id) DO UPDATE SET
            bio = EXCLUDED.bio,
            location = EXCLUDED.location,
            wechat_qr_url = EXCLUDED.wechat_qr_url,
            group_qr_url = EXCLUDED.group_qr_url,
            updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query,
		profile.UserID,
		profile.Bio,
		profile.Location,
		profile.WechatQRURL,
		profile.GroupQRURL,
	)
	return err
}

// UpdateQRFields overwrites only the provided QR URL columns.
func (r *userRepository) UpdateQRFields(ctx context.Context, userID int64, wechatQRURL, groupQRURL *string) error {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if wechatQRURL != nil {
		args = append(args, *wechatQRURL)
		sets = append(sets, fmt.Sprintf("wechat_qr_url=$%d", len(args)))
	}
	if groupQRURL != nil {
		args = append(args, *groupQRURL)
		sets = append(sets, fmt.Sprintf("group_qr_url=$%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, userID)
	query := fmt.Sprintf(
		"UPDATE user_profiles SET %s, updated_at=NOW() WHERE user_id=$%d",
		strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ExportAll loads every user with profile and links in one pass, most
// recently updated first. Unbounded; only the backup job calls it.
func (r *userRepository) ExportAll(ctx context.Context) ([]domain.UserExport, error) {
	const usersQuery = `
        SELECT u.id, u.handle, u.display_name, u.email, u.role,
               p.user_id, p.bio, p.location, p.wechat_qr_url, p.group_qr_url, p.updated_at
        FROM users u
        LEFT JOIN user_profiles p ON p.user_id = u.id
        ORDER BY u.updated_at DESC`

	rows, err := r.pool.Query(ctx, usersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exports := make([]domain.UserExport, 0)
	for rows.Next() {
		var exp domain.UserExport
		var profileUserID *int64
		var bio, location, wechat, group *string
		var profileUpdatedAt *time.Time

		if err := rows.Scan(
			&exp.ID, &exp.Handle, &exp.DisplayName, &exp.Email, &exp.Role,
			&profileUserID, &bio, &location, &wechat, &group, &profileUpdatedAt,
		); err != nil {
			return nil, err
		}
		if profileUserID != nil {
			exp.Profile = &domain.Profile{
				UserID:      *profileUserID,
				Bio:         bio,
				Location:    location,
				WechatQRURL: wechat,
				GroupQRURL:  group,
				UpdatedAt:   profileUpdatedAt,
			}
		}
		exp.Links = []domain.Link{}
		exports = append(exports, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(exports) == 0 {
		return exports, nil
	}

	ids := make([]int64, len(exports))
	index := make(map[int64]int, len(exports))
	for i, exp := range exports {
		ids[i] = exp.ID
		index[exp.ID] = i
	}

	const linksQuery = `
        SELECT id, user_id, title, url, position, is_hidden, clicks, created_at, updated_at
        FROM links WHERE user_id = ANY($1) ORDER BY user_id, position`

	linkRows, err := r.pool.Query(ctx, linksQuery, ids)
	if err != nil {
		return nil, err
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var link domain.Link
		if err := linkRows.Scan(
			&link.ID, &link.UserID, &link.Title, &link.URL,
			&link.Position, &link.IsHidden, &link.Clicks,
			&link.CreatedAt, &link.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if i, ok := index[link.UserID]; ok {
			exports[i].Links = append(exports[i].Links, link)
		}
	}
	return exports, linkRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *userRepository) scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Handle,
		&user.DisplayName,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
