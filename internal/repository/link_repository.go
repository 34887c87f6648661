package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/linkbio-service/internal/domain"
)

// LinkRepository encapsulates link persistence and click accounting.
type LinkRepository interface {
	Create(ctx context.Context, link *domain.Link) error
	Update(ctx context.Context, link *domain.Link) error
	Delete(ctx context.Context, linkID, userID int64) error
	GetByID(ctx context.Context, id int64) (*domain.Link, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Link, error)
	RecordVisit(ctx context.Context, linkID int64, visit domain.Visit) error
}

type linkRepository struct {
	pool *pgxpool.Pool
}

// NewLinkRepository instantiates repository.
func NewLinkRepository(pool *pgxpool.Pool) LinkRepository {
	return &linkRepository{pool: pool}
}

func (r *linkRepository) Create(ctx context.Context, link *domain.Link) error {
	const query = `
        INSERT INTO links (user_id, title, url, position, is_hidden)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, clicks, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		link.UserID,
		link.Title,
		link.URL,
		link.Position,
		link.IsHidden,
	).Scan(&link.ID, &link.Clicks, &link.CreatedAt, &link.UpdatedAt)
}

func (r *linkRepository) Update(ctx context.Context, link *domain.Link) error {
	const query = `
        UPDATE links SET title=$1, url=$2, position=$3, is_hidden=$4, updated_at=NOW()
        WHERE id=$5 AND user_id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		link.Title,
		link.URL,
		link.Position,
		link.IsHidden,
		link.ID,
		link.UserID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *linkRepository) Delete(ctx context.Context, linkID, userID int64) error {
	const query = `DELETE FROM links WHERE id=$1 AND user_id=$2`

	cmd, err := r.pool.Exec(ctx, query, linkID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *linkRepository) GetByID(ctx context.Context, id int64) (*domain.Link, error) {
	const query = `
        SELECT id, user_id, title, url, position, is_hidden, clicks, created_at, updated_at
        FROM links WHERE id=$1`

	var link domain.Link
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&link.ID,
		&link.UserID,
		&link.Title,
		&link.URL,
		&link.Position,
		&link.IsHidden,
		&link.Clicks,
		&link.CreatedAt,
		&link.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Link, error) {
	const query = `
        SELECT id, user_id, title, url, position, is_hidden, clicks, created_at, updated_at
        FROM links WHERE user_id=$1 ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]domain.Link, 0)
	for rows.Next() {
		var link domain.Link
		if err := rows.Scan(
			&link.ID,
			&link.UserID,
			&link.Title,
			&link.URL,
			&link.Position,
			&link.IsHidden,
			&link.Clicks,
			&link.CreatedAt,
			&link.UpdatedAt,
		); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// RecordVisit inserts the visit row and bumps the click counter in one
// transaction. The increment is evaluated server-side so concurrent visits
// to the same link never lose updates.
func (r *linkRepository) RecordVisit(ctx context.Context, linkID int64, visit domain.Visit) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertVisit = `
        INSERT INTO link_visits (link_id, referrer, user_agent, country)
        VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, insertVisit, linkID, visit.Referrer, visit.UserAgent, visit.Country); err != nil {
		return err
	}

	const increment = `UPDATE links SET clicks = clicks + 1 WHERE id=$1`
	cmd, err := tx.Exec(ctx, increment, linkID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}
