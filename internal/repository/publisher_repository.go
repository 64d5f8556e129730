package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/newswire/internal/model"
)

// PublisherRepo encapsulates queries for publishing houses.
type PublisherRepo struct{ db *sql.DB }

func NewPublisherRepo(db *sql.DB) *PublisherRepo { return &PublisherRepo{db: db} }

// EnsureForUser creates the publishing house owned by the given user if it
// does not exist yet and returns it. INSERT IGNORE plus a follow-up SELECT
// keeps the operation idempotent under concurrent role selections.
func (r *PublisherRepo) EnsureForUser(ctx context.Context, userID uint64) (*model.Publisher, error) {
	if _, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO publishers (user_id) VALUES (?)", userID); err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, userID)
}

// GetByID fetches a publishing house by its ID. It returns
// ErrPublisherNotFound if no row is found.
func (r *PublisherRepo) GetByID(ctx context.Context, id uint64) (*model.Publisher, error) {
	const q = "SELECT id, user_id, created_at FROM publishers WHERE id = ?"
	var p model.Publisher
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.UserID, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPublisherNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByUserID fetches the house owned by a user.
func (r *PublisherRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Publisher, error) {
	const q = "SELECT id, user_id, created_at FROM publishers WHERE user_id = ?"
	var p model.Publisher
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&p.ID, &p.UserID, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPublisherNotFound
		}
		return nil, err
	}
	return &p, nil
}

// PublisherListing is a house row joined with its owner's username for the
// public join/subscribe pickers.
type PublisherListing struct {
	ID    uint64 `json:"id"`
	Owner string `json:"owner"`
}

// List returns all publishing houses ordered by id.
func (r *PublisherRepo) List(ctx context.Context) ([]PublisherListing, error) {
	const q = `SELECT p.id, u.username
	           FROM publishers p JOIN users u ON u.id = p.user_id ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PublisherListing
	for rows.Next() {
		var p PublisherListing
		if err := rows.Scan(&p.ID, &p.Owner); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
