package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/newswire/internal/model"
)

// PostRepo encapsulates all database queries for articles and newsletters.
// Both kinds share the 'posts' table and are told apart by the kind column.
type PostRepo struct{ db *sql.DB }

func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{db: db} }

const postCols = "id, kind, title, content, journalist_id, publisher_id, approved, created_at, updated_at"

// Create inserts a new draft post. On success the post's ID field is
// populated and a follow-up SELECT fills the DB-generated timestamps so
// callers receive a fully populated record.
func (r *PostRepo) Create(ctx context.Context, p *model.Post) error {
	const qInsert = "INSERT INTO posts (kind, title, content, journalist_id, publisher_id, approved) VALUES (?,?,?,?,?,0)"
	res, err := r.db.ExecContext(ctx, qInsert, p.Kind, p.Title, p.Content, p.JournalistID, p.PublisherID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	const qSelect = "SELECT " + postCols + " FROM posts WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, p.ID).Scan(
		&p.ID, &p.Kind, &p.Title, &p.Content, &p.JournalistID, &p.PublisherID,
		&p.Approved, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID fetches a post by its ID. It returns ErrPostNotFound if no row is
// found so handlers can answer 404 distinctly from 403.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (*model.Post, error) {
	const q = "SELECT " + postCols + " FROM posts WHERE id = ?"
	var p model.Post
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Kind, &p.Title, &p.Content, &p.JournalistID, &p.PublisherID,
		&p.Approved, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateContent mutates title and content of a post. The approved flag is
// deliberately not settable here; the only way to flip it is Approve.
func (r *PostRepo) UpdateContent(ctx context.Context, id uint64, title, content string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE posts SET title=?, content=?, updated_at=NOW() WHERE id=?",
		title, content, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// The row may exist with identical values; verify before reporting
		// not found.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a post. Rejection has no state of its own: an editor or
// publisher who declines a draft deletes it.
func (r *PostRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPostNotFound
	}
	return nil
}

// Approve flips approved from 0 to 1. The conditional update makes the
// transition mutually exclusive at the store layer: of two concurrent
// approvals exactly one observes RowsAffected==1 and only that caller may
// fire the notification fan-out. The loser gets transitioned=false and
// treats its call as an idempotent no-op.
func (r *PostRepo) Approve(ctx context.Context, id uint64) (transitioned bool, err error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE posts SET approved=1, updated_at=NOW() WHERE id=? AND approved=0", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ApprovalInfo resolves the display names needed for the publication
// event of a post: the author's username and the house owner's username.
func (r *PostRepo) ApprovalInfo(ctx context.Context, id uint64) (journalistName, publisherName string, err error) {
	const q = `SELECT ju.username, pu.username
	           FROM posts p
	           JOIN journalists j ON j.id = p.journalist_id
	           JOIN users ju ON ju.id = j.user_id
	           JOIN publishers pb ON pb.id = p.publisher_id
	           JOIN users pu ON pu.id = pb.user_id
	           WHERE p.id = ?`
	err = r.db.QueryRowContext(ctx, q, id).Scan(&journalistName, &publisherName)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrPostNotFound
	}
	return journalistName, publisherName, err
}

// ListApproved returns all approved posts of one kind, newest first. This
// feeds the public article and newsletter listings.
func (r *PostRepo) ListApproved(ctx context.Context, kind string) ([]*model.Post, error) {
	const q = "SELECT " + postCols + " FROM posts WHERE kind=? AND approved=1 ORDER BY created_at DESC"
	return r.list(ctx, q, kind)
}

// ListByJournalist returns every post written by a journalist profile.
func (r *PostRepo) ListByJournalist(ctx context.Context, journalistID uint64) ([]*model.Post, error) {
	const q = "SELECT " + postCols + " FROM posts WHERE journalist_id=? ORDER BY created_at DESC"
	return r.list(ctx, q, journalistID)
}

// ListByPublisher returns every post submitted to a publishing house,
// drafts included. Editors and publishers review their house through this.
func (r *PostRepo) ListByPublisher(ctx context.Context, publisherID uint64) ([]*model.Post, error) {
	const q = "SELECT " + postCols + " FROM posts WHERE publisher_id=? ORDER BY created_at DESC"
	return r.list(ctx, q, publisherID)
}

func (r *PostRepo) list(ctx context.Context, q string, arg any) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Post
	for rows.Next() {
		p := new(model.Post)
		if err := rows.Scan(
			&p.ID, &p.Kind, &p.Title, &p.Content, &p.JournalistID, &p.PublisherID,
			&p.Approved, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
