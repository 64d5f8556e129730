package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/newswire/internal/model"
)

// SubscriptionRepo persists reader subscriptions. The table carries a
// unique key over (user_id, kind, target_id) so get-or-create is a single
// atomic INSERT IGNORE, safe under concurrent subscribe calls.
type SubscriptionRepo struct{ db *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

// Subscribe records interest in a publisher or journalist. It reports
// whether a new row was actually created; calling twice with identical
// arguments succeeds both times and creates at most one row.
func (r *SubscriptionRepo) Subscribe(ctx context.Context, userID uint64, kind string, targetID uint64) (created bool, err error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO subscriptions (user_id, kind, target_id) VALUES (?,?,?)",
		userID, kind, targetID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListByUser returns all subscriptions held by a user ordered by id.
func (r *SubscriptionRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Subscription, error) {
	const q = `SELECT id, user_id, kind, target_id, created_at
	           FROM subscriptions WHERE user_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Subscription
	for rows.Next() {
		s := new(model.Subscription)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Kind, &s.TargetID, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// PublisherSubscriberEmails resolves the email addresses of everyone
// subscribed to a publishing house. Rows with an empty email are filtered
// out here so the notification fan-out can batch the rest directly.
func (r *SubscriptionRepo) PublisherSubscriberEmails(ctx context.Context, publisherID uint64) ([]string, error) {
	const q = `SELECT u.email
	           FROM subscriptions s JOIN users u ON u.id = s.user_id
	           WHERE s.kind = 'publisher' AND s.target_id = ? AND u.email <> ''`
	rows, err := r.db.QueryContext(ctx, q, publisherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		out = append(out, email)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
