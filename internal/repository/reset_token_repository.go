package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/newswire/internal/model"
)

// ResetTokenRepo persists password-reset tokens (single 'token_hash'
// column; the raw token never reaches the database).
type ResetTokenRepo struct{ DB *sql.DB }

func NewResetTokenRepo(db *sql.DB) *ResetTokenRepo { return &ResetTokenRepo{DB: db} }

// Store inserts a reset token digest row with used=0. Older unused tokens
// of the same user are left as they are: each remains independently
// single-use and expires on its own clock.
func (r *ResetTokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO reset_tokens (user_id, token_hash, expires_at, used) VALUES (?,?,?,0)",
		userID, tokenHash, exp)
	return err
}

// FindActiveByHash returns the unused token matching a digest, newest row
// first. Expiry is not checked here: the caller distinguishes Expired from
// Invalid so the two can be logged apart while answering identically.
func (r *ResetTokenRepo) FindActiveByHash(ctx context.Context, tokenHash string) (*model.ResetToken, error) {
	const q = `SELECT id, user_id, token_hash, expires_at, used, created_at
	           FROM reset_tokens WHERE token_hash = ? AND used = 0
	           ORDER BY id DESC LIMIT 1`
	var t model.ResetToken
	err := r.DB.QueryRowContext(ctx, q, tokenHash).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Consume atomically spends a token and swaps the user's password hash in
// one transaction. The conditional update on used=0 is the check-and-set:
// of two concurrent consume calls exactly one affects a row, the other
// gets ErrTokenUsed and nothing is written.
func (r *ResetTokenRepo) Consume(ctx context.Context, tokenID, userID uint64, newPasswordHash string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE reset_tokens SET used=1 WHERE id=? AND used=0", tokenID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenUsed
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=NOW() WHERE id=?",
		newPasswordHash, userID); err != nil {
		return err
	}
	return tx.Commit()
}
