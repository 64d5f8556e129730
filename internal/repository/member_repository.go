package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/newswire/internal/model"
	"github.com/iliyamo/newswire/internal/rbac"
)

// MemberRepo manages the per-role profile tables (readers, journalists,
// editors). Selecting a role creates the matching profile row; journalists
// and editors later bind their profile to a publishing house by joining it.
type MemberRepo struct{ db *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

// EnsureReader creates the reader profile for a user if missing.
func (r *MemberRepo) EnsureReader(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO readers (user_id) VALUES (?)", userID)
	return err
}

// EnsureJournalist creates the journalist profile for a user if missing.
// The profile starts unjoined (publisher_id NULL).
func (r *MemberRepo) EnsureJournalist(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO journalists (user_id) VALUES (?)", userID)
	return err
}

// EnsureEditor creates the editor profile for a user if missing.
func (r *MemberRepo) EnsureEditor(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO editors (user_id) VALUES (?)", userID)
	return err
}

// JoinPublisher binds (or rebinds) a journalist or editor profile to a
// publishing house. A profile belongs to at most one house at a time, so
// the previous membership is simply overwritten. sql.ErrNoRows is surfaced
// when the user has no profile for the given role.
func (r *MemberRepo) JoinPublisher(ctx context.Context, role rbac.Role, userID, publisherID uint64) error {
	var q string
	switch role {
	case rbac.RoleJournalist:
		q = "UPDATE journalists SET publisher_id=? WHERE user_id=?"
	case rbac.RoleEditor:
		q = "UPDATE editors SET publisher_id=? WHERE user_id=?"
	default:
		return rbac.ErrPermissionDenied
	}
	res, err := r.db.ExecContext(ctx, q, publisherID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Zero affected rows means either no profile or the membership
		// already pointed at this house; distinguish by re-reading.
		var cur sql.NullInt64
		probe := "SELECT publisher_id FROM journalists WHERE user_id=?"
		if role == rbac.RoleEditor {
			probe = "SELECT publisher_id FROM editors WHERE user_id=?"
		}
		if err := r.db.QueryRowContext(ctx, probe, userID).Scan(&cur); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrJournalistNotFound
			}
			return err
		}
	}
	return nil
}

// GetJournalistByID fetches a journalist profile by its profile id. It is
// used to validate subscription targets.
func (r *MemberRepo) GetJournalistByID(ctx context.Context, id uint64) (*model.Journalist, error) {
	const q = "SELECT id, user_id, publisher_id, created_at FROM journalists WHERE id = ?"
	var (
		j   model.Journalist
		pub sql.NullInt64
	)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&j.ID, &j.UserID, &pub, &j.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJournalistNotFound
		}
		return nil, err
	}
	if pub.Valid {
		v := uint64(pub.Int64)
		j.PublisherID = &v
	}
	return &j, nil
}

// JournalistListing is a journalist row joined with the username for the
// public subscribe picker.
type JournalistListing struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// ListJournalists returns all journalist profiles ordered by id.
func (r *MemberRepo) ListJournalists(ctx context.Context) ([]JournalistListing, error) {
	const q = `SELECT j.id, u.username
	           FROM journalists j JOIN users u ON u.id = j.user_id ORDER BY j.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JournalistListing
	for rows.Next() {
		var j JournalistListing
		if err := rows.Scan(&j.ID, &j.Username); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
