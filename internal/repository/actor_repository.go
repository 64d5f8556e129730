package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/newswire/internal/rbac"
)

// ActorRepo assembles the RBAC actor for a request from the persisted
// profile tables. It is read-only and re-queried on every authenticated
// request: role and membership state is never cached across requests, so a
// role selected or a house joined a moment ago takes effect immediately.
type ActorRepo struct{ db *sql.DB }

func NewActorRepo(db *sql.DB) *ActorRepo { return &ActorRepo{db: db} }

// Actor loads the role set and house scopes of a user. A missing profile
// simply leaves the corresponding role unset; a user with no profiles at
// all yields an actor that every guarded action denies.
func (r *ActorRepo) Actor(ctx context.Context, userID uint64) (rbac.Actor, error) {
	a := rbac.Actor{UserID: userID, Roles: map[rbac.Role]bool{}}

	var readerID uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM readers WHERE user_id=?", userID).Scan(&readerID)
	switch {
	case err == nil:
		a.Roles[rbac.RoleReader] = true
	case !errors.Is(err, sql.ErrNoRows):
		return a, err
	}

	var (
		journalistID uint64
		journalistPub sql.NullInt64
	)
	err = r.db.QueryRowContext(ctx,
		"SELECT id, publisher_id FROM journalists WHERE user_id=?", userID).
		Scan(&journalistID, &journalistPub)
	switch {
	case err == nil:
		a.Roles[rbac.RoleJournalist] = true
		a.JournalistID = journalistID
		if journalistPub.Valid {
			a.MemberPublisherID = uint64(journalistPub.Int64)
		}
	case !errors.Is(err, sql.ErrNoRows):
		return a, err
	}

	var (
		editorID  uint64
		editorPub sql.NullInt64
	)
	err = r.db.QueryRowContext(ctx,
		"SELECT id, publisher_id FROM editors WHERE user_id=?", userID).
		Scan(&editorID, &editorPub)
	switch {
	case err == nil:
		a.Roles[rbac.RoleEditor] = true
		a.EditorID = editorID
		if editorPub.Valid {
			a.MemberPublisherID = uint64(editorPub.Int64)
		}
	case !errors.Is(err, sql.ErrNoRows):
		return a, err
	}

	var publisherID uint64
	err = r.db.QueryRowContext(ctx,
		"SELECT id FROM publishers WHERE user_id=?", userID).Scan(&publisherID)
	switch {
	case err == nil:
		a.Roles[rbac.RolePublisher] = true
		a.PublisherID = publisherID
	case !errors.Is(err, sql.ErrNoRows):
		return a, err
	}

	return a, nil
}
