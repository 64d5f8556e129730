package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/newswire/internal/rbac"
)

// RoleRepo seeds and reads the 'roles' table.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// EnsureRoles declaratively seeds the closed role set. It runs once at
// process start and is idempotent: INSERT IGNORE leaves existing rows
// untouched, so there is no read-modify-write window and no coupling to a
// migration event.
func (r *RoleRepo) EnsureRoles(ctx context.Context) error {
	for i, role := range rbac.Roles {
		if _, err := r.DB.ExecContext(ctx,
			"INSERT IGNORE INTO roles (id, name) VALUES (?,?)",
			i+1, string(role)); err != nil {
			return err
		}
	}
	return nil
}
