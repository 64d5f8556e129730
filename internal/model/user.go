package model

import "time"

// User represents an application account as stored in the `users` table.
// Each field corresponds to a column in the database. The json tags are
// omitted because these structs are used internally by the repository
// layer; handlers define separate response types with appropriate tags.
// Role profiles (Reader, Journalist, Editor, Publisher) live in their own
// tables and reference the user by ID, so a user record itself carries no
// role information.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Email        – contact address used for password resets and notifications.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Role represents a row in the `roles` table. The table is seeded once at
// process start so that role names are closed and stable; a user's role
// membership is derived from the profile tables, not from this table.
//
// Fields:
//  ID   – numeric identifier of the role.
//  Name – unique role name (READER, JOURNALIST, EDITOR, PUBLISHER).
type Role struct {
	ID   uint8  // roles.id
	Name string // roles.name
}

// RefreshToken models an entry in the `refresh_tokens` table. Each refresh
// token belongs to a user and contains metadata for expiry and revocation.
// The plain token is not stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
