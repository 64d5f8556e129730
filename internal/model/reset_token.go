package model

import "time"

// ResetToken models an entry in the `reset_tokens` table. Like refresh
// tokens, the raw value is handed to the user exactly once and only its
// SHA-256 digest is persisted. A token is consumable at most once: the
// `used` flag is flipped by a conditional update when the password is
// changed. Expiry is purely a clock comparison at validation time; expired
// rows are not deleted.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – account the token can reset.
//  TokenHash – SHA-256 hex digest of the raw token.
//  ExpiresAt – expiration timestamp (issue time + configured TTL).
//  Used      – whether the token has been consumed.
//  CreatedAt – timestamp of creation.
type ResetToken struct {
	ID        uint64    // reset_tokens.id
	UserID    uint64    // reset_tokens.user_id
	TokenHash string    // reset_tokens.token_hash
	ExpiresAt time.Time // reset_tokens.expires_at
	Used      bool      // reset_tokens.used
	CreatedAt time.Time // reset_tokens.created_at
}
