package utils

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// ResetToken is a single-use password-reset token. Raw is the URL-safe
// string embedded in the reset link and handed to the user exactly once;
// only its SHA-256 hash (HashTokenRaw) goes into the database.
type ResetToken struct {
	Raw string
	Exp time.Time
}

// NewResetToken generates a reset token with 32 bytes (256 bits) of
// entropy, base64 URL encoding keeps it safe inside a query parameter.
// The ttlMin parameter is the validity window in minutes.
func NewResetToken(ttlMin int) (ResetToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return ResetToken{}, err
	}
	return ResetToken{
		Raw: base64.RawURLEncoding.EncodeToString(buf),
		Exp: time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute),
	}, nil
}
