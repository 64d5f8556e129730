package utils

import (
	"strings"
	"testing"
	"time"
)

func TestNewResetToken(t *testing.T) {
	tok, err := NewResetToken(30)
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if tok.Raw == "" {
		t.Fatal("empty raw token")
	}
	// 32 bytes of raw-url base64 without padding.
	if len(tok.Raw) != 43 {
		t.Errorf("raw length = %d, want 43", len(tok.Raw))
	}
	if strings.ContainsAny(tok.Raw, "+/=") {
		t.Errorf("raw token %q is not URL safe", tok.Raw)
	}
	want := time.Now().UTC().Add(30 * time.Minute)
	if d := tok.Exp.Sub(want); d < -time.Minute || d > time.Minute {
		t.Errorf("expiry %v not near %v", tok.Exp, want)
	}

	other, err := NewResetToken(30)
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if other.Raw == tok.Raw {
		t.Error("two tokens share the same raw value")
	}
}

func TestHashTokenRaw(t *testing.T) {
	a := HashTokenRaw("some-token")
	if a != HashTokenRaw("some-token") {
		t.Error("digest is not deterministic")
	}
	if a == HashTokenRaw("other-token") {
		t.Error("distinct tokens share a digest")
	}
	// SHA-256 hex digest.
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64", len(a))
	}
	if a == "some-token" {
		t.Error("digest must differ from the raw value")
	}
}
