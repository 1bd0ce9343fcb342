package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestResetTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token := MakeResetToken(42, "bcrypt-hash-of-password")

	userID, err := ParseResetToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user id 42, got %d", userID)
	}

	if err := VerifyResetToken(token, 42, "bcrypt-hash-of-password"); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestResetTokenInvalidAfterPasswordChange(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token := MakeResetToken(42, "old-hash")
	if err := VerifyResetToken(token, 42, "new-hash"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid after hash rotation, got %v", err)
	}
}

func TestResetTokenWrongUser(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token := MakeResetToken(42, "hash")
	if err := VerifyResetToken(token, 43, "hash"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for a different user, got %v", err)
	}
}

func TestResetTokenExpires(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	// Hand-build a correctly signed token issued beyond the TTL.
	issuedAt := time.Now().Add(-2 * defaultResetTokenTTL).Unix()
	sig := resetTokenSignature(42, issuedAt, "hash")
	raw := fmt.Sprintf("%d:%d:%s", 42, issuedAt, sig)
	token := base64.RawURLEncoding.EncodeToString([]byte(raw))

	if err := VerifyResetToken(token, 42, "hash"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestResetTokenTampered(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token := MakeResetToken(42, "hash")
	decoded, _ := base64.RawURLEncoding.DecodeString(token)
	decoded[len(decoded)-1] ^= 0x01
	tampered := base64.RawURLEncoding.EncodeToString(decoded)

	if err := VerifyResetToken(tampered, 42, "hash"); err == nil {
		t.Fatal("expected tampered token to be rejected")
	}

	if _, err := ParseResetToken("%%%not-base64%%%"); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}
