package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Password reset tokens are self-contained: user id, issue timestamp and an
// HMAC over both plus the user's current password hash. The hash in the MAC
// makes every token single-use, since a successful reset rotates the hash and
// invalidates anything signed against the old one.

var (
	ErrTokenMalformed = errors.New("reset token is malformed")
	ErrTokenExpired   = errors.New("reset token has expired")
	ErrTokenInvalid   = errors.New("reset token is invalid")
)

const defaultResetTokenTTL = 30 * time.Minute

func resetTokenTTL() time.Duration {
	if raw := os.Getenv("RESET_TOKEN_TTL_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultResetTokenTTL
}

func resetTokenSignature(userID uint, issuedAt int64, passwordHash string) string {
	mac := hmac.New(sha256.New, []byte(os.Getenv("JWT_SECRET")))
	fmt.Fprintf(mac, "%d:%d:%s", userID, issuedAt, passwordHash)
	return hex.EncodeToString(mac.Sum(nil))
}

// MakeResetToken issues a reset token bound to the user's current password
// hash.
func MakeResetToken(userID uint, passwordHash string) string {
	issuedAt := time.Now().Unix()
	raw := fmt.Sprintf("%d:%d:%s", userID, issuedAt, resetTokenSignature(userID, issuedAt, passwordHash))
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseResetToken extracts the user id without verifying the signature. The
// caller must load the user and call VerifyResetToken before trusting it.
func ParseResetToken(token string) (uint, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, ErrTokenMalformed
	}
	parts := strings.SplitN(string(decoded), ":", 3)
	if len(parts) != 3 {
		return 0, ErrTokenMalformed
	}
	userID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, ErrTokenMalformed
	}
	return uint(userID), nil
}

// VerifyResetToken checks the signature against the user's current password
// hash and enforces the token lifetime.
func VerifyResetToken(token string, userID uint, passwordHash string) error {
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ErrTokenMalformed
	}
	parts := strings.SplitN(string(decoded), ":", 3)
	if len(parts) != 3 {
		return ErrTokenMalformed
	}

	tokenUserID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil || uint(tokenUserID) != userID {
		return ErrTokenInvalid
	}
	issuedAt, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ErrTokenMalformed
	}

	expected := resetTokenSignature(userID, issuedAt, passwordHash)
	if !hmac.Equal([]byte(parts[2]), []byte(expected)) {
		return ErrTokenInvalid
	}

	if time.Since(time.Unix(issuedAt, 0)) > resetTokenTTL() {
		return ErrTokenExpired
	}
	return nil
}
