// Package credential hashes passwords and issues and verifies single-use
// password reset tokens.
package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ResetTokenTTL is how long an issued reset token stays valid.
const ResetTokenTTL = 10 * time.Minute

// resetTokenBytes is the entropy of a reset token before hex encoding.
const resetTokenBytes = 20

var (
	ErrResetTokenInvalid = errors.New("reset token is invalid")
	ErrResetTokenExpired = errors.New("reset token has expired")
)

// dummyHashes caches one throwaway hash per bcrypt cost.
var dummyHashes sync.Map

func dummyHash(cost int) []byte {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if h, ok := dummyHashes.Load(cost); ok {
		return h.([]byte)
	}
	h, err := bcrypt.GenerateFromPassword([]byte("orbit-unknown-user"), cost)
	if err != nil {
		h, _ = bcrypt.GenerateFromPassword([]byte("orbit-unknown-user"), bcrypt.DefaultCost)
	}
	actual, _ := dummyHashes.LoadOrStore(cost, h)
	return actual.([]byte)
}

// HashPassword returns a bcrypt hash of password with a random salt.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnPasswordCheck spends the same work as CheckPassword against a hash of
// the given cost and always fails. It runs when a login names an unknown user.
func BurnPasswordCheck(password string, cost int) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(cost), []byte(password))
}

// ResetToken is a freshly issued reset credential. Plaintext goes to the user
// and is never stored; Hash and ExpiresAt are persisted.
type ResetToken struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

// IssueResetToken creates a random reset token valid for ResetTokenTTL.
func IssueResetToken(now time.Time) (ResetToken, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return ResetToken{}, fmt.Errorf("generate reset token: %w", err)
	}
	plain := hex.EncodeToString(buf)
	return ResetToken{
		Plaintext: plain,
		Hash:      HashResetToken(plain),
		ExpiresAt: now.Add(ResetTokenTTL),
	}, nil
}

// HashResetToken returns the SHA-256 hex digest stored for a reset token.
func HashResetToken(plain string) string {
	h := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(h[:])
}

// VerifyResetToken checks supplied against the stored hash and expiry. Both
// must hold: a matching token presented at or after expiresAt is rejected
// with ErrResetTokenExpired.
func VerifyResetToken(storedHash string, expiresAt *time.Time, supplied string, now time.Time) error {
	if storedHash == "" || expiresAt == nil || supplied == "" {
		return ErrResetTokenInvalid
	}
	got := HashResetToken(supplied)
	if subtle.ConstantTimeCompare([]byte(got), []byte(storedHash)) != 1 {
		return ErrResetTokenInvalid
	}
	if !now.Before(*expiresAt) {
		return ErrResetTokenExpired
	}
	return nil
}
