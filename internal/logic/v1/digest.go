package v1

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Digest is the password hashing strategy behind the credential table.
type Digest interface {
	// Name identifies the strategy in configuration and logs.
	Name() string
	// Hash produces the value stored in the credential table for password.
	Hash(password string) (string, error)
	// Matches reports whether password hashes to stored.
	Matches(stored, password string) bool
}

// SHA256Digest is the stored-hash format of the credential table:
// lowercase hex of a single unsalted SHA-256 pass over the password bytes.
// It is kept for compatibility with existing tables, not as a recommendation.
type SHA256Digest struct{}

// Name returns "sha256".
func (SHA256Digest) Name() string { return "sha256" }

// Hash returns the hex digest of password.
func (SHA256Digest) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Matches compares digests in constant time.
func (d SHA256Digest) Matches(stored, password string) bool {
	computed, _ := d.Hash(password)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(stored)), []byte(computed)) == 1
}

// BcryptDigest stores bcrypt hashes instead of bare SHA-256.
type BcryptDigest struct {
	Cost int
}

// Name returns "bcrypt".
func (BcryptDigest) Name() string { return "bcrypt" }

// Hash returns a bcrypt hash of password.
func (d BcryptDigest) Hash(password string) (string, error) {
	cost := d.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Matches reports whether stored is the bcrypt hash of password.
func (BcryptDigest) Matches(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// DigestByName resolves a configured digest name.
func DigestByName(name string) (Digest, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sha256":
		return SHA256Digest{}, nil
	case "bcrypt":
		return BcryptDigest{}, nil
	default:
		return nil, fmt.Errorf("unknown digest %q", name)
	}
}
