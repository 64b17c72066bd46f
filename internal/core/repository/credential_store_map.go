package repository

import "strings"

// MapCredentialStore implements domain.CredentialStore over an in-memory table.
type MapCredentialStore struct {
	entries map[string]string
}

// NewMapCredentialStore copies entries into a new store.
// Hex digests are lower-cased so comparisons don't depend on how the table was written.
func NewMapCredentialStore(entries map[string]string) *MapCredentialStore {
	copied := make(map[string]string, len(entries))
	for username, hash := range entries {
		hash = strings.TrimSpace(hash)
		if isHex(hash) {
			hash = strings.ToLower(hash)
		}
		copied[username] = hash
	}
	return &MapCredentialStore{entries: copied}
}

// Lookup returns the stored hash for username.
func (s *MapCredentialStore) Lookup(username string) (string, bool) {
	hash, ok := s.entries[username]
	return hash, ok
}

// Len returns the number of usernames in the table.
func (s *MapCredentialStore) Len() int {
	return len(s.entries)
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
