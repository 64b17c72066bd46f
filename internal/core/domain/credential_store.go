package domain

// CredentialStore is the read-only credential table consulted by the verifier.
// It maps a username to the stored password hash and is immutable after load.
type CredentialStore interface {
	// Lookup returns the stored hash for username.
	// ok is false when the username is unknown.
	Lookup(username string) (hash string, ok bool)
}
