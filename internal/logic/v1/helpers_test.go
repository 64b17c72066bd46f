package v1

import (
	"github.com/duynhne/webui-auth-gate/internal/core/repository"
)

// sha256("secret")
const secretHash = "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b"

func newTestStore() *repository.MapCredentialStore {
	return repository.NewMapCredentialStore(map[string]string{"alice": secretHash})
}

func newTestVerifier() *CredentialVerifier {
	return NewCredentialVerifier(newTestStore(), nil)
}
