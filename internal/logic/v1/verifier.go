package v1

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/webui-auth-gate/internal/core/domain"
	"github.com/duynhne/webui-auth-gate/middleware"
)

// BasicCredentials is the decoded payload of a Basic Authorization header.
type BasicCredentials struct {
	Username string
	Password string
}

// ParseBasicHeader decodes "Basic base64(username:password)".
// Every failure wraps ErrMalformedHeader; the password may itself contain ':'.
func ParseBasicHeader(value string) (BasicCredentials, error) {
	if value == "" {
		return BasicCredentials{}, fmt.Errorf("empty header: %w", ErrMalformedHeader)
	}

	scheme, encoded, found := strings.Cut(strings.TrimSpace(value), " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return BasicCredentials{}, fmt.Errorf("unsupported scheme: %w", ErrMalformedHeader)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return BasicCredentials{}, fmt.Errorf("decode base64: %w", ErrMalformedHeader)
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return BasicCredentials{}, fmt.Errorf("missing separator: %w", ErrMalformedHeader)
	}

	return BasicCredentials{Username: username, Password: password}, nil
}

// CredentialVerifier checks passwords against the credential table.
// It depends on the domain.CredentialStore interface only.
type CredentialVerifier struct {
	store  domain.CredentialStore
	digest Digest
}

// NewCredentialVerifier creates a verifier. A nil digest means SHA256Digest.
func NewCredentialVerifier(store domain.CredentialStore, digest Digest) *CredentialVerifier {
	if digest == nil {
		digest = SHA256Digest{}
	}
	return &CredentialVerifier{
		store:  store,
		digest: digest,
	}
}

// Check verifies username/password and explains a failure.
// Returned errors wrap ErrInvalidInput, ErrUserNotFound or ErrInvalidCredentials.
func (v *CredentialVerifier) Check(ctx context.Context, username, password string) error {
	_, span := middleware.StartSpan(ctx, "auth.verify", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("digest", v.digest.Name()),
	))
	defer span.End()

	if username == "" || password == "" {
		span.SetAttributes(attribute.Bool("auth.success", false))
		return fmt.Errorf("verify credentials: %w", ErrInvalidInput)
	}

	stored, ok := v.store.Lookup(username)
	if !ok {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return fmt.Errorf("verify user %q: %w", username, ErrUserNotFound)
	}

	if !v.digest.Matches(stored, password) {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return fmt.Errorf("verify user %q: %w", username, ErrInvalidCredentials)
	}

	span.SetAttributes(attribute.Bool("auth.success", true))
	return nil
}

// Verify reports whether password is correct for username.
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) bool {
	return v.Check(ctx, username, password) == nil
}

// VerifyBasicHeader parses a Basic Authorization header and verifies it.
// It fails closed: any parse or verification failure returns ok == false.
func (v *CredentialVerifier) VerifyBasicHeader(ctx context.Context, header string) (username string, ok bool) {
	creds, err := ParseBasicHeader(header)
	if err != nil {
		return "", false
	}
	if !v.Verify(ctx, creds.Username, creds.Password) {
		return "", false
	}
	return creds.Username, true
}
