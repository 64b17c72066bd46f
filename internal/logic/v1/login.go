package v1

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/webui-auth-gate/internal/core/domain"
	"github.com/duynhne/webui-auth-gate/middleware"
)

// LoginFlow turns credentials collected by the login form into a session.
type LoginFlow struct {
	verifier *CredentialVerifier
	sessions domain.SessionRegistry
}

// NewLoginFlow creates a LoginFlow.
func NewLoginFlow(verifier *CredentialVerifier, sessions domain.SessionRegistry) *LoginFlow {
	return &LoginFlow{
		verifier: verifier,
		sessions: sessions,
	}
}

// Login verifies the credentials and creates a session.
// Unknown user and wrong password both come back as ErrAuthenticationFailed,
// so UserMessage renders them identically.
func (f *LoginFlow) Login(ctx context.Context, username, password string) (string, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", username),
	))
	defer span.End()

	if username == "" || password == "" {
		span.SetAttributes(attribute.Bool("request.valid", false))
		return "", fmt.Errorf("login: %w", ErrInvalidInput)
	}

	if err := f.verifier.Check(ctx, username, password); err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidCredentials) {
			return "", fmt.Errorf("login %q: %w", username, errors.Join(ErrAuthenticationFailed, err))
		}
		return "", fmt.Errorf("login %q: %w", username, err)
	}

	id, err := f.sessions.Create(username)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("create session for %q: %w", username, err)
	}

	span.SetAttributes(attribute.Bool("auth.success", true))
	span.AddEvent("user.authenticated")
	return id, nil
}

// Logout revokes the session behind id. Unknown ids are not an error.
func (f *LoginFlow) Logout(ctx context.Context, id string) bool {
	_, span := middleware.StartSpan(ctx, "auth.logout", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	revoked := f.sessions.Revoke(id)
	span.SetAttributes(attribute.Bool("session.revoked", revoked))
	return revoked
}
