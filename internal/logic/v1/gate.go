package v1

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/webui-auth-gate/internal/core/domain"
	"github.com/duynhne/webui-auth-gate/middleware"
)

// Decision is the outcome of the gate for one request.
type Decision int

const (
	// DecisionPass lets the request through to the UI.
	DecisionPass Decision = iota
	// DecisionRedirect sends the caller to the login path.
	DecisionRedirect
	// DecisionNewSession means Basic credentials were accepted and a session was minted.
	DecisionNewSession
)

// String returns the label used in logs and metrics.
func (d Decision) String() string {
	switch d {
	case DecisionPass:
		return "pass"
	case DecisionRedirect:
		return "redirect"
	case DecisionNewSession:
		return "new_session"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// GateConfig lists the paths that bypass authentication.
type GateConfig struct {
	LoginPath     string
	StaticPrefix  string
	RawFilePrefix string
	// PublicPaths are matched exactly (health probes, metrics).
	PublicPaths []string
}

// GateResult carries the decision and, when known, who the caller is.
type GateResult struct {
	Decision  Decision
	Username  string
	SessionID string
	// Excluded is true when the path bypassed all checks.
	Excluded bool
}

// RequestGate decides, for every inbound request, whether to pass it through,
// redirect it to the login page, or upgrade Basic credentials into a session.
type RequestGate struct {
	sessions domain.SessionRegistry
	verifier *CredentialVerifier
	cfg      GateConfig
}

// NewRequestGate creates a RequestGate.
func NewRequestGate(sessions domain.SessionRegistry, verifier *CredentialVerifier, cfg GateConfig) *RequestGate {
	return &RequestGate{
		sessions: sessions,
		verifier: verifier,
		cfg:      cfg,
	}
}

// LoginPath returns the redirect target for unauthenticated requests.
func (g *RequestGate) LoginPath() string {
	return g.cfg.LoginPath
}

// Excluded reports whether path bypasses the gate entirely.
// path is the decoded request path. A path with dot segments is never
// excluded: an upstream that resolves them could land outside the prefix.
func (g *RequestGate) Excluded(path string) bool {
	if hasDotSegment(path) {
		return false
	}
	if g.cfg.LoginPath != "" && path == g.cfg.LoginPath {
		return true
	}
	if g.cfg.StaticPrefix != "" && strings.HasPrefix(path, g.cfg.StaticPrefix) {
		return true
	}
	if g.cfg.RawFilePrefix != "" && strings.HasPrefix(path, g.cfg.RawFilePrefix) {
		return true
	}
	for _, p := range g.cfg.PublicPaths {
		if path == p {
			return true
		}
	}
	return false
}

// hasDotSegment reports whether path contains a "." or ".." segment.
// Backslashes count as separators too.
func hasDotSegment(path string) bool {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
	for _, seg := range segments {
		if seg == "." || seg == ".." {
			return true
		}
	}
	return false
}

// Decide runs the gate algorithm:
//  1. excluded path: pass without checks
//  2. live session cookie: pass
//  3. valid Basic header: create a session and pass
//  4. otherwise: redirect to login
//
// The only error is a failure to create a session for accepted credentials.
func (g *RequestGate) Decide(ctx context.Context, path, sessionID, authHeader string) (GateResult, error) {
	ctx, span := middleware.StartSpan(ctx, "gate.decide", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("path", path),
	))
	defer span.End()

	if g.Excluded(path) {
		span.SetAttributes(attribute.String("gate.decision", DecisionPass.String()), attribute.Bool("gate.excluded", true))
		return GateResult{Decision: DecisionPass, Excluded: true}, nil
	}

	if sess, ok := g.sessions.Lookup(sessionID); ok {
		span.SetAttributes(attribute.String("gate.decision", DecisionPass.String()))
		return GateResult{Decision: DecisionPass, Username: sess.Username, SessionID: sess.ID}, nil
	}
	if sessionID != "" {
		span.RecordError(fmt.Errorf("session %s: %w", domain.ShortID(sessionID), ErrSessionNotFound))
	}

	if authHeader != "" {
		if username, ok := g.verifier.VerifyBasicHeader(ctx, authHeader); ok {
			id, err := g.sessions.Create(username)
			if err != nil {
				span.RecordError(err)
				return GateResult{}, fmt.Errorf("create session for %q: %w", username, err)
			}
			span.SetAttributes(attribute.String("gate.decision", DecisionNewSession.String()))
			span.AddEvent("session.created")
			return GateResult{Decision: DecisionNewSession, Username: username, SessionID: id}, nil
		}
	}

	span.SetAttributes(attribute.String("gate.decision", DecisionRedirect.String()))
	return GateResult{Decision: DecisionRedirect}, nil
}
