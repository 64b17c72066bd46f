package v1

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/webui-auth-gate/internal/core/repository"
)

func newTestGate(registry *repository.MemorySessionRegistry) *RequestGate {
	return NewRequestGate(registry, newTestVerifier(), GateConfig{
		LoginPath:     "/login",
		StaticPrefix:  "/assets/",
		RawFilePrefix: "/file=",
		PublicPaths:   []string{"/health"},
	})
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "pass", DecisionPass.String())
	assert.Equal(t, "redirect", DecisionRedirect.String())
	assert.Equal(t, "new_session", DecisionNewSession.String())
	assert.Equal(t, "decision(9)", Decision(9).String())
}

func TestRequestGate_Excluded(t *testing.T) {
	g := newTestGate(repository.NewMemorySessionRegistry())

	for _, path := range []string{"/login", "/assets/index.js", "/assets/", "/file=/tmp/out.png", "/health"} {
		assert.True(t, g.Excluded(path), path)
	}
	for _, path := range []string{"/", "/login/extra", "/logout", "/assetsx", "/healthz", "/api/predict"} {
		assert.False(t, g.Excluded(path), path)
	}
}

func TestRequestGate_ExcludedRejectsDotSegments(t *testing.T) {
	g := newTestGate(repository.NewMemorySessionRegistry())

	for _, path := range []string{
		"/assets/../x",
		"/assets/../api/predict",
		"/assets/./app.js",
		"/file=/../x",
		"/file=/tmp/../../api/predict",
		"/assets/..\\api",
		"/health/..",
	} {
		assert.False(t, g.Excluded(path), path)

		res, err := g.Decide(context.Background(), path, "", "")
		require.NoError(t, err)
		assert.Equal(t, DecisionRedirect, res.Decision, path)
	}

	assert.True(t, g.Excluded("/assets/app..js"), "dots inside a segment are not dot segments")
	assert.True(t, g.Excluded("/file=/tmp/a...png"))
}

func TestRequestGate_Decide(t *testing.T) {
	ctx := context.Background()

	t.Run("excluded path passes without credentials", func(t *testing.T) {
		registry := repository.NewMemorySessionRegistry()
		g := newTestGate(registry)

		res, err := g.Decide(ctx, "/assets/app.css", "", "")
		require.NoError(t, err)
		assert.Equal(t, DecisionPass, res.Decision)
		assert.True(t, res.Excluded)
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("no credentials redirects and creates nothing", func(t *testing.T) {
		registry := repository.NewMemorySessionRegistry()
		g := newTestGate(registry)

		res, err := g.Decide(ctx, "/", "", "")
		require.NoError(t, err)
		assert.Equal(t, DecisionRedirect, res.Decision)
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("unknown session redirects", func(t *testing.T) {
		registry := repository.NewMemorySessionRegistry()
		g := newTestGate(registry)

		res, err := g.Decide(ctx, "/", "forged-id", "")
		require.NoError(t, err)
		assert.Equal(t, DecisionRedirect, res.Decision)
	})

	t.Run("live session passes", func(t *testing.T) {
		registry := repository.NewMemorySessionRegistry()
		g := newTestGate(registry)
		id, err := registry.Create("alice")
		require.NoError(t, err)

		res, err := g.Decide(ctx, "/", id, "")
		require.NoError(t, err)
		assert.Equal(t, DecisionPass, res.Decision)
		assert.False(t, res.Excluded)
		assert.Equal(t, "alice", res.Username)
		assert.Equal(t, id, res.SessionID)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("valid basic header creates a session", func(t *testing.T) {
		registry := repository.NewMemorySessionRegistry()
		g := newTestGate(registry)

		res, err := g.Decide(ctx, "/", "", basic("alice:secret"))
		require.NoError(t, err)
		assert.Equal(t, DecisionNewSession, res.Decision)
		assert.Equal(t, "alice", res.Username)
		assert.True(t, registry.Validate(res.SessionID))
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("session cookie wins over basic header", func(t *testing.T) {
		registry := repository.NewMemorySessionRegistry()
		g := newTestGate(registry)
		id, err := registry.Create("alice")
		require.NoError(t, err)

		res, err := g.Decide(ctx, "/", id, basic("alice:secret"))
		require.NoError(t, err)
		assert.Equal(t, DecisionPass, res.Decision)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("bad basic header redirects", func(t *testing.T) {
		registry := repository.NewMemorySessionRegistry()
		g := newTestGate(registry)

		for _, header := range []string{basic("alice:wrong"), basic("mallory:secret"), "Basic %%%", "Bearer token"} {
			res, err := g.Decide(ctx, "/", "", header)
			require.NoError(t, err)
			assert.Equal(t, DecisionRedirect, res.Decision, header)
		}
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("session creation failure is an error", func(t *testing.T) {
		boom := errors.New("entropy exhausted")
		registry := repository.NewMemorySessionRegistry(repository.WithIDGenerator(func() (string, error) { return "", boom }))
		g := newTestGate(registry)

		_, err := g.Decide(ctx, "/", "", basic("alice:secret"))
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})
}
