package v1

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/webui-auth-gate/internal/core/domain"
	logicv1 "github.com/duynhne/webui-auth-gate/internal/logic/v1"
	"github.com/duynhne/webui-auth-gate/middleware"
	pkgzerolog "github.com/duynhne/webui-auth-gate/pkg/logger/zerolog"
)

// Options configures the session cookie and the auth routes.
type Options struct {
	CookieName   string
	SessionTTL   time.Duration
	SecureCookie bool
	LoginPath    string
	LogoutPath   string
}

// Handler groups the gate middleware and the login/logout handlers.
// Dependencies are injected via the constructor; there is no global state.
type Handler struct {
	gate  *logicv1.RequestGate
	login *logicv1.LoginFlow
	opts  Options
	now   func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(gate *logicv1.RequestGate, login *logicv1.LoginFlow, opts Options) *Handler {
	return &Handler{
		gate:  gate,
		login: login,
		opts:  opts,
		now:   time.Now,
	}
}

// RegisterRoutes registers the login and logout routes.
// The gate itself is installed separately with r.Use(h.Gate()) so that it runs
// ahead of every route, NoRoute included.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET(h.opts.LoginPath, h.LoginPage)
	r.POST(h.opts.LoginPath, h.Login)
	r.POST(h.opts.LogoutPath, h.Logout)
}

// Gate is the authentication middleware. A request carrying valid Basic
// credentials gets a session cookie and continues to the UI.
func (h *Handler) Gate() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := pkgzerolog.FromContext(c.Request.Context())

		sessionID, _ := c.Cookie(h.opts.CookieName)

		result, err := h.gate.Decide(c.Request.Context(), c.Request.URL.Path, sessionID, c.GetHeader("Authorization"))
		if err != nil {
			logger.Error().Err(err).Msg("Gate failed to create session")
			middleware.RecordGateDecision("error")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		switch result.Decision {
		case logicv1.DecisionPass:
			if result.Excluded {
				middleware.RecordGateDecision("excluded")
			} else {
				middleware.RecordGateDecision(result.Decision.String())
				c.Set(middleware.UsernameKey, result.Username)
			}
			c.Next()

		case logicv1.DecisionNewSession:
			middleware.RecordGateDecision(result.Decision.String())
			logger.Info().
				Str("username", result.Username).
				Str("session", domain.ShortID(result.SessionID)).
				Msg("Session created from basic credentials")
			h.setSessionCookie(c, result.SessionID)
			c.Set(middleware.UsernameKey, result.Username)
			c.Next()

		default:
			middleware.RecordGateDecision(result.Decision.String())
			c.Redirect(http.StatusFound, h.gate.LoginPath())
			c.Abort()
		}
	}
}

// loginRequest is bound from a form post or a JSON body.
type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Theme    string `form:"theme" json:"theme"`
}

// LoginPage renders the login form.
func (h *Handler) LoginPage(c *gin.Context) {
	c.Header("Accept-CH", colorSchemeHeader)
	renderLoginForm(c, http.StatusOK, h.opts.LoginPath, "")
}

// Login handles the login form submission.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)

	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		logger.Warn().Err(err).Msg("Invalid login request")
		req = loginRequest{}
	}

	sessionID, err := h.login.Login(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		span.RecordError(err)

		var status int
		switch {
		case errors.Is(err, logicv1.ErrInvalidInput):
			status = http.StatusBadRequest
			middleware.RecordLoginAttempt("invalid_input")
		case errors.Is(err, logicv1.ErrAuthenticationFailed):
			status = http.StatusUnauthorized
			middleware.RecordLoginAttempt("auth_failed")
			logger.Warn().Str("username", req.Username).Msg("Login failed")
		default:
			status = http.StatusInternalServerError
			middleware.RecordLoginAttempt("error")
			logger.Error().Err(err).Msg("Login error")
		}

		message := logicv1.UserMessage(err)
		if wantsJSON(c) {
			c.JSON(status, gin.H{"error": message})
			return
		}
		renderLoginForm(c, status, h.opts.LoginPath, message)
		return
	}

	middleware.RecordLoginAttempt("success")
	logger.Info().Str("username", req.Username).Str("session", domain.ShortID(sessionID)).Msg("Login successful")

	h.setSessionCookie(c, sessionID)
	target := RootTarget(c.Request, req.Theme)
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "redirect": target})
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

// Logout revokes the current session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	logger := pkgzerolog.FromContext(c.Request.Context())

	if sessionID, err := c.Cookie(h.opts.CookieName); err == nil && sessionID != "" {
		if h.login.Logout(c.Request.Context(), sessionID) {
			logger.Info().Str("username", c.GetString(middleware.UsernameKey)).Msg("Logout")
		}
	}

	h.clearSessionCookie(c)
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "redirect": h.opts.LoginPath})
		return
	}
	c.Redirect(http.StatusSeeOther, h.opts.LoginPath)
}

// setSessionCookie writes <app>_session_id with a 24-hour Expires attribute,
// rendered by net/http in RFC 1123 GMT form.
func (h *Handler) setSessionCookie(c *gin.Context, sessionID string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  h.now().Add(h.opts.SessionTTL),
		HttpOnly: true,
		Secure:   h.opts.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func wantsJSON(c *gin.Context) bool {
	return c.ContentType() == gin.MIMEJSON || strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}
