package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/duynhne/webui-auth-gate/config"
	database "github.com/duynhne/webui-auth-gate/internal/core"
	"github.com/duynhne/webui-auth-gate/internal/core/repository"
	logicv1 "github.com/duynhne/webui-auth-gate/internal/logic/v1"
	v1 "github.com/duynhne/webui-auth-gate/internal/web/v1"
	"github.com/duynhne/webui-auth-gate/middleware"
	"github.com/duynhne/webui-auth-gate/pkg/logger/zerolog"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	zerolog.Setup(cfg.Logging.Level)

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("env", cfg.Service.Env).
		Str("port", cfg.Service.Port).
		Msg("Service starting")

	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		provider, err := middleware.InitTracing(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		} else {
			tp = provider
			log.Info().
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sample_rate", cfg.Tracing.SampleRate).
				Msg("Tracing initialized")
		}
	} else {
		log.Info().Msg("Tracing disabled (TRACING_ENABLED=false)")
	}

	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize profiling")
		} else {
			log.Info().
				Str("endpoint", cfg.Profiling.Endpoint).
				Msg("Profiling initialized")
			defer middleware.StopProfiling()
		}
	} else {
		log.Info().Msg("Profiling disabled (PROFILING_ENABLED=false)")
	}

	credentials, err := loadCredentials(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load credentials")
	}
	log.Info().
		Str("source", cfg.Auth.CredentialsSource).
		Int("users", credentials.Len()).
		Msg("Credential table loaded")

	digest, err := logicv1.DigestByName(cfg.Auth.Digest)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid digest")
	}

	sessions := repository.NewMemorySessionRegistry(repository.WithTTL(cfg.Auth.SessionTTL))
	middleware.RegisterSessionGauge(sessions.Len)

	verifier := logicv1.NewCredentialVerifier(credentials, digest)
	gate := logicv1.NewRequestGate(sessions, verifier, logicv1.GateConfig{
		LoginPath:     cfg.Auth.LoginPath,
		StaticPrefix:  cfg.Auth.StaticPrefix,
		RawFilePrefix: cfg.Auth.RawFilePrefix,
		PublicPaths:   cfg.Auth.PublicPaths,
	})
	loginFlow := logicv1.NewLoginFlow(verifier, sessions)
	handler := v1.NewHandler(gate, loginFlow, v1.Options{
		CookieName:   cfg.SessionCookieName(),
		SessionTTL:   sessions.TTL(),
		SecureCookie: cfg.Auth.CookieSecure,
		LoginPath:    cfg.Auth.LoginPath,
		LogoutPath:   cfg.Auth.LogoutPath,
	})

	ui, err := v1.UIHandler(cfg.UI.UpstreamURL, cfg.UI.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure UI")
	}

	r := gin.New()
	r.Use(gin.Recovery())

	var isShuttingDown atomic.Bool

	if tp != nil {
		r.Use(middleware.TracingMiddleware(cfg.Service.Name))
	}

	// The gate runs ahead of every route, NoRoute included.
	r.Use(
		middleware.LoggingMiddleware(),
		middleware.PrometheusMiddleware(),
		handler.Gate(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(r)

	// Everything else is the gated UI
	r.NoRoute(ui)

	// Background expiry sweep
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	var sweepWG sync.WaitGroup
	sweepWG.Add(1)
	go func() {
		defer sweepWG.Done()
		sessions.RunSweeper(sweepCtx, cfg.Auth.SweepInterval)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Service.Port).Msg("Starting auth gate")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	// /ready reports 503 from here on so the load balancer stops routing to us.
	isShuttingDown.Store(true)
	if delay := cfg.GetReadinessDrainDelayDuration(); delay > 0 {
		log.Info().Dur("delay", delay).Msg("Draining before shutdown")
		time.Sleep(delay)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeoutDuration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// In-flight requests are done; nothing touches the registry any more.
	stopSweep()
	sweepWG.Wait()
	log.Info().Int("sessions_dropped", sessions.Len()).Msg("Sessions discarded")

	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Tracer shutdown error")
		}
	}

	log.Info().Msg("Auth gate stopped")
}

// loadCredentials reads the credential table from the configured source.
// The database pool is only needed for the initial read and is closed afterwards.
func loadCredentials(ctx context.Context, cfg *config.Config) (*repository.MapCredentialStore, error) {
	switch cfg.Auth.CredentialsSource {
	case "postgres":
		pool, err := database.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		return repository.NewCredentialRepository(pool).Load(ctx)
	default:
		return repository.LoadCredentialFile(cfg.Auth.CredentialsFile)
	}
}
