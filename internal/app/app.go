// Package app wires together all dependencies and runs the wallet client.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/auth"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/config"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/gateway"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/kyc"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/session"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/storage"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/transfer"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/health"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/httpclient"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/middleware"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/tracing"
)

// App holds the wired services of the wallet client.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	Store   *storage.Store
	Gateway *gateway.Client
	Session *session.Session
	Auth    *auth.Service
	KYC     *kyc.Service
	Flow    *transfer.Flow

	diagServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates the application with all dependencies wired.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		AppName:      "vaultstring-wallet",
		AppVersion:   "0.1.0",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	store, err := storage.New(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("open state directory: %w", err)
	}

	gwCfg := gateway.Config{
		BaseURL:       cfg.GatewayURL,
		QuoteTimeout:  cfg.QuoteTimeoutDuration(),
		SubmitTimeout: cfg.SubmitTimeoutDuration(),
		HTTP: httpclient.Config{
			Timeout:         cfg.HTTPTimeoutDuration(),
			MaxRetries:      0,
			MaxConnsPerHost: 10,
		},
		Breaker: httpclient.CircuitBreakerConfig{
			Name:         "vaultstring-gateway",
			MaxRequests:  cfg.CBMaxRequests,
			Interval:     time.Duration(cfg.CBInterval) * time.Second,
			Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
			FailureRatio: cfg.CBFailureRatio,
			MinRequests:  cfg.CBMinRequests,
		},
	}

	client := gateway.New(gwCfg, store, logger)
	sess := session.New(client, store, logger)
	client.OnUnauthorized(sess.Drop)

	a := &App{
		cfg:            cfg,
		logger:         logger,
		Store:          store,
		Gateway:        client,
		Session:        sess,
		Auth:           auth.NewService(client, sess, logger),
		KYC:            kyc.NewService(client, logger),
		Flow:           transfer.NewFlow(client, logger),
		tracerShutdown: tracerShutdown,
	}

	if cfg.DiagnosticsAddr != "" {
		a.diagServer = &http.Server{
			Addr:              cfg.DiagnosticsAddr,
			Handler:           a.diagnosticsRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return a, nil
}

// diagnosticsRouter serves health and metrics for the client process.
func (a *App) diagnosticsRouter() http.Handler {
	checks := health.NewHandler()
	checks.Register("state_dir", func(context.Context) error {
		_, err := a.Store.DeviceID()
		return err
	})

	r := chi.NewRouter()
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestLogging(a.logger))
	r.Get("/healthz", checks.Live)
	r.Get("/readyz", checks.Ready)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Run restores the session and blocks until the context is canceled, then
// shuts down. The session restore tolerates a dead gateway; an unusable state
// directory is fatal.
func (a *App) Run(ctx context.Context) error {
	if a.diagServer != nil {
		go func() {
			a.logger.Info("diagnostics listening", slog.String("addr", a.diagServer.Addr))
			if err := a.diagServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("diagnostics server failed", slog.String("error", err.Error()))
			}
		}()
	}

	if err := a.Session.Load(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if a.Session.Authenticated() {
		a.logger.Info("session restored", slog.String("user_id", a.Session.Current().ID))
	} else {
		a.logger.Info("no active session")
	}

	<-ctx.Done()
	return a.Shutdown()
}

// Shutdown stops the diagnostics server and flushes pending spans.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.diagServer != nil {
		if err := a.diagServer.Shutdown(ctx); err != nil {
			a.logger.Error("diagnostics shutdown failed", slog.String("error", err.Error()))
		}
	}

	if err := a.tracerShutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer: %w", err)
	}

	a.logger.Info("wallet client stopped")
	return nil
}
