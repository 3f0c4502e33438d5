package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/scrumsmith/scrumsmith/internal/config"
	"github.com/scrumsmith/scrumsmith/internal/gateway"
	"github.com/scrumsmith/scrumsmith/internal/generate"
	"github.com/scrumsmith/scrumsmith/internal/httpapi"
	"github.com/scrumsmith/scrumsmith/internal/logging"
	"github.com/scrumsmith/scrumsmith/internal/prompt"
	"github.com/scrumsmith/scrumsmith/internal/ratelimit"
	"github.com/scrumsmith/scrumsmith/internal/stats"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "Start the HTTP API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var gw gateway.Gateway
	if cfg.CredentialConfigured() {
		gw, err = gateway.New(ctx, gateway.Config{
			Provider: cfg.Provider,
			APIKey:   cfg.APIKey(),
			BaseURL:  cfg.BaseURL,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return err
		}
	} else {
		if cfg.IsProduction() {
			return fmt.Errorf("%s must be set in production", cfg.CredentialName())
		}
		log.Warn().Str("credential", cfg.CredentialName()).Msg("credential not set, generation disabled")
		gw = gateway.NewUnconfigured(cfg.Provider)
	}

	limiter := ratelimit.NewLimiter(cfg.RateQuota, cfg.RateWindow)
	defer limiter.Stop()

	collector := &stats.Collector{}
	service := generate.NewService(limiter, prompt.NewBuilder(cfg.Models), gw, collector)

	if !logging.DebugEnabled() {
		gin.SetMode(gin.ReleaseMode)
	}
	api := httpapi.New(cfg, service, collector)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// A generation attempt may run two provider calls back to back, so
		// the write timeout has to outlive both.
		WriteTimeout: 2*cfg.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Str("provider", gw.Name()).
			Strs("models", cfg.Models).
			Int("rate_quota", cfg.RateQuota).
			Dur("rate_window", cfg.RateWindow).
			Msg("http server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("shutdown complete")
	return nil
}
