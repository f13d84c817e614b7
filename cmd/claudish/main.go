// Command claudish runs the HTTP gateway that translates Anthropic
// /v1/messages requests into OpenAI chat-completions calls and translates
// the streamed response back.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elifarley/claudish/internal/config"
	"github.com/elifarley/claudish/internal/httpapi"
	"github.com/elifarley/claudish/internal/logging"
)

const shutdownGrace = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, slog.LevelInfo).Error("startup failed", "error", err)
		return 1
	}

	logger := logging.New(os.Stderr, cfg.Level())

	resolver := singleTargetResolver(cfg)
	dispatcher := httpapi.New(resolver, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.ListenPort,
		Handler: dispatcher.Routes(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "port", cfg.ListenPort)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("startup failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			return 1
		}
	}

	return 0
}

// singleTargetResolver routes every model id to the single upstream
// endpoint configured via UPSTREAM_BASE_URL/UPSTREAM_API_PATH. A resolver
// backed by a real multi-provider model registry is an external
// collaborator this binary does not implement.
func singleTargetResolver(cfg *config.Config) httpapi.Resolver {
	return func(modelID string) (*httpapi.Resolution, bool) {
		if modelID == "" {
			return nil, false
		}
		return &httpapi.Resolution{
			HandlerKind: httpapi.HandlerOpenAICompat,
			BaseURL:     cfg.UpstreamBaseURL,
			APIPath:     cfg.UpstreamAPIPath,
			BearerToken: cfg.UpstreamAPIKey,
			Capabilities: httpapi.Capabilities{
				SupportsTools:     true,
				SupportsStreaming: true,
				SupportsImages:    true,
			},
		}, true
	}
}
