package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newslens/internal/analyze"
	"github.com/hyperifyio/newslens/internal/bias"
	"github.com/hyperifyio/newslens/internal/budget"
	"github.com/hyperifyio/newslens/internal/extract"
	"github.com/hyperifyio/newslens/internal/fetch"
	"github.com/hyperifyio/newslens/internal/llm"
	"github.com/hyperifyio/newslens/internal/server"
	"github.com/hyperifyio/newslens/internal/summarize"
)

// App owns the wired request pipeline for one configuration.
type App struct {
	cfg     Config
	service *analyze.Service
}

// Prompt sizing: tokens kept free for the model's answer and for the
// instruction text wrapped around the article.
const (
	outputReserveTokens      = 2048
	instructionReserveTokens = 1024
)

// shutdownGrace bounds how long in-flight requests may finish after Serve's
// context is canceled.
const shutdownGrace = 10 * time.Second

// New wires fetch, extraction, the model client and the orchestrator from cfg.
// A missing model credential is logged and leaves the service running with
// analysis requests answered by a configuration error.
func New(ctx context.Context, cfg Config) (*App, error) {
	ex, err := extract.New(cfg.ExtractStrategy)
	if err != nil {
		return nil, err
	}
	fetcher := &fetch.Client{
		HTTPClient:        newHTTPClient(cfg.FetchTimeout + 5*time.Second),
		UserAgent:         cfg.FetchUserAgent,
		PerRequestTimeout: cfg.FetchTimeout,
		MaxBytes:          cfg.FetchMaxBytes,
	}

	var gen llm.Generator
	configured := modelConfigured(cfg)
	if configured {
		gen, err = llm.New(ctx, llm.Options{
			Provider:   cfg.LLMProvider,
			Model:      cfg.LLMModel,
			APIKey:     cfg.LLMAPIKey,
			BaseURL:    cfg.LLMBaseURL,
			HTTPClient: newHTTPClient(cfg.LLMTimeout + 5*time.Second),
		})
		if err != nil {
			return nil, fmt.Errorf("init llm: %w", err)
		}
		log.Info().Str("provider", cfg.LLMProvider).Str("model", cfg.LLMModel).Msg("model client ready")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not found in environment variables; analysis requests will fail until it is set")
	}

	svc := &analyze.Service{
		Extractor:         &extract.URLExtractor{Client: fetcher, Extractor: ex},
		Summarizer:        &summarize.Summarizer{Generator: gen, Timeout: cfg.LLMTimeout},
		Analyzer:          &bias.Analyzer{Generator: gen, Timeout: cfg.LLMTimeout},
		ModelConfigured:   configured,
		ContentTokenLimit: budget.ContentLimit(cfg.LLMModel, outputReserveTokens, instructionReserveTokens),
	}
	return &App{cfg: cfg, service: svc}, nil
}

// modelConfigured reports whether cfg carries enough to reach a model. An
// OpenAI-compatible endpoint with an explicit base URL may run without a key.
func modelConfigured(cfg Config) bool {
	if cfg.LLMAPIKey != "" {
		return true
	}
	return cfg.LLMProvider == llm.ProviderOpenAI && cfg.LLMBaseURL != ""
}

// Config returns the configuration the app was built with.
func (a *App) Config() Config { return a.cfg }

// Service returns the request orchestrator.
func (a *App) Service() *analyze.Service { return a.service }

// Handler returns the HTTP API handler.
func (a *App) Handler() http.Handler {
	s := &server.Server{Service: a.service, CORSOrigin: a.cfg.CORSOrigin, MaxBodyBytes: server.DefaultMaxBodyBytes}
	return s.Handler()
}

// Serve listens on cfg.Addr until ctx is canceled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Addr, err)
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (a *App) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("NewsLens server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
