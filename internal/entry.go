// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/starford/folio/internal/docservice"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/markdown"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/web"
)

// runtime holds the components shared by every entry point.
type runtime struct {
	cfg     *Config
	logger  *slog.Logger
	store   *storage.FS
	filter  *index.Filter
	svc     *docservice.Service
	version string
}

func setup(opts ...Option) (*runtime, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_root", cfg.Content.Root),
		slog.String("assets_dir", cfg.Content.AssetsDir),
		slog.Bool("live_reload", cfg.Live.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Content.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	// A missing root is not fatal: the listing renders empty until it appears.
	if info, statErr := os.Stat(store.Root()); statErr != nil || !info.IsDir() {
		logger.Warn("content root is not a readable directory", slog.String("root", store.Root()))
	}

	filter, err := index.NewFilter(cfg.Content.AssetsDir, cfg.Content.Exclude)
	if err != nil {
		return nil, fmt.Errorf("init filter: %w", err)
	}

	md, err := markdown.New(cfg.Markdown.Options())
	if err != nil {
		return nil, fmt.Errorf("init markdown: %w", err)
	}

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		filter:  filter,
		svc:     docservice.NewService(store, filter, md, logger),
		version: app.version,
	}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts...)
	if err != nil {
		return err
	}
	cfg, logger := rt.cfg, rt.logger

	// SSE broker for live reload.
	var broker *sse.Broker
	var events http.Handler
	if cfg.Live.Enabled {
		broker = sse.NewBroker(cfg.Live.Throttle, cfg.Live.Heartbeat)
		defer broker.Close()
		events = broker
	}

	pages, err := web.NewRouter(rt.svc, web.Site{
		Title:       cfg.Site.Title,
		Description: cfg.Site.Description,
		Heading:     cfg.Site.Heading,
		Footer:      cfg.Site.Footer,
		FooterURL:   cfg.Site.FooterURL,
	}, events)
	if err != nil {
		return fmt.Errorf("init web: %w", err)
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := rt.store.ReadDir(""); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"content root unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/", pages)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: cfg.App.HTTP.ReadHeaderTimeout,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher feeding the SSE broker.
	if broker != nil {
		g.Go(func() error {
			err := index.Watch(gCtx, rt.store, rt.filter, cfg.Live.Debounce, logger, broker.PublishChange)
			if err != nil {
				logger.Warn("live reload disabled: watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Open event streams would otherwise hold Shutdown until the timeout.
		if broker != nil {
			logger.Info("Closing live reload streams", slog.Int("clients", broker.ClientCount()))
			broker.Publish(sse.Event{Type: sse.TypeServerStopping, Data: map[string]string{}})
			broker.Close()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.HTTP.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		stop()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// ServeMCP runs the MCP server on stdin/stdout until the client disconnects.
func ServeMCP(_ context.Context, opts ...Option) error {
	rt, err := setup(append([]Option{WithLogOutput(os.Stderr)}, opts...)...)
	if err != nil {
		return err
	}
	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.svc, rt.version).ServeStdio()
}

// Index output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// PrintIndex builds the navigation index once and writes it to w.
func PrintIndex(ctx context.Context, w io.Writer, format string, opts ...Option) error {
	rt, err := setup(append([]Option{WithLogOutput(io.Discard)}, opts...)...)
	if err != nil {
		return err
	}
	ix := rt.svc.Index(ctx)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ix)
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ix); err != nil {
			return fmt.Errorf("encode index: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
