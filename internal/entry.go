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
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/kramify/internal/api"
	"github.com/starford/kramify/internal/convert"
	"github.com/starford/kramify/internal/inspect"
	"github.com/starford/kramify/internal/ledger"
	"github.com/starford/kramify/internal/mcpserver"
	"github.com/starford/kramify/internal/metrics"
	"github.com/starford/kramify/internal/pipeline"
	"github.com/starford/kramify/internal/site"
	"github.com/starford/kramify/internal/sse"
	"github.com/starford/kramify/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger installs a JSON logger writing to w as the default logger.
func newLogger(level slog.Level, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// runtime is the wiring shared by every command.
type runtime struct {
	site   site.Site
	store  *storage.FS
	engine *convert.Engine
	ledger *ledger.DB
	svc    *pipeline.Service
}

func (rt *runtime) Close() {
	if rt.ledger != nil {
		rt.ledger.Close()
	}
}

func bootstrap(cfg *Config, logger *slog.Logger, extra ...pipeline.Option) (*runtime, error) {
	s, err := site.Detect(cfg.Site.Options())
	if err != nil {
		return nil, fmt.Errorf("detect site: %w", err)
	}

	store, err := storage.NewFS(s.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	engine, err := convert.NewEngine(cfg.Convert.EngineOptions()...)
	if err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}

	rt := &runtime{site: s, store: store, engine: engine}
	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if cfg.State.Path != "" {
		db, err := ledger.Open(cfg.State.Path)
		if err != nil {
			return nil, fmt.Errorf("init ledger: %w", err)
		}
		rt.ledger = db
		opts = append(opts, pipeline.WithLedger(db))
	}
	opts = append(opts, extra...)

	rt.svc = pipeline.NewService(engine, store, cfg.PipelineConfig(s.Generator), opts...)

	logger.Info("Site detected",
		slog.String("root", store.Root()),
		slog.String("generator", s.Generator.String()),
		slog.String("state_path", cfg.State.Path))
	return rt, nil
}

// Convert runs a single conversion pass over the site. It is the pre-build
// hook entry point.
func Convert(ctx context.Context, opts ...Option) (pipeline.Summary, error) {
	app, err := newApplication(opts)
	if err != nil {
		return pipeline.Summary{}, err
	}
	logger := newLogger(app.config.App.LogLevel, os.Stderr)

	rt, err := bootstrap(app.config, logger)
	if err != nil {
		return pipeline.Summary{}, err
	}
	defer rt.Close()

	return rt.svc.Run(ctx)
}

// Frontmatter normalizes document headers without converting bodies.
func Frontmatter(ctx context.Context, opts ...Option) (pipeline.Summary, error) {
	app, err := newApplication(opts)
	if err != nil {
		return pipeline.Summary{}, err
	}
	logger := newLogger(app.config.App.LogLevel, os.Stderr)

	cfg := *app.config
	cfg.State.Path = ""
	rt, err := bootstrap(&cfg, logger)
	if err != nil {
		return pipeline.Summary{}, err
	}
	defer rt.Close()

	pcfg := cfg.PipelineConfig(rt.site.Generator)
	pcfg.Frontmatter = true
	pcfg.FrontmatterOnly = true
	return pipeline.NewService(rt.engine, rt.store, pcfg, pipeline.WithLogger(logger)).Run(ctx)
}

// Inspect writes a JSON link report for every document to the output.
func Inspect(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.config.App.LogLevel, os.Stderr)

	cfg := *app.config
	cfg.State.Path = ""
	rt, err := bootstrap(&cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	reports, err := inspect.Site(rt.store, rt.site.Generator)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// ServeMCP serves the MCP tools over stdio. Logs go to stderr because
// stdout carries the protocol.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.config.App.LogLevel, os.Stderr)

	rt, err := bootstrap(app.config, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.svc, app.version).ServeStdio()
}

// Run starts the long-running service: an initial pass, the file watcher,
// and the HTTP server carrying the API, the SSE stream and /metrics.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(cfg.App.LogLevel, os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("generator", cfg.Site.Generator),
		slog.String("state_path", cfg.State.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	recorder := metrics.NewPrometheusRecorder()

	rt, err := bootstrap(cfg, logger,
		pipeline.WithNotifier(broker.PublishDocumentEvent),
		pipeline.WithMetrics(recorder))
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.svc.Run(ctx); err != nil {
		logger.Warn("initial run failed", slog.String("error", err.Error()))
	}

	publishRun := func(s pipeline.Summary) {
		broker.Publish(sse.Event{Type: sse.TypeRunCompleted, Data: s})
	}
	apiRouter := api.NewRouter(rt.svc, rt.store, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, publishRun)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", recorder.Handler())
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return pipeline.Watch(gCtx, rt.svc)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once the server has been shut down, which
// stops the watcher.
var errShutdown = errors.New("shutdown")
