// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/presswork/internal/api"
	"github.com/starford/presswork/internal/feed"
	"github.com/starford/presswork/internal/index"
	"github.com/starford/presswork/internal/logger"
	"github.com/starford/presswork/internal/mcpserver"
	"github.com/starford/presswork/internal/postservice"
	"github.com/starford/presswork/internal/site"
	"github.com/starford/presswork/internal/sse"
	"github.com/starford/presswork/internal/storage"
)

// runtime holds the components shared by every command.
type runtime struct {
	cfg     *Config
	logger  logger.Logger
	store   *storage.FS
	db      *index.DB
	builder *site.Builder
}

func (rt *runtime) Close() {
	if rt.db != nil {
		_ = rt.db.Close()
	}
	_ = rt.logger.Sync()
}

func setup(opts []Option) (*runtime, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config
	if app.development {
		cfg.Content.Development = true
	}

	log := app.logger
	if log == nil {
		l, err := logger.New(cfg.App.LogLevel, cfg.App.PrettyLog)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		log = l
	}

	log.Info("Configuration loaded",
		logger.String("content_path", cfg.Content.Path),
		logger.String("feed_dir", cfg.Feed.OutputDir),
		logger.Strings("feed_formats", cfg.Feed.Formats),
		logger.String("sqlite_path", cfg.SQLite.Path),
		logger.Bool("development", cfg.Content.Development),
		logger.Bool("strict", cfg.Content.Strict))

	store, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	gen := feed.New(cfg.FeedConfig(), feed.WithLogger(log))
	builder := site.NewBuilder(store, cfg.SiteOptions(),
		site.WithFeed(gen),
		site.WithIndex(db),
		site.WithLogger(log),
	)

	return &runtime{cfg: cfg, logger: log, store: store, db: db, builder: builder}, nil
}

// Build runs one full build: feeds are written and the search index is synced.
func Build(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	snap, err := rt.builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	for _, path := range snap.Feeds {
		rt.logger.Info("feed written", logger.String("path", path))
	}
	if len(snap.Problems) > 0 {
		rt.logger.Warn("build finished with authoring problems", logger.Int("problems", len(snap.Problems)))
	}
	return nil
}

// Run starts the preview server: an initial build, the HTTP API, live
// events and a content watcher that rebuilds on change.
func Run(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.cfg
	log := rt.logger

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := site.NewService(rt.builder, log)
	svc.OnBuilt(func(snap *site.Snapshot) {
		publishChanges(broker, snap.Changes)
	})
	svc.OnFailed(broker.PublishBuildFailure)

	// A failed first build still serves; readiness stays false until a
	// rebuild succeeds.
	if _, err := svc.Rebuild(ctx); err != nil {
		log.Warn("initial build failed", logger.Error(err))
	}

	posts := postservice.NewService(svc, rt.db)
	apiRouter := api.NewRouter(posts, log, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if !svc.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, "building")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	r.Mount("/api", apiRouter)
	r.Handle("/rss/*", http.StripPrefix("/rss/", http.FileServer(http.Dir(cfg.Feed.OutputDir))))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return site.Watch(gCtx, cfg.Content.Path, cfg.Content.Debounce, log, func() {
			_, _ = svc.Rebuild(gCtx)
		})
	})

	g.Go(func() error {
		log.Info("Starting HTTP server", logger.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		waitForShutdown(gCtx, log)
		stop()

		timeout := cfg.App.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", logger.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Application error", logger.Error(err))
		return err
	}

	log.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the post tools over stdio. Content changes are picked up
// by the watcher while the session is open.
func RunMCP(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	svc := site.NewService(rt.builder, rt.logger)
	if _, err := svc.Rebuild(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		err := site.Watch(ctx, rt.cfg.Content.Path, rt.cfg.Content.Debounce, rt.logger, func() {
			_, _ = svc.Rebuild(ctx)
		})
		if err != nil {
			rt.logger.Warn("content watcher stopped", logger.Error(err))
		}
	}()

	srv := mcpserver.New(postservice.NewService(svc, rt.db), rt.store)
	return srv.ServeStdio()
}

// publishChanges turns index changes into post level live events.
func publishChanges(b *sse.Broker, ch index.Changes) {
	for _, id := range ch.Created {
		b.PublishPostEvent(sse.PostCreated, id)
	}
	for _, id := range ch.Updated {
		b.PublishPostEvent(sse.PostUpdated, id)
	}
	for _, id := range ch.Deleted {
		b.PublishPostEvent(sse.PostDeleted, id)
	}
}

func waitForShutdown(ctx context.Context, log logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Info("Received shutdown signal", logger.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("Context cancelled, initiating shutdown")
	}
	log.Info("Shutting down server...")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}
