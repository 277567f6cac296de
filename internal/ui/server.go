// Package ui serves the pipeline dashboard: the JSON API, the dashboard page
// and the live update stream.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/pipedash/internal/dashboard"
	"github.com/leapstack-labs/pipedash/internal/state"
	"github.com/leapstack-labs/pipedash/internal/ui/notifier"
	"github.com/leapstack-labs/pipedash/internal/ui/resources"
	"github.com/leapstack-labs/pipedash/internal/ui/router"
)

const watchDebounce = 100 * time.Millisecond

// Server is the main UI server.
type Server struct {
	store       state.Store
	host        string
	port        int
	watch       bool
	statePath   string
	apiURL      string
	httpTimeout time.Duration
	title       string
	logger      *slog.Logger
	notifier    *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	// Store serves /api. It may be nil when APIURL points elsewhere.
	Store state.Store
	Host  string
	Port  int
	// Watch enables the state database watcher.
	Watch     bool
	StatePath string
	// APIURL is the base URL the dashboard loads from. Empty means this
	// server's own /api.
	APIURL      string
	HTTPTimeout time.Duration
	Title       string
	Logger      *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		store:       cfg.Store,
		host:        cfg.Host,
		port:        cfg.Port,
		watch:       cfg.Watch,
		statePath:   cfg.StatePath,
		apiURL:      cfg.APIURL,
		httpTimeout: cfg.HTTPTimeout,
		title:       cfg.Title,
		logger:      logger,
		notifier:    notifier.New(),
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))
}

// APIBaseURL returns the URL the dashboard fetches from.
func (s *Server) APIBaseURL() string {
	if s.apiURL != "" {
		return s.apiURL
	}
	return dashboard.LocalBaseURL(s.host, s.port)
}

// Handler builds the router with middleware and all routes.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	client := dashboard.NewClient(s.APIBaseURL(), &http.Client{Timeout: s.httpTimeout})
	err := router.SetupRoutes(r, router.Options{
		Store:    s.store,
		Fetcher:  client,
		Notifier: s.notifier,
		Logger:   s.logger,
		Title:    s.title,
		IsDev:    resources.IsDev,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting dashboard server", "addr", "http://"+s.Addr(), "api", s.APIBaseURL())

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.Addr(),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch && s.statePath != "" && s.statePath != ":memory:" {
		eg.Go(func() error {
			return s.watchStore(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down dashboard server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchStore broadcasts a refresh when another process writes the state
// database. The directory is watched rather than the file so the WAL and
// journal files are seen too.
func (s *Server) watchStore(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(s.statePath)
	if err := watcher.Add(dir); err != nil {
		s.logger.Error("failed to watch state directory", "dir", dir, "error", err)
		// Don't fail - continue without watching
		<-ctx.Done()
		return nil
	}

	base := filepath.Base(s.statePath)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isStoreWrite(event, base) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				s.logger.Debug("state database changed", "file", event.Name)
				s.notifier.Broadcast(notifier.ReasonStoreChanged)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// isStoreWrite matches writes to the database file or its -wal/-journal
// siblings.
func isStoreWrite(event fsnotify.Event, base string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	return name == base || name == base+"-wal" || name == base+"-journal"
}
