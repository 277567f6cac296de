// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/pipedash/internal/api"
	"github.com/leapstack-labs/pipedash/internal/dashboard"
	"github.com/leapstack-labs/pipedash/internal/state"
	homeFeature "github.com/leapstack-labs/pipedash/internal/ui/features/home"
	"github.com/leapstack-labs/pipedash/internal/ui/notifier"
	"github.com/leapstack-labs/pipedash/internal/ui/resources"
)

// Options carries what the routes need.
type Options struct {
	// Store backs the /api endpoints. Nil leaves /api unmounted, which is
	// the case when the dashboard reads from a remote API.
	Store    state.Store
	Fetcher  dashboard.Fetcher
	Notifier *notifier.Notifier
	Logger   *slog.Logger
	Title    string
	IsDev    bool
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, opts Options) error {
	// Hot reload endpoint for dev mode
	if opts.IsDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	if opts.Store != nil {
		api.SetupRoutes(router, opts.Store, opts.Logger)
	}

	return homeFeature.SetupRoutes(router, opts.Fetcher, opts.Notifier, opts.Logger, opts.Title)
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
