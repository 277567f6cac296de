// Package home provides the dashboard page feature for the UI.
package home

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/pipedash/internal/dashboard"
	"github.com/leapstack-labs/pipedash/internal/ui/notifier"
	"github.com/leapstack-labs/pipedash/internal/ui/pages"
)

// SetupRoutes configures routes for the home feature.
func SetupRoutes(
	router chi.Router,
	fetcher dashboard.Fetcher,
	notify *notifier.Notifier,
	logger *slog.Logger,
	title string,
) error {
	handlers := NewHandlers(fetcher, notify, logger, title)

	router.Get("/", handlers.HomePage)
	router.Get(pages.LoadPath, handlers.LoadStream)
	router.Post(pages.ReloadPath, handlers.Reload)

	return nil
}
