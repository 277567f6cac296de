package home

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/pipedash/internal/dashboard"
	"github.com/leapstack-labs/pipedash/internal/ui/notifier"
	"github.com/leapstack-labs/pipedash/internal/ui/pages"
)

// Handlers provides HTTP handlers for the dashboard page.
type Handlers struct {
	fetcher  dashboard.Fetcher
	notifier *notifier.Notifier
	logger   *slog.Logger
	title    string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(fetcher dashboard.Fetcher, notify *notifier.Notifier, logger *slog.Logger, title string) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if title == "" {
		title = "Pipeline dashboard"
	}
	return &Handlers{
		fetcher:  fetcher,
		notifier: notify,
		logger:   logger,
		title:    title,
	}
}

// HomePage renders the dashboard shell. Slots are filled by LoadStream.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.DashboardPage(h.title).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// LoadStream is the long-lived SSE endpoint opened by the page. It runs one
// load cycle straight away and a fresh one each time a refresh is broadcast.
func (h *Handlers) LoadStream(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	// Subscribe before the first cycle so a refresh raised meanwhile is not lost.
	updates, cancel := h.notifier.Subscribe()
	defer cancel()

	ctx := r.Context()
	loader := dashboard.NewLoader(h.fetcher, newPatchSink(sse, h.logger), h.logger)
	h.runCycle(ctx, loader, sse)

	for {
		select {
		case <-ctx.Done():
			return
		case reason, ok := <-updates:
			if !ok {
				return
			}
			h.logger.Debug("refreshing dashboard", "reason", string(reason))
			h.runCycle(ctx, loader, sse)
		}
	}
}

// Reload asks every open dashboard to run a new load cycle.
func (h *Handlers) Reload(w http.ResponseWriter, _ *http.Request) {
	h.notifier.Broadcast(notifier.ReasonManual)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) runCycle(ctx context.Context, loader *dashboard.Loader, sse *datastar.ServerSentEventGenerator) {
	if err := loader.Load(ctx); err != nil {
		// The page only shows the fixed error text; details go to the console.
		_ = sse.ConsoleError(err)
	}
}
