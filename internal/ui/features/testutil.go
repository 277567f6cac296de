// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pipedash/internal/api"
	"github.com/leapstack-labs/pipedash/internal/dashboard"
	"github.com/leapstack-labs/pipedash/internal/state"
	"github.com/leapstack-labs/pipedash/internal/testutil"
	"github.com/leapstack-labs/pipedash/internal/ui/notifier"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Store    *state.SQLiteStore
	API      *httptest.Server
	Client   *dashboard.Client
	Notifier *notifier.Notifier
}

// SetupTestFixture starts an API server backed by an in-memory store. When
// runs are given they are recorded in order before the server starts.
func SetupTestFixture(t *testing.T, runs ...*state.Run) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	store := state.NewSQLiteStore(logger)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })

	for _, run := range runs {
		require.NoError(t, store.RecordRun(context.Background(), run))
	}

	r := chi.NewRouter()
	api.SetupRoutes(r, store, logger)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &TestFixture{
		Store:    store,
		API:      srv,
		Client:   dashboard.NewClient(srv.URL, srv.Client()),
		Notifier: notifier.New(),
	}
}

// DemoRun returns the standard sample run at a fixed time.
func DemoRun() *state.Run {
	return state.DemoRun(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), 100)
}

// StaticAPI serves a fixed status and body for every request.
func StaticAPI(t *testing.T, status int, body string) *dashboard.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return dashboard.NewClient(srv.URL, srv.Client())
}

// RequestWithTimeout wraps a request with a context timeout.
func RequestWithTimeout(t *testing.T, r *http.Request, timeout time.Duration) *http.Request {
	t.Helper()
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	t.Cleanup(cancel)
	return r.WithContext(ctx)
}
