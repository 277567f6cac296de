package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pipedash/internal/dashboard"
	"github.com/leapstack-labs/pipedash/internal/testutil"
)

// cannedFetcher answers from a path-keyed map; missing paths fail.
type cannedFetcher map[string]string

func (f cannedFetcher) FetchJSON(_ context.Context, path string, out any) error {
	body, ok := f[path]
	if !ok {
		return &dashboard.StatusError{Path: path, StatusCode: 500}
	}
	return json.Unmarshal([]byte(body), out)
}

func healthyAPI() cannedFetcher {
	return cannedFetcher{
		dashboard.PathSummary:     `{"pipeline_status":"OK","last_run_utc":"2024-05-01T12:00:00Z","rows_ingested":1200,"model_version":"v0.1.0"}`,
		dashboard.PathMetrics:     `{"metric_name":"rmse","metric_value":0.84}`,
		dashboard.PathPredictions: `{"items":[{"id":1,"feature_x":0,"prediction":10,"actual":10}]}`,
	}
}

func newTestModel(t *testing.T, f dashboard.Fetcher) Model {
	t.Helper()
	m := New(context.Background(), f, testutil.NewTestLogger(t), &bytes.Buffer{}, false)
	m.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// finishLoad runs the pending load synchronously and feeds the result back.
func finishLoad(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.load()()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_InitialState(t *testing.T) {
	m := newTestModel(t, healthyAPI())
	assert.True(t, m.loading)
	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), "loading")
}

func TestModel_LoadSuccess(t *testing.T) {
	m := finishLoad(t, newTestModel(t, healthyAPI()))

	assert.False(t, m.loading)
	assert.False(t, m.failed)
	assert.Equal(t, 1, m.cycles)

	status, _ := m.Page().Text(dashboard.SlotPipelineStatus)
	assert.Equal(t, "OK", status)
	require.Len(t, m.Page().Rows(dashboard.TablePredictions), 1)

	view := m.View()
	assert.Contains(t, view, "v0.1.0")
	assert.Contains(t, view, "loaded at 12:30:00")
}

func TestModel_LoadFailure(t *testing.T) {
	m := finishLoad(t, newTestModel(t, cannedFetcher{}))

	assert.True(t, m.failed)
	view := m.View()
	assert.Contains(t, view, dashboard.ErrorStatusText)
	assert.Contains(t, view, dashboard.ErrorMetricText)
	assert.Contains(t, view, "last load failed")
}

func TestModel_ReloadKeepsPageOnFailure(t *testing.T) {
	api := healthyAPI()
	m := finishLoad(t, newTestModel(t, api))

	delete(api, dashboard.PathPredictions)
	next, cmd := m.Update(keyRunes("r"))
	require.NotNil(t, cmd)
	m = next.(Model)
	assert.True(t, m.loading)

	m = finishLoad(t, m)
	assert.Equal(t, 2, m.cycles)
	assert.True(t, m.failed)

	version, _ := m.Page().Text(dashboard.SlotModelVersion)
	assert.Equal(t, "v0.1.0", version, "earlier writes are not rolled back")
	status, _ := m.Page().Text(dashboard.SlotPipelineStatus)
	assert.Equal(t, dashboard.ErrorStatusText, status)
}

func TestModel_ReloadIgnoredWhileLoading(t *testing.T) {
	m := newTestModel(t, healthyAPI())
	_, cmd := m.Update(keyRunes("r"))
	assert.Nil(t, cmd)
}

func TestModel_Quit(t *testing.T) {
	for _, key := range []tea.KeyMsg{keyRunes("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		t.Run(key.String(), func(t *testing.T) {
			_, cmd := newTestModel(t, healthyAPI()).Update(key)
			require.NotNil(t, cmd)
			assert.Equal(t, tea.Quit(), cmd())
		})
	}
}

func TestModel_SpinnerStopsAfterLoad(t *testing.T) {
	m := finishLoad(t, newTestModel(t, healthyAPI()))
	_, cmd := m.Update(m.spinner.Tick())
	assert.Nil(t, cmd)
}

func TestModel_LoadHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var seen error
	f := fetcherFunc(func(ctx context.Context, _ string, _ any) error {
		seen = ctx.Err()
		return seen
	})
	m := New(ctx, f, testutil.NewTestLogger(t), &bytes.Buffer{}, false)
	msg := m.load()().(loadedMsg)

	assert.True(t, errors.Is(msg.err, context.Canceled))
	assert.ErrorIs(t, seen, context.Canceled)
}

type fetcherFunc func(ctx context.Context, path string, out any) error

func (f fetcherFunc) FetchJSON(ctx context.Context, path string, out any) error {
	return f(ctx, path, out)
}
