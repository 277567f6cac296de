package dashboard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pipedash/internal/testutil"
)

func newTestLoader(t *testing.T, api *fakeAPI, sink Sink) *Loader {
	t.Helper()
	return NewLoader(api.client(), sink, testutil.NewTestLogger(t))
}

func TestLoad_AllResourcesSucceed(t *testing.T) {
	api := newFakeAPI(t)
	page := NewDashboardPage()

	err := newTestLoader(t, api, page).Load(context.Background())
	require.NoError(t, err)

	want := map[string]string{
		SlotPipelineStatus: "OK",
		SlotLastRunUTC:     "2024-05-01T12:00:00+00:00",
		SlotRowsIngested:   "1200",
		SlotModelVersion:   "v0.1.0",
		SlotMetricName:     "rmse",
		SlotMetricValue:    "0.84",
	}
	for slot, v := range want {
		got, ok := page.Text(slot)
		require.True(t, ok, slot)
		assert.Equal(t, v, got, slot)
	}

	assert.Equal(t, [][]string{
		{"1", "0.0", "10.0", "10.0"},
		{"2", "0.5", "10.3", "10.28"},
	}, page.Rows(TablePredictions))

	assert.Equal(t, []string{
		"/api/summary",
		"/api/metrics",
		"/api/predictions?limit=10",
	}, api.seen(), "requests must be issued in order")
}

func TestLoad_SummaryServerError(t *testing.T) {
	api := newFakeAPI(t)
	api.set("/api/summary", http.StatusInternalServerError, `{"error":"boom"}`)
	page := NewDashboardPage()

	err := newTestLoader(t, api, page).Load(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, PathSummary, statusErr.Path)
	assert.Contains(t, err.Error(), "/api/summary")
	assert.Contains(t, err.Error(), "500")

	status, _ := page.Text(SlotPipelineStatus)
	metric, _ := page.Text(SlotMetricValue)
	assert.Equal(t, ErrorStatusText, status)
	assert.Equal(t, ErrorMetricText, metric)
	assert.Empty(t, page.Rows(TablePredictions))
	assert.Equal(t, []string{"/api/summary"}, api.seen(), "cycle must abort after the first failure")
}

func TestLoad_PredictionsInvalidJSONKeepsEarlierSlots(t *testing.T) {
	api := newFakeAPI(t)
	api.set("/api/predictions", http.StatusOK, `{"items": [`)
	page := NewDashboardPage()

	err := newTestLoader(t, api, page).Load(context.Background())
	require.Error(t, err)

	var payloadErr *PayloadError
	require.True(t, errors.As(err, &payloadErr))

	for slot, v := range map[string]string{
		SlotPipelineStatus: ErrorStatusText,
		SlotLastRunUTC:     "2024-05-01T12:00:00+00:00",
		SlotRowsIngested:   "1200",
		SlotModelVersion:   "v0.1.0",
		SlotMetricName:     "rmse",
		SlotMetricValue:    ErrorMetricText,
	} {
		got, _ := page.Text(slot)
		assert.Equal(t, v, got, slot)
	}
	assert.Empty(t, page.Rows(TablePredictions))
}

func TestLoad_ReinvokeReplacesRows(t *testing.T) {
	api := newFakeAPI(t)
	page := NewDashboardPage()
	loader := newTestLoader(t, api, page)

	require.NoError(t, loader.Load(context.Background()))
	require.Len(t, page.Rows(TablePredictions), 2)

	api.set("/api/predictions", http.StatusOK, `{"items":[{"id":"a","feature_x":"x","prediction":1,"actual":2}]}`)
	require.NoError(t, loader.Load(context.Background()))

	assert.Equal(t, [][]string{{"a", "x", "1", "2"}}, page.Rows(TablePredictions))
}

func TestLoad_EmptyItems(t *testing.T) {
	api := newFakeAPI(t)
	api.set("/api/predictions", http.StatusOK, `{"items":[]}`)
	page := NewDashboardPage()
	require.NoError(t, page.ReplaceRows(TablePredictions, [][]string{{"stale", "", "", ""}}))

	err := newTestLoader(t, api, page).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, page.Rows(TablePredictions))

	status, _ := page.Text(SlotPipelineStatus)
	assert.Equal(t, "OK", status)
}

func TestLoad_MissingTextSlotIsIgnored(t *testing.T) {
	api := newFakeAPI(t)
	// No last_run_utc or metric_name slots on this page.
	page := NewPage(
		[]string{SlotPipelineStatus, SlotRowsIngested, SlotModelVersion, SlotMetricValue},
		[]string{TablePredictions},
	)

	err := newTestLoader(t, api, page).Load(context.Background())
	require.NoError(t, err)

	_, ok := page.Text(SlotLastRunUTC)
	assert.False(t, ok)
	v, _ := page.Text(SlotModelVersion)
	assert.Equal(t, "v0.1.0", v)
	v, _ = page.Text(SlotMetricValue)
	assert.Equal(t, "0.84", v)
	assert.Len(t, page.Rows(TablePredictions), 2)
}

func TestLoad_MissingTableBodyFails(t *testing.T) {
	api := newFakeAPI(t)
	page := NewPage(Slots, nil)

	err := newTestLoader(t, api, page).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSlotNotFound)

	status, _ := page.Text(SlotPipelineStatus)
	assert.Equal(t, ErrorStatusText, status)
	name, _ := page.Text(SlotMetricName)
	assert.Equal(t, "rmse", name)
}

func TestLoad_TransportError(t *testing.T) {
	api := newFakeAPI(t)
	client := api.client()
	api.srv.Close()

	page := NewDashboardPage()
	err := NewLoader(client, page, testutil.NewTestLogger(t)).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/api/summary")

	status, _ := page.Text(SlotPipelineStatus)
	assert.Equal(t, ErrorStatusText, status)
}

func TestLoad_SchemaViolation(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"items missing", "/api/predictions", `{"rows":[]}`},
		{"items not an array", "/api/predictions", `{"items":{}}`},
		{"status is an object", "/api/summary", `{"pipeline_status":{"nested":true}}`},
		{"metric value is boolean", "/api/metrics", `{"metric_name":"rmse","metric_value":true}`},
		{"prediction id is an array", "/api/predictions", `{"items":[{"id":[1],"feature_x":0}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t)
			api.set(tt.path, http.StatusOK, tt.body)
			page := NewDashboardPage()

			err := newTestLoader(t, api, page).Load(context.Background())
			var payloadErr *PayloadError
			require.ErrorAs(t, err, &payloadErr)
			assert.NotEmpty(t, payloadErr.Problems)

			status, _ := page.Text(SlotPipelineStatus)
			assert.Equal(t, ErrorStatusText, status)
		})
	}
}

func TestLoad_NonNumericStringsPassThrough(t *testing.T) {
	api := newFakeAPI(t)
	api.set("/api/summary", http.StatusOK, `{"pipeline_status":"OK","last_run_utc":null,"rows_ingested":"about 1.2k","model_version":"v2"}`)
	page := NewDashboardPage()

	require.NoError(t, newTestLoader(t, api, page).Load(context.Background()))

	v, _ := page.Text(SlotRowsIngested)
	assert.Equal(t, "about 1.2k", v)
	v, _ = page.Text(SlotLastRunUTC)
	assert.Equal(t, "", v)
}

func TestLoad_NullCellsRenderEmpty(t *testing.T) {
	api := newFakeAPI(t)
	api.set("/api/predictions", http.StatusOK,
		`{"items":[{"id":null,"feature_x":0.5,"prediction":10.3,"actual":null},{"id":7,"feature_x":null,"prediction":null}]}`)
	page := NewDashboardPage()

	require.NoError(t, newTestLoader(t, api, page).Load(context.Background()))
	assert.Equal(t, [][]string{
		{"", "0.5", "10.3", ""},
		{"7", "", "", ""},
	}, page.Rows(TablePredictions))
}
