package dashboard

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const (
	summaryBody = `{"pipeline_status":"OK","last_run_utc":"2024-05-01T12:00:00+00:00","rows_ingested":1200,"rows_validated":1189,"rows_failed":11,"model_version":"v0.1.0"}`
	metricsBody = `{"metric_name":"rmse","metric_value":0.84,"evaluated_at_utc":"2024-05-01T12:00:00+00:00"}`
	predsBody   = `{"items":[{"id":1,"feature_x":0.0,"prediction":10.0,"actual":10.0},{"id":2,"feature_x":0.5,"prediction":10.3,"actual":10.28}]}`
)

type fakeResponse struct {
	status int
	body   string
}

// fakeAPI serves canned responses keyed by URL path and records request order.
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	requests  []string
	srv       *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{
		responses: map[string]fakeResponse{
			"/api/summary":     {http.StatusOK, summaryBody},
			"/api/metrics":     {http.StatusOK, metricsBody},
			"/api/predictions": {http.StatusOK, predsBody},
		},
	}
	api.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.requests = append(api.requests, r.URL.RequestURI())
		resp, ok := api.responses[r.URL.Path]
		api.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}))
	t.Cleanup(api.srv.Close)
	return api
}

func (a *fakeAPI) set(path string, status int, body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses[path] = fakeResponse{status, body}
}

func (a *fakeAPI) seen() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.requests...)
}

func (a *fakeAPI) client() *Client {
	return NewClient(a.srv.URL, a.srv.Client())
}
