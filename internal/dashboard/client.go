package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// Resource paths read by the load cycle.
const (
	PathSummary     = "/api/summary"
	PathMetrics     = "/api/metrics"
	PathPredictions = "/api/predictions?limit=10"
)

const maxBodyBytes = 10 * 1024 * 1024 // 10 MB

// LocalBaseURL returns the URL a client on this machine uses to reach a
// server listening on host:port. Wildcard and empty hosts map to loopback.
func LocalBaseURL(host string, port int) string {
	switch host {
	case "", "0.0.0.0":
		host = "127.0.0.1"
	case "::", "[::]":
		host = "::1"
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// StatusError reports a response whose status is outside the 2xx range.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed: %s (%d)", e.Path, e.StatusCode)
}

// PayloadError reports a response body that is not valid JSON or does not
// match the expected payload shape.
type PayloadError struct {
	Path     string
	Problems []string
	Err      error
}

func (e *PayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed payload from %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("malformed payload from %s: %s", e.Path, strings.Join(e.Problems, "; "))
}

func (e *PayloadError) Unwrap() error { return e.Err }

// Fetcher reads a JSON resource into out.
type Fetcher interface {
	FetchJSON(ctx context.Context, path string, out any) error
}

// Client fetches JSON resources from the pipeline API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API rooted at baseURL. An empty baseURL
// sends paths as-is, which is what a same-origin browser build wants.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// FetchJSON issues a GET for path and decodes the body into out.
//
// A non-2xx status yields a *StatusError. A body that is not valid JSON, or
// that fails the payload schema when out is one of the dashboard payload
// types, yields a *PayloadError.
func (c *Client) FetchJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &StatusError{Path: path, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return decodePayload(path, body, out)
}

func decodePayload(path string, body []byte, out any) error {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return &PayloadError{Path: path, Err: err}
	}

	if named, ok := out.(schemaNamer); ok {
		problems, err := validateDocument(named.schemaName(), doc)
		if err != nil {
			return err
		}
		if len(problems) > 0 {
			return &PayloadError{Path: path, Problems: problems}
		}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(out); err != nil {
		return &PayloadError{Path: path, Err: err}
	}
	return nil
}
