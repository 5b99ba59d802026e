package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIClient calls the inferprofit REST API.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doGet performs an HTTP GET and returns the response body as raw JSON.
func (c *APIClient) doGet(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating GET request for %s: %w", path, err)
	}
	return c.do(req, "GET "+path)
}

// doPost performs an HTTP POST with a JSON body and returns the response
// body as raw JSON.
func (c *APIClient) doPost(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling POST body for %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating POST request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "POST "+path)
}

func (c *APIClient) do(req *http.Request, what string) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", what, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned HTTP %d: %s", what, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.RawMessage(body), nil
}

// GetCatalog calls GET /api/v1/catalog, optionally for a single table.
func (c *APIClient) GetCatalog(ctx context.Context, table string) (json.RawMessage, error) {
	q := url.Values{}
	if table != "" {
		q.Set("table", table)
	}
	return c.doGet(ctx, "/api/v1/catalog", q)
}

// ListConfigurations calls GET /api/v1/{calculator}/configurations.
func (c *APIClient) ListConfigurations(ctx context.Context, calculator string, q url.Values) (json.RawMessage, error) {
	return c.doGet(ctx, "/api/v1/"+calculator+"/configurations", q)
}

// Calculate calls POST /api/v1/{calculator}/calculate.
func (c *APIClient) Calculate(ctx context.Context, calculator string, payload map[string]interface{}) (json.RawMessage, error) {
	return c.doPost(ctx, "/api/v1/"+calculator+"/calculate", payload)
}

// Estimate calls POST /api/v1/estimator.
func (c *APIClient) Estimate(ctx context.Context, payload map[string]interface{}) (json.RawMessage, error) {
	return c.doPost(ctx, "/api/v1/estimator", payload)
}

// GetCurve calls GET /api/v1/curve.
func (c *APIClient) GetCurve(ctx context.Context, q url.Values) (json.RawMessage, error) {
	return c.doGet(ctx, "/api/v1/curve", q)
}

// GetConfig calls GET /api/v1/config.
func (c *APIClient) GetConfig(ctx context.Context) (json.RawMessage, error) {
	return c.doGet(ctx, "/api/v1/config", nil)
}
