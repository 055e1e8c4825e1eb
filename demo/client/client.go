// Package client is a small HTTP client for the newsgraph API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"newsgraph/api"
)

// Client talks to a running newsgraph server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new application client
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetEnvOrDefault returns the value of an environment variable or a default value
func GetEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSONRequest(ctx, http.MethodGet, "/api/health", nil, nil)
}

// Similar fetches the similarity-related articles of key.
func (c *Client) Similar(ctx context.Context, key string, full bool) (*api.RelatedResponse, error) {
	q := url.Values{}
	if full {
		q.Set("full", "true")
	}
	var out api.RelatedResponse
	if err := c.doJSONRequest(ctx, http.MethodGet, articlePath(key, "", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ByPathCount fetches articles sharing the most term paths with key.
func (c *Client) ByPathCount(ctx context.Context, key string, limit int) (*api.RelatedResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out api.RelatedResponse
	if err := c.doJSONRequest(ctx, http.MethodGet, articlePath(key, "/paths", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func articlePath(key, suffix string, q url.Values) string {
	p := "/api/articles/" + url.PathEscape(key) + "/related" + suffix
	if len(q) > 0 {
		p += "?" + q.Encode()
	}
	return p
}

// doJSONRequest performs a JSON request and decodes the response into result
// when result is non-nil.
func (c *Client) doJSONRequest(ctx context.Context, method, path string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		bodyBytes, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("API returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
