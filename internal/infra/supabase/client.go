package supabase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a Supabase project's REST and auth gateways.
type Client struct {
	baseURL    string
	anonKey    string
	table      string
	httpClient *http.Client
}

// Config carries the project endpoint and public key.
type Config struct {
	URL     string
	AnonKey string
	Table   string
	Timeout time.Duration
}

// NewClient builds a Supabase client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("supabase url cannot be empty")
	}
	if strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, errors.New("supabase anon key cannot be empty")
	}
	table := strings.TrimSpace(cfg.Table)
	if table == "" {
		table = "monthly_billing_summary"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: base,
		anonKey: cfg.AnonKey,
		table:   table,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint, accessToken string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build supabase request: %w", err)
	}
	bearer := accessToken
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase request failed: %w", err)
	}
	return resp, nil
}

func statusError(resp *http.Response, what string) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return fmt.Errorf("%s: status=%d body=%s", what, resp.StatusCode, string(payload))
}
