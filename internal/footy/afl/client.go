// Package afl provides the native provider for the official AFL API.
//
// Two hosts are involved: the public match-centre API (competitions,
// seasons, rounds, matches, ladders, teams, players) and the CFS API
// (rosters and player statistics), which requires a short-lived token
// fetched from the WMCTok endpoint and sent as x-media-mis-token.
package afl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const (
	DefaultAPIURL = "https://aflapi.afl.com.au/afl/v2"
	DefaultCFSURL = "https://api.afl.com.au/cfs/afl"

	tokenTTL    = 30 * time.Minute
	tokenHeader = "x-media-mis-token"
)

// Client is the rate-limited HTTP client for both AFL hosts.
type Client struct {
	httpClient *http.Client
	apiURL     string
	cfsURL     string
	limiter    *rate.Limiter
	logger     *slog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates an AFL client. Empty URLs select the public defaults.
func NewClient(apiURL, cfsURL string, requestsPerMinute int, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if cfsURL == "" {
		cfsURL = DefaultCFSURL
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 120
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     apiURL,
		cfsURL:     cfsURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 5),
		logger:     logger,
	}
}

// getToken returns a cached CFS token, refreshing it when expired.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfsURL+"/WMCTok", nil)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	body, err := c.do(req, "/WMCTok")
	if err != nil {
		return "", err
	}

	var tok struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if tok.Token == "" {
		return "", fmt.Errorf("token endpoint returned no token")
	}
	c.token = tok.Token
	c.tokenExpiry = time.Now().Add(tokenTTL)
	c.logger.Debug("Refreshed AFL CFS token")
	return c.token, nil
}

// api performs a GET against the match-centre API and decodes into out.
func (c *Client) api(ctx context.Context, path string, params url.Values, out any) error {
	return c.get(ctx, c.apiURL, path, params, false, out)
}

// cfs performs an authenticated GET against the CFS API and decodes into out.
func (c *Client) cfs(ctx context.Context, path string, out any) error {
	return c.get(ctx, c.cfsURL, path, nil, true, out)
}

func (c *Client) get(ctx context.Context, base, path string, params url.Values, auth bool, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		tok, err := c.getToken(ctx)
		if err != nil {
			return fmt.Errorf("cfs token: %w", err)
		}
		req.Header.Set(tokenHeader, tok)
	}

	body, err := c.do(req, path)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(req *http.Request, path string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && req.Header.Get(tokenHeader) != "" {
		c.invalidateToken()
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AFL %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
