// Package cursorapi calls the Cursor dashboard endpoints used by the status bar.
package cursorapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/janekbaraniewski/cursorbar/internal/config"
	"github.com/janekbaraniewski/cursorbar/internal/token"
)

const (
	SessionCookie = "WorkosCursorSessionToken"

	usageSummaryPath = "/api/usage-summary"
	getMePath        = "/api/dashboard/get-me"
	leaderboardPath  = "/api/v2/analytics/team/leaderboard"

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36"

	maxErrorBody = 4 << 10
)

// Client calls the Cursor dashboard API with a session cookie.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger.With().Str("component", "cursorapi").Logger() }
}

// New returns a Client for baseURL, or config.DefaultAPIBaseURL when it is empty.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = config.DefaultAPIBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// FetchUsageSummary fetches the current billing cycle's spend.
func (c *Client) FetchUsageSummary(ctx context.Context, cred token.Credential) (UsageSummary, error) {
	var out UsageSummary
	if err := c.get(ctx, cred, usageSummaryPath, nil, &out); err != nil {
		return UsageSummary{}, fmt.Errorf("usage summary: %w", err)
	}
	return out, nil
}

// FetchUserInfo fetches the signed-in account, including its team id.
func (c *Client) FetchUserInfo(ctx context.Context, cred token.Credential) (UserInfo, error) {
	var out UserInfo
	if err := c.get(ctx, cred, getMePath, nil, &out); err != nil {
		return UserInfo{}, fmt.Errorf("user info: %w", err)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, cred token.Credential, path string, query url.Values, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setBrowserHeaders(req, cred)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", c.now().Sub(start)).
		Msg("dashboard request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func (c *Client) setBrowserHeaders(req *http.Request, cred token.Credential) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", c.baseURL+"/dashboard")
	req.Header.Set("Cookie", SessionCookie+"="+cred.String())
}
