// Package transport is the shared HTTP layer for adapters and discovery probes.
// Every request gets its own timeout, is retried on failure, and waits for the
// provider's courtesy delay before it is sent.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/ratelimit"
	"github.com/amishk599/liveroles/internal/retry"
)

const (
	defaultUserAgent = "liveroles/1.0 (+https://github.com/amishk599/liveroles)"
	maxBodyBytes     = 16 << 20

	AcceptJSON = "application/json"
	AcceptXML  = "application/xml,text/xml;q=0.9,*/*;q=0.8"
	AcceptRSS  = "application/xml,text/xml;q=0.9,application/rss+xml;q=0.9,*/*;q=0.8"
	AcceptHTML = "text/html,application/xhtml+xml"
)

// Options configures a Client.
type Options struct {
	Timeout   time.Duration // per attempt
	Delay     time.Duration // courtesy gap between requests to the same provider
	Retry     retry.Policy
	UserAgent string
}

// Client performs provider requests. It is safe for concurrent use.
type Client struct {
	http      *http.Client
	timeout   time.Duration
	policy    retry.Policy
	limiter   *ratelimit.ProviderLimiter
	userAgent string
	logger    *slog.Logger
}

// New creates a Client on top of httpClient.
func New(httpClient *http.Client, opts Options, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		http:      httpClient,
		timeout:   opts.Timeout,
		policy:    opts.Retry,
		limiter:   ratelimit.NewProviderLimiter(opts.Delay),
		userAgent: ua,
		logger:    logger,
	}
}

// GetJSON fetches url and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, provider, url string, out any) error {
	body, err := c.do(ctx, provider, http.MethodGet, url, AcceptJSON, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decoding %s: %w", provider, url, err)
	}
	return nil
}

// GetText fetches url and returns the body as a string.
func (c *Client) GetText(ctx context.Context, provider, url, accept string) (string, error) {
	body, err := c.do(ctx, provider, http.MethodGet, url, accept, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// PostJSON sends payload as JSON and decodes the JSON response into out.
func (c *Client) PostJSON(ctx context.Context, provider, url string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encoding request: %w", provider, err)
	}
	body, err := c.do(ctx, provider, http.MethodPost, url, AcceptJSON, data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decoding %s: %w", provider, url, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, provider, method, url, accept string, payload []byte) ([]byte, error) {
	return retry.Do(ctx, c.policy, c.logger, provider, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx, provider); err != nil {
			return nil, err
		}
		return c.attempt(ctx, method, url, accept, payload)
	})
}

// attempt performs a single request bounded by the per-request timeout.
func (c *Client) attempt(ctx context.Context, method, url, accept string, payload []byte) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.HTTPError{
			URL:        url,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", url, err)
	}
	return body, nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds (e.g. "120") and HTTP dates relative to now. Returns zero
// if absent, unparseable or already past.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return max(0, time.Duration(seconds)*time.Second)
	}
	at, err := http.ParseTime(value)
	if err != nil {
		return 0
	}
	return max(0, at.Sub(now))
}
