// Package client provides an HTTP client for the NocoDB v2 REST API.
package client

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

	"github.com/rzbill/nocodb-cli/pkg/log"
	"github.com/rzbill/nocodb-cli/pkg/types"
)

// ClientOptions holds configuration options for the API client.
type ClientOptions struct {
	// BaseURL of the remote endpoint, e.g. https://app.nocodb.com
	BaseURL string

	// Headers sent with every request (auth token and defaults).
	Headers map[string]string

	// Timeout for a single HTTP request.
	Timeout time.Duration

	// Retry policy for transient failures.
	RetryCount       int
	RetryDelay       time.Duration
	RetryStatusCodes []int

	// Logger
	Logger log.Logger
}

// DefaultClientOptions returns client options derived from the hard default
// settings.
func DefaultClientOptions() *ClientOptions {
	defaults := types.DefaultSettings()
	return &ClientOptions{
		Timeout:          time.Duration(defaults.TimeoutMs) * time.Millisecond,
		RetryCount:       defaults.RetryCount,
		RetryDelay:       time.Duration(defaults.RetryDelay) * time.Millisecond,
		RetryStatusCodes: defaults.RetryStatusCodes,
		Logger:           log.GetDefaultLogger().WithComponent("api-client"),
	}
}

// OptionsFromSettings builds client options from a workspace profile and
// effective global settings.
func OptionsFromSettings(ws *types.WorkspaceConfig, settings types.GlobalSettings) *ClientOptions {
	opts := DefaultClientOptions()
	opts.Timeout = time.Duration(settings.TimeoutMs) * time.Millisecond
	opts.RetryCount = settings.RetryCount
	opts.RetryDelay = time.Duration(settings.RetryDelay) * time.Millisecond
	opts.RetryStatusCodes = append([]int{}, settings.RetryStatusCodes...)
	if ws != nil {
		opts.BaseURL = ws.BaseURL
		opts.Headers = ws.Headers
	}
	return opts
}

// Client is an HTTP client for the remote API. It applies the configured
// headers, timeout, and retry policy to every request.
type Client struct {
	options *ClientOptions
	http    *http.Client
	logger  log.Logger
}

// NewClient creates a new API client with the given options.
func NewClient(options *ClientOptions) (*Client, error) {
	if options == nil {
		options = DefaultClientOptions()
	}
	if strings.TrimSpace(options.BaseURL) == "" {
		return nil, types.NewValidationError("api client requires a base URL; configure a workspace or set %s", "NOCODB_URL")
	}
	u, err := url.Parse(options.BaseURL)
	if err != nil || !strings.HasPrefix(u.Scheme, "http") {
		return nil, types.NewValidationError("api client base URL %q is not a valid http(s) URL", options.BaseURL)
	}

	logger := options.Logger
	if logger == nil {
		logger = log.GetDefaultLogger().WithComponent("api-client")
	}

	return &Client{
		options: options,
		http:    &http.Client{Timeout: options.Timeout},
		logger:  logger,
	}, nil
}

// BaseURL returns the endpoint the client talks to.
func (c *Client) BaseURL() string {
	return strings.TrimRight(c.options.BaseURL, "/")
}

// do issues one API request with retries per the configured policy and
// returns the response body. Failures are classified by HTTP status.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, types.NewValidationError("request payload is not encodable: %v", err)
		}
	}

	endpoint := c.BaseURL() + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	attempts := c.options.RetryCount + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying request",
				log.Str("method", method),
				log.Str("path", path),
				log.Int("attempt", attempt))
			select {
			case <-ctx.Done():
				return nil, types.NewAPIError(types.CodeNetwork, 0, "request canceled: %v", ctx.Err())
			case <-time.After(c.options.RetryDelay):
			}
		}

		data, retryable, err := c.doOnce(ctx, method, endpoint, payload)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, method, endpoint string, payload []byte) ([]byte, bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, false, types.NewAPIError(types.CodeNetwork, 0, "failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.options.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Network-level failures are retryable.
		return nil, true, types.NewAPIError(types.CodeNetwork, 0, "request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, types.NewAPIError(types.CodeNetwork, 0, "failed to read response: %v", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, false, nil
	}

	apiErr := classifyResponse(resp.StatusCode, data)
	return nil, c.isRetryableStatus(resp.StatusCode), apiErr
}

func (c *Client) isRetryableStatus(status int) bool {
	for _, code := range c.options.RetryStatusCodes {
		if code == status {
			return true
		}
	}
	return false
}

func fmtPath(format string, args ...string) string {
	escaped := make([]interface{}, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(a)
	}
	return fmt.Sprintf(format, escaped...)
}
