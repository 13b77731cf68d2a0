// Package fetch provides the GET capability used by holdings sources.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"holdings_backend/internal/feature/holdings/domain"
)

// maxBodyBytes caps a single response body.
const maxBodyBytes = 64 << 20

// Response is the result of a successful GET.
type Response struct {
	StatusCode  int
	ContentType string
	URL         string // final URL after redirects
	Body        []byte
}

// Client issues GET requests with caller-supplied headers. Every request is
// bounded by the timeout of the underlying *http.Client.
type Client struct {
	client *http.Client
}

// NewClient wraps an *http.Client.
func NewClient(client *http.Client) *Client {
	return &Client{client: client}
}

// Get fetches url. Network errors and HTTP statuses >= 400 are reported as
// domain.ErrTransport.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request %s: %v", domain.ErrTransport, url, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: http %d from %s", domain.ErrTransport, res.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body %s: %v", domain.ErrTransport, url, err)
	}

	final := url
	if res.Request != nil && res.Request.URL != nil {
		final = res.Request.URL.String()
	}
	return &Response{
		StatusCode:  res.StatusCode,
		ContentType: res.Header.Get("Content-Type"),
		URL:         final,
		Body:        body,
	}, nil
}
