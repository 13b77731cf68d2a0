package fundsource

import (
	"context"

	"holdings_backend/internal/platform/fetch"
)

// Fetcher is the GET capability the sources depend on. *fetch.Client
// satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) (*fetch.Response, error)
}

var _ Fetcher = (*fetch.Client)(nil)
