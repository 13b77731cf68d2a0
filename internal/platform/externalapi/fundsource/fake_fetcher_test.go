package fundsource

import (
	"context"
	"fmt"
	"sync"

	"holdings_backend/internal/feature/holdings/domain"
	"holdings_backend/internal/platform/fetch"
)

// fakeFetcher は URL ごとに固定の応答を返すテスト用 Fetcher です。
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]*fetch.Response
	calls     []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{responses: map[string]*fetch.Response{}}
}

func (f *fakeFetcher) set(url, contentType, body string) {
	f.responses[url] = &fetch.Response{StatusCode: 200, ContentType: contentType, URL: url, Body: []byte(body)}
}

func (f *fakeFetcher) Get(_ context.Context, url string, _ map[string]string) (*fetch.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	res, ok := f.responses[url]
	if !ok {
		return nil, fmt.Errorf("%w: http 404 from %s", domain.ErrTransport, url)
	}
	return res, nil
}
