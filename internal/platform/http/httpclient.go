package http

import (
	"errors"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// MaxRedirects caps the redirect chain of a single fetch.
const MaxRedirects = 5

var errTooManyRedirects = errors.New("stopped after too many redirects")

// NewHTTPClient は保有銘柄ソース取得用のHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト
//   - TLSHandshakeTimeout: HTTPSハンドシェイクの最大時間
//   - Jar: 保有銘柄ページが発行するCookieをCSV・フィード取得時に引き継ぐ
//   - CheckRedirect: リダイレクトは MaxRedirects 回まで
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	// cookiejar.New only fails on a non-nil PublicSuffixList error
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Timeout:   timeout,
		Transport: t,
		Jar:       jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}
}
