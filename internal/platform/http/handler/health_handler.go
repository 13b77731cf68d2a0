// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger は依存先の疎通確認を行います（*sql.DB など）。
type Pinger interface {
	PingContext(ctx context.Context) error
}

const pingTimeout = 2 * time.Second

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// 依存先を確認しない固定の応答です。
func Health(c *gin.Context) {
	NewHealth(nil)(c)
}

// NewHealth は store の疎通を確認するヘルスチェックハンドラーを返します。
// store が nil の場合は常に ok を返します。
func NewHealth(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		status, body := http.StatusOK, gin.H{"status": "ok"}
		if store != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
			defer cancel()
			if err := store.PingContext(ctx); err != nil {
				slog.Warn("health check: store unreachable", "error", err)
				status, body = http.StatusServiceUnavailable, gin.H{"status": "unavailable"}
			}
		}

		switch c.Request.Method {
		case http.MethodHead:
			c.Status(status)
		case http.MethodOptions:
			c.Status(http.StatusNoContent)
		default:
			c.JSON(status, body)
		}
	}
}
