package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	holdingshandler "holdings_backend/internal/feature/holdings/transport/handler"
	platformhandler "holdings_backend/internal/platform/http/handler"
	jwtmw "holdings_backend/internal/platform/jwt"
)

// NewRouter builds the read-only query API. When jwtSecret is set the
// holdings routes require a bearer token. store may be nil.
func NewRouter(holdings *holdingshandler.HoldingsHandler, store platformhandler.Pinger, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// 認証不要
	// 導通確認用
	health := platformhandler.NewHealth(store)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)

	api := r.Group("/")
	if jwtSecret != "" {
		// リクエストヘッダーに JWT が必要になる
		api.Use(jwtmw.AuthRequired(jwtSecret))
	} else {
		slog.Warn("JWT_SECRET is not set; holdings routes are unauthenticated")
	}
	{
		api.GET("/funds", holdings.ListFunds)
		api.GET("/funds/:fund/dates", holdings.ListDates)
		api.GET("/funds/:fund/totals", holdings.Totals)
		api.GET("/funds/:fund/compare", holdings.Compare)
	}

	return r
}
