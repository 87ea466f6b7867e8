package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-gin-storefront/internal/core/auth"
	"go-gin-storefront/internal/core/config"
	"go-gin-storefront/internal/core/server"
	"go-gin-storefront/internal/service"
	"go-gin-storefront/internal/transport/http/handler"
	mdw "go-gin-storefront/internal/transport/http/middleware"
)

// Deps 两个 engine 共用的依赖
type Deps struct {
	Log      *zap.Logger
	Limits   config.Limits
	Resolver auth.Resolver
	Catalog  *service.CatalogService
	Orders   *service.OrderService
	Users    *service.UserService
}

func (d Deps) registry() *Registry {
	gates := handler.NewGates(d.Resolver)
	reg := &Registry{}
	reg.Register(
		handler.NewAccountHandler(d.Users, gates, d.Log),
		handler.NewCatalogHandler(d.Catalog, d.Log),
		handler.NewOrderHandler(d.Orders, gates, d.Log),
	)
	return reg
}

// newEngine 公共中间件链 + /health + /metrics
func newEngine(l *zap.Logger, lim config.Limits) *gin.Engine {
	r := server.NewRouter(l)

	chain := []gin.HandlerFunc{mdw.RequestID()}
	if lim.RPS > 0 {
		chain = append(chain, mdw.RateLimit(rate.Limit(lim.RPS), max(lim.Burst, 1)))
	}
	if lim.PerIPRPS > 0 {
		chain = append(chain, mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), max(lim.PerIPBurst, 1)))
	}
	if lim.MaxConcurrent > 0 {
		chain = append(chain, mdw.ConcurrencyLimit(lim.MaxConcurrent))
	}
	if lim.MaxBodyBytes > 0 {
		chain = append(chain, mdw.MaxBodyBytes(lim.MaxBodyBytes))
	}
	if lim.TimeoutSec > 0 {
		chain = append(chain, mdw.Timeout(time.Duration(lim.TimeoutSec)*time.Second))
	}
	chain = append(chain, mdw.Recovery(l), mdw.Metrics(), mdw.AccessLog(l))
	r.Use(chain...)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", mdw.MetricsHandler())
	return r
}
