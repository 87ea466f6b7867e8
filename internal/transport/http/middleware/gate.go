package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-storefront/internal/core/auth"
	"go-gin-storefront/internal/domain"
	resp "go-gin-storefront/internal/transport/http/response"
)

const (
	KeyPrincipal = "principal"
	KeyUserID    = "userId"
	KeyRole      = "role"
)

// RequireAuthenticated 解析失败直接 401，不进入 handler
func RequireAuthenticated(r auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c, r); !ok {
			return
		}
		c.Next()
	}
}

// RequireAdmin 先认证再鉴权：未认证永远是 401，认证后非 admin 才是 403
func RequireAdmin(r auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := authenticate(c, r)
		if !ok {
			return
		}
		if !p.IsAdmin() {
			resp.Abort(c, http.StatusForbidden, "admin role required")
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, r auth.Resolver) (domain.Principal, bool) {
	// 同一请求上挂了多层 gate 时只解析一次
	if p, ok := PrincipalFrom(c); ok {
		return p, true
	}
	p, err := r.Resolve(c.GetHeader("Authorization"))
	if err != nil {
		msg := "unauthenticated"
		var de *domain.Error
		if errors.As(err, &de) && de.Msg != "" {
			msg = de.Msg
		}
		resp.Abort(c, http.StatusUnauthorized, msg)
		return domain.Principal{}, false
	}
	c.Set(KeyPrincipal, p)
	c.Set(KeyUserID, p.UserID)
	c.Set(KeyRole, string(p.Role))
	return p, true
}

func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(KeyPrincipal)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}
