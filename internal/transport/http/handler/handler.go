package handler

import (
	"github.com/gin-gonic/gin"

	"go-gin-storefront/internal/core/auth"
	"go-gin-storefront/internal/domain"
	mdw "go-gin-storefront/internal/transport/http/middleware"
)

// Gates 各 handler 按路由挂载的访问控制
type Gates struct {
	Authenticated gin.HandlerFunc
	Admin         gin.HandlerFunc
}

func NewGates(r auth.Resolver) Gates {
	return Gates{
		Authenticated: mdw.RequireAuthenticated(r),
		Admin:         mdw.RequireAdmin(r),
	}
}

// PageQuery page/limit 缺省时走默认值，显式 <= 0 返回 400
type PageQuery struct {
	Page  *int `form:"page"`
	Limit *int `form:"limit"`
}

func (q PageQuery) request() (domain.PageRequest, error) {
	return domain.PageRequestFrom(q.Page, q.Limit)
}

type idOut struct {
	ID string `json:"id"`
}
