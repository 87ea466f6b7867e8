package router

import (
	"github.com/gin-gonic/gin"

	mdw "go-gin-storefront/internal/transport/http/middleware"
)

// NewAdminEngine 管理端 /admin/v1，整组要求 admin
func NewAdminEngine(d Deps) *gin.Engine {
	r := newEngine(d.Log, d.Limits)
	admin := r.Group("/admin/v1", mdw.RequireAdmin(d.Resolver))
	d.registry().MountAllAdmin(admin)
	return r
}
