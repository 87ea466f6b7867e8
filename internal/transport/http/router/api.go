package router

import (
	"github.com/gin-gonic/gin"
)

// NewAPIEngine 用户端 /api/v1，各路由自行挂 gate
func NewAPIEngine(d Deps) *gin.Engine {
	r := newEngine(d.Log, d.Limits)
	d.registry().MountAllAPI(r.Group("/api/v1"))
	return r
}
