package router

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mdw "gin-gorm-accounts/internal/transport/http/middleware"
)

// 系统接口：存活、健康、指标、时区调试
func mountSystem(r *gin.Engine, d Deps) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is running"})
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/api/test", mdw.OptionalAuth(d.JWT, d.Users), func(c *gin.Context) {
		now := d.TZ.Now()
		out := gin.H{
			"message":   "routes are working",
			"timezone":  d.TZ.Name(),
			"timestamp": now,
			"formatted": d.TZ.FormatForUser(now),
			"iso":       d.TZ.ISO(now),
			"utc":       now.UTC().Format(time.RFC3339),
		}
		if u, ok := mdw.CurrentUser(c); ok {
			out["userId"] = u.ID
		}
		c.JSON(http.StatusOK, out)
	})

	r.GET("/api/timezone", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "timezone information", "info": d.TZ.Info()})
	})
}

type notFoundBody struct {
	Error           string   `json:"error"`
	Path            string   `json:"path"`
	Method          string   `json:"method"`
	AvailableRoutes []string `json:"availableRoutes"`
}

// notFound 列出所有已注册路由；第一次命中时生成
func notFound(r *gin.Engine) gin.HandlerFunc {
	var (
		once   sync.Once
		routes []string
	)
	return func(c *gin.Context) {
		once.Do(func() {
			for _, ri := range r.Routes() {
				routes = append(routes, ri.Method+" "+ri.Path)
			}
			sort.Strings(routes)
		})
		c.JSON(http.StatusNotFound, notFoundBody{
			Error:           "route not found",
			Path:            c.Request.URL.Path,
			Method:          c.Request.Method,
			AvailableRoutes: routes,
		})
	}
}
