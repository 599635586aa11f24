package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gin-gorm-accounts/internal/core/auth"
	"gin-gorm-accounts/internal/core/config"
	"gin-gorm-accounts/internal/core/server"
	"gin-gorm-accounts/internal/core/timezone"
	"gin-gorm-accounts/internal/service"
	"gin-gorm-accounts/internal/transport/http/ez"
	"gin-gorm-accounts/internal/transport/http/handler"
	mdw "gin-gorm-accounts/internal/transport/http/middleware"
)

// 请求体上限 1MB
const maxBodyBytes = 1 << 20

// Deps 启动时显式构造后注入
type Deps struct {
	Log   *zap.Logger
	HTTP  config.HTTP
	JWT   *auth.JWTer
	Users mdw.UserLookup
	Auth  *service.AuthService
	User  *service.UserService
	TZ    *timezone.Formatter
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, mdw.Recovered)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(d.HTTP.RateLimitRPS), d.HTTP.RateLimitBurst),
		mdw.ConcurrencyLimit(d.HTTP.MaxConcurrent),
		mdw.MaxBodyBytes(maxBodyBytes),
		mdw.Timeout(time.Duration(d.HTTP.RequestTimeout)*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	mountSystem(r, d)

	api := ez.New(r.Group("/api"), d.Log)
	var reg Registry
	reg.Register(
		handler.NewAuthHandler(d.Auth,
			mdw.RateLimitPerIP(rate.Limit(d.HTTP.AuthRateLimitRPS), d.HTTP.AuthRateLimitBurst)),
		handler.NewUsersHandler(d.User, mdw.AuthJWT(d.JWT, d.Users)),
	)
	reg.MountAll(api)

	// 404 放最后，路由表此时已完整
	r.NoRoute(notFound(r))
	return r
}
