package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gin-gorm-accounts/internal/core/auth"
	"gin-gorm-accounts/internal/domain"
	resp "gin-gorm-accounts/internal/transport/http/response"
)

const keyCurrentUser = "currentUser"

// UserLookup 鉴权只需要按 id 查用户
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
}

type gateErr struct {
	code   int
	msg    string
	detail string
	err    error
}

// AuthJWT 必须登录；令牌有效且用户处于激活状态才放行
func AuthJWT(j *auth.JWTer, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ge := authenticate(c, j, users)
		if ge != nil {
			if ge.err != nil {
				_ = c.Error(ge.err)
			}
			c.AbortWithStatusJSON(ge.code, resp.Error(ge.code, ge.msg, ge.detail))
			return
		}
		c.Set(keyCurrentUser, u)
		c.Next()
	}
}

// OptionalAuth 有合法令牌就挂上用户，任何失败都按匿名继续
func OptionalAuth(j *auth.JWTer, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ge := authenticate(c, j, users); ge == nil {
			c.Set(keyCurrentUser, u)
		}
		c.Next()
	}
}

// RequireAdmin 放在 AuthJWT 之后
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				resp.Error(http.StatusUnauthorized, "not authenticated", "authentication is required for this resource"))
			return
		}
		if !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden,
				resp.Error(http.StatusForbidden, "access denied", "administrator privileges are required for this resource"))
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(keyCurrentUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}

func authenticate(c *gin.Context, j *auth.JWTer, users UserLookup) (*domain.User, *gateErr) {
	ah := c.GetHeader("Authorization")
	if ah == "" {
		return nil, &gateErr{code: http.StatusUnauthorized, msg: "access token required", detail: "an authorization token must be provided"}
	}
	// Bearer 前缀可省略
	tok := strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
	if tok == "" {
		return nil, &gateErr{code: http.StatusUnauthorized, msg: "invalid token", detail: "malformed authorization header"}
	}

	claims, err := j.Parse(tok)
	if errors.Is(err, auth.ErrTokenExpired) {
		return nil, &gateErr{code: http.StatusUnauthorized, msg: "token expired", detail: "the access token has expired"}
	}
	if err != nil {
		return nil, &gateErr{code: http.StatusUnauthorized, msg: "invalid token", detail: "the access token is not valid"}
	}

	u, err := users.FindByID(c.Request.Context(), claims.UID)
	if err != nil {
		return nil, &gateErr{code: http.StatusInternalServerError, detail: "could not verify the access token", err: err}
	}
	if u == nil || !u.IsActive {
		return nil, &gateErr{code: http.StatusUnauthorized, msg: "user not found or inactive", detail: "the user for this token does not exist or is inactive"}
	}
	return u, nil
}
