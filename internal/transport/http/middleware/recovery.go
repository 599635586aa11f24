package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "gin-gorm-accounts/internal/transport/http/response"
)

// Recovered 给 ginzap.CustomRecoveryWithZap 用；堆栈已由 ginzap 记录
func Recovered(c *gin.Context, _ any) {
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		resp.Error(http.StatusInternalServerError, "", "unexpected server error"))
}
