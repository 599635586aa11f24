package ez

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamID 解析路径上的数字 id
func ParamID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil {
		return 0, BadRequest("invalid id", "user id must be a number")
	}
	return uint(id), nil
}

// AtoiDefault 非正数或解析失败时用默认值
func AtoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

// OptBool 空串表示未设置；非 "true" 一律为 false
func OptBool(s string) *bool {
	if s == "" {
		return nil
	}
	b := s == "true"
	return &b
}
