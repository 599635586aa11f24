package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mdw "gin-gorm-accounts/internal/transport/http/middleware"
	resp "gin-gorm-accounts/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// 响应形态
type Style int

const (
	Envelope Style = iota // {success,data,error,message}
	Bare                  // 成功直接输出 O，失败 {error}
)

// Action 一行注册一个接口：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string // 例："/auth/login"、"/users/:id/reactivate"
	Binder  Binder
	Style   Style
	Status  int            // 成功状态码，默认 200
	NoData  bool           // 成功时不输出 data
	Message func(O) string // 成功提示，可选
	BindErr string         // 绑定失败时的 error 文案，默认 "validation failed"
	Handler func(c *gin.Context, in *I) (O, error)
}

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ { return EZ{g: g, log: l} }

// Group 子分组，中间件作用于其下所有动作
func (e EZ) Group(path string, mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mw...), log: e.log}
}

// RegisterAction 挂载动作；mw 只作用于这一个接口
func RegisterAction[I any, O any](e EZ, a Action[I, O], mw ...gin.HandlerFunc) {
	h := func(c *gin.Context) {
		// 1) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default:
		}
		if bindErr != nil {
			msg := a.BindErr
			if msg == "" {
				msg = "validation failed"
			}
			e.Fail(c, a.Style, BadRequest(msg, bindErr.Error()))
			return
		}

		// 2) 执行
		out, err := a.Handler(c, &in)
		if err != nil {
			e.Fail(c, a.Style, err)
			return
		}

		// 3) 输出
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		if a.Style == Bare {
			c.JSON(status, out)
			return
		}
		var data any = out
		if a.NoData {
			data = nil
		}
		msg := ""
		if a.Message != nil {
			msg = a.Message(out)
		}
		c.JSON(status, resp.OK(data, msg))
	}

	handlers := append(append([]gin.HandlerFunc{}, mw...), h)
	e.g.Handle(strings.ToUpper(a.Method), a.Path, handlers...)
}

// Fail 统一错误映射；5xx 记日志，调用方只拿到通用文案
func (e EZ) Fail(c *gin.Context, style Style, err error) {
	var ae *AErr
	if !errors.As(err, &ae) {
		ae = &AErr{Code: http.StatusInternalServerError, Err: err}
	}

	errMsg, detail := ae.Msg, ae.Detail
	if ae.Code >= http.StatusInternalServerError {
		cause := ae.Err
		if cause == nil {
			cause = err
		}
		e.log.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(cause),
		)
		errMsg, detail = resp.Text(ae.Code), ae.Msg
	}

	if style == Bare {
		if errMsg == "" {
			errMsg = resp.Text(ae.Code)
		}
		c.AbortWithStatusJSON(ae.Code, resp.Bare{Error: errMsg})
		return
	}
	c.AbortWithStatusJSON(ae.Code, resp.Error(ae.Code, errMsg, detail))
}
