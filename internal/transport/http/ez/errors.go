package ez

import "net/http"

// AErr 携带 HTTP 状态码的错误；Msg 进 error 字段，Detail 进 message 字段
type AErr struct {
	Code   int
	Msg    string
	Detail string
	Err    error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func newErr(code int, msg string, detail []string) error {
	e := &AErr{Code: code, Msg: msg}
	if len(detail) > 0 {
		e.Detail = detail[0]
	}
	return e
}

func BadRequest(msg string, detail ...string) error {
	return newErr(http.StatusBadRequest, msg, detail)
}
func Unauthorized(msg string, detail ...string) error {
	return newErr(http.StatusUnauthorized, msg, detail)
}
func Forbidden(msg string, detail ...string) error {
	return newErr(http.StatusForbidden, msg, detail)
}
func NotFound(msg string, detail ...string) error {
	return newErr(http.StatusNotFound, msg, detail)
}
func Conflict(msg string, detail ...string) error {
	return newErr(http.StatusConflict, msg, detail)
}

// Internal msg 是可以给调用方看的说明，err 只进日志
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}
