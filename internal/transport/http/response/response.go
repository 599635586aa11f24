package response

// Resp 用户接口统一外壳
type Resp struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK 成功响应；data 为 nil 时不输出
func OK(data any, msg string) Resp {
	return Resp{Success: true, Data: data, Message: msg}
}

// Error 失败响应；errMsg 为空时用状态码默认文案
func Error(code int, errMsg, msg string) Resp {
	if errMsg == "" {
		errMsg = Text(code)
	}
	return Resp{Success: false, Error: errMsg, Message: msg}
}

// Bare 认证接口的错误体只有 error 字段
type Bare struct {
	Error string `json:"error"`
}
