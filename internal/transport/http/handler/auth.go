package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gin-gorm-accounts/internal/domain"
	"gin-gorm-accounts/internal/service"
	"gin-gorm-accounts/internal/transport/http/ez"
)

type AuthHandler struct {
	svc *service.AuthService
	mw  []gin.HandlerFunc
}

// NewAuthHandler mw 作用于 /auth 下所有接口（一般是按 IP 限速）
func NewAuthHandler(svc *service.AuthService, mw ...gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{svc: svc, mw: mw}
}

func (h *AuthHandler) Priority() int { return 10 }

type registerReq struct {
	Email     string  `json:"email"     binding:"required,email,max=255"`
	Password  string  `json:"password"  binding:"required"`
	FirstName string  `json:"firstName" binding:"required,max=100"`
	LastName  string  `json:"lastName"  binding:"required,max=100"`
	Phone     *string `json:"phone"     binding:"omitempty,max=20"`
}

type loginReq struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) MountAPI(e ez.EZ) {
	g := e.Group("/auth", h.mw...)

	ez.RegisterAction(g, ez.Action[registerReq, *service.AuthResult]{
		Method:  http.MethodPost,
		Path:    "/register",
		Binder:  ez.BindJSON,
		Style:   ez.Bare,
		Status:  http.StatusCreated,
		Handler: h.register,
	})
	ez.RegisterAction(g, ez.Action[loginReq, *service.AuthResult]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  ez.BindJSON,
		Style:   ez.Bare,
		Handler: h.login,
	})
}

func (h *AuthHandler) register(c *gin.Context, in *registerReq) (*service.AuthResult, error) {
	res, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Email:     strings.TrimSpace(in.Email),
		Password:  in.Password,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     in.Phone,
	})
	if errors.Is(err, domain.ErrEmailTaken) {
		return nil, ez.BadRequest(err.Error())
	}
	if err != nil {
		return nil, ez.Internal("registration failed", err)
	}
	return res, nil
}

func (h *AuthHandler) login(c *gin.Context, in *loginReq) (*service.AuthResult, error) {
	res, err := h.svc.Login(c.Request.Context(), service.LoginInput{
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	})
	switch {
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidPassword):
		return nil, ez.Unauthorized(err.Error())
	case err != nil:
		return nil, ez.Internal("login failed", err)
	}
	return res, nil
}
