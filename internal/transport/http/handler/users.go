package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gin-gorm-accounts/internal/domain"
	"gin-gorm-accounts/internal/service"
	"gin-gorm-accounts/internal/transport/http/ez"
	mdw "gin-gorm-accounts/internal/transport/http/middleware"
)

// UsersHandler /users 下的接口；authn 为登录校验，admin 为管理员校验
type UsersHandler struct {
	svc   *service.UserService
	authn gin.HandlerFunc
	admin gin.HandlerFunc
}

func NewUsersHandler(svc *service.UserService, authn gin.HandlerFunc) *UsersHandler {
	return &UsersHandler{svc: svc, authn: authn, admin: mdw.RequireAdmin()}
}

func (h *UsersHandler) Priority() int { return 20 }

type profileReq struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName"  binding:"omitempty,max=100"`
	Phone     *string `json:"phone"     binding:"omitempty,max=20"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword"     binding:"required"`
}

func (h *UsersHandler) MountAPI(e ez.EZ) {
	g := e.Group("/users", h.authn)

	// 本人
	ez.RegisterAction(g, ez.Action[struct{}, *service.UserView]{
		Method:  http.MethodGet,
		Path:    "/me",
		Binder:  ez.BindNone,
		Handler: h.me,
	})
	ez.RegisterAction(g, ez.Action[profileReq, *service.UserView]{
		Method:  http.MethodPut,
		Path:    "/profile",
		Binder:  ez.BindJSON,
		Message: func(*service.UserView) string { return "profile updated successfully" },
		Handler: h.updateProfile,
	})
	ez.RegisterAction(g, ez.Action[changePasswordReq, struct{}]{
		Method:  http.MethodPut,
		Path:    "/change-password",
		Binder:  ez.BindJSON,
		BindErr: "incomplete data",
		NoData:  true,
		Message: func(struct{}) string { return "password changed successfully" },
		Handler: h.changePassword,
	})

	// 本人或管理员
	ez.RegisterAction(g, ez.Action[struct{}, *service.UserView]{
		Method:  http.MethodGet,
		Path:    "/:id",
		Binder:  ez.BindNone,
		Handler: h.get,
	})

	h.mountAdmin(g)
}

func (h *UsersHandler) me(c *gin.Context, _ *struct{}) (*service.UserView, error) {
	u, err := caller(c)
	if err != nil {
		return nil, err
	}
	v, err := h.svc.GetByID(c.Request.Context(), u.ID)
	if err != nil {
		return nil, mapErr(err, "could not load profile")
	}
	return v, nil
}

func (h *UsersHandler) updateProfile(c *gin.Context, in *profileReq) (*service.UserView, error) {
	u, err := caller(c)
	if err != nil {
		return nil, err
	}
	v, err := h.svc.UpdateProfile(c.Request.Context(), u.ID, service.ProfileInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
	})
	if err != nil {
		return nil, mapErr(err, "could not update profile")
	}
	return v, nil
}

func (h *UsersHandler) changePassword(c *gin.Context, in *changePasswordReq) (struct{}, error) {
	u, err := caller(c)
	if err != nil {
		return struct{}{}, err
	}
	if err := h.svc.ChangePassword(c.Request.Context(), u.ID, in.CurrentPassword, in.NewPassword); err != nil {
		return struct{}{}, mapErr(err, "could not change password")
	}
	return struct{}{}, nil
}

func (h *UsersHandler) get(c *gin.Context, _ *struct{}) (*service.UserView, error) {
	id, err := ez.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	u, err := caller(c)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin && u.ID != id {
		return nil, ez.Forbidden("access denied", "you are not allowed to view this user")
	}
	v, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, mapErr(err, "could not load user")
	}
	return v, nil
}

func caller(c *gin.Context) (*domain.User, error) {
	u, ok := mdw.CurrentUser(c)
	if !ok {
		return nil, ez.Unauthorized("not authenticated")
	}
	return u, nil
}
