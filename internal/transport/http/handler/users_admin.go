package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gin-gorm-accounts/internal/domain"
	"gin-gorm-accounts/internal/service"
	"gin-gorm-accounts/internal/transport/http/ez"
)

// --- 管理端：列表 / 统计 / 增改 / 停用 / 恢复 / 切换管理员 ---

type listQ struct {
	Page      string `form:"page"`
	Limit     string `form:"limit"`
	Search    string `form:"search"`
	IsActive  string `form:"isActive"`
	IsAdmin   string `form:"isAdmin"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

type createUserReq struct {
	Email     string  `json:"email"     binding:"required,email,max=255"`
	Password  string  `json:"password"  binding:"required"`
	FirstName string  `json:"firstName" binding:"required,max=100"`
	LastName  string  `json:"lastName"  binding:"required,max=100"`
	Phone     *string `json:"phone"     binding:"omitempty,max=20"`
	IsAdmin   bool    `json:"isAdmin"`
}

type updateUserReq struct {
	Email     *string `json:"email"     binding:"omitempty,email,max=255"`
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName"  binding:"omitempty,max=100"`
	Phone     *string `json:"phone"     binding:"omitempty,max=20"`
	IsActive  *bool   `json:"isActive"`
	IsAdmin   *bool   `json:"isAdmin"`
}

func (h *UsersHandler) mountAdmin(g ez.EZ) {
	ez.RegisterAction(g, ez.Action[listQ, *service.UserList]{
		Method:  http.MethodGet,
		Path:    "",
		Binder:  ez.BindQuery,
		Handler: h.list,
	}, h.admin)

	ez.RegisterAction(g, ez.Action[struct{}, *service.Stats]{
		Method: http.MethodGet,
		Path:   "/stats",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Stats, error) {
			s, err := h.svc.Stats(c.Request.Context())
			if err != nil {
				return nil, mapErr(err, "could not load statistics")
			}
			return s, nil
		},
	}, h.admin)

	ez.RegisterAction(g, ez.Action[createUserReq, *service.UserView]{
		Method:  http.MethodPost,
		Path:    "",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		BindErr: "incomplete data",
		Message: func(*service.UserView) string { return "user created successfully" },
		Handler: h.create,
	}, h.admin)

	ez.RegisterAction(g, ez.Action[updateUserReq, *service.UserView]{
		Method:  http.MethodPut,
		Path:    "/:id",
		Binder:  ez.BindJSON,
		Message: func(*service.UserView) string { return "user updated successfully" },
		Handler: h.update,
	}, h.admin)

	ez.RegisterAction(g, ez.Action[struct{}, struct{}]{
		Method:  http.MethodDelete,
		Path:    "/:id",
		Binder:  ez.BindNone,
		NoData:  true,
		Message: func(struct{}) string { return "user deactivated successfully" },
		Handler: h.deactivate,
	}, h.admin)

	ez.RegisterAction(g, ez.Action[struct{}, *service.UserView]{
		Method:  http.MethodPut,
		Path:    "/:id/reactivate",
		Binder:  ez.BindNone,
		Message: func(*service.UserView) string { return "user reactivated successfully" },
		Handler: func(c *gin.Context, _ *struct{}) (*service.UserView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			v, err := h.svc.Reactivate(c.Request.Context(), id)
			if err != nil {
				return nil, mapErr(err, "could not reactivate user")
			}
			return v, nil
		},
	}, h.admin)

	ez.RegisterAction(g, ez.Action[struct{}, *service.UserView]{
		Method: http.MethodPut,
		Path:   "/:id/toggle-admin",
		Binder: ez.BindNone,
		Message: func(v *service.UserView) string {
			if v.IsAdmin {
				return "admin privileges granted successfully"
			}
			return "admin privileges revoked successfully"
		},
		Handler: h.toggleAdmin,
	}, h.admin)
}

func (h *UsersHandler) list(c *gin.Context, in *listQ) (*service.UserList, error) {
	q := service.ListQuery{
		Filter: domain.UserFilter{
			IsActive: ez.OptBool(in.IsActive),
			IsAdmin:  ez.OptBool(in.IsAdmin),
			Search:   strings.TrimSpace(in.Search),
		},
		Page: domain.Page{
			Page:  ez.AtoiDefault(in.Page, domain.DefaultPage),
			Limit: ez.AtoiDefault(in.Limit, domain.DefaultLimit),
		},
		Sort: domain.Sort{
			By:   domain.SortField(in.SortBy),
			Desc: strings.EqualFold(in.SortOrder, "DESC"),
		},
	}
	out, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		return nil, mapErr(err, "could not list users")
	}
	return out, nil
}

func (h *UsersHandler) create(c *gin.Context, in *createUserReq) (*service.UserView, error) {
	v, err := h.svc.AdminCreate(c.Request.Context(), service.AdminCreateInput{
		Email:     strings.TrimSpace(in.Email),
		Password:  in.Password,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     in.Phone,
		IsAdmin:   in.IsAdmin,
	})
	if err != nil {
		return nil, mapErr(err, "could not create user")
	}
	return v, nil
}

func (h *UsersHandler) update(c *gin.Context, in *updateUserReq) (*service.UserView, error) {
	id, err := ez.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	v, err := h.svc.AdminUpdate(c.Request.Context(), id, service.AdminUpdateInput{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		IsActive:  in.IsActive,
		IsAdmin:   in.IsAdmin,
	})
	if err != nil {
		return nil, mapErr(err, "could not update user")
	}
	return v, nil
}

func (h *UsersHandler) deactivate(c *gin.Context, _ *struct{}) (struct{}, error) {
	id, err := ez.ParamID(c, "id")
	if err != nil {
		return struct{}{}, err
	}
	if err := notSelf(c, id, "you cannot deactivate your own account"); err != nil {
		return struct{}{}, err
	}
	if err := h.svc.SoftDelete(c.Request.Context(), id); err != nil {
		return struct{}{}, mapErr(err, "could not deactivate user")
	}
	return struct{}{}, nil
}

func (h *UsersHandler) toggleAdmin(c *gin.Context, _ *struct{}) (*service.UserView, error) {
	id, err := ez.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	if err := notSelf(c, id, "you cannot change your own administrator privileges"); err != nil {
		return nil, err
	}
	v, err := h.svc.ToggleAdmin(c.Request.Context(), id)
	if err != nil {
		return nil, mapErr(err, "could not change administrator status")
	}
	return v, nil
}

// notSelf 管理员不能对自己执行的操作
func notSelf(c *gin.Context, id uint, detail string) error {
	u, err := caller(c)
	if err != nil {
		return err
	}
	if u.ID == id {
		return ez.BadRequest("operation not allowed", detail)
	}
	return nil
}
