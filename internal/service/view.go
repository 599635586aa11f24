package service

import (
	"time"

	"gin-gorm-accounts/internal/core/timezone"
	"gin-gorm-accounts/internal/domain"
)

// UserView 对外返回的用户；没有密码字段
type UserView struct {
	ID                 uint      `json:"id"`
	Email              string    `json:"email"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Phone              *string   `json:"phone"`
	IsActive           bool      `json:"isActive"`
	IsAdmin            bool      `json:"isAdmin"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	CreatedAtFormatted string    `json:"createdAtFormatted"`
	UpdatedAtFormatted string    `json:"updatedAtFormatted"`
}

func ToView(u *domain.User, tz *timezone.Formatter) UserView {
	return UserView{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Phone:              u.Phone,
		IsActive:           u.IsActive,
		IsAdmin:            u.IsAdmin,
		CreatedAt:          tz.In(u.CreatedAt),
		UpdatedAt:          tz.In(u.UpdatedAt),
		CreatedAtFormatted: tz.FormatForUser(u.CreatedAt),
		UpdatedAtFormatted: tz.FormatForUser(u.UpdatedAt),
	}
}

func ToViews(us []domain.User, tz *timezone.Formatter) []UserView {
	out := make([]UserView, 0, len(us))
	for i := range us {
		out = append(out, ToView(&us[i], tz))
	}
	return out
}
