package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrEmailTaken               = errors.New("email already registered")
	ErrInvalidPassword          = errors.New("invalid password")
	ErrCurrentPasswordIncorrect = errors.New("current password incorrect")
)

// User 唯一持久化实体；只做软删（IsActive=false）
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Email        string    `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	FirstName    string    `gorm:"column:first_name;size:100;not null"`
	LastName     string    `gorm:"column:last_name;size:100;not null"`
	Phone        *string   `gorm:"size:20"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// UserFilter nil 表示不过滤
type UserFilter struct {
	IsActive *bool
	IsAdmin  *bool
	Search   string
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type Page struct {
	Page  int
	Limit int
}

// Normalize 页码从 1 开始；非法值回落到默认
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

type SortField string

const (
	SortByID        SortField = "id"
	SortByEmail     SortField = "email"
	SortByFirstName SortField = "firstName"
	SortByLastName  SortField = "lastName"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
)

// SortColumns 允许排序的字段 → 列名
var SortColumns = map[SortField]string{
	SortByID:        "id",
	SortByEmail:     "email",
	SortByFirstName: "first_name",
	SortByLastName:  "last_name",
	SortByCreatedAt: "created_at",
	SortByUpdatedAt: "updated_at",
}

type Sort struct {
	By   SortField
	Desc bool
}

// Column 未知字段按 id 排
func (s Sort) Column() string {
	if col, ok := SortColumns[s.By]; ok {
		return col
	}
	return "id"
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

func NewPagination(total int64, p Page) Pagination {
	p = p.Normalize()
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: pages,
		HasNext:    p.Page < pages,
		HasPrev:    p.Page > 1,
	}
}

// UserRepository Find*/Update 查不到时返回 (nil, nil)
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindMany(ctx context.Context, f UserFilter, p Page, s Sort) ([]User, int64, error)
	Count(ctx context.Context, f UserFilter) (int64, error)
	Update(ctx context.Context, id uint, fields map[string]any) (*User, error)
}
