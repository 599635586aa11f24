package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"gin-gorm-accounts/internal/core/cache"
	"gin-gorm-accounts/internal/core/timezone"
	"gin-gorm-accounts/internal/domain"
)

type ListQuery struct {
	Filter domain.UserFilter
	Page   domain.Page
	Sort   domain.Sort
}

type UserList struct {
	Users      []UserView        `json:"users"`
	Pagination domain.Pagination `json:"pagination"`
}

type AdminCreateInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
	IsAdmin   bool
}

// AdminUpdateInput nil 字段保持不变
type AdminUpdateInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	IsActive  *bool
	IsAdmin   *bool
}

// ProfileInput 本人只能改这三项
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

type Stats struct {
	Total            int64 `json:"total"`
	Active           int64 `json:"active"`
	Inactive         int64 `json:"inactive"`
	Admins           int64 `json:"admins"`
	ActivePercentage int   `json:"activePercentage"`
	AdminPercentage  int   `json:"adminPercentage"`
}

type UserService struct {
	users  domain.UserRepository
	hasher PasswordHasher
	tz     *timezone.Formatter

	cache    *cache.Cache
	statsTTL time.Duration
}

func NewUserService(users domain.UserRepository, hasher PasswordHasher, tz *timezone.Formatter) *UserService {
	return &UserService{users: users, hasher: hasher, tz: tz}
}

// WithStatsCache 统计结果走 redis 缓存；本服务的写操作经 InvalidateStatsOn 失效
func (s *UserService) WithStatsCache(c *cache.Cache, ttl time.Duration) *UserService {
	s.cache = c
	s.statsTTL = ttl
	s.users = InvalidateStatsOn(s.users, c)
	return s
}

func (s *UserService) List(ctx context.Context, q ListQuery) (*UserList, error) {
	page := q.Page.Normalize()
	users, total, err := s.users.FindMany(ctx, q.Filter, page, q.Sort)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &UserList{
		Users:      ToViews(users, s.tz),
		Pagination: domain.NewPagination(total, page),
	}, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*UserView, error) {
	u, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	v := ToView(u, s.tz)
	return &v, nil
}

func (s *UserService) AdminCreate(ctx context.Context, in AdminCreateInput) (*UserView, error) {
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		IsActive:     true,
		IsAdmin:      in.IsAdmin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	v := ToView(u, s.tz)
	return &v, nil
}

func (s *UserService) AdminUpdate(ctx context.Context, id uint, in AdminUpdateInput) (*UserView, error) {
	u, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Email != nil && *in.Email != u.Email {
		other, err := s.users.FindByEmail(ctx, *in.Email)
		if err != nil {
			return nil, fmt.Errorf("find user by email: %w", err)
		}
		if other != nil && other.ID != id {
			return nil, domain.ErrEmailTaken
		}
		fields["email"] = *in.Email
	}
	if in.FirstName != nil {
		fields["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		fields["last_name"] = *in.LastName
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if in.IsAdmin != nil {
		fields["is_admin"] = *in.IsAdmin
	}
	return s.apply(ctx, id, fields)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*UserView, error) {
	if _, err := s.mustFind(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.FirstName != nil {
		fields["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		fields["last_name"] = *in.LastName
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	return s.apply(ctx, id, fields)
}

func (s *UserService) ChangePassword(ctx context.Context, id uint, current, next string) error {
	u, err := s.mustFind(ctx, id)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, u.PasswordHash) {
		return domain.ErrCurrentPasswordIncorrect
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	_, err = s.apply(ctx, id, map[string]any{"password_hash": hash})
	return err
}

// SoftDelete 只置 is_active=false，可重复调用
func (s *UserService) SoftDelete(ctx context.Context, id uint) error {
	if _, err := s.mustFind(ctx, id); err != nil {
		return err
	}
	_, err := s.apply(ctx, id, map[string]any{"is_active": false})
	return err
}

func (s *UserService) Reactivate(ctx context.Context, id uint) (*UserView, error) {
	if _, err := s.mustFind(ctx, id); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, map[string]any{"is_active": true})
}

func (s *UserService) ToggleAdmin(ctx context.Context, id uint) (*UserView, error) {
	u, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, id, map[string]any{"is_admin": !u.IsAdmin})
}

func (s *UserService) Stats(ctx context.Context) (*Stats, error) {
	if s.cache == nil {
		return s.loadStats(ctx)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, statsCacheKey, s.statsTTL, s.loadStats)
}

func (s *UserService) loadStats(ctx context.Context) (*Stats, error) {
	total, err := s.users.Count(ctx, domain.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	yes := true
	active, err := s.users.Count(ctx, domain.UserFilter{IsActive: &yes})
	if err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}
	admins, err := s.users.Count(ctx, domain.UserFilter{IsAdmin: &yes})
	if err != nil {
		return nil, fmt.Errorf("count admin users: %w", err)
	}
	return &Stats{
		Total:            total,
		Active:           active,
		Inactive:         total - active,
		Admins:           admins,
		ActivePercentage: percent(active, total),
		AdminPercentage:  percent(admins, total),
	}, nil
}

func percent(part, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func (s *UserService) mustFind(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *UserService) apply(ctx context.Context, id uint, fields map[string]any) (*UserView, error) {
	u, err := s.users.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	// 读写之间被并发改没了
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	v := ToView(u, s.tz)
	return &v, nil
}
