package service

import (
	"context"
	"fmt"

	"gin-gorm-accounts/internal/core/cache"
	"gin-gorm-accounts/internal/core/timezone"
	"gin-gorm-accounts/internal/domain"
)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	AccessToken string   `json:"accessToken"`
	User        UserView `json:"user"`
}

type AuthService struct {
	users  domain.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	tz     *timezone.Formatter
}

func NewAuthService(users domain.UserRepository, hasher PasswordHasher, tokens TokenIssuer, tz *timezone.Formatter) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, tz: tz}
}

// WithStatsCache 注册新用户时失效统计缓存
func (s *AuthService) WithStatsCache(c *cache.Cache) *AuthService {
	s.users = InvalidateStatsOn(s.users, c)
	return s
}

// Register 邮箱已存在（无论是否停用）返回 ErrEmailTaken
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
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
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Login 不检查 IsActive；停用用户在鉴权中间件处被拦下
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	if !s.hasher.Verify(in.Password, u.PasswordHash) {
		return nil, domain.ErrInvalidPassword
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *domain.User) (*AuthResult, error) {
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{AccessToken: tok, User: ToView(u, s.tz)}, nil
}
