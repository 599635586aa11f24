package service

import (
	"context"

	"gin-gorm-accounts/internal/core/cache"
	"gin-gorm-accounts/internal/domain"
)

const statsCacheKey = "users:stats"

// statsInvalidating 所有写入口共用：Create/Update 成功后删除统计缓存
type statsInvalidating struct {
	domain.UserRepository
	c *cache.Cache
}

// InvalidateStatsOn 包装仓储；注册、后台管理、命令行都应使用包装后的仓储
func InvalidateStatsOn(users domain.UserRepository, c *cache.Cache) domain.UserRepository {
	if c == nil {
		return users
	}
	if w, ok := users.(*statsInvalidating); ok && w.c == c {
		return users
	}
	return &statsInvalidating{UserRepository: users, c: c}
}

func (r *statsInvalidating) Create(ctx context.Context, u *domain.User) error {
	if err := r.UserRepository.Create(ctx, u); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *statsInvalidating) Update(ctx context.Context, id uint, fields map[string]any) (*domain.User, error) {
	u, err := r.UserRepository.Update(ctx, id, fields)
	if err == nil && len(fields) > 0 {
		r.invalidate(ctx)
	}
	return u, err
}

func (r *statsInvalidating) invalidate(ctx context.Context) {
	// 失败时等 TTL 过期
	_ = r.c.Invalidate(ctx, statsCacheKey)
}
