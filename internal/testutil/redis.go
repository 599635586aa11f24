package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"gin-gorm-accounts/internal/core/cache"
)

// NewRedis starts an in-process Redis server and returns a cache connected to it.
// Both are closed when the test finishes.
func NewRedis(t testing.TB) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}
