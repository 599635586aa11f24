package service

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"gin-gorm-accounts/internal/core/auth"
	"gin-gorm-accounts/internal/core/timezone"
	"gin-gorm-accounts/internal/repo"
	"gin-gorm-accounts/internal/testutil"
	"gin-gorm-accounts/pkg/utils"
)

type fixture struct {
	repo  *repo.UserRepo
	jwt   *auth.JWTer
	auth  *AuthService
	users *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	r := repo.NewUserRepo(testutil.NewSQLite(t))
	hasher := utils.NewBcryptHasher(bcrypt.MinCost)
	tz := timezone.MustNew("Europe/Madrid")
	j := auth.NewJWTer("test-secret", "accounts-test")
	return &fixture{
		repo:  r,
		jwt:   j,
		auth:  NewAuthService(r, hasher, j, tz),
		users: NewUserService(r, hasher, tz),
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
