package handler

import (
	"errors"

	"gin-gorm-accounts/internal/domain"
	"gin-gorm-accounts/internal/transport/http/ez"
)

// mapErr 领域错误 → HTTP 错误；其余按 500 处理，fallback 是给调用方看的说明
func mapErr(err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return ez.NotFound("user not found", "no user exists with the given id")
	case errors.Is(err, domain.ErrEmailTaken):
		return ez.Conflict("duplicate email", err.Error())
	case errors.Is(err, domain.ErrCurrentPasswordIncorrect):
		return ez.BadRequest("incorrect password", err.Error())
	default:
		return ez.Internal(fallback, err)
	}
}
