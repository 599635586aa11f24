package service

// PasswordHasher 单向哈希；实现见 pkg/utils.BcryptHasher
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) bool
}

// TokenIssuer 实现见 core/auth.JWTer
type TokenIssuer interface {
	Issue(uid uint) (string, error)
}
