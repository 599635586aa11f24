package repo

import (
	"context"
	"errors"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gin-gorm-accounts/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

// Migrate 建表 / 补索引
func (r *UserRepo) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&domain.User{})
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindMany(ctx context.Context, f domain.UserFilter, p domain.Page, s domain.Sort) ([]domain.User, int64, error) {
	p = p.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Scopes(r.filter(f)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := make([]domain.User, 0, p.Limit)
	err := r.db.WithContext(ctx).
		Scopes(r.filter(f)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: s.Column()}, Desc: s.Desc}).
		Limit(p.Limit).
		Offset(p.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) Count(ctx context.Context, f domain.UserFilter) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Scopes(r.filter(f)).Count(&n).Error
	return n, err
}

// Update 只写入传入的列（map 方式才能写零值），updated_at 由 GORM 刷新
func (r *UserRepo) Update(ctx context.Context, id uint, fields map[string]any) (*domain.User, error) {
	if len(fields) > 0 {
		err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields).Error
		if err != nil {
			if isDupKey(err) {
				return nil, domain.ErrEmailTaken
			}
			return nil, err
		}
	}
	// mysql 的 RowsAffected 不含值未变的行，统一回读判断是否存在
	return r.FindByID(ctx, id)
}

func (r *UserRepo) filter(f domain.UserFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.IsActive != nil {
			q = q.Where("is_active = ?", *f.IsActive)
		}
		if f.IsAdmin != nil {
			q = q.Where("is_admin = ?", *f.IsAdmin)
		}
		if s := f.Search; s != "" {
			like := "%" + likeEscaper.Replace(s) + "%"
			// 分组条件，避免 OR 吃掉前面的 AND
			q = q.Where(
				r.db.Where("first_name LIKE ? ESCAPE '!'", like).
					Or("last_name LIKE ? ESCAPE '!'", like).
					Or("email LIKE ? ESCAPE '!'", like),
			)
		}
		return q
	}
}

// 转义符用 '!'：反斜杠在 mysql 字符串字面量里还要再转义一次
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var myErr *mysqldrv.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
