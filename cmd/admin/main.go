// Command admin bootstraps an administrator account.
//
// The API only lets administrators grant admin rights, so the first one has to
// be created out of band:
//
//	admin -email boss@example.com -password s3cret -first-name Ada -last-name Lovelace
//
// When the email already exists the account is promoted and reactivated instead.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gin-gorm-accounts/internal/core/cache"
	"gin-gorm-accounts/internal/core/config"
	"gin-gorm-accounts/internal/core/database"
	"gin-gorm-accounts/internal/core/logger"
	"gin-gorm-accounts/internal/core/timezone"
	"gin-gorm-accounts/internal/domain"
	"gin-gorm-accounts/internal/repo"
	"gin-gorm-accounts/internal/service"
	"gin-gorm-accounts/pkg/utils"
)

type opts struct {
	email     string
	password  string
	firstName string
	lastName  string
	phone     string
}

func main() {
	var o opts
	flag.StringVar(&o.email, "email", "", "admin email (required)")
	flag.StringVar(&o.password, "password", "", "password, required when the account does not exist")
	flag.StringVar(&o.firstName, "first-name", "", "first name, required when the account does not exist")
	flag.StringVar(&o.lastName, "last-name", "", "last name, required when the account does not exist")
	flag.StringVar(&o.phone, "phone", "", "optional phone number")
	flag.Parse()

	if strings.TrimSpace(o.email) == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)

	code := 0
	if err := run(cfg, log, o); err != nil {
		log.Error("bootstrap admin failed", zap.Error(err))
		code = 1
	}
	cleanup()
	os.Exit(code)
}

func run(cfg *config.Config, log *zap.Logger, o opts) error {
	tz, err := timezone.New(cfg.App.Timezone)
	if err != nil {
		return err
	}
	sqlLog, err := logger.ToStdLogger(log.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		return err
	}
	db, err := database.NewGorm(database.Opts{
		Driver:   cfg.DB.Driver,
		DSN:      cfg.DB.DSN,
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		Username: cfg.DB.Username,
		Password: cfg.DB.Password,
		Name:     cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		TimeZone: tz.Name(),
		LogLevel: cfg.DB.LogLevel,
		// 单次命令，一个连接足够
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogWriter:    sqlLog,
		NowFunc:      tz.Now,
	})
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := repo.NewUserRepo(db)
	if cfg.DB.AutoMigrate {
		if err := users.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	writes, closeCache := statsAware(ctx, cfg, log, users)
	defer closeCache()
	svc := service.NewUserService(writes, utils.NewBcryptHasher(cfg.Auth.BcryptCost), tz)

	v, created, err := ensureAdmin(ctx, writes, svc, o)
	if err != nil {
		return err
	}
	action := "promoted"
	if created {
		action = "created"
	}
	log.Info("admin "+action,
		zap.Uint("id", v.ID),
		zap.String("email", v.Email),
		zap.Bool("active", v.IsActive),
	)
	return nil
}

// statsAware API 开了统计缓存时，命令行的写入同样要让缓存失效
func statsAware(ctx context.Context, cfg *config.Config, log *zap.Logger, users domain.UserRepository) (domain.UserRepository, func()) {
	if !cfg.StatsCacheEnabled() {
		return users, func() {}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	c, err := cache.Connect(pingCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn("redis unavailable, stats cache not invalidated", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		return users, func() {}
	}
	return service.InvalidateStatsOn(users, c), func() { _ = c.Close() }
}

// ensureAdmin 不存在则创建；存在则设为管理员并恢复激活
func ensureAdmin(ctx context.Context, users domain.UserRepository, svc *service.UserService, o opts) (*service.UserView, bool, error) {
	email := strings.TrimSpace(o.email)
	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		yes := true
		v, err := svc.AdminUpdate(ctx, existing.ID, service.AdminUpdateInput{IsAdmin: &yes, IsActive: &yes})
		return v, false, err
	}

	if o.password == "" || strings.TrimSpace(o.firstName) == "" || strings.TrimSpace(o.lastName) == "" {
		return nil, false, errors.New("-password, -first-name and -last-name are required to create a new account")
	}
	in := service.AdminCreateInput{
		Email:     email,
		Password:  o.password,
		FirstName: strings.TrimSpace(o.firstName),
		LastName:  strings.TrimSpace(o.lastName),
		IsAdmin:   true,
	}
	if p := strings.TrimSpace(o.phone); p != "" {
		in.Phone = &p
	}
	v, err := svc.AdminCreate(ctx, in)
	return v, true, err
}
