package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"gin-gorm-accounts/internal/core/auth"
	"gin-gorm-accounts/internal/core/cache"
	"gin-gorm-accounts/internal/core/config"
	"gin-gorm-accounts/internal/core/database"
	"gin-gorm-accounts/internal/core/logger"
	"gin-gorm-accounts/internal/core/server"
	"gin-gorm-accounts/internal/core/timezone"
	"gin-gorm-accounts/internal/repo"
	"gin-gorm-accounts/internal/service"
	"gin-gorm-accounts/internal/transport/http/router"
	"gin-gorm-accounts/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	log, cleanup := newLogger(cfg)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	// 时区（非法时区直接退出）
	tz, err := timezone.New(cfg.App.Timezone)
	if err != nil {
		log.Fatal("timezone", zap.Error(err))
	}
	log.Info("timezone configured",
		zap.String("timezone", tz.Name()),
		zap.String("now", tz.FormatForUser(tz.Now())),
	)

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log, tz)
	log.Info("database connected",
		zap.String("driver", cfg.DB.Driver),
		zap.String("host", cfg.DB.Host),
		zap.Int("port", cfg.DB.Port),
		zap.String("name", cfg.DB.Name),
	)

	userRepo := repo.NewUserRepo(db)
	if cfg.DB.AutoMigrate {
		if err := userRepo.Migrate(context.Background()); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 依赖显式构造
	jwter := auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer)
	hasher := utils.NewBcryptHasher(cfg.Auth.BcryptCost)
	authSvc := service.NewAuthService(userRepo, hasher, jwter, tz)
	userSvc := service.NewUserService(userRepo, hasher, tz)

	// 统计缓存（可选；redis 不可用时不启用）
	if cfg.StatsCacheEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		c, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, stats cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			defer c.Close()
			authSvc.WithStatsCache(c)
			userSvc.WithStatsCache(c, time.Duration(cfg.Redis.StatsTTLSec)*time.Second)
			log.Info("stats cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 路由
	r := router.NewAPIEngine(router.Deps{
		Log:   log,
		HTTP:  cfg.App.HTTP,
		JWT:   jwter,
		Users: userRepo,
		Auth:  authSvc,
		User:  userSvc,
		TZ:    tz,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("accounts api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
	)

	// 异步启动
	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("accounts api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭：先停止接收、等在途请求，再关连接池
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		log.Warn("db close", zap.Error(err))
	}
	log.Info("accounts api stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	if cfg.Log.File.Enable {
		return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		})
	}
	return logger.New(cfg.Log.Level, cfg.Log.JSON)
}

func mustOpenDB(cfg *config.Config, l *zap.Logger, tz *timezone.Formatter) *gorm.DB {
	sqlLog, err := logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		l.Fatal("gorm logger", zap.Error(err))
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Host:               cfg.DB.Host,
		Port:               cfg.DB.Port,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		Name:               cfg.DB.Name,
		SSLMode:            cfg.DB.SSLMode,
		TimeZone:           tz.Name(),
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		LogWriter:          sqlLog,
		NowFunc:            tz.Now,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err), zap.String("dsn", database.MaskDSN(cfg.DB.DSN)))
	}
	return db
}
