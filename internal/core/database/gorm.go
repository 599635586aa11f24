package database

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrUnsupportedDriver = errors.New("unsupported db driver")

type Opts struct {
	Driver string
	// DSN 非空时直接使用，否则由 Host/Port/... 拼接
	DSN                string
	Host               string
	Port               int
	Username           string
	Password           string
	Name               string
	SSLMode            string
	TimeZone           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
	// LogWriter 为空时写 stdout
	LogWriter logger.Writer
	NowFunc   func() time.Time
}

func NewGorm(o Opts) (*gorm.DB, error) {
	dsn, err := BuildDSN(o)
	if err != nil {
		return nil, err
	}

	var dial gorm.Dialector
	switch o.Driver {
	case "postgres":
		dial = postgres.Open(dsn)
	case "mysql":
		dial = mysql.Open(dsn)
	case "sqlite":
		dial = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, o.Driver)
	}

	w := o.LogWriter
	if w == nil {
		w = log.New(os.Stdout, "", log.LstdFlags)
	}
	gl := logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  parseLogLevel(o.LogLevel),
		IgnoreRecordNotFoundError: true,
	})

	cfg := &gorm.Config{
		Logger:         gl,
		TranslateError: true,
	}
	if o.NowFunc != nil {
		cfg.NowFunc = o.NowFunc
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if o.Driver == "sqlite" {
		// 内存库每个连接各自一份，必须单连接且常驻
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(o.MaxOpenConns)
		sqlDB.SetMaxIdleConns(o.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	}
	db = db.Session(&gorm.Session{
		PrepareStmt:            true, // 预编译缓存，提高 QPS
		SkipDefaultTransaction: true, // 单行读写，不需要隐式事务
	})
	return db, nil
}

// Close 释放连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func parseLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// BuildDSN 按驱动拼接连接串
func BuildDSN(o Opts) (string, error) {
	if dsn := strings.TrimSpace(o.DSN); dsn != "" {
		return dsn, nil
	}
	switch o.Driver {
	case "postgres":
		parts := []string{
			"host=" + o.Host,
			"port=" + strconv.Itoa(o.Port),
			"user=" + o.Username,
			"dbname=" + o.Name,
		}
		if o.Password != "" {
			parts = append(parts, "password="+quotePG(o.Password))
		}
		if o.SSLMode != "" {
			parts = append(parts, "sslmode="+o.SSLMode)
		}
		if o.TimeZone != "" {
			parts = append(parts, "TimeZone="+o.TimeZone)
		}
		return strings.Join(parts, " "), nil
	case "mysql":
		c := mysqldrv.NewConfig()
		c.User = o.Username
		c.Passwd = o.Password
		c.Net = "tcp"
		c.Addr = net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
		c.DBName = o.Name
		c.ParseTime = true
		c.Params = map[string]string{"charset": "utf8mb4"}
		if o.TimeZone != "" {
			loc, err := time.LoadLocation(o.TimeZone)
			if err != nil {
				return "", fmt.Errorf("mysql dsn timezone: %w", err)
			}
			c.Loc = loc
		}
		return c.FormatDSN(), nil
	case "sqlite":
		name := o.Name
		if name == "" {
			name = "accounts.db"
		}
		return "file:" + name + "?_pragma=case_sensitive_like(1)", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, o.Driver)
	}
}

func quotePG(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// MaskDSN 打日志前隐藏密码
func MaskDSN(dsn string) string {
	// key=value 形式（postgres）
	if i := strings.Index(dsn, "password="); i >= 0 {
		end := strings.IndexByte(dsn[i:], ' ')
		if end < 0 {
			return dsn[:i] + "password=****"
		}
		return dsn[:i] + "password=****" + dsn[i+end:]
	}
	// user:pass@ 形式（mysql / URL）
	if at := strings.LastIndex(dsn, "@"); at > 0 {
		start := strings.LastIndex(dsn[:at], "//") + 2
		if start < 2 {
			start = 0
		}
		if colon := strings.Index(dsn[start:at], ":"); colon >= 0 {
			return dsn[:start+colon+1] + "****" + dsn[at:]
		}
	}
	return dsn
}
