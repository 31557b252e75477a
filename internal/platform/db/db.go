package db

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	cfgpkg "github.com/fatflowers/saasgen/pkg/config"
	gormzap "github.com/fatflowers/saasgen/pkg/gormlog"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Dialect picks the gorm dialector for the configured driver.
func Dialect(cfg cfgpkg.DBConfig) (gorm.Dialector, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn is empty (set database.dsn or APP_DATABASE_DSN)")
	}
	switch cfg.Driver {
	case "", DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	case DriverMySQL:
		return mysql.Open(cfg.DSN), nil
	case DriverSQLite:
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q (want postgres, mysql or sqlite)", cfg.Driver)
	}
}

func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	dialector, err := Dialect(cfg.Database)
	if err != nil {
		l.Errorw("invalid database config", "err", err)
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormzap.New(l, gormzap.ParseLevel(cfg.Database.LogLevel)),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		l.Errorf("failed to connect database: %v", err)
		return nil, fmt.Errorf("connect %s database: %w", dialector.Name(), err)
	}
	l.Infow("connected to database", "driver", dialector.Name())
	return db, nil
}

var Module = fx.Options(
	fx.Provide(NewDB),
	fx.Invoke(registerDBClose),
)

// registerDBClose ensures the underlying *sql.DB is closed on shutdown
func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing database connection pool")
			return sqlDB.Close()
		},
	})
}
