package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aldenair/storefront-backend/config"
	appLogger "github.com/aldenair/storefront-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

const (
	maxIdleConns       = 10
	maxOpenConns       = 50
	connMaxLifetime    = 30 * time.Minute
	slowQueryThreshold = 200 * time.Millisecond
)

// Initialize opens the Postgres connection pool
func Initialize(cfg *config.DatabaseConfig) error {
	appLogger.Info("Connecting to database", appLogger.Fields{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.DBName,
		"user":     cfg.User,
	})

	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: queryLogger{slow: slowQueryThreshold},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	appLogger.Info("Database connection established successfully", appLogger.Fields{
		"max_idle_conns": maxIdleConns,
		"max_open_conns": maxOpenConns,
	})
	return nil
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}

// queryLogger sends gorm's slow queries and failures to the app logger
// instead of stdout. Not-found lookups are expected and stay quiet.
type queryLogger struct {
	slow time.Duration
}

func (l queryLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return l }

func (l queryLogger) Info(_ context.Context, msg string, args ...interface{}) {
	appLogger.Debug(fmt.Sprintf(msg, args...))
}

func (l queryLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	appLogger.Warn(fmt.Sprintf(msg, args...))
}

func (l queryLogger) Error(_ context.Context, msg string, args ...interface{}) {
	appLogger.Error(fmt.Sprintf(msg, args...), nil)
}

func (l queryLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		appLogger.Error("Query failed", err, appLogger.Fields{
			"sql":        sql,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	case l.slow > 0 && elapsed > l.slow:
		sql, rows := fc()
		appLogger.Warn("Slow query", appLogger.Fields{
			"sql":        sql,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}
}
