package database

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"vapestore-pos/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConnectDB opens the Postgres pool. Callers run Migrate separately.
func ConnectDB(dsn string, log *logger.Logger, level string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  withUTC(dsn),
		PreferSimpleProtocol: true, // Disables implicit prepared statements for pgbouncer transaction mode
	}), Config(log, level))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("database connection established")
	return db, nil
}

// withUTC pins the session time zone so calendar-day columns compare in UTC
func withUTC(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("timezone", "UTC")
		u.RawQuery = q.Encode()
		return u.String()
	}
	if strings.Contains(strings.ToLower(dsn), "timezone=") {
		return dsn
	}
	return dsn + " TimeZone=UTC"
}
