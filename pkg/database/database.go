package database

import (
	"time"

	"vapestore-pos/internal/model"
	"vapestore-pos/pkg/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// zapWriter routes gorm's printf-style logger into zap
type zapWriter struct {
	log *logger.Logger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Infof(format, args...)
}

// Config returns the gorm settings shared by production and tests.
// Timestamps are always written in UTC.
func Config(log *logger.Logger, level string) *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.New(zapWriter{log.WithComponent("gorm")}, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
		NowFunc:     func() time.Time { return time.Now().UTC() },
		PrepareStmt: false,
		// Unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	}
}

func gormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "info", "warn":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}

// Migrate creates or updates every table, parents first
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.UserSettings{},
		&model.Brand{},
		&model.Category{},
		&model.Product{},
		&model.Sale{},
		&model.SaleItem{},
		&model.StockMovement{},
		&model.Activity{},
		&model.WorkSession{},
	)
}
