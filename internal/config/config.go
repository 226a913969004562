package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"vapestore-pos/pkg/validator"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config is the process configuration, read once at startup
type Config struct {
	Port        string `validate:"required,numeric"`
	DatabaseURL string `validate:"required"`

	JWTSecret string        `validate:"required,min=16"`
	JWTTTL    time.Duration `validate:"gt=0"`

	LogLevel string `validate:"oneof=debug info warn error"`
	LogDev   bool

	Location          *time.Location  `validate:"required"`
	ShiftCutoffHour   int             `validate:"min=1,max=24"`
	DefaultHourlyRate decimal.Decimal `validate:"-"`

	UploadDir string `validate:"required"`
	BaseURL   string `validate:"required,url"`

	AdminEmail    string `validate:"required,email"`
	AdminPassword string `validate:"required,min=6"`
}

// Load reads .env (if present) and the environment. The returned bool reports
// whether a .env file was found.
func Load() (*Config, bool, error) {
	foundEnv := godotenv.Load() == nil

	cfg := &Config{
		Port:          getEnv("PORT", "3000"),
		DatabaseURL:   databaseURL(),
		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production-please"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogDev:        getEnvBool("LOG_DEV", false),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:3000"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@vapestore.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
	}

	cfg.JWTTTL = time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour
	cfg.ShiftCutoffHour = getEnvInt("SHIFT_CUTOFF_HOUR", 23)

	loc, err := time.LoadLocation(getEnv("STORE_TIMEZONE", "Europe/Moscow"))
	if err != nil {
		// Fallback to UTC+3 if timezone data not available
		loc = time.FixedZone("MSK", 3*60*60)
	}
	cfg.Location = loc

	rate, err := decimal.NewFromString(getEnv("DEFAULT_HOURLY_RATE", "200"))
	if err != nil {
		return nil, foundEnv, fmt.Errorf("DEFAULT_HOURLY_RATE: %w", err)
	}
	cfg.DefaultHourlyRate = rate

	if errs := validator.ValidateStruct(cfg); len(errs) > 0 {
		return nil, foundEnv, fmt.Errorf("invalid configuration: field '%s' failed on tag '%s'", errs[0].FailedField, errs[0].Tag)
	}
	if rate.IsNegative() {
		return nil, foundEnv, fmt.Errorf("DEFAULT_HOURLY_RATE must not be negative")
	}

	return cfg, foundEnv, nil
}

func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_NAME", "vapestore"),
		getEnv("DB_PORT", "5432"),
	)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
