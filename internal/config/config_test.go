package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/vapestore")
	t.Setenv("PORT", "")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "postgres://localhost/vapestore", cfg.DatabaseURL)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 23, cfg.ShiftCutoffHour)
	assert.Equal(t, "200", cfg.DefaultHourlyRate.String())
	assert.NotNil(t, cfg.Location)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/vapestore")
	t.Setenv("PORT", "8080")
	t.Setenv("SHIFT_CUTOFF_HOUR", "22")
	t.Setenv("DEFAULT_HOURLY_RATE", "250.50")
	t.Setenv("STORE_TIMEZONE", "UTC")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 22, cfg.ShiftCutoffHour)
	assert.Equal(t, "250.5", cfg.DefaultHourlyRate.String())
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/vapestore")
	t.Setenv("LOG_LEVEL", "verbose")

	_, _, err := Load()
	assert.Error(t, err)
}
