package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "JWT_TTL_HOURS", "CORS_ORIGIN", "UPLOAD_DIR", "HISTORY_PAGE_SIZE"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "public/uploads", cfg.UploadDir)
	assert.Equal(t, 200, cfg.HistoryPageSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "8123")
	t.Setenv("JWT_TTL_HOURS", "24")
	t.Setenv("HISTORY_PAGE_SIZE", "50")

	cfg := Load()
	assert.Equal(t, 8123, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 50, cfg.HistoryPageSize)
}

func TestLoadIgnoresInvalidOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "not-a-port")
	t.Setenv("HISTORY_PAGE_SIZE", "-5")

	cfg := Load()
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 200, cfg.HistoryPageSize)
}
