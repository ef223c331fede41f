package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port       int
	DBDSN      string
	JWTSecret  string
	JWTTTL     time.Duration
	CORSOrigin string
	UploadDir  string
	// HistoryPageSize caps a single history read.
	HistoryPageSize int
}

func Load() Config {
	cfg := Config{
		Port:            9000,
		DBDSN:           os.Getenv("DB_DSN"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTTTL:          7 * 24 * time.Hour,
		CORSOrigin:      "http://localhost:5173",
		UploadDir:       "public/uploads",
		HistoryPageSize: 200,
	}

	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("JWT_TTL_HOURS"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h > 0 {
			cfg.JWTTTL = time.Duration(h) * time.Hour
		}
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		cfg.CORSOrigin = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("HISTORY_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryPageSize = n
		}
	}
	return cfg
}
