package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ストレージドライバー名。
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Storage
	DataDir       string
	StorageDriver string

	// Session
	SessionMaxAge   int
	JanitorInterval time.Duration

	// Upload
	UploadEndpoint string
	UploadAPIKey   string
	UploadTimeout  time.Duration
	UploadMaxSize  int64

	// Rate Limit
	RateLimitGeneral int
	RateLimitUpload  int

	// Checkout
	DeliveryFee   float64
	TaxRate       float64
	PromoCode     string
	PromoDiscount float64

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 未知のストレージドライバーが指定された場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DataDir = getEnvString("DATA_DIR", "./data")
	cfg.StorageDriver = getEnvString("STORAGE_DRIVER", DriverFile)
	switch cfg.StorageDriver {
	case DriverFile, DriverSQLite:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER: %q (want %q or %q)", cfg.StorageDriver, DriverFile, DriverSQLite)
	}

	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.JanitorInterval = getEnvDuration("JANITOR_INTERVAL", 10*time.Minute)

	cfg.UploadEndpoint = getEnvString("UPLOAD_ENDPOINT", "")
	cfg.UploadAPIKey = getEnvString("UPLOAD_API_KEY", "")
	cfg.UploadTimeout = getEnvDuration("UPLOAD_TIMEOUT", 10*time.Second)
	cfg.UploadMaxSize = getEnvInt64("UPLOAD_MAX_SIZE", 5242880)

	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitUpload = getEnvInt("RATE_LIMIT_UPLOAD", 10)

	cfg.DeliveryFee = getEnvFloat("DELIVERY_FEE", 2.99)
	cfg.TaxRate = getEnvFloat("TAX_RATE", 0.08)
	cfg.PromoCode = getEnvString("PROMO_CODE", "SAVE10")
	cfg.PromoDiscount = getEnvFloat("PROMO_DISCOUNT", 0.10)

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// SQLitePath はSQLiteドライバー使用時のデータベースファイルパスを返す。
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "salvore.db")
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
