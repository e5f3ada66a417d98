package config

import (
	"os"
	"time"
)

type Config struct {
	// Environment
	AppEnv string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Payment provider
	ProviderAccessToken string
	ProviderBaseURL     string
	ProviderLocationID  string
	ProviderVersion     string
	ProviderTimeout     time.Duration

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		AppEnv: getEnv("APP_ENV", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "cardpay_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		AccessTokenTTL:  parseDuration(getEnv("ACCESS_TOKEN_TTL", "5m"), 5*time.Minute),
		RefreshTokenTTL: parseDuration(getEnv("REFRESH_TOKEN_TTL", "8760h"), 8760*time.Hour),

		ProviderAccessToken: getEnv("PROVIDER_ACCESS_TOKEN", ""),
		ProviderBaseURL:     getEnv("PROVIDER_BASE_URL", ""),
		ProviderLocationID:  getEnv("PROVIDER_LOCATION_ID", ""),
		ProviderVersion:     getEnv("PROVIDER_VERSION", "2024-10-17"),
		ProviderTimeout:     parseDuration(getEnv("PROVIDER_TIMEOUT", "15s"), 15*time.Second),

		Port:        getEnv("PORT", "7777"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) IsProd() bool {
	return c.AppEnv == "production"
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
