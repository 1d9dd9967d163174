// Package config loads settings for the server and the ordersync CLI from the
// environment, after reading an optional .env file.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shockerli/cvt"
)

// Config holds every setting. The server reads the Server and Database
// groups; ordersync reads Client and AI.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Client   ClientConfig
	AI       AIConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	JWTSecret      string // bearer auth is enabled when non-empty
}

type DatabaseConfig struct {
	URL        string
	Migrations bool // apply embedded migrations on server start
}

// ClientConfig configures the REST client used by ordersync.
type ClientConfig struct {
	BaseURL      string
	Token        string
	EnterpriseID int
	Timeout      time.Duration
}

type AIConfig struct {
	APIKey string
	Model  string
}

// Load reads .env (if present) then the environment.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "")),
			JWTSecret:      getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			URL:        getEnv("DATABASE_URL", ""),
			Migrations: getEnvBool("MIGRATIONS", false),
		},
		Client: ClientConfig{
			BaseURL:      strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
			Token:        getEnv("API_TOKEN", ""),
			EnterpriseID: getEnvInt("ENTERPRISE_ID", 0),
			Timeout:      getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		},
		AI: AIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", ""),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := cvt.IntE(v); err == nil {
			return i
		}
	}
	return def
}

// getEnvBool accepts "1", "true" and "yes".
func getEnvBool(key string, def bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

// getEnvDuration accepts Go durations ("45s") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := cvt.IntE(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
