package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr         string
	Port               string
	DatabaseURL        string
	DatabasePath       string
	SessionSecret      string
	GinMode            string
	LogMode            string
	UploadDir          string
	UploadURLPath      string
	AdminUsername      string
	AdminPassword      string
	CORSAllowedOrigins []string
	SecureCookies      bool
	SeedFile           string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	return load(viper.New())
}

func load(v *viper.Viper) AppConfig {
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_PATH", "centaura.db")
	v.SetDefault("SESSION_SECRET", "centaura-dev-secret")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_MODE", "production")
	v.SetDefault("UPLOAD_DIR", "web/static/uploads")
	v.SetDefault("UPLOAD_URL_PATH", "/static/uploads")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("SECURE_COOKIES", false)
	v.SetDefault("SEED_FILE", "content_seed/homepage_initial.json")

	port := stringOr(v, "PORT", "8080")

	listenAddr := strings.TrimSpace(v.GetString("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	return AppConfig{
		ListenAddr:         listenAddr,
		Port:               port,
		DatabaseURL:        strings.TrimSpace(v.GetString("DATABASE_URL")),
		DatabasePath:       stringOr(v, "DATABASE_PATH", "centaura.db"),
		SessionSecret:      stringOr(v, "SESSION_SECRET", "centaura-dev-secret"),
		GinMode:            stringOr(v, "GIN_MODE", "release"),
		LogMode:            stringOr(v, "LOG_MODE", "production"),
		UploadDir:          stringOr(v, "UPLOAD_DIR", "web/static/uploads"),
		UploadURLPath:      strings.TrimRight(stringOr(v, "UPLOAD_URL_PATH", "/static/uploads"), "/"),
		AdminUsername:      strings.TrimSpace(v.GetString("ADMIN_USERNAME")),
		AdminPassword:      strings.TrimSpace(v.GetString("ADMIN_PASSWORD")),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		SecureCookies:      v.GetBool("SECURE_COOKIES"),
		SeedFile:           stringOr(v, "SEED_FILE", "content_seed/homepage_initial.json"),
	}
}

// DatabaseDSN returns the connection string handed to db.Open.
// A postgres DATABASE_URL takes precedence over the sqlite file path.
func (c AppConfig) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

// stringOr 处理环境变量被显式设置为空白字符串的情况。
func stringOr(v *viper.Viper, key, fallback string) string {
	value := strings.TrimSpace(v.GetString(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		items = append(items, trimmed)
	}
	return items
}
