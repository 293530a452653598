package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Auth      AuthConfig
	Assets    AssetsConfig
	Minio     MinioConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry int // in minutes
}

type AuthConfig struct {
	PasswordScheme string // plaintext or bcrypt
}

type AssetsConfig struct {
	Driver      string // fs or minio
	Dir         string
	PublicPath  string
	MaxFiles    int
	MaxUploadMB int
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// IsDevelopment reports whether the server runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

// AccessTokenTTL returns the configured access token lifetime.
func (c JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessExpiry) * time.Minute
}

// Window returns the rate limit window as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// MaxUploadBytes returns the multipart body limit in bytes.
func (c AssetsConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 60)
	viper.SetDefault("AUTH_PASSWORD_SCHEME", "bcrypt")
	viper.SetDefault("ASSETS_DRIVER", "fs")
	viper.SetDefault("ASSETS_DIR", "uploads")
	viper.SetDefault("ASSETS_PUBLIC_PATH", "/uploads")
	viper.SetDefault("ASSETS_MAX_FILES", 5)
	viper.SetDefault("ASSETS_MAX_UPLOAD_MB", 32)
	viper.SetDefault("MINIO_BUCKET", "storefront")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:     viper.GetString("SERVER_PORT"),
			Env:      viper.GetString("SERVER_ENV"),
			LogLevel: viper.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: viper.GetInt("JWT_ACCESS_EXPIRY"),
		},
		Auth: AuthConfig{
			PasswordScheme: strings.ToLower(viper.GetString("AUTH_PASSWORD_SCHEME")),
		},
		Assets: AssetsConfig{
			Driver:      strings.ToLower(viper.GetString("ASSETS_DRIVER")),
			Dir:         viper.GetString("ASSETS_DIR"),
			PublicPath:  viper.GetString("ASSETS_PUBLIC_PATH"),
			MaxFiles:    viper.GetInt("ASSETS_MAX_FILES"),
			MaxUploadMB: viper.GetInt("ASSETS_MAX_UPLOAD_MB"),
		},
		Minio: MinioConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
		},
		RateLimit: RateLimitConfig{
			Requests:      viper.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}
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
