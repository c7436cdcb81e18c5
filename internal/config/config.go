package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the grading service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	DashboardCacheTTL      time.Duration
	UploadMaxSizeMB        int
	OCRBaseURL             string
	OCRAppID               string
	OCRAppKey              string
	OCRTimeout             time.Duration
	DeepseekAPIKey         string
	DeepseekBaseURL        string
	DeepseekModel          string
	DeepseekMaxTokens      int
	DeepseekTemperature    float32
	NATSURL                string
	EventSubjectBase       string
	WorkerConcurrency      int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("INKGRADE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "InkGrade API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "inkgrade/uploads")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("upload.max_size_mb", 20)
	v.SetDefault("ocr.base_url", "https://api.mathpix.com/v3")
	v.SetDefault("ocr.timeout", "30s")
	v.SetDefault("deepseek.base_url", "https://api.deepseek.com")
	v.SetDefault("deepseek.model", "deepseek-chat")
	v.SetDefault("deepseek.max_tokens", 2048)
	v.SetDefault("deepseek.temperature", 0.2)
	v.SetDefault("events.subject_base", "inkgrade")
	v.SetDefault("worker.concurrency", 8)

	ttl, err := time.ParseDuration(v.GetString("dashboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	ocrTimeout, err := time.ParseDuration(v.GetString("ocr.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ocr timeout: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		DashboardCacheTTL:      ttl,
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		OCRBaseURL:             v.GetString("ocr.base_url"),
		OCRAppID:               v.GetString("ocr.app_id"),
		OCRAppKey:              v.GetString("ocr.app_key"),
		OCRTimeout:             ocrTimeout,
		DeepseekAPIKey:         v.GetString("deepseek.api_key"),
		DeepseekBaseURL:        v.GetString("deepseek.base_url"),
		DeepseekModel:          v.GetString("deepseek.model"),
		DeepseekMaxTokens:      v.GetInt("deepseek.max_tokens"),
		DeepseekTemperature:    float32(v.GetFloat64("deepseek.temperature")),
		NATSURL:                v.GetString("nats.url"),
		EventSubjectBase:       v.GetString("events.subject_base"),
		WorkerConcurrency:      v.GetInt("worker.concurrency"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 20
	}

	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 8
	}

	return cfg, nil
}
