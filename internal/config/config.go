package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	QuestionProviderURL    string
	QuestionFetchTimeout   time.Duration
	AIProvider             string
	OpenAIAPIKey           string
	OpenAIModel            string
	ReviewerCacheTTL       time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
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
	v.SetEnvPrefix("INTERVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Interview API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("question.provider_url", "http://localhost:5000")
	v.SetDefault("question.fetch_timeout", "30s")
	v.SetDefault("ai.provider", "http")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("reviewer.cache_ttl", "1m")
	v.SetDefault("cloudinary.folder", "interview/resumes")

	fetchTimeout, err := time.ParseDuration(v.GetString("question.fetch_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid question fetch timeout: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("reviewer.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid reviewer cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		QuestionProviderURL:    v.GetString("question.provider_url"),
		QuestionFetchTimeout:   fetchTimeout,
		AIProvider:             strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		OpenAIModel:            v.GetString("openai.model"),
		ReviewerCacheTTL:       cacheTTL,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AIProvider == "openai" && cfg.OpenAIAPIKey == "" {
		return Config{}, fmt.Errorf("openai api key must be provided when ai provider is openai")
	}

	return cfg, nil
}
